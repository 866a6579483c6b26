package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/connectors"
	"github.com/psychoder05/chartworm-backend/src/database"
	"github.com/psychoder05/chartworm-backend/src/handler"
	"github.com/psychoder05/chartworm-backend/src/importer"
	"github.com/psychoder05/chartworm-backend/src/pnl"
	"github.com/psychoder05/chartworm-backend/src/position"
	"github.com/psychoder05/chartworm-backend/src/repository"
)

// NewRouter wires every endpoint to the engine, reporter, connector and
// repositories. Kept separate from StartServer so tests can mount the full
// router against httptest.
func NewRouter(cfg *Config) chi.Router {
	db := database.MainDB

	quotes := connectors.NewYahooClient(connectors.GetConfig())
	engine := position.NewEngine(db)
	reporter := pnl.NewReporter(db, quotes)

	tradeRepo := repository.NewTradeRepository()
	stockRepo := repository.NewStockRepository()
	explainerRepo := repository.NewExplainerRepository()
	exceptionRepo := repository.NewExceptionRepository()
	stockImporter := importer.NewStockImporter(stockRepo, quotes)

	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/healthcheck error")
		}
	})

	r.Route("/api", func(api chi.Router) {
		// position lifecycle + PnL
		api.Post("/addTrade", handler.AddTradeHandler(engine))
		api.Post("/updateClosePosition", handler.ClosePositionHandler(engine, exceptionRepo))
		api.Get("/getAllTrades", handler.GetAllTradesHandler(tradeRepo))
		api.Get("/getPnlStatement", handler.PnlStatementHandler(reporter))
		api.Get("/getLiveOpenPositions", handler.LivePositionsHandler(reporter))

		// stock reference data
		api.Get("/stock/{symbol}", handler.StockQuoteHandler(quotes))
		api.Post("/uploadCSV", handler.UploadCSVHandler(stockImporter))
		api.Get("/getStocks", handler.GetStocksHandler(stockRepo))
		api.Delete("/deleteAllStocks", handler.DeleteAllStocksHandler(stockRepo))

		// explainer notes
		api.Post("/addExplainer", handler.AddExplainerHandler(explainerRepo, cfg.UploadDir))
		api.Put("/editExplainer/{id}", handler.EditExplainerHandler(explainerRepo, cfg.UploadDir))
		api.Get("/getAllExplainer", handler.GetAllExplainerHandler(explainerRepo))
		api.Delete("/deleteExplainer/{id}", handler.DeleteExplainerHandler(explainerRepo))
	})

	// Uploaded explainer images are served statically.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}

func StartServer(cfg *Config) {
	r := NewRouter(cfg)

	// Graceful server
	// Server setup
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
