package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/connectors"
	"github.com/psychoder05/chartworm-backend/src/model"
)

type quoteFetcher interface {
	Quote(ctx context.Context, symbol string) (*connectors.StockQuote, error)
}

type csvImporter interface {
	ImportCSV(ctx context.Context, r io.Reader) (int, error)
}

type stockLister interface {
	FindAll(ctx context.Context) ([]model.Stock, error)
}

type stockWiper interface {
	DeleteAll(ctx context.Context) error
}

// StockQuoteHandler proxies a live quote lookup for a single symbol.
func StockQuoteHandler(quotes quoteFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		if symbol == "" {
			respondMessage(w, http.StatusBadRequest,
				"Stock symbol is required. Please provide it as a path parameter.")
			return
		}

		quote, err := quotes.Quote(r.Context(), symbol)
		if err != nil {
			logger.WithField("symbol", symbol).WithError(err).Error("Error fetching stock data")
			respondMessage(w, http.StatusNotFound, "No data found for stock symbol: "+symbol)
			return
		}

		respondData(w, http.StatusOK, "", quote)
	}
}

// UploadCSVHandler ingests a CSV of stocks from a multipart upload.
func UploadCSVHandler(imp csvImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Please upload a CSV file.")
			return
		}
		defer file.Close()

		rows, err := imp.ImportCSV(r.Context(), file)
		if err != nil {
			logger.WithError(err).Error("CSV import failed")
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		respondData(w, http.StatusOK, "CSV uploaded and data inserted!",
			map[string]interface{}{"rows": rows})
	}
}

// GetStocksHandler lists all imported stock rows.
func GetStocksHandler(repo stockLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stocks, err := repo.FindAll(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respondData(w, http.StatusOK, "", stocks)
	}
}

// DeleteAllStocksHandler wipes the stocks table. Administrative endpoint.
func DeleteAllStocksHandler(repo stockWiper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.DeleteAll(r.Context()); err != nil {
			respondError(w, err)
			return
		}

		respondMessage(w, http.StatusOK, "All stock data deleted successfully!")
	}
}
