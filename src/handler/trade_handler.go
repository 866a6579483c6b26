package handler

import (
	"context"
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/model"
	"github.com/psychoder05/chartworm-backend/src/pnl"
	"github.com/psychoder05/chartworm-backend/src/position"
	"github.com/psychoder05/chartworm-backend/src/repository"
	"github.com/psychoder05/chartworm-backend/src/trading"
)

type positionOpener interface {
	OpenTrade(ctx context.Context, in position.OpenTradeInput) (*model.Trade, error)
}

type positionCloser interface {
	ClosePosition(ctx context.Context, in position.ClosePositionInput) (*position.CloseResult, error)
}

type tradeLister interface {
	FindAll(ctx context.Context) ([]model.Trade, error)
}

type realizedReporter interface {
	RealizedStatement(ctx context.Context) (*pnl.RealizedStatement, error)
}

type liveReporter interface {
	LivePositions(ctx context.Context) ([]pnl.LivePosition, error)
}

// AddTradeHandler records a new buy.
func AddTradeHandler(engine positionOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in position.OpenTradeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid request payload.")
			return
		}

		trade, err := engine.OpenTrade(r.Context(), in)
		if err != nil {
			respondError(w, err)
			return
		}

		respondData(w, http.StatusCreated, "Trade added successfully!", trade)
	}
}

// ClosePositionHandler applies a partial or full sell against a trade.
// Persistence failures are additionally captured to the exceptions table so
// a torn close can be reconciled.
func ClosePositionHandler(engine positionCloser, exceptions *repository.ExceptionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in position.ClosePositionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid request payload.")
			return
		}

		result, err := engine.ClosePosition(r.Context(), in)
		if err != nil {
			if trading.IsPersistence(err) {
				Capture(r.Context(), exceptions, "position_engine", "ClosePosition", "error", err,
					map[string]interface{}{"trade_id": in.TradeID})
			}
			respondError(w, err)
			return
		}

		respondData(w, http.StatusOK, "Trade updated and sold trade recorded successfully", result)
	}
}

// GetAllTradesHandler lists every trade, newest first.
func GetAllTradesHandler(repo tradeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trades, err := repo.FindAll(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respondData(w, http.StatusOK, "All trades fetched successfully.", trades)
	}
}

// PnlStatementHandler returns the realized PnL statement.
func PnlStatementHandler(reporter realizedReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statement, err := reporter.RealizedStatement(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to build PnL statement")
			respondError(w, err)
			return
		}

		respondData(w, http.StatusOK, "", statement)
	}
}

// LivePositionsHandler returns every open position valued at live quotes.
func LivePositionsHandler(reporter liveReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := reporter.LivePositions(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to fetch live positions")
			respondError(w, err)
			return
		}

		respondData(w, http.StatusOK, "", map[string]interface{}{"positions": positions})
	}
}
