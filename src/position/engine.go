// Package position implements the trade lifecycle: opening a position and
// applying partial or full sells against it. Each sell decrements the
// trade's remaining quantity and spawns an immutable sold-trade snapshot,
// so for any trade the sum of sold quantities plus the remaining quantity
// always equals the original buy quantity.
package position

import (
	"context"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/psychoder05/chartworm-backend/src/model"
	"github.com/psychoder05/chartworm-backend/src/repository"
	"github.com/psychoder05/chartworm-backend/src/trading"
)

// Engine applies buys and sells against the trade store. All dependencies
// are injected so the engine can run against any *gorm.DB, including the
// in-memory database used by tests.
type Engine struct {
	db     *gorm.DB
	trades *repository.TradeRepository
	sold   *repository.SoldTradeRepository
}

// NewEngine builds an engine on top of the given database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		db:     db,
		trades: repository.NewTradeRepository().WithDB(db),
		sold:   repository.NewSoldTradeRepository().WithDB(db),
	}
}

// OpenTradeInput carries the fields of a buy request. Quantity accepts the
// scalar-or-array wire form and is validated here.
type OpenTradeInput struct {
	StockName string          `json:"stockName"`
	BuyDate   *time.Time      `json:"buyDate"`
	BuyPrice  *float64        `json:"buyPrice"`
	Quantity  *model.Quantity `json:"quantity"`
	StopLoss  float64         `json:"stopLoss"`
}

// ClosePositionInput carries the fields of a sell request.
type ClosePositionInput struct {
	TradeID   uint            `json:"tradeId"`
	Quantity  *model.Quantity `json:"quantity"`
	SellDate  *time.Time      `json:"sellDate"`
	SellPrice float64         `json:"sellPrice"`
	StopLoss  float64         `json:"stopLoss"`
}

// CloseResult returns both sides of a successful sell: the mutated trade
// and the new sold-trade snapshot.
type CloseResult struct {
	UpdatedTrade *model.Trade     `json:"updatedTrade"`
	SoldTrade    *model.SoldTrade `json:"soldTrade"`
}

// OpenTrade validates and persists a new open position. The new trade
// starts with no sell fields and no exit type.
func (e *Engine) OpenTrade(ctx context.Context, in OpenTradeInput) (*model.Trade, error) {

	if in.Quantity == nil {
		return nil, trading.NewValidationError("Missing quantity field.")
	}
	if in.BuyDate == nil || in.BuyPrice == nil || in.Quantity.Float64() <= 0 {
		return nil, trading.NewValidationError("Missing or invalid required fields.")
	}

	trade := &model.Trade{
		StockName: strings.TrimSpace(in.StockName),
		BuyDate:   in.BuyDate,
		BuyPrice:  *in.BuyPrice,
		Quantity:  in.Quantity.Float64(),
		StopLoss:  in.StopLoss,
	}

	if err := e.trades.Create(ctx, trade); err != nil {
		return nil, &trading.PersistenceError{Op: "open_trade", Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"trade_id": trade.ID,
		"symbol":   trade.StockName,
		"qty":      trade.Quantity,
	}).Info("Position opened")

	return trade, nil
}

// ClosePosition applies a sell against an existing trade. The quantity
// decrement is a conditional UPDATE guarded by the current remaining
// quantity, so two concurrent sells can never collectively oversell, and
// the trade mutation plus the sold-trade insert run in one transaction so
// the pair either lands together or not at all. Selling the exact
// remaining quantity marks a Full Exit; the trade stays in the store with
// quantity 0 and any further sell is rejected by the same guard.
func (e *Engine) ClosePosition(ctx context.Context, in ClosePositionInput) (*CloseResult, error) {

	if in.Quantity == nil {
		return nil, trading.NewValidationError("Missing quantity field.")
	}
	sellQty := in.Quantity.Float64()
	if sellQty <= 0 {
		return nil, trading.NewValidationError("Sell quantity must be positive.")
	}

	var result CloseResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		res := tx.Model(&model.Trade{}).
			Where("id = ? AND quantity >= ?", in.TradeID, sellQty).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", sellQty),
				"sell_date":  in.SellDate,
				"sell_price": in.SellPrice,
				"stop_loss":  in.StopLoss,
			})
		if res.Error != nil {
			return &trading.PersistenceError{Op: "close_position.decrement", Err: res.Error}
		}

		trades := e.trades.WithDB(tx)

		if res.RowsAffected == 0 {
			existing, err := trades.FindByID(ctx, in.TradeID)
			if err != nil {
				return &trading.PersistenceError{Op: "close_position.lookup", Err: err}
			}
			if existing == nil {
				return &trading.NotFoundError{Resource: "trade", ID: in.TradeID}
			}
			return trading.NewValidationError("Sell quantity exceeds available quantity.")
		}

		trade, err := trades.FindByID(ctx, in.TradeID)
		if err != nil || trade == nil {
			return &trading.PersistenceError{Op: "close_position.reload", Err: err}
		}

		exitType := model.ExitPartial
		if trade.Quantity == 0 {
			exitType = model.ExitFull
		}

		if err := tx.Model(trade).Update("exit_type", exitType).Error; err != nil {
			return &trading.PersistenceError{Op: "close_position.exit_type", Err: err}
		}
		trade.ExitType = exitType

		soldTrade := &model.SoldTrade{
			StockName:       trade.StockName,
			BuyDate:         trade.BuyDate,
			BuyPrice:        trade.BuyPrice,
			SellDate:        in.SellDate,
			SellPrice:       in.SellPrice,
			Quantity:        sellQty,
			StopLoss:        in.StopLoss,
			ExitType:        exitType,
			OriginalTradeID: trade.ID,
		}

		if err := e.sold.WithDB(tx).Create(ctx, soldTrade); err != nil {
			return &trading.PersistenceError{Op: "close_position.sold_trade", Err: err}
		}

		result = CloseResult{UpdatedTrade: trade, SoldTrade: soldTrade}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"trade_id":  in.TradeID,
		"sold_qty":  sellQty,
		"remaining": result.UpdatedTrade.Quantity,
		"exit_type": result.UpdatedTrade.ExitType,
	}).Info("Position closed")

	return &result, nil
}
