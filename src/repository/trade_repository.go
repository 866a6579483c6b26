package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/psychoder05/chartworm-backend/src/database"
	"github.com/psychoder05/chartworm-backend/src/model"
)

// TradeRepository handles read/write operations for open-position trades.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main
// read/write database.
func NewTradeRepository() *TradeRepository {
	return &TradeRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create inserts a new trade. The given trade is updated with the generated
// ID and timestamps.
func (r *TradeRepository) Create(
	ctx context.Context,
	trade *model.Trade,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "TradeRepository",
		"op":     "Create",
		"symbol": trade.StockName,
		"qty":    trade.Quantity,
	}).Debug("Creating new trade")

	err := r.db.WithContext(ctx).Create(trade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create trade")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "Create",
		"trade_id": trade.ID,
	}).Info("Trade created successfully")

	return nil
}

// FindByID fetches a single trade by its primary ID.
// Returns (nil, nil) if the trade is not found.
func (r *TradeRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.Trade, error) {

	var trade model.Trade

	err := r.db.WithContext(ctx).First(&trade, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "TradeRepository",
				"op":   "FindByID",
				"id":   id,
			}).Info("Trade not found")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch trade by ID")

		return nil, err
	}

	return &trade, nil
}

// FindAll returns every trade, newest first.
func (r *TradeRepository) FindAll(ctx context.Context) ([]model.Trade, error) {

	var trades []model.Trade

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&trades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch trades")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "TradeRepository",
		"op":          "FindAll",
		"rows_return": len(trades),
	}).Debug("Trades fetched")

	return trades, nil
}

// FindOpen returns trades that still hold quantity: a buy date is set and
// the remaining quantity is strictly positive. Fully exited trades stay in
// the table with quantity 0 and are excluded here.
func (r *TradeRepository) FindOpen(ctx context.Context) ([]model.Trade, error) {

	var trades []model.Trade

	err := r.db.WithContext(ctx).
		Where("buy_date IS NOT NULL AND quantity > ?", 0).
		Order("created_at DESC").
		Find(&trades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "FindOpen",
		}).WithError(err).Error("Failed to fetch open trades")

		return nil, err
	}

	return trades, nil
}

// DeleteAll removes every trade. Administrative operation only; normal
// close flow never deletes trades.
func (r *TradeRepository) DeleteAll(ctx context.Context) error {

	err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.Trade{}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "DeleteAll",
		}).WithError(err).Error("Failed to delete trades")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "TradeRepository",
		"op":   "DeleteAll",
	}).Warn("All trades deleted")

	return nil
}
