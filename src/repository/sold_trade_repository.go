package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/psychoder05/chartworm-backend/src/database"
	"github.com/psychoder05/chartworm-backend/src/model"
)

// SoldTradeRepository handles persistence of immutable sell-event records.
// Sold trades are append-only; there is no update or delete path.
type SoldTradeRepository struct {
	db *gorm.DB
}

// NewSoldTradeRepository creates a new repository instance using the main
// read/write database.
func NewSoldTradeRepository() *SoldTradeRepository {
	return &SoldTradeRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *SoldTradeRepository) WithDB(db *gorm.DB) *SoldTradeRepository {
	return &SoldTradeRepository{db: db}
}

// Create inserts a new sold-trade snapshot.
func (r *SoldTradeRepository) Create(
	ctx context.Context,
	soldTrade *model.SoldTrade,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":              "SoldTradeRepository",
		"op":                "Create",
		"symbol":            soldTrade.StockName,
		"qty":               soldTrade.Quantity,
		"original_trade_id": soldTrade.OriginalTradeID,
	}).Debug("Creating sold trade snapshot")

	err := r.db.WithContext(ctx).Create(soldTrade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SoldTradeRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create sold trade")

		return err
	}

	return nil
}

// FindAll returns every sell event in insertion order.
func (r *SoldTradeRepository) FindAll(ctx context.Context) ([]model.SoldTrade, error) {

	var soldTrades []model.SoldTrade

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&soldTrades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SoldTradeRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch sold trades")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "SoldTradeRepository",
		"op":          "FindAll",
		"rows_return": len(soldTrades),
	}).Debug("Sold trades fetched")

	return soldTrades, nil
}

// FindByOriginalTradeID returns all sell events recorded against one trade.
func (r *SoldTradeRepository) FindByOriginalTradeID(
	ctx context.Context,
	tradeID uint,
) ([]model.SoldTrade, error) {

	var soldTrades []model.SoldTrade

	err := r.db.WithContext(ctx).
		Where("original_trade_id = ?", tradeID).
		Order("id ASC").
		Find(&soldTrades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "SoldTradeRepository",
			"op":       "FindByOriginalTradeID",
			"trade_id": tradeID,
		}).WithError(err).Error("Failed to fetch sold trades for trade")

		return nil, err
	}

	return soldTrades, nil
}
