package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/psychoder05/chartworm-backend/src/database"
	"github.com/psychoder05/chartworm-backend/src/model"
)

// StockRepository handles persistence of imported stock snapshots.
type StockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new repository instance using the main
// read/write database.
func NewStockRepository() *StockRepository {
	return &StockRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *StockRepository) WithDB(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// CreateBatch inserts all given stocks in one statement.
func (r *StockRepository) CreateBatch(
	ctx context.Context,
	stocks []model.Stock,
) error {

	if len(stocks) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Create(&stocks).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StockRepository",
			"op":   "CreateBatch",
			"rows": len(stocks),
		}).WithError(err).Error("Failed to insert stocks")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "StockRepository",
		"op":   "CreateBatch",
		"rows": len(stocks),
	}).Info("Stocks inserted")

	return nil
}

// FindAll returns every imported stock row.
func (r *StockRepository) FindAll(ctx context.Context) ([]model.Stock, error) {

	var stocks []model.Stock

	err := r.db.WithContext(ctx).Find(&stocks).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StockRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch stocks")

		return nil, err
	}

	return stocks, nil
}

// DeleteAll removes every stock row. Administrative operation.
func (r *StockRepository) DeleteAll(ctx context.Context) error {

	err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.Stock{}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StockRepository",
			"op":   "DeleteAll",
		}).WithError(err).Error("Failed to delete stocks")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "StockRepository",
		"op":   "DeleteAll",
	}).Warn("All stock data deleted")

	return nil
}
