package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/psychoder05/chartworm-backend/src/database"
	"github.com/psychoder05/chartworm-backend/src/model"
)

// ExplainerRepository handles persistence of trade explainer notes.
type ExplainerRepository struct {
	db *gorm.DB
}

// NewExplainerRepository creates a new repository instance using the main
// read/write database.
func NewExplainerRepository() *ExplainerRepository {
	return &ExplainerRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *ExplainerRepository) WithDB(db *gorm.DB) *ExplainerRepository {
	return &ExplainerRepository{db: db}
}

// Create inserts a new explainer note.
func (r *ExplainerRepository) Create(
	ctx context.Context,
	explainer *model.Explainer,
) error {

	err := r.db.WithContext(ctx).Create(explainer).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "ExplainerRepository",
			"op":       "Create",
			"trade_id": explainer.TradeID,
		}).WithError(err).Error("Failed to create explainer")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "ExplainerRepository",
		"op":           "Create",
		"explainer_id": explainer.ID,
	}).Info("Explainer created")

	return nil
}

// FindByID fetches a single explainer by its primary ID.
// Returns (nil, nil) if not found.
func (r *ExplainerRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.Explainer, error) {

	var explainer model.Explainer

	err := r.db.WithContext(ctx).First(&explainer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "ExplainerRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch explainer")

		return nil, err
	}

	return &explainer, nil
}

// Update persists the given explainer state.
func (r *ExplainerRepository) Update(
	ctx context.Context,
	explainer *model.Explainer,
) error {

	err := r.db.WithContext(ctx).Save(explainer).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ExplainerRepository",
			"op":   "Update",
			"id":   explainer.ID,
		}).WithError(err).Error("Failed to update explainer")

		return err
	}

	return nil
}

// FindAll returns every explainer, newest first, with the referenced trade
// preloaded for display context.
func (r *ExplainerRepository) FindAll(ctx context.Context) ([]model.Explainer, error) {

	var explainers []model.Explainer

	err := r.db.WithContext(ctx).
		Preload("Trade").
		Order("created_at DESC").
		Find(&explainers).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ExplainerRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch explainers")

		return nil, err
	}

	return explainers, nil
}

// Delete removes an explainer by ID. Returns (false, nil) when no row
// matched.
func (r *ExplainerRepository) Delete(
	ctx context.Context,
	id uint,
) (bool, error) {

	res := r.db.WithContext(ctx).Delete(&model.Explainer{}, id)
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ExplainerRepository",
			"op":   "Delete",
			"id":   id,
		}).WithError(res.Error).Error("Failed to delete explainer")

		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}
