package pricing

import (
	"context"

	"github.com/get2salam/price-matrix-demo/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes tier matrix persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the matrix row together with its tier rows.
func (r *Repository) Create(ctx context.Context, matrix *models.TierMatrix) (*models.TierMatrix, error) {
	if err := r.db.WithContext(ctx).Create(matrix).Error; err != nil {
		return nil, err
	}
	return matrix, nil
}

// FindByID loads the matrix with its tiers ordered by position.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TierMatrix, error) {
	var matrix models.TierMatrix
	err := r.db.WithContext(ctx).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&matrix, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &matrix, nil
}

// List returns matrices using cursor pagination, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.TierMatrix, error) {
	query := r.db.WithContext(ctx).Model(&models.TierMatrix{})

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.TierMatrix
	if err := query.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists name changes on the matrix row.
func (r *Repository) Update(ctx context.Context, matrix *models.TierMatrix) error {
	return r.db.WithContext(ctx).Model(&models.TierMatrix{}).
		Where("id = ?", matrix.ID).
		Update("name", matrix.Name).Error
}

// ReplaceTiers swaps the full tier set for the matrix inside one transaction
// so a failed insert never leaves the matrix empty.
func (r *Repository) ReplaceTiers(ctx context.Context, matrixID uuid.UUID, tiers []models.PricingTier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("matrix_id = ?", matrixID).Delete(&models.PricingTier{}).Error; err != nil {
			return err
		}
		if len(tiers) == 0 {
			return nil
		}
		return tx.Create(&tiers).Error
	})
}

// Delete removes the matrix; tier rows cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TierMatrix{}, "id = ?", id).Error
}
