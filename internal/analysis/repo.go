package analysis

import (
	"context"

	"github.com/get2salam/price-matrix-demo/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the durable audit trail of ingestion runs. The run
// row outlives the Redis session, so counts stay reportable after expiry.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateRun inserts the audit row for a completed ingestion.
func (r *Repository) CreateRun(ctx context.Context, run *models.IngestionRun) (*models.IngestionRun, error) {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// FindRunByAnalysisID loads the audit row for one analysis.
func (r *Repository) FindRunByAnalysisID(ctx context.Context, analysisID uuid.UUID) (*models.IngestionRun, error) {
	var run models.IngestionRun
	if err := r.db.WithContext(ctx).First(&run, "analysis_id = ?", analysisID).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRunsByMatrix returns the newest audit rows for a matrix.
func (r *Repository) ListRunsByMatrix(ctx context.Context, matrixID uuid.UUID, limit int) ([]models.IngestionRun, error) {
	var runs []models.IngestionRun
	err := r.db.WithContext(ctx).
		Where("matrix_id = ?", matrixID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
