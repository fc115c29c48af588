package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// IngestionRun is the audit record for one sales-history upload.
type IngestionRun struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MatrixID          uuid.UUID       `gorm:"column:matrix_id;type:uuid;not null;index"`
	AnalysisID        uuid.UUID       `gorm:"column:analysis_id;type:uuid;not null;uniqueIndex"`
	RecordCount       int             `gorm:"column:record_count;not null"`
	SkippedCount      int             `gorm:"column:skipped_count;not null"`
	UnclassifiedCount int             `gorm:"column:unclassified_count;not null"`
	TotalCost         decimal.Decimal `gorm:"column:total_cost;type:numeric(14,2);not null"`
	TotalRetail       decimal.Decimal `gorm:"column:total_retail;type:numeric(14,2);not null"`
	DetectedColumns   pq.StringArray  `gorm:"column:detected_columns;type:text[];default:ARRAY[]::text[]"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}
