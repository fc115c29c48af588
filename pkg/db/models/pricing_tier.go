package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingTier is one cost range inside a matrix. A null max cost means the
// range is unbounded above.
type PricingTier struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MatrixID       uuid.UUID        `gorm:"column:matrix_id;type:uuid;not null;uniqueIndex:idx_pricing_tiers_matrix_position"`
	Position       int              `gorm:"column:position;not null;uniqueIndex:idx_pricing_tiers_matrix_position"`
	MinCost        decimal.Decimal  `gorm:"column:min_cost;type:numeric(12,2);not null"`
	MaxCost        *decimal.Decimal `gorm:"column:max_cost;type:numeric(12,2)"`
	Multiplier     decimal.Decimal  `gorm:"column:multiplier;type:numeric(8,4);not null"`
	GrossProfitPct decimal.Decimal  `gorm:"column:gross_profit_pct;type:numeric(6,2);not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
