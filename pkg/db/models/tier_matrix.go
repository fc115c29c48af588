package models

import (
	"time"

	"github.com/google/uuid"
)

// TierMatrix is a named set of cost-range pricing tiers.
type TierMatrix struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string        `gorm:"column:name;not null;uniqueIndex:idx_tier_matrices_name"`
	Tiers     []PricingTier `gorm:"foreignKey:MatrixID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
