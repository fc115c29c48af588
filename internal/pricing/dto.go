package pricing

import (
	"time"

	"github.com/get2salam/price-matrix-demo/pkg/db/models"
	pkgpagination "github.com/get2salam/price-matrix-demo/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMatrixInput names a new matrix. With no tiers the default seed
// bands are used.
type CreateMatrixInput struct {
	Name  string
	Tiers []TierInput
}

// UpdateMatrixInput renames a matrix and/or replaces its whole tier set.
// A nil Tiers slice keeps the existing bands; a non-nil one replaces them.
type UpdateMatrixInput struct {
	Name  string
	Tiers []TierInput
}

// TierInput describes one band. Exactly one of Multiplier or GrossProfitPct
// sets the markup; a nil MaxCost makes the band open-ended.
type TierInput struct {
	MinCost        float64
	MaxCost        *float64
	Multiplier     *float64
	GrossProfitPct *float64
}

// EditTierInput carries partial updates for an existing band. Nil fields are
// left unchanged; OpenEnded clears the upper bound.
type EditTierInput struct {
	MinCost        *float64
	MaxCost        *float64
	OpenEnded      bool
	Multiplier     *float64
	GrossProfitPct *float64
}

// ListParams configures matrix listing pagination.
type ListParams struct {
	pkgpagination.Params
}

// ListResult is one page of matrices plus the cursor for the next page.
type ListResult struct {
	Items  []MatrixSummary `json:"items"`
	Cursor string          `json:"cursor"`
}

// MatrixSummary is the list-view projection of a matrix.
type MatrixSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TierCount int       `json:"tier_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listQuery struct {
	limit  int
	cursor *pkgpagination.Cursor
}

func toModelTiers(matrixID uuid.UUID, tiers []Tier) []models.PricingTier {
	rows := make([]models.PricingTier, len(tiers))
	for i, tier := range tiers {
		row := models.PricingTier{
			MatrixID:       matrixID,
			Position:       tier.Position,
			MinCost:        decimal.NewFromFloat(tier.MinCost),
			Multiplier:     decimal.NewFromFloat(tier.Markup.Multiplier),
			GrossProfitPct: decimal.NewFromFloat(tier.Markup.GrossProfitPct),
		}
		row.ID = uuid.New()
		if tier.MaxCost != nil {
			max := decimal.NewFromFloat(*tier.MaxCost)
			row.MaxCost = &max
		}
		rows[i] = row
	}
	return rows
}

func toDomainTier(row models.PricingTier) Tier {
	tier := Tier{
		Position: row.Position,
		MinCost:  row.MinCost.InexactFloat64(),
		Markup: Markup{
			Multiplier:     row.Multiplier.InexactFloat64(),
			GrossProfitPct: row.GrossProfitPct.InexactFloat64(),
		},
	}
	if row.MaxCost != nil {
		max := row.MaxCost.InexactFloat64()
		tier.MaxCost = &max
	}
	return tier
}

func toDomainMatrix(row *models.TierMatrix) *Matrix {
	matrix := &Matrix{
		ID:    row.ID,
		Name:  row.Name,
		Tiers: make([]Tier, len(row.Tiers)),
	}
	for i, tierRow := range row.Tiers {
		matrix.Tiers[i] = toDomainTier(tierRow)
	}
	return matrix
}

func toMatrixSummary(row models.TierMatrix) MatrixSummary {
	return MatrixSummary{
		ID:        row.ID,
		Name:      row.Name,
		TierCount: len(row.Tiers),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
