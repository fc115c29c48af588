package analysis

import (
	"github.com/get2salam/price-matrix-demo/internal/ingest"
	"github.com/get2salam/price-matrix-demo/internal/pricing"
)

// Aggregation is the per-tier rollup of one ingested dataset. Records that
// fall in a matrix coverage gap are excluded from every tier total and
// surface only through UnclassifiedCount.
type Aggregation struct {
	Tiers             []pricing.TierAnalysis `json:"tiers"`
	TotalCost         float64                `json:"total_cost"`
	TotalRevenue      float64                `json:"total_revenue"`
	CurrentProfit     float64                `json:"current_profit"`
	UnclassifiedCount int                    `json:"unclassified_count"`
}

// AggregateTiers classifies records into the matrix bands (first match by
// position) and rolls up cost, retail, and quantity per tier. Revenue shares
// are relative to the revenue captured by tiers, not the whole file.
func AggregateTiers(matrix *pricing.Matrix, records []ingest.PartRecord) *Aggregation {
	agg := &Aggregation{Tiers: make([]pricing.TierAnalysis, len(matrix.Tiers))}

	byPosition := make(map[int]int, len(matrix.Tiers))
	for i, tier := range matrix.Tiers {
		agg.Tiers[i] = pricing.TierAnalysis{Tier: tier}
		byPosition[tier.Position] = i
	}

	for _, record := range records {
		tier, ok := matrix.TierFor(record.UnitCost)
		if !ok {
			agg.UnclassifiedCount++
			continue
		}
		entry := &agg.Tiers[byPosition[tier.Position]]
		entry.PartCount++
		entry.TotalQty += record.Qty
		entry.TotalCost += record.TotalCost
		entry.TotalRetail += record.TotalRetail
	}

	for i := range agg.Tiers {
		entry := &agg.Tiers[i]
		if entry.TotalRetail > 0 {
			entry.CurrentMargin = (entry.TotalRetail - entry.TotalCost) / entry.TotalRetail * 100
		}
		agg.TotalCost += entry.TotalCost
		agg.TotalRevenue += entry.TotalRetail
	}
	agg.CurrentProfit = agg.TotalRevenue - agg.TotalCost

	for i := range agg.Tiers {
		if agg.TotalRevenue > 0 {
			agg.Tiers[i].RevenueShare = agg.Tiers[i].TotalRetail / agg.TotalRevenue * 100
		}
	}
	return agg
}
