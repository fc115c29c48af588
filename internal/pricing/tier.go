package pricing

import "github.com/shopspring/decimal"

// Tier is one cost band of a matrix. MinCost is inclusive, MaxCost is
// inclusive when set and open-ended when nil. Positions are 1-based and
// contiguous after Normalize.
type Tier struct {
	Position int      `json:"position"`
	MinCost  float64  `json:"min_cost"`
	MaxCost  *float64 `json:"max_cost,omitempty"`
	Markup   Markup   `json:"markup"`
}

// Contains reports whether a unit cost falls inside the tier's band.
func (t Tier) Contains(unitCost float64) bool {
	if unitCost < t.MinCost {
		return false
	}
	return t.MaxCost == nil || unitCost <= *t.MaxCost
}

// Label renders the band for logs and API payloads, e.g. "$5.00-$10.00"
// or "$200.00+" for the open-ended top tier.
func (t Tier) Label() string {
	if t.MaxCost == nil {
		return fmtMoney(t.MinCost) + "+"
	}
	return fmtMoney(t.MinCost) + "-" + fmtMoney(*t.MaxCost)
}

// TierAnalysis is a tier plus the sales volume observed in it for one
// ingested dataset. Money fields are book totals over the matched records.
type TierAnalysis struct {
	Tier
	PartCount     int     `json:"part_count"`
	TotalQty      float64 `json:"total_qty"`
	TotalCost     float64 `json:"total_cost"`
	TotalRetail   float64 `json:"total_retail"`
	CurrentMargin float64 `json:"current_margin"`
	RevenueShare  float64 `json:"revenue_share"`
}

// CurrentProfit is the book profit for the tier's matched records.
func (a TierAnalysis) CurrentProfit() float64 {
	return a.TotalRetail - a.TotalCost
}

func fmtMoney(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}
