package pricing

// Markup couples a cost multiplier with the gross profit percentage it
// produces. The two representations always agree; construct values through
// MarkupFromMultiplier or MarkupFromGrossProfit rather than by hand.
type Markup struct {
	Multiplier     float64 `json:"multiplier"`
	GrossProfitPct float64 `json:"gross_profit_pct"`
}

// MarkupFromMultiplier derives the markup for a sell-price multiplier.
// gross = 100 * (1 - 1/multiplier), so a 2.0x multiplier yields 50% gross.
func MarkupFromMultiplier(multiplier float64) Markup {
	gross := 0.0
	if multiplier > 0 {
		gross = 100 * (1 - 1/multiplier)
	}
	return Markup{Multiplier: multiplier, GrossProfitPct: gross}
}

// MarkupFromGrossProfit derives the multiplier that achieves the given gross
// profit percentage: multiplier = 100 / (100 - gross). Inputs at or above
// 100 have no finite multiplier and come back zeroed for validation to catch.
func MarkupFromGrossProfit(grossPct float64) Markup {
	if grossPct >= 100 {
		return Markup{}
	}
	return Markup{
		Multiplier:     100 / (100 - grossPct),
		GrossProfitPct: grossPct,
	}
}
