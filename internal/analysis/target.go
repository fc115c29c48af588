package analysis

import "github.com/get2salam/price-matrix-demo/pkg/enums"

// Margins above 95% make the implied revenue blow up, so margin targets
// are clamped there.
const maxTargetMargin = 0.95

// TargetSpec describes the caller's profit goal: a percentage lift over
// current profit, an absolute gross margin, or a flat dollar amount on top.
type TargetSpec struct {
	Kind  enums.TargetKind `json:"kind"`
	Value float64          `json:"value"`
}

// ResolveTarget converts a TargetSpec into an absolute profit target given
// the book's current profit and cost. Callers validate Kind beforehand; an
// unknown kind resolves to the current profit, which the solver treats as
// no work to do.
//
// A margin or percent below the book's current performance yields a target
// under current profit. That is not an error: the solver's never-decrease
// rule simply produces no effective change.
func ResolveTarget(spec TargetSpec, currentProfit, totalCost float64) float64 {
	switch spec.Kind {
	case enums.TargetKindPercent:
		return currentProfit * (1 + spec.Value/100)
	case enums.TargetKindMargin:
		margin := spec.Value / 100
		if margin > maxTargetMargin {
			margin = maxTargetMargin
		}
		targetRevenue := totalCost / (1 - margin)
		return targetRevenue - totalCost
	case enums.TargetKindDollar:
		return currentProfit + spec.Value
	default:
		return currentProfit
	}
}
