// Package solver turns tier sales aggregates and a profit target into
// per-tier multiplier recommendations. It is a heuristic local solver:
// a weighted initial distribution followed by an iterative nudge loop,
// bounded by per-tier caps and an iteration budget.
package solver

import (
	"math"

	"github.com/get2salam/price-matrix-demo/internal/pricing"
)

const (
	maxIterations = 50

	// Convergence tolerance and nudge steps, as fractions of the target.
	tolerance      = 0.005
	coarseStep     = 0.015
	fineStep       = 0.005
	coarseGapShare = 0.05

	// Per-tier caps: a multiplier never rises above 1.5x its matrix value
	// in one solve, and recommended gross profit tops out at 95%, which
	// pins the multiplier to exactly 20.
	maxRaise         = 1.5
	grossCeiling     = 95.0
	grossCeilingMult = 20.0
)

// Input is everything a solve depends on. Locks map tier positions to
// pinned multipliers; locked tiers are reported but never adjusted.
type Input struct {
	Tiers        []pricing.TierAnalysis
	TargetProfit float64
	Locks        map[int]float64
}

// RecommendationTier is the solver's output for one tier. NewMultiplier
// never drops below the tier's matrix multiplier unless a lock pins it
// lower on purpose.
type RecommendationTier struct {
	pricing.TierAnalysis
	NewMultiplier     float64 `json:"new_multiplier"`
	NewGrossProfitPct float64 `json:"new_gross_profit_pct"`
	MultiplierChange  float64 `json:"multiplier_change"`
	MarginChange      float64 `json:"margin_change"`
	ProjectedProfit   float64 `json:"projected_profit"`
	IsLocked          bool    `json:"is_locked"`
	ImpactScore       float64 `json:"impact_score"`
}

// RecommendationSet is a full solve result. Current* fields describe the
// book as aggregated; the increase fields compare the projection against it.
// When the iteration budget runs out before the tolerance is met, Converged
// is false and ResidualGap holds the remaining distance to the target; the
// set is still usable.
type RecommendationSet struct {
	Tiers           []RecommendationTier `json:"tiers"`
	CurrentProfit   float64              `json:"current_profit"`
	TargetProfit    float64              `json:"target_profit"`
	ProjectedProfit float64              `json:"projected_profit"`
	ProfitIncrease  float64              `json:"profit_increase"`
	PercentIncrease float64              `json:"percent_increase"`
	CurrentRevenue  float64              `json:"current_revenue"`
	CurrentCost     float64              `json:"current_cost"`
	ResidualGap     float64              `json:"residual_gap"`
	Iterations      int                  `json:"iterations"`
	Converged       bool                 `json:"converged"`
}

// tierState carries the solver's working values for one tier between phases.
type tierState struct {
	analysis   pricing.TierAnalysis
	original   float64
	actualMult float64
	newMult    float64
	newGross   float64
	projected  float64
	locked     bool
	adjustable bool
}

// Solve allocates the profit target across tiers. It is a pure function of
// its input; repeated calls with the same aggregates, target, and locks
// yield the same set.
func Solve(input Input) *RecommendationSet {
	states := make([]tierState, len(input.Tiers))

	var totalCost, totalRevenue float64
	for _, tier := range input.Tiers {
		totalCost += tier.TotalCost
		totalRevenue += tier.TotalRetail
	}

	overallNow := 1.0
	overallTarget := 1.0
	if totalCost > 0 {
		overallNow = totalRevenue / totalCost
		overallTarget = 1 + input.TargetProfit/totalCost
	}
	ratio := 1.0
	if overallNow > 0 {
		ratio = overallTarget / overallNow
	}

	// Phase A: weighted initial distribution. High-volume, low-margin tiers
	// absorb more of the required increase.
	for i, tier := range input.Tiers {
		state := tierState{
			analysis: tier,
			original: tier.Markup.Multiplier,
			newMult:  tier.Markup.Multiplier,
			newGross: tier.Markup.GrossProfitPct,
		}
		if tier.TotalCost > 0 {
			state.actualMult = tier.TotalRetail / tier.TotalCost
		}

		if locked, ok := input.Locks[tier.Position]; ok {
			state.locked = true
			state.newMult = locked
			state.newGross = 100 * (1 - 1/locked)
			state.projected = projectProfit(state)
			states[i] = state
			continue
		}

		if tier.TotalCost <= 0 || tier.TotalRetail <= 0 {
			state.projected = tier.CurrentProfit()
			states[i] = state
			continue
		}

		state.adjustable = true
		actualMarginPct := (tier.TotalRetail - tier.TotalCost) / tier.TotalRetail * 100
		volumeWeight := tier.RevenueShare / 100
		headroomWeight := 1 - actualMarginPct/100
		combined := 0.6*volumeWeight + 0.4*headroomWeight
		weightedIncrease := (ratio - 1) * (0.5 + combined)

		state.newMult, state.newGross = capMultiplier(state.original, state.original*(1+weightedIncrease))
		state.projected = projectProfit(state)
		states[i] = state
	}

	// Phase B: nudge adjustable tiers up or down until the projected total
	// is within tolerance of the target or the budget runs out.
	projected := sumProjected(states)
	allowed := tolerance * input.TargetProfit

	iterations := 0
	for math.Abs(projected-input.TargetProfit) > allowed && iterations < maxIterations {
		gap := input.TargetProfit - projected
		isUnder := gap > 0

		step := fineStep
		if math.Abs(gap)/input.TargetProfit > coarseGapShare {
			step = coarseStep
		}

		for i := range states {
			state := &states[i]
			if state.locked || state.analysis.TotalCost <= 0 {
				continue
			}
			if isUnder && !state.canRaise() {
				continue
			}
			if !isUnder && !state.canLower() {
				continue
			}

			factor := 1 + step
			if !isUnder {
				factor = 1 - step
			}
			state.newMult, state.newGross = capMultiplier(state.original, state.newMult*factor)
			state.projected = projectProfit(*state)
		}

		projected = sumProjected(states)
		iterations++
	}

	// Phase C: round for presentation and derive the change metrics.
	currentProfit := totalRevenue - totalCost
	set := &RecommendationSet{
		Tiers:          make([]RecommendationTier, len(states)),
		CurrentProfit:  round2(currentProfit),
		TargetProfit:   input.TargetProfit,
		CurrentRevenue: round2(totalRevenue),
		CurrentCost:    round2(totalCost),
		Iterations:     iterations,
		Converged:      math.Abs(projected-input.TargetProfit) <= allowed,
		ResidualGap:    input.TargetProfit - projected,
	}
	set.ProjectedProfit = round2(projected)
	set.ProfitIncrease = round2(projected - currentProfit)
	if currentProfit != 0 {
		set.PercentIncrease = round2((projected - currentProfit) / currentProfit * 100)
	}

	for i, state := range states {
		newMult := round2(state.newMult)
		newGross := round1(state.newGross)
		marginChange := newGross - state.analysis.Markup.GrossProfitPct

		set.Tiers[i] = RecommendationTier{
			TierAnalysis:      state.analysis,
			NewMultiplier:     newMult,
			NewGrossProfitPct: newGross,
			MultiplierChange:  newMult - state.original,
			MarginChange:      marginChange,
			ProjectedProfit:   round2(state.projected),
			IsLocked:          state.locked,
			ImpactScore:       math.Abs(marginChange) * state.analysis.RevenueShare / 100,
		}
	}
	return set
}

// canRaise reports whether Phase B may push the tier higher: false once the
// tier sits at its 1.5x raise cap or the 95% gross ceiling.
func (s *tierState) canRaise() bool {
	if s.newGross >= grossCeiling {
		return false
	}
	return s.newMult < s.original*maxRaise
}

// canLower reports whether Phase B may pull the tier back toward its matrix
// multiplier. Recommendations never drop below the original value.
func (s *tierState) canLower() bool {
	return s.newMult > s.original
}

// capMultiplier clamps a candidate multiplier to [original, original*1.5],
// then applies the gross ceiling: anything implying more than 95% gross is
// pinned to exactly 20.0.
func capMultiplier(original, candidate float64) (float64, float64) {
	if candidate < original {
		candidate = original
	}
	if max := original * maxRaise; candidate > max {
		candidate = max
	}
	gross := 0.0
	if candidate > 0 {
		gross = 100 * (1 - 1/candidate)
	}
	if gross > grossCeiling {
		return grossCeilingMult, grossCeiling
	}
	return candidate, gross
}

// projectProfit estimates the tier's profit under its new multiplier. The
// projection scales the tier's actual realized sales multiplier by the
// new-to-original matrix ratio instead of trusting the matrix value, since
// observed sell-through usually differs from the nominal multiplier.
func projectProfit(s tierState) float64 {
	ratio := 1.0
	if s.original > 0 {
		ratio = s.newMult / s.original
	}
	return s.analysis.TotalCost*s.actualMult*ratio - s.analysis.TotalCost
}

func sumProjected(states []tierState) float64 {
	var total float64
	for _, state := range states {
		total += state.projected
	}
	return total
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
