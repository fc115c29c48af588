package pricing

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Matrix bounds. Multiplier limits match the pricing_tiers CHECK constraints.
const (
	MinTiers      = 2
	MaxTiers      = 10
	MinMultiplier = 1.01
	MaxMultiplier = 20.0
)

// Matrix is a named set of cost tiers. Tiers are kept sorted by MinCost with
// contiguous 1-based positions; mutate through the service so Normalize and
// Validate always run before persistence.
type Matrix struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Tiers []Tier    `json:"tiers"`
}

// Normalize sorts tiers by MinCost and renumbers positions from 1.
func (m *Matrix) Normalize() {
	sort.SliceStable(m.Tiers, func(i, j int) bool {
		return m.Tiers[i].MinCost < m.Tiers[j].MinCost
	})
	for i := range m.Tiers {
		m.Tiers[i].Position = i + 1
	}
}

// Validate checks the matrix against tier-count and per-tier bounds,
// accumulating every violation rather than stopping at the first.
func (m *Matrix) Validate() error {
	var errs error
	if m.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("matrix name required"))
	}
	if len(m.Tiers) < MinTiers {
		errs = multierr.Append(errs, fmt.Errorf("matrix needs at least %d tiers, got %d", MinTiers, len(m.Tiers)))
	}
	if len(m.Tiers) > MaxTiers {
		errs = multierr.Append(errs, fmt.Errorf("matrix allows at most %d tiers, got %d", MaxTiers, len(m.Tiers)))
	}
	for i, tier := range m.Tiers {
		if tier.Position != i+1 {
			errs = multierr.Append(errs, fmt.Errorf("tier %d: position %d out of sequence", i+1, tier.Position))
		}
		errs = multierr.Append(errs, validateTier(tier))
	}
	return errs
}

func validateTier(t Tier) error {
	var errs error
	if t.MinCost < 0 {
		errs = multierr.Append(errs, fmt.Errorf("tier %d: min cost %.2f is negative", t.Position, t.MinCost))
	}
	if t.MaxCost != nil && *t.MaxCost <= t.MinCost {
		errs = multierr.Append(errs, fmt.Errorf("tier %d: max cost %.2f must exceed min cost %.2f", t.Position, *t.MaxCost, t.MinCost))
	}
	if t.Markup.Multiplier < MinMultiplier || t.Markup.Multiplier > MaxMultiplier {
		errs = multierr.Append(errs, fmt.Errorf("tier %d: multiplier %.4f outside [%.2f, %.2f]", t.Position, t.Markup.Multiplier, MinMultiplier, MaxMultiplier))
	}
	return errs
}

// TierFor returns the first tier whose band contains the unit cost. Records
// that land in a coverage gap match nothing and stay unclassified.
func (m *Matrix) TierFor(unitCost float64) (Tier, bool) {
	for _, tier := range m.Tiers {
		if tier.Contains(unitCost) {
			return tier, true
		}
	}
	return Tier{}, false
}

// CoverageWarnings reports gaps and overlaps between adjacent bands. Both
// are legal (unmatched records are just left unclassified) but usually
// unintended, so callers log them.
func (m *Matrix) CoverageWarnings() []string {
	var warnings []string
	for i := 1; i < len(m.Tiers); i++ {
		prev, cur := m.Tiers[i-1], m.Tiers[i]
		if prev.MaxCost == nil {
			warnings = append(warnings, fmt.Sprintf("tier %d is open-ended but tier %d follows it", prev.Position, cur.Position))
			continue
		}
		if cur.MinCost > *prev.MaxCost {
			warnings = append(warnings, fmt.Sprintf("gap between tier %d (%s) and tier %d (%s)", prev.Position, prev.Label(), cur.Position, cur.Label()))
		}
		if cur.MinCost < *prev.MaxCost {
			warnings = append(warnings, fmt.Sprintf("tier %d (%s) overlaps tier %d (%s)", cur.Position, cur.Label(), prev.Position, prev.Label()))
		}
	}
	return warnings
}

// DefaultTiers is the seven-band seed used for new accounts: aggressive
// multipliers on cheap parts tapering toward the open-ended top band.
func DefaultTiers() []Tier {
	bands := []struct {
		min, max float64
		open     bool
		mult     float64
	}{
		{0, 5, false, 4.0},
		{5, 10, false, 3.33},
		{10, 25, false, 2.86},
		{25, 50, false, 2.5},
		{50, 100, false, 2.22},
		{100, 200, false, 2.0},
		{200, 0, true, 1.82},
	}

	tiers := make([]Tier, 0, len(bands))
	for i, b := range bands {
		tier := Tier{
			Position: i + 1,
			MinCost:  b.min,
			Markup:   MarkupFromMultiplier(b.mult),
		}
		if !b.open {
			max := b.max
			tier.MaxCost = &max
		}
		tiers = append(tiers, tier)
	}
	return tiers
}
