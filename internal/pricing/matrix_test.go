package pricing

import (
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func ptr(v float64) *float64 { return &v }

func twoTierMatrix() *Matrix {
	return &Matrix{
		Name: "Shop Default",
		Tiers: []Tier{
			{Position: 1, MinCost: 0, MaxCost: ptr(10), Markup: MarkupFromMultiplier(3.0)},
			{Position: 2, MinCost: 10, Markup: MarkupFromMultiplier(2.0)},
		},
	}
}

func TestDefaultTiersSeed(t *testing.T) {
	matrix := &Matrix{Name: "Seed", Tiers: DefaultTiers()}
	if err := matrix.Validate(); err != nil {
		t.Fatalf("seed matrix should validate, got %v", err)
	}
	if len(matrix.Tiers) != 7 {
		t.Fatalf("expected 7 seed tiers, got %d", len(matrix.Tiers))
	}

	first := matrix.Tiers[0]
	if first.MinCost != 0 || first.MaxCost == nil || *first.MaxCost != 5 || first.Markup.Multiplier != 4.0 {
		t.Fatalf("unexpected first band: %+v", first)
	}

	last := matrix.Tiers[6]
	if last.MinCost != 200 || last.MaxCost != nil || last.Markup.Multiplier != 1.82 {
		t.Fatalf("unexpected top band: %+v", last)
	}
	if last.Label() != "$200.00+" {
		t.Fatalf("top band label = %q", last.Label())
	}

	for i, tier := range matrix.Tiers {
		if tier.Position != i+1 {
			t.Fatalf("tier %d has position %d", i, tier.Position)
		}
	}
	if warnings := matrix.CoverageWarnings(); len(warnings) != 0 {
		t.Fatalf("seed matrix should have no coverage warnings, got %v", warnings)
	}
}

func TestNormalizeSortsAndRenumbers(t *testing.T) {
	matrix := &Matrix{
		Name: "Scrambled",
		Tiers: []Tier{
			{Position: 9, MinCost: 50, Markup: MarkupFromMultiplier(2.0)},
			{Position: 1, MinCost: 0, MaxCost: ptr(10), Markup: MarkupFromMultiplier(4.0)},
			{Position: 4, MinCost: 10, MaxCost: ptr(50), Markup: MarkupFromMultiplier(3.0)},
		},
	}
	matrix.Normalize()

	wantMins := []float64{0, 10, 50}
	for i, tier := range matrix.Tiers {
		if tier.Position != i+1 {
			t.Fatalf("tier %d position = %d", i, tier.Position)
		}
		if tier.MinCost != wantMins[i] {
			t.Fatalf("tier %d min = %v, want %v", i, tier.MinCost, wantMins[i])
		}
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	matrix := &Matrix{
		Tiers: []Tier{
			{Position: 1, MinCost: 20, MaxCost: ptr(5), Markup: MarkupFromMultiplier(25)},
		},
	}
	err := matrix.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	violations := multierr.Errors(err)
	if len(violations) < 4 {
		t.Fatalf("expected name, tier count, max-cost, and multiplier violations, got %d: %v", len(violations), err)
	}
	msg := err.Error()
	for _, want := range []string{"name required", "at least 2 tiers", "must exceed min cost", "outside"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateRejectsTooManyTiers(t *testing.T) {
	matrix := &Matrix{Name: "Crowded"}
	for i := 0; i < MaxTiers+1; i++ {
		min := float64(i * 10)
		max := min + 10
		matrix.Tiers = append(matrix.Tiers, Tier{
			Position: i + 1,
			MinCost:  min,
			MaxCost:  &max,
			Markup:   MarkupFromMultiplier(2.0),
		})
	}
	err := matrix.Validate()
	if err == nil || !strings.Contains(err.Error(), "at most 10 tiers") {
		t.Fatalf("expected tier-count violation, got %v", err)
	}
}

func TestTierForMatchesBands(t *testing.T) {
	matrix := &Matrix{Name: "Bands", Tiers: DefaultTiers()}

	cases := []struct {
		cost    float64
		wantPos int
		wantHit bool
	}{
		{cost: 0, wantPos: 1, wantHit: true},
		{cost: 5, wantPos: 1, wantHit: true},
		{cost: 5.01, wantPos: 2, wantHit: true},
		{cost: 150, wantPos: 6, wantHit: true},
		{cost: 10000, wantPos: 7, wantHit: true},
		{cost: -1, wantHit: false},
	}
	for _, tc := range cases {
		tier, ok := matrix.TierFor(tc.cost)
		if ok != tc.wantHit {
			t.Fatalf("cost %v: hit = %v, want %v", tc.cost, ok, tc.wantHit)
		}
		if ok && tier.Position != tc.wantPos {
			t.Fatalf("cost %v landed in tier %d, want %d", tc.cost, tier.Position, tc.wantPos)
		}
	}
}

func TestTierForGapLeavesUnclassified(t *testing.T) {
	matrix := &Matrix{
		Name: "Gappy",
		Tiers: []Tier{
			{Position: 1, MinCost: 0, MaxCost: ptr(10), Markup: MarkupFromMultiplier(3.0)},
			{Position: 2, MinCost: 15, Markup: MarkupFromMultiplier(2.0)},
		},
	}
	if _, ok := matrix.TierFor(12); ok {
		t.Fatal("cost in the 10-15 gap should not match any tier")
	}
	warnings := matrix.CoverageWarnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "gap") {
		t.Fatalf("expected one gap warning, got %v", warnings)
	}
}

func TestCoverageWarningsOverlapAndOpenEnded(t *testing.T) {
	matrix := &Matrix{
		Name: "Messy",
		Tiers: []Tier{
			{Position: 1, MinCost: 0, MaxCost: ptr(20), Markup: MarkupFromMultiplier(3.0)},
			{Position: 2, MinCost: 10, Markup: MarkupFromMultiplier(2.0)},
		},
	}
	warnings := matrix.CoverageWarnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "overlaps") {
		t.Fatalf("expected one overlap warning, got %v", warnings)
	}

	openMid := &Matrix{
		Name: "OpenMid",
		Tiers: []Tier{
			{Position: 1, MinCost: 0, Markup: MarkupFromMultiplier(3.0)},
			{Position: 2, MinCost: 10, Markup: MarkupFromMultiplier(2.0)},
		},
	}
	warnings = openMid.CoverageWarnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "open-ended") {
		t.Fatalf("expected open-ended warning, got %v", warnings)
	}
}

func TestTierLabel(t *testing.T) {
	tier := Tier{MinCost: 5, MaxCost: ptr(10)}
	if tier.Label() != "$5.00-$10.00" {
		t.Fatalf("label = %q", tier.Label())
	}
}
