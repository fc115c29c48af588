package analysis

import (
	"fmt"

	"github.com/get2salam/price-matrix-demo/internal/pricing"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
)

// Ledger records a session's manual overrides: pinned tier multipliers and
// the profit target the first solve resolved. The target is stored once so
// that pinning tier A and then tier B both re-solve against the same goal
// instead of each pin deriving a new one from drifted numbers.
type Ledger struct {
	Locks        map[int]float64 `json:"locks"`
	TargetProfit *float64        `json:"target_profit,omitempty"`
}

// NewLedger returns an empty ledger.
func NewLedger() Ledger {
	return Ledger{Locks: make(map[int]float64)}
}

// Pin stores a multiplier lock for the tier at position. A value outside
// [1.01, 20] is rejected and the ledger is left untouched.
func (l *Ledger) Pin(position int, multiplier float64) error {
	if multiplier < pricing.MinMultiplier || multiplier > pricing.MaxMultiplier {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("pinned multiplier must be between %.2f and %.2f", pricing.MinMultiplier, pricing.MaxMultiplier))
	}
	if l.Locks == nil {
		l.Locks = make(map[int]float64)
	}
	l.Locks[position] = multiplier
	return nil
}

// ResetAll clears every lock and the stored target. The next solve resolves
// its target fresh from the session's TargetSpec.
func (l *Ledger) ResetAll() {
	l.Locks = make(map[int]float64)
	l.TargetProfit = nil
}

// SetTarget records the resolved target for reuse by later pins.
func (l *Ledger) SetTarget(target float64) {
	l.TargetProfit = &target
}

// Target returns the stored target, if one has been resolved.
func (l *Ledger) Target() (float64, bool) {
	if l.TargetProfit == nil {
		return 0, false
	}
	return *l.TargetProfit, true
}
