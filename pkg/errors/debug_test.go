package errors

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestDumpFlattensChain(t *testing.T) {
	inner := New(CodeDependency, "redis down")
	err := fmt.Errorf("store session: %w", inner)

	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("code = %s", d.Code)
	}
	if d.TopMessage != "store session: DEPENDENCY_ERROR: redis down" {
		t.Fatalf("top message = %q", d.TopMessage)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(d.Chain))
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23505",
		Constraint: "idx_tier_matrices_name",
		Table:      "tier_matrices",
		Message:    "duplicate key value violates unique constraint",
	}
	d := Dump(Wrap(CodeConflict, pqErr, "insert matrix"))

	if d.PGCode != "23505" {
		t.Fatalf("pg code = %q", d.PGCode)
	}
	if d.PGConstraint != "idx_tier_matrices_name" || d.PGTable != "tier_matrices" {
		t.Fatalf("pg fields = %q/%q", d.PGConstraint, d.PGTable)
	}
}

func TestDumpNilError(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("nil dump not empty: %+v", d)
	}
}
