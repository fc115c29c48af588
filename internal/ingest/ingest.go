package ingest

import (
	"math"
	"strings"

	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
)

// Ingestion-fatal failures. Each aborts the run with no partial record set;
// row-level problems degrade to skip counts instead.
var (
	ErrNoHeaderFound = pkgerrors.New(pkgerrors.CodeValidation, "no header row found in the first 10 lines").
				WithDetails(map[string]any{"reason": "no_header_found"})
	ErrNoCostColumn = pkgerrors.New(pkgerrors.CodeValidation, "no unit cost column detected in header").
			WithDetails(map[string]any{"reason": "no_cost_column"})
	ErrNoValidRows = pkgerrors.New(pkgerrors.CodeValidation, "no valid rows found in file").
			WithDetails(map[string]any{"reason": "no_valid_rows"})
)

// PartRecord is one reconciled sales line. unitCost is always positive;
// zero-cost lines such as warranty items are dropped during ingestion.
type PartRecord struct {
	UnitCost    float64
	UnitRetail  float64
	Qty         float64
	TotalCost   float64
	TotalRetail float64
}

// Result carries the surviving records plus the skip accounting and the
// detected column layout for the audit trail.
type Result struct {
	Records      []PartRecord
	SkippedCount int
	Columns      ColumnMap
}

// Ingest tokenizes raw CSV text into part records. The header row is located
// heuristically, columns are mapped by alias, and per-row totals are
// reconciled against unit price times quantity.
func Ingest(raw string) (*Result, error) {
	lines := strings.Split(raw, "\n")
	// A final newline is a terminator, not a blank row to count.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	headerIdx := findHeaderLine(lines)
	if headerIdx < 0 {
		return nil, ErrNoHeaderFound
	}

	columns := mapColumns(splitFields(lines[headerIdx]))
	if columns.UnitCost < 0 {
		return nil, ErrNoCostColumn
	}
	maxIdx := columns.maxIndex()

	result := &Result{Columns: columns}
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			result.SkippedCount++
			continue
		}

		fields := splitFields(line)
		if len(fields) <= maxIdx {
			result.SkippedCount++
			continue
		}

		unitCost := ParseAmount(fields[columns.UnitCost])
		if unitCost <= 0 {
			result.SkippedCount++
			continue
		}

		unitRetail := 0.0
		if columns.UnitRetail >= 0 {
			unitRetail = ParseAmount(fields[columns.UnitRetail])
		}

		// Quantity passes through the currency parser too, so formatted
		// counts like "1,024" are tolerated.
		qty := 1.0
		if columns.Qty >= 0 {
			qty = ParseAmount(fields[columns.Qty])
		}

		calculatedCost := unitCost * qty
		calculatedRetail := unitRetail * qty

		totalCost := calculatedCost
		if columns.TotalCost >= 0 {
			totalCost = reconcileTotal(ParseAmount(fields[columns.TotalCost]), calculatedCost)
		}
		totalRetail := calculatedRetail
		if columns.TotalRetail >= 0 {
			totalRetail = reconcileTotal(ParseAmount(fields[columns.TotalRetail]), calculatedRetail)
		}

		result.Records = append(result.Records, PartRecord{
			UnitCost:    unitCost,
			UnitRetail:  unitRetail,
			Qty:         qty,
			TotalCost:   totalCost,
			TotalRetail: totalRetail,
		})
	}

	if len(result.Records) == 0 {
		return nil, ErrNoValidRows
	}
	return result, nil
}

// reconcileTotal decides between a file-provided line total and the
// calculated unit-times-qty value. The file total wins when it is material
// (> 0.01) and within 50% of the calculation; a wider divergence is treated
// as implausible. When the calculation itself is zero there is nothing to
// compare against, so the file value is discarded.
func reconcileTotal(fileValue, calculated float64) float64 {
	if fileValue <= 0.01 {
		return calculated
	}
	if calculated <= 0 {
		return calculated
	}
	if math.Abs(fileValue-calculated)/calculated < 0.5 {
		return fileValue
	}
	return calculated
}
