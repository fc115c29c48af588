package ingest

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestIngestHeaderScanWithPreamble(t *testing.T) {
	raw := strings.Join([]string{
		"Reliable Auto Parts",
		"Sales History Export",
		"Part Name,Unit Cost,Unit Retail,Qty,Total Cost,Total Retail",
		"Oil Filter,3.25,12.99,10,32.50,129.90",
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if result.SkippedCount != 0 {
		t.Fatalf("expected 0 skipped, got %d", result.SkippedCount)
	}

	rec := result.Records[0]
	if rec.UnitCost != 3.25 {
		t.Fatalf("expected unitCost 3.25, got %v", rec.UnitCost)
	}
	if math.Abs(rec.TotalRetail-129.90) > 1e-9 {
		t.Fatalf("expected totalRetail 129.90, got %v", rec.TotalRetail)
	}
	if rec.Qty != 10 {
		t.Fatalf("expected qty 10, got %v", rec.Qty)
	}
}

func TestIngestNoHeaderFound(t *testing.T) {
	raw := "hello\nworld\nnothing tabular here"
	_, err := Ingest(raw)
	if !errors.Is(err, ErrNoHeaderFound) {
		t.Fatalf("expected ErrNoHeaderFound, got %v", err)
	}
}

func TestIngestHeaderOutsideScanWindow(t *testing.T) {
	lines := make([]string, 0, 12)
	for i := 0; i < 10; i++ {
		lines = append(lines, "preamble junk")
	}
	lines = append(lines, "Part Name,Unit Cost", "Widget,1.00")
	_, err := Ingest(strings.Join(lines, "\n"))
	if !errors.Is(err, ErrNoHeaderFound) {
		t.Fatalf("expected ErrNoHeaderFound beyond scan window, got %v", err)
	}
}

func TestIngestNoCostColumn(t *testing.T) {
	raw := strings.Join([]string{
		"Part Name,Qty,Amount",
		"Oil Filter,10,129.90",
	}, "\n")

	result, err := Ingest(raw)
	if !errors.Is(err, ErrNoCostColumn) {
		t.Fatalf("expected ErrNoCostColumn, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected no partial result, got %+v", result)
	}
}

func TestIngestNoValidRows(t *testing.T) {
	raw := strings.Join([]string{
		"Part Name,Unit Cost,Qty",
		"Warranty,0.00,1",
		"Freebie,-2.00,1",
	}, "\n")

	_, err := Ingest(raw)
	if !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("expected ErrNoValidRows, got %v", err)
	}
}

func TestIngestReconciliationBoundaries(t *testing.T) {
	// unit cost 10 x qty 10 calculates to 100. A file total 40% away is
	// trusted; 60% away is discarded in favor of the calculation.
	raw := strings.Join([]string{
		"Part Name,Unit Cost,Qty,Total Cost",
		"Brake Pad,10.00,10,140.00",
		"Rotor,10.00,10,160.00",
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if got := result.Records[0].TotalCost; got != 140.00 {
		t.Fatalf("40%% divergence should trust the file total, got %v", got)
	}
	if got := result.Records[1].TotalCost; got != 100.00 {
		t.Fatalf("60%% divergence should fall back to calculated, got %v", got)
	}
}

func TestIngestReconciliationAppliesToRetailIndependently(t *testing.T) {
	raw := strings.Join([]string{
		"Part,Unit Cost,Unit Retail,Qty,Total Cost,Total Retail",
		"Hose,5.00,20.00,2,14.00,100.00",
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	rec := result.Records[0]
	// cost: calc 10, file 14 (40% off) trusted; retail: calc 40, file 100
	// (150% off) discarded.
	if rec.TotalCost != 14.00 {
		t.Fatalf("expected trusted total cost 14.00, got %v", rec.TotalCost)
	}
	if rec.TotalRetail != 40.00 {
		t.Fatalf("expected calculated total retail 40.00, got %v", rec.TotalRetail)
	}
}

func TestIngestSkipAccounting(t *testing.T) {
	raw := strings.Join([]string{
		"Part Name,Unit Cost,Unit Retail,Qty",
		"Filter,3.25,12.99,10",
		"Warranty,0.00,25.00,1",
		"short row",
		"Spark Plug,1.10,4.49,40",
		"Wiper,6.80,19.99,6",
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 surviving records, got %d", len(result.Records))
	}
	if result.SkippedCount != 2 {
		t.Fatalf("expected skippedCount 2, got %d", result.SkippedCount)
	}
}

func TestIngestTrailingNewlineIsNotASkip(t *testing.T) {
	raw := "Part Name,Unit Cost\r\nFilter,3.25\r\n"

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if result.SkippedCount != 0 {
		t.Fatalf("expected skippedCount 0, got %d", result.SkippedCount)
	}
}

func TestIngestBlankRowsCountAsSkipped(t *testing.T) {
	raw := strings.Join([]string{
		"Part Name,Unit Cost",
		"Filter,3.25",
		"   ",
		"Plug,1.10",
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if result.SkippedCount != 1 {
		t.Fatalf("expected skippedCount 1, got %d", result.SkippedCount)
	}
}

func TestIngestDefaultsWhenOptionalColumnsAbsent(t *testing.T) {
	raw := strings.Join([]string{
		"Part Name,Unit Cost",
		"Filter,3.25",
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	rec := result.Records[0]
	if rec.Qty != 1 {
		t.Fatalf("expected default qty 1, got %v", rec.Qty)
	}
	if rec.UnitRetail != 0 {
		t.Fatalf("expected unitRetail 0, got %v", rec.UnitRetail)
	}
	if rec.TotalCost != 3.25 {
		t.Fatalf("expected totalCost 3.25, got %v", rec.TotalCost)
	}
	if rec.TotalRetail != 0 {
		t.Fatalf("expected totalRetail 0, got %v", rec.TotalRetail)
	}
}

func TestIngestQuotedNamesAndFormattedQty(t *testing.T) {
	raw := strings.Join([]string{
		"Part Name,Unit Cost,Qty",
		`"Filter, Oil",3.25,"1,024"`,
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	rec := result.Records[0]
	if rec.Qty != 1024 {
		t.Fatalf("expected qty 1024, got %v", rec.Qty)
	}
	if rec.TotalCost != 3.25*1024 {
		t.Fatalf("expected totalCost %v, got %v", 3.25*1024, rec.TotalCost)
	}
}

func TestIngestDetectedColumns(t *testing.T) {
	raw := strings.Join([]string{
		"Part Name,Unit Cost,Qty",
		"Filter,3.25,2",
	}, "\n")

	result, err := Ingest(raw)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	detected := result.Columns.Detected()
	want := []string{"unit_cost", "qty"}
	if len(detected) != len(want) {
		t.Fatalf("expected detected %v, got %v", want, detected)
	}
	for i := range want {
		if detected[i] != want[i] {
			t.Fatalf("expected detected %v, got %v", want, detected)
		}
	}
}
