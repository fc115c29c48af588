package ingest

import "strings"

// headerScanWindow bounds how many non-blank lines are considered when
// hunting for the header row.
const headerScanWindow = 10

// Column aliases, in priority order. Matching is case-insensitive and
// substring-tolerant so that "Unit Cost ($)" or "ExtPrice" still map. These
// lists must be reproduced exactly for compatibility with existing
// shop-management exports.
var (
	unitCostAliases    = []string{"unit cost", "buy price", "cost", "unitcost"}
	unitRetailAliases  = []string{"unit retail", "sell price", "retail", "unitretail", "price"}
	qtyAliases         = []string{"qty", "quantity", "sold"}
	totalCostAliases   = []string{"total cost", "ext cost"}
	totalRetailAliases = []string{"total retail", "ext price", "ext revenue", "amount", "revenue"}
)

var headerMarkers = []string{"cost", "price", "qty", "total"}

// ColumnMap holds the resolved column index for each recognized field.
// An index of -1 means the column is absent from the file.
type ColumnMap struct {
	UnitCost    int
	UnitRetail  int
	Qty         int
	TotalCost   int
	TotalRetail int
}

// maxIndex returns the highest mapped column index; rows shorter than this
// cannot be parsed.
func (c ColumnMap) maxIndex() int {
	max := -1
	for _, idx := range []int{c.UnitCost, c.UnitRetail, c.Qty, c.TotalCost, c.TotalRetail} {
		if idx > max {
			max = idx
		}
	}
	return max
}

// Detected lists the mapped column names for audit records.
func (c ColumnMap) Detected() []string {
	detected := []string{}
	if c.UnitCost >= 0 {
		detected = append(detected, "unit_cost")
	}
	if c.UnitRetail >= 0 {
		detected = append(detected, "unit_retail")
	}
	if c.Qty >= 0 {
		detected = append(detected, "qty")
	}
	if c.TotalCost >= 0 {
		detected = append(detected, "total_cost")
	}
	if c.TotalRetail >= 0 {
		detected = append(detected, "total_retail")
	}
	return detected
}

// findHeaderLine scans up to the first headerScanWindow non-blank lines and
// returns the index of the first one containing a header marker, or -1.
func findHeaderLine(lines []string) int {
	scanned := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		scanned++
		if scanned > headerScanWindow {
			return -1
		}
		lowered := strings.ToLower(line)
		for _, marker := range headerMarkers {
			if strings.Contains(lowered, marker) {
				return i
			}
		}
	}
	return -1
}

// mapColumns resolves the recognized aliases against the header fields.
func mapColumns(headerFields []string) ColumnMap {
	normalized := make([]string, len(headerFields))
	for i, field := range headerFields {
		normalized[i] = strings.ToLower(strings.TrimSpace(field))
	}
	return ColumnMap{
		UnitCost:    matchColumn(normalized, unitCostAliases),
		UnitRetail:  matchColumn(normalized, unitRetailAliases),
		Qty:         matchColumn(normalized, qtyAliases),
		TotalCost:   matchColumn(normalized, totalCostAliases),
		TotalRetail: matchColumn(normalized, totalRetailAliases),
	}
}

func matchColumn(headers []string, aliases []string) int {
	for _, alias := range aliases {
		for idx, header := range headers {
			if strings.Contains(header, alias) {
				return idx
			}
		}
	}
	return -1
}
