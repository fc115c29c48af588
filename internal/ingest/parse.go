package ingest

import (
	"strconv"
	"strings"
)

// ParseAmount extracts a numeric value from a messy currency token. Every
// character that is not a digit, decimal point, or minus sign is stripped
// before parsing. Empty or unparsable input degrades to 0 rather than
// erroring; shop-export CSVs are assumed dirty.
func ParseAmount(token string) float64 {
	var b strings.Builder
	for _, r := range token {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// splitFields tokenizes one CSV line. Fields wrapped in double quotes may
// contain commas, and a doubled quote inside a quoted field yields a literal
// quote. Fields are trimmed of surrounding whitespace.
func splitFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}
