package enums

import "fmt"

// TargetKind represents how a profit target is expressed.
type TargetKind string

const (
	TargetKindPercent TargetKind = "percent"
	TargetKindMargin  TargetKind = "margin"
	TargetKindDollar  TargetKind = "dollar"
)

var validTargetKinds = []TargetKind{
	TargetKindPercent,
	TargetKindMargin,
	TargetKindDollar,
}

// String implements fmt.Stringer.
func (k TargetKind) String() string {
	return string(k)
}

// IsValid reports whether the target kind is recognized.
func (k TargetKind) IsValid() bool {
	for _, candidate := range validTargetKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseTargetKind converts a raw string into a TargetKind.
func ParseTargetKind(value string) (TargetKind, error) {
	for _, candidate := range validTargetKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid target kind %q", value)
}
