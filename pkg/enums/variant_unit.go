package enums

import "fmt"

// VariantUnit defines the measurement unit a variant is sold in.
type VariantUnit string

const (
	VariantUnitGram       VariantUnit = "g"
	VariantUnitKilogram   VariantUnit = "kg"
	VariantUnitMilliliter VariantUnit = "ml"
	VariantUnitLiter      VariantUnit = "l"
	VariantUnitPiece      VariantUnit = "und"
)

var validVariantUnits = []VariantUnit{
	VariantUnitGram,
	VariantUnitKilogram,
	VariantUnitMilliliter,
	VariantUnitLiter,
	VariantUnitPiece,
}

// String implements fmt.Stringer.
func (u VariantUnit) String() string {
	return string(u)
}

// IsValid reports whether the value matches a known VariantUnit.
func (u VariantUnit) IsValid() bool {
	for _, candidate := range validVariantUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseVariantUnit converts raw input into a VariantUnit.
func ParseVariantUnit(value string) (VariantUnit, error) {
	for _, candidate := range validVariantUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variant unit %q", value)
}
