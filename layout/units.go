package layout

import (
	"strconv"
	"strings"
)

// This file defines units for lengths written in style sheets.
// Layout coordinates are pixels; every other unit converts to pixels at 96 DPI.

// Unit is the unit a length was written in.
type Unit int

const (
	UnitPX Unit = iota // pixels, also used for bare numbers
	UnitPT             // points
	UnitMM             // millimeters
	UnitCM             // centimeters
	UnitIN             // inches
)

// Conversion constants between pt, mm and px.
const (
	PtToMm  = 25.4 / 72
	MmToPt  = 72 / 25.4
	PxPerIn = 96.0
	PxPerPt = PxPerIn / 72
	PxPerMm = PxPerIn / 25.4
)

// String returns the short suffix for a Unit value.
func (u Unit) String() string {
	switch u {
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	default:
		return "px"
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Pixels converts the length to layout units.
func (l Length) Pixels() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PxPerPt
	case UnitMM:
		return l.Value * PxPerMm
	case UnitCM:
		return l.Value * 10 * PxPerMm
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// ParseLength parses strings such as "12", "12px", "9pt" or "4mm".
// ok is false for empty or malformed input.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitPX
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
