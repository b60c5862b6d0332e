package layout

import (
	"math"
	"strconv"
)

// Unit is a CSS length unit.
type Unit string

// Units used by the layout profiles.
const (
	Inch       Unit = "in"
	Millimeter Unit = "mm"
	Point      Unit = "pt"
	Em         Unit = "em"
)

const (
	mmPerInch = 25.4
	ptPerInch = 72.0
)

// Length is a measurement with an explicit unit.
type Length struct {
	Value float64
	Unit  Unit
}

// In returns a length in inches.
func In(v float64) Length { return Length{Value: v, Unit: Inch} }

// MM returns a length in millimeters.
func MM(v float64) Length { return Length{Value: v, Unit: Millimeter} }

// Pt returns a length in points.
func Pt(v float64) Length { return Length{Value: v, Unit: Point} }

// EmOf returns a length relative to the current font size.
func EmOf(v float64) Length { return Length{Value: v, Unit: Em} }

// IsZero reports whether the length has no extent.
func (l Length) IsZero() bool {
	return l.Value == 0
}

// Inches converts an absolute length to inches.
// Relative (em) lengths have no physical size and return 0.
func (l Length) Inches() float64 {
	switch l.Unit {
	case Inch:
		return l.Value
	case Millimeter:
		return l.Value / mmPerInch
	case Point:
		return l.Value / ptPerInch
	}
	return 0
}

// Scale multiplies the length, rounding to hundredths of the unit so the
// CSS output stays stable.
func (l Length) Scale(factor float64) Length {
	return Length{Value: math.Round(l.Value*factor*100) / 100, Unit: l.Unit}
}

// String formats the length as a CSS value, e.g. "10.5pt" or "0".
func (l Length) String() string {
	if l.Value == 0 {
		return "0"
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + string(l.Unit)
}
