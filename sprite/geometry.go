// Package sprite maps the pixel geometry of an image packed into a sprite
// sheet to percentage based CSS background declarations.
//
// Percentages are relative to the element box, so the same declarations
// render the packed image correctly whatever size the element ends up with.
package sprite

import (
	"math"
	"strconv"
	"strings"
)

// Sheet describes a generated sprite sheet.
type Sheet struct {
	Width  int
	Height int
	URL    string
}

// Reference is a rectangle inside a sheet occupied by a single original image.
type Reference struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Property names of the produced declarations.
const (
	PropImage    = "background-image"
	PropPosition = "background-position"
	PropSize     = "background-size"
)

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// Declarations is the result of mapping a reference. Numeric fields keep
// percentages as computed, string fields are ready to be put into a
// stylesheet.
type Declarations struct {
	Image    string
	Position string
	Size     string

	SizeX     float64
	SizeY     float64
	PositionX float64
	PositionY float64
}

// Compute returns background declarations rendering ref out of sheet.
// Any ratio which is not a finite number (zero sized image, image as wide or
// as tall as the sheet itself) becomes 0 independently of the others.
func Compute(sheet Sheet, ref Reference) Declarations {
	d := Declarations{
		SizeX:     percent(sheet.Width, ref.Width),
		SizeY:     percent(sheet.Height, ref.Height),
		PositionX: percent(ref.X, sheet.Width-ref.Width),
		PositionY: percent(ref.Y, sheet.Height-ref.Height),
	}
	d.Image = "url(" + sheet.URL + ")"
	d.Size = FormatNumber(d.SizeX) + "% " + FormatNumber(d.SizeY) + "%"
	d.Position = FormatNumber(d.PositionX) + "% " + FormatNumber(d.PositionY) + "%"
	return d
}

// List returns declarations in the order they are inserted into a rule.
func (d Declarations) List() []Declaration {
	return []Declaration{
		{Property: PropImage, Value: d.Image},
		{Property: PropPosition, Value: d.Position},
		{Property: PropSize, Value: d.Size},
	}
}

func percent(num, den int) float64 {
	v := float64(num) / float64(den) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatNumber prints v as the shortest decimal representation which reads
// back to the same float64. Exponent notation is used only for magnitudes
// below 1e-6 or from 1e21 up, negative zero prints as "0".
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	if a := math.Abs(v); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + exp
}
