package style

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// FontSpec is the text styling applied to one text shape.
type FontSpec struct {
	Family string
	SizePt float64
	Weight int
	Bold   bool
	Italic bool
	Color  RGBA
}

// Weight keywords as resolved by CSS.
const (
	weightLighter = 100
	weightNormal  = 400
	weightBold    = 700
	weightBolder  = 900
)

var genericFamilies = map[string]bool{
	"serif":         true,
	"sans-serif":    true,
	"monospace":     true,
	"cursive":       true,
	"fantasy":       true,
	"system-ui":     true,
	"ui-sans-serif": true,
	"ui-serif":      true,
	"ui-monospace":  true,
	"-apple-system": true,
}

// MapFontStyle derives a FontSpec from computed style. The returned spec is
// always usable: on a parse problem it carries a fallback value and the
// problem is reported through the error for the caller to log.
func (c Config) MapFontStyle(cs ComputedStyle) (FontSpec, error) {
	var errs []error

	spec := FontSpec{
		Family: c.fontFamily(cs.FontFamily),
		Weight: ParseWeight(cs.FontWeight),
		Color:  Black,
	}
	spec.Bold = spec.Weight >= c.BoldWeight

	switch strings.ToLower(strings.TrimSpace(cs.FontStyle)) {
	case "italic", "oblique":
		spec.Italic = true
	}

	px, _, err := parseLength(cs.FontSize)
	if err != nil {
		errs = append(errs, err)
	}
	spec.SizePt = math.Round(c.PixelsToPoints(px)*100) / 100

	if cs.Color != "" {
		col, err := ParseColor(cs.Color)
		if err != nil {
			errs = append(errs, err)
		} else {
			spec.Color = col
		}
	}

	return spec, errors.Join(errs...)
}

// fontFamily returns the first family of a CSS font-family list, unquoted.
func (c Config) fontFamily(list string) string {
	first, _, _ := strings.Cut(list, ",")
	first = strings.Trim(strings.TrimSpace(first), `"'`)
	if first == "" || genericFamilies[strings.ToLower(first)] {
		return c.DefaultFontFamily
	}
	return first
}

// ParseWeight maps a numeric or keyword CSS font-weight to a number.
// Unknown values are treated as normal.
func ParseWeight(s string) int {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "bold":
		return weightBold
	case "bolder":
		return weightBolder
	case "lighter":
		return weightLighter
	case "", "normal":
		return weightNormal
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		return weightNormal
	}
	return int(n)
}
