package style

import (
	"errors"
	"math"
	"strings"
)

// BoxSpec is the background styling of a container element.
type BoxSpec struct {
	Background   RGBA
	CornerRadius int64 // EMU
	Shadow       Shadow
}

// Visible reports whether the box paints anything of its own.
func (b BoxSpec) Visible() bool {
	return !b.Background.IsTransparent() || b.Shadow.Visible
}

// Shadow is a single outer shadow reduced to what the output format can
// express: an offset given as distance and direction, and a blur radius.
type Shadow struct {
	Visible   bool
	Distance  int64 // EMU
	Direction int   // degrees, 0 = right, clockwise
	Blur      int64 // EMU
	Color     RGBA
}

// MapBoxStyle derives a BoxSpec from computed style for an element of the
// given size in pixels. Like MapFontStyle it always returns a usable spec.
func (c Config) MapBoxStyle(cs ComputedStyle, widthPx, heightPx float64) (BoxSpec, error) {
	var errs []error
	var spec BoxSpec

	if cs.BackgroundColor != "" {
		bg, err := ParseColor(cs.BackgroundColor)
		if err != nil {
			errs = append(errs, err)
		} else {
			spec.Background = bg
		}
	}

	radius, err := c.cornerRadius(cs.BorderRadius, widthPx, heightPx)
	if err != nil {
		errs = append(errs, err)
	}
	spec.CornerRadius = radius

	shadow, err := c.parseShadow(cs.BoxShadow)
	if err != nil {
		errs = append(errs, err)
	}
	spec.Shadow = shadow

	return spec, errors.Join(errs...)
}

// cornerRadius resolves the first border-radius component, clamped to half
// the shorter side as browsers do.
func (c Config) cornerRadius(value string, widthPx, heightPx float64) (int64, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, nil
	}
	r, percent, err := parseLength(fields[0])
	if err != nil {
		return 0, err
	}
	short := math.Min(widthPx, heightPx)
	if percent {
		r = short * r / 100
	}
	if limit := short / 2; r > limit {
		r = limit
	}
	return c.PixelsToEMU(r), nil
}

// parseShadow reads the first outer layer of a computed box-shadow such as
// "rgba(0, 0, 0, 0.1) 0px 4px 6px -1px". Inset shadows are dropped.
func (c Config) parseShadow(value string) (Shadow, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "none") {
		return Shadow{}, nil
	}

	for _, layer := range splitTopLevel(v, ',') {
		tokens := splitTopLevel(strings.TrimSpace(layer), ' ')

		var lengths []float64
		color := Black
		inset := false
		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			if strings.EqualFold(tok, "inset") {
				inset = true
				continue
			}
			if n, _, err := parseLength(tok); err == nil && startsNumeric(tok) {
				lengths = append(lengths, n)
				continue
			}
			col, err := ParseColor(tok)
			if err != nil {
				return Shadow{}, err
			}
			color = col
		}
		if inset || len(lengths) < 2 {
			continue
		}

		ox, oy := lengths[0], lengths[1]
		blur := 0.0
		if len(lengths) > 2 {
			blur = lengths[2]
		}

		dir := math.Atan2(oy, ox) * 180 / math.Pi
		deg := (int(math.Round(dir))%360 + 360) % 360

		return Shadow{
			Visible:   !color.IsTransparent(),
			Distance:  c.PixelsToEMU(math.Hypot(ox, oy)),
			Direction: deg,
			Blur:      c.PixelsToEMU(blur),
			Color:     color,
		}, nil
	}
	return Shadow{}, nil
}

func startsNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	switch tok[0] {
	case '-', '+', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return false
}

// splitTopLevel splits s on sep, ignoring separators inside parentheses.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + len(string(sep))
			}
		}
	}
	return append(parts, s[start:])
}
