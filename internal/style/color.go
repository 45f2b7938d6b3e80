package style

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// ErrUnsupportedColorFormat is returned for color strings that are not a
// CSS color or a transparent keyword.
var ErrUnsupportedColorFormat = errors.New("unsupported color format")

// RGBA is a parsed CSS color. Channels are 0-255, A is 0-1.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Transparent is the zero-alpha color.
var Transparent = RGBA{}

// Black is opaque black, the fallback text color.
var Black = RGBA{A: 1}

// White is opaque white, the backdrop used when flattening alpha.
var White = RGBA{R: 255, G: 255, B: 255, A: 1}

// IsTransparent reports whether the color has no visible coverage.
func (c RGBA) IsTransparent() bool {
	return c.A <= 0
}

// Over composites c over an opaque backdrop and returns an opaque color.
func (c RGBA) Over(backdrop RGBA) RGBA {
	a := clampUnit(c.A)
	mix := func(fg, bg uint8) uint8 {
		return uint8(math.Round(float64(fg)*a + float64(bg)*(1-a)))
	}
	return RGBA{
		R: mix(c.R, backdrop.R),
		G: mix(c.G, backdrop.G),
		B: mix(c.B, backdrop.B),
		A: 1,
	}
}

// Hex returns the color as RRGGBB, ignoring alpha.
func (c RGBA) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ARGB returns the color as AARRGGBB with alpha scaled to a byte.
func (c RGBA) ARGB() string {
	return fmt.Sprintf("%02X%s", uint8(math.Round(clampUnit(c.A)*255)), c.Hex())
}

// ParseColor parses a CSS color value as reported by getComputedStyle or
// written in a stylesheet: hex, rgb(), hsl(), hwb(), lab(), lch(), oklab(),
// oklch(), color(srgb ...) and named colors. Channels outside the sRGB gamut
// are clamped.
func ParseColor(s string) (RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return RGBA{}, fmt.Errorf("%w: empty value", ErrUnsupportedColorFormat)
	}

	switch v {
	case "transparent", "inherit", "initial", "unset", "currentcolor", "none":
		return Transparent, nil
	}

	if rgb, ok := srgbToRGB(v); ok {
		v = rgb
	}
	c, err := csscolorparser.Parse(v)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedColorFormat, s, err)
	}
	return RGBA{
		R: clampByte(c.R * 255),
		G: clampByte(c.G * 255),
		B: clampByte(c.B * 255),
		A: clampUnit(c.A),
	}, nil
}

// srgbToRGB rewrites color(srgb r g b [/ a]), the form Chrome keeps for
// colors authored in that space, as the equivalent rgb() percentages.
func srgbToRGB(v string) (string, bool) {
	body, ok := strings.CutPrefix(v, "color(srgb ")
	if !ok {
		return "", false
	}
	body, ok = strings.CutSuffix(body, ")")
	if !ok {
		return "", false
	}

	channels, alpha, _ := strings.Cut(body, "/")
	fields := strings.Fields(channels)
	if len(fields) != 3 {
		return "", false
	}
	for i, f := range fields {
		if strings.HasSuffix(f, "%") {
			continue
		}
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return "", false
		}
		fields[i] = strconv.FormatFloat(n*100, 'f', -1, 64) + "%"
	}

	out := "rgb(" + strings.Join(fields, " ")
	if a := strings.TrimSpace(alpha); a != "" {
		out += " / " + a
	}
	return out + ")", true
}

func clampByte(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(math.Round(f))
}

func clampUnit(f float64) float64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 1
	}
	return f
}
