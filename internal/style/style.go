// Package style translates CSS pixel geometry and computed style into the
// presentation's native units and text/shape attributes.
//
// Everything here is pure: functions take an immutable Config value and
// the raw strings reported by the browser, and never perform I/O.
package style

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit constants at the 96 DPI CSS convention.
const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700
	EMUPerPixel = EMUPerInch / 96 // 9525

	// PointsPerPixel converts CSS px to typographic points (72/96).
	PointsPerPixel = 0.75
)

// ErrUnsupportedLength is returned for CSS lengths in units other than px or %.
var ErrUnsupportedLength = errors.New("unsupported length")

// Config holds the translation constants. It is passed by value so
// concurrent workers never share mutable state.
type Config struct {
	EMUPerPixel       int64
	PointsPerPixel    float64
	DefaultFontFamily string
	BoldWeight        int
}

// DefaultConfig returns the 96 DPI translation used for 1280x720 decks.
func DefaultConfig() Config {
	return Config{
		EMUPerPixel:       EMUPerPixel,
		PointsPerPixel:    PointsPerPixel,
		DefaultFontFamily: "Calibri",
		BoldWeight:        700,
	}
}

// PixelsToEMU converts a CSS pixel length to EMU, truncating once.
// Negative and NaN lengths map to 0.
func (c Config) PixelsToEMU(px float64) int64 {
	if math.IsNaN(px) || px <= 0 {
		return 0
	}
	return int64(px * float64(c.EMUPerPixel))
}

// EMUToPixels converts EMU back to CSS pixels.
func (c Config) EMUToPixels(emu int64) float64 {
	return float64(emu) / float64(c.EMUPerPixel)
}

// PixelsToPoints converts a CSS pixel length to points.
func (c Config) PixelsToPoints(px float64) float64 {
	return px * c.PointsPerPixel
}

// ComputedStyle is the subset of getComputedStyle the converter reads.
type ComputedStyle struct {
	FontFamily      string `json:"fontFamily"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	FontStyle       string `json:"fontStyle"`
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	BorderRadius    string `json:"borderRadius"`
	BoxShadow       string `json:"boxShadow"`
	TextAlign       string `json:"textAlign"`
}

// Align is a horizontal text alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// MapAlign maps a CSS text-align value. Unknown values are left aligned.
func MapAlign(textAlign string) Align {
	switch strings.ToLower(strings.TrimSpace(textAlign)) {
	case "center", "-webkit-center":
		return AlignCenter
	case "right", "end", "-webkit-right":
		return AlignRight
	case "justify":
		return AlignJustify
	default:
		return AlignLeft
	}
}

// parseLength parses "12px", "12", or "50%". The percent flag is set for
// percentages so callers can resolve them against a reference box.
func parseLength(s string) (value float64, percent bool, err error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == "none" || v == "normal" {
		return 0, false, nil
	}
	if num, ok := strings.CutSuffix(v, "px"); ok {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %q", ErrUnsupportedLength, s)
		}
		return f, false, nil
	}
	if num, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %q", ErrUnsupportedLength, s)
		}
		return f, true, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrUnsupportedLength, s)
	}
	return f, false, nil
}
