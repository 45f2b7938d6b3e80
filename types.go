package html2pptx

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-html2pptx/internal/extract"
)

// BackgroundMode selects how slide backgrounds are reproduced.
type BackgroundMode string

const (
	// BackgroundSnapshot places a full-slide picture of the rendered
	// background with all text hidden. Gradients and images survive.
	BackgroundSnapshot BackgroundMode = "snapshot"
	// BackgroundShapes draws the slide colour and container boxes as native
	// filled shapes, which stay editable.
	BackgroundShapes BackgroundMode = "shapes"
	// BackgroundNone leaves slides blank behind the content.
	BackgroundNone BackgroundMode = "none"
)

// ParseBackgroundMode parses a mode name, case-insensitively. The empty
// string yields BackgroundSnapshot.
func ParseBackgroundMode(s string) (BackgroundMode, error) {
	switch m := BackgroundMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return BackgroundSnapshot, nil
	case BackgroundSnapshot, BackgroundShapes, BackgroundNone:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (must be snapshot, shapes, or none)", ErrInvalidBackgroundMode, s)
	}
}

// FontStatus reports whether web fonts finished loading before extraction.
type FontStatus = extract.FontStatus

const (
	FontsReady    = extract.FontsReady
	FontsTimedOut = extract.FontsTimedOut
)

// Input names one file to convert.
type Input struct {
	HTMLPath   string // Source deck (required, .html or .htm)
	OutputPath string // Destination .pptx (empty = next to the source)
}

// Result describes one conversion. In a batch, Err carries the per-file
// failure and the other fields are filled as far as the run got.
type Result struct {
	InputPath  string
	OutputPath string
	Slides     int
	Fonts      FontStatus
	// Skipped counts elements that could not be read and were left out.
	Skipped  int
	Duration time.Duration
	Err      error
}

// OK reports whether the conversion succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Template names the CSS classes of the slide template. Empty fields keep
// the standard names (slide, slide-header, slide-content, title, subtitle,
// keyword-item, keyword-title, keyword-desc, code-block).
type Template struct {
	Slide        string
	Header       string
	Content      string
	Title        string
	Subtitle     string
	KeywordItem  string
	KeywordTitle string
	KeywordDesc  string
	CodeBlock    string
	// IconClasses replaces the built-in icon class list when non-empty.
	IconClasses []string
}

// resolve merges t over the standard template.
func (t Template) resolve() (extract.Template, error) {
	out := extract.DefaultTemplate()
	fields := []struct {
		dst *string
		src string
	}{
		{&out.Slide, t.Slide},
		{&out.Header, t.Header},
		{&out.Content, t.Content},
		{&out.Title, t.Title},
		{&out.Subtitle, t.Subtitle},
		{&out.KeywordItem, t.KeywordItem},
		{&out.KeywordTitle, t.KeywordTitle},
		{&out.KeywordDesc, t.KeywordDesc},
		{&out.CodeBlock, t.CodeBlock},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		if strings.ContainsAny(f.src, " .,#>+~:[]()*\"'\\") {
			return extract.Template{}, fmt.Errorf("%w: %q is not a plain class name", ErrInvalidTemplate, f.src)
		}
		*f.dst = f.src
	}
	if len(t.IconClasses) > 0 {
		out.IconClasses = append([]string(nil), t.IconClasses...)
	}
	return out, nil
}

// Layout tunes the pixel-to-slide mapping. Zero fields keep the defaults.
type Layout struct {
	Width, Height    int     // Slide viewport in CSS px (default 1280x720)
	TextPadding      float64 // Extra text box width in px (default 30)
	DefaultImageSize float64 // Image width when none is measured (default 20)
	FontScale        float64 // Points per CSS px (default 0.75)
	DefaultFont      string  // Replaces generic CSS families (default Calibri)
	BoldWeight       int     // Minimum weight rendered bold (default 700)
}
