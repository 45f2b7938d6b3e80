// Package extract walks a rendered slide deck and builds the structured
// per-slide trees consumed by the deck assembler.
//
// The browser is reached only through the Session and Element interfaces,
// which internal/browser implements with go-rod. Tests drive the walker
// with in-memory fakes.
package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

// Sentinel errors for extraction.
var (
	ErrDocumentLoad         = errors.New("failed to load document")
	ErrNoSlidesFound        = errors.New("no slide containers found")
	ErrElementNotRenderable = errors.New("element not renderable")
	ErrSnapshotWrite        = errors.New("failed to write snapshot")
)

// errNoArea marks elements skipped for having an empty box. These are
// common (hidden spans, empty wrappers) and are logged at debug level.
var errNoArea = errors.New("element has no area")

// FontStatus is the outcome of the bounded web-font wait.
type FontStatus int

const (
	FontsReady FontStatus = iota
	FontsTimedOut
)

func (s FontStatus) String() string {
	if s == FontsTimedOut {
		return "timed out"
	}
	return "ready"
}

// CaptureMode selects how an element is rasterized.
type CaptureMode int

const (
	// CaptureElement screenshots the element's box as rendered.
	CaptureElement CaptureMode = iota
	// CaptureGlyph renders a scaled clone of the element on a transparent
	// backdrop so icon glyphs keep their alpha.
	CaptureGlyph
	// CaptureBackground screenshots the element with all text hidden.
	CaptureBackground
)

// Description is everything read from an element in one round trip.
// Box is in page coordinates.
type Description struct {
	Tag     string
	Classes []string
	Box     slide.Geometry
	Style   style.ComputedStyle
	OwnText string
}

// HasClass reports whether the element carries the given class.
func (d Description) HasClass(class string) bool {
	for _, c := range d.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Element is a live handle to one rendered DOM element.
type Element interface {
	Describe(ctx context.Context) (Description, error)
	// Text returns the rendered text of the element and its descendants.
	Text(ctx context.Context) (string, error)
	// Children returns direct element children in document order.
	Children(ctx context.Context) ([]Element, error)
	// Query returns descendants matching a CSS selector in document order.
	Query(ctx context.Context, selector string) ([]Element, error)
	// Capture returns a PNG of the element.
	Capture(ctx context.Context, mode CaptureMode) ([]byte, error)
}

// Session is one rendering session holding one loaded document.
type Session interface {
	Open(ctx context.Context, path string) error
	WaitForFonts(ctx context.Context, timeout time.Duration) FontStatus
	Query(ctx context.Context, selector string) ([]Element, error)
	Close() error
}

// Template names the classes of the supported slide template.
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
	IconClasses  []string
	// IconTags are tag names treated as icons inside keyword items.
	IconTags []string
}

// DefaultTemplate returns the class names of the standard deck template.
func DefaultTemplate() Template {
	return Template{
		Slide:        "slide",
		Header:       "slide-header",
		Content:      "slide-content",
		Title:        "title",
		Subtitle:     "subtitle",
		KeywordItem:  "keyword-item",
		KeywordTitle: "keyword-title",
		KeywordDesc:  "keyword-desc",
		CodeBlock:    "code-block",
		IconClasses: []string{
			"material-icons", "toc-icon", "importance-icon", "limitation-icon",
			"check-icon", "partial-icon", "close-icon", "feature-icon",
			"section-icon", "api-icon", "config-icon", "case-icon",
			"component-icon", "mock-icon", "snapshot-icon", "resource-icon",
		},
		IconTags: []string{"i"},
	}
}

// SlideSelector matches top-level slide containers only; a slide nested
// inside another slide is content of the outer one.
func (t Template) SlideSelector() string {
	s := "." + t.Slide
	return s + ":not(" + s + " " + s + ")"
}

// IconSelector matches icon elements inside a keyword item.
func (t Template) IconSelector() string {
	parts := make([]string, 0, len(t.IconTags)+len(t.IconClasses))
	parts = append(parts, t.IconTags...)
	for _, c := range t.IconClasses {
		parts = append(parts, "."+c)
	}
	return strings.Join(parts, ", ")
}

// classify assigns a role to an element met during a generic walk. Skip is
// true for elements that own a dedicated slot in SlideData.
func (t Template) classify(d Description) (role slide.Role, skip bool) {
	if d.HasClass(t.Title) || d.HasClass(t.Subtitle) || d.HasClass(t.KeywordItem) {
		return slide.RoleGeneric, true
	}
	for _, c := range t.IconClasses {
		if d.HasClass(c) {
			return slide.RoleIcon, false
		}
	}
	if d.HasClass(t.CodeBlock) {
		return slide.RoleCode, false
	}
	return slide.RoleGeneric, false
}
