package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

// ---------------------------------------------------------------------------
// fakeElement
// ---------------------------------------------------------------------------

type fakeElement struct {
	tag      string
	classes  []string
	box      slide.Geometry
	style    style.ComputedStyle
	ownText  string
	text     string
	children []*fakeElement

	describeErr error
	captureErr  error
	png         []byte

	mu       sync.Mutex
	captured []CaptureMode
}

func elem(tag, classes string, box slide.Geometry, children ...*fakeElement) *fakeElement {
	return &fakeElement{tag: tag, classes: strings.Fields(classes), box: box, children: children}
}

func (f *fakeElement) withText(s string) *fakeElement {
	f.text = s
	f.ownText = s
	return f
}

func (f *fakeElement) Describe(context.Context) (Description, error) {
	if f.describeErr != nil {
		return Description{}, f.describeErr
	}
	return Description{
		Tag:     f.tag,
		Classes: f.classes,
		Box:     f.box,
		Style:   f.style,
		OwnText: f.ownText,
	}, nil
}

func (f *fakeElement) Text(context.Context) (string, error) {
	return f.text, nil
}

func (f *fakeElement) Children(context.Context) ([]Element, error) {
	out := make([]Element, len(f.children))
	for i, c := range f.children {
		out[i] = c
	}
	return out, nil
}

// Query supports comma-separated lists of ".class" and "tag" selectors,
// which covers every selector the extractor issues.
func (f *fakeElement) Query(_ context.Context, selector string) ([]Element, error) {
	var out []Element
	var visit func(*fakeElement)
	visit = func(n *fakeElement) {
		for _, c := range n.children {
			if c.matches(selector) {
				out = append(out, c)
			}
			visit(c)
		}
	}
	visit(f)
	return out, nil
}

func (f *fakeElement) matches(selector string) bool {
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		if class, ok := strings.CutPrefix(part, "."); ok {
			for _, c := range f.classes {
				if c == class {
					return true
				}
			}
			continue
		}
		if part == f.tag {
			return true
		}
	}
	return false
}

func (f *fakeElement) Capture(_ context.Context, mode CaptureMode) ([]byte, error) {
	f.mu.Lock()
	f.captured = append(f.captured, mode)
	f.mu.Unlock()
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	if f.png != nil {
		return f.png, nil
	}
	return solidPNG(4, 4), nil
}

// ---------------------------------------------------------------------------
// fakeSession
// ---------------------------------------------------------------------------

type fakeSession struct {
	slides     []*fakeElement
	openErr    error
	fontStatus FontStatus
	closes     int
	opened     string
	selector   string
}

func (s *fakeSession) Open(_ context.Context, path string) error {
	s.opened = path
	return s.openErr
}

func (s *fakeSession) WaitForFonts(context.Context, time.Duration) FontStatus {
	return s.fontStatus
}

func (s *fakeSession) Query(_ context.Context, selector string) ([]Element, error) {
	s.selector = selector
	out := make([]Element, len(s.slides))
	for i, sl := range s.slides {
		out[i] = sl
	}
	return out, nil
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func box(x, y, w, h float64) slide.Geometry {
	return slide.Geometry{X: x, Y: y, Width: w, Height: h}
}

func solidPNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return encodePNG(img)
}

// paddedPNG returns a w x h transparent image with an opaque rectangle.
func paddedPNG(w, h int, opaque image.Rectangle) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := opaque.Min.Y; y < opaque.Max.Y; y++ {
		for x := opaque.Min.X; x < opaque.Max.X; x++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	return img
}

func newTestWalker(t *testing.T) *walker {
	t.Helper()
	return &walker{
		tmpl:  DefaultTemplate(),
		tr:    style.DefaultConfig(),
		snaps: newSnapshotStore(t.TempDir()),
		log:   discardLogger(),
	}
}
