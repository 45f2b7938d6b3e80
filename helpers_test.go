package html2pptx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-html2pptx/internal/extract"
	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

// ---------------------------------------------------------------------------
// fakeNode - extract.Element over an in-memory tree
// ---------------------------------------------------------------------------

type fakeNode struct {
	tag      string
	classes  []string
	box      slide.Geometry
	style    style.ComputedStyle
	text     string
	children []*fakeNode
}

func node(tag, classes, text string, box slide.Geometry, children ...*fakeNode) *fakeNode {
	return &fakeNode{
		tag:     tag,
		classes: strings.Fields(classes),
		box:     box,
		text:    text,
		style: style.ComputedStyle{
			FontFamily: "Arial", FontSize: "24px", FontWeight: "400",
			Color: "rgb(20, 20, 20)", BackgroundColor: "rgba(0, 0, 0, 0)",
		},
		children: children,
	}
}

func (n *fakeNode) Describe(context.Context) (extract.Description, error) {
	return extract.Description{Tag: n.tag, Classes: n.classes, Box: n.box, Style: n.style, OwnText: n.text}, nil
}

func (n *fakeNode) Text(context.Context) (string, error) { return n.text, nil }

func (n *fakeNode) Children(context.Context) ([]extract.Element, error) {
	out := make([]extract.Element, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out, nil
}

func (n *fakeNode) Query(_ context.Context, selector string) ([]extract.Element, error) {
	var out []extract.Element
	var visit func(*fakeNode)
	visit = func(p *fakeNode) {
		for _, c := range p.children {
			if c.matches(selector) {
				out = append(out, c)
			}
			visit(c)
		}
	}
	visit(n)
	return out, nil
}

func (n *fakeNode) matches(selector string) bool {
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		if class, ok := strings.CutPrefix(part, "."); ok {
			for _, c := range n.classes {
				if c == class {
					return true
				}
			}
		} else if part == n.tag {
			return true
		}
	}
	return false
}

func (n *fakeNode) Capture(context.Context, extract.CaptureMode) ([]byte, error) {
	return solidPNG(8, 8), nil
}

// deckTree builds count slides, each with a header title and one paragraph.
func deckTree(count int) []*fakeNode {
	slides := make([]*fakeNode, count)
	for i := range slides {
		y := float64(i * 720)
		slides[i] = node("div", "slide", "", slide.Geometry{Y: y, Width: 1280, Height: 720},
			node("div", "slide-header", "", slide.Geometry{X: 60, Y: y + 40, Width: 1160, Height: 80},
				node("h1", "title", fmt.Sprintf("Slide %d", i+1), slide.Geometry{X: 60, Y: y + 40, Width: 600, Height: 60}),
			),
			node("div", "slide-content", "", slide.Geometry{X: 60, Y: y + 140, Width: 1160, Height: 500},
				node("p", "", fmt.Sprintf("Body %d", i+1), slide.Geometry{X: 60, Y: y + 140, Width: 800, Height: 30}),
			),
		)
	}
	return slides
}

// ---------------------------------------------------------------------------
// fakeSession / fakeEngine
// ---------------------------------------------------------------------------

type fakeSession struct {
	e *fakeEngine
}

func (s *fakeSession) Open(ctx context.Context, path string) error {
	if s.e.hang {
		// Simulates a page that never finishes loading: only killing the
		// engine releases it.
		<-s.e.killed
		return errors.New("target closed")
	}
	if s.e.openErr != nil {
		return s.e.openErr
	}
	return nil
}

func (s *fakeSession) WaitForFonts(context.Context, time.Duration) extract.FontStatus {
	return s.e.fonts
}

func (s *fakeSession) Query(_ context.Context, selector string) ([]extract.Element, error) {
	out := make([]extract.Element, len(s.e.slides))
	for i, sl := range s.e.slides {
		out[i] = sl
	}
	return out, nil
}

func (s *fakeSession) Close() error {
	s.e.mu.Lock()
	s.e.sessionsClosed++
	s.e.mu.Unlock()
	return nil
}

type fakeEngine struct {
	slides   []*fakeNode
	fonts    extract.FontStatus
	startErr error
	openErr  error
	hang     bool
	killed   chan struct{}

	mu             sync.Mutex
	starts         int
	sessions       int
	sessionsClosed int
	kills          int
	closes         int
}

func newFakeEngine(slides int) *fakeEngine {
	return &fakeEngine{slides: deckTree(slides), killed: make(chan struct{})}
}

func (e *fakeEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	return e.startErr
}

func (e *fakeEngine) NewSession() (extract.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startErr != nil {
		return nil, e.startErr
	}
	e.sessions++
	return &fakeSession{e: e}, nil
}

func (e *fakeEngine) Kill() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.kills == 0 {
		close(e.killed)
	}
	e.kills++
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closes++
	return nil
}

func (e *fakeEngine) counts() (starts, sessions, closed, kills int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts, e.sessions, e.sessionsClosed, e.kills
}

// withFake installs e as the engine of every converter built with the
// returned option.
func withFake(e *fakeEngine) Option {
	return withEngine(func(converterConfig) engine { return e })
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func solidPNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 40, G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// writeDeck writes an HTML file with count top-level slides.
func writeDeck(t *testing.T, dir, name string, count int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body>\n")
	for i := range count {
		fmt.Fprintf(&b, `<div class="slide"><div class="slide-header"><h1 class="title">Slide %d</h1></div>`+
			`<div class="slide-content"><p>Body %d</p></div></div>`+"\n", i+1, i+1)
	}
	b.WriteString("</body></html>\n")

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// taskDirs lists scratch directories left under root.
func taskDirs(t *testing.T, root string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(root, "html2pptx-*"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}
