package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-html2pptx/internal/slide"
)

// templateSlide builds a slide at page offset y with the standard template
// structure.
func templateSlide(y float64, title, subtitle string, keywords int) *fakeElement {
	header := elem("div", "slide-header", box(0, y, 1280, 120),
		elem("h1", "title", box(60, y+20, 800, 60)).withText(title))
	if subtitle != "" {
		header.children = append(header.children,
			elem("p", "subtitle", box(60, y+80, 800, 30)).withText(subtitle))
	}

	content := elem("div", "slide-content", box(0, y+120, 1280, 600))
	for i := 0; i < keywords; i++ {
		top := y + 140 + float64(i)*100
		content.children = append(content.children, elem("div", "keyword-item", box(60, top, 1100, 80),
			elem("span", "material-icons", box(70, top+10, 40, 40)),
			elem("div", "keyword-title", box(120, top+10, 900, 30)).withText("Keyword"),
			elem("div", "keyword-desc", box(120, top+40, 900, 30)).withText("Description"),
		))
	}
	content.children = append(content.children,
		elem("p", "", box(60, y+650, 600, 30)).withText("footer note"))

	return elem("div", "slide", box(0, y, 1280, 720), header, content)
}

func writeHTML(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.html")
	if err := os.WriteFile(path, []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestExtractor(t *testing.T, s *fakeSession, background bool) *Extractor {
	t.Helper()
	return New(s, t.TempDir(), Options{CaptureBackground: background, Logger: discardLogger()})
}

// ---------------------------------------------------------------------------
// OpenDocument
// ---------------------------------------------------------------------------

func TestExtractor_OpenDocument(t *testing.T) {
	t.Parallel()

	t.Run("loads existing file", func(t *testing.T) {
		t.Parallel()

		s := &fakeSession{}
		path := writeHTML(t)
		if err := newTestExtractor(t, s, false).OpenDocument(context.Background(), path); err != nil {
			t.Fatalf("OpenDocument() error = %v", err)
		}
		if s.opened != path {
			t.Errorf("session opened %q, want %q", s.opened, path)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		s := &fakeSession{}
		err := newTestExtractor(t, s, false).OpenDocument(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
		if !errors.Is(err, ErrDocumentLoad) {
			t.Errorf("OpenDocument() error = %v, want ErrDocumentLoad", err)
		}
		if s.opened != "" {
			t.Error("session should not be asked to open a missing file")
		}
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		err := newTestExtractor(t, &fakeSession{}, false).OpenDocument(context.Background(), t.TempDir())
		if !errors.Is(err, ErrDocumentLoad) {
			t.Errorf("OpenDocument() error = %v, want ErrDocumentLoad", err)
		}
	})

	t.Run("session failure", func(t *testing.T) {
		t.Parallel()

		s := &fakeSession{openErr: errBoom}
		err := newTestExtractor(t, s, false).OpenDocument(context.Background(), writeHTML(t))
		if !errors.Is(err, ErrDocumentLoad) {
			t.Errorf("OpenDocument() error = %v, want ErrDocumentLoad", err)
		}
	})
}

func TestExtractor_WaitForFontsReady(t *testing.T) {
	t.Parallel()

	for _, want := range []FontStatus{FontsReady, FontsTimedOut} {
		x := newTestExtractor(t, &fakeSession{fontStatus: want}, false)
		if got := x.WaitForFontsReady(context.Background()); got != want {
			t.Errorf("WaitForFontsReady() = %v, want %v", got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// ExtractSlides
// ---------------------------------------------------------------------------

func TestExtractor_ExtractSlides(t *testing.T) {
	t.Parallel()

	s := &fakeSession{slides: []*fakeElement{
		templateSlide(0, "First", "Intro", 3),
		templateSlide(720, "Second", "", 0),
		templateSlide(1440, "Third", "More", 5),
	}}
	x := newTestExtractor(t, s, true)

	slides, err := x.ExtractSlides(context.Background())
	if err != nil {
		t.Fatalf("ExtractSlides() error = %v", err)
	}
	if s.selector != DefaultTemplate().SlideSelector() {
		t.Errorf("queried %q, want top-level slide selector", s.selector)
	}
	if len(slides) != 3 {
		t.Fatalf("len(slides) = %d, want 3", len(slides))
	}

	wantTitles := []string{"First", "Second", "Third"}
	wantKeywords := []int{3, 0, 5}
	for i, sd := range slides {
		if sd.Index != i {
			t.Errorf("slides[%d].Index = %d", i, sd.Index)
		}
		if sd.Title == nil || sd.Title.Text != wantTitles[i] {
			t.Errorf("slides[%d].Title = %+v, want %q", i, sd.Title, wantTitles[i])
		}
		if len(sd.KeywordItems) != wantKeywords[i] {
			t.Errorf("slides[%d] keyword items = %d, want %d", i, len(sd.KeywordItems), wantKeywords[i])
		}
		if want := SnapshotName(i, slide.RoleBackground, 0); filepath.Base(sd.BackgroundPath) != want {
			t.Errorf("slides[%d].BackgroundPath = %q, want %s", i, sd.BackgroundPath, want)
		}
		if sd.Title != nil && sd.Title.Geometry.Y != 20 {
			t.Errorf("slides[%d] title Y = %v, want slide-relative 20", i, sd.Title.Geometry.Y)
		}
	}

	if slides[1].Subtitle != nil {
		t.Errorf("slide without subtitle got %+v", slides[1].Subtitle)
	}
	if slides[0].Subtitle == nil || slides[0].Subtitle.Text != "Intro" {
		t.Errorf("slides[0].Subtitle = %+v", slides[0].Subtitle)
	}

	item := slides[0].KeywordItems[1]
	if item.Frame == nil || item.Icon == nil || item.Title == nil || item.Description == nil {
		t.Fatalf("keyword item incomplete: %+v", item)
	}
	if item.Icon.Role != slide.RoleIcon || !item.Icon.HasSnapshot() {
		t.Errorf("keyword icon = %+v, want snapshot", item.Icon)
	}
	if filepath.Base(item.Icon.SnapshotPath) != "slide_0_icon_1.png" {
		t.Errorf("icon path = %q, want second icon of slide 0", item.Icon.SnapshotPath)
	}
}

func TestExtractor_ContentExcludesSlots(t *testing.T) {
	t.Parallel()

	s := &fakeSession{slides: []*fakeElement{templateSlide(0, "T", "S", 2)}}
	slides, err := newTestExtractor(t, s, false).ExtractSlides(context.Background())
	if err != nil {
		t.Fatalf("ExtractSlides() error = %v", err)
	}

	var texts []string
	for _, root := range slides[0].Content {
		root.Walk(func(e *slide.ElementData) {
			if e.Text != "" {
				texts = append(texts, e.Text)
			}
		})
	}
	if len(texts) != 1 || texts[0] != "footer note" {
		t.Errorf("content texts = %q, want only the footer note", texts)
	}
	if slides[0].BackgroundPath != "" {
		t.Error("background captured although disabled")
	}
}

func TestExtractor_FallsBackToSlideChildren(t *testing.T) {
	t.Parallel()

	bare := elem("div", "slide", box(0, 0, 1280, 720),
		elem("h1", "title", box(0, 0, 100, 40)).withText("T"),
		elem("p", "", box(0, 50, 100, 40)).withText("body"),
	)
	slides, err := newTestExtractor(t, &fakeSession{slides: []*fakeElement{bare}}, false).
		ExtractSlides(context.Background())
	if err != nil {
		t.Fatalf("ExtractSlides() error = %v", err)
	}
	if len(slides[0].Content) != 1 || slides[0].Content[0].Text != "body" {
		t.Errorf("content = %+v, want the body paragraph", slides[0].Content)
	}
}

func TestExtractor_NoSlides(t *testing.T) {
	t.Parallel()

	_, err := newTestExtractor(t, &fakeSession{}, true).ExtractSlides(context.Background())
	if !errors.Is(err, ErrNoSlidesFound) {
		t.Errorf("ExtractSlides() error = %v, want ErrNoSlidesFound", err)
	}
}

func TestExtractor_UnreadableSlideKeepsCount(t *testing.T) {
	t.Parallel()

	broken := templateSlide(720, "B", "", 0)
	broken.describeErr = errBoom
	s := &fakeSession{slides: []*fakeElement{templateSlide(0, "A", "", 0), broken}}
	x := newTestExtractor(t, s, true)

	slides, err := x.ExtractSlides(context.Background())
	if err != nil {
		t.Fatalf("ExtractSlides() error = %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("len(slides) = %d, want 2", len(slides))
	}
	if x.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", x.Skipped())
	}
}

func TestExtractor_CloseOnce(t *testing.T) {
	t.Parallel()

	s := &fakeSession{}
	x := newTestExtractor(t, s, false)
	for i := 0; i < 3; i++ {
		if err := x.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
	if s.closes != 1 {
		t.Errorf("session closed %d times, want 1", s.closes)
	}
}
