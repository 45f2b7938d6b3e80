package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

func TestWalker_GenericTree(t *testing.T) {
	t.Parallel()

	w := newTestWalker(t)
	w.origin = box(0, 720, 1280, 720)

	para := elem("p", "", box(40, 800, 400, 30)).withText("  Hello \n\n   world  ")
	para.style = style.ComputedStyle{
		FontFamily: `"Noto Sans", sans-serif`,
		FontSize:   "24px",
		FontWeight: "700",
		Color:      "rgb(255, 0, 0)",
		TextAlign:  "center",
	}
	empty := elem("div", "", box(40, 900, 100, 10))
	root := elem("div", "slide-content", box(20, 780, 1240, 600), para, empty)

	node, err := w.walk(context.Background(), root, slide.RoleGeneric)
	if err != nil {
		t.Fatalf("walk() error = %v", err)
	}
	if node == nil {
		t.Fatal("walk() = nil, want root node")
	}
	if len(node.Children) != 1 {
		t.Fatalf("children = %d, want 1 (empty div pruned)", len(node.Children))
	}

	p := node.Children[0]
	if p.Text != "Hello\nworld" {
		t.Errorf("Text = %q, want %q", p.Text, "Hello\nworld")
	}
	if want := box(40, 80, 400, 30); p.Geometry != want {
		t.Errorf("Geometry = %+v, want slide-relative %+v", p.Geometry, want)
	}
	if p.Font.Family != "Noto Sans" || p.Font.SizePt != 18 || !p.Font.Bold {
		t.Errorf("Font = %+v, want Noto Sans 18pt bold", p.Font)
	}
	if p.Font.Color != (style.RGBA{R: 255, A: 1}) {
		t.Errorf("Font.Color = %+v, want red", p.Font.Color)
	}
	if p.Align != style.AlignCenter {
		t.Errorf("Align = %v, want center", p.Align)
	}
}

func TestWalker_SkipsDedicatedSlots(t *testing.T) {
	t.Parallel()

	w := newTestWalker(t)
	root := elem("div", "slide-header", box(0, 0, 1280, 100),
		elem("h1", "title", box(0, 0, 600, 50)).withText("Title"),
		elem("h2", "subtitle", box(0, 50, 600, 30)).withText("Sub"),
		elem("div", "keyword-item", box(0, 80, 200, 20)).withText("kw"),
		elem("span", "", box(700, 0, 100, 20)).withText("date"),
	)

	node, err := w.walk(context.Background(), root, slide.RoleGeneric)
	if err != nil {
		t.Fatalf("walk() error = %v", err)
	}
	if len(node.Children) != 1 || node.Children[0].Text != "date" {
		t.Fatalf("children = %+v, want only the date span", node.Children)
	}
}

func TestWalker_RasterizedRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		classes  string
		wantRole slide.Role
		wantMode CaptureMode
	}{
		{"icon class", "material-icons", slide.RoleIcon, CaptureGlyph},
		{"feature icon", "feature-icon", slide.RoleIcon, CaptureGlyph},
		{"code block", "code-block", slide.RoleCode, CaptureElement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := newTestWalker(t)
			child := elem("span", tt.classes, box(10, 10, 32, 32))
			child.children = []*fakeElement{elem("b", "", box(10, 10, 5, 5)).withText("never walked")}
			root := elem("div", "", box(0, 0, 100, 100), child)

			node, err := w.walk(context.Background(), root, slide.RoleGeneric)
			if err != nil {
				t.Fatalf("walk() error = %v", err)
			}
			if len(node.Children) != 1 {
				t.Fatalf("children = %d, want 1", len(node.Children))
			}

			got := node.Children[0]
			if got.Role != tt.wantRole {
				t.Errorf("Role = %v, want %v", got.Role, tt.wantRole)
			}
			if !got.HasSnapshot() {
				t.Fatal("rasterized node has no snapshot")
			}
			if len(got.Children) != 0 {
				t.Error("rasterized node should not recurse")
			}
			if len(child.captured) != 1 || child.captured[0] != tt.wantMode {
				t.Errorf("capture modes = %v, want [%v]", child.captured, tt.wantMode)
			}
			if _, err := os.Stat(got.SnapshotPath); err != nil {
				t.Errorf("snapshot not written: %v", err)
			}
		})
	}
}

func TestWalker_SnapshotKeepsShadow(t *testing.T) {
	t.Parallel()

	w := newTestWalker(t)
	code := elem("pre", "code-block", box(0, 0, 400, 200))
	code.style.BoxShadow = "rgba(0, 0, 0, 0.2) 0px 4px 6px 0px"

	node, err := w.walk(context.Background(), code, slide.RoleCode)
	if err != nil {
		t.Fatalf("walk() error = %v", err)
	}
	if !node.HasSnapshot() {
		t.Fatal("code block has no snapshot")
	}
	if sh := node.Box.Shadow; !sh.Visible || sh.Direction != 90 {
		t.Errorf("Shadow = %+v, want visible and pointing down", sh)
	}
}

func TestWalker_IconIsTrimmed(t *testing.T) {
	t.Parallel()

	w := newTestWalker(t)
	icon := elem("i", "material-icons", box(0, 0, 20, 20))
	icon.png = paddedPNG(20, 20, image.Rect(5, 6, 15, 12))

	node, err := w.walk(context.Background(), icon, slide.RoleIcon)
	if err != nil {
		t.Fatalf("walk() error = %v", err)
	}

	data, err := os.ReadFile(node.SnapshotPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	b := decodePNG(t, data).Bounds()
	if b.Dx() != 10 || b.Dy() != 6 {
		t.Errorf("trimmed size = %dx%d, want 10x6", b.Dx(), b.Dy())
	}
}

func TestWalker_NotRenderable(t *testing.T) {
	t.Parallel()

	t.Run("zero area is skipped silently", func(t *testing.T) {
		t.Parallel()

		w := newTestWalker(t)
		root := elem("div", "", box(0, 0, 100, 100),
			elem("span", "", box(0, 0, 0, 10)).withText("hidden"),
			elem("span", "", box(0, 0, 10, 10)).withText("shown"),
		)

		node, err := w.walk(context.Background(), root, slide.RoleGeneric)
		if err != nil {
			t.Fatalf("walk() error = %v", err)
		}
		if len(node.Children) != 1 || node.Children[0].Text != "shown" {
			t.Errorf("children = %+v, want only the visible span", node.Children)
		}
		if w.skipped != 0 {
			t.Errorf("skipped = %d, want 0 for empty boxes", w.skipped)
		}
	})

	t.Run("describe failure is counted", func(t *testing.T) {
		t.Parallel()

		w := newTestWalker(t)
		broken := elem("span", "", box(0, 0, 10, 10))
		broken.describeErr = errBoom
		root := elem("div", "", box(0, 0, 100, 100), broken,
			elem("span", "", box(0, 0, 10, 10)).withText("ok"))

		node, err := w.walk(context.Background(), root, slide.RoleGeneric)
		if err != nil {
			t.Fatalf("walk() error = %v", err)
		}
		if len(node.Children) != 1 {
			t.Errorf("children = %d, want 1", len(node.Children))
		}
		if w.skipped != 1 {
			t.Errorf("skipped = %d, want 1", w.skipped)
		}
	})

	t.Run("root error is returned", func(t *testing.T) {
		t.Parallel()

		w := newTestWalker(t)
		_, err := w.walk(context.Background(), elem("div", "", box(0, 0, 0, 0)), slide.RoleTitle)
		if !errors.Is(err, ErrElementNotRenderable) {
			t.Errorf("walk() error = %v, want ErrElementNotRenderable", err)
		}
	})

	t.Run("capture failure", func(t *testing.T) {
		t.Parallel()

		w := newTestWalker(t)
		icon := elem("i", "material-icons", box(0, 0, 10, 10))
		icon.captureErr = errBoom
		_, err := w.walk(context.Background(), icon, slide.RoleIcon)
		if !errors.Is(err, ErrElementNotRenderable) {
			t.Errorf("walk() error = %v, want ErrElementNotRenderable", err)
		}
	})
}

func TestWalker_ClearsInheritedBackground(t *testing.T) {
	t.Parallel()

	w := newTestWalker(t)
	child := elem("div", "", box(10, 10, 50, 50)).withText("x")
	child.style.BackgroundColor = "#ffffff"
	root := elem("div", "", box(0, 0, 100, 100), child)
	root.style.BackgroundColor = "#ffffff"

	node, err := w.walk(context.Background(), root, slide.RoleGeneric)
	if err != nil {
		t.Fatalf("walk() error = %v", err)
	}
	if !node.Box.Visible() {
		t.Error("root box should keep its background")
	}
	if node.Children[0].Box.Visible() {
		t.Error("child repeating the parent background should be cleared")
	}
}

func TestWalker_FirstAbsent(t *testing.T) {
	t.Parallel()

	w := newTestWalker(t)
	root := elem("div", "slide", box(0, 0, 1280, 720))

	node, err := w.first(context.Background(), root, ".subtitle", slide.RoleSubtitle)
	if err != nil {
		t.Fatalf("first() error = %v", err)
	}
	if node != nil {
		t.Errorf("first() = %+v, want nil", node)
	}
}

func TestWalker_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newTestWalker(t)
	broken := elem("div", "", box(0, 0, 10, 10))
	broken.describeErr = errBoom

	if _, err := w.walk(ctx, broken, slide.RoleGeneric); !errors.Is(err, context.Canceled) {
		t.Errorf("walk() error = %v, want context.Canceled", err)
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a  b  ", "a b"},
		{"a\r\nb", "a\nb"},
		{"\n\n a \n\n\t b\t\n", "a\nb"},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnapshotName(t *testing.T) {
	t.Parallel()

	if got := SnapshotName(3, slide.RoleIcon, 1); got != "slide_3_icon_1.png" {
		t.Errorf("SnapshotName() = %q", got)
	}

	dir := t.TempDir()
	s := newSnapshotStore(dir)
	for i := 0; i < 2; i++ {
		if _, err := s.save(0, slide.RoleIcon, []byte("x")); err != nil {
			t.Fatalf("save() error = %v", err)
		}
	}
	if _, err := s.save(0, slide.RoleCode, []byte("x")); err != nil {
		t.Fatalf("save() error = %v", err)
	}
	for _, name := range []string{"slide_0_icon_0.png", "slide_0_icon_1.png", "slide_0_code_0.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSnapshotStore_WriteError(t *testing.T) {
	t.Parallel()

	s := newSnapshotStore(filepath.Join(t.TempDir(), "missing"))
	if _, err := s.save(0, slide.RoleIcon, []byte("x")); !errors.Is(err, ErrSnapshotWrite) {
		t.Errorf("save() error = %v, want ErrSnapshotWrite", err)
	}
}

func TestFitGlyph(t *testing.T) {
	t.Parallel()

	t.Run("fully transparent unchanged", func(t *testing.T) {
		t.Parallel()

		in := paddedPNG(8, 8, image.Rectangle{})
		out, err := fitGlyph(in, 0)
		if err != nil {
			t.Fatalf("fitGlyph() error = %v", err)
		}
		if len(out) != len(in) {
			t.Error("fully transparent image should be returned unchanged")
		}
	})

	t.Run("not a png unchanged", func(t *testing.T) {
		t.Parallel()

		out, err := fitGlyph([]byte("nope"), maxGlyphSide)
		if err != nil || string(out) != "nope" {
			t.Errorf("fitGlyph() = %q, %v", out, err)
		}
	})

	t.Run("small tight glyph unchanged", func(t *testing.T) {
		t.Parallel()

		in := solidPNG(40, 20)
		out, err := fitGlyph(in, maxGlyphSide)
		if err != nil {
			t.Fatalf("fitGlyph() error = %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Error("glyph already tight and in bounds should be returned unchanged")
		}
	})

	t.Run("oversized glyph is trimmed then downscaled", func(t *testing.T) {
		t.Parallel()

		// 1000x400 of ink inside 1200x600 of padding.
		in := paddedPNG(1200, 600, image.Rect(100, 100, 1100, 500))
		out, err := fitGlyph(in, 500)
		if err != nil {
			t.Fatalf("fitGlyph() error = %v", err)
		}

		img := decodePNG(t, out)
		if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 200 {
			t.Fatalf("size = %dx%d, want 500x200", b.Dx(), b.Dy())
		}
		if _, _, _, a := img.At(250, 100).RGBA(); a == 0 {
			t.Error("downscaled glyph lost its ink")
		}
	})

	t.Run("tall glyph keeps aspect ratio", func(t *testing.T) {
		t.Parallel()

		out, err := fitGlyph(solidPNG(90, 900), 300)
		if err != nil {
			t.Fatalf("fitGlyph() error = %v", err)
		}
		if b := decodePNG(t, out).Bounds(); b.Dx() != 30 || b.Dy() != 300 {
			t.Errorf("size = %dx%d, want 30x300", b.Dx(), b.Dy())
		}
	})
}

func TestFitWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size    image.Point
		maxSide int
		want    image.Point
	}{
		{image.Pt(100, 50), 0, image.Pt(100, 50)},
		{image.Pt(100, 50), 100, image.Pt(100, 50)},
		{image.Pt(1000, 10), 100, image.Pt(100, 1)},
		{image.Pt(3000, 1), 100, image.Pt(100, 1)},
		{image.Pt(50, 200), 100, image.Pt(25, 100)},
	}

	for _, tt := range tests {
		if got := fitWithin(tt.size, tt.maxSide); got != tt.want {
			t.Errorf("fitWithin(%v, %d) = %v, want %v", tt.size, tt.maxSide, got, tt.want)
		}
	}
}
