package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

// walker builds ElementData trees for one slide. Geometry is made
// slide-relative by subtracting the slide's page origin.
type walker struct {
	slideIndex int
	origin     slide.Geometry
	tmpl       Template
	tr         style.Config
	snaps      *snapshotStore
	log        *slog.Logger
	skipped    int
}

// walk reads el and builds its node. A nil node with a nil error means the
// element was pruned as empty.
func (w *walker) walk(ctx context.Context, el Element, role slide.Role) (*slide.ElementData, error) {
	d, err := el.Describe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrElementNotRenderable, err)
	}
	return w.walkDescribed(ctx, el, d, role)
}

func (w *walker) walkDescribed(ctx context.Context, el Element, d Description, role slide.Role) (*slide.ElementData, error) {
	if d.Box.Empty() {
		return nil, fmt.Errorf("%w: <%s> %w", ErrElementNotRenderable, d.Tag, errNoArea)
	}

	node := &slide.ElementData{
		Role:     role,
		Tag:      d.Tag,
		Classes:  d.Classes,
		Geometry: d.Box.Offset(w.origin.X, w.origin.Y),
	}

	// Snapshots keep their box too: the shadow goes on the picture.
	w.applyStyle(node, d.Style)

	if role.Rasterized() {
		path, err := w.capture(ctx, el, role)
		if err != nil {
			return nil, err
		}
		node.SnapshotPath = path
		return node, nil
	}

	if role != slide.RoleGeneric {
		text, err := el.Text(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: reading text: %v", ErrElementNotRenderable, err)
		}
		node.Text = normalizeText(text)
		return node, nil
	}

	node.Text = normalizeText(d.OwnText)

	children, err := el.Children(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: listing children: %v", ErrElementNotRenderable, err)
	}

	for _, child := range children {
		c, err := w.walkChild(ctx, child)
		if err != nil {
			if errors.Is(err, ErrElementNotRenderable) {
				w.skip(slide.RoleGeneric, err)
				continue
			}
			return nil, err
		}
		if c == nil {
			continue
		}
		// Same color as the parent paints nothing new.
		if c.Box.Background == node.Box.Background {
			c.Box.Background = style.Transparent
		}
		node.Children = append(node.Children, c)
	}

	if node.Text == "" && len(node.Children) == 0 && !node.Box.Visible() {
		return nil, nil
	}
	return node, nil
}

// walkChild classifies a child of a generic container and walks it.
func (w *walker) walkChild(ctx context.Context, el Element) (*slide.ElementData, error) {
	d, err := el.Describe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrElementNotRenderable, err)
	}
	role, skip := w.tmpl.classify(d)
	if skip {
		return nil, nil
	}
	return w.walkDescribed(ctx, el, d, role)
}

// first walks the first descendant of parent matching selector. An absent
// element yields a nil node without error.
func (w *walker) first(ctx context.Context, parent Element, selector string, role slide.Role) (*slide.ElementData, error) {
	els, err := parent.Query(ctx, selector)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.skip(role, fmt.Errorf("%w: querying %q: %v", ErrElementNotRenderable, selector, err))
		return nil, nil
	}
	if len(els) == 0 {
		return nil, nil
	}

	node, err := w.walk(ctx, els[0], role)
	if errors.Is(err, ErrElementNotRenderable) {
		w.skip(role, err)
		return nil, nil
	}
	return node, err
}

// frame builds a childless node carrying only a container's box styling.
func (w *walker) frame(d Description) *slide.ElementData {
	node := &slide.ElementData{
		Role:     slide.RoleGeneric,
		Tag:      d.Tag,
		Classes:  d.Classes,
		Geometry: d.Box.Offset(w.origin.X, w.origin.Y),
	}
	w.applyStyle(node, d.Style)
	return node
}

func (w *walker) capture(ctx context.Context, el Element, role slide.Role) (string, error) {
	mode := CaptureElement
	switch role {
	case slide.RoleIcon:
		mode = CaptureGlyph
	case slide.RoleBackground:
		mode = CaptureBackground
	}

	data, err := el.Capture(ctx, mode)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: capturing %s: %v", ErrElementNotRenderable, role, err)
	}

	if mode == CaptureGlyph {
		if data, err = fitGlyph(data, maxGlyphSide); err != nil {
			return "", err
		}
	}
	return w.snaps.save(w.slideIndex, role, data)
}

func (w *walker) applyStyle(node *slide.ElementData, cs style.ComputedStyle) {
	font, err := w.tr.MapFontStyle(cs)
	if err != nil {
		w.log.Warn("extract: font style fallback", "slide", w.slideIndex, "tag", node.Tag, "error", err)
	}
	box, err := w.tr.MapBoxStyle(cs, node.Geometry.Width, node.Geometry.Height)
	if err != nil {
		w.log.Warn("extract: box style fallback", "slide", w.slideIndex, "tag", node.Tag, "error", err)
	}
	node.Font = font
	node.Box = box
	node.Align = style.MapAlign(cs.TextAlign)
}

// skip records an element that could not be read. Empty boxes are routine
// and only logged at debug level.
func (w *walker) skip(role slide.Role, err error) {
	if errors.Is(err, errNoArea) {
		w.log.Debug("extract: skipping empty element", "slide", w.slideIndex, "role", role.String())
		return
	}
	w.skipped++
	w.log.Warn("extract: element not renderable", "slide", w.slideIndex, "role", role.String(), "error", err)
}

// normalizeText collapses whitespace within lines and drops blank lines.
func normalizeText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if f := strings.Fields(line); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return strings.Join(out, "\n")
}
