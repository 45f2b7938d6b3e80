package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

// DefaultFontTimeout bounds the wait for web fonts.
const DefaultFontTimeout = 10 * time.Second

// Options configures an Extractor. The zero value is usable.
type Options struct {
	Template    Template
	Style       style.Config
	FontTimeout time.Duration
	// CaptureBackground enables the full-slide background snapshot.
	CaptureBackground bool
	Logger            *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Template.Slide == "" {
		o.Template = DefaultTemplate()
	}
	if o.Style.EMUPerPixel == 0 {
		o.Style = style.DefaultConfig()
	}
	if o.FontTimeout <= 0 {
		o.FontTimeout = DefaultFontTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Extractor reads one document from a Session. It is not safe for
// concurrent use; each task owns its own.
type Extractor struct {
	session Session
	opts    Options
	log     *slog.Logger
	snaps   *snapshotStore
	skipped int

	closeOnce sync.Once
	closeErr  error
}

// New returns an Extractor writing snapshots into dir. The caller owns dir
// and removes it when the task ends.
func New(session Session, dir string, opts Options) *Extractor {
	opts = opts.withDefaults()
	return &Extractor{
		session: session,
		opts:    opts,
		log:     opts.Logger,
		snaps:   newSnapshotStore(dir),
	}
}

// OpenDocument loads the HTML file at path.
func (x *Extractor) OpenDocument(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentLoad, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrDocumentLoad, path)
	}

	if err := x.session.Open(ctx, path); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrDocumentLoad, err)
	}
	x.log.Debug("extract: document loaded", "path", path)
	return nil
}

// WaitForFontsReady waits for web fonts up to the configured timeout. A
// timeout is not an error: extraction proceeds with whatever has loaded.
func (x *Extractor) WaitForFontsReady(ctx context.Context) FontStatus {
	status := x.session.WaitForFonts(ctx, x.opts.FontTimeout)
	if status == FontsTimedOut {
		x.log.Warn("extract: fonts not ready, continuing", "timeout", x.opts.FontTimeout)
	}
	return status
}

// ExtractSlides builds one SlideData per top-level slide container, in
// document order.
func (x *Extractor) ExtractSlides(ctx context.Context) ([]slide.SlideData, error) {
	els, err := x.session.Query(ctx, x.opts.Template.SlideSelector())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrDocumentLoad, err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: no %q elements", ErrNoSlidesFound, x.opts.Template.SlideSelector())
	}

	slides := make([]slide.SlideData, 0, len(els))
	for i, el := range els {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sd, err := x.extractSlide(ctx, i, el)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i, err)
		}
		slides = append(slides, sd)
	}

	x.log.Debug("extract: slides extracted", "count", len(slides), "skipped", x.skipped)
	return slides, nil
}

func (x *Extractor) extractSlide(ctx context.Context, index int, el Element) (slide.SlideData, error) {
	sd := slide.SlideData{Index: index}
	tmpl := x.opts.Template

	w := &walker{
		slideIndex: index,
		tmpl:       tmpl,
		tr:         x.opts.Style,
		snaps:      x.snaps,
		log:        x.log,
	}
	defer func() { x.skipped += w.skipped }()

	d, err := el.Describe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return sd, ctx.Err()
		}
		// The slide is still emitted so output slide count matches input.
		w.skip(slide.RoleBackground, fmt.Errorf("%w: %v", ErrElementNotRenderable, err))
		return sd, nil
	}
	w.origin = d.Box
	sd.Frame = w.frame(d)

	if x.opts.CaptureBackground {
		bg, err := w.walkDescribed(ctx, el, d, slide.RoleBackground)
		switch {
		case errors.Is(err, ErrElementNotRenderable):
			w.skip(slide.RoleBackground, err)
		case err != nil:
			return sd, err
		default:
			sd.BackgroundPath = bg.SnapshotPath
		}
	}

	if sd.Title, err = w.first(ctx, el, "."+tmpl.Title, slide.RoleTitle); err != nil {
		return sd, err
	}
	if sd.Subtitle, err = w.first(ctx, el, "."+tmpl.Subtitle, slide.RoleSubtitle); err != nil {
		return sd, err
	}
	if sd.KeywordItems, err = x.keywordItems(ctx, w, el); err != nil {
		return sd, err
	}
	if sd.Content, err = x.content(ctx, w, el); err != nil {
		return sd, err
	}
	return sd, nil
}

func (x *Extractor) keywordItems(ctx context.Context, w *walker, root Element) ([]slide.KeywordItem, error) {
	tmpl := x.opts.Template
	els, err := root.Query(ctx, "."+tmpl.KeywordItem)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.skip(slide.RoleGeneric, fmt.Errorf("%w: querying keyword items: %v", ErrElementNotRenderable, err))
		return nil, nil
	}

	var items []slide.KeywordItem
	for _, el := range els {
		d, err := el.Describe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			w.skip(slide.RoleGeneric, fmt.Errorf("%w: %v", ErrElementNotRenderable, err))
			continue
		}

		var item slide.KeywordItem
		if !d.Box.Empty() {
			item.Frame = w.frame(d)
		}
		if item.Icon, err = w.first(ctx, el, tmpl.IconSelector(), slide.RoleIcon); err != nil {
			return nil, err
		}
		if item.Title, err = w.first(ctx, el, "."+tmpl.KeywordTitle, slide.RoleKeywordTitle); err != nil {
			return nil, err
		}
		if item.Description, err = w.first(ctx, el, "."+tmpl.KeywordDesc, slide.RoleKeywordDesc); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// content walks the header and content regions. Slides without either
// region are walked from the slide root's children.
func (x *Extractor) content(ctx context.Context, w *walker, root Element) ([]*slide.ElementData, error) {
	tmpl := x.opts.Template
	regions, err := root.Query(ctx, "."+tmpl.Header+", ."+tmpl.Content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.skip(slide.RoleGeneric, fmt.Errorf("%w: querying content: %v", ErrElementNotRenderable, err))
		return nil, nil
	}

	if len(regions) == 0 {
		if regions, err = root.Children(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			w.skip(slide.RoleGeneric, fmt.Errorf("%w: listing slide children: %v", ErrElementNotRenderable, err))
			return nil, nil
		}
	}

	var out []*slide.ElementData
	for _, r := range regions {
		node, err := w.walkChild(ctx, r)
		if err != nil {
			if errors.Is(err, ErrElementNotRenderable) {
				w.skip(slide.RoleGeneric, err)
				continue
			}
			return nil, err
		}
		if node != nil {
			out = append(out, node)
		}
	}
	return out, nil
}

// Close releases the session. Only the first call has an effect.
func (x *Extractor) Close() error {
	x.closeOnce.Do(func() {
		x.closeErr = x.session.Close()
	})
	return x.closeErr
}

// Skipped returns how many elements were skipped as not renderable.
func (x *Extractor) Skipped() int {
	return x.skipped
}
