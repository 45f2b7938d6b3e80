package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2pptx/internal/extract"
	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

// Compile-time interface checks
var (
	_ extract.Session = (*Session)(nil)
	_ extract.Element = (*element)(nil)
)

var errNotOpen = errors.New("no document open")

// Session is one incognito browsing context holding one page.
type Session struct {
	opts    Options
	browser *rod.Browser
	page    *rod.Page
	log     *slog.Logger
}

// FileURL returns the file:// URL for a local path.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

// Open loads path into a fresh page sized to the slide viewport.
func (s *Session) Open(ctx context.Context, path string) error {
	u, err := FileURL(path)
	if err != nil {
		return err
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	s.page = page

	p := page.Context(ctx)
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.opts.Width,
		Height:            s.opts.Height,
		DeviceScaleFactor: s.opts.DeviceScale,
	}); err != nil {
		return fmt.Errorf("setting viewport: %w", err)
	}
	if err := p.Navigate(u); err != nil {
		return fmt.Errorf("navigating to %s: %w", u, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for load: %w", err)
	}
	return nil
}

// WaitForFonts waits for document.fonts plus a short settle delay.
func (s *Session) WaitForFonts(ctx context.Context, timeout time.Duration) extract.FontStatus {
	if s.page == nil {
		return extract.FontsTimedOut
	}

	if _, err := s.page.Context(ctx).Timeout(timeout).Eval(fontsReadyJS); err != nil {
		s.log.Debug("browser: font wait ended", "error", err)
		return extract.FontsTimedOut
	}

	select {
	case <-time.After(s.opts.FontSettle):
	case <-ctx.Done():
		return extract.FontsTimedOut
	}
	return extract.FontsReady
}

// Query returns page elements matching selector in document order.
func (s *Session) Query(ctx context.Context, selector string) ([]extract.Element, error) {
	if s.page == nil {
		return nil, errNotOpen
	}
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return s.wrap(els), nil
}

// Close closes the page and disposes of the incognito context.
func (s *Session) Close() error {
	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}
	return s.browser.Close()
}

func (s *Session) wrap(els rod.Elements) []extract.Element {
	out := make([]extract.Element, len(els))
	for i, el := range els {
		out[i] = &element{el: el, s: s}
	}
	return out
}

// element adapts a rod.Element to extract.Element.
type element struct {
	el *rod.Element
	s  *Session
}

// description mirrors the object returned by describeJS.
type description struct {
	Tag     string              `json:"tag"`
	Classes []string            `json:"classes"`
	X       float64             `json:"x"`
	Y       float64             `json:"y"`
	Width   float64             `json:"width"`
	Height  float64             `json:"height"`
	Style   style.ComputedStyle `json:"style"`
	OwnText string              `json:"ownText"`
}

func (e *element) Describe(ctx context.Context) (extract.Description, error) {
	obj, err := e.el.Context(ctx).Eval(describeJS)
	if err != nil {
		return extract.Description{}, err
	}

	var d description
	if err := decode(obj, &d); err != nil {
		return extract.Description{}, err
	}
	return extract.Description{
		Tag:     d.Tag,
		Classes: d.Classes,
		Box:     slide.Geometry{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height},
		Style:   d.Style,
		OwnText: d.OwnText,
	}, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *element) Children(ctx context.Context) ([]extract.Element, error) {
	els, err := e.el.Context(ctx).Elements(":scope > *")
	if err != nil {
		return nil, err
	}
	return e.s.wrap(els), nil
}

func (e *element) Query(ctx context.Context, selector string) ([]extract.Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return e.s.wrap(els), nil
}

func (e *element) Capture(ctx context.Context, mode extract.CaptureMode) ([]byte, error) {
	switch mode {
	case extract.CaptureGlyph:
		return e.captureGlyph(ctx)
	case extract.CaptureBackground:
		return e.captureBackground(ctx)
	default:
		return e.el.Context(ctx).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	}
}

// captureGlyph renders an enlarged clone of the element alone on a
// transparent page and screenshots it.
func (e *element) captureGlyph(ctx context.Context) ([]byte, error) {
	page := e.s.page.Context(ctx)
	el := e.el.Context(ctx)

	if _, err := el.Eval(glyphSetupJS, e.s.opts.IconScale); err != nil {
		return nil, fmt.Errorf("preparing glyph: %w", err)
	}
	defer func() { _, _ = e.s.page.Eval(glyphCleanupJS) }()

	alpha := 0.0
	if err := (proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{A: &alpha},
	}).Call(page); err != nil {
		return nil, fmt.Errorf("clearing page background: %w", err)
	}
	defer func() { _ = proto.EmulationSetDefaultBackgroundColorOverride{}.Call(e.s.page) }()

	holder, err := page.Element("#" + glyphHolderID)
	if err != nil {
		return nil, err
	}
	return holder.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

// captureBackground screenshots the element with text made transparent and
// separately placed elements hidden.
func (e *element) captureBackground(ctx context.Context) ([]byte, error) {
	el := e.el.Context(ctx)

	if _, err := el.Eval(backgroundSetupJS, e.s.opts.HideInBackground); err != nil {
		return nil, fmt.Errorf("hiding text: %w", err)
	}
	defer func() { _, _ = e.el.Eval(backgroundCleanupJS) }()

	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func decode(obj *proto.RuntimeRemoteObject, v any) error {
	raw, err := obj.Value.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
