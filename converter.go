package html2pptx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-html2pptx/internal/browser"
	"github.com/alnah/go-html2pptx/internal/deck"
	"github.com/alnah/go-html2pptx/internal/extract"
	"github.com/alnah/go-html2pptx/internal/fileutil"
	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
	"github.com/alnah/go-html2pptx/internal/template"
)

// Compile-time interface implementation checks.
var (
	_ engine          = (*rodEngine)(nil)
	_ extract.Session = (*browser.Session)(nil)
)

// engine is a rendering engine that hands out one session per file.
type engine interface {
	Start() error
	NewSession() (extract.Session, error)
	// Kill force-terminates the engine; the next NewSession restarts it.
	Kill()
	Close() error
}

// rodEngine adapts browser.Browser to engine.
type rodEngine struct {
	b *browser.Browser
}

func (e *rodEngine) Start() error { return e.b.Start() }
func (e *rodEngine) Kill()        { e.b.Kill() }
func (e *rodEngine) Close() error { return e.b.Close() }

func (e *rodEngine) NewSession() (extract.Session, error) {
	s, err := e.b.NewSession()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Converter turns HTML slide decks into PPTX files. It owns one browser
// process for its lifetime and gives every file a fresh incognito session
// and scratch directory. A Converter handles one file at a time; use
// ConverterPool for parallel work.
type Converter struct {
	cfg       converterConfig
	log       *slog.Logger
	engine    engine
	template  extract.Template
	translate style.Config
}

// NewConverter creates a Converter. Chrome starts on the first Convert
// or Start call.
// Returns an error if an option value is invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mode, err := ParseBackgroundMode(string(cfg.background))
	if err != nil {
		return nil, err
	}
	cfg.background = mode

	tmpl, err := cfg.template.resolve()
	if err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = slog.Default()
	}

	tr := style.DefaultConfig()
	if cfg.layout.FontScale > 0 {
		tr.PointsPerPixel = cfg.layout.FontScale
	}
	if cfg.layout.DefaultFont != "" {
		tr.DefaultFontFamily = cfg.layout.DefaultFont
	}
	if cfg.layout.BoldWeight > 0 {
		tr.BoldWeight = cfg.layout.BoldWeight
	}

	c := &Converter{cfg: cfg, log: log, template: tmpl, translate: tr}
	if cfg.engine != nil {
		c.engine = cfg.engine(cfg)
	} else {
		c.engine = &rodEngine{b: browser.New(browser.Options{
			Width:            cfg.layout.Width,
			Height:           cfg.layout.Height,
			DeviceScale:      cfg.deviceScale,
			IconScale:        cfg.iconScale,
			FontSettle:       browser.DefaultFontSettle,
			HideInBackground: hiddenInBackground(tmpl),
			Bin:              cfg.browserBin,
			Logger:           log,
		})}
	}
	return c, nil
}

// hiddenInBackground lists elements that are placed on their own and must
// not also appear in the background snapshot.
func hiddenInBackground(t extract.Template) string {
	return strings.Join([]string{"." + t.CodeBlock, t.IconSelector()}, ", ")
}

// Start launches the browser ahead of the first conversion.
func (c *Converter) Start() error {
	return c.engine.Start()
}

// Close releases the browser.
func (c *Converter) Close() error {
	if c.engine != nil {
		return c.engine.Close()
	}
	return nil
}

// Convert renders in.HTMLPath and writes the presentation. It never leaves
// scratch files behind, whatever the outcome.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, in Input) (*Result, error) {
	in, err := c.validateInput(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	dir, cleanup, err := fileutil.TaskDir(c.cfg.tempRoot)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		var o outcome
		defer func() {
			if r := recover(); r != nil {
				o = outcome{err: fmt.Errorf("internal error: %v", r)}
			}
			done <- o
		}()
		o.res, o.err = c.run(ctx, in, dir)
	}()

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
		// Rendering calls may be stuck inside Chrome; killing it makes them
		// return so the scratch directory can be removed.
		c.engine.Kill()
		o = <-done
	}
	if o.err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.log.Warn("converter: conversion aborted", "input", in.HTMLPath, "error", ctxErr)
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, in.HTMLPath, c.cfg.timeout)
			}
			return nil, ctxErr
		}
		return nil, o.err
	}

	o.res.Duration = time.Since(start)
	c.log.Info("converter: converted",
		"input", in.HTMLPath, "output", o.res.OutputPath,
		"slides", o.res.Slides, "skipped", o.res.Skipped, "duration", o.res.Duration)
	return o.res, nil
}

// run is one file's pipeline: open, wait for fonts, extract, assemble, save.
func (c *Converter) run(ctx context.Context, in Input, dir string) (*Result, error) {
	info, err := os.Stat(in.HTMLPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentLoad, err)
	}

	session, err := c.engine.NewSession()
	if err != nil {
		return nil, err
	}
	x := extract.New(session, dir, extract.Options{
		Template:          c.template,
		Style:             c.translate,
		FontTimeout:       c.cfg.fontTimeout,
		CaptureBackground: c.cfg.background == BackgroundSnapshot,
		Logger:            c.log,
	})
	defer func() { _ = x.Close() }()

	if err := x.OpenDocument(ctx, in.HTMLPath); err != nil {
		return nil, err
	}
	fonts := x.WaitForFontsReady(ctx)

	slides, err := x.ExtractSlides(ctx)
	if err != nil {
		return nil, err
	}
	c.crossCheck(in.HTMLPath, len(slides))

	ts := c.cfg.timestamp
	if ts.IsZero() {
		ts = info.ModTime()
	}
	asm := deck.New(c.deckConfig(slides, ts), c.translate)
	doc, err := asm.Build(slides)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := doc.Save(in.OutputPath); err != nil {
		return nil, err
	}

	return &Result{
		InputPath:  in.HTMLPath,
		OutputPath: in.OutputPath,
		Slides:     doc.SlideCount(),
		Fonts:      fonts,
		Skipped:    x.Skipped(),
	}, nil
}

func (c *Converter) deckConfig(slides []slide.SlideData, ts time.Time) deck.Config {
	cfg := deck.DefaultConfig()
	if c.cfg.layout.Width > 0 {
		cfg.CanvasWidthPx = float64(c.cfg.layout.Width)
	}
	if c.cfg.layout.Height > 0 {
		cfg.CanvasHeightPx = float64(c.cfg.layout.Height)
	}
	if c.cfg.layout.TextPadding > 0 {
		cfg.TextPaddingPx = c.cfg.layout.TextPadding
	}
	if c.cfg.layout.DefaultImageSize > 0 {
		cfg.DefaultImageSizePx = c.cfg.layout.DefaultImageSize
	}
	cfg.BoxMode = c.cfg.background == BackgroundShapes
	cfg.Title = c.cfg.title
	if cfg.Title == "" && len(slides) > 0 && slides[0].Title != nil {
		cfg.Title = slides[0].Title.Text
	}
	if c.cfg.creator != "" {
		cfg.Creator = c.cfg.creator
	}
	cfg.Timestamp = ts
	cfg.Logger = c.log
	return cfg
}

// crossCheck compares the rendered slide count with a static parse of the
// same file. A mismatch means scripts added or removed slides.
func (c *Converter) crossCheck(path string, rendered int) {
	parsed, err := template.CountSlides(path, c.template)
	if err != nil {
		c.log.Debug("converter: static parse failed", "input", path, "error", err)
		return
	}
	if parsed != rendered {
		c.log.Warn("converter: slide count differs from static parse",
			"input", path, "rendered", rendered, "parsed", parsed)
	}
}

// validateInput checks required fields and fills the default output path.
func (c *Converter) validateInput(in Input) (Input, error) {
	if strings.TrimSpace(in.HTMLPath) == "" {
		return in, ErrEmptyInput
	}
	if !fileutil.IsHTML(in.HTMLPath) {
		return in, fmt.Errorf("%w: %s", ErrInvalidExtension, in.HTMLPath)
	}
	if in.OutputPath == "" {
		in.OutputPath = fileutil.OutputPath(in.HTMLPath, "")
	}
	return in, nil
}
