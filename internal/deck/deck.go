// Package deck assembles extracted slides into a PPTX presentation with
// GoPPT. Geometry arrives in CSS pixels and is converted to EMU through a
// style.Config.
package deck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png" // snapshot decoder for DecodeConfig
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	ppt "github.com/VantageDataChat/GoPPT"

	"github.com/alnah/go-html2pptx/internal/slide"
	"github.com/alnah/go-html2pptx/internal/style"
)

// Sentinel errors for assembly.
var (
	ErrWrite    = errors.New("failed to write presentation")
	ErrImage    = errors.New("failed to load image")
	ErrNoSlides = errors.New("no slides to assemble")
)

const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
	pngMime         = "image/png"
)

// Config holds layout constants. It is passed by value and never mutated
// after construction.
type Config struct {
	CanvasWidthPx  float64
	CanvasHeightPx float64
	// TextPaddingPx widens every text box so wrapped lines match the
	// browser despite font metric differences.
	TextPaddingPx float64
	// DefaultImageSizePx is used for images with no measured width.
	DefaultImageSizePx float64
	// BoxMode draws container backgrounds as native shapes.
	BoxMode bool
	Title   string
	Creator string
	// Timestamp is written as both created and modified time so identical
	// inputs produce identical files.
	Timestamp time.Time
	Logger    *slog.Logger
}

// DefaultConfig returns the 1280x720 layout.
func DefaultConfig() Config {
	return Config{
		CanvasWidthPx:      1280,
		CanvasHeightPx:     720,
		TextPaddingPx:      30,
		DefaultImageSizePx: 20,
		Creator:            "go-html2pptx",
	}
}

// Assembler turns SlideData into presentations. It is stateless and safe
// for concurrent use.
type Assembler struct {
	cfg Config
	tr  style.Config
	log *slog.Logger
}

// New returns an Assembler.
func New(cfg Config, tr style.Config) *Assembler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{cfg: cfg, tr: tr, log: log}
}

// Document is a presentation under construction.
type Document struct {
	a     *Assembler
	pres  *ppt.Presentation
	pages int
}

// CreatePresentation returns an empty document sized to the canvas.
func (a *Assembler) CreatePresentation() *Document {
	p := ppt.New()

	cx := a.tr.PixelsToEMU(a.cfg.CanvasWidthPx)
	cy := a.tr.PixelsToEMU(a.cfg.CanvasHeightPx)
	layout := p.GetLayout()
	layout.SetLayout(ppt.LayoutScreen16x9)
	if layout.CX != cx || layout.CY != cy {
		layout.SetCustomLayout(cx, cy)
	}

	ts := a.cfg.Timestamp
	if ts.IsZero() {
		ts = time.Unix(0, 0)
	}
	props := p.GetDocumentProperties()
	props.Title = a.cfg.Title
	props.Creator = a.cfg.Creator
	props.LastModifiedBy = a.cfg.Creator
	props.Created = ts.UTC()
	props.Modified = ts.UTC()

	return &Document{a: a, pres: p}
}

// SlideCount returns the number of slides added so far.
func (d *Document) SlideCount() int {
	return d.pages
}

// Page is one output slide.
type Page struct {
	d        *Document
	slide    *ppt.Slide
	backdrop style.RGBA
}

// AddBackgroundSlide appends a slide. A non-empty path is stretched over
// the whole canvas as the slide's first shape.
func (d *Document) AddBackgroundSlide(path string) (*Page, error) {
	var s *ppt.Slide
	if d.pages == 0 {
		s = d.pres.GetActiveSlide()
	} else {
		s = d.pres.CreateSlide()
	}
	d.pages++

	page := &Page{d: d, slide: s, backdrop: style.White}
	if path == "" {
		return page, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return page, fmt.Errorf("%w: %v", ErrImage, err)
	}
	layout := d.pres.GetLayout()
	bg := s.CreateDrawingShape()
	bg.SetImageData(data, pngMime)
	bg.SetName("Background")
	bg.SetPosition(0, 0)
	bg.SetSize(layout.CX, layout.CY)
	return page, nil
}

// SetBackgroundColor fills the slide background and uses the color as the
// backdrop for blending translucent boxes.
func (p *Page) SetBackgroundColor(c style.RGBA) {
	if c.IsTransparent() {
		return
	}
	solid := c.Over(style.White)
	fill := ppt.NewFill()
	fill.SetSolid(ppt.NewColor(solid.Hex()))
	p.slide.SetBackground(fill)
	p.backdrop = solid
}

// AddText places a text box. Every geometry field goes through the
// translator; lines become paragraphs.
func (p *Page) AddText(text string, g slide.Geometry, font style.FontSpec, align style.Align) *ppt.RichTextShape {
	tr := p.d.a.tr
	rt := p.slide.CreateRichTextShape()
	rt.SetPosition(tr.PixelsToEMU(g.X), tr.PixelsToEMU(g.Y))
	rt.SetSize(tr.PixelsToEMU(g.Width+p.d.a.cfg.TextPaddingPx), tr.PixelsToEMU(g.Height))
	rt.SetWordWrap(true)
	rt.SetTextAnchor(ppt.TextAnchorTop)

	para := rt.GetActiveParagraph()
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			para = rt.CreateParagraph()
		}
		para.SetAlignment(ppt.NewAlignment().SetHorizontal(horizontal(align)))
		applyFont(para.CreateTextRun(line).GetFont(), font)
	}
	return rt
}

func applyFont(f *ppt.Font, spec style.FontSpec) {
	if spec.Family != "" {
		f.SetName(spec.Family)
	}
	if spec.SizePt > 0 {
		f.SetSize(int(math.Round(spec.SizePt)))
	}
	f.SetBold(spec.Bold)
	f.SetItalic(spec.Italic)
	color := spec.Color
	if color.IsTransparent() {
		color = style.Black
	}
	f.SetColor(ppt.NewColor(color.Over(style.White).Hex()))
}

func horizontal(a style.Align) ppt.HorizontalAlignment {
	switch a {
	case style.AlignCenter:
		return ppt.HorizontalCenter
	case style.AlignRight:
		return ppt.HorizontalRight
	case style.AlignJustify:
		return ppt.HorizontalJustify
	default:
		return ppt.HorizontalLeft
	}
}

// AddImage places a PNG. A zero width uses the default size and a zero
// height follows the image's aspect ratio.
func (p *Page) AddImage(path string, x, y, w, h float64) (*ppt.DrawingShape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImage, err)
	}

	if w <= 0 {
		w = p.d.a.cfg.DefaultImageSizePx
	}
	if h <= 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrImage, filepath.Base(path), err)
		}
		h = w
		if cfg.Width > 0 {
			h = w * float64(cfg.Height) / float64(cfg.Width)
		}
	}

	tr := p.d.a.tr
	img := p.slide.CreateDrawingShape()
	img.SetImageData(data, pngMime)
	img.SetName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	img.SetPosition(tr.PixelsToEMU(x), tr.PixelsToEMU(y))
	img.SetSize(tr.PixelsToEMU(w), tr.PixelsToEMU(h))
	return img, nil
}

// AddBox draws a filled rectangle for a styled container. Translucent fills
// are flattened over the page backdrop since solid fills carry no alpha.
// Auto shapes are written without effects, so box shadows are not drawn.
func (p *Page) AddBox(g slide.Geometry, box style.BoxSpec) *ppt.AutoShape {
	tr := p.d.a.tr
	shape := p.slide.CreateAutoShape()
	if box.CornerRadius > 0 {
		shape.SetAutoShapeType(ppt.AutoShapeRoundedRect)
	} else {
		shape.SetAutoShapeType(ppt.AutoShapeRectangle)
	}
	shape.SetPosition(tr.PixelsToEMU(g.X), tr.PixelsToEMU(g.Y))
	shape.SetSize(tr.PixelsToEMU(g.Width), tr.PixelsToEMU(g.Height))

	if !box.Background.IsTransparent() {
		shape.SetSolidFill(ppt.NewColor(box.Background.Over(p.backdrop).Hex()))
	}
	return shape
}

func toShadow(s style.Shadow) *ppt.Shadow {
	sh := ppt.NewShadow().
		SetVisible(true).
		SetDirection(s.Direction).
		SetDistance(int(math.Round(float64(s.Distance) / style.EMUPerPoint)))
	sh.BlurRadius = int(math.Round(float64(s.Blur) / style.EMUPerPoint))
	sh.Color = ppt.NewColor(s.Color.Hex())
	sh.Alpha = int(math.Round(s.Color.A * 100))
	return sh
}

// Build assembles every slide. Per slide the stacking order is background,
// boxes (box mode only), title, subtitle, keyword items, then content.
func (a *Assembler) Build(slides []slide.SlideData) (*Document, error) {
	if len(slides) == 0 {
		return nil, ErrNoSlides
	}

	doc := a.CreatePresentation()
	for _, sd := range slides {
		page, err := doc.AddBackgroundSlide(sd.BackgroundPath)
		if err != nil {
			a.log.Warn("deck: background skipped", "slide", sd.Index, "error", err)
		}

		if a.cfg.BoxMode {
			a.addBoxes(page, sd)
		}

		page.addNode(sd.Title)
		page.addNode(sd.Subtitle)

		for _, item := range sd.KeywordItems {
			page.addNode(item.Icon)
			page.addNode(item.Title)
			page.addNode(item.Description)
		}

		for _, root := range sd.Content {
			root.Walk(page.addNode)
		}
	}
	return doc, nil
}

func (a *Assembler) addBoxes(page *Page, sd slide.SlideData) {
	if sd.Frame != nil {
		page.SetBackgroundColor(sd.Frame.Box.Background)
	}
	for _, root := range sd.Content {
		root.Walk(func(e *slide.ElementData) {
			if !e.HasSnapshot() && e.Box.Visible() {
				page.AddBox(e.Geometry, e.Box)
			}
		})
	}
	for _, item := range sd.KeywordItems {
		if item.Frame != nil && item.Frame.Box.Visible() {
			page.AddBox(item.Frame.Geometry, item.Frame.Box)
		}
	}
}

// addNode places one node's own content: its snapshot or its text.
func (p *Page) addNode(e *slide.ElementData) {
	if e == nil {
		return
	}
	if e.HasSnapshot() {
		h := e.Geometry.Height
		if e.Role == slide.RoleIcon {
			h = 0
		}
		img, err := p.AddImage(e.SnapshotPath, e.Geometry.X, e.Geometry.Y, e.Geometry.Width, h)
		if err != nil {
			p.d.a.log.Warn("deck: image skipped", "role", e.Role.String(), "error", err)
			return
		}
		if e.Box.Shadow.Visible {
			img.SetShadow(toShadow(e.Box.Shadow))
		}
		return
	}
	// Role nodes keep their placeholder even when empty.
	if e.Text == "" && e.Role == slide.RoleGeneric {
		return
	}
	p.AddText(e.Text, e.Geometry, e.Font, e.Align)
}

// WriteTo writes the PPTX package to w.
func (d *Document) WriteTo(w io.Writer) error {
	if err := d.pres.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Save writes the presentation to path through a temp file in the same
// directory, so a failed write never leaves a partial file behind.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ".html2pptx-*.pptx")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := d.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePermissions); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
