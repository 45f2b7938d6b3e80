// Package template inspects slide deck HTML statically, without a browser.
// It reports what the extractor will find and is used by the inspect
// command and as a slide-count cross-check after conversion.
package template

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-html2pptx/internal/extract"
)

// ErrParse is returned when a document cannot be read or parsed.
var ErrParse = errors.New("failed to parse HTML")

// SlideSummary describes one top-level slide container.
type SlideSummary struct {
	Index        int
	Title        string
	Subtitle     string
	KeywordItems int
	Icons        int
	CodeBlocks   int
	HasHeader    bool
	HasContent   bool
}

// Summary describes a whole document.
type Summary struct {
	Path   string
	Slides []SlideSummary
}

// Problems lists template mismatches that degrade the conversion.
func (s Summary) Problems() []string {
	if len(s.Slides) == 0 {
		return []string{"no top-level slide containers"}
	}
	var out []string
	for _, sl := range s.Slides {
		if sl.Title == "" {
			out = append(out, fmt.Sprintf("slide %d: no title", sl.Index+1))
		}
		if !sl.HasHeader && !sl.HasContent {
			out = append(out, fmt.Sprintf("slide %d: no header or content region", sl.Index+1))
		}
	}
	return out
}

// InspectFile parses the HTML file at path.
func InspectFile(path string, tmpl extract.Template) (Summary, error) {
	f, err := os.Open(path) // #nosec G304 -- path is user-provided input file
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer func() { _ = f.Close() }()

	s, err := Inspect(f, tmpl)
	if err != nil {
		return Summary{}, err
	}
	s.Path = path
	return s, nil
}

// Inspect parses HTML from r.
func Inspect(r io.Reader, tmpl extract.Template) (Summary, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var sum Summary
	topLevelSlides(doc, tmpl).Each(func(i int, sel *goquery.Selection) {
		sum.Slides = append(sum.Slides, SlideSummary{
			Index:        i,
			Title:        firstText(sel, "."+tmpl.Title),
			Subtitle:     firstText(sel, "."+tmpl.Subtitle),
			KeywordItems: sel.Find("." + tmpl.KeywordItem).Length(),
			Icons:        sel.Find(iconSelector(tmpl)).Length(),
			CodeBlocks:   sel.Find("." + tmpl.CodeBlock).Length(),
			HasHeader:    sel.Find("."+tmpl.Header).Length() > 0,
			HasContent:   sel.Find("."+tmpl.Content).Length() > 0,
		})
	})
	return sum, nil
}

// CountSlides returns the number of top-level slide containers in the
// file at path.
func CountSlides(path string, tmpl extract.Template) (int, error) {
	s, err := InspectFile(path, tmpl)
	if err != nil {
		return 0, err
	}
	return len(s.Slides), nil
}

// topLevelSlides selects slide containers that have no slide ancestor.
func topLevelSlides(doc *goquery.Document, tmpl extract.Template) *goquery.Selection {
	class := "." + tmpl.Slide
	return doc.Find(class).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(class).Length() == 0
	})
}

// iconSelector matches icon classes only; bare <i> tags count as icons
// inside keyword items alone, which the count here does not model.
func iconSelector(tmpl extract.Template) string {
	parts := make([]string, len(tmpl.IconClasses))
	for i, c := range tmpl.IconClasses {
		parts[i] = "." + c
	}
	return strings.Join(parts, ", ")
}

func firstText(sel *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(sel.Find(selector).First().Text()), " ")
}
