package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/config"
	"github.com/alnah/go-html2pptx/internal/extract"
	"github.com/alnah/go-html2pptx/internal/hints"
	"github.com/alnah/go-html2pptx/internal/template"
	flag "github.com/spf13/pflag"
)

// inspectSlide is the JSON form of one slide summary.
type inspectSlide struct {
	Index        int    `json:"index"`
	Title        string `json:"title,omitempty"`
	Subtitle     string `json:"subtitle,omitempty"`
	KeywordItems int    `json:"keyword_items"`
	Icons        int    `json:"icons"`
	CodeBlocks   int    `json:"code_blocks"`
	HasHeader    bool   `json:"header"`
	HasContent   bool   `json:"content"`
}

// inspectReport is the JSON form of a document summary.
type inspectReport struct {
	Path     string         `json:"path"`
	Slides   []inspectSlide `json:"slides"`
	Problems []string       `json:"problems,omitempty"`
}

// runInspect statically checks one deck against the template and prints
// what the converter will find.
func runInspect(args []string, env *Environment) error {
	flags, positional, err := parseInspectFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printInspectUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: inspect takes exactly one file", ErrUsage)
	}

	cfg, err := loadConfig(flags.config, loadEnvConfig().ConfigPath)
	if err != nil {
		return err
	}
	tmpl := extractTemplate(cfg.Template)

	summary, err := template.InspectFile(positional[0], tmpl)
	if err != nil {
		return err
	}

	report := newInspectReport(summary)
	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printInspectReport(env.Stdout, report)
	}

	if len(summary.Slides) == 0 {
		return fmt.Errorf("%w: %s%s", html2pptx.ErrNoSlidesFound, summary.Path, hints.ForNoSlides(tmpl.Slide))
	}
	return nil
}

// extractTemplate applies configured class names over the standard ones.
// Names were validated with the config.
func extractTemplate(c config.TemplateConfig) extract.Template {
	t := extract.DefaultTemplate()
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&t.Slide, c.Slide},
		{&t.Header, c.Header},
		{&t.Content, c.Content},
		{&t.Title, c.Title},
		{&t.Subtitle, c.Subtitle},
		{&t.KeywordItem, c.KeywordItem},
		{&t.KeywordTitle, c.KeywordTitle},
		{&t.KeywordDesc, c.KeywordDesc},
		{&t.CodeBlock, c.CodeBlock},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	if len(c.IconClasses) > 0 {
		t.IconClasses = c.IconClasses
	}
	return t
}

func newInspectReport(s template.Summary) inspectReport {
	r := inspectReport{Path: s.Path, Slides: make([]inspectSlide, len(s.Slides)), Problems: s.Problems()}
	for i, sl := range s.Slides {
		r.Slides[i] = inspectSlide{
			Index:        sl.Index + 1,
			Title:        sl.Title,
			Subtitle:     sl.Subtitle,
			KeywordItems: sl.KeywordItems,
			Icons:        sl.Icons,
			CodeBlocks:   sl.CodeBlocks,
			HasHeader:    sl.HasHeader,
			HasContent:   sl.HasContent,
		}
	}
	return r
}

// printInspectReport outputs a human-readable summary.
func printInspectReport(w io.Writer, r inspectReport) {
	fmt.Fprintf(w, "%s: %d slide(s)\n", r.Path, len(r.Slides))
	for _, sl := range r.Slides {
		title := sl.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "  %d. %s", sl.Index, title)
		if sl.Subtitle != "" {
			fmt.Fprintf(w, " / %s", sl.Subtitle)
		}
		fmt.Fprintf(w, " [keywords: %d, icons: %d, code: %d]\n", sl.KeywordItems, sl.Icons, sl.CodeBlocks)
	}
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  [WARN] %s\n", p)
	}
}
