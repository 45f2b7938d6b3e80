// Package html2pptx converts HTML slide decks to editable PowerPoint files
// using headless Chrome.
//
// # Quick Start
//
// Create a converter, convert a deck, and close when done:
//
//	conv, err := html2pptx.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, html2pptx.Input{
//	    HTMLPath:   "talk.html",
//	    OutputPath: "talk.pptx",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Slides, "slides")
//
// # Input Template
//
// Every top-level element with class "slide" becomes one slide. Inside it
// the converter recognizes .title, .subtitle, .keyword-item (with an icon,
// .keyword-title and .keyword-desc), .code-block, and the .slide-header and
// .slide-content regions. Slides are authored at 1280x720 CSS pixels, which
// maps to a 13.333x7.5 inch 16:9 slide. Class names can be changed with
// WithTemplate.
//
// # Conversion Pipeline
//
//  1. Chrome loads the file in a fresh incognito page and waits for web
//     fonts (bounded by WithFontTimeout; a timeout is reported, not fatal)
//  2. Each slide's element tree is walked: text keeps its computed font,
//     colour and alignment, while icons, code blocks and the background are
//     captured as PNG snapshots
//  3. Pixel geometry is converted to EMU and the presentation is assembled
//     with native text boxes and pictures
//
// # Parallel Processing
//
// For many files, use a ConverterPool with Batch. Each worker owns one
// browser; each file gets its own session and scratch directory:
//
//	pool, err := html2pptx.NewConverterPool(html2pptx.ResolvePoolSize(0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	results, err := html2pptx.Batch(ctx, pool, inputs)
//
// Output does not depend on the worker count.
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package html2pptx
