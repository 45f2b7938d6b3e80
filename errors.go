package html2pptx

import (
	"errors"

	"github.com/alnah/go-html2pptx/internal/browser"
	"github.com/alnah/go-html2pptx/internal/deck"
	"github.com/alnah/go-html2pptx/internal/extract"
	"github.com/alnah/go-html2pptx/internal/style"
)

// Sentinel errors for library operations. Errors raised by internal
// packages are re-exported so callers can classify them with errors.Is.
var (
	ErrDocumentLoad           = extract.ErrDocumentLoad
	ErrNoSlidesFound          = extract.ErrNoSlidesFound
	ErrElementNotRenderable   = extract.ErrElementNotRenderable
	ErrUnsupportedColorFormat = style.ErrUnsupportedColorFormat
	ErrWrite                  = deck.ErrWrite
	ErrBrowserConnect         = browser.ErrBrowserConnect
	ErrPageCreate             = browser.ErrPageCreate

	ErrTimeout          = errors.New("conversion timed out")
	ErrEmptyInput       = errors.New("input path cannot be empty")
	ErrInvalidExtension = errors.New("input must be an .html or .htm file")
	ErrPoolClosed       = errors.New("converter pool is closed")

	// Option validation errors.
	ErrInvalidBackgroundMode = errors.New("invalid background mode")
	ErrInvalidTemplate       = errors.New("invalid template")
)
