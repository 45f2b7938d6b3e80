// Package browser drives headless Chrome through go-rod and implements the
// extract.Session and extract.Element interfaces on top of it.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-html2pptx/internal/process"
)

// Sentinel errors for browser operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
)

// Defaults for Options.
const (
	DefaultWidth       = 1280
	DefaultHeight      = 720
	DefaultDeviceScale = 1.0
	DefaultIconScale   = 5.0
	DefaultFontSettle  = 200 * time.Millisecond
)

// Options configures the browser and every session it opens.
type Options struct {
	Width, Height int
	DeviceScale   float64
	// IconScale enlarges icon clones before capture so the glyph stays
	// sharp once placed on the slide.
	IconScale float64
	// FontSettle is waited after document.fonts resolves.
	FontSettle time.Duration
	// HideInBackground is a selector list hidden from background snapshots
	// because those elements are placed separately.
	HideInBackground string
	// Bin overrides ROD_BROWSER_BIN.
	Bin    string
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.DeviceScale <= 0 {
		o.DeviceScale = DefaultDeviceScale
	}
	if o.IconScale <= 0 {
		o.IconScale = DefaultIconScale
	}
	if o.FontSettle < 0 {
		o.FontSettle = 0
	}
	if o.Bin == "" {
		o.Bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Browser is one Chrome process, launched on first use. A worker owns one
// Browser for its lifetime and opens a fresh Session per file.
type Browser struct {
	opts Options

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// New returns a Browser that has not started yet.
func New(opts Options) *Browser {
	return &Browser{opts: opts.withDefaults()}
}

// Start launches Chrome if it is not already running.
func (b *Browser) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ensureBrowser()
}

// ensureBrowser lazily launches and connects. Callers hold b.mu.
func (b *Browser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New().
		Set("window-size", fmt.Sprintf("%d,%d", b.opts.Width, b.opts.Height)).
		Set("hide-scrollbars").
		Set("force-color-profile", "srgb")

	// Use pre-installed browser if specified (Docker/containerized environments)
	if b.opts.Bin != "" {
		l = l.Bin(b.opts.Bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || b.opts.Bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	br := rod.New().ControlURL(u)
	if err := br.Connect(); err != nil {
		_ = process.KillTree(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.launcher = l
	b.browser = br
	b.opts.Logger.Debug("browser: launched", "pid", l.PID())
	return nil
}

// NewSession opens an isolated incognito context, launching Chrome first
// if needed.
func (b *Browser) NewSession() (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}
	ctxBrowser, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("%w: incognito context: %v", ErrPageCreate, err)
	}
	return &Session{opts: b.opts, browser: ctxBrowser, log: b.opts.Logger}, nil
}

// Kill force-terminates the Chrome process tree. The next NewSession
// launches a new one.
func (b *Browser) Kill() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.launcher == nil {
		return
	}
	if err := process.KillTree(b.launcher.PID()); err != nil {
		b.opts.Logger.Debug("browser: kill process tree", "pid", b.launcher.PID(), "error", err)
	}
	b.launcher.Kill()
	b.launcher.Cleanup()
	b.opts.Logger.Debug("browser: killed", "pid", b.launcher.PID())
	b.launcher = nil
	b.browser = nil
}

// Close shuts Chrome down gracefully and removes its profile directory.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	b.browser = nil
	b.launcher = nil
	return err
}

// Running reports whether a Chrome process is attached.
func (b *Browser) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.browser != nil
}
