package html2pptx

import (
	"log/slog"
	"time"
)

// Option configures a Converter.
type Option func(*converterConfig)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	fontTimeout time.Duration
	logger      *slog.Logger
	tempRoot    string
	background  BackgroundMode
	template    Template
	layout      Layout
	iconScale   float64
	deviceScale float64
	browserBin  string
	title       string
	creator     string
	timestamp   time.Time

	// engine replaces the Chrome engine in tests.
	engine func(converterConfig) engine
}

// Defaults used when no option overrides them.
const (
	defaultTimeout     = 2 * time.Minute
	defaultFontTimeout = 10 * time.Second
)

func defaultConfig() converterConfig {
	return converterConfig{
		timeout:     defaultTimeout,
		fontTimeout: defaultFontTimeout,
		background:  BackgroundSnapshot,
	}
}

// WithTimeout sets the hard per-file conversion timeout. When it expires the
// browser is killed, the file's scratch directory is removed, and Convert
// returns an error wrapping ErrTimeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pptx: WithTimeout duration must be positive")
	}
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithFontTimeout bounds the wait for web fonts. A timeout is reported in
// Result.Fonts, not as an error.
// Panics if d <= 0.
func WithFontTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pptx: WithFontTimeout duration must be positive")
	}
	return func(c *converterConfig) {
		c.fontTimeout = d
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *converterConfig) {
		c.logger = l
	}
}

// WithTempRoot sets where per-file scratch directories are created.
// The default is os.TempDir().
func WithTempRoot(dir string) Option {
	return func(c *converterConfig) {
		c.tempRoot = dir
	}
}

// WithBackgroundMode selects how slide backgrounds are reproduced.
func WithBackgroundMode(m BackgroundMode) Option {
	return func(c *converterConfig) {
		c.background = m
	}
}

// WithTemplate overrides the template class names.
func WithTemplate(t Template) Option {
	return func(c *converterConfig) {
		c.template = t
	}
}

// WithLayout tunes the viewport and the pixel-to-slide mapping.
func WithLayout(l Layout) Option {
	return func(c *converterConfig) {
		c.layout = l
	}
}

// WithIconScale sets how much icon glyphs are enlarged before capture.
func WithIconScale(s float64) Option {
	return func(c *converterConfig) {
		c.iconScale = s
	}
}

// WithDeviceScale sets the screenshot pixel ratio. Values above 1 give
// sharper snapshots and larger files.
func WithDeviceScale(s float64) Option {
	return func(c *converterConfig) {
		c.deviceScale = s
	}
}

// WithBrowserBin sets the Chrome binary, overriding ROD_BROWSER_BIN.
func WithBrowserBin(path string) Option {
	return func(c *converterConfig) {
		c.browserBin = path
	}
}

// WithDocumentProperties sets the presentation title and creator. An empty
// title falls back to the first slide's title.
func WithDocumentProperties(title, creator string) Option {
	return func(c *converterConfig) {
		c.title = title
		c.creator = creator
	}
}

// WithTimestamp fixes the created and modified time written into every
// output. By default the input file's modification time is used, so
// unchanged inputs give identical outputs.
func WithTimestamp(t time.Time) Option {
	return func(c *converterConfig) {
		c.timestamp = t
	}
}

func withEngine(fn func(converterConfig) engine) Option {
	return func(c *converterConfig) {
		c.engine = fn
	}
}
