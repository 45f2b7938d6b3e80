package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-html2pptx/internal/fileutil"
	"github.com/alnah/go-html2pptx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxClassLength    = 100 // CSS class name
	MaxIconClasses    = 100
	MaxFontLength     = 100 // Font family name
	MaxTitleLength    = 200 // Document title
	MaxCreatorLength  = 100
	MaxDurationLength = 20 // "2m30s"
)

// Viewport bounds in CSS pixels.
const (
	MinViewport = 320
	MaxViewport = 7680
)

// Background modes.
const (
	BackgroundSnapshot = "snapshot"
	BackgroundShapes   = "shapes"
	BackgroundNone     = "none"
)

// Config holds all configuration for deck conversion.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Render     RenderConfig     `yaml:"render"`
	Template   TemplateConfig   `yaml:"template"`
	Layout     LayoutConfig     `yaml:"layout"`
	Background BackgroundConfig `yaml:"background"`
	Document   DocumentConfig   `yaml:"document"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// RenderConfig defines browser rendering options.
// Durations use Go syntax ("90s", "2m"); empty keeps the default.
type RenderConfig struct {
	Width       int     `yaml:"width"`       // Viewport width in px (default: 1280)
	Height      int     `yaml:"height"`      // Viewport height in px (default: 720)
	DeviceScale float64 `yaml:"deviceScale"` // Screenshot pixel ratio (default: 1)
	IconScale   float64 `yaml:"iconScale"`   // Glyph capture magnification (default: 5)
	FontTimeout string  `yaml:"fontTimeout"` // Web font wait (default: 10s)
	Timeout     string  `yaml:"timeout"`     // Per-file limit (default: 2m)
	Workers     int     `yaml:"workers"`     // 0 = GOMAXPROCS
}

// TemplateConfig overrides the class names the extractor looks for.
// Empty fields keep the standard template's names.
type TemplateConfig struct {
	Slide        string   `yaml:"slide"`
	Header       string   `yaml:"header"`
	Content      string   `yaml:"content"`
	Title        string   `yaml:"title"`
	Subtitle     string   `yaml:"subtitle"`
	KeywordItem  string   `yaml:"keywordItem"`
	KeywordTitle string   `yaml:"keywordTitle"`
	KeywordDesc  string   `yaml:"keywordDesc"`
	CodeBlock    string   `yaml:"codeBlock"`
	IconClasses  []string `yaml:"iconClasses"` // Replaces the built-in list when set
}

// LayoutConfig defines geometry and typography mapping.
type LayoutConfig struct {
	TextPadding      float64 `yaml:"textPadding"`      // Extra text box width in px (default: 30)
	DefaultImageSize float64 `yaml:"defaultImageSize"` // Image width when none is known (default: 20)
	FontScale        float64 `yaml:"fontScale"`        // Points per CSS pixel (default: 0.75)
	DefaultFont      string  `yaml:"defaultFont"`      // Fallback for generic families (default: Calibri)
	BoldWeight       int     `yaml:"boldWeight"`       // Minimum bold weight (default: 700)
}

// BackgroundConfig defines how slide backgrounds are reproduced.
type BackgroundConfig struct {
	Mode string `yaml:"mode"` // "snapshot", "shapes", "none" (default: snapshot)
}

// DocumentConfig defines presentation properties.
type DocumentConfig struct {
	Title   string `yaml:"title"`
	Creator string `yaml:"creator"`
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	// Validate render fields
	if err := validateViewport("render.width", c.Render.Width); err != nil {
		return err
	}
	if err := validateViewport("render.height", c.Render.Height); err != nil {
		return err
	}
	if c.Render.DeviceScale < 0 || c.Render.DeviceScale > 4 {
		return fmt.Errorf("%w: render.deviceScale must be between 0 and 4, got %.2f", ErrInvalidValue, c.Render.DeviceScale)
	}
	if c.Render.IconScale < 0 || c.Render.IconScale > 20 {
		return fmt.Errorf("%w: render.iconScale must be between 0 and 20, got %.2f", ErrInvalidValue, c.Render.IconScale)
	}
	if _, err := parseDuration("render.fontTimeout", c.Render.FontTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("%w: render.workers must not be negative, got %d", ErrInvalidValue, c.Render.Workers)
	}

	// Validate template class names
	classes := []struct{ field, value string }{
		{"template.slide", c.Template.Slide},
		{"template.header", c.Template.Header},
		{"template.content", c.Template.Content},
		{"template.title", c.Template.Title},
		{"template.subtitle", c.Template.Subtitle},
		{"template.keywordItem", c.Template.KeywordItem},
		{"template.keywordTitle", c.Template.KeywordTitle},
		{"template.keywordDesc", c.Template.KeywordDesc},
		{"template.codeBlock", c.Template.CodeBlock},
	}
	for _, cl := range classes {
		if err := validateClassName(cl.field, cl.value); err != nil {
			return err
		}
	}
	if len(c.Template.IconClasses) > MaxIconClasses {
		return fmt.Errorf("%w: template.iconClasses (%d entries, max %d)", ErrFieldTooLong, len(c.Template.IconClasses), MaxIconClasses)
	}
	for i, class := range c.Template.IconClasses {
		if class == "" {
			return fmt.Errorf("%w: template.iconClasses[%d] is empty", ErrInvalidValue, i)
		}
		if err := validateClassName(fmt.Sprintf("template.iconClasses[%d]", i), class); err != nil {
			return err
		}
	}

	// Validate layout fields
	if c.Layout.TextPadding < 0 {
		return fmt.Errorf("%w: layout.textPadding must not be negative", ErrInvalidValue)
	}
	if c.Layout.DefaultImageSize < 0 {
		return fmt.Errorf("%w: layout.defaultImageSize must not be negative", ErrInvalidValue)
	}
	if c.Layout.FontScale < 0 || c.Layout.FontScale > 10 {
		return fmt.Errorf("%w: layout.fontScale must be between 0 and 10, got %.2f", ErrInvalidValue, c.Layout.FontScale)
	}
	if err := validateFieldLength("layout.defaultFont", c.Layout.DefaultFont, MaxFontLength); err != nil {
		return err
	}
	if c.Layout.BoldWeight != 0 && (c.Layout.BoldWeight < 100 || c.Layout.BoldWeight > 900) {
		return fmt.Errorf("%w: layout.boldWeight must be between 100 and 900, got %d", ErrInvalidValue, c.Layout.BoldWeight)
	}

	if c.Background.Mode != "" {
		switch strings.ToLower(c.Background.Mode) {
		case BackgroundSnapshot, BackgroundShapes, BackgroundNone:
			// valid
		default:
			return fmt.Errorf("%w: background.mode %q (must be snapshot, shapes, or none)", ErrInvalidValue, c.Background.Mode)
		}
	}

	if err := validateFieldLength("document.title", c.Document.Title, MaxTitleLength); err != nil {
		return err
	}
	return validateFieldLength("document.creator", c.Document.Creator, MaxCreatorLength)
}

// FontTimeout returns render.fontTimeout, or 0 when unset.
func (c *Config) FontTimeout() time.Duration {
	d, _ := parseDuration("render.fontTimeout", c.Render.FontTimeout)
	return d
}

// Timeout returns render.timeout, or 0 when unset.
func (c *Config) Timeout() time.Duration {
	d, _ := parseDuration("render.timeout", c.Render.Timeout)
	return d
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateViewport(fieldName string, v int) error {
	if v != 0 && (v < MinViewport || v > MaxViewport) {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidValue, fieldName, MinViewport, MaxViewport, v)
	}
	return nil
}

// validateClassName rejects names that would change the meaning of the
// selector they are embedded in.
func validateClassName(fieldName, value string) error {
	if err := validateFieldLength(fieldName, value, MaxClassLength); err != nil {
		return err
	}
	if strings.ContainsAny(value, " .,#>+~:[]()*\"'\\") {
		return fmt.Errorf("%w: %s %q is not a plain class name", ErrInvalidValue, fieldName, value)
	}
	return nil
}

func parseDuration(fieldName, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	if err := validateFieldLength(fieldName, value, MaxDurationLength); err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, fieldName)
	}
	return d, nil
}

// DefaultConfig returns a configuration where every field keeps its
// built-in default.
func DefaultConfig() *Config {
	return &Config{
		Input:      InputConfig{DefaultDir: ""},
		Output:     OutputConfig{DefaultDir: ""},
		Background: BackgroundConfig{Mode: BackgroundSnapshot},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.DecodeFile(configPath, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-html2pptx/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-html2pptx", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
