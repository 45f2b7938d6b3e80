package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-html2pptx/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string        // HTML2PPTX_CONFIG: config file name or path
	Timeout     time.Duration // HTML2PPTX_TIMEOUT: per-file limit
	FontTimeout time.Duration // HTML2PPTX_FONT_TIMEOUT: web font wait
	Workers     int           // HTML2PPTX_WORKERS: parallel workers
	Background  string        // HTML2PPTX_BACKGROUND: snapshot, shapes, none
	InputDir    string        // HTML2PPTX_INPUT_DIR: default input directory
	OutputDir   string        // HTML2PPTX_OUTPUT_DIR: default output directory
	Creator     string        // HTML2PPTX_CREATOR: presentation author property
}

// knownEnvVars lists valid HTML2PPTX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HTML2PPTX_CONFIG":       true,
	"HTML2PPTX_TIMEOUT":      true,
	"HTML2PPTX_FONT_TIMEOUT": true,
	"HTML2PPTX_WORKERS":      true,
	"HTML2PPTX_BACKGROUND":   true,
	"HTML2PPTX_INPUT_DIR":    true,
	"HTML2PPTX_OUTPUT_DIR":   true,
	"HTML2PPTX_CREATOR":      true,
	"HTML2PPTX_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("HTML2PPTX_CONFIG"),
		Background: os.Getenv("HTML2PPTX_BACKGROUND"),
		InputDir:   os.Getenv("HTML2PPTX_INPUT_DIR"),
		OutputDir:  os.Getenv("HTML2PPTX_OUTPUT_DIR"),
		Creator:    os.Getenv("HTML2PPTX_CREATOR"),
	}

	cfg.Timeout = envDuration("HTML2PPTX_TIMEOUT")
	cfg.FontTimeout = envDuration("HTML2PPTX_FONT_TIMEOUT")

	if workers := os.Getenv("HTML2PPTX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

func envDuration(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return 0
}

// warnUnknownEnvVars logs warnings for unrecognized HTML2PPTX_* variables.
// Helps catch typos like HTML2PPTX_WORKER instead of HTML2PPTX_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "HTML2PPTX_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills config values the file left unset.
// Timeouts and workers are resolved separately since flags outrank them.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Background != "" && cfg.Background.Mode == "" {
		cfg.Background.Mode = env.Background
	}
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Creator != "" && cfg.Document.Creator == "" {
		cfg.Document.Creator = env.Creator
	}
}
