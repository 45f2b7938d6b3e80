package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/config"
	"github.com/alnah/go-html2pptx/internal/fileutil"
	"github.com/alnah/go-html2pptx/internal/hints"
	flag "github.com/spf13/pflag"
)

// Sentinel errors for the convert command.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoFilesFound       = errors.New("no HTML files found")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrConversionFailed   = errors.New("conversion failed")
)

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printConvertUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return err
	}

	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if _, err := html2pptx.ParseBackgroundMode(cfg.Background.Mode); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForBackgroundMode())
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout, err := resolveDuration("--timeout", flags.render.timeout, envCfg.Timeout, cfg.Timeout())
	if err != nil {
		return err
	}
	fontTimeout, err := resolveDuration("--font-timeout", flags.render.fontTimeout, envCfg.FontTimeout, cfg.FontTimeout())
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFilesFound, inputPath)
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts := buildOptions(cfg, timeout, fontTimeout, flags.render.browserBin, log)

	workers := min(resolvePoolSize(flags.workers, envCfg.Workers, cfg.Render.Workers), len(files))
	log.Info("convert: starting", "files", len(files), "workers", workers)

	start := env.Now()
	results, err := env.Batch(ctx, workers, files, opts...)
	if err != nil {
		if errors.Is(err, html2pptx.ErrBrowserConnect) {
			return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
		}
		return err
	}

	failed := printResults(results, flags.common.quiet, flags.common.verbose, cfg.Template.Slide, env)
	log.Info("convert: finished", "elapsed", env.Now().Sub(start).Round(time.Millisecond))
	if failed > 0 {
		return conversionError(results, failed)
	}
	return nil
}

// loadConfig loads the named config, the env-provided one, or an empty
// config when neither is set.
func loadConfig(flagName, envName string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return &config.Config{}, nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(userConfigCandidates(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// userConfigCandidates returns where a named config would be looked up in
// the user config directory.
func userConfigCandidates(name string) []string {
	if fileutil.IsFilePath(name) {
		return nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-html2pptx", name+".yaml")}
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.render.background != "" {
		cfg.Background.Mode = flags.render.background
	}
	if flags.document.title != "" {
		cfg.Document.Title = flags.document.title
	}
	if flags.document.creator != "" {
		cfg.Document.Creator = flags.document.creator
	}
}

// resolveDuration picks flag > env > config. A zero result keeps the
// library default.
func resolveDuration(name, flagValue string, envValue, cfgValue time.Duration) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q: %v", ErrUsage, name, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrUsage, name, flagValue)
		}
		return d, nil
	}
	if envValue > 0 {
		return envValue, nil
	}
	return cfgValue, nil
}

// resolveInputPath returns the positional input or the configured default.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir returns the output flag or the configured default.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// newLogger returns the CLI logger: warnings by default, progress with
// verbose, errors only with quiet.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// buildOptions translates the merged config into converter options.
func buildOptions(cfg *config.Config, timeout, fontTimeout time.Duration, browserBin string, log *slog.Logger) []html2pptx.Option {
	opts := []html2pptx.Option{
		html2pptx.WithLogger(log),
		html2pptx.WithBackgroundMode(html2pptx.BackgroundMode(cfg.Background.Mode)),
		html2pptx.WithTemplate(html2pptx.Template{
			Slide:        cfg.Template.Slide,
			Header:       cfg.Template.Header,
			Content:      cfg.Template.Content,
			Title:        cfg.Template.Title,
			Subtitle:     cfg.Template.Subtitle,
			KeywordItem:  cfg.Template.KeywordItem,
			KeywordTitle: cfg.Template.KeywordTitle,
			KeywordDesc:  cfg.Template.KeywordDesc,
			CodeBlock:    cfg.Template.CodeBlock,
			IconClasses:  cfg.Template.IconClasses,
		}),
		html2pptx.WithLayout(html2pptx.Layout{
			Width:            cfg.Render.Width,
			Height:           cfg.Render.Height,
			TextPadding:      cfg.Layout.TextPadding,
			DefaultImageSize: cfg.Layout.DefaultImageSize,
			FontScale:        cfg.Layout.FontScale,
			DefaultFont:      cfg.Layout.DefaultFont,
			BoldWeight:       cfg.Layout.BoldWeight,
		}),
		html2pptx.WithIconScale(cfg.Render.IconScale),
		html2pptx.WithDeviceScale(cfg.Render.DeviceScale),
		html2pptx.WithDocumentProperties(cfg.Document.Title, cfg.Document.Creator),
	}
	if timeout > 0 {
		opts = append(opts, html2pptx.WithTimeout(timeout))
	}
	if fontTimeout > 0 {
		opts = append(opts, html2pptx.WithFontTimeout(fontTimeout))
	}
	if browserBin != "" {
		opts = append(opts, html2pptx.WithBrowserBin(browserBin))
	}
	return opts
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []html2pptx.Result, quiet, verbose bool, slideClass string, env *Environment) int {
	summary := html2pptx.Summarize(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err, slideClass))
			continue
		}

		if r.Fonts == html2pptx.FontsTimedOut && !quiet {
			fmt.Fprintf(env.Stderr, "WARNING %s: fonts not loaded%s\n", r.InputPath, hints.ForFontTimeout())
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d slides, %d skipped, %v)\n",
				r.InputPath, r.OutputPath, r.Slides, r.Skipped, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// hintFor returns an actionable hint for a per-file failure, if any.
func hintFor(err error, slideClass string) string {
	switch {
	case errors.Is(err, html2pptx.ErrTimeout):
		return hints.ForTimeout()
	case errors.Is(err, html2pptx.ErrNoSlidesFound):
		if slideClass == "" {
			slideClass = "slide"
		}
		return hints.ForNoSlides(slideClass)
	case errors.Is(err, html2pptx.ErrWrite):
		return hints.ForOutputDirectory()
	case errors.Is(err, html2pptx.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	}
	return ""
}

// conversionError summarizes failures. When every file failed, the first
// cause is kept so the exit code reflects it.
func conversionError(results []html2pptx.Result, failed int) error {
	if failed < len(results) {
		return fmt.Errorf("%w: %d of %d file(s)", ErrConversionFailed, failed, len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%w: %d of %d file(s): %w", ErrConversionFailed, failed, len(results), r.Err)
		}
	}
	return ErrConversionFailed
}
