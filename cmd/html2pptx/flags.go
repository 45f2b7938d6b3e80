package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Sentinel errors for command-line parsing.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds browser rendering flags.
type renderFlags struct {
	timeout     string
	fontTimeout string
	background  string
	browserBin  string
}

// documentFlags holds presentation property flags.
type documentFlags struct {
	title   string
	creator string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	workers  int
	render   renderFlags
	document documentFlags
}

// inspectFlags holds flags for the inspect command.
type inspectFlags struct {
	config string
	json   bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	json   bool
	output string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show progress and timing")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file timeout (e.g., 90s, 2m)")
	fs.StringVar(&f.fontTimeout, "font-timeout", "", "web font wait (e.g., 10s)")
	fs.StringVar(&f.background, "background", "", "background mode: snapshot, shapes, none")
	fs.StringVar(&f.browserBin, "browser", "", "Chrome/Chromium binary")
}

// addDocumentFlags adds presentation property flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "presentation title (\"\" = first slide title)")
	fs.StringVar(&f.creator, "creator", "", "presentation author")
}

// newFlagSet returns a silent FlagSet; usage is printed by the caller.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseError keeps flag.ErrHelp intact and marks everything else as a
// usage error.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := newFlagSet("convert")
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addDocumentFlags(fs, &f.document)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}

	return f, fs.Args(), nil
}

// parseInspectFlags parses inspect command flags and returns positional args.
func parseInspectFlags(args []string) (*inspectFlags, []string, error) {
	fs := newFlagSet("inspect")
	f := &inspectFlags{}
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.json, "json", false, "print the summary as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	fs := newFlagSet("doctor")
	f := &doctorFlags{}
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	fs.StringVarP(&f.output, "output", "o", "", "also check this output directory")

	if err := fs.Parse(args); err != nil {
		return nil, parseError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: doctor takes no arguments", ErrUsage)
	}
	return f, nil
}

// parseConfigFlags parses config command flags and returns the config name.
func parseConfigFlags(args []string) (string, error) {
	fs := newFlagSet("config")
	var name string
	fs.StringVarP(&name, "config", "c", "", "config file name or path")

	if err := fs.Parse(args); err != nil {
		return "", parseError(err)
	}
	if fs.NArg() > 1 {
		return "", fmt.Errorf("%w: config takes at most one argument", ErrUsage)
	}
	if name == "" && fs.NArg() == 1 {
		name = fs.Arg(0)
	}
	return name, nil
}
