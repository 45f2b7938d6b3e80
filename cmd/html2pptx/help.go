package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pptx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert HTML slide decks to PowerPoint")
	fmt.Fprintln(w, "  inspect    Check a deck against the slide template")
	fmt.Fprintln(w, "  doctor     Check Chrome and system readiness")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2pptx help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pptx convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert HTML slide decks to PPTX. Every top-level .slide element becomes")
	fmt.Fprintln(w, "one 16:9 slide with editable text.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output .pptx file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-file timeout (default 2m)")
	fmt.Fprintln(w, "      --font-timeout <d>    Web font wait (default 10s)")
	fmt.Fprintln(w, "      --background <mode>   snapshot (default), shapes, none")
	fmt.Fprintln(w, "      --browser <path>      Chrome/Chromium binary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Presentation title (\"\" = first slide title)")
	fmt.Fprintln(w, "      --creator <s>         Presentation author")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show progress and timing")
}

// printInspectUsage prints usage for the inspect command.
func printInspectUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pptx inspect <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse a deck without a browser and list the slides, titles, keyword")
	fmt.Fprintln(w, "items, icons and code blocks the converter will find.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (template class names)")
	fmt.Fprintln(w, "      --json                Output as JSON")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pptx doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, container/CI settings, writable directories and the")
	fmt.Fprintln(w, "PPTX writer.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dir>        Also check this output directory")
	fmt.Fprintln(w, "      --json                Output as JSON")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pptx config [name]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration convert would use, as YAML. Without a name,")
	fmt.Fprintln(w, "HTML2PPTX_CONFIG is used, then built-in defaults.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "inspect":
		printInspectUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: html2pptx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: html2pptx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
