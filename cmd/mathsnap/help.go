package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathsnap [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  snap       Capture a region, extract text, render notation (default)")
	fmt.Fprintln(w, "  render     Render LaTeX text to an image without capture")
	fmt.Fprintln(w, "  classify   Tell whether text is LaTeX notation")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check external tools and settings")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mathsnap help <command>' for details on a specific command.")
}

func printRunFlags(w io.Writer) {
	fmt.Fprintln(w, "  -o, --output <dir>          Directory for rendered images")
	fmt.Fprintln(w, "      --renderer <s>          Render backend: latex, browser")
	fmt.Fprintln(w, "      --render-timeout <d>    Timeout for each render (e.g. 30s)")
	fmt.Fprintln(w, "      --review <s>            After rendering: none, viewer, editor")
	fmt.Fprintln(w, "      --html                  Write an HTML review page next to the image")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs and timings")
}

// printSnapUsage prints usage for the snap command.
func printSnapUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathsnap [snap] [image] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Select a screen region, extract its text and copy it to the clipboard.")
	fmt.Fprintln(w, "LaTeX notation is also rendered to an image. One notification reports the outcome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  image    Existing screenshot to use instead of capturing (optional)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture/OCR:")
	fmt.Fprintln(w, "      --ocr <s>               OCR backend: mistral, tesseract")
	fmt.Fprintln(w, "      --ocr-timeout <d>       Timeout for the OCR call (e.g. 1m)")
	fmt.Fprintln(w, "      --capture-timeout <d>   Timeout for the region selection (0 = none)")
	fmt.Fprintln(w, "      --no-notify             Do not send a desktop notification")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	printRunFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MISTRAL_API_KEY             API key for the mistral backend")
	fmt.Fprintln(w, "  MATHSNAP_CONFIG, MATHSNAP_OUTPUT_DIR, MATHSNAP_OCR, MATHSNAP_RENDERER,")
	fmt.Fprintln(w, "  MATHSNAP_REVIEW, MATHSNAP_OCR_TIMEOUT, MATHSNAP_RENDER_TIMEOUT,")
	fmt.Fprintln(w, "  MATHSNAP_CAPTURE_TIMEOUT, MATHSNAP_DPI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 error, 2 usage/config, 3 capture, 4 OCR, 5 render")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathsnap render [latex|-] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sanitize LaTeX and render it to an image. Reads stdin when the argument is - or missing.")
	fmt.Fprintln(w, "Prints the image path. Rendering errors include the LaTeX diagnostic.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printRunFlags(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	w := env.Stdout
	switch args[0] {
	case "snap":
		printSnapUsage(w)
	case "render":
		printRenderUsage(w)
	case "classify":
		fmt.Fprintln(w, "Usage: mathsnap classify [text|-]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Print \"notation\" and the sanitized LaTeX, or \"text\". Reads stdin when the argument is - or missing.")
	case "config":
		fmt.Fprintln(w, "Usage: mathsnap config [-c name]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Print the configuration after file, environment and defaults are merged. The API key is redacted.")
	case "doctor":
		fmt.Fprintln(w, "Usage: mathsnap doctor [--json] [-c name]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check capture, clipboard, notification, viewer and render tools, the OCR backend and output directory.")
	case "completion":
		printCompletionUsage(w)
	case "version":
		fmt.Fprintln(w, "Usage: mathsnap version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case "help":
		fmt.Fprintln(w, "Usage: mathsnap help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
