package main

import (
	"fmt"

	mathsnap "github.com/alnah/go-mathsnap"
)

// runClassifyCmd prints "notation" and the sanitized fragment, or "text".
// It exits 0 either way; the answer is the output.
func runClassifyCmd(args []string, env *Environment) int {
	_, positional, err := parseCommonFlags("classify", args, env.Stderr)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	text, err := inputText(positional, env.Stdin)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	if !mathsnap.IsNotation(text) {
		fmt.Fprintln(env.Stdout, "text")
		return ExitSuccess
	}
	fmt.Fprintln(env.Stdout, "notation")
	fmt.Fprintln(env.Stdout, mathsnap.Sanitize(text))
	return ExitSuccess
}

// runConfigCmd prints the effective configuration as YAML, API key redacted.
func runConfigCmd(args []string, env *Environment) int {
	flags, positional, err := parseCommonFlags("config", args, env.Stderr)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	if len(positional) > 0 {
		fmt.Fprintln(env.Stderr, "error: config takes no arguments")
		return ExitUsage
	}

	cfg, err := resolveConfig(flags.config, env)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	out, err := cfg.Dump()
	if err != nil {
		printError(env.Stderr, err, "")
		return ExitGeneral
	}
	fmt.Fprint(env.Stdout, out)
	return ExitSuccess
}
