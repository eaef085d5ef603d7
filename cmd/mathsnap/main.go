package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// hasVerboseFlag scans args before flag parsing, which happens per command.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// runMain dispatches to a command and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	cmd, rest := "snap", args
	if len(args) > 0 && isCommand(args[0]) {
		cmd, rest = args[0], args[1:]
	}

	switch cmd {
	case "snap":
		return runSnapCmd(ctx, rest, env)
	case "render":
		return runRenderCmd(ctx, rest, env)
	case "classify":
		return runClassifyCmd(rest, env)
	case "config":
		return runConfigCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		return runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "mathsnap %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	}
	return ExitGeneral
}

// commands lists the subcommand names.
var commands = []string{"snap", "render", "classify", "config", "doctor", "completion", "version", "help"}

// isCommand reports whether arg names a subcommand. Anything else, including
// flags, goes to the default snap command.
func isCommand(arg string) bool {
	for _, c := range commands {
		if arg == c {
			return true
		}
	}
	return false
}
