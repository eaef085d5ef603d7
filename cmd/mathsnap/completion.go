package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell is a shell with a completion script generator.
type Shell string

// Supported shells.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagKind selects how a flag's value is completed.
type flagKind int

const (
	flagValue flagKind = iota // free-form value
	flagBool                  // no value
	flagEnum                  // one of Values
	flagFile                  // file matching FileGlob
	flagDir                   // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Kind     flagKind
	Desc     string
	Values   []string
	FileGlob string // comma-separated, e.g. "*.yaml,*.yml"
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	FilePattern string // glob for positional file arguments; empty if none
}

// completionMeta holds the hints a FlagSet cannot express. Names, shorthands
// and descriptions come from the FlagSets themselves.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

var flagCompletionMeta = map[string]completionMeta{
	"review":   {Values: []string{"none", "viewer", "editor"}},
	"ocr":      {Values: []string{"mistral", "tesseract"}},
	"renderer": {Values: []string{"latex", "browser"}},
	"config":   {FileGlob: "*.yaml,*.yml"},
	"output":   {IsDir: true},
}

// imageGlob matches the screenshots snap accepts as an argument.
const imageGlob = "*.png,*.jpg,*.jpeg,*.webp,*.bmp"

// flagSetFor builds the same FlagSet the command parses with.
func flagSetFor(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SortFlags = false
	switch name {
	case "snap":
		f := &runFlags{}
		addRunFlags(fs, f)
		addSnapFlags(fs, f)
	case "render":
		addRunFlags(fs, &runFlags{})
	case "doctor":
		addDoctorFlags(fs, &doctorFlags{})
	case "classify", "config":
		addCommonFlags(fs, &commonFlags{})
	}
	return fs
}

// extractFlags converts a FlagSet into flag definitions enriched with
// flagCompletionMeta.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}
		if f.Value.Type() == "bool" {
			fd.Kind = flagBool
		}
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Kind, fd.Values = flagEnum, meta.Values
			case meta.FileGlob != "":
				fd.Kind, fd.FileGlob = flagFile, meta.FileGlob
			case meta.IsDir:
				fd.Kind = flagDir
			}
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "snap", Desc: "Capture a region, extract text, render notation", Flags: extractFlags(flagSetFor("snap")), FilePattern: imageGlob},
		{Name: "render", Desc: "Render LaTeX text to an image", Flags: extractFlags(flagSetFor("render"))},
		{Name: "classify", Desc: "Tell whether text is LaTeX notation", Flags: extractFlags(flagSetFor("classify"))},
		{Name: "config", Desc: "Print the effective configuration", Flags: extractFlags(flagSetFor("config"))},
		{Name: "doctor", Desc: "Check external tools and settings", Flags: extractFlags(flagSetFor("doctor"))},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// valueFlags collects flags that take a completable value across commands,
// keyed by long name.
func valueFlags(cmds []commandDef) []flagDef {
	seen := make(map[string]flagDef)
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Kind == flagEnum || f.Kind == flagFile || f.Kind == flagDir {
				seen[f.Long] = f
			}
		}
	}
	out := make([]flagDef, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Long < out[j].Long })
	return out
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

func flagWords(flags []flagDef) string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for mathsnap\n")
	b.WriteString("_mathsnap() {\n")
	b.WriteString("    local cur prev cmd i\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=snap\n")
	b.WriteString("    for ((i = 1; i < COMP_CWORD; i++)); do\n")
	fmt.Fprintf(&b, "        case \"${COMP_WORDS[i]}\" in\n            %s) cmd=\"${COMP_WORDS[i]}\"; break ;;\n        esac\n", strings.Join(commandNames(cmds), "|"))
	b.WriteString("    done\n\n")

	b.WriteString("    case \"$prev\" in\n")
	for _, f := range valueFlags(cmds) {
		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		switch f.Kind {
		case flagEnum:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", pattern, strings.Join(f.Values, " "))
		case flagDir:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", pattern)
		case flagFile:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", pattern)
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    if [[ \"$cur\" == -* ]]; then\n")
	b.WriteString("        case \"$cmd\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "            %s) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", c.Name, flagWords(c.Flags))
	}
	b.WriteString("        esac\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	fmt.Fprintf(&b, "        help) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", strings.Join(commandNames(cmds), " "))
	fmt.Fprintf(&b, "        completion) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", "bash zsh fish")
	b.WriteString("        snap)\n")
	b.WriteString("            if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("            fi\n")
	b.WriteString("            COMPREPLY+=($(compgen -f -- \"$cur\")) ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -o filenames -F _mathsnap mathsnap\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshEscape escapes text for use inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

func zshSpec(f flagDef) string {
	action := ""
	switch f.Kind {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagDir:
		action = fmt.Sprintf(":%s:_files -/", f.Long)
	case flagFile:
		action = fmt.Sprintf(":%s:_files -g %q", f.Long, strings.ReplaceAll(f.FileGlob, ",", " "))
	default:
		action = fmt.Sprintf(":%s: ", f.Long)
	}
	desc := "[" + zshEscape(f.Desc) + "]"
	if f.Short == "" {
		return fmt.Sprintf("'--%s%s%s'", f.Long, desc, action)
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef mathsnap\n\n")
	b.WriteString("_mathsnap() {\n")
	b.WriteString("    local curcontext=\"$curcontext\" state line\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments -C '1: :->command' '*:: :->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("        command)\n")
	b.WriteString("            _describe -t commands 'mathsnap command' commands\n")
	b.WriteString("            _files -g '" + strings.ReplaceAll(imageGlob, ",", " ") + "'\n")
	b.WriteString("            ;;\n")
	b.WriteString("        args)\n")
	b.WriteString("            case $line[1] in\n")
	for _, c := range cmds {
		switch {
		case c.Name == "help":
			fmt.Fprintf(&b, "                help) _describe -t commands 'command' commands ;;\n")
		case c.Name == "completion":
			b.WriteString("                completion) _values 'shell' bash zsh fish ;;\n")
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "                %s)\n                    _arguments -s \\\n", c.Name)
			for _, f := range c.Flags {
				fmt.Fprintf(&b, "                        %s \\\n", zshSpec(f))
			}
			if c.FilePattern != "" {
				fmt.Fprintf(&b, "                        '*:file:_files -g %q'\n", strings.ReplaceAll(c.FilePattern, ",", " "))
			} else {
				b.WriteString("                        '*:text: '\n")
			}
			b.WriteString("                    ;;\n")
		}
	}
	b.WriteString("            esac\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mathsnap mathsnap\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// fishEscape escapes text for a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for mathsnap\n")
	b.WriteString("complete -c mathsnap -f\n\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mathsnap -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")

	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		if c.Name == "snap" {
			cond = "__fish_use_subcommand; or " + cond
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mathsnap -n '%s' -l %s", cond, f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch f.Kind {
			case flagBool:
			case flagEnum:
				fmt.Fprintf(&b, " -x -a '%s'", strings.Join(f.Values, " "))
			case flagDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			case flagFile:
				b.WriteString(" -r -F")
			default:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishEscape(f.Desc))
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "complete -c mathsnap -n '%s' -F\n", cond)
		}
	}
	b.WriteString("complete -c mathsnap -n '__fish_seen_subcommand_from completion' -x -a 'bash zsh fish'\n")
	fmt.Fprintf(&b, "complete -c mathsnap -n '__fish_seen_subcommand_from help' -x -a '%s'\n", strings.Join(commandNames(cmds), " "))

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) int {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return ExitSuccess
	}
	if len(args) > 1 {
		fmt.Fprintf(env.Stderr, "error: %v: completion takes one shell\n", ErrUsage)
		return ExitUsage
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		if errors.Is(err, ErrUnsupportedShell) {
			return ExitUsage
		}
		return ExitGeneral
	}
	return ExitSuccess
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathsnap completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a shell completion script.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mathsnap completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mathsnap completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mathsnap completion fish > ~/.config/fish/completions/mathsnap.fish")
}
