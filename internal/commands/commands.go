package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"
)

const prefix = "cmd "

// ErrUnknownCommand is returned by Execute for names nothing registered.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a subcommand with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse and can read flag state.
type Command struct {
	Name    string
	Usage   string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// NewFlagSet returns a FlagSet that reports errors instead of exiting and prints nothing.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// Register adds a subcommand. name is the first token of a line (e.g. "scatter").
// fs is that command's FlagSet; run is called after fs.Parse(args[1:]) succeeds.
func (r *Registry) Register(name, usage string, fs *flag.FlagSet, run func() error) {
	r.cmds[name] = &Command{Name: name, Usage: usage, FlagSet: fs, Run: run}
}

// Names returns registered command names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Usage returns the usage line for name.
func (r *Registry) Usage(name string) (string, bool) {
	cmd, ok := r.cmds[name]
	if !ok {
		return "", false
	}
	return cmd.Usage, true
}

// Parse interprets line as a terminal line. If line starts with "cmd " (case-sensitive),
// the rest is tokenized shell style and returned with ok true. Otherwise nil, false.
func Parse(line string) (args []string, ok bool, err error) {
	if !strings.HasPrefix(line, prefix) {
		return nil, false, nil
	}
	args, err = ParseArgs(line[len(prefix):])
	return args, true, err
}

// ParseArgs tokenizes a bare command line. Quotes group words, so names and paths may
// contain spaces. Blank lines and lines starting with # give no args.
func ParseArgs(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	args, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", line, err)
	}
	return args, nil
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Every flag is reset to its default first, so values never leak between runs.
// Returns an error for unknown command, parse error, or from Run().
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand")
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	cmd.FlagSet.VisitAll(func(f *flag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Run()
}

// Complete extends the last word of line as far as it is unambiguous. The first word
// completes against command names; a later word starting with "-" completes against that
// command's flags. A unique match gets a trailing space.
func (r *Registry) Complete(line string) string {
	if rest, ok := strings.CutPrefix(line, prefix); ok {
		return prefix + r.Complete(rest)
	}
	words := strings.Fields(line)
	if len(words) == 0 || strings.HasSuffix(line, " ") {
		return line
	}
	last := words[len(words)-1]
	var candidates []string
	switch {
	case len(words) == 1:
		candidates = r.Names()
	case strings.HasPrefix(last, "-"):
		cmd, ok := r.cmds[words[0]]
		if !ok {
			return line
		}
		cmd.FlagSet.VisitAll(func(f *flag.Flag) {
			candidates = append(candidates, "-"+f.Name)
		})
		last = "-" + strings.TrimLeft(last, "-")
	default:
		return line
	}
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, last) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return line
	}
	head := line[:strings.LastIndex(line, words[len(words)-1])]
	if len(matches) == 1 {
		return head + matches[0] + " "
	}
	return head + commonPrefix(matches)
}

// Hint returns the usage of the command line starts with, if it names one.
func (r *Registry) Hint(line string) string {
	words := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(words) == 0 {
		return ""
	}
	usage, _ := r.Usage(words[0])
	return usage
}

func commonPrefix(words []string) string {
	p := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, p) {
			p = p[:len(p)-1]
		}
	}
	return p
}
