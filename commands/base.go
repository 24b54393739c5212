package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"
	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/josephlewis42/pipesh/core/vos"
)

// allCommands holds every registered executable by name.
var allCommands = make(map[string]vos.Executable)

// ErrDuplicateCommand is raised when two executables share a name.
var ErrDuplicateCommand = errors.New("duplicate command")

func mustAdd(name string, exe vos.Executable) {
	if _, ok := allCommands[name]; ok {
		panic(fmt.Errorf("%w: %q", ErrDuplicateCommand, name))
	}
	allCommands[name] = exe
}

// mustAddBinCmd adds a program under its name, /bin and /usr/bin.
func mustAddBinCmd(name string, cmd vos.ProcessFunc) {
	exe := vos.NewProgram(name, cmd)
	mustAdd(name, exe)
	mustAdd("/bin/"+name, exe)
	mustAdd("/usr/bin/"+name, exe)
}

// mustAddShellUtil adds a shell builtin, they have no path.
func mustAddShellUtil(name string, cmd vos.ShellUtilFunc) {
	mustAdd(name, vos.NewShellUtil(name, cmd))
}

// LookupExecutable resolves a command name or path.
func LookupExecutable(name string) (vos.Executable, bool) {
	exe, ok := allCommands[name]
	return exe, ok
}

// Registry is the shell.Locator of the builtin commands.
type Registry struct{}

var _ shell.Locator = Registry{}

// LookupExecutable implements shell.Locator.
func (Registry) LookupExecutable(name string) (vos.Executable, bool) {
	return LookupExecutable(name)
}

// Names implements shell.Locator.
func (Registry) Names() []string {
	var out []string
	for name := range allCommands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// BuiltinCommand is an executable and every name it's registered under.
type BuiltinCommand struct {
	Names []string
	Exe   vos.Executable
}

// ListBuiltinCommands returns the builtins sorted by name.
func ListBuiltinCommands() []BuiltinCommand {
	byExe := make(map[vos.Executable][]string)
	for name, exe := range allCommands {
		byExe[exe] = append(byExe[exe], name)
	}

	var out []BuiltinCommand
	for exe, names := range byExe {
		sort.Strings(names)
		out = append(out, BuiltinCommand{Names: names, Exe: exe})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Exe.Name() < out[j].Exe.Name()
	})
	return out
}

func BytesToHuman(bytes int64) string {
	for _, e := range []struct {
		unit  string
		power int64
	}{
		{"P", 1e15},
		{"T", 1e12},
		{"G", 1e9},
		{"M", 1e6},
		{"K", 1e3},
	} {
		quotient := bytes / e.power
		switch {
		case quotient == 0:
			continue
		case quotient > 10:
			return fmt.Sprintf("%d%s", quotient, e.unit)
		default:
			return fmt.Sprintf("%0.1f%s", float64(bytes)/float64(e.power), e.unit)
		}
	}

	return fmt.Sprintf("%d", bytes)
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
func (s *SimpleCommand) Run(virtOS vos.VOS, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(virtOS.Args(), nil)
	if err != nil {
		virtOS.LogInvalidInvocation(err)
	}

	if err != nil && !s.NeverBail {
		fmt.Fprintf(virtOS.Stderr(), "error: %s\n\n", err)

		s.PrintHelp(virtOS.Stdout())
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(virtOS.Stdout())
		return 0
	}

	return callback()
}

// RunE is like Run, but a returned error is reported and exits with 1.
func (s *SimpleCommand) RunE(virtOS vos.VOS, callback func() error) int {
	return s.Run(virtOS, func() int {
		if err := callback(); err != nil {
			s.LogProgramError(virtOS, err)
			return 1
		}
		return 0
	})
}

// LogProgramError writes an error prefixed by the program name to stderr.
func (s *SimpleCommand) LogProgramError(virtOS vos.VOS, err error) {
	fmt.Fprintf(virtOS.Stderr(), "%s: %v\n", virtOS.Args()[0], err)
}

// RunEachFileOrStdin calls callback for each file in order, or once for stdin
// if files is empty. A file named "-" is stdin. Errors are reported and the
// remaining files are still processed.
func (s *SimpleCommand) RunEachFileOrStdin(virtOS vos.VOS, files []string, callback func(name string, fd io.Reader) error) int {
	if len(files) == 0 {
		files = []string{"-"}
	}

	status := 0
	for _, name := range files {
		if err := s.runFile(virtOS, name, callback); err != nil {
			s.LogProgramError(virtOS, err)
			status = 1
		}
	}
	return status
}

func (s *SimpleCommand) runFile(virtOS vos.VOS, name string, callback func(name string, fd io.Reader) error) error {
	if name == "-" {
		return callback(name, virtOS.Stdin())
	}

	fd, err := virtOS.Open(name)
	if err != nil {
		return err
	}
	defer fd.Close()

	return callback(name, fd)
}

// RunEachArg calls callback for each positional argument, errors are reported
// and the remaining arguments are still processed.
func (s *SimpleCommand) RunEachArg(virtOS vos.VOS, callback func(arg string) error) int {
	return s.Run(virtOS, func() int {
		status := 0
		for _, arg := range s.Flags().Args() {
			if err := callback(arg); err != nil {
				s.LogProgramError(virtOS, err)
				status = 1
			}
		}
		return status
	})
}

// mustDedent removes the common leading whitespace of every non-blank line
// and the surrounding blank lines.
func mustDedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")

	margin := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin < 0 {
		panic(fmt.Sprintf("mustDedent: blank text %q", text))
	}

	for i, line := range lines {
		if len(line) >= margin {
			lines[i] = line[margin:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

type ColorPrinter struct {
	value  *string
	virtOS vos.VOS
}

// Init sets up the flag and virtual OS to determine the color output.
func (c *ColorPrinter) Init(flags *getopt.Set, virtOS vos.VOS) {
	c.virtOS = virtOS
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

// ShouldColor is true if forced on, or set to auto and the terminal supports
// color.
func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		term := c.virtOS.Getenv("TERM")
		return term != "" && term != "dumb"
	}
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		// The decision was already made here, ignore color.NoColor.
		forced := *color
		forced.EnableColor()
		return forced.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}
