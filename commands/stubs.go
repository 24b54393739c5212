package commands

import (
	"fmt"
	"io"

	"github.com/josephlewis42/pipesh/core/vos"
)

// exitNotAvailable matches the status shells use for missing commands.
const exitNotAvailable = 127

// Stub is a program that ignores its input and arguments and writes a fixed
// message.
type Stub struct {
	Name  string
	Use   string
	Short string

	// Output is written as-is to stdout, or stderr if ToStderr is set.
	Output   string
	ToStderr bool
	ExitCode int
}

// Program returns the stub as a runnable program.
func (s Stub) Program() vos.ProcessFunc {
	return func(virtOS vos.VOS) int {
		cmd := &SimpleCommand{
			Use:       s.Use,
			Short:     s.Short,
			NeverBail: true,
		}

		return cmd.Run(virtOS, func() int {
			w := virtOS.Stdout()
			if s.ToStderr {
				w = virtOS.Stderr()
			}
			io.WriteString(w, s.Output)
			return s.ExitCode
		})
	}
}

// interpreterStub reports that a language runtime isn't installed.
func interpreterStub(name, use string) Stub {
	return Stub{
		Name:     name,
		Use:      use,
		Short:    fmt.Sprintf("The %s interpreter, not available in this shell.", name),
		Output:   fmt.Sprintf("%s: interpreter not available\n", name),
		ToStderr: true,
		ExitCode: exitNotAvailable,
	}
}

var stubs = []Stub{
	{
		Name:   "clear",
		Use:    "clear",
		Short:  "Clear the terminal screen.",
		Output: "\x1b[H\x1b[2J",
	},
	{
		Name:  "sync",
		Use:   "sync [FILE]...",
		Short: "Flush cached writes, a no-op on the in-memory filesystem.",
	},
	{
		Name:  "lsb_release",
		Use:   "lsb_release [-a]",
		Short: "Print distribution information.",
		Output: mustDedent(`
			Distributor ID:	Pipesh
			Description:	pipesh virtual shell
			Release:	1.0
			Codename:	pipesh
		`) + "\n",
	},
	{
		Name:     "make",
		Use:      "make [TARGET]...",
		Short:    "Build targets from a makefile.",
		Output:   "make: *** No targets specified and no makefile found.  Stop.\n",
		ToStderr: true,
		ExitCode: 2,
	},
	interpreterStub("perl", "perl [switches] [--] [programfile] [arguments]"),
	interpreterStub("php", "php [options] [-f] <file> [--] [args...]"),
	interpreterStub("python", "python [option] ... [-c cmd | -m mod | file | -] [arg] ..."),
	interpreterStub("python3", "python3 [option] ... [-c cmd | -m mod | file | -] [arg] ..."),
}

func init() {
	for _, stub := range stubs {
		mustAddBinCmd(stub.Name, stub.Program())
	}
}
