package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Panic copies part of its input and then crashes.
func Panic(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "panic [-c BYTES] [MESSAGE]...",
		Short: "Copy BYTES of standard input to standard output, then crash.",
	}

	count := cmd.Flags().Int64Long("bytes", 'c', 0, "number of bytes to copy before crashing")

	return cmd.Run(virtOS, func() int {
		if _, err := io.CopyN(virtOS.Stdout(), virtOS.Stdin(), *count); err != nil && err != io.EOF {
			cmd.LogProgramError(virtOS, err)
			return 1
		}

		message := strings.Join(cmd.Flags().Args(), " ")
		if message == "" {
			message = "Segmentation fault"
		}
		panic(errors.New(message))
	})
}

// Segfault fails.
func Segfault(virtOS vos.VOS) int {
	name := virtOS.Args()[0]
	fmt.Fprintf(virtOS.Stderr(), "%s: Segmentation fault\n", name)

	return 139
}

var _ vos.ProcessFunc = Panic
var _ vos.ProcessFunc = Segfault

func init() {
	mustAddBinCmd("panic", Panic)
	mustAddBinCmd("segfault", Segfault)
}
