package commands

import (
	"fmt"
	"io"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/pipesh/core/vos"
)

// Xargs builds and runs a command from standard input.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/xargs.html
func Xargs(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "xargs [-n MAX] [COMMAND [INITIAL-ARGS]...]",
		Short: "Run COMMAND with arguments read from standard input.",
	}

	maxArgs := cmd.Flags().IntLong("max-args", 'n', 0, "use at most MAX arguments per command line")

	return cmd.Run(virtOS, func() int {
		command := cmd.Flags().Args()
		if len(command) == 0 {
			command = []string{"echo"}
		}

		exe, ok := LookupExecutable(command[0])
		if !ok {
			fmt.Fprintf(virtOS.Stderr(), "xargs: %s: No such file or directory\n", command[0])
			return 127
		}

		input, err := io.ReadAll(virtOS.Stdin())
		if err != nil {
			cmd.LogProgramError(virtOS, err)
			return 1
		}
		items, err := shlex.Split(string(input), true)
		if err != nil {
			cmd.LogProgramError(virtOS, err)
			return 1
		}

		batch := len(items)
		if *maxArgs > 0 {
			batch = *maxArgs
		}

		status := 0
		for start := 0; start == 0 || start < len(items); start += batch {
			end := start + batch
			if end > len(items) {
				end = len(items)
			}

			argv := append(append([]string{}, command...), items[start:end]...)
			if code := exe.Run(virtOS.Fork(argv)); code != 0 {
				status = 123
			}
			if batch == 0 {
				break
			}
		}
		return status
	})
}

var _ vos.ProcessFunc = Xargs

func init() {
	mustAddBinCmd("xargs", Xargs)
}
