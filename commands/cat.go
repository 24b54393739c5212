package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Cat implements the UNIX cat command.
func Cat(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cat [OPTION]... [FILE]...",
		Short: "Concatenate FILE(s) to standard output.",
	}

	number := cmd.Flags().BoolLong("number", 'n', "number all output lines")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		line := 0

		return cmd.RunEachFileOrStdin(virtOS, cmd.Flags().Args(), func(_ string, fd io.Reader) error {
			if !*number {
				_, err := io.Copy(w, fd)
				return err
			}

			scanner := bufio.NewScanner(fd)
			for scanner.Scan() {
				line++
				if _, err := fmt.Fprintf(w, "%6d\t%s\n", line, scanner.Text()); err != nil {
					return err
				}
			}
			return scanner.Err()
		})
	})
}

var _ vos.ProcessFunc = Cat

func init() {
	mustAddBinCmd("cat", Cat)
}
