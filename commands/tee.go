package commands

import (
	"io"
	"os"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Tee implements the POSIX tee command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/tee.html
func Tee(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "tee [-a] [FILE]...",
		Short: "Copy standard input to each FILE, and also to standard output.",
	}

	appendFiles := cmd.Flags().BoolLong("append", 'a', "append to the given FILEs, do not overwrite")

	return cmd.RunE(virtOS, func() error {
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if *appendFiles {
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}

		writers := []io.Writer{virtOS.Stdout()}
		for _, name := range cmd.Flags().Args() {
			fd, err := virtOS.OpenFile(name, flag, 0644)
			if err != nil {
				return err
			}
			defer fd.Close()
			writers = append(writers, fd)
		}

		_, err := io.Copy(io.MultiWriter(writers...), virtOS.Stdin())
		return err
	})
}

var _ vos.ProcessFunc = Tee

func init() {
	mustAddBinCmd("tee", Tee)
}
