package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/josephlewis42/pipesh/core/vos"
)

const defaultLineCount = 10

// Head implements the POSIX head command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/head.html
func Head(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "head [-n NUMBER] [FILE]...",
		Short: "Copy the first part of files to standard output.",
	}

	lines := cmd.Flags().IntLong("lines", 'n', defaultLineCount, "number of lines to print")

	return cmd.Run(virtOS, func() int {
		files := cmd.Flags().Args()
		w := virtOS.Stdout()

		return cmd.RunEachFileOrStdin(virtOS, files, func(name string, fd io.Reader) error {
			if len(files) > 1 {
				fmt.Fprintf(w, "==> %s <==\n", name)
			}

			// Stop reading once done so writers upstream see the pipe close.
			reader := bufio.NewReader(fd)
			for i := 0; i < *lines; i++ {
				line, err := reader.ReadString('\n')
				if _, werr := io.WriteString(w, line); werr != nil {
					return werr
				}
				switch {
				case err == io.EOF:
					return nil
				case err != nil:
					return err
				}
			}
			return nil
		})
	})
}

// Tail implements the POSIX tail command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/tail.html
func Tail(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "tail [-n NUMBER] [FILE]...",
		Short: "Copy the last part of files to standard output.",
	}

	lines := cmd.Flags().IntLong("lines", 'n', defaultLineCount, "number of lines to print")

	return cmd.Run(virtOS, func() int {
		files := cmd.Flags().Args()
		w := virtOS.Stdout()

		return cmd.RunEachFileOrStdin(virtOS, files, func(name string, fd io.Reader) error {
			if len(files) > 1 {
				fmt.Fprintf(w, "==> %s <==\n", name)
			}
			if *lines <= 0 {
				_, err := io.Copy(io.Discard, fd)
				return err
			}

			ring := make([]string, 0, *lines)
			start := 0
			reader := bufio.NewReader(fd)
			for {
				line, err := reader.ReadString('\n')
				if line != "" {
					if len(ring) < *lines {
						ring = append(ring, line)
					} else {
						ring[start] = line
						start = (start + 1) % len(ring)
					}
				}
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
			}

			for i := range ring {
				if _, err := io.WriteString(w, ring[(start+i)%len(ring)]); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

var _ vos.ProcessFunc = Head
var _ vos.ProcessFunc = Tail

func init() {
	mustAddBinCmd("head", Head)
	mustAddBinCmd("tail", Tail)
}
