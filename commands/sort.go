package commands

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Sort implements a subset of the POSIX sort command.
func Sort(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sort [-ru] [FILE]...",
		Short: "Write sorted concatenation of all FILE(s) to standard output.",
	}

	reverse := cmd.Flags().BoolLong("reverse", 'r', "reverse the result of comparisons")
	unique := cmd.Flags().BoolLong("unique", 'u', "output only the first of an equal run")

	return cmd.Run(virtOS, func() int {
		var lines []string
		status := cmd.RunEachFileOrStdin(virtOS, cmd.Flags().Args(), func(_ string, fd io.Reader) error {
			scanner := bufio.NewScanner(fd)
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			return scanner.Err()
		})
		if status != 0 {
			return status
		}

		if *reverse {
			sort.Sort(sort.Reverse(sort.StringSlice(lines)))
		} else {
			sort.Strings(lines)
		}

		w := virtOS.Stdout()
		for i, line := range lines {
			if *unique && i > 0 && lines[i-1] == line {
				continue
			}
			fmt.Fprintln(w, line)
		}
		return 0
	})
}

// Uniq implements the POSIX uniq command, adjacent duplicate lines are
// collapsed.
func Uniq(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "uniq [-c] [INPUT]",
		Short: "Report or filter out repeated lines in a file.",
	}

	showCount := cmd.Flags().BoolLong("count", 'c', "prefix lines by the number of occurrences")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()

		var (
			prev  string
			count int
		)
		flush := func() {
			if count == 0 {
				return
			}
			if *showCount {
				fmt.Fprintf(w, "%7d %s\n", count, prev)
			} else {
				fmt.Fprintln(w, prev)
			}
		}

		status := cmd.RunEachFileOrStdin(virtOS, cmd.Flags().Args(), func(_ string, fd io.Reader) error {
			scanner := bufio.NewScanner(fd)
			for scanner.Scan() {
				line := scanner.Text()
				if count > 0 && line == prev {
					count++
					continue
				}
				flush()
				prev, count = line, 1
			}
			return scanner.Err()
		})
		flush()

		return status
	})
}

var _ vos.ProcessFunc = Sort
var _ vos.ProcessFunc = Uniq

func init() {
	mustAddBinCmd("sort", Sort)
	mustAddBinCmd("uniq", Uniq)
}
