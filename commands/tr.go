package commands

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

// expandTrSet expands ranges like a-z and escapes in a tr set.
func expandTrSet(set string) []rune {
	expanded, _ := unescape(set)
	runes := []rune(expanded)

	var out []rune
	for i := 0; i < len(runes); i++ {
		if i+2 < len(runes) && runes[i+1] == '-' && runes[i] <= runes[i+2] {
			for r := runes[i]; r <= runes[i+2]; r++ {
				out = append(out, r)
			}
			i += 2
			continue
		}
		out = append(out, runes[i])
	}
	return out
}

// Tr implements the POSIX tr command without character classes.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/tr.html
func Tr(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "tr [-d] SET1 [SET2]",
		Short: "Translate or delete characters from standard input.",
	}

	deleteChars := cmd.Flags().BoolLong("delete", 'd', "delete characters in SET1, do not translate")

	return cmd.RunE(virtOS, func() error {
		args := cmd.Flags().Args()

		var mapping func(rune) rune
		switch {
		case *deleteChars && len(args) == 1:
			remove := make(map[rune]bool)
			for _, r := range expandTrSet(args[0]) {
				remove[r] = true
			}
			mapping = func(r rune) rune {
				if remove[r] {
					return -1
				}
				return r
			}

		case !*deleteChars && len(args) == 2:
			from, to := expandTrSet(args[0]), expandTrSet(args[1])
			if len(to) == 0 {
				return errors.New("when not deleting, SET2 must be non-empty")
			}
			// SET2 is extended with its last character.
			table := make(map[rune]rune)
			for i, r := range from {
				if i < len(to) {
					table[r] = to[i]
				} else {
					table[r] = to[len(to)-1]
				}
			}
			mapping = func(r rune) rune {
				if out, ok := table[r]; ok {
					return out
				}
				return r
			}

		default:
			return errors.New("wrong number of operands")
		}

		reader := bufio.NewReader(virtOS.Stdin())
		for {
			line, err := reader.ReadString('\n')
			if _, werr := io.WriteString(virtOS.Stdout(), strings.Map(mapping, line)); werr != nil {
				return werr
			}
			switch {
			case err == io.EOF:
				return nil
			case err != nil:
				return err
			}
		}
	})
}

var _ vos.ProcessFunc = Tr

func init() {
	mustAddBinCmd("tr", Tr)
}
