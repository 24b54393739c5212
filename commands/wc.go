package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/josephlewis42/pipesh/core/vos"
)

// wcCounts holds the statistics wc reports for a single input.
type wcCounts struct {
	lines   int
	words   int
	bytes   int
	chars   int
	longest int
}

func (c *wcCounts) add(other wcCounts) {
	c.lines += other.lines
	c.words += other.words
	c.bytes += other.bytes
	c.chars += other.chars
	if other.longest > c.longest {
		c.longest = other.longest
	}
}

// countInput reads r to the end. Invalid UTF-8 counts as one character per
// byte.
func countInput(r io.Reader) (wcCounts, error) {
	var out wcCounts
	br := bufio.NewReader(r)

	inWord := false
	lineLen := 0
	for {
		ch, size, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}

		out.bytes += size
		out.chars++

		switch {
		case ch == '\n':
			out.lines++
			lineLen = 0
		case ch == '\t':
			lineLen += 8 - lineLen%8
		default:
			lineLen++
		}
		if lineLen > out.longest {
			out.longest = lineLen
		}

		if unicode.IsSpace(ch) {
			inWord = false
		} else if !inWord {
			inWord = true
			out.words++
		}
	}

	return out, nil
}

// Wc implements the POSIX command by the same name.
// https://pubs.opengroup.org/onlinepubs/009695399/utilities/wc.html
func Wc(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "wc [-c|-m] [-lwL] [FILE...]",
		Short: "Write the number of newlines, words, and bytes contained in each input file to the standard output.",
	}

	opts := cmd.Flags()
	showLines := opts.BoolLong("lines", 'l', "write the number of newlines in each file")
	showWords := opts.BoolLong("words", 'w', "write the number of words in each file")
	showBytes := opts.BoolLong("bytes", 'c', "write the number of bytes in each file")
	showChars := opts.BoolLong("chars", 'm', "write the number of characters in each file")
	showLongest := opts.BoolLong("max-line-length", 'L', "write the length of the longest line in each file")

	return cmd.Run(virtOS, func() int {
		if !*showLines && !*showWords && !*showBytes && !*showChars && !*showLongest {
			*showLines, *showWords, *showBytes = true, true, true
		}

		files := opts.Args()
		report := func(c wcCounts, name string) {
			var fields []string
			for _, col := range []struct {
				show  bool
				value int
			}{
				{*showLines, c.lines},
				{*showWords, c.words},
				{*showBytes, c.bytes},
				{*showChars, c.chars},
				{*showLongest, c.longest},
			} {
				if col.show {
					fields = append(fields, fmt.Sprint(col.value))
				}
			}
			if len(files) > 0 {
				fields = append(fields, name)
			}
			fmt.Fprintln(virtOS.Stdout(), strings.Join(fields, " "))
		}

		var total wcCounts
		status := cmd.RunEachFileOrStdin(virtOS, files, func(name string, fd io.Reader) error {
			counts, err := countInput(fd)
			if err != nil {
				return err
			}
			total.add(counts)
			report(counts, name)
			return nil
		})

		if len(files) > 1 {
			report(total, "total")
		}
		return status
	})
}

var _ vos.ProcessFunc = Wc

func init() {
	mustAddBinCmd("wc", Wc)
}
