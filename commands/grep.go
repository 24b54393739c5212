package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// grepPatterns collects repeated -e values. Unlike getopt lists it doesn't
// split values on commas.
type grepPatterns []string

func (p *grepPatterns) Set(value string, _ getopt.Option) error {
	*p = append(*p, value)
	return nil
}

func (p *grepPatterns) String() string {
	return strings.Join(*p, "\n")
}

// compileGrepPatterns joins the newline separated patterns into a single
// expression.
func compileGrepPatterns(patterns []string, fixed, ignoreCase bool) (*regexp.Regexp, error) {
	var alternatives []string
	for _, p := range patterns {
		for _, line := range strings.Split(p, "\n") {
			if fixed {
				line = regexp.QuoteMeta(line)
			} else if _, err := regexp.Compile(line); err != nil {
				// Report errors against the pattern as written.
				return nil, err
			}
			alternatives = append(alternatives, "(?:"+line+")")
		}
	}

	expr := strings.Join(alternatives, "|")
	if ignoreCase {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

// Grep implements the POSIX grep command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/grep.html
func Grep(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "grep [-cFHilnqv] [--color=WHEN] [-e PATTERN]... [PATTERN] [FILE]...",
		Short: "Search files for lines matching a pattern.",
	}

	opts := cmd.Flags()
	var patterns grepPatterns
	opts.FlagLong(&patterns, "regexp", 'e', "use PATTERN for matching, may be repeated", "PATTERN")
	fixed := opts.BoolLong("fixed-strings", 'F', "match patterns as plain strings")
	invert := opts.BoolLong("invert-match", 'v', "select lines not matching any pattern")
	ignoreCase := opts.BoolLong("ignore-case", 'i', "ignore case in patterns and input")
	lineNumbers := opts.BoolLong("line-number", 'n', "prefix each line with its line number")
	countOnly := opts.BoolLong("count", 'c', "only print a count of selected lines")
	namesOnly := opts.BoolLong("files-with-matches", 'l', "only print the names of files with selected lines")
	quiet := opts.BoolLong("quiet", 'q', "print nothing, exit 0 on the first selected line")
	withName := opts.BoolLong("with-filename", 'H', "prefix each line with the file name")

	var printer ColorPrinter
	printer.Init(opts, virtOS)

	return cmd.Run(virtOS, func() int {
		args := opts.Args()
		exprs := []string(patterns)
		if len(exprs) == 0 {
			if len(args) == 0 {
				cmd.LogProgramError(virtOS, errors.New("missing argument PATTERN"))
				return 2
			}
			exprs, args = args[:1], args[1:]
		}

		regex, err := compileGrepPatterns(exprs, *fixed, *ignoreCase)
		if err != nil {
			cmd.LogProgramError(virtOS, err)
			return 2
		}

		highlight := func(line string) string {
			if *invert || !printer.ShouldColor() {
				return line
			}
			return regex.ReplaceAllStringFunc(line, func(match string) string {
				return printer.Sprintf(ColorBoldRed, "%s", match)
			})
		}

		showName := *withName || len(args) > 1
		w := virtOS.Stdout()
		prefix := func(name string, lineNo int) {
			if showName {
				fmt.Fprintf(w, "%s:", name)
			}
			if lineNo > 0 {
				fmt.Fprintf(w, "%d:", lineNo)
			}
		}

		anySelected := false
		status := cmd.RunEachFileOrStdin(virtOS, args, func(name string, fd io.Reader) error {
			if *quiet && anySelected {
				return nil
			}

			scanner := bufio.NewScanner(fd)
			count := 0
			for lineNo := 1; scanner.Scan(); lineNo++ {
				line := scanner.Text()
				if regex.MatchString(line) == *invert {
					continue
				}

				count++
				anySelected = true
				switch {
				case *quiet:
					return nil
				case *namesOnly:
					fmt.Fprintln(w, name)
					return nil
				case *countOnly:
					continue
				}

				if *lineNumbers {
					prefix(name, lineNo)
				} else {
					prefix(name, 0)
				}
				if _, err := fmt.Fprintln(w, highlight(line)); err != nil {
					return err
				}
			}

			if *countOnly && !*namesOnly {
				prefix(name, 0)
				fmt.Fprintln(w, count)
			}
			return scanner.Err()
		})

		switch {
		case *quiet && anySelected:
			return 0
		case status != 0:
			return 2
		case !anySelected:
			return 1
		default:
			return 0
		}
	})
}

var _ vos.ProcessFunc = Grep

func init() {
	mustAddBinCmd("grep", Grep)
}
