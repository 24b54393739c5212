package commands

import (
	"io"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

var echoEscapes = map[byte]byte{
	'\\': '\\',
	'a':  '\a',
	'b':  '\b',
	'e':  0x1b,
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}

// unescape expands the backslash escapes echo -e understands. The second
// result is false if the text contained \c, meaning nothing after it should
// be printed.
func unescape(s string) (string, bool) {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			out.WriteByte(s[i])
			continue
		}

		i++
		switch next := s[i]; {
		case next == 'c':
			return out.String(), false

		case next == '0':
			value, n := parseDigits(s[i+1:], 8, 3)
			out.WriteByte(byte(value))
			i += n

		case next == 'x':
			value, n := parseDigits(s[i+1:], 16, 2)
			if n == 0 {
				out.WriteString(`\x`)
				continue
			}
			out.WriteByte(byte(value))
			i += n

		default:
			if replacement, ok := echoEscapes[next]; ok {
				out.WriteByte(replacement)
			} else {
				out.WriteByte('\\')
				out.WriteByte(next)
			}
		}
	}
	return out.String(), true
}

// parseDigits reads up to limit leading digits of s in the given base.
func parseDigits(s string, base, limit int) (value, n int) {
	for n < limit && n < len(s) {
		var digit int
		switch c := s[n]; {
		case c >= '0' && c <= '9':
			digit = int(c - '0')
		case c >= 'a' && c <= 'f':
			digit = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = int(c-'A') + 10
		default:
			return value, n
		}
		if digit >= base {
			return value, n
		}
		value = value*base + digit
		n++
	}
	return value, n
}

// Echo writes its arguments separated by spaces.
func Echo(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "echo [-neE] [ARG]...",
		Short: "Display a line of text.",
	}

	opt := cmd.Flags()
	noNewline := opt.Bool('n', "do not output the trailing newline")
	escapes := opt.Bool('e', "interpret backslash escapes")
	opt.Bool('E', "don't interpret backslash escapes (default)")

	return cmd.Run(virtOS, func() int {
		text := strings.Join(opt.Args(), " ")
		newline := !*noNewline

		if *escapes {
			var more bool
			if text, more = unescape(text); !more {
				newline = false
			}
		}

		if newline {
			text += "\n"
		}
		io.WriteString(virtOS.Stdout(), text)
		return 0
	})
}

var _ vos.ProcessFunc = Echo

func init() {
	mustAddBinCmd("echo", Echo)
}
