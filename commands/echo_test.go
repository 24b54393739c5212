package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	cases := []struct {
		escaped  string
		expected string
	}{
		{"not escaped", "not escaped"},
		{`newline\n`, "newline\n"},
		{`double-escape\\n`, `double-escape\n`},
		{`unknown\q`, `unknown\q`},
		{`trailing\`, `trailing\`},
		{`\e[0m`, "\x1b[0m"},
		// Octal
		{`\07`, string(rune(7))},
		{`\011`, "\t"},
		{`\0101`, "A"},
		// Hex
		{`\x7`, string(rune(07))},
		{`\x9`, "\t"},
		{`\x4A`, "J"},
		{`\xZ`, `\xZ`},
	}

	for _, tc := range cases {
		t.Run(tc.escaped, func(t *testing.T) {
			actual, more := unescape(tc.escaped)

			assert.Equal(t, tc.expected, actual)
			assert.True(t, more)
		})
	}
}

func TestUnescape_stop(t *testing.T) {
	actual, more := unescape(`abc\cdef`)

	assert.Equal(t, "abc", actual)
	assert.False(t, more)
}

func TestEcho(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg":     {Args: []string{"echo"}},
		"plain":      {Args: []string{"echo", "a", "b"}},
		"no-newline": {Args: []string{"echo", "-n", "a"}},
		"escapes":    {Args: []string{"echo", "-e", `a\tb`}},
		"no-escapes": {Args: []string{"echo", `a\tb`}},
		"stop":       {Args: []string{"echo", "-e", `one\c`, "two"}},
	}

	cases.Run(t, Echo)
}
