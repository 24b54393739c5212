package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhich(t *testing.T) {
	cases := map[string]struct {
		args     []string
		expected string
		status   int
	}{
		"program": {[]string{"which", "grep"}, "/bin/grep\n", 0},
		"path":    {[]string{"which", "/usr/bin/grep"}, "/bin/grep\n", 0},
		"builtin": {[]string{"which", "cd"}, "cd: shell built-in command\n", 0},
		"missing": {[]string{"which", "nope", "ls"}, "which: no nope in builtins\n/bin/ls\n", 1},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			out, status := runCommand(t, Which, "", tc.args...)
			assert.Equal(t, tc.expected, out)
			assert.Equal(t, tc.status, status)
		})
	}
}
