package commands

import (
	"strings"
	"testing"

	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/josephlewis42/pipesh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShell(t *testing.T) {
	cases := goldenTestSuite{
		"echo":         {Args: []string{"sh", "-c", `echo "hello"`}},
		"pipe":         {Args: []string{"sh", "-c", `echo hello | tr a-z A-Z`}},
		"substitution": {Args: []string{"sh", "-c", `echo $(pwd)`}},
		"variables":    {Args: []string{"sh", "-c", `echo "${USER}@${HOSTNAME}"`}},
		"stdin":        {Args: []string{"sh", "-c", `cat | wc -l`}, Stdin: "a\nb\n"},
		"syntax-error": {Args: []string{"sh", "-c", `echo |`}},
		"undefined":    {Args: []string{"sh", "-c", `echo ${NOPE}`}},
		"script":       {Args: []string{"sh"}, Stdin: "echo one\ncd /tmp\npwd\n"},
		"pipestatus":   {Args: []string{"sh"}, Stdin: "false | true\necho ${?} ${PIPESTATUS}\n"},
		"nested":       {Args: []string{"sh", "-c", `sh -c "echo nested" | cat`}},
		"stage-fails":  {Args: []string{"sh", "-c", `echo abcdef | panic -c 2 boom | cat`}},
	}

	cases.Run(t, RunShell)
}

func TestRunShell_exitStatus(t *testing.T) {
	cases := map[string]struct {
		args     []string
		stdin    string
		expected int
	}{
		"success":    {[]string{"sh", "-c", "true"}, "", 0},
		"last-stage": {[]string{"sh", "-c", "true | false"}, "", 1},
		"not-found":  {[]string{"sh", "-c", "nope"}, "", shell.StatusCommandNotFound},
		"syntax":     {[]string{"sh", "-c", "'"}, "", shell.StatusSyntaxError},
		"exit":       {[]string{"sh"}, "echo a\nexit 3\nfalse\n", 3},
		"exit-last":  {[]string{"sh"}, "false\nexit\n", 1},
		"script-end": {[]string{"sh"}, "false\ntrue\n", 0},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			_, status := runCommand(t, RunShell, tc.stdin, tc.args...)
			assert.Equal(t, tc.expected, status)
		})
	}
}

func TestRunShell_notFound(t *testing.T) {
	out, status := runCommand(t, RunShell, "", "sh", "-c", "ehco hi")

	assert.Equal(t, shell.StatusCommandNotFound, status)
	assert.True(t, strings.HasPrefix(out, "sh: ehco: command not found\ndid you mean: "), out)
	assert.Contains(t, out, "echo")
}

func TestRunShell_doesNotChangeCaller(t *testing.T) {
	state := vostest.NewDeterministicState()

	c := vostest.Command(vos.NewProgram("sh", RunShell), "sh", "-c", "cd /tmp")
	c.State = state
	require.NoError(t, c.Run())

	assert.Equal(t, 0, c.ExitStatus)
	assert.Equal(t, "/home/tester", state.Getwd())
}

func TestSession_Prompt(t *testing.T) {
	cases := map[string]struct {
		env      []string
		wd       string
		expected string
	}{
		"default":   {nil, "/home/tester", "tester@localhost:~$ "},
		"subdir":    {nil, "/home/tester/src", "tester@localhost:~/src$ "},
		"outside":   {nil, "/tmp", "tester@localhost:/tmp$ "},
		"root":      {[]string{"USER=root", "HOME=/root"}, "/tmp", "root@localhost:/tmp# "},
		"custom":    {[]string{`PS1=[\w]> `}, "/tmp", "[/tmp]> "},
		"escapes":   {[]string{`PS1=\033[01m\$\033[00m `}, "/tmp", "\033[01m$\033[00m "},
		"empty-ps1": {[]string{"PS1="}, "/tmp", ""},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			state := vostest.NewDeterministicState()
			require.NoError(t, state.FS().MkdirAll("/home/tester/src", 0755))
			require.NoError(t, vos.CopyEnv(state, vos.EnvList(tc.env)))
			require.NoError(t, state.Chdir(tc.wd))

			session := &Session{Shell: shell.NewShell(state, NewExecutor(nil))}
			assert.Equal(t, tc.expected, session.Prompt())
		})
	}
}

func TestRunScript(t *testing.T) {
	s := shell.NewShell(vostest.NewDeterministicState(), NewExecutor(nil))

	var out strings.Builder
	status := RunScript(s, strings.NewReader("export A=1\necho ${A}\ncd /tmp\n"), &out, &out)

	assert.Equal(t, 0, status)
	assert.Equal(t, "1\n", out.String())
	// Shell utilities change the shell's own state.
	assert.Equal(t, "/tmp", s.State.Getwd())
}
