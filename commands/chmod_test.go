package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/josephlewis42/pipesh/core/vos/vostest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChmodApplyMode(t *testing.T) {
	blank := fs.FileMode(0)
	file := fs.FileMode(0666)

	cases := []struct {
		orig     fs.FileMode
		mode     string
		wantMode fs.FileMode
		wantErr  error
	}{
		// Permissions
		{blank, "+r", ModeRead, nil},
		{blank, "+w", ModeWrite, nil},
		{blank, "+x", ModeExec, nil},
		{blank, "+rwx", fs.FileMode(0777), nil},

		// No-op permissions
		{blank, "+t", blank, nil},
		{blank, "+s", blank, nil},

		// Capital X, only sets execute if a dir or already has an exec bit
		{blank, "+X", blank, nil},
		{fs.ModeDir, "+X", fs.ModeDir | ModeExec, nil},

		// Groups: a,u,g,o
		{blank, "a+r", ModeRead, nil},
		{blank, "a+w", ModeWrite, nil},
		{blank, "a+x", ModeExec, nil},
		{blank, "a+rwx", fs.FileMode(0777), nil},
		{blank, "u+r", ModeRead & ModeMaskUser, nil},
		{blank, "u+w", ModeWrite & ModeMaskUser, nil},
		{blank, "u+x", ModeExec & ModeMaskUser, nil},
		{blank, "u+rwx", fs.FileMode(0777) & ModeMaskUser, nil},
		{blank, "g+r", ModeRead & ModeMaskGroup, nil},
		{blank, "g+w", ModeWrite & ModeMaskGroup, nil},
		{blank, "g+x", ModeExec & ModeMaskGroup, nil},
		{blank, "g+rwx", fs.FileMode(0777) & ModeMaskGroup, nil},
		{blank, "o+r", ModeRead & ModeMaskOther, nil},
		{blank, "o+w", ModeWrite & ModeMaskOther, nil},
		{blank, "o+x", ModeExec & ModeMaskOther, nil},
		{blank, "o+rwx", fs.FileMode(0777) & ModeMaskOther, nil},

		// Actions:
		{ModeWrite | ModeRead, "-w", ModeRead, nil},
		{fs.FileMode(0777), "=r", ModeRead, nil},

		// Octal permissions
		{blank, "644", fs.FileMode(0644), nil},

		// Don't wipe non-permission bits
		{fs.ModeDir | fs.ModeSticky, "+x", fs.ModeDir | fs.ModeSticky | ModeExec, nil},
		{fs.ModeDir | fs.ModeSticky, "-x", fs.ModeDir | fs.ModeSticky, nil},
		{fs.ModeDir | fs.ModeSticky, "=x", fs.ModeDir | fs.ModeSticky | ModeExec, nil},
		{fs.ModeDir | fs.ModeSticky, "644", fs.ModeDir | fs.ModeSticky | fs.FileMode(0644), nil},

		// Several clauses and actions
		{blank, "u+rw,go+r", fs.FileMode(0644), nil},
		{fs.FileMode(0777), "go-w,o-x", fs.FileMode(0754), nil},
		{fs.FileMode(0600), "u-w+x", fs.FileMode(0500), nil},
		{fs.FileMode(0644), "a+X", fs.FileMode(0644), nil},
		{fs.FileMode(0744), "a+X", fs.FileMode(0755), nil},

		// Bad mode expressions
		{file, "o+z", file, errors.New("unknown symbol 'z'")},
		{file, "x", file, errors.New("no action provided")},
		{file, "u+x,", file, errors.New("no action provided")},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("chmod %q %q to %q %v", tc.mode, tc.orig, tc.wantMode, tc.wantErr), func(t *testing.T) {

			gotMode, gotErr := ChmodApplyMode(tc.mode, tc.orig)
			if tc.wantErr != nil || gotErr != nil {
				if tc.wantErr.Error() != gotErr.Error() {
					t.Errorf("wanted err %q got err %q", tc.wantErr, gotErr)
				}
			}

			if gotMode != tc.wantMode {
				t.Errorf("wanted mode %q got mode %q", tc.wantMode, gotMode)
			}
		})
	}
}

func TestChmod(t *testing.T) {
	state := vostest.NewDeterministicState()
	require.NoError(t, afero.WriteFile(state.FS(), "/home/tester/run.sh", []byte("echo hi\n"), 0644))

	perm := func() fs.FileMode {
		info, err := state.FS().Stat("/home/tester/run.sh")
		require.NoError(t, err)
		return info.Mode().Perm()
	}

	_, status := runInState(t, state, Chmod, "chmod", "755", "run.sh")
	assert.Equal(t, 0, status)
	assert.Equal(t, fs.FileMode(0755), perm())

	_, status = runInState(t, state, Chmod, "chmod", "-x", "run.sh")
	assert.Equal(t, 0, status)
	assert.Equal(t, fs.FileMode(0644), perm())

	out, status := runInState(t, state, Chmod, "chmod", "+x", "missing", "run.sh")
	assert.Equal(t, 1, status)
	assert.Contains(t, out, "chmod: ")
	assert.Equal(t, fs.FileMode(0755), perm())

	out, status = runInState(t, state, Chmod, "chmod", "+x")
	assert.Equal(t, 1, status)
	assert.Contains(t, out, "chmod: missing operand\n")

	out, status = runInState(t, state, Chmod, "chmod", "u+q", "run.sh")
	assert.Equal(t, 1, status)
	assert.Equal(t, "chmod: invalid mode \"u+q\": unknown symbol 'q'\n", out)
}

func TestChmod_recursive(t *testing.T) {
	state := vostest.NewDeterministicState()
	require.NoError(t, state.FS().MkdirAll("/home/tester/site/css", 0755))
	require.NoError(t, afero.WriteFile(state.FS(), "/home/tester/site/css/main.css", nil, 0644))

	_, status := runInState(t, state, Chmod, "chmod", "-R", "go-rx", "site")
	assert.Equal(t, 0, status)

	for name, want := range map[string]fs.FileMode{
		"/home/tester/site":              0700,
		"/home/tester/site/css":          0700,
		"/home/tester/site/css/main.css": 0600,
	} {
		info, err := state.FS().Stat(name)
		require.NoError(t, err)
		assert.Equal(t, want, info.Mode().Perm(), name)
	}
}
