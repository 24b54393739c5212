package commands

import (
	"testing"

	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/josephlewis42/pipesh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestId(t *testing.T) {
	cases := map[string]struct {
		env      []string
		args     []string
		expected string
	}{
		"user":     {nil, nil, "uid=1000(tester) gid=1000(tester) groups=1000(tester)\n"},
		"root":     {[]string{"USER=root"}, nil, "uid=0(root) gid=0(root) groups=0(root)\n"},
		"unset":    {[]string{"USER="}, nil, "uid=65534(nobody) gid=65534(nobody) groups=65534(nobody)\n"},
		"uid":      {nil, []string{"-u"}, "1000\n"},
		"name":     {nil, []string{"-un"}, "tester\n"},
		"root-gid": {[]string{"USER=root"}, []string{"-g"}, "0\n"},
	}

	for tn, tc := range cases {
		tc := tc
		t.Run(tn, func(t *testing.T) {
			cmd := vostest.Command(vos.NewProgram("id", Id), "id", tc.args...)
			cmd.Env = tc.env

			out, err := cmd.CombinedOutput()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(out))
			assert.Equal(t, 0, cmd.ExitStatus)
		})
	}
}

func TestWhoami_unset(t *testing.T) {
	cmd := vostest.Command(vos.NewProgram("whoami", Whoami), "whoami", "--bogus")
	cmd.Env = []string{"USER="}

	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Equal(t, "nobody\n", string(out))
}
