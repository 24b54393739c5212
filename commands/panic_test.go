package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/josephlewis42/pipesh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
)

func TestPanic(t *testing.T) {
	cmd := vostest.Command(vos.NewProgram("panic", Panic), "panic", "-c", "3", "oh", "no")
	cmd.Stdin = strings.NewReader("abcdef")
	var out bytes.Buffer
	cmd.Stdout = &out

	assert.PanicsWithError(t, "oh no", func() {
		cmd.Run()
	})
	assert.Equal(t, "abc", out.String())
}

func TestPanic_defaultMessage(t *testing.T) {
	cmd := vostest.Command(vos.NewProgram("panic", Panic), "panic")

	assert.PanicsWithError(t, "Segmentation fault", func() {
		cmd.Run()
	})
}

func TestSegfault(t *testing.T) {
	out, status := runCommand(t, Segfault, "", "segfault")

	assert.Equal(t, 139, status)
	assert.Equal(t, "segfault: Segmentation fault\n", out)
}
