package commands

import (
	"io"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

// True does nothing, successfully.
func True(virtOS vos.VOS) int {
	return 0
}

// False does nothing, unsuccessfully.
func False(virtOS vos.VOS) int {
	return 1
}

// Yes repeatedly outputs a line until the reader goes away.
func Yes(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:       "yes [STRING]...",
		Short:     "Output STRING, or y, repeatedly.",
		NeverBail: true,
	}

	return cmd.Run(virtOS, func() int {
		line := "y"
		if args := cmd.Flags().Args(); len(args) > 0 {
			line = strings.Join(args, " ")
		}
		line += "\n"

		for {
			if _, err := io.WriteString(virtOS.Stdout(), line); err != nil {
				return 1
			}
		}
	})
}

var _ vos.ProcessFunc = True
var _ vos.ProcessFunc = False
var _ vos.ProcessFunc = Yes

func init() {
	mustAddBinCmd("true", True)
	mustAddBinCmd("false", False)
	mustAddBinCmd("yes", Yes)
}
