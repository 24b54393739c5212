package commands

import (
	"fmt"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Which implements the UNIX which command.
func Which(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "which [COMMAND...]",
		Short: "Locate a command.",
		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.RunEachArg(virtOS, func(arg string) error {
		res, err := lookPath(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(virtOS.Stdout(), res)
		return nil
	})
}

// lookPath finds the path a command is installed under, shell utilities
// have no path and are reported as builtins.
func lookPath(name string) (string, error) {
	exe, ok := LookupExecutable(name)
	switch {
	case !ok:
		return "", fmt.Errorf("no %s in builtins", name)
	case isShellUtil(exe):
		return fmt.Sprintf("%s: shell built-in command", name), nil
	}

	if bin, ok := LookupExecutable("/bin/" + exe.Name()); ok && bin == exe {
		return "/bin/" + exe.Name(), nil
	}
	return name, nil
}

func isShellUtil(exe vos.Executable) bool {
	_, ok := exe.(vos.ShellUtil)
	return ok
}

var _ vos.ProcessFunc = Which

func init() {
	mustAddBinCmd("which", Which)
}
