package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Rm implements a POSIX rm command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/rm.html
func Rm(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rm [-frv] FILE...",
		Short: "Remove files or directories.",
	}

	recursive := cmd.Flags().BoolLong("recursive", 'r', "remove directories and their contents recursively")
	cmd.Flags().Flag(recursive, 'R', "same as -r")
	force := cmd.Flags().BoolLong("force", 'f', "ignore missing files and arguments, never prompt")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print a message for each removed file")

	remove := func(name string) error {
		info, err := virtOS.Stat(name)
		switch {
		case errors.Is(err, fs.ErrNotExist) && *force:
			return nil
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("can't remove %q: no such file or directory", name)
		case err != nil:
			return fmt.Errorf("can't stat %q: %w", name, err)
		case info.IsDir() && !*recursive:
			return fmt.Errorf("can't remove %q: is a directory", name)
		case info.IsDir():
			err = virtOS.RemoveAll(name)
		default:
			err = virtOS.Remove(name)
		}

		if err != nil {
			return fmt.Errorf("can't remove %q: %w", name, err)
		}
		if *verbose {
			fmt.Fprintf(virtOS.Stdout(), "removed %q\n", name)
		}
		return nil
	}

	return cmd.RunEachArg(virtOS, remove)
}

var _ vos.ProcessFunc = Rm

func init() {
	mustAddBinCmd("rm", Rm)
}
