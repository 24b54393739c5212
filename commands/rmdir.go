package commands

import (
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/josephlewis42/pipesh/core/vos"
)

var errDirNotEmpty = errors.New("directory not empty")

// removeEmptyDir removes dir only if it has no entries.
func removeEmptyDir(virtOS vos.VOS, dir string) error {
	fd, err := virtOS.Open(dir)
	if err != nil {
		return err
	}
	names, err := fd.Readdirnames(1)
	fd.Close()

	switch {
	case len(names) > 0:
		return errDirNotEmpty
	case err != nil && !errors.Is(err, io.EOF):
		return err
	}
	return virtOS.Remove(dir)
}

// Rmdir implements a POSIX rmdir command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/rmdir.html
func Rmdir(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rmdir [-pv] DIRECTORY...",
		Short: "Remove empty directories.",
	}

	parents := cmd.Flags().BoolLong("parents", 'p', "remove DIRECTORY and its ancestors")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print a message for each removed directory")

	return cmd.Run(virtOS, func() int {
		if len(cmd.Flags().Args()) == 0 {
			cmd.LogProgramError(virtOS, errors.New("missing operand"))
			return 1
		}

		status := 0
		for _, dir := range cmd.Flags().Args() {
			// "a/b/c" with -p removes a/b/c, a/b then a, stopping at the first
			// failure.
			for current := path.Clean(dir); current != "." && current != "/"; current = path.Dir(current) {
				if *verbose {
					fmt.Fprintf(virtOS.Stdout(), "rmdir: removing directory %q\n", current)
				}
				if err := removeEmptyDir(virtOS, current); err != nil {
					cmd.LogProgramError(virtOS, fmt.Errorf("failed to remove %q: %w", current, err))
					status = 1
					break
				}
				if !*parents {
					break
				}
			}
		}
		return status
	})
}

var _ vos.ProcessFunc = Rmdir

func init() {
	mustAddBinCmd("rmdir", Rmdir)
}
