package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/pipesh/core/vos"
)

const defaultDirMode fs.FileMode = 0755

// Mkdir implements a POSIX mkdir command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/mkdir.html
func Mkdir(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "mkdir [-pv] [-m MODE] DIRECTORY...",
		Short: "Create directories if they don't exist.",
	}

	parents := cmd.Flags().BoolLong("parents", 'p', "no error if existing, make parent directories as needed")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print a message for each created directory")
	modeFlag := cmd.Flags().StringLong("mode", 'm', "", "set the mode of new directories, as in chmod")

	return cmd.Run(virtOS, func() int {
		if len(cmd.Flags().Args()) == 0 {
			cmd.LogProgramError(virtOS, errors.New("missing operand"))
			return 1
		}

		mode := defaultDirMode
		if *modeFlag != "" {
			var err error
			if mode, err = ChmodApplyMode(*modeFlag, fs.ModePerm); err != nil {
				cmd.LogProgramError(virtOS, err)
				return 1
			}
		}

		create := virtOS.Mkdir
		if *parents {
			create = virtOS.MkdirAll
		}

		status := 0
		for _, dir := range cmd.Flags().Args() {
			if err := create(dir, mode); err != nil {
				cmd.LogProgramError(virtOS, fmt.Errorf("cannot create directory %q: %w", dir, err))
				status = 1
				continue
			}

			// The filesystem may not honor perm on creation.
			if *modeFlag != "" {
				if err := virtOS.Chmod(dir, mode); err != nil {
					cmd.LogProgramError(virtOS, err)
					status = 1
					continue
				}
			}

			if *verbose {
				fmt.Fprintf(virtOS.Stdout(), "mkdir: created directory %q\n", dir)
			}
		}
		return status
	})
}

var _ vos.ProcessFunc = Mkdir

func init() {
	mustAddBinCmd("mkdir", Mkdir)
}
