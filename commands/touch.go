package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Touch implements a POSIX touch command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/touch.html
func Touch(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "touch [-acm] [-r REF_FILE] FILE...",
		Short: "Update the access and modification times of files.",
	}

	opts := cmd.Flags()
	// Access times aren't tracked separately so both are always set.
	opts.Bool('a', "change only the access time")
	opts.Bool('m', "change only the modification time")
	noCreate := opts.BoolLong("no-create", 'c', "do not create any files")
	reference := opts.StringLong("reference", 'r', "", "use the times of REF_FILE instead of the current time")

	touch := func(name string, when time.Time) error {
		err := virtOS.Chtimes(name, when, when)
		switch {
		case !errors.Is(err, fs.ErrNotExist):
			return err
		case *noCreate:
			return nil
		}

		fd, err := virtOS.Create(name)
		if err != nil {
			return fmt.Errorf("cannot touch %q: %w", name, err)
		}
		if err := fd.Close(); err != nil {
			return err
		}
		return virtOS.Chtimes(name, when, when)
	}

	return cmd.Run(virtOS, func() int {
		if len(opts.Args()) == 0 {
			cmd.LogProgramError(virtOS, errors.New("missing file operand"))
			return 1
		}

		when := virtOS.Now()
		if *reference != "" {
			info, err := virtOS.Stat(*reference)
			if err != nil {
				cmd.LogProgramError(virtOS, fmt.Errorf("failed to get attributes of %q: %w", *reference, err))
				return 1
			}
			when = info.ModTime()
		}

		status := 0
		for _, name := range opts.Args() {
			if err := touch(name, when); err != nil {
				cmd.LogProgramError(virtOS, err)
				status = 1
			}
		}
		return status
	})
}

var _ vos.ProcessFunc = Touch

func init() {
	mustAddBinCmd("touch", Touch)
}
