package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

// Env prints the environment, or runs a command in a modified copy of it.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/env.html
func Env(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "env [-i] [-u NAME]... [NAME=VALUE]... [COMMAND [ARG]...]",
		Short: "Set or print the environment for command invocation.",
	}

	opts := cmd.Flags()
	ignoreEnv := opts.BoolLong("ignore-environment", 'i', "start with an empty environment")
	unset := opts.ListLong("unset", 'u', "remove NAME from the environment")

	return cmd.Run(virtOS, func() int {
		child := vos.Detach(virtOS)

		if *ignoreEnv {
			for _, name := range child.EnvNames() {
				child.Unsetenv(name)
			}
		}
		for _, name := range *unset {
			child.Unsetenv(name)
		}

		args := opts.Args()
		for len(args) > 0 && strings.Contains(args[0], "=") {
			name, value, _ := strings.Cut(args[0], "=")
			if err := child.Setenv(name, value); err != nil {
				cmd.LogProgramError(virtOS, err)
				return 125
			}
			args = args[1:]
		}

		if len(args) == 0 {
			// Environ is sorted by name.
			for _, envDef := range child.Environ() {
				fmt.Fprintln(virtOS.Stdout(), envDef)
			}
			return 0
		}

		exe, ok := LookupExecutable(args[0])
		if !ok {
			cmd.LogProgramError(virtOS, fmt.Errorf("%s: No such file or directory", args[0]))
			return exitNotAvailable
		}
		return exe.Run(child.Fork(args))
	})
}

// Printenv prints the value of each named variable, or the whole environment.
func Printenv(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "printenv [VARIABLE]...",
		Short: "Print all or part of the environment.",
	}

	return cmd.Run(virtOS, func() int {
		names := cmd.Flags().Args()
		if len(names) == 0 {
			for _, envDef := range virtOS.Environ() {
				fmt.Fprintln(virtOS.Stdout(), envDef)
			}
			return 0
		}

		status := 0
		for _, name := range names {
			value, ok := virtOS.LookupEnv(name)
			if !ok {
				status = 1
				continue
			}
			fmt.Fprintln(virtOS.Stdout(), value)
		}
		return status
	})
}

// Pwd prints the working directory. There are no symbolic links so the
// logical and physical paths are the same.
func Pwd(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "pwd [-L|-P]",
		Short: "Print the name of the current working directory.",
	}
	cmd.Flags().Bool('L', "print the logical path")
	cmd.Flags().Bool('P', "print the physical path")

	return cmd.Run(virtOS, func() int {
		if args := cmd.Flags().Args(); len(args) > 0 {
			cmd.LogProgramError(virtOS, errors.New("too many arguments"))
			return 1
		}
		fmt.Fprintln(virtOS.Stdout(), virtOS.Getwd())
		return 0
	})
}

var _ vos.ProcessFunc = Env
var _ vos.ProcessFunc = Printenv
var _ vos.ProcessFunc = Pwd

func init() {
	mustAddBinCmd("env", Env)
	mustAddBinCmd("printenv", Printenv)
	mustAddBinCmd("pwd", Pwd)
}
