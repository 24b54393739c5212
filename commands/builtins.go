package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/pborman/getopt/v2"
)

const (
	EnvHome   = "HOME"
	EnvOldPwd = "OLDPWD"
)

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Cd is the cd shell builtin
func Cd(s vos.ShellVOS) int {
	args := s.Args()
	switch len(args) {
	case 1:
		args = append(args, s.Getenv(EnvHome))
		fallthrough
	case 2:
		dir := args[1]
		if dir == "-" {
			dir = s.Getenv(EnvOldPwd)
		}
		if err := s.Chdir(dir); err != nil {
			fmt.Fprintf(s.Stderr(), "%s: %v\n", args[0], err)
			return 1
		}
		if args[1] == "-" {
			fmt.Fprintln(s.Stdout(), s.Getwd())
		}
	default:
		fmt.Fprintf(s.Stderr(), "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Export sets variables in the shell, or lists them.
func Export(s vos.ShellVOS) int {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(s.Args(), nil); err != nil || *helpOpt {
		w := s.Stderr()
		if err != nil {
			s.LogInvalidInvocation(err)
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: export [NAME[=VALUE]...]")
		fmt.Fprintln(w, "Set shell variables.")
		return 2
	}

	assignments := opts.Args()
	if len(assignments) == 0 {
		for _, name := range s.EnvNames() {
			fmt.Fprintf(s.Stdout(), "export %s=%q\n", name, s.Getenv(name))
		}
		return 0
	}

	status := 0
	for _, assignment := range assignments {
		name, value, hasValue := strings.Cut(assignment, "=")
		if !validName.MatchString(name) {
			fmt.Fprintf(s.Stderr(), "export: %q: not a valid identifier\n", name)
			status = 1
			continue
		}
		// Every variable is visible to programs, so a bare name is a no-op.
		if !hasValue {
			continue
		}
		if err := s.Setenv(name, value); err != nil {
			fmt.Fprintf(s.Stderr(), "export: %v\n", err)
			status = 1
		}
	}
	return status
}

// Unset removes variables from the shell.
func Unset(s vos.ShellVOS) int {
	opts := getopt.New()
	opts.Bool('v', "treat NAME as a variable")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(s.Args(), nil); err != nil || *helpOpt {
		w := s.Stderr()
		if err != nil {
			s.LogInvalidInvocation(err)
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: unset [-v] [NAME...]")
		fmt.Fprintln(w, "Unset shell variables.")
		return 2
	}

	status := 0
	for _, name := range opts.Args() {
		if err := s.Unsetenv(name); err != nil {
			fmt.Fprintf(s.Stderr(), "unset: %v\n", err)
			status = 1
		}
	}
	return status
}

var (
	_ vos.ShellUtilFunc = Cd
	_ vos.ShellUtilFunc = Export
	_ vos.ShellUtilFunc = Unset
)

func init() {
	mustAddShellUtil("cd", Cd)
	mustAddShellUtil("export", Export)
	mustAddShellUtil("unset", Unset)
}
