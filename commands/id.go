package commands

import (
	"fmt"

	"github.com/josephlewis42/pipesh/core/vos"
)

// EnvUser holds the name of the current user.
const EnvUser = "USER"

const anonymousUser = "nobody"

// Username returns the name of the current user.
func Username(ctx vos.ExecContext) string {
	if user := ctx.Getenv(EnvUser); user != "" {
		return user
	}
	return anonymousUser
}

// Uid returns the numeric id of the user named by USER, root is 0 and
// everyone else shares 1000.
func Uid(ctx vos.ExecContext) int {
	switch Username(ctx) {
	case "root":
		return 0
	case anonymousUser:
		return 65534
	default:
		return 1000
	}
}

// Id prints the identity of the current user. Every user is in a single
// group of the same name and id.
func Id(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "id [-G|-g|-u] [-n]",
		Short: "Print user and group information.",
	}

	opts := cmd.Flags()
	onlyUser := opts.BoolLong("user", 'u', "print only the effective user ID")
	onlyGroup := opts.BoolLong("group", 'g', "print only the effective group ID")
	onlyGroups := opts.BoolLong("groups", 'G', "print all group IDs")
	names := opts.BoolLong("name", 'n', "print a name instead of a number, for -ugG")

	return cmd.Run(virtOS, func() int {
		uid, user := Uid(virtOS), Username(virtOS)

		if !*onlyUser && !*onlyGroup && !*onlyGroups {
			fmt.Fprintf(virtOS.Stdout(), "uid=%[1]d(%[2]s) gid=%[1]d(%[2]s) groups=%[1]d(%[2]s)\n", uid, user)
			return 0
		}

		if *names {
			fmt.Fprintln(virtOS.Stdout(), user)
		} else {
			fmt.Fprintln(virtOS.Stdout(), uid)
		}
		return 0
	})
}

// Whoami prints the name of the current user.
func Whoami(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "whoami",
		Short: "Print the current user.",

		NeverBail: true,
	}

	return cmd.Run(virtOS, func() int {
		fmt.Fprintln(virtOS.Stdout(), Username(virtOS))
		return 0
	})
}

func init() {
	mustAddBinCmd("id", Id)
	mustAddBinCmd("whoami", Whoami)
}
