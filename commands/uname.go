package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/pipesh/core/vos"
)

// EnvHostname holds the name of the host.
const EnvHostname = "HOSTNAME"

// Utsname holds the fields uname reports.
type Utsname struct {
	Sysname  string
	Nodename string
	Release  string
	Version  string
	Machine  string
}

// SystemInfo describes the machine the shell claims to be, the node name
// follows the HOSTNAME variable.
func SystemInfo(ctx vos.ExecContext) Utsname {
	return Utsname{
		Sysname:  "Linux",
		Nodename: ctx.Getenv(EnvHostname),
		Release:  "5.10.0-pipesh",
		Version:  "#1 SMP",
		Machine:  "x86_64",
	}
}

// Uname implements the POSIX command by the same name.
func Uname(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "uname [OPTION...]",
		Short: "Display system information.",
	}

	opts := cmd.Flags()
	showAll := opts.BoolLong("all", 'a', "print all information")
	showKernelName := opts.BoolLong("kernel-name", 's', "print the kernel name")
	showNodename := opts.BoolLong("nodename", 'n', "print the network node name")
	showRelease := opts.BoolLong("kernel-release", 'r', "print the kernel release")
	showVersion := opts.BoolLong("kernel-version", 'v', "print the kernel version")
	showMachine := opts.BoolLong("machine", 'm', "print the machine name")

	return cmd.Run(virtOS, func() int {
		uname := SystemInfo(virtOS)

		var fields []string
		for _, entry := range []struct {
			flag     *bool
			property string
		}{
			{showKernelName, uname.Sysname},
			{showNodename, uname.Nodename},
			{showRelease, uname.Release},
			{showVersion, uname.Version},
			{showMachine, uname.Machine},
		} {
			if *entry.flag || *showAll {
				fields = append(fields, entry.property)
			}
		}

		if len(fields) == 0 {
			fields = append(fields, uname.Sysname)
		}

		fmt.Fprintln(virtOS.Stdout(), strings.Join(fields, " "))
		return 0
	})
}

// Hostname prints the host name from HOSTNAME.
func Hostname(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "hostname [-s]",
		Short: "Print the system's host name.",
	}
	short := cmd.Flags().BoolLong("short", 's', "print the name up to the first dot")

	return cmd.Run(virtOS, func() int {
		host := SystemInfo(virtOS).Nodename
		if host == "" {
			cmd.LogProgramError(virtOS, errors.New("hostname not set"))
			return 1
		}
		if *short {
			host, _, _ = strings.Cut(host, ".")
		}

		fmt.Fprintln(virtOS.Stdout(), host)
		return 0
	})
}

func init() {
	mustAddBinCmd("uname", Uname)
	mustAddBinCmd("hostname", Hostname)
}
