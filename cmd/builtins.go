package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/josephlewis42/pipesh/commands"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/spf13/cobra"
)

var builtinsShowPaths bool

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the commands the shell can run.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, builtin := range commands.ListBuiltinCommands() {
			kind := "program"
			if _, ok := builtin.Exe.(vos.ShellUtil); ok {
				kind = "shell"
			}

			line := builtin.Exe.Name()
			if builtinsShowPaths {
				line = strings.Join(builtin.Names, ", ")
			}
			fmt.Fprintf(tw, "%s\t%s\n", kind, line)
		}
		return tw.Flush()
	},
}

func init() {
	builtinsCmd.Flags().BoolVar(&builtinsShowPaths, "paths", false, "show every name and path a command is found under")
	rootCmd.AddCommand(builtinsCmd)
}
