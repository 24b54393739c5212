package cmd

import (
	"io"
	"log"
	"os"

	"github.com/josephlewis42/pipesh/commands"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/spf13/cobra"
)

var (
	runCommand string
	runEvents  string
)

// runCmd runs a pipeline or script without an interactive terminal
var runCmd = &cobra.Command{
	Use:   "run [-c COMMAND | SCRIPT]",
	Short: "Run a pipeline, or each line of a script, in a new virtual OS.",
	Long: `Run a pipeline given with -c, or each line of SCRIPT (standard input if
omitted), and exit with the status of the last pipeline.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		status, err := runShell(cmd, args)
		if err != nil {
			return err
		}
		if status != 0 {
			os.Exit(status)
		}
		return nil
	},
}

func runShell(cmd *cobra.Command, args []string) (int, error) {
	configuration, err := loadConfigOrDefault()
	if err != nil {
		return 0, err
	}

	var recorder logger.Recorder = &logger.NopRecorder{}
	if runEvents != "" {
		fd, err := os.OpenFile(runEvents, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return 0, err
		}
		defer fd.Close()
		recorder = logger.NewJsonLinesLogRecorder(fd).NewSession()
	}

	sh, err := newShell(configuration, recorder, log.New(cmd.ErrOrStderr(), "[pipesh] ", 0))
	if err != nil {
		return 0, err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if cmd.Flags().Changed("command") {
		return sh.Run(runCommand, cmd.InOrStdin(), stdout, stderr), nil
	}

	var script io.Reader = cmd.InOrStdin()
	if len(args) > 0 {
		fd, err := os.Open(args[0])
		if err != nil {
			return 0, err
		}
		defer fd.Close()
		script = fd
	}

	return commands.RunScript(sh, script, stdout, stderr), nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runCommand, "command", "c", "", "pipeline to run")
	runCmd.Flags().StringVar(&runEvents, "events", "", "append events to this JSON lines file")
}
