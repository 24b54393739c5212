package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the event log.",
}

// openEventLog opens the named file, or the configured event log.
func openEventLog(args []string) (io.ReadCloser, error) {
	if len(args) > 0 {
		return os.Open(args[0])
	}

	configuration, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return configuration.ReadEventLog()
}

// reportCmd summarizes an event log
var reportCmd = &cobra.Command{
	Use:   "report [EVENTS.jsonl]",
	Short: "Show a report of events.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openEventLog(args)
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.Report
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// catCmd prints the events in a readable form
var catCmd = &cobra.Command{
	Use:   "cat [EVENTS.jsonl]",
	Short: "Print each event as YAML.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openEventLog(args)
		if err != nil {
			return err
		}
		defer fd.Close()

		w := cmd.OutOrStdout()
		var writeErr error
		err = logger.ReadJSONLinesLog(fd, func(le *logger.LogEntry) {
			if writeErr != nil {
				return
			}
			var out []byte
			out, writeErr = yaml.Marshal(le)
			if writeErr == nil {
				_, writeErr = fmt.Fprintf(w, "---\n%s", out)
			}
		})
		if err != nil {
			return err
		}
		return writeErr
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(reportCmd)
	logsCmd.AddCommand(catCmd)
}
