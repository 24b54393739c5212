package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/pipesh/commands"
	"github.com/josephlewis42/pipesh/core/config"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/spf13/cobra"
)

var (
	playgroundHostname string
	playgroundKeep     bool
)

// newPlayground initializes a throwaway configuration directory.
func newPlayground(progress *log.Logger) (cfg *config.Configuration, dir string, err error) {
	dir, err = os.MkdirTemp("", "pipesh-playground")
	if err != nil {
		return nil, "", err
	}
	if err := config.Initialize(dir, progress); err != nil {
		os.RemoveAll(dir)
		return nil, "", err
	}
	if cfg, err = config.Load(dir); err != nil {
		os.RemoveAll(dir)
		return nil, "", err
	}
	return cfg, dir, nil
}

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run an interactive shell on this terminal.",
	Long: `Run an interactive shell on this terminal against a fresh in-memory
filesystem. Events are written to a temporary directory that is removed on
exit unless --keep is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		errorLog := log.New(cmd.ErrOrStderr(), "[playground] ", 0)

		cfg, dir, err := newPlayground(errorLog)
		if err != nil {
			return err
		}
		if playgroundKeep {
			errorLog.Printf("Events: %s\n", filepath.Join(dir, cfg.EventLogName))
		} else {
			defer os.RemoveAll(dir)
		}
		cfg.Shell.Hostname = playgroundHostname

		eventLog, err := cfg.OpenEventLog()
		if err != nil {
			return err
		}
		defer eventLog.Close()

		sh, err := newShell(cfg, logger.NewJsonLinesLogRecorder(eventLog).NewSession(), errorLog)
		if err != nil {
			return err
		}

		session, err := commands.NewSession(sh, commands.SessionConfig{
			Files:      vos.NewVIOAdapter(os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr()),
			IsTerminal: readline.DefaultIsTerminal,
			Width:      readline.GetScreenWidth,
		})
		if err != nil {
			return err
		}
		defer session.Close()

		fmt.Fprintf(cmd.ErrOrStderr(), "exit status %d\n", session.Run())
		return nil
	},
}

func init() {
	playgroundCmd.Flags().StringVar(&playgroundHostname, "hostname", "playground", "host name shown in the prompt")
	playgroundCmd.Flags().BoolVar(&playgroundKeep, "keep", false, "keep the event log after exiting")
	rootCmd.AddCommand(playgroundCmd)
}
