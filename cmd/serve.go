package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/pipesh/core"
	"github.com/spf13/cobra"
)

var (
	servePort            int
	serveShutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve shell sessions over SSH.",
	Long: `Serve shell sessions over SSH until interrupted. Each connection gets
its own filesystem and environment built from the configuration. Events are
appended to the configured event log.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.SSHPort = servePort
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		eventLog, err := cfg.OpenEventLog()
		if err != nil {
			return err
		}
		defer eventLog.Close()

		errorLog := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
		server, err := core.NewServer(cfg, eventLog, errorLog)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		served := make(chan error, 1)
		go func() { served <- server.ListenAndServe() }()

		select {
		case err := <-served:
			return err
		case <-ctx.Done():
		}

		errorLog.Println("- Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen on this port instead of the configured one")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 5*time.Second, "how long to wait for sessions to end")
	rootCmd.AddCommand(serveCmd)
}
