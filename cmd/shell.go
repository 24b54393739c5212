package cmd

import (
	"log"

	"github.com/josephlewis42/pipesh/commands"
	"github.com/josephlewis42/pipesh/core/config"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/shell"
)

// newShell creates a shell over a fresh state built from configuration.
func newShell(configuration *config.Configuration, recorder logger.Recorder, errorLog *log.Logger) (*shell.Shell, error) {
	state, err := configuration.NewState()
	if err != nil {
		return nil, err
	}

	executor := commands.NewExecutor(recorder)
	executor.ErrorLog = errorLog
	configuration.Executor.Configure(executor)

	return shell.NewShell(state, executor), nil
}
