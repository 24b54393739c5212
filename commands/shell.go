package commands

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/josephlewis42/pipesh/core/vos"
)

const (
	EnvPWD             = "PWD"
	EnvPath            = "PATH"
	EnvPrompt          = "PS1"
	DefaultColorPrompt = `\033[01;32m\u@\h\033[00m:\033[01;34m\w\033[00m\$ `
	DefaultPrompt      = `\u@\h:\w\$ `
)

// NewExecutor creates an executor that runs the builtin commands.
func NewExecutor(recorder logger.Recorder) *shell.Executor {
	return &shell.Executor{
		Locator:  Registry{},
		Recorder: recorder,
	}
}

// RunShell implements sh, it runs a single pipeline or one per input line in
// a copy of the caller's state.
func RunShell(virtualOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sh [-c COMMAND]",
		Short: "Run COMMAND, or each line of standard input, as a pipeline.",
	}
	commandFlag := cmd.Flags().String('c', "", "run COMMAND and exit")

	return cmd.Run(virtualOS, func() int {
		state := vos.NewState(virtualOS.FS(), virtualOS.Getwd(), vos.NewMapEnvFromEnvList(virtualOS.Environ()))
		executor := NewExecutor(nil)
		executor.Now = virtualOS.Now

		s := shell.NewShell(state, executor)
		s.Name = "sh"

		if cmd.Flags().IsSet('c') {
			return s.Run(*commandFlag, virtualOS.Stdin(), virtualOS.Stdout(), virtualOS.Stderr())
		}

		return RunScript(s, virtualOS.Stdin(), virtualOS.Stdout(), virtualOS.Stderr())
	})
}

// RunScript runs each line of script, commands get no input. It stops at
// exit and returns the status of the last pipeline.
func RunScript(s *shell.Shell, script io.Reader, stdout, stderr io.Writer) int {
	status := 0
	scanner := bufio.NewScanner(script)
	for scanner.Scan() {
		if code, ok := exitStatus(s, scanner.Text()); ok {
			return code
		}
		status = s.Run(scanner.Text(), nil, stdout, stderr)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", s.Name, err)
		return 1
	}
	return status
}

// exitStatus checks whether line is an exit command. exit without a status
// uses the last one.
func exitStatus(s *shell.Shell, line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "exit" {
		return 0, false
	}

	if len(fields) > 1 {
		if code, err := strconv.Atoi(fields[1]); err == nil {
			return code, true
		}
		return shell.StatusSyntaxError, true
	}

	code, _ := strconv.Atoi(s.State.Getenv(shell.EnvStatus))
	return code, true
}

// Session is an interactive line-editing loop around a shell.
type Session struct {
	Shell    *shell.Shell
	Readline *readline.Instance

	// Set to true to quit the session
	Quit bool
}

// SessionConfig holds the terminal a session is attached to.
type SessionConfig struct {
	Files vos.VIO
	// IsTerminal reports whether the session is attached to a terminal, false
	// if nil.
	IsTerminal func() bool
	// Width reports the terminal width, 80 if nil.
	Width func() int
}

// NewSession creates a session reading lines from the configured input.
func NewSession(s *shell.Shell, config SessionConfig) (*Session, error) {
	isTerminal := config.IsTerminal
	if isTerminal == nil {
		isTerminal = func() bool { return false }
	}
	width := config.Width
	if width == nil {
		width = func() int { return defaultLineWidth }
	}

	cfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(config.Files.Stdin()),
		Stdout:         config.Files.Stdout(),
		Stderr:         config.Files.Stderr(),
		FuncGetWidth:   width,
		FuncIsTerminal: isTerminal,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &Session{
		Shell:    s,
		Readline: rl,
	}, nil
}

// Prompt expands PS1 from the shell's state.
func (s *Session) Prompt() string {
	state := s.Shell.State

	prompt, ok := state.LookupEnv(EnvPrompt)
	if !ok {
		prompt = DefaultPrompt
	}
	prompt = strings.ReplaceAll(prompt, `\u`, state.Getenv(EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, state.Getenv(EnvHostname))

	pwd := state.Getwd()
	if home := state.Getenv(EnvHome); home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}

	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if state.Getenv(EnvUser) == "root" {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	prompt, _ = unescape(prompt)
	return prompt
}

// Run reads and runs lines until the input closes or exit is called.
func (s *Session) Run() int {
	status := 0
	for !s.Quit {
		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return status // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue
		}

		if code, ok := exitStatus(s.Shell, line); ok {
			s.Quit = true
			status = code
			continue
		}

		status = s.Shell.Run(line, nil, s.Readline.Stdout(), s.Readline.Stderr())
	}
	return status
}

// Close releases the terminal.
func (s *Session) Close() error {
	return s.Readline.Close()
}

var _ vos.ProcessFunc = RunShell

func init() {
	mustAddBinCmd("sh", RunShell)
}
