// Package shell trims, expands and runs parsed pipelines.
package shell

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/shell/ast"
	"github.com/josephlewis42/pipesh/core/shell/parser"
	"github.com/josephlewis42/pipesh/core/vos"
)

const (
	// EnvStatus holds the exit status of the last pipeline.
	EnvStatus = "?"
	// EnvPipeStatus holds the space separated exit status of every stage of
	// the last pipeline.
	EnvPipeStatus = "PIPESTATUS"

	// Exit statuses of pipelines that never ran.
	StatusSyntaxError     = 2
	StatusExpansionError  = 1
	StatusCommandNotFound = 127
)

// Shell runs lines of source against a shared state.
type Shell struct {
	State    *vos.State
	Executor *Executor
	// Recorder receives pipeline events, may be nil.
	Recorder logger.Recorder
	// Name prefixes the shell's own error messages.
	Name string
}

// NewShell creates a shell; the executor's recorder is shared.
func NewShell(state *vos.State, executor *Executor) *Shell {
	return &Shell{
		State:    state,
		Executor: executor,
		Recorder: executor.Recorder,
		Name:     "pipesh",
	}
}

// Run parses, trims, expands and executes line. It returns the exit status
// of the pipeline and stores it in the ? and PIPESTATUS variables. Errors are
// reported on stderr.
//
// A line without commands doesn't change the status.
func (s *Shell) Run(line string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stderr == nil {
		stderr = io.Discard
	}

	parsed, err := parser.Parse(line)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintf(stderr, "%s: %v\n%s\n", s.Name, parseErr, parseErr.Snippet())
			s.record(&logger.ParseFailure{Source: line, Pos: parseErr.Pos, Error: parseErr.Msg})
		} else {
			fmt.Fprintf(stderr, "%s: %v\n", s.Name, err)
		}
		return s.setStatus(StatusSyntaxError)
	}

	trimmed := Trim(parsed)
	if trimmed.Len() == 0 {
		code, _ := strconv.Atoi(s.State.Getenv(EnvStatus))
		return code
	}

	expander := &Expander{Executor: s.Executor, FS: s.State.FS(), Stderr: stderr}
	expanded, err := expander.Expand(s.State.Snapshot(), trimmed)
	if err != nil {
		return s.fail(line, err, stderr)
	}

	status, err := s.Executor.Execute(s.State, expanded, stdin, stdout, stderr)
	if err != nil {
		return s.fail(line, err, stderr)
	}

	s.record(&logger.RunPipeline{Source: line, Commands: argvs(expanded), Statuses: status.Stages})

	code := s.setStatus(status.Code())
	_ = s.State.Setenv(EnvPipeStatus, status.String())
	return code
}

// argvs returns the text of every argument of an expanded pipeline.
func argvs(p *ast.Pipeline) [][]string {
	out := make([][]string, len(p.Commands))
	for i, cmd := range p.Commands {
		for _, arg := range cmd.Args {
			out[i] = append(out[i], ast.Render(arg))
		}
	}
	return out
}

func (s *Shell) fail(line string, err error, stderr io.Writer) int {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		fmt.Fprintf(stderr, "%s: %v\n", s.Name, lookupErr)
		if hint := lookupErr.Hint(); hint != "" {
			fmt.Fprintln(stderr, hint)
		}
		s.record(&logger.UnknownCommand{Command: lookupErr.Name, Suggestions: lookupErr.Suggestions})
		return s.setStatus(StatusCommandNotFound)
	}

	fmt.Fprintf(stderr, "%s: %v\n", s.Name, err)
	s.record(&logger.ExpansionFailure{Source: line, Error: err.Error()})
	return s.setStatus(StatusExpansionError)
}

func (s *Shell) setStatus(code int) int {
	_ = s.State.Setenv(EnvStatus, strconv.Itoa(code))
	_ = s.State.Setenv(EnvPipeStatus, strconv.Itoa(code))
	return code
}

func (s *Shell) record(event logger.Event) {
	if s.Recorder != nil {
		_ = s.Recorder.Record(event)
	}
}
