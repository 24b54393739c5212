package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/josephlewis42/pipesh/core/invariant"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/shell/ast"
	"github.com/josephlewis42/pipesh/core/vos"
)

// Locator resolves command names to executables.
type Locator interface {
	LookupExecutable(name string) (vos.Executable, bool)
	// Names lists every name LookupExecutable resolves.
	Names() []string
}

// Context is the live state a pipeline runs against.
type Context interface {
	vos.MutableContext

	FS() vos.VFS
	Snapshot() *vos.Snapshot
}

var _ Context = (*vos.State)(nil)

// DefaultWriteBufferSize is the size of the buffer between a stage and the
// pipe it writes to.
const DefaultWriteBufferSize = 4096

// ExitStatus holds the exit status of each stage of a pipeline.
type ExitStatus struct {
	Stages []int
}

// Code is the status of the last stage, 0 for an empty pipeline.
func (s *ExitStatus) Code() int {
	if len(s.Stages) == 0 {
		return 0
	}
	return s.Stages[len(s.Stages)-1]
}

// String renders the statuses the way PIPESTATUS holds them.
func (s *ExitStatus) String() string {
	out := make([]string, len(s.Stages))
	for i, code := range s.Stages {
		out[i] = strconv.Itoa(code)
	}
	return strings.Join(out, " ")
}

// Executor runs expanded pipelines, one goroutine per stage.
type Executor struct {
	Locator Locator
	// Recorder receives stage failures and invalid invocations, may be nil.
	Recorder logger.Recorder
	// ErrorLog receives failures that aren't part of a pipeline's result,
	// like errors closing streams. log.Default() if nil.
	ErrorLog *log.Logger
	// PipeCapacity is the buffer size of each pipe.
	PipeCapacity int
	// WriteBufferSize is the buffer between a stage and its outgoing pipe.
	WriteBufferSize int
	// Now is the time source given to programs, time.Now if nil.
	Now func() time.Time
}

type stage struct {
	index int
	argv  []string
	exe   vos.Executable

	in  io.Reader
	out io.Writer

	// Set if the stage owns the stream.
	inCloser  io.Closer
	outBuffer *bufio.Writer
	outCloser io.Closer
}

// Execute runs every command of p concurrently, connected by pipes, and
// waits for all of them to finish. Every argument of p must be a literal.
//
// If any command can't be resolved a *LookupError is returned before
// anything runs. Failures inside a stage are reported on stderr and reflected
// in its exit status, they never stop sibling stages.
func (e *Executor) Execute(ctx Context, p *ast.Pipeline, stdin io.Reader, stdout, stderr io.Writer) (*ExitStatus, error) {
	invariant.NotNil(ctx, "ctx")
	invariant.NotNil(p, "pipeline")

	if p.Len() == 0 {
		return &ExitStatus{}, nil
	}
	if stderr == nil {
		stderr = io.Discard
	}

	stages, err := e.resolve(p)
	if err != nil {
		return nil, err
	}
	e.wire(stages, stdin, stdout)

	snapshot := ctx.Snapshot()
	sharedStderr := &lockedWriter{w: stderr}
	status := &ExitStatus{Stages: make([]int, len(stages))}

	var wg sync.WaitGroup
	wg.Add(len(stages))
	for _, st := range stages {
		st := st
		go func() {
			defer wg.Done()
			status.Stages[st.index] = e.runStage(ctx, snapshot, st, sharedStderr)
		}()
	}
	wg.Wait()

	return status, nil
}

func (e *Executor) resolve(p *ast.Pipeline) ([]*stage, error) {
	stages := make([]*stage, len(p.Commands))
	for i, cmd := range p.Commands {
		argv := make([]string, len(cmd.Args))
		for j, arg := range cmd.Args {
			lit, ok := arg.(*ast.Literal)
			invariant.Precondition(ok, "argument %d of command %d must be expanded, got %T", j, i, arg)
			argv[j] = lit.Text
		}

		exe, ok := e.Locator.LookupExecutable(argv[0])
		if !ok {
			return nil, newLookupError(argv[0], e.Locator.Names())
		}

		stages[i] = &stage{index: i, argv: argv, exe: exe}
	}
	return stages, nil
}

func (e *Executor) wire(stages []*stage, stdin io.Reader, stdout io.Writer) {
	bufSize := e.WriteBufferSize
	if bufSize <= 0 {
		bufSize = DefaultWriteBufferSize
	}

	var upstream *PipeSource
	for i, st := range stages {
		if i == 0 {
			st.in = stdin
		} else {
			st.in = upstream
			st.inCloser = upstream
		}

		if i == len(stages)-1 {
			st.out = stdout
			continue
		}

		sink, source := NewPipe(e.PipeCapacity)
		st.outBuffer = bufio.NewWriterSize(sink, bufSize)
		st.out = st.outBuffer
		st.outCloser = sink
		upstream = source
	}
}

func (e *Executor) runStage(ctx Context, snapshot *vos.Snapshot, st *stage, stderr io.Writer) (status int) {
	defer e.cleanup(st)
	defer func() {
		if r := recover(); r != nil {
			status = 1
			e.reportFailure(st, recoveredError(r), stderr)
		}
	}()

	attr := &vos.ProcAttr{
		Args:     st.argv,
		Files:    vos.NewVIOAdapter(st.in, st.out, stderr),
		Context:  snapshot,
		FS:       ctx.FS(),
		Recorder: e.Recorder,
		Now:      e.Now,
	}

	if util, ok := st.exe.(vos.ShellUtil); ok {
		return util.RunUtil(vos.NewShellProcess(attr, ctx))
	}
	return st.exe.Run(vos.NewProcess(attr))
}

func (e *Executor) reportFailure(st *stage, err error, stderr io.Writer) {
	stageErr := &StageError{Stage: st.exe.Name(), Err: err}

	e.errorLog().Printf("stage %d failed: %v", st.index, stageErr)
	fmt.Fprintln(stderr, stageErr)

	if e.Recorder != nil {
		_ = e.Recorder.Record(&logger.StageFailure{
			Stage: st.exe.Name(),
			Args:  st.argv,
			Error: err.Error(),
		})
	}
}

func (e *Executor) cleanup(st *stage) {
	if st.inCloser != nil {
		if err := st.inCloser.Close(); err != nil {
			e.errorLog().Printf("closing input of stage %d (%s): %v", st.index, st.exe.Name(), err)
		}
	}

	if st.outBuffer != nil {
		// A reader that went away isn't a failure of this stage.
		if err := st.outBuffer.Flush(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			e.errorLog().Printf("flushing output of stage %d (%s): %v", st.index, st.exe.Name(), err)
		}
	}

	if st.outCloser != nil {
		if err := st.outCloser.Close(); err != nil {
			e.errorLog().Printf("closing output of stage %d (%s): %v", st.index, st.exe.Name(), err)
		}
	}
}

func (e *Executor) errorLog() *log.Logger {
	if e.ErrorLog != nil {
		return e.ErrorLog
	}
	return log.Default()
}

func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// lockedWriter serializes writes from concurrent stages.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(b)
}
