package vos

import (
	"io/fs"
	"time"

	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/spf13/afero"
)

// VOS is the view of the system a single running program gets.
type VOS interface {
	VIO
	ExecContext

	// Args holds command line arguments, including the command as Args[0].
	Args() []string
	// FS returns the unresolved filesystem.
	FS() VFS
	// Now returns the current time.
	Now() time.Time

	// Filesystem operations, relative names are resolved against Getwd.
	Open(name string) (afero.File, error)
	Create(name string) (afero.File, error)
	OpenFile(name string, flag int, perm fs.FileMode) (afero.File, error)
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.FileInfo, error)
	Mkdir(name string, perm fs.FileMode) error
	MkdirAll(name string, perm fs.FileMode) error
	Chtimes(name string, atime, mtime time.Time) error
	Chmod(name string, mode fs.FileMode) error
	Remove(name string) error
	RemoveAll(name string) error

	// Fork creates a view with the same streams and context but new args.
	Fork(args []string) VOS

	// LogInvalidInvocation records that the program was called incorrectly.
	LogInvalidInvocation(err error)
}

// ShellVOS is a VOS whose context can be changed.
type ShellVOS interface {
	VOS

	Chdir(dir string) error
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// Executable is a named program.
type Executable interface {
	Name() string
	// Run executes the program and returns its exit status.
	Run(VOS) int
}

// ShellUtil is an Executable that changes shell state, like cd.
type ShellUtil interface {
	Executable

	RunUtil(ShellVOS) int
}

// ProcessFunc is the body of a program.
type ProcessFunc func(VOS) int

// ShellUtilFunc is the body of a shell utility.
type ShellUtilFunc func(ShellVOS) int

// NewProgram creates an Executable from a function.
func NewProgram(name string, fn ProcessFunc) Executable {
	return &program{name: name, fn: fn}
}

type program struct {
	name string
	fn   ProcessFunc
}

func (p *program) Name() string { return p.name }
func (p *program) Run(v VOS) int { return p.fn(v) }

// NewShellUtil creates a ShellUtil from a function. Running it as a plain
// program applies its changes to a private copy of the state, like a
// subshell would.
func NewShellUtil(name string, fn ShellUtilFunc) ShellUtil {
	return &shellUtil{name: name, fn: fn}
}

type shellUtil struct {
	name string
	fn   ShellUtilFunc
}

func (u *shellUtil) Name() string { return u.name }
func (u *shellUtil) RunUtil(v ShellVOS) int { return u.fn(v) }

func (u *shellUtil) Run(v VOS) int {
	return u.fn(Detach(v))
}

// ProcAttr holds the attributes of a new process.
type ProcAttr struct {
	// Args holds command line arguments, including the command as Args[0].
	Args []string
	// Files holds the standard streams, NewNullIO if nil.
	Files VIO
	// Context is the state visible to the process.
	Context ExecContext
	FS      VFS
	// Recorder receives invalid invocation events, may be nil.
	Recorder logger.Recorder
	// Now is the time source, time.Now if nil.
	Now func() time.Time
}

// NewProcess creates the view a plain program runs against.
func NewProcess(attr *ProcAttr) VOS {
	return newProcess(attr, attr.Context)
}

// NewShellProcess creates the view a shell utility runs against, changes
// go directly to state.
func NewShellProcess(attr *ProcAttr, state MutableContext) ShellVOS {
	return &shellProcess{process: newProcess(attr, state), state: state}
}

// Detach creates a ShellVOS for v whose changes go to a private copy of the
// state.
func Detach(v VOS) ShellVOS {
	if sv, ok := v.(*shellProcess); ok {
		v = sv.process
	}

	scratch := NewState(v.FS(), v.Getwd(), NewMapEnvFromEnvList(v.Environ()))
	p := &process{
		VIO:     v,
		ctx:     scratch,
		args:    v.Args(),
		fs:      v.FS(),
		now:     v.Now,
		invalid: v.LogInvalidInvocation,
	}
	return &shellProcess{process: p, state: scratch}
}

func newProcess(attr *ProcAttr, ctx ExecContext) *process {
	files := attr.Files
	if files == nil {
		files = NewNullIO()
	}
	now := attr.Now
	if now == nil {
		now = time.Now
	}
	recorder := attr.Recorder
	if recorder == nil {
		recorder = &logger.NopRecorder{}
	}
	args := append([]string(nil), attr.Args...)

	return &process{
		VIO:  files,
		ctx:  ctx,
		args: args,
		fs:   attr.FS,
		now:  now,
		invalid: func(err error) {
			_ = recorder.Record(&logger.InvalidInvocation{
				Command: args,
				Error:   err.Error(),
			})
		},
	}
}

type process struct {
	VIO

	ctx     ExecContext
	args    []string
	fs      VFS
	now     func() time.Time
	invalid func(error)
}

var _ VOS = (*process)(nil)

func (p *process) Args() []string { return p.args }
func (p *process) FS() VFS { return p.fs }
func (p *process) Now() time.Time { return p.now() }
func (p *process) Getwd() string { return p.ctx.Getwd() }
func (p *process) LookupEnv(k string) (string, bool) { return p.ctx.LookupEnv(k) }
func (p *process) Getenv(k string) string { return p.ctx.Getenv(k) }
func (p *process) IsSet(k string) bool { return p.ctx.IsSet(k) }
func (p *process) EnvNames() []string { return p.ctx.EnvNames() }
func (p *process) Environ() []string { return p.ctx.Environ() }

func (p *process) LogInvalidInvocation(err error) {
	p.invalid(err)
}

func (p *process) Fork(args []string) VOS {
	child := *p
	child.args = append([]string(nil), args...)
	return &child
}

func (p *process) resolve(name string) string {
	return Resolve(p.Getwd(), name)
}

func (p *process) Open(name string) (afero.File, error) {
	return p.fs.Open(p.resolve(name))
}

func (p *process) Create(name string) (afero.File, error) {
	return p.fs.Create(p.resolve(name))
}

func (p *process) OpenFile(name string, flag int, perm fs.FileMode) (afero.File, error) {
	return p.fs.OpenFile(p.resolve(name), flag, perm)
}

func (p *process) Stat(name string) (fs.FileInfo, error) {
	return p.fs.Stat(p.resolve(name))
}

func (p *process) ReadDir(name string) ([]fs.FileInfo, error) {
	return afero.ReadDir(p.fs, p.resolve(name))
}

func (p *process) Mkdir(name string, perm fs.FileMode) error {
	return p.fs.Mkdir(p.resolve(name), perm)
}

func (p *process) MkdirAll(name string, perm fs.FileMode) error {
	return p.fs.MkdirAll(p.resolve(name), perm)
}

func (p *process) Chtimes(name string, atime, mtime time.Time) error {
	return p.fs.Chtimes(p.resolve(name), atime, mtime)
}

func (p *process) Chmod(name string, mode fs.FileMode) error {
	return p.fs.Chmod(p.resolve(name), mode)
}

func (p *process) Remove(name string) error {
	return p.fs.Remove(p.resolve(name))
}

func (p *process) RemoveAll(name string) error {
	return p.fs.RemoveAll(p.resolve(name))
}

type shellProcess struct {
	*process

	state MutableContext
}

var _ ShellVOS = (*shellProcess)(nil)

func (s *shellProcess) Fork(args []string) VOS {
	return &shellProcess{process: s.process.Fork(args).(*process), state: s.state}
}

func (s *shellProcess) Chdir(dir string) error {
	return s.state.Chdir(dir)
}

func (s *shellProcess) Setenv(key, value string) error {
	return s.state.Setenv(key, value)
}

func (s *shellProcess) Unsetenv(key string) error {
	return s.state.Unsetenv(key)
}
