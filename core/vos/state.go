package vos

import (
	"errors"
	"io/fs"
	"sync"
)

// ErrNotDir is returned when changing into something that isn't a directory.
var ErrNotDir = errors.New("not a directory")

// ExecContext is a read-only view of the shell state.
type ExecContext interface {
	// Getwd returns the absolute working directory.
	Getwd() string
	LookupEnv(key string) (string, bool)
	Getenv(key string) string
	IsSet(key string) bool
	// EnvNames returns the names of all set variables, sorted.
	EnvNames() []string
	// Environ returns "key=value" pairs sorted by key.
	Environ() []string
}

// MutableContext is an ExecContext that can be changed. It's only handed to
// trusted builtins.
type MutableContext interface {
	ExecContext

	// Chdir changes the working directory, dir may be relative.
	Chdir(dir string) error
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// State is the live, shared state of a shell. It's safe for concurrent use.
type State struct {
	mu  sync.RWMutex
	env *MapEnv
	wd  string
	fs  VFS
}

var _ MutableContext = (*State)(nil)

// NewState creates a state rooted in fs. A nil env starts empty.
func NewState(fs VFS, wd string, env *MapEnv) *State {
	if env == nil {
		env = NewMapEnv()
	}
	return &State{env: env, wd: Resolve("/", wd), fs: fs}
}

// FS returns the filesystem the state is bound to.
func (s *State) FS() VFS {
	return s.fs
}

// Getwd implements ExecContext.
func (s *State) Getwd() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wd
}

// Chdir implements MutableContext, PWD and OLDPWD are updated on success.
func (s *State) Chdir(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := Resolve(s.wd, dir)
	info, err := s.fs.Stat(target)
	switch {
	case err != nil:
		return &fs.PathError{Op: "chdir", Path: dir, Err: fs.ErrNotExist}
	case !info.IsDir():
		return &fs.PathError{Op: "chdir", Path: dir, Err: ErrNotDir}
	}

	_ = s.env.Setenv("OLDPWD", s.wd)
	_ = s.env.Setenv("PWD", target)
	s.wd = target
	return nil
}

// LookupEnv implements ExecContext.
func (s *State) LookupEnv(key string) (string, bool) {
	return s.env.LookupEnv(key)
}

// Getenv implements ExecContext.
func (s *State) Getenv(key string) string {
	return s.env.Getenv(key)
}

// IsSet implements ExecContext.
func (s *State) IsSet(key string) bool {
	_, ok := s.env.LookupEnv(key)
	return ok
}

// EnvNames implements ExecContext.
func (s *State) EnvNames() []string {
	return s.env.Names()
}

// Environ implements ExecContext.
func (s *State) Environ() []string {
	return s.env.Environ()
}

// Setenv implements MutableContext.
func (s *State) Setenv(key, value string) error {
	return s.env.Setenv(key, value)
}

// Unsetenv implements MutableContext.
func (s *State) Unsetenv(key string) error {
	return s.env.Unsetenv(key)
}

// Snapshot captures the current working directory and variables.
func (s *State) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Snapshot{wd: s.wd, env: s.env.Clone()}
}

// Snapshot is an immutable copy of a State.
type Snapshot struct {
	wd  string
	env *MapEnv
}

var _ ExecContext = (*Snapshot)(nil)

// NewSnapshot creates a snapshot from literal values.
func NewSnapshot(wd string, environ []string) *Snapshot {
	return &Snapshot{wd: Resolve("/", wd), env: NewMapEnvFromEnvList(environ)}
}

// Getwd implements ExecContext.
func (s *Snapshot) Getwd() string {
	return s.wd
}

// LookupEnv implements ExecContext.
func (s *Snapshot) LookupEnv(key string) (string, bool) {
	return s.env.LookupEnv(key)
}

// Getenv implements ExecContext.
func (s *Snapshot) Getenv(key string) string {
	return s.env.Getenv(key)
}

// IsSet implements ExecContext.
func (s *Snapshot) IsSet(key string) bool {
	_, ok := s.env.LookupEnv(key)
	return ok
}

// EnvNames implements ExecContext.
func (s *Snapshot) EnvNames() []string {
	return s.env.Names()
}

// Environ implements ExecContext.
func (s *Snapshot) Environ() []string {
	return s.env.Environ()
}
