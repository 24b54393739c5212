// Package vostest runs programs against a deterministic virtual OS.
package vostest

import (
	"bytes"
	"io"
	"time"

	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/vos"
)

// TimeSource is Go's reference timestmap with a different value in each
// position.
func TimeSource() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

// NewDeterministicState creates a state with a small in-memory filesystem,
// working in the home directory of user "tester".
func NewDeterministicState() *vos.State {
	fs, err := vos.NewMemFS("/bin", "/home/tester", "/tmp", "/etc")
	if err != nil {
		panic(err)
	}

	env := vos.NewMapEnvFromEnvList([]string{
		"HOME=/home/tester",
		"USER=tester",
		"HOSTNAME=localhost",
		"PATH=/bin:/usr/bin",
		"PWD=/home/tester",
	})

	return vos.NewState(fs, "/home/tester", env)
}

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Executable to run.
	Executable vos.Executable
	// Process arguments, the first argument should be the process name.
	Argv []string
	// If Dir is non-empty, the child changes into the directory before
	// creating the process.
	Dir string
	// If Env is non-empty, it gives additional environment variables for the
	// new process in the form returned by Environ.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// State the command runs against, NewDeterministicState if nil.
	State *vos.State
	// Recorder gets events, discarded if nil.
	Recorder logger.Recorder

	ExitStatus int

	Setup func(vos.VOS) error
}

// Command creates a command that runs exe.
func Command(exe vos.Executable, name string, arg ...string) *Cmd {
	return &Cmd{
		Executable: exe,
		Argv:       append([]string{name}, arg...),
	}
}

// FS returns the filesystem of the command's state, creating the state if
// needed.
func (c *Cmd) FS() vos.VFS {
	if c.State == nil {
		c.State = NewDeterministicState()
	}
	return c.State.FS()
}

func (c *Cmd) CombinedOutput() ([]byte, error) {
	// stdout, stderr
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	err := c.Run()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run starts the comand and waits for it to complete.
func (c *Cmd) Run() error {
	fs := c.FS()
	if c.Dir != "" {
		if err := c.State.Chdir(c.Dir); err != nil {
			return err
		}
	}
	if err := vos.CopyEnv(c.State, vos.EnvList(c.Env)); err != nil {
		return err
	}

	attr := &vos.ProcAttr{
		Args:     c.Argv,
		Files:    vos.NewVIOAdapter(c.Stdin, c.Stdout, c.Stderr),
		Context:  c.State.Snapshot(),
		FS:       fs,
		Recorder: c.Recorder,
		Now:      TimeSource,
	}

	var (
		proc vos.VOS
		run  func() int
	)
	if util, ok := c.Executable.(vos.ShellUtil); ok {
		sp := vos.NewShellProcess(attr, c.State)
		proc, run = sp, func() int { return util.RunUtil(sp) }
	} else {
		proc = vos.NewProcess(attr)
		run = func() int { return c.Executable.Run(proc) }
	}

	if c.Setup != nil {
		if err := c.Setup(proc); err != nil {
			return err
		}
	}

	c.ExitStatus = run()
	return nil
}
