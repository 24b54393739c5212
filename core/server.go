// Package core serves shell sessions over SSH.
package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync/atomic"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/pipesh/commands"
	"github.com/josephlewis42/pipesh/core/config"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/josephlewis42/pipesh/core/vos"
	gossh "golang.org/x/crypto/ssh"
)

const defaultTerminalWidth = 80

type Server struct {
	configuration *config.Configuration
	events        *logger.Logger
	errorLog      *log.Logger
	sshServer     *ssh.Server
}

// NewServer creates an SSH server giving each session its own shell. Events
// are written to eventLog as JSON lines.
func NewServer(configuration *config.Configuration, eventLog io.Writer, errorLog *log.Logger) (*Server, error) {
	keyPem, err := configuration.HostKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(keyPem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}

	server := &Server{
		configuration: configuration,
		events:        logger.NewJsonLinesLogRecorder(eventLog),
		errorLog:      errorLog,
	}

	server.sshServer = &ssh.Server{
		Addr:    fmt.Sprintf(":%d", configuration.SSHPort),
		Handler: server.HandleConnection,
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			return configuration.CheckPassword(password)
		},
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

// HandleConnection runs the client's command, or an interactive shell if it
// didn't send one, and exits with the shell's status.
func (s *Server) HandleConnection(sess ssh.Session) {
	sessionLogger := s.events.NewSession()
	if err := sessionLogger.Record(&logger.Login{
		User:       sess.User(),
		RemoteAddr: sess.RemoteAddr().String(),
		RawCommand: sess.RawCommand(),
	}); err != nil {
		s.errorLog.Printf("recording login: %v", err)
	}

	sh, err := s.newShell(sessionLogger)
	if err != nil {
		s.errorLog.Printf("starting shell: %v", err)
		fmt.Fprintln(sess.Stderr(), "internal error")
		sess.Exit(1)
		return
	}

	sess.Exit(s.runSession(sess, sh))
}

func (s *Server) newShell(recorder logger.Recorder) (*shell.Shell, error) {
	state, err := s.configuration.NewState()
	if err != nil {
		return nil, err
	}

	executor := commands.NewExecutor(recorder)
	executor.ErrorLog = s.errorLog
	s.configuration.Executor.Configure(executor)

	return shell.NewShell(state, executor), nil
}

func (s *Server) runSession(sess ssh.Session, sh *shell.Shell) int {
	if command := sess.RawCommand(); command != "" {
		return sh.Run(command, sess, sess, sess.Stderr())
	}

	ptyInfo, winch, isPTY := sess.Pty()
	if !isPTY {
		return commands.RunScript(sh, sess, sess, sess.Stderr())
	}

	if ptyInfo.Term != "" {
		sh.State.Setenv("TERM", ptyInfo.Term)
	}

	var width int64 = defaultTerminalWidth
	if ptyInfo.Window.Width > 0 {
		width = int64(ptyInfo.Window.Width)
	}
	go func() {
		for window := range winch {
			atomic.StoreInt64(&width, int64(window.Width))
		}
	}()

	session, err := commands.NewSession(sh, commands.SessionConfig{
		Files:      vos.NewVIOAdapter(sess, sess, sess.Stderr()),
		IsTerminal: func() bool { return true },
		Width: func() int {
			return int(atomic.LoadInt64(&width))
		},
	})
	if err != nil {
		s.errorLog.Printf("starting terminal: %v", err)
		return 1
	}
	defer session.Close()

	return session.Run()
}

func (s *Server) ListenAndServe() error {
	s.errorLog.Printf("- Starting SSH server on %s\n", s.sshServer.Addr)
	return s.sshServer.ListenAndServe()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	return s.sshServer.Serve(l)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.sshServer.Close()
}
