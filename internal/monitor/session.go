// Package monitor implements the terminal session relay: it spawns the
// user's shell inside a pseudo-terminal, passes keyboard and screen bytes
// through untouched, tracks per-command output, and diverts a single
// reserved keypress (Ctrl+G) into an asynchronous AI analysis of the most
// recent command's output.
package monitor

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"golang.org/x/term"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/config"
	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/convlog"
	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/llm"
)

// Session owns the relay's lifecycle: one PTY, one shell process, one
// capture buffer, torn down exactly once.
type Session struct {
	cfg    *config.Config
	client llm.Client
	log    *convlog.Logger

	// Shell overrides $SHELL when set; used by tests.
	Shell string

	stdin  *os.File
	stdout *os.File
}

// New assembles a session from the resolved configuration and its external
// collaborators.
func New(cfg *config.Config, client llm.Client, log *convlog.Logger) *Session {
	return &Session{
		cfg:    cfg,
		client: client,
		log:    log,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// shellPath picks the shell to wrap.
func (s *Session) shellPath() string {
	if s.Shell != "" {
		return s.Shell
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/bash"
}

// Run drives the session to completion and returns the shell's exit status.
// Setup failures (PTY allocation, spawn, raw mode) are returned as errors
// before any terminal state has been disturbed; once the relay is running,
// shell exit is the only way out and the terminal is always restored.
func (s *Session) Run(ctx context.Context) (int, error) {
	master, cmd, err := spawnShell(s.shellPath())
	if err != nil {
		return 1, err
	}
	defer master.Close()

	restore, err := makeRaw(s.stdin)
	if err != nil {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		return 1, err
	}
	defer restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := newTermWriter(s.stdout)
	var buf CaptureBuffer
	ic := newInterceptor(&buf)

	shellDone := make(chan struct{})
	watchResize(s.stdin, master, shellDone)

	go outputTap(master, out, &buf, shellDone)
	go ic.run(s.stdin, master)

	d := &dispatcher{
		buf:        &buf,
		client:     s.client,
		out:        out,
		log:        s.log,
		maxContext: s.cfg.MaxContextChars,
		width:      func() int { return termWidth(s.stdout) },
	}
	go d.run(ctx, ic.triggers)

	// The shell's own exit ends the session: the output tap sees EOF on the
	// master once the child is gone. End-of-transmission from the keyboard
	// is forwarded like any other byte and takes effect inside the shell.
	<-shellDone
	cancel()

	return waitExit(cmd)
}

// makeRaw switches the controlling terminal to raw mode and returns the
// restore function. A non-terminal stdin (tests, pipes) is left untouched.
func makeRaw(tty *os.File) (func(), error) {
	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, oldState) }, nil
}

func termWidth(tty *os.File) int {
	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return 80
	}
	return cols
}

// waitExit reaps the shell and maps its status to the session's exit code.
func waitExit(cmd *exec.Cmd) (int, error) {
	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}
