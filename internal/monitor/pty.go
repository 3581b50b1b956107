package monitor

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
)

// spawnShell starts shellPath inside a fresh pseudo-terminal and returns
// the master side. The slave is wired to the child's standard streams and
// closed in this process by pty.Start. Allocation or spawn failure is fatal
// to the session and happens before the terminal enters raw mode.
func spawnShell(shellPath string) (*os.File, *exec.Cmd, error) {
	cmd := exec.Command(shellPath)
	cmd.Env = os.Environ()
	master, err := pty.Start(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("spawn %s: %w", shellPath, err)
	}
	return master, cmd, nil
}

// watchResize propagates terminal size changes to the PTY so full-screen
// programs inside the shell render correctly. The initial kick syncs the
// child to the current size before any SIGWINCH arrives.
func watchResize(tty *os.File, master *os.File, done <-chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				_ = pty.InheritSize(tty, master)
			}
		}
	}()
	sigCh <- syscall.SIGWINCH
}
