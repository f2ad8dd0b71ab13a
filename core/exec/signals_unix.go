//go:build !windows

package exec

import (
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const foregroundPollInterval = 50 * time.Millisecond

// ForegroundWait runs an already-launched pipeline in the foreground,
// relaying terminal signals to its process group until it completes or
// stops. A Ctrl-Z suspension returns control to the caller with the
// conventional 128+SIGTSTP status; the job table keeps the handle for a
// later fg or bg.
func ForegroundWait(p *CommandPipeline) int {
	sigs := make(chan os.Signal, 8)
	signal.Notify(sigs, unix.SIGINT, unix.SIGTSTP, unix.SIGQUIT, unix.SIGWINCH)
	defer signal.Stop(sigs)

	for {
		select {
		case sig := <-sigs:
			switch sig {
			case unix.SIGINT:
				p.Interrupt()
			case unix.SIGTSTP:
				p.Suspend()
				return 128 + int(unix.SIGTSTP)
			case unix.SIGQUIT:
				if pgid := p.Pgid(); pgid > 0 {
					_ = signalGroup(pgid, unix.SIGQUIT)
				}
			case unix.SIGWINCH:
				forwardResize(p)
			}
		default:
		}

		if p.pollCompletion(foregroundPollInterval) {
			return p.Returncode()
		}
	}
}

// forwardResize pushes the controlling terminal's current size to the
// pipeline's console so full-screen children redraw correctly.
func forwardResize(p *CommandPipeline) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return
	}
	p.Resize(w, h)
}
