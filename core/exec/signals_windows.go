//go:build windows

package exec

import (
	"os"
	"os/signal"
	"time"
)

const foregroundPollInterval = 50 * time.Millisecond

// ForegroundWait runs an already-launched pipeline in the foreground.
// Windows has no job-control signals, so only interrupts are relayed.
func ForegroundWait(p *CommandPipeline) int {
	sigs := make(chan os.Signal, 8)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	for {
		select {
		case <-sigs:
			p.Interrupt()
		default:
		}

		if p.pollCompletion(foregroundPollInterval) {
			return p.Returncode()
		}
	}
}
