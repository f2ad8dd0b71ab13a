package exec

import (
	"os"
	"time"
)

// Runner is the uniform wrapper over one launched stage: a real OS process
// or an in-process callable execution.
type Runner interface {
	// Start launches the stage. For a synchronous (unthreadable)
	// callable it blocks until completion.
	Start() error
	// Poll returns the exit status and whether the stage has finished.
	Poll() (int, bool)
	// Wait blocks up to timeout for completion; a negative timeout
	// blocks indefinitely. The boolean is false if still running.
	Wait(timeout time.Duration) (int, bool)
	// Signal delivers sig to the stage.
	Signal(sig os.Signal) error
	// Terminate requests a graceful stop.
	Terminate() error
	// Kill forces the stage down.
	Kill() error
	// Pid returns the OS process id, or 0 for in-process stages.
	Pid() int
}
