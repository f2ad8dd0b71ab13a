//go:build !windows

package jobs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// continueGroup delivers SIGCONT to the whole process group.
func continueGroup(pgid int) error {
	if pgid <= 0 {
		return fmt.Errorf("job has no process group")
	}
	if err := unix.Kill(-pgid, unix.SIGCONT); err != nil {
		return fmt.Errorf("failed to continue process group %d: %w", pgid, err)
	}
	return nil
}
