//go:build windows

package jobs

import "errors"

// continueGroup is a stub; Windows has no SIGCONT equivalent.
func continueGroup(pgid int) error {
	return errors.New("job control is not supported on this platform")
}
