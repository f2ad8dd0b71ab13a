//go:build windows

package exec

import (
	"errors"
	"os"
	osexec "os/exec"
	"syscall"
)

var terminateSignal = os.Kill

// configureProcessGroup is a no-op; Windows has no POSIX process groups.
func configureProcessGroup(cmd *osexec.Cmd, pgid int) {}

func signalGroup(pgid int, sig syscall.Signal) error {
	return errors.New("process group signals are not supported on this platform")
}

func signalGroupSignal(pgid int, sig os.Signal) error {
	return errors.New("process group signals are not supported on this platform")
}

func stopGroup(pgid int) error {
	return errors.New("process group signals are not supported on this platform")
}

func waitExitStatus(cmd *osexec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	if ps := cmd.ProcessState; ps != nil {
		return ps.ExitCode()
	}
	return 1
}

// platformEnvOverrides neutralizes the PROMPT variable: the shell's own
// prompt format makes no sense to a spawned cmd.exe.
func platformEnvOverrides(denv map[string]string) {
	denv["PROMPT"] = "$P$G"
}
