//go:build !windows

package exec

import (
	"os"
	osexec "os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

var terminateSignal = unix.SIGTERM

// configureProcessGroup puts the child in the pipeline's process group so
// job-control signals reach every stage at once. A zero pgid makes the
// child the leader of a fresh group.
func configureProcessGroup(cmd *osexec.Cmd, pgid int) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.SysProcAttr.Pgid = pgid
}

// signalGroup delivers sig to the whole process group.
func signalGroup(pgid int, sig syscall.Signal) error {
	return unix.Kill(-pgid, sig)
}

// stopGroup suspends the whole process group.
func stopGroup(pgid int) error {
	return signalGroup(pgid, unix.SIGSTOP)
}

// signalGroupSignal is signalGroup for the portable os.Signal type.
func signalGroupSignal(pgid int, sig os.Signal) error {
	if s, ok := sig.(syscall.Signal); ok {
		return signalGroup(pgid, s)
	}
	switch sig {
	case os.Interrupt:
		return signalGroup(pgid, unix.SIGINT)
	case os.Kill:
		return signalGroup(pgid, unix.SIGKILL)
	}
	return nil
}

// waitExitStatus converts a Wait result into a shell return code, mapping
// death-by-signal to 128+signum the way POSIX shells report it.
func waitExitStatus(cmd *osexec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	if ps := cmd.ProcessState; ps != nil {
		if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return ps.ExitCode()
	}
	return 1
}

// platformEnvOverrides adjusts the detyped environment before export. No
// adjustments are needed on POSIX systems.
func platformEnvOverrides(map[string]string) {}
