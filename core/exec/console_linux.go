//go:build linux

package exec

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// newConsoleChannel picks the pty-backed console when the shell itself is
// attached to a terminal, otherwise plain pipes.
func newConsoleChannel() ConsoleChannel {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return &ptyConsole{}
	}
	return &pipeConsole{}
}

// ptyConsole allocates a pseudo-terminal per stream so curses- and
// readline-based children behave as if attached to the real console.
type ptyConsole struct {
	masters []*os.File
}

func (c *ptyConsole) OpenPair() (*os.File, *os.File, error) {
	master, slave, err := openPty()
	if err != nil {
		return nil, nil, err
	}
	c.masters = append(c.masters, master)
	return slave, master, nil
}

// Resize propagates the real terminal's dimensions to every allocated pty.
func (c *ptyConsole) Resize(width, height int) error {
	ws := &unix.Winsize{Col: uint16(width), Row: uint16(height)}
	var lastErr error
	for _, master := range c.masters {
		if err := unix.IoctlSetWinsize(int(master.Fd()), unix.TIOCSWINSZ, ws); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *ptyConsole) IsTerminal() bool { return true }

func (c *ptyConsole) Close() error {
	for _, master := range c.masters {
		_ = master.Close()
	}
	c.masters = nil
	return nil
}

// openPty allocates a master/slave pty pair via /dev/ptmx.
func openPty() (master, slave *os.File, err error) {
	master, err = os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	n, err := unix.IoctlGetInt(int(master.Fd()), unix.TIOCGPTN)
	if err != nil {
		master.Close()
		return nil, nil, err
	}
	if err := unix.IoctlSetPointerInt(int(master.Fd()), unix.TIOCSPTLCK, 0); err != nil {
		master.Close()
		return nil, nil, err
	}

	name := fmt.Sprintf("/dev/pts/%d", n)
	slave, err = os.OpenFile(name, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		master.Close()
		return nil, nil, err
	}

	fixPtyProperties(slave)
	return master, slave, nil
}

// fixPtyProperties clears ONLCR so raw unix protocols run through the pty
// keep plain \n line endings.
func fixPtyProperties(f *os.File) {
	props, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	if err != nil {
		return
	}
	props.Oflag = props.Oflag&^unix.ONLCR | unix.ONLRET
	_ = unix.IoctlSetTermios(int(f.Fd()), unix.TCSETS, props)
}
