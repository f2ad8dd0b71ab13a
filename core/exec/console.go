package exec

import (
	"os"
)

// ConsoleChannel abstracts the platform's console plumbing for the
// inherit-with-observation path: a pty on POSIX so child programs see a
// terminal, plain pipes elsewhere. Nothing outside this file's platform
// implementations branches on the platform.
type ConsoleChannel interface {
	// OpenPair returns the child-facing end to bind as a stage's output
	// and the observer end the drain layer reads from.
	OpenPair() (child, observer *os.File, err error)
	// Resize propagates a terminal size change to the controlled
	// console.
	Resize(width, height int) error
	// IsTerminal reports whether children see a real terminal.
	IsTerminal() bool
	// Close releases any console resources still held.
	Close() error
}

// pipeConsole is the fallback ConsoleChannel backed by ordinary OS pipes.
// Children do not see a terminal on this path.
type pipeConsole struct {
	observers []*os.File
}

func (c *pipeConsole) OpenPair() (*os.File, *os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	c.observers = append(c.observers, r)
	return w, r, nil
}

func (c *pipeConsole) Resize(width, height int) error { return nil }

func (c *pipeConsole) IsTerminal() bool { return false }

func (c *pipeConsole) Close() error {
	for _, f := range c.observers {
		_ = f.Close()
	}
	c.observers = nil
	return nil
}
