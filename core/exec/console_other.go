//go:build !linux

package exec

// newConsoleChannel falls back to pipe plumbing on platforms without a
// usable pty implementation.
func newConsoleChannel() ConsoleChannel {
	return &pipeConsole{}
}
