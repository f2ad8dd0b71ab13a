package exec

import (
	"github.com/spf13/afero"
)

// StreamKind discriminates a stream binding.
type StreamKind int

const (
	// StreamUnset means no binding; the default wiring applies.
	StreamUnset StreamKind = iota
	// StreamHandle binds an open file or pipe end.
	StreamHandle
	// StreamMergeStdout aliases stderr onto the sibling stdout handle.
	StreamMergeStdout
	// StreamMergeStderr aliases stdout onto the sibling stderr handle.
	StreamMergeStderr
)

// Stream is one finalized standard-stream binding. Handles are raw open
// files (os pipes, ptys, redirect targets) since they must be able to cross
// process boundaries.
type Stream struct {
	Kind   StreamKind
	Handle afero.File
}

// Set reports whether the stream has been bound.
func (s Stream) Set() bool { return s.Kind != StreamUnset }

func handleStream(f afero.File) Stream {
	return Stream{Kind: StreamHandle, Handle: f}
}

// safeClose closes a handle, swallowing errors; used when discarding a
// stream that lost a binding race.
func safeClose(f afero.File) {
	if f != nil {
		_ = f.Close()
	}
}
