package exec

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// readChunkSize bounds each blocking read performed by the drain goroutine.
const readChunkSize = 1024

// defaultPollTimeout bounds how long a foreground consumer waits for the
// next chunk before checking for signals again.
const defaultPollTimeout = 100 * time.Millisecond

// NonBlockingReader drains a readable end (pipe, pty, console) on a
// background goroutine into an in-memory queue, so a synchronous consumer
// is never blocked by a slow producer and the interactive thread stays
// responsive. The queue grows without bound: the drain goroutine must keep
// emptying the OS pipe no matter how far behind the consumer falls, or the
// producing child would block on write.
type NonBlockingReader struct {
	src io.ReadCloser

	mu      sync.Mutex
	pending [][]byte
	paused  bool
	resume  chan struct{}
	closed  bool

	// notify wakes a waiting consumer; capacity one, signals coalesce.
	notify chan struct{}

	// alt routes alternate-screen output straight to the terminal.
	alt *altScanner
}

// NewNonBlockingReader starts draining src.
func NewNonBlockingReader(src io.ReadCloser) *NonBlockingReader {
	r := &NonBlockingReader{
		src:    src,
		resume: make(chan struct{}),
		notify: make(chan struct{}, 1),
	}
	go r.drain()
	return r
}

// NewTeeReader starts draining src while scanning for terminal
// alternate-screen escape sequences. Bytes between an enter and exit
// sequence bypass the queue and go directly to tty, letting full-screen
// programs draw even inside a captured pipeline.
func NewTeeReader(src io.ReadCloser, tty io.Writer) *NonBlockingReader {
	r := &NonBlockingReader{
		src:    src,
		resume: make(chan struct{}),
		notify: make(chan struct{}, 1),
		alt:    &altScanner{tty: tty},
	}
	go r.drain()
	return r
}

func (r *NonBlockingReader) drain() {
	defer func() {
		if r.alt != nil {
			r.push(r.alt.flush())
		}
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		r.wake()
		_ = r.src.Close()
	}()

	buf := make([]byte, readChunkSize)
	for {
		r.waitIfPaused()
		n, err := r.src.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if r.alt != nil {
				chunk = r.alt.scan(chunk)
			}
			r.push(chunk)
		}
		if err != nil {
			return
		}
	}
}

func (r *NonBlockingReader) push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	r.mu.Lock()
	r.pending = append(r.pending, chunk)
	r.mu.Unlock()
	r.wake()
}

func (r *NonBlockingReader) wake() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *NonBlockingReader) waitIfPaused() {
	r.mu.Lock()
	ch := r.resume
	paused := r.paused
	r.mu.Unlock()
	if paused {
		<-ch
	}
}

// Pause stops draining until Resume. Used while a pipeline is suspended.
func (r *NonBlockingReader) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		r.paused = true
		r.resume = make(chan struct{})
	}
}

// Resume restarts draining after a Pause.
func (r *NonBlockingReader) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused {
		r.paused = false
		close(r.resume)
	}
}

// Closed reports whether the far end is exhausted. Queued chunks may still
// remain to be read.
func (r *NonBlockingReader) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Poll returns the next accumulated chunk, waiting at most timeout. ok is
// false on timeout; done means the source is exhausted and the queue empty.
func (r *NonBlockingReader) Poll(timeout time.Duration) (chunk []byte, ok, done bool) {
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		r.mu.Lock()
		if len(r.pending) > 0 {
			chunk = r.pending[0]
			r.pending = r.pending[1:]
			r.mu.Unlock()
			return chunk, true, false
		}
		closed := r.closed
		r.mu.Unlock()
		if closed {
			return nil, false, true
		}

		select {
		case <-r.notify:
		case <-timer.C:
			return nil, false, false
		}
	}
}

// ReadAll drains everything until the source closes and returns it.
func (r *NonBlockingReader) ReadAll() []byte {
	var buf bytes.Buffer
	for {
		r.mu.Lock()
		for _, chunk := range r.pending {
			buf.Write(chunk)
		}
		r.pending = nil
		closed := r.closed
		r.mu.Unlock()
		if closed {
			return buf.Bytes()
		}
		<-r.notify
	}
}

// Discard consumes and drops everything in the background. Used for
// hidden-object capture so queued chunks never pile up unread.
func (r *NonBlockingReader) Discard() {
	go func() {
		for {
			r.mu.Lock()
			r.pending = nil
			closed := r.closed
			r.mu.Unlock()
			if closed {
				return
			}
			<-r.notify
		}
	}()
}

// Close releases the source; the drain goroutine exits on its next read.
func (r *NonBlockingReader) Close() error {
	return r.src.Close()
}

//
// Alternate-screen scanning.
//

// altFlags are the xterm control sequences full-screen programs emit when
// entering and leaving the alternate screen buffer.
var (
	altStartFlags = [][]byte{
		[]byte("\x1b[?1049h"), []byte("\x1b[?47h"), []byte("\x1b[?1047h"),
	}
	altEndFlags = [][]byte{
		[]byte("\x1b[?1049l"), []byte("\x1b[?47l"), []byte("\x1b[?1047l"),
	}
)

// altScanner splits chunks at alternate-screen boundaries, routing
// everything between the enter and exit sequences to the real terminal. A
// chunk boundary is never allowed to split an escape sequence: a trailing
// partial match is buffered until the next chunk.
type altScanner struct {
	tty       io.Writer
	inAltMode bool
	partial   []byte
}

// scan processes one chunk and returns the bytes destined for capture.
func (a *altScanner) scan(chunk []byte) []byte {
	data := append(a.partial, chunk...)
	a.partial = nil

	var captured []byte
	for len(data) > 0 {
		if a.inAltMode {
			i, n := findFirst(data, altEndFlags)
			if i < 0 {
				keep := prefixTail(data, altEndFlags)
				a.writeTTY(data[:len(data)-keep])
				a.partial = append([]byte(nil), data[len(data)-keep:]...)
				return captured
			}
			// The exit sequence itself still belongs to the terminal.
			a.writeTTY(data[:i+n])
			a.inAltMode = false
			data = data[i+n:]
			continue
		}

		i, n := findFirst(data, altStartFlags)
		if i < 0 {
			keep := prefixTail(data, altStartFlags)
			captured = append(captured, data[:len(data)-keep]...)
			a.partial = append([]byte(nil), data[len(data)-keep:]...)
			return captured
		}
		// Flush pre-sequence bytes to capture, switch to the terminal
		// starting with the sequence itself.
		captured = append(captured, data[:i]...)
		a.writeTTY(data[i : i+n])
		a.inAltMode = true
		data = data[i+n:]
	}
	return captured
}

// flush releases any buffered partial match at end of stream.
func (a *altScanner) flush() []byte {
	data := a.partial
	a.partial = nil
	if a.inAltMode {
		a.writeTTY(data)
		return nil
	}
	return data
}

func (a *altScanner) writeTTY(b []byte) {
	if len(b) > 0 && a.tty != nil {
		_, _ = a.tty.Write(b)
	}
}

// findFirst locates the earliest occurrence of any flag, returning its
// offset and length, or (-1, 0).
func findFirst(data []byte, flags [][]byte) (int, int) {
	best, bestLen := -1, 0
	for _, flag := range flags {
		if i := bytes.Index(data, flag); i >= 0 && (best < 0 || i < best) {
			best, bestLen = i, len(flag)
		}
	}
	return best, bestLen
}

// prefixTail returns the length of the longest suffix of data that is a
// proper prefix of any flag, i.e. the bytes that must be re-buffered.
func prefixTail(data []byte, flags [][]byte) int {
	max := 0
	for _, flag := range flags {
		limit := len(flag) - 1
		if limit > len(data) {
			limit = len(data)
		}
		for n := limit; n > max; n-- {
			if bytes.Equal(data[len(data)-n:], flag[:n]) {
				max = n
				break
			}
		}
	}
	return max
}
