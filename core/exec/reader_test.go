package exec

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlockingReaderReadAll(t *testing.T) {
	r := NewNonBlockingReader(io.NopCloser(strings.NewReader("hello world")))
	assert.Equal(t, "hello world", string(r.ReadAll()))
}

func TestNonBlockingReaderNeverBlocksProducer(t *testing.T) {
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	r := NewNonBlockingReader(pr)

	// Far more than a pipe buffer holds. The writer must finish before
	// anything consumes: the drain side buffers in memory instead of
	// applying backpressure.
	payload := bytes.Repeat([]byte("x"), 400000)
	written := make(chan struct{})
	go func() {
		defer close(written)
		_, _ = pw.Write(payload)
		_ = pw.Close()
	}()

	select {
	case <-written:
	case <-time.After(5 * time.Second):
		t.Fatal("writer stalled behind the drain layer")
	}

	assert.Equal(t, payload, r.ReadAll())
}

func TestNonBlockingReaderPoll(t *testing.T) {
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	r := NewNonBlockingReader(pr)

	_, err = pw.Write([]byte("chunk"))
	require.NoError(t, err)

	chunk, ok, done := r.Poll(time.Second)
	require.True(t, ok)
	assert.False(t, done)
	assert.Equal(t, "chunk", string(chunk))

	// Nothing more queued yet; a short poll times out without closing.
	_, ok, done = r.Poll(10 * time.Millisecond)
	assert.False(t, ok)
	assert.False(t, done)

	require.NoError(t, pw.Close())
	deadline := time.After(time.Second)
	for {
		_, _, done = r.Poll(10 * time.Millisecond)
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("reader never reported completion")
		default:
		}
	}
}

func TestNonBlockingReaderPauseResume(t *testing.T) {
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	r := NewNonBlockingReader(pr)

	r.Pause()
	_, err = pw.Write([]byte("late"))
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	r.Resume()
	assert.Equal(t, "late", string(r.ReadAll()))
}

func TestTeeReaderPlainOutputIsCaptured(t *testing.T) {
	var tty bytes.Buffer
	r := NewTeeReader(io.NopCloser(strings.NewReader("plain text\n")), &tty)

	assert.Equal(t, "plain text\n", string(r.ReadAll()))
	assert.Empty(t, tty.String(), "plain bytes must not leak to the terminal")
}

func TestTeeReaderAlternateScreenBypassesCapture(t *testing.T) {
	input := "before\x1b[?1049halt screen bytes\x1b[?1049lafter"
	var tty bytes.Buffer
	r := NewTeeReader(io.NopCloser(strings.NewReader(input)), &tty)

	assert.Equal(t, "beforeafter", string(r.ReadAll()))
	assert.Equal(t, "\x1b[?1049halt screen bytes\x1b[?1049l", tty.String())
}

func TestAltScannerSplitSequenceAcrossChunks(t *testing.T) {
	var tty bytes.Buffer
	a := &altScanner{tty: &tty}

	// The enter sequence straddles a chunk boundary.
	var captured []byte
	captured = append(captured, a.scan([]byte("head\x1b[?10"))...)
	captured = append(captured, a.scan([]byte("49hdrawn"))...)
	captured = append(captured, a.scan([]byte("\x1b[?1049ltail"))...)
	captured = append(captured, a.flush()...)

	assert.Equal(t, "headtail", string(captured))
	assert.Equal(t, "\x1b[?1049hdrawn\x1b[?1049l", tty.String())
}

func TestAltScannerPartialAtEOF(t *testing.T) {
	var tty bytes.Buffer
	a := &altScanner{tty: &tty}

	// A partial match held back mid-stream is released at end of stream.
	captured := a.scan([]byte("text\x1b[?47"))
	assert.Equal(t, "text", string(captured))
	assert.Equal(t, "\x1b[?47", string(a.flush()))
	assert.Empty(t, tty.String())
}

func TestAltScannerVariants(t *testing.T) {
	for _, pair := range [][2]string{
		{"\x1b[?47h", "\x1b[?47l"},
		{"\x1b[?1047h", "\x1b[?1047l"},
	} {
		var tty bytes.Buffer
		a := &altScanner{tty: &tty}
		captured := a.scan([]byte("a" + pair[0] + "x" + pair[1] + "b"))
		captured = append(captured, a.flush()...)
		assert.Equal(t, "ab", string(captured), "pair %q", pair)
		assert.Equal(t, pair[0]+"x"+pair[1], tty.String(), "pair %q", pair)
	}
}
