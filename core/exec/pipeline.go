package exec

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gosh-shell/gosh/core/jobs"
)

// CommandPipeline owns every runner of one launched pipeline and is the
// handle callers wait on and read from. Its return code is the last
// stage's, POSIX-shell style; intermediate stages are still waited on so
// no zombies remain.
type CommandPipeline struct {
	ctx   *Context
	specs []*CommandSpec

	mu          sync.Mutex
	runners     []Runner
	pgid        int
	spawnErr    error
	rc          int
	completed   bool
	interrupted bool
	suspended   bool

	outReader *NonBlockingReader
	errReader *NonBlockingReader
	lines     *LineScanner

	// outTee and errTee own the queue on the console tee paths, streaming
	// chunks to the terminal as they arrive while keeping a copy for the
	// capture object.
	outTee *echoTee
	errTee *echoTee

	// jobID is this pipeline's record in the job table, zero if none.
	jobID int
}

// Run converts the token sequence into specs, launches every stage and
// returns the pipeline handle. Build and resolution errors are returned
// synchronously before anything spawns; spawn errors are attached to the
// handle and surface when it is awaited.
func Run(ctx *Context, cmds []Token, capture Capture) (*CommandPipeline, error) {
	specs, err := CmdsToSpecs(ctx, cmds, capture)
	if err != nil {
		return nil, err
	}

	// Resolution check: every stage must have an alias, a callable or an
	// executable before any process spawns.
	for _, spec := range specs {
		if !spec.IsProxy() && spec.Alias.None() && spec.ExecutablePath == "" {
			for _, s := range specs {
				s.closeStreams()
			}
			return nil, &NotFoundError{
				Name:        spec.Argv[0],
				Suggestions: ctx.suggestions(spec.Argv[0]),
			}
		}
	}

	p := &CommandPipeline{ctx: ctx, specs: specs}
	p.start()
	p.publishJob(cmds)
	return p, nil
}

func (p *CommandPipeline) start() {
	for _, spec := range p.specs {
		if p.spawnErr != nil {
			// A failed spawn aborts the remaining unlaunched stages;
			// upstream stages eventually observe a broken pipe.
			spec.closeStreams()
			continue
		}

		if spec.IsProxy() {
			runner := newProxyRunner(spec)
			_ = runner.Start()
			p.runners = append(p.runners, runner)
			continue
		}

		runner := newProcessRunner(spec)
		if err := runner.start(p.pgid); err != nil {
			p.spawnErr = err
			spec.closeStreams()
			continue
		}
		if p.pgid == 0 {
			p.pgid = runner.Pid()
		}
		p.runners = append(p.runners, runner)
	}

	p.attachReaders()
}

// attachReaders wraps the last stage's capture pipe ends in drain readers.
func (p *CommandPipeline) attachReaders() {
	last := p.specs[len(p.specs)-1]
	// Hidden capture streams live but retains nothing.
	retain := last.Capture != CaptureHidden

	if last.capturedStdout != nil {
		src, ok := last.capturedStdout.(io.ReadCloser)
		if ok {
			if last.teeConsole {
				p.outReader = NewTeeReader(src, p.ctx.stdout())
				p.outTee = newEchoTee(p.outReader, p.ctx.stdout(), retain)
			} else {
				p.outReader = NewNonBlockingReader(src)
			}
		}
	}
	if last.capturedStderr != nil {
		if src, ok := last.capturedStderr.(io.ReadCloser); ok {
			switch {
			case last.teeConsoleStderr:
				p.errReader = NewTeeReader(src, p.ctx.stderr())
				p.errTee = newEchoTee(p.errReader, p.ctx.stderr(), retain)
			case last.Capture == CaptureHidden:
				p.errReader = NewNonBlockingReader(src)
				p.errReader.Discard()
			default:
				p.errReader = NewNonBlockingReader(src)
			}
		}
	}
}

// publishJob emits a job record unless every stage runs in-process.
func (p *CommandPipeline) publishJob(cmds []Token) {
	if p.ctx.Jobs == nil {
		return
	}
	anyExternal := false
	for _, spec := range p.specs {
		if !spec.IsProxy() {
			anyExternal = true
		}
	}
	if !anyExternal {
		return
	}

	job := &jobs.Job{
		Pgid:       p.pgid,
		Background: p.Background(),
		Pipeline:   p,
	}
	for _, tok := range cmds {
		if tok.Ctl == "" {
			job.Argv = append(job.Argv, tok.Argv)
		}
	}
	for _, r := range p.runners {
		if pid := r.Pid(); pid > 0 {
			job.Pids = append(job.Pids, pid)
		}
	}
	p.jobID = p.ctx.Jobs.Add(job)
}

// reapJob drops a finished foreground pipeline's record so the job table
// only ever reports background work. Background jobs stay until Clean.
func (p *CommandPipeline) reapJob() {
	if p.jobID == 0 || p.Background() || p.ctx.Jobs == nil {
		return
	}
	p.ctx.Jobs.Remove(p.jobID)
}

// Background reports whether the token sequence ended in "&".
func (p *CommandPipeline) Background() bool {
	return p.specs[len(p.specs)-1].Background
}

// Pgid returns the process group id shared by the pipeline's external
// stages, zero if none spawned.
func (p *CommandPipeline) Pgid() int { return p.pgid }

// LastArgv returns the final stage's argument vector.
func (p *CommandPipeline) LastArgv() []string {
	return p.specs[len(p.specs)-1].Argv
}

// String renders the pipeline for error messages and job listings.
func (p *CommandPipeline) String() string {
	var stages []string
	for _, spec := range p.specs {
		stages = append(stages, strings.Join(spec.Argv, " "))
	}
	return strings.Join(stages, " | ")
}

// Wait blocks until every stage exits and returns the last stage's return
// code. Intermediate codes are discarded. If the pipeline was suspended,
// draining resumes first.
func (p *CommandPipeline) Wait() int {
	p.resumeReaders()
	for i, runner := range p.runners {
		rc, _ := runner.Wait(-1)
		if i == len(p.runners)-1 && p.spawnErr == nil {
			p.setReturncode(rc)
		}
	}
	if p.spawnErr != nil {
		// The last stage never launched.
		p.setReturncode(127)
	}
	p.finish()
	return p.Returncode()
}

// Await is Wait plus re-raising any spawn error attached to the handle.
func (p *CommandPipeline) Await() (int, error) {
	rc := p.Wait()
	return rc, p.spawnErr
}

// pollCompletion waits up to timeout for every stage to finish, recording
// the final return code when they do.
func (p *CommandPipeline) pollCompletion(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for i, runner := range p.runners {
		remain := time.Until(deadline)
		if remain < 0 {
			remain = 0
		}
		rc, done := runner.Wait(remain)
		if !done {
			return false
		}
		if i == len(p.runners)-1 && p.spawnErr == nil {
			p.setReturncode(rc)
		}
	}
	if p.spawnErr != nil {
		p.setReturncode(127)
	}
	p.finish()
	return true
}

func (p *CommandPipeline) setReturncode(rc int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rc = rc
	p.completed = true
}

// finish releases console resources once all stages have exited and drops
// a foreground pipeline's job-table record. The echo goroutines observe
// end-of-stream once the exited children release their pipe ends; closing
// the consoles any earlier could cut off buffered tail output.
func (p *CommandPipeline) finish() {
	if p.outTee != nil {
		<-p.outTee.done
	}
	if p.errTee != nil {
		<-p.errTee.done
	}

	last := p.specs[len(p.specs)-1]
	if last.console != nil {
		_ = last.console.Close()
		last.console = nil
	}
	if last.consoleErr != nil {
		_ = last.consoleErr.Close()
		last.consoleErr = nil
	}
	p.reapJob()
}

// Returncode is the final stage's exit status. It reports 127 when the
// pipeline's last stage never launched.
func (p *CommandPipeline) Returncode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.completed && p.spawnErr != nil {
		return 127
	}
	return p.rc
}

// Completed reports whether every stage has exited.
func (p *CommandPipeline) Completed() bool {
	if p.spawnErr != nil && len(p.runners) == 0 {
		return true
	}
	for _, runner := range p.runners {
		if _, done := runner.Poll(); !done {
			return false
		}
	}
	return true
}

// Err returns the spawn error attached to the handle, if any.
func (p *CommandPipeline) Err() error { return p.spawnErr }

// Interrupted reports whether the pipeline received SIGINT.
func (p *CommandPipeline) Interrupted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interrupted
}

// Suspended reports whether the pipeline was stopped by SIGTSTP.
func (p *CommandPipeline) Suspended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspended
}

// Interrupt delivers an interrupt to the whole process group, not a single
// pid, and to every in-process stage.
func (p *CommandPipeline) Interrupt() {
	p.mu.Lock()
	p.interrupted = true
	p.mu.Unlock()
	p.signalAll(os.Interrupt)
}

// Suspend stops the process group, pauses draining and marks the pipeline
// suspended; control returns to the caller without waiting for exit.
// Resumption is the job table's responsibility.
func (p *CommandPipeline) Suspend() {
	p.mu.Lock()
	p.suspended = true
	p.mu.Unlock()
	if p.pgid > 0 {
		_ = stopGroup(p.pgid)
	}
	p.pauseReaders()
}

// Resize propagates a terminal size change to the controlled consoles.
func (p *CommandPipeline) Resize(width, height int) {
	last := p.specs[len(p.specs)-1]
	if last.console != nil {
		_ = last.console.Resize(width, height)
	}
	if last.consoleErr != nil {
		_ = last.consoleErr.Resize(width, height)
	}
}

func (p *CommandPipeline) signalAll(sig os.Signal) {
	if p.pgid > 0 {
		_ = signalGroupSignal(p.pgid, sig)
	}
	for i, runner := range p.runners {
		if p.specs[i].IsProxy() {
			_ = runner.Signal(sig)
		}
	}
}

func (p *CommandPipeline) pauseReaders() {
	if p.outReader != nil {
		p.outReader.Pause()
	}
	if p.errReader != nil {
		p.errReader.Pause()
	}
}

func (p *CommandPipeline) resumeReaders() {
	p.mu.Lock()
	wasSuspended := p.suspended
	p.suspended = false
	p.mu.Unlock()
	if !wasSuspended {
		return
	}
	if p.outReader != nil {
		p.outReader.Resume()
	}
	if p.errReader != nil {
		p.errReader.Resume()
	}
}

// Output waits for completion and returns everything captured from the
// final stage's stdout. It never raises on a nonzero exit.
func (p *CommandPipeline) Output() string {
	p.Wait()
	if p.outReader == nil {
		return ""
	}
	var buf strings.Builder
	if p.lines != nil {
		// A line scan already consumed part of the stream; return the
		// remainder only, the sequence is forward-only.
		buf.Write(p.lines.rest())
	}
	if p.outTee != nil {
		buf.Write(p.outTee.bytes())
	} else {
		buf.Write(p.outReader.ReadAll())
	}
	return buf.String()
}

// CheckedOutput is the raise-on-nonzero consumption mode: it returns the
// captured stdout plus a distinguishable error carrying this handle when
// the final stage exited nonzero or failed to spawn.
func (p *CommandPipeline) CheckedOutput() (string, error) {
	out := p.Output()
	if p.spawnErr != nil {
		return out, p.spawnErr
	}
	if p.Returncode() != 0 {
		return out, &ExitError{Pipeline: p}
	}
	return out, nil
}

// ErrorOutput waits for completion and returns captured stderr, available
// only in object-capture mode.
func (p *CommandPipeline) ErrorOutput() string {
	p.Wait()
	if p.errReader == nil || p.specs[len(p.specs)-1].Capture == CaptureHidden {
		return ""
	}
	if p.errTee != nil {
		return string(p.errTee.bytes())
	}
	return string(p.errReader.ReadAll())
}

// Lines returns the lazy, forward-only line sequence over captured stdout.
// Subsequent calls return the same sequence; it is not restartable.
func (p *CommandPipeline) Lines() *LineScanner {
	if p.lines != nil {
		return p.lines
	}
	if p.outTee != nil {
		// The echo goroutine owns the queue on the tee path; scan the
		// accumulated copy once the stream finishes instead.
		p.Wait()
		p.lines = &LineScanner{pending: p.outTee.bytes(), done: true}
		return p.lines
	}
	p.lines = &LineScanner{reader: p.outReader}
	return p.lines
}

// Close releases any readers still draining.
func (p *CommandPipeline) Close() error {
	if p.outReader != nil {
		_ = p.outReader.Close()
	}
	if p.errReader != nil {
		_ = p.errReader.Close()
	}
	p.finish()
	return nil
}

var _ jobs.Pipeline = (*CommandPipeline)(nil)

// LineScanner iterates captured output line by line in the bufio.Scanner
// style, pulling chunks from the drain layer with bounded waits.
type LineScanner struct {
	reader  *NonBlockingReader
	pending []byte
	text    string
	done    bool
}

// Scan advances to the next line. It returns false once the source is
// exhausted and all buffered lines were returned.
func (s *LineScanner) Scan() bool {
	if s.reader == nil {
		s.done = true
	}
	for {
		if i := indexNewline(s.pending); i >= 0 {
			s.text = string(trimCR(s.pending[:i]))
			s.pending = s.pending[i+1:]
			return true
		}
		if s.done {
			if len(s.pending) > 0 {
				s.text = string(trimCR(s.pending))
				s.pending = nil
				return true
			}
			return false
		}
		chunk, ok, done := s.reader.Poll(defaultPollTimeout)
		if ok {
			s.pending = append(s.pending, chunk...)
		}
		if done {
			s.done = true
		}
	}
}

// Text returns the line found by the last call to Scan.
func (s *LineScanner) Text() string { return s.text }

// rest hands back any bytes buffered past the last returned line.
func (s *LineScanner) rest() []byte {
	out := s.pending
	s.pending = nil
	return out
}

func indexNewline(b []byte) int {
	for i, c := range b {
		if c == '\n' {
			return i
		}
	}
	return -1
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

// echoTee consumes a drain reader on its own goroutine, streaming every
// chunk to the console as it arrives. With retain set it keeps a copy for
// the capture object; without, chunks are forwarded and dropped.
type echoTee struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
}

func newEchoTee(r *NonBlockingReader, w io.Writer, retain bool) *echoTee {
	t := &echoTee{done: make(chan struct{})}
	go t.run(r, w, retain)
	return t
}

func (t *echoTee) run(r *NonBlockingReader, w io.Writer, retain bool) {
	defer close(t.done)
	for {
		chunk, ok, done := r.Poll(defaultPollTimeout)
		if ok {
			_, _ = w.Write(chunk)
			if retain {
				t.mu.Lock()
				t.buf.Write(chunk)
				t.mu.Unlock()
			}
		}
		if done {
			return
		}
	}
}

// bytes waits for the stream to finish and hands the retained copy over,
// at most once.
func (t *echoTee) bytes() []byte {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	out := append([]byte(nil), t.buf.Bytes()...)
	t.buf.Reset()
	return out
}

