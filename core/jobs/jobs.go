// Package jobs tracks background and suspended pipelines for job control.
package jobs

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Pipeline is the subset of a running pipeline handle the job table needs.
// The execution engine's pipeline handle satisfies it.
type Pipeline interface {
	// Wait blocks until the pipeline completes and returns the final
	// return code, resuming output draining if it was suspended.
	Wait() int
	// Completed reports whether every stage has exited.
	Completed() bool
	// Suspended reports whether the pipeline was stopped by SIGTSTP.
	Suspended() bool
}

// Job is one entry in the job table, published by the execution engine when
// a pipeline containing at least one external process is launched.
type Job struct {
	ID         int
	Argv       [][]string
	Pids       []int
	Pgid       int
	Background bool
	Pipeline   Pipeline
}

// Status describes the job for display.
func (j *Job) Status() string {
	switch {
	case j.Pipeline == nil:
		return "Unknown"
	case j.Pipeline.Completed():
		return "Done"
	case j.Pipeline.Suspended():
		return "Stopped"
	default:
		return "Running"
	}
}

// Command renders the job's command line the way a shell reports it.
func (j *Job) Command() string {
	var stages []string
	for _, argv := range j.Argv {
		stages = append(stages, strings.Join(argv, " "))
	}
	cmd := strings.Join(stages, " | ")
	if j.Background {
		cmd += " &"
	}
	return cmd
}

// Table is a thread-safe job table. The zero value is ready to use.
type Table struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
}

// NewTable creates an empty job table.
func NewTable() *Table {
	return &Table{}
}

// Add registers a job and assigns its ID.
func (t *Table) Add(job *Job) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.jobs == nil {
		t.jobs = make(map[int]*Job)
	}
	t.nextID++
	job.ID = t.nextID
	t.jobs[job.ID] = job
	return job.ID
}

// Get looks up a job by ID.
func (t *Table) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	return job, ok
}

// Newest returns the most recently added live job, the one `fg` and `bg`
// operate on when no ID is given.
func (t *Table) Newest() (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var newest *Job
	for _, job := range t.jobs {
		if newest == nil || job.ID > newest.ID {
			newest = job
		}
	}
	return newest, newest != nil
}

// Remove deletes a job from the table.
func (t *Table) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// List returns the jobs ordered by ID.
func (t *Table) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*Job
	for _, job := range t.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clean drops completed jobs, reporting each one to w in the shell's
// "[1]  Done  sleep 10 &" style. A nil writer discards the reports.
func (t *Table) Clean(w io.Writer) {
	for _, job := range t.List() {
		if job.Pipeline != nil && job.Pipeline.Completed() {
			if w != nil {
				fmt.Fprintf(w, "[%d]  %s  %s\n", job.ID, job.Status(), job.Command())
			}
			t.Remove(job.ID)
		}
	}
}

// Foreground continues a stopped job's process group and waits for it,
// returning its final return code.
func (t *Table) Foreground(job *Job) (int, error) {
	if err := continueGroup(job.Pgid); err != nil {
		return 0, err
	}
	rc := job.Pipeline.Wait()
	t.Remove(job.ID)
	return rc, nil
}

// Background continues a stopped job's process group without waiting.
func (t *Table) Background(job *Job) error {
	job.Background = true
	return continueGroup(job.Pgid)
}
