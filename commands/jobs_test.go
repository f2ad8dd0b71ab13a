package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosh-shell/gosh/core/jobs"
)

type fakePipeline struct {
	rc        int
	completed bool
	suspended bool
}

func (f *fakePipeline) Wait() int       { return f.rc }
func (f *fakePipeline) Completed() bool { return f.completed }
func (f *fakePipeline) Suspended() bool { return f.suspended }

func TestJobsListing(t *testing.T) {
	sh := newFakeShell()
	sh.jobs.Add(&jobs.Job{
		Argv:       [][]string{{"sleep", "100"}},
		Background: true,
		Pgid:       1234,
		Pipeline:   &fakePipeline{},
	})
	sh.jobs.Add(&jobs.Job{
		Argv:     [][]string{{"vim", "notes.txt"}},
		Pgid:     1235,
		Pipeline: &fakePipeline{suspended: true},
	})

	rc, stdout, _ := invoke(sh, "jobs")
	assert.Equal(t, 0, rc)
	assert.Contains(t, stdout, "[1]  Running  sleep 100 &")
	assert.Contains(t, stdout, "[2]  Stopped  vim notes.txt")
}

func TestJobsDropsCompleted(t *testing.T) {
	sh := newFakeShell()
	sh.jobs.Add(&jobs.Job{
		Argv:     [][]string{{"true"}},
		Pgid:     1236,
		Pipeline: &fakePipeline{completed: true},
	})

	rc, stdout, _ := invoke(sh, "jobs")
	assert.Equal(t, 0, rc)
	assert.Contains(t, stdout, "Done")
	assert.Empty(t, sh.jobs.List(), "completed jobs should be reaped")
}

func TestFgNoJobs(t *testing.T) {
	sh := newFakeShell()

	rc, _, stderr := invoke(sh, "fg")
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "no current job")
}

func TestFgUnknownJobspec(t *testing.T) {
	sh := newFakeShell()

	rc, _, stderr := invoke(sh, "fg", "%9")
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "no such job")
}

func TestBgNoProcessGroup(t *testing.T) {
	sh := newFakeShell()
	sh.jobs.Add(&jobs.Job{
		Argv:     [][]string{{"stopped-thing"}},
		Pipeline: &fakePipeline{suspended: true},
	})

	rc, _, stderr := invoke(sh, "bg")
	assert.Equal(t, 1, rc)
	assert.NotEmpty(t, stderr)
}
