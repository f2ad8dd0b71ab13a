package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosh-shell/gosh/core/alias"
	"github.com/gosh-shell/gosh/core/jobs"
)

// Jobs implements the jobs builtin.
func Jobs(inv *alias.Invocation) int {
	cmd := &SimpleCommand{
		Use:   "jobs",
		Short: "List active jobs.",
	}

	return cmd.Run(inv, func() int {
		table := inv.Shell.Jobs()
		for _, job := range table.List() {
			fmt.Fprintf(inv.Stdout, "[%d]  %s  %s\n", job.ID, job.Status(), job.Command())
		}
		table.Clean(nil)
		return 0
	})
}

// findJob resolves a jobspec like "%1" or "1"; an empty spec means the most
// recent job.
func findJob(table *jobs.Table, spec string) (*jobs.Job, error) {
	if spec == "" {
		job, ok := table.Newest()
		if !ok {
			return nil, fmt.Errorf("no current job")
		}
		return job, nil
	}

	id, err := strconv.Atoi(strings.TrimPrefix(spec, "%"))
	if err != nil {
		return nil, fmt.Errorf("%s: no such job", spec)
	}
	job, ok := table.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: no such job", spec)
	}
	return job, nil
}

// Fg implements the fg builtin: resume a job in the foreground and wait.
func Fg(inv *alias.Invocation) int {
	spec := ""
	if args := inv.Args(); len(args) > 0 {
		spec = args[0]
	}

	table := inv.Shell.Jobs()
	job, err := findJob(table, spec)
	if err != nil {
		fmt.Fprintf(inv.Stderr, "fg: %v\n", err)
		return 1
	}

	fmt.Fprintln(inv.Stdout, job.Command())
	rc, err := table.Foreground(job)
	if err != nil {
		fmt.Fprintf(inv.Stderr, "fg: %v\n", err)
		return 1
	}
	return rc
}

// Bg implements the bg builtin: continue a stopped job in the background.
func Bg(inv *alias.Invocation) int {
	spec := ""
	if args := inv.Args(); len(args) > 0 {
		spec = args[0]
	}

	table := inv.Shell.Jobs()
	job, err := findJob(table, spec)
	if err != nil {
		fmt.Fprintf(inv.Stderr, "bg: %v\n", err)
		return 1
	}

	if err := table.Background(job); err != nil {
		fmt.Fprintf(inv.Stderr, "bg: %v\n", err)
		return 1
	}
	fmt.Fprintf(inv.Stdout, "[%d] %s &\n", job.ID, job.Command())
	return 0
}

func init() {
	// fg and bg block on child processes and must stay on the shell's
	// own thread.
	register(alias.Func("jobs", Jobs))
	register(alias.Func("fg", Fg).Unthreadable())
	register(alias.Func("bg", Bg))
}
