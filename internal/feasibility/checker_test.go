package feasibility

import (
	"testing"

	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/mapper"
)

func TestCheckRejectsMissingExecution(t *testing.T) {
	task := &domain.Task{ID: 1, WCET: 2}
	job := &domain.Job{Task: task, ExecWindowStart: 0, ExecWindowStop: 10}
	core := &domain.Core{ID: 0}

	coreJobs := mapper.CoreJobs{core: {job}}
	if err := Check(coreJobs, nil); err == nil {
		t.Fatal("want Miss for job with no execution")
	}
}

func TestCheckRejectsWCETMismatch(t *testing.T) {
	task := &domain.Task{ID: 1, WCET: 5}
	job := &domain.Job{Task: task, ExecWindowStart: 0, ExecWindowStop: 10}
	job.Execution = []*domain.Slice{{Job: job, Start: 0, Stop: 3}}
	core := &domain.Core{ID: 0}

	coreJobs := mapper.CoreJobs{core: {job}}
	if err := Check(coreJobs, nil); err == nil {
		t.Fatal("want Miss for duration not matching wcet")
	}
}

func TestCheckAcceptsValidJob(t *testing.T) {
	task := &domain.Task{ID: 1, WCET: 3}
	job := &domain.Job{Task: task, ExecWindowStart: 0, ExecWindowStop: 10}
	job.Execution = []*domain.Slice{{Job: job, Start: 0, Stop: 3}}
	core := &domain.Core{ID: 0}

	coreJobs := mapper.CoreJobs{core: {job}}
	if err := Check(coreJobs, nil); err != nil {
		t.Fatalf("want no error, got %v", err)
	}
}

func TestCheckOrderViolation(t *testing.T) {
	app := &domain.App{Name: "chain", Order: true}

	t1 := &domain.Task{ID: 1, App: app, WCET: 2}
	t2 := &domain.Task{ID: 2, App: app, WCET: 2, Parent: t1}
	app.Tasks = []*domain.Task{t1, t2}

	j1 := &domain.Job{Task: t1, Index: 0, ExecWindowStart: 0, ExecWindowStop: 10}
	j1.Execution = []*domain.Slice{{Job: j1, Start: 0, Stop: 2}}

	// successor starts before predecessor finishes: violation.
	j2 := &domain.Job{Task: t2, Index: 0, ExecWindowStart: 0, ExecWindowStop: 10}
	j2.Execution = []*domain.Slice{{Job: j2, Start: 1, Stop: 3}}

	// domain.Task.Jobs deliberately set to stale, non-conflicting slices:
	// checkOrder must read the candidate's own jobs from coreJobs, exactly
	// as a cloned optimizer candidate would present them, not from
	// domain.Task.Jobs.
	t1.Jobs = []*domain.Job{{Task: t1, Index: 0, Execution: []*domain.Slice{{Start: 0, Stop: 2}}}}
	t2.Jobs = []*domain.Job{{Task: t2, Index: 0, Execution: []*domain.Slice{{Start: 5, Stop: 7}}}}

	core := &domain.Core{ID: 0}
	coreJobs := mapper.CoreJobs{core: {j1, j2}}

	if err := Check(coreJobs, []*domain.App{app}); err == nil {
		t.Fatal("want Miss for out-of-order successor found via coreJobs, not Task.Jobs")
	}
}
