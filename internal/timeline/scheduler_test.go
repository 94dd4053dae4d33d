package timeline

import (
	"testing"

	"github.com/partsched/partsched/internal/algorithm"
	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/jobs"
	"github.com/partsched/partsched/internal/mapper"
	"github.com/partsched/partsched/internal/objective"
)

func singleCore() *domain.Core {
	cpu := &domain.CPU{ID: 0}
	core := &domain.Core{ID: 0, CPU: cpu}
	cpu.Cores = []*domain.Core{core}
	return core
}

// scenario 1: one task, no conflicts, one slice per period covering its
// wcet from the start of its window; cumulated free space = H - wcet.
func TestScheduleSingleTaskNoConflict(t *testing.T) {
	core := singleCore()
	app := &domain.App{Name: "A"}
	task := &domain.Task{ID: 1, App: app, WCET: 3, Period: 10, Deadline: 10, Criticality: 0}
	app.Tasks = []*domain.Task{task}
	core.Tasks = []*domain.Task{task}

	graph := &domain.Graph{Apps: []*domain.App{app}, Hyperperiod: 10}
	jobs.Expand(graph)

	coreJobs := mapper.CoreJobs{core: task.Jobs}
	policy, _ := algorithm.Lookup("edf")

	if err := Schedule(coreJobs, policy, 10); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	job := task.Jobs[0]
	if len(job.Execution) != 1 {
		t.Fatalf("want 1 slice, got %d", len(job.Execution))
	}
	s := job.Execution[0]
	if s.Start != 0 || s.Stop != 3 {
		t.Fatalf("want [0,3), got [%d,%d)", s.Start, s.Stop)
	}

	score := objective.CumulatedFreeSpace(coreJobs, graph)
	if score != 7 {
		t.Fatalf("want score 7, got %v", score)
	}
}

// scenario 3: two tasks with equal deadlines (so EDF ordering ties), but
// differing criticality; the higher-criticality task is placed first
// regardless of the EDF tie, and a switch-time gap separates them.
func TestScheduleSwitchTimeSeparatesCriticalities(t *testing.T) {
	core := singleCore()

	appA := &domain.App{Name: "A"}
	t1 := &domain.Task{ID: 1, App: appA, WCET: 2, Period: 10, Deadline: 10, Criticality: 2}
	appA.Tasks = []*domain.Task{t1}

	appB := &domain.App{Name: "B"}
	t2 := &domain.Task{ID: 2, App: appB, WCET: 3, Period: 10, Deadline: 10, Criticality: 1}
	appB.Tasks = []*domain.Task{t2}

	core.Tasks = []*domain.Task{t1, t2}

	graph := &domain.Graph{Apps: []*domain.App{appA, appB}, Hyperperiod: 10}
	jobs.Expand(graph)

	coreJobs := mapper.CoreJobs{core: append(append([]*domain.Job{}, t1.Jobs...), t2.Jobs...)}
	policy, _ := algorithm.Lookup("edf")

	if err := Schedule(coreJobs, policy, 1); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	s1 := t1.Jobs[0].Execution[0]
	if s1.Start != 0 || s1.Stop != 2 {
		t.Fatalf("T1 want [0,2), got [%d,%d)", s1.Start, s1.Stop)
	}

	if len(t2.Jobs[0].Execution) != 1 {
		t.Fatalf("T2 want 1 slice, got %d", len(t2.Jobs[0].Execution))
	}
	s2 := t2.Jobs[0].Execution[0]
	if s2.Start != 3 || s2.Stop != 6 {
		t.Fatalf("T2 want [3,6), got [%d,%d)", s2.Start, s2.Stop)
	}

	score := objective.CumulatedFreeSpace(coreJobs, graph)
	if score != 4 {
		t.Fatalf("want score 4, got %v", score)
	}
}

// switch_time=0 collapses the criticality-group boundary to touching
// slices, per spec.md's boundary case.
func TestScheduleZeroSwitchTimeTouches(t *testing.T) {
	core := singleCore()

	appA := &domain.App{Name: "A"}
	t1 := &domain.Task{ID: 1, App: appA, WCET: 2, Period: 10, Deadline: 10, Criticality: 2}
	appA.Tasks = []*domain.Task{t1}

	appB := &domain.App{Name: "B"}
	t2 := &domain.Task{ID: 2, App: appB, WCET: 3, Period: 10, Deadline: 10, Criticality: 1}
	appB.Tasks = []*domain.Task{t2}

	core.Tasks = []*domain.Task{t1, t2}

	graph := &domain.Graph{Apps: []*domain.App{appA, appB}, Hyperperiod: 10}
	jobs.Expand(graph)

	coreJobs := mapper.CoreJobs{core: append(append([]*domain.Job{}, t1.Jobs...), t2.Jobs...)}
	policy, _ := algorithm.Lookup("edf")

	if err := Schedule(coreJobs, policy, 0); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	s2 := t2.Jobs[0].Execution[0]
	if s2.Start != 2 {
		t.Fatalf("want T2 to start touching T1 at 2, got %d", s2.Start)
	}
}

// re-running the scheduler on an already-scheduled core after clearing
// execution, with unchanged exec windows, must reproduce the same slices.
func TestScheduleIsIdempotent(t *testing.T) {
	core := singleCore()
	app := &domain.App{Name: "A"}
	t1 := &domain.Task{ID: 1, App: app, WCET: 4, Period: 10, Deadline: 10, Criticality: 0}
	app.Tasks = []*domain.Task{t1}
	core.Tasks = []*domain.Task{t1}

	graph := &domain.Graph{Apps: []*domain.App{app}, Hyperperiod: 20}
	jobs.Expand(graph)

	coreJobs := mapper.CoreJobs{core: t1.Jobs}
	policy, _ := algorithm.Lookup("edf")

	if err := Schedule(coreJobs, policy, 5); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	first := snapshot(t1.Jobs)

	if err := Schedule(coreJobs, policy, 5); err != nil {
		t.Fatalf("Schedule (2nd): %v", err)
	}
	second := snapshot(t1.Jobs)

	if len(first) != len(second) {
		t.Fatalf("slice count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slice %d changed: %v vs %v", i, first[i], second[i])
		}
	}
}

func snapshot(jobs []*domain.Job) [][2]int {
	var out [][2]int
	for _, j := range jobs {
		for _, s := range j.Execution {
			out = append(out, [2]int{s.Start, s.Stop})
		}
	}
	return out
}
