package domain

import "testing"

func TestCoreWorkload(t *testing.T) {
	core := &Core{ID: 0}
	core.Tasks = []*Task{
		{WCET: 1, Period: 4},
		{WCET: 2, Period: 8},
	}
	want := 1.0/4.0 + 2.0/8.0
	if got := core.Workload(); got != want {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestCPUMinCorePicksLeastLoaded(t *testing.T) {
	cpu := &CPU{ID: 0}
	busy := &Core{ID: 0, CPU: cpu, Tasks: []*Task{{WCET: 5, Period: 10}}}
	idle := &Core{ID: 1, CPU: cpu}
	cpu.Cores = []*Core{busy, idle}

	if got := cpu.MinCore(); got != idle {
		t.Fatalf("want idle core selected, got core %d", got.ID)
	}
}

func TestAppCriticalityIsMax(t *testing.T) {
	app := &App{Name: "A"}
	app.Tasks = []*Task{
		{Criticality: 1},
		{Criticality: 3},
		{Criticality: 2},
	}
	if got := app.Criticality(); got != 3 {
		t.Fatalf("want 3, got %d", got)
	}
}

func TestHyperperiodLCM(t *testing.T) {
	if got := Hyperperiod([]int{4, 6, 10}); got != 60 {
		t.Fatalf("want 60, got %d", got)
	}
	if got := Hyperperiod([]int{5}); got != 5 {
		t.Fatalf("want 5, got %d", got)
	}
}

func TestJobOffsetAndLocalDeadline(t *testing.T) {
	task := &Task{WCET: 2, Period: 10, Deadline: 8}
	job := &Job{Task: task, SchedWindowStart: 0, SchedWindowStop: 8, ExecWindowStart: 2, ExecWindowStop: 8}

	if got := job.Offset(); got != 2 {
		t.Fatalf("want offset 2, got %d", got)
	}
	if got := job.LocalDeadline(); got != 0 {
		t.Fatalf("want local deadline 0, got %d", got)
	}
}

func TestSliceOverlaps(t *testing.T) {
	a := &Slice{Start: 0, Stop: 5}
	b := &Slice{Start: 4, Stop: 8}
	c := &Slice{Start: 5, Stop: 8}

	if !a.Overlaps(b) {
		t.Fatal("want overlap for [0,5) and [4,8)")
	}
	if a.Overlaps(c) {
		t.Fatal("want no overlap for touching slices [0,5) and [5,8)")
	}
}
