package mapper

import (
	"testing"

	"github.com/partsched/partsched/internal/algorithm"
	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/jobs"
)

func twoCoreCPU(id int) *domain.CPU {
	cpu := &domain.CPU{ID: id}
	cpu.Cores = []*domain.Core{
		{ID: 0, CPU: cpu},
		{ID: 1, CPU: cpu},
	}
	return cpu
}

func TestMapPicksLeastLoadedCPU(t *testing.T) {
	arch := domain.Architecture{twoCoreCPU(0), twoCoreCPU(1)}

	app1 := &domain.App{Name: "app1"}
	t1 := &domain.Task{ID: 1, App: app1, WCET: 1, Period: 10, Deadline: 10, Criticality: 4}
	app1.Tasks = []*domain.Task{t1}

	app2 := &domain.App{Name: "app2"}
	t2 := &domain.Task{ID: 2, App: app2, WCET: 1, Period: 10, Deadline: 10, Criticality: 3}
	app2.Tasks = []*domain.Task{t2}

	graph := &domain.Graph{Apps: []*domain.App{app1, app2}, Hyperperiod: 10}
	jobs.Expand(graph)

	policy, _ := algorithm.Lookup("edf")

	coreJobs, err := Map(arch, graph, policy)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}

	if arch[0].Apps[0] != app1 {
		t.Fatalf("want app1 on first (initially empty, least loaded) cpu")
	}
	if arch[1].Apps[0] != app2 {
		t.Fatalf("want app2 on second cpu, since first is now more loaded")
	}
	if len(coreJobs) == 0 {
		t.Fatal("want non-empty core job map")
	}
}

func TestMapRejectsOverloadedApp(t *testing.T) {
	cpu := &domain.CPU{ID: 0}
	cpu.Cores = []*domain.Core{{ID: 0, CPU: cpu}}
	arch := domain.Architecture{cpu}

	// an empty CPU admits any app, so a smaller app is mapped first and the
	// overloaded one must then pass the local test on the same CPU.
	small := &domain.App{Name: "small"}
	t0 := &domain.Task{ID: 0, App: small, WCET: 1, Period: 100, Deadline: 100, Criticality: 1}
	small.Tasks = []*domain.Task{t0}

	app := &domain.App{Name: "huge"}
	t1 := &domain.Task{ID: 1, App: app, WCET: 95, Period: 100, Deadline: 100, Criticality: 0}
	app.Tasks = []*domain.Task{t1}

	graph := &domain.Graph{Apps: []*domain.App{small, app}, Hyperperiod: 100}
	jobs.Expand(graph)

	policy, _ := algorithm.Lookup("edf")

	_, err := Map(arch, graph, policy)
	if err == nil {
		t.Fatal("want InitialMappingError for overloaded single-core app")
	}
	if _, ok := err.(*InitialMappingError); !ok {
		t.Fatalf("want *InitialMappingError, got %T", err)
	}
}

func TestAlterationPossibilities(t *testing.T) {
	cpu := &domain.CPU{ID: 0}
	coreA := &domain.Core{ID: 0, CPU: cpu}
	coreB := &domain.Core{ID: 1, CPU: cpu}
	cpu.Cores = []*domain.Core{coreA, coreB}

	app := &domain.App{Name: "multi"}
	t1 := &domain.Task{ID: 1, App: app}
	t2 := &domain.Task{ID: 2, App: app}
	app.Tasks = []*domain.Task{t1, t2}

	coreA.Tasks = []*domain.Task{t1}
	coreB.Tasks = []*domain.Task{t2}

	alterations := AlterationPossibilities(domain.Architecture{cpu})
	if _, ok := alterations[app]; !ok {
		t.Fatal("want app present in alteration table")
	}
	if len(alterations[app]) != 2 {
		t.Fatalf("want 2 cores in alteration entry, got %d", len(alterations[app]))
	}
}
