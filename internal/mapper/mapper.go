// Package mapper assigns applications to CPUs and their tasks to cores
// (component D), and tracks which apps have tasks spread across multiple
// cores of one CPU so the optimizer can swap them (component D's alteration
// possibilities, spec.md §4.4).
package mapper

import (
	"container/heap"
	"fmt"

	"github.com/partsched/partsched/internal/algorithm"
	"github.com/partsched/partsched/internal/domain"
)

// InitialMappingError reports that the least-loaded CPU, already holding
// other apps, would not admit an app under the policy's local test. Fatal:
// the problem cannot be scheduled at all.
type InitialMappingError struct {
	App       string
	CPU       int
	Violation algorithm.Bound
}

func (e *InitialMappingError) Error() string {
	return fmt.Sprintf("app %q rejected by cpu %d: workload %.4f exceeds bound %.4f",
		e.App, e.CPU, e.Violation.Workload, e.Violation.Limit)
}

// CoreJobs maps each core to the jobs of every task mapped onto it. The
// per-core job order here is unspecified (whatever order tasks were
// appended in); the timeline scheduler re-orders per policy before placing
// slices.
type CoreJobs map[*domain.Core][]*domain.Job

// Map assigns every app in graph (expected pre-sorted descending by
// criticality) onto arch's CPUs, greedily picking the least-loaded CPU for
// each app and, within it, the least-loaded core for each of the app's
// tasks. An empty CPU admits any app; otherwise the app must pass the local
// test together with the CPU's current tasks. Returns InitialMappingError the
// first time the least-loaded CPU rejects an app; other CPUs are not tried.
func Map(arch domain.Architecture, graph *domain.Graph, policy algorithm.Policy) (CoreJobs, error) {
	h := make(cpuHeap, len(arch))
	copy(h, arch)
	heap.Init(&h)

	for _, app := range graph.Apps {
		cpu := heap.Pop(&h).(*domain.CPU)

		if len(cpu.Apps) > 0 {
			tasks := cpuTasks(cpu)
			tasks = append(tasks, app.Tasks...)
			if bound := policy.LocalTest(tasks, cpu.Cores, policy.Margin); bound != nil {
				return nil, &InitialMappingError{App: app.Name, CPU: cpu.ID, Violation: *bound}
			}
		}

		cpu.Apps = append(cpu.Apps, app)
		for _, task := range app.Tasks {
			core := cpu.MinCore()
			core.Tasks = append(core.Tasks, task)
		}

		heap.Push(&h, cpu)
	}

	return flatten(arch), nil
}

func cpuTasks(cpu *domain.CPU) []*domain.Task {
	var tasks []*domain.Task
	for _, core := range cpu.Cores {
		tasks = append(tasks, core.Tasks...)
	}
	return tasks
}

func flatten(arch domain.Architecture) CoreJobs {
	result := make(CoreJobs)
	for _, cpu := range arch {
		for _, core := range cpu.Cores {
			if len(core.Tasks) == 0 {
				continue
			}
			var jobs []*domain.Job
			for _, task := range core.Tasks {
				jobs = append(jobs, task.Jobs...)
			}
			result[core] = jobs
		}
	}
	return result
}

// Alteration maps an app with tasks spread across >= 2 cores of the same
// CPU to, for each such core, the set of that app's tasks placed there.
// Consulted by the optimizer when looking for a valid task swap that keeps
// every app on a single CPU.
type Alteration map[*domain.App]map[*domain.Core][]*domain.Task

// AlterationPossibilities scans every core for tasks belonging to
// multi-core apps and builds the swap table described in spec.md §4.4.
func AlterationPossibilities(arch domain.Architecture) Alteration {
	perApp := make(map[*domain.App]map[*domain.Core][]*domain.Task)

	for _, cpu := range arch {
		for _, core := range cpu.Cores {
			for _, task := range core.Tasks {
				app := task.App
				if len(app.Tasks) < 2 {
					continue
				}
				if perApp[app] == nil {
					perApp[app] = make(map[*domain.Core][]*domain.Task)
				}
				perApp[app][core] = append(perApp[app][core], task)
			}
		}
	}

	result := make(Alteration)
	for app, cores := range perApp {
		if len(cores) >= 2 {
			result[app] = cores
		}
	}
	return result
}
