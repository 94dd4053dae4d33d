// Package domain holds the static data model shared by every stage of the
// scheduler: the physical architecture (CPUs and cores) and the task graph
// (applications, tasks, jobs and slices) that gets mapped and scheduled onto
// it.
//
// Key Components:
//   - Architecture, CPU, Core: the physical side, built once from input and
//     read-only except for the Core.Tasks and CPU.Apps slices populated
//     during mapping.
//   - Graph, App, Task, Job, Slice: the logical side, built once from input
//     with Job.ExecWindow and Job.Execution mutated by the scheduler and the
//     optimizer.
//
// Ownership follows spec.md §3: CPU owns its Cores, Graph owns Apps which
// own Tasks which own Jobs which own Slices. All back references (Core to
// CPU, Task to App, Job to Task, Slice to Job) are non-owning; Go's garbage
// collector tolerates the resulting reference cycles, so they are expressed
// as ordinary pointers rather than an index/arena scheme.
package domain

import "sort"

// Core is a single execution unit within a CPU. Tasks are appended to it
// during mapping; the scheduler never adds or removes tasks, only slices on
// their jobs.
type Core struct {
	ID    int
	CPU   *CPU
	Tasks []*Task
}

// Workload is the sum of the utilization (wcet/period) of every task
// currently assigned to the core.
func (c *Core) Workload() float64 {
	var total float64
	for _, t := range c.Tasks {
		total += t.Workload()
	}
	return total
}

// CPU groups an ordered set of Cores and the Apps mapped onto it.
type CPU struct {
	ID    int
	Cores []*Core
	Apps  []*App
}

// Workload sums the workload of every core on the CPU.
func (p *CPU) Workload() float64 {
	var total float64
	for _, c := range p.Cores {
		total += c.Workload()
	}
	return total
}

// MinCore returns the core with the lowest workload, breaking ties by core
// ID. Callers must ensure the CPU has at least one core.
func (p *CPU) MinCore() *Core {
	best := p.Cores[0]
	for _, c := range p.Cores[1:] {
		if coreLess(c, best) {
			best = c
		}
	}
	return best
}

func coreLess(a, b *Core) bool {
	if a.Workload() != b.Workload() {
		return a.Workload() < b.Workload()
	}
	return a.ID < b.ID
}

// cpuLess orders CPUs ascending by workload, tie-broken by ID, matching the
// Architecture's "least-loaded first" selection rule.
func cpuLess(a, b *CPU) bool {
	if a.Workload() != b.Workload() {
		return a.Workload() < b.Workload()
	}
	return a.ID < b.ID
}

// Architecture is the full set of CPUs available to a problem, ordered by
// ascending ID for stable iteration; selection for mapping always goes
// through the min-heap in the mapper package, not this slice's order.
type Architecture []*CPU

// SortStable orders the architecture's CPUs (and each CPU's cores) by ID,
// used right after construction so downstream components see a
// deterministic layout regardless of input order.
func (a Architecture) SortStable() {
	sort.Slice(a, func(i, j int) bool { return a[i].ID < a[j].ID })
	for _, cpu := range a {
		sort.Slice(cpu.Cores, func(i, j int) bool { return cpu.Cores[i].ID < cpu.Cores[j].ID })
	}
}
