package domain

import "sort"

// Task is a single periodic task within an App. Jobs are populated once by
// the job-expansion stage and never added to or removed afterward.
//
// Invariant: WCET <= Deadline <= Period is assumed of the input; neither
// this type nor the input parser checks it.
type Task struct {
	ID          int
	App         *App
	WCET        int
	Period      int
	Deadline    int
	Criticality int // 0-4, 0 is lowest
	Parent      *Task
	Jobs        []*Job
}

// Workload is the task's utilization, wcet/period.
func (t *Task) Workload() float64 {
	return float64(t.WCET) / float64(t.Period)
}

// App is a named collection of tasks. When Order is true the tasks form a
// linear precedence chain (declared via each task's Parent) and are kept
// sorted by ID so index k of one task corresponds to the k-th stage of the
// chain.
type App struct {
	Name  string
	Order bool
	Tasks []*Task
}

// Criticality is the maximum criticality among the app's tasks.
func (a *App) Criticality() int {
	max := 0
	for _, t := range a.Tasks {
		if t.Criticality > max {
			max = t.Criticality
		}
	}
	return max
}

// Workload sums the utilization of every task in the app.
func (a *App) Workload() float64 {
	var total float64
	for _, t := range a.Tasks {
		total += t.Workload()
	}
	return total
}

// SortTasksByID orders the app's tasks ascending by ID, required when
// Order is true so the precedence chain can be walked by index.
func (a *App) SortTasksByID() {
	sort.Slice(a.Tasks, func(i, j int) bool { return a.Tasks[i].ID < a.Tasks[j].ID })
}

// Graph is the full task set for a problem: every App, plus the hyperperiod
// derived as the LCM of every task's period.
type Graph struct {
	Apps        []*App
	Hyperperiod int
}

// SortAppsByCriticality orders apps descending by criticality, the mapper's
// required processing order (highest-criticality apps placed first).
func (g *Graph) SortAppsByCriticality() {
	sort.SliceStable(g.Apps, func(i, j int) bool {
		return g.Apps[i].Criticality() > g.Apps[j].Criticality()
	})
}

// Tasks flattens every task across every app in the graph.
func (g *Graph) Tasks() []*Task {
	var all []*Task
	for _, app := range g.Apps {
		all = append(all, app.Tasks...)
	}
	return all
}
