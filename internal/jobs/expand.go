// Package jobs expands every task in a graph into its periodic job
// instances across the hyperperiod.
package jobs

import "github.com/partsched/partsched/internal/domain"

// Expand populates Task.Jobs for every task in the graph. Task k (0-indexed)
// gets hyperperiod/period jobs; job k has scheduling window
// [k*period, k*period+deadline) and an execution window initialized to the
// same bounds.
//
// Expand is idempotent: calling it twice replaces the job list rather than
// appending to it, which matters for tests that rebuild a graph in place.
func Expand(graph *domain.Graph) {
	for _, app := range graph.Apps {
		for _, task := range app.Tasks {
			count := graph.Hyperperiod / task.Period
			task.Jobs = make([]*domain.Job, count)

			for k := 0; k < count; k++ {
				windowStart := k * task.Period
				windowStop := windowStart + task.Deadline

				task.Jobs[k] = &domain.Job{
					Task:             task,
					Index:            k,
					SchedWindowStart: windowStart,
					SchedWindowStop:  windowStop,
					ExecWindowStart:  windowStart,
					ExecWindowStop:   windowStop,
				}
			}
		}
	}
}
