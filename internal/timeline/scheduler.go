// Package timeline places concrete execution slices for every job on its
// assigned core (component E): one core at a time, highest-criticality
// jobs first, each job greedily consuming the earliest gaps available in
// its execution window.
package timeline

import (
	"fmt"
	"sort"

	"github.com/partsched/partsched/internal/algorithm"
	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/mapper"
)

// SchedulingFailure reports that a job could not fit all of its wcet into
// the gaps left in its execution window on its core. Fatal during the
// initial schedule; recoverable (the caller just discards the candidate)
// during the optimizer's neighbour generation.
type SchedulingFailure struct {
	Core int
	Task int
	Job  int
}

func (e *SchedulingFailure) Error() string {
	return fmt.Sprintf("core %d: job %d of task %d could not be scheduled within its execution window", e.Core, e.Job, e.Task)
}

// InvariantViolation indicates a bug: two slices scheduled on the same core
// were found to overlap.
type InvariantViolation struct {
	Core int
	Msg  string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("core %d: invariant violated: %s", e.Core, e.Msg)
}

// Schedule clears and recomputes every job's execution slices across every
// core in coreJobs. switchTime is the minimum gap required between two
// adjacent slices of differing criticality on the same core.
func Schedule(coreJobs mapper.CoreJobs, policy algorithm.Policy, switchTime int) error {
	for core, jobs := range coreJobs {
		for _, job := range jobs {
			job.ClearExecution()
		}

		if err := scheduleCore(core, jobs, policy, switchTime); err != nil {
			return err
		}
	}
	return nil
}

func scheduleCore(core *domain.Core, jobs []*domain.Job, policy algorithm.Policy, switchTime int) error {
	groups := groupByCriticality(jobs)

	var placed []*domain.Slice

	for _, group := range groups {
		policy.Ordering(group)

		for _, job := range group {
			slices, err := placeJob(job, placed, switchTime)
			if err != nil {
				return &SchedulingFailure{Core: core.ID, Task: job.Task.ID, Job: job.Index}
			}

			if err := checkDisjoint(slices, placed); err != nil {
				return &InvariantViolation{Core: core.ID, Msg: err.Error()}
			}

			job.Execution = append(job.Execution, slices...)
			placed = append(placed, slices...)
			sort.Slice(placed, func(i, j int) bool { return placed[i].Start < placed[j].Start })
		}
	}

	return nil
}

// groupByCriticality partitions jobs by their task's criticality and
// returns the groups ordered descending by criticality.
func groupByCriticality(jobs []*domain.Job) [][]*domain.Job {
	byCrit := make(map[int][]*domain.Job)
	for _, j := range jobs {
		c := j.Task.Criticality
		byCrit[c] = append(byCrit[c], j)
	}

	var levels []int
	for c := range byCrit {
		levels = append(levels, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	groups := make([][]*domain.Job, len(levels))
	for i, c := range levels {
		groups[i] = byCrit[c]
	}
	return groups
}

// forbiddenInterval is an already-placed slice together with the
// criticality of the job it belongs to, used to decide whether a
// switch-time gap must be reserved next to it.
type forbiddenInterval struct {
	start, stop int
	criticality int
}

func intersectingForbidden(job *domain.Job, placed []*domain.Slice) []forbiddenInterval {
	var result []forbiddenInterval
	for _, s := range placed {
		if s.Start < job.ExecWindowStop && job.ExecWindowStart < s.Stop {
			result = append(result, forbiddenInterval{start: s.Start, stop: s.Stop, criticality: s.Job.Task.Criticality})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].start < result[j].start })
	return result
}

// placeJob computes the slices needed to cover job's wcet within its
// execution window, greedily filling gaps around already-placed slices.
func placeJob(job *domain.Job, placed []*domain.Slice, switchTime int) ([]*domain.Slice, error) {
	remaining := job.Task.WCET
	forbidden := intersectingForbidden(job, placed)

	if len(forbidden) == 0 {
		stop := job.ExecWindowStart + remaining
		if stop > job.ExecWindowStop {
			return nil, fmt.Errorf("insufficient room: %d units unplaced", stop-job.ExecWindowStop)
		}
		return []*domain.Slice{{Job: job, Start: job.ExecWindowStart, Stop: stop}}, nil
	}

	crit := job.Task.Criticality
	var gaps [][2]int

	// leading gap
	leadStop := forbidden[0].start
	if forbidden[0].criticality != crit {
		leadStop -= switchTime
	}
	if leadStop > job.ExecWindowStart {
		gaps = append(gaps, [2]int{job.ExecWindowStart, leadStop})
	}

	// middle gaps
	for i := 0; i < len(forbidden)-1; i++ {
		start := forbidden[i].stop
		if forbidden[i].criticality != crit {
			start += switchTime
		}
		stop := forbidden[i+1].start
		if forbidden[i+1].criticality != crit {
			stop -= switchTime
		}
		if stop > start {
			gaps = append(gaps, [2]int{start, stop})
		}
	}

	// trailing gap
	last := forbidden[len(forbidden)-1]
	trailStart := last.stop
	if last.criticality != crit {
		trailStart += switchTime
	}
	if job.ExecWindowStop > trailStart {
		gaps = append(gaps, [2]int{trailStart, job.ExecWindowStop})
	}

	var result []*domain.Slice
	for _, gap := range gaps {
		if remaining == 0 {
			break
		}
		width := gap[1] - gap[0]
		if width <= 0 {
			continue
		}
		take := width
		if remaining < take {
			take = remaining
		}
		result = append(result, &domain.Slice{Job: job, Start: gap[0], Stop: gap[0] + take})
		remaining -= take
	}

	if remaining > 0 {
		return nil, fmt.Errorf("insufficient room: %d units unplaced", remaining)
	}

	return result, nil
}

func checkDisjoint(fresh []*domain.Slice, placed []*domain.Slice) error {
	for _, a := range fresh {
		for _, b := range placed {
			if a.Overlaps(b) {
				return fmt.Errorf("slice [%d,%d) overlaps existing slice [%d,%d)", a.Start, a.Stop, b.Start, b.Stop)
			}
		}
		for _, b := range fresh {
			if a != b && a.Overlaps(b) {
				return fmt.Errorf("slice [%d,%d) overlaps sibling slice [%d,%d)", a.Start, a.Stop, b.Start, b.Stop)
			}
		}
	}
	return nil
}
