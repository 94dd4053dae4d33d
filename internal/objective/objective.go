// Package objective scores a feasible schedule and orders candidate
// solutions for the optimizer (component F). Like algorithm.Policy, an
// Objective is a variant record — name, comparator, scoring function — kept
// in a dispatch table rather than expressed through interfaces per
// objective.
package objective

import (
	"errors"
	"sort"

	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/mapper"
)

// ErrUnknownObjective is returned by Lookup for any key not in the table.
var ErrUnknownObjective = errors.New("unknown objective")

// Score is the numeric value an objective assigns to a solution. Lower or
// higher is better depending on the objective's comparator.
type Score float64

// Better reports whether a is a strict improvement over b under cmp: for
// "higher is better" objectives cmp is Greater, for "lower is better"
// objectives cmp is Less.
type Better func(a, b Score) bool

// Greater is the comparator for objectives where a higher score wins.
func Greater(a, b Score) bool { return a > b }

// Less is the comparator for objectives where a lower score wins.
func Less(a, b Score) bool { return a < b }

// ScoreFunc computes a solution's raw score.
type ScoreFunc func(coreJobs mapper.CoreJobs, graph *domain.Graph) Score

// Objective bundles a name, comparator and scoring function.
type Objective struct {
	Name    string
	Better  Better
	Compute ScoreFunc
}

var table = map[string]Objective{
	"cumulated_free":  {Name: "cumulated empty space", Better: Greater, Compute: CumulatedFreeSpace},
	"nrml_dist_free":  {Name: "normal distribution of free space", Better: Less, Compute: NormalDistributedFreeSpace},
	"min_e2e_app_del": {Name: "minimal end-to-end application delay", Better: Less, Compute: MinAppDelay},
}

// Lookup returns the named objective or ErrUnknownObjective.
func Lookup(key string) (Objective, error) {
	o, ok := table[key]
	if !ok {
		return Objective{}, errors.Join(ErrUnknownObjective, errors.New(key))
	}
	return o, nil
}

// jobsByTask indexes a candidate's own jobs by task, each task's jobs sorted
// by instance index. MinAppDelay must read from this index rather than
// domain.Task.Jobs, the master list: the optimizer clones jobs per candidate
// (domain.Job.Clone), and only the clones living in coreJobs carry that
// candidate's own narrowed windows and rescheduled slices.
func jobsByTask(coreJobs mapper.CoreJobs) map[*domain.Task][]*domain.Job {
	byTask := make(map[*domain.Task][]*domain.Job)
	for _, jobs := range coreJobs {
		for _, j := range jobs {
			byTask[j.Task] = append(byTask[j.Task], j)
		}
	}
	for _, jobs := range byTask {
		sort.Slice(jobs, func(i, k int) bool { return jobs[i].Index < jobs[k].Index })
	}
	return byTask
}

// allSlices returns every slice scheduled on a core, sorted by start.
func allSlices(jobs []*domain.Job) []*domain.Slice {
	var all []*domain.Slice
	for _, j := range jobs {
		all = append(all, j.Execution...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	return all
}

// CumulatedFreeSpace sums, across every core, the hyperperiod minus the
// total running time placed on that core. Higher is better: more idle time
// is left available for sporadic work.
func CumulatedFreeSpace(coreJobs mapper.CoreJobs, graph *domain.Graph) Score {
	var total int
	for _, jobs := range coreJobs {
		var running int
		for _, s := range allSlices(jobs) {
			running += s.Len()
		}
		total += graph.Hyperperiod - running
	}
	return Score(total)
}

// idleIntervals returns the lengths of every gap (leading, between slices,
// trailing) in a core's timeline over [0, hyperperiod).
func idleIntervals(jobs []*domain.Job, hyperperiod int) []int {
	slices := allSlices(jobs)
	if len(slices) == 0 {
		return []int{hyperperiod}
	}

	var gaps []int
	if lead := slices[0].Start; lead > 0 {
		gaps = append(gaps, lead)
	}
	for i := 0; i+1 < len(slices); i++ {
		if gap := slices[i+1].Start - slices[i].Stop; gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if trail := hyperperiod - slices[len(slices)-1].Stop; trail > 0 {
		gaps = append(gaps, trail)
	}
	return gaps
}

// NormalDistributedFreeSpace computes the population variance of idle
// interval lengths pooled across every core. Lower is better: a smaller
// variance means idle time is spread evenly rather than concentrated in a
// few large gaps.
func NormalDistributedFreeSpace(coreJobs mapper.CoreJobs, graph *domain.Graph) Score {
	var pooled []int
	for _, jobs := range coreJobs {
		pooled = append(pooled, idleIntervals(jobs, graph.Hyperperiod)...)
	}

	if len(pooled) == 0 {
		return 0
	}

	var sum float64
	for _, v := range pooled {
		sum += float64(v)
	}
	mean := sum / float64(len(pooled))

	var sqDiff float64
	for _, v := range pooled {
		d := float64(v) - mean
		sqDiff += d * d
	}

	return Score(sqDiff / float64(len(pooled)))
}

// MinAppDelay sums, across every app, its end-to-end delay: for an ordered
// app, the last task's last job's last slice stop minus the first task's
// first job's first slice start; for an unordered app, the latest slice
// stop minus the earliest slice start across all of its tasks' first and
// last jobs. Lower is better.
func MinAppDelay(coreJobs mapper.CoreJobs, graph *domain.Graph) Score {
	var total int
	byTask := jobsByTask(coreJobs)

	for _, app := range graph.Apps {
		if len(app.Tasks) == 0 {
			continue
		}

		if app.Order {
			firstJobs := byTask[app.Tasks[0]]
			lastJobs := byTask[app.Tasks[len(app.Tasks)-1]]
			if len(firstJobs) == 0 || len(lastJobs) == 0 {
				continue
			}
			firstJob := firstJobs[0]
			lastJob := lastJobs[len(lastJobs)-1]
			if len(firstJob.Execution) == 0 || len(lastJob.Execution) == 0 {
				continue
			}
			total += lastJob.Execution[len(lastJob.Execution)-1].Stop - firstJob.Execution[0].Start
			continue
		}

		earliest := graph.Hyperperiod
		latest := 0
		for _, task := range app.Tasks {
			taskJobs := byTask[task]
			if len(taskJobs) == 0 {
				continue
			}
			firstJob := taskJobs[0]
			lastJob := taskJobs[len(taskJobs)-1]
			if len(firstJob.Execution) > 0 && firstJob.Execution[0].Start < earliest {
				earliest = firstJob.Execution[0].Start
			}
			if len(lastJob.Execution) > 0 {
				stop := lastJob.Execution[len(lastJob.Execution)-1].Stop
				if stop > latest {
					latest = stop
				}
			}
		}
		if latest > earliest {
			total += latest - earliest
		}
	}

	return Score(total)
}
