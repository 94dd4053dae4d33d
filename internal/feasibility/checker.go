// Package feasibility validates a scheduled core->jobs map against the
// invariants spec.md §4.7 requires of any candidate solution: every job got
// its full wcet placed inside its window, and every ordered app's tasks
// keep their declared precedence at every job index.
package feasibility

import (
	"fmt"
	"sort"

	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/mapper"
)

// Miss describes the first feasibility violation found. The optimizer
// discards a candidate that misses and moves on; the driver treats a miss on
// the initial schedule as fatal for that problem.
type Miss struct {
	Reason string
}

func (m *Miss) Error() string {
	return "feasibility: " + m.Reason
}

// Check walks every job in coreJobs and every ordered app in apps, returning
// the first Miss encountered, or nil if the schedule is feasible.
func Check(coreJobs mapper.CoreJobs, apps []*domain.App) error {
	for core, jobs := range coreJobs {
		for _, job := range jobs {
			if err := checkJob(core.ID, job); err != nil {
				return err
			}
		}
	}

	byTask := jobsByTask(coreJobs)
	for _, app := range apps {
		if !app.Order {
			continue
		}
		if err := checkOrder(app, byTask); err != nil {
			return err
		}
	}

	return nil
}

// jobsByTask indexes a candidate's own jobs by task, each task's jobs sorted
// by instance index. checkOrder must read from this index rather than
// domain.Task.Jobs, the master list: the optimizer clones jobs per candidate
// (domain.Job.Clone), and only the clones living in coreJobs carry that
// candidate's own rescheduled slices.
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

func checkJob(coreID int, job *domain.Job) error {
	if len(job.Execution) == 0 {
		return &Miss{Reason: fmt.Sprintf("core %d: job %d of task %d has no execution slices", coreID, job.Index, job.Task.ID)}
	}

	first := job.Execution[0]
	last := job.Execution[len(job.Execution)-1]

	if first.Start < job.ExecWindowStart {
		return &Miss{Reason: fmt.Sprintf("core %d: job %d of task %d starts before its execution window", coreID, job.Index, job.Task.ID)}
	}
	if last.Stop > job.ExecWindowStop {
		return &Miss{Reason: fmt.Sprintf("core %d: job %d of task %d ends after its execution window", coreID, job.Index, job.Task.ID)}
	}
	if job.Duration() != job.Task.WCET {
		return &Miss{Reason: fmt.Sprintf("core %d: job %d of task %d has duration %d, want wcet %d", coreID, job.Index, job.Task.ID, job.Duration(), job.Task.WCET)}
	}

	return nil
}

// checkOrder verifies, for every consecutive pair of tasks declared in an
// ordered app's precedence chain, that at every job index k the successor's
// k-th job starts no earlier than the predecessor's k-th job finishes.
func checkOrder(app *domain.App, byTask map[*domain.Task][]*domain.Job) error {
	for i := 0; i+1 < len(app.Tasks); i++ {
		pred := app.Tasks[i]
		succ := app.Tasks[i+1]

		predJobs := byTask[pred]
		succJobs := byTask[succ]

		count := len(predJobs)
		if len(succJobs) < count {
			count = len(succJobs)
		}

		for k := 0; k < count; k++ {
			predJob := predJobs[k]
			succJob := succJobs[k]

			if len(predJob.Execution) == 0 || len(succJob.Execution) == 0 {
				continue
			}

			predStop := predJob.Execution[len(predJob.Execution)-1].Stop
			succStart := succJob.Execution[0].Start

			if succStart < predStop {
				return &Miss{Reason: fmt.Sprintf(
					"app %q: task %d job %d finishes at %d after successor task %d job %d starts at %d",
					app.Name, pred.ID, k, predStop, succ.ID, k, succStart,
				)}
			}
		}
	}

	return nil
}
