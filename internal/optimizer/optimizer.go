// Package optimizer implements the local-search hill-climber (component H):
// starting from a feasible seed solution, it repeatedly generates
// neighbours by narrowing a job's execution window or swapping a
// multi-core app's tasks between cores, keeps climbing as long as a
// generation is no worse than the last, and stops at the first step whose
// best candidate scores worse than the current solution.
package optimizer

import (
	"math/rand"

	"github.com/partsched/partsched/internal/algorithm"
	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/feasibility"
	"github.com/partsched/partsched/internal/mapper"
	"github.com/partsched/partsched/internal/objective"
	"github.com/partsched/partsched/internal/timeline"
)

// Config holds the tunables the driver resolves from CLI flags and the
// config file before running the optimizer.
type Config struct {
	Policy      algorithm.Policy
	Objective   objective.Objective
	SwitchTime  int
	InitialStep int
	TrialLimit  int
	// Seed drives the RNG used for the task-swap half of neighbour
	// generation, so a run can be reproduced exactly given the same seed.
	Seed int64
}

// Generation is a non-empty, best-first sorted list of solutions produced
// by one optimizer step.
type Generation []*objective.Solution

// Result is the outcome of a completed optimizer run: every generation
// produced, in order, and the chosen best solution.
type Result struct {
	Generations []Generation
	Best        *objective.Solution
}

// Optimizer runs the neighbour-generate-and-climb loop over a problem's
// graph and alteration table.
type Optimizer struct {
	cfg          Config
	graph        *domain.Graph
	alterations  mapper.Alteration
	rng          *rand.Rand
}

// New builds an Optimizer for one problem.
func New(cfg Config, graph *domain.Graph, alterations mapper.Alteration) *Optimizer {
	return &Optimizer{
		cfg:         cfg,
		graph:       graph,
		alterations: alterations,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Run climbs from seed until a step's best candidate scores worse than the
// current solution, candidates run out, or the trial limit is reached. A
// step whose best candidate scores equal to the current one is accepted.
func (o *Optimizer) Run(seed *objective.Solution) Result {
	current := seed
	generations := []Generation{{seed}}

	trials := o.cfg.TrialLimit
	if trials <= 0 {
		trials = 1
	}

	for i := 0; i < trials; i++ {
		candidates := o.neighbours(current)
		if len(candidates) == 0 {
			break
		}

		objective.SortSolutions(candidates)
		top := candidates[0]

		if !scoreWorse(o.cfg.Objective, top.Score(), current.Score()) {
			generations = append(generations, Generation(candidates))
			current = top
			continue
		}

		break
	}

	return Result{Generations: generations, Best: pickBest(generations)}
}

// scoreWorse reports whether a is strictly worse than b under obj's
// comparator (neither better nor equal).
func scoreWorse(obj objective.Objective, a, b objective.Score) bool {
	return !obj.Better(a, b) && a != b
}

// pickBest finds the best-scoring solution in the final generation, then
// prefers whichever earlier generation first reached that exact score, per
// spec.md §4.8's tie-break rule.
func pickBest(generations []Generation) *objective.Solution {
	last := generations[len(generations)-1]
	objective.SortSolutions(last)
	bestScore := last[0].Score()

	for _, gen := range generations {
		for _, sol := range gen {
			if sol.Score() == bestScore {
				return sol
			}
		}
	}

	return last[0]
}

// neighbours builds every candidate solution reachable from current by
// narrowing one job's execution window by the configured step, optionally
// combined with a random task swap between cores of a multi-core app.
func (o *Optimizer) neighbours(current *objective.Solution) []*objective.Solution {
	step := o.cfg.InitialStep
	if step <= 0 {
		step = 10
	}

	var candidates []*objective.Solution

	for core, jobs := range current.CoreJobs {
		for _, job := range jobs {
			if job.WindowWidth() < job.Task.WCET+step {
				continue
			}

			if sol := o.buildCandidate(current, core, job, step, false); sol != nil {
				candidates = append(candidates, sol)
			}
			if len(o.alterations) > 0 {
				if sol := o.buildCandidate(current, core, job, step, true); sol != nil {
					candidates = append(candidates, sol)
				}
			}
		}
	}

	return candidates
}

// buildCandidate clones the current solution, narrows targetJob's execution
// window on targetCore by step, optionally performs one random task swap,
// reschedules and checks feasibility, and returns the resulting candidate
// solution, or nil if any of those steps fails.
func (o *Optimizer) buildCandidate(current *objective.Solution, targetCore *domain.Core, targetJob *domain.Job, step int, swap bool) *objective.Solution {
	clone, jobIndex := cloneCoreJobs(current.CoreJobs)

	narrowed := jobIndex[targetJob]
	narrowed.ExecWindowStart += step

	if swap {
		if !o.attemptSwap(clone) {
			return nil
		}
	}

	if err := timeline.Schedule(clone, o.cfg.Policy, o.cfg.SwitchTime); err != nil {
		return nil
	}

	apps := appsOf(clone)
	if err := feasibility.Check(clone, apps); err != nil {
		return nil
	}

	return objective.NewSolution(clone, current.Graph, current.Objective)
}

// cloneCoreJobs deep-clones the core->jobs map: fresh job clones sharing
// Task identity, indexed so callers can find a clone by its original job.
func cloneCoreJobs(src mapper.CoreJobs) (mapper.CoreJobs, map[*domain.Job]*domain.Job) {
	dst := make(mapper.CoreJobs, len(src))
	index := make(map[*domain.Job]*domain.Job)

	for core, jobs := range src {
		cloned := make([]*domain.Job, len(jobs))
		for i, j := range jobs {
			c := j.Clone()
			cloned[i] = c
			index[j] = c
		}
		dst[core] = cloned
	}

	return dst, index
}

func appsOf(coreJobs mapper.CoreJobs) []*domain.App {
	seen := make(map[*domain.App]bool)
	var apps []*domain.App
	for _, jobs := range coreJobs {
		for _, j := range jobs {
			app := j.Task.App
			if !seen[app] {
				seen[app] = true
				apps = append(apps, app)
			}
		}
	}
	return apps
}

// attemptSwap picks one app with >= 2 cores available to it, two distinct
// cores, and one task of the app mapped to each, then swaps those tasks'
// jobs between the two cores' job lists in clone. Core.Tasks and the
// alteration table are left unchanged. Returns false if the swap would
// violate either core's local admission test, in which case the caller
// discards the candidate.
func (o *Optimizer) attemptSwap(clone mapper.CoreJobs) bool {
	if len(o.alterations) == 0 {
		return false
	}

	apps := make([]*domain.App, 0, len(o.alterations))
	for app := range o.alterations {
		apps = append(apps, app)
	}
	app := apps[o.rng.Intn(len(apps))]

	cores := make([]*domain.Core, 0, len(o.alterations[app]))
	for core := range o.alterations[app] {
		cores = append(cores, core)
	}
	if len(cores) < 2 {
		return false
	}
	i := o.rng.Intn(len(cores))
	j := o.rng.Intn(len(cores) - 1)
	if j >= i {
		j++
	}
	coreA, coreB := cores[i], cores[j]

	tasksA := o.alterations[app][coreA]
	tasksB := o.alterations[app][coreB]
	if len(tasksA) == 0 || len(tasksB) == 0 {
		return false
	}
	taskA := tasksA[o.rng.Intn(len(tasksA))]
	taskB := tasksB[o.rng.Intn(len(tasksB))]

	jobsA, jobsB := clone[coreA], clone[coreB]
	newA := swapTaskJobs(jobsA, taskA, jobsB, taskB)
	newB := swapTaskJobs(jobsB, taskB, jobsA, taskA)

	if o.cfg.Policy.LocalTest(tasksOf(newA), []*domain.Core{coreA}, o.cfg.Policy.Margin) != nil {
		return false
	}
	if o.cfg.Policy.LocalTest(tasksOf(newB), []*domain.Core{coreB}, o.cfg.Policy.Margin) != nil {
		return false
	}

	clone[coreA] = newA
	clone[coreB] = newB

	return true
}

// tasksOf returns the distinct tasks behind a job list.
func tasksOf(jobs []*domain.Job) []*domain.Task {
	seen := make(map[*domain.Task]bool)
	var tasks []*domain.Task
	for _, j := range jobs {
		if !seen[j.Task] {
			seen[j.Task] = true
			tasks = append(tasks, j.Task)
		}
	}
	return tasks
}

// swapTaskJobs removes every job belonging to remove from jobs, and adds in
// their place add's jobs as already cloned into addFrom — the other core's
// clone in this same candidate — rather than domain.Task.Jobs, the master
// list: reading from the master list would both discard any window
// narrowing this candidate's clones have accumulated and, being the very
// same *Job pointers the master list holds, corrupt them in place the
// moment the timeline is rescheduled.
func swapTaskJobs(jobs []*domain.Job, remove *domain.Task, addFrom []*domain.Job, add *domain.Task) []*domain.Job {
	kept := jobs[:0:0]
	for _, j := range jobs {
		if j.Task != remove {
			kept = append(kept, j)
		}
	}
	for _, j := range addFrom {
		if j.Task == add {
			kept = append(kept, j)
		}
	}
	return kept
}
