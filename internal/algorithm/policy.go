// Package algorithm holds the scheduling policies (EDF, RM) as variant
// records rather than an inheritance hierarchy: a Policy is a name plus two
// functions, dispatched through a lookup table instead of a type switch.
package algorithm

import (
	"errors"
	"math"
	"sort"

	"github.com/partsched/partsched/internal/domain"
)

// ErrUnknownPolicy is returned by Lookup for any name not present in the
// dispatch table.
var ErrUnknownPolicy = errors.New("unknown scheduling policy")

// Bound describes why a LocalTest failed: the workload it measured against
// the bound it was not allowed to exceed.
type Bound struct {
	Workload float64
	Limit    float64
}

// LocalTest checks whether a set of tasks fits on a set of cores under a
// policy's schedulability condition. It returns nil when the tasks fit, or
// the Bound that was exceeded otherwise.
type LocalTest func(tasks []*domain.Task, cores []*domain.Core, margin float64) *Bound

// Ordering sorts a job list into the order the timeline scheduler should
// place them in, within a criticality group.
type Ordering func(jobs []*domain.Job)

// Policy bundles a name with the two functions that make an algorithm
// distinct: its admission test and its job ordering.
type Policy struct {
	Name      string
	Margin    float64
	LocalTest LocalTest
	Ordering  Ordering
}

func totalWorkload(tasks []*domain.Task) float64 {
	var total float64
	for _, t := range tasks {
		total += t.Workload()
	}
	return total
}

func edfLocalTest(tasks []*domain.Task, cores []*domain.Core, margin float64) *Bound {
	limit := float64(len(cores)) * margin
	w := totalWorkload(tasks)
	if w > limit {
		return &Bound{Workload: w, Limit: limit}
	}
	return nil
}

func edfOrdering(jobs []*domain.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].SchedWindowStop < jobs[j].SchedWindowStop
	})
}

// liuLayland is n*(2^(1/n)-1), the Liu-Layland utilization bound for n
// tasks under rate-monotonic scheduling.
func liuLayland(n int) float64 {
	if n == 0 {
		return 0
	}
	nf := float64(n)
	return nf * (math.Pow(2, 1/nf) - 1)
}

func rmLocalTest(tasks []*domain.Task, cores []*domain.Core, margin float64) *Bound {
	limit := float64(len(cores)) * margin * liuLayland(len(tasks))
	w := totalWorkload(tasks)
	if w > limit {
		return &Bound{Workload: w, Limit: limit}
	}
	return nil
}

func rmOrdering(jobs []*domain.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Task.Period < jobs[j].Task.Period
	})
}

// DefaultMargin is the security margin applied to every admission test
// unless a problem's configuration overrides it.
const DefaultMargin = 0.9

// table is the dispatch table mapping a policy name to its functions.
var table = map[string]Policy{
	"edf": {Name: "edf", Margin: DefaultMargin, LocalTest: edfLocalTest, Ordering: edfOrdering},
	"rm":  {Name: "rm", Margin: DefaultMargin, LocalTest: rmLocalTest, Ordering: rmOrdering},
}

// Lookup returns the named policy, or ErrUnknownPolicy if name isn't one of
// "edf" or "rm".
func Lookup(name string) (Policy, error) {
	p, ok := table[name]
	if !ok {
		return Policy{}, errors.Join(ErrUnknownPolicy, errors.New(name))
	}
	return p, nil
}

// WithMargin returns a copy of the policy using margin instead of its
// default, letting a problem's configuration tighten or relax admission.
func (p Policy) WithMargin(margin float64) Policy {
	p.Margin = margin
	return p
}

// GlobalAdmission checks total workload against the sum of every core in
// the architecture, policy's own local test applied at architecture scope.
func GlobalAdmission(policy Policy, arch domain.Architecture, tasks []*domain.Task) *Bound {
	var allCores []*domain.Core
	for _, cpu := range arch {
		allCores = append(allCores, cpu.Cores...)
	}
	return policy.LocalTest(tasks, allCores, policy.Margin)
}
