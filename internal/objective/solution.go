package objective

import (
	"sort"
	"sync"

	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/mapper"
)

// Solution is a feasible core->jobs assignment together with the objective
// used to score it. The score is computed once and cached; a secondary key,
// the sum of every job's offset, breaks ties in favor of the least
// perturbed candidate.
type Solution struct {
	CoreJobs  mapper.CoreJobs
	Graph     *domain.Graph
	Objective Objective

	once       sync.Once
	score      Score
	offsetSum  int
}

// NewSolution wraps a scheduled, feasible core->jobs map as a candidate
// solution under the given objective.
func NewSolution(coreJobs mapper.CoreJobs, graph *domain.Graph, obj Objective) *Solution {
	return &Solution{CoreJobs: coreJobs, Graph: graph, Objective: obj}
}

func (s *Solution) compute() {
	s.once.Do(func() {
		s.score = s.Objective.Compute(s.CoreJobs, s.Graph)
		for _, jobs := range s.CoreJobs {
			for _, j := range jobs {
				s.offsetSum += j.Offset()
			}
		}
	})
}

// Score returns the solution's cached objective score.
func (s *Solution) Score() Score {
	s.compute()
	return s.score
}

// OffsetSum returns the cached sum of every job's offset, the tie-break key.
func (s *Solution) OffsetSum() int {
	s.compute()
	return s.offsetSum
}

// Better reports whether s is preferred over other: first by the
// objective's comparator on score, and when scores are equal, by a lower
// offset sum (less perturbation from the original windows).
func (s *Solution) Better(other *Solution) bool {
	if s.Score() == other.Score() {
		return s.OffsetSum() < other.OffsetSum()
	}
	return s.Objective.Better(s.Score(), other.Score())
}

// SortSolutions orders solutions best-first using Better.
func SortSolutions(solutions []*Solution) {
	sort.SliceStable(solutions, func(i, j int) bool {
		return solutions[i].Better(solutions[j])
	})
}
