// Package driver is the entry point that ties every other component
// together (component I): it discovers problem files, builds the domain
// model from them, runs the mapper, the initial timeline schedule, and the
// local-search optimizer, and formats the result — one goroutine per
// independent problem, matching spec.md §5's concurrency model.
package driver

import (
	"context"
	"fmt"
	"os"

	"github.com/partsched/partsched/internal/algorithm"
	"github.com/partsched/partsched/internal/domain"
	"github.com/partsched/partsched/internal/feasibility"
	"github.com/partsched/partsched/internal/ioformat"
	"github.com/partsched/partsched/internal/jobs"
	"github.com/partsched/partsched/internal/mapper"
	"github.com/partsched/partsched/internal/objective"
	"github.com/partsched/partsched/internal/optimizer"
	"github.com/partsched/partsched/internal/timeline"
	"github.com/partsched/partsched/internal/topology"
)

// Params are the resolved scheduling parameters for one run, after CLI/
// config-file precedence has already been applied.
type Params struct {
	Algorithm   string
	Objective   string
	SwitchTime  int
	InitialStep int
	TrialLimit  int
	Seed        int64
	// InstanceType, when set, replaces the architecture parsed from the
	// problem's *.cfg file with one discovered live from EC2 for this
	// instance type, via --discover-topology.
	InstanceType string
}

// Problem is one architecture/task-graph pair ready to be scheduled.
type Problem struct {
	Files FilepathPair
	Arch  domain.Architecture
	Graph *domain.Graph
}

// Build parses a problem's architecture and task files into the domain
// model and expands every task into its periodic jobs. When instanceType is
// non-empty, the architecture parsed from the *.cfg file is discarded in
// favor of one discovered live from EC2 for that instance type.
func Build(ctx context.Context, files FilepathPair, instanceType string) (*Problem, error) {
	var arch domain.Architecture

	if instanceType != "" {
		discovered, err := discoverArchitecture(ctx, instanceType)
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
		arch = discovered
	} else {
		cfgFile, err := os.Open(files.Cfg)
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
		defer cfgFile.Close()

		parsed, err := ioformat.ParseArchitecture(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
		arch = parsed
	}
	arch.SortStable()

	tskFile, err := os.Open(files.Tsk)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	defer tskFile.Close()

	graph, err := ioformat.ParseGraph(tskFile)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	return &Problem{Files: files, Arch: arch, Graph: graph}, nil
}

// discoverArchitecture builds a domain.Architecture from a live EC2 instance
// type's vCPU topology, per --discover-topology.
func discoverArchitecture(ctx context.Context, instanceType string) (domain.Architecture, error) {
	discoverer, err := topology.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover topology: %w", err)
	}
	return discoverer.ArchitectureFor(ctx, instanceType)
}

// GlobalAdmissionFailure reports that the whole graph's workload exceeds
// the architecture's total capacity under the policy's bound, before any
// per-app mapping is attempted. Fatal.
type GlobalAdmissionFailure struct {
	Bound algorithm.Bound
}

func (e *GlobalAdmissionFailure) Error() string {
	return fmt.Sprintf("total workload %.4f exceeds global bound %.4f", e.Bound.Workload, e.Bound.Limit)
}

// Solve runs the full pipeline for one problem: job expansion, global
// admission, initial mapping, initial scheduling, and the local-search
// optimizer. Returns the optimizer's result and the policy/objective used,
// for the caller to format.
func Solve(problem *Problem, params Params) (*optimizer.Result, algorithm.Policy, objective.Objective, error) {
	policy, err := algorithm.Lookup(params.Algorithm)
	if err != nil {
		return nil, algorithm.Policy{}, objective.Objective{}, err
	}

	obj, err := objective.Lookup(params.Objective)
	if err != nil {
		return nil, algorithm.Policy{}, objective.Objective{}, err
	}

	jobs.Expand(problem.Graph)

	if bound := algorithm.GlobalAdmission(policy, problem.Arch, problem.Graph.Tasks()); bound != nil {
		return nil, policy, obj, &GlobalAdmissionFailure{Bound: *bound}
	}

	problem.Graph.SortAppsByCriticality()

	coreJobs, err := mapper.Map(problem.Arch, problem.Graph, policy)
	if err != nil {
		return nil, policy, obj, err
	}

	if err := timeline.Schedule(coreJobs, policy, params.SwitchTime); err != nil {
		return nil, policy, obj, err
	}

	if err := feasibility.Check(coreJobs, problem.Graph.Apps); err != nil {
		return nil, policy, obj, err
	}

	seed := objective.NewSolution(coreJobs, problem.Graph, obj)
	alterations := mapper.AlterationPossibilities(problem.Arch)

	opt := optimizer.New(optimizer.Config{
		Policy:      policy,
		Objective:   obj,
		SwitchTime:  params.SwitchTime,
		InitialStep: params.InitialStep,
		TrialLimit:  params.TrialLimit,
		Seed:        params.Seed,
	}, problem.Graph, alterations)

	result := opt.Run(seed)

	return &result, policy, obj, nil
}
