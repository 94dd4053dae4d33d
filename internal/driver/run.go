package driver

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/partsched/partsched/internal/ioformat"
)

// ProgressTracker counts how many of a batch's problems have finished,
// modeled on the teacher's pkg/scheduler/batch_scheduler.go ProgressTracker.
type ProgressTracker struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
}

// NewProgressTracker creates a tracker for a batch of the given size.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{total: total}
}

func (p *ProgressTracker) markDone(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failed++
	} else {
		p.completed++
	}
	fmt.Fprintf(os.Stderr, "📊 %d/%d problems processed (%d failed)\n", p.completed+p.failed, p.total, p.failed)
}

// Outcome is one problem's end-to-end result: either a rendered schedule
// document plus its run metrics, or the fatal error that stopped it.
type Outcome struct {
	Files   FilepathPair
	Output  []byte
	Metrics Metrics
	Err     error
}

// Metrics is the small set of per-problem numbers worth archiving alongside
// a schedule's rendered document.
type Metrics struct {
	Score        float64
	Iterations   int
	ElapsedMilli int64
}

// RunAll processes every discovered problem concurrently, one goroutine per
// problem and no shared mutable state between them beyond the progress
// tracker, matching spec.md §5's driver-level parallelism.
func RunAll(ctx context.Context, pairs []FilepathPair, params Params, format ioformat.Format) []Outcome {
	tracker := NewProgressTracker(len(pairs))
	outcomes := make([]Outcome, len(pairs))

	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		go func(i int, pair FilepathPair) {
			defer wg.Done()
			out, metrics, err := runOne(ctx, pair, params, format)
			tracker.markDone(err)
			outcomes[i] = Outcome{Files: pair, Output: out, Metrics: metrics, Err: err}
		}(i, pair)
	}
	wg.Wait()

	return outcomes
}

func runOne(ctx context.Context, pair FilepathPair, params Params, format ioformat.Format) ([]byte, Metrics, error) {
	started := time.Now()

	problem, err := Build(ctx, pair, params.InstanceType)
	if err != nil {
		return nil, Metrics{}, err
	}

	result, _, _, err := Solve(problem, params)
	if err != nil {
		return nil, Metrics{}, err
	}

	cfg := ioformat.ConfigEcho{
		Algorithm:   params.Algorithm,
		Objective:   params.Objective,
		SwitchTime:  params.SwitchTime,
		InitialStep: params.InitialStep,
	}

	rec := ioformat.BuildRecord(result.Best.CoreJobs, problem.Graph.Hyperperiod, float64(result.Best.Score()), cfg)

	out, err := ioformat.Render(rec, format)
	if err != nil {
		return nil, Metrics{}, err
	}

	metrics := Metrics{
		Score:        float64(result.Best.Score()),
		Iterations:   len(result.Generations) - 1,
		ElapsedMilli: time.Since(started).Milliseconds(),
	}

	return out, metrics, nil
}
