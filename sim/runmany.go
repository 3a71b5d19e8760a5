package sim

import (
	"runtime"
	"sync"

	"github.com/samber/lo"

	"github.com/raykavin/backtestkernel/strategy"
)

// Job is one independent simulation request for RunMany: a parameter
// sweep or multi-strategy batch member. Each Job gets its own Driver,
// indicator engine and AST instances — no state is shared across jobs,
// matching the "external parallelism, one OS thread per instance" model
// the kernel itself never implements internally.
type Job struct {
	Strategy   strategy.Strategy
	Config     BacktestConfig
	Context    BacktestContext
	OnProgress ProgressFunc
}

// RunMany executes jobs concurrently, capped at parallelism simultaneous
// Driver.Run calls (runtime.NumCPU() when parallelism <= 0), in the same
// semaphore-gated worker-pool style as the teacher's grid-search
// optimizer. Results are returned in the same order as jobs regardless
// of completion order.
func RunMany(jobs []Job, parallelism int) []BacktestResult {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]BacktestResult, len(jobs))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, parallelism)

	for i, job := range jobs {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(index int, j Job) {
			defer wg.Done()
			defer func() { <-semaphore }()

			d := NewDriver(j.Strategy, j.Config, j.Context, j.OnProgress)
			results[index] = d.Run()
		}(i, job)
	}

	wg.Wait()
	return results
}

// Successful filters a RunMany batch down to results with no errors (a
// result with zero trades is kept), the common "what actually ran clean"
// view a sweep's caller wants before ranking by metric.
func Successful(results []BacktestResult) []BacktestResult {
	return lo.Filter(results, func(r BacktestResult, _ int) bool {
		return len(r.Errors) == 0
	})
}
