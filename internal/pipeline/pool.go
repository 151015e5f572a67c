package pipeline

import (
	"context"
	"sync"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Job is one submission waiting to be processed.
type Job struct {
	InputPath string
	Meta      Meta
}

// JobResult pairs a job with its outcome. Exactly one of Result and Err is
// set unless the context was canceled before the job started.
type JobResult struct {
	Job    Job
	Result *Result
	Err    error
}

// Pool runs submissions through a Processor with bounded concurrency. A
// failing job never aborts its siblings.
type Pool struct {
	proc    *Processor
	workers int
}

// NewPool creates a pool; workers <= 0 selects DefaultWorkers.
func NewPool(proc *Processor, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{proc: proc, workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Run processes all jobs and returns results in job order. Once ctx is
// canceled, remaining jobs are reported with ctx.Err() without starting.
func (p *Pool) Run(ctx context.Context, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				job := jobs[i]
				if err := ctx.Err(); err != nil {
					results[i] = JobResult{Job: job, Err: err}
					continue
				}
				res, err := p.proc.Process(ctx, job.InputPath, job.Meta)
				results[i] = JobResult{Job: job, Result: res, Err: err}
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}
