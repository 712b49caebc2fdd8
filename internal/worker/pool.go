// Package worker provides a parallel row-band sampling worker pool.
package worker

import (
	"context"
	"sync"
	"time"
)

// Sampler evaluates a field over a band of rows.
// The returned slice holds (y1-y0) full rows, row-major.
type Sampler interface {
	SampleRows(ctx context.Context, y0, y1 int) ([]float32, error)
}

// SamplerFunc adapts a plain function to Sampler.
type SamplerFunc func(ctx context.Context, y0, y1 int) ([]float32, error)

// SampleRows calls f.
func (f SamplerFunc) SampleRows(ctx context.Context, y0, y1 int) ([]float32, error) {
	return f(ctx, y0, y1)
}

// Task is a half-open band of rows [Y0, Y1).
type Task struct {
	Y0, Y1 int
}

// Rows returns the number of rows in the band.
func (t Task) Rows() int {
	return t.Y1 - t.Y0
}

// Result represents the outcome of a sampling task.
type Result struct {
	Task    Task
	Values  []float32
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes, counting rows.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Sampler    Sampler
	OnProgress ProgressFunc
}

// Pool manages parallel sampling.
type Pool struct {
	workers    int
	sampler    Sampler
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		sampler:    cfg.Sampler,
		onProgress: cfg.OnProgress,
	}
}

// SplitRows cuts height rows into bands of at most band rows.
func SplitRows(height, band int) []Task {
	if height <= 0 {
		return nil
	}
	if band <= 0 {
		band = 1
	}
	tasks := make([]Task, 0, (height+band-1)/band)
	for y := 0; y < height; y += band {
		tasks = append(tasks, Task{Y0: y, Y1: min(y+band, height)})
	}
	return tasks
}

// Run executes all tasks and returns results in completion order.
// The function blocks until all tasks complete or the context is cancelled;
// tasks not started before cancellation come back with ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	total := 0
	for _, t := range tasks {
		total += t.Rows()
	}

	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	// Feed tasks; the buffer holds all of them, so this never blocks
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		var completed, failed int
		for result := range resultCh {
			results = append(results, result)

			completed += result.Task.Rows()
			if result.Err != nil {
				failed += result.Task.Rows()
			}
			if p.onProgress != nil {
				p.onProgress(completed, total, failed)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		if err := ctx.Err(); err != nil {
			results <- Result{Task: task, Err: err}
			continue
		}

		start := time.Now()
		values, err := p.sampler.SampleRows(ctx, task.Y0, task.Y1)
		results <- Result{
			Task:    task,
			Values:  values,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
