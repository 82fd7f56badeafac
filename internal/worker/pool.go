// Package worker runs sprite map generation jobs on a bounded pool of goroutines.
package worker

import (
	"context"
	"sync"
	"time"
)

// Generator is the interface for per-sprite map generation.
// This matches the signature of pipeline.Generator.Generate.
type Generator interface {
	Generate(ctx context.Context, sprite string, force bool) (outputs []string, err error)
}

// Task represents a single sprite to process.
type Task struct {
	Sprite string
	Force  bool
}

// Result represents the outcome of a sprite generation task.
type Result struct {
	Task    Task
	Outputs []string
	Err     error
	Elapsed time.Duration
}

// Stats is the running tally of a batch, passed to ProgressFunc after each sprite.
type Stats struct {
	Completed int
	Total     int
	Failed    int
	// Maps counts map files (or bundle entries) written by successful sprites.
	Maps int
	// Sprite is the task that just finished.
	Sprite string
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(Stats)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Generator  Generator
	OnProgress ProgressFunc
}

// Pool manages parallel sprite generation.
type Pool struct {
	workers    int
	generator  Generator
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
		generator:  cfg.Generator,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns results in completion order.
// Tasks are processed in parallel by the configured number of workers.
// The function blocks until all tasks complete or the context is cancelled;
// tasks that never started are not reported.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Only the collector touches the stats.
	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		stats := Stats{Total: len(tasks)}
		for result := range resultCh {
			results = append(results, result)

			stats.Completed++
			stats.Sprite = result.Task.Sprite
			if result.Err != nil {
				stats.Failed++
			} else {
				stats.Maps += len(result.Outputs)
			}

			if p.onProgress != nil {
				p.onProgress(stats)
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
		outputs, err := p.generator.Generate(ctx, task.Sprite, task.Force)

		results <- Result{
			Task:    task,
			Outputs: outputs,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
