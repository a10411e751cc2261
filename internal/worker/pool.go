// Package worker provides a parallel elevation tile fetch pool.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
	"github.com/MeKo-Tech/reliefmap/internal/hgt"
)

// Task identifies one tile to fetch by its south-west corner.
type Task struct {
	Lat int
	Lon int
}

// Result is the outcome of fetching one tile.
type Result struct {
	Task    Task
	Tile    grid.Int16
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each tile completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the fetch pool.
type Config struct {
	Workers    int
	Provider   hgt.Provider
	OnProgress ProgressFunc
}

// Pool fetches elevation tiles in parallel. Tile providers do blocking file
// and archive I/O, so a handful of workers hides most of the latency.
type Pool struct {
	workers    int
	provider   hgt.Provider
	onProgress ProgressFunc
}

// New creates a fetch pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		provider:   cfg.Provider,
		onProgress: cfg.OnProgress,
	}
}

// Run fetches all tasks and returns their results in completion order.
// It blocks until every task has finished or the context is cancelled;
// tasks still queued after cancellation are reported with ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var (
		completed int
		failed    int
		mu        sync.Mutex
	)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)

			mu.Lock()
			completed++
			if result.Err != nil {
				failed++
			}
			c, f := completed, failed
			mu.Unlock()

			if p.onProgress != nil {
				p.onProgress(c, len(tasks), f)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result{Task: task, Err: ctx.Err()}
			continue
		default:
		}

		start := time.Now()
		tile, err := p.provider(task.Lat, task.Lon)

		results <- Result{
			Task:    task,
			Tile:    tile,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
