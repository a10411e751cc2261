package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
)

// mockProvider simulates tile loading for testing.
type mockProvider struct {
	delay     time.Duration
	failTiles map[string]bool
	callCount atomic.Int32
}

func key(lat, lon int) string { return fmt.Sprintf("%d/%d", lat, lon) }

func (m *mockProvider) provide(lat, lon int) (grid.Int16, error) {
	m.callCount.Add(1)
	time.Sleep(m.delay)

	if m.failTiles != nil && m.failTiles[key(lat, lon)] {
		return grid.Int16{}, errors.New("simulated failure")
	}

	tile := grid.NewInt16(2, 2)
	tile.Set(0, 0, int16(lat*100+lon))
	return tile, nil
}

func TestPoolBasicExecution(t *testing.T) {
	provider := &mockProvider{delay: 5 * time.Millisecond}

	pool := New(Config{
		Workers:  2,
		Provider: provider.provide,
	})

	tasks := []Task{
		{Lat: 50, Lon: 14},
		{Lat: 50, Lon: 15},
		{Lat: 51, Lon: 14},
	}

	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results, got %d", len(tasks), len(results))
	}

	for _, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for %d/%d: %v", r.Task.Lat, r.Task.Lon, r.Err)
		}
		if want := int16(r.Task.Lat*100 + r.Task.Lon); r.Tile.At(0, 0) != want {
			t.Errorf("Tile for %d/%d carries %d, want %d", r.Task.Lat, r.Task.Lon, r.Tile.At(0, 0), want)
		}
	}

	if provider.callCount.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d provider calls, got %d", len(tasks), provider.callCount.Load())
	}
}

func TestPoolParallelism(t *testing.T) {
	provider := &mockProvider{delay: 50 * time.Millisecond}

	pool := New(Config{
		Workers:  4,
		Provider: provider.provide,
	})

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Lat: 50, Lon: i}
	}

	start := time.Now()
	results := pool.Run(context.Background(), tasks)
	elapsed := time.Since(start)

	// With 4 workers and 8 tasks at 50ms each this should take ~100ms
	// (two batches); allow generous margin for scheduling overhead.
	if elapsed > 300*time.Millisecond {
		t.Errorf("Expected parallel execution in ~100ms, took %v", elapsed)
	}

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}
}

func TestPoolReportsFailures(t *testing.T) {
	provider := &mockProvider{
		failTiles: map[string]bool{key(50, 15): true},
	}

	var lastFailed atomic.Int32
	pool := New(Config{
		Workers:  2,
		Provider: provider.provide,
		OnProgress: func(completed, total, failed int) {
			lastFailed.Store(int32(failed))
		},
	})

	results := pool.Run(context.Background(), []Task{
		{Lat: 50, Lon: 14},
		{Lat: 50, Lon: 15},
		{Lat: 50, Lon: 16},
	})

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Expected 1 failure, got %d", failures)
	}
	if lastFailed.Load() != 1 {
		t.Errorf("Progress reported %d failures, want 1", lastFailed.Load())
	}
}

func TestPoolContextCancellation(t *testing.T) {
	provider := &mockProvider{delay: 20 * time.Millisecond}

	pool := New(Config{
		Workers:  1,
		Provider: provider.provide,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{Lat: 50, Lon: i}
	}

	results := pool.Run(ctx, tasks)

	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results even when cancelled, got %d", len(tasks), len(results))
	}

	cancelled := 0
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Error("Expected at least one cancelled task")
	}
}
