package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolProcessesJobs(t *testing.T) {
	var processed int64
	pool, err := New(Config{Workers: 4, QueueSize: 16}, func(ctx context.Context, job *Job) (any, error) {
		atomic.AddInt64(&processed, 1)
		return job.Payload, nil
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pool.Start()
	for i := 0; i < 10; i++ {
		if err := pool.Submit(&Job{ID: "job", Payload: i}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	pool.Stop()

	if got := atomic.LoadInt64(&processed); got != 10 {
		t.Errorf("processed %d jobs, want 10", got)
	}

	stats := pool.Stats()
	if stats.Submitted != 10 || stats.Completed != 10 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPoolResultStream(t *testing.T) {
	pool, err := New(Config{Workers: 2, QueueSize: 8}, func(ctx context.Context, job *Job) (any, error) {
		if job.ID == "bad" {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pool.Start()
	pool.Submit(&Job{ID: "good"})
	pool.Submit(&Job{ID: "bad"})
	pool.Stop()

	results := map[string]*Result{}
	for r := range pool.Results() {
		results[r.JobID] = r
	}

	if r := results["good"]; r == nil || r.Err != nil || r.Data != "ok" {
		t.Errorf("good result = %+v", r)
	}
	if r := results["bad"]; r == nil || r.Err == nil {
		t.Errorf("bad result = %+v", r)
	}
}

func TestPoolRetries(t *testing.T) {
	var attempts int64
	pool, err := New(Config{
		Workers:    1,
		QueueSize:  4,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, func(ctx context.Context, job *Job) (any, error) {
		if atomic.AddInt64(&attempts, 1) < 3 {
			return nil, errors.New("transient")
		}
		return "done", nil
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pool.Start()
	pool.Submit(&Job{ID: "retry-me"})
	pool.Stop()

	if got := atomic.LoadInt64(&attempts); got != 3 {
		t.Errorf("made %d attempts, want 3", got)
	}
	stats := pool.Stats()
	if stats.Completed != 1 || stats.Retried != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPoolQueueFull(t *testing.T) {
	block := make(chan struct{})
	pool, err := New(Config{Workers: 1, QueueSize: 1}, func(ctx context.Context, job *Job) (any, error) {
		<-block
		return nil, nil
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pool.Start()
	defer func() {
		close(block)
		pool.Stop()
	}()

	// One job occupies the worker, one fills the queue; wait for pickup so
	// the queue slot is actually free before filling it.
	if err := pool.Submit(&Job{ID: "running"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for {
		if err := pool.Submit(&Job{ID: "queued"}); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("queue never freed")
		}
		time.Sleep(time.Millisecond)
	}

	if err := pool.Submit(&Job{ID: "overflow"}); err != ErrQueueFull {
		t.Errorf("Submit = %v, want ErrQueueFull", err)
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool, err := New(Config{Workers: 1, QueueSize: 1}, func(ctx context.Context, job *Job) (any, error) {
		return nil, nil
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pool.Start()
	pool.Stop()

	if err := pool.Submit(&Job{ID: "late"}); err != ErrStopped {
		t.Errorf("Submit after Stop = %v, want ErrStopped", err)
	}
}

func TestNewRequiresWorkFunc(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Error("expected error for nil work function")
	}
}
