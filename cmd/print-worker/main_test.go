package main

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vitalcare/rxgrid/internal/observability/metrics"
	"github.com/vitalcare/rxgrid/pkg/idempotency"
)

type fakeOutbox struct {
	pendingCalls  int64
	purgeCalls    int64
	lastRetention int64
}

func (f *fakeOutbox) PendingCount(ctx context.Context) (int64, error) {
	atomic.AddInt64(&f.pendingCalls, 1)
	return 4, nil
}

func (f *fakeOutbox) CleanupProcessed(ctx context.Context, olderThan time.Duration) (int64, error) {
	atomic.StoreInt64(&f.lastRetention, int64(olderThan))
	atomic.AddInt64(&f.purgeCalls, 1)
	return 2, nil
}

type fakeInbox struct {
	expiredCalls int64
}

func (f *fakeInbox) Process(ctx context.Context, key, handler string, payload json.RawMessage, fn idempotency.HandlerFunc) (*idempotency.Outcome, error) {
	return nil, nil
}

func (f *fakeInbox) CleanupExpired(ctx context.Context) (int64, error) {
	atomic.AddInt64(&f.expiredCalls, 1)
	return 0, nil
}

func TestHousekeepPurgesProcessedOutbox(t *testing.T) {
	outbox := &fakeOutbox{}
	inbox := &fakeInbox{}
	w := &worker{inbox: inbox, metrics: metrics.New(), logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.housekeep(ctx, outbox, time.Millisecond, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&outbox.purgeCalls) == 0 ||
		atomic.LoadInt64(&outbox.pendingCalls) == 0 ||
		atomic.LoadInt64(&inbox.expiredCalls) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("housekeep did not tick: pending=%d purge=%d expired=%d",
				atomic.LoadInt64(&outbox.pendingCalls),
				atomic.LoadInt64(&outbox.purgeCalls),
				atomic.LoadInt64(&inbox.expiredCalls))
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if got := time.Duration(atomic.LoadInt64(&outbox.lastRetention)); got != processedRetention {
		t.Errorf("CleanupProcessed retention = %v, want %v", got, processedRetention)
	}
}
