package status

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/forkline/storefront/pkg/enums"
	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/metrics"
)

type fakeKV struct {
	data   map[string]string
	setErr error
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeKV) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) StatusKey(id string) string { return "fl:status:" + id }

func TestRedisLockOwnership(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	a, err := NewRedisLock(kv, "fl:lock:status", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	b, _ := NewRedisLock(kv, "fl:lock:status", time.Minute)

	if ok, err := a.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected a to acquire, ok=%v err=%v", ok, err)
	}
	if ok, _ := b.Acquire(ctx); ok {
		t.Fatal("b should not acquire a held lock")
	}
	if err := b.Release(ctx); err != nil {
		t.Fatalf("release by non-owner should be a no-op: %v", err)
	}
	if _, held := kv.data["fl:lock:status"]; !held {
		t.Fatal("non-owner release must not delete the lock")
	}
	if err := a.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if ok, _ := b.Acquire(ctx); !ok {
		t.Fatal("b should acquire after release")
	}

	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatal("expected error without client")
	}
	if _, err := NewRedisLock(kv, "", 0); err == nil {
		t.Fatal("expected error without key")
	}
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, err := NewSnapshotStore(kv, time.Minute)
	if err != nil {
		t.Fatalf("construct store: %v", err)
	}

	if _, ok, err := store.Get(ctx, "r-1"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	ev := Evaluation{
		ID:          "r-1",
		Result:      Result{Verdict: enums.StatusVerdictClosed, Reason: enums.ClosedReasonOutsideHours, NextOpeningHint: "Tomorrow at 09:00"},
		EvaluatedAt: time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, ev); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, ok, err := store.Get(ctx, "r-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Result != ev.Result || !got.EvaluatedAt.Equal(ev.EvaluatedAt) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, ev)
	}

	kv.data["fl:status:r-2"] = "{not json"
	if _, ok, err := store.Get(ctx, "r-2"); err != nil || ok {
		t.Fatalf("corrupt snapshot should read as a miss, ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, Evaluation{}); err == nil {
		t.Fatal("expected error for snapshot without id")
	}
}

func TestPublisherWritesSnapshotsUnderLock(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, _ := NewSnapshotStore(kv, time.Minute)
	lock, _ := NewRedisLock(kv, "fl:lock:status", time.Minute)
	reg := prometheus.NewRegistry()

	pub, err := NewPublisher(PublisherParams{
		Logger:    logger.Nop(),
		Snapshots: store,
		Lock:      lock,
		Worker:    metrics.NewWorkerMetrics(reg),
		Gauge:     metrics.NewStatusMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct publisher: %v", err)
	}

	evs := []Evaluation{
		{ID: "a", Result: openResult()},
		{ID: "b", Result: closedResult(enums.ClosedReasonNoHours, "")},
		{ID: "c", Result: openResult()},
	}
	if err := pub.Publish(ctx, evs); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, ok := kv.data["fl:status:"+id]; !ok {
			t.Fatalf("missing snapshot for %s", id)
		}
	}
	if _, held := kv.data["fl:lock:status"]; held {
		t.Fatal("lock should be released after publishing")
	}

	counts := countVerdicts(evs)
	if len(counts) != 2 || counts[0].Verdict != "closed" || counts[1].Count != 2 {
		t.Fatalf("unexpected verdict counts %+v", counts)
	}
}

func TestPublisherSkipsWhenLockHeld(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data["fl:lock:status"] = "other-replica"
	store, _ := NewSnapshotStore(kv, time.Minute)
	lock, _ := NewRedisLock(kv, "fl:lock:status", time.Minute)

	pub, err := NewPublisher(PublisherParams{Logger: logger.Nop(), Snapshots: store, Lock: lock})
	if err != nil {
		t.Fatalf("construct publisher: %v", err)
	}
	if err := pub.Publish(ctx, []Evaluation{{ID: "a", Result: openResult()}}); err != nil {
		t.Fatalf("skip should not error: %v", err)
	}
	if _, ok := kv.data["fl:status:a"]; ok {
		t.Fatal("snapshot written without holding the lock")
	}
}

func TestPublisherAggregatesWriteFailures(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, _ := NewSnapshotStore(kv, time.Minute)
	lock, _ := NewRedisLock(newFakeKV(), "fl:lock:status", time.Minute)
	kv.setErr = errors.New("OOM command not allowed")

	pub, _ := NewPublisher(PublisherParams{Logger: logger.Nop(), Snapshots: store, Lock: lock})
	err := pub.Publish(ctx, []Evaluation{{ID: "a"}, {ID: "b"}})
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 aggregated errors, got %d", got)
	}
}
