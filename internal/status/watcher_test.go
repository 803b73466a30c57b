package status

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/types"
)

type recordingConsumer struct {
	mu      sync.Mutex
	batches [][]Evaluation
	signal  chan struct{}
	err     error
}

func newRecordingConsumer() *recordingConsumer {
	return &recordingConsumer{signal: make(chan struct{}, 16)}
}

func (r *recordingConsumer) consume(_ context.Context, evs []Evaluation) error {
	r.mu.Lock()
	r.batches = append(r.batches, evs)
	r.mu.Unlock()
	select {
	case r.signal <- struct{}{}:
	default:
	}
	return r.err
}

func (r *recordingConsumer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for evaluation")
	}
}

func TestNewWatcherValidatesDeps(t *testing.T) {
	logg := logger.Nop()
	source := func(context.Context) ([]Target, error) { return nil, nil }
	consumer := func(context.Context, []Evaluation) error { return nil }

	if _, err := NewWatcher(WatcherParams{Source: source, Consumer: consumer}); err == nil {
		t.Fatal("expected logger required error")
	}
	if _, err := NewWatcher(WatcherParams{Logger: logg, Consumer: consumer}); err == nil {
		t.Fatal("expected source required error")
	}
	if _, err := NewWatcher(WatcherParams{Logger: logg, Source: source}); err == nil {
		t.Fatal("expected consumer required error")
	}
	w, err := NewWatcher(WatcherParams{Logger: logg, Source: source, Consumer: consumer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.interval != DefaultInterval {
		t.Fatalf("expected default interval, got %v", w.interval)
	}
}

func TestWatcherEvaluatesImmediatelyAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecordingConsumer()
	w, err := NewWatcher(WatcherParams{
		Logger: logger.Nop(),
		Source: func(context.Context) ([]Target, error) {
			return []Target{{ID: "r-1", Input: Input{ManualOpen: false}}}, nil
		},
		Consumer: rec.consume,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("construct watcher: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, rec.signal)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
	if rec.count() != 1 {
		t.Fatalf("expected a single immediate evaluation, got %d", rec.count())
	}
}

func TestWatcherPicksUpInputChangesOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	manualOpen := false
	fixed := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	schedule := everyDay(types.DayHours{Open: "09:00", Close: "17:00"})

	rec := newRecordingConsumer()
	w, err := NewWatcher(WatcherParams{
		Logger: logger.Nop(),
		Source: func(context.Context) ([]Target, error) {
			mu.Lock()
			defer mu.Unlock()
			return []Target{{ID: "r-1", Input: Input{ManualOpen: manualOpen, Schedule: schedule, TimeZone: "UTC"}}}, nil
		},
		Consumer: rec.consume,
		Interval: 10 * time.Millisecond,
		Now:      func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("construct watcher: %v", err)
	}
	go func() { _ = w.Run(ctx) }()

	waitFor(t, rec.signal)
	mu.Lock()
	manualOpen = true
	mu.Unlock()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-rec.signal:
			rec.mu.Lock()
			last := rec.batches[len(rec.batches)-1]
			rec.mu.Unlock()
			if len(last) == 1 && last[0].Result.IsOpen() {
				if !last[0].EvaluatedAt.Equal(fixed) {
					t.Fatalf("expected evaluation timestamp from clock, got %v", last[0].EvaluatedAt)
				}
				return
			}
		case <-deadline:
			t.Fatal("watcher never observed the reopened restaurant")
		}
	}
}

func TestEvaluateOnceSurfacesErrors(t *testing.T) {
	w, err := NewWatcher(WatcherParams{
		Logger:   logger.Nop(),
		Source:   func(context.Context) ([]Target, error) { return nil, errors.New("db down") },
		Consumer: func(context.Context, []Evaluation) error { return nil },
	})
	if err != nil {
		t.Fatalf("construct watcher: %v", err)
	}
	if err := w.EvaluateOnce(context.Background()); err == nil {
		t.Fatal("expected source error")
	}

	rec := newRecordingConsumer()
	rec.err = errors.New("redis down")
	w, err = NewWatcher(WatcherParams{
		Logger:   logger.Nop(),
		Source:   func(context.Context) ([]Target, error) { return []Target{{ID: "a"}}, nil },
		Consumer: rec.consume,
	})
	if err != nil {
		t.Fatalf("construct watcher: %v", err)
	}
	if err := w.EvaluateOnce(context.Background()); err == nil {
		t.Fatal("expected consumer error")
	}
}
