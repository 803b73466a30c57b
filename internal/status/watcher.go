package status

import (
	"context"
	"fmt"
	"time"

	"github.com/forkline/storefront/pkg/logger"
)

const DefaultInterval = 60 * time.Second

// Target is one restaurant to evaluate.
type Target struct {
	ID    string
	Input Input
}

// Evaluation is the result for one target at one instant.
type Evaluation struct {
	ID          string    `json:"restaurant_id"`
	Result      Result    `json:"result"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Source returns the current inputs; it is called on every tick so changes
// are picked up without restarting the watcher.
type Source func(ctx context.Context) ([]Target, error)

// Consumer receives every batch of evaluations.
type Consumer func(ctx context.Context, evaluations []Evaluation) error

// WatcherParams configure a Watcher.
type WatcherParams struct {
	Logger   *logger.Logger
	Source   Source
	Consumer Consumer
	Interval time.Duration
	Now      func() time.Time
}

// Watcher re-evaluates restaurant status on a fixed cadence.
type Watcher struct {
	logg     *logger.Logger
	source   Source
	consumer Consumer
	interval time.Duration
	now      func() time.Time
}

func NewWatcher(params WatcherParams) (*Watcher, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("source required")
	}
	if params.Consumer == nil {
		return nil, fmt.Errorf("consumer required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Watcher{
		logg:     params.Logger,
		source:   params.Source,
		consumer: params.Consumer,
		interval: interval,
		now:      now,
	}, nil
}

// Run evaluates immediately, then once per interval until ctx is canceled.
// The ticker is released on return.
func (w *Watcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logg.Info(ctx, "status watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	if err := w.EvaluateOnce(ctx); err != nil {
		w.logg.Error(ctx, "status evaluation cycle failed", err)
	}
}

// EvaluateOnce runs a single source/evaluate/consume cycle.
func (w *Watcher) EvaluateOnce(ctx context.Context) error {
	targets, err := w.source(ctx)
	if err != nil {
		return fmt.Errorf("loading status inputs: %w", err)
	}
	now := w.now()
	evaluations := make([]Evaluation, 0, len(targets))
	for _, target := range targets {
		evaluations = append(evaluations, Evaluation{
			ID:          target.ID,
			Result:      Evaluate(target.Input, now),
			EvaluatedAt: now.UTC(),
		})
	}
	if err := w.consumer(ctx, evaluations); err != nil {
		return fmt.Errorf("publishing status results: %w", err)
	}
	return nil
}
