package status

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/multierr"

	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/metrics"
)

const publishTask = "status_refresh"

type snapshotWriter interface {
	Save(ctx context.Context, ev Evaluation) error
}

// PublisherParams configure a Publisher.
type PublisherParams struct {
	Logger    *logger.Logger
	Snapshots snapshotWriter
	Lock      Lock
	Worker    *metrics.WorkerMetrics
	Gauge     *metrics.StatusMetrics
}

// Publisher is the watcher consumer used by the status worker. It writes
// snapshots under a cross-replica lock and exports verdict counts.
type Publisher struct {
	logg      *logger.Logger
	snapshots snapshotWriter
	lock      Lock
	worker    *metrics.WorkerMetrics
	gauge     *metrics.StatusMetrics
}

func NewPublisher(params PublisherParams) (*Publisher, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	return &Publisher{
		logg:      params.Logger,
		snapshots: params.Snapshots,
		lock:      params.Lock,
		worker:    params.Worker,
		gauge:     params.Gauge,
	}, nil
}

// Publish satisfies Consumer.
func (p *Publisher) Publish(ctx context.Context, evaluations []Evaluation) error {
	locked, err := p.lock.Acquire(ctx)
	if err != nil {
		p.worker.IncFailure(publishTask)
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		p.logg.Info(ctx, "another status worker holds the lock; skipping this cycle")
		p.worker.IncSkipped(publishTask)
		return nil
	}
	defer func() {
		if relErr := p.lock.Release(ctx); relErr != nil {
			p.logg.Error(ctx, "failed to release status lock", relErr)
		}
	}()

	start := time.Now()
	var errs error
	for _, ev := range evaluations {
		if err := p.snapshots.Save(ctx, ev); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("restaurant %s: %w", ev.ID, err))
		}
	}
	duration := time.Since(start)
	p.worker.ObserveDuration(publishTask, duration)
	p.gauge.Set(countVerdicts(evaluations))

	ctx = p.logg.WithFields(ctx, map[string]any{
		"event":       "status.publish",
		"restaurants": len(evaluations),
		"duration_ms": duration.Milliseconds(),
	})
	if errs != nil {
		p.worker.IncFailure(publishTask)
		return errs
	}
	p.worker.IncSuccess(publishTask)
	p.logg.Info(ctx, "status snapshots published")
	return nil
}

func countVerdicts(evaluations []Evaluation) []metrics.StatusCount {
	type key struct{ verdict, reason string }
	counts := map[key]int{}
	for _, ev := range evaluations {
		counts[key{ev.Result.Verdict.String(), ev.Result.Reason.String()}]++
	}
	out := make([]metrics.StatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, metrics.StatusCount{Verdict: k.verdict, Reason: k.reason, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Verdict != out[j].Verdict {
			return out[i].Verdict < out[j].Verdict
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
