package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forkline/storefront/pkg/redis"
)

type snapshotKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	StatusKey(restaurantID string) string
}

// SnapshotStore caches the latest Evaluation per restaurant in Redis.
type SnapshotStore struct {
	kv  snapshotKV
	ttl time.Duration
}

func NewSnapshotStore(kv snapshotKV, ttl time.Duration) (*SnapshotStore, error) {
	if kv == nil {
		return nil, errors.New("redis client required for snapshots")
	}
	return &SnapshotStore{kv: kv, ttl: ttl}, nil
}

// Save writes one snapshot.
func (s *SnapshotStore) Save(ctx context.Context, ev Evaluation) error {
	if ev.ID == "" {
		return errors.New("snapshot restaurant id required")
	}
	buf, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.StatusKey(ev.ID), string(buf), s.ttl); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Get returns the cached snapshot. The bool is false when none exists or the
// stored payload cannot be decoded.
func (s *SnapshotStore) Get(ctx context.Context, restaurantID string) (Evaluation, bool, error) {
	raw, err := s.kv.Get(ctx, s.kv.StatusKey(restaurantID))
	if err != nil {
		if redis.IsNil(err) {
			return Evaluation{}, false, nil
		}
		return Evaluation{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	var ev Evaluation
	if err := json.Unmarshal([]byte(raw), &ev); err != nil || ev.ID != restaurantID {
		return Evaluation{}, false, nil
	}
	return ev, true, nil
}
