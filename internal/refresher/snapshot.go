package refresher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gsm-perf/performance/backend/internal/report"
	"github.com/redis/go-redis/v9"
)

const OverviewKey = "overview:global"

var ErrNoSnapshot = errors.New("aucun instantané")

// maxWatchAttempts borne les relances d'une transaction WATCH interrompue.
const maxWatchAttempts = 3

// shouldReplace : un instantané n'en remplace un autre que s'il a été lancé après lui.
func shouldReplace(current, next *report.Overview) bool {
	if current == nil {
		return true
	}
	return !next.ComputedAt.Before(current.ComputedAt)
}

type RedisSnapshots struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSnapshots(rdb *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{rdb: rdb, ttl: ttl}
}

func (s *RedisSnapshots) Load(ctx context.Context) (*report.Overview, error) {
	raw, err := s.rdb.Get(ctx, OverviewKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	overview := &report.Overview{}
	if err := json.Unmarshal(raw, overview); err != nil {
		return nil, err
	}
	return overview, nil
}

// Save écrit l'instantané sauf si la clé en contient un plus récent. La lecture et l'écriture
// sont liées par WATCH : une écriture concurrente annule la transaction, qui est rejouée.
func (s *RedisSnapshots) Save(ctx context.Context, overview *report.Overview) (bool, error) {
	payload, err := json.Marshal(overview)
	if err != nil {
		return false, err
	}

	var stored bool
	txf := func(tx *redis.Tx) error {
		stored = false

		raw, err := tx.Get(ctx, OverviewKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			current := &report.Overview{}
			if json.Unmarshal(raw, current) == nil && !shouldReplace(current, overview) {
				return nil
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, OverviewKey, payload, s.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}

	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, OverviewKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return stored, err
	}
	return false, redis.TxFailedErr
}
