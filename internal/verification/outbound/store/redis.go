package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/phoneotp/internal/pkg/clock"
	"github.com/shandysiswandi/phoneotp/internal/verification/entity"
)

const (
	// DefaultRedisPrefix namespaces keys as "<prefix>:<identifier>".
	DefaultRedisPrefix = "otp"

	maxTxRetries = 4
	minKeyTTL    = time.Second
	scanBatch    = 256
)

// Redis is a store shared by every instance of the service.
//
// Entries are JSON values whose key TTL follows ExpiresAt, so abandoned
// entries vanish even if no sweep runs. Mutate uses WATCH/MULTI and retries
// on contention before giving up with entity.ErrConflict.
type Redis struct {
	client *redis.Client
	prefix string
	clock  clock.Clocker
}

// NewRedis wraps client. An empty prefix falls back to DefaultRedisPrefix.
func NewRedis(client *redis.Client, prefix string, clk clock.Clocker) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Redis{client: client, prefix: prefix, clock: clk}
}

func (r *Redis) key(identifier string) string {
	return r.prefix + ":" + identifier
}

func (r *Redis) ttl(e entity.Entry) time.Duration {
	return max(e.ExpiresAt.Sub(r.clock.Now()), minKeyTTL)
}

// Put stores entry, replacing any previous entry for the identifier.
func (r *Redis) Put(ctx context.Context, entry entity.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("store: encode entry: %w", err)
	}

	if err := r.client.Set(ctx, r.key(entry.Identifier), data, r.ttl(entry)).Err(); err != nil {
		return fmt.Errorf("store: redis set: %w", err)
	}
	return nil
}

// Get returns the stored entry without checking expiry.
func (r *Redis) Get(ctx context.Context, identifier string) (*entity.Entry, error) {
	e, err := r.load(ctx, r.client, r.key(identifier))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, entity.ErrNotFound
	}
	return e, nil
}

// Mutate runs fn inside an optimistic transaction on the identifier's key.
func (r *Redis) Mutate(ctx context.Context, identifier string, fn entity.MutateFunc) error {
	_, err := r.mutateKey(ctx, r.key(identifier), fn)
	return err
}

// Delete removes the identifier's entry.
func (r *Redis) Delete(ctx context.Context, identifier string) error {
	if err := r.client.Del(ctx, r.key(identifier)).Err(); err != nil {
		return fmt.Errorf("store: redis del: %w", err)
	}
	return nil
}

// Sweep scans the prefix and deletes entries whose ExpiresAt is before now.
// Each deletion re-checks the entry under WATCH so a concurrent reissue survives.
func (r *Redis) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired := func(cur *entity.Entry) (entity.Action, error) {
		if cur != nil && cur.IsExpired(now) {
			return entity.ActionDelete, nil
		}
		return entity.ActionKeep, nil
	}

	removed := 0
	iter := r.client.Scan(ctx, 0, r.prefix+":*", scanBatch).Iterator()
	for iter.Next(ctx) {
		action, err := r.mutateKey(ctx, iter.Val(), expired)
		if err != nil {
			return removed, err
		}
		if action == entity.ActionDelete {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("store: redis scan: %w", err)
	}

	return removed, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load returns nil, nil when the key does not exist.
func (r *Redis) load(ctx context.Context, g getter, key string) (*entity.Entry, error) {
	data, err := g.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: redis get: %w", err)
	}

	var e entity.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("store: decode entry %q: %w", key, err)
	}
	return &e, nil
}

// mutateKey returns the action applied by the last successful attempt.
func (r *Redis) mutateKey(ctx context.Context, key string, fn entity.MutateFunc) (entity.Action, error) {
	for range maxTxRetries {
		var (
			action entity.Action
			fnErr  error
		)

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := r.load(ctx, tx, key)
			if err != nil {
				return err
			}

			action, fnErr = fn(current)
			if current == nil {
				return nil
			}

			switch action {
			case entity.ActionSave:
				data, err := json.Marshal(current)
				if err != nil {
					return fmt.Errorf("store: encode entry: %w", err)
				}
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, data, r.ttl(*current))
					return nil
				})
				return err
			case entity.ActionDelete:
				_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			default:
				return nil
			}
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return entity.ActionKeep, err
		}
		return action, fnErr
	}

	return entity.ActionKeep, entity.ErrConflict
}
