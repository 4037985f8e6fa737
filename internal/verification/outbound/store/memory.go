package store

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shandysiswandi/phoneotp/internal/verification/entity"
)

// DefaultShards is used when NewMemory receives a non-positive count.
const DefaultShards = 64

type shard struct {
	mu      sync.Mutex
	entries map[string]entity.Entry
}

// Memory is a process-local store. Identifiers are spread over shards by
// xxhash and every operation holds its shard's lock for the whole
// read-check-write, which makes operations on one identifier linearizable
// while unrelated identifiers rarely contend.
type Memory struct {
	shards []*shard
}

// NewMemory returns an empty Memory store with n shards.
func NewMemory(n int) *Memory {
	if n <= 0 {
		n = DefaultShards
	}

	m := &Memory{shards: make([]*shard, n)}
	for i := range m.shards {
		m.shards[i] = &shard{entries: make(map[string]entity.Entry)}
	}
	return m
}

func (m *Memory) shardFor(identifier string) *shard {
	return m.shards[xxhash.Sum64String(identifier)%uint64(len(m.shards))]
}

// Put stores entry, replacing any previous entry for the identifier.
func (m *Memory) Put(_ context.Context, entry entity.Entry) error {
	s := m.shardFor(entry.Identifier)
	s.mu.Lock()
	s.entries[entry.Identifier] = entry
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the stored entry without checking expiry.
func (m *Memory) Get(_ context.Context, identifier string) (*entity.Entry, error) {
	s := m.shardFor(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[identifier]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &e, nil
}

// Mutate runs fn under the identifier's shard lock and applies its action.
func (m *Memory) Mutate(_ context.Context, identifier string, fn entity.MutateFunc) error {
	s := m.shardFor(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *entity.Entry
	if e, ok := s.entries[identifier]; ok {
		current = &e
	}

	action, err := fn(current)
	switch action {
	case entity.ActionSave:
		if current != nil {
			s.entries[identifier] = *current
		}
	case entity.ActionDelete:
		delete(s.entries, identifier)
	}

	return err
}

// Delete removes the identifier's entry. Deleting a missing entry is not an error.
func (m *Memory) Delete(_ context.Context, identifier string) error {
	s := m.shardFor(identifier)
	s.mu.Lock()
	delete(s.entries, identifier)
	s.mu.Unlock()
	return nil
}

// Sweep removes entries whose ExpiresAt is before now, one shard at a time.
func (m *Memory) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	for _, s := range m.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		s.mu.Lock()
		for id, e := range s.entries {
			if e.IsExpired(now) {
				delete(s.entries, id)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed, nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}
