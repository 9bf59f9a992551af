// Package sync tracks entity changes that have not reached the remote
// document store and replays them when connectivity returns.
package sync

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/Jslock56/competehq/internal/localstore"
)

type Op string

const (
	OpSave   Op = "save"
	OpDelete Op = "delete"
)

// Change is one queued write. TeamID and GameID are captured at queue time
// so a replay can rebuild the remote document without decoding the payload
// per kind.
type Change struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Op       Op     `json:"op"`
	TeamID   string `json:"teamId,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	QueuedAt int64  `json:"queuedAt"`
}

func (c Change) key() string { return c.Kind + ":" + c.ID }

// Tracker persists the pending-change map in the local store, so queued
// writes survive process restarts. One change per entity: a later write to
// the same entity replaces the earlier one, the latest local state is what
// would be pushed anyway.
type Tracker struct {
	mu    sync.Mutex
	store localstore.Store

	now func() int64
}

func NewTracker(store localstore.Store) *Tracker {
	return &Tracker{store: store, now: nowMillis}
}

func (t *Tracker) Mark(ctx context.Context, change Change) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending, err := t.load(ctx)
	if err != nil {
		return err
	}

	change.QueuedAt = t.now()
	pending[change.key()] = change
	return t.persist(ctx, pending)
}

// Clear drops the pending entry for kind+id if present.
func (t *Tracker) Clear(ctx context.Context, kind, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending, err := t.load(ctx)
	if err != nil {
		return err
	}

	key := kind + ":" + id
	if _, ok := pending[key]; !ok {
		return nil
	}
	delete(pending, key)
	return t.persist(ctx, pending)
}

// Snapshot returns the queued changes ordered by queue time.
func (t *Tracker) Snapshot(ctx context.Context) ([]Change, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Change, 0, len(pending))
	for _, change := range pending {
		out = append(out, change)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QueuedAt != out[j].QueuedAt {
			return out[i].QueuedAt < out[j].QueuedAt
		}
		return out[i].key() < out[j].key()
	})
	return out, nil
}

func (t *Tracker) Count(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending, err := t.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (t *Tracker) CountByKind(ctx context.Context) (map[string]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, change := range pending {
		counts[change.Kind]++
	}
	return counts, nil
}

// load is called with the mutex held.
func (t *Tracker) load(ctx context.Context) (map[string]Change, error) {
	raw, ok, err := t.store.Get(ctx, localstore.PendingKey)
	if err != nil {
		return nil, fmt.Errorf("load pending changes: %w", err)
	}
	if !ok || len(raw) == 0 {
		return make(map[string]Change), nil
	}

	var pending map[string]Change
	if err := sonic.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("decode pending changes: %w", err)
	}
	return pending, nil
}

// persist is called with the mutex held.
func (t *Tracker) persist(ctx context.Context, pending map[string]Change) error {
	raw, err := sonic.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending changes: %w", err)
	}
	if err := t.store.Set(ctx, localstore.PendingKey, raw); err != nil {
		return fmt.Errorf("persist pending changes: %w", err)
	}
	return nil
}
