package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"

	"github.com/Jslock56/competehq/internal/localstore"
	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/remote"
)

// Snapshot is a point-in-time view of sync state for status surfaces.
// PendingByKind is a per-entity-kind count so callers can explain what is
// unsynced, not just how much.
type Snapshot struct {
	LastSyncTime  int64          `json:"lastSyncTime"`
	IsSyncing     bool           `json:"isSyncing"`
	SyncError     string         `json:"syncError,omitempty"`
	PendingByKind map[string]int `json:"pendingChanges"`
}

// Service replays queued local changes against the remote store and pulls
// remote state down. All sync entry points share one in-flight slot: a
// call that finds a sync already running returns false without doing
// any remote work.
type Service struct {
	remote  remote.Client
	local   localstore.Store
	tracker *Tracker
	log     *logging.Logger
	workers int

	syncing atomic.Bool

	mu       sync.Mutex
	lastSync int64
	lastErr  error

	now func() int64
}

func NewService(remoteClient remote.Client, local localstore.Store, tracker *Tracker, log *logging.Logger, workers int) *Service {
	if workers < 1 {
		workers = 4
	}

	return &Service{
		remote:  remoteClient,
		local:   local,
		tracker: tracker,
		log:     log,
		workers: workers,
		now:     nowMillis,
	}
}

func (s *Service) Tracker() *Tracker { return s.tracker }

func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.tracker.Count(ctx)
}

func (s *Service) State(ctx context.Context) Snapshot {
	counts, err := s.tracker.CountByKind(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "pending count read failed", "error", err)
		counts = map[string]int{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		LastSyncTime:  s.lastSync,
		IsSyncing:     s.syncing.Load(),
		PendingByKind: counts,
	}
	if s.lastErr != nil {
		snap.SyncError = s.lastErr.Error()
	}
	return snap
}

// SyncPending pushes every queued change to the remote store. A change is
// cleared only after its remote write is confirmed; failures stay queued
// for the next call. Returns true only when everything was confirmed.
func (s *Service) SyncPending(ctx context.Context) bool {
	if !s.syncing.CompareAndSwap(false, true) {
		return false
	}
	defer s.syncing.Store(false)

	ctx, span := startSyncSpan(ctx, "sync.SyncPending")
	defer span.End()

	err := s.pushPending(ctx)
	s.finish(ctx, err)
	return err == nil
}

// FullSync pushes pending changes first, then pulls all remote state into
// the local store with last-write-wins. Push-first ordering keeps a local
// edit made just before the sync from being clobbered by the stale remote
// copy it has not replaced yet.
func (s *Service) FullSync(ctx context.Context) bool {
	if !s.syncing.CompareAndSwap(false, true) {
		return false
	}
	defer s.syncing.Store(false)

	ctx, span := startSyncSpan(ctx, "sync.FullSync")
	defer span.End()

	pushErr := s.pushPending(ctx)
	pullErr := s.pullAll(ctx)

	err := pushErr
	if err == nil {
		err = pullErr
	}
	s.finish(ctx, err)
	return err == nil
}

// DownloadAll seeds the local store from remote state without pushing
// anything. Per-team pulls fan out over a bounded worker pool.
func (s *Service) DownloadAll(ctx context.Context) bool {
	if !s.syncing.CompareAndSwap(false, true) {
		return false
	}
	defer s.syncing.Store(false)

	ctx, span := startSyncSpan(ctx, "sync.DownloadAll")
	defer span.End()

	err := s.downloadAll(ctx)
	s.finish(ctx, err)
	return err == nil
}

func (s *Service) pushPending(ctx context.Context) error {
	changes, err := s.tracker.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	var firstErr error
	failed := 0
	for _, change := range changes {
		if err := s.replay(ctx, change); err != nil {
			s.log.WarnContext(ctx, "pending change push failed", "kind", change.Kind, "id", change.ID, "op", change.Op, "error", err)
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.tracker.Clear(ctx, change.Kind, change.ID); err != nil {
			s.log.ErrorContext(ctx, "clear pending change failed", "kind", change.Kind, "id", change.ID, "error", err)
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("%d of %d pending changes failed: %w", failed, len(changes), firstErr)
	}
	s.log.InfoContext(ctx, "pending changes pushed", "count", len(changes))
	return nil
}

// replay pushes one queued change. A queued save whose local record has
// since vanished is replayed as a delete so the stores still converge.
func (s *Service) replay(ctx context.Context, change Change) error {
	switch change.Op {
	case OpDelete:
		return s.remote.Delete(ctx, change.Kind, change.ID)
	case OpSave:
		raw, ok, err := s.local.Get(ctx, localKeyFor(change))
		if err != nil {
			return fmt.Errorf("read local record: %w", err)
		}
		if !ok {
			return s.remote.Delete(ctx, change.Kind, change.ID)
		}

		var stamp struct {
			UpdatedAt int64 `json:"updatedAt"`
		}
		if err := sonic.Unmarshal(raw, &stamp); err != nil {
			return fmt.Errorf("decode local record: %w", err)
		}

		return s.remote.Put(ctx, remote.Document{
			Kind:      change.Kind,
			ID:        change.ID,
			TeamID:    change.TeamID,
			GameID:    change.GameID,
			Payload:   raw,
			UpdatedAt: stamp.UpdatedAt,
		})
	default:
		return fmt.Errorf("unknown pending op %q", change.Op)
	}
}

func (s *Service) pullAll(ctx context.Context) error {
	for _, kind := range localstore.Kinds() {
		docs, err := s.remote.ListKindWithDeleted(ctx, string(kind))
		if err != nil {
			return fmt.Errorf("pull %s: %w", kind, err)
		}
		for _, doc := range docs {
			if err := s.applyDocument(ctx, kind, doc); err != nil {
				return fmt.Errorf("apply pulled %s %s: %w", kind, doc.ID, err)
			}
		}
	}

	return s.pullSettings(ctx)
}

func (s *Service) downloadAll(ctx context.Context) error {
	teamDocs, err := s.remote.ListKindWithDeleted(ctx, string(localstore.KindTeam))
	if err != nil {
		return fmt.Errorf("pull teams: %w", err)
	}
	for _, doc := range teamDocs {
		if err := s.applyDocument(ctx, localstore.KindTeam, doc); err != nil {
			return fmt.Errorf("apply pulled team %s: %w", doc.ID, err)
		}
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("start download pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var failed atomic.Bool
	for _, doc := range teamDocs {
		if doc.Deleted {
			continue
		}
		teamID := doc.ID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.pullTeam(ctx, teamID); err != nil {
				s.log.WarnContext(ctx, "team download failed", "teamId", teamID, "error", err)
				failed.Store(true)
			}
		})
		if submitErr != nil {
			wg.Done()
			s.log.ErrorContext(ctx, "download pool submit failed", "teamId", teamID, "error", submitErr)
			failed.Store(true)
		}
	}
	wg.Wait()

	if err := s.pullSettings(ctx); err != nil {
		return err
	}
	if failed.Load() {
		return errors.New("one or more team downloads failed")
	}

	s.log.InfoContext(ctx, "download complete", "teams", len(teamDocs))
	return nil
}

func (s *Service) pullTeam(ctx context.Context, teamID string) error {
	for _, kind := range localstore.Kinds() {
		if kind == localstore.KindTeam {
			continue
		}
		docs, err := s.remote.ListByTeamWithDeleted(ctx, string(kind), teamID)
		if err != nil {
			return fmt.Errorf("pull %s: %w", kind, err)
		}
		for _, doc := range docs {
			if err := s.applyDocument(ctx, kind, doc); err != nil {
				return fmt.Errorf("apply pulled %s %s: %w", kind, doc.ID, err)
			}
		}
	}
	return nil
}

// applyDocument reconciles one pulled document into the local store with
// last-write-wins. The local copy survives when it is at least as new;
// otherwise a live document overwrites it and a tombstone removes it.
func (s *Service) applyDocument(ctx context.Context, kind localstore.Kind, doc remote.Document) error {
	key := localstore.PrimaryKey(kind, doc.ID)

	var stamp struct {
		UpdatedAt int64  `json:"updatedAt"`
		TeamID    string `json:"teamId"`
	}
	raw, ok, err := s.local.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		if err := sonic.Unmarshal(raw, &stamp); err == nil && stamp.UpdatedAt >= doc.UpdatedAt {
			return nil
		}
	}

	if doc.Deleted {
		if !ok {
			return nil
		}
		// A tombstone written before the record ever synced carries no
		// team id; fall back to the local copy's so the index entry goes too.
		teamID := doc.TeamID
		if teamID == "" {
			teamID = stamp.TeamID
		}
		return s.local.DeleteRecord(ctx, key, localstore.IndexKeyFor(kind, teamID), doc.ID)
	}

	return s.local.PutRecord(ctx, key, doc.Payload, localstore.IndexKeyFor(kind, doc.TeamID), doc.ID)
}

func (s *Service) pullSettings(ctx context.Context) error {
	doc, err := s.remote.Get(ctx, localstore.SettingsKey, localstore.SettingsKey)
	if errors.Is(err, remote.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pull settings: %w", err)
	}

	raw, ok, err := s.local.Get(ctx, localstore.SettingsKey)
	if err != nil {
		return err
	}
	if ok {
		var stamp struct {
			UpdatedAt int64 `json:"updatedAt"`
		}
		if err := sonic.Unmarshal(raw, &stamp); err == nil && stamp.UpdatedAt >= doc.UpdatedAt {
			return nil
		}
	}

	return s.local.Set(ctx, localstore.SettingsKey, doc.Payload)
}

func (s *Service) finish(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		s.log.WarnContext(ctx, "sync finished with errors", "error", err)
		return
	}
	s.lastErr = nil
	s.lastSync = s.now()
}

func localKeyFor(change Change) string {
	if change.Kind == localstore.SettingsKey {
		return localstore.SettingsKey
	}
	return localstore.PrimaryKey(localstore.Kind(change.Kind), change.ID)
}

func nowMillis() int64 { return time.Now().UnixMilli() }
