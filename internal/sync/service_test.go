package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/Jslock56/competehq/internal/domain/game"
	"github.com/Jslock56/competehq/internal/localstore"
	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/remote"
)

func newTestService(t *testing.T) (*Service, *remote.Memory, *localstore.Memory, *Tracker) {
	t.Helper()

	local := localstore.NewMemory()
	remoteClient := remote.NewMemory()
	tracker := NewTracker(local)
	s := NewService(remoteClient, local, tracker, logging.NewNop(), 2)
	return s, remoteClient, local, tracker
}

func storeGame(t *testing.T, local *localstore.Memory, id, teamID string, updated int64) {
	t.Helper()

	g := game.Game{ID: id, TeamID: teamID, Date: 1700000000000, Status: game.StatusScheduled, UpdatedAt: updated}
	raw, err := sonic.Marshal(g)
	if err != nil {
		t.Fatalf("encode game: %v", err)
	}
	key := localstore.PrimaryKey(localstore.KindGame, id)
	indexKey := localstore.TeamScopedIndexKey(localstore.KindGame, teamID)
	if err := local.PutRecord(context.Background(), key, raw, indexKey, id); err != nil {
		t.Fatalf("store game: %v", err)
	}
}

func queueSave(t *testing.T, tracker *Tracker, kind, id, teamID string) {
	t.Helper()

	if err := tracker.Mark(context.Background(), Change{Kind: kind, ID: id, Op: OpSave, TeamID: teamID}); err != nil {
		t.Fatalf("queue change: %v", err)
	}
}

func TestSyncPendingPushesQueuedChanges(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, tracker := newTestService(t)

	for _, id := range []string{"g1", "g2", "g3"} {
		storeGame(t, local, id, "t1", 100)
		queueSave(t, tracker, "game", id, "t1")
	}

	count, err := tracker.Count(ctx)
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 pending changes, got %d", count)
	}

	if !s.SyncPending(ctx) {
		t.Fatalf("expected sync to confirm all changes")
	}

	count, err = tracker.Count(ctx)
	if err != nil {
		t.Fatalf("pending count after sync: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty pending queue, got %d", count)
	}

	for _, id := range []string{"g1", "g2", "g3"} {
		doc, ok := remoteClient.Doc("game", id)
		if !ok || doc.Deleted {
			t.Fatalf("expected game %s pushed to remote", id)
		}
		if doc.UpdatedAt != 100 || doc.TeamID != "t1" {
			t.Fatalf("unexpected pushed document: %+v", doc)
		}
	}

	if s.State(ctx).LastSyncTime == 0 {
		t.Fatalf("expected last sync time recorded")
	}
}

func TestSyncPendingKeepsFailedChanges(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, tracker := newTestService(t)

	storeGame(t, local, "g1", "t1", 100)
	queueSave(t, tracker, "game", "g1", "t1")
	remoteClient.FailWith(errors.New("push rejected"))

	if s.SyncPending(ctx) {
		t.Fatalf("expected sync to report failure")
	}

	count, err := tracker.Count(ctx)
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 1 {
		t.Fatalf("failed change must stay pending, got %d", count)
	}

	state := s.State(ctx)
	if state.SyncError == "" {
		t.Fatalf("expected sync error recorded in state")
	}
	if state.PendingByKind["game"] != 1 {
		t.Fatalf("expected 1 pending game in state, got %+v", state.PendingByKind)
	}

	// Retry after the fault clears; the same queue drains.
	remoteClient.FailWith(nil)
	if !s.SyncPending(ctx) {
		t.Fatalf("expected retry to succeed")
	}
	state = s.State(ctx)
	if state.SyncError != "" {
		t.Fatalf("expected sync error cleared, got %q", state.SyncError)
	}
}

func TestSyncPendingSingleFlight(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, tracker := newTestService(t)

	storeGame(t, local, "g1", "t1", 100)
	queueSave(t, tracker, "game", "g1", "t1")

	s.syncing.Store(true)
	if s.SyncPending(ctx) {
		t.Fatalf("expected concurrent sync call to return false")
	}
	if _, ok := remoteClient.Doc("game", "g1"); ok {
		t.Fatalf("concurrent sync call must not issue remote writes")
	}
	s.syncing.Store(false)

	if !s.SyncPending(ctx) {
		t.Fatalf("expected sync to run once the slot is free")
	}
}

func TestSyncPendingReplaysDeletes(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, _, tracker := newTestService(t)

	if err := remoteClient.Put(ctx, remote.Document{Kind: "game", ID: "g1", TeamID: "t1", Payload: []byte(`{}`), UpdatedAt: 50}); err != nil {
		t.Fatalf("seed remote game: %v", err)
	}
	if err := tracker.Mark(ctx, Change{Kind: "game", ID: "g1", Op: OpDelete, TeamID: "t1"}); err != nil {
		t.Fatalf("queue delete: %v", err)
	}

	if !s.SyncPending(ctx) {
		t.Fatalf("expected delete replay to succeed")
	}

	doc, ok := remoteClient.Doc("game", "g1")
	if !ok || !doc.Deleted {
		t.Fatalf("expected remote tombstone, got %+v (present=%v)", doc, ok)
	}
}

func TestFullSyncLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, _ := newTestService(t)

	// Local g1 is newer than the remote copy; local g2 is older.
	storeGame(t, local, "g1", "t1", 200)
	storeGame(t, local, "g2", "t1", 100)

	newer, _ := sonic.Marshal(game.Game{ID: "g2", TeamID: "t1", Date: 1700000000000, Status: game.StatusCompleted, UpdatedAt: 300})
	stale, _ := sonic.Marshal(game.Game{ID: "g1", TeamID: "t1", Date: 1700000000000, Status: game.StatusCanceled, UpdatedAt: 100})
	if err := remoteClient.Put(ctx, remote.Document{Kind: "game", ID: "g1", TeamID: "t1", Payload: stale, UpdatedAt: 100}); err != nil {
		t.Fatalf("seed remote g1: %v", err)
	}
	if err := remoteClient.Put(ctx, remote.Document{Kind: "game", ID: "g2", TeamID: "t1", Payload: newer, UpdatedAt: 300}); err != nil {
		t.Fatalf("seed remote g2: %v", err)
	}

	if !s.FullSync(ctx) {
		t.Fatalf("expected full sync to succeed")
	}

	readGame := func(id string) game.Game {
		raw, ok, err := local.Get(ctx, localstore.PrimaryKey(localstore.KindGame, id))
		if err != nil || !ok {
			t.Fatalf("read local game %s: ok=%v err=%v", id, ok, err)
		}
		var g game.Game
		if err := sonic.Unmarshal(raw, &g); err != nil {
			t.Fatalf("decode local game %s: %v", id, err)
		}
		return g
	}

	if g := readGame("g1"); g.UpdatedAt != 200 {
		t.Fatalf("newer local copy must survive the pull, got %+v", g)
	}
	if g := readGame("g2"); g.UpdatedAt != 300 || g.Status != game.StatusCompleted {
		t.Fatalf("older local copy must be overwritten, got %+v", g)
	}
}

func TestFullSyncRemovesRemotelyDeletedRecords(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, _ := newTestService(t)

	storeGame(t, local, "g1", "t1", 100)
	if err := remoteClient.Delete(ctx, "game", "g1"); err != nil {
		t.Fatalf("tombstone remote game: %v", err)
	}

	if !s.FullSync(ctx) {
		t.Fatalf("expected full sync to succeed")
	}

	_, ok, err := local.Get(ctx, localstore.PrimaryKey(localstore.KindGame, "g1"))
	if err != nil {
		t.Fatalf("read local g1: %v", err)
	}
	if ok {
		t.Fatalf("expected remotely deleted game removed from local store")
	}

	ids, err := local.Index(ctx, localstore.TeamScopedIndexKey(localstore.KindGame, "t1"))
	if err != nil {
		t.Fatalf("read game index: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected index entry removed with the record, got %v", ids)
	}
}

func TestFullSyncKeepsLocalNewerThanTombstone(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, _ := newTestService(t)

	storeGame(t, local, "g1", "t1", 500)
	remoteClient.SetClock(func() int64 { return 100 })
	if err := remoteClient.Delete(ctx, "game", "g1"); err != nil {
		t.Fatalf("tombstone remote game: %v", err)
	}

	if !s.FullSync(ctx) {
		t.Fatalf("expected full sync to succeed")
	}

	_, ok, err := local.Get(ctx, localstore.PrimaryKey(localstore.KindGame, "g1"))
	if err != nil {
		t.Fatalf("read local g1: %v", err)
	}
	if !ok {
		t.Fatalf("local copy newer than the tombstone must survive the pull")
	}
}

func TestFullSyncPushesBeforePulling(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, tracker := newTestService(t)

	// A queued local edit is newer than the remote copy of the same game.
	storeGame(t, local, "g1", "t1", 500)
	queueSave(t, tracker, "game", "g1", "t1")
	stale, _ := sonic.Marshal(game.Game{ID: "g1", TeamID: "t1", Date: 1700000000000, Status: game.StatusCanceled, UpdatedAt: 100})
	if err := remoteClient.Put(ctx, remote.Document{Kind: "game", ID: "g1", TeamID: "t1", Payload: stale, UpdatedAt: 100}); err != nil {
		t.Fatalf("seed remote g1: %v", err)
	}

	if !s.FullSync(ctx) {
		t.Fatalf("expected full sync to succeed")
	}

	doc, ok := remoteClient.Doc("game", "g1")
	if !ok || doc.UpdatedAt != 500 {
		t.Fatalf("expected local edit pushed before the pull, got %+v", doc)
	}

	raw, ok, err := local.Get(ctx, localstore.PrimaryKey(localstore.KindGame, "g1"))
	if err != nil || !ok {
		t.Fatalf("read local g1: ok=%v err=%v", ok, err)
	}
	var g game.Game
	if err := sonic.Unmarshal(raw, &g); err != nil {
		t.Fatalf("decode local g1: %v", err)
	}
	if g.UpdatedAt != 500 {
		t.Fatalf("local edit was clobbered by the pull: %+v", g)
	}
}

func TestDownloadAllSeedsLocalStore(t *testing.T) {
	ctx := context.Background()
	s, remoteClient, local, _ := newTestService(t)

	for _, teamID := range []string{"t1", "t2"} {
		teamPayload, _ := sonic.Marshal(map[string]any{"id": teamID, "name": "Team " + teamID, "updatedAt": 100})
		if err := remoteClient.Put(ctx, remote.Document{Kind: "team", ID: teamID, Payload: teamPayload, UpdatedAt: 100}); err != nil {
			t.Fatalf("seed remote team %s: %v", teamID, err)
		}
		for _, gameID := range []string{teamID + "-g1", teamID + "-g2"} {
			payload, _ := sonic.Marshal(game.Game{ID: gameID, TeamID: teamID, Date: 1700000000000, Status: game.StatusScheduled, UpdatedAt: 100})
			if err := remoteClient.Put(ctx, remote.Document{Kind: "game", ID: gameID, TeamID: teamID, Payload: payload, UpdatedAt: 100}); err != nil {
				t.Fatalf("seed remote game %s: %v", gameID, err)
			}
		}
	}

	if !s.DownloadAll(ctx) {
		t.Fatalf("expected download to succeed")
	}

	teams, err := local.Index(ctx, localstore.TeamIndexKey)
	if err != nil {
		t.Fatalf("read team index: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams downloaded, got %d", len(teams))
	}

	for _, teamID := range []string{"t1", "t2"} {
		ids, err := local.Index(ctx, localstore.TeamScopedIndexKey(localstore.KindGame, teamID))
		if err != nil {
			t.Fatalf("read %s game index: %v", teamID, err)
		}
		if len(ids) != 2 {
			t.Fatalf("expected 2 games for %s, got %d", teamID, len(ids))
		}
	}
}

func TestTrackerLatestChangeWinsPerEntity(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemory()
	tracker := NewTracker(local)

	if err := tracker.Mark(ctx, Change{Kind: "game", ID: "g1", Op: OpSave, TeamID: "t1"}); err != nil {
		t.Fatalf("mark save: %v", err)
	}
	if err := tracker.Mark(ctx, Change{Kind: "game", ID: "g1", Op: OpDelete, TeamID: "t1"}); err != nil {
		t.Fatalf("mark delete: %v", err)
	}

	changes, err := tracker.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(changes) != 1 || changes[0].Op != OpDelete {
		t.Fatalf("expected a single delete entry, got %+v", changes)
	}

	if err := tracker.Clear(ctx, "game", "g1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	count, err := tracker.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty queue after clear, got %d", count)
	}
}
