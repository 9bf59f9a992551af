package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jslock56/competehq/internal/domain/game"
	"github.com/Jslock56/competehq/internal/domain/lineup"
	"github.com/Jslock56/competehq/internal/domain/settings"
	"github.com/Jslock56/competehq/internal/domain/team"
	"github.com/Jslock56/competehq/internal/localstore"
	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/remote"
	"github.com/Jslock56/competehq/internal/sync"
)

func newTestAdapter(t *testing.T) (*Adapter, *remote.Memory, *localstore.Memory, *sync.Tracker) {
	t.Helper()

	local := localstore.NewMemory()
	remoteClient := remote.NewMemory()
	tracker := sync.NewTracker(local)
	a := New(remoteClient, local, tracker, logging.NewNop())
	return a, remoteClient, local, tracker
}

func makeGame(id, teamID string, date, updated int64) game.Game {
	return game.Game{
		ID:        id,
		TeamID:    teamID,
		Opponent:  "Visitors",
		Date:      date,
		Innings:   6,
		Status:    game.StatusScheduled,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestSaveAndGetOffline(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, tracker := newTestAdapter(t)
	remoteClient.SetConnected(false)

	g1 := makeGame("g1", "t1", 1700000000000, 100)
	if !a.SaveGame(ctx, g1) {
		t.Fatalf("expected offline save to succeed")
	}

	got, err := a.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get game after offline save: %v", err)
	}
	if got.ID != "g1" || got.TeamID != "t1" || got.Status != game.StatusScheduled {
		t.Fatalf("unexpected game after offline save: %+v", got)
	}

	count, err := tracker.Count(ctx)
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 pending change, got %d", count)
	}
}

func TestGetFallsBackWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)

	remoteClient.SetConnected(false)
	g1 := makeGame("g1", "t1", 1700000000000, 100)
	if !a.SaveGame(ctx, g1) {
		t.Fatalf("expected offline save to succeed")
	}

	remoteClient.SetConnected(true)
	remoteClient.FailWith(errors.New("remote exploded"))

	got, err := a.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("expected fallback read to succeed, got %v", err)
	}
	if got.ID != "g1" {
		t.Fatalf("unexpected game from fallback: %+v", got)
	}
}

func TestSaveReturnsTrueWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, tracker := newTestAdapter(t)
	remoteClient.FailWith(errors.New("remote write rejected"))

	g2 := makeGame("g2", "t1", 1700000000000, 100)
	if !a.SaveGame(ctx, g2) {
		t.Fatalf("expected save to succeed on local write alone")
	}

	count, err := tracker.Count(ctx)
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected g2 queued as pending, got %d entries", count)
	}
}

func TestConfirmedRemoteSaveLeavesNothingPending(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, tracker := newTestAdapter(t)

	g1 := makeGame("g1", "t1", 1700000000000, 100)
	if !a.SaveGame(ctx, g1) {
		t.Fatalf("expected save to succeed")
	}

	if _, ok := remoteClient.Doc("game", "g1"); !ok {
		t.Fatalf("expected game mirrored to remote store")
	}
	count, err := tracker.Count(ctx)
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no pending changes, got %d", count)
	}
}

func TestTeamScopedGameIndexes(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)
	remoteClient.SetConnected(false)

	for i, id := range []string{"g1", "g2", "g3"} {
		if !a.SaveGame(ctx, makeGame(id, "t1", int64(1700000000000+i), 100)) {
			t.Fatalf("save t1 game %s failed", id)
		}
	}
	for i, id := range []string{"g4", "g5", "g6"} {
		if !a.SaveGame(ctx, makeGame(id, "t2", int64(1700000000000+i), 100)) {
			t.Fatalf("save t2 game %s failed", id)
		}
	}

	t1Games, err := a.ListGamesByTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("list t1 games: %v", err)
	}
	if len(t1Games) != 3 {
		t.Fatalf("expected 3 games for t1, got %d", len(t1Games))
	}
	for _, g := range t1Games {
		if g.TeamID != "t1" {
			t.Fatalf("game %s leaked into t1 listing", g.ID)
		}
	}

	if !a.DeleteTeam(ctx, "t1") {
		t.Fatalf("delete team t1 failed")
	}

	t2Games, err := a.ListGamesByTeam(ctx, "t2")
	if err != nil {
		t.Fatalf("list t2 games after t1 delete: %v", err)
	}
	if len(t2Games) != 3 {
		t.Fatalf("expected t2 games untouched, got %d", len(t2Games))
	}
}

func TestLineupDeleteDoesNotClearGameReference(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)
	remoteClient.SetConnected(false)

	g1 := makeGame("g1", "t1", 1700000000000, 100)
	if !a.SaveGame(ctx, g1) {
		t.Fatalf("save game failed")
	}

	l1 := lineup.Lineup{ID: "l1", TeamID: "t1", GameID: "g1", CreatedAt: 100, UpdatedAt: 100}
	if !a.SaveLineup(ctx, l1) {
		t.Fatalf("save lineup failed")
	}

	g1.LineupID = "l1"
	g1.UpdatedAt = 101
	if !a.SaveGame(ctx, g1) {
		t.Fatalf("save game with lineup reference failed")
	}

	if !a.DeleteLineup(ctx, "t1", "l1") {
		t.Fatalf("delete lineup failed")
	}

	got, err := a.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get game after lineup delete: %v", err)
	}
	if got.LineupID != "l1" {
		t.Fatalf("expected game to keep lineupId, got %q", got.LineupID)
	}
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	a, _, _, tracker := newTestAdapter(t)

	if a.SaveGame(ctx, game.Game{ID: "g1", Status: game.StatusScheduled}) {
		t.Fatalf("expected save of invalid game to fail")
	}

	count, err := tracker.Count(ctx)
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected save must not queue a pending change, got %d", count)
	}
}

func TestSaveFailsWhenLocalWriteFails(t *testing.T) {
	ctx := context.Background()
	a, _, local, _ := newTestAdapter(t)
	local.FailWrites(true)

	if a.SaveGame(ctx, makeGame("g1", "t1", 1700000000000, 100)) {
		t.Fatalf("expected save to fail when the local write fails")
	}
}

func TestGoOfflineForcesLocalRouting(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)

	payload := []byte(`{"id":"t9","name":"Remote Only","updatedAt":100}`)
	if err := remoteClient.Put(ctx, remote.Document{Kind: "team", ID: "t9", Payload: payload, UpdatedAt: 100}); err != nil {
		t.Fatalf("seed remote team: %v", err)
	}

	a.GoOffline(ctx)
	if a.IsOnline(ctx) {
		t.Fatalf("expected offline after GoOffline")
	}
	if _, err := a.GetTeam(ctx, "t9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected local not-found while forced offline, got %v", err)
	}

	if !a.GoOnline(ctx) {
		t.Fatalf("expected GoOnline to reconnect")
	}
	got, err := a.GetTeam(ctx, "t9")
	if err != nil {
		t.Fatalf("get team after GoOnline: %v", err)
	}
	if got.Name != "Remote Only" {
		t.Fatalf("unexpected team after GoOnline: %+v", got)
	}
}

func TestRemoteReadMirrorsIntoLocalStore(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)

	payload := []byte(`{"id":"t1","name":"Falcons","updatedAt":500}`)
	if err := remoteClient.Put(ctx, remote.Document{Kind: "team", ID: "t1", Payload: payload, UpdatedAt: 500}); err != nil {
		t.Fatalf("seed remote team: %v", err)
	}

	if _, err := a.GetTeam(ctx, "t1"); err != nil {
		t.Fatalf("online read: %v", err)
	}

	remoteClient.SetConnected(false)
	got, err := a.GetTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("expected mirrored copy to serve offline read, got %v", err)
	}
	if got.Name != "Falcons" {
		t.Fatalf("unexpected mirrored team: %+v", got)
	}
}

func TestMirrorKeepsNewerLocalCopy(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)

	remoteClient.SetConnected(false)
	local := team.Team{ID: "t1", Name: "Edited Offline", UpdatedAt: 900}
	if !a.SaveTeam(ctx, local) {
		t.Fatalf("offline save failed")
	}

	remoteClient.SetConnected(true)
	stale := []byte(`{"id":"t1","name":"Stale Remote","updatedAt":100}`)
	if err := remoteClient.Put(ctx, remote.Document{Kind: "team", ID: "t1", Payload: stale, UpdatedAt: 100}); err != nil {
		t.Fatalf("seed remote team: %v", err)
	}

	// Online read serves the remote result but must not overwrite the
	// newer unsynced local copy.
	if _, err := a.GetTeam(ctx, "t1"); err != nil {
		t.Fatalf("online read: %v", err)
	}

	remoteClient.SetConnected(false)
	got, err := a.GetTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("local read after mirror attempt: %v", err)
	}
	if got.Name != "Edited Offline" || got.UpdatedAt != 900 {
		t.Fatalf("newer local copy was clobbered: %+v", got)
	}
}

func TestUpcomingAndPastGames(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)
	remoteClient.SetConnected(false)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	past := makeGame("g1", "t1", now.Add(-48*time.Hour).UnixMilli(), 100)
	soon := makeGame("g2", "t1", now.Add(24*time.Hour).UnixMilli(), 100)
	later := makeGame("g3", "t1", now.Add(72*time.Hour).UnixMilli(), 100)
	for _, g := range []game.Game{later, past, soon} {
		if !a.SaveGame(ctx, g) {
			t.Fatalf("save game %s failed", g.ID)
		}
	}

	upcoming, err := a.UpcomingGames(ctx, "t1")
	if err != nil {
		t.Fatalf("upcoming games: %v", err)
	}
	if len(upcoming) != 2 || upcoming[0].ID != "g2" || upcoming[1].ID != "g3" {
		t.Fatalf("unexpected upcoming games: %+v", upcoming)
	}

	pastGames, err := a.PastGames(ctx, "t1")
	if err != nil {
		t.Fatalf("past games: %v", err)
	}
	if len(pastGames) != 1 || pastGames[0].ID != "g1" {
		t.Fatalf("unexpected past games: %+v", pastGames)
	}
}

func TestDefaultLineupManagement(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)
	remoteClient.SetConnected(false)

	first := lineup.Lineup{ID: "l1", TeamID: "t1", IsDefault: true, UpdatedAt: 100}
	second := lineup.Lineup{ID: "l2", TeamID: "t1", UpdatedAt: 100}
	gameLineup := lineup.Lineup{ID: "l3", TeamID: "t1", GameID: "g1", UpdatedAt: 100}
	for _, l := range []lineup.Lineup{first, second, gameLineup} {
		if !a.SaveLineup(ctx, l) {
			t.Fatalf("save lineup %s failed", l.ID)
		}
	}

	if !a.SetDefaultLineup(ctx, "t1", "l2") {
		t.Fatalf("set default lineup failed")
	}

	def, err := a.DefaultLineupForTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("default lineup: %v", err)
	}
	if def.ID != "l2" {
		t.Fatalf("expected l2 as default, got %s", def.ID)
	}

	templates, err := a.NonGameLineupsByTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("non-game lineups: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}

	if a.SetDefaultLineup(ctx, "t1", "l3") {
		t.Fatalf("game lineup must not become the team default")
	}
}

func TestGetLineupByGameOffline(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)
	remoteClient.SetConnected(false)

	l1 := lineup.Lineup{ID: "l1", TeamID: "t1", GameID: "g1", UpdatedAt: 100}
	if !a.SaveLineup(ctx, l1) {
		t.Fatalf("save lineup failed")
	}

	got, err := a.GetLineupByGame(ctx, "t1", "g1")
	if err != nil {
		t.Fatalf("get lineup by game: %v", err)
	}
	if got.ID != "l1" {
		t.Fatalf("unexpected lineup: %+v", got)
	}

	if _, err := a.GetLineupByGame(ctx, "t1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown game, got %v", err)
	}
}

func TestSettingsRoundTripAndDefaults(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)
	remoteClient.SetConnected(false)

	got, err := a.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings before any save: %v", err)
	}
	if got.Theme != "system" || got.PreferOffline {
		t.Fatalf("expected default settings, got %+v", got)
	}

	saved := settings.Settings{PreferOffline: true, Theme: "dark", CurrentTeamID: "t1", UpdatedAt: 100}
	if !a.SaveSettings(ctx, saved) {
		t.Fatalf("save settings failed")
	}

	got, err = a.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings after save: %v", err)
	}
	if got != saved {
		t.Fatalf("unexpected settings: %+v", got)
	}
}

func TestPreferOfflineDoesNotForceOfflineRouting(t *testing.T) {
	ctx := context.Background()
	a, remoteClient, _, _ := newTestAdapter(t)
	remoteClient.SetConnected(false)

	if !a.SaveSettings(ctx, settings.Settings{PreferOffline: true, UpdatedAt: 100}) {
		t.Fatalf("save settings failed")
	}

	remoteClient.SetConnected(true)
	if !a.IsOnline(ctx) {
		t.Fatalf("prefer-offline preference must not override a live connection")
	}
}
