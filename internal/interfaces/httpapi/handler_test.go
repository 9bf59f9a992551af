package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/Jslock56/competehq/internal/localstore"
	"github.com/Jslock56/competehq/internal/platform/id"
	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/remote"
	"github.com/Jslock56/competehq/internal/storage"
	syncsvc "github.com/Jslock56/competehq/internal/sync"
)

type testServer struct {
	router http.Handler
	remote *remote.Memory
	local  localstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logging.NewNop()
	remoteClient := remote.NewMemory()
	local := localstore.NewMemory()
	tracker := syncsvc.NewTracker(local)
	adapter := storage.New(remoteClient, local, tracker, logger)
	syncer := syncsvc.NewService(remoteClient, local, tracker, logger, 2)
	handler := NewHandler(adapter, syncer, id.NewRandomGenerator(), logger)

	return &testServer{
		router: NewRouter(handler, logger, []string{"*"}),
		remote: remoteClient,
		local:  local,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal response body: %v", err)
		}
	}
	return rec, envelope
}

func TestSaveAndGetTeamRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/teams", `{"name":"Dragons","ageGroup":"U10","season":"2026"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in response")
	}
	teamID, _ := data["id"].(string)
	if teamID == "" {
		t.Fatalf("expected generated team id")
	}

	rec, envelope = srv.do(t, http.MethodGet, "/v1/teams/"+teamID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ = envelope["data"].(map[string]any)
	if got, _ := data["name"].(string); got != "Dragons" {
		t.Fatalf("expected team name Dragons, got %v", data["name"])
	}
}

func TestSaveTeamRejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodPost, "/v1/teams", `{"name":"Dragons","mascot":"dino"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSaveTeamRequiresName(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodPost, "/v1/teams", `{"season":"2026"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGetTeamNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodGet, "/v1/teams/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDeleteGameRemovesAttachedLineup(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodPost, "/v1/teams/t1/games", `{"id":"g1","opponent":"Hawks","date":1700000000000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected game save to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = srv.do(t, http.MethodPost, "/v1/teams/t1/lineups", `{"id":"l1","gameId":"g1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected lineup save to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = srv.do(t, http.MethodDelete, "/v1/teams/t1/games/g1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected delete to succeed, got %d", rec.Code)
	}

	rec, _ = srv.do(t, http.MethodGet, "/v1/games/g1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected deleted game to be gone, got %d", rec.Code)
	}
	rec, _ = srv.do(t, http.MethodGet, "/v1/lineups/l1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected attached lineup removed with its game, got %d", rec.Code)
	}
}

func TestDeleteLineupKeepsGame(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodPost, "/v1/teams/t1/games", `{"id":"g1","opponent":"Hawks","date":1700000000000,"lineupId":"l1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected game save to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = srv.do(t, http.MethodPost, "/v1/teams/t1/lineups", `{"id":"l1","gameId":"g1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected lineup save to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = srv.do(t, http.MethodDelete, "/v1/teams/t1/lineups/l1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected lineup delete to succeed, got %d", rec.Code)
	}

	rec, envelope := srv.do(t, http.MethodGet, "/v1/games/g1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected game untouched by lineup delete, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["lineupId"].(string); got != "l1" {
		t.Fatalf("expected game to keep its lineupId reference, got %v", data["lineupId"])
	}
}

func TestConnectionToggleAndStatus(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodGet, "/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if online, _ := data["online"].(bool); !online {
		t.Fatalf("expected online status with connected remote")
	}

	rec, _ = srv.do(t, http.MethodPost, "/v1/connection/offline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	_, envelope = srv.do(t, http.MethodGet, "/v1/status", "")
	data, _ = envelope["data"].(map[string]any)
	if online, _ := data["online"].(bool); online {
		t.Fatalf("expected offline status after forcing offline")
	}

	rec, envelope = srv.do(t, http.MethodPost, "/v1/connection/online", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ = envelope["data"].(map[string]any)
	if online, _ := data["online"].(bool); !online {
		t.Fatalf("expected online after reconnect")
	}
}

func TestSyncPendingEndpointPushesOfflineWrites(t *testing.T) {
	srv := newTestServer(t)
	srv.remote.SetConnected(false)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/teams", `{"id":"team-1","name":"Dragons"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected offline save to succeed, got %d", rec.Code)
	}

	_, envelope = srv.do(t, http.MethodGet, "/v1/status", "")
	data, _ := envelope["data"].(map[string]any)
	syncState, _ := data["sync"].(map[string]any)
	pending, _ := syncState["pendingChanges"].(map[string]any)
	if len(pending) == 0 {
		t.Fatalf("expected pending changes after offline save")
	}

	srv.remote.SetConnected(true)
	rec, envelope = srv.do(t, http.MethodPost, "/v1/sync/pending", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ = envelope["data"].(map[string]any)
	if completed, _ := data["completed"].(bool); !completed {
		t.Fatalf("expected sync to complete: %s", rec.Body.String())
	}

	if _, ok := srv.remote.Doc("team", "team-1"); !ok {
		t.Fatalf("expected team pushed to remote")
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodPut, "/v1/settings", `{"preferOffline":true,"theme":"dark","currentTeamId":"team-9"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, envelope := srv.do(t, http.MethodGet, "/v1/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if theme, _ := data["theme"].(string); theme != "dark" {
		t.Fatalf("expected theme dark, got %v", data["theme"])
	}
	if preferOffline, _ := data["preferOffline"].(bool); !preferOffline {
		t.Fatalf("expected preferOffline true")
	}
}
