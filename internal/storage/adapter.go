// Package storage is the single entry point for entity persistence. Every
// operation routes between the remote document store and the local store:
// reads prefer remote while online but always degrade to local, writes land
// locally no matter what and reach the remote store on a best-effort basis,
// queueing for sync when they miss.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sourcegraph/conc"

	"github.com/Jslock56/competehq/internal/domain/settings"
	"github.com/Jslock56/competehq/internal/localstore"
	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/remote"
	"github.com/Jslock56/competehq/internal/sync"
)

// record is the contract every stored entity satisfies.
type record interface {
	Validate() error
	RecordID() string
	ModifiedAt() int64
}

type Adapter struct {
	remote  remote.Client
	local   localstore.Store
	pending *sync.Tracker
	log     *logging.Logger

	// forcedOffline is the sticky override set by GoOffline. It wins over
	// every other signal until GoOnline clears it.
	forcedOffline atomic.Bool

	now func() time.Time
}

func New(remoteClient remote.Client, local localstore.Store, pending *sync.Tracker, log *logging.Logger) *Adapter {
	return &Adapter{
		remote:  remoteClient,
		local:   local,
		pending: pending,
		log:     log,
		now:     time.Now,
	}
}

// offline decides routing for one call and is evaluated fresh every time.
// The stored preferOffline preference is logged but does not force the
// route: a live connection is still used when one exists, so a stale
// preference can never strand a reachable client.
func (a *Adapter) offline(ctx context.Context) bool {
	if a.forcedOffline.Load() {
		return true
	}
	if s, ok := a.localSettings(ctx); ok && s.PreferOffline {
		a.log.DebugContext(ctx, "prefer-offline preference set, routing by live connection anyway")
	}
	return !a.remote.IsConnected()
}

// IsOnline reports whether the next operation would take the remote path.
func (a *Adapter) IsOnline(ctx context.Context) bool {
	return !a.offline(ctx)
}

// GoOnline clears the forced-offline override and attempts a remote
// connection. The return value reports whether the remote store is usable.
func (a *Adapter) GoOnline(ctx context.Context) bool {
	ctx, span := startStorageSpan(ctx, "storage.GoOnline")
	defer span.End()

	a.forcedOffline.Store(false)
	if err := a.remote.Connect(ctx); err != nil {
		a.log.WarnContext(ctx, "go-online connect attempt failed", "error", err)
	}
	return a.remote.IsConnected()
}

// GoOffline forces offline routing until GoOnline is called.
func (a *Adapter) GoOffline(ctx context.Context) {
	a.forcedOffline.Store(true)
	a.log.InfoContext(ctx, "forced offline mode enabled")
}

func (a *Adapter) localSettings(ctx context.Context) (settings.Settings, bool) {
	raw, ok, err := a.local.Get(ctx, localstore.SettingsKey)
	if err != nil || !ok {
		return settings.Settings{}, false
	}

	var s settings.Settings
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return settings.Settings{}, false
	}
	return s, true
}

// getRecord reads one entity. Online it tries the remote store and mirrors
// a hit into the local store; any remote failure, including not-found,
// falls through to the local copy so unsynced local writes stay readable.
func getRecord[T record](ctx context.Context, a *Adapter, kind localstore.Kind, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, fmt.Errorf("%w: %s id is required", ErrInvalidInput, kind)
	}

	if !a.offline(ctx) {
		doc, err := a.remote.Get(ctx, string(kind), id)
		switch {
		case err == nil:
			var out T
			if decErr := sonic.Unmarshal(doc.Payload, &out); decErr == nil {
				a.mirrorDocument(ctx, kind, doc)
				return out, nil
			} else {
				a.log.WarnContext(ctx, "remote payload decode failed, serving local copy", "kind", kind, "id", id, "error", decErr)
			}
		case errors.Is(err, remote.ErrNotFound):
			// unsynced local copy may still exist
		default:
			a.log.WarnContext(ctx, "remote read failed, serving local copy", "kind", kind, "id", id, "error", err)
		}
	}

	raw, ok, err := a.local.Get(ctx, localstore.PrimaryKey(kind, id))
	if err != nil {
		return zero, fmt.Errorf("read local %s: %w", kind, err)
	}
	if !ok {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}

	var out T
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode local %s: %w", kind, err)
	}
	return out, nil
}

func listRecords[T record](ctx context.Context, a *Adapter, kind localstore.Kind, teamID string) ([]T, error) {
	indexKey := localstore.IndexKeyFor(kind, teamID)
	if indexKey == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	if !a.offline(ctx) {
		var docs []remote.Document
		var err error
		if kind == localstore.KindTeam {
			docs, err = a.remote.ListKind(ctx, string(kind))
		} else {
			docs, err = a.remote.ListByTeam(ctx, string(kind), teamID)
		}
		if err != nil {
			a.log.WarnContext(ctx, "remote list failed, serving local copies", "kind", kind, "teamId", teamID, "error", err)
		} else if out, ok := decodeDocuments[T](ctx, a, kind, docs); ok {
			for _, doc := range docs {
				a.mirrorDocument(ctx, kind, doc)
			}
			return out, nil
		}
	}

	return listLocal[T](ctx, a, kind, indexKey)
}

func decodeDocuments[T record](ctx context.Context, a *Adapter, kind localstore.Kind, docs []remote.Document) ([]T, bool) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := sonic.Unmarshal(doc.Payload, &item); err != nil {
			a.log.WarnContext(ctx, "remote payload decode failed, serving local copies", "kind", kind, "id", doc.ID, "error", err)
			return nil, false
		}
		out = append(out, item)
	}
	return out, true
}

func listLocal[T record](ctx context.Context, a *Adapter, kind localstore.Kind, indexKey string) ([]T, error) {
	ids, err := a.local.Index(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("read local %s index: %w", kind, err)
	}

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		raw, ok, err := a.local.Get(ctx, localstore.PrimaryKey(kind, id))
		if err != nil {
			return nil, fmt.Errorf("read local %s: %w", kind, err)
		}
		if !ok {
			continue
		}

		var item T
		if err := sonic.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode local %s: %w", kind, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// saveRecord writes locally and remotely in parallel. The local result is
// authoritative for the caller-visible outcome; a missed remote write is
// logged and queued for sync, never surfaced.
func saveRecord[T record](ctx context.Context, a *Adapter, kind localstore.Kind, rec T, teamID, gameID string) bool {
	if err := rec.Validate(); err != nil {
		a.log.WarnContext(ctx, "rejecting invalid record", "kind", kind, "error", err)
		return false
	}

	payload, err := sonic.Marshal(rec)
	if err != nil {
		a.log.ErrorContext(ctx, "encode record failed", "kind", kind, "id", rec.RecordID(), "error", err)
		return false
	}

	id := rec.RecordID()
	key := localstore.PrimaryKey(kind, id)
	indexKey := localstore.IndexKeyFor(kind, teamID)

	attemptRemote := !a.offline(ctx)
	var localErr error
	remoteErr := error(remote.ErrUnavailable)

	var wg conc.WaitGroup
	wg.Go(func() {
		localErr = a.local.PutRecord(ctx, key, payload, indexKey, id)
	})
	if attemptRemote {
		wg.Go(func() {
			remoteErr = a.remote.Put(ctx, remote.Document{
				Kind:      string(kind),
				ID:        id,
				TeamID:    teamID,
				GameID:    gameID,
				Payload:   payload,
				UpdatedAt: rec.ModifiedAt(),
			})
		})
	}
	wg.Wait()

	if localErr != nil {
		a.log.ErrorContext(ctx, "local save failed", "kind", kind, "id", id, "error", localErr)
		return false
	}

	if remoteErr != nil {
		if attemptRemote {
			a.log.WarnContext(ctx, "remote save failed, queued for sync", "kind", kind, "id", id, "error", remoteErr)
		}
		a.markPending(ctx, sync.Change{Kind: string(kind), ID: id, Op: sync.OpSave, TeamID: teamID, GameID: gameID})
		return true
	}

	a.clearPending(ctx, kind, id)
	return true
}

func deleteRecord(ctx context.Context, a *Adapter, kind localstore.Kind, id, teamID string) bool {
	if id == "" {
		a.log.WarnContext(ctx, "rejecting delete without id", "kind", kind)
		return false
	}

	key := localstore.PrimaryKey(kind, id)
	indexKey := localstore.IndexKeyFor(kind, teamID)

	attemptRemote := !a.offline(ctx)
	var localErr error
	remoteErr := error(remote.ErrUnavailable)

	var wg conc.WaitGroup
	wg.Go(func() {
		localErr = a.local.DeleteRecord(ctx, key, indexKey, id)
	})
	if attemptRemote {
		wg.Go(func() {
			remoteErr = a.remote.Delete(ctx, string(kind), id)
		})
	}
	wg.Wait()

	if localErr != nil {
		a.log.ErrorContext(ctx, "local delete failed", "kind", kind, "id", id, "error", localErr)
		return false
	}

	if remoteErr != nil {
		if attemptRemote {
			a.log.WarnContext(ctx, "remote delete failed, queued for sync", "kind", kind, "id", id, "error", remoteErr)
		}
		a.markPending(ctx, sync.Change{Kind: string(kind), ID: id, Op: sync.OpDelete, TeamID: teamID})
		return true
	}

	a.clearPending(ctx, kind, id)
	return true
}

// mirrorDocument refreshes the local copy after a successful remote read.
// Last-write-wins guarded: a newer unsynced local edit is never clobbered
// by stale remote data.
func (a *Adapter) mirrorDocument(ctx context.Context, kind localstore.Kind, doc remote.Document) {
	key := localstore.PrimaryKey(kind, doc.ID)

	raw, ok, err := a.local.Get(ctx, key)
	if err != nil {
		a.log.WarnContext(ctx, "local read during mirror failed", "kind", kind, "id", doc.ID, "error", err)
		return
	}
	if ok {
		var stamp struct {
			UpdatedAt int64 `json:"updatedAt"`
		}
		if err := sonic.Unmarshal(raw, &stamp); err == nil && stamp.UpdatedAt >= doc.UpdatedAt {
			return
		}
	}

	if err := a.local.PutRecord(ctx, key, doc.Payload, localstore.IndexKeyFor(kind, doc.TeamID), doc.ID); err != nil {
		a.log.WarnContext(ctx, "mirror to local failed", "kind", kind, "id", doc.ID, "error", err)
	}
}

func (a *Adapter) markPending(ctx context.Context, change sync.Change) {
	if err := a.pending.Mark(ctx, change); err != nil {
		a.log.ErrorContext(ctx, "queue pending change failed", "kind", change.Kind, "id", change.ID, "error", err)
	}
}

func (a *Adapter) clearPending(ctx context.Context, kind localstore.Kind, id string) {
	if err := a.pending.Clear(ctx, string(kind), id); err != nil {
		a.log.ErrorContext(ctx, "clear pending change failed", "kind", kind, "id", id, "error", err)
	}
}
