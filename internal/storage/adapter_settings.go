package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/Jslock56/competehq/internal/domain/settings"
	"github.com/Jslock56/competehq/internal/localstore"
	"github.com/Jslock56/competehq/internal/remote"
	"github.com/Jslock56/competehq/internal/sync"
)

// Settings is a singleton: one well-known key locally, one well-known
// document remotely. Missing settings read as the defaults, never an error.
func (a *Adapter) GetSettings(ctx context.Context) (settings.Settings, error) {
	ctx, span := startStorageSpan(ctx, "storage.GetSettings")
	defer span.End()

	if !a.offline(ctx) {
		doc, err := a.remote.Get(ctx, localstore.SettingsKey, localstore.SettingsKey)
		switch {
		case err == nil:
			var s settings.Settings
			if decErr := sonic.Unmarshal(doc.Payload, &s); decErr == nil {
				a.mirrorSettings(ctx, doc)
				return s, nil
			} else {
				a.log.WarnContext(ctx, "remote settings decode failed, serving local copy", "error", decErr)
			}
		case errors.Is(err, remote.ErrNotFound):
		default:
			a.log.WarnContext(ctx, "remote settings read failed, serving local copy", "error", err)
		}
	}

	raw, ok, err := a.local.Get(ctx, localstore.SettingsKey)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("read local settings: %w", err)
	}
	if !ok {
		return settings.Default(), nil
	}

	var s settings.Settings
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return settings.Settings{}, fmt.Errorf("decode local settings: %w", err)
	}
	return s, nil
}

func (a *Adapter) SaveSettings(ctx context.Context, s settings.Settings) bool {
	ctx, span := startStorageSpan(ctx, "storage.SaveSettings")
	defer span.End()

	payload, err := sonic.Marshal(s)
	if err != nil {
		a.log.ErrorContext(ctx, "encode settings failed", "error", err)
		return false
	}

	if err := a.local.Set(ctx, localstore.SettingsKey, payload); err != nil {
		a.log.ErrorContext(ctx, "local settings save failed", "error", err)
		return false
	}

	if !a.offline(ctx) {
		err := a.remote.Put(ctx, remote.Document{
			Kind:      localstore.SettingsKey,
			ID:        localstore.SettingsKey,
			Payload:   payload,
			UpdatedAt: s.UpdatedAt,
		})
		if err == nil {
			a.clearPending(ctx, localstore.Kind(localstore.SettingsKey), localstore.SettingsKey)
			return true
		}
		a.log.WarnContext(ctx, "remote settings save failed, queued for sync", "error", err)
	}

	a.markPending(ctx, sync.Change{Kind: localstore.SettingsKey, ID: localstore.SettingsKey, Op: sync.OpSave})
	return true
}

func (a *Adapter) mirrorSettings(ctx context.Context, doc remote.Document) {
	raw, ok, err := a.local.Get(ctx, localstore.SettingsKey)
	if err != nil {
		a.log.WarnContext(ctx, "local read during settings mirror failed", "error", err)
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

	if err := a.local.Set(ctx, localstore.SettingsKey, doc.Payload); err != nil {
		a.log.WarnContext(ctx, "settings mirror to local failed", "error", err)
	}
}
