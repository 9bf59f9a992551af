package httpapi

import (
	"net/http"

	syncsvc "github.com/Jslock56/competehq/internal/sync"
)

type statusResponse struct {
	Online bool            `json:"online"`
	Sync   syncsvc.Snapshot `json:"sync"`
}

type connectionResponse struct {
	Online bool `json:"online"`
}

// syncResultResponse reports whether the requested sync ran to completion.
// Completed is false both when another sync already held the slot and when
// the sync ran but hit errors; the snapshot disambiguates the two.
type syncResultResponse struct {
	Completed bool             `json:"completed"`
	Sync      syncsvc.Snapshot `json:"sync"`
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, statusResponse{
		Online: h.store.IsOnline(ctx),
		Sync:   h.syncer.State(ctx),
	})
}

func (h *Handler) GoOnline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GoOnline")
	defer span.End()

	online := h.store.GoOnline(ctx)
	writeSuccess(ctx, w, http.StatusOK, connectionResponse{Online: online})
}

func (h *Handler) GoOffline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GoOffline")
	defer span.End()

	h.store.GoOffline(ctx)
	writeSuccess(ctx, w, http.StatusOK, connectionResponse{Online: false})
}

func (h *Handler) SyncPending(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncPending")
	defer span.End()

	completed := h.syncer.SyncPending(ctx)
	writeSuccess(ctx, w, http.StatusOK, syncResultResponse{
		Completed: completed,
		Sync:      h.syncer.State(ctx),
	})
}

func (h *Handler) FullSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FullSync")
	defer span.End()

	completed := h.syncer.FullSync(ctx)
	writeSuccess(ctx, w, http.StatusOK, syncResultResponse{
		Completed: completed,
		Sync:      h.syncer.State(ctx),
	})
}

func (h *Handler) DownloadAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DownloadAll")
	defer span.End()

	completed := h.syncer.DownloadAll(ctx)
	writeSuccess(ctx, w, http.StatusOK, syncResultResponse{
		Completed: completed,
		Sync:      h.syncer.State(ctx),
	})
}
