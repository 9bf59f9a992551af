package httpapi

import (
	"net/http"
	"time"

	"github.com/Jslock56/competehq/internal/domain/settings"
)

type saveSettingsRequest struct {
	PreferOffline bool   `json:"preferOffline"`
	Theme         string `json:"theme"`
	CurrentTeamID string `json:"currentTeamId"`
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSettings")
	defer span.End()

	item, err := h.store.GetSettings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveSettings")
	defer span.End()

	var req saveSettingsRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item := settings.Settings{
		PreferOffline: req.PreferOffline,
		Theme:         req.Theme,
		CurrentTeamID: req.CurrentTeamID,
		UpdatedAt:     time.Now().UnixMilli(),
	}
	if item.Theme == "" {
		item.Theme = settings.Default().Theme
	}

	if !h.store.SaveSettings(ctx, item) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}
