package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jslock56/competehq/internal/domain/poshistory"
	"github.com/Jslock56/competehq/internal/storage"
)

type savePositionHistoryRequest struct {
	ID       string                  `json:"id"`
	PlayerID string                  `json:"playerId" validate:"required"`
	Games    []poshistory.GameRecord `json:"games"`
}

func (h *Handler) ListPositionHistoriesByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPositionHistoriesByTeam")
	defer span.End()

	histories, err := h.store.ListPositionHistoriesByTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		h.logger.WarnContext(ctx, "list position histories failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, histories)
}

func (h *Handler) GetPositionHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPositionHistory")
	defer span.End()

	item, err := h.store.GetPositionHistory(ctx, r.PathValue("historyID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) SavePositionHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePositionHistory")
	defer span.End()

	var req savePositionHistoryRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	historyID, err := h.newID(req.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate position history id failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	now := time.Now().UnixMilli()
	item := poshistory.History{
		ID:        historyID,
		PlayerID:  req.PlayerID,
		TeamID:    r.PathValue("teamID"),
		Games:     req.Games,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := h.store.GetPositionHistory(ctx, historyID); err == nil {
		item.CreatedAt = existing.CreatedAt
	}

	if err := item.Validate(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	if !h.store.SavePositionHistory(ctx, item) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) DeletePositionHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePositionHistory")
	defer span.End()

	if !h.store.DeletePositionHistory(ctx, r.PathValue("teamID"), r.PathValue("historyID")) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deletedResponse{Deleted: true})
}
