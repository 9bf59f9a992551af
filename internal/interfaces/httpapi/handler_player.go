package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jslock56/competehq/internal/domain/player"
	"github.com/Jslock56/competehq/internal/storage"
)

type savePlayerRequest struct {
	ID                 string   `json:"id"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	JerseyNumber       string   `json:"jerseyNumber"`
	PrimaryPositions   []string `json:"primaryPositions"`
	SecondaryPositions []string `json:"secondaryPositions"`
	Active             bool     `json:"active"`
}

func (h *Handler) ListPlayersByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayersByTeam")
	defer span.End()

	players, err := h.store.ListPlayersByTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, players)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	item, err := h.store.GetPlayer(ctx, r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) SavePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePlayer")
	defer span.End()

	var req savePlayerRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID, err := h.newID(req.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate player id failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	now := time.Now().UnixMilli()
	item := player.Player{
		ID:                 playerID,
		TeamID:             r.PathValue("teamID"),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		JerseyNumber:       req.JerseyNumber,
		PrimaryPositions:   req.PrimaryPositions,
		SecondaryPositions: req.SecondaryPositions,
		Active:             req.Active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if existing, err := h.store.GetPlayer(ctx, playerID); err == nil {
		item.CreatedAt = existing.CreatedAt
	}

	if err := item.Validate(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	if !h.store.SavePlayer(ctx, item) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePlayer")
	defer span.End()

	if !h.store.DeletePlayer(ctx, r.PathValue("teamID"), r.PathValue("playerID")) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deletedResponse{Deleted: true})
}
