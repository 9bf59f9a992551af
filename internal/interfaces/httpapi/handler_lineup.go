package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jslock56/competehq/internal/domain/lineup"
	"github.com/Jslock56/competehq/internal/storage"
)

type saveLineupRequest struct {
	ID          string              `json:"id"`
	GameID      string              `json:"gameId"`
	Innings     []lineup.Inning     `json:"innings"`
	Assignments []lineup.Assignment `json:"assignments"`
	Status      string              `json:"status"`
	IsDefault   bool                `json:"isDefault"`
}

type setDefaultLineupRequest struct {
	LineupID string `json:"lineupId" validate:"required"`
}

func (h *Handler) ListLineupsByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLineupsByTeam")
	defer span.End()

	lineups, err := h.store.ListLineupsByTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		h.logger.WarnContext(ctx, "list lineups failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineups)
}

func (h *Handler) ListLineupTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLineupTemplates")
	defer span.End()

	lineups, err := h.store.NonGameLineupsByTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineups)
}

func (h *Handler) GetLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLineup")
	defer span.End()

	item, err := h.store.GetLineup(ctx, r.PathValue("lineupID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) GetLineupByGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLineupByGame")
	defer span.End()

	item, err := h.store.GetLineupByGame(ctx, r.PathValue("teamID"), r.PathValue("gameID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) GetDefaultLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDefaultLineup")
	defer span.End()

	item, err := h.store.DefaultLineupForTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) SetDefaultLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetDefaultLineup")
	defer span.End()

	var req setDefaultLineupRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if !h.store.SetDefaultLineup(ctx, r.PathValue("teamID"), req.LineupID) {
		writeError(ctx, w, fmt.Errorf("%w: lineup %s is not a template of this team", storage.ErrInvalidInput, req.LineupID))
		return
	}

	item, err := h.store.DefaultLineupForTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) SaveLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveLineup")
	defer span.End()

	var req saveLineupRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	lineupID, err := h.newID(req.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate lineup id failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	now := time.Now().UnixMilli()
	item := lineup.Lineup{
		ID:          lineupID,
		TeamID:      r.PathValue("teamID"),
		GameID:      req.GameID,
		Innings:     req.Innings,
		Assignments: req.Assignments,
		Status:      req.Status,
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing, err := h.store.GetLineup(ctx, lineupID); err == nil {
		item.CreatedAt = existing.CreatedAt
	}

	if err := item.Validate(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	if !h.store.SaveLineup(ctx, item) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) DeleteLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLineup")
	defer span.End()

	if !h.store.DeleteLineup(ctx, r.PathValue("teamID"), r.PathValue("lineupID")) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deletedResponse{Deleted: true})
}
