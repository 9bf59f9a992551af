package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jslock56/competehq/internal/domain/game"
	"github.com/Jslock56/competehq/internal/storage"
)

type saveGameRequest struct {
	ID       string `json:"id"`
	Opponent string `json:"opponent"`
	Date     int64  `json:"date" validate:"required,gt=0"`
	Location string `json:"location"`
	Innings  int    `json:"innings"`
	Status   string `json:"status"`
	LineupID string `json:"lineupId"`
}

func (h *Handler) ListGamesByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGamesByTeam")
	defer span.End()

	games, err := h.store.ListGamesByTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, games)
}

func (h *Handler) UpcomingGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpcomingGames")
	defer span.End()

	games, err := h.store.UpcomingGames(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, games)
}

func (h *Handler) PastGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PastGames")
	defer span.End()

	games, err := h.store.PastGames(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, games)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	item, err := h.store.GetGame(ctx, r.PathValue("gameID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) SaveGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveGame")
	defer span.End()

	var req saveGameRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	status := game.StatusScheduled
	if req.Status != "" {
		parsed, err := game.ParseStatus(req.Status)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
			return
		}
		status = parsed
	}

	gameID, err := h.newID(req.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate game id failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	now := time.Now().UnixMilli()
	item := game.Game{
		ID:        gameID,
		TeamID:    r.PathValue("teamID"),
		Opponent:  req.Opponent,
		Date:      req.Date,
		Location:  req.Location,
		Innings:   req.Innings,
		Status:    status,
		LineupID:  req.LineupID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := h.store.GetGame(ctx, gameID); err == nil {
		item.CreatedAt = existing.CreatedAt
	}

	if err := item.Validate(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	if !h.store.SaveGame(ctx, item) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

// DeleteGame removes the game and the lineup attached to it. The lineup
// delete is best-effort; a failure there leaves an orphan but never blocks
// removing the game itself.
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGame")
	defer span.End()

	teamID := r.PathValue("teamID")
	gameID := r.PathValue("gameID")

	if attached, err := h.store.GetLineupByGame(ctx, teamID, gameID); err == nil {
		if !h.store.DeleteLineup(ctx, teamID, attached.ID) {
			h.logger.WarnContext(ctx, "delete game lineup failed", "gameId", gameID, "lineupId", attached.ID)
		}
	}

	if !h.store.DeleteGame(ctx, teamID, gameID) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deletedResponse{Deleted: true})
}
