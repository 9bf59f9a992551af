package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jslock56/competehq/internal/domain/practice"
	"github.com/Jslock56/competehq/internal/storage"
)

type savePracticeRequest struct {
	ID              string `json:"id"`
	Date            int64  `json:"date" validate:"required,gt=0"`
	Location        string `json:"location"`
	Focus           string `json:"focus"`
	Notes           string `json:"notes"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (h *Handler) ListPracticesByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPracticesByTeam")
	defer span.End()

	practices, err := h.store.ListPracticesByTeam(ctx, r.PathValue("teamID"))
	if err != nil {
		h.logger.WarnContext(ctx, "list practices failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, practices)
}

func (h *Handler) UpcomingPractices(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpcomingPractices")
	defer span.End()

	practices, err := h.store.UpcomingPractices(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, practices)
}

func (h *Handler) PastPractices(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PastPractices")
	defer span.End()

	practices, err := h.store.PastPractices(ctx, r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, practices)
}

func (h *Handler) GetPractice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPractice")
	defer span.End()

	item, err := h.store.GetPractice(ctx, r.PathValue("practiceID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) SavePractice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePractice")
	defer span.End()

	var req savePracticeRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	practiceID, err := h.newID(req.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate practice id failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	now := time.Now().UnixMilli()
	item := practice.Practice{
		ID:              practiceID,
		TeamID:          r.PathValue("teamID"),
		Date:            req.Date,
		Location:        req.Location,
		Focus:           req.Focus,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if existing, err := h.store.GetPractice(ctx, practiceID); err == nil {
		item.CreatedAt = existing.CreatedAt
	}

	if err := item.Validate(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	if !h.store.SavePractice(ctx, item) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) DeletePractice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePractice")
	defer span.End()

	if !h.store.DeletePractice(ctx, r.PathValue("teamID"), r.PathValue("practiceID")) {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deletedResponse{Deleted: true})
}
