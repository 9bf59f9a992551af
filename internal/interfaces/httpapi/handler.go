package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/Jslock56/competehq/internal/platform/id"
	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/storage"
	syncsvc "github.com/Jslock56/competehq/internal/sync"
)

// Handler carries the storage adapter and sync service for every route.
type Handler struct {
	store    *storage.Adapter
	syncer   *syncsvc.Service
	ids      id.Generator
	logger   *logging.Logger
	validate *validator.Validate
}

func NewHandler(store *storage.Adapter, syncer *syncsvc.Service, ids id.Generator, logger *logging.Logger) *Handler {
	return &Handler{
		store:    store,
		syncer:   syncer,
		ids:      ids,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// decodeBody reads a JSON request body into dst. Unknown fields are
// rejected so typos surface as 400s instead of silently dropped data.
func (h *Handler) decodeBody(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: request body is required", storage.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", storage.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, req any) error {
	if err := h.validate.StructCtx(ctx, req); err != nil {
		return fmt.Errorf("%w: validation failed: %v", storage.ErrInvalidInput, err)
	}
	return nil
}

// newID fills in an ID when the client did not send one.
func (h *Handler) newID(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	return h.ids.NewID()
}
