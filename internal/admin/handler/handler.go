// Package handler exposes the admin review API. Routes are expected to be
// mounted behind the admin-key middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agentportal/internal/application/models"
	dErrors "agentportal/pkg/domain-errors"
	"agentportal/pkg/platform/httputil"
	"agentportal/pkg/requestcontext"
)

// Service defines the review operations the handler depends on.
type Service interface {
	List(ctx context.Context, status models.Status) ([]models.Record, error)
	Decide(ctx context.Context, id uuid.UUID, ruling models.Status, reviewer, reason string) (models.Record, error)
}

// Handler wires the review endpoints to the admin service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/applications", h.HandleList)
	r.Post("/admin/applications/{id}/decision", h.HandleDecide)
}

// HandleList handles GET /admin/applications?status= requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := models.Status(r.URL.Query().Get("status"))

	records, err := h.service.List(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(records))
}

// HandleDecide handles POST /admin/applications/{id}/decision requests.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid application id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.Decide(ctx, id, models.Status(req.Decision), req.Reviewer, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "decision refused",
			"request_id", requestID,
			"application_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}
