// Package handler exposes the applicant-facing wizard API.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agentportal/internal/application/models"
	"agentportal/internal/application/service"
	"agentportal/pkg/platform/httputil"
	"agentportal/pkg/requestcontext"
)

// Service defines the orchestrator operations the handler depends on.
type Service interface {
	StartSession(ctx context.Context) (service.Session, error)
	SaveProgress(ctx context.Context, update models.SectionUpdate) (service.Session, error)
	Advance(ctx context.Context, update models.SectionUpdate) (service.Session, error)
	Retreat(ctx context.Context, update models.SectionUpdate) (service.Session, error)
	Submit(ctx context.Context) (models.Record, error)
	Status(ctx context.Context) (models.Record, error)
}

// Handler wires the wizard endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the applicant endpoints on the router. The caller is
// expected to wrap the group in the bearer-auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/application/session", h.HandleSession)
	r.Put("/application/draft", h.HandleSaveDraft)
	r.Post("/application/steps/advance", h.HandleAdvance)
	r.Post("/application/steps/retreat", h.HandleRetreat)
	r.Post("/application/submit", h.HandleSubmit)
	r.Get("/application/status", h.HandleStatus)
}

// HandleSession handles GET /application/session requests.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.StartSession(r.Context())
	if err != nil {
		h.writeError(w, r, "session hydration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleSaveDraft handles PUT /application/draft requests: the manual
// checkpoint, saved regardless of step-gate state.
func (h *Handler) HandleSaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	update, ok := httputil.DecodeAndPrepare[models.SectionUpdate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	session, err := h.service.SaveProgress(ctx, update)
	if err != nil {
		h.writeError(w, r, "draft save failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleAdvance handles POST /application/steps/advance requests.
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	update, ok := httputil.DecodeAndPrepare[models.SectionUpdate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	session, err := h.service.Advance(ctx, update)
	if err != nil {
		h.writeError(w, r, "advance refused", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleRetreat handles POST /application/steps/retreat requests.
func (h *Handler) HandleRetreat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	update, ok := httputil.DecodeAndPrepare[models.SectionUpdate](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	session, err := h.service.Retreat(ctx, update)
	if err != nil {
		h.writeError(w, r, "retreat failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleSubmit handles POST /application/submit requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := h.service.Submit(ctx)
	if err != nil {
		h.writeError(w, r, "submission failed", err)
		return
	}

	h.logger.InfoContext(ctx, "application submitted",
		"request_id", requestcontext.RequestID(ctx),
		"application_id", rec.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRecord(rec))
}

// HandleStatus handles GET /application/status requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Status(r.Context())
	if err != nil {
		h.writeError(w, r, "status lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// writeError renders gate refusals with their field detail; everything else
// goes through the shared envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()

	var gateErr *service.GateError
	if errors.As(err, &gateErr) {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, FromGateError(gateErr))
		return
	}

	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
