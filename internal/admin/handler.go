package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"beam/internal/registration/models"
	"beam/pkg/domain"
	"beam/pkg/platform/httputil"
)

// Handler serves the /admin review routes. Mount behind the admin token
// middleware; the handler itself does no authentication.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/companies/pending", h.handleListPending)
	r.Post("/companies/{companyID}/approve", h.handleApprove)
	r.Post("/companies/{companyID}/reject", h.handleReject)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.ListPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if pending == nil {
		pending = []*models.Company{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"companies": pending,
		"count":     len(pending),
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"company_id": c.ID,
		"status":     c.Status,
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req rejectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Reject(r.Context(), id, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"company_id": c.ID,
		"status":     c.Status,
		"reason":     req.Reason,
	})
}
