package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"beam/internal/plan"
	"beam/pkg/domain"
	"beam/pkg/platform/httputil"
)

// Handler serves the public plan catalog.
type Handler struct {
	plans  *plan.Service
	logger *slog.Logger
}

func New(plans *plan.Service, logger *slog.Logger) *Handler {
	return &Handler{plans: plans, logger: logger}
}

// Register mounts the plan routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/plans", h.handleList)
	r.Get("/plans/{planID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if plans == nil {
		plans = []*plan.Plan{}
	}
	httputil.WriteJSON(w, http.StatusOK, plans)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePlanID(chi.URLParam(r, "planID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.plans.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}
