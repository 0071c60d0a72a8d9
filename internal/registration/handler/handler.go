// Package handler exposes the registration wizard over HTTP.
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beam/internal/document"
	"beam/internal/platform/middleware"
	"beam/internal/registration/models"
	"beam/internal/registration/service"
	"beam/internal/verification"
	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/httputil"
)

// Handler serves /register and the public company reads.
type Handler struct {
	registrations  *service.Service
	verifications  *verification.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func New(registrations *service.Service, verifications *verification.Service,
	maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		registrations:  registrations,
		verifications:  verifications,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/register", func(r chi.Router) {
		// Init and email sends create external side effects, so they get
		// tighter per-client limits than the step routes.
		r.With(middleware.Throttle(20, time.Minute)).Post("/init", h.handleInit)
		r.Post("/verify/{token}", h.handleVerify)
		r.Route("/{companyID}", func(r chi.Router) {
			// The document upload route takes multipart, so the JSON
			// content-type guard applies per route.
			r.With(middleware.ContentTypeJSON).Post("/step1", h.handleStep1)
			r.With(middleware.ContentTypeJSON).Post("/step2", h.handleStep2)
			r.Post("/documents", h.handleUploadDocument)
			r.Get("/documents", h.handleListDocuments)
			r.Delete("/documents/{documentID}", h.handleDeleteDocument)
			r.Post("/step3", h.handleStep3)
			r.With(middleware.ContentTypeJSON).Post("/step4", h.handleStep4)
			r.Post("/finalize", h.handleFinalize)
			r.Get("/progress", h.handleProgress)
			r.With(middleware.Throttle(5, time.Minute)).Post("/send-verification", h.handleSendVerification)
		})
	})
	r.Get("/companies/{companyID}", h.handleGetCompany)
	r.Get("/companies/{companyID}/subscription", h.handleGetSubscription)
}

type stepResponse struct {
	CompanyID   domain.CompanyID `json:"company_id"`
	Step        int              `json:"step"`
	Status      string           `json:"status"`
	CurrentStep int              `json:"current_step"`
}

func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	c, err := h.registrations.Init(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"company_id":   c.ID,
		"status":       c.Status,
		"current_step": c.Progress.CurrentStep,
		"created_at":   c.CreatedAt,
	})
}

func (h *Handler) handleStep1(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.CompanyInfo
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.registrations.SubmitCompanyInfo(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stepResponse{
		CompanyID: c.ID, Step: 1, Status: "completed", CurrentStep: c.Progress.CurrentStep,
	})
}

func (h *Handler) handleStep2(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.BusinessDetails
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.registrations.SubmitBusinessDetails(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stepResponse{
		CompanyID: c.ID, Step: 2, Status: "completed", CurrentStep: c.Progress.CurrentStep,
	})
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	docType, err := domain.ParseDocumentType(r.FormValue("document_type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file field is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "read upload"))
		return
	}

	up := document.Upload{
		Type:           docType,
		FileName:       header.Filename,
		MimeType:       header.Header.Get("Content-Type"),
		Content:        content,
		DocumentNumber: r.FormValue("document_number"),
	}
	if d := parseDateField(r.FormValue("issue_date")); d != nil {
		up.IssueDate = d
	}
	if d := parseDateField(r.FormValue("expiry_date")); d != nil {
		up.ExpiryDate = d
	}

	doc, err := h.registrations.UploadDocument(r.Context(), id, up)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.registrations.ListDocuments(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if docs == nil {
		docs = []*document.Document{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"documents":      docs,
		"required_types": domain.RequiredDocumentTypes(),
	})
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registrations.DeleteDocument(r.Context(), id, docID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStep3(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.registrations.CompleteDocuments(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stepResponse{
		CompanyID: c.ID, Step: 3, Status: "completed", CurrentStep: c.Progress.CurrentStep,
	})
}

func (h *Handler) handleStep4(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.PlanSelection
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub, err := h.registrations.SelectPlan(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.registrations.Finalize(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"company_id": c.ID,
		"status":     c.Status,
		"completed":  true,
		"message":    "registration submitted for review",
	})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.registrations.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"company_id":     c.ID,
		"status":         c.Status,
		"email_verified": c.EmailVerified,
		"progress":       c.Progress,
	})
}

func (h *Handler) handleSendVerification(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.verifications.Send(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "verification email sent",
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	c, err := h.verifications.Verify(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"company_id":     c.ID,
		"email_verified": c.EmailVerified,
	})
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.registrations.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub, err := h.registrations.Subscription(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sub)
}

func parseDateField(s string) *time.Time {
	if s == "" {
		return nil
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return &d
	}
	return nil
}
