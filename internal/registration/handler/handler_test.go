package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beam/internal/document"
	"beam/internal/document/blob"
	docstore "beam/internal/document/store"
	"beam/internal/events"
	"beam/internal/plan"
	planstore "beam/internal/plan/store"
	"beam/internal/registration/handler"
	"beam/internal/registration/metrics"
	"beam/internal/registration/service"
	companystore "beam/internal/registration/store/company"
	substore "beam/internal/subscription/store"
	"beam/internal/verification"
	verifstore "beam/internal/verification/store"
)

var testMetrics = metrics.New()

type linkSender struct{ link string }

func (s *linkSender) Send(_ context.Context, _ string, link string) error {
	s.link = link
	return nil
}

func newTestRouter(t *testing.T) (chi.Router, *linkSender) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	blobs, err := blob.NewDisk(t.TempDir())
	require.NoError(t, err)
	documents := document.NewService(docstore.NewInMemory(), blobs, 10<<20, logger)

	plans := plan.NewService(planstore.NewInMemory())
	require.NoError(t, plans.SeedDefaults(context.Background()))

	companies := companystore.NewInMemory()
	svc := service.NewService(companies, documents, plans, substore.NewInMemory(),
		events.NewMemory(), testMetrics, 14, logger)

	sender := &linkSender{}
	verifications := verification.NewService(companies, verifstore.NewInMemory(),
		verification.NewTokenIssuer("test-secret", time.Hour), sender,
		events.NewMemory(), "http://localhost", time.Minute, logger)

	r := chi.NewRouter()
	handler.New(svc, verifications, 10<<20, logger).Register(r)
	return r, sender
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func initSession(t *testing.T, r chi.Router) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/register/init", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := decode(t, rec)["company_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func step1Body() map[string]any {
	return map[string]any{
		"legal_name":          "Acme Trading LLC",
		"business_type":       "LLC",
		"registration_number": "CN-1234567",
		"registration_date":   "2020-03-15",
		"email":               "owner@acme.ae",
		"phone":               "+971501234567",
	}
}

func step2Body() map[string]any {
	return map[string]any{
		"business_activity":       "General Trading",
		"address_line1":           "Office 1204, Marina Plaza",
		"city":                    "Dubai",
		"emirate":                 "Dubai",
		"trn":                     "100123456789012",
		"authorized_person_name":  "Sara Khalid",
		"authorized_person_title": "Managing Director",
		"authorized_person_email": "sara@acme.ae",
		"authorized_person_phone": "+971501234568",
	}
}

func uploadDocument(t *testing.T, r chi.Router, id, docType string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", docType))

	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="scan.pdf"`},
		"Content-Type":        {"application/pdf"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/register/"+id+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestFullRegistrationFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	rec := doJSON(t, r, http.MethodPost, "/register/"+id+"/step1", step1Body())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["current_step"])

	rec = doJSON(t, r, http.MethodPost, "/register/"+id+"/step2", step2Body())
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusCreated, uploadDocument(t, r, id, "BUSINESS_LICENSE").Code)
	require.Equal(t, http.StatusCreated, uploadDocument(t, r, id, "TRN_CERTIFICATE").Code)

	rec = doJSON(t, r, http.MethodPost, "/register/"+id+"/step3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/register/"+id+"/step4", map[string]any{"plan_id": "plan_starter"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TRIAL", decode(t, rec)["status"])

	rec = doJSON(t, r, http.MethodPost, "/register/"+id+"/finalize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "PENDING_REVIEW", body["status"])

	rec = doJSON(t, r, http.MethodGet, "/register/"+id+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode(t, rec)["progress"].(map[string]any)
	assert.Equal(t, true, progress["completed"])
}

func TestStep1ValidationError(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	body := step1Body()
	body["email"] = "not-an-email"
	rec := doJSON(t, r, http.MethodPost, "/register/"+id+"/step1", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStep2BadTRN(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	body := step2Body()
	body["trn"] = "123"
	rec := doJSON(t, r, http.MethodPost, "/register/"+id+"/step2", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStep3WithoutDocuments(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	rec := doJSON(t, r, http.MethodPost, "/register/"+id+"/step3", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BUSINESS_LICENSE")
}

func TestUploadRejectsUnknownType(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	rec := uploadDocument(t, r, id, "SELFIE")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsDisallowedContentType(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", "BUSINESS_LICENSE"))
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="notes.txt"`},
		"Content-Type":        {"text/plain"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("just text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/register/"+id+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "bad_request", body["error"])
	assert.Contains(t, body["error_description"], "PDF, JPEG, PNG")
}

func TestDocumentListAndDelete(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	rec := uploadDocument(t, r, id, "BUSINESS_LICENSE")
	require.Equal(t, http.StatusCreated, rec.Code)
	docID, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, docID)

	rec = doJSON(t, r, http.MethodGet, "/register/"+id+"/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	docs := decode(t, rec)["documents"].([]any)
	assert.Len(t, docs, 1)

	req := httptest.NewRequest(http.MethodDelete, "/register/"+id+"/documents/"+docID, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/register/"+id+"/documents", nil)
	assert.Len(t, decode(t, rec)["documents"].([]any), 0)
}

func TestFinalizeIncomplete(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	rec := doJSON(t, r, http.MethodPost, "/register/"+id+"/finalize", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownCompanyIs404(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/register/co_deadbeef/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedCompanyID(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/register/nonsense/progress", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerificationFlow(t *testing.T) {
	r, sender := newTestRouter(t)
	id := initSession(t, r)

	rec := doJSON(t, r, http.MethodPost, "/register/"+id+"/step1", step1Body())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/register/"+id+"/send-verification", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NotEmpty(t, sender.link)

	// The link path starts after the configured base URL.
	path := strings.TrimPrefix(sender.link, "http://localhost")
	rec = doJSON(t, r, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["email_verified"])
}

func TestGetCompanyAndSubscription(t *testing.T) {
	r, _ := newTestRouter(t)
	id := initSession(t, r)

	rec := doJSON(t, r, http.MethodPost, "/register/"+id+"/step4", map[string]any{"plan_id": "plan_enterprise"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/companies/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode(t, rec)["id"])

	rec = doJSON(t, r, http.MethodGet, "/companies/"+id+"/subscription", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "plan_enterprise", decode(t, rec)["plan_id"])
}
