package beamclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beam/pkg/beamclient"
	dErrors "beam/pkg/domain-errors"
)

func TestInitParsesCompanyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/register/init", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"company_id": "co_abc123"})
	}))
	defer srv.Close()

	out, err := beamclient.New(srv.URL).Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "co_abc123", out.CompanyID)
}

func TestErrorEnvelopeBecomesCodedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "conflict",
			"error_description": "registration already submitted",
		})
	}))
	defer srv.Close()

	err := beamclient.New(srv.URL).Finalize(context.Background(), "co_abc123")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, "registration already submitted", dErrors.MessageOf(err))
}

func TestReadAndDeleteEndpoints(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/register/verify/tok-1":
			_ = json.NewEncoder(w).Encode(map[string]any{"company_id": "co_abc123", "email_verified": true})
		case r.URL.Path == "/register/co_abc123/documents":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"documents":      []map[string]any{{"id": "doc_1", "document_type": "BUSINESS_LICENSE"}},
				"required_types": []string{"BUSINESS_LICENSE", "TRN_CERTIFICATE"},
			})
		case r.URL.Path == "/companies/co_abc123":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "co_abc123", "status": "ACTIVE", "legal_name": "Acme Trading LLC", "email_verified": true,
			})
		case r.URL.Path == "/companies/co_abc123/subscription":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"subscription_id": "sub_1", "plan_id": "plan_starter", "status": "TRIAL", "billing_cycle": "monthly",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := beamclient.New(srv.URL)

	verified, err := client.Verify(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "co_abc123", verified.CompanyID)
	assert.True(t, verified.EmailVerified)

	docs, err := client.ListDocuments(ctx, "co_abc123")
	require.NoError(t, err)
	require.Len(t, docs.Documents, 1)
	assert.Equal(t, "doc_1", docs.Documents[0].ID)
	assert.Equal(t, []string{"BUSINESS_LICENSE", "TRN_CERTIFICATE"}, docs.RequiredTypes)

	require.NoError(t, client.DeleteDocument(ctx, "co_abc123", "doc_1"))

	company, err := client.Company(ctx, "co_abc123")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", company.Status)
	assert.Equal(t, "Acme Trading LLC", company.LegalName)

	sub, err := client.Subscription(ctx, "co_abc123")
	require.NoError(t, err)
	assert.Equal(t, "plan_starter", sub.PlanID)
	assert.Equal(t, "TRIAL", sub.Status)

	assert.Equal(t, []call{
		{http.MethodPost, "/register/verify/tok-1"},
		{http.MethodGet, "/register/co_abc123/documents"},
		{http.MethodDelete, "/register/co_abc123/documents/doc_1"},
		{http.MethodGet, "/companies/co_abc123"},
		{http.MethodGet, "/companies/co_abc123/subscription"},
	}, calls)
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := beamclient.New(srv.URL).Init(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
