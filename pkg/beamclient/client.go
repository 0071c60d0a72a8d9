// Package beamclient is a typed HTTP client for the Beam registration API.
// The registration wizard drives it; it is also usable standalone.
package beamclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	dErrors "beam/pkg/domain-errors"
)

// Client talks to one Beam API host.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client, e.g. for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the given base URL (no trailing slash).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitResponse is the session created by POST /register/init.
type InitResponse struct {
	CompanyID   string `json:"company_id"`
	Status      string `json:"status"`
	CurrentStep int    `json:"current_step"`
}

// StepResponse acknowledges a step submission.
type StepResponse struct {
	CompanyID   string `json:"company_id"`
	Step        int    `json:"step"`
	Status      string `json:"status"`
	CurrentStep int    `json:"current_step"`
}

// Plan is one catalog entry from GET /plans.
type Plan struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	PriceMonthly        float64  `json:"price_monthly"`
	PriceYearly         float64  `json:"price_yearly"`
	MaxInvoicesPerMonth *int     `json:"max_invoices_per_month"`
	MaxUsers            int      `json:"max_users"`
	AllowAPIAccess      bool     `json:"allow_api_access"`
	AllowBranding       bool     `json:"allow_branding"`
	Description         string   `json:"description"`
	Features            []string `json:"features,omitempty"`
}

// Document is an upload acknowledged by the server.
type Document struct {
	ID       string `json:"id"`
	Type     string `json:"document_type"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	Status   string `json:"status"`
}

// Subscription is the trial started at plan selection.
type Subscription struct {
	ID               string    `json:"subscription_id"`
	PlanID           string    `json:"plan_id"`
	Status           string    `json:"status"`
	BillingCycle     string    `json:"billing_cycle"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}

// VerifyResponse acknowledges a consumed email-verification link.
type VerifyResponse struct {
	CompanyID     string `json:"company_id"`
	EmailVerified bool   `json:"email_verified"`
}

// Company is the public company read. The server returns the full aggregate;
// fields the wizard does not display are left to the raw JSON.
type Company struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	LegalName     string `json:"legal_name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	TRN           string `json:"trn"`
}

// DocumentList mirrors GET /register/{id}/documents.
type DocumentList struct {
	Documents     []Document `json:"documents"`
	RequiredTypes []string   `json:"required_types"`
}

// Progress mirrors GET /register/{id}/progress.
type Progress struct {
	CompanyID     string `json:"company_id"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
	Progress      struct {
		CurrentStep       int  `json:"current_step"`
		CompanyInfoDone   bool `json:"step_company_info"`
		BusinessDone      bool `json:"step_business_details"`
		DocumentsDone     bool `json:"step_documents"`
		PlanSelectionDone bool `json:"step_plan_selection"`
		ReviewDone        bool `json:"step_review"`
		Completed         bool `json:"completed"`
	} `json:"progress"`
}

// Init allocates a new registration session.
func (c *Client) Init(ctx context.Context) (*InitResponse, error) {
	var out InitResponse
	if err := c.postJSON(ctx, "/register/init", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitStep1 posts the company legal info.
func (c *Client) SubmitStep1(ctx context.Context, companyID string, payload map[string]any) (*StepResponse, error) {
	var out StepResponse
	if err := c.postJSON(ctx, "/register/"+companyID+"/step1", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitStep2 posts the business details.
func (c *Client) SubmitStep2(ctx context.Context, companyID string, payload map[string]any) (*StepResponse, error) {
	var out StepResponse
	if err := c.postJSON(ctx, "/register/"+companyID+"/step2", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteDocuments acknowledges step 3 once the required uploads exist.
func (c *Client) CompleteDocuments(ctx context.Context, companyID string) (*StepResponse, error) {
	var out StepResponse
	if err := c.postJSON(ctx, "/register/"+companyID+"/step3", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectPlan posts the step 4 plan choice and returns the trial subscription.
func (c *Client) SelectPlan(ctx context.Context, companyID, planID, billingCycle string) (*Subscription, error) {
	payload := map[string]any{"plan_id": planID}
	if billingCycle != "" {
		payload["billing_cycle"] = billingCycle
	}
	var out Subscription
	if err := c.postJSON(ctx, "/register/"+companyID+"/step4", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument posts one file as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, companyID, docType, fileName string, content []byte) (*Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("document_type", docType); err != nil {
		return nil, err
	}
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName)},
		"Content-Type":        {contentTypeFor(fileName)},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/register/"+companyID+"/documents", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Document
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Finalize submits the completed registration for review.
func (c *Client) Finalize(ctx context.Context, companyID string) error {
	return c.postJSON(ctx, "/register/"+companyID+"/finalize", nil, nil)
}

// Progress reads the server-side step state.
func (c *Client) Progress(ctx context.Context, companyID string) (*Progress, error) {
	var out Progress
	if err := c.getJSON(ctx, "/register/"+companyID+"/progress", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Plans lists the subscription plan catalog.
func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	if err := c.getJSON(ctx, "/plans", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendVerification asks the server to (re)send the verification email.
func (c *Client) SendVerification(ctx context.Context, companyID string) error {
	return c.postJSON(ctx, "/register/"+companyID+"/send-verification", nil, nil)
}

// Verify consumes an email-verification link token.
func (c *Client) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := c.postJSON(ctx, "/register/verify/"+token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments returns the documents uploaded so far plus the required types.
func (c *Client) ListDocuments(ctx context.Context, companyID string) (*DocumentList, error) {
	var out DocumentList
	if err := c.getJSON(ctx, "/register/"+companyID+"/documents", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes an uploaded document server-side. The wizard keeps
// removal local; this is for callers that want the server copy gone too.
func (c *Client) DeleteDocument(ctx context.Context, companyID, documentID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/register/"+companyID+"/documents/"+documentID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Company reads the public company record.
func (c *Client) Company(ctx context.Context, companyID string) (*Company, error) {
	var out Company
	if err := c.getJSON(ctx, "/companies/"+companyID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Subscription reads the company's current subscription.
func (c *Client) Subscription(ctx context.Context, companyID string) (*Subscription, error) {
	var out Subscription
	if err := c.getJSON(ctx, "/companies/"+companyID+"/subscription", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "beam api unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decode response")
	}
	return nil
}

// decodeError maps the server's error envelope back onto a coded error, so
// callers can branch on codes the same way server-side code does.
func decodeError(resp *http.Response) error {
	var envelope struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		return dErrors.Newf(dErrors.CodeInternal, "beam api returned status %d", resp.StatusCode)
	}
	msg := envelope.ErrorDescription
	if msg == "" {
		msg = envelope.Error
	}
	return dErrors.New(dErrors.Code(envelope.Error), msg)
}

func contentTypeFor(fileName string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(strings.ToLower(fileName), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(fileName), ".jpg"),
		strings.HasSuffix(strings.ToLower(fileName), ".jpeg"):
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
