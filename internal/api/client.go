// internal/api/client.go
//
// HTTP client for the courtroom simulator backend. Every analysis step is a
// POST keyed by the case id the upload handed back; this client only moves
// JSON and never interprets the results.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request. Simulations run multiple LLM
// debate rounds server-side, so this is generous.
const DefaultTimeout = 120 * time.Second

// Client talks to one backend instance. Safe for use from multiple
// goroutines, though the workflow controller serializes calls anyway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given origin. The service mounts its
// routes under /api, which is appended here so config files carry only the
// origin.
func NewClient(origin string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(origin, "/") + "/api",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the resolved API base, mainly for display.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the backend is reachable by hitting the API root route.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doJSON(req, nil)
}

// Upload sends the document as multipart form field "file" and returns the
// new case id plus the extracted text excerpt.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return UploadResult{}, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResult{}, fmt.Errorf("read document: %w", err)
	}
	if err := form.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var result UploadResult
	if err := c.doJSON(req, &result); err != nil {
		return UploadResult{}, err
	}
	return result, nil
}

// ProcessCase asks the backend to extract facts, issues, and holding.
func (c *Client) ProcessCase(ctx context.Context, caseID string) (CaseDetails, error) {
	var details CaseDetails
	if err := c.post(ctx, "/process-case/"+url.PathEscape(caseID), &details); err != nil {
		return CaseDetails{}, err
	}
	return details, nil
}

// Predict runs the baseline outcome classifier for the case.
func (c *Client) Predict(ctx context.Context, caseID string) (Prediction, error) {
	var prediction Prediction
	if err := c.post(ctx, "/predict/"+url.PathEscape(caseID), &prediction); err != nil {
		return Prediction{}, err
	}
	return prediction, nil
}

// Simulate runs the multi-agent debate for the given number of rounds and
// returns the transcript and verdict.
func (c *Client) Simulate(ctx context.Context, caseID string, rounds int) (Simulation, error) {
	path := "/simulate/" + url.PathEscape(caseID) + "?rounds=" + strconv.Itoa(rounds)
	var simulation Simulation
	if err := c.post(ctx, path, &simulation); err != nil {
		return Simulation{}, err
	}
	return simulation, nil
}

// Audit runs the bias audit over the case and its verdict.
func (c *Client) Audit(ctx context.Context, caseID string) (AuditResult, error) {
	var envelope auditEnvelope
	if err := c.post(ctx, "/audit/"+url.PathEscape(caseID), &envelope); err != nil {
		return AuditResult{}, err
	}
	return envelope.AuditResult, nil
}

// Case fetches the complete stored case document.
func (c *Client) Case(ctx context.Context, caseID string) (CaseRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/case/"+url.PathEscape(caseID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var record CaseRecord
	if err := c.doJSON(req, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// post issues a bodyless POST, the shape every analysis endpoint shares.
func (c *Client) post(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doJSON(req, out)
}

// doJSON sends the request, maps non-2xx responses to *APIError, and decodes
// the body into out when out is non-nil.
func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
