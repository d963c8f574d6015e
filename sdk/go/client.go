// Package hiremesdk is a minimal client for the HireMe staff reports API.
package hiremesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

// Preview requests are bounded: first page, fixed size.
const previewPerPage = 50

var (
	ErrNoDataSource = errors.New("select a data source before generating the report")
	ErrNoFields     = errors.New("select at least one field before generating the report")
)

// Client is an HTTP client for the staff reports API. Requests carry a
// bearer credential and, when set, the CSRF token the staff console sources
// from page metadata.
type Client struct {
	BaseURL     string
	BearerToken string
	CSRFToken   string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// APIError wraps non-2xx responses. Message extraction prefers the nested
// diagnostic over the top-level message when the body carries one.
type APIError struct {
	StatusCode  int
	Message     string
	DiagMessage string
	DiagLine    int
}

func (e *APIError) Error() string {
	switch {
	case e.DiagMessage != "" && e.DiagLine > 0:
		return fmt.Sprintf("%s (line %d)", e.DiagMessage, e.DiagLine)
	case e.DiagMessage != "":
		return e.DiagMessage
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
}

type errorEnvelope struct {
	Message string `json:"message"`
	Err     *struct {
		Message string `json:"message"`
		Line    int    `json:"line"`
	} `json:"error"`
}

// DataSources fetches the descriptor catalog. Call once per session and
// treat the result as immutable reference data.
func (c *Client) DataSources(ctx context.Context) (map[string]domain.DataSource, error) {
	var resp struct {
		Data map[string]domain.DataSource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.apiPath("staff/reports/data-sources"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FieldOptions resolves distinct values for a (source, field) pair. It
// satisfies the option-fetcher contract of the report session cache.
func (c *Client) FieldOptions(ctx context.Context, source, field string) ([]domain.Option, error) {
	endpoint := c.apiPath(fmt.Sprintf("staff/reports/field-options?data_source=%s&field=%s",
		url.QueryEscape(source), url.QueryEscape(field)))
	var resp struct {
		Data struct {
			Options []domain.Option `json:"options"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Options, nil
}

// Execute posts a finished request body as-is. It satisfies the report
// session's executor contract; most callers want GeneratePreview instead.
func (c *Client) Execute(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	var resp struct {
		Data domain.Result `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, c.apiPath("staff/reports/custom"), spec, &resp); err != nil {
		return domain.Result{}, err
	}
	return resp.Data, nil
}

// GeneratePreview validates the draft, silently drops incomplete filter
// rows, pins pagination to the first preview page, and executes. Validation
// failures never issue a request.
func (c *Client) GeneratePreview(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	if spec.DataSource == "" {
		return domain.Result{}, ErrNoDataSource
	}
	if len(spec.SelectedFields) == 0 {
		return domain.Result{}, ErrNoFields
	}
	req := domain.Spec{
		DataSource:     spec.DataSource,
		SelectedFields: spec.SelectedFields,
		Filters:        spec.CompleteFilters(),
		Sorting:        spec.Sorting,
		Pagination:     domain.Pagination{Page: 1, PerPage: previewPerPage},
	}
	return c.Execute(ctx, req)
}

// CreateExport runs a specification server-side and persists the artifact.
func (c *Client) CreateExport(ctx context.Context, spec domain.Spec, format string) (domain.ExportRecord, error) {
	body := map[string]any{"spec": spec, "format": format}
	var resp struct {
		Data domain.ExportRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, c.apiPath("staff/reports/exports"), body, &resp); err != nil {
		return domain.ExportRecord{}, err
	}
	return resp.Data, nil
}

// ListExports returns recorded export artifacts, newest first.
func (c *Client) ListExports(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	endpoint := c.apiPath("staff/reports/exports")
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp struct {
		Data []domain.ExportRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Ping hits the diagnostic probe; for manual troubleshooting only.
func (c *Client) Ping(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	err := c.do(ctx, http.MethodGet, c.apiPath("staff/reports/test"), nil, &resp)
	return resp, err
}

// Token exchanges an actor id for a staff bearer token and stores it on the
// client.
func (c *Client) Token(ctx context.Context, actorID string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, c.apiPath("staff/auth/token"), map[string]any{"actor_id": actorID}, &resp); err != nil {
		return "", err
	}
	c.BearerToken = resp.Token
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	u := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	if c.CSRFToken != "" {
		req.Header.Set("X-CSRF-Token", c.CSRFToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(resp.Body)
	var env errorEnvelope
	if json.Unmarshal(b, &env) == nil {
		apiErr.Message = env.Message
		if env.Err != nil {
			apiErr.DiagMessage = env.Err.Message
			apiErr.DiagLine = env.Err.Line
		}
	}
	return apiErr
}

func (c *Client) apiPath(p string) string {
	return "api/" + strings.TrimLeft(p, "/")
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
