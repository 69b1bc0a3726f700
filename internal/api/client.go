package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/smartfactory/llmops-console/internal/model"
)

// EnvBaseURL overrides every other base-URL source when set.
const EnvBaseURL = "LLMOPS_API_URL"

// Client is the typed gateway to the monitoring backend. Every call is a
// fresh round trip: no retries, no caching, no deduplication. List endpoints
// return the raw parsed body because the backend is inconsistent about
// wrapping; callers own shaping (see DecodeList).
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// New resolves the base URL in priority order: LLMOPS_API_URL, then the
// configured value, then the deployment default baked into the config
// package. No other component may construct its own base URL.
func New(configured string, timeout time.Duration, logger *slog.Logger) *Client {
	baseURL := os.Getenv(EnvBaseURL)
	if baseURL == "" {
		baseURL = configured
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL reports the resolved backend address.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Traces(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/traces")
}

func (c *Client) Trace(ctx context.Context, traceID string) (model.Trace, error) {
	raw, err := c.get(ctx, "/traces/"+url.PathEscape(traceID))
	if err != nil {
		return model.Trace{}, err
	}
	var t model.Trace
	if err := json.Unmarshal(raw, &t); err != nil {
		return model.Trace{}, fmt.Errorf("decode trace %s: %w", traceID, err)
	}
	return t, nil
}

func (c *Client) Sessions(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/sessions")
}

func (c *Client) Evaluators(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/evaluators")
}

func (c *Client) CreateEvaluator(ctx context.Context, payload model.EvaluatorCreate) error {
	return c.post(ctx, "/evaluators", payload)
}

func (c *Client) Templates(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/templates")
}

func (c *Client) CreateTemplate(ctx context.Context, payload model.TemplateCreate) error {
	return c.post(ctx, "/templates", payload)
}

func (c *Client) Evaluations(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/evaluations")
}

func (c *Client) Datasets(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/datasets")
}

func (c *Client) DatasetItems(ctx context.Context, name string) (json.RawMessage, error) {
	return c.get(ctx, "/datasets/"+url.PathEscape(name))
}

// RunDataset triggers an out-of-band evaluation run. The response body is not
// consumed; the run is fire-and-forget from the console's perspective.
func (c *Client) RunDataset(ctx context.Context, name string) error {
	return c.post(ctx, "/datasets/"+url.PathEscape(name)+"/run", nil)
}

func (c *Client) AuditLogs(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/audit")
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}
	c.logger.Debug("api get", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return json.RawMessage(body), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// StatusError is an HTTP-level failure, propagated to callers unchanged.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
