package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Defaults for WaitForJob.
const (
	DefaultPollInterval = time.Second
	DefaultMaxAttempts  = 600
	DefaultBackoffStart = 5 * time.Second
	DefaultBackoffMax   = 30 * time.Second
)

// Client talks to a docrag server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	apiKey  string

	pollInterval time.Duration
	maxAttempts  int
	backoffStart time.Duration
	backoffMax   time.Duration

	obs *observer
	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("docrag: invalid base URL %q", baseURL)
	}

	cfg := &clientConfig{
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		pollInterval: DefaultPollInterval,
		maxAttempts:  DefaultMaxAttempts,
		backoffStart: DefaultBackoffStart,
		backoffMax:   DefaultBackoffMax,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:      u,
		http:         cfg.httpClient,
		apiKey:       cfg.apiKey,
		pollInterval: cfg.pollInterval,
		maxAttempts:  cfg.maxAttempts,
		backoffStart: cfg.backoffStart,
		backoffMax:   cfg.backoffMax,
		obs:          obs,
		sleep:        sleepCtx,
	}, nil
}

// Upload sends a file body for ingestion and returns the queued job handle.
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (up Upload, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upload", start, err) }()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fw, werr := mw.CreateFormFile("file", filepath.Base(filename))
		if werr == nil {
			_, werr = io.Copy(fw, body)
		}
		if werr == nil {
			werr = mw.Close()
		}
		pw.CloseWithError(werr)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", pr)
	if err != nil {
		_ = pr.Close()
		return Upload{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if err := c.do(req, http.StatusAccepted, &up); err != nil {
		return Upload{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	return up, nil
}

// UploadFile opens path and uploads it.
func (c *Client) UploadFile(ctx context.Context, path string) (Upload, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Upload{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return c.Upload(ctx, filepath.Base(path), f)
}

// Status returns the current state of a job.
func (c *Client) Status(ctx context.Context, fileID string) (j Job, err error) {
	start := time.Now()
	defer func() { c.obs.observe("status", start, err) }()

	if err := c.getJSON(ctx, "/api/upload/status/"+url.PathEscape(fileID), &j); err != nil {
		return Job{}, fmt.Errorf("status %s: %w", fileID, err)
	}
	return j, nil
}

// Jobs lists every tracked job.
func (c *Client) Jobs(ctx context.Context) (jobs []Job, err error) {
	start := time.Now()
	defer func() { c.obs.observe("jobs", start, err) }()

	var resp struct {
		Uploads []Job `json:"uploads"`
	}
	if err := c.getJSON(ctx, "/api/upload/status", &resp); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return resp.Uploads, nil
}

// Chat sends one chat turn.
func (c *Client) Chat(ctx context.Context, in ChatRequest) (resp ChatResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err) }()

	if err := c.postJSON(ctx, "/api/chat", in, http.StatusOK, &resp); err != nil {
		return ChatResponse{}, fmt.Errorf("chat: %w", err)
	}
	switch {
	case resp.Response != "":
		resp.Text = resp.Response
	case resp.Summary != "":
		resp.Text = resp.Summary
	default:
		resp.Text = resp.Research
	}
	return resp, nil
}

// Search runs an explicit similarity search.
func (c *Client) Search(ctx context.Context, in SearchRequest) (results []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var resp struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.postJSON(ctx, "/api/search", in, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resp.Results, nil
}

// Documents lists the catalog.
func (c *Client) Documents(ctx context.Context) (list DocumentList, err error) {
	start := time.Now()
	defer func() { c.obs.observe("documents", start, err) }()

	if err := c.getJSON(ctx, "/api/documents", &list); err != nil {
		return DocumentList{}, fmt.Errorf("list documents: %w", err)
	}
	return list, nil
}

// DeleteDocument removes a document and its chunks.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_document", start, err) }()

	req, err := c.newRequest(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(documentID), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

// Reindex re-runs ingestion for a stored document.
func (c *Client) Reindex(ctx context.Context, documentID string) (up Upload, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reindex", start, err) }()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/documents/"+url.PathEscape(documentID)+"/reindex", nil)
	if err != nil {
		return Upload{}, err
	}
	if err := c.do(req, http.StatusAccepted, &up); err != nil {
		return Upload{}, fmt.Errorf("reindex %s: %w", documentID, err)
	}
	return up, nil
}

// Health returns the server health report. A degraded server answers 503
// with a body, which is returned alongside the error.
func (c *Client) Health(ctx context.Context) (h Health, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("health: decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return h, &APIError{StatusCode: resp.StatusCode, Message: "status " + h.Status}
	}
	return h, nil
}

// WaitForJob polls a job until it completes or fails. Polls run at a fixed
// interval; transport errors and 5xx responses switch to a doubling backoff.
// A failed job returns ErrJobFailed together with the final snapshot.
func (c *Client) WaitForJob(ctx context.Context, fileID string) (Job, error) {
	backoff := c.backoffStart
	var last Job
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		j, err := c.Status(ctx, fileID)
		switch {
		case err == nil:
			backoff = c.backoffStart
			last = j
			if j.Status == StatusCompleted {
				return j, nil
			}
			if j.Status == StatusFailed {
				return j, fmt.Errorf("%w: %s", ErrJobFailed, j.Message)
			}
			if err := c.sleep(ctx, c.pollInterval); err != nil {
				return last, err
			}
		case isTransient(err):
			if sleepErr := c.sleep(ctx, backoff); sleepErr != nil {
				return last, sleepErr
			}
			backoff = min(backoff*2, c.backoffMax)
		default:
			return last, err
		}
	}
	return last, fmt.Errorf("%w: %s after %d attempts", ErrWaitExhausted, fileID, c.maxAttempts)
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	// Anything else came from the transport.
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("docrag: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in any, want int, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("docrag: encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, want, out)
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("docrag: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("docrag: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && (e.Code != "" || e.Message != "") {
		apiErr.Code = e.Code
		apiErr.Message = e.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
