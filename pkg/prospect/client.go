// Package prospect provides a client for the prospecting backend API, which
// runs scrape-and-enrich jobs and serves the consolidated lead list.
package prospect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/lead"
)

const defaultBaseURL = "http://localhost:8000"

// Client defines the prospecting backend operations.
type Client interface {
	// CreateJob enqueues a scrape-and-enrich job. A nil error means the
	// backend acknowledged the job.
	CreateJob(ctx context.Context, req CreateJobRequest) error
	// FetchResults returns the complete current lead collection.
	FetchResults(ctx context.Context) ([]lead.Raw, error)
	// ExportURL returns the direct-download link of the lead export (JSON).
	ExportURL() string
	// DownloadExport streams the lead export to w and returns the bytes written.
	DownloadExport(ctx context.Context, w io.Writer) (int64, error)
	// Health checks that the backend is up.
	Health(ctx context.Context) (*HealthResponse, error)
}

// CreateJobRequest is the body for POST /process.
type CreateJobRequest struct {
	Keyword   string `json:"keyword"`
	Zipcode   string `json:"zipcode"`
	MaxFiches int    `json:"max_fiches"`
}

// HealthResponse is the response from GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// APIError is returned when the backend responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prospect: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the overall timeout for a single request. Job creation runs
// the whole scraping workflow before answering, so this should be generous.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit throttles outgoing requests to rps per second. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new backend client. An empty baseURL uses the local
// default.
func NewClient(baseURL string, opts ...Option) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) CreateJob(ctx context.Context, req CreateJobRequest) error {
	buf, err := json.Marshal(req)
	if err != nil {
		return eris.Wrap(err, "prospect: marshal job request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "prospect: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// The backend answers with the CSV it produced; only the status matters.
	if err := c.do(ctx, httpReq, io.Discard); err != nil {
		return eris.Wrap(err, "prospect: create job")
	}
	return nil
}

func (c *httpClient) FetchResults(ctx context.Context) ([]lead.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "prospect: create request")
	}
	req.Header.Set("Accept", "application/json")

	var body bytes.Buffer
	if err := c.do(ctx, req, &body); err != nil {
		return nil, eris.Wrap(err, "prospect: fetch results")
	}

	var rows []lead.Raw
	dec := json.NewDecoder(&body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, eris.Wrap(err, "prospect: unmarshal results")
	}
	if rows == nil {
		rows = []lead.Raw{}
	}
	return rows, nil
}

func (c *httpClient) ExportURL() string {
	return c.baseURL + "/results"
}

func (c *httpClient) DownloadExport(ctx context.Context, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(), nil)
	if err != nil {
		return 0, eris.Wrap(err, "prospect: create request")
	}

	cw := &countingWriter{w: w}
	if err := c.do(ctx, req, cw); err != nil {
		return cw.n, eris.Wrap(err, "prospect: download export")
	}
	return cw.n, nil
}

func (c *httpClient) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, eris.Wrap(err, "prospect: create request")
	}

	var body bytes.Buffer
	if err := c.do(ctx, req, &body); err != nil {
		return nil, eris.Wrap(err, "prospect: health")
	}

	var resp HealthResponse
	if err := json.Unmarshal(body.Bytes(), &resp); err != nil {
		return nil, eris.Wrap(err, "prospect: unmarshal health")
	}
	return &resp, nil
}

// do executes req and copies a 2xx body into out. Non-2xx responses become an
// *APIError carrying the (truncated) body.
func (c *httpClient) do(ctx context.Context, req *http.Request, out io.Writer) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limit")
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return eris.Wrap(err, "read response body")
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
