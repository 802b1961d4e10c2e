// Package dashboard composes the results store and the job submitter into the
// interactive surface shared by every presentation skin.
package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/job"
	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/notify"
	"github.com/sells-group/prospect-cli/internal/results"
)

// Backend is the subset of the prospecting API the controller needs.
type Backend interface {
	job.Creator
	results.Fetcher
	ExportURL() string
}

// Summary is the header shown above the lead table. It is derived from the
// current records on every call and never stored.
type Summary struct {
	lead.Summary
	Busy         bool   `json:"busy"`
	JobStatus    string `json:"job_status"`
	SubmissionID string `json:"submission_id,omitempty"`
	JobError     string `json:"job_error,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	SubmitOpen   bool   `json:"submit_open"`
}

// Controller owns the search form inputs and wires user actions to the
// submitter and the store.
type Controller struct {
	store      *results.Store
	submitter  *job.Submitter
	exportURL  string
	maxRecords int

	mu      sync.Mutex
	keyword string
	zipCode string
}

// Option configures a Controller.
type Option func(*config)

type config struct {
	notifier   notify.Notifier
	maxRecords int
}

// WithNotifier sets where submission failure notices go.
func WithNotifier(n notify.Notifier) Option {
	return func(c *config) {
		c.notifier = n
	}
}

// WithMaxRecords sets how many listings each search asks the backend for.
func WithMaxRecords(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxRecords = n
		}
	}
}

// New builds a controller over backend. A successful submission reloads the
// results exactly once.
func New(backend Backend, opts ...Option) *Controller {
	cfg := config{
		notifier:   notify.Log{},
		maxRecords: job.DefaultMaxRecords,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Controller{
		store:      results.NewStore(backend),
		exportURL:  backend.ExportURL(),
		maxRecords: cfg.maxRecords,
	}
	c.submitter = job.NewSubmitter(backend,
		job.WithNotifier(cfg.notifier),
		job.WithOnSuccess(c.refreshAfterSubmit),
	)
	return c
}

// SetKeyword updates the activity keyword input.
func (c *Controller) SetKeyword(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keyword = v
}

// SetZipCode updates the postal code input.
func (c *Controller) SetZipCode(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zipCode = v
}

// Inputs returns the current form inputs as a request.
func (c *Controller) Inputs() job.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return job.Request{Keyword: c.keyword, ZipCode: c.zipCode, MaxRecords: c.maxRecords}
}

// CanSubmit reports whether the submit control should be enabled: both
// inputs filled and no submission pending.
func (c *Controller) CanSubmit() bool {
	return c.Inputs().Valid() && !c.submitter.InFlight()
}

// Mount performs the initial load.
func (c *Controller) Mount(ctx context.Context) error {
	return c.store.Load(ctx)
}

// Refresh reloads the results on user request.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.store.Load(ctx)
}

// Submit validates the current inputs and sends the search job. Empty inputs
// yield a *resilience.ValidationError and never reach the backend. A
// submission made while another is pending returns job.ErrInFlight.
func (c *Controller) Submit(ctx context.Context) error {
	return c.SubmitRequest(ctx, c.Inputs())
}

// SubmitRequest validates and sends req as given, without reading the form
// inputs back. A zero MaxRecords uses the controller's setting.
func (c *Controller) SubmitRequest(ctx context.Context, req job.Request) error {
	if req.MaxRecords <= 0 {
		req.MaxRecords = c.maxRecords
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.submitter.Submit(ctx, req)
}

// Search sets both inputs and submits exactly those values, even if the
// inputs change again before the job is sent.
func (c *Controller) Search(ctx context.Context, keyword, zipCode string) error {
	c.mu.Lock()
	c.keyword, c.zipCode = keyword, zipCode
	c.mu.Unlock()
	return c.SubmitRequest(ctx, job.Request{Keyword: keyword, ZipCode: zipCode})
}

func (c *Controller) refreshAfterSubmit(ctx context.Context) {
	if err := c.store.Load(ctx); err != nil {
		zap.L().Warn("dashboard: refresh after submission failed", zap.Error(err))
	}
}

// Busy is true while a submission or a load is pending.
func (c *Controller) Busy() bool {
	return c.submitter.InFlight() || c.store.Loading()
}

// JobStatus returns the submitter status.
func (c *Controller) JobStatus() job.Status {
	return c.submitter.Status()
}

// State returns the current results state.
func (c *Controller) State() results.State {
	return c.store.Snapshot()
}

// Records returns the current records narrowed by criteria.
func (c *Controller) Records(criteria lead.Criteria) []lead.Display {
	return lead.Filter(c.store.Records(), criteria)
}

// Summary computes the header statistics from the current snapshot.
func (c *Controller) Summary() Summary {
	st := c.store.Snapshot()
	status := c.submitter.Status()
	s := Summary{
		Summary:      lead.Summarize(st.Records),
		Busy:         status == job.StatusSubmitting || st.Loading,
		JobStatus:    status.String(),
		SubmissionID: c.submitter.LastSubmissionID(),
		SubmitOpen:   c.CanSubmit(),
	}
	if err := c.submitter.LastError(); err != nil {
		s.JobError = err.Error()
	}
	if st.LastError != nil {
		s.LastError = st.LastError.Error()
	}
	return s
}

// ExportURL is the direct-download link of the lead export.
func (c *Controller) ExportURL() string {
	return c.exportURL
}
