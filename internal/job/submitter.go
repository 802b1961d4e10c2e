// Package job submits search jobs to the prospecting backend and tracks the
// submission status.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/metrics"
	"github.com/sells-group/prospect-cli/internal/notify"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/prospect"
)

// FailureMessage is the notice shown to the user when a submission fails.
const FailureMessage = "Une erreur est survenue lors du traitement."

// ErrInFlight is returned when Submit is called while another submission from
// the same Submitter has not finished. The backend is not contacted.
var ErrInFlight = eris.New("job: a submission is already in flight")

// Status is the lifecycle state of the latest submission.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Creator is the backend operation that enqueues a job.
type Creator interface {
	CreateJob(ctx context.Context, req prospect.CreateJobRequest) error
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithNotifier sets where failure notices go. Defaults to the log.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Submitter) {
		s.notifier = n
	}
}

// WithOnSuccess sets the hook run once after the backend acknowledges a job,
// typically a results reload.
func WithOnSuccess(fn func(ctx context.Context)) Option {
	return func(s *Submitter) {
		s.onSuccess = fn
	}
}

// Submitter sends one job at a time. It performs no input validation; the
// caller gates submission on Request.Valid.
type Submitter struct {
	creator   Creator
	notifier  notify.Notifier
	onSuccess func(ctx context.Context)

	mu      sync.Mutex
	status  Status
	lastErr error
	lastID  string
}

// NewSubmitter creates an idle Submitter.
func NewSubmitter(c Creator, opts ...Option) *Submitter {
	s := &Submitter{
		creator:  c,
		notifier: notify.Log{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends req to the backend. While a previous submission is pending it
// returns ErrInFlight without side effects. On success the status becomes
// Succeeded and the success hook runs exactly once; on failure the status
// becomes Failed, a notice is sent and a *resilience.TransportError is
// returned. Nothing is retried.
func (s *Submitter) Submit(ctx context.Context, req Request) error {
	s.mu.Lock()
	if s.status == StatusSubmitting {
		s.mu.Unlock()
		metrics.JobSubmissions.WithLabelValues(metrics.OutcomeRejected).Inc()
		zap.L().Debug("job: submission rejected, another is in flight",
			zap.String("submission_id", s.lastID),
		)
		return ErrInFlight
	}
	id := uuid.NewString()
	s.status = StatusSubmitting
	s.lastID = id
	s.lastErr = nil
	s.mu.Unlock()

	req = req.WithDefaults()
	log := zap.L().With(
		zap.String("submission_id", id),
		zap.String("keyword", req.Keyword),
		zap.String("zip_code", req.ZipCode),
		zap.Int("max_records", req.MaxRecords),
	)
	log.Info("job: submitting")

	start := time.Now()
	err := s.creator.CreateJob(ctx, prospect.CreateJobRequest{
		Keyword:   req.Keyword,
		Zipcode:   req.ZipCode,
		MaxFiches: req.MaxRecords,
	})
	metrics.JobSubmitDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		terr := resilience.NewTransportError(resilience.OpCreateJob, err)
		s.finish(StatusFailed, terr)
		metrics.JobSubmissions.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error("job: submission failed", zap.Error(err))

		notice := notify.Notice{
			Kind:         notify.KindSubmitFailed,
			Message:      FailureMessage,
			Detail:       err.Error(),
			SubmissionID: id,
			Transient:    resilience.IsTransient(err),
			Timestamp:    time.Now().UTC(),
		}
		if nerr := s.notifier.Notify(ctx, notice); nerr != nil {
			log.Error("job: failure notice not delivered", zap.Error(nerr))
		}
		return terr
	}

	s.finish(StatusSucceeded, nil)
	metrics.JobSubmissions.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	log.Info("job: acknowledged", zap.Duration("elapsed", time.Since(start)))

	if s.onSuccess != nil {
		s.onSuccess(ctx)
	}
	return nil
}

func (s *Submitter) finish(st Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.lastErr = err
}

// Status returns the current submission status.
func (s *Submitter) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// InFlight reports whether a submission is pending.
func (s *Submitter) InFlight() bool {
	return s.Status() == StatusSubmitting
}

// LastError returns the error of the latest failed submission, if any.
func (s *Submitter) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastSubmissionID returns the correlation id of the latest submission.
func (s *Submitter) LastSubmissionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastID
}
