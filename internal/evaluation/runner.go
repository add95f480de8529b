// Package evaluation drives asynchronous resume analysis. It submits
// applications to the external analyzer and polls each remote job until it
// reaches a terminal state, recording progress on the applicant row as it
// goes. Polling happens server-side so evaluations finish even when every
// browser tab is closed.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/findr-ai/findr/internal/analyzer"
	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/metrics"
	"github.com/findr-ai/findr/internal/schemas"
)

// Display progress is pinned to a 10-95 band while a job is in flight so the
// bar never sits at zero after submission or at full before completion.
const (
	progressFloor   = 10
	progressCeiling = 95
)

// store is the subset of db.DB the runner needs.
type store interface {
	GetApplicant(ctx context.Context, id uuid.UUID) (*db.Applicant, error)
	SetAnalyzerJob(ctx context.Context, applicantID uuid.UUID, analyzerJobID string) error
	UpdateEvaluationProgress(ctx context.Context, applicantID uuid.UUID, progress int) error
	CompleteEvaluation(ctx context.Context, applicantID uuid.UUID, results []byte) (bool, error)
	FailEvaluation(ctx context.Context, applicantID uuid.UUID, reason string) (bool, error)
	ListStartedApplicants(ctx context.Context) ([]db.Applicant, error)
}

// analyzerAPI is the subset of the analyzer client the runner needs.
type analyzerAPI interface {
	Submit(ctx context.Context, req analyzer.SubmitRequest) (string, error)
	Status(ctx context.Context, jobID string) (*analyzer.JobStatus, error)
	Delete(ctx context.Context, jobID string) error
}

// Config tunes the polling loop.
type Config struct {
	PollInterval  time.Duration
	MaxAttempts   int
	MaxConcurrent int
}

// Runner owns the background evaluation workers.
type Runner struct {
	store    store
	analyzer analyzerAPI
	cfg      Config
	logger   *zap.Logger

	queue chan uuid.UUID
}

// NewRunner creates a Runner. Call Run to start its workers.
func NewRunner(store store, client analyzerAPI, cfg Config, logger *zap.Logger) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 60
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Runner{
		store:    store,
		analyzer: client,
		cfg:      cfg,
		logger:   logger,
		queue:    make(chan uuid.UUID, 256),
	}
}

// Run consumes the queue until ctx is canceled. It first re-adopts any
// applicants left mid-evaluation by a previous process.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.readopt(ctx); err != nil {
		r.logger.Warn("failed to re-adopt in-flight evaluations", zap.Error(err))
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.MaxConcurrent)

	for {
		select {
		case <-ctx.Done():
			return group.Wait()
		case applicantID := <-r.queue:
			group.Go(func() error {
				r.poll(ctx, applicantID)
				return nil
			})
		}
	}
}

// Begin submits an applicant's materials to the analyzer and queues the
// applicant for polling. The applicant row must already be in the started
// state. On submission failure the evaluation is marked failed.
func (r *Runner) Begin(ctx context.Context, applicantID uuid.UUID, req analyzer.SubmitRequest) error {
	remoteID, err := r.analyzer.Submit(ctx, req)
	if err != nil {
		r.logger.Error("analyzer submission failed",
			zap.String("applicant_id", applicantID.String()),
			zap.Error(err))
		applied, failErr := r.store.FailEvaluation(ctx, applicantID, "analyzer submission failed")
		if failErr != nil {
			r.logger.Error("failed to record submission failure", zap.Error(failErr))
		}
		if applied {
			metrics.EvaluationsFinished.WithLabelValues("failed").Inc()
		}
		return fmt.Errorf("failed to submit evaluation: %w", err)
	}

	if err := r.store.SetAnalyzerJob(ctx, applicantID, remoteID); err != nil {
		return fmt.Errorf("failed to record analyzer job id: %w", err)
	}

	metrics.EvaluationsStarted.Inc()
	r.logger.Info("evaluation submitted",
		zap.String("applicant_id", applicantID.String()),
		zap.String("analyzer_job_id", remoteID))

	r.Enqueue(applicantID)
	return nil
}

// Enqueue schedules an applicant for polling. It never blocks; a full queue
// is drained by the startup re-adoption pass of the next run.
func (r *Runner) Enqueue(applicantID uuid.UUID) {
	select {
	case r.queue <- applicantID:
	default:
		r.logger.Warn("evaluation queue full, deferring applicant",
			zap.String("applicant_id", applicantID.String()))
	}
}

// readopt queues applicants whose evaluation was started but never finished.
func (r *Runner) readopt(ctx context.Context) error {
	applicants, err := r.store.ListStartedApplicants(ctx)
	if err != nil {
		return err
	}
	for _, applicant := range applicants {
		if applicant.AnalyzerJobID == nil {
			// Submission never completed; the remote job does not exist.
			if _, err := r.store.FailEvaluation(ctx, applicant.ID, "evaluation interrupted before submission"); err != nil {
				r.logger.Error("failed to fail orphaned evaluation", zap.Error(err))
			}
			continue
		}
		r.Enqueue(applicant.ID)
	}
	if len(applicants) > 0 {
		r.logger.Info("re-adopted in-flight evaluations", zap.Int("count", len(applicants)))
	}
	return nil
}

// poll checks the analyzer on an interval until the job reaches a terminal
// state or the attempt budget runs out.
func (r *Runner) poll(ctx context.Context, applicantID uuid.UUID) {
	logger := r.logger.With(zap.String("applicant_id", applicantID.String()))

	applicant, err := r.store.GetApplicant(ctx, applicantID)
	if err != nil || applicant == nil {
		logger.Error("failed to load applicant for polling", zap.Error(err))
		return
	}
	if applicant.AIEvaluationStatus != db.EvalStarted || applicant.AnalyzerJobID == nil {
		return
	}
	remoteID := *applicant.AnalyzerJobID
	logger = logger.With(zap.String("analyzer_job_id", remoteID))

	metrics.EvaluationsActive.Inc()
	defer metrics.EvaluationsActive.Dec()
	startedAt := time.Now()

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			// Leave the row in started state; the next run re-adopts it.
			return
		case <-ticker.C:
		}

		metrics.EvaluationPolls.Inc()
		status, err := r.analyzer.Status(ctx, remoteID)
		if err == analyzer.ErrJobNotFound {
			r.finishFailed(ctx, logger, applicantID, "analyzer job disappeared", startedAt)
			return
		}
		if err != nil {
			logger.Warn("analyzer status poll failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		switch status.Status {
		case analyzer.StatusCompleted:
			r.finishCompleted(ctx, logger, applicantID, remoteID, status.Results, startedAt)
			return
		case analyzer.StatusFailed:
			reason := status.Error
			if reason == "" {
				reason = "analysis failed"
			}
			r.finishFailed(ctx, logger, applicantID, reason, startedAt)
			return
		default:
			if err := r.store.UpdateEvaluationProgress(ctx, applicantID, DisplayProgress(status.Progress)); err != nil {
				logger.Warn("failed to record evaluation progress", zap.Error(err))
			}
		}
	}

	r.finishFailed(ctx, logger, applicantID, "evaluation timed out", startedAt)
}

func (r *Runner) finishCompleted(ctx context.Context, logger *zap.Logger, applicantID uuid.UUID, remoteID string, results json.RawMessage, startedAt time.Time) {
	if err := schemas.ValidateEvaluationResults(results); err != nil {
		logger.Error("analyzer returned malformed results", zap.Error(err))
		r.finishFailed(ctx, logger, applicantID, "analyzer returned malformed results", startedAt)
		return
	}

	applied, err := r.store.CompleteEvaluation(ctx, applicantID, results)
	if err != nil {
		logger.Error("failed to record completed evaluation", zap.Error(err))
		return
	}
	if !applied {
		// Another writer already finished this evaluation.
		return
	}

	metrics.EvaluationsFinished.WithLabelValues("completed").Inc()
	metrics.EvaluationDuration.Observe(time.Since(startedAt).Seconds())
	logger.Info("evaluation completed", zap.Duration("elapsed", time.Since(startedAt)))

	if err := r.analyzer.Delete(ctx, remoteID); err != nil {
		logger.Warn("failed to delete remote analyzer job", zap.Error(err))
	}
}

func (r *Runner) finishFailed(ctx context.Context, logger *zap.Logger, applicantID uuid.UUID, reason string, startedAt time.Time) {
	applied, err := r.store.FailEvaluation(ctx, applicantID, reason)
	if err != nil {
		logger.Error("failed to record failed evaluation", zap.Error(err))
		return
	}
	if !applied {
		return
	}

	metrics.EvaluationsFinished.WithLabelValues("failed").Inc()
	metrics.EvaluationDuration.Observe(time.Since(startedAt).Seconds())
	logger.Info("evaluation failed",
		zap.String("reason", reason),
		zap.Duration("elapsed", time.Since(startedAt)))
}

// DisplayProgress maps the analyzer's 0.0-1.0 progress onto the 10-95 band.
func DisplayProgress(progress float64) int {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return progressFloor + int(progress*float64(progressCeiling-progressFloor))
}
