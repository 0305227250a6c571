package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/adapters/mq/queue"
	"github.com/fightsight/engine/internal/adapters/repository"
	"github.com/fightsight/engine/internal/domain/classify"
	"github.com/fightsight/engine/internal/domain/combo"
	"github.com/fightsight/engine/internal/domain/detect"
	"github.com/fightsight/engine/internal/domain/enrich"
	"github.com/fightsight/engine/internal/domain/pose"
	"github.com/fightsight/engine/pkg/logger"
	"github.com/fightsight/engine/pkg/metrics"
)

// Stage progress weights. Detection accounts for the first fifth of the
// run, classification for the bulk, enrichment and aggregation for the
// rest. Progress hits 100 only on completion.
const (
	progressDetected   = 20
	progressClassified = 80
	progressEnriched   = 90
)

// Runner owns one session's pipeline run from pending to a terminal state.
// Stages execute strictly sequentially; only classification parallelizes
// internally. A Runner is stateless between jobs and safe to share across
// workers.
type Runner struct {
	store        repository.Store
	detector     *detect.Detector
	orchestrator *Orchestrator
	builder      *combo.Builder
	enricher     *enrich.Enricher
	reporter     classify.ReportGenerator

	budget    time.Duration
	newSource func(path string) pose.Source
	logger    logger.Logger
}

// NewRunner wires the pipeline stages around the store. reporter may be
// nil, in which case the report input is built but not submitted.
func NewRunner(
	store repository.Store,
	detector *detect.Detector,
	orchestrator *Orchestrator,
	builder *combo.Builder,
	enricher *enrich.Enricher,
	reporter classify.ReportGenerator,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		store:        store,
		detector:     detector,
		orchestrator: orchestrator,
		builder:      builder,
		enricher:     enricher,
		reporter:     reporter,
		newSource: func(path string) pose.Source {
			return pose.NewFileSource(path)
		},
		logger: logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives one job through the full pipeline. The returned error reports
// why the run did not complete; the session status already reflects it.
func (r *Runner) Run(ctx context.Context, job queue.Job) error {
	sess, err := r.store.Session(ctx, job.SessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", job.SessionID, err)
	}

	fighters, err := r.store.Fighters(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("load fighters: %w", err)
	}
	if len(fighters) != 2 {
		return r.fail(ctx, sess.ID, fmt.Errorf("%w: session has %d fighters, want 2", ErrValidation, len(fighters)))
	}

	if err := r.store.MarkProcessing(ctx, sess.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrTerminal) {
			r.logger.Warn(ctx, "session already terminal, skipping",
				logger.String("session_id", sess.ID.String()),
			)
			return nil
		}
		return fmt.Errorf("mark processing: %w", err)
	}

	metrics.RecordSessionStarted()
	start := time.Now()

	// The budget bounds pipeline work only. Persistence of the outcome
	// must still happen after the budget expires, so store calls run on
	// the worker's context.
	runCtx := ctx
	if r.budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.budget)
		defer cancel()
	}

	frames, err := r.newSource(job.PosesPath).Frames(runCtx)
	if err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("load pose data: %w", err))
	}

	detectStart := time.Now()
	candidates := r.detector.Detect(frames)
	metrics.RecordStageDuration("detect", time.Since(detectStart).Seconds())
	metrics.RecordCandidatesDetected(len(candidates))

	if err := r.store.UpdateProgress(ctx, sess.ID, progressDetected); err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("update progress: %w", err))
	}

	classifyStart := time.Now()
	strikes, stats, classifyErr := r.orchestrator.Classify(runCtx, sess, candidates, func(done, total int) {
		pct := progressDetected + (progressClassified-progressDetected)*done/total
		_ = r.store.UpdateProgress(ctx, sess.ID, pct)
	})
	metrics.RecordStageDuration("classify", time.Since(classifyStart).Seconds())

	// Partial accounting is written even when the stage did not finish.
	if err := r.store.UpdateClassification(ctx, sess.ID, stats); err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("record classification stats: %w", err))
	}
	if classifyErr != nil {
		return r.fail(ctx, sess.ID, classifyErr)
	}

	if err := r.store.InsertStrikes(ctx, strikes); err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("persist strikes: %w", err))
	}

	enrichStart := time.Now()
	combos, links := r.builder.Build(sess.ID, strikes)
	enriched := r.enricher.Apply(strikes, links)
	metrics.RecordStageDuration("enrich", time.Since(enrichStart).Seconds())
	metrics.RecordCombinationsDetected(len(combos))

	if err := r.store.InsertCombinations(ctx, combos, links); err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("persist combinations: %w", err))
	}
	if err := r.store.UpdateEnrichment(ctx, enriched); err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("persist enrichment: %w", err))
	}
	if err := r.store.UpdateProgress(ctx, sess.ID, progressEnriched); err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("update progress: %w", err))
	}

	fighters, input := aggregate(sess, fighters, enriched, combos)
	for _, f := range fighters {
		if err := r.store.UpdateFighterStats(ctx, f); err != nil {
			return r.fail(ctx, sess.ID, fmt.Errorf("persist fighter stats: %w", err))
		}
	}

	reportCost := 0.0
	if r.reporter != nil {
		report, err := r.reporter.Generate(runCtx, input)
		if err != nil {
			// The report is a downstream convenience, not part of the
			// session's own outcome.
			r.logger.Warn(ctx, "report generation failed",
				logger.String("session_id", sess.ID.String()),
				logger.Error(err),
			)
		} else {
			reportCost = report.Cost
			metrics.RecordProviderCost(report.Cost)
		}
	}

	totals := repository.SessionTotals{
		TotalFrames:       len(frames),
		TotalStrikes:      len(enriched),
		TotalCombinations: len(combos),
		TotalCost:         stats.TotalCost + reportCost,
		ProcessingSeconds: time.Since(start).Seconds(),
	}
	if err := r.store.MarkCompleted(ctx, sess.ID, time.Now().UTC(), totals); err != nil {
		return r.fail(ctx, sess.ID, fmt.Errorf("mark completed: %w", err))
	}

	metrics.RecordSessionCompleted()
	metrics.RecordSessionDuration(totals.ProcessingSeconds)
	r.logger.Info(ctx, "session completed",
		logger.String("session_id", sess.ID.String()),
		logger.Int("strikes", totals.TotalStrikes),
		logger.Int("combinations", totals.TotalCombinations),
		logger.Float64("cost", totals.TotalCost),
	)
	return nil
}

// fail transitions the session to failed and returns the causing error.
func (r *Runner) fail(ctx context.Context, id uuid.UUID, cause error) error {
	metrics.RecordSessionFailed()
	if err := r.store.MarkFailed(ctx, id, time.Now().UTC(), cause.Error()); err != nil && !errors.Is(err, repository.ErrTerminal) {
		r.logger.Error(ctx, "could not mark session failed",
			logger.String("session_id", id.String()),
			logger.Error(err),
		)
	}
	r.logger.Error(ctx, "session failed",
		logger.String("session_id", id.String()),
		logger.Error(cause),
	)
	return cause
}
