// Package pipeline drives one analysis session end to end: candidate
// detection, bounded-concurrency classification, combination clustering,
// enrichment, aggregation and the session state machine.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fightsight/engine/internal/adapters/repository"
	"github.com/fightsight/engine/internal/domain/classify"
	"github.com/fightsight/engine/internal/domain/model"
	"github.com/fightsight/engine/pkg/logger"
	"github.com/fightsight/engine/pkg/metrics"
)

// Default orchestrator configuration constants.
const (
	defaultConcurrency    = 10
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 200 * time.Millisecond
	defaultCallGrace      = 30 * time.Second
)

// Orchestrator maps strike candidates to strike events by calling the
// external classifier under a per-session concurrency cap. A shared rate
// limiter sits below the cap and governs the outbound call rate across all
// concurrent sessions.
type Orchestrator struct {
	classifier     classify.Classifier
	limiter        *rate.Limiter
	concurrency    int
	maxAttempts    int
	initialBackoff time.Duration
	callGrace      time.Duration
	logger         logger.Logger
}

// NewOrchestrator creates an orchestrator around the given classifier.
// A nil limiter means no shared rate limit.
func NewOrchestrator(classifier classify.Classifier, limiter *rate.Limiter, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		classifier:     classifier,
		limiter:        limiter,
		concurrency:    defaultConcurrency,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		callGrace:      defaultCallGrace,
		logger:         logger.Get().Named("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// verdict holds one candidate's classification outcome, indexed by the
// candidate's position so completion order never leaks into the output.
type verdict struct {
	candidate model.StrikeCandidate
	result    classify.Result
	settled   bool
	confirmed bool
	failed    bool
}

// Classify runs all candidates through the classifier and returns the
// confirmed strikes re-ordered by original timestamp, plus the accounting
// for the session.
//
// Per-candidate transient failures are retried with exponential backoff up
// to the attempt cap, then recorded as failed without aborting the run. A
// fatal provider error cancels the remaining work and is returned to the
// caller. When ctx expires, dispatching stops, in-flight calls drain under
// a bounded grace period, and the partial accounting is returned alongside
// ErrTimeout.
func (o *Orchestrator) Classify(
	ctx context.Context,
	sess model.AnalysisSession,
	candidates []model.StrikeCandidate,
	onProgress func(done, total int),
) ([]model.StrikeEvent, repository.ClassificationStats, error) {
	stats := repository.ClassificationStats{TotalCandidates: len(candidates)}
	if len(candidates) == 0 {
		return nil, stats, nil
	}

	var (
		calls atomic.Int64
		cost  uint64 // float64 bits, CAS-accumulated
		done  atomic.Int64

		fatalMu  sync.Mutex
		fatalErr error
	)

	// Fatal errors cancel everything still queued or in flight.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	verdicts := make([]verdict, len(candidates))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

dispatch:
	for i, cand := range candidates {
		if runCtx.Err() != nil {
			break
		}
		select {
		case <-runCtx.Done():
			break dispatch
		case sem <- struct{}{}:
			// A slot freed by a worker that just hit a fatal error must
			// not admit more work.
			if runCtx.Err() != nil {
				<-sem
				break dispatch
			}
		}

		wg.Add(1)
		go func(i int, cand model.StrikeCandidate) {
			defer wg.Done()
			defer func() { <-sem }()

			metrics.UpdateClassificationInFlight(1)
			defer metrics.UpdateClassificationInFlight(-1)

			res, err := o.classifyOne(runCtx, sess, cand, &calls, &cost)
			v := verdict{candidate: cand, settled: true}
			switch {
			case err == nil:
				v.result = res
				v.confirmed = res.StrikeDetected
			case classify.Fatal(err):
				fatalMu.Lock()
				if fatalErr == nil {
					fatalErr = err
				}
				fatalMu.Unlock()
				cancel()
				v.failed = true
			default:
				v.failed = true
			}
			verdicts[i] = v

			if onProgress != nil {
				onProgress(int(done.Add(1)), len(candidates))
			}
		}(i, cand)
	}

	wg.Wait()

	stats.ClassifierCalls = int(calls.Load())
	stats.TotalCost = loadFloat(&cost)
	for _, v := range verdicts {
		switch {
		case v.confirmed:
			stats.Classified++
		case v.settled && !v.failed:
			stats.FalsePositives++
		default:
			// Failed outright, or never dispatched before the run ended.
			stats.FailedCandidates++
		}
	}

	if fatalErr != nil {
		return nil, stats, fmt.Errorf("classification aborted: %w", fatalErr)
	}

	strikes := o.assemble(sess, verdicts)

	if ctx.Err() != nil {
		return strikes, stats, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
	return strikes, stats, nil
}

// classifyOne performs the rate-limited, retried call for one candidate.
// Calls survive budget cancellation so in-flight work can drain; each
// attempt is individually bounded by the grace period instead.
func (o *Orchestrator) classifyOne(
	ctx context.Context,
	sess model.AnalysisSession,
	cand model.StrikeCandidate,
	calls *atomic.Int64,
	cost *uint64,
) (classify.Result, error) {
	req := classify.Request{
		SessionID: sess.ID.String(),
		Thrower:   cand.Thrower,
		Frames:    cand.Window,
		Timestamp: cand.Timestamp,
		Limb:      cand.Limb,
		Sport:     sess.Sport,
	}

	policy := backoff.WithMaxRetries(o.backoffPolicy(), uint64(o.maxAttempts-1))

	attempt := 0
	operation := func() (classify.Result, error) {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return classify.Result{}, backoff.Permanent(fmt.Errorf("%w: %v", classify.ErrTransient, err))
			}
		}

		attempt++
		if attempt > 1 {
			metrics.RecordClassificationRetry()
		}
		calls.Add(1)
		metrics.RecordClassificationCall()

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.callGrace)
		defer cancel()

		start := time.Now()
		res, err := o.classifier.Classify(callCtx, req)
		metrics.RecordClassificationLatency(time.Since(start).Seconds())

		// Cost accrues on every answered call, false positives included.
		addFloat(cost, res.Cost)
		metrics.RecordProviderCost(res.Cost)

		if err != nil {
			metrics.RecordClassificationError()
			if classify.Fatal(err) {
				return classify.Result{}, backoff.Permanent(err)
			}
			return classify.Result{}, err
		}
		return res, nil
	}

	res, err := backoff.RetryWithData(operation, backoff.WithContext(policy, ctx))
	if err != nil {
		o.logger.Warn(ctx, "candidate classification failed",
			logger.String("session_id", sess.ID.String()),
			logger.Float64("timestamp", cand.Timestamp),
			logger.String("limb", string(cand.Limb)),
			logger.Error(err),
		)
		return classify.Result{}, err
	}
	return res, nil
}

func (o *Orchestrator) backoffPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.initialBackoff
	return b
}

// assemble turns confirmed verdicts into strike events ordered by original
// timestamp, then frame number.
func (o *Orchestrator) assemble(sess model.AnalysisSession, verdicts []verdict) []model.StrikeEvent {
	strikes := make([]model.StrikeEvent, 0, len(verdicts))
	for _, v := range verdicts {
		if !v.confirmed {
			continue
		}
		strikes = append(strikes, model.StrikeEvent{
			ID:                       uuid.New(),
			SessionID:                sess.ID,
			FrameNumber:              v.candidate.FrameIndex,
			Timestamp:                v.candidate.Timestamp,
			Thrower:                  v.candidate.Thrower,
			Receiver:                 v.candidate.Thrower.Opponent(),
			Stance:                   v.result.Stance,
			Category:                 v.result.Category,
			Technique:                v.result.Technique,
			Modifier:                 v.result.Modifier,
			TargetZone:               v.result.TargetZone,
			Outcome:                  v.result.Outcome,
			DetectionConfidence:      v.candidate.Confidence,
			ClassificationConfidence: v.result.Confidence,
			Reasoning:                v.result.Reasoning,
		})
	}

	sort.SliceStable(strikes, func(i, j int) bool {
		if strikes[i].Timestamp != strikes[j].Timestamp {
			return strikes[i].Timestamp < strikes[j].Timestamp
		}
		return strikes[i].FrameNumber < strikes[j].FrameNumber
	})
	return strikes
}

// addFloat accumulates a float64 into bits with a CAS loop.
func addFloat(bits *uint64, delta float64) {
	if delta == 0 {
		return
	}
	for {
		old := atomic.LoadUint64(bits)
		newBits := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(bits, old, newBits) {
			return
		}
	}
}

func loadFloat(bits *uint64) float64 {
	return math.Float64frombits(atomic.LoadUint64(bits))
}
