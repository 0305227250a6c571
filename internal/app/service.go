// Package service wires the analysis engine together: store, claims, job
// queue, worker pool, provider clients and the pipeline. It implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	jobqueue "github.com/fightsight/engine/internal/adapters/mq/queue"
	workerpool "github.com/fightsight/engine/internal/adapters/mq/worker"
	"github.com/fightsight/engine/internal/adapters/provider"
	"github.com/fightsight/engine/internal/adapters/repository"
	"github.com/fightsight/engine/internal/domain/claim"
	"github.com/fightsight/engine/internal/domain/classify"
	"github.com/fightsight/engine/internal/domain/combo"
	"github.com/fightsight/engine/internal/domain/detect"
	"github.com/fightsight/engine/internal/domain/enrich"
	"github.com/fightsight/engine/internal/domain/model"
	"github.com/fightsight/engine/internal/pipeline"
	"github.com/fightsight/engine/pkg/logger"
	"github.com/fightsight/engine/pkg/metrics"
)

// SubmitRequest describes one analysis job hand-off: the session's basic
// facts plus where its extracted pose data lives.
type SubmitRequest struct {
	Sport     model.SportType
	Rounds    int
	PosesPath string
	FighterA  model.Stance
	FighterB  model.Stance
}

// Service owns the engine's components and their lifecycle.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	claims     claim.Registry
	jobs       jobqueue.Queue
	pool       *workerpool.Pool
	classifier classify.Classifier
	reporter   classify.ReportGenerator
	limiter    *rate.Limiter

	// Configuration
	dbPath              string
	workerCount         int
	queueSize           int
	claimSize           int
	classifyConcurrency int
	classifyMaxAttempts int
	classifyRateLimit   float64
	sessionBudget       time.Duration
	velocityThreshold   float64
	refractoryPeriod    float64
	combinationWindow   float64
	counterWindow       float64
	classifierURL       string
	reporterURL         string
	providerKey         string

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:              "fightsight.db",
		workerCount:         runtime.NumCPU(),
		queueSize:           1024,
		claimSize:           4096,
		classifyConcurrency: 10,
		classifyMaxAttempts: 3,
		classifyRateLimit:   20,
		sessionBudget:       10 * time.Minute,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting analysis service...")

	if s.store == nil {
		store, err := repository.NewSQLiteStore(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
	}
	if s.classifier == nil {
		s.classifier = provider.NewClassifierClient(s.classifierURL, s.providerKey)
	}
	if s.reporter == nil && s.reporterURL != "" {
		s.reporter = provider.NewReportClient(s.reporterURL, s.providerKey)
	}

	s.claims = claim.NewInMemoryRegistry(
		claim.WithMaxSize(s.claimSize),
	)
	s.jobs = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	// One limiter for all sessions: the provider sees a single client,
	// however many sessions run concurrently.
	if s.classifyRateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.classifyRateLimit), s.classifyConcurrency)
	}

	orchestrator := pipeline.NewOrchestrator(
		s.classifier,
		s.limiter,
		pipeline.WithConcurrency(s.classifyConcurrency),
		pipeline.WithMaxAttempts(s.classifyMaxAttempts),
	)

	var detectOpts []detect.Option
	if s.velocityThreshold > 0 {
		detectOpts = append(detectOpts, detect.WithVelocityThreshold(s.velocityThreshold))
	}
	if s.refractoryPeriod > 0 {
		detectOpts = append(detectOpts, detect.WithRefractoryPeriod(s.refractoryPeriod))
	}
	var comboOpts []combo.Option
	if s.combinationWindow > 0 {
		comboOpts = append(comboOpts, combo.WithWindow(s.combinationWindow))
	}
	var enrichOpts []enrich.Option
	if s.counterWindow > 0 {
		enrichOpts = append(enrichOpts, enrich.WithCounterWindow(s.counterWindow))
	}

	runner := pipeline.NewRunner(
		s.store,
		detect.New(detectOpts...),
		orchestrator,
		combo.New(comboOpts...),
		enrich.New(enrichOpts...),
		s.reporter,
		pipeline.WithBudget(s.sessionBudget),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.pool = workerpool.NewPool(s.workerCount, s.jobs, &releasingRunner{
		inner:  runner,
		claims: s.claims,
	})
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("classifyConcurrency", s.classifyConcurrency),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analysis service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.jobs != nil {
		_ = s.jobs.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Submit stores a new pending session and queues its analysis job. The
// claim guarantees a session is queued at most once even under racing
// submissions.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (model.AnalysisSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.AnalysisSession{}, ErrNotStarted
	}

	sess := model.AnalysisSession{
		ID:     uuid.New(),
		Sport:  req.Sport,
		Rounds: req.Rounds,
		Status: model.StatusPending,
	}
	fighters := []model.SessionFighter{
		{ID: uuid.New(), SessionID: sess.ID, Label: model.FighterA, Stance: req.FighterA},
		{ID: uuid.New(), SessionID: sess.ID, Label: model.FighterB, Stance: req.FighterB},
	}

	if err := s.store.CreateSession(ctx, &sess, fighters); err != nil {
		return model.AnalysisSession{}, fmt.Errorf("create session: %w", err)
	}

	if !s.claims.Claim(ctx, sess.ID) {
		return model.AnalysisSession{}, ErrAlreadyQueued
	}
	if !s.jobs.Enqueue(ctx, jobqueue.Job{SessionID: sess.ID, PosesPath: req.PosesPath}) {
		// Give the claim back so the session can be resubmitted once
		// there is room.
		s.claims.Release(ctx, sess.ID)
		return model.AnalysisSession{}, ErrQueueFull
	}

	metrics.RecordSessionSubmitted()
	return sess, nil
}

// Resubmit re-queues an existing pending session, for intake retries after
// queue backpressure.
func (s *Service) Resubmit(ctx context.Context, id uuid.UUID, posesPath string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}

	sess, err := s.store.Session(ctx, id)
	if err != nil {
		return err
	}
	if sess.Status != model.StatusPending {
		return fmt.Errorf("session %s is %s, only pending sessions can be queued", id, sess.Status)
	}

	if !s.claims.Claim(ctx, id) {
		return ErrAlreadyQueued
	}
	if !s.jobs.Enqueue(ctx, jobqueue.Job{SessionID: id, PosesPath: posesPath}) {
		s.claims.Release(ctx, id)
		return ErrQueueFull
	}
	return nil
}

// Session returns one session and its fighters.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (model.AnalysisSession, []model.SessionFighter, error) {
	sess, err := s.store.Session(ctx, id)
	if err != nil {
		return model.AnalysisSession{}, nil, err
	}
	fighters, err := s.store.Fighters(ctx, id)
	if err != nil {
		return model.AnalysisSession{}, nil, err
	}
	return sess, fighters, nil
}

// Strikes returns a session's strikes in chronological order.
func (s *Service) Strikes(ctx context.Context, id uuid.UUID) ([]model.StrikeEvent, error) {
	return s.store.Strikes(ctx, id)
}

// Combinations returns a session's combinations in chronological order.
func (s *Service) Combinations(ctx context.Context, id uuid.UUID) ([]model.Combination, error) {
	return s.store.Combinations(ctx, id)
}

// DeleteSession removes a session and everything it owns.
func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteSession(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":             s.started,
		"workerCount":         s.workerCount,
		"queueSize":           s.queueSize,
		"classifyConcurrency": s.classifyConcurrency,
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.jobs.Len(ctx)
		sessions := s.store.SessionCount(ctx)

		stats["queueLength"] = queueLen
		stats["totalSessions"] = sessions
		stats["heldClaims"] = s.claims.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalSessions(sessions)
	}

	return stats
}

// releasingRunner frees the session's claim once its run ends, whatever
// the outcome, so the id can be claimed again after deletion or retry.
type releasingRunner struct {
	inner  *pipeline.Runner
	claims claim.Registry
}

func (r *releasingRunner) Run(ctx context.Context, job jobqueue.Job) error {
	defer r.claims.Release(ctx, job.SessionID)
	return r.inner.Run(ctx, job)
}
