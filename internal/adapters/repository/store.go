// Package repository defines the analysis store interface and its SQLite
// implementation.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fightsight/engine/internal/domain/model"
)

// ClassificationStats carries the candidate accounting written when the
// classification stage finishes.
type ClassificationStats struct {
	TotalCandidates  int
	Classified       int
	FalsePositives   int
	FailedCandidates int
	ClassifierCalls  int
	TotalCost        float64
}

// SessionTotals is frozen on the session when it completes.
type SessionTotals struct {
	TotalFrames       int
	TotalStrikes      int
	TotalCombinations int
	TotalCost         float64
	ProcessingSeconds float64
}

// Store provides read/write access to sessions and their owned entities.
// Implementations must refuse any status transition out of a terminal state
// and must keep progress monotonic non-decreasing.
type Store interface {
	// CreateSession inserts a new pending session and its two fighters.
	CreateSession(ctx context.Context, s *model.AnalysisSession, fighters []model.SessionFighter) error

	// Session returns one session. Returns ErrNotFound when unknown.
	Session(ctx context.Context, id uuid.UUID) (model.AnalysisSession, error)

	// MarkProcessing transitions pending -> processing.
	MarkProcessing(ctx context.Context, id uuid.UUID, startedAt time.Time) error

	// UpdateProgress advances the progress percentage. Regressions and
	// updates to terminal sessions are ignored, never applied.
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error

	// UpdateClassification records candidate accounting and accumulated
	// provider cost after the classification stage.
	UpdateClassification(ctx context.Context, id uuid.UUID, stats ClassificationStats) error

	// MarkCompleted transitions processing -> completed, freezing totals
	// and setting progress to 100.
	MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time, totals SessionTotals) error

	// MarkFailed transitions processing -> failed with the error message.
	MarkFailed(ctx context.Context, id uuid.UUID, failedAt time.Time, message string) error

	// DeleteSession removes a session; owned fighters, strikes,
	// combinations and links cascade.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Fighters returns the session's two fighters ordered by label.
	Fighters(ctx context.Context, sessionID uuid.UUID) ([]model.SessionFighter, error)

	// UpdateFighterStats writes the post-enrichment aggregate counts.
	UpdateFighterStats(ctx context.Context, f model.SessionFighter) error

	// InsertStrikes persists classified strikes in the given order.
	InsertStrikes(ctx context.Context, strikes []model.StrikeEvent) error

	// Strikes returns a session's strikes ordered by timestamp, then frame
	// number, then id.
	Strikes(ctx context.Context, sessionID uuid.UUID) ([]model.StrikeEvent, error)

	// UpdateEnrichment writes the enrichment fields of each strike.
	UpdateEnrichment(ctx context.Context, strikes []model.StrikeEvent) error

	// InsertCombinations persists combinations and their position links in
	// one transaction. Duplicate positions or strikes already linked to
	// another combination surface as ErrIntegrity.
	InsertCombinations(ctx context.Context, combos []model.Combination, links []model.CombinationStrike) error

	// Combinations returns a session's combinations ordered by start time.
	Combinations(ctx context.Context, sessionID uuid.UUID) ([]model.Combination, error)

	// CombinationStrikes returns a session's links ordered by combination
	// and position.
	CombinationStrikes(ctx context.Context, sessionID uuid.UUID) ([]model.CombinationStrike, error)

	// SessionCount returns the number of stored sessions.
	SessionCount(ctx context.Context) int

	// Close releases the underlying database handle.
	Close() error
}
