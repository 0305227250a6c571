// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks the lifecycle of an analysis session.
type SessionStatus string

// Session lifecycle states. Completed and failed are terminal.
const (
	StatusPending    SessionStatus = "pending"
	StatusProcessing SessionStatus = "processing"
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SportType identifies the ruleset the session was recorded under.
type SportType string

// Supported sport types.
const (
	SportBoxing     SportType = "boxing"
	SportKickboxing SportType = "kickboxing"
	SportMuayThai   SportType = "muay_thai"
	SportMMA        SportType = "mma"
)

// FighterLabel distinguishes the two participants in a session.
type FighterLabel string

// The two stable fighter labels.
const (
	FighterA FighterLabel = "fighter_a"
	FighterB FighterLabel = "fighter_b"
)

// Opponent returns the other fighter's label.
func (f FighterLabel) Opponent() FighterLabel {
	if f == FighterA {
		return FighterB
	}
	return FighterA
}

// Valid reports whether f is one of the two known labels.
func (f FighterLabel) Valid() bool {
	return f == FighterA || f == FighterB
}

// Stance is a fighter's lead-side orientation.
type Stance string

// Recognised stances.
const (
	StanceOrthodox Stance = "orthodox"
	StanceSouthpaw Stance = "southpaw"
	StanceSwitch   Stance = "switch"
)

// AnalysisSession is one end-to-end analysis run over one video.
// All downstream entities (fighters, strikes, combinations) are owned by
// the session and cascade-deleted with it.
type AnalysisSession struct {
	ID     uuid.UUID
	Sport  SportType
	Rounds int

	Status   SessionStatus
	Progress int // 0..100, monotonic non-decreasing until terminal

	// Cost and call accounting across provider calls.
	TotalCost       float64
	ClassifierCalls int

	// Candidate accounting: Classified + FalsePositives + FailedCandidates
	// always equals TotalCandidates once classification has finished.
	TotalCandidates  int
	Classified       int
	FalsePositives   int
	FailedCandidates int

	// Frozen totals, written on completion.
	TotalFrames       int
	TotalStrikes      int
	TotalCombinations int
	ProcessingSeconds float64

	StartedAt    *time.Time
	CompletedAt  *time.Time
	FailedAt     *time.Time
	ErrorMessage string

	CreatedAt time.Time
}

// SessionFighter is one of the exactly two participants of a session.
// Aggregate counts are written once, after enrichment.
type SessionFighter struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Label     FighterLabel
	Stance    Stance

	// Optional reference to a profile outside this subsystem; nil when the
	// fighter is not linked to a stored profile.
	ProfileID *uuid.UUID

	StrikesThrown  int
	StrikesLanded  int
	StrikesMissed  int
	Combinations   int
	StrikesAgainst int
}
