package model

import "github.com/google/uuid"

// Combination is a maximal run of two or more temporally clustered strikes
// thrown by one fighter.
type Combination struct {
	ID        uuid.UUID    `json:"id"`
	SessionID uuid.UUID    `json:"session_id"`
	Thrower   FighterLabel `json:"thrower"`

	StartTimestamp float64 `json:"start_timestamp"`
	EndTimestamp   float64 `json:"end_timestamp"`
	Duration       float64 `json:"duration"`

	StrikeCount int `json:"strike_count"`
	LandedCount int `json:"landed_count"`
	MissedCount int `json:"missed_count"`
}

// CombinationStrike orders a combination's strikes. Positions within one
// combination are contiguous integers 1..N; a strike belongs to at most one
// combination.
type CombinationStrike struct {
	CombinationID uuid.UUID
	StrikeEventID uuid.UUID
	Position      int
}
