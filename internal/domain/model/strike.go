package model

import "github.com/google/uuid"

// Limb identifies the striking limb proposed by motion analysis.
type Limb string

// Tracked limbs.
const (
	LimbLeftHand  Limb = "left_hand"
	LimbRightHand Limb = "right_hand"
	LimbLeftLeg   Limb = "left_leg"
	LimbRightLeg  Limb = "right_leg"
)

// IsLeg reports whether the limb is a leg.
func (l Limb) IsLeg() bool {
	return l == LimbLeftLeg || l == LimbRightLeg
}

// StrikeCategory is the coarse family of a classified strike.
type StrikeCategory string

// Strike families returned by the classifier.
const (
	CategoryPunch  StrikeCategory = "punch"
	CategoryKick   StrikeCategory = "kick"
	CategoryElbow  StrikeCategory = "elbow"
	CategoryKnee   StrikeCategory = "knee"
	CategoryClinch StrikeCategory = "clinch"
)

// TargetZone is the area of the receiver's body a strike was aimed at.
type TargetZone string

// Target zones.
const (
	ZoneHead TargetZone = "head"
	ZoneBody TargetZone = "body"
	ZoneLegs TargetZone = "legs"
)

// Outcome describes how a strike resolved.
type Outcome string

// Strike outcomes.
const (
	OutcomeLanded  Outcome = "landed"
	OutcomeMissed  Outcome = "missed"
	OutcomeBlocked Outcome = "blocked"
	OutcomeEvaded  Outcome = "evaded"
)

// Landed reports whether the strike connected with its target.
func (o Outcome) Landed() bool {
	return o == OutcomeLanded
}

// RangeBucket is a coarse fighting-distance estimate for a strike.
type RangeBucket string

// Range buckets.
const (
	RangeShort  RangeBucket = "short"
	RangeMedium RangeBucket = "medium"
	RangeLong   RangeBucket = "long"
)

// Initiation classifies how a strike was initiated relative to the
// opponent's recent activity.
type Initiation string

// Initiation classes.
const (
	InitiationOffense   Initiation = "offense"
	InitiationCounter   Initiation = "counter"
	InitiationDefensive Initiation = "defensive_response"
)

// StrikeCandidate is an unconfirmed strike proposed by motion analysis.
// Candidates are ephemeral: they exist only between detection and
// classification and are never persisted.
type StrikeCandidate struct {
	FrameIndex int
	Timestamp  float64 // seconds from video start
	Thrower    FighterLabel
	Limb       Limb
	Velocity   float64 // normalized displacement per second
	Confidence float64 // min(velocity/threshold, 1.0)

	// Window holds the frame indices surrounding the peak: before, during,
	// after. The classifier receives the images extracted at these indices.
	Window [3]int
}

// StrikeEvent is a confirmed, classified strike. Immutable once written
// except for the enrichment fields and combination linkage.
type StrikeEvent struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`

	FrameNumber int     `json:"frame_number"`
	Timestamp   float64 `json:"timestamp"` // seconds from video start

	Thrower  FighterLabel `json:"thrower"`
	Receiver FighterLabel `json:"receiver"`
	Stance   Stance       `json:"stance"`

	// Technique names the specific strike ("jab", "cross", "roundhouse"),
	// Modifier an optional variant ("lead", "rear", "spinning").
	Category  StrikeCategory `json:"category"`
	Technique string         `json:"technique"`
	Modifier  string         `json:"modifier,omitempty"`

	TargetZone TargetZone `json:"target_zone"`
	Outcome    Outcome    `json:"outcome"`

	DetectionConfidence      float64 `json:"detection_confidence"`
	ClassificationConfidence float64 `json:"classification_confidence"`
	Reasoning                string  `json:"reasoning,omitempty"`

	// Enrichment fields, written once combination membership is known.
	// ComboPosition is 1..N within the combination, 0 when none;
	// SequencePosition is the ordinal among the session's strikes.
	InCombination    bool        `json:"in_combination"`
	ComboPosition    int         `json:"combo_position,omitempty"`
	SequencePosition int         `json:"sequence_position"`
	SecondsSincePrev float64     `json:"seconds_since_prev"`
	Range            RangeBucket `json:"range"`
	Initiation       Initiation  `json:"initiation"`
}
