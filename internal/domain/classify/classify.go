// Package classify defines the contract with the external strike
// classification collaborator.
package classify

import (
	"context"

	"github.com/fightsight/engine/internal/domain/model"
)

// Request carries one candidate's evidence to the classifier: the three
// frame images around the motion peak plus structured context.
type Request struct {
	SessionID string             `json:"session_id"`
	Thrower   model.FighterLabel `json:"thrower"`
	Frames    [3]int             `json:"frames"` // before, during, after
	Timestamp float64            `json:"timestamp"`
	Limb      model.Limb         `json:"limb"`
	Sport     model.SportType    `json:"sport"`
}

// Result is the classifier's verdict on one candidate. When StrikeDetected
// is false the remaining classification fields are zero-valued. Cost is
// reported for every call, including false positives.
type Result struct {
	StrikeDetected bool                 `json:"strike_detected"`
	Stance         model.Stance         `json:"stance"`
	Category       model.StrikeCategory `json:"category"`
	Technique      string               `json:"technique"`
	Modifier       string               `json:"modifier"`
	TargetZone     model.TargetZone     `json:"target_zone"`
	Outcome        model.Outcome        `json:"outcome"`
	Confidence     float64              `json:"confidence"`
	Reasoning      string               `json:"reasoning"`
	Cost           float64              `json:"cost"`
}

// Classifier maps one candidate to a verdict. Implementations must return
// errors wrapping ErrTransient for retryable failures and ErrFatal for
// failures that must abort the whole session.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Result, error)
}

// ReportGenerator produces the narrative report from the aggregated session
// summary. Generation is external; the pipeline only builds the input.
type ReportGenerator interface {
	Generate(ctx context.Context, input model.ReportInput) (model.GeneratedReport, error)
}
