package model

import "github.com/google/uuid"

// FighterSummary aggregates one fighter's session output for reporting.
type FighterSummary struct {
	Label          FighterLabel   `json:"label"`
	Stance         Stance         `json:"stance"`
	StrikesThrown  int            `json:"strikes_thrown"`
	StrikesLanded  int            `json:"strikes_landed"`
	StrikesMissed  int            `json:"strikes_missed"`
	Accuracy       float64        `json:"accuracy"`
	Combinations   int            `json:"combinations"`
	StrikesAgainst int            `json:"strikes_against"`
	ByCategory     map[string]int `json:"by_category"`
	ByTarget       map[string]int `json:"by_target"`
}

// ReportInput is the aggregated session summary handed to the external
// report-generation collaborator. Producing it is the pipeline's final
// responsibility; generating the narrative is not.
type ReportInput struct {
	SessionID         uuid.UUID        `json:"session_id"`
	Sport             SportType        `json:"sport"`
	Rounds            int              `json:"rounds"`
	TotalStrikes      int              `json:"total_strikes"`
	TotalCombinations int              `json:"total_combinations"`
	Fighters          []FighterSummary `json:"fighters"`
	Strikes           []StrikeEvent    `json:"strikes"`
	Combinations      []Combination    `json:"combinations"`
}

// GeneratedReport is the response contract of the report collaborator.
type GeneratedReport struct {
	Narrative           string   `json:"narrative"`
	KeyInsights         []string `json:"key_insights"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	Cost                float64  `json:"cost"`
}
