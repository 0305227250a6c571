package posegen

import (
	"time"

	"github.com/fightsight/engine/internal/domain/model"
)

// Config holds configuration for one generation run.
type Config struct {
	OutputFile string        // Output JSONL file for pose frames
	Duration   float64       // Length of the synthetic fight in seconds
	FPS        int           // Frames per second
	Strikes    int           // Number of scripted strikes
	Sport      string        // Sport label used when submitting
	Rounds     int           // Rounds label used when submitting
	BaseURL    string        // Base URL of a running engine, for -submit
	Submit     bool          // Submit the generated file as a session
	Wait       time.Duration // How long to wait for a terminal status
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for generator output
	Verbose    bool          // Enable verbose logging
}

// Action is one scripted strike in the choreography.
type Action struct {
	AtSeconds float64            // moment the extension begins
	Fighter   model.FighterLabel // who throws
	Limb      model.Limb         // which limb extends
}

// Stats holds generation run statistics.
type Stats struct {
	FramesGenerated int
	StrikesScripted int
	SessionID       string
	FinalStatus     string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
