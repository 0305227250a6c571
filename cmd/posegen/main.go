package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/fightsight/engine/internal/posegen"
)

// Default configuration constants.
const (
	defaultDuration = 30.0
	defaultFPS      = 20
	defaultStrikes  = 12
	defaultRounds   = 1
	defaultWait     = 2 * time.Minute
	defaultTimeout  = 30 * time.Second
	defaultRunLimit = 10 * time.Minute
)

func main() {
	var (
		outputFile = flag.String("out", "", "Output JSONL file (default: poses_TIMESTAMP.jsonl)")
		duration   = flag.Float64("duration", defaultDuration, "Length of the synthetic fight in seconds")
		fps        = flag.Int("fps", defaultFPS, "Frames per second, minimum 10")
		strikes    = flag.Int("strikes", defaultStrikes, "Number of scripted strikes")
		sport      = flag.String("sport", "mma", "Sport label used when submitting")
		rounds     = flag.Int("rounds", defaultRounds, "Rounds label used when submitting")
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of a running engine")
		submit     = flag.Bool("submit", false, "Submit the generated file as a session")
		wait       = flag.Duration("wait", defaultWait, "How long to wait for a terminal status after submitting")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile    = flag.String("log", "", "Log file (default: posegen_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		posegen.ShowHelp()
		return
	}

	if err := posegen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)
	defer cancel()

	config := &posegen.Config{
		OutputFile: *outputFile,
		Duration:   *duration,
		FPS:        *fps,
		Strikes:    *strikes,
		Sport:      *sport,
		Rounds:     *rounds,
		BaseURL:    *baseURL,
		Submit:     *submit,
		Wait:       *wait,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := posegen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		return
	}
}
