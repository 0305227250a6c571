package posegen

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fightsight/engine/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "posegen_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the pose generator.
func ShowHelp() {
	os.Stdout.WriteString(`FightSight Pose Generator
=========================

Generates a synthetic two-fighter pose sequence with scripted strikes and
writes it as JSONL, ready to submit to the analysis engine.

Usage:
  go run cmd/posegen/main.go [options]

Options:
  -out string
        Output JSONL file (default: poses_TIMESTAMP.jsonl)
  -duration float
        Length of the synthetic fight in seconds (default 30)
  -fps int
        Frames per second, minimum 10 (default 20)
  -strikes int
        Number of scripted strikes (default 12)
  -sport string
        Sport label used when submitting (default "mma")
  -rounds int
        Rounds label used when submitting (default 1)
  -url string
        Base URL of a running engine (default "http://localhost:8080")
  -submit
        Submit the generated file as a session
  -wait duration
        How long to wait for a terminal status after submitting (default 2m)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file (default: posegen_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Generate a 30-second sequence to poses.jsonl
  go run cmd/posegen/main.go -out poses.jsonl

  # Generate, submit and wait for the analysis to finish
  go run cmd/posegen/main.go -out poses.jsonl -submit -wait 5m

  # A longer, denser fight
  go run cmd/posegen/main.go -duration 120 -strikes 60 -fps 30
`)
}
