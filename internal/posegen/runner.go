package posegen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fightsight/engine/internal/domain/pose"
	"github.com/fightsight/engine/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes a complete generation: build the choreography, render the
// pose sequence, write it to disk and optionally submit it as a session.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting pose generation",
		logger.Float64("duration", config.Duration),
		logger.Int("fps", config.FPS),
		logger.Int("strikes", config.Strikes),
		logger.String("output", config.OutputFile),
		logger.Any("submit", config.Submit))

	script := BuildScript(config)
	stats.StrikesScripted = len(script)

	frames, err := GenerateFrames(ctx, config, script)
	if err != nil {
		return fmt.Errorf("frame generation failed: %w", err)
	}
	stats.FramesGenerated = len(frames)

	outFile, err := WriteFrames(ctx, config.OutputFile, frames)
	if err != nil {
		return fmt.Errorf("writing pose file failed: %w", err)
	}

	if config.Submit {
		if err := checkServiceHealth(ctx, config); err != nil {
			return fmt.Errorf("service health check failed: %w", err)
		}
		if err := submitSession(ctx, config, outFile, stats); err != nil {
			return fmt.Errorf("session submission failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "generation completed successfully")
	return nil
}

// WriteFrames writes the sequence as JSONL, one frame per line, in the
// format the engine's pose source reads. Returns the resolved filename.
func WriteFrames(ctx context.Context, filename string, frames []pose.Frame) (string, error) {
	if len(frames) == 0 {
		return "", fmt.Errorf("no frames to write")
	}

	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "poses_" + timestamp + ".jsonl"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	for i := range frames {
		if err := enc.Encode(frames[i]); err != nil {
			return "", fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}

	logger.Get().Info(ctx, "pose frames saved", logger.String("filename", filename), logger.Int("frames", len(frames)))
	return filename, nil
}

// displayFinalStats prints the final generation statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("framesGenerated", stats.FramesGenerated),
		logger.Int("strikesScripted", stats.StrikesScripted),
		logger.String("sessionID", stats.SessionID),
		logger.String("finalStatus", stats.FinalStatus),
		logger.Duration("duration", stats.Duration))
}
