package pose

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Source supplies the finite, already-extracted frame sequence of one
// session. Implementations must return frames in index order.
type Source interface {
	Frames(ctx context.Context) ([]Frame, error)
}

// FileSource reads pose frames from a JSONL file, one frame per line, as
// written by the extraction service.
type FileSource struct {
	path string

	// Skipped counts malformed lines dropped during the last Frames call.
	skipped int
}

// NewFileSource creates a source reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Frames reads and decodes the full sequence. Malformed lines are skipped,
// not fatal; the sequence must still be non-empty to be usable.
func (s *FileSource) Frames(ctx context.Context) ([]Frame, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open pose data: %w", err)
	}
	defer f.Close()

	s.skipped = 0
	var frames []Frame

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var fr Frame
		if err := json.Unmarshal(line, &fr); err != nil {
			s.skipped++
			continue
		}
		frames = append(frames, fr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pose data: %w", err)
	}
	if len(frames) == 0 {
		return nil, ErrEmptySequence
	}
	return frames, nil
}

// Skipped returns the number of malformed lines dropped by the last read.
func (s *FileSource) Skipped() int {
	return s.skipped
}
