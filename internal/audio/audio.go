// Package audio covers the audio side of a render: probing track durations
// and the boundary to an external speech synthesizer.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ivlev/image2video/internal/source"
)

// Prober reports the playable duration of an audio file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Synthesizer is the external text-to-speech collaborator: given text it
// produces an audio asset and returns its path. The pipeline only consumes
// the asset's duration and samples, never generates speech itself.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (path string, err error)
}

// FFprobe measures durations with the ffprobe binary.
type FFprobe struct {
	// Path to the ffprobe binary; empty means take it from PATH.
	Path string
}

func (p *FFprobe) binary() string {
	if p.Path != "" {
		return p.Path
	}
	return "ffprobe"
}

func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: %s", source.ErrNotFound, path)
	}

	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %v", path, err)
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: не удалось разобрать длительность: %v", path, err)
	}

	return duration, nil
}

var _ Prober = (*FFprobe)(nil)
