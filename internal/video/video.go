// Package video is the boundary to the external encoder: it takes the
// ordered raw frame stream plus an audio plan and produces a container.
package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// AudioSegment places one clip's audio track on the output timeline.
type AudioSegment struct {
	Path string
	// Offset is the start position in seconds from the beginning of the
	// stream. Gaps between segments play as silence.
	Offset float64
}

// EncodeOptions describes one encode run.
type EncodeOptions struct {
	Width    int
	Height   int
	FPS      int
	Duration float64

	OutputPath string
	// Encoder is the ffmpeg video codec name; empty picks the best
	// available H.264 encoder.
	Encoder string
	// Quality is the output tier: low, medium or high.
	Quality string

	Audio []AudioSegment
}

// Encoder consumes a stream of tightly packed RGBA frames in presentation
// order and writes the final container.
type Encoder interface {
	Encode(ctx context.Context, opts EncodeOptions, frames io.Reader) error
}

// FFmpegEncoder drives the ffmpeg binary, feeding it raw frames on stdin.
type FFmpegEncoder struct {
	// Path to the ffmpeg binary; empty means take it from PATH.
	Path string
}

func (e *FFmpegEncoder) binary() string {
	if e.Path != "" {
		return e.Path
	}
	return "ffmpeg"
}

func (e *FFmpegEncoder) Encode(ctx context.Context, opts EncodeOptions, frames io.Reader) error {
	encoderName := opts.Encoder
	if encoderName == "" {
		encoderName = BestH264Encoder(e.binary())
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
	}

	for _, seg := range opts.Audio {
		args = append(args, "-i", seg.Path)
	}

	// Аудио-дорожки раскладываются по таймлайну через adelay и сводятся
	// в один поток; паузы между сегментами остаются тишиной
	if len(opts.Audio) > 0 {
		var graph strings.Builder
		labels := make([]string, 0, len(opts.Audio))
		for i, seg := range opts.Audio {
			ms := int(seg.Offset * 1000)
			label := fmt.Sprintf("[a%d]", i)
			fmt.Fprintf(&graph, "[%d:a]adelay=%d|%d%s;", i+1, ms, ms, label)
			labels = append(labels, label)
		}
		if len(labels) == 1 {
			graph.WriteString(labels[0] + "anull[aout]")
		} else {
			fmt.Fprintf(&graph, "%samix=inputs=%d:duration=longest:dropout_transition=3[aout]",
				strings.Join(labels, ""), len(labels))
		}
		args = append(args, "-filter_complex", graph.String())
		args = append(args, "-map", "0:v", "-map", "[aout]", "-c:a", "aac")
	} else {
		args = append(args, "-map", "0:v")
	}

	args = append(args, "-t", fmt.Sprintf("%f", opts.Duration))
	args = append(args, "-r", fmt.Sprintf("%d", opts.FPS))
	args = append(args, "-pix_fmt", "yuv420p")
	args = append(args, "-c:v", encoderName)
	args = append(args, qualityArgs(encoderName, opts.Quality)...)
	args = append(args, opts.OutputPath)

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	cmd.Stdin = frames

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %v, вывод: %s", err, out.String())
	}
	return nil
}

// qualityArgs maps the output tier to encoder-specific settings.
// VideoToolbox не принимает -q:v на всех версиях, поэтому битрейт.
func qualityArgs(encoderName, quality string) []string {
	switch encoderName {
	case "h264_videotoolbox":
		bitrate := map[string]string{"low": "1000k", "medium": "2500k", "high": "5000k"}[quality]
		if bitrate == "" {
			bitrate = "2500k"
		}
		return []string{"-b:v", bitrate}
	case "h264_nvenc":
		cq := map[string]string{"low": "33", "medium": "28", "high": "23"}[quality]
		if cq == "" {
			cq = "28"
		}
		return []string{"-cq", cq}
	default: // libx264
		crf := map[string]string{"low": "30", "medium": "23", "high": "18"}[quality]
		if crf == "" {
			crf = "23"
		}
		return []string{"-crf", crf, "-preset", "medium"}
	}
}

// BestH264Encoder probes the available hardware encoders, preferring
// VideoToolbox (macOS) then NVENC, falling back to software x264.
func BestH264Encoder(ffmpegPath string) string {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	out, err := exec.Command(ffmpegPath, "-encoders").CombinedOutput()
	if err == nil {
		for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
			if strings.Contains(string(out), name) {
				return name
			}
		}
	}
	return "libx264"
}

var _ Encoder = (*FFmpegEncoder)(nil)
