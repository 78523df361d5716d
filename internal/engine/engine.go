// Package engine sequences rendered clips into one continuous frame stream:
// it reconciles per-clip durations with audio, stitches boundaries through
// the transition engine, pads the tail when audio outlasts the video and
// hands the ordered stream to the encoder.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/image2video/internal/animation"
	"github.com/ivlev/image2video/internal/audio"
	"github.com/ivlev/image2video/internal/clip"
	"github.com/ivlev/image2video/internal/config"
	"github.com/ivlev/image2video/internal/source"
	"github.com/ivlev/image2video/internal/system"
	"github.com/ivlev/image2video/internal/transition"
	"github.com/ivlev/image2video/internal/video"
)

// ErrNoClips is returned when a render request carries no clips; nothing is
// rendered in that case.
var ErrNoClips = errors.New("engine: список клипов пуст")

// ClipSpec describes one input clip. Owned by the caller and immutable for
// the duration of the render.
type ClipSpec struct {
	ImagePath string
	// Image is an already rasterized source (PDF page, QR card); it wins
	// over ImagePath.
	Image image.Image

	DurationHint float64
	AudioPath    string
	// Text is synthesized into audio by the external collaborator when no
	// AudioPath is given.
	Text string

	// Animation is a preset name, "random", "auto" or empty (static).
	Animation string
	// AnimationSpec is a raw descriptor; it wins over Animation.
	AnimationSpec *animation.Spec
	// Combo names separable scale/position/curve presets; it wins over
	// Animation but loses to AnimationSpec.
	Combo *animation.Combo
}

// TransitionSpec describes one clip boundary.
type TransitionSpec struct {
	Kind     transition.Kind
	Duration float64
}

// Project drives one or more renders with a shared configuration. The
// random source is request-scoped: all "random" choices are resolved at
// spec-build time, so a seeded project renders reproducibly.
type Project struct {
	Config  *config.Config
	Encoder video.Encoder
	Prober  audio.Prober
	// Synth is the optional text-to-speech collaborator.
	Synth audio.Synthesizer
	// Cache optionally memoizes rendered clips between render calls.
	Cache *clip.Cache
	// Soundtrack optionally lays one audio file under the whole video from
	// its very first frame, independent of per-clip tracks.
	Soundtrack string

	rand *rand.Rand
}

func NewProject(cfg *config.Config, enc video.Encoder, prober audio.Prober) *Project {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Project{
		Config:  cfg,
		Encoder: enc,
		Prober:  prober,
		rand:    rand.New(rand.NewSource(seed)),
	}
}

// Render builds the full video for the clip list. The global transition
// applies to every boundary; perBoundary entries, when given, override it
// boundary by boundary (a short list is back-filled with the global spec).
func (p *Project) Render(ctx context.Context, clips []ClipSpec, global TransitionSpec, perBoundary []TransitionSpec, outputPath string) error {
	if len(clips) == 0 {
		return ErrNoClips
	}
	startTime := time.Now()

	resolver := animation.NewResolver(p.rand)

	// Загружаем все источники один раз, до первого кадра
	sources := make([]clip.Source, 0, len(clips))
	var owned []clip.Source
	defer func() {
		// Ресурсы освобождаются на любом пути, в том числе при ошибке
		// кодировщика
		for _, s := range owned {
			s.Close()
		}
	}()

	canvasW, canvasH := p.Config.Width, p.Config.Height
	for i, spec := range clips {
		src, cached, err := p.buildClip(ctx, spec, resolver, &canvasW, &canvasH)
		if err != nil {
			return fmt.Errorf("клип %d: %w", i+1, err)
		}
		if !cached {
			owned = append(owned, src)
		}
		sources = append(sources, src)
	}

	// Переходы: недостающие границы добиваются глобальным спеком,
	// "random" разыгрывается независимо для каждой границы
	fades := make([]float64, len(sources)-1)
	blended := make([]clip.Source, len(sources))
	blended[0] = sources[0]
	for i := 1; i < len(sources); i++ {
		spec := global
		if i-1 < len(perBoundary) {
			spec = perBoundary[i-1]
		}
		kind := transition.Resolve(spec.Kind, p.rand)

		fade := spec.Duration
		minDur := math.Min(sources[i-1].Duration(), sources[i].Duration())
		if fade >= minDur {
			fade = minDur / 2
			log.Printf("[!] Переход %d уменьшен до %.2fs из-за короткого клипа", i, fade)
		}
		if kind == transition.None {
			fade = 0
		}

		fades[i-1] = fade
		blended[i] = transition.Blend(sources[i-1], sources[i], kind, fade)
	}

	tl := newTimeline(blended, fades)

	// Аудиоплан: дорожка каждого клипа стартует вместе с его видеорядом,
	// фоновая дорожка — с нулевой секунды
	var segments []video.AudioSegment
	var audioEnd float64
	for i, src := range sources {
		if track := src.Audio(); track != nil {
			segments = append(segments, video.AudioSegment{
				Path:   track.Path,
				Offset: tl.entries[i].start,
			})
			audioEnd = math.Max(audioEnd, tl.entries[i].start+track.Duration)
		}
	}
	if p.Soundtrack != "" {
		d, err := p.Prober.Duration(ctx, p.Soundtrack)
		if err != nil {
			return fmt.Errorf("фоновая дорожка: %w", err)
		}
		segments = append(segments, video.AudioSegment{Path: p.Soundtrack})
		audioEnd = math.Max(audioEnd, d)
	}

	if freeze := padAudioTail(tl, blended[len(blended)-1], audioEnd); freeze != nil {
		owned = append(owned, freeze)
		fmt.Printf("[*] Хвост аудио: добавлен стоп-кадр %.2fs\n", freeze.Duration())
	}

	fps := p.Config.FPS
	frameCount := int(math.Ceil(tl.total*float64(fps) - 1e-9))
	if frameCount < 1 {
		frameCount = 1
	}

	fmt.Printf("[*] Клипов: %d | Длительность: %.2fs | Кадров: %d @ %d FPS\n",
		len(sources), tl.total, frameCount, fps)

	opts := video.EncodeOptions{
		Width:      canvasW,
		Height:     canvasH,
		FPS:        fps,
		Duration:   float64(frameCount) / float64(fps),
		OutputPath: outputPath,
		Encoder:    p.Config.VideoEncoder,
		Quality:    p.Config.Quality,
		Audio:      segments,
	}

	pr, pw := io.Pipe()
	encodeErr := make(chan error, 1)
	go func() {
		err := p.Encoder.Encode(ctx, opts, pr)
		// При падении кодировщика разблокируем пишущую сторону
		pr.CloseWithError(err)
		encodeErr <- err
	}()

	streamErr := p.streamFrames(ctx, tl, frameCount, canvasW*canvasH*4, pw)
	pw.Close()

	if err := <-encodeErr; err != nil {
		return fmt.Errorf("кодирование: %w", err)
	}
	if streamErr != nil {
		return streamErr
	}

	if p.Config.ShowStats {
		elapsed := time.Since(startTime)
		fmt.Printf("--- [PERFORMANCE REPORT] ---\n"+
			"Frames: %d\nTotal Time: %.2fs\nEffective FPS: %.2f\n"+
			"----------------------------\n",
			frameCount, elapsed.Seconds(), float64(frameCount)/elapsed.Seconds())
	}

	return nil
}

// Preview renders a single clip in isolation: its own resolved duration, no
// transitions. The same pipeline, degenerate one-clip call.
func (p *Project) Preview(ctx context.Context, spec ClipSpec, outputPath string) error {
	return p.Render(ctx, []ClipSpec{spec}, TransitionSpec{Kind: transition.None}, nil, outputPath)
}

// buildClip loads one clip's assets up front and renders it. The canvas
// defaults to the first image's native size (rounded to even dimensions)
// when the configuration leaves it unset.
func (p *Project) buildClip(ctx context.Context, spec ClipSpec, resolver *animation.Resolver, canvasW, canvasH *int) (clip.Source, bool, error) {
	track, err := p.resolveAudio(ctx, spec)
	if err != nil {
		return nil, false, err
	}

	duration := effectiveDuration(track, spec.DurationHint, p.Config.DefaultDuration)

	var aspec animation.Spec
	// "auto" и "smart" подбирают анимацию по содержимому изображения
	needImage := (spec.Animation == "auto" || spec.Animation == "smart") &&
		spec.AnimationSpec == nil && spec.Combo == nil
	var img image.Image

	if spec.Image != nil {
		img = spec.Image
	} else if needImage || *canvasW <= 0 || *canvasH <= 0 {
		img, err = source.LoadImage(spec.ImagePath)
		if err != nil {
			return nil, false, err
		}
	}

	if *canvasW <= 0 || *canvasH <= 0 {
		b := img.Bounds()
		*canvasW, *canvasH = evenDim(b.Dx()), evenDim(b.Dy())
	}

	if spec.AnimationSpec != nil {
		aspec = resolver.Resolve("", spec.AnimationSpec)
	} else if spec.Combo != nil {
		aspec = resolver.Combine(spec.Combo.Scale, spec.Combo.Position, spec.Combo.Curve)
	} else if needImage && spec.Animation == "smart" {
		aspec = resolver.Smart(img)
	} else if needImage {
		aspec = resolver.Auto(img.Bounds())
	} else {
		aspec = resolver.Resolve(spec.Animation, nil)
	}

	// Кэш переиспользует готовый клип, пока спека и геометрия не менялись
	if p.Cache != nil && spec.ImagePath != "" && spec.Image == nil {
		if cached, ok := p.Cache.Get(spec.ImagePath, aspec, *canvasW, *canvasH, duration); ok {
			return cached, true, nil
		}
	}

	if img == nil {
		img, err = source.LoadImage(spec.ImagePath)
		if err != nil {
			return nil, false, err
		}
	}

	rendered := clip.NewAnimated(img, aspec, *canvasW, *canvasH, duration, track)

	if p.Cache != nil && spec.ImagePath != "" && spec.Image == nil {
		p.Cache.Put(spec.ImagePath, aspec, *canvasW, *canvasH, duration, rendered)
		return rendered, true, nil
	}
	return rendered, false, nil
}

// resolveAudio attaches the clip's audio track: an explicit file, or speech
// synthesized from the clip text by the external collaborator.
func (p *Project) resolveAudio(ctx context.Context, spec ClipSpec) (*clip.Track, error) {
	path := spec.AudioPath
	if path == "" && spec.Text != "" && p.Synth != nil {
		var err error
		path, err = p.Synth.Synthesize(ctx, spec.Text)
		if err != nil {
			return nil, fmt.Errorf("синтез речи: %w", err)
		}
	}
	if path == "" {
		return nil, nil
	}

	duration, err := p.Prober.Duration(ctx, path)
	if err != nil {
		return nil, err
	}
	return &clip.Track{Path: path, Duration: duration}, nil
}

// padAudioTail extends the timeline with a freeze frame of the last clip
// when the audio plan outlasts the visual track. Audio is never cut short:
// the visual track stretches to exactly the plan's end. Returns the appended
// freeze clip, or nil when no padding is needed.
func padAudioTail(tl *timeline, last clip.Source, audioEnd float64) clip.Source {
	if audioEnd <= tl.total+1e-9 {
		return nil
	}
	freeze := clip.NewFreeze(last, last.Duration(), audioEnd-tl.total)
	tl.append(freeze)
	return freeze
}

// effectiveDuration reconciles the visual and audio timing of one clip:
// a nonzero audio track dictates the duration, then the caller's hint, then
// the configured default.
func effectiveDuration(track *clip.Track, hint, fallback float64) float64 {
	if track != nil && track.Duration > 0 {
		return track.Duration
	}
	if hint > 0 {
		return hint
	}
	return fallback
}

// streamFrames renders the timeline in parallel batches and writes frames
// to the encoder strictly in presentation order.
func (p *Project) streamFrames(ctx context.Context, tl *timeline, frameCount, frameBytes int, w io.Writer) error {
	fps := float64(p.Config.FPS)

	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.Workers(frameBytes)
	}
	if workers > frameCount {
		workers = frameCount
	}

	batch := make([]*image.RGBA, workers)
	for base := 0; base < frameCount; base += workers {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := workers
		if base+n > frameCount {
			n = frameCount - base
		}

		var g errgroup.Group
		for j := 0; j < n; j++ {
			j := j
			g.Go(func() error {
				batch[j] = tl.frameAt(float64(base+j) / fps)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for j := 0; j < n; j++ {
			_, err := w.Write(batch[j].Pix)
			system.PutImage(batch[j])
			batch[j] = nil
			if err != nil {
				// Кодировщик упал; его ошибка будет поднята вызывающим
				return nil
			}
		}
	}
	return nil
}

func evenDim(v int) int {
	if v%2 != 0 {
		return v + 1
	}
	return v
}
