// Package clip defines time-indexed frame sources: the rendered form of one
// input image plus whatever audio rides along with it.
package clip

import (
	"image"

	"github.com/ivlev/image2video/internal/animation"
	"github.com/ivlev/image2video/internal/system"
	"github.com/ivlev/image2video/internal/transform"
)

// Track describes the audio asset attached to a clip.
type Track struct {
	Path     string
	Duration float64
}

// Source is a time-indexed frame source of known total duration. FrameAt
// returns a pooled buffer owned by the caller; return it with
// system.PutImage once written out. FrameAt is safe for concurrent use.
type Source interface {
	FrameAt(t float64) *image.RGBA
	Duration() float64
	Audio() *Track
	Close()
}

// Animated renders one still image through its animation spec.
type Animated struct {
	renderer *transform.Renderer
	duration float64
	audio    *Track
}

// NewAnimated builds the rendered clip for an image. All heavy lifting
// (decode, RGBA conversion, backdrop) happens here, once per clip, never
// per frame.
func NewAnimated(img image.Image, spec animation.Spec, canvasW, canvasH int, duration float64, audio *Track) *Animated {
	return &Animated{
		renderer: transform.NewRenderer(img, spec, canvasW, canvasH, duration),
		duration: duration,
		audio:    audio,
	}
}

func (a *Animated) FrameAt(t float64) *image.RGBA {
	return a.renderer.Frame(t)
}

func (a *Animated) Duration() float64 { return a.duration }

func (a *Animated) Audio() *Track { return a.audio }

func (a *Animated) Close() { a.renderer.Close() }

// Freeze holds a single sampled frame for a fixed duration. The sequencer
// appends one when trailing audio outlasts the visual track.
type Freeze struct {
	frame    *image.RGBA
	duration float64
}

// NewFreeze samples src at time at and holds that frame.
func NewFreeze(src Source, at, duration float64) *Freeze {
	return &Freeze{frame: src.FrameAt(at), duration: duration}
}

func (f *Freeze) FrameAt(t float64) *image.RGBA {
	dst := system.GetImage(f.frame.Rect)
	copy(dst.Pix, f.frame.Pix)
	return dst
}

func (f *Freeze) Duration() float64 { return f.duration }

func (f *Freeze) Audio() *Track { return nil }

func (f *Freeze) Close() {
	system.PutImage(f.frame)
	f.frame = nil
}

// интерфейсные проверки
var (
	_ Source = (*Animated)(nil)
	_ Source = (*Freeze)(nil)
)
