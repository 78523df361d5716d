// Package transform turns a still image plus an animation spec into
// individual video frames. The whole mapping from elapsed time to pixels is
// closed-form, so frames can be computed in any order without drift.
package transform

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/image2video/internal/animation"
	"github.com/ivlev/image2video/internal/system"
)

// State holds the instantaneous transform parameters at one point in time.
type State struct {
	// Scale is the effective zoom, border-safety correction included.
	Scale float64
	// Offset is the center displacement in canvas fractions.
	Offset animation.Offset
}

// Evaluate computes the exact transform state for elapsed time t of the
// given total duration. A non-positive duration pins progress at 1.
//
// Whenever the interpolated offset is nonzero the scale is multiplied by
// max(1, 1+2|dx|, 1+2|dy|) so panning can never expose canvas beyond the
// source image, independent of the requested scale range.
func Evaluate(spec animation.Spec, t, duration float64) State {
	progress := 1.0
	if duration > 0 {
		progress = math.Min(math.Max(t/duration, 0), 1)
	}
	c := spec.Curve.Value(progress)

	scale := spec.Scale[0] + (spec.Scale[1]-spec.Scale[0])*c
	dx := spec.Position[0].X + (spec.Position[1].X-spec.Position[0].X)*c
	dy := spec.Position[0].Y + (spec.Position[1].Y-spec.Position[0].Y)*c

	if dx != 0 || dy != 0 {
		border := math.Max(1, math.Max(1+2*math.Abs(dx), 1+2*math.Abs(dy)))
		scale *= border
	}

	return State{Scale: scale, Offset: animation.Offset{X: dx, Y: dy}}
}

// Renderer is the immutable per-clip render context: source raster, spec,
// canvas geometry and the precomputed backdrop. Frame(t) is a pure function
// of t, so frames may be produced concurrently.
type Renderer struct {
	src      *image.RGBA
	backdrop *image.RGBA
	static   *image.RGBA // composed once for no-motion specs
	spec     animation.Spec
	duration float64
	width    int
	height   int
	fit      float64
}

// NewRenderer prepares the render context. A zero canvas size defaults to
// the source image's native size. Images larger than the canvas are scaled
// down to fit; smaller ones are centered.
func NewRenderer(src image.Image, spec animation.Spec, canvasW, canvasH int, duration float64) *Renderer {
	srcRGBA := ToRGBA(src)
	iw, ih := srcRGBA.Bounds().Dx(), srcRGBA.Bounds().Dy()

	if canvasW <= 0 || canvasH <= 0 {
		canvasW, canvasH = iw, ih
	}

	fit := math.Min(float64(canvasW)/float64(iw), float64(canvasH)/float64(ih))
	if fit > 1 {
		fit = 1
	}

	r := &Renderer{
		src:      srcRGBA,
		spec:     spec,
		duration: duration,
		width:    canvasW,
		height:   canvasH,
		fit:      fit,
	}
	r.backdrop = r.makeBackdrop()
	if spec.IsStatic() {
		r.static = system.GetImage(image.Rect(0, 0, canvasW, canvasH))
		r.compose(r.static, Evaluate(spec, 0, duration))
	}
	return r
}

// makeBackdrop scales the source to cover the whole canvas once. Residual
// areas the animated image does not reach (letterboxing, rounding slivers
// during panning) show this stretched edge content instead of hard black.
func (r *Renderer) makeBackdrop() *image.RGBA {
	backdrop := system.GetImage(image.Rect(0, 0, r.width, r.height))
	iw, ih := r.src.Bounds().Dx(), r.src.Bounds().Dy()
	cover := math.Max(float64(r.width)/float64(iw), float64(r.height)/float64(ih))
	m := f64.Aff3{
		cover, 0, (float64(r.width) - cover*float64(iw)) / 2,
		0, cover, (float64(r.height) - cover*float64(ih)) / 2,
	}
	xdraw.ApproxBiLinear.Transform(backdrop, m, r.src, r.src.Bounds(), xdraw.Src, nil)
	return backdrop
}

// Frame renders the frame for elapsed time t into a pooled buffer. The
// caller owns the result and returns it with system.PutImage.
func (r *Renderer) Frame(t float64) *image.RGBA {
	dst := system.GetImage(image.Rect(0, 0, r.width, r.height))
	if r.static != nil {
		copy(dst.Pix, r.static.Pix)
		return dst
	}
	r.compose(dst, Evaluate(r.spec, t, r.duration))
	return dst
}

// compose builds the single combined affine matrix (scale about the image
// center, then translate by the offset in canvas pixels) and applies it in
// one resampling pass. Two sequential warps would compound interpolation
// error and blur twice.
func (r *Renderer) compose(dst *image.RGBA, st State) {
	copy(dst.Pix, r.backdrop.Pix)

	iw, ih := float64(r.src.Bounds().Dx()), float64(r.src.Bounds().Dy())
	cw, ch := float64(r.width), float64(r.height)
	s := r.fit * st.Scale

	m := f64.Aff3{
		s, 0, cw/2 + st.Offset.X*cw - s*iw/2,
		0, s, ch/2 + st.Offset.Y*ch - s*ih/2,
	}
	xdraw.CatmullRom.Transform(dst, m, r.src, r.src.Bounds(), xdraw.Over, nil)
}

// Size returns the canvas dimensions of produced frames.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Close returns the internal buffers to the pool. Frames already handed out
// stay valid.
func (r *Renderer) Close() {
	system.PutImage(r.backdrop)
	r.backdrop = nil
	if r.static != nil {
		system.PutImage(r.static)
		r.static = nil
	}
}

// ToRGBA converts an image to tightly packed RGBA, reusing it when the
// layout already matches.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if ok && rgba.Stride == bounds.Dx()*4 && rgba.Rect.Min.X == 0 && rgba.Rect.Min.Y == 0 {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(dst, image.Point{}, img, bounds, xdraw.Src, nil)
	return dst
}
