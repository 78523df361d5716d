package transition

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/image2video/internal/clip"
	"github.com/ivlev/image2video/internal/system"
)

// numBlinds is the strip count of the blinds effect.
const numBlinds = 20

// Blend wraps clip B so that its first window seconds mix in clip A's tail.
// The result covers t in [0, B.duration); its audio is B's audio (A's
// trailing audio is assumed fully played by the time its tail is blended).
// Kind None and a nil A return B unchanged. The Random kind must be
// resolved by the caller before blending.
func Blend(a, b clip.Source, kind Kind, window float64) clip.Source {
	if kind == None || a == nil || window <= 0 {
		return b
	}
	return &blended{a: a, b: b, kind: kind, window: window}
}

// blended owns neither underlying clip; the sequencer releases them.
type blended struct {
	a, b   clip.Source
	kind   Kind
	window float64
}

func (s *blended) Duration() float64 { return s.b.Duration() }

func (s *blended) Audio() *clip.Track { return s.b.Audio() }

func (s *blended) Close() {}

func (s *blended) FrameAt(t float64) *image.RGBA {
	if t >= s.window {
		return s.b.FrameAt(t)
	}

	fa := s.a.FrameAt(s.a.Duration() - s.window + t)
	fb := s.b.FrameAt(t)
	defer system.PutImage(fa)
	defer system.PutImage(fb)

	q := t / s.window
	dst := system.GetImage(fb.Rect)

	switch s.kind {
	case SlideLeft, SlideRight, SlideTop, SlideBottom:
		slide(dst, fa, fb, q, s.kind)
	case ZoomFade:
		zoomFade(dst, fa, fb, q)
	case RotateFade:
		rotateFade(dst, fa, fb, q)
	case Blinds:
		blinds(dst, fa, fb, q)
	case WarpDissolve:
		warpDissolve(dst, fa, fb, q)
	case Flash:
		flash(dst, fa, fb, q)
	default:
		// Crossfade — и запасной вариант для любых будущих видов
		mix(dst.Pix, fa.Pix, fb.Pix, q)
	}

	return dst
}

// mix writes a*(1-w) + b*w into dst, all three tightly packed RGBA.
func mix(dst, a, b []uint8, w float64) {
	wa := uint32(math.Round((1 - w) * 256))
	wb := uint32(math.Round(w * 256))
	for i := range dst {
		dst[i] = uint8((uint32(a[i])*wa + uint32(b[i])*wb) >> 8)
	}
}

// mixWhite blends a frame toward full white with weight w.
func mixWhite(dst, src []uint8, w float64) {
	ws := uint32(math.Round((1 - w) * 256))
	white := uint32(math.Round(w*256)) * 255
	for i := range dst {
		dst[i] = uint8((uint32(src[i])*ws + white) >> 8)
	}
}

// slide keeps A on screen while B covers a growing fraction q of the frame
// from the named edge.
func slide(dst, fa, fb *image.RGBA, q float64, kind Kind) {
	copy(dst.Pix, fa.Pix)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()

	switch kind {
	case SlideLeft:
		off := int(float64(w) * (1 - q))
		copyColumns(dst, fb, off, 0, w-off)
	case SlideRight:
		off := int(float64(w) * (1 - q))
		copyColumns(dst, fb, 0, off, w-off)
	case SlideTop:
		off := int(float64(h) * (1 - q))
		copyRows(dst, fb, off, 0, h-off)
	case SlideBottom:
		off := int(float64(h) * (1 - q))
		copyRows(dst, fb, 0, off, h-off)
	}
}

// copyColumns copies n source columns starting at srcX into dst at dstX.
func copyColumns(dst, src *image.RGBA, dstX, srcX, n int) {
	if n <= 0 {
		return
	}
	h := dst.Rect.Dy()
	for y := 0; y < h; y++ {
		d := dst.Pix[y*dst.Stride+dstX*4 : y*dst.Stride+(dstX+n)*4]
		s := src.Pix[y*src.Stride+srcX*4 : y*src.Stride+(srcX+n)*4]
		copy(d, s)
	}
}

// copyRows copies n source rows starting at srcY into dst at dstY.
func copyRows(dst, src *image.RGBA, dstY, srcY, n int) {
	if n <= 0 {
		return
	}
	rowBytes := dst.Rect.Dx() * 4
	for y := 0; y < n; y++ {
		d := dst.Pix[(dstY+y)*dst.Stride : (dstY+y)*dst.Stride+rowBytes]
		s := src.Pix[(srcY+y)*src.Stride : (srcY+y)*src.Stride+rowBytes]
		copy(d, s)
	}
}

// zoomFade scales B from half size toward full about its center while
// cross-blending it with A at weight q.
func zoomFade(dst, fa, fb *image.RGBA, q float64) {
	w, h := fb.Rect.Dx(), fb.Rect.Dy()
	z := 0.5 + 0.5*q

	zoomed := system.GetImage(fb.Rect)
	defer system.PutImage(zoomed)
	clear(zoomed.Pix)

	m := f64.Aff3{
		z, 0, float64(w) / 2 * (1 - z),
		0, z, float64(h) / 2 * (1 - z),
	}
	xdraw.ApproxBiLinear.Transform(zoomed, m, fb, fb.Rect, xdraw.Src, nil)

	mix(dst.Pix, fa.Pix, zoomed.Pix, q)
}

// rotateFade spins B in from 90 degrees while it grows from nothing
// (rotation angle 90(1-q), scale q) and cross-blends it with A at weight q.
func rotateFade(dst, fa, fb *image.RGBA, q float64) {
	w, h := fb.Rect.Dx(), fb.Rect.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	angle := (math.Pi / 2) * (1 - q)

	alpha := q * math.Cos(angle)
	beta := q * math.Sin(angle)

	rotated := system.GetImage(fb.Rect)
	defer system.PutImage(rotated)
	clear(rotated.Pix)

	m := f64.Aff3{
		alpha, beta, (1-alpha)*cx - beta*cy,
		-beta, alpha, beta*cx + (1-alpha)*cy,
	}
	xdraw.ApproxBiLinear.Transform(rotated, m, fb, fb.Rect, xdraw.Src, nil)

	mix(dst.Pix, fa.Pix, rotated.Pix, q)
}

// blinds splits the canvas into horizontal strips, each revealing B through
// its own linear sub-window once q passes i/N.
func blinds(dst, fa, fb *image.RGBA, q float64) {
	copy(dst.Pix, fa.Pix)
	h := dst.Rect.Dy()
	stripH := h / numBlinds
	if stripH < 1 {
		stripH = 1
	}

	for i := 0; i < numBlinds; i++ {
		yStart := i * stripH
		yEnd := (i + 1) * stripH
		if i == numBlinds-1 || yEnd > h {
			yEnd = h
		}
		if yStart >= h {
			break
		}

		p := math.Min(1, q*2-float64(i)/numBlinds)
		if p <= 0 {
			continue
		}

		start := yStart * dst.Stride
		end := yEnd * dst.Stride
		mix(dst.Pix[start:end], fa.Pix[start:end], fb.Pix[start:end], p)
	}
}

// warpDissolve perturbs A with a decaying sinusoidal displacement field and
// cross-blends the result with an unperturbed B.
func warpDissolve(dst, fa, fb *image.RGBA, q float64) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	decay := 1 - q
	phase := q * 10

	// Смещение по X зависит только от строки, по Y — только от столбца
	shiftX := make([]int, h)
	for y := 0; y < h; y++ {
		shiftX[y] = int(math.Round(10 * math.Sin(float64(y)/30+phase) * decay))
	}
	shiftY := make([]int, w)
	for x := 0; x < w; x++ {
		shiftY[x] = int(math.Round(10 * math.Cos(float64(x)/30+phase) * decay))
	}

	warped := system.GetImage(fa.Rect)
	defer system.PutImage(warped)

	for y := 0; y < h; y++ {
		row := warped.Pix[y*warped.Stride:]
		for x := 0; x < w; x++ {
			sx := clampInt(x+shiftX[y], 0, w-1)
			sy := clampInt(y+shiftY[x], 0, h-1)
			src := fa.Pix[sy*fa.Stride+sx*4:]
			copy(row[x*4:x*4+4], src[:4])
		}
	}

	mix(dst.Pix, warped.Pix, fb.Pix, q)
}

// flash blends A toward full white over the first half of the window, then
// from white toward B over the second half.
func flash(dst, fa, fb *image.RGBA, q float64) {
	if q < 0.5 {
		mixWhite(dst.Pix, fa.Pix, q*2)
	} else {
		mixWhite(dst.Pix, fb.Pix, 2-q*2)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
