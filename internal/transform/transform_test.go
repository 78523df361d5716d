package transform

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/image2video/internal/animation"
	"github.com/ivlev/image2video/internal/curve"
	"github.com/ivlev/image2video/internal/system"
)

func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(40 + x*200/w), uint8(40 + y*200/h), 200, 255})
		}
	}
	return img
}

func TestEvaluateLinearMidpoint(t *testing.T) {
	spec := animation.Spec{
		Scale: [2]float64{1.0, 1.2},
		Curve: curve.Linear,
	}
	st := Evaluate(spec, 2.5, 5.0)
	assert.InDelta(t, 1.1, st.Scale, 1e-6)
	assert.Zero(t, st.Offset.X)
	assert.Zero(t, st.Offset.Y)
}

func TestEvaluateProgressClamped(t *testing.T) {
	spec := animation.Spec{Scale: [2]float64{1.0, 2.0}, Curve: curve.Linear}

	assert.InDelta(t, 1.0, Evaluate(spec, -1, 5).Scale, 1e-9)
	assert.InDelta(t, 2.0, Evaluate(spec, 99, 5).Scale, 1e-9)
}

func TestEvaluateZeroDurationPinsEnd(t *testing.T) {
	spec := animation.Spec{Scale: [2]float64{1.0, 1.5}, Curve: curve.Linear}
	assert.InDelta(t, 1.5, Evaluate(spec, 0, 0).Scale, 1e-9)
	assert.InDelta(t, 1.5, Evaluate(spec, 0, -3).Scale, 1e-9)
}

func TestEvaluateBorderSafety(t *testing.T) {
	spec := animation.Spec{
		Scale: [2]float64{1.0, 1.0},
		Position: [2]animation.Offset{
			{X: -0.05}, {X: 0.05},
		},
		Curve: curve.Linear,
	}

	// На краях смещение ±0.05: масштаб не меньше 1+2·|0.05|
	for _, tt := range []float64{0, 5} {
		st := Evaluate(spec, tt, 5)
		want := 1 + 2*math.Abs(st.Offset.X)
		assert.GreaterOrEqual(t, st.Scale+1e-9, want, "t=%v", tt)
	}

	// В середине смещение ровно ноль, масштаб без поправки
	mid := Evaluate(spec, 2.5, 5)
	assert.InDelta(t, 1.0, mid.Scale, 1e-9)
}

func TestRendererNoBlackBorders(t *testing.T) {
	// Панорама по узкому изображению на широком холсте: ни один кадр не
	// должен содержать чисто чёрных пикселей
	spec := animation.Spec{
		Scale: [2]float64{1.0, 1.0},
		Position: [2]animation.Offset{
			{X: -0.05}, {X: 0.05},
		},
		Curve: curve.Linear,
	}
	r := NewRenderer(gradientImage(40, 60), spec, 64, 36, 2.0)
	defer r.Close()

	for _, tt := range []float64{0, 0.7, 1.3, 2.0} {
		frame := r.Frame(tt)
		for i := 0; i < len(frame.Pix); i += 4 {
			if frame.Pix[i] == 0 && frame.Pix[i+1] == 0 && frame.Pix[i+2] == 0 {
				t.Fatalf("чёрный пиксель на t=%v, смещение %d", tt, i/4)
			}
		}
		system.PutImage(frame)
	}
}

func TestRendererStaticFramesIdentical(t *testing.T) {
	r := NewRenderer(gradientImage(32, 32), animation.Static(), 32, 32, 3.0)
	defer r.Close()

	a := r.Frame(0)
	b := r.Frame(1.7)
	assert.Equal(t, a.Pix, b.Pix)
	system.PutImage(a)
	system.PutImage(b)
}

func TestRendererCanvasDefaultsToSource(t *testing.T) {
	r := NewRenderer(gradientImage(48, 27), animation.Static(), 0, 0, 1.0)
	defer r.Close()

	w, h := r.Size()
	assert.Equal(t, 48, w)
	assert.Equal(t, 27, h)
}

func TestRendererFrameOrderIndependent(t *testing.T) {
	spec := animation.Spec{
		Scale: [2]float64{1.0, 1.2},
		Curve: curve.EaseInOut,
	}
	r := NewRenderer(gradientImage(40, 40), spec, 40, 40, 2.0)
	defer r.Close()

	late := r.Frame(1.5)
	lateCopy := make([]uint8, len(late.Pix))
	copy(lateCopy, late.Pix)
	system.PutImage(late)

	early := r.Frame(0.5)
	system.PutImage(early)

	again := r.Frame(1.5)
	assert.Equal(t, lateCopy, again.Pix, "кадр зависит только от t")
	system.PutImage(again)
}

func TestToRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	assert.Same(t, src, ToRGBA(src))

	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	converted := ToRGBA(gray)
	require.NotNil(t, converted)
	assert.Equal(t, 8, converted.Bounds().Dx())

	shifted := image.NewRGBA(image.Rect(2, 2, 10, 10))
	moved := ToRGBA(shifted)
	assert.Equal(t, image.Pt(0, 0), moved.Bounds().Min)
}
