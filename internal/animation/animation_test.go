package animation

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/image2video/internal/curve"
)

func newResolver(seed int64) *Resolver {
	return NewResolver(rand.New(rand.NewSource(seed)))
}

func TestResolvePreset(t *testing.T) {
	r := newResolver(1)

	spec := r.Resolve("push-in", nil)
	assert.Equal(t, [2]float64{1.0, 1.2}, spec.Scale)
	assert.Equal(t, [2]Offset{}, spec.Position)
	assert.Equal(t, curve.EaseInOut, spec.Curve)

	spec = r.Resolve("pan-left", nil)
	assert.Equal(t, Offset{X: 0.05}, spec.Position[0])
	assert.Equal(t, Offset{X: -0.05}, spec.Position[1])
}

func TestResolveUnknownFallsBackToStatic(t *testing.T) {
	r := newResolver(1)

	for _, name := range []string{"nonexistent", "", "none"} {
		spec := r.Resolve(name, nil)
		assert.True(t, spec.IsStatic(), "preset %q should resolve to static", name)
	}
}

func TestResolveRawSpecPassesThrough(t *testing.T) {
	r := newResolver(1)

	raw := &Spec{
		Scale:    [2]float64{1.0, 1.3},
		Position: [2]Offset{{X: 0.02}, {X: -0.02}},
		Curve:    curve.Bounce,
	}
	spec := r.Resolve("push-in", raw)
	assert.Equal(t, *raw, spec, "raw descriptor wins over the preset name")
}

func TestResolveMalformedSpecIsStatic(t *testing.T) {
	r := newResolver(1)

	// Missing scale keys come through as zeros and must not blow up the
	// transform; they degrade to scale 1.0.
	spec := r.Resolve("", &Spec{})
	assert.Equal(t, [2]float64{1, 1}, spec.Scale)
	assert.True(t, spec.IsStatic())
}

func TestResolveRandom(t *testing.T) {
	r := newResolver(99)

	for i := 0; i < 30; i++ {
		spec := r.Resolve("random", nil)
		assert.False(t, spec.IsStatic(), "random must pick a moving preset")
		assert.NotEqual(t, curve.Random, spec.Curve, "curve must be resolved once")
	}

	// Same seed, same sequence of choices.
	a := newResolver(5).Resolve("random", nil)
	b := newResolver(5).Resolve("random", nil)
	assert.Equal(t, a, b)
}

func TestCombine(t *testing.T) {
	r := newResolver(1)

	spec := r.Combine("push-in", "left", "ease-in")
	assert.Equal(t, [2]float64{1.0, 1.2}, spec.Scale)
	assert.Equal(t, Offset{X: 0.05}, spec.Position[0])
	assert.Equal(t, curve.EaseIn, spec.Curve)

	// Independent random picks exclude the neutral entries.
	for i := 0; i < 30; i++ {
		spec := r.Combine("random", "random", "random")
		assert.NotEqual(t, [2]float64{1, 1}, spec.Scale)
		assert.NotEqual(t, [2]Offset{}, spec.Position)
		assert.NotEqual(t, curve.Random, spec.Curve)
	}
}

func TestCombineUnknownNamesStayNeutral(t *testing.T) {
	r := newResolver(1)

	spec := r.Combine("bogus", "bogus", "linear")
	assert.True(t, spec.IsStatic())
}

func TestSmart(t *testing.T) {
	r := newResolver(3)

	// Content block in the top-left quadrant pulls the push-in toward it.
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 20; y < 80; y++ {
		for x := 20; x < 80; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	spec := r.Smart(img)
	assert.Equal(t, [2]float64{1.0, 1.15}, spec.Scale)
	assert.Equal(t, Offset{}, spec.Position[0])
	assert.Greater(t, spec.Position[1].X, 0.0)
	assert.Greater(t, spec.Position[1].Y, 0.0)
	assert.LessOrEqual(t, spec.Position[1].X, maxSmartOffset)
	assert.LessOrEqual(t, spec.Position[1].Y, maxSmartOffset)

	// Flat images fall back to shape-based selection.
	flat := image.NewGray(image.Rect(0, 0, 200, 200))
	assert.False(t, r.Smart(flat).IsStatic())
}

func TestAuto(t *testing.T) {
	r := newResolver(3)

	wide := r.Auto(image.Rect(0, 0, 1920, 800))
	require.False(t, wide.IsStatic())
	assert.NotZero(t, wide.Position[0].X, "wide images pan horizontally")

	tall := r.Auto(image.Rect(0, 0, 700, 1600))
	assert.NotZero(t, tall.Position[0].Y, "tall images pan vertically")

	square := r.Auto(image.Rect(0, 0, 1000, 1000))
	assert.NotEqual(t, square.Scale[0], square.Scale[1], "square images zoom")
}
