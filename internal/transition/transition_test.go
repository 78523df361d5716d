package transition

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/image2video/internal/clip"
	"github.com/ivlev/image2video/internal/system"
)

// solid is a frame source filling every frame with one color.
type solid struct {
	r, g, b uint8
	dur     float64
	track   *clip.Track
}

func (s *solid) FrameAt(t float64) *image.RGBA {
	f := system.GetImage(image.Rect(0, 0, 16, 16))
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = s.r
		f.Pix[i+1] = s.g
		f.Pix[i+2] = s.b
		f.Pix[i+3] = 255
	}
	return f
}

func (s *solid) Duration() float64 { return s.dur }

func (s *solid) Audio() *clip.Track { return s.track }

func (s *solid) Close() {}

func TestBlendPassThrough(t *testing.T) {
	a := &solid{r: 255, dur: 2}
	b := &solid{b: 255, dur: 3}

	assert.Same(t, clip.Source(b), Blend(a, b, None, 1))
	assert.Same(t, clip.Source(b), Blend(nil, b, Crossfade, 1))
	assert.Same(t, clip.Source(b), Blend(a, b, Crossfade, 0))
}

func TestCrossfadeBoundaryContinuity(t *testing.T) {
	a := &solid{r: 200, dur: 2}
	b := &solid{b: 200, dur: 3}
	s := Blend(a, b, Crossfade, 1.0)

	// t=0: смесь 100%/0% — кадр A
	f := s.FrameAt(0)
	assert.Equal(t, uint8(200), f.Pix[0])
	assert.Equal(t, uint8(0), f.Pix[2])
	system.PutImage(f)

	// t→window⁻: смесь 0%/100% — почти кадр B
	f = s.FrameAt(0.999)
	assert.LessOrEqual(t, f.Pix[0], uint8(2))
	assert.GreaterOrEqual(t, f.Pix[2], uint8(198))
	system.PutImage(f)

	// t≥window: ровно кадр B
	f = s.FrameAt(1.0)
	want := b.FrameAt(1.0)
	assert.Equal(t, want.Pix, f.Pix)
	system.PutImage(f)
	system.PutImage(want)
}

func TestBlendedDurationAndAudioAreB(t *testing.T) {
	a := &solid{dur: 2, track: &clip.Track{Path: "a.wav", Duration: 2}}
	b := &solid{dur: 3, track: &clip.Track{Path: "b.wav", Duration: 3}}
	s := Blend(a, b, Crossfade, 1.0)

	assert.InDelta(t, 3.0, s.Duration(), 1e-9)
	require.NotNil(t, s.Audio())
	assert.Equal(t, "b.wav", s.Audio().Path)
}

func TestSlideLeftRevealsB(t *testing.T) {
	a := &solid{r: 255, dur: 2}
	b := &solid{b: 255, dur: 2}
	s := Blend(a, b, SlideLeft, 1.0)

	// На середине окна правая половина уже показывает B
	f := s.FrameAt(0.5)
	defer system.PutImage(f)

	left := f.Pix[0:4]
	right := f.Pix[15*4 : 15*4+4]
	assert.Equal(t, uint8(255), left[0], "левый край — ещё A")
	assert.Equal(t, uint8(255), right[2], "правый край — уже B")
}

func TestFlashPeaksWhite(t *testing.T) {
	a := &solid{r: 30, g: 30, b: 30, dur: 2}
	b := &solid{r: 60, g: 60, b: 60, dur: 2}
	s := Blend(a, b, Flash, 1.0)

	f := s.FrameAt(0.5)
	defer system.PutImage(f)
	assert.GreaterOrEqual(t, f.Pix[0], uint8(250), "пик вспышки — белый")
}

func TestAllKindsProduceFrames(t *testing.T) {
	a := &solid{r: 255, dur: 2}
	b := &solid{g: 255, dur: 2}
	kinds := []Kind{
		Crossfade, SlideLeft, SlideRight, SlideTop, SlideBottom,
		ZoomFade, RotateFade, Blinds, WarpDissolve, Flash,
	}
	for _, k := range kinds {
		s := Blend(a, b, k, 1.0)
		f := s.FrameAt(0.3)
		require.NotNil(t, f, "%v", k)
		assert.Equal(t, image.Rect(0, 0, 16, 16), f.Rect, "%v", k)
		system.PutImage(f)
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Kind{
		"":              None,
		"none":          None,
		"crossfade":     Crossfade,
		"fade":          Crossfade,
		"slide-left":    SlideLeft,
		"zoom-fade":     ZoomFade,
		"rotate-fade":   RotateFade,
		"blinds":        Blinds,
		"warp-dissolve": WarpDissolve,
		"flash":         Flash,
		"random":        Random,
		"wipe-матрица":  Crossfade, // неизвестное имя
	}
	for name, want := range cases {
		assert.Equal(t, want, Parse(name), "%q", name)
	}
}

func TestResolveNeverNone(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		k := Resolve(Random, r)
		assert.NotEqual(t, None, k)
		assert.NotEqual(t, Random, k)
	}
	assert.Equal(t, Blinds, Resolve(Blinds, r), "конкретный вид не меняется")
}
