package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/image2video/internal/animation"
	"github.com/ivlev/image2video/internal/config"
	"github.com/ivlev/image2video/internal/curve"
	"github.com/ivlev/image2video/internal/transition"
)

const sampleProject = `
version: "1"
width: 1920
height: 1080
fps: 25
quality: high
transition:
  kind: crossfade
  duration: 0.7
clips:
  - image: intro.png
    duration: 3
    animation: push-in
  - image: chart.png
    audio: chart.wav
    animation:
      scale: [1.0, 1.15]
      position: [[0, 0], [0.04, 0]]
      curve: ease-in-out
    transition:
      kind: slide-left
      duration: 0.4
  - image: outro.png
    text: Спасибо за внимание
    animation:
      scale: pull-out
      position: left
      curve: ease-out
`

func writeProject(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeProject(t, sampleProject))
	require.NoError(t, err)

	assert.Equal(t, 1920, f.Width)
	assert.Equal(t, 25, f.FPS)
	require.Len(t, f.Clips, 3)

	// Три формы описания анимации
	assert.Equal(t, "push-in", f.Clips[0].Animation.Name)

	spec := f.Clips[1].Animation.Spec
	require.NotNil(t, spec)
	assert.Equal(t, [2]float64{1.0, 1.15}, spec.Scale)
	assert.Equal(t, animation.Offset{X: 0.04}, spec.Position[1])
	assert.Equal(t, curve.EaseInOut, spec.Curve)

	combo := f.Clips[2].Animation.Combo
	require.NotNil(t, combo)
	assert.Equal(t, "pull-out", combo.Scale)
	assert.Equal(t, "left", combo.Position)
	assert.Equal(t, "ease-out", combo.Curve)

	assert.Equal(t, "Спасибо за внимание", f.Clips[2].Text)
}

func TestLoadEmptyClips(t *testing.T) {
	_, err := Load(writeProject(t, "clips: []\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "нет.yaml"))
	assert.Error(t, err)
}

func TestClipSpecs(t *testing.T) {
	f, err := Load(writeProject(t, sampleProject))
	require.NoError(t, err)

	specs := f.ClipSpecs()
	require.Len(t, specs, 3)
	assert.Equal(t, "intro.png", specs[0].ImagePath)
	assert.InDelta(t, 3.0, specs[0].DurationHint, 1e-9)
	assert.Equal(t, "push-in", specs[0].Animation)
	assert.Equal(t, "chart.wav", specs[1].AudioPath)
	assert.NotNil(t, specs[1].AnimationSpec)
	assert.NotNil(t, specs[2].Combo)
}

func TestTransitions(t *testing.T) {
	f, err := Load(writeProject(t, sampleProject))
	require.NoError(t, err)

	cfg := &config.Config{Transition: "fade", FadeDuration: 0.5}
	global, perBoundary := f.Transitions(cfg)

	assert.Equal(t, transition.Crossfade, global.Kind)
	assert.InDelta(t, 0.7, global.Duration, 1e-9)

	require.Len(t, perBoundary, 2)
	// Граница 0→1 переопределена в клипе
	assert.Equal(t, transition.SlideLeft, perBoundary[0].Kind)
	assert.InDelta(t, 0.4, perBoundary[0].Duration, 1e-9)
	// Граница 1→2 наследует глобальный переход
	assert.Equal(t, transition.Crossfade, perBoundary[1].Kind)
	assert.InDelta(t, 0.7, perBoundary[1].Duration, 1e-9)
}

func TestTransitionsPartialOverride(t *testing.T) {
	body := `
transition:
  kind: crossfade
  duration: 0.7
clips:
  - image: a.png
  - image: b.png
    transition:
      duration: 0.4
  - image: c.png
    transition:
      kind: blinds
`
	f, err := Load(writeProject(t, body))
	require.NoError(t, err)

	cfg := &config.Config{Transition: "fade", FadeDuration: 0.5}
	_, perBoundary := f.Transitions(cfg)
	require.Len(t, perBoundary, 2)

	// Переопределена только длительность: вид наследуется от глобального
	assert.Equal(t, transition.Crossfade, perBoundary[0].Kind)
	assert.InDelta(t, 0.4, perBoundary[0].Duration, 1e-9)

	// Переопределён только вид: длительность наследуется от глобального
	assert.Equal(t, transition.Blinds, perBoundary[1].Kind)
	assert.InDelta(t, 0.7, perBoundary[1].Duration, 1e-9)
}

func TestTransitionsExplicitNone(t *testing.T) {
	body := `
transition:
  kind: crossfade
clips:
  - image: a.png
  - image: b.png
    transition:
      kind: none
`
	f, err := Load(writeProject(t, body))
	require.NoError(t, err)

	_, perBoundary := f.Transitions(&config.Config{Transition: "fade", FadeDuration: 0.5})
	require.Len(t, perBoundary, 1)
	assert.Equal(t, transition.None, perBoundary[0].Kind, "явный none отключает переход")
}

func TestTransitionsFallBackToConfig(t *testing.T) {
	f := &File{Clips: []Clip{{Image: "a.png"}, {Image: "b.png"}}}
	cfg := &config.Config{Transition: "zoom-fade", FadeDuration: 0.6}

	global, perBoundary := f.Transitions(cfg)
	assert.Equal(t, transition.ZoomFade, global.Kind)
	assert.InDelta(t, 0.6, global.Duration, 1e-9)
	require.Len(t, perBoundary, 1)
	assert.Equal(t, global, perBoundary[0])
}

func TestApply(t *testing.T) {
	cfg := &config.Config{Width: 1280, Height: 720, FPS: 30, Quality: "medium"}
	f := &File{Width: 1920, Height: 1080, Quality: "high"}

	f.Apply(cfg)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 1080, cfg.Height)
	assert.Equal(t, 30, cfg.FPS, "не заданный в проекте FPS сохраняется")
	assert.Equal(t, "high", cfg.Quality)
}

func TestWriteRoundTrip(t *testing.T) {
	spec := animation.Spec{
		Scale:    [2]float64{1.0, 1.2},
		Position: [2]animation.Offset{{}, {X: 0.05}},
		Curve:    curve.EaseOut,
	}
	orig := &File{
		Version:    "1",
		FPS:        24,
		Transition: Transition{Kind: "blinds", Duration: 0.8},
		Clips: []Clip{
			{Image: "a.png", Duration: 2, Animation: Animation{Name: "pan-left"}},
			{Image: "b.png", Animation: Animation{Spec: &spec}},
			{Image: "c.png", Animation: Animation{Combo: &animation.Combo{Scale: "push-in", Curve: "linear"}}},
		},
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Write(orig, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig.FPS, got.FPS)
	assert.Equal(t, orig.Transition, got.Transition)
	require.Len(t, got.Clips, 3)
	assert.Equal(t, "pan-left", got.Clips[0].Animation.Name)
	require.NotNil(t, got.Clips[1].Animation.Spec)
	assert.Equal(t, spec, *got.Clips[1].Animation.Spec)
	require.NotNil(t, got.Clips[2].Animation.Combo)
	assert.Equal(t, "push-in", got.Clips[2].Animation.Combo.Scale)
}
