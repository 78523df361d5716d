package animation

import (
	"sort"

	"github.com/ivlev/image2video/internal/curve"
)

// presets models camera moves: push/pull change distance, pan/track slide
// the frame, dolly combines both. Offsets are canvas fractions.
var presets = map[string]Spec{
	"push-in": {
		Scale: [2]float64{1.0, 1.2},
		Curve: curve.EaseInOut,
	},
	"pull-out": {
		Scale: [2]float64{1.2, 1.0},
		Curve: curve.EaseInOut,
	},
	"pan-left": {
		Scale:    [2]float64{1.1, 1.1},
		Position: [2]Offset{{X: 0.05}, {X: -0.05}},
		Curve:    curve.EaseInOut,
	},
	"pan-right": {
		Scale:    [2]float64{1.1, 1.1},
		Position: [2]Offset{{X: -0.05}, {X: 0.05}},
		Curve:    curve.EaseInOut,
	},
	"pan-up": {
		Scale:    [2]float64{1.1, 1.1},
		Position: [2]Offset{{Y: 0.05}, {Y: -0.05}},
		Curve:    curve.EaseInOut,
	},
	"pan-down": {
		Scale:    [2]float64{1.1, 1.1},
		Position: [2]Offset{{Y: -0.05}, {Y: 0.05}},
		Curve:    curve.EaseInOut,
	},
	"dolly-left": {
		Scale:    [2]float64{1.0, 1.15},
		Position: [2]Offset{{X: 0.05}, {X: -0.05}},
		Curve:    curve.EaseInOut,
	},
	"dolly-right": {
		Scale:    [2]float64{1.0, 1.15},
		Position: [2]Offset{{X: -0.05}, {X: 0.05}},
		Curve:    curve.EaseInOut,
	},
	// Tracking shots follow a moving subject, so they stay linear.
	"track-left": {
		Scale:    [2]float64{1.1, 1.1},
		Position: [2]Offset{{X: 0.06}, {X: -0.06}},
		Curve:    curve.Linear,
	},
	"track-right": {
		Scale:    [2]float64{1.1, 1.1},
		Position: [2]Offset{{X: -0.06}, {X: 0.06}},
		Curve:    curve.Linear,
	},
	"push-left": {
		Scale:    [2]float64{1.0, 1.2},
		Position: [2]Offset{{X: 0.03}, {X: -0.03}},
		Curve:    curve.EaseInOut,
	},
	"push-right": {
		Scale:    [2]float64{1.0, 1.2},
		Position: [2]Offset{{X: -0.03}, {X: 0.03}},
		Curve:    curve.EaseInOut,
	},
	"pull-left": {
		Scale:    [2]float64{1.2, 1.0},
		Position: [2]Offset{{X: 0.03}, {X: -0.03}},
		Curve:    curve.EaseInOut,
	},
	"pull-right": {
		Scale:    [2]float64{1.2, 1.0},
		Position: [2]Offset{{X: -0.03}, {X: 0.03}},
		Curve:    curve.EaseInOut,
	},
	"orbit": {
		Scale:    [2]float64{1.1, 1.1},
		Position: [2]Offset{{X: -0.04, Y: -0.04}, {X: 0.04, Y: 0.04}},
		Curve:    curve.EaseInOut,
	},
	"focus-in": {
		Scale: [2]float64{1.0, 1.2},
		Curve: curve.EaseIn,
	},
	"focus-out": {
		Scale: [2]float64{1.2, 1.0},
		Curve: curve.EaseOut,
	},
}

// movingPresets lists preset names eligible for "random" selection, sorted
// so a seeded random source always picks the same preset.
var movingPresets = func() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// Separable tables: a scale range and a position range can be combined
// freely with any curve.
var scalePresets = map[string][2]float64{
	"none":          {1.0, 1.0},
	"push-in":       {1.0, 1.2},
	"push-in-soft":  {1.0, 1.1},
	"pull-out":      {1.2, 1.0},
	"pull-out-soft": {1.1, 1.0},
	"hold-close":    {1.1, 1.1},
}

var positionPresets = map[string][2]Offset{
	"none":     {},
	"left":     {{X: 0.05}, {X: -0.05}},
	"right":    {{X: -0.05}, {X: 0.05}},
	"up":       {{Y: 0.05}, {Y: -0.05}},
	"down":     {{Y: -0.05}, {Y: 0.05}},
	"diagonal": {{X: -0.04, Y: -0.04}, {X: 0.04, Y: 0.04}},
}

var movingScalePresets = movingNames(scalePresets)
var movingPositionPresets = movingNames(positionPresets)

// movingNames filters out the neutral entry so "random" always moves.
func movingNames[V any](table map[string]V) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		if name != "none" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
