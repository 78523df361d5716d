// Package animation resolves named presets, raw descriptors and "random"
// requests into concrete pan-zoom specs.
package animation

import (
	"image"
	"log"
	"math/rand"

	"github.com/ivlev/image2video/internal/curve"
	"github.com/ivlev/image2video/internal/focus"
)

// Offset is a position displacement expressed as signed fractions of the
// canvas width and height, keeping specs resolution-independent.
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Spec is the resolved scale/position/curve triple driving one clip's motion.
// The zero value plays as a static clip.
type Spec struct {
	// Scale holds the start and end zoom factors.
	Scale [2]float64
	// Position holds the start and end center offsets.
	Position [2]Offset
	Curve    curve.Kind
}

// Static returns the no-motion spec.
func Static() Spec {
	return Spec{Scale: [2]float64{1, 1}, Curve: curve.Linear}
}

// IsStatic reports whether the spec produces no visible motion.
func (s Spec) IsStatic() bool {
	return s.Scale[0] == s.Scale[1] && s.Scale[0] == 1 &&
		s.Position[0] == (Offset{}) && s.Position[1] == (Offset{})
}

// Normalize repairs a malformed spec: a missing scale range degrades to 1.0
// so a partially filled descriptor plays as a static clip instead of failing.
func (s Spec) Normalize() Spec {
	if s.Scale[0] == 0 {
		s.Scale[0] = 1
	}
	if s.Scale[1] == 0 {
		s.Scale[1] = 1
	}
	return s
}

// Combo names independently chosen scale, position and curve presets.
// Feed it through Resolver.Combine to get a concrete spec.
type Combo struct {
	Scale    string `yaml:"scale"`
	Position string `yaml:"position"`
	Curve    string `yaml:"curve"`
}

// Resolver turns preset names and raw descriptors into concrete specs.
// Randomness comes from the injected source only, so a render is
// reproducible once its specs are frozen.
type Resolver struct {
	rand *rand.Rand
}

func NewResolver(r *rand.Rand) *Resolver {
	return &Resolver{rand: r}
}

// Resolve produces the concrete spec for a clip. A non-nil raw descriptor
// wins over the name. Preset lookups never fail: unknown names fall back to
// the static spec with a diagnostic, "random" picks a non-trivial preset and
// an independent random curve.
func (r *Resolver) Resolve(name string, raw *Spec) Spec {
	if raw != nil {
		spec := raw.Normalize()
		spec.Curve = curve.Resolve(spec.Curve, r.rand)
		return spec
	}

	switch name {
	case "", "none":
		return Static()
	case "random":
		spec := presets[movingPresets[r.rand.Intn(len(movingPresets))]]
		spec.Curve = curve.Resolve(curve.Random, r.rand)
		return spec
	}

	spec, ok := presets[name]
	if !ok {
		log.Printf("[!] Неизвестный пресет анимации %q, клип будет статичным", name)
		return Static()
	}
	spec.Curve = curve.Resolve(spec.Curve, r.rand)
	return spec
}

// Combine builds a spec from independent scale and position presets paired
// with the given curve. "random" in either table picks uniformly among that
// table's non-neutral entries; the two choices are independent.
func (r *Resolver) Combine(scaleName, positionName, curveName string) Spec {
	spec := Static()

	if scaleName == "random" {
		scaleName = movingScalePresets[r.rand.Intn(len(movingScalePresets))]
	}
	if sc, ok := scalePresets[scaleName]; ok {
		spec.Scale = sc
	} else if scaleName != "" && scaleName != "none" {
		log.Printf("[!] Неизвестный пресет масштаба %q", scaleName)
	}

	if positionName == "random" {
		positionName = movingPositionPresets[r.rand.Intn(len(movingPositionPresets))]
	}
	if pos, ok := positionPresets[positionName]; ok {
		spec.Position = pos
	} else if positionName != "" && positionName != "none" {
		log.Printf("[!] Неизвестный пресет движения %q", positionName)
	}

	spec.Curve = curve.Resolve(curve.Parse(curveName), r.rand)
	return spec
}

// maxSmartOffset caps how far a smart push-in drifts toward the detected
// content, in canvas fractions per axis.
const maxSmartOffset = 0.06

// Smart aims a push-in at the image's dominant high-contrast region, so the
// zoom ends on the content rather than the geometric center. Images without
// a dominant region fall back to shape-based selection.
func (r *Resolver) Smart(img image.Image) Spec {
	rect, ok := focus.Detect(img)
	if !ok {
		return r.Auto(img.Bounds())
	}

	b := img.Bounds()
	cx := (float64(rect.Min.X+rect.Max.X)/2 - float64(b.Min.X)) / float64(b.Dx())
	cy := (float64(rect.Min.Y+rect.Max.Y)/2 - float64(b.Min.Y)) / float64(b.Dy())

	return Spec{
		Scale: [2]float64{1.0, 1.15},
		Position: [2]Offset{
			{},
			{X: clampOffset(0.5 - cx), Y: clampOffset(0.5 - cy)},
		},
		Curve: curve.EaseInOut,
	}
}

func clampOffset(v float64) float64 {
	if v > maxSmartOffset {
		return maxSmartOffset
	}
	if v < -maxSmartOffset {
		return -maxSmartOffset
	}
	return v
}

// Auto picks a preset suited to the image shape: wide frames pan
// horizontally, tall frames vertically, roughly square ones push in.
// The pan direction is drawn from the resolver's random source.
func (r *Resolver) Auto(bounds image.Rectangle) Spec {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	var candidates []string
	switch {
	case h > 0 && w/h > 1.4:
		candidates = []string{"pan-left", "pan-right", "dolly-left", "dolly-right"}
	case w > 0 && h/w > 1.4:
		candidates = []string{"pan-up", "pan-down"}
	default:
		candidates = []string{"push-in", "pull-out", "focus-in"}
	}
	spec := presets[candidates[r.rand.Intn(len(candidates))]]
	spec.Curve = curve.Resolve(spec.Curve, r.rand)
	return spec
}
