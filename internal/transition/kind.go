// Package transition stitches adjacent rendered clips across a shared
// overlap window. Every kind follows the same sampling rule: inside the
// window clip A is read at (A.duration − window + t) and clip B at t, the
// two frames are combined, and past the window B passes through untouched.
package transition

import (
	"log"
	"math/rand"
)

// Kind enumerates the transition effects.
type Kind int

const (
	None Kind = iota
	Crossfade
	SlideLeft
	SlideRight
	SlideTop
	SlideBottom
	ZoomFade
	RotateFade
	Blinds
	WarpDissolve
	Flash
	// Random resolves once per clip boundary, independently of other
	// boundaries.
	Random
)

var kindNames = map[Kind]string{
	None:         "none",
	Crossfade:    "crossfade",
	SlideLeft:    "slide-left",
	SlideRight:   "slide-right",
	SlideTop:     "slide-top",
	SlideBottom:  "slide-bottom",
	ZoomFade:     "zoom-fade",
	RotateFade:   "rotate-fade",
	Blinds:       "blinds",
	WarpDissolve: "warp-dissolve",
	Flash:        "flash",
	Random:       "random",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "crossfade"
}

// Parse maps a transition name to its Kind. Unknown names fall back to
// crossfade with a diagnostic, never an error.
func Parse(name string) Kind {
	switch name {
	case "", "none":
		return None
	case "crossfade", "fade":
		return Crossfade
	case "slide-left":
		return SlideLeft
	case "slide-right":
		return SlideRight
	case "slide-top":
		return SlideTop
	case "slide-bottom":
		return SlideBottom
	case "zoom-fade":
		return ZoomFade
	case "rotate-fade":
		return RotateFade
	case "blinds":
		return Blinds
	case "warp-dissolve":
		return WarpDissolve
	case "flash":
		return Flash
	case "random":
		return Random
	default:
		log.Printf("[!] Неизвестный переход %q, используется crossfade", name)
		return Crossfade
	}
}

// Resolve replaces Random with a concrete kind chosen uniformly from the
// effect set (None excluded). The choice is fixed for the boundary.
func Resolve(k Kind, r *rand.Rand) Kind {
	if k != Random {
		return k
	}
	concrete := []Kind{
		Crossfade, SlideLeft, SlideRight, SlideTop, SlideBottom,
		ZoomFade, RotateFade, Blinds, WarpDissolve, Flash,
	}
	return concrete[r.Intn(len(concrete))]
}
