// Package curve provides the easing functions that drive pan-zoom animation
// progress. A curve maps normalized time t in [0,1] to a progress value;
// elastic and bounce intentionally overshoot outside [0,1].
package curve

import (
	"log"
	"math"
	"math/rand"
)

// Kind identifies one easing function.
type Kind int

const (
	Linear Kind = iota
	EaseIn
	EaseInStrong
	EaseInQuint
	EaseOut
	EaseOutStrong
	EaseOutQuint
	EaseInOut
	Elastic
	Bounce
	// Random is resolved once per animation into a concrete kind, never
	// re-sampled per frame.
	Random
)

var names = map[Kind]string{
	Linear:        "linear",
	EaseIn:        "ease-in",
	EaseInStrong:  "ease-in-strong",
	EaseInQuint:   "ease-in-quint",
	EaseOut:       "ease-out",
	EaseOutStrong: "ease-out-strong",
	EaseOutQuint:  "ease-out-quint",
	EaseInOut:     "ease-in-out",
	Elastic:       "elastic",
	Bounce:        "bounce",
	Random:        "random",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "linear"
}

// Parse maps a curve name to its Kind. Unknown names fall back to linear
// with a diagnostic; parsing never fails.
func Parse(name string) Kind {
	switch name {
	case "", "linear":
		return Linear
	case "ease-in":
		return EaseIn
	case "ease-in-strong":
		return EaseInStrong
	case "ease-in-quint":
		return EaseInQuint
	case "ease-out":
		return EaseOut
	case "ease-out-strong":
		return EaseOutStrong
	case "ease-out-quint":
		return EaseOutQuint
	case "ease-in-out":
		return EaseInOut
	case "elastic":
		return Elastic
	case "bounce":
		return Bounce
	case "random":
		return Random
	default:
		log.Printf("[!] Неизвестная кривая %q, используется linear", name)
		return Linear
	}
}

// Resolve replaces Random with a concrete kind drawn uniformly from the
// enumerated set (excluding Random itself). Concrete kinds pass through.
func Resolve(k Kind, r *rand.Rand) Kind {
	if k != Random {
		return k
	}
	concrete := []Kind{
		Linear, EaseIn, EaseInStrong, EaseInQuint,
		EaseOut, EaseOutStrong, EaseOutQuint,
		EaseInOut, Elastic, Bounce,
	}
	return concrete[r.Intn(len(concrete))]
}

// Value evaluates the curve at t. Callers pass t already clamped to [0,1];
// Random must be resolved beforehand and evaluates as linear here.
func (k Kind) Value(t float64) float64 {
	switch k {
	case EaseIn:
		return t * t * t
	case EaseInStrong:
		return t * t * t * t
	case EaseInQuint:
		return t * t * t * t * t
	case EaseOut:
		inv := 1 - t
		return 1 - inv*inv*inv
	case EaseOutStrong:
		inv := 1 - t
		return 1 - inv*inv*inv*inv
	case EaseOutQuint:
		inv := 1 - t
		return 1 - inv*inv*inv*inv*inv
	case EaseInOut:
		return 0.5 * (1 - math.Cos(t*math.Pi))
	case Elastic:
		return 0.8*(-math.Cos(t*math.Pi*2)*math.Exp(-t*3)) + t
	case Bounce:
		if t < 0.5 {
			return 2 * t * t
		}
		v := -2*t + 2
		return 1 - v*v/2
	default:
		// Linear, Random и всё прочее
		return t
	}
}
