package engine

import (
	"image"

	"github.com/ivlev/image2video/internal/clip"
)

// timeline is the concatenated visual track: an ordered list of frame
// sources with absolute start times. Transitions are already baked into the
// sources, so entry i simply takes over at its start time; the blended
// source replays clip (i-1)'s tail inside its own overlap window.
type timeline struct {
	entries []timelineEntry
	total   float64
}

type timelineEntry struct {
	src   clip.Source
	start float64
}

// newTimeline lays the sources out back to back, overlapping each boundary
// by its transition window: start(i) = start(i-1) + dur(i-1) − fade(i).
func newTimeline(sources []clip.Source, fades []float64) *timeline {
	tl := &timeline{}
	start := 0.0
	for i, src := range sources {
		if i > 0 {
			start -= fades[i-1]
		}
		tl.entries = append(tl.entries, timelineEntry{src: src, start: start})
		start += src.Duration()
	}
	tl.total = start
	return tl
}

// append adds a source at the current end of the track.
func (tl *timeline) append(src clip.Source) {
	tl.entries = append(tl.entries, timelineEntry{src: src, start: tl.total})
	tl.total += src.Duration()
}

// frameAt samples the frame for an absolute stream time. Pure: any frame
// may be computed in any order, on any goroutine.
func (tl *timeline) frameAt(t float64) *image.RGBA {
	active := tl.entries[0]
	for _, e := range tl.entries[1:] {
		if e.start <= t {
			active = e
		} else {
			break
		}
	}
	return active.src.FrameAt(t - active.start)
}
