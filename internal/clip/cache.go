package clip

import (
	"sync"

	"github.com/ivlev/image2video/internal/animation"
)

// Cache memoizes rendered clips by image path. An entry is valid only while
// the animation spec and geometry it was rendered with stay unchanged; any
// difference invalidates it. Clips stored here are owned by the cache and
// released by Clear, not by the render pipeline.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	spec     animation.Spec
	canvasW  int
	canvasH  int
	duration float64
	src      Source
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the previously rendered clip for the image if it was produced
// with the same spec, canvas and duration. A stale entry is evicted and its
// resources released.
func (c *Cache) Get(imagePath string, spec animation.Spec, canvasW, canvasH int, duration float64) (Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[imagePath]
	if !ok {
		return nil, false
	}
	if e.spec != spec || e.canvasW != canvasW || e.canvasH != canvasH || e.duration != duration {
		e.src.Close()
		delete(c.entries, imagePath)
		return nil, false
	}
	return e.src, true
}

// Put stores a rendered clip, replacing and releasing any previous entry
// for the same image.
func (c *Cache) Put(imagePath string, spec animation.Spec, canvasW, canvasH int, duration float64, src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[imagePath]; ok && old.src != src {
		old.src.Close()
	}
	c.entries[imagePath] = cacheEntry{
		spec:     spec,
		canvasW:  canvasW,
		canvasH:  canvasH,
		duration: duration,
		src:      src,
	}
}

// Clear releases every cached clip.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path, e := range c.entries {
		e.src.Close()
		delete(c.entries, path)
	}
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
