package system

import (
	"image"
	"sync"
)

// Кадровые буферы большие (ширина*высота*4 байта), а конвейер создает их
// десятки в секунду. Пул по размерам снижает нагрузку на GC.
type framePool struct {
	mu    sync.RWMutex
	pools map[image.Rectangle]*sync.Pool
}

var frames = &framePool{pools: make(map[image.Rectangle]*sync.Pool)}

// GetImage возвращает *image.RGBA нужного размера из пула. Содержимое
// буфера не обнуляется: вызывающий обязан перезаписать его целиком.
func GetImage(rect image.Rectangle) *image.RGBA {
	return frames.get(rect)
}

// PutImage возвращает буфер в пул. nil игнорируется.
func PutImage(img *image.RGBA) {
	if img == nil {
		return
	}
	frames.put(img)
}

func (p *framePool) get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool := p.pools[rect]
	p.mu.RUnlock()

	if pool == nil {
		p.mu.Lock()
		pool = p.pools[rect]
		if pool == nil {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *framePool) put(img *image.RGBA) {
	p.mu.RLock()
	pool := p.pools[img.Rect]
	p.mu.RUnlock()

	if pool != nil {
		pool.Put(img)
	}
}
