// Package focus locates the visually dominant region of an image so that
// automatic pan-zoom animation can aim at actual content instead of the
// geometric center.
package focus

import (
	"image"
	"math"
)

const (
	// edgeThreshold is the Sobel gradient magnitude treated as an edge.
	edgeThreshold = 30.0
	// minAreaFraction filters out specks: a region must cover at least this
	// share of the image to count as content.
	minAreaFraction = 0.002
	dilateRadius    = 2
	dilatePasses    = 2
)

// Detect returns the bounding rectangle of the largest high-contrast region.
// The second result is false when the image has no region big enough, which
// callers treat as "no dominant content, frame normally".
func Detect(img image.Image) (image.Rectangle, bool) {
	gray := luminance(img)
	w, h := len(gray[0]), len(gray)

	edges := sobel(gray, w, h)
	for i := 0; i < dilatePasses; i++ {
		edges = grow(edges, w, h)
	}

	minArea := int(minAreaFraction * float64(w) * float64(h))
	best, bestArea := image.Rectangle{}, 0
	seen := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !edges[y*w+x] || seen[y*w+x] {
				continue
			}
			r := fill(edges, seen, w, h, x, y)
			if area := r.Dx() * r.Dy(); area >= minArea && area > bestArea {
				best, bestArea = r, area
			}
		}
	}

	if bestArea == 0 {
		return image.Rectangle{}, false
	}
	return best.Add(img.Bounds().Min), true
}

// luminance flattens the image into a row-major brightness grid.
func luminance(img image.Image) [][]float64 {
	b := img.Bounds()
	grid := make([][]float64, b.Dy())
	for y := range grid {
		row := make([]float64, b.Dx())
		for x := range row {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257
		}
		grid[y] = row
	}
	return grid
}

// sobel marks pixels whose gradient magnitude crosses the edge threshold.
func sobel(gray [][]float64, w, h int) []bool {
	edges := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := gray[y-1][x+1] + 2*gray[y][x+1] + gray[y+1][x+1] -
				gray[y-1][x-1] - 2*gray[y][x-1] - gray[y+1][x-1]
			gy := gray[y+1][x-1] + 2*gray[y+1][x] + gray[y+1][x+1] -
				gray[y-1][x-1] - 2*gray[y-1][x] - gray[y-1][x+1]
			if math.Sqrt(gx*gx+gy*gy) > edgeThreshold {
				edges[y*w+x] = true
			}
		}
	}
	return edges
}

// grow dilates the edge mask by one kernel radius, bridging small gaps so
// nearby edges merge into one region.
func grow(mask []bool, w, h int) []bool {
	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for ky := -dilateRadius; ky <= dilateRadius; ky++ {
				for kx := -dilateRadius; kx <= dilateRadius; kx++ {
					nx, ny := x+kx, y+ky
					if nx >= 0 && nx < w && ny >= 0 && ny < h {
						out[ny*w+nx] = true
					}
				}
			}
		}
	}
	return out
}

// fill flood-fills one connected region and returns its bounding rectangle.
func fill(mask, seen []bool, w, h, startX, startY int) image.Rectangle {
	minX, minY, maxX, maxY := startX, startY, startX, startY
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		i := p.Y*w + p.X
		if seen[i] || !mask[i] {
			continue
		}
		seen[i] = true

		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}
