// segmenter.go - Isolates the receipt region within a photographed image

package processor

import (
	"image"

	"github.com/disintegration/imaging"
)

// SegmenterConfig controls the receipt isolation pass.
type SegmenterConfig struct {
	// WorkHeight is the height the image is downscaled to before analysis.
	// Downscaling suppresses fine background texture (granite, wood grain).
	WorkHeight int
	// MinAreaFrac is the minimum area of the largest bright region, as a
	// fraction of the working image, for the region to count as the receipt.
	MinAreaFrac float64
	// BlurSigma is the smoothing strength applied before thresholding.
	BlurSigma float64
}

// DefaultSegmenterConfig returns the tuned defaults.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		WorkHeight:  500,
		MinAreaFrac: 0.10,
		BlurSigma:   5.0,
	}
}

// SegmentResult carries the prepared image and whether a receipt region was
// actually isolated, so callers can measure fallback frequency.
type SegmentResult struct {
	Image     image.Image
	Segmented bool
}

// Segmenter locates and crops the receipt within a photo.
type Segmenter struct {
	cfg SegmenterConfig
}

// NewSegmenter creates a Segmenter, filling zero config fields with defaults.
func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	def := DefaultSegmenterConfig()
	if cfg.WorkHeight <= 0 {
		cfg.WorkHeight = def.WorkHeight
	}
	if cfg.MinAreaFrac <= 0 {
		cfg.MinAreaFrac = def.MinAreaFrac
	}
	if cfg.BlurSigma <= 0 {
		cfg.BlurSigma = def.BlurSigma
	}
	return &Segmenter{cfg: cfg}
}

// Segment isolates the receipt in src. The paper is a large, comparatively
// uniform bright blob while patterned backgrounds are high-frequency texture,
// so aggressive blur plus a global threshold isolates it without deskewing.
// When no region clears the area floor the original image is returned
// unmodified; this method never fails.
func (s *Segmenter) Segment(src image.Image) SegmentResult {
	if src == nil || src.Bounds().Empty() {
		return SegmentResult{Image: src, Segmented: false}
	}

	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()

	work := imaging.Clone(src)
	scale := 1.0
	if srcH > s.cfg.WorkHeight {
		work = imaging.Resize(src, 0, s.cfg.WorkHeight, imaging.Lanczos)
		scale = float64(srcH) / float64(work.Bounds().Dy())
	}

	gray := imaging.Grayscale(work)
	blurred := imaging.Blur(gray, s.cfg.BlurSigma)

	w := blurred.Bounds().Dx()
	h := blurred.Bounds().Dy()
	lum := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < w; x++ {
			// Grayscale image: R, G and B are equal.
			lum[y*w+x] = row[x*4]
		}
	}

	threshold := otsuThreshold(lum)
	region, ok := largestBrightRegion(lum, w, h, threshold)
	if !ok || float64(region.area) < s.cfg.MinAreaFrac*float64(w*h) {
		return SegmentResult{Image: src, Segmented: false}
	}

	// Rescale the bounding box to the original resolution.
	rect := image.Rect(
		clamp(int(float64(region.minX)*scale), 0, srcW),
		clamp(int(float64(region.minY)*scale), 0, srcH),
		clamp(int(float64(region.maxX+1)*scale), 0, srcW),
		clamp(int(float64(region.maxY+1)*scale), 0, srcH),
	)
	if rect.Empty() {
		return SegmentResult{Image: src, Segmented: false}
	}

	crop := imaging.Crop(src, rect.Add(src.Bounds().Min))
	out := imaging.AdjustContrast(crop, 20)
	out = imaging.Sharpen(out, 1.5)

	return SegmentResult{Image: out, Segmented: true}
}

// otsuThreshold computes the global binarization threshold that maximizes
// between-class variance of the bimodal intensity histogram.
func otsuThreshold(lum []uint8) uint8 {
	var hist [256]int
	for _, v := range lum {
		hist[v]++
	}

	total := len(lum)
	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	best := 0.0
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

type region struct {
	area                   int
	minX, minY, maxX, maxY int
}

// largestBrightRegion finds the biggest 4-connected component of pixels above
// the threshold. The bright class is assumed to be the paper.
func largestBrightRegion(lum []uint8, w, h int, threshold uint8) (region, bool) {
	visited := make([]bool, w*h)
	stack := make([]int, 0, 1024)
	var best region
	found := false

	for start := 0; start < w*h; start++ {
		if visited[start] || lum[start] <= threshold {
			continue
		}

		cur := region{minX: w, minY: h, maxX: -1, maxY: -1}
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := idx%w, idx/w
			cur.area++
			if x < cur.minX {
				cur.minX = x
			}
			if x > cur.maxX {
				cur.maxX = x
			}
			if y < cur.minY {
				cur.minY = y
			}
			if y > cur.maxY {
				cur.maxY = y
			}

			if x > 0 && !visited[idx-1] && lum[idx-1] > threshold {
				visited[idx-1] = true
				stack = append(stack, idx-1)
			}
			if x < w-1 && !visited[idx+1] && lum[idx+1] > threshold {
				visited[idx+1] = true
				stack = append(stack, idx+1)
			}
			if y > 0 && !visited[idx-w] && lum[idx-w] > threshold {
				visited[idx-w] = true
				stack = append(stack, idx-w)
			}
			if y < h-1 && !visited[idx+w] && lum[idx+w] > threshold {
				visited[idx+w] = true
				stack = append(stack, idx+w)
			}
		}

		if cur.area > best.area {
			best = cur
			found = true
		}
	}
	return best, found
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
