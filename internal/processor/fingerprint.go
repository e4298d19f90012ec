package processor

import (
	"image"
	"math"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/resulttree"
)

const (
	// FingerprintGrid is the number of cells per side of the layout grid.
	FingerprintGrid = 8
	// FingerprintSize is the vector size stored in Qdrant.
	FingerprintSize = FingerprintGrid * FingerprintGrid
)

// Fingerprint summarises where text sits on a page. The page box is cut
// into an 8x8 grid and each cell accumulates the share of its area covered
// by words, weighted by word confidence (a word at confidence 0 counts
// half). The vector is L2-normalised; pages without words map to the
// uniform vector so that cosine distance stays defined.
func Fingerprint(root *resulttree.Node) []float32 {
	vec := make([]float64, FingerprintSize)

	if root != nil {
		page := root.BoundingBox()
		if !page.Empty() {
			cw := float64(page.Dx()) / FingerprintGrid
			ch := float64(page.Dy()) / FingerprintGrid
			for _, w := range root.Find(engine.LevelWord) {
				b := w.BoundingBox().Intersect(page)
				if b.Empty() {
					continue
				}
				weight := 0.5 + w.Confidence()/200
				accumulate(vec, page, b, cw, ch, weight)
			}
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, FingerprintSize)
	if norm == 0 {
		u := float32(1 / math.Sqrt(FingerprintSize))
		for i := range out {
			out[i] = u
		}
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

// accumulate adds the covered fraction of every grid cell b touches
func accumulate(vec []float64, page, b image.Rectangle, cw, ch, weight float64) {
	x0 := float64(b.Min.X - page.Min.X)
	x1 := float64(b.Max.X - page.Min.X)
	y0 := float64(b.Min.Y - page.Min.Y)
	y1 := float64(b.Max.Y - page.Min.Y)

	gx0, gx1 := cellRange(x0, x1, cw)
	gy0, gy1 := cellRange(y0, y1, ch)
	for gy := gy0; gy <= gy1; gy++ {
		oy := overlap(y0, y1, float64(gy)*ch, float64(gy+1)*ch)
		if oy <= 0 {
			continue
		}
		for gx := gx0; gx <= gx1; gx++ {
			ox := overlap(x0, x1, float64(gx)*cw, float64(gx+1)*cw)
			if ox <= 0 {
				continue
			}
			vec[gy*FingerprintGrid+gx] += weight * ox * oy / (cw * ch)
		}
	}
}

func cellRange(lo, hi, size float64) (int, int) {
	first := int(lo / size)
	last := int(math.Ceil(hi/size)) - 1
	if first < 0 {
		first = 0
	}
	if last > FingerprintGrid-1 {
		last = FingerprintGrid - 1
	}
	return first, last
}

func overlap(a0, a1, b0, b1 float64) float64 {
	return math.Min(a1, b1) - math.Max(a0, b0)
}

// Similarity is the cosine similarity of two fingerprints.
func Similarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}
