package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/alnah/go-html2pptx/internal/slide"
)

const snapshotPermissions = 0o600

type snapshotKey struct {
	slide int
	role  slide.Role
}

// snapshotStore writes raster snapshots into one task's temp directory.
// Names are unique per (slide index, role, occurrence).
type snapshotStore struct {
	dir    string
	counts map[snapshotKey]int
}

func newSnapshotStore(dir string) *snapshotStore {
	return &snapshotStore{dir: dir, counts: make(map[snapshotKey]int)}
}

// SnapshotName returns the file name for the n-th snapshot of a role.
func SnapshotName(slideIndex int, role slide.Role, n int) string {
	return fmt.Sprintf("slide_%d_%s_%d.png", slideIndex, role, n)
}

// save writes data and returns its path.
func (s *snapshotStore) save(slideIndex int, role slide.Role, data []byte) (string, error) {
	key := snapshotKey{slide: slideIndex, role: role}
	n := s.counts[key]
	s.counts[key] = n + 1

	path := filepath.Join(s.dir, SnapshotName(slideIndex, role, n))
	if err := os.WriteFile(path, data, snapshotPermissions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	return path, nil
}

// maxGlyphSide bounds the longer side of a captured glyph. The glyph clone
// is rendered enlarged, so big icons would otherwise embed oversized PNGs.
const maxGlyphSide = 512

// fitGlyph crops a PNG to the bounding box of its non-transparent pixels and
// downscales the result so neither side exceeds maxSide (0 disables the
// bound). Fully transparent or undecodable images are returned unchanged.
func fitGlyph(data []byte, maxSide int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}

	box := opaqueBounds(src)
	if box.Empty() {
		return data, nil
	}
	size := fitWithin(box.Size(), maxSide)
	if box == src.Bounds() && size == box.Size() {
		return data, nil
	}

	dst := image.NewNRGBA(image.Rectangle{Max: size})
	if size == box.Size() {
		draw.Copy(dst, image.Point{}, src, box, draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, box, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding glyph snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales size down, keeping its aspect ratio, until both sides fit
// in maxSide.
func fitWithin(size image.Point, maxSide int) image.Point {
	if maxSide <= 0 || (size.X <= maxSide && size.Y <= maxSide) {
		return size
	}
	if size.X >= size.Y {
		h := int(math.Round(float64(size.Y) * float64(maxSide) / float64(size.X)))
		return image.Pt(maxSide, max(h, 1))
	}
	w := int(math.Round(float64(size.X) * float64(maxSide) / float64(size.Y)))
	return image.Pt(max(w, 1), maxSide)
}

// opaqueBounds returns the smallest rectangle holding every pixel with a
// non-zero alpha.
func opaqueBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
