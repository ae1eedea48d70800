package geo

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50
	tolerance   = 1e-9
)

// spatialItem wraps an indexed point for the R-tree
type spatialItem struct {
	key   int
	point Point
	rect  *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is an R-tree over points keyed by their insertion position.
// It is not safe for concurrent use.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// Insert adds a point and returns its key
func (idx *Index) Insert(p Point) int {
	key := idx.size
	idx.tree.Insert(&spatialItem{
		key:   key,
		point: p,
		rect:  rtreego.Point{p.Lat, p.Lng}.ToRect(tolerance),
	})
	idx.size++
	return key
}

// Size returns the number of indexed points
func (idx *Index) Size() int {
	return idx.size
}

// Within returns a membership set of the keys of all points inside b
func (idx *Index) Within(b Bounds) (map[int]bool, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bounds: %w", err)
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{b.BottomLeft.Lat, b.BottomLeft.Lng},
		[]float64{b.TopRight.Lat - b.BottomLeft.Lat, b.TopRight.Lng - b.BottomLeft.Lng},
	)
	if err != nil {
		return nil, fmt.Errorf("building search rect: %w", err)
	}

	keys := make(map[int]bool)
	for _, result := range idx.tree.SearchIntersect(rect) {
		item, ok := result.(*spatialItem)
		if !ok {
			continue
		}
		// The tree matches on the padded rect, so confirm against the exact box
		if b.Contains(item.point) {
			keys[item.key] = true
		}
	}
	return keys, nil
}
