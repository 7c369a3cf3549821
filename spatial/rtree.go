package spatial

import (
	"github.com/dhconnelly/rtreego"

	"scene-index-service/geom"
	"scene-index-service/models"
)

// rtreego rejects zero-length extents, so degenerate boxes are padded by
// a very small distance.
const degenerateExtent = 0.0001

// rtreeEntry adapts a vector object to the rtreego.Spatial interface.
type rtreeEntry struct {
	obj  *models.VectorObject
	rect rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// RTreeIndex is the R-tree counterpart of SceneIndex, used by the index
// technique comparison.
type RTreeIndex struct {
	tree *rtreego.Rtree
}

func NewRTreeIndex() *RTreeIndex {
	return &RTreeIndex{tree: rtreego.NewTree(2, 25, 50)}
}

func toRTreeRect(r geom.Rect) (rtreego.Rect, error) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = degenerateExtent
	}
	if h <= 0 {
		h = degenerateExtent
	}
	return rtreego.NewRect(rtreego.Point{r.X, r.Y}, []float64{w, h})
}

// Insert adds an object to the R-tree.
func (ix *RTreeIndex) Insert(obj *models.VectorObject) error {
	rect, err := toRTreeRect(obj.Bounds())
	if err != nil {
		return err
	}
	ix.tree.Insert(&rtreeEntry{obj: obj, rect: rect})
	return nil
}

// Search returns the objects whose bounds intersect the viewport.
func (ix *RTreeIndex) Search(viewport geom.Rect) ([]*models.VectorObject, error) {
	rect, err := toRTreeRect(viewport)
	if err != nil {
		return nil, err
	}
	var found []*models.VectorObject
	for _, spatial := range ix.tree.SearchIntersect(rect) {
		found = append(found, spatial.(*rtreeEntry).obj)
	}
	return found, nil
}

// Size returns the number of indexed objects.
func (ix *RTreeIndex) Size() int {
	return ix.tree.Size()
}
