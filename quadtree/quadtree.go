package quadtree

import (
	"errors"
	"math"

	"scene-index-service/geom"
	"scene-index-service/models"
)

// Defaults applied by New when a caller passes a non-positive value.
const (
	DefaultMaxObjects = 10
	DefaultMaxLevels  = 5
)

// Tuning knobs for the LOD heuristics. The threshold floor/scale and the
// depth offset are empirical values, not invariants.
const (
	lodThresholdFloor = 0.5
	lodThresholdScale = 2.0
	lodDepthOffset    = 3
)

// ErrInvalidZoom is returned by QueryLOD for a non-positive zoom; the
// depth bound takes a logarithm of the zoom factor.
var ErrInvalidZoom = errors.New("quadtree: zoom must be positive")

// Child quadrant indexes.
const (
	quadNW = iota
	quadNE
	quadSW
	quadSE
	quadNone = -1
)

// Quadtree is a node of a recursive spatial partition. The root covers
// the world boundary; each subdivision splits a node into four equal
// quadrants. Objects whose bounds straddle a split line stay at the
// splitting node. Not safe for concurrent use without external locking.
type Quadtree struct {
	boundary   geom.Rect
	maxObjects int
	maxLevels  int
	level      int
	objects    []*models.VectorObject
	children   [4]*Quadtree
	divided    bool
}

// New creates a root node over the given world boundary. A non-positive
// maxObjects or a negative maxLevels selects the default; maxLevels of
// zero is valid and pins the whole tree to the root.
func New(boundary geom.Rect, maxObjects, maxLevels int) *Quadtree {
	if maxObjects <= 0 {
		maxObjects = DefaultMaxObjects
	}
	if maxLevels < 0 {
		maxLevels = DefaultMaxLevels
	}
	return &Quadtree{
		boundary:   boundary,
		maxObjects: maxObjects,
		maxLevels:  maxLevels,
	}
}

func newChild(boundary geom.Rect, maxObjects, maxLevels, level int) *Quadtree {
	return &Quadtree{
		boundary:   boundary,
		maxObjects: maxObjects,
		maxLevels:  maxLevels,
		level:      level,
	}
}

// Boundary returns the rectangle this node is responsible for.
func (qt *Quadtree) Boundary() geom.Rect {
	return qt.boundary
}

// subdivide splits the node into four equal quadrants (NW, NE, SW, SE).
// Callers must gate on !qt.divided; a second call would discard the
// existing children.
func (qt *Quadtree) subdivide() {
	x, y := qt.boundary.X, qt.boundary.Y
	w, h := qt.boundary.Width/2, qt.boundary.Height/2

	qt.children[quadNW] = newChild(geom.Rect{X: x, Y: y, Width: w, Height: h}, qt.maxObjects, qt.maxLevels, qt.level+1)
	qt.children[quadNE] = newChild(geom.Rect{X: x + w, Y: y, Width: w, Height: h}, qt.maxObjects, qt.maxLevels, qt.level+1)
	qt.children[quadSW] = newChild(geom.Rect{X: x, Y: y + h, Width: w, Height: h}, qt.maxObjects, qt.maxLevels, qt.level+1)
	qt.children[quadSE] = newChild(geom.Rect{X: x + w, Y: y + h, Width: w, Height: h}, qt.maxObjects, qt.maxLevels, qt.level+1)
	qt.divided = true
}

// childIndexFor returns the quadrant that fully contains bounds, or
// quadNone when the node is undivided or bounds straddle a midpoint.
// Strict containment: overlapping a quadrant is not enough.
func (qt *Quadtree) childIndexFor(bounds geom.Rect) int {
	if !qt.divided {
		return quadNone
	}

	verticalMid := qt.boundary.X + qt.boundary.Width/2
	horizontalMid := qt.boundary.Y + qt.boundary.Height/2

	top := bounds.Y < horizontalMid && bounds.Y+bounds.Height < horizontalMid
	bottom := bounds.Y > horizontalMid

	if bounds.X < verticalMid && bounds.X+bounds.Width < verticalMid {
		if top {
			return quadNW
		}
		if bottom {
			return quadSW
		}
	} else if bounds.X > verticalMid {
		if top {
			return quadNE
		}
		if bottom {
			return quadSE
		}
	}
	return quadNone
}

// Insert places obj in the deepest node that can hold it. It returns
// false only when the object's bounds do not intersect this subtree's
// boundary; every other input is guaranteed placement.
func (qt *Quadtree) Insert(obj *models.VectorObject) bool {
	if !qt.boundary.Intersects(obj.Bounds()) {
		return false
	}

	// Below capacity, or the depth cap forces acceptance here.
	if len(qt.objects) < qt.maxObjects || qt.level >= qt.maxLevels {
		qt.objects = append(qt.objects, obj)
		return true
	}

	if !qt.divided {
		qt.subdivide()
	}

	if idx := qt.childIndexFor(obj.Bounds()); idx != quadNone {
		return qt.children[idx].Insert(obj)
	}

	// Straddles a split line; this node is the catch-all.
	qt.objects = append(qt.objects, obj)
	return true
}

// Query returns all objects whose bounding box intersects rng. Order is
// unspecified; results contain no duplicates.
func (qt *Quadtree) Query(rng geom.Rect) []*models.VectorObject {
	var found []*models.VectorObject

	if !qt.boundary.Intersects(rng) {
		return found
	}

	for _, obj := range qt.objects {
		if rng.Intersects(obj.Bounds()) {
			found = append(found, obj)
		}
	}

	if qt.divided {
		for _, child := range qt.children {
			found = append(found, child.Query(rng)...)
		}
	}

	return found
}

// QueryLOD returns the subset of Query(rng) that is visible at the given
// zoom factor: objects below the projected-size threshold are culled, and
// subtrees deeper than the zoom warrants are not traversed at all.
func (qt *Quadtree) QueryLOD(rng geom.Rect, zoom float64) ([]*models.VectorObject, error) {
	if zoom <= 0 {
		return nil, ErrInvalidZoom
	}
	threshold := math.Max(lodThresholdFloor, lodThresholdScale/zoom)
	return qt.queryLOD(rng, zoom, threshold), nil
}

func (qt *Quadtree) queryLOD(rng geom.Rect, zoom, threshold float64) []*models.VectorObject {
	var found []*models.VectorObject

	if !qt.boundary.Intersects(rng) {
		return found
	}

	for _, obj := range qt.objects {
		if rng.Intersects(obj.Bounds()) && obj.ShouldRenderAtZoom(zoom, threshold) {
			found = append(found, obj)
		}
	}

	if qt.divided && qt.shouldTraverseAtZoom(zoom) {
		for _, child := range qt.children {
			found = append(found, child.queryLOD(rng, zoom, threshold)...)
		}
	}

	return found
}

// shouldTraverseAtZoom gates recursion into children: low zoom factors
// only warrant visiting shallow nodes, higher zoom factors progressively
// deeper ones. The log2 bound is floored, so fractional zooms below 1
// gate one level shallower than truncation toward zero would. Callers
// must have validated zoom > 0.
func (qt *Quadtree) shouldTraverseAtZoom(zoom float64) bool {
	maxDepthAtZoom := math.Min(float64(qt.maxLevels), math.Floor(math.Log2(zoom))+lodDepthOffset)
	return float64(qt.level) < maxDepthAtZoom
}

// NodeCount returns the total number of nodes in this subtree.
func (qt *Quadtree) NodeCount() int {
	count := 1
	if qt.divided {
		for _, child := range qt.children {
			count += child.NodeCount()
		}
	}
	return count
}

// AllObjects returns every object in this subtree. Each object lives in
// exactly one node, so no deduplication is needed.
func (qt *Quadtree) AllObjects() []*models.VectorObject {
	all := make([]*models.VectorObject, len(qt.objects))
	copy(all, qt.objects)
	if qt.divided {
		for _, child := range qt.children {
			all = append(all, child.AllObjects()...)
		}
	}
	return all
}

// Clear discards this node's objects and its entire child subtree,
// returning the node to an undivided, empty state. The boundary,
// capacity, depth cap and level are unchanged.
func (qt *Quadtree) Clear() {
	qt.objects = nil
	qt.children = [4]*Quadtree{}
	qt.divided = false
}
