package generator

import (
	"math"
	"math/rand"

	"scene-index-service/geom"
	"scene-index-service/models"
)

// Size range for randomly scattered objects, in world units.
const (
	minRandomSize = 5
	maxRandomSize = 50
)

// Fractal recursion stops once branches shrink below one world unit.
const (
	fractalBranches = 4
	fractalShrink   = 2.5
	minFractalSize  = 1.0
	DefaultMaxDepth = 6
)

// RandomObjects scatters count objects uniformly over bounds with sizes
// in [minRandomSize, maxRandomSize).
func RandomObjects(rnd *rand.Rand, bounds geom.Rect, count int) []*models.VectorObject {
	objects := make([]*models.VectorObject, 0, count)
	for i := 0; i < count; i++ {
		x := bounds.X + rnd.Float64()*bounds.Width
		y := bounds.Y + rnd.Float64()*bounds.Height
		size := minRandomSize + rnd.Float64()*(maxRandomSize-minRandomSize)
		objects = append(objects, models.NewVectorObject(x, y, size))
	}
	return objects
}

// FractalObjects grows a recursive pattern around (x, y): each object
// spawns four branches at compass angles, shrunk by fractalShrink per
// level. Deeper objects get a raised MinZoom so they only resolve once
// the viewer zooms in far enough.
func FractalObjects(x, y, size float64, maxDepth int) []*models.VectorObject {
	var objects []*models.VectorObject
	growFractal(&objects, x, y, size, 0, maxDepth)
	return objects
}

func growFractal(objects *[]*models.VectorObject, x, y, size float64, depth, maxDepth int) {
	if depth > maxDepth || size < minFractalSize {
		return
	}

	obj := models.NewVectorObject(x, y, size)
	if depth > 1 {
		obj.MinZoom = math.Pow(2, float64(depth-1))
	}
	*objects = append(*objects, obj)

	for i := 0; i < fractalBranches; i++ {
		angle := float64(i) / fractalBranches * 2 * math.Pi
		branchX := x + math.Cos(angle)*size
		branchY := y + math.Sin(angle)*size
		growFractal(objects, branchX, branchY, size/fractalShrink, depth+1, maxDepth)
	}
}
