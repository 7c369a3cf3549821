package quadtree

import (
	"math/rand"
	"testing"

	"scene-index-service/geom"
	"scene-index-service/models"
)

func randomObjects(rnd *rand.Rand, bounds geom.Rect, count int) []*models.VectorObject {
	objs := make([]*models.VectorObject, 0, count)
	for i := 0; i < count; i++ {
		x := bounds.X + rnd.Float64()*bounds.Width
		y := bounds.Y + rnd.Float64()*bounds.Height
		size := 5 + rnd.Float64()*45
		objs = append(objs, models.NewVectorObject(x, y, size))
	}
	return objs
}

func TestInsertAndAllObjects(t *testing.T) {
	world := geom.Rect{X: -1000, Y: -1000, Width: 2000, Height: 2000}
	qt := New(world, 8, 6)
	rnd := rand.New(rand.NewSource(42))

	objs := randomObjects(rnd, world, 1000)
	for i, obj := range objs {
		if !qt.Insert(obj) {
			t.Fatalf("insert %d rejected an in-bounds object at (%v, %v)", i, obj.X, obj.Y)
		}
	}
	if got := len(qt.AllObjects()); got != len(objs) {
		t.Errorf("AllObjects returned %d objects, want %d", got, len(objs))
	}
}

func TestInsertRejectsDisjointObject(t *testing.T) {
	qt := New(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 4, 4)
	outside := models.NewVectorObject(500, 500, 10)
	if qt.Insert(outside) {
		t.Fatal("object outside the world boundary must be rejected")
	}
	if len(qt.AllObjects()) != 0 {
		t.Error("rejected object must not appear in the tree")
	}
}

func TestInsertSubdividesAtCapacity(t *testing.T) {
	// Boundary (0,0,100,100), capacity 2, depth cap 3. Two zero-size
	// objects stay at the root; the third forces a subdivision and falls
	// entirely into the SE quadrant.
	qt := New(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 2, 3)

	a := models.NewVectorObject(10, 10, 0)
	b := models.NewVectorObject(20, 20, 0)
	c := models.NewVectorObject(80, 80, 0)
	for _, obj := range []*models.VectorObject{a, b, c} {
		if !qt.Insert(obj) {
			t.Fatalf("insert of %v failed", obj)
		}
	}

	if !qt.divided {
		t.Fatal("root must have subdivided on the third insert")
	}
	if qt.NodeCount() != 5 {
		t.Errorf("NodeCount = %d, want 5", qt.NodeCount())
	}
	if len(qt.objects) != 2 {
		t.Errorf("root holds %d objects, want 2", len(qt.objects))
	}
	if len(qt.children[quadSE].objects) != 1 {
		t.Errorf("SE child holds %d objects, want 1", len(qt.children[quadSE].objects))
	}
	for _, idx := range []int{quadNW, quadNE, quadSW} {
		if len(qt.children[idx].objects) != 0 {
			t.Errorf("child %d must be empty", idx)
		}
	}
}

func TestStraddlingObjectStaysAtParent(t *testing.T) {
	qt := New(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 1, 3)
	if !qt.Insert(models.NewVectorObject(10, 10, 0)) {
		t.Fatal("first insert failed")
	}
	// Centered on the midpoint, so it fits in no single quadrant.
	straddler := models.NewVectorObject(50, 50, 20)
	if !qt.Insert(straddler) {
		t.Fatal("straddling insert failed")
	}
	if !qt.divided {
		t.Fatal("root must have subdivided")
	}
	if len(qt.objects) != 2 {
		t.Errorf("root holds %d objects, want 2 (straddler is kept at the split level)", len(qt.objects))
	}
}

func TestDepthCapZero(t *testing.T) {
	world := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	qt := New(world, 2, 0)
	rnd := rand.New(rand.NewSource(7))

	for _, obj := range randomObjects(rnd, world, 50) {
		if !qt.Insert(obj) {
			t.Fatal("depth-capped insert failed")
		}
	}
	if qt.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1 with maxLevels 0", qt.NodeCount())
	}
	if len(qt.objects) != 50 {
		t.Errorf("root holds %d objects, want 50", len(qt.objects))
	}
}

func TestSubdivideTiling(t *testing.T) {
	qt := New(geom.Rect{X: -100, Y: -100, Width: 200, Height: 200}, 4, 4)
	qt.subdivide()

	var area float64
	for i, child := range qt.children {
		b := child.Boundary()
		if b.Width != 100 || b.Height != 100 {
			t.Errorf("child %d has size %vx%v, want 100x100", i, b.Width, b.Height)
		}
		if child.level != 1 {
			t.Errorf("child %d at level %d, want 1", i, child.level)
		}
		area += b.Width * b.Height
		for j := i + 1; j < 4; j++ {
			if b.Intersects(qt.children[j].Boundary()) {
				t.Errorf("children %d and %d overlap", i, j)
			}
		}
	}
	parent := qt.Boundary()
	if area != parent.Width*parent.Height {
		t.Errorf("children cover area %v, want %v", area, parent.Width*parent.Height)
	}
}

func TestQueryViewport(t *testing.T) {
	world := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	qt := New(world, 2, 4)

	inside := models.NewVectorObject(25, 25, 4)
	outside := models.NewVectorObject(75, 75, 4)
	qt.Insert(inside)
	qt.Insert(outside)

	found := qt.Query(geom.Rect{X: 20, Y: 20, Width: 10, Height: 10})
	if len(found) != 1 || found[0] != inside {
		t.Errorf("Query returned %v, want just the object at (25,25)", found)
	}
	if got := qt.Query(geom.Rect{X: 200, Y: 200, Width: 10, Height: 10}); len(got) != 0 {
		t.Errorf("disjoint viewport returned %d objects", len(got))
	}
}

func TestQueryLODSubsetOfQuery(t *testing.T) {
	world := geom.Rect{X: -1000, Y: -1000, Width: 2000, Height: 2000}
	qt := New(world, 8, 6)
	rnd := rand.New(rand.NewSource(3))
	for _, obj := range randomObjects(rnd, world, 500) {
		qt.Insert(obj)
	}

	viewport := geom.Rect{X: -200, Y: -200, Width: 400, Height: 400}
	plain := qt.Query(viewport)
	inPlain := make(map[*models.VectorObject]bool, len(plain))
	for _, obj := range plain {
		inPlain[obj] = true
	}

	for _, zoom := range []float64{0.1, 0.5, 1, 2, 5, 10, 50} {
		lod, err := qt.QueryLOD(viewport, zoom)
		if err != nil {
			t.Fatalf("QueryLOD(zoom=%v): %v", zoom, err)
		}
		for _, obj := range lod {
			if !inPlain[obj] {
				t.Fatalf("QueryLOD(zoom=%v) returned an object Query did not", zoom)
			}
		}
	}
}

func TestQueryLODCullsSmallObjects(t *testing.T) {
	world := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	qt := New(world, 8, 4)

	big := models.NewVectorObject(50, 40, 40)
	tiny := models.NewVectorObject(50, 60, 0.1)
	qt.Insert(big)
	qt.Insert(tiny)

	// At zoom 1 the threshold is max(0.5, 2.0) = 2: the tiny object
	// projects to 0.1 units and is culled.
	found, err := qt.QueryLOD(world, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0] != big {
		t.Errorf("QueryLOD(zoom=1) = %v, want just the large object", found)
	}

	// At zoom 50 the threshold floors at 0.5; 0.1*50 = 5 passes.
	found, err = qt.QueryLOD(world, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Errorf("QueryLOD(zoom=50) returned %d objects, want 2", len(found))
	}
}

func TestQueryLODInvalidZoom(t *testing.T) {
	qt := New(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 4, 4)
	for _, zoom := range []float64{0, -1} {
		if _, err := qt.QueryLOD(qt.Boundary(), zoom); err != ErrInvalidZoom {
			t.Errorf("QueryLOD(zoom=%v) error = %v, want ErrInvalidZoom", zoom, err)
		}
	}
}

func TestShouldTraverseAtZoom(t *testing.T) {
	qt := New(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, 4, 8)

	// floor(log2(1)) + 3 = 3: levels 0..2 traverse, level 3 does not.
	node := &Quadtree{maxLevels: 8}
	for level, want := range map[int]bool{0: true, 2: true, 3: false, 5: false} {
		node.level = level
		if got := node.shouldTraverseAtZoom(1); got != want {
			t.Errorf("level %d at zoom 1: traverse = %v, want %v", level, got, want)
		}
	}

	// The depth bound never exceeds maxLevels.
	qt.level = qt.maxLevels
	if qt.shouldTraverseAtZoom(1 << 20) {
		t.Error("traversal must stop at maxLevels regardless of zoom")
	}
}

func TestShouldTraverseFractionalZoom(t *testing.T) {
	// floor(log2(0.3)) + 3 = 1: only the root traverses. Truncation
	// toward zero would admit level 1 as well.
	node := &Quadtree{maxLevels: 8}
	if !node.shouldTraverseAtZoom(0.3) {
		t.Error("root must traverse at zoom 0.3")
	}
	node.level = 1
	if node.shouldTraverseAtZoom(0.3) {
		t.Error("level 1 must not traverse at zoom 0.3")
	}
}

func TestNodeCountRecurrence(t *testing.T) {
	world := geom.Rect{X: -1000, Y: -1000, Width: 2000, Height: 2000}
	qt := New(world, 4, 6)
	rnd := rand.New(rand.NewSource(9))
	for _, obj := range randomObjects(rnd, world, 300) {
		qt.Insert(obj)
	}

	var walk func(n *Quadtree) int
	walk = func(n *Quadtree) int {
		count := 1
		if n.divided {
			for _, child := range n.children {
				count += walk(child)
			}
		}
		return count
	}
	if got, want := qt.NodeCount(), walk(qt); got != want {
		t.Errorf("NodeCount = %d, want %d", got, want)
	}
}

func TestClear(t *testing.T) {
	world := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	qt := New(world, 2, 4)
	rnd := rand.New(rand.NewSource(11))
	for _, obj := range randomObjects(rnd, world, 30) {
		qt.Insert(obj)
	}
	if qt.NodeCount() == 1 {
		t.Fatal("test expects a subdivided tree")
	}

	qt.Clear()
	if qt.NodeCount() != 1 {
		t.Errorf("NodeCount after Clear = %d, want 1", qt.NodeCount())
	}
	if len(qt.AllObjects()) != 0 {
		t.Error("AllObjects after Clear must be empty")
	}
	if qt.Boundary() != world {
		t.Error("Clear must not alter the boundary")
	}

	// The cleared tree is reusable.
	if !qt.Insert(models.NewVectorObject(50, 50, 5)) {
		t.Error("insert into a cleared tree failed")
	}
}
