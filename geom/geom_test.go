package geom

import (
	"math/rand"
	"testing"
)

func TestContainsHalfOpen(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	if !r.Contains(Point{0, 0}) {
		t.Error("origin corner must be contained")
	}
	if !r.Contains(Point{9.999, 9.999}) {
		t.Error("point just inside far corner must be contained")
	}
	if r.Contains(Point{10, 0}) {
		t.Error("point on right edge must not be contained")
	}
	if r.Contains(Point{0, 10}) {
		t.Error("point on bottom edge must not be contained")
	}
}

func TestIntersectsEdgeTouching(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{10, 0, 5, 5}
	if a.Intersects(b) || b.Intersects(a) {
		t.Error("edge-touching rectangles must not intersect")
	}
	c := Rect{9.999, 0, 5, 5}
	if !a.Intersects(c) {
		t.Error("overlapping rectangles must intersect")
	}
}

func TestIntersectsSymmetric(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := Rect{rnd.Float64() * 100, rnd.Float64() * 100, rnd.Float64() * 50, rnd.Float64() * 50}
		b := Rect{rnd.Float64() * 100, rnd.Float64() * 100, rnd.Float64() * 50, rnd.Float64() * 50}
		if a.Intersects(b) != b.Intersects(a) {
			t.Fatalf("Intersects not symmetric for %v and %v", a, b)
		}
	}
}

func TestIntersectsDegenerateQuery(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	if !a.Intersects(Rect{5, 5, 0, 0}) {
		t.Error("zero-sized rectangle inside must intersect")
	}
	if a.Intersects(Rect{0, 5, 0, 0}) {
		t.Error("zero-sized rectangle on the near edge must not intersect")
	}
}
