package quadtree

import (
	"math/rand"
	"testing"

	"scene-index-service/geom"
)

var benchWorld = geom.Rect{X: -1000, Y: -1000, Width: 2000, Height: 2000}

func benchTree(n int) *Quadtree {
	qt := New(benchWorld, DefaultMaxObjects, 6)
	rnd := rand.New(rand.NewSource(1))
	for _, obj := range randomObjects(rnd, benchWorld, n) {
		qt.Insert(obj)
	}
	return qt
}

func BenchmarkInsert(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	objs := randomObjects(rnd, benchWorld, b.N)
	qt := New(benchWorld, DefaultMaxObjects, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qt.Insert(objs[i])
	}
}

func BenchmarkQuery(b *testing.B) {
	qt := benchTree(10000)
	rnd := rand.New(rand.NewSource(2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		viewport := geom.Rect{
			X:      benchWorld.X + rnd.Float64()*benchWorld.Width,
			Y:      benchWorld.Y + rnd.Float64()*benchWorld.Height,
			Width:  100,
			Height: 100,
		}
		qt.Query(viewport)
	}
}

func BenchmarkQueryLOD(b *testing.B) {
	qt := benchTree(10000)
	zooms := []float64{0.1, 0.5, 1, 2, 5, 10, 50}
	viewport := geom.Rect{X: -50, Y: -50, Width: 100, Height: 100}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := qt.QueryLOD(viewport, zooms[i%len(zooms)]); err != nil {
			b.Fatal(err)
		}
	}
}
