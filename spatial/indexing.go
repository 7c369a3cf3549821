package spatial

import (
	"fmt"
	"time"

	"scene-index-service/geom"
	"scene-index-service/models"
	"scene-index-service/quadtree"
)

// IndexTechnique selects a spatial indexing structure.
type IndexTechnique string

const (
	QuadtreeTechnique IndexTechnique = "quadtree"
	RTreeTechnique    IndexTechnique = "rtree"
)

// BenchmarkResult reports build and query timings for one technique.
type BenchmarkResult struct {
	Technique  IndexTechnique `json:"technique"`
	BuildMs    float64        `json:"build_ms"`
	QueryMs    float64        `json:"query_ms"`
	Iterations int            `json:"iterations"`
	Matches    int            `json:"matches"`
}

// CompareTechniques loads the same objects into a quadtree and an R-tree
// and times repeated viewport queries against both.
func CompareTechniques(objects []*models.VectorObject, world, viewport geom.Rect,
	maxObjects, maxLevels, iterations int) ([]BenchmarkResult, error) {

	if iterations <= 0 {
		iterations = 1
	}
	results := make([]BenchmarkResult, 0, 2)

	start := time.Now()
	qt := quadtree.New(world, maxObjects, maxLevels)
	for _, obj := range objects {
		qt.Insert(obj)
	}
	buildQt := time.Since(start)

	var matches int
	start = time.Now()
	for i := 0; i < iterations; i++ {
		matches = len(qt.Query(viewport))
	}
	results = append(results, BenchmarkResult{
		Technique:  QuadtreeTechnique,
		BuildMs:    float64(buildQt.Microseconds()) / 1000,
		QueryMs:    float64(time.Since(start).Microseconds()) / 1000,
		Iterations: iterations,
		Matches:    matches,
	})

	start = time.Now()
	rt := NewRTreeIndex()
	for _, obj := range objects {
		if err := rt.Insert(obj); err != nil {
			return nil, fmt.Errorf("rtree insert: %v", err)
		}
	}
	buildRt := time.Since(start)

	start = time.Now()
	for i := 0; i < iterations; i++ {
		found, err := rt.Search(viewport)
		if err != nil {
			return nil, fmt.Errorf("rtree search: %v", err)
		}
		matches = len(found)
	}
	results = append(results, BenchmarkResult{
		Technique:  RTreeTechnique,
		BuildMs:    float64(buildRt.Microseconds()) / 1000,
		QueryMs:    float64(time.Since(start).Microseconds()) / 1000,
		Iterations: iterations,
		Matches:    matches,
	})

	return results, nil
}
