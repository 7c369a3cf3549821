package spatial

import (
	"errors"
	"sync"

	"scene-index-service/geom"
	"scene-index-service/models"
	"scene-index-service/quadtree"
)

var ErrSceneNotFound = errors.New("scene is not registered")

// SceneIndex wraps a scene's quadtree with a mutex. The tree itself is
// single-threaded; all shared access goes through this handle.
type SceneIndex struct {
	mu   sync.Mutex
	tree *quadtree.Quadtree
}

// NewSceneIndex builds an empty index over the scene's world boundary.
func NewSceneIndex(world geom.Rect, maxObjects, maxLevels int) *SceneIndex {
	return &SceneIndex{tree: quadtree.New(world, maxObjects, maxLevels)}
}

// Insert adds an object to the index. It returns false when the object's
// bounds do not intersect the world boundary.
func (s *SceneIndex) Insert(obj *models.VectorObject) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Insert(obj)
}

// Query returns the objects whose bounds intersect the viewport.
func (s *SceneIndex) Query(viewport geom.Rect) []*models.VectorObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Query(viewport)
}

// QueryLOD returns the objects visible in the viewport at the given zoom.
func (s *SceneIndex) QueryLOD(viewport geom.Rect, zoom float64) ([]*models.VectorObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.QueryLOD(viewport, zoom)
}

// AllObjects returns every indexed object.
func (s *SceneIndex) AllObjects() []*models.VectorObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.AllObjects()
}

// Clear empties the index, keeping the world boundary and policy.
func (s *SceneIndex) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear()
}

// Boundary returns the scene's world rectangle.
func (s *SceneIndex) Boundary() geom.Rect {
	return s.tree.Boundary()
}

// Stats describes the current shape of a scene's index.
type Stats struct {
	NodeCount   int `json:"node_count"`
	ObjectCount int `json:"object_count"`
}

func (s *SceneIndex) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		NodeCount:   s.tree.NodeCount(),
		ObjectCount: len(s.tree.AllObjects()),
	}
}

var (
	registryMu sync.Mutex
	scenes     = make(map[int64]*SceneIndex)
)

// RegisterScene creates (or replaces) the in-memory index for a scene.
func RegisterScene(sceneID int64, world geom.Rect, maxObjects, maxLevels int) *SceneIndex {
	idx := NewSceneIndex(world, maxObjects, maxLevels)
	registryMu.Lock()
	defer registryMu.Unlock()
	scenes[sceneID] = idx
	return idx
}

// GetScene looks up a scene's index.
func GetScene(sceneID int64) (*SceneIndex, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	idx, ok := scenes[sceneID]
	if !ok {
		return nil, ErrSceneNotFound
	}
	return idx, nil
}

// RemoveScene drops a scene's index from the registry.
func RemoveScene(sceneID int64) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(scenes, sceneID)
}
