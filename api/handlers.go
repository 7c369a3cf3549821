package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"scene-index-service/cache"
	"scene-index-service/config"
	"scene-index-service/database"
	"scene-index-service/generator"
	"scene-index-service/geom"
	"scene-index-service/models"
	"scene-index-service/quadtree"
	"scene-index-service/spatial"
)

var errInvalidViewport = errors.New("viewport requires x, y, width and height query parameters")

// CreateScene registers a new scene: a catalog row plus an empty
// in-memory index over the scene's world boundary.
func CreateScene(w http.ResponseWriter, r *http.Request) {
	var scene models.Scene
	err := json.NewDecoder(r.Body).Decode(&scene)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if scene.Width <= 0 || scene.Height <= 0 {
		http.Error(w, "Scene width and height must be positive", http.StatusBadRequest)
		return
	}

	// Fall back to the configured index policy
	if scene.MaxObjects <= 0 {
		scene.MaxObjects = config.Cfg.Index.MaxObjects
	}
	if scene.MaxLevels <= 0 {
		scene.MaxLevels = config.Cfg.Index.MaxLevels
	}

	err = database.DB.QueryRow(
		`INSERT INTO scenes (name, x, y, width, height, max_objects, max_levels)
         VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		scene.Name, scene.X, scene.Y, scene.Width, scene.Height, scene.MaxObjects, scene.MaxLevels,
	).Scan(&scene.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && strings.Contains(pgErr.Message, "duplicate key") {
			http.Error(w, "Scene already exists", http.StatusConflict)
		} else {
			http.Error(w, "Failed to create scene", http.StatusInternalServerError)
		}
		return
	}

	spatial.RegisterScene(scene.ID, scene.World(), scene.MaxObjects, scene.MaxLevels)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scene)
}

// GetScene returns a scene's catalog row together with its index stats.
func GetScene(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	scene, err := loadScene(sceneID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Scene not found", http.StatusNotFound)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene index not loaded", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"scene": scene,
		"stats": idx.Stats(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// CreateObject inserts a single object into a scene. An object whose
// bounds never intersect the scene boundary is rejected with 400; that
// is the insert contract, not a server fault.
func CreateObject(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene not found", http.StatusNotFound)
		return
	}

	var obj models.VectorObject
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if obj.MinZoom == 0 {
		obj.MinZoom = models.DefaultMinZoom
	}
	if obj.MaxZoom == 0 {
		obj.MaxZoom = models.DefaultMaxZoom
	}

	if !idx.Boundary().Intersects(obj.Bounds()) {
		http.Error(w, "Object bounds do not intersect the scene boundary", http.StatusBadRequest)
		return
	}

	err = database.DB.QueryRow(
		`INSERT INTO scene_objects (scene_id, x, y, size, min_zoom, max_zoom)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		sceneID, obj.X, obj.Y, obj.Size, obj.MinZoom, obj.MaxZoom,
	).Scan(&obj.ID)
	if err != nil {
		http.Error(w, "Failed to store object", http.StatusInternalServerError)
		return
	}

	idx.Insert(&obj)
	cache.BumpSceneRevision(context.Background(), sceneID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(obj)
}

// GenerateObjects populates a scene with a random scatter or a fractal
// pattern.
func GenerateObjects(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene not found", http.StatusNotFound)
		return
	}

	var request struct {
		Pattern  string  `json:"pattern"` // "random" or "fractal"
		Count    int     `json:"count"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		Size     float64 `json:"size"`
		MaxDepth int     `json:"max_depth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	world := idx.Boundary()
	var objects []*models.VectorObject
	switch request.Pattern {
	case "random":
		if request.Count <= 0 {
			http.Error(w, "Count must be positive for random generation", http.StatusBadRequest)
			return
		}
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		objects = generator.RandomObjects(rnd, world, request.Count)
	case "fractal":
		if request.Size <= 0 {
			request.Size = 50
		}
		if request.MaxDepth <= 0 {
			request.MaxDepth = generator.DefaultMaxDepth
		}
		objects = generator.FractalObjects(request.X, request.Y, request.Size, request.MaxDepth)
	default:
		http.Error(w, "Unsupported pattern", http.StatusBadRequest)
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		http.Error(w, "Failed to store objects", http.StatusInternalServerError)
		return
	}

	inserted, rejected := 0, 0
	kept := make([]*models.VectorObject, 0, len(objects))
	for _, obj := range objects {
		// Fractal branches can wander outside the world; skip them the
		// same way a direct insert would reject them.
		if !world.Intersects(obj.Bounds()) {
			rejected++
			continue
		}
		err = tx.QueryRow(
			`INSERT INTO scene_objects (scene_id, x, y, size, min_zoom, max_zoom)
             VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			sceneID, obj.X, obj.Y, obj.Size, obj.MinZoom, obj.MaxZoom,
		).Scan(&obj.ID)
		if err != nil {
			tx.Rollback()
			http.Error(w, "Failed to store objects", http.StatusInternalServerError)
			return
		}
		kept = append(kept, obj)
		inserted++
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, "Failed to store objects", http.StatusInternalServerError)
		return
	}

	// The index mutates only after the batch commits; the revision bump
	// follows immediately so cached viewports cannot outlive it.
	for _, obj := range kept {
		idx.Insert(obj)
	}
	cache.BumpSceneRevision(context.Background(), sceneID)

	response := map[string]int{"inserted": inserted, "rejected": rejected}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// QueryViewport returns all objects intersecting the viewport rectangle.
func QueryViewport(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene not found", http.StatusNotFound)
		return
	}

	viewport, err := viewportFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	objects := idx.Query(viewport)
	response := map[string]interface{}{
		"count":   len(objects),
		"objects": objects,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// QueryViewportLOD returns the objects visible in the viewport at the
// given zoom factor, serving repeated queries from the Redis cache.
func QueryViewportLOD(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene not found", http.StatusNotFound)
		return
	}

	viewport, err := viewportFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	zoom, err := strconv.ParseFloat(r.URL.Query().Get("zoom"), 64)
	if err != nil {
		http.Error(w, "Invalid zoom parameter", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	revision := cache.SceneRevision(ctx, sceneID)
	key := cache.ViewportKey(sceneID, revision, viewport.X, viewport.Y, viewport.Width, viewport.Height, zoom)

	objects, hit := cache.GetViewport(ctx, key)
	if !hit {
		objects, err = idx.QueryLOD(viewport, zoom)
		if err == quadtree.ErrInvalidZoom {
			http.Error(w, "Zoom must be positive", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "Query failed", http.StatusInternalServerError)
			return
		}
		cache.SetViewport(ctx, key, objects)
	}

	response := map[string]interface{}{
		"count":   len(objects),
		"zoom":    zoom,
		"cached":  hit,
		"objects": objects,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// SceneStats reports the node and object counts of a scene's index.
func SceneStats(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(idx.Stats())
}

// ClearScene empties a scene: catalog rows, in-memory index and cache.
func ClearScene(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene not found", http.StatusNotFound)
		return
	}

	_, err = database.DB.Exec(`DELETE FROM scene_objects WHERE scene_id=$1`, sceneID)
	if err != nil {
		http.Error(w, "Failed to clear scene objects", http.StatusInternalServerError)
		return
	}

	idx.Clear()
	cache.BumpSceneRevision(context.Background(), sceneID)

	response := map[string]string{"message": "Scene cleared"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// BenchmarkScene loads the scene's objects into both index techniques
// and times repeated viewport queries against each.
func BenchmarkScene(w http.ResponseWriter, r *http.Request) {
	sceneID, err := sceneIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	scene, err := loadScene(sceneID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Scene not found", http.StatusNotFound)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	idx, err := spatial.GetScene(sceneID)
	if err != nil {
		http.Error(w, "Scene index not loaded", http.StatusInternalServerError)
		return
	}

	iterations := 100
	if raw := r.URL.Query().Get("iterations"); raw != "" {
		iterations, err = strconv.Atoi(raw)
		if err != nil || iterations <= 0 {
			http.Error(w, "Invalid iterations parameter", http.StatusBadRequest)
			return
		}
	}

	// Default viewport: a quarter-sized window centered in the world.
	world := scene.World()
	viewport := geom.Rect{
		X:      world.X + world.Width*3/8,
		Y:      world.Y + world.Height*3/8,
		Width:  world.Width / 4,
		Height: world.Height / 4,
	}
	if r.URL.Query().Get("x") != "" {
		viewport, err = viewportFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	results, err := spatial.CompareTechniques(idx.AllObjects(), world, viewport,
		scene.MaxObjects, scene.MaxLevels, iterations)
	if err != nil {
		http.Error(w, "Benchmark failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// RestoreScenes rebuilds every scene's in-memory index from the catalog
// by re-inserting its objects. The tree itself is never persisted.
func RestoreScenes() error {
	rows, err := database.DB.Query(
		`SELECT id, name, x, y, width, height, max_objects, max_levels FROM scenes`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var restored []*models.Scene
	for rows.Next() {
		var scene models.Scene
		err = rows.Scan(&scene.ID, &scene.Name, &scene.X, &scene.Y,
			&scene.Width, &scene.Height, &scene.MaxObjects, &scene.MaxLevels)
		if err != nil {
			return err
		}
		restored = append(restored, &scene)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, scene := range restored {
		idx := spatial.RegisterScene(scene.ID, scene.World(), scene.MaxObjects, scene.MaxLevels)
		if err := restoreObjects(idx, scene.ID); err != nil {
			return err
		}
	}
	return nil
}

func restoreObjects(idx *spatial.SceneIndex, sceneID int64) error {
	rows, err := database.DB.Query(
		`SELECT id, x, y, size, min_zoom, max_zoom FROM scene_objects WHERE scene_id=$1 ORDER BY id`,
		sceneID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var obj models.VectorObject
		err = rows.Scan(&obj.ID, &obj.X, &obj.Y, &obj.Size, &obj.MinZoom, &obj.MaxZoom)
		if err != nil {
			return err
		}
		idx.Insert(&obj)
	}
	return rows.Err()
}

func loadScene(sceneID int64) (*models.Scene, error) {
	var scene models.Scene
	err := database.DB.QueryRow(
		`SELECT id, name, x, y, width, height, max_objects, max_levels FROM scenes WHERE id=$1`,
		sceneID,
	).Scan(&scene.ID, &scene.Name, &scene.X, &scene.Y,
		&scene.Width, &scene.Height, &scene.MaxObjects, &scene.MaxLevels)
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

func sceneIDFromRequest(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars["scene_id"], 10, 64)
}

func viewportFromRequest(r *http.Request) (geom.Rect, error) {
	query := r.URL.Query()
	var viewport geom.Rect
	var err error
	if viewport.X, err = strconv.ParseFloat(query.Get("x"), 64); err != nil {
		return viewport, errInvalidViewport
	}
	if viewport.Y, err = strconv.ParseFloat(query.Get("y"), 64); err != nil {
		return viewport, errInvalidViewport
	}
	if viewport.Width, err = strconv.ParseFloat(query.Get("width"), 64); err != nil {
		return viewport, errInvalidViewport
	}
	if viewport.Height, err = strconv.ParseFloat(query.Get("height"), 64); err != nil {
		return viewport, errInvalidViewport
	}
	return viewport, nil
}
