package models

import "scene-index-service/geom"

// Default zoom window for objects that do not declare one.
const (
	DefaultMinZoom = 0.01
	DefaultMaxZoom = 1000.0
)

// VectorObject is an entity indexed by a scene: a center position, a
// scalar size and the zoom range in which it is eligible to render.
// Objects are immutable once inserted; producers may adjust MinZoom
// before insertion.
type VectorObject struct {
	ID      int64   `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	MinZoom float64 `json:"min_zoom"`
	MaxZoom float64 `json:"max_zoom"`
}

// NewVectorObject creates an object with the default zoom window.
func NewVectorObject(x, y, size float64) *VectorObject {
	return &VectorObject{
		X:       x,
		Y:       y,
		Size:    size,
		MinZoom: DefaultMinZoom,
		MaxZoom: DefaultMaxZoom,
	}
}

// Bounds returns the square bounding box centered on the object.
func (o *VectorObject) Bounds() geom.Rect {
	half := o.Size / 2
	return geom.Rect{X: o.X - half, Y: o.Y - half, Width: o.Size, Height: o.Size}
}

// ShouldRenderAtZoom reports whether the object is visible at the given
// zoom: inside its zoom window and projecting to at least lodThreshold
// on-screen units.
func (o *VectorObject) ShouldRenderAtZoom(zoom, lodThreshold float64) bool {
	if zoom < o.MinZoom || zoom > o.MaxZoom {
		return false
	}
	return o.Size*zoom >= lodThreshold
}
