package models

import "scene-index-service/geom"

// Scene is a named world with its own spatial index policy.
type Scene struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	MaxObjects int     `json:"max_objects"`
	MaxLevels  int     `json:"max_levels"`
}

// World returns the scene's boundary rectangle.
func (s *Scene) World() geom.Rect {
	return geom.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}
