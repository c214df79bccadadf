// Package model contains domain models passed between layers.
package model

// WallInstance is a contestant placed on the wall. Instances are derived
// fresh from a roster snapshot on every layout call.
type WallInstance struct {
	Contestant
	Score     float64    `json:"score"`
	Scale     float64    `json:"scale"`
	PixelSize float64    `json:"pixel_size"`
	Position  [3]float64 `json:"position"`
	Order     int        `json:"order"`
}
