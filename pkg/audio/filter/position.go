// ABOUTME: Position sources read by the distance attenuation filter
// ABOUTME: Point is a movable position safe to update while voices read it
package filter

import "sync/atomic"

// Positioner reports a location in world coordinates
type Positioner interface {
	Position() (x, y float64)
}

// PositionFunc adapts a function to Positioner
type PositionFunc func() (x, y float64)

// Position calls f
func (f PositionFunc) Position() (x, y float64) {
	return f()
}

// Point is a position that can be moved by the game loop while a voice reads it.
// The zero value is the origin.
type Point struct {
	xy atomic.Pointer[[2]float64]
}

// NewPoint creates a point at (x, y)
func NewPoint(x, y float64) *Point {
	p := &Point{}
	p.Set(x, y)
	return p
}

// Set moves the point. Readers see either the old or the new pair, never a mix.
func (p *Point) Set(x, y float64) {
	p.xy.Store(&[2]float64{x, y})
}

// Position returns the current coordinates
func (p *Point) Position() (x, y float64) {
	xy := p.xy.Load()
	if xy == nil {
		return 0, 0
	}
	return xy[0], xy[1]
}
