// Package render draws the simulation's continuous 2-D agents and static
// obstacles to screen space via ebiten. Camera replaced the donor engine's
// isometric tile projection with a flat orthographic one, since agents live
// in continuous (x, y) world coordinates rather than on a diamond tile grid.
package render

import "math"

// Camera is a flat, zoomable 2-D viewport centered on a world position.
type Camera struct {
	X, Y    float64 // camera center position (world coords)
	Zoom    float64 // zoom level (1.0 = default)
	MinZoom float64
	MaxZoom float64
	ScreenW int // viewport width in pixels
	ScreenH int // viewport height in pixels

	// PixelsPerUnit converts one world unit to screen pixels at Zoom == 1.
	PixelsPerUnit float64
}

// NewCamera creates a camera with default settings.
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		X:             0,
		Y:             0,
		Zoom:          1.0,
		MinZoom:       0.1,
		MaxZoom:       8.0,
		ScreenW:       screenW,
		ScreenH:       screenH,
		PixelsPerUnit: 32,
	}
}

// Pan moves the camera by a screen-pixel delta.
func (c *Camera) Pan(dx, dy float64) {
	scale := c.PixelsPerUnit * c.Zoom
	c.X += dx / scale
	c.Y += dy / scale
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms toward a screen point, keeping the world point under it fixed.
func (c *Camera) ZoomAt(delta float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom + delta)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	c.X += wx - wx2
	c.Y += wy - wy2
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(wx, wy float64) {
	c.X, c.Y = wx, wy
}

// WorldToScreen converts a world position to a screen pixel position.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	scale := c.PixelsPerUnit * c.Zoom
	sx := (wx-c.X)*scale + float64(c.ScreenW)/2
	sy := (wy-c.Y)*scale + float64(c.ScreenH)/2
	return sx, sy
}

// ScreenToWorld converts a screen pixel position to a world position.
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	scale := c.PixelsPerUnit * c.Zoom
	wx := (float64(sx)-float64(c.ScreenW)/2)/scale + c.X
	wy := (float64(sy)-float64(c.ScreenH)/2)/scale + c.Y
	return wx, wy
}

// VisibleWorldRect returns the world-space bounding box currently on screen.
func (c *Camera) VisibleWorldRect() (minX, minY, maxX, maxY float64) {
	minX, minY = c.ScreenToWorld(0, 0)
	maxX, maxY = c.ScreenToWorld(c.ScreenW, c.ScreenH)
	return
}
