package core

import "math"

// ScreenSize holds the device screen dimensions in pixels.
type ScreenSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether the screen size is unknown.
func (s ScreenSize) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Signature is a resolution-independent position descriptor: the element's
// center point and size as ratios of the screen dimensions, each in [0,1].
type Signature struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SignatureOf normalizes bounds against the screen size. Returns nil when
// either the bounds or the screen size are degenerate.
func SignatureOf(b Bounds, screen ScreenSize) *Signature {
	if b.IsZero() || screen.IsZero() {
		return nil
	}
	cx, cy := b.Center()
	return &Signature{
		X:      float64(cx) / float64(screen.Width),
		Y:      float64(cy) / float64(screen.Height),
		Width:  float64(b.Width) / float64(screen.Width),
		Height: float64(b.Height) / float64(screen.Height),
	}
}

// Area returns the normalized area, a fraction of the screen area.
func (s Signature) Area() float64 {
	return s.Width * s.Height
}

// Distance returns the Euclidean distance between two signature centers in
// normalized screen space.
func (s Signature) Distance(o Signature) float64 {
	dx := s.X - o.X
	dy := s.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}
