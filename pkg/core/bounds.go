// Package core provides the shared geometry and error types for uiresolve.
package core

import (
	"fmt"
	"regexp"
	"strconv"
)

// Bounds represents element position and size in device pixels.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// boundsPattern matches the Android dump format "[x1,y1][x2,y2]".
var boundsPattern = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// ParseBounds parses an Android bounds string "[x1,y1][x2,y2]".
// Malformed input yields the zero rectangle, which callers treat as the
// sentinel for "invalid". Inverted rectangles are corrected by taking the
// absolute width and height.
func ParseBounds(s string) Bounds {
	m := boundsPattern.FindStringSubmatch(s)
	if m == nil {
		return Bounds{}
	}

	x1, err1 := strconv.Atoi(m[1])
	y1, err2 := strconv.Atoi(m[2])
	x2, err3 := strconv.Atoi(m[3])
	y2, err4 := strconv.Atoi(m[4])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return Bounds{}
	}

	w := x2 - x1
	if w < 0 {
		w = -w
	}
	h := y2 - y1
	if h < 0 {
		h = -h
	}

	return Bounds{X: x1, Y: y1, Width: w, Height: h}
}

// String renders the bounds back into the "[x1,y1][x2,y2]" dump format.
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// IsZero reports whether the bounds are the invalid sentinel rectangle.
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// Area returns the covered area in square pixels.
func (b Bounds) Area() int {
	return b.Width * b.Height
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Intersects reports whether two rectangles overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.X < o.X+o.Width && o.X < b.X+b.Width &&
		b.Y < o.Y+o.Height && o.Y < b.Y+b.Height
}

// CenterInside reports whether b's center point lies inside o.
func (b Bounds) CenterInside(o Bounds) bool {
	cx, cy := b.Center()
	return o.Contains(cx, cy)
}

// Inside reports whether b is fully contained in o.
func (b Bounds) Inside(o Bounds) bool {
	return b.X >= o.X && b.Y >= o.Y &&
		b.X+b.Width <= o.X+o.Width && b.Y+b.Height <= o.Y+o.Height
}
