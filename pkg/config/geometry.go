package config

// Offset describes a swipe or flick stroke as (start, end) coordinates.
// Relative offsets (the default) are fractions of the target area in the
// 0..1 range; Absolute marks the values as raw pixels.
type Offset struct {
	StartX, StartY float64
	EndX, EndY     float64
	Absolute       bool
}

// AbsOffset builds an absolute pixel offset.
func AbsOffset(startX, startY, endX, endY int) Offset {
	return Offset{
		StartX:   float64(startX),
		StartY:   float64(startY),
		EndX:     float64(endX),
		EndY:     float64(endY),
		Absolute: true,
	}
}

// Direction presets as (startX, startY, endX, endY) fractions of the area.
// Up means the content moves up, i.e. the finger travels from 75% to 25%
// of the area height.
var (
	Up         = Offset{StartX: 0.5, StartY: 0.75, EndX: 0.5, EndY: 0.25}
	Down       = Offset{StartX: 0.5, StartY: 0.25, EndX: 0.5, EndY: 0.75}
	Left       = Offset{StartX: 0.75, StartY: 0.5, EndX: 0.25, EndY: 0.5}
	Right      = Offset{StartX: 0.25, StartY: 0.5, EndX: 0.75, EndY: 0.5}
	UpperLeft  = Offset{StartX: 0.75, StartY: 0.75, EndX: 0.25, EndY: 0.25}
	UpperRight = Offset{StartX: 0.25, StartY: 0.75, EndX: 0.75, EndY: 0.25}
	LowerLeft  = Offset{StartX: 0.75, StartY: 0.25, EndX: 0.25, EndY: 0.75}
	LowerRight = Offset{StartX: 0.25, StartY: 0.25, EndX: 0.75, EndY: 0.75}
)

// Area describes the region a relative offset resolves against.
// Relative areas are fractions of the current window rect; Absolute marks
// the values as raw pixels.
type Area struct {
	X, Y          float64
	Width, Height float64
	Absolute      bool
}

// AbsArea builds an absolute pixel area.
func AbsArea(x, y, width, height int) Area {
	return Area{
		X:        float64(x),
		Y:        float64(y),
		Width:    float64(width),
		Height:   float64(height),
		Absolute: true,
	}
}

// FullWindow is the whole current window.
var FullWindow = Area{X: 0, Y: 0, Width: 1, Height: 1}
