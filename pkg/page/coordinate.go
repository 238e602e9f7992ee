package page

import (
	"fmt"
	"math"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// resolveArea converts an area to window pixels. Absolute areas are
// taken as-is; relative areas scale against the window rect, with x and
// y in [0, 1) and width and height in (0, 1].
func resolveArea(c *webdriver.Client, a config.Area) (webdriver.Rect, error) {
	if a.Absolute {
		if a.Width <= 0 || a.Height <= 0 {
			return webdriver.Rect{}, fmt.Errorf("absolute area %+v must have positive width and height", a)
		}
		return webdriver.Rect{
			X:      int(a.X),
			Y:      int(a.Y),
			Width:  int(a.Width),
			Height: int(a.Height),
		}, nil
	}
	if a.X < 0 || a.X >= 1 || a.Y < 0 || a.Y >= 1 {
		return webdriver.Rect{}, fmt.Errorf("relative area origin (%v, %v) must be within [0, 1)", a.X, a.Y)
	}
	if a.Width <= 0 || a.Width > 1 || a.Height <= 0 || a.Height > 1 {
		return webdriver.Rect{}, fmt.Errorf("relative area size (%v, %v) must be within (0, 1]", a.Width, a.Height)
	}
	win, err := c.WindowRect()
	if err != nil {
		return webdriver.Rect{}, err
	}
	return webdriver.Rect{
		X:      win.X + scale(a.X, win.Width),
		Y:      win.Y + scale(a.Y, win.Height),
		Width:  scale(a.Width, win.Width),
		Height: scale(a.Height, win.Height),
	}, nil
}

// resolveOffset converts a stroke to pixels. Absolute offsets are taken
// as-is; relative offsets scale against the resolved area, with every
// coordinate in [0, 1].
func resolveOffset(o config.Offset, area webdriver.Rect) (startX, startY, endX, endY int, err error) {
	if o.Absolute {
		return int(o.StartX), int(o.StartY), int(o.EndX), int(o.EndY), nil
	}
	for _, v := range []float64{o.StartX, o.StartY, o.EndX, o.EndY} {
		if v < 0 || v > 1 {
			return 0, 0, 0, 0, fmt.Errorf("relative offset %+v must have all coordinates within [0, 1]", o)
		}
	}
	startX = area.X + scale(o.StartX, area.Width)
	startY = area.Y + scale(o.StartY, area.Height)
	endX = area.X + scale(o.EndX, area.Width)
	endY = area.Y + scale(o.EndY, area.Height)
	return startX, startY, endX, endY, nil
}

func scale(ratio float64, length int) int {
	return int(math.Round(ratio * float64(length)))
}
