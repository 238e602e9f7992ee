// Package page implements the page object layer: lazily located,
// wait-aware element descriptors bound to a WebDriver session, with a
// three-tier override chain for timeouts, timeout behavior and handle
// caching (per call > per element > global defaults).
package page

import (
	"fmt"
	"os"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// Border is the pixel edges of a rectangle.
type Border struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// Page wraps a WebDriver session and is the binding target for element
// descriptors.
type Page struct {
	driver *webdriver.Client
	log    *logger.Scoped
}

// New wraps an existing session client.
func New(driver *webdriver.Client) *Page {
	return &Page{
		driver: driver,
		log:    logger.NewScoped("Page", driver.SessionID()),
	}
}

// Driver exposes the underlying session client for operations the page
// layer does not wrap.
func (p *Page) Driver() *webdriver.Client {
	return p.driver
}

// Bind attaches the given descriptors to this page. Equivalent to
// calling Bind on each descriptor.
func (p *Page) Bind(elems ...*Element) *Page {
	for _, e := range elems {
		e.Bind(p)
	}
	return p
}

// OpenURL navigates the session to the given URL.
func (p *Page) OpenURL(url string) error {
	return p.driver.OpenURL(url)
}

// Source returns the current page or view hierarchy source.
func (p *Page) Source() (string, error) {
	return p.driver.Source()
}

// Title returns the current document title.
func (p *Page) Title() (string, error) {
	return p.driver.Title()
}

// CurrentURL returns the current document URL.
func (p *Page) CurrentURL() (string, error) {
	return p.driver.CurrentURL()
}

// Back navigates one step back in the session history.
func (p *Page) Back() error {
	return p.driver.Back()
}

// Refresh reloads the current document.
func (p *Page) Refresh() error {
	return p.driver.Refresh()
}

// Screenshot returns a PNG capture of the current viewport.
func (p *Page) Screenshot() ([]byte, error) {
	return p.driver.Screenshot()
}

// SaveScreenshot captures the viewport and writes it to path.
func (p *Page) SaveScreenshot(path string) error {
	data, err := p.driver.Screenshot()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WindowRect returns the window position and size.
func (p *Page) WindowRect() (webdriver.Rect, error) {
	return p.driver.WindowRect()
}

// WindowBorder returns the window edges in pixels.
func (p *Page) WindowBorder() (Border, error) {
	r, err := p.driver.WindowRect()
	if err != nil {
		return Border{}, err
	}
	return borderOf(r), nil
}

// WindowCenter returns the window midpoint in pixels.
func (p *Page) WindowCenter() (webdriver.Point, error) {
	r, err := p.driver.WindowRect()
	if err != nil {
		return webdriver.Point{}, err
	}
	return centerOf(r), nil
}

// WaitUntil polls an arbitrary session condition. The timeout and
// timeout behavior follow the usual override chain (call tier, then
// global defaults).
func (p *Page) WaitUntil(remark string, cond func(*webdriver.Client) (bool, error), opts ...WaitOption) (bool, error) {
	wp := applyWait(opts)
	timeout := config.Current().WaitTimeout
	if wp.timeout != nil {
		timeout = *wp.timeout
	}
	ok, err := poll(timeout, pollInterval(), func() (bool, bool, error) {
		done, err := cond(p.driver)
		return done, done, err
	})
	if err == nil {
		return ok, nil
	}
	if err != errPollTimeout {
		return false, err
	}
	te := &TimeoutError{State: remark, Remark: "page", Timeout: timeout}
	reraise := config.Current().Reraise
	if wp.reraise != nil {
		reraise = *wp.reraise
	}
	if reraise {
		return false, te
	}
	p.log.Warn("%v", te)
	return false, nil
}

// TapAt taps the given viewport coordinate.
func (p *Page) TapAt(x, y int) error {
	return p.driver.TapAt(x, y)
}

// TapWindowCenter taps the window midpoint.
func (p *Page) TapWindowCenter() error {
	c, err := p.WindowCenter()
	if err != nil {
		return err
	}
	return p.driver.TapAt(c.X, c.Y)
}

// Tap performs a multi-finger tap at the given coordinates.
func (p *Page) Tap(positions []webdriver.Point, durationMs int) error {
	return p.driver.Tap(positions, durationMs)
}

// Swipe performs a single swipe between absolute coordinates.
func (p *Page) Swipe(startX, startY, endX, endY, durationMs int) error {
	return p.driver.Swipe(startX, startY, endX, endY, durationMs)
}

// Flick performs a fast swipe between absolute coordinates.
func (p *Page) Flick(startX, startY, endX, endY int) error {
	return p.driver.Flick(startX, startY, endX, endY)
}

// SwipeBy swipes along the given offset, resolved against the area,
// repeated times times. Relative offsets and areas resolve against the
// window rect; see config.Offset and config.Area for the coordinate
// rules.
func (p *Page) SwipeBy(offset config.Offset, area config.Area, durationMs, times int) error {
	rect, err := resolveArea(p.driver, area)
	if err != nil {
		return err
	}
	sx, sy, ex, ey, err := resolveOffset(offset, rect)
	if err != nil {
		return err
	}
	for i := 0; i < times; i++ {
		if err := p.driver.Swipe(sx, sy, ex, ey, durationMs); err != nil {
			return err
		}
	}
	return nil
}

// FlickBy flicks along the given offset, resolved against the area,
// repeated times times.
func (p *Page) FlickBy(offset config.Offset, area config.Area, times int) error {
	rect, err := resolveArea(p.driver, area)
	if err != nil {
		return err
	}
	sx, sy, ex, ey, err := resolveOffset(offset, rect)
	if err != nil {
		return err
	}
	for i := 0; i < times; i++ {
		if err := p.driver.Flick(sx, sy, ex, ey); err != nil {
			return err
		}
	}
	return nil
}

// DrawLines draws a continuous stroke through the given dots.
func (p *Page) DrawLines(dots []webdriver.Point, durationMs int) error {
	return p.driver.DrawLines(dots, durationMs)
}

// DrawGesture draws a lock-pattern gesture over a 3x3 grid of dots.
func (p *Page) DrawGesture(dots []webdriver.Point, pattern string) error {
	return p.driver.DrawGesture(dots, pattern, 1000)
}

// SwitchToFrame switches the browsing context to the frame at the given
// index.
func (p *Page) SwitchToFrame(index int) error {
	return p.driver.SwitchToFrame(index)
}

// SwitchToParentFrame switches the browsing context to the parent frame.
func (p *Page) SwitchToParentFrame() error {
	return p.driver.SwitchToParentFrame()
}

func borderOf(r webdriver.Rect) Border {
	return Border{
		Left:   r.X,
		Right:  r.X + r.Width,
		Top:    r.Y,
		Bottom: r.Y + r.Height,
	}
}

func centerOf(r webdriver.Rect) webdriver.Point {
	return webdriver.Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

func describeLocator(by, value string, index int) string {
	if index >= 0 {
		return fmt.Sprintf("{%s: %s}[%d]", by, value, index)
	}
	return fmt.Sprintf("{%s: %s}", by, value)
}
