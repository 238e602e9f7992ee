package page

import (
	"os"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// acquireFn obtains a handle for an interaction, either from the cache
// or behind a strict wait.
type acquireFn func(waitParams) (*webdriver.Element, error)

// cachedOrPresent serves interactions that only need the element in the
// tree: the cached handle if any, else the present wait.
func (e *Element) cachedOrPresent(p waitParams) (*webdriver.Element, error) {
	if h := e.cachedHandle(); h != nil {
		return h, nil
	}
	return e.waitPresent(p)
}

// run drives an interaction: acquire a handle, apply fn, and on a stale
// handle relocate once and retry. Wait timeouts surface as TimeoutError
// regardless of the reraise setting, since a skipped interaction has no
// result to suppress into.
func run[T any](e *Element, opts []WaitOption, acquire acquireFn, fn func(*webdriver.Element) (T, error)) (T, error) {
	var zero T
	p := applyWait(opts)
	h, err := acquire(p)
	if err != nil {
		return zero, err
	}
	v, err := fn(h)
	if err == nil || !webdriver.IsStale(err) {
		return v, err
	}
	e.invalidate()
	h, err = acquire(p)
	if err != nil {
		return zero, err
	}
	return fn(h)
}

func runAction(e *Element, opts []WaitOption, acquire acquireFn, fn func(*webdriver.Element) error) error {
	_, err := run(e, opts, acquire, func(h *webdriver.Element) (struct{}, error) {
		return struct{}{}, fn(h)
	})
	return err
}

// Click waits until the element is clickable and clicks it.
func (e *Element) Click(opts ...WaitOption) error {
	return runAction(e, opts, e.waitClickable, (*webdriver.Element).Click)
}

// DelayedClick waits until the element is clickable, pauses for the
// given duration, then clicks. Useful when the target is still settling
// from an animation.
func (e *Element) DelayedClick(delay time.Duration, opts ...WaitOption) error {
	return runAction(e, opts, e.waitClickable, func(h *webdriver.Element) error {
		time.Sleep(delay)
		return h.Click()
	})
}

// Clear waits until the element is present and clears its value.
func (e *Element) Clear(opts ...WaitOption) error {
	return runAction(e, opts, e.cachedOrPresent, (*webdriver.Element).Clear)
}

// SendKeys waits until the element is present and types into it.
func (e *Element) SendKeys(text string, opts ...WaitOption) error {
	return runAction(e, opts, e.cachedOrPresent, func(h *webdriver.Element) error {
		return h.SendKeys(text)
	})
}

// Submit waits until the element is present and submits its form.
func (e *Element) Submit(opts ...WaitOption) error {
	return runAction(e, opts, e.cachedOrPresent, (*webdriver.Element).Submit)
}

// Text waits until the element is present and returns its text.
func (e *Element) Text(opts ...WaitOption) (string, error) {
	return run(e, opts, e.cachedOrPresent, (*webdriver.Element).Text)
}

// VisibleText waits until the element is displayed and returns its
// text.
func (e *Element) VisibleText(opts ...WaitOption) (string, error) {
	return run(e, opts, e.waitVisible, (*webdriver.Element).Text)
}

// TagName waits until the element is present and returns its tag name.
func (e *Element) TagName(opts ...WaitOption) (string, error) {
	return run(e, opts, e.cachedOrPresent, (*webdriver.Element).TagName)
}

// Attribute waits until the element is present and returns the named
// attribute.
func (e *Element) Attribute(name string, opts ...WaitOption) (string, error) {
	return run(e, opts, e.cachedOrPresent, func(h *webdriver.Element) (string, error) {
		return h.Attribute(name)
	})
}

// Property waits until the element is present and returns the named
// property.
func (e *Element) Property(name string, opts ...WaitOption) (interface{}, error) {
	return run(e, opts, e.cachedOrPresent, func(h *webdriver.Element) (interface{}, error) {
		return h.Property(name)
	})
}

// CSSValue waits until the element is present and returns the computed
// style value.
func (e *Element) CSSValue(name string, opts ...WaitOption) (string, error) {
	return run(e, opts, e.cachedOrPresent, func(h *webdriver.Element) (string, error) {
		return h.CSSValue(name)
	})
}

// IsDisplayed waits until the element is present and reports whether it
// is displayed.
func (e *Element) IsDisplayed(opts ...WaitOption) (bool, error) {
	return run(e, opts, e.cachedOrPresent, (*webdriver.Element).Displayed)
}

// IsEnabled waits until the element is present and reports whether it
// is enabled.
func (e *Element) IsEnabled(opts ...WaitOption) (bool, error) {
	return run(e, opts, e.cachedOrPresent, (*webdriver.Element).Enabled)
}

// IsSelected waits until the element is present and reports whether it
// is selected.
func (e *Element) IsSelected(opts ...WaitOption) (bool, error) {
	return run(e, opts, e.cachedOrPresent, (*webdriver.Element).Selected)
}

// Rect waits until the element is present and returns its rect.
func (e *Element) Rect(opts ...WaitOption) (webdriver.Rect, error) {
	return run(e, opts, e.cachedOrPresent, (*webdriver.Element).Rect)
}

// Location returns the element's top-left corner.
func (e *Element) Location(opts ...WaitOption) (webdriver.Point, error) {
	r, err := e.Rect(opts...)
	if err != nil {
		return webdriver.Point{}, err
	}
	return webdriver.Point{X: r.X, Y: r.Y}, nil
}

// Size returns the element's width and height.
func (e *Element) Size(opts ...WaitOption) (Size, error) {
	r, err := e.Rect(opts...)
	if err != nil {
		return Size{}, err
	}
	return Size{Width: r.Width, Height: r.Height}, nil
}

// Border returns the element's pixel edges.
func (e *Element) Border(opts ...WaitOption) (Border, error) {
	r, err := e.Rect(opts...)
	if err != nil {
		return Border{}, err
	}
	return borderOf(r), nil
}

// Center returns the element's midpoint.
func (e *Element) Center(opts ...WaitOption) (webdriver.Point, error) {
	r, err := e.Rect(opts...)
	if err != nil {
		return webdriver.Point{}, err
	}
	return centerOf(r), nil
}

// Screenshot waits until the element is displayed and returns its PNG
// capture.
func (e *Element) Screenshot(opts ...WaitOption) ([]byte, error) {
	return run(e, opts, e.waitVisible, (*webdriver.Element).Screenshot)
}

// SaveScreenshot captures the element and writes it to path.
func (e *Element) SaveScreenshot(path string, opts ...WaitOption) error {
	data, err := e.Screenshot(opts...)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Tap waits until the element is present and taps its center with a
// pointer gesture, rather than an element click.
func (e *Element) Tap(opts ...WaitOption) error {
	return runAction(e, opts, e.cachedOrPresent, func(h *webdriver.Element) error {
		r, err := h.Rect()
		if err != nil {
			return err
		}
		c, err := e.client()
		if err != nil {
			return err
		}
		mid := centerOf(r)
		return c.TapAt(mid.X, mid.Y)
	})
}

// LongPress waits until the element is present and long-presses its
// center.
func (e *Element) LongPress(durationMs int, opts ...WaitOption) error {
	return runAction(e, opts, e.cachedOrPresent, func(h *webdriver.Element) error {
		r, err := h.Rect()
		if err != nil {
			return err
		}
		c, err := e.client()
		if err != nil {
			return err
		}
		mid := centerOf(r)
		return c.LongPress(mid.X, mid.Y, durationMs)
	})
}

// ScrollTo scrolls from this element to the target element.
func (e *Element) ScrollTo(target *Element, opts ...WaitOption) error {
	return e.elementPair(target, opts, func(c *webdriver.Client, srcID, dstID string) error {
		return c.Scroll(srcID, dstID, 600)
	})
}

// DragAndDropTo drags this element onto the target element.
func (e *Element) DragAndDropTo(target *Element, opts ...WaitOption) error {
	return e.elementPair(target, opts, func(c *webdriver.Client, srcID, dstID string) error {
		return c.DragAndDrop(srcID, dstID, 600)
	})
}

func (e *Element) elementPair(target *Element, opts []WaitOption, gesture func(c *webdriver.Client, srcID, dstID string) error) error {
	return runAction(e, opts, e.cachedOrPresent, func(src *webdriver.Element) error {
		dst, err := run(target, opts, target.cachedOrPresent, func(h *webdriver.Element) (*webdriver.Element, error) {
			return h, nil
		})
		if err != nil {
			return err
		}
		c, err := e.client()
		if err != nil {
			return err
		}
		return gesture(c, src.ID(), dst.ID())
	})
}
