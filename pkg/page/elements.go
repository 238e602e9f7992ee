package page

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/by"
	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// Elements is the plural descriptor: one locator matching a group of
// elements. Group membership shifts as the UI changes, so Elements
// never caches handles; every wait relocates the whole group.
type Elements struct {
	strategy string
	value    string
	opts     settings
	page     *Page
	log      *logger.Scoped
}

// NewElements declares a plural descriptor for the given locator. It
// panics on an unknown strategy. Index and Cache options do not apply
// to groups and are ignored.
func NewElements(strategy, value string, opts ...Option) *Elements {
	if !by.Valid(strategy) {
		panic(fmt.Sprintf("page: unknown locator strategy %q", strategy))
	}
	e := &Elements{
		strategy: strategy,
		value:    value,
		opts:     applyOptions(opts),
	}
	e.log = logger.NewScoped("Elements", e.describe())
	return e
}

// Bind attaches the descriptor to a page.
func (e *Elements) Bind(p *Page) *Elements {
	e.page = p
	return e
}

// Strategy returns the locator strategy.
func (e *Elements) Strategy() string { return e.strategy }

// Value returns the locator value.
func (e *Elements) Value() string { return e.value }

// Remark returns the identification string used in logs and timeout
// errors.
func (e *Elements) Remark() string { return e.describe() }

func (e *Elements) describe() string {
	if e.opts.remark != "" {
		return e.opts.remark
	}
	return describeLocator(e.strategy, e.value, -1)
}

func (e *Elements) client() (*webdriver.Client, error) {
	if e.page == nil || e.page.driver == nil {
		return nil, ErrNotBound
	}
	return e.page.driver, nil
}

func (e *Elements) resolveTimeout(p waitParams) time.Duration {
	if p.timeout != nil {
		return *p.timeout
	}
	if e.opts.timeout != nil {
		return *e.opts.timeout
	}
	return config.Current().WaitTimeout
}

func (e *Elements) resolveReraise(p waitParams) bool {
	if p.reraise != nil {
		return *p.reraise
	}
	if e.opts.reraise != nil {
		return *e.opts.reraise
	}
	return config.Current().Reraise
}

func (e *Elements) mapTimeout(state string, err error, timeout time.Duration) error {
	if err == errPollTimeout {
		return &TimeoutError{State: state, Remark: e.describe(), Timeout: timeout}
	}
	return err
}

func (e *Elements) suppressGroup(hs []*webdriver.Element, err error, p waitParams) ([]*webdriver.Element, error) {
	if err == nil || !IsTimeout(err) || e.resolveReraise(p) {
		return hs, err
	}
	e.log.Warn("%v", err)
	return nil, nil
}

func (e *Elements) waitGroup(state string, p waitParams, fn pollFn[[]*webdriver.Element]) ([]*webdriver.Element, error) {
	timeout := e.resolveTimeout(p)
	hs, err := poll(timeout, pollInterval(), fn)
	if err != nil {
		return e.suppressGroup(nil, e.mapTimeout(state, err, timeout), p)
	}
	return hs, nil
}

// WaitAllPresent waits until the locator matches at least one element
// and returns the group.
func (e *Elements) WaitAllPresent(opts ...WaitOption) ([]*webdriver.Element, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	return e.waitGroup("present", p, allPresentLocated(c, e.strategy, e.value))
}

// WaitAllAbsent waits until the locator matches nothing.
func (e *Elements) WaitAllAbsent(opts ...WaitOption) (bool, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return false, err
	}
	timeout := e.resolveTimeout(p)
	ok, err := poll(timeout, pollInterval(), allAbsentLocated(c, e.strategy, e.value))
	if err != nil {
		err = e.mapTimeout("absent", err, timeout)
		if IsTimeout(err) && !e.resolveReraise(p) {
			e.log.Warn("%v", err)
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// WaitAllVisible waits until every match is displayed and returns the
// group.
func (e *Elements) WaitAllVisible(opts ...WaitOption) ([]*webdriver.Element, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	return e.waitGroup("all visible", p, allVisibleLocated(c, e.strategy, e.value))
}

// WaitAnyVisible waits until at least one match is displayed and
// returns the visible subset.
func (e *Elements) WaitAnyVisible(opts ...WaitOption) ([]*webdriver.Element, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	return e.waitGroup("any visible", p, anyVisibleLocated(c, e.strategy, e.value))
}

// AreAllPresent reports whether the group matches within a short probe
// window (one second unless overridden). It never returns an error.
func (e *Elements) AreAllPresent(opts ...WaitOption) bool {
	return e.probe(opts, e.WaitAllPresent)
}

// AreAllVisible reports whether every match is displayed within a short
// probe window.
func (e *Elements) AreAllVisible(opts ...WaitOption) bool {
	return e.probe(opts, e.WaitAllVisible)
}

// AreAnyVisible reports whether any match is displayed within a short
// probe window.
func (e *Elements) AreAnyVisible(opts ...WaitOption) bool {
	return e.probe(opts, e.WaitAnyVisible)
}

func (e *Elements) probe(opts []WaitOption, wait func(...WaitOption) ([]*webdriver.Element, error)) bool {
	p := applyWait(opts)
	if p.timeout == nil {
		opts = append(opts, WithTimeout(time.Second))
	}
	opts = append(opts, WithReraise(false))
	hs, err := wait(opts...)
	if err != nil {
		e.log.Warn("probe failed: %v", err)
		return false
	}
	return len(hs) > 0
}

// Quantity returns the current match count, without waiting.
func (e *Elements) Quantity() (int, error) {
	c, err := e.client()
	if err != nil {
		return 0, err
	}
	hs, err := c.FindElements(e.strategy, e.value)
	if err != nil {
		return 0, err
	}
	return len(hs), nil
}

// Texts waits for the group and returns each element's text.
func (e *Elements) Texts(opts ...WaitOption) ([]string, error) {
	return collect(e, opts, (*webdriver.Element).Text)
}

// AllVisibleTexts waits until every match is displayed and returns the
// texts.
func (e *Elements) AllVisibleTexts(opts ...WaitOption) ([]string, error) {
	return groupTexts(e.WaitAllVisible(opts...))
}

// AnyVisibleTexts waits until at least one match is displayed and
// returns the texts of the visible subset.
func (e *Elements) AnyVisibleTexts(opts ...WaitOption) ([]string, error) {
	return groupTexts(e.WaitAnyVisible(opts...))
}

func groupTexts(hs []*webdriver.Element, err error) ([]string, error) {
	if err != nil || hs == nil {
		return nil, err
	}
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		text, err := h.Text()
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// Attributes waits for the group and returns the named attribute of
// each element.
func (e *Elements) Attributes(name string, opts ...WaitOption) ([]string, error) {
	return collect(e, opts, func(h *webdriver.Element) (string, error) {
		return h.Attribute(name)
	})
}

// Rects waits for the group and returns each element's rect.
func (e *Elements) Rects(opts ...WaitOption) ([]webdriver.Rect, error) {
	return collect(e, opts, (*webdriver.Element).Rect)
}

// Locations waits for the group and returns each element's top-left
// corner.
func (e *Elements) Locations(opts ...WaitOption) ([]webdriver.Point, error) {
	return collect(e, opts, func(h *webdriver.Element) (webdriver.Point, error) {
		r, err := h.Rect()
		if err != nil {
			return webdriver.Point{}, err
		}
		return webdriver.Point{X: r.X, Y: r.Y}, nil
	})
}

// Sizes waits for the group and returns each element's size.
func (e *Elements) Sizes(opts ...WaitOption) ([]Size, error) {
	return collect(e, opts, func(h *webdriver.Element) (Size, error) {
		r, err := h.Rect()
		if err != nil {
			return Size{}, err
		}
		return Size{Width: r.Width, Height: r.Height}, nil
	})
}

// Centers waits for the group and returns each element's midpoint.
func (e *Elements) Centers(opts ...WaitOption) ([]webdriver.Point, error) {
	return collect(e, opts, func(h *webdriver.Element) (webdriver.Point, error) {
		r, err := h.Rect()
		if err != nil {
			return webdriver.Point{}, err
		}
		return centerOf(r), nil
	})
}

// collect relocates the group once on a stale member and retries the
// whole read, since a stale member means the group shifted under us.
func collect[T any](e *Elements, opts []WaitOption, fn func(*webdriver.Element) (T, error)) ([]T, error) {
	read := func() ([]T, error) {
		hs, err := e.WaitAllPresent(opts...)
		if err != nil || hs == nil {
			return nil, err
		}
		out := make([]T, 0, len(hs))
		for _, h := range hs {
			v, err := fn(h)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	out, err := read()
	if err != nil && webdriver.IsStale(err) {
		return read()
	}
	return out, err
}
