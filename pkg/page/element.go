package page

import (
	"errors"
	"fmt"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/by"
	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// Element is a lazy element descriptor: a locator plus per-element
// settings, bound to a page. Lookups happen on use, behind a wait, and
// the resolved handle is cached in state slots (present, visible,
// clickable) so repeated use skips relocation until the handle goes
// stale.
type Element struct {
	strategy string
	value    string
	opts     settings
	page     *Page
	log      *logger.Scoped

	// Single-slot handle caches. A stronger state implies the weaker
	// ones, so storing a clickable handle fills all three slots.
	presentCache   *webdriver.Element
	visibleCache   *webdriver.Element
	clickableCache *webdriver.Element
}

// NewElement declares a descriptor for the given locator. It panics on
// an unknown strategy, which is a programming error in the page object
// declaration.
func NewElement(strategy, value string, opts ...Option) *Element {
	if !by.Valid(strategy) {
		panic(fmt.Sprintf("page: unknown locator strategy %q", strategy))
	}
	e := &Element{
		strategy: strategy,
		value:    value,
		opts:     applyOptions(opts),
	}
	e.log = logger.NewScoped("Element", e.describe())
	return e
}

// Bind attaches the descriptor to a page. Rebinding clears the handle
// caches, since handles are only valid within their session.
func (e *Element) Bind(p *Page) *Element {
	e.page = p
	e.invalidate()
	return e
}

// SetLocator swaps the locator and settings at runtime and clears the
// handle caches. The binding is kept. It panics on an unknown strategy.
func (e *Element) SetLocator(strategy, value string, opts ...Option) *Element {
	if !by.Valid(strategy) {
		panic(fmt.Sprintf("page: unknown locator strategy %q", strategy))
	}
	e.strategy = strategy
	e.value = value
	e.opts = applyOptions(opts)
	e.invalidate()
	e.log.SetRemark(e.describe())
	return e
}

// Strategy returns the locator strategy.
func (e *Element) Strategy() string { return e.strategy }

// Value returns the locator value.
func (e *Element) Value() string { return e.value }

// Index returns the find-elements index, or -1 for find-element
// semantics.
func (e *Element) Index() int { return e.opts.index }

// Remark returns the identification string used in logs and timeout
// errors.
func (e *Element) Remark() string { return e.describe() }

func (e *Element) describe() string {
	if e.opts.remark != "" {
		return e.opts.remark
	}
	return describeLocator(e.strategy, e.value, e.opts.index)
}

func (e *Element) client() (*webdriver.Client, error) {
	if e.page == nil || e.page.driver == nil {
		return nil, ErrNotBound
	}
	return e.page.driver, nil
}

// resolveTimeout walks the override chain: call tier, element tier,
// global defaults.
func (e *Element) resolveTimeout(p waitParams) time.Duration {
	if p.timeout != nil {
		return *p.timeout
	}
	if e.opts.timeout != nil {
		return *e.opts.timeout
	}
	return config.Current().WaitTimeout
}

func (e *Element) resolveReraise(p waitParams) bool {
	if p.reraise != nil {
		return *p.reraise
	}
	if e.opts.reraise != nil {
		return *e.opts.reraise
	}
	return config.Current().Reraise
}

func (e *Element) cacheEnabled() bool {
	if e.opts.cache != nil {
		return *e.opts.cache
	}
	return config.Current().CacheElement
}

func (e *Element) invalidate() {
	e.presentCache = nil
	e.visibleCache = nil
	e.clickableCache = nil
}

func (e *Element) storePresent(h *webdriver.Element) {
	if e.cacheEnabled() {
		e.presentCache = h
	}
}

func (e *Element) storeVisible(h *webdriver.Element) {
	if e.cacheEnabled() {
		e.presentCache = h
		e.visibleCache = h
	}
}

func (e *Element) storeClickable(h *webdriver.Element) {
	if e.cacheEnabled() {
		e.presentCache = h
		e.visibleCache = h
		e.clickableCache = h
	}
}

// cachedHandle returns the strongest cached handle, if any.
func (e *Element) cachedHandle() *webdriver.Element {
	if e.clickableCache != nil {
		return e.clickableCache
	}
	if e.visibleCache != nil {
		return e.visibleCache
	}
	return e.presentCache
}

// timeout mapping for the strict wait cores: errPollTimeout becomes a
// TimeoutError carrying the state and the resolved timeout.
func (e *Element) mapTimeout(state string, err error, timeout time.Duration) error {
	if errors.Is(err, errPollTimeout) {
		return &TimeoutError{State: state, Remark: e.describe(), Timeout: timeout}
	}
	return err
}

// waitPresent is the strict present wait: it always polls the locator
// and refreshes the present cache on success. Timeouts are returned as
// TimeoutError regardless of the reraise setting.
func (e *Element) waitPresent(p waitParams) (*webdriver.Element, error) {
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	timeout := e.resolveTimeout(p)
	h, err := poll(timeout, pollInterval(), presentLocated(c, e.strategy, e.value, e.opts.index))
	if err != nil {
		return nil, e.mapTimeout("present", err, timeout)
	}
	e.storePresent(h)
	return h, nil
}

// waitVisible is the strict visible wait. A cached handle is probed
// first; if it goes stale the wait falls back to the locator with a
// fresh timeout.
func (e *Element) waitVisible(p waitParams) (*webdriver.Element, error) {
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	timeout := e.resolveTimeout(p)
	if h := e.cachedHandle(); h != nil {
		got, err := poll(timeout, pollInterval(), visibleHandle(h))
		if err == nil {
			e.storeVisible(got)
			return got, nil
		}
		if !webdriver.IsStale(err) {
			return nil, e.mapTimeout("visible", err, timeout)
		}
		e.invalidate()
	}
	got, err := poll(timeout, pollInterval(), visibleLocated(c, e.strategy, e.value, e.opts.index))
	if err != nil {
		return nil, e.mapTimeout("visible", err, timeout)
	}
	e.storeVisible(got)
	return got, nil
}

// waitClickable is the strict clickable wait, with the same cached
// handle fast path as waitVisible.
func (e *Element) waitClickable(p waitParams) (*webdriver.Element, error) {
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	timeout := e.resolveTimeout(p)
	if h := e.cachedHandle(); h != nil {
		got, err := poll(timeout, pollInterval(), clickableHandle(h))
		if err == nil {
			e.storeClickable(got)
			return got, nil
		}
		if !webdriver.IsStale(err) {
			return nil, e.mapTimeout("clickable", err, timeout)
		}
		e.invalidate()
	}
	got, err := poll(timeout, pollInterval(), clickableLocated(c, e.strategy, e.value, e.opts.index))
	if err != nil {
		return nil, e.mapTimeout("clickable", err, timeout)
	}
	e.storeClickable(got)
	return got, nil
}

// suppressHandle applies the reraise setting to a wait result: with
// reraise off a timeout is logged and swallowed, yielding a nil handle.
func (e *Element) suppressHandle(h *webdriver.Element, err error, p waitParams) (*webdriver.Element, error) {
	if err == nil || !IsTimeout(err) || e.resolveReraise(p) {
		return h, err
	}
	e.log.Warn("%v", err)
	return nil, nil
}

func (e *Element) suppressBool(ok bool, err error, p waitParams) (bool, error) {
	if err == nil || !IsTimeout(err) || e.resolveReraise(p) {
		return ok, err
	}
	e.log.Warn("%v", err)
	return false, nil
}

// WaitPresent waits until the locator matches and returns the handle.
// On timeout it returns a TimeoutError, or a nil handle when reraise is
// off for this call, element or globally.
func (e *Element) WaitPresent(opts ...WaitOption) (*webdriver.Element, error) {
	p := applyWait(opts)
	h, err := e.waitPresent(p)
	return e.suppressHandle(h, err, p)
}

// WaitAbsent waits until the locator matches nothing. The handle caches
// are dropped up front since absence invalidates any held handle.
func (e *Element) WaitAbsent(opts ...WaitOption) (bool, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return false, err
	}
	e.invalidate()
	timeout := e.resolveTimeout(p)
	ok, err := poll(timeout, pollInterval(), absentLocated(c, e.strategy, e.value, e.opts.index))
	if err != nil {
		return e.suppressBool(false, e.mapTimeout("absent", err, timeout), p)
	}
	return ok, nil
}

// WaitVisible waits until the element is displayed and returns the
// handle.
func (e *Element) WaitVisible(opts ...WaitOption) (*webdriver.Element, error) {
	p := applyWait(opts)
	h, err := e.waitVisible(p)
	return e.suppressHandle(h, err, p)
}

// WaitInvisible waits until the element is not displayed. With
// mustBePresent the element has to exist in the tree; otherwise absence
// also satisfies the wait.
func (e *Element) WaitInvisible(mustBePresent bool, opts ...WaitOption) (bool, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return false, err
	}
	timeout := e.resolveTimeout(p)
	if h := e.cachedHandle(); h != nil {
		got, err := poll(timeout, pollInterval(), invisibleHandle(h, mustBePresent))
		if err == nil {
			if got == nil {
				e.invalidate()
			}
			return true, nil
		}
		if !webdriver.IsStale(err) {
			return e.suppressBool(false, e.mapTimeout("invisible", err, timeout), p)
		}
		e.invalidate()
	}
	got, err := poll(timeout, pollInterval(), invisibleLocated(c, e.strategy, e.value, e.opts.index, mustBePresent))
	if err != nil {
		return e.suppressBool(false, e.mapTimeout("invisible", err, timeout), p)
	}
	if got != nil {
		e.storePresent(got)
	}
	return true, nil
}

// WaitClickable waits until the element is displayed and enabled and
// returns the handle.
func (e *Element) WaitClickable(opts ...WaitOption) (*webdriver.Element, error) {
	p := applyWait(opts)
	h, err := e.waitClickable(p)
	return e.suppressHandle(h, err, p)
}

// WaitUnclickable waits until the element is not both displayed and
// enabled, with the same mustBePresent rules as WaitInvisible.
func (e *Element) WaitUnclickable(mustBePresent bool, opts ...WaitOption) (bool, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return false, err
	}
	timeout := e.resolveTimeout(p)
	if h := e.cachedHandle(); h != nil {
		got, err := poll(timeout, pollInterval(), unclickableHandle(h, mustBePresent))
		if err == nil {
			if got == nil {
				e.invalidate()
			}
			return true, nil
		}
		if !webdriver.IsStale(err) {
			return e.suppressBool(false, e.mapTimeout("unclickable", err, timeout), p)
		}
		e.invalidate()
	}
	got, err := poll(timeout, pollInterval(), unclickableLocated(c, e.strategy, e.value, e.opts.index, mustBePresent))
	if err != nil {
		return e.suppressBool(false, e.mapTimeout("unclickable", err, timeout), p)
	}
	if got != nil {
		e.storePresent(got)
	}
	return true, nil
}

// WaitSelected waits until the element is selected.
func (e *Element) WaitSelected(opts ...WaitOption) (*webdriver.Element, error) {
	return e.waitSelection(true, "selected", opts)
}

// WaitUnselected waits until the element is not selected.
func (e *Element) WaitUnselected(opts ...WaitOption) (*webdriver.Element, error) {
	return e.waitSelection(false, "unselected", opts)
}

func (e *Element) waitSelection(want bool, state string, opts []WaitOption) (*webdriver.Element, error) {
	p := applyWait(opts)
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	timeout := e.resolveTimeout(p)
	if h := e.cachedHandle(); h != nil {
		got, err := poll(timeout, pollInterval(), selectedHandle(h, want))
		if err == nil {
			return got, nil
		}
		if !webdriver.IsStale(err) {
			return e.suppressHandle(nil, e.mapTimeout(state, err, timeout), p)
		}
		e.invalidate()
	}
	got, err := poll(timeout, pollInterval(), selectedLocated(c, e.strategy, e.value, e.opts.index, want))
	if err != nil {
		return e.suppressHandle(nil, e.mapTimeout(state, err, timeout), p)
	}
	e.storePresent(got)
	return got, nil
}

// Exists reports whether the locator matches right now, without
// waiting.
func (e *Element) Exists() bool {
	c, err := e.client()
	if err != nil {
		return false
	}
	_, err = findByIndex(c, e.strategy, e.value, e.opts.index)
	return err == nil
}

// IsViewable reports whether the element becomes visible within a short
// probe window (one second unless overridden). It never returns an
// error; driver failures are logged and reported as not viewable.
func (e *Element) IsViewable(opts ...WaitOption) bool {
	return e.stateProbe("viewable", opts, e.waitVisible)
}

// IsPresent reports whether the element appears in the tree within a
// short probe window.
func (e *Element) IsPresent(opts ...WaitOption) bool {
	return e.stateProbe("present", opts, e.waitPresent)
}

// IsClickable reports whether the element becomes clickable within a
// short probe window.
func (e *Element) IsClickable(opts ...WaitOption) bool {
	return e.stateProbe("clickable", opts, e.waitClickable)
}

func (e *Element) stateProbe(state string, opts []WaitOption, wait func(waitParams) (*webdriver.Element, error)) bool {
	p := applyWait(opts)
	if p.timeout == nil {
		d := time.Second
		p.timeout = &d
	}
	h, err := wait(p)
	if err != nil {
		if !IsTimeout(err) {
			e.log.Warn("%s probe failed: %v", state, err)
		}
		return false
	}
	return h != nil
}
