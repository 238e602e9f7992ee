package page

import (
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// findByIndex locates an element with find-element semantics, or
// find-elements-then-index when index >= 0. An index beyond the match
// count is treated as element-not-found.
func findByIndex(c *webdriver.Client, by, value string, index int) (*webdriver.Element, error) {
	if index < 0 {
		return c.FindElement(by, value)
	}
	elems, err := c.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if index >= len(elems) {
		return nil, webdriver.ErrNoSuchElement.WithDetails(map[string]interface{}{
			"using": by, "value": value, "index": index,
		})
	}
	return elems[index], nil
}

// retryable reports driver states a locator-based condition polls through.
func retryable(err error) bool {
	return webdriver.IsNoSuchElement(err) || webdriver.IsStale(err)
}

// presentLocated waits for the locator to match.
func presentLocated(c *webdriver.Client, by, value string, index int) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		h, err := findByIndex(c, by, value, index)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return h, true, nil
	}
}

// absentLocated waits for the locator to match nothing.
func absentLocated(c *webdriver.Client, by, value string, index int) pollFn[bool] {
	return func() (bool, bool, error) {
		_, err := findByIndex(c, by, value, index)
		if err != nil {
			if retryable(err) {
				return true, true, nil
			}
			return false, false, err
		}
		return false, false, nil
	}
}

// visibleLocated waits for a located element to be displayed.
func visibleLocated(c *webdriver.Client, by, value string, index int) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		h, err := findByIndex(c, by, value, index)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		displayed, err := h.Displayed()
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if !displayed {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// visibleHandle waits for a known handle to be displayed. Staleness is
// surfaced so the caller can fall back to the locator-based condition.
func visibleHandle(h *webdriver.Element) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		displayed, err := h.Displayed()
		if err != nil {
			return nil, false, err
		}
		if !displayed {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// invisibleLocated waits for a located element to not be displayed.
// With mustBePresent the element has to exist (done carries the handle);
// otherwise absence also satisfies the condition (done carries nil).
func invisibleLocated(c *webdriver.Client, by, value string, index int, mustBePresent bool) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		h, err := findByIndex(c, by, value, index)
		if err != nil {
			if retryable(err) {
				if mustBePresent {
					return nil, false, nil
				}
				return nil, true, nil
			}
			return nil, false, err
		}
		displayed, err := h.Displayed()
		if err != nil {
			if retryable(err) {
				if mustBePresent {
					return nil, false, nil
				}
				return nil, true, nil
			}
			return nil, false, err
		}
		if displayed {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// invisibleHandle waits for a known handle to not be displayed.
// Staleness is surfaced when the element must be present, otherwise it
// satisfies the condition.
func invisibleHandle(h *webdriver.Element, mustBePresent bool) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		displayed, err := h.Displayed()
		if err != nil {
			if webdriver.IsStale(err) && !mustBePresent {
				return nil, true, nil
			}
			return nil, false, err
		}
		if displayed {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// clickableLocated waits for a located element to be displayed and enabled.
func clickableLocated(c *webdriver.Client, by, value string, index int) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		h, err := findByIndex(c, by, value, index)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		ok, err := handleClickable(h)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// clickableHandle waits for a known handle to be displayed and enabled.
func clickableHandle(h *webdriver.Element) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		ok, err := handleClickable(h)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// unclickableLocated mirrors clickableLocated with the present flag rules
// of invisibleLocated.
func unclickableLocated(c *webdriver.Client, by, value string, index int, mustBePresent bool) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		h, err := findByIndex(c, by, value, index)
		if err != nil {
			if retryable(err) {
				if mustBePresent {
					return nil, false, nil
				}
				return nil, true, nil
			}
			return nil, false, err
		}
		ok, err := handleClickable(h)
		if err != nil {
			if retryable(err) {
				if mustBePresent {
					return nil, false, nil
				}
				return nil, true, nil
			}
			return nil, false, err
		}
		if ok {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// unclickableHandle mirrors clickableHandle with the present flag rules.
func unclickableHandle(h *webdriver.Element, mustBePresent bool) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		ok, err := handleClickable(h)
		if err != nil {
			if webdriver.IsStale(err) && !mustBePresent {
				return nil, true, nil
			}
			return nil, false, err
		}
		if ok {
			return nil, false, nil
		}
		return h, true, nil
	}
}

func handleClickable(h *webdriver.Element) (bool, error) {
	displayed, err := h.Displayed()
	if err != nil {
		return false, err
	}
	if !displayed {
		return false, nil
	}
	return h.Enabled()
}

// selectedLocated waits for a located element to be selected; want=false
// waits for unselected.
func selectedLocated(c *webdriver.Client, by, value string, index int, want bool) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		h, err := findByIndex(c, by, value, index)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		selected, err := h.Selected()
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if selected != want {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// selectedHandle is the handle variant of selectedLocated.
func selectedHandle(h *webdriver.Element, want bool) pollFn[*webdriver.Element] {
	return func() (*webdriver.Element, bool, error) {
		selected, err := h.Selected()
		if err != nil {
			return nil, false, err
		}
		if selected != want {
			return nil, false, nil
		}
		return h, true, nil
	}
}

// allPresentLocated waits for the locator to match at least one element.
func allPresentLocated(c *webdriver.Client, by, value string) pollFn[[]*webdriver.Element] {
	return func() ([]*webdriver.Element, bool, error) {
		elems, err := c.FindElements(by, value)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if len(elems) == 0 {
			return nil, false, nil
		}
		return elems, true, nil
	}
}

// allAbsentLocated waits for the locator to match nothing.
func allAbsentLocated(c *webdriver.Client, by, value string) pollFn[bool] {
	return func() (bool, bool, error) {
		elems, err := c.FindElements(by, value)
		if err != nil {
			if retryable(err) {
				return true, true, nil
			}
			return false, false, err
		}
		if len(elems) != 0 {
			return false, false, nil
		}
		return true, true, nil
	}
}

// allVisibleLocated waits for every match to be displayed.
func allVisibleLocated(c *webdriver.Client, by, value string) pollFn[[]*webdriver.Element] {
	return func() ([]*webdriver.Element, bool, error) {
		elems, err := c.FindElements(by, value)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if len(elems) == 0 {
			return nil, false, nil
		}
		for _, h := range elems {
			displayed, err := h.Displayed()
			if err != nil {
				if retryable(err) {
					return nil, false, nil
				}
				return nil, false, err
			}
			if !displayed {
				return nil, false, nil
			}
		}
		return elems, true, nil
	}
}

// anyVisibleLocated waits until at least one match is displayed and
// yields the visible subset.
func anyVisibleLocated(c *webdriver.Client, by, value string) pollFn[[]*webdriver.Element] {
	return func() ([]*webdriver.Element, bool, error) {
		elems, err := c.FindElements(by, value)
		if err != nil {
			if retryable(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		var visible []*webdriver.Element
		for _, h := range elems {
			displayed, err := h.Displayed()
			if err != nil {
				if retryable(err) {
					return nil, false, nil
				}
				return nil, false, err
			}
			if displayed {
				visible = append(visible, h)
			}
		}
		if len(visible) == 0 {
			return nil, false, nil
		}
		return visible, true, nil
	}
}
