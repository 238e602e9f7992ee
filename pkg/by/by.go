// Package by defines the locator strategies understood by WebDriver-based
// automation servers, covering both the W3C strategies and the Appium
// mobile extensions.
package by

// W3C WebDriver locator strategies.
const (
	CSSSelector     = "css selector"
	LinkText        = "link text"
	PartialLinkText = "partial link text"
	TagName         = "tag name"
	XPath           = "xpath"
	ID              = "id"
	Name            = "name"
	ClassName       = "class name"
)

// Appium locator strategies.
const (
	AccessibilityID    = "accessibility id"
	AndroidUIAutomator = "-android uiautomator"
	AndroidViewTag     = "-android viewtag"
	AndroidDataMatcher = "-android datamatcher"
	AndroidViewMatcher = "-android viewmatcher"
	IOSPredicate       = "-ios predicate string"
	IOSClassChain      = "-ios class chain"
	Image              = "-image"
	Custom             = "-custom"
)

var strategies = []string{
	CSSSelector,
	LinkText,
	PartialLinkText,
	TagName,
	XPath,
	ID,
	Name,
	ClassName,
	AccessibilityID,
	AndroidUIAutomator,
	AndroidViewTag,
	AndroidDataMatcher,
	AndroidViewMatcher,
	IOSPredicate,
	IOSClassChain,
	Image,
	Custom,
}

// Valid reports whether the strategy is one of the known locator strategies.
func Valid(strategy string) bool {
	for _, s := range strategies {
		if s == strategy {
			return true
		}
	}
	return false
}

// Strategies returns all known locator strategies.
func Strategies() []string {
	out := make([]string, len(strategies))
	copy(out, strategies)
	return out
}
