package webdriver

import (
	"encoding/base64"
	"fmt"
)

// Element is a handle to a located UI element. Handles go stale when the
// underlying view is rebuilt; operations then return a stale element
// reference error and the caller must relocate.
type Element struct {
	id     string
	client *Client
}

// AttachElement builds a handle for a known element ID, for callers
// that carry IDs across invocations.
func AttachElement(c *Client, id string) *Element {
	return &Element{id: id, client: c}
}

// ID returns the element ID.
func (e *Element) ID() string {
	return e.id
}

// Click clicks the element using the WebDriver standard endpoint.
func (e *Element) Click() error {
	_, err := e.client.post(e.client.elementPath(e.id)+"/click", nil)
	return err
}

// Clear clears the element's text.
func (e *Element) Clear() error {
	_, err := e.client.post(e.client.elementPath(e.id)+"/clear", nil)
	return err
}

// SendKeys types text into the element.
func (e *Element) SendKeys(text string) error {
	_, err := e.client.post(e.client.elementPath(e.id)+"/value", map[string]interface{}{
		"text": text,
	})
	return err
}

// Submit submits the form the element belongs to.
func (e *Element) Submit() error {
	_, err := e.client.post(e.client.elementPath(e.id)+"/submit", nil)
	return err
}

// Text returns the element's text content.
func (e *Element) Text() (string, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/text")
	if err != nil {
		return "", err
	}
	text, _ := resp["value"].(string)
	return text, nil
}

// TagName returns the element's tag name.
func (e *Element) TagName() (string, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/name")
	if err != nil {
		return "", err
	}
	name, _ := resp["value"].(string)
	return name, nil
}

// Attribute returns an attribute declared in the element's markup.
func (e *Element) Attribute(name string) (string, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/attribute/" + name)
	if err != nil {
		return "", err
	}
	value, _ := resp["value"].(string)
	return value, nil
}

// Property returns a live element property.
func (e *Element) Property(name string) (interface{}, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/property/" + name)
	if err != nil {
		return nil, err
	}
	return resp["value"], nil
}

// CSSValue returns the computed value of a CSS property.
func (e *Element) CSSValue(name string) (string, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/css/" + name)
	if err != nil {
		return "", err
	}
	value, _ := resp["value"].(string)
	return value, nil
}

// Rect returns the element's position and size.
func (e *Element) Rect() (Rect, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/rect")
	if err != nil {
		return Rect{}, err
	}
	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return Rect{}, fmt.Errorf("invalid rect response")
	}
	return rectFromValue(value), nil
}

// Displayed checks if the element is visible.
func (e *Element) Displayed() (bool, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/displayed")
	if err != nil {
		return false, err
	}
	displayed, _ := resp["value"].(bool)
	return displayed, nil
}

// Enabled checks if the element is enabled.
func (e *Element) Enabled() (bool, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/enabled")
	if err != nil {
		return false, err
	}
	enabled, _ := resp["value"].(bool)
	return enabled, nil
}

// Selected checks if the element is selected.
func (e *Element) Selected() (bool, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/selected")
	if err != nil {
		return false, err
	}
	selected, _ := resp["value"].(bool)
	return selected, nil
}

// Screenshot captures just this element as PNG bytes.
func (e *Element) Screenshot() ([]byte, error) {
	resp, err := e.client.get(e.client.elementPath(e.id) + "/screenshot")
	if err != nil {
		return nil, err
	}
	encoded, ok := resp["value"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid screenshot response")
	}
	return base64.StdEncoding.DecodeString(encoded)
}
