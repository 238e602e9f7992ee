package webdriver

import "fmt"

// Touch/Gesture Operations (W3C Actions)

func (c *Client) performTouchAction(actions []map[string]interface{}) error {
	payload := []map[string]interface{}{
		{
			"type":       "pointer",
			"id":         "finger1",
			"parameters": map[string]interface{}{"pointerType": "touch"},
			"actions":    actions,
		},
	}
	return c.performActions(payload)
}

func (c *Client) performActions(payload []map[string]interface{}) error {
	_, err := c.post(c.sessionPath()+"/actions", map[string]interface{}{"actions": payload})
	return err
}

// TapAt performs a tap at coordinates.
func (c *Client) TapAt(x, y int) error {
	return c.performTouchAction([]map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y, "origin": "viewport"},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": 50},
		{"type": "pointerUp", "button": 0},
	})
}

// Tap taps all given positions at once, one finger per position, holding
// for duration ms. Up to five fingers.
func (c *Client) Tap(positions []Point, durationMs int) error {
	if len(positions) == 0 {
		return fmt.Errorf("no tap positions given")
	}
	if len(positions) > 5 {
		return fmt.Errorf("at most 5 tap positions, got %d", len(positions))
	}
	if durationMs <= 0 {
		durationMs = 100
	}

	payload := make([]map[string]interface{}, len(positions))
	for i, pos := range positions {
		payload[i] = map[string]interface{}{
			"type":       "pointer",
			"id":         fmt.Sprintf("finger%d", i+1),
			"parameters": map[string]interface{}{"pointerType": "touch"},
			"actions": []map[string]interface{}{
				{"type": "pointerMove", "duration": 0, "x": pos.X, "y": pos.Y, "origin": "viewport"},
				{"type": "pointerDown", "button": 0},
				{"type": "pause", "duration": durationMs},
				{"type": "pointerUp", "button": 0},
			},
		}
	}
	return c.performActions(payload)
}

// TapElement performs a tap on an element with element origin.
func (c *Client) TapElement(elementID string) error {
	return c.performTouchAction([]map[string]interface{}{
		{
			"type":     "pointerMove",
			"duration": 0,
			"x":        0,
			"y":        0,
			"origin":   map[string]interface{}{w3cElementKey: elementID},
		},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": 50},
		{"type": "pointerUp", "button": 0},
	})
}

// DoubleTap performs a double tap at coordinates.
func (c *Client) DoubleTap(x, y int) error {
	return c.performTouchAction([]map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerUp", "button": 0},
		{"type": "pause", "duration": 100},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerUp", "button": 0},
	})
}

// LongPress performs a long press at coordinates.
func (c *Client) LongPress(x, y, durationMs int) error {
	return c.performTouchAction([]map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": durationMs},
		{"type": "pointerUp", "button": 0},
	})
}

// Swipe performs a swipe gesture, taking durationMs to travel.
func (c *Client) Swipe(startX, startY, endX, endY, durationMs int) error {
	return c.performTouchAction([]map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": startX, "y": startY},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerMove", "duration": durationMs, "x": endX, "y": endY},
		{"type": "pointerUp", "button": 0},
	})
}

// Flick performs a fast swipe; the move is compressed to 50ms so the
// platform interprets it as a fling.
func (c *Client) Flick(startX, startY, endX, endY int) error {
	return c.Swipe(startX, startY, endX, endY, 50)
}

// DragAndDrop holds on the source element, pauses, then moves to the
// target element and releases.
func (c *Client) DragAndDrop(sourceID, targetID string, pauseMs int) error {
	if pauseMs <= 0 {
		pauseMs = 600
	}
	return c.performTouchAction([]map[string]interface{}{
		{
			"type":     "pointerMove",
			"duration": 0,
			"x":        0,
			"y":        0,
			"origin":   map[string]interface{}{w3cElementKey: sourceID},
		},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": pauseMs},
		{
			"type":     "pointerMove",
			"duration": 600,
			"x":        0,
			"y":        0,
			"origin":   map[string]interface{}{w3cElementKey: targetID},
		},
		{"type": "pointerUp", "button": 0},
	})
}

// Scroll drags from the source element to the target element without the
// long-press pause, so the gesture reads as a scroll rather than a drag.
func (c *Client) Scroll(sourceID, targetID string, durationMs int) error {
	if durationMs <= 0 {
		durationMs = 600
	}
	return c.performTouchAction([]map[string]interface{}{
		{
			"type":     "pointerMove",
			"duration": 0,
			"x":        0,
			"y":        0,
			"origin":   map[string]interface{}{w3cElementKey: sourceID},
		},
		{"type": "pointerDown", "button": 0},
		{
			"type":     "pointerMove",
			"duration": durationMs,
			"x":        0,
			"y":        0,
			"origin":   map[string]interface{}{w3cElementKey: targetID},
		},
		{"type": "pointerUp", "button": 0},
	})
}

// DrawLines draws through the dots in order with one continuous stroke.
// Each segment takes durationMs (minimum 250ms, the ActionBuilder default).
func (c *Client) DrawLines(dots []Point, durationMs int) error {
	if len(dots) < 2 {
		return fmt.Errorf("drawing needs at least 2 dots, got %d", len(dots))
	}
	if durationMs < 250 {
		durationMs = 250
	}

	actions := []map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": dots[0].X, "y": dots[0].Y},
		{"type": "pointerDown", "button": 0},
	}
	for _, dot := range dots[1:] {
		actions = append(actions, map[string]interface{}{
			"type": "pointerMove", "duration": durationMs, "x": dot.X, "y": dot.Y,
		})
	}
	actions = append(actions, map[string]interface{}{"type": "pointerUp", "button": 0})
	return c.performTouchAction(actions)
}

// DrawGesture draws a nine-box unlock gesture. Dots are the nine grid
// positions in order 1..9 (left to right, top to bottom); pattern names
// the dots to visit, e.g. "1235789" draws a Z.
func (c *Client) DrawGesture(dots []Point, pattern string, durationMs int) error {
	if len(dots) != 9 {
		return fmt.Errorf("nine-box gesture needs 9 dots, got %d", len(dots))
	}
	if len(pattern) < 2 {
		return fmt.Errorf("gesture pattern needs at least 2 dots, got %q", pattern)
	}

	path := make([]Point, 0, len(pattern))
	for _, r := range pattern {
		if r < '1' || r > '9' {
			return fmt.Errorf("gesture pattern digit out of range: %q", r)
		}
		path = append(path, dots[r-'1'])
	}
	return c.DrawLines(path, durationMs)
}

// SendKeysActive sends text to the active element via key actions, with
// the Appium element value endpoint as a fallback.
func (c *Client) SendKeysActive(text string) error {
	var keyActions []map[string]interface{}
	for _, ch := range text {
		keyActions = append(keyActions,
			map[string]interface{}{"type": "keyDown", "value": string(ch)},
			map[string]interface{}{"type": "keyUp", "value": string(ch)},
		)
	}

	err := c.performActions([]map[string]interface{}{
		{
			"type":    "key",
			"id":      "keyboard",
			"actions": keyActions,
		},
	})
	if err != nil {
		// Fallback: Appium element value endpoint
		_, err = c.post(c.sessionPath()+"/appium/element/active/value", map[string]interface{}{
			"text": text,
		})
	}
	return err
}
