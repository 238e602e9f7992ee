// Package webdriver implements a W3C WebDriver session client for browser
// and mobile automation servers (Selenium, Appium, UiAutomator2).
package webdriver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// W3C WebDriver element identifier key (standard constant)
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Rect is a position and size in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a screen coordinate in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Client handles HTTP communication with a WebDriver server.
type Client struct {
	serverURL string
	sessionID string
	client    *http.Client
	platform  string // ios, android, or empty for browsers
	screenW   int
	screenH   int
}

// NewClient creates a client for the given server URL.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for install/screenshot
		},
	}
}

// NewSession creates a new session with the given capabilities.
func (c *Client) NewSession(capabilities map[string]interface{}) error {
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}

	resp, err := c.post("/session", body)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid session response")
	}

	c.sessionID, _ = value["sessionId"].(string)
	if c.sessionID == "" {
		return fmt.Errorf("no session ID in response")
	}

	if caps, ok := value["capabilities"].(map[string]interface{}); ok {
		if platform, ok := caps["platformName"].(string); ok {
			c.platform = strings.ToLower(platform)
		}
	}

	c.fetchScreenSize()

	logger.Debug("session %s created (platform=%s, screen=%dx%d)",
		c.sessionID, c.platform, c.screenW, c.screenH)
	return nil
}

// AttachSession adopts an already-running session.
func (c *Client) AttachSession(sessionID string) {
	c.sessionID = sessionID
	c.fetchScreenSize()
}

// DeleteSession closes the session.
func (c *Client) DeleteSession() error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.delete(c.sessionPath())
	c.sessionID = ""
	return err
}

// SessionID returns the current session ID.
func (c *Client) SessionID() string {
	return c.sessionID
}

// HasSession returns true if a session is active.
func (c *Client) HasSession() bool {
	return c.sessionID != ""
}

// Platform returns the platform (ios/android, empty for browsers).
func (c *Client) Platform() string {
	return c.platform
}

// ScreenSize returns the screen dimensions.
func (c *Client) ScreenSize() (int, int) {
	return c.screenW, c.screenH
}

// Status returns the server status value.
func (c *Client) Status() (map[string]interface{}, error) {
	resp, err := c.get("/status")
	if err != nil {
		return nil, err
	}
	value, _ := resp["value"].(map[string]interface{})
	return value, nil
}

func (c *Client) fetchScreenSize() {
	rect, err := c.WindowRect()
	if err != nil {
		return
	}
	c.screenW = rect.Width
	c.screenH = rect.Height
}

// WindowRect returns the current window position and size.
func (c *Client) WindowRect() (Rect, error) {
	resp, err := c.get(c.sessionPath() + "/window/rect")
	if err != nil {
		return Rect{}, err
	}
	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return Rect{}, fmt.Errorf("invalid window rect response")
	}
	return rectFromValue(value), nil
}

// Element Operations

// FindElement finds a single element.
func (c *Client) FindElement(strategy, value string) (*Element, error) {
	if c.sessionID == "" {
		return nil, ErrNoSession
	}
	body := map[string]interface{}{
		"using": strategy,
		"value": value,
	}

	resp, err := c.post(c.sessionPath()+"/element", body)
	if err != nil {
		return nil, err
	}

	elemValue, ok := resp["value"].(map[string]interface{})
	if !ok {
		return nil, ErrNoSuchElement.WithDetails(map[string]interface{}{
			"using": strategy, "value": value,
		})
	}

	id := extractElementID(elemValue)
	if id == "" {
		return nil, ErrNoSuchElement.WithDetails(map[string]interface{}{
			"using": strategy, "value": value,
		})
	}
	return &Element{id: id, client: c}, nil
}

// FindElements finds multiple elements. A locator matching nothing yields
// an empty slice, not an error.
func (c *Client) FindElements(strategy, value string) ([]*Element, error) {
	if c.sessionID == "" {
		return nil, ErrNoSession
	}
	body := map[string]interface{}{
		"using": strategy,
		"value": value,
	}

	resp, err := c.post(c.sessionPath()+"/elements", body)
	if err != nil {
		return nil, err
	}

	values, ok := resp["value"].([]interface{})
	if !ok {
		return nil, nil
	}

	var elements []*Element
	for _, v := range values {
		if elem, ok := v.(map[string]interface{}); ok {
			if id := extractElementID(elem); id != "" {
				elements = append(elements, &Element{id: id, client: c})
			}
		}
	}
	return elements, nil
}

// ActiveElement returns the currently focused element.
func (c *Client) ActiveElement() (*Element, error) {
	resp, err := c.get(c.sessionPath() + "/element/active")
	if err != nil {
		return nil, err
	}
	if value, ok := resp["value"].(map[string]interface{}); ok {
		if id := extractElementID(value); id != "" {
			return &Element{id: id, client: c}, nil
		}
	}
	return nil, fmt.Errorf("no active element")
}

// Screen Operations

// Screenshot returns a screenshot as PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	resp, err := c.get(c.sessionPath() + "/screenshot")
	if err != nil {
		return nil, err
	}
	encoded, ok := resp["value"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid screenshot response")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// Source returns the page source.
func (c *Client) Source() (string, error) {
	resp, err := c.get(c.sessionPath() + "/source")
	if err != nil {
		return "", err
	}
	source, _ := resp["value"].(string)
	return source, nil
}

// Navigation

// OpenURL opens a URL (deep link on mobile, navigation in browsers).
func (c *Client) OpenURL(url string) error {
	_, err := c.post(c.sessionPath()+"/url", map[string]interface{}{
		"url": url,
	})
	return err
}

// CurrentURL returns the current URL.
func (c *Client) CurrentURL() (string, error) {
	resp, err := c.get(c.sessionPath() + "/url")
	if err != nil {
		return "", err
	}
	url, _ := resp["value"].(string)
	return url, nil
}

// Title returns the current page title.
func (c *Client) Title() (string, error) {
	resp, err := c.get(c.sessionPath() + "/title")
	if err != nil {
		return "", err
	}
	title, _ := resp["value"].(string)
	return title, nil
}

// Back navigates back.
func (c *Client) Back() error {
	_, err := c.post(c.sessionPath()+"/back", nil)
	return err
}

// Refresh reloads the current page.
func (c *Client) Refresh() error {
	_, err := c.post(c.sessionPath()+"/refresh", nil)
	return err
}

// SwitchToFrame switches the browsing context to the frame at index.
func (c *Client) SwitchToFrame(index int) error {
	_, err := c.post(c.sessionPath()+"/frame", map[string]interface{}{
		"id": index,
	})
	return err
}

// SwitchToParentFrame switches the browsing context to the parent frame.
func (c *Client) SwitchToParentFrame() error {
	_, err := c.post(c.sessionPath()+"/frame/parent", nil)
	return err
}

// PressKeyCode presses a key by keycode (Android).
func (c *Client) PressKeyCode(keycode int) error {
	_, err := c.post(c.sessionPath()+"/appium/device/press_keycode", map[string]interface{}{
		"keycode": keycode,
	})
	return err
}

// HideKeyboard hides the on-screen keyboard.
func (c *Client) HideKeyboard() error {
	_, err := c.post(c.sessionPath()+"/appium/device/hide_keyboard", nil)
	return err
}

// Orientation

// Orientation returns the current orientation.
func (c *Client) Orientation() (string, error) {
	resp, err := c.get(c.sessionPath() + "/orientation")
	if err != nil {
		return "", err
	}
	orientation, _ := resp["value"].(string)
	return strings.ToLower(orientation), nil
}

// SetOrientation sets the orientation.
func (c *Client) SetOrientation(orientation string) error {
	_, err := c.post(c.sessionPath()+"/orientation", map[string]interface{}{
		"orientation": strings.ToUpper(orientation),
	})
	return err
}

// App Management

// ActivateApp activates an app.
func (c *Client) ActivateApp(appID string) error {
	body := make(map[string]interface{})
	if c.platform == "ios" {
		body["bundleId"] = appID
	} else {
		body["appId"] = appID
	}
	_, err := c.post(c.sessionPath()+"/appium/device/activate_app", body)
	return err
}

// TerminateApp terminates an app.
func (c *Client) TerminateApp(appID string) error {
	body := make(map[string]interface{})
	if c.platform == "ios" {
		body["bundleId"] = appID
	} else {
		body["appId"] = appID
	}
	_, err := c.post(c.sessionPath()+"/appium/device/terminate_app", body)
	return err
}

// Clipboard

// Clipboard returns clipboard text.
func (c *Client) Clipboard() (string, error) {
	resp, err := c.post(c.sessionPath()+"/appium/device/get_clipboard", map[string]interface{}{
		"contentType": "plaintext",
	})
	if err != nil {
		return "", err
	}
	encoded, _ := resp["value"].(string)
	decoded, _ := base64.StdEncoding.DecodeString(encoded)
	return string(decoded), nil
}

// SetClipboard sets clipboard text.
func (c *Client) SetClipboard(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := c.post(c.sessionPath()+"/appium/device/set_clipboard", map[string]interface{}{
		"content":     encoded,
		"contentType": "plaintext",
	})
	return err
}

// Timeouts & Settings

// SetImplicitWait sets the implicit wait timeout.
func (c *Client) SetImplicitWait(timeout time.Duration) error {
	_, err := c.post(c.sessionPath()+"/timeouts", map[string]interface{}{
		"implicit": timeout.Milliseconds(),
	})
	return err
}

// SetSettings updates Appium driver settings.
// For Android UiAutomator2: waitForIdleTimeout, waitForSelectorTimeout
// For iOS XCUITest: snapshotMaxDepth, customSnapshotTimeout
func (c *Client) SetSettings(settings map[string]interface{}) error {
	_, err := c.post(c.sessionPath()+"/appium/settings", map[string]interface{}{
		"settings": settings,
	})
	return err
}

// Scripts

// ExecuteScript runs synchronous script on the session.
func (c *Client) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	if args == nil {
		args = []interface{}{}
	}
	resp, err := c.post(c.sessionPath()+"/execute/sync", map[string]interface{}{
		"script": script,
		"args":   args,
	})
	if err != nil {
		return nil, err
	}
	return resp["value"], nil
}

// ExecuteMobile executes a mobile: command.
func (c *Client) ExecuteMobile(command string, args map[string]interface{}) (interface{}, error) {
	return c.ExecuteScript("mobile: "+command, args)
}

// HTTP Helpers

func (c *Client) sessionPath() string {
	return "/session/" + c.sessionID
}

func (c *Client) elementPath(elementID string) string {
	return c.sessionPath() + "/element/" + elementID
}

func (c *Client) get(path string) (map[string]interface{}, error) {
	return c.request("GET", path, nil)
}

func (c *Client) post(path string, body interface{}) (map[string]interface{}, error) {
	return c.request("POST", path, body)
}

func (c *Client) delete(path string) (map[string]interface{}, error) {
	return c.request("DELETE", path, nil)
}

func (c *Client) request(method, path string, body interface{}) (map[string]interface{}, error) {
	url := c.serverURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ErrServerUnreachable.WithCause(err)
	}
	if resp == nil {
		return nil, ErrServerUnreachable.WithMessage("nil response from server")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for WebDriver error
	if errValue, ok := result["value"].(map[string]interface{}); ok {
		if errType, ok := errValue["error"].(string); ok {
			message, _ := errValue["message"].(string)
			return result, wireError(errType, message)
		}
	}

	return result, nil
}

func extractElementID(value map[string]interface{}) string {
	// W3C format
	if id, ok := value[w3cElementKey].(string); ok {
		return id
	}
	// Legacy format
	if id, ok := value["ELEMENT"].(string); ok {
		return id
	}
	return ""
}

func rectFromValue(value map[string]interface{}) Rect {
	num := func(key string) int {
		f, _ := value[key].(float64)
		return int(f)
	}
	return Rect{
		X:      num("x"),
		Y:      num("y"),
		Width:  num("width"),
		Height: num("height"),
	}
}
