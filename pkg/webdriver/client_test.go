package webdriver

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// writeJSON encodes data as JSON to the response writer.
func writeJSON(w http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func TestClient_NewSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session" && r.Method == "POST" {
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					"sessionId": "test-session-123",
					"capabilities": map[string]interface{}{
						"platformName":    "Android",
						"platformVersion": "14",
					},
				},
			})
			return
		}
		if r.URL.Path == "/session/test-session-123/window/rect" {
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					"width":  1080.0,
					"height": 1920.0,
				},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.NewSession(map[string]interface{}{
		"platformName": "Android",
	})

	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	if client.SessionID() != "test-session-123" {
		t.Errorf("Expected sessionID 'test-session-123', got '%s'", client.SessionID())
	}

	if client.Platform() != "android" {
		t.Errorf("Expected platform 'android', got '%s'", client.Platform())
	}

	w, h := client.ScreenSize()
	if w != 1080 || h != 1920 {
		t.Errorf("Expected screen size 1080x1920, got %dx%d", w, h)
	}
}

func TestClient_DeleteSession(t *testing.T) {
	deleteCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session" && r.Method == "DELETE" {
			deleteCalled = true
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	err := client.DeleteSession()
	if err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if !deleteCalled {
		t.Error("DELETE /session was not called")
	}

	if client.HasSession() {
		t.Error("session should be cleared after DeleteSession")
	}
}

func TestClient_FindElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/element" && r.Method == "POST" {
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			if body["using"] != "accessibility id" || body["value"] != "myButton" {
				t.Errorf("unexpected locator: %v", body)
			}
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					"element-6066-11e4-a52e-4f735466cecf": "elem-123",
				},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	elem, err := client.FindElement("accessibility id", "myButton")
	if err != nil {
		t.Fatalf("FindElement failed: %v", err)
	}
	if elem.ID() != "elem-123" {
		t.Errorf("Expected element ID 'elem-123', got '%s'", elem.ID())
	}
}

func TestClient_FindElementLegacyFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{"ELEMENT": "legacy-42"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	elem, err := client.FindElement("xpath", "//old")
	if err != nil {
		t.Fatalf("FindElement failed: %v", err)
	}
	if elem.ID() != "legacy-42" {
		t.Errorf("Expected legacy element ID 'legacy-42', got '%s'", elem.ID())
	}
}

func TestClient_FindElementNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{
				"error":   "no such element",
				"message": "An element could not be located",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	_, err := client.FindElement("id", "missing")
	if err == nil {
		t.Fatal("FindElement should fail")
	}
	if !IsNoSuchElement(err) {
		t.Errorf("expected no such element error, got %v", err)
	}
}

func TestClient_FindElementWithoutSession(t *testing.T) {
	client := NewClient("http://localhost:1")
	if _, err := client.FindElement("id", "x"); err != ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestClient_FindElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/elements" {
			writeJSON(w, map[string]interface{}{
				"value": []interface{}{
					map[string]interface{}{"element-6066-11e4-a52e-4f735466cecf": "e1"},
					map[string]interface{}{"element-6066-11e4-a52e-4f735466cecf": "e2"},
				},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	elems, err := client.FindElements("class name", "android.widget.Button")
	if err != nil {
		t.Fatalf("FindElements failed: %v", err)
	}
	if len(elems) != 2 || elems[0].ID() != "e1" || elems[1].ID() != "e2" {
		t.Errorf("unexpected elements: %v", elems)
	}
}

func TestClient_Screenshot(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s/screenshot" {
			writeJSON(w, map[string]interface{}{
				"value": base64.StdEncoding.EncodeToString(png),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "s"

	data, err := client.Screenshot()
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if string(data) != string(png) {
		t.Errorf("screenshot bytes mismatch: %v", data)
	}
}

func TestClient_WindowRect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{
				"x": 0.0, "y": 0.0, "width": 393.0, "height": 851.0,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "s"

	rect, err := client.WindowRect()
	if err != nil {
		t.Fatalf("WindowRect failed: %v", err)
	}
	want := Rect{X: 0, Y: 0, Width: 393, Height: 851}
	if rect != want {
		t.Errorf("WindowRect = %+v, want %+v", rect, want)
	}
}

func TestClient_SetImplicitWait(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s/timeouts" {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("bad body: %v", err)
			}
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "s"

	if err := client.SetImplicitWait(2 * time.Second); err != nil {
		t.Fatalf("SetImplicitWait failed: %v", err)
	}
	if got["implicit"] != 2000.0 {
		t.Errorf("implicit = %v, want 2000", got["implicit"])
	}
}

func TestClient_Clipboard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s/appium/device/get_clipboard" {
			writeJSON(w, map[string]interface{}{
				"value": base64.StdEncoding.EncodeToString([]byte("copied")),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "s"

	text, err := client.Clipboard()
	if err != nil {
		t.Fatalf("Clipboard failed: %v", err)
	}
	if text != "copied" {
		t.Errorf("Clipboard = %q, want %q", text, "copied")
	}
}

func TestClient_ServerUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	client.sessionID = "s"

	_, err := client.Source()
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !hasCode(err, "server_unreachable") {
		t.Errorf("expected server_unreachable error, got %v", err)
	}
}
