package page

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/by"
	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// writeJSON encodes data as JSON to the response writer.
func writeJSON(w http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeValue(w http.ResponseWriter, value interface{}) {
	writeJSON(w, map[string]interface{}{"value": value})
}

func writeWireError(w http.ResponseWriter, code string) {
	writeJSON(w, map[string]interface{}{
		"value": map[string]interface{}{"error": code, "message": code},
	})
}

func elementRef(id string) map[string]interface{} {
	return map[string]interface{}{elementKey: id}
}

// setTestDefaults installs fast poll settings and restores the old
// defaults after the test.
func setTestDefaults(t *testing.T) {
	t.Helper()
	old := config.Current()
	d := old
	d.WaitTimeout = 200 * time.Millisecond
	d.PollInterval = 5 * time.Millisecond
	d.Reraise = true
	d.CacheElement = true
	config.Set(d)
	t.Cleanup(func() { config.Set(old) })
}

// newTestPage wires a page to a fake WebDriver server. The handler
// serves everything except the window rect, which every session fetch
// needs.
func newTestPage(t *testing.T, handler http.HandlerFunc) *Page {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s1/window/rect" {
			writeValue(w, map[string]interface{}{
				"x": 0.0, "y": 0.0, "width": 1080.0, "height": 1920.0,
			})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	client := webdriver.NewClient(server.URL)
	client.AttachSession("s1")
	return New(client)
}

func TestElement_WaitPresent_AppearsAfterPolling(t *testing.T) {
	setTestDefaults(t)
	var mu sync.Mutex
	findCalls := 0
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s1/element" && r.Method == "POST" {
			mu.Lock()
			findCalls++
			n := findCalls
			mu.Unlock()
			if n < 3 {
				writeWireError(w, "no such element")
				return
			}
			writeValue(w, elementRef("el-1"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	e := NewElement(by.ID, "login").Bind(p)
	h, err := e.WaitPresent()
	if err != nil {
		t.Fatalf("WaitPresent failed: %v", err)
	}
	if h == nil || h.ID() != "el-1" {
		t.Fatalf("Expected handle el-1, got %v", h)
	}
	if findCalls < 3 {
		t.Errorf("Expected at least 3 find calls, got %d", findCalls)
	}
	if e.presentCache == nil {
		t.Error("Expected present cache to be filled")
	}
}

func TestElement_WaitPresent_Timeout(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, "no such element")
	})
	e := NewElement(by.ID, "missing").Bind(p)

	_, err := e.WaitPresent(WithTimeout(30 * time.Millisecond))
	if !IsTimeout(err) {
		t.Fatalf("Expected timeout error, got %v", err)
	}

	// Suppressed timeout yields a nil handle and no error.
	h, err := e.WaitPresent(WithTimeout(30*time.Millisecond), WithReraise(false))
	if err != nil {
		t.Fatalf("Expected suppressed timeout, got %v", err)
	}
	if h != nil {
		t.Errorf("Expected nil handle, got %v", h)
	}
}

func TestElement_ReraiseOverrideChain(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, "no such element")
	})

	// Element tier suppresses the global reraise default.
	e := NewElement(by.ID, "missing", Reraise(false), Timeout(30*time.Millisecond)).Bind(p)
	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("Element tier should suppress the timeout, got %v", err)
	}

	// Call tier overrides the element tier.
	if _, err := e.WaitPresent(WithReraise(true)); !IsTimeout(err) {
		t.Fatalf("Call tier should restore the timeout error, got %v", err)
	}
}

func TestElement_TimeoutResolutionChain(t *testing.T) {
	setTestDefaults(t)

	e := NewElement(by.ID, "x")
	if got := e.resolveTimeout(waitParams{}); got != 200*time.Millisecond {
		t.Errorf("Expected global timeout, got %v", got)
	}

	e = NewElement(by.ID, "x", Timeout(2*time.Second))
	if got := e.resolveTimeout(waitParams{}); got != 2*time.Second {
		t.Errorf("Expected element timeout, got %v", got)
	}

	call := time.Second
	if got := e.resolveTimeout(waitParams{timeout: &call}); got != time.Second {
		t.Errorf("Expected call timeout, got %v", got)
	}
}

func TestElement_CacheSkipsRelocation(t *testing.T) {
	setTestDefaults(t)
	var mu sync.Mutex
	findCalls := 0
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/session/s1/element" && r.Method == "POST":
			mu.Lock()
			findCalls++
			mu.Unlock()
			writeValue(w, elementRef("el-1"))
		case r.URL.Path == "/session/s1/element/el-1/text":
			writeValue(w, "hello")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	e := NewElement(by.ID, "greeting").Bind(p)
	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("WaitPresent failed: %v", err)
	}
	text, err := e.Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if text != "hello" {
		t.Errorf("Expected 'hello', got %q", text)
	}
	if findCalls != 1 {
		t.Errorf("Expected a single find with caching on, got %d", findCalls)
	}
}

func TestElement_CacheDisabledRelocatesEveryUse(t *testing.T) {
	setTestDefaults(t)
	var mu sync.Mutex
	findCalls := 0
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/session/s1/element" && r.Method == "POST":
			mu.Lock()
			findCalls++
			mu.Unlock()
			writeValue(w, elementRef("el-1"))
		case r.URL.Path == "/session/s1/element/el-1/text":
			writeValue(w, "hello")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	e := NewElement(by.ID, "greeting", Cache(false)).Bind(p)
	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("WaitPresent failed: %v", err)
	}
	if _, err := e.Text(); err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if findCalls != 2 {
		t.Errorf("Expected two finds with caching off, got %d", findCalls)
	}
}

func TestElement_StaleHandleRelocatesAndRetries(t *testing.T) {
	setTestDefaults(t)
	var mu sync.Mutex
	findCalls := 0
	textCalls := 0
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.URL.Path == "/session/s1/element" && r.Method == "POST":
			findCalls++
			writeValue(w, elementRef("el-2"))
		case r.URL.Path == "/session/s1/element/el-1/text":
			writeWireError(w, "stale element reference")
		case r.URL.Path == "/session/s1/element/el-2/text":
			textCalls++
			writeValue(w, "fresh")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	e := NewElement(by.ID, "greeting").Bind(p)
	// Seed a handle that the server will report as stale.
	e.presentCache = webdriver.AttachElement(p.Driver(), "el-1")

	text, err := e.Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if text != "fresh" {
		t.Errorf("Expected 'fresh', got %q", text)
	}
	if findCalls != 1 || textCalls != 1 {
		t.Errorf("Expected one relocation and one retry, got find=%d text=%d", findCalls, textCalls)
	}
	if e.presentCache == nil || e.presentCache.ID() != "el-2" {
		t.Error("Expected cache refreshed with the relocated handle")
	}
}

func TestElement_WaitVisible(t *testing.T) {
	setTestDefaults(t)
	var mu sync.Mutex
	displayedCalls := 0
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/session/s1/element" && r.Method == "POST":
			writeValue(w, elementRef("el-1"))
		case r.URL.Path == "/session/s1/element/el-1/displayed":
			mu.Lock()
			displayedCalls++
			n := displayedCalls
			mu.Unlock()
			writeValue(w, n >= 3)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	e := NewElement(by.AccessibilityID, "banner").Bind(p)
	h, err := e.WaitVisible()
	if err != nil {
		t.Fatalf("WaitVisible failed: %v", err)
	}
	if h == nil {
		t.Fatal("Expected a handle")
	}
	if e.visibleCache == nil || e.presentCache == nil {
		t.Error("Expected visible result to fill both cache slots")
	}
}

func TestElement_WaitClickable_PromotesAllCaches(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/session/s1/element" && r.Method == "POST":
			writeValue(w, elementRef("el-1"))
		case r.URL.Path == "/session/s1/element/el-1/displayed",
			r.URL.Path == "/session/s1/element/el-1/enabled":
			writeValue(w, true)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	e := NewElement(by.ID, "submit").Bind(p)
	if _, err := e.WaitClickable(); err != nil {
		t.Fatalf("WaitClickable failed: %v", err)
	}
	if e.clickableCache == nil || e.visibleCache == nil || e.presentCache == nil {
		t.Error("Expected clickable result to fill all cache slots")
	}
}

func TestElement_WaitAbsent(t *testing.T) {
	setTestDefaults(t)
	var mu sync.Mutex
	findCalls := 0
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s1/element" && r.Method == "POST" {
			mu.Lock()
			findCalls++
			n := findCalls
			mu.Unlock()
			if n < 3 {
				writeValue(w, elementRef("el-1"))
				return
			}
			writeWireError(w, "no such element")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	e := NewElement(by.ID, "spinner").Bind(p)
	ok, err := e.WaitAbsent()
	if err != nil {
		t.Fatalf("WaitAbsent failed: %v", err)
	}
	if !ok {
		t.Error("Expected absence")
	}
	if e.presentCache != nil {
		t.Error("Expected caches cleared by WaitAbsent")
	}
}

func TestElement_WaitInvisible_AbsenceCounts(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, "no such element")
	})

	e := NewElement(by.ID, "toast").Bind(p)
	ok, err := e.WaitInvisible(false)
	if err != nil {
		t.Fatalf("WaitInvisible failed: %v", err)
	}
	if !ok {
		t.Error("Expected absence to satisfy the wait")
	}

	// With mustBePresent the same state is a timeout.
	if _, err := e.WaitInvisible(true, WithTimeout(30*time.Millisecond)); !IsTimeout(err) {
		t.Errorf("Expected timeout with mustBePresent, got %v", err)
	}
}

func TestElement_IndexedLookup(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s1/elements" && r.Method == "POST" {
			writeValue(w, []interface{}{
				elementRef("el-1"), elementRef("el-2"), elementRef("el-3"),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	e := NewElement(by.ClassName, "row", Index(1)).Bind(p)
	h, err := e.WaitPresent()
	if err != nil {
		t.Fatalf("WaitPresent failed: %v", err)
	}
	if h.ID() != "el-2" {
		t.Errorf("Expected el-2 at index 1, got %s", h.ID())
	}

	// Out-of-range index behaves like an absent element.
	far := NewElement(by.ClassName, "row", Index(9)).Bind(p)
	if _, err := far.WaitPresent(WithTimeout(30 * time.Millisecond)); !IsTimeout(err) {
		t.Errorf("Expected timeout for out-of-range index, got %v", err)
	}
}

func TestElement_Click_WaitsClickable(t *testing.T) {
	setTestDefaults(t)
	var mu sync.Mutex
	clicked := false
	enabledCalls := 0
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.URL.Path == "/session/s1/element" && r.Method == "POST":
			writeValue(w, elementRef("el-1"))
		case r.URL.Path == "/session/s1/element/el-1/displayed":
			writeValue(w, true)
		case r.URL.Path == "/session/s1/element/el-1/enabled":
			enabledCalls++
			writeValue(w, enabledCalls >= 2)
		case r.URL.Path == "/session/s1/element/el-1/click" && r.Method == "POST":
			clicked = true
			writeValue(w, nil)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	e := NewElement(by.ID, "submit").Bind(p)
	if err := e.Click(); err != nil {
		t.Fatalf("Click failed: %v", err)
	}
	if !clicked {
		t.Error("Expected a click request")
	}
	if enabledCalls < 2 {
		t.Errorf("Expected the click to wait for enabled, got %d checks", enabledCalls)
	}
}

func TestElement_NotBound(t *testing.T) {
	setTestDefaults(t)
	e := NewElement(by.ID, "orphan")
	if _, err := e.WaitPresent(); err != ErrNotBound {
		t.Errorf("Expected ErrNotBound, got %v", err)
	}
}

func TestNewElement_InvalidStrategyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for an unknown strategy")
		}
	}()
	NewElement("bogus strategy", "x")
}

func TestElement_SetLocatorClearsCaches(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/s1/element" && r.Method == "POST" {
			writeValue(w, elementRef("el-1"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	e := NewElement(by.ID, "first").Bind(p)
	if _, err := e.WaitPresent(); err != nil {
		t.Fatalf("WaitPresent failed: %v", err)
	}
	e.SetLocator(by.ID, "second")
	if e.presentCache != nil {
		t.Error("Expected SetLocator to clear the handle caches")
	}
	if e.Value() != "second" {
		t.Errorf("Expected locator value 'second', got %q", e.Value())
	}
}

func TestElement_IsViewable(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/session/s1/element" && r.Method == "POST":
			writeValue(w, elementRef("el-1"))
		case r.URL.Path == "/session/s1/element/el-1/displayed":
			writeValue(w, true)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	e := NewElement(by.ID, "banner").Bind(p)
	if !e.IsViewable(WithTimeout(50 * time.Millisecond)) {
		t.Error("Expected viewable")
	}

	missing := NewElement(by.ID, "ghost").Bind(newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, "no such element")
	}))
	if missing.IsViewable(WithTimeout(30 * time.Millisecond)) {
		t.Error("Expected not viewable")
	}
}
