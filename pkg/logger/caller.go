package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

var (
	prefixMu            sync.RWMutex
	callerPrefix        = "Test"
	prefixCaseSensitive bool
	matchFileNames      bool
)

// SetCallerPrefix configures caller tagging. Log lines are tagged with the
// first frame up the stack whose function name starts with prefix.
// An empty prefix disables tagging.
func SetCallerPrefix(prefix string, caseSensitive bool) {
	prefixMu.Lock()
	defer prefixMu.Unlock()
	callerPrefix = prefix
	prefixCaseSensitive = caseSensitive
}

// SetCallerFileMatching switches matching from function names to source
// file base names (e.g. prefix "login_" matches login_page.go frames).
func SetCallerFileMatching(on bool) {
	prefixMu.Lock()
	defer prefixMu.Unlock()
	matchFileNames = on
}

// callerTag walks the call stack for the first frame matching the
// configured prefix and renders it as "file.go:42 FuncName".
// Returns "" when no frame matches or tagging is disabled.
func callerTag() string {
	prefixMu.RLock()
	prefix := callerPrefix
	caseSensitive := prefixCaseSensitive
	byFile := matchFileNames
	prefixMu.RUnlock()

	if prefix == "" {
		return ""
	}
	if !caseSensitive {
		prefix = strings.ToLower(prefix)
	}

	// Skip runtime.Callers, callerTag and the logger entry points.
	pcs := make([]uintptr, 64)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		name := funcBase(frame.Function)
		file := filepath.Base(frame.File)

		candidate := name
		if byFile {
			candidate = file
		}
		if !caseSensitive {
			candidate = strings.ToLower(candidate)
		}
		if strings.HasPrefix(candidate, prefix) {
			return fmt.Sprintf("%s:%d %s", file, frame.Line, name)
		}
		if !more {
			return ""
		}
	}
}

// funcBase strips the package path and receiver from a fully qualified
// function name: "pkg/path.(*T).Method" -> "Method".
func funcBase(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.LastIndex(fn, "."); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}
