// Package logger provides the internal log sink for pagekit.
//
// Records can be tagged with the nearest caller frame whose function name
// starts with a configured prefix (default "Test"), so element logs point
// at the test that triggered them rather than at library internals.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	globalLogger *log.Logger
	logFile      *os.File
	debugOn      bool
	mu           sync.Mutex
)

// Init initializes the global logger with the specified log file path.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	globalLogger = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// InitWriter directs the global logger at an arbitrary writer.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = log.New(w, "", log.Ltime|log.Lmicroseconds)
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = nil
}

// SetDebug toggles debug records.
func SetDebug(on bool) {
	mu.Lock()
	defer mu.Unlock()
	debugOn = on
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	output("[INFO] ", format, v...)
}

// Debug logs a debug message when debug records are enabled.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	on := debugOn
	mu.Unlock()
	if !on {
		return
	}
	output("[DEBUG] ", format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	output("[ERROR] ", format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	output("[WARN] ", format, v...)
}

func output(level, format string, v ...interface{}) {
	tag := callerTag()

	mu.Lock()
	defer mu.Unlock()

	if globalLogger == nil {
		return
	}
	msg := fmt.Sprintf(format, v...)
	if tag != "" {
		globalLogger.Printf("%s%s | %s", level, tag, msg)
		return
	}
	globalLogger.Printf("%s%s", level, msg)
}

// GetWriter returns the underlying writer for use by clients.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return io.Discard
}

// Scoped carries element or page context into log lines, so records read
// as `Element((by="id", value="login")): msg`.
type Scoped struct {
	kind   string
	remark string
}

// NewScoped creates a scoped logger for the given kind and remark.
func NewScoped(kind, remark string) *Scoped {
	return &Scoped{kind: kind, remark: remark}
}

// SetRemark updates the remark, used when a descriptor is relocated.
func (s *Scoped) SetRemark(remark string) {
	s.remark = remark
}

// Debug logs a scoped debug message.
func (s *Scoped) Debug(format string, v ...interface{}) {
	Debug("%s(%s): %s", s.kind, s.remark, fmt.Sprintf(format, v...))
}

// Warn logs a scoped warning.
func (s *Scoped) Warn(format string, v ...interface{}) {
	Warn("%s(%s): %s", s.kind, s.remark, fmt.Sprintf(format, v...))
}

// Error logs a scoped error.
func (s *Scoped) Error(format string, v ...interface{}) {
	Error("%s(%s): %s", s.kind, s.remark, fmt.Sprintf(format, v...))
}
