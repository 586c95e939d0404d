package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool

	logger = newLogger(io.Discard)

	// one sampler per call site key
	samplers = make(map[string]*rate.Sometimes)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return l
}

// DefaultPath returns ~/.config/chordloop/debug.log
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "chordloop", "debug.log")
}

// Enable starts debug logging to path (DefaultPath when empty).
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true
	logger.SetOutput(f)
	logger.WithField("cat", "debug").Info("=== Debug logging started ===")
	return nil
}

// EnableWriter sends the log to w. Used by tests.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	logger.SetOutput(w)
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
	logger.SetOutput(io.Discard)
}

func entry(category string) *logrus.Entry {
	return logger.WithField("cat", category)
}

func on() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a debug message
func Log(category, format string, args ...any) {
	if !on() {
		return
	}
	entry(category).Debugf(format, args...)
}

// Warn logs a setting that was ignored or replaced
func Warn(category, format string, args ...any) {
	if !on() {
		return
	}
	entry(category).Warnf(format, args...)
}

func Error(category string, err error, format string, args ...any) {
	if !on() {
		return
	}
	entry(category).WithError(err).Errorf(format, args...)
}

// LogEvery logs the first call and then at most once per interval for each
// category+format pair. Use for per-tick events.
func LogEvery(interval time.Duration, category, format string, args ...any) {
	if !on() {
		return
	}
	key := category + format
	mu.Lock()
	s, ok := samplers[key]
	if !ok {
		s = &rate.Sometimes{First: 1, Interval: interval}
		samplers[key] = s
	}
	mu.Unlock()

	s.Do(func() {
		entry(category).Debug(fmt.Sprintf(format, args...))
	})
}
