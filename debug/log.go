package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	file    *os.File
	logger  *zap.Logger
	named   = make(map[string]*zap.SugaredLogger)
	enabled bool
)

// LogPath returns ~/.config/go-gridsynth/debug.log
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-gridsynth", "debug.log"), nil
}

// Enable starts debug logging to LogPath, truncating the previous log.
func Enable() error {
	mu.Lock()
	if enabled {
		mu.Unlock()
		return nil
	}
	mu.Unlock()

	path, err := LogPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	mu.Lock()
	file = f
	mu.Unlock()
	SetOutput(f)
	Log("debug", "=== Debug logging started ===")
	return nil
}

// SetOutput sends the log to w instead of the debug file. Every write is
// synced so the log survives a crash.
func SetOutput(w io.Writer) {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = "T"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	enc.LevelKey = ""
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)

	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		_ = logger.Sync()
	}
	logger = zap.New(core)
	named = make(map[string]*zap.SugaredLogger)
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		_ = logger.Sync()
	}
	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
	named = make(map[string]*zap.SugaredLogger)
	enabled = false
}

// Enabled reports whether Log writes anywhere.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log under category.
func Log(category, format string, args ...any) {
	mu.Lock()
	if !enabled {
		mu.Unlock()
		return
	}
	l, ok := named[category]
	if !ok {
		l = logger.Named(category).Sugar()
		named[category] = l
	}
	mu.Unlock()

	l.Debugf(format, args...)
	_ = l.Sync() // flush immediately so we see logs even on crash
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	if !enabled {
		mu.Unlock()
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// Errorf logs the error under category and returns it, for call sites that
// both report and propagate.
func Errorf(category, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	Log(category, "error: %v", err)
	return err
}
