package debug

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The log goes to a file because stdout belongs to the TUI.

var (
	mu     sync.Mutex
	file   *os.File
	logger = zap.NewNop()
)

// Enable starts logging to ~/.config/midi2keys/midi2keys.log.
// Verbose lowers the level to debug.
func Enable(verbose bool) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".config", "midi2keys")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "midi2keys.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(f),
		level,
	)

	file = f
	logger = zap.New(core)
	logger.Info("logging started")
	return nil
}

// Logger returns the process logger. Before Enable it discards everything,
// so packages can grab it unconditionally.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Disable flushes and closes the log file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return
	}
	logger.Sync()
	file.Close()
	file = nil
	logger = zap.NewNop()
}
