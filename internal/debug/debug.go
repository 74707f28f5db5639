// Package debug provides the operation log for holoupdate.
// Lines are appended to a daily file under <cache.dir>/log/update/YYYYMMDD.log
// as "2006-01-02 15:04:05.000 : message". With a mirror attached (--debug)
// every line is also written there, usually stderr.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// LogSubdir is the log directory relative to the cache directory.
	LogSubdir = "log/update"
	// TimestampLayout prefixes every log line.
	TimestampLayout = "2006-01-02 15:04:05.000"
	fileDateLayout  = "20060102"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  *log.Logger
	logFile *os.File
	logDir  string

	// now is a function variable to allow overriding in tests.
	now = time.Now
)

type settings struct {
	dir    string
	mirror io.Writer
}

// Option configures Init.
type Option func(*settings)

// WithDir sets the directory that holds the daily log files.
func WithDir(dir string) Option {
	return func(s *settings) {
		s.dir = dir
	}
}

// WithMirror copies every log line to w.
func WithMirror(w io.Writer) Option {
	return func(s *settings) {
		s.mirror = w
	}
}

// Init initializes the logging system.
// If enable is false, all logging operations become no-ops.
// If enable is true, today's log file is opened for appending. A mirror may
// be used without a directory, in which case nothing is written to disk.
func Init(enable bool, opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()

	cfg := settings{}
	for _, opt := range opts {
		opt(&cfg)
	}

	closeLocked()
	enabled = enable
	logDir = ""
	if !enable {
		logger = log.New(io.Discard, "", 0)
		return nil
	}

	var writers []io.Writer
	if strings.TrimSpace(cfg.dir) != "" {
		//nolint:gosec // G301: log directory lives under the user's cache dir
		if err := os.MkdirAll(cfg.dir, 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		path := filepath.Join(cfg.dir, fileNameFor(now()))
		//nolint:gosec // G304: log path is computed from configuration, not user input
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		logDir = cfg.dir
		writers = append(writers, f)
	}
	if cfg.mirror != nil {
		writers = append(writers, cfg.mirror)
	}
	if len(writers) == 0 {
		logger = log.New(io.Discard, "", 0)
		return nil
	}
	logger = log.New(io.MultiWriter(writers...), "", 0)
	return nil
}

// Close closes the log file if open.
// Safe to call even if logging is disabled.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Log writes a message if logging is enabled.
// Arguments are handled in the manner of fmt.Print.
func Log(v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	write(fmt.Sprint(v...))
}

// Logf writes a formatted message if logging is enabled.
// Arguments are handled in the manner of fmt.Printf.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	write(fmt.Sprintf(format, v...))
}

func write(msg string) {
	logger.Printf("%s : %s", now().Format(TimestampLayout), msg)
}

// Enabled returns whether logging is currently enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// DirFor returns the log directory for a cache directory.
func DirFor(cacheDir string) string {
	return filepath.Join(cacheDir, filepath.FromSlash(LogSubdir))
}

// GetLogPath returns the path of today's log file, or "" when logging to
// disk is not configured.
func GetLogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	if logDir == "" {
		return ""
	}
	return filepath.Join(logDir, fileNameFor(now()))
}

func fileNameFor(t time.Time) string {
	return t.Format(fileDateLayout) + ".log"
}
