package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// sink is the writer shared by every component logger. It discards output
// until SetOutput is called.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

var shared = &sink{w: io.Discard}

// SetOutput redirects all component loggers to w.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	shared.mu.Lock()
	shared.w = w
	shared.mu.Unlock()
}

// New returns a logger for a component. Lines are tagged "[COMPONENT] ".
func New(component string) *log.Logger {
	prefix := "[" + strings.ToUpper(component) + "] "
	return log.New(shared, prefix, log.LstdFlags|log.Lmsgprefix)
}

// FileOptions configures a rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// OpenFile returns a size-rotated log file writer.
func OpenFile(opts FileOptions) (io.WriteCloser, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}, nil
}
