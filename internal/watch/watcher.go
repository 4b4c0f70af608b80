// Package watch reports changes to a single file, coalescing bursts of
// writes and capping how often the callback runs.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/asheshgoplani/ferndeck/internal/logging"
)

const (
	DefaultDebounce     = 100 * time.Millisecond
	DefaultMaxPerSecond = 2.0
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before a change fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithMaxPerSecond caps callback invocations per second.
func WithMaxPerSecond(n float64) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.perSecond = n
		}
	}
}

// Watcher calls onChange after the watched file is written or replaced.
type Watcher struct {
	path      string
	onChange  func()
	debounce  time.Duration
	perSecond float64
	limiter   *rate.Limiter
	fs        *fsnotify.Watcher
	log       *log.Logger
}

// New watches path. The parent directory is watched so that editors that
// replace the file on save are still noticed.
func New(path string, onChange func(), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:      abs,
		onChange:  onChange,
		debounce:  DefaultDebounce,
		perSecond: DefaultMaxPerSecond,
		log:       logging.New("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.limiter = rate.NewLimiter(rate.Limit(w.perSecond), 1)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.fs = fsw
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run delivers change callbacks until ctx is done or the watcher is closed.
// Callbacks run on the calling goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	interval := time.Duration(float64(time.Second) / w.perSecond)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Printf("fsnotify error on %s: %v", w.path, err)

		case <-fire:
			if !w.limiter.Allow() {
				timer.Reset(interval)
				continue
			}
			fire = nil
			w.log.Printf("change detected: %s", w.path)
			w.onChange()
		}
	}
}

// Close stops watching. A running Run returns nil.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
