// Package reaper periodically deletes staged media that a crashed or killed
// pipeline run left behind.
package reaper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/matchbot/internal/adapters/media"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

const (
	defaultSchedule = "@every 10m"
	defaultMaxAge   = time.Hour
)

// Reaper wraps robfig/cron and sweeps one directory.
type Reaper struct {
	cron     *cron.Cron
	dir      string
	schedule string
	maxAge   time.Duration
	now      func() time.Time
	log      logger.Logger

	mu      sync.Mutex
	started bool
}

// Option configures a Reaper.
type Option func(*Reaper)

// WithSchedule sets the cron spec, e.g. "@every 10m" or "*/5 * * * *".
func WithSchedule(spec string) Option {
	return func(r *Reaper) {
		if spec != "" {
			r.schedule = spec
		}
	}
}

// WithMaxAge sets how old a staged file must be before it is deleted.
func WithMaxAge(d time.Duration) Option {
	return func(r *Reaper) {
		if d > 0 {
			r.maxAge = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reaper) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates a Reaper for dir.
func New(dir string, opts ...Option) *Reaper {
	r := &Reaper{
		cron:     cron.New(),
		dir:      dir,
		schedule: defaultSchedule,
		maxAge:   defaultMaxAge,
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start registers the sweep and starts the scheduler.
func (r *Reaper) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, func() { r.Sweep(ctx) }); err != nil {
		return fmt.Errorf("reaper schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.started = true
	r.log.Info(ctx, "media reaper started",
		logger.String("dir", r.dir),
		logger.String("schedule", r.schedule),
		logger.Duration("max_age", r.maxAge))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	<-r.cron.Stop().Done()
	r.started = false
}

// Sweep deletes stale staged files and returns how many were removed.
// Files without the staging prefix are never touched.
func (r *Reaper) Sweep(ctx context.Context) int {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		r.log.Warn(ctx, "media reaper cannot read dir", logger.String("dir", r.dir), logger.Error(err))
		return 0
	}

	cutoff := r.now().Add(-r.maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), media.PrefixAny) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(r.dir, e.Name())
		if err := media.Remove(path); err != nil {
			r.log.Warn(ctx, "media reaper remove failed", logger.String("path", path), logger.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		metrics.RecordMediaReaped(removed)
		r.log.Info(ctx, "stale media removed", logger.Int("count", removed))
	}
	return removed
}
