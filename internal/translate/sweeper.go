package translate

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"lectern/internal/config"
)

// Sweeper periodically compacts expired entries out of the persisted
// translation cache. Serving stale entries is already prevented by the TTL
// check at read time; the sweeper just keeps the blob from growing
// unboundedly with dead entries.
type Sweeper struct {
	cache     *Cache
	scheduler *gocron.Scheduler
	interval  time.Duration
}

// NewSweeper creates a sweeper running every cfg.SweepIntervalMinutes.
func NewSweeper(c *Cache, cfg *config.Config) *Sweeper {
	interval := time.Hour
	if cfg != nil && cfg.SweepIntervalMinutes > 0 {
		interval = time.Duration(cfg.SweepIntervalMinutes) * time.Minute
	}
	return &Sweeper{
		cache:     c,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
	}
}

// WithInterval overrides the sweep interval. Tests use it to keep runs
// short.
func (s *Sweeper) WithInterval(d time.Duration) *Sweeper {
	if d > 0 {
		s.interval = d
	}
	return s
}

// Start begins the periodic sweep in the background.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the periodic sweep.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// sweep runs one compaction pass. Failures are logged and retried on the
// next tick; an unavailable store never takes the sweeper down.
func (s *Sweeper) sweep() {
	removed, err := s.cache.Sweep(context.Background())
	if err != nil {
		log.Printf("translation cache sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("translation cache sweep removed %d expired entries", removed)
	}
}
