// Package scheduler drives the periodic work: polling school feeds into
// storage and running the daily digest at the configured time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"classdigest/internal/config"
	"classdigest/internal/source"
	"classdigest/internal/storage"
)

// DigestRunner runs one digest cycle: process pending messages and deliver
// the resulting items.
type DigestRunner interface {
	RunDigest(ctx context.Context) error
}

// Scheduler owns the feed polling loop and the digest cron entry.
type Scheduler struct {
	store  storage.Storage
	rss    *source.RSS
	runner DigestRunner
	cfg    *config.Config
	log    *slog.Logger
	tick   time.Duration
}

// New creates a Scheduler with the default HTTP client.
func New(store storage.Storage, runner DigestRunner, cfg *config.Config, log *slog.Logger) *Scheduler {
	return NewWithSource(store, source.NewRSS(http.DefaultClient), runner, cfg, log)
}

// NewWithSource creates a Scheduler with a custom feed source (useful for testing).
func NewWithSource(store storage.Storage, rss *source.RSS, runner DigestRunner, cfg *config.Config, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		rss:    rss,
		runner: runner,
		cfg:    cfg,
		log:    log,
		tick:   15 * time.Minute,
	}
}

// SetTickInterval overrides the default 15-minute feed poll interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the poll loop and the digest cron, blocking until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(s.cfg.Timezone))
	spec, err := cronSpec(s.cfg.DigestTime)
	if err != nil {
		return err
	}
	if _, err := c.AddFunc(spec, func() {
		if err := s.runner.RunDigest(ctx); err != nil {
			s.log.Error("scheduled digest", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	c.Start()
	defer c.Stop()

	s.pollFeeds(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.pollFeeds(ctx)
		}
	}
}

// cronSpec converts an HH:MM wall-clock time into a daily cron expression.
func cronSpec(digestTime string) (string, error) {
	parts := strings.SplitN(digestTime, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid digest time %q", digestTime)
	}
	return fmt.Sprintf("%s %s * * *", parts[1], parts[0]), nil
}

func (s *Scheduler) pollFeeds(ctx context.Context) {
	for _, feed := range s.cfg.RSSFeeds {
		if ctx.Err() != nil {
			return
		}
		s.pollFeed(ctx, feed)
	}
}

func (s *Scheduler) pollFeed(ctx context.Context, feedURL string) {
	s.log.Debug("polling feed", "url", feedURL)

	msgs, err := s.rss.Fetch(ctx, feedURL)
	if err != nil {
		s.log.Error("fetch feed", "url", feedURL, "error", err)
		return
	}

	added := 0
	for _, m := range msgs {
		if err := s.store.AddMessage(ctx, m); err != nil {
			s.log.Error("store feed item", "url", feedURL, "error", err)
			continue
		}
		added++
	}
	if added > 0 {
		s.log.Info("feed polled", "url", feedURL, "items", added)
	}
}
