package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"classdigest/internal/bot"
	"classdigest/internal/classify"
	"classdigest/internal/config"
	"classdigest/internal/filter"
	"classdigest/internal/pipeline"
	"classdigest/internal/rules"
	"classdigest/internal/scheduler"
	"classdigest/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	rs := rules.Default()
	if cfg.RulesPath != "" {
		rs, err = rules.Load(cfg.RulesPath)
		if err != nil {
			log.Error("load rules", "path", cfg.RulesPath, "error", err)
			os.Exit(1)
		}
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	proc := pipeline.New(filter.New(cfg.DedupCacheSize), classify.New(rs, log), log)

	b, err := bot.New(cfg.TelegramBotToken, store, proc, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(store, b, cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot", "digest_time", cfg.DigestTime, "feeds", len(cfg.RSSFeeds))

	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Error("scheduler", "error", err)
			cancel()
		}
	}()

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
