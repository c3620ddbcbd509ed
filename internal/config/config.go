// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var digestTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	RulesPath        string

	// DigestChatID is the chat the daily digest is posted to. Zero means
	// the digest is sent back to each subscribed chat.
	DigestChatID int64
	DigestTime   string // HH:MM, bot local time
	Timezone     *time.Location
	WindowHours  int

	RSSFeeds       []string
	DedupCacheSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/digest.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	var digestChatID int64
	if raw := os.Getenv("DIGEST_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DIGEST_CHAT_ID %q: %w", raw, err)
		}
		digestChatID = id
	}

	digestTime := os.Getenv("DIGEST_TIME")
	if digestTime == "" {
		digestTime = "17:00"
	}
	if !digestTimeRe.MatchString(digestTime) {
		return nil, fmt.Errorf("invalid DIGEST_TIME %q: want HH:MM", digestTime)
	}

	tz := time.Local
	if raw := os.Getenv("TIMEZONE"); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", raw, err)
		}
		tz = loc
	}

	windowHours := 24
	if raw := os.Getenv("WINDOW_HOURS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid WINDOW_HOURS %q: want a positive integer", raw)
		}
		windowHours = n
	}

	var feeds []string
	if raw := os.Getenv("RSS_FEEDS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			feeds = append(feeds, s)
		}
	}

	cacheSize := 10000
	if raw := os.Getenv("DEDUP_CACHE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid DEDUP_CACHE_SIZE %q: want a non-negative integer", raw)
		}
		cacheSize = n
	}

	return &Config{
		TelegramBotToken: token,
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		RulesPath:        os.Getenv("RULES_PATH"),
		DigestChatID:     digestChatID,
		DigestTime:       digestTime,
		Timezone:         tz,
		WindowHours:      windowHours,
		RSSFeeds:         feeds,
		DedupCacheSize:   cacheSize,
	}, nil
}
