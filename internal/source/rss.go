// Package source turns external feeds into chat messages for the pipeline.
//
// School RSS feeds (newsletters, calendar feeds) are read as if they were
// chat messages from a virtual "rss:<url>" chat, so announcements published
// outside the group chats flow through the same filter and classifier.
package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"classdigest/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RSS fetches feeds and converts their items to messages.
type RSS struct {
	client  HTTPClient
	timeout time.Duration
}

// NewRSS creates an RSS source with the given HTTP client.
func NewRSS(client HTTPClient) *RSS {
	return &RSS{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// ChatID returns the virtual chat ID messages from the given feed carry.
func ChatID(feedURL string) string {
	return "rss:" + feedURL
}

// Fetch downloads a feed and converts its items to messages. Items without a
// publication date get the current time.
func (r *RSS) Fetch(ctx context.Context, feedURL string) ([]model.Message, error) {
	feed, err := r.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	senderID := "feed"
	if feed.Title != "" {
		senderID = feed.Title
	}

	var msgs []model.Message
	for _, item := range feed.Items {
		ts := time.Now()
		if item.PublishedParsed != nil {
			ts = *item.PublishedParsed
		}
		msgs = append(msgs, model.Message{
			ChatID:    ChatID(feedURL),
			SenderID:  senderID,
			Timestamp: model.FormatTimestamp(ts),
			Text:      itemText(item),
			Extra:     map[string]any{"link": item.Link, "guid": ItemGUID(item)},
		})
	}
	return msgs, nil
}

func (r *RSS) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ClassDigestBot/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// ItemGUID returns the GUID for a feed item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// itemText joins an item's title and description into one message body,
// capping the description the same way digests cap message previews. The
// cap lands on a rune boundary so multi-byte text stays valid UTF-8.
func itemText(item *gofeed.Item) string {
	desc := strings.TrimSpace(item.Description)
	if len(desc) > 300 {
		cut := 300
		for cut > 0 && !utf8.RuneStart(desc[cut]) {
			cut--
		}
		desc = desc[:cut] + "..."
	}
	if desc == "" {
		return item.Title
	}
	if item.Title == "" {
		return desc
	}
	return item.Title + ". " + desc
}
