package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/gofeed"

	"classdigest/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
	lastReq    *http.Request
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestFetch(t *testing.T) {
	xml := loadFixture(t, "../../testdata/school_news.xml")
	feedURL := "https://greenfield.example/news/rss"

	tests := []struct {
		name      string
		transport *mockTransport
		wantMsgs  int
		wantErr   bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: xml, statusCode: 200},
			wantMsgs:  3,
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "not found", statusCode: 404},
			wantErr:   true,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name:      "invalid xml",
			transport: &mockTransport{body: "not xml at all", statusCode: 200},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRSS(tt.transport)
			msgs, err := r.Fetch(context.Background(), feedURL)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(msgs) != tt.wantMsgs {
				t.Fatalf("got %d messages, want %d", len(msgs), tt.wantMsgs)
			}

			first := msgs[0]
			if first.ChatID != "rss:"+feedURL {
				t.Errorf("chat_id = %q, want the virtual rss chat", first.ChatID)
			}
			if first.SenderID != "Greenfield School News" {
				t.Errorf("sender_id = %q, want the feed title", first.SenderID)
			}
			wantText := "School trip to the science museum. Please sign the permission slip by Friday. Buses leave at 8:00."
			if diff := cmp.Diff(wantText, first.Text); diff != "" {
				t.Errorf("text mismatch (-want +got):\n%s", diff)
			}
			if first.Timestamp != "2026-03-10T07:30:00.000Z" {
				t.Errorf("timestamp = %q, want the item pubDate", first.Timestamp)
			}
			if _, err := model.ParseTimestamp(first.Timestamp); err != nil {
				t.Errorf("timestamp not canonical: %v", err)
			}
			if first.Extra["guid"] != "news-101" {
				t.Errorf("guid extra = %v, want news-101", first.Extra["guid"])
			}
			if _, ok := tt.transport.lastReq.Context().Deadline(); !ok {
				t.Error("fetch request carries no deadline")
			}

			// The item with no pubDate still carries a valid timestamp.
			if _, err := model.ParseTimestamp(msgs[2].Timestamp); err != nil {
				t.Errorf("fallback timestamp not canonical: %v", err)
			}
			if msgs[2].Text != "Spring concert announced" {
				t.Errorf("title-only text = %q", msgs[2].Text)
			}
		})
	}
}

func TestItemTextKeepsValidUTF8(t *testing.T) {
	item := &gofeed.Item{
		Title:       "הודעה",
		Description: "a" + strings.Repeat("א", 199),
	}
	got := itemText(item)
	if !utf8.ValidString(got) {
		t.Fatalf("itemText produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long description not truncated: %q", got)
	}
}

func TestItemGUID(t *testing.T) {
	tests := []struct {
		name     string
		item     *gofeed.Item
		wantGUID string
		hasHash  bool
	}{
		{
			name:     "with guid",
			item:     &gofeed.Item{GUID: "abc-123"},
			wantGUID: "abc-123",
		},
		{
			name:    "without guid generates hash",
			item:    &gofeed.Item{Title: "Post Without GUID", Link: "https://example.com/post-1"},
			hasHash: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemGUID(tt.item)
			if tt.hasHash {
				if !strings.HasPrefix(got, "sha256:") {
					t.Errorf("expected sha256 prefix, got %q", got)
				}
				return
			}
			if diff := cmp.Diff(tt.wantGUID, got); diff != "" {
				t.Errorf("GUID mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
