package pipeline

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"classdigest/internal/classify"
	"classdigest/internal/filter"
	"classdigest/internal/model"
	"classdigest/internal/rules"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestProcessor() *Processor {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cls := classify.NewWithClock(rules.Default(), log, func() time.Time { return testNow })
	return New(filter.New(0), cls, log)
}

func TestProcess(t *testing.T) {
	hw := model.Message{
		ChatID:    "class-3b",
		SenderID:  "teacher-1",
		Timestamp: "2026-03-10T08:00:00.000Z",
		Text:      "Math homework: complete exercises 1-10 on page 45. Due tomorrow.",
	}
	cancel := model.Message{
		ChatID:    "class-3b",
		SenderID:  "teacher-2",
		Timestamp: "2026-03-10T08:05:00.000Z",
		Text:      "PE class cancelled today due to rain.",
	}
	chatter := model.Message{
		ChatID:    "class-3b",
		SenderID:  "parent-9",
		Timestamp: "2026-03-10T08:06:00.000Z",
		Text:      "thanks!",
	}
	foreign := model.Message{
		ChatID:    "other-chat",
		SenderID:  "someone",
		Timestamp: "2026-03-10T08:07:00.000Z",
		Text:      "Math homework for another class",
	}

	req := Request{
		Messages:        []model.Message{hw, cancel, chatter, foreign, hw},
		SubscribedChats: []string{"class-3b"},
		Period: model.TimePeriod{
			Start: "2026-03-10T00:00:00.000Z",
			End:   "2026-03-11T00:00:00.000Z",
		},
	}

	resp, err := newTestProcessor().Process(req)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	wantStats := model.FilterStats{
		TotalProcessed:         5,
		FilteredBySubscription: 1,
		DuplicatesRemoved:      1,
		FinalCount:             3,
	}
	if diff := cmp.Diff(wantStats, resp.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	var gotTypes []model.ItemType
	for _, item := range resp.Items {
		gotTypes = append(gotTypes, item.Item.Type)
		if item.Confidence < 0 || item.Confidence > 1 {
			t.Errorf("confidence %v out of [0, 1]", item.Confidence)
		}
	}
	wantTypes := []model.ItemType{model.ItemHomework, model.ItemScheduleChange}
	if diff := cmp.Diff(wantTypes, gotTypes); diff != "" {
		t.Errorf("item types mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessValidationAbort(t *testing.T) {
	req := Request{
		Messages:        []model.Message{{ChatID: "c1", SenderID: "s1", Timestamp: "bad", Text: "x"}},
		SubscribedChats: []string{"c1"},
		Period: model.TimePeriod{
			Start: "2026-03-10T00:00:00.000Z",
			End:   "2026-03-11T00:00:00.000Z",
		},
	}

	resp, err := newTestProcessor().Process(req)
	if err == nil {
		t.Fatalf("Process = %+v, want error", resp)
	}
	if !strings.Contains(err.Error(), "timestamp") {
		t.Errorf("error = %q, want it to mention the timestamp", err)
	}
}
