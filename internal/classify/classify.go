// Package classify decides whether a message is a homework item, a schedule
// change, an announcement, or nothing, and builds the typed result.
//
// Category resolution is an ordered chain of threshold checks, not a
// max-score comparison: homework is checked first, then schedule change,
// then announcement. A message above more than one threshold always gets the
// earlier category.
package classify

import (
	"log/slog"
	"time"

	"classdigest/internal/extract"
	"classdigest/internal/model"
	"classdigest/internal/rules"
)

// Low-signal gate.
const (
	minImportance   = 0.1
	minContentWords = 3
)

// Category thresholds.
const (
	homeworkThreshold     = 0.6
	scheduleThreshold     = 0.6
	announcementThreshold = 0.4
)

// Meta carries the message metadata copied onto a content item.
type Meta struct {
	ChatID    string
	SenderID  string
	Timestamp string
}

// Classifier scores messages against the injected rule set.
type Classifier struct {
	ex    *extract.Extractor
	rules *rules.Set
	log   *slog.Logger
	now   func() time.Time
}

// New creates a Classifier over the given rule set.
func New(rs *rules.Set, log *slog.Logger) *Classifier {
	return NewWithClock(rs, log, time.Now)
}

// NewWithClock creates a Classifier with a fixed clock (useful for testing
// relative-date resolution).
func NewWithClock(rs *rules.Set, log *slog.Logger, now func() time.Time) *Classifier {
	return &Classifier{
		ex:    extract.New(rs),
		rules: rs,
		log:   log,
		now:   now,
	}
}

// Classify classifies a single message. It returns nil when the message is
// not actionable. It never panics: any internal failure is recovered, logged,
// and reported as "no classification".
func (c *Classifier) Classify(text string, meta Meta) (res *model.ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("classification failed", "chat_id", meta.ChatID, "sender_id", meta.SenderID, "error", r)
			res = nil
		}
	}()

	ents, importance := c.ex.Extract(text, c.now())
	if importance < minImportance || c.ex.ContentWords(ents.ProcessedText) < minContentWords {
		return nil
	}

	if score := c.homeworkScore(ents); score > homeworkThreshold {
		return &model.ClassificationResult{Item: c.homeworkItem(text, meta, ents), Confidence: score}
	}
	if score := c.scheduleScore(ents); score > scheduleThreshold {
		return &model.ClassificationResult{Item: c.scheduleItem(text, meta, ents), Confidence: score}
	}
	if score := c.announcementScore(ents, importance); score > announcementThreshold {
		return &model.ClassificationResult{Item: c.announcementItem(text, meta, ents), Confidence: score}
	}
	return nil
}

// ClassifyBatch classifies messages independently; a failure on one message
// never affects the others.
func (c *Classifier) ClassifyBatch(messages []model.Message) []model.ClassificationResult {
	var out []model.ClassificationResult
	for _, m := range messages {
		res := c.Classify(m.Text, Meta{ChatID: m.ChatID, SenderID: m.SenderID, Timestamp: m.Timestamp})
		if res != nil {
			out = append(out, *res)
		}
	}
	return out
}

func (c *Classifier) homeworkScore(ents extract.Entities) float64 {
	t := ents.ProcessedText
	score := 0.0
	if c.rules.Homework.MatchString(t) {
		score += 0.5
	}
	if c.rules.Pages.MatchString(t) {
		score += 0.3
	}
	if c.rules.Exercises.MatchString(t) {
		score += 0.3
	}
	if c.rules.Chapter.MatchString(t) {
		score += 0.2
	}
	if c.rules.ActionVerb.MatchString(t) {
		score += 0.2
	}
	if c.rules.DuePhrase.MatchString(t) {
		score += 0.2
	}
	return cap1(score)
}

func (c *Classifier) scheduleScore(ents extract.Entities) float64 {
	t := ents.ProcessedText
	score := 0.0
	if c.rules.ChangeKeyword.MatchString(t) {
		score += 0.5
	}
	if c.rules.TimeChange.MatchString(t) {
		score += 0.4
	}
	if c.rules.Cancellation.MatchString(t) {
		score += 0.5
	}
	if c.rules.LocationChange.MatchString(t) {
		score += 0.3
	}
	if c.rules.ClockTime.MatchString(t) {
		score += 0.2
	}
	if c.rules.Weekday.MatchString(t) {
		score += 0.2
	}
	return cap1(score)
}

func (c *Classifier) announcementScore(ents extract.Entities, importance float64) float64 {
	t := ents.ProcessedText
	score := importance
	if c.rules.Event.MatchString(t) {
		score += 0.3
	}
	if c.rules.PermissionSlip.MatchString(t) {
		score += 0.4
	}
	if c.rules.Urgent.MatchString(t) {
		score += 0.3
	}
	if c.rules.Reminder.MatchString(t) {
		score += 0.2
	}
	if c.rules.Info.MatchString(t) {
		score += 0.2
	}
	return cap1(score)
}

func cap1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
