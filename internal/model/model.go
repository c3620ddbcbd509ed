// Package model defines the domain types used across the application.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the canonical wire format for all timestamps:
// ISO-8601 with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseTimestamp parses a canonical timestamp string. The string must
// round-trip: re-serializing the parsed value has to reproduce the input
// exactly, so values that merely parse (extra precision, missing padding,
// non-canonical offsets) are rejected.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	if t.Format(TimestampLayout) != s {
		return time.Time{}, fmt.Errorf("timestamp %q is not in canonical form", s)
	}
	return t, nil
}

// FormatTimestamp serializes a time in the canonical wire format, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Message is a single chat message. Producers may attach arbitrary extra
// fields; those are kept in Extra and survive filtering unmodified.
type Message struct {
	ChatID    string
	SenderID  string
	Timestamp string
	Text      string
	Extra     map[string]any
}

// messageFields are the fixed JSON keys of a Message; everything else goes
// into Extra.
var messageFields = map[string]bool{
	"chat_id":   true,
	"sender_id": true,
	"timestamp": true,
	"text":      true,
}

// MarshalJSON serializes the fixed fields alongside all Extra fields.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		if !messageFields[k] {
			out[k] = v
		}
	}
	out["chat_id"] = m.ChatID
	out["sender_id"] = m.SenderID
	out["timestamp"] = m.Timestamp
	out["text"] = m.Text
	return json.Marshal(out)
}

// UnmarshalJSON decodes the fixed fields and preserves unknown keys in Extra.
// A fixed field carrying a non-string value is a decode error.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message{}
	for k, v := range raw {
		if !messageFields[k] {
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
			continue
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("message field %q must be a string", k)
		}
		switch k {
		case "chat_id":
			m.ChatID = s
		case "sender_id":
			m.SenderID = s
		case "timestamp":
			m.Timestamp = s
		case "text":
			m.Text = s
		}
	}
	return nil
}

// DedupKey returns the exact identity tuple used for duplicate removal.
func (m Message) DedupKey() string {
	return m.ChatID + "|" + m.SenderID + "|" + m.Timestamp + "|" + m.Text
}

// TimePeriod is a half-open time window [Start, End).
type TimePeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Bounds parses and validates both ends of the period.
func (p TimePeriod) Bounds() (start, end time.Time, err error) {
	if p.Start == "" || p.End == "" {
		return start, end, fmt.Errorf("period must have both start and end")
	}
	if start, err = ParseTimestamp(p.Start); err != nil {
		return start, end, fmt.Errorf("period start: %w", err)
	}
	if end, err = ParseTimestamp(p.End); err != nil {
		return start, end, fmt.Errorf("period end: %w", err)
	}
	if !start.Before(end) {
		return start, end, fmt.Errorf("period start %s must be before end %s", p.Start, p.End)
	}
	return start, end, nil
}

// FilterStats reports per-stage counts of a filter run.
type FilterStats struct {
	TotalProcessed         int `json:"totalProcessed"`
	FilteredBySubscription int `json:"filteredBySubscription"`
	FilteredByTimePeriod   int `json:"filteredByTimePeriod"`
	DuplicatesRemoved      int `json:"duplicatesRemoved"`
	FinalCount             int `json:"finalCount"`
}

// ItemType discriminates the ContentItem union.
type ItemType string

// Supported item types.
const (
	ItemHomework       ItemType = "homework"
	ItemScheduleChange ItemType = "schedule_change"
	ItemAnnouncement   ItemType = "announcement"
)

// AssignmentType describes what kind of work a homework item asks for.
type AssignmentType string

// Supported assignment types.
const (
	AssignmentExercise AssignmentType = "exercise"
	AssignmentProject  AssignmentType = "project"
	AssignmentReading  AssignmentType = "reading"
	AssignmentOther    AssignmentType = "other"
)

// ChangeType describes what kind of schedule change occurred.
type ChangeType string

// Supported change types.
const (
	ChangeTime         ChangeType = "time_change"
	ChangeLocation     ChangeType = "location_change"
	ChangeCancellation ChangeType = "cancellation"
	ChangeReschedule   ChangeType = "reschedule"
)

// AnnouncementType describes the nature of an announcement.
type AnnouncementType string

// Supported announcement types.
const (
	AnnouncementEvent          AnnouncementType = "event"
	AnnouncementPermissionSlip AnnouncementType = "permission_slip"
	AnnouncementNotice         AnnouncementType = "notice"
	AnnouncementOther          AnnouncementType = "other"
)

// Urgency is the urgency level of an announcement.
type Urgency string

// Supported urgency levels.
const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// ContentItem is an actionable item extracted from a chat message. Type
// selects the variant; variant-specific fields are empty for other types.
// All date fields use the canonical timestamp format.
type ContentItem struct {
	Type            ItemType `json:"type"`
	ChatID          string   `json:"chat_id"`
	SenderID        string   `json:"sender_id"`
	Timestamp       string   `json:"timestamp"`
	Content         string   `json:"content"`
	OriginalMessage string   `json:"original_message"`

	// Homework fields.
	Subject        string         `json:"subject,omitempty"`
	DueDate        string         `json:"due_date,omitempty"`
	AssignmentType AssignmentType `json:"assignment_type,omitempty"`
	Pages          string         `json:"pages,omitempty"`

	// Schedule change fields.
	ChangeType       ChangeType `json:"change_type,omitempty"`
	OriginalTime     string     `json:"original_time,omitempty"`
	NewTime          string     `json:"new_time,omitempty"`
	OriginalLocation string     `json:"original_location,omitempty"`
	NewLocation      string     `json:"new_location,omitempty"`

	// Announcement fields.
	AnnouncementType AnnouncementType `json:"announcement_type,omitempty"`
	Urgency          Urgency          `json:"urgency,omitempty"`
	RelatedDate      string           `json:"related_date,omitempty"`
}

// ClassificationResult pairs a content item with the classifier's confidence
// in the winning category, in [0, 1].
type ClassificationResult struct {
	Item       ContentItem `json:"item"`
	Confidence float64     `json:"confidence"`
}
