package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"classdigest/internal/model"
)

// FormatDigest renders classified items as one digest message, grouped by
// item type in a fixed order.
func FormatDigest(results []model.ClassificationResult) string {
	if len(results) == 0 {
		return "Nothing actionable since the last digest."
	}

	groups := map[model.ItemType][]model.ClassificationResult{}
	for _, r := range results {
		groups[r.Item.Type] = append(groups[r.Item.Type], r)
	}

	var b strings.Builder
	b.WriteString("Class digest\n")

	sections := []struct {
		typ   model.ItemType
		title string
	}{
		{model.ItemHomework, "Homework"},
		{model.ItemScheduleChange, "Schedule changes"},
		{model.ItemAnnouncement, "Announcements"},
	}
	for _, sec := range sections {
		rs := groups[sec.typ]
		if len(rs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", sec.title)
		for _, r := range rs {
			b.WriteString(formatItem(r.Item))
		}
	}
	return b.String()
}

func formatItem(item model.ContentItem) string {
	var b strings.Builder
	switch item.Type {
	case model.ItemHomework:
		b.WriteString("• ")
		if item.Subject != "" {
			fmt.Fprintf(&b, "[%s] ", item.Subject)
		}
		b.WriteString(preview(item.OriginalMessage))
		if item.DueDate != "" {
			fmt.Fprintf(&b, "\n  due %s", formatDate(item.DueDate))
		}
		if item.Pages != "" {
			fmt.Fprintf(&b, ", pages %s", item.Pages)
		}
	case model.ItemScheduleChange:
		fmt.Fprintf(&b, "• (%s) %s", changeLabel(item.ChangeType), preview(item.OriginalMessage))
		if item.NewTime != "" {
			fmt.Fprintf(&b, "\n  new time %s", formatDate(item.NewTime))
		}
		if item.NewLocation != "" {
			fmt.Fprintf(&b, "\n  new location %s", item.NewLocation)
		}
	case model.ItemAnnouncement:
		b.WriteString("• ")
		if item.Urgency == model.UrgencyHigh {
			b.WriteString("URGENT: ")
		}
		b.WriteString(preview(item.OriginalMessage))
		if item.RelatedDate != "" {
			fmt.Fprintf(&b, "\n  on %s", formatDate(item.RelatedDate))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func changeLabel(c model.ChangeType) string {
	switch c {
	case model.ChangeCancellation:
		return "cancelled"
	case model.ChangeLocation:
		return "new room"
	case model.ChangeTime:
		return "new time"
	default:
		return "rescheduled"
	}
}

// preview caps a message body so one chatty message cannot dominate the
// digest. The cut lands on a rune boundary so multi-byte text stays valid
// UTF-8.
func preview(text string) string {
	if len(text) <= 200 {
		return text
	}
	cut := 200
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// formatDate renders a canonical timestamp in a compact human form,
// dropping the midnight time that date-only extractions carry.
func formatDate(ts string) string {
	t, err := model.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Mon, 2 Jan")
	}
	return t.Format("Mon, 2 Jan 15:04")
}
