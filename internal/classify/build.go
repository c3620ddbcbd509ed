package classify

import (
	"classdigest/internal/extract"
	"classdigest/internal/model"
)

// commonItem fills the fields shared by every content item. Content is the
// cleaned (normalized, abbreviation-expanded) text; the raw message is kept
// alongside it.
func commonItem(typ model.ItemType, raw string, meta Meta, ents extract.Entities) model.ContentItem {
	return model.ContentItem{
		Type:            typ,
		ChatID:          meta.ChatID,
		SenderID:        meta.SenderID,
		Timestamp:       meta.Timestamp,
		Content:         ents.ProcessedText,
		OriginalMessage: raw,
	}
}

func (c *Classifier) homeworkItem(raw string, meta Meta, ents extract.Entities) model.ContentItem {
	item := commonItem(model.ItemHomework, raw, meta, ents)
	item.Subject = firstSubject(ents)
	item.AssignmentType = c.assignmentType(ents.ProcessedText)
	item.Pages = ents.Pages
	if len(ents.Dates) > 0 {
		item.DueDate = model.FormatTimestamp(ents.Dates[0])
	}
	return item
}

func (c *Classifier) scheduleItem(raw string, meta Meta, ents extract.Entities) model.ContentItem {
	item := commonItem(model.ItemScheduleChange, raw, meta, ents)
	item.Subject = firstSubject(ents)
	item.ChangeType = c.changeType(ents.ProcessedText)

	// Two extracted dates on a time change read as before/after; otherwise
	// the first date is the new time.
	if item.ChangeType == model.ChangeTime && len(ents.Dates) >= 2 {
		item.OriginalTime = model.FormatTimestamp(ents.Dates[0])
		item.NewTime = model.FormatTimestamp(ents.Dates[1])
	} else if len(ents.Dates) > 0 {
		item.NewTime = model.FormatTimestamp(ents.Dates[0])
	}

	if item.ChangeType == model.ChangeLocation {
		if m := c.rules.Room.FindStringSubmatch(ents.ProcessedText); m != nil {
			item.NewLocation = m[1]
		}
	}
	return item
}

func (c *Classifier) announcementItem(raw string, meta Meta, ents extract.Entities) model.ContentItem {
	item := commonItem(model.ItemAnnouncement, raw, meta, ents)
	item.AnnouncementType = c.announcementType(ents.ProcessedText)
	item.Urgency = c.urgency(ents.ProcessedText)
	if len(ents.Dates) > 0 {
		item.RelatedDate = model.FormatTimestamp(ents.Dates[0])
	}
	return item
}

func (c *Classifier) assignmentType(text string) model.AssignmentType {
	switch {
	case c.rules.ExerciseWork.MatchString(text):
		return model.AssignmentExercise
	case c.rules.ProjectWork.MatchString(text):
		return model.AssignmentProject
	case c.rules.ReadingWork.MatchString(text):
		return model.AssignmentReading
	default:
		return model.AssignmentOther
	}
}

func (c *Classifier) changeType(text string) model.ChangeType {
	switch {
	case c.rules.Cancellation.MatchString(text):
		return model.ChangeCancellation
	case c.rules.LocationChange.MatchString(text):
		return model.ChangeLocation
	case c.rules.TimeChange.MatchString(text):
		return model.ChangeTime
	default:
		return model.ChangeReschedule
	}
}

func (c *Classifier) announcementType(text string) model.AnnouncementType {
	switch {
	case c.rules.Event.MatchString(text):
		return model.AnnouncementEvent
	case c.rules.PermissionSlip.MatchString(text):
		return model.AnnouncementPermissionSlip
	case c.rules.Reminder.MatchString(text), c.rules.Urgent.MatchString(text):
		return model.AnnouncementNotice
	default:
		return model.AnnouncementOther
	}
}

func (c *Classifier) urgency(text string) model.Urgency {
	switch {
	case c.rules.UrgencyHigh.MatchString(text):
		return model.UrgencyHigh
	case c.rules.UrgencyLow.MatchString(text):
		return model.UrgencyLow
	default:
		return model.UrgencyMedium
	}
}

func firstSubject(ents extract.Entities) string {
	if len(ents.Subjects) == 0 {
		return ""
	}
	return ents.Subjects[0]
}
