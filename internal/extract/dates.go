package extract

import (
	"strconv"
	"strings"
	"time"

	"classdigest/internal/rules"
)

// Dates merges three independent date extractors, in fixed order, each
// appending its matches: relative keywords resolved against now, numeric
// dates read day-first (Israeli convention) with a month-first fallback when
// the day-first reading is not a valid calendar date, and textual month
// names rolled forward a year when the resolved date is already past.
// Results are not deduplicated across extractors.
func (e *Extractor) Dates(text string, now time.Time) []time.Time {
	var out []time.Time
	lower := strings.ToLower(text)

	for _, r := range e.rules.Relative {
		for range r.Pattern.FindAllString(lower, -1) {
			out = append(out, resolveRelative(r.Kind, now))
		}
	}

	for _, m := range e.rules.NumericDate.FindAllStringSubmatch(text, -1) {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
			year = y
		}
		// Day-first, falling back to month-first only when day-first is not
		// a real calendar date. Inputs valid both ways (03/04) stay
		// ambiguous on purpose.
		if validDate(first, second, year) {
			out = append(out, time.Date(year, time.Month(second), first, 0, 0, 0, 0, time.UTC))
		} else if validDate(second, first, year) {
			out = append(out, time.Date(year, time.Month(first), second, 0, 0, 0, 0, time.UTC))
		}
	}

	out = append(out, e.monthNameDates(text, now)...)
	return out
}

func (e *Extractor) monthNameDates(text string, now time.Time) []time.Time {
	var out []time.Time
	emit := func(day int, name string) {
		month, ok := e.rules.Months[strings.ToLower(name)]
		if !ok || !validDate(day, int(month), now.Year()) {
			return
		}
		d := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
		// A month-day earlier than now means the next occurrence.
		if d.Before(now) {
			d = d.AddDate(1, 0, 0)
		}
		out = append(out, d)
	}
	for _, m := range e.dayMonthRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		emit(day, m[2])
	}
	for _, m := range e.monthDayRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[2])
		emit(day, m[1])
	}
	return out
}

func resolveRelative(kind rules.RelativeKind, now time.Time) time.Time {
	switch kind {
	case rules.RelTomorrow:
		return now.AddDate(0, 0, 1)
	case rules.RelYesterday:
		return now.AddDate(0, 0, -1)
	case rules.RelNextWeek:
		return now.AddDate(0, 0, 7)
	case rules.RelThisWeek:
		// The upcoming Friday (now itself when now is a Friday).
		return now.AddDate(0, 0, (5-int(now.Weekday())+7)%7)
	default:
		return now
	}
}

func validDate(day, month, year int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
