package extract

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"classdigest/internal/rules"
)

// A Tuesday at noon UTC.
var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestExtractor() *Extractor {
	return New(rules.Default())
}

func TestNormalize(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \n\t ", want: ""},
		{name: "collapses runs", in: "math  test\n\non   friday", want: "math test on friday"},
		{name: "trims edges", in: "  hello world  ", want: "hello world"},
		{name: "curly quotes", in: "don’t “forget”", want: `don't "forget"`},
		{name: "hebrew gershayim", in: "ש״ב מחר", want: `ש"ב מחר`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Normalize(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
			if again := e.Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestExpandAbbreviations(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "english short forms", in: "hw due tmrw pls", want: "homework due tomorrow please"},
		{name: "case insensitive", in: "HW tomorrow", want: "homework tomorrow"},
		{name: "whole words only", in: "show me the hws", want: "show me the hws"},
		{name: "prefix does not shadow longer word", in: "next exam", want: "next exam"},
		{name: "hebrew homework short form", in: `ש"ב למחר`, want: "שיעורי בית למחר"},
		{name: "hebrew page short form", in: "עמ' 12", want: "עמוד 12"},
		{name: "untouched text", in: "regular sentence here", want: "regular sentence here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExpandAbbreviations(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExpandAbbreviations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubjects(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "none", in: "see you later", want: nil},
		{name: "single english", in: "math test next week", want: []string{"math"}},
		{name: "pe as whole word", in: "PE class cancelled", want: []string{"sports"}},
		{name: "pe not inside word", in: "the european trip", want: nil},
		{name: "multiple subjects", in: "history and geography homework", want: []string{"history", "geography"}},
		{name: "hebrew subject", in: "מבחן במתמטיקה מחר", want: []string{"math"}},
		{name: "hebrew pe", in: "שיעור חינוך גופני בוטל", want: []string{"sports"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Subjects(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Subjects mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDates(t *testing.T) {
	e := newTestExtractor()
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		in   string
		want []time.Time
	}{
		{name: "none", in: "nothing here", want: nil},
		{name: "tomorrow", in: "test tomorrow", want: []time.Time{testNow.AddDate(0, 0, 1)}},
		{name: "hebrew tomorrow", in: "מבחן מחר", want: []time.Time{testNow.AddDate(0, 0, 1)}},
		{name: "next week", in: "trip next week", want: []time.Time{testNow.AddDate(0, 0, 7)}},
		{
			// Tuesday resolves to the coming Friday.
			name: "this week is upcoming friday",
			in:   "due this week",
			want: []time.Time{time.Date(2026, time.March, 13, 12, 0, 0, 0, time.UTC)},
		},
		{name: "numeric day first", in: "due 15/4", want: []time.Time{day(2026, time.April, 15)}},
		{name: "numeric with full year", in: "on 25.12.2026", want: []time.Time{day(2026, time.December, 25)}},
		{name: "numeric with short year", in: "on 5-6-27", want: []time.Time{day(2027, time.June, 5)}},
		{name: "month first fallback", in: "meeting 4/25", want: []time.Time{day(2026, time.April, 25)}},
		{name: "invalid both ways skipped", in: "score was 13/13", want: nil},
		{name: "month name after day", in: "due 15 June", want: []time.Time{day(2026, time.June, 15)}},
		{name: "month name before day", in: "due June 15", want: []time.Time{day(2026, time.June, 15)}},
		{name: "past month rolls forward", in: "on 15 January", want: []time.Time{day(2027, time.January, 15)}},
		{name: "hebrew month", in: "הטיול ב-15 ביוני", want: []time.Time{day(2026, time.June, 15)}},
		{
			name: "extractors append in order",
			in:   "tomorrow and on 20/3 and on June 1",
			want: []time.Time{
				testNow.AddDate(0, 0, 1),
				day(2026, time.March, 20),
				day(2026, time.June, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Dates(tt.in, testNow)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Dates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestThisWeekOnFriday(t *testing.T) {
	e := newTestExtractor()
	friday := time.Date(2026, time.March, 13, 9, 0, 0, 0, time.UTC)

	got := e.Dates("due this week", friday)
	want := []time.Time{friday}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dates mismatch (-want +got):\n%s", diff)
	}
}

func TestPagesAndExercises(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name          string
		in            string
		wantPages     string
		wantExercises []string
	}{
		{name: "none", in: "no references"},
		{name: "single page", in: "read page 45", wantPages: "45"},
		{name: "page range", in: "pages 12 - 15 please", wantPages: "12-15"},
		{name: "hebrew page", in: "עמוד 7", wantPages: "7"},
		{name: "single exercise", in: "exercise 3", wantExercises: []string{"3"}},
		{name: "exercise range", in: "exercises 1-10", wantExercises: []string{"1-10"}},
		{
			name:          "multiple exercises",
			in:            "exercise 2 and exercise 5",
			wantExercises: []string{"2", "5"},
		},
		{name: "hebrew exercise", in: "תרגיל 4 להגשה", wantExercises: []string{"4"}},
		{
			name:          "both",
			in:            "exercises 1-10 on page 45",
			wantPages:     "45",
			wantExercises: []string{"1-10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.wantPages, e.Pages(tt.in)); diff != "" {
				t.Errorf("Pages mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantExercises, e.ExerciseNumbers(tt.in)); diff != "" {
				t.Errorf("ExerciseNumbers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImportance(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		in   string
		min  float64
		max  float64
	}{
		{name: "empty is zero", in: "", min: 0, max: 0},
		{name: "stopwords only is zero", in: "the of and to in", min: 0, max: 0},
		{name: "plain text stays low", in: "we are on the way", min: 0.01, max: 0.5},
		{name: "homework boost", in: "math homework for the class", min: 0.5, max: 1},
		{name: "urgent boost", in: "urgent: bring the forms", min: 0.7, max: 1},
		{name: "date and exclamation boosts", in: "trip tomorrow, bring lunch!", min: 0.9, max: 1},
		{name: "never above one", in: "urgent homework due tomorrow!!", min: 1, max: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Importance(tt.in)
			if got < tt.min || got > tt.max {
				t.Errorf("Importance(%q) = %v, want in [%v, %v]", tt.in, got, tt.min, tt.max)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	e := newTestExtractor()

	ents, importance := e.Extract("Math hw: solve  exercises 1-5 on pg 12. Due tmrw!", testNow)

	want := Entities{
		ProcessedText:   "Math homework: solve exercises 1-5 on page 12. Due tomorrow!",
		Subjects:        []string{"math"},
		Dates:           []time.Time{testNow.AddDate(0, 0, 1), time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)},
		Pages:           "12",
		ExerciseNumbers: []string{"1-5"},
	}
	if diff := cmp.Diff(want, ents); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
	if importance < 0.6 || importance > 1 {
		t.Errorf("importance = %v, want in [0.6, 1]", importance)
	}
}
