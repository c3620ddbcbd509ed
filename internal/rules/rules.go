// Package rules holds the bilingual (English/Hebrew) pattern tables driving
// entity extraction and classification. A Set is compiled once and passed to
// the extractor and classifier by reference; it is never mutated afterwards.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RelativeKind identifies a relative-date keyword family.
type RelativeKind string

// Supported relative-date kinds.
const (
	RelToday     RelativeKind = "today"
	RelTomorrow  RelativeKind = "tomorrow"
	RelYesterday RelativeKind = "yesterday"
	RelNextWeek  RelativeKind = "next_week"
	RelThisWeek  RelativeKind = "this_week"
)

// Relative is a compiled relative-date rule.
type Relative struct {
	Kind    RelativeKind
	Pattern *regexp.Regexp
}

// Subject is a compiled subject-detection rule.
type Subject struct {
	Key     string
	Pattern *regexp.Regexp
}

// Set is the full compiled rule set.
type Set struct {
	Abbreviations map[string]string
	Stopwords     map[string]bool

	Subjects []Subject
	Relative []Relative
	Months   map[string]time.Month

	// Structural extraction patterns.
	MonthName    *regexp.Regexp // built from Months keys; one capture group
	MonthPattern string         // the raw month alternation, for composition
	NumericDate  *regexp.Regexp
	Pages        *regexp.Regexp
	Exercises    *regexp.Regexp
	ClockTime    *regexp.Regexp
	Room         *regexp.Regexp

	// Category-scoring patterns.
	Homework       *regexp.Regexp
	Chapter        *regexp.Regexp
	ActionVerb     *regexp.Regexp
	DuePhrase      *regexp.Regexp
	ChangeKeyword  *regexp.Regexp
	TimeChange     *regexp.Regexp
	Cancellation   *regexp.Regexp
	LocationChange *regexp.Regexp
	Weekday        *regexp.Regexp
	Event          *regexp.Regexp
	PermissionSlip *regexp.Regexp
	Urgent         *regexp.Regexp
	Reminder       *regexp.Regexp
	Info           *regexp.Regexp

	// Subtype-detection patterns.
	ExerciseWork *regexp.Regexp
	ProjectWork  *regexp.Regexp
	ReadingWork  *regexp.Regexp
	UrgencyHigh  *regexp.Regexp
	UrgencyLow   *regexp.Regexp
}

// Overrides is the YAML shape of a user rules file. All entries are merged
// on top of the built-in defaults.
type Overrides struct {
	Abbreviations map[string]string   `yaml:"abbreviations"`
	Stopwords     []string            `yaml:"stopwords"`
	Subjects      map[string][]string `yaml:"subjects"`
	Keywords      map[string][]string `yaml:"keywords"`
}

// Default compiles the built-in rule set.
func Default() *Set {
	s, err := defaultTables().compile()
	if err != nil {
		// The built-in tables are static; a compile failure is a programming
		// error caught by the package tests.
		panic(err)
	}
	return s
}

// Load compiles the built-in rule set merged with overrides from a YAML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied rules file
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	t := defaultTables()
	if err := t.merge(ov); err != nil {
		return nil, err
	}
	s, err := t.compile()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// tables is the raw keyword form of a rule set, before regexp compilation.
type tables struct {
	abbreviations map[string]string
	stopwords     []string
	subjects      []subjectWords
	keywords      map[string][]string
}

type subjectWords struct {
	key   string
	words []string
}

func (t *tables) merge(ov Overrides) error {
	for abbr, full := range ov.Abbreviations {
		t.abbreviations[strings.ToLower(abbr)] = full
	}
	t.stopwords = append(t.stopwords, ov.Stopwords...)
	for key, words := range ov.Subjects {
		found := false
		for i := range t.subjects {
			if t.subjects[i].key == key {
				t.subjects[i].words = append(t.subjects[i].words, words...)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown subject key %q in rules file", key)
		}
	}
	for group, words := range ov.Keywords {
		if _, ok := t.keywords[group]; !ok {
			return fmt.Errorf("unknown keyword group %q in rules file", group)
		}
		t.keywords[group] = append(t.keywords[group], words...)
	}
	return nil
}

func (t *tables) compile() (*Set, error) {
	s := &Set{
		Abbreviations: make(map[string]string, len(t.abbreviations)),
		Stopwords:     make(map[string]bool, len(t.stopwords)),
		Months:        monthNames(),
	}
	for abbr, full := range t.abbreviations {
		s.Abbreviations[strings.ToLower(abbr)] = full
	}
	for _, w := range t.stopwords {
		s.Stopwords[strings.ToLower(w)] = true
	}

	for _, sub := range t.subjects {
		re, err := keywordPattern(sub.words)
		if err != nil {
			return nil, fmt.Errorf("subject %q: %w", sub.key, err)
		}
		s.Subjects = append(s.Subjects, Subject{Key: sub.key, Pattern: re})
	}

	for _, rel := range []struct {
		kind  RelativeKind
		group string
	}{
		{RelToday, "rel_today"},
		{RelTomorrow, "rel_tomorrow"},
		{RelYesterday, "rel_yesterday"},
		{RelNextWeek, "rel_next_week"},
		{RelThisWeek, "rel_this_week"},
	} {
		re, err := keywordPattern(t.keywords[rel.group])
		if err != nil {
			return nil, fmt.Errorf("relative dates %q: %w", rel.kind, err)
		}
		s.Relative = append(s.Relative, Relative{Kind: rel.kind, Pattern: re})
	}

	var err error
	for _, kw := range []struct {
		dst   **regexp.Regexp
		group string
	}{
		{&s.Homework, "homework"},
		{&s.Chapter, "chapter"},
		{&s.ActionVerb, "action"},
		{&s.DuePhrase, "due"},
		{&s.ChangeKeyword, "change"},
		{&s.TimeChange, "time_change"},
		{&s.Cancellation, "cancellation"},
		{&s.LocationChange, "location_change"},
		{&s.Weekday, "weekday"},
		{&s.Event, "event"},
		{&s.PermissionSlip, "permission_slip"},
		{&s.Urgent, "urgent"},
		{&s.Reminder, "reminder"},
		{&s.Info, "info"},
		{&s.ExerciseWork, "exercise"},
		{&s.ProjectWork, "project"},
		{&s.ReadingWork, "reading"},
		{&s.UrgencyHigh, "urgency_high"},
		{&s.UrgencyLow, "urgency_low"},
	} {
		if *kw.dst, err = keywordPattern(t.keywords[kw.group]); err != nil {
			return nil, fmt.Errorf("keyword group %q: %w", kw.group, err)
		}
	}

	s.MonthName, s.MonthPattern = monthNamePattern(s.Months)
	s.NumericDate = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})(?:[./-](\d{2,4}))?\b`)
	s.ClockTime = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	s.Pages = regexp.MustCompile(`(?i)(?:\bpages?|עמ'|עמודים|עמוד)\s*(\d+(?:\s*-\s*\d+)?)`)
	s.Exercises = regexp.MustCompile(`(?i)(?:\bexercises?|תרגילים|תרגיל)\s*(\d+(?:\s*-\s*\d+)?)`)
	// The captured room token must contain a digit so phrases like
	// "class moved" are not read as a location.
	s.Room = regexp.MustCompile(`(?i)(?:\b(?:room|class(?:room)?)|חדר|כיתה)\s+([\p{L}\p{N}]*\d[\p{L}\p{N}]*)`)
	return s, nil
}

// keywordPattern compiles a list of words and phrases into one alternation.
// ASCII-word edges get \b anchors; Hebrew words rely on literal matching
// since RE2 word boundaries are ASCII-only. Longer entries sort first so a
// phrase is never shadowed by one of its prefixes.
func keywordPattern(words []string) (*regexp.Regexp, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("empty keyword list")
	}
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	alts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		p := regexp.QuoteMeta(w)
		p = strings.ReplaceAll(p, ` `, `\s+`)
		if isASCIIWordChar(w[0]) {
			p = `\b` + p
		}
		if isASCIIWordChar(w[len(w)-1]) {
			p += `\b`
		}
		alts = append(alts, p)
	}
	if len(alts) == 0 {
		return nil, fmt.Errorf("empty keyword list")
	}
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, `|`) + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile keyword pattern: %w", err)
	}
	return re, nil
}

func isASCIIWordChar(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func monthNamePattern(months map[string]time.Month) (*regexp.Regexp, string) {
	names := make([]string, 0, len(months))
	for name := range months {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	alts := make([]string, 0, len(names))
	for _, n := range names {
		p := regexp.QuoteMeta(n)
		if isASCIIWordChar(n[0]) {
			p = `\b` + p
		}
		if isASCIIWordChar(n[len(n)-1]) {
			p += `\b`
		}
		alts = append(alts, p)
	}
	pattern := `(` + strings.Join(alts, `|`) + `)`
	return regexp.MustCompile(`(?i)` + pattern), pattern
}
