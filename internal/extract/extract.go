// Package extract turns raw bilingual chat text into normalized text plus
// structured entities (subjects, dates, page and exercise references) and an
// importance score. Every operation is a total function over any input
// string; none of them returns an error.
package extract

import (
	"regexp"
	"strings"
	"time"

	"classdigest/internal/rules"
)

// Importance boosts and their trigger patterns.
const (
	boostHomework = 0.3
	boostDate     = 0.2
	boostExclaim  = 0.1
	boostUrgent   = 0.4
)

// Entities holds everything extracted from a single message.
type Entities struct {
	ProcessedText   string
	Subjects        []string
	Dates           []time.Time
	Pages           string
	ExerciseNumbers []string
}

// tokenRe matches a single word token. Quote characters are allowed inside a
// token so Hebrew short forms written with gershayim (after normalization a
// straight quote) stay whole, as does a trailing geresh.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:["'][\p{L}\p{N}]+)*'?`)

// quoteNormalizer canonicalizes typographic quote and apostrophe glyphs,
// including Hebrew geresh and gershayim.
var quoteNormalizer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "′", "'", "׳", "'",
	"“", `"`, "”", `"`, "„", `"`, "″", `"`, "״", `"`,
)

// Extractor derives entities from message text using an injected rule set.
type Extractor struct {
	rules      *rules.Set
	dayMonthRe *regexp.Regexp
	monthDayRe *regexp.Regexp
}

// New creates an Extractor bound to the given rule set.
func New(rs *rules.Set) *Extractor {
	return &Extractor{
		rules: rs,
		// Day adjacent to a month name, in either order. The optional bet
		// prefix covers the Hebrew "on <month>" form.
		dayMonthRe: regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?ב?` + rs.MonthPattern),
		monthDayRe: regexp.MustCompile(`(?i)ב?` + rs.MonthPattern + `\s+(\d{1,2})\b`),
	}
}

// Normalize collapses whitespace runs to single spaces, canonicalizes quote
// glyphs, and trims. Normalize(Normalize(x)) == Normalize(x).
func (e *Extractor) Normalize(text string) string {
	return strings.Join(strings.Fields(quoteNormalizer.Replace(text)), " ")
}

// ExpandAbbreviations replaces whole-word abbreviations with their long
// forms. Matching is per token, so an abbreviation that is a prefix of a
// longer word never pre-empts it.
func (e *Extractor) ExpandAbbreviations(text string) string {
	return tokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		if full, ok := e.rules.Abbreviations[strings.ToLower(tok)]; ok {
			return full
		}
		return tok
	})
}

// Subjects returns the subject keys whose keyword pattern matches anywhere
// in the text. The result is a set; slice order follows the rule table for
// determinism only.
func (e *Extractor) Subjects(text string) []string {
	var out []string
	for _, s := range e.rules.Subjects {
		if s.Pattern.MatchString(text) {
			out = append(out, s.Key)
		}
	}
	return out
}

// Pages returns the first page reference ("45" or "12-15"), or "" if none.
func (e *Extractor) Pages(text string) string {
	m := e.rules.Pages.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return compactRange(m[1])
}

// ExerciseNumbers returns all exercise references in order of appearance.
func (e *Extractor) ExerciseNumbers(text string) []string {
	var out []string
	for _, m := range e.rules.Exercises.FindAllStringSubmatch(text, -1) {
		out = append(out, compactRange(m[1]))
	}
	return out
}

// Importance scores how actionable a text looks, in [0, 1]: the ratio of
// non-stopword tokens to total tokens, boosted by homework keywords, date
// patterns, exclamation marks, and urgency keywords. Text with no
// non-stopword tokens scores 0 outright.
func (e *Extractor) Importance(text string) float64 {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	content := 0
	for _, tok := range tokens {
		if !e.rules.Stopwords[tok] {
			content++
		}
	}
	if content == 0 {
		return 0
	}

	score := float64(content) / float64(len(tokens))
	if e.rules.Homework.MatchString(text) {
		score += boostHomework
	}
	if e.hasDatePattern(text) {
		score += boostDate
	}
	if strings.Contains(text, "!") {
		score += boostExclaim
	}
	if e.rules.Urgent.MatchString(text) {
		score += boostUrgent
	}
	return clamp01(score)
}

// ContentWords counts the non-stopword tokens in the text.
func (e *Extractor) ContentWords(text string) int {
	n := 0
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if !e.rules.Stopwords[tok] {
			n++
		}
	}
	return n
}

// Extract runs the full pipeline over raw text: normalization, abbreviation
// expansion, then entity extraction and importance scoring over the
// processed form. now anchors relative-date resolution.
func (e *Extractor) Extract(text string, now time.Time) (Entities, float64) {
	processed := e.ExpandAbbreviations(e.Normalize(text))
	ents := Entities{
		ProcessedText:   processed,
		Subjects:        e.Subjects(processed),
		Dates:           e.Dates(processed, now),
		Pages:           e.Pages(processed),
		ExerciseNumbers: e.ExerciseNumbers(processed),
	}
	return ents, e.Importance(processed)
}

func (e *Extractor) hasDatePattern(text string) bool {
	for _, r := range e.rules.Relative {
		if r.Pattern.MatchString(text) {
			return true
		}
	}
	return e.rules.NumericDate.MatchString(text) ||
		e.dayMonthRe.MatchString(text) ||
		e.monthDayRe.MatchString(text)
}

// compactRange strips whitespace inside a captured "N - M" range.
func compactRange(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "\t", "")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
