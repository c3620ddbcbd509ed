package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCompiles(t *testing.T) {
	s := Default()

	if len(s.Subjects) == 0 || len(s.Relative) == 0 {
		t.Fatalf("default set missing subject or relative tables")
	}
	for _, tc := range []struct {
		name string
		got  bool
	}{
		{"homework en", s.Homework.MatchString("math homework for monday")},
		{"homework he", s.Homework.MatchString("שיעורי בית למחר")},
		{"cancellation", s.Cancellation.MatchString("PE class cancelled today")},
		{"permission slip", s.PermissionSlip.MatchString("please sign the permission slip")},
		{"urgent he", s.Urgent.MatchString("דחוף! לחתום היום")},
		{"room token needs digit", !s.Room.MatchString("science class moved outside")},
		{"room number", s.Room.MatchString("moved to room 204")},
	} {
		if !tc.got {
			t.Errorf("%s: pattern did not behave as expected", tc.name)
		}
	}
}

func TestKeywordPatternPhraseNotShadowed(t *testing.T) {
	re, err := keywordPattern([]string{"test", "test tomorrow"})
	if err != nil {
		t.Fatalf("keywordPattern: %v", err)
	}
	got := re.FindString("big test tomorrow morning")
	if got != "test tomorrow" {
		t.Errorf("FindString = %q, want the full phrase", got)
	}
}

func TestKeywordPatternEmpty(t *testing.T) {
	if _, err := keywordPattern(nil); err == nil {
		t.Fatal("keywordPattern(nil) = nil error, want failure")
	}
}

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesOverrides(t *testing.T) {
	path := writeRules(t, `
abbreviations:
  "asap": "as soon as possible"
stopwords:
  - "okay"
subjects:
  math:
    - "calculus"
keywords:
  homework:
    - "worksheet"
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Abbreviations["asap"] != "as soon as possible" {
		t.Errorf("override abbreviation not merged: %q", s.Abbreviations["asap"])
	}
	if !s.Stopwords["okay"] {
		t.Error("override stopword not merged")
	}
	var math Subject
	for _, sub := range s.Subjects {
		if sub.Key == "math" {
			math = sub
		}
	}
	if math.Pattern == nil || !math.Pattern.MatchString("calculus quiz friday") {
		t.Error("override subject word not merged into math")
	}
	if !math.Pattern.MatchString("math quiz friday") {
		t.Error("built-in subject words lost after merge")
	}
	if !s.Homework.MatchString("finish the worksheet") {
		t.Error("override keyword not merged into homework group")
	}
	if !s.Homework.MatchString("math homework") {
		t.Error("built-in keywords lost after merge")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown subject", "subjects:\n  astrology:\n    - \"stars\"\n"},
		{"unknown keyword group", "keywords:\n  gossip:\n    - \"did you hear\"\n"},
		{"malformed yaml", "subjects: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeRules(t, tc.body)); err == nil {
				t.Fatal("Load = nil error, want failure")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load = nil error, want failure")
	}
}
