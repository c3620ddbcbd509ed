package rules

import "time"

// defaultTables returns the built-in bilingual keyword tables. Hebrew
// entries are written in their normalized form (straight quotes), matching
// the extractor's text normalization.
func defaultTables() *tables {
	return &tables{
		abbreviations: map[string]string{
			"hw":    "homework",
			"hwk":   "homework",
			"tmrw":  "tomorrow",
			"tmw":   "tomorrow",
			"tdy":   "today",
			"asap":  "as soon as possible",
			"pls":   "please",
			"plz":   "please",
			"thx":   "thanks",
			"ex":    "exercise",
			"ch":    "chapter",
			"pg":    "page",
			"pgs":   "pages",
			"rm":    "room",
			"mtg":   "meeting",
			`ש"ב`:   "שיעורי בית",
			`ביה"ס`: "בית הספר",
			`חנ"ג`:  "חינוך גופני",
			"עמ'":   "עמוד",
			"תרג'":  "תרגיל",
		},
		stopwords: []string{
			"a", "an", "the", "is", "are", "was", "were", "be", "been", "am",
			"to", "of", "in", "on", "at", "for", "with", "and", "or", "but",
			"if", "so", "it", "this", "that", "these", "those", "will",
			"would", "can", "could", "should", "must", "please", "have",
			"has", "had", "do", "does", "did", "not", "no", "yes", "from",
			"by", "as", "all", "any", "there", "here", "about", "your",
			"our", "my", "his", "her", "their", "its", "i", "we", "you",
			"he", "she", "they", "them", "us", "what", "when", "where",
			"who", "how", "why",
			"של", "את", "זה", "זו", "אל", "על", "עם", "אם", "כי", "גם",
			"לא", "כן", "יש", "אין", "אני", "אתה", "הוא", "היא", "אנחנו",
			"אתם", "הם", "הן", "מה", "מי", "איפה", "מתי", "למה", "איך",
			"אבל", "או", "כל", "עוד", "רק", "אז", "שם", "פה", "כאן",
			"בבקשה", "תודה",
		},
		subjects: []subjectWords{
			{"math", []string{"math", "maths", "mathematics", "algebra", "geometry", "מתמטיקה", "חשבון", "אלגברה", "הנדסה"}},
			{"science", []string{"science", "biology", "chemistry", "physics", "מדעים", "ביולוגיה", "כימיה", "פיזיקה"}},
			{"english", []string{"english", "אנגלית"}},
			{"hebrew", []string{"hebrew", "עברית", "לשון"}},
			{"history", []string{"history", "היסטוריה"}},
			{"geography", []string{"geography", "גאוגרפיה", "גיאוגרפיה"}},
			{"sports", []string{"pe", "gym", "sport", "sports", "physical education", "ספורט", "חינוך גופני", "התעמלות"}},
			{"art", []string{"art", "drawing", "painting", "אמנות", "אומנות", "ציור"}},
			{"music", []string{"music", "מוזיקה", "מוסיקה"}},
			{"technology", []string{"technology", "computers", "computer science", "טכנולוגיה", "מחשבים"}},
		},
		keywords: map[string][]string{
			"rel_today":     {"today", "tonight", "היום", "הערב"},
			"rel_tomorrow":  {"tomorrow", "מחר", "מחרתיים"},
			"rel_yesterday": {"yesterday", "אתמול"},
			"rel_next_week": {"next week", "שבוע הבא", "בשבוע הבא"},
			"rel_this_week": {"this week", "השבוע"},

			"homework": {"homework", "assignment", "assignments", "worksheet", "שיעורי בית", "שיעורים להכנה", "מטלה", "דף עבודה"},
			"chapter":  {"chapter", "chapters", "unit", "פרק", "פרקים", "יחידה"},
			"action": {
				"complete", "finish", "solve", "read", "write", "prepare",
				"practice", "submit", "review", "memorize",
				"להכין", "לפתור", "לקרוא", "לכתוב", "להגיש", "לתרגל", "לסיים", "לחזור על",
			},
			"due": {"due", "deadline", "hand in", "turn in", "להגשה", "להגיש עד", "עד יום", "דדליין"},

			"change": {
				"change", "changed", "changes", "moved", "move", "postponed",
				"delayed", "switched", "cancelled", "canceled", "cancel",
				"reschedule", "rescheduled",
				"שינוי", "שונה", "הועבר", "הוזז", "נדחה", "בוטל", "מבוטל", "ביטול",
			},
			"time_change": {
				"moved to", "postponed to", "postponed", "delayed", "starts at",
				"start at", "begins at", "earlier than usual", "later than usual",
				"נדחה ל", "הוקדם", "יתחיל ב", "מתחיל ב", "יתקיים בשעה",
			},
			"cancellation": {
				"cancelled", "canceled", "cancellation", "no class", "no school",
				"will not take place", "is off",
				"בוטל", "מבוטל", "ביטול", "לא יתקיים", "אין שיעור", "אין לימודים",
			},
			"location_change": {
				"room", "classroom", "location", "relocated", "different room",
				"חדר", "כיתה אחרת", "מיקום",
			},
			"weekday": {
				"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
				"יום ראשון", "יום שני", "יום שלישי", "יום רביעי", "יום חמישי", "יום שישי", "שבת",
			},

			"event": {
				"party", "meeting", "ceremony", "celebration", "show",
				"performance", "concert", "fair", "assembly",
				"מסיבה", "אסיפה", "אסיפת הורים", "טקס", "מופע", "הצגה", "הרצאה",
			},
			"permission_slip": {
				"permission slip", "permission slips", "permission form",
				"signed form", "signed permission",
				"אישור הורים", "אישור חתום", "טופס אישור",
			},
			"urgent":   {"urgent", "urgently", "immediately", "right away", "as soon as possible", "דחוף", "בדחיפות", "מיידי", "בהקדם"},
			"reminder": {"reminder", "remember", "don't forget", "dont forget", "תזכורת", "תזכרו", "לא לשכוח", "אל תשכחו"},
			"info": {
				"please note", "note that", "announcement", "attention", "fyi", "update",
				"הודעה", "לתשומת לבכם", "לידיעתכם", "עדכון",
			},

			"exercise": {"exercise", "exercises", "drill", "תרגיל", "תרגילים"},
			"project":  {"project", "presentation", "poster", "פרויקט", "עבודת חקר", "מצגת"},
			"reading":  {"read", "reading", "book", "story", "לקרוא", "קריאה", "ספר", "סיפור"},

			"urgency_high": {"urgent", "immediately", "right away", "critical", "דחוף", "מיידי", "בהקדם"},
			"urgency_low":  {"fyi", "no rush", "whenever", "optional", "לידיעה בלבד", "לא דחוף", "אופציונלי"},
		},
	}
}

// monthNames maps bilingual month tokens to calendar months.
func monthNames() map[string]time.Month {
	return map[string]time.Month{
		"january": time.January, "jan": time.January, "ינואר": time.January,
		"february": time.February, "feb": time.February, "פברואר": time.February,
		"march": time.March, "mar": time.March, "מרץ": time.March,
		"april": time.April, "apr": time.April, "אפריל": time.April,
		"may": time.May, "מאי": time.May,
		"june": time.June, "jun": time.June, "יוני": time.June,
		"july": time.July, "jul": time.July, "יולי": time.July,
		"august": time.August, "aug": time.August, "אוגוסט": time.August,
		"september": time.September, "sep": time.September, "ספטמבר": time.September,
		"october": time.October, "oct": time.October, "אוקטובר": time.October,
		"november": time.November, "nov": time.November, "נובמבר": time.November,
		"december": time.December, "dec": time.December, "דצמבר": time.December,
	}
}
