// Package extract provides deterministic, pattern-based extraction of
// scheduling fields from free-form chat text. Every function here is pure:
// no I/O, no shared state, safe for concurrent use. A miss is reported as
// (zero value, false), never as an error and never as a default date.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

var (
	tomorrowPattern    = regexp.MustCompile(`(?i)\btomorrow\b`)
	nextWeekdayPattern = regexp.MustCompile(`(?i)\bnext\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`)
	thisWeekdayPattern = regexp.MustCompile(`(?i)\bthis\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday|weekend)\b`)
	monthDayPattern    = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)

	clockPattern    = regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	dayPartPattern  = regexp.MustCompile(`(?i)\b(morning|afternoon|evening)\b`)
	dayPartAnchors  = map[string]string{"morning": "09:00", "afternoon": "14:00", "evening": "18:00"}
	datePatternList = []func(string, time.Time) (time.Time, bool){matchTomorrow, matchNextWeekday, matchThisWeekday, matchMonthDay}
)

// ExtractDate parses a relative or absolute date phrase out of text,
// resolved against now. Patterns are tried in a fixed order and the first
// match wins: tomorrow, next <weekday>, this <weekday|weekend>,
// <Month> <day>. The result is formatted YYYY-MM-DD.
func ExtractDate(text string, now time.Time) (string, bool) {
	for _, match := range datePatternList {
		if d, ok := match(text, now); ok {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

func matchTomorrow(text string, now time.Time) (time.Time, bool) {
	if !tomorrowPattern.MatchString(text) {
		return time.Time{}, false
	}
	return midnight(now).AddDate(0, 0, 1), true
}

// matchNextWeekday advances to the next occurrence strictly after today.
// When today already is the named weekday the result is a full week out,
// never today.
func matchNextWeekday(text string, now time.Time) (time.Time, bool) {
	m := nextWeekdayPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	target := weekdays[strings.ToLower(m[1])]
	delta := int(target-now.Weekday()+7) % 7
	if delta == 0 {
		delta = 7
	}
	return midnight(now).AddDate(0, 0, delta), true
}

// matchThisWeekday resolves to the occurrence in the current week; if
// today matches it returns today. "this weekend" means the upcoming
// Saturday, wrapping past Sunday into the following week.
func matchThisWeekday(text string, now time.Time) (time.Time, bool) {
	m := thisWeekdayPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	word := strings.ToLower(m[1])
	target := time.Saturday
	if word != "weekend" {
		target = weekdays[word]
	}
	delta := int(target-now.Weekday()+7) % 7
	return midnight(now).AddDate(0, 0, delta), true
}

// matchMonthDay parses "March 3rd" style phrases. A date already behind
// now rolls forward one year.
func matchMonthDay(text string, now time.Time) (time.Time, bool) {
	m := monthDayPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month := months[strings.ToLower(m[1])]
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	if candidate.Before(midnight(now)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate, true
}

// ExtractTime parses a clock phrase ("at 6pm", "7:30 am") or one of the
// day-part words morning/afternoon/evening, which map to the fixed anchors
// 09:00, 14:00 and 18:00. The result is formatted HH:mm, 24-hour.
func ExtractTime(text string) (string, bool) {
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour < 1 || hour > 12 {
			return "", false
		}
		minute := 0
		if m[2] != "" {
			minute, err = strconv.Atoi(m[2])
			if err != nil || minute > 59 {
				return "", false
			}
		}
		meridiem := strings.ToLower(m[3])
		if meridiem == "pm" && hour < 12 {
			hour += 12
		}
		if meridiem == "am" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	if m := dayPartPattern.FindStringSubmatch(text); m != nil {
		return dayPartAnchors[strings.ToLower(m[1])], true
	}
	return "", false
}

// HasDateOrTime reports whether the text contains any date or time token
// the extractors recognise. The classifier uses this as one half of its
// AND gate.
func HasDateOrTime(text string, now time.Time) bool {
	if _, ok := ExtractDate(text, now); ok {
		return true
	}
	_, ok := ExtractTime(text)
	return ok
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
