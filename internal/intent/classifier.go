// Package intent turns free-form chat text into a confidence-scored,
// structured intent. The deterministic classifier here is the fallback
// path; when the external detector answers, its verdict is preferred
// wholesale (see Merge).
package intent

import (
	"regexp"
	"time"

	"github.com/commune-chat/intent-api/internal/extract"
	"github.com/commune-chat/intent-api/internal/models"
)

// Heuristic confidence levels. The event score reflects that both halves
// of the AND gate matched; anything else is a weak guess.
const (
	eventConfidence = 0.75
	otherConfidence = 0.5
)

var actionPattern = regexp.MustCompile(`(?i)\b(?:schedule|plan|planning|host|hosting|organize|organise|organizing|arrange|arranging|meet|join\s+us|let'?s\s+(?:do|have|get|meet|plan)|meetup|meeting|class|session|gathering|event|workshop|hangout|party|game\s+night|get[- ]together)\b`)

// Verdict is a classification outcome, from either path.
type Verdict struct {
	Type       models.IntentType
	Confidence float64
	Details    models.IntentDetails
}

// Classify applies the heuristic AND gate: a message is an event intent
// only when it contains both an action-verb-or-social-noun token and a
// date-or-time token. One without the other stays "other".
func Classify(text string, now time.Time) Verdict {
	if actionPattern.MatchString(text) && extract.HasDateOrTime(text, now) {
		details := BuildEventDetails(text, now)
		return Verdict{
			Type:       models.IntentTypeEvent,
			Confidence: eventConfidence,
			Details:    models.IntentDetails{Type: models.IntentTypeEvent, Event: details},
		}
	}
	return Verdict{
		Type:       models.IntentTypeOther,
		Confidence: otherConfidence,
		Details:    models.IntentDetails{Type: models.IntentTypeOther, Note: summarize(text)},
	}
}

// BuildEventDetails runs the full field extractor set over the text.
// Missing date or time stays nil and signals "needs manual input"
// downstream; it is never defaulted here.
func BuildEventDetails(text string, now time.Time) *models.EventDetails {
	details := &models.EventDetails{Tags: extract.ExtractTags(text)}

	if title, ok := extract.ExtractTitle(text); ok {
		details.Title = title
	}
	details.Description = summarize(text)

	if date, ok := extract.ExtractDate(text, now); ok {
		details.Date = &date
	}
	if t, ok := extract.ExtractTime(text); ok {
		details.Time = &t
	}
	if loc, ok := extract.ExtractLocation(text); ok {
		details.Location = &loc
	}
	if mins, ok := extract.ExtractDuration(text); ok {
		details.SuggestedDuration = &mins
	}
	if capacity, ok := extract.ExtractCapacity(text); ok {
		details.SuggestedCapacity = &capacity
	}
	if url, ok := extract.ExtractMeetingURL(text); ok {
		details.MeetingURL = &url
	}
	details.IsOnline = extract.ExtractIsOnline(text)

	return details
}

const summaryLimit = 140

// summarize truncates on a rune boundary so multi-byte text never turns
// into invalid UTF-8 in the stored note or description.
func summarize(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return string(runes[:summaryLimit]) + "…"
}
