package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:schedule|plan|host|organize|organise|arrange|create|have)\s+(?:a|an|the)\s+(.+?)\s+(?:on|for|at|in)\b`),
	regexp.MustCompile(`(?i)\b(?:let's|lets)\s+(?:do|have)\s+(?:a|an|the)\s+(.+?)\s+(?:on|for|at|in)\b`),
}

var sentenceEnd = regexp.MustCompile(`[.!?\n]`)

// ExtractTitle pulls a candidate event title. It first tries verb +
// article + noun-phrase patterns bounded by a trailing preposition, then
// falls back to the first sentence when that sentence is between 10 and
// 50 characters.
func ExtractTitle(text string) (string, bool) {
	for _, p := range titlePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			title := strings.TrimSpace(m[1])
			if title != "" {
				return title, true
			}
		}
	}
	first := text
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		first = text[:loc[0]]
	}
	first = strings.TrimSpace(first)
	if len(first) >= 10 && len(first) <= 50 {
		return first, true
	}
	return "", false
}

var (
	venuePattern    = regexp.MustCompile(`(?i)\b(?:at|in)\s+(?:the\s+)?([a-z0-9' ]+?(?:park|center|centre|studio|gym|room|hall|building|place))\b`)
	labelPattern    = regexp.MustCompile(`(?i)\b(?:location|venue)\s*:\s*([^\n,.;!?]+)`)
	properPattern   = regexp.MustCompile(`\b(?:at|in)\s+((?:[A-Z][a-z']+(?:\s+|$)){1,4})`)
	locationStriped = " .,!?"
)

// ExtractLocation finds a venue phrase. Venue-noun endings are preferred,
// then explicit location:/venue: labels. The capitalized-word heuristic is
// the least reliable rule and is tried last.
func ExtractLocation(text string) (string, bool) {
	if m := venuePattern.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], locationStriped), true
	}
	if m := labelPattern.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], locationStriped), true
	}
	if m := properPattern.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], locationStriped), true
	}
	return "", false
}

var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+)\s*hours?\s+(?:and\s+)?(\d+)\s*min(?:ute)?s?\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*h(?:ou)?rs?\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*min(?:ute)?s?\b`),
}

// ExtractDuration returns a total duration in minutes. Patterns are tried
// in order, first match wins; multiple mentions are never summed.
func ExtractDuration(text string) (int, bool) {
	for i, p := range durationPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		first, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch i {
		case 0:
			mins, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			return first*60 + mins, true
		case 1:
			return first * 60, true
		default:
			return first, true
		}
	}
	return 0, false
}

var capacityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+)\s+(?:people|persons?|participants?|attendees?)\b`),
	regexp.MustCompile(`(?i)\bcapacity\s+of\s+(\d+)\b`),
	regexp.MustCompile(`(?i)\bup\s+to\s+(\d+)\b`),
}

// ExtractCapacity returns a headcount limit when the text mentions one.
func ExtractCapacity(text string) (int, bool) {
	for _, p := range capacityPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

var (
	hashtagPattern  = regexp.MustCompile(`#([a-zA-Z0-9_]+)`)
	taggedAsPattern = regexp.MustCompile(`(?i)\btagged\s+as\s+([a-zA-Z0-9_-]+)`)
	categoryPattern = regexp.MustCompile(`(?i)\bcategory\s*:\s*([a-zA-Z0-9_-]+)`)

	keywordTags = []string{
		"yoga", "fitness", "workout", "running", "meditation", "wellness",
		"social", "networking", "party", "game", "book", "coffee",
		"art", "music", "food",
	}
)

// ExtractTags collects hashtags, "tagged as X", "category: X" labels and a
// fixed activity keyword set. The result is deduplicated with insertion
// order preserved; no tags yields an empty slice, never nil semantics the
// caller has to special-case.
func ExtractTags(text string) []string {
	tags := []string{}
	seen := map[string]struct{}{}
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range taggedAsPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range categoryPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	lower := strings.ToLower(text)
	for _, kw := range keywordTags {
		if containsWord(lower, kw) {
			add(kw)
		}
	}
	return tags
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// ExtractMeetingURL returns the first http(s) token in the text.
func ExtractMeetingURL(text string) (string, bool) {
	m := urlPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.TrimRight(m, ".,;!?)"), true
}

var onlinePattern = regexp.MustCompile(`(?i)\b(?:online|virtual|remote|zoom|google\s+meet|teams\s+call)\b`)

// ExtractIsOnline reports whether the text describes an online gathering,
// either via an explicit keyword or by carrying a meeting link.
func ExtractIsOnline(text string) bool {
	if onlinePattern.MatchString(text) {
		return true
	}
	_, hasURL := ExtractMeetingURL(text)
	return hasURL
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(haystack[start-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
