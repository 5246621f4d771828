package intent

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-chat/intent-api/internal/models"
)

// Wednesday, 2026-04-15.
var now = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

func TestClassifyRequiresBothHalves(t *testing.T) {
	// Action token without a date or time token stays "other".
	v := Classify("let's meet sometime", now)
	assert.Equal(t, models.IntentTypeOther, v.Type)
	assert.InDelta(t, 0.5, v.Confidence, 0.001)

	// Adding a date token flips it to an event.
	v = Classify("let's meet tomorrow", now)
	assert.Equal(t, models.IntentTypeEvent, v.Type)
	assert.InDelta(t, 0.75, v.Confidence, 0.001)
}

func TestClassifyDateAloneIsNotEvent(t *testing.T) {
	v := Classify("tomorrow is my birthday", now)
	assert.Equal(t, models.IntentTypeOther, v.Type)
}

func TestClassifyBuildsEventDetails(t *testing.T) {
	v := Classify("Let's plan a yoga session next Tuesday at 9am at the community center", now)
	require.Equal(t, models.IntentTypeEvent, v.Type)
	require.NotNil(t, v.Details.Event)

	details := v.Details.Event
	require.NotNil(t, details.Date)
	assert.Equal(t, "2026-04-21", *details.Date)
	require.NotNil(t, details.Time)
	assert.Equal(t, "09:00", *details.Time)
	require.NotNil(t, details.Location)
	assert.Contains(t, *details.Location, "community center")
	assert.Contains(t, details.Tags, "yoga")
	assert.False(t, details.IsOnline)
}

func TestClassifyOtherKeepsNote(t *testing.T) {
	v := Classify("what time does the gym open?", now)
	assert.Equal(t, models.IntentTypeOther, v.Type)
	assert.Nil(t, v.Details.Event)
	assert.NotEmpty(t, v.Details.Note)
}

func TestSummarizeTruncatesOnRuneBoundary(t *testing.T) {
	v := Classify(strings.Repeat("é", 200), now)
	require.Equal(t, models.IntentTypeOther, v.Type)

	assert.True(t, utf8.ValidString(v.Details.Note))
	// 140 runes plus the ellipsis.
	assert.Equal(t, 141, utf8.RuneCountInString(v.Details.Note))
}
