package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 2026-04-15.
var wednesday = time.Date(2026, 4, 15, 10, 30, 0, 0, time.UTC)

func TestExtractDateTomorrow(t *testing.T) {
	date, ok := ExtractDate("let's grab coffee tomorrow", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2026-04-16", date)
}

func TestExtractDateNextWeekday(t *testing.T) {
	date, ok := ExtractDate("team run next Friday", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2026-04-17", date)
}

func TestExtractDateNextWeekdayWrapsFullWeek(t *testing.T) {
	monday := time.Date(2026, 4, 13, 9, 0, 0, 0, time.UTC)
	date, ok := ExtractDate("standup next Monday", monday)
	require.True(t, ok)
	// Never today: a full seven days out.
	assert.Equal(t, "2026-04-20", date)
}

func TestExtractDateThisWeekdayIsTodayWhenMatching(t *testing.T) {
	date, ok := ExtractDate("can we meet this Wednesday?", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2026-04-15", date)
}

func TestExtractDateThisWeekend(t *testing.T) {
	date, ok := ExtractDate("hike this weekend", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2026-04-18", date)

	sunday := time.Date(2026, 4, 19, 8, 0, 0, 0, time.UTC)
	date, ok = ExtractDate("hike this weekend", sunday)
	require.True(t, ok)
	assert.Equal(t, "2026-04-25", date)
}

func TestExtractDateMonthDayRollsForward(t *testing.T) {
	date, ok := ExtractDate("party on March 1st", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2027-03-01", date)

	january := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	date, ok = ExtractDate("party on March 1st", january)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01", date)
}

func TestExtractDateMonthDaySameDayStaysThisYear(t *testing.T) {
	firstOfMarch := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	date, ok := ExtractDate("party on March 1st", firstOfMarch)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01", date)
}

func TestExtractDatePrecedence(t *testing.T) {
	// First pattern in the fixed order wins.
	date, ok := ExtractDate("tomorrow, or maybe next Friday", wednesday)
	require.True(t, ok)
	assert.Equal(t, "2026-04-16", date)
}

func TestExtractDateMiss(t *testing.T) {
	_, ok := ExtractDate("no schedule words here", wednesday)
	assert.False(t, ok)
}

func TestExtractTimeTwelveHourConversion(t *testing.T) {
	cases := map[string]string{
		"at 12am":     "00:00",
		"at 12pm":     "12:00",
		"at 6pm":      "18:00",
		"at 9am":      "09:00",
		"7:30 pm":     "19:30",
		"around 11am": "11:00",
	}
	for input, want := range cases {
		got, ok := ExtractTime(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
}

func TestExtractTimeDayParts(t *testing.T) {
	cases := map[string]string{
		"sometime in the morning": "09:00",
		"this afternoon works":    "14:00",
		"free in the evening":     "18:00",
	}
	for input, want := range cases {
		got, ok := ExtractTime(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
}

func TestExtractTimeMiss(t *testing.T) {
	_, ok := ExtractTime("no clock here")
	assert.False(t, ok)
}

func TestHasDateOrTime(t *testing.T) {
	assert.True(t, HasDateOrTime("see you tomorrow", wednesday))
	assert.True(t, HasDateOrTime("see you at 6pm", wednesday))
	assert.False(t, HasDateOrTime("see you around", wednesday))
}
