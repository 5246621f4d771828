package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-chat/intent-api/internal/models"
)

func TestCreateCalendarEvent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec("INSERT INTO calendar_events").WillReturnResult(sqlmock.NewResult(1, 1))

	location := "community center"
	event := &models.CalendarEvent{
		CommunityID:    "c1",
		Title:          "Yoga",
		StartTime:      time.Date(2026, 4, 21, 9, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 4, 21, 10, 0, 0, 0, time.UTC),
		Location:       &location,
		Tags:           []string{"fitness"},
		SourceIntentID: "i1",
		CreatedBy:      "admin1",
	}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCalendarEventByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "community_id", "title", "description", "start_time", "end_time", "location", "is_online", "meeting_url", "capacity", "tags", "source_intent_id", "created_by", "created_at", "updated_at"}).
		AddRow("e1", "c1", "Yoga", "", now, now.Add(time.Hour), nil, false, nil, nil, "{fitness}", "i1", "admin1", now, now)

	mock.ExpectQuery("SELECT .+ FROM calendar_events WHERE id").
		WithArgs("e1").
		WillReturnRows(rows)

	event, err := repo.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Yoga", event.Title)
	assert.Equal(t, []string{"fitness"}, event.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}
