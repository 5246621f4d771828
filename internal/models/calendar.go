package models

import "time"

// CalendarEvent is an event materialized from a confirmed intent.
type CalendarEvent struct {
	ID             string    `db:"id" json:"id"`
	CommunityID    string    `db:"community_id" json:"community_id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
	Location       *string   `db:"location" json:"location,omitempty"`
	IsOnline       bool      `db:"is_online" json:"is_online"`
	MeetingURL     *string   `db:"meeting_url" json:"meeting_url,omitempty"`
	Capacity       *int      `db:"capacity" json:"capacity,omitempty"`
	Tags           []string  `db:"-" json:"tags"`
	SourceIntentID string    `db:"source_intent_id" json:"source_intent_id"`
	CreatedBy      string    `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CalendarFilter narrows event listings.
type CalendarFilter struct {
	CommunityID string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// CommunityPost is a feed entry; materialization emits one announcement
// post referencing the created event.
type CommunityPost struct {
	ID          string    `db:"id" json:"id"`
	CommunityID string    `db:"community_id" json:"community_id"`
	AuthorID    string    `db:"author_id" json:"author_id"`
	Content     string    `db:"content" json:"content"`
	PostType    string    `db:"post_type" json:"post_type"`
	EventID     *string   `db:"event_id" json:"event_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PostTypeEventAnnouncement marks posts generated by materialization.
const PostTypeEventAnnouncement = "event_announcement"
