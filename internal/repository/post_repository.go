package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/commune-chat/intent-api/internal/models"
)

// PostRepository writes announcement posts into the community feed.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository constructs the repository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a feed post.
func (r *PostRepository) Create(ctx context.Context, post *models.CommunityPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO community_posts (id, community_id, author_id, content, post_type, event_id, created_at)
VALUES (:id, :community_id, :author_id, :content, :post_type, :event_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}
