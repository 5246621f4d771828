package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/commune-chat/intent-api/internal/models"
)

// MembershipRepository reads the community roster owned by the host
// platform. This API only ever reads it.
type MembershipRepository struct {
	db *sqlx.DB
}

// NewMembershipRepository constructs the repository.
func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// ListAdmins returns the user ids of all admins and co-admins of a
// community.
func (r *MembershipRepository) ListAdmins(ctx context.Context, communityID string) ([]string, error) {
	const query = `SELECT user_id FROM community_members WHERE community_id = $1 AND role = ANY($2) ORDER BY joined_at ASC`
	roles := pq.Array([]string{string(models.RoleAdmin), string(models.RoleCoAdmin)})
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, communityID, roles); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return ids, nil
}

// GetRole returns a member's role within a community.
func (r *MembershipRepository) GetRole(ctx context.Context, communityID, userID string) (models.UserRole, error) {
	const query = `SELECT role FROM community_members WHERE community_id = $1 AND user_id = $2 LIMIT 1`
	var role models.UserRole
	if err := r.db.GetContext(ctx, &role, query, communityID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("get member role: %w", err)
	}
	return role, nil
}
