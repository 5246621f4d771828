package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole is a community-scoped role.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleCoAdmin UserRole = "CO_ADMIN"
	RoleMember  UserRole = "MEMBER"
)

// IsAdmin reports whether the role carries admin privileges.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleCoAdmin
}

// CommunityMember is one row of the membership roster.
type CommunityMember struct {
	CommunityID string    `db:"community_id" json:"community_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Role        UserRole  `db:"role" json:"role"`
	JoinedAt    time.Time `db:"joined_at" json:"joined_at"`
}

// JWTClaims is the payload of host-issued access tokens. The platform's
// auth service mints these; this API only validates them.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	CommunityID string   `json:"community_id"`
	Role        UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Pagination describes list envelopes.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
