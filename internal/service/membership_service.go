package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

type membershipRepository interface {
	ListAdmins(ctx context.Context, communityID string) ([]string, error)
	GetRole(ctx context.Context, communityID, userID string) (models.UserRole, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// MembershipService resolves community roles, caching the admin roster.
type MembershipService struct {
	repo     membershipRepository
	cache    rosterCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewMembershipService constructs the service. A nil cache disables
// roster caching.
func NewMembershipService(repo membershipRepository, cache rosterCache, cacheTTL time.Duration, logger *zap.Logger) *MembershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &MembershipService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// AdminRoster returns the admin and co-admin user ids of a community.
func (s *MembershipService) AdminRoster(ctx context.Context, communityID string) ([]string, error) {
	key := fmt.Sprintf("roster:admins:%s", communityID)
	if s.cache != nil {
		var cached []string
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("roster cache read failed", zap.String("community_id", communityID), zap.Error(err))
		}
	}

	admins, err := s.repo.ListAdmins(ctx, communityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve admin roster")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, admins, s.cacheTTL); err != nil {
			s.logger.Warn("roster cache write failed", zap.String("community_id", communityID), zap.Error(err))
		}
	}

	return admins, nil
}

// Role returns a member's role, ErrForbidden for non-members.
func (s *MembershipService) Role(ctx context.Context, communityID, userID string) (models.UserRole, error) {
	role, err := s.repo.GetRole(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "not a member of this community")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve member role")
	}
	return role, nil
}
