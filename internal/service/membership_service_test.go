package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-chat/intent-api/internal/models"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

type stubMembershipRepo struct {
	admins     []string
	adminCalls int
	role       models.UserRole
	roleErr    error
}

func (s *stubMembershipRepo) ListAdmins(_ context.Context, _ string) ([]string, error) {
	s.adminCalls++
	return s.admins, nil
}

func (s *stubMembershipRepo) GetRole(_ context.Context, _, _ string) (models.UserRole, error) {
	if s.roleErr != nil {
		return "", s.roleErr
	}
	return s.role, nil
}

type memoryCache struct {
	store map[string][]byte
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.store == nil {
		c.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = payload
	return nil
}

func TestAdminRosterCachesSecondRead(t *testing.T) {
	repo := &stubMembershipRepo{admins: []string{"admin-1", "admin-2"}}
	svc := NewMembershipService(repo, &memoryCache{}, time.Minute, nil)

	first, err := svc.AdminRoster(context.Background(), "comm-1")
	require.NoError(t, err)
	second, err := svc.AdminRoster(context.Background(), "comm-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"admin-1", "admin-2"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.adminCalls)
}

func TestAdminRosterWithoutCache(t *testing.T) {
	repo := &stubMembershipRepo{admins: []string{"admin-1"}}
	svc := NewMembershipService(repo, nil, time.Minute, nil)

	_, err := svc.AdminRoster(context.Background(), "comm-1")
	require.NoError(t, err)
	_, err = svc.AdminRoster(context.Background(), "comm-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.adminCalls)
}

func TestRoleForbiddenForNonMember(t *testing.T) {
	repo := &stubMembershipRepo{roleErr: sql.ErrNoRows}
	svc := NewMembershipService(repo, nil, time.Minute, nil)

	_, err := svc.Role(context.Background(), "comm-1", "stranger")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRoleReturnsMemberRole(t *testing.T) {
	repo := &stubMembershipRepo{role: models.RoleCoAdmin}
	svc := NewMembershipService(repo, nil, time.Minute, nil)

	role, err := svc.Role(context.Background(), "comm-1", "user-1")
	require.NoError(t, err)
	assert.True(t, role.IsAdmin())
}
