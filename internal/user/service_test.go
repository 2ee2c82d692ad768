package user

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/logger"
)

//
// ===== in-memory stub (implements Repository) =====
//

type stubRepo struct {
	users map[string]*User
}

func newStubRepo() *stubRepo { return &stubRepo{users: map[string]*User{}} }

func (s *stubRepo) Create(_ context.Context, u *User) error {
	for _, have := range s.users {
		if have.Username == u.Username {
			return apperr.Conflictf("username %q is already taken", u.Username)
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	cp.Roles = append([]access.Role{}, u.Roles...)
	s.users[u.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	cp.Roles = append([]access.Role{}, u.Roles...)
	return &cp, nil
}

func (s *stubRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for id, u := range s.users {
		if u.Username == username {
			return s.GetByID(ctx, id)
		}
	}
	return nil, apperr.NotFound("user")
}

func (s *stubRepo) SetAdmin(_ context.Context, id string, admin bool) error {
	u, ok := s.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.IsAdmin = admin
	return nil
}

func (s *stubRepo) ListByRole(_ context.Context, role access.Role) ([]User, error) {
	out := []User{}
	for _, u := range s.users {
		if u.Principal().HasRole(role) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *stubRepo) AddRole(_ context.Context, id string, role access.Role) error {
	u, ok := s.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	if !u.Principal().HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
	return nil
}

func (s *stubRepo) RemoveRole(_ context.Context, id string, role access.Role) (bool, error) {
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	for i, r := range u.Roles {
		if r == role {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) HasRole(_ context.Context, id string, role access.Role) (bool, error) {
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	return u.Principal().HasRole(role), nil
}

func newTestService() (*Service, *stubRepo) {
	repo := newStubRepo()
	return NewService(repo, NewTokenIssuer("test-secret", time.Hour), logger.Discard()), repo
}

func register(t *testing.T, svc *Service, username string) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: username, Email: username + "@example.com", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()
	u := register(t, svc, "ana")

	assert.NotEmpty(t, u.ID)
	assert.False(t, u.IsAdmin)
	assert.Empty(t, u.Roles)
	assert.NotEqual(t, "s3cret-pass", repo.users[u.ID].PasswordHash)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "ana", Password: "another-pass"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "bo", Password: "short"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestIssueTokenAndResolve(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u := register(t, svc, "ana")

	tok, err := svc.IssueToken(ctx, LoginRequest{Username: "ana", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)

	p, err := svc.Resolve(ctx, tok.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.True(t, p.HasRole(access.RoleCustomer))

	_, err = svc.IssueToken(ctx, LoginRequest{Username: "ana", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.IssueToken(ctx, LoginRequest{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResolve_RejectsBadTokens(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	// valid signature, user gone
	tok, _, err := svc.tokens.Issue(uuid.NewString())
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, tok)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	tok, _, err = svc.tokens.Issue("not-a-uuid")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, tok)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
}

func TestResolve_SeesRoleChangesImmediately(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u := register(t, svc, "mia")
	tok, err := svc.IssueToken(ctx, LoginRequest{Username: "mia", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.AddToRole(ctx, access.RoleManager, "mia")
	require.NoError(t, err)
	p, err := svc.Resolve(ctx, tok.AuthToken)
	require.NoError(t, err)
	assert.True(t, p.HasRole(access.RoleManager))

	require.NoError(t, svc.RemoveFromRole(ctx, access.RoleManager, u.ID))
	p, err = svc.Resolve(ctx, tok.AuthToken)
	require.NoError(t, err)
	assert.False(t, p.HasRole(access.RoleManager))
	assert.True(t, p.HasRole(access.RoleCustomer))
}

func TestGroupMembership(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	crew := register(t, svc, "dan")
	other := register(t, svc, "eve")

	_, err := svc.AddToRole(ctx, access.RoleDeliveryCrew, "nobody")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.AddToRole(ctx, access.RoleDeliveryCrew, " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err := svc.AddToRole(ctx, access.RoleDeliveryCrew, "dan")
	require.NoError(t, err)
	assert.Equal(t, []access.Role{access.RoleDeliveryCrew}, got.Roles)

	// adding twice is a no-op
	_, err = svc.AddToRole(ctx, access.RoleDeliveryCrew, "dan")
	require.NoError(t, err)

	members, err := svc.ListByRole(ctx, access.RoleDeliveryCrew)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, crew.ID, members[0].ID)

	ok, err := svc.HasRole(ctx, crew.ID, access.RoleDeliveryCrew)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.HasRole(ctx, other.ID, access.RoleCustomer)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.GetInRole(ctx, access.RoleDeliveryCrew, crew.ID)
	require.NoError(t, err)
	_, err = svc.GetInRole(ctx, access.RoleDeliveryCrew, other.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.GetInRole(ctx, access.RoleManager, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, svc.RemoveFromRole(ctx, access.RoleDeliveryCrew, other.ID), apperr.ErrNotFound)
	require.NoError(t, svc.RemoveFromRole(ctx, access.RoleDeliveryCrew, crew.ID))
	assert.ErrorIs(t, svc.RemoveFromRole(ctx, access.RoleDeliveryCrew, crew.ID), apperr.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root", "root-pass-123", "root@example.com"))
	u, err := repo.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	// second run keeps the same account
	require.NoError(t, svc.EnsureAdmin(ctx, "root", "other-pass-123", ""))
	assert.Len(t, repo.users, 1)
	assert.True(t, CheckPassword(repo.users[u.ID].PasswordHash, "root-pass-123"))

	// an existing plain account is promoted
	plain := register(t, svc, "boss")
	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "whatever-123", ""))
	assert.True(t, repo.users[plain.ID].IsAdmin)
}
