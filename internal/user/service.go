// Package user is identity: accounts, passwords, access tokens and the
// manager / delivery-crew group memberships.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

type Service struct {
	repo   Repository
	tokens *TokenIssuer
	log    *slog.Logger
}

func NewService(repo Repository, tokens *TokenIssuer, log *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, log: log}
}

func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Roles:        []access.Role{},
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// IssueToken checks the credentials and signs an access token. Unknown
// user and wrong password fail identically.
func (s *Service) IssueToken(ctx context.Context, in LoginRequest) (*TokenResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, apperr.Validationf("username and password are required")
	}
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validationf("unable to log in with provided credentials")
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperr.Validationf("unable to log in with provided credentials")
	}

	tok, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AuthToken: tok, TokenType: "Bearer", ExpiresAt: exp}, nil
}

// Resolve verifies token and loads the current user with its roles, so a
// membership change applies to the very next request.
func (s *Service) Resolve(ctx context.Context, token string) (access.Principal, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return access.Principal{}, apperr.ErrNotAuthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return access.Principal{}, apperr.ErrNotAuthenticated
	}
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return access.Principal{}, apperr.ErrNotAuthenticated
	}
	if err != nil {
		return access.Principal{}, err
	}
	return u.Principal(), nil
}

func (s *Service) HasRole(ctx context.Context, userID string, role access.Role) (bool, error) {
	if role == access.RoleCustomer {
		u, err := s.repo.GetByID(ctx, userID)
		if err != nil {
			return false, err
		}
		return len(u.Roles) == 0, nil
	}
	return s.repo.HasRole(ctx, userID, role)
}

func (s *Service) ListByRole(ctx context.Context, role access.Role) ([]User, error) {
	return s.repo.ListByRole(ctx, role)
}

// AddToRole puts an existing user, named by username, in the group.
func (s *Service) AddToRole(ctx context.Context, role access.Role, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validationf("username is required")
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validationf("user %q does not exist", username)
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	s.log.Info("group member added", "group", role, "user_id", u.ID)
	return s.repo.GetByID(ctx, u.ID)
}

// GetInRole returns the user only while it is a member of role.
func (s *Service) GetInRole(ctx context.Context, role access.Role, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	if !u.Principal().HasRole(role) {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

func (s *Service) RemoveFromRole(ctx context.Context, role access.Role, id string) error {
	ok, err := s.repo.RemoveRole(ctx, id, role)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("user")
	}
	s.log.Info("group member removed", "group", role, "user_id", id)
	return nil
}

// EnsureAdmin creates the bootstrap admin account, or grants admin to an
// existing account of that name. The password of an existing account is
// left alone.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, email string) error {
	u, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		if u.IsAdmin {
			return nil
		}
		s.log.Info("granting admin", "user_id", u.ID)
		return s.repo.SetAdmin(ctx, u.ID, true)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	in := RegisterRequest{Username: username, Email: email, Password: password}
	if err := in.Validate(); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	admin := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("admin created", "user_id", admin.ID, "username", username)
	return nil
}
