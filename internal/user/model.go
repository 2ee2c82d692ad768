package user

import (
	"strings"
	"time"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

type User struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email,omitempty"`
	PasswordHash string        `json:"-"`
	IsAdmin      bool          `json:"is_admin"`
	Roles        []access.Role `json:"roles"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Principal is the request identity for u.
func (u *User) Principal() access.Principal {
	return access.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Admin:    u.IsAdmin,
		Roles:    append([]access.Role(nil), u.Roles...),
	}
}

// RegisterRequest payload of sign-up.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" example:"ana"`
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return apperr.Validationf("username is required")
	}
	if len(r.Password) < 8 {
		return apperr.Validationf("password must be at least 8 characters")
	}
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		return apperr.Validationf("email is not valid")
	}
	return nil
}

// LoginRequest payload of token login.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" example:"ana"`
	Password string `json:"password" example:"s3cret-pass"`
}

// TokenResponse is returned by a successful login.
// swagger:model TokenResponse
type TokenResponse struct {
	AuthToken string    `json:"auth_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AddMemberRequest names the user to add to a group.
// swagger:model AddMemberRequest
type AddMemberRequest struct {
	Username string `json:"username" example:"mia"`
}
