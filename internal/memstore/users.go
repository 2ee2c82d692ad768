package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/user"
)

// Users implements user.Repository.
type Users struct{ v view }

func copyUser(u *user.User) *user.User {
	cp := *u
	cp.Roles = append([]access.Role{}, u.Roles...)
	return &cp
}

func (r *Users) Create(_ context.Context, u *user.User) error {
	defer r.v.lock()()
	for _, have := range r.v.s.st.users {
		if have.Username == u.Username {
			return apperr.Conflictf("username %q is already taken", u.Username)
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	if u.Roles == nil {
		u.Roles = []access.Role{}
	}
	r.v.s.st.users[u.ID] = copyUser(u)
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*user.User, error) {
	defer r.v.lock()()
	u, ok := r.v.s.st.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return copyUser(u), nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*user.User, error) {
	defer r.v.lock()()
	for _, u := range r.v.s.st.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (r *Users) SetAdmin(_ context.Context, id string, admin bool) error {
	defer r.v.lock()()
	u, ok := r.v.s.st.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.IsAdmin = admin
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Users) ListByRole(_ context.Context, role access.Role) ([]user.User, error) {
	defer r.v.lock()()
	out := []user.User{}
	for _, u := range r.v.s.st.users {
		if hasRole(u, role) {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *Users) AddRole(_ context.Context, userID string, role access.Role) error {
	defer r.v.lock()()
	u, ok := r.v.s.st.users[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	if !hasRole(u, role) {
		u.Roles = append(u.Roles, role)
		sort.Slice(u.Roles, func(i, j int) bool { return u.Roles[i] < u.Roles[j] })
	}
	return nil
}

func (r *Users) RemoveRole(_ context.Context, userID string, role access.Role) (bool, error) {
	defer r.v.lock()()
	u, ok := r.v.s.st.users[userID]
	if !ok {
		return false, nil
	}
	for i, have := range u.Roles {
		if have == role {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) HasRole(_ context.Context, userID string, role access.Role) (bool, error) {
	defer r.v.lock()()
	u, ok := r.v.s.st.users[userID]
	if !ok {
		return false, nil
	}
	return hasRole(u, role), nil
}

// hasRole looks at stored memberships only.
func hasRole(u *user.User, role access.Role) bool {
	for _, have := range u.Roles {
		if have == role {
			return true
		}
	}
	return false
}
