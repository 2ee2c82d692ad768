// Package order reads and maintains orders after checkout. Managers see every
// order; everyone else sees only their own.
package order

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

// RoleChecker answers role membership for users other than the caller.
type RoleChecker interface {
	HasRole(ctx context.Context, userID string, role access.Role) (bool, error)
}

type Service struct {
	repo  Repository
	roles RoleChecker
	log   *slog.Logger
}

func NewService(repo Repository, roles RoleChecker, log *slog.Logger) *Service {
	return &Service{repo: repo, roles: roles, log: log}
}

// owner is the OwnerID filter for p's visible set.
func owner(p access.Principal) string {
	if p.HasRole(access.RoleManager) {
		return ""
	}
	return p.UserID
}

func (s *Service) List(ctx context.Context, p access.Principal, limit, offset int) ([]Order, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrNotAuthenticated
	}
	return s.repo.List(ctx, Filter{OwnerID: owner(p), Limit: limit, Offset: offset})
}

// Get reports an order outside p's visible set exactly like a missing one.
func (s *Service) Get(ctx context.Context, p access.Principal, id string) (*Order, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrNotAuthenticated
	}
	return s.repo.Get(ctx, id, owner(p))
}

// Update changes delivery crew and status. With full set (PUT) both fields
// are replaced; otherwise only the fields present in in are.
func (s *Service) Update(ctx context.Context, p access.Principal, id string, in UpdateOrderRequest, full bool) (*Order, error) {
	o, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if full {
		if in.Status == nil {
			return nil, apperr.Validationf("status is required")
		}
		if in.DeliveryCrew == nil {
			o.DeliveryCrewID = nil
		}
	}
	if in.Status != nil {
		st := strings.TrimSpace(*in.Status)
		if err := validStatus(st); err != nil {
			return nil, err
		}
		o.Status = st
	}
	if in.DeliveryCrew != nil {
		crew, err := s.checkCrew(ctx, strings.TrimSpace(*in.DeliveryCrew))
		if err != nil {
			return nil, err
		}
		o.DeliveryCrewID = crew
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("order updated", "order_id", o.ID, "by", p.UserID, "status", o.Status)
	return o, nil
}

// checkCrew resolves the delivery_crew field. "" unassigns.
func (s *Service) checkCrew(ctx context.Context, id string) (*string, error) {
	if id == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.Validationf("delivery_crew must be a user id")
	}
	ok, err := s.roles.HasRole(ctx, id, access.RoleDeliveryCrew)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validationf("user %s is not in the delivery crew", id)
	}
	return &id, nil
}

func (s *Service) Delete(ctx context.Context, p access.Principal, id string) error {
	if !p.Authenticated() {
		return apperr.ErrNotAuthenticated
	}
	if err := s.repo.Delete(ctx, id, owner(p)); err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id, "by", p.UserID)
	return nil
}
