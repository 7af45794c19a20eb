package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/common"
)

// Service applies the ownership rules on top of the Repository: clients see
// only their own devices, admins manage the whole fleet.
type Service struct {
	repo Repository
}

// NewService wires the device service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the devices the caller may see.
func (s *Service) List(ctx context.Context, caller *auth.Principal) ([]*Device, error) {
	if caller == nil {
		return nil, common.ErrForbidden
	}
	if caller.IsAdmin() {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, caller.UserID)
}

// Get returns one device. Non-admins asking for someone else's device get
// common.ErrorNotFound, the same as for a device that does not exist.
func (s *Service) Get(ctx context.Context, caller *auth.Principal, id string) (*Device, error) {
	if caller == nil {
		return nil, common.ErrForbidden
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && d.OwnerID != caller.UserID {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

// Create registers a device. Admin only.
func (s *Service) Create(ctx context.Context, caller *auth.Principal, d *Device) (*Device, error) {
	if !caller.IsAdmin() {
		return nil, common.ErrForbidden
	}

	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, fmt.Errorf("%w: device name is required", common.ErrInvalidArgument)
	}
	if d.MaxHourlyKWH < 0 {
		return nil, fmt.Errorf("%w: max hourly consumption must not be negative", common.ErrInvalidArgument)
	}

	return s.repo.Create(ctx, d)
}

// Update overwrites the mutable fields of a device. Admin only.
func (s *Service) Update(ctx context.Context, caller *auth.Principal, d *Device) (*Device, error) {
	if !caller.IsAdmin() {
		return nil, common.ErrForbidden
	}

	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, fmt.Errorf("%w: device name is required", common.ErrInvalidArgument)
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, d.ID)
}

// AssignOwner moves the device to another user. Admin only.
func (s *Service) AssignOwner(ctx context.Context, caller *auth.Principal, id, ownerID string) error {
	if !caller.IsAdmin() {
		return common.ErrForbidden
	}
	return s.repo.AssignOwner(ctx, id, ownerID)
}

// Delete removes the device. Admin only.
func (s *Service) Delete(ctx context.Context, caller *auth.Principal, id string) error {
	if !caller.IsAdmin() {
		return common.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
