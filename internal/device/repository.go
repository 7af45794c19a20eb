package device

import "context"

// Repository persists device rows.
type Repository interface {
	// Create inserts a new device and fills in its id and creation time.
	Create(ctx context.Context, d *Device) (*Device, error)

	// GetByID returns the device, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*Device, error)

	// ListByOwner returns the owner's devices, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Device, error)

	// ListAll returns every device, newest first.
	ListAll(ctx context.Context) ([]*Device, error)

	// Update overwrites the mutable fields of the device. A missing row is
	// common.ErrorNotFound.
	Update(ctx context.Context, d *Device) error

	// AssignOwner moves the device to a new owner. A missing row is
	// common.ErrorNotFound.
	AssignOwner(ctx context.Context, id, ownerID string) error

	// Delete removes the device. A missing row is common.ErrorNotFound.
	Delete(ctx context.Context, id string) error
}
