// Package device is a sample resource service demonstrating stateless trust
// propagation: it verifies access tokens locally with the shared signing
// secret and never calls the auth service at request time.
package device

import "time"

// Device is a metered appliance registered to a user.
type Device struct {
	ID           string
	Name         string
	Description  string
	MaxHourlyKWH float64
	OwnerID      string
	CreatedAt    time.Time
}
