// internal/roles/service.go
package roles

import (
	"context"

	"coolkidsnetwork/internal/membership"
)

// Service defines the interface for the role assignment service.
//
// Callers are responsible for authorization: an external edit-members
// gate must sit in front of every AssignTier call. The service itself
// only validates the requested tier value.
type Service interface {
	AssignTier(ctx context.Context, id Identifier, requestedTier string) (*membership.Member, error)
}
