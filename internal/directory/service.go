// internal/directory/service.go
package directory

import (
	"context"

	"coolkidsnetwork/internal/membership"
)

// Service defines the interface for the directory query service.
type Service interface {
	// ViewOthers returns one page of the directory as seen by the
	// viewer, with each record filtered through the visibility policy.
	// Callers must gate on the viewer's view-others capability first.
	ViewOthers(ctx context.Context, viewer *membership.Member, pageNum int) (*Page, error)
}
