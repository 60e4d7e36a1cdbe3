// internal/membership/service.go
package membership

import (
	"context"

	"coolkidsnetwork/pkg/eventstore"
)

// Service defines the interface for the membership service.
type Service interface {
	Register(ctx context.Context, email, password string) (*Member, error)
	Authenticate(ctx context.Context, email, password string) (*Member, error)
	GetMember(ctx context.Context, id int64) (*Member, error)
	MemberEvents(ctx context.Context, memberID int64) ([]eventstore.Event, error)
	EnrollProfile(ctx context.Context, memberID int64) error
}

// Fetcher retrieves one enrichment candidate from the external profile
// source. Implementations must honor context cancellation.
type Fetcher interface {
	FetchProfile(ctx context.Context) (*Profile, error)
}
