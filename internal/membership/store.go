// internal/membership/store.go
package membership

import (
	"context"

	"coolkidsnetwork/pkg/eventstore"
)

// Store is the durable member record store. It is the single source of
// truth for member profile fields and tier assignment.
//
// Implementations must return ErrMemberNotFound for missing members,
// ErrEmailTaken for duplicate registrations, and ErrNameTaken when a
// profile commit collides with another member's (first, last) pair.
type Store interface {
	// CreateMember creates a member with the default tier and returns
	// its store-assigned ID.
	CreateMember(ctx context.Context, email, passwordHash, salt string) (int64, error)

	// GetMember retrieves a member by ID.
	GetMember(ctx context.Context, id int64) (*Member, error)

	// FindByEmail retrieves a member by exact email match.
	FindByEmail(ctx context.Context, email string) (*Member, error)

	// FindByNamePair returns all members matching the (first, last)
	// pair exactly, ordered by ascending ID.
	FindByNamePair(ctx context.Context, first, last string) ([]*Member, error)

	// ListByTiers returns one page of members whose tier is in tiers,
	// excluding excludeID, ordered by registration time ascending, plus
	// the total count of matching members.
	ListByTiers(ctx context.Context, tiers []Tier, excludeID int64, page, pageSize int) ([]*Member, int, error)

	// SetTier overwrites a member's tier as a single atomic update.
	SetTier(ctx context.Context, id int64, tier Tier) error

	// SetProfileFields commits profile fields for a member. Fields are
	// write-once: a member whose profile is already populated is left
	// unchanged.
	SetProfileFields(ctx context.Context, id int64, first, last, country string) error

	// GetCredential retrieves the stored credential for a member.
	GetCredential(ctx context.Context, memberID int64) (*Credential, error)
}

// EventLog is the append-only member audit trail. Satisfied by
// *eventstore.Log.
type EventLog interface {
	Append(ctx context.Context, memberID int64, expectedVersion int, events []eventstore.Event) error
	Load(ctx context.Context, memberID int64, fromVersion, toVersion int) ([]eventstore.Event, error)
	CurrentVersion(ctx context.Context, memberID int64) (int, error)
}
