// internal/membership/implementation.go
package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"coolkidsnetwork/pkg/eventstore"
)

// service implements the Service interface.
type service struct {
	store       Store
	events      EventLog
	fetcher     Fetcher
	rateLimiter *rate.Limiter
}

// NewService creates a new membership service instance.
func NewService(store Store, events EventLog, fetcher Fetcher) Service {
	return &service{
		store:       store,
		events:      events,
		fetcher:     fetcher,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 registrations per minute
	}
}

// Register creates a new member with the default tier. Profile
// enrichment is a separate step; a freshly registered member has empty
// profile fields.
func (s *service) Register(ctx context.Context, email, password string) (*Member, error) {
	if !s.rateLimiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.store.CreateMember(ctx, email, passwordHash, salt)
	if err != nil {
		return nil, err
	}

	eventData := MemberRegisteredEvent{
		ID:    id,
		Email: email,
		Tier:  TierCoolKid,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		EventType: "MemberRegistered",
		EventData: jsonData,
		Metadata:  eventMetadata(),
	}

	if err := s.events.Append(ctx, id, 0, []eventstore.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	return s.store.GetMember(ctx, id)
}

// Authenticate verifies a member's credentials and returns the member if successful.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Member, error) {
	member, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	credential, err := s.store.GetCredential(ctx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("authentication failed: invalid credentials")
	}

	return member, nil
}

// GetMember retrieves a member by their ID.
func (s *service) GetMember(ctx context.Context, id int64) (*Member, error) {
	return s.store.GetMember(ctx, id)
}

// MemberEvents returns a member's full audit trail.
func (s *service) MemberEvents(ctx context.Context, memberID int64) ([]eventstore.Event, error) {
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.events.Load(ctx, memberID, 0, 0)
}

// eventMetadata builds per-event metadata with a correlation ID.
func eventMetadata() map[string]interface{} {
	return map[string]interface{}{
		"correlation_id": uuid.NewString(),
	}
}
