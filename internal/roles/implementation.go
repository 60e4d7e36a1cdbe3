// internal/roles/implementation.go
package roles

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"coolkidsnetwork/internal/membership"
	"coolkidsnetwork/pkg/eventstore"
)

// service implements the Service interface.
type service struct {
	store  membership.Store
	events membership.EventLog
}

// NewService creates a new role assignment service instance.
func NewService(store membership.Store, events membership.EventLog) Service {
	return &service{store: store, events: events}
}

// AssignTier validates the requested tier, resolves the target member
// and overwrites their tier. The overwrite is unconditional: there is
// no current-tier precondition, and the last writer wins.
func (s *service) AssignTier(ctx context.Context, id Identifier, requestedTier string) (*membership.Member, error) {
	tier, err := membership.ParseTier(requestedTier)
	if err != nil {
		return nil, err
	}

	member, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.recordTierChange(ctx, member, tier); err != nil {
		return nil, err
	}

	if err := s.store.SetTier(ctx, member.ID, tier); err != nil {
		return nil, fmt.Errorf("failed to set tier: %w", err)
	}

	member.Tier = tier
	return member, nil
}

// resolve finds the target member. Email wins over the name pair; when
// several members share a name pair the one with the lowest ID is
// chosen, which keeps resolution deterministic.
func (s *service) resolve(ctx context.Context, id Identifier) (*membership.Member, error) {
	if id.Email != "" {
		return s.store.FindByEmail(ctx, id.Email)
	}

	if id.FirstName != "" && id.LastName != "" {
		matches, err := s.store.FindByNamePair(ctx, id.FirstName, id.LastName)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, membership.ErrMemberNotFound
		}
		return matches[0], nil
	}

	return nil, membership.ErrMemberNotFound
}

func (s *service) recordTierChange(ctx context.Context, member *membership.Member, tier membership.Tier) error {
	eventData := membership.MemberTierChangedEvent{
		ID:      member.ID,
		OldTier: member.Tier,
		NewTier: tier,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	version, err := s.events.CurrentVersion(ctx, member.ID)
	if err != nil {
		return fmt.Errorf("failed to read event version: %w", err)
	}

	event := eventstore.Event{
		EventType: "MemberTierChanged",
		EventData: jsonData,
		Metadata: map[string]interface{}{
			"correlation_id": uuid.NewString(),
		},
	}

	if err := s.events.Append(ctx, member.ID, version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}
