// internal/membership/enroller.go
package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coolkidsnetwork/pkg/eventstore"
)

// maxEnrollAttempts bounds the retry loop so repeated name collisions
// cannot spin forever against the profile source.
const maxEnrollAttempts = 20

// EnrollProfile fetches enrichment candidates until one carries a
// (first, last) pair no other member holds, then commits it. Only
// collisions are retried: a fetch failure or malformed payload aborts
// immediately. When the budget runs out the member keeps its empty
// profile; registration itself is unaffected.
func (s *service) EnrollProfile(ctx context.Context, memberID int64) error {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if member.Enriched() {
		// Profile fields are write-once; nothing to do.
		return nil
	}

	for attempt := 1; attempt <= maxEnrollAttempts; attempt++ {
		profile, err := s.fetcher.FetchProfile(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEnrichmentUnavailable, err)
		}

		if profile == nil || profile.FirstName == "" || profile.LastName == "" {
			return ErrEnrichmentMalformed
		}

		taken, err := s.namePairTaken(ctx, memberID, profile.FirstName, profile.LastName)
		if err != nil {
			return err
		}
		if taken {
			continue
		}

		err = s.store.SetProfileFields(ctx, memberID, profile.FirstName, profile.LastName, profile.Country)
		if errors.Is(err, ErrNameTaken) {
			// A concurrent enrollment committed the same pair between
			// our check and our write; treat it as one more collision.
			continue
		}
		if err != nil {
			return err
		}

		return s.recordEnrichment(ctx, memberID, profile, attempt)
	}

	return ErrEnrichmentExhausted
}

func (s *service) namePairTaken(ctx context.Context, memberID int64, first, last string) (bool, error) {
	existing, err := s.store.FindByNamePair(ctx, first, last)
	if err != nil {
		return false, fmt.Errorf("failed to check name pair: %w", err)
	}
	for _, m := range existing {
		if m.ID != memberID {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) recordEnrichment(ctx context.Context, memberID int64, profile *Profile, attempts int) error {
	eventData := MemberProfileEnrichedEvent{
		ID:        memberID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Country:   profile.Country,
		Attempts:  attempts,
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	version, err := s.events.CurrentVersion(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to read event version: %w", err)
	}

	event := eventstore.Event{
		EventType: "MemberProfileEnriched",
		EventData: jsonData,
		Metadata:  eventMetadata(),
	}

	if err := s.events.Append(ctx, memberID, version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}
