// internal/storage/memory.go
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"coolkidsnetwork/internal/membership"
	"coolkidsnetwork/pkg/eventstore"
)

// MemoryStore is an in-memory membership.Store with the same contract
// as the postgres store, including the (first, last) uniqueness
// constraint. It backs unit tests and local development.
type MemoryStore struct {
	mu          sync.Mutex
	nextID      int64
	members     map[int64]*membership.Member
	credentials map[int64]*membership.Credential
	clock       time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		members:     make(map[int64]*membership.Member),
		credentials: make(map[int64]*membership.Credential),
		clock:       time.Unix(1700000000, 0).UTC(),
	}
}

func (s *MemoryStore) CreateMember(ctx context.Context, email, passwordHash, salt string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.Email == email {
			return 0, membership.ErrEmailTaken
		}
	}

	id := s.nextID
	s.nextID++
	// Distinct timestamps keep registration ordering unambiguous.
	s.clock = s.clock.Add(time.Second)

	s.members[id] = &membership.Member{
		ID:           id,
		Email:        email,
		Tier:         membership.TierCoolKid,
		RegisteredAt: s.clock,
		Version:      1,
	}
	s.credentials[id] = &membership.Credential{
		MemberID:     id,
		PasswordHash: passwordHash,
		Salt:         salt,
	}
	return id, nil
}

func (s *MemoryStore) GetMember(ctx context.Context, id int64) (*membership.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[id]
	if !ok {
		return nil, membership.ErrMemberNotFound
	}
	copied := *m
	return &copied, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*membership.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.Email == email {
			copied := *m
			return &copied, nil
		}
	}
	return nil, membership.ErrMemberNotFound
}

func (s *MemoryStore) FindByNamePair(ctx context.Context, first, last string) ([]*membership.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*membership.Member
	for _, m := range s.members {
		if m.FirstName == first && m.LastName == last {
			copied := *m
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (s *MemoryStore) ListByTiers(ctx context.Context, tiers []membership.Tier, excludeID int64, page, pageSize int) ([]*membership.Member, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := make(map[membership.Tier]bool, len(tiers))
	for _, t := range tiers {
		allowed[t] = true
	}

	var matching []*membership.Member
	for _, m := range s.members {
		if m.ID == excludeID || !allowed[m.Tier] {
			continue
		}
		copied := *m
		matching = append(matching, &copied)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].RegisteredAt.Equal(matching[j].RegisteredAt) {
			return matching[i].RegisteredAt.Before(matching[j].RegisteredAt)
		}
		return matching[i].ID < matching[j].ID
	})

	total := len(matching)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matching[start:end], total, nil
}

func (s *MemoryStore) SetTier(ctx context.Context, id int64, tier membership.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[id]
	if !ok {
		return membership.ErrMemberNotFound
	}
	m.Tier = tier
	m.Version++
	return nil
}

func (s *MemoryStore) SetProfileFields(ctx context.Context, id int64, first, last, country string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[id]
	if !ok {
		return membership.ErrMemberNotFound
	}
	if m.FirstName != "" || m.LastName != "" {
		// Write-once: an already-enriched member is left untouched.
		return nil
	}
	for _, other := range s.members {
		if other.ID != id && other.FirstName == first && other.LastName == last {
			return membership.ErrNameTaken
		}
	}
	m.FirstName = first
	m.LastName = last
	m.Country = country
	return nil
}

func (s *MemoryStore) GetCredential(ctx context.Context, memberID int64) (*membership.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.credentials[memberID]
	if !ok {
		return nil, membership.ErrMemberNotFound
	}
	copied := *c
	return &copied, nil
}

// MemoryEventLog is an in-memory membership.EventLog with the same
// optimistic-versioning contract as the postgres event log.
type MemoryEventLog struct {
	mu     sync.Mutex
	nextID int64
	events map[int64][]eventstore.Event
}

// NewMemoryEventLog creates an empty in-memory event log.
func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{
		nextID: 1,
		events: make(map[int64][]eventstore.Event),
	}
}

func (l *MemoryEventLog) Append(ctx context.Context, memberID int64, expectedVersion int, events []eventstore.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := len(l.events[memberID])
	if current != expectedVersion {
		return eventstore.ErrConcurrencyConflict
	}

	for i, e := range events {
		e.ID = l.nextID
		l.nextID++
		e.MemberID = memberID
		e.Version = expectedVersion + i + 1
		e.CreatedAt = time.Now().UTC()
		l.events[memberID] = append(l.events[memberID], e)
	}
	return nil
}

func (l *MemoryEventLog) Load(ctx context.Context, memberID int64, fromVersion, toVersion int) ([]eventstore.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []eventstore.Event
	for _, e := range l.events[memberID] {
		if e.Version < fromVersion {
			continue
		}
		if toVersion > 0 && e.Version > toVersion {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (l *MemoryEventLog) CurrentVersion(ctx context.Context, memberID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.events[memberID]), nil
}
