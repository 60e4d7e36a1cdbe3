// internal/membership/implementation_test.go
package membership_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coolkidsnetwork/internal/membership"
	"coolkidsnetwork/internal/storage"
)

// scriptedFetcher replays a fixed sequence of profiles and errors.
type scriptedFetcher struct {
	profiles []*membership.Profile
	errs     []error
	calls    int
}

func (f *scriptedFetcher) FetchProfile(ctx context.Context) (*membership.Profile, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.profiles) {
		return f.profiles[i], nil
	}
	return nil, errors.New("fetcher script exhausted")
}

func newTestService(fetcher membership.Fetcher) (membership.Service, *storage.MemoryStore, *storage.MemoryEventLog) {
	store := storage.NewMemoryStore()
	events := storage.NewMemoryEventLog()
	return membership.NewService(store, events, fetcher), store, events
}

func TestRegisterCreatesCoolKidWithEmptyProfile(t *testing.T) {
	svc, _, events := newTestService(nil)

	member, err := svc.Register(context.Background(), "new@x.com", "SecurePass123!")
	require.NoError(t, err)

	assert.Equal(t, membership.TierCoolKid, member.Tier)
	assert.Equal(t, "new@x.com", member.Email)
	assert.False(t, member.Enriched())

	trail, err := events.Load(context.Background(), member.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "MemberRegistered", trail[0].EventType)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.Register(context.Background(), "dup@x.com", "pass")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "dup@x.com", "pass")
	assert.ErrorIs(t, err, membership.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(nil)

	registered, err := svc.Register(context.Background(), "login@x.com", "SecurePass123!")
	require.NoError(t, err)

	member, err := svc.Authenticate(context.Background(), "login@x.com", "SecurePass123!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, member.ID)

	_, err = svc.Authenticate(context.Background(), "login@x.com", "wrong")
	assert.Error(t, err)

	_, err = svc.Authenticate(context.Background(), "nobody@x.com", "SecurePass123!")
	assert.Error(t, err)
}

func TestMemberEventsUnknownMember(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.MemberEvents(context.Background(), 99)
	assert.ErrorIs(t, err, membership.ErrMemberNotFound)
}
