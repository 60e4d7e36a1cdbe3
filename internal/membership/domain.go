// internal/membership/domain.go
package membership

import (
	"errors"
	"time"
)

// Tier is one of the three nested permission levels a member can hold.
type Tier string

const (
	TierCoolKid    Tier = "cool_kid"
	TierCoolerKid  Tier = "cooler_kid"
	TierCoolestKid Tier = "coolest_kid"
)

// AllTiers lists the enrolled tiers in ascending capability order.
var AllTiers = []Tier{TierCoolKid, TierCoolerKid, TierCoolestKid}

var (
	ErrInvalidTier           = errors.New("invalid tier")
	ErrMemberNotFound        = errors.New("member not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrNameTaken             = errors.New("name pair already taken")
	ErrEnrichmentUnavailable = errors.New("enrichment source unavailable")
	ErrEnrichmentMalformed   = errors.New("enrichment source returned malformed profile")
	ErrEnrichmentExhausted   = errors.New("enrichment attempts exhausted")
)

// ParseTier validates a wire-format tier name.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	for _, known := range AllTiers {
		if t == known {
			return t, nil
		}
	}
	return "", ErrInvalidTier
}

// Capabilities is the set of permissions a tier grants. The sets are
// strictly nested: coolest_kid covers cooler_kid covers cool_kid.
type Capabilities struct {
	ViewOwn       bool
	ViewOthers    bool
	ViewProtected bool
}

var tierCapabilities = map[Tier]Capabilities{
	TierCoolKid:    {ViewOwn: true},
	TierCoolerKid:  {ViewOwn: true, ViewOthers: true},
	TierCoolestKid: {ViewOwn: true, ViewOthers: true, ViewProtected: true},
}

// Capabilities returns the capability set for the tier. Unknown tiers
// (host-defined administrative roles) grant nothing.
func (t Tier) Capabilities() Capabilities {
	return tierCapabilities[t]
}

// Member represents a registered member of the network.
type Member struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Country      string    `json:"country"`
	Tier         Tier      `json:"tier"`
	RegisteredAt time.Time `json:"registered_at"`
	Version      int       `json:"version"`
}

// Enriched reports whether the member's profile fields have been committed.
func (m *Member) Enriched() bool {
	return m.FirstName != "" && m.LastName != ""
}

// Credential represents a member's login credentials.
type Credential struct {
	MemberID     int64  `json:"member_id"`
	PasswordHash string `json:"-"`
	Salt         string `json:"-"`
}

// Profile is a transient enrichment candidate. It is never persisted
// directly; it is committed to a member only once verified unique.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
}

// MemberRegisteredEvent is recorded when a new member registers.
type MemberRegisteredEvent struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Tier  Tier   `json:"tier"`
}

// MemberProfileEnrichedEvent is recorded when a unique profile is committed.
type MemberProfileEnrichedEvent struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
	Attempts  int    `json:"attempts"`
}

// MemberTierChangedEvent is recorded when a member's tier is reassigned.
type MemberTierChangedEvent struct {
	ID      int64 `json:"id"`
	OldTier Tier  `json:"old_tier"`
	NewTier Tier  `json:"new_tier"`
}
