// internal/directory/implementation.go
package directory

import (
	"context"
	"fmt"

	"coolkidsnetwork/internal/membership"
)

// service implements the Service interface.
type service struct {
	store membership.Store
}

// NewService creates a new directory query service instance.
func NewService(store membership.Store) Service {
	return &service{store: store}
}

// ViewOthers lists members other than the viewer, restricted to the
// three enrolled tiers, ordered by registration time. Pages past the
// end come back empty rather than failing.
func (s *service) ViewOthers(ctx context.Context, viewer *membership.Member, pageNum int) (*Page, error) {
	if pageNum < 1 {
		pageNum = 1
	}

	members, total, err := s.store.ListByTiers(ctx, membership.AllTiers, viewer.ID, pageNum, UsersPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	fields := VisibleFields(viewer.Tier, false)

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		entries = append(entries, entryFor(m, fields))
	}

	totalPages := (total + UsersPerPage - 1) / UsersPerPage

	return &Page{
		Entries:    entries,
		PageNum:    pageNum,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
