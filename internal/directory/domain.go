// internal/directory/domain.go
package directory

import "coolkidsnetwork/internal/membership"

// UsersPerPage is the fixed directory page size.
const UsersPerPage = 20

// Entry is one member's record filtered down to the fields the viewer
// may see. Hidden fields are omitted from the JSON encoding.
type Entry struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Tier      string `json:"tier,omitempty"`
}

// Page is one page of the "other members" listing.
type Page struct {
	Entries    []Entry `json:"entries"`
	PageNum    int     `json:"page_num"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// entryFor projects a member onto the given visible fields.
func entryFor(m *membership.Member, fields []Field) Entry {
	var e Entry
	for _, f := range fields {
		switch f {
		case FieldFirstName:
			e.FirstName = m.FirstName
		case FieldLastName:
			e.LastName = m.LastName
		case FieldCountry:
			e.Country = m.Country
		case FieldEmail:
			e.Email = m.Email
		case FieldTier:
			e.Tier = string(m.Tier)
		}
	}
	return e
}
