// internal/roles/domain.go
package roles

// Identifier selects the member whose tier is being reassigned: by
// exact email when present, otherwise by exact (first, last) name pair.
type Identifier struct {
	Email     string
	FirstName string
	LastName  string
}
