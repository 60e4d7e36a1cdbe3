// internal/directory/policy.go
package directory

import "coolkidsnetwork/internal/membership"

// Field names a single member attribute subject to visibility control.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldCountry   Field = "country"
	FieldEmail     Field = "email"
	FieldTier      Field = "tier"
)

// AllFields lists every controlled field.
var AllFields = []Field{FieldFirstName, FieldLastName, FieldCountry, FieldEmail, FieldTier}

// protectedFields are visible to other members only with the
// view-protected capability.
var protectedFields = map[Field]bool{
	FieldEmail: true,
	FieldTier:  true,
}

// VisibleFields decides which fields of a record the viewer may see.
// Rules, in priority order: own record with the view-own capability
// shows everything; without the view-others capability nothing of other
// members is visible; otherwise the open fields are visible and the
// protected ones only with the view-protected capability.
func VisibleFields(viewer membership.Tier, isOwnRecord bool) []Field {
	caps := viewer.Capabilities()

	if isOwnRecord {
		if !caps.ViewOwn {
			return nil
		}
		return AllFields
	}

	if !caps.ViewOthers {
		return nil
	}

	fields := make([]Field, 0, len(AllFields))
	for _, f := range AllFields {
		if protectedFields[f] && !caps.ViewProtected {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}
