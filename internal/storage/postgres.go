// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coolkidsnetwork/internal/membership"
)

// MemberStore is the postgres implementation of membership.Store.
type MemberStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewMemberStore creates a member store backed by the given database.
func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{
		db:     db,
		tracer: otel.Tracer("coolkidsnetwork/storage"),
	}
}

const memberColumns = `id, email, first_name, last_name, country, tier, registered_at, version`

// CreateMember inserts a member with the default tier and their
// credentials in one transaction.
func (s *MemberStore) CreateMember(ctx context.Context, email, passwordHash, salt string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.create_member")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO members (email, tier)
		VALUES ($1, $2)
		RETURNING id
	`, email, membership.TierCoolKid).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "members_email_key") {
			return 0, membership.ErrEmailTaken
		}
		return 0, fmt.Errorf("insert member: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (member_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`, id, passwordHash, salt)
	if err != nil {
		return 0, fmt.Errorf("insert credentials: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Int64("member.id", id))
	return id, nil
}

// GetMember retrieves a member by ID.
func (s *MemberStore) GetMember(ctx context.Context, id int64) (*membership.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.get_member",
		trace.WithAttributes(attribute.Int64("member.id", id)),
	)
	defer span.End()

	member, err := s.scanMember(s.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE id = $1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, membership.ErrMemberNotFound
		}
		return nil, fmt.Errorf("query member: %w", err)
	}
	return member, nil
}

// FindByEmail retrieves a member by exact email match.
func (s *MemberStore) FindByEmail(ctx context.Context, email string) (*membership.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.find_by_email")
	defer span.End()

	member, err := s.scanMember(s.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE email = $1
	`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, membership.ErrMemberNotFound
		}
		return nil, fmt.Errorf("query member by email: %w", err)
	}
	return member, nil
}

// FindByNamePair returns members matching the (first, last) pair,
// ordered by ascending ID so callers resolve ties deterministically.
func (s *MemberStore) FindByNamePair(ctx context.Context, first, last string) ([]*membership.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.find_by_name_pair")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE first_name = $1 AND last_name = $2
		ORDER BY id ASC
	`, first, last)
	if err != nil {
		return nil, fmt.Errorf("query members by name: %w", err)
	}
	defer rows.Close()

	return s.collectMembers(rows)
}

// ListByTiers returns one page of members in the given tiers, excluding
// excludeID, ordered by registration time with ID as tiebreak, plus the
// total count of matching members.
func (s *MemberStore) ListByTiers(ctx context.Context, tiers []membership.Tier, excludeID int64, page, pageSize int) ([]*membership.Member, int, error) {
	ctx, span := s.tracer.Start(ctx, "storage.list_by_tiers",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page.size", pageSize),
		),
	)
	defer span.End()

	tierNames := make([]string, len(tiers))
	for i, t := range tiers {
		tierNames[i] = string(t)
	}

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM members
		WHERE tier = ANY($1) AND id <> $2
	`, pq.Array(tierNames), excludeID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE tier = ANY($1) AND id <> $2
		ORDER BY registered_at ASC, id ASC
		LIMIT $3 OFFSET $4
	`, pq.Array(tierNames), excludeID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members, err := s.collectMembers(rows)
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("members.total", total))
	return members, total, nil
}

// SetTier overwrites a member's tier in a single statement.
func (s *MemberStore) SetTier(ctx context.Context, id int64, tier membership.Tier) error {
	ctx, span := s.tracer.Start(ctx, "storage.set_tier",
		trace.WithAttributes(
			attribute.Int64("member.id", id),
			attribute.String("tier", string(tier)),
		),
	)
	defer span.End()

	res, err := s.db.ExecContext(ctx, `
		UPDATE members
		SET tier = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
	`, tier, id)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return membership.ErrMemberNotFound
	}
	return nil
}

// SetProfileFields commits profile fields once. The partial unique
// index on (first_name, last_name) turns a concurrent duplicate commit
// into ErrNameTaken; an already-enriched member is left untouched.
func (s *MemberStore) SetProfileFields(ctx context.Context, id int64, first, last, country string) error {
	ctx, span := s.tracer.Start(ctx, "storage.set_profile_fields",
		trace.WithAttributes(attribute.Int64("member.id", id)),
	)
	defer span.End()

	res, err := s.db.ExecContext(ctx, `
		UPDATE members
		SET first_name = $1, last_name = $2, country = $3, updated_at = NOW()
		WHERE id = $4 AND first_name = '' AND last_name = ''
	`, first, last, country, id)
	if err != nil {
		if isUniqueViolation(err, "members_name_pair_key") {
			return membership.ErrNameTaken
		}
		return fmt.Errorf("update profile fields: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the member does not exist or the profile is already
		// populated; the latter is a write-once no-op.
		if _, err := s.GetMember(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetCredential retrieves the stored credential for a member.
func (s *MemberStore) GetCredential(ctx context.Context, memberID int64) (*membership.Credential, error) {
	ctx, span := s.tracer.Start(ctx, "storage.get_credential")
	defer span.End()

	credential := &membership.Credential{}
	err := s.db.QueryRowContext(ctx, `
		SELECT member_id, password_hash, salt
		FROM credentials
		WHERE member_id = $1
	`, memberID).Scan(
		&credential.MemberID,
		&credential.PasswordHash,
		&credential.Salt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, membership.ErrMemberNotFound
		}
		return nil, fmt.Errorf("query credential: %w", err)
	}
	return credential, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *MemberStore) scanMember(row rowScanner) (*membership.Member, error) {
	member := &membership.Member{}
	err := row.Scan(
		&member.ID,
		&member.Email,
		&member.FirstName,
		&member.LastName,
		&member.Country,
		&member.Tier,
		&member.RegisteredAt,
		&member.Version,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *MemberStore) collectMembers(rows *sql.Rows) ([]*membership.Member, error) {
	var members []*membership.Member
	for rows.Next() {
		member, err := s.scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505" && pqErr.Constraint == constraint
}
