package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

// Event is an entry in a member's audit trail.
type Event struct {
	ID        int64                  `json:"id" db:"id"`
	MemberID  int64                  `json:"member_id" db:"member_id"`
	EventType string                 `json:"event_type" db:"event_type"`
	EventData json.RawMessage        `json:"event_data" db:"event_data"`
	Metadata  map[string]interface{} `json:"metadata" db:"metadata"`
	Version   int                    `json:"version" db:"version"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}

// Log is an append-only, versioned record of member lifecycle events
// (registration, profile enrichment, tier changes).
type Log struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewLog creates a member event log backed by the given database.
func NewLog(db *sql.DB) *Log {
	return &Log{
		db:     db,
		tracer: otel.Tracer("coolkidsnetwork/eventstore"),
	}
}

// Append atomically appends events for a member with optimistic concurrency control.
func (l *Log) Append(ctx context.Context, memberID int64, expectedVersion int, events []Event) error {
	ctx, span := l.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.Int64("member.id", memberID),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM member_events
		WHERE member_id = $1
	`, memberID).Scan(&currentVersion)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("query current version: %w", err)
	}

	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO member_events (member_id, event_type, event_data, metadata, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, event := range events {
		version := expectedVersion + i + 1
		metadataJSON, _ := json.Marshal(event.Metadata)

		var eventID int64
		err = stmt.QueryRowContext(
			ctx,
			memberID,
			event.EventType,
			event.EventData,
			metadataJSON,
			version,
			time.Now().UTC(),
		).Scan(&eventID)

		if err != nil {
			// Unique constraint violation means a concurrent writer won the version.
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("insert event %d: %w", i, err)
		}

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.id", eventID),
			attribute.Int("event.version", version),
			attribute.String("event.type", event.EventType),
		))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// Load retrieves a member's events, optionally bounded by a version range.
// A toVersion of 0 means no upper bound.
func (l *Log) Load(ctx context.Context, memberID int64, fromVersion, toVersion int) ([]Event, error) {
	ctx, span := l.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.Int64("member.id", memberID),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	query := `
		SELECT id, member_id, event_type, event_data, metadata, version, created_at
		FROM member_events
		WHERE member_id = $1
		AND version >= $2
	`

	args := []interface{}{memberID, fromVersion}

	if toVersion > 0 {
		query += " AND version <= $3"
		args = append(args, toVersion)
	}

	query += " ORDER BY version ASC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var metadataJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.MemberID,
			&event.EventType,
			&event.EventData,
			&metadataJSON,
			&event.Version,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		if len(metadataJSON) > 0 {
			json.Unmarshal(metadataJSON, &event.Metadata)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// CurrentVersion returns the latest event version for a member.
func (l *Log) CurrentVersion(ctx context.Context, memberID int64) (int, error) {
	ctx, span := l.tracer.Start(ctx, "eventstore.get_version",
		trace.WithAttributes(
			attribute.Int64("member.id", memberID),
		),
	)
	defer span.End()

	var version int
	err := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM member_events
		WHERE member_id = $1
	`, memberID).Scan(&version)

	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("query version: %w", err)
	}

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}
