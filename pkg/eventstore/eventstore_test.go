package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

// setupTestDB attempts to connect to a PostgreSQL database for testing.
// It skips the test if the connection cannot be established.
func setupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	pgUser := os.Getenv("PGUSER")
	pgPassword := os.Getenv("PGPASSWORD")
	pgHost := os.Getenv("PGHOST")
	pgPort := os.Getenv("PGPORT")
	pgDB := os.Getenv("PGDATABASE")

	if pgUser == "" {
		pgUser = "user"
	}
	if pgPassword == "" {
		pgPassword = "password"
	}
	if pgHost == "" {
		pgHost = "localhost"
	}
	if pgPort == "" {
		pgPort = "5432"
	}
	if pgDB == "" {
		pgDB = "testdb"
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort, pgUser, pgPassword, pgDB)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS member_events (
			id BIGSERIAL PRIMARY KEY,
			member_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			event_data JSONB NOT NULL,
			metadata JSONB,
			version INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (member_id, version)
		);
	`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

var testMemberSeq atomic.Int64

// freshMemberID hands out member IDs no other test run will collide
// with, since the events table is shared across runs.
func freshMemberID() int64 {
	return time.Now().UnixNano() + testMemberSeq.Add(1)
}

type testEvent struct {
	Message string `json:"message"`
}

func mustMarshal(t testing.TB, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestAppendAndLoad(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	log := NewLog(db)

	memberID := freshMemberID()
	err := log.Append(context.Background(), memberID, 0, []Event{
		{
			EventType: "MemberRegistered",
			EventData: mustMarshal(t, testEvent{Message: "registered"}),
			Metadata:  map[string]interface{}{"correlation_id": "t-1"},
		},
		{
			EventType: "MemberProfileEnriched",
			EventData: mustMarshal(t, testEvent{Message: "enriched"}),
		},
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := log.Load(context.Background(), memberID, 0, 0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != "MemberRegistered" || events[0].Version != 1 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].EventType != "MemberProfileEnriched" || events[1].Version != 2 {
		t.Errorf("unexpected second event: %+v", events[1])
	}
	if events[0].Metadata["correlation_id"] != "t-1" {
		t.Errorf("metadata not round-tripped: %+v", events[0].Metadata)
	}
}

func TestLoadVersionRange(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	log := NewLog(db)

	memberID := freshMemberID()
	for i := 0; i < 5; i++ {
		err := log.Append(context.Background(), memberID, i, []Event{
			{
				EventType: "MemberTierChanged",
				EventData: mustMarshal(t, testEvent{Message: fmt.Sprintf("change %d", i)}),
			},
		})
		if err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	events, err := log.Load(context.Background(), memberID, 2, 4)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events in range, got %d", len(events))
	}
	if events[0].Version != 2 || events[2].Version != 4 {
		t.Errorf("unexpected version bounds: %d..%d", events[0].Version, events[2].Version)
	}
}

func TestCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	log := NewLog(db)

	memberID := freshMemberID()
	version, err := log.CurrentVersion(context.Background(), memberID)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Fatalf("expected version 0 for unknown member, got %d", version)
	}

	err = log.Append(context.Background(), memberID, 0, []Event{
		{EventType: "MemberRegistered", EventData: mustMarshal(t, testEvent{Message: "registered"})},
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	version, err = log.CurrentVersion(context.Background(), memberID)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
}

func TestAppendConcurrencyConflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	log := NewLog(db)

	memberID := freshMemberID()
	first := []Event{{EventType: "MemberRegistered", EventData: mustMarshal(t, testEvent{Message: "a"})}}
	if err := log.Append(context.Background(), memberID, 0, first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Re-appending at the stale version must fail.
	stale := []Event{{EventType: "MemberTierChanged", EventData: mustMarshal(t, testEvent{Message: "b"})}}
	err := log.Append(context.Background(), memberID, 0, stale)
	if err != ErrConcurrencyConflict {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
}

func TestAppendNegativeVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	log := NewLog(db)

	err := log.Append(context.Background(), freshMemberID(), -1, nil)
	if err != ErrInvalidVersion {
		t.Fatalf("expected ErrInvalidVersion, got %v", err)
	}
}

func BenchmarkAppend(b *testing.B) {
	db := setupTestDB(b)
	defer db.Close()
	log := NewLog(db)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		memberID := freshMemberID()
		events := []Event{
			{
				EventType: "MemberRegistered",
				EventData: mustMarshal(b, testEvent{Message: fmt.Sprintf("event %d", i)}),
			},
		}
		b.StartTimer()

		if err := log.Append(context.Background(), memberID, 0, events); err != nil {
			b.Fatalf("Append failed: %v", err)
		}
	}
}
