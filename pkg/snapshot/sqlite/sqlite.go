// Package sqlite provides a SQLite-backed snapshot driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // register the SQLite driver as "sqlite3"

	"github.com/papercomputeco/masque/pkg/snapshot"
)

// Driver implements snapshot.Driver on a single-row SQLite table.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (or creates) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	d := &Driver{db: db}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS latest_event (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		seq INTEGER NOT NULL,
		receipt_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		event_id TEXT,
		event_type TEXT,
		data TEXT NOT NULL,
		received_at TIMESTAMP NOT NULL
	);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Save upserts rec into the single snapshot row when rec.Seq is newer.
func (d *Driver) Save(ctx context.Context, rec *snapshot.Record) (bool, error) {
	if rec == nil {
		return false, snapshot.ErrNilRecord
	}

	query := `
	INSERT INTO latest_event (slot, seq, receipt_id, session_id, event_id, event_type, data, received_at)
	VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (slot) DO UPDATE SET
		seq = excluded.seq,
		receipt_id = excluded.receipt_id,
		session_id = excluded.session_id,
		event_id = excluded.event_id,
		event_type = excluded.event_type,
		data = excluded.data,
		received_at = excluded.received_at
	WHERE excluded.seq > latest_event.seq`

	res, err := d.db.ExecContext(ctx, query,
		int64(rec.Seq), //nolint:gosec // sequence numbers stay far below 1<<63
		rec.ReceiptID,
		rec.SessionID,
		nullString(rec.EventID),
		nullString(rec.EventType),
		rec.Data,
		rec.ReceivedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save snapshot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n > 0, nil
}

// Latest returns the stored snapshot record.
func (d *Driver) Latest(ctx context.Context) (*snapshot.Record, error) {
	query := `SELECT seq, receipt_id, session_id, event_id, event_type, data, received_at FROM latest_event WHERE slot = 1`

	var (
		rec       snapshot.Record
		seq       int64
		eventID   sql.NullString
		eventType sql.NullString
	)

	err := d.db.QueryRowContext(ctx, query).Scan(
		&seq, &rec.ReceiptID, &rec.SessionID, &eventID, &eventType, &rec.Data, &rec.ReceivedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, snapshot.NotFoundError{}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	rec.Seq = uint64(seq) //nolint:gosec // written from a uint64
	rec.EventID = stringPtr(eventID)
	rec.EventType = stringPtr(eventType)
	rec.ReceivedAt = rec.ReceivedAt.UTC()

	return &rec, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
