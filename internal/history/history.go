// Package history keeps a machine-wide log of worker lifecycle events in a
// SQLite database inside the runtime directory.
//
// History is strictly best-effort: recording failures are returned to the
// caller for logging but must never fail a daemon or a CLI command.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Event types recorded for a session.
const (
	EventStarted    = "started"
	EventStopped    = "stopped"
	EventTerminated = "terminated"
)

// Event is one recorded lifecycle transition.
type Event struct {
	Session string `json:"session"`
	Type    string `json:"event"`
	PID     int    `json:"pid"`
	At      string `json:"at"`
}

// Log is an append-only event store.
type Log struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// Single writer at a time is enough for lifecycle events; busy_timeout
	// covers concurrent CLI invocations racing on the shared file.
	if _, err := db.Exec("PRAGMA busy_timeout = 2000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS events (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		event   TEXT NOT NULL,
		pid     INTEGER NOT NULL,
		at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session, id);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one event for a session.
func (l *Log) Record(session, eventType string, pid int) error {
	_, err := l.db.Exec(
		"INSERT INTO events (session, event, pid, at) VALUES (?, ?, ?, ?)",
		session, eventType, pid, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record history event: %w", err)
	}
	return nil
}

// Events returns the most recent events, newest first. An empty session
// selects events for all sessions.
func (l *Log) Events(session string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT session, event, pid, at FROM events"
	args := []any{}
	if session != "" {
		query += " WHERE session = ?"
		args = append(args, session)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Session, &e.Type, &e.PID, &e.At); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return events, nil
}
