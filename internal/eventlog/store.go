// Package eventlog persists game events to SQLite as a best-effort side
// channel. Writes go through a buffered Recorder so a slow or broken
// database never affects request handling.
package eventlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event types recorded by the engine.
const (
	TypeCreated  = "game_created"
	TypeJoined   = "game_joined"
	TypeAction   = "game_action"
	TypeFinished = "game_finished"
)

// Event is one appended row.
type Event struct {
	ID        string
	GameID    int
	Variant   string
	UserID    int64
	Type      string
	Action    string
	Data      map[string]any
	CreatedAt time.Time
}

// Store handles SQLite persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS game_events (
			id         TEXT PRIMARY KEY,
			game_id    INTEGER NOT NULL,
			variant    TEXT NOT NULL,
			user_id    INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			action     TEXT NOT NULL DEFAULT '',
			data_json  TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_game_events_game ON game_events(game_id, created_at);
	`)
	return err
}

// Insert appends one event.
func (s *Store) Insert(e Event) error {
	data := "{}"
	if e.Data != nil {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("marshal event data: %w", err)
		}
		data = string(b)
	}
	_, err := s.db.Exec(
		"INSERT INTO game_events (id, game_id, variant, user_id, event_type, action, data_json) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.GameID, e.Variant, e.UserID, e.Type, e.Action, data,
	)
	return err
}

// Recent returns up to limit events for a game, newest first.
func (s *Store) Recent(gameID, limit int) ([]Event, error) {
	rows, err := s.db.Query(
		"SELECT id, game_id, variant, user_id, event_type, action, data_json, created_at FROM game_events WHERE game_id = ? ORDER BY created_at DESC, id LIMIT ?",
		gameID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Event
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.ID, &e.GameID, &e.Variant, &e.UserID, &e.Type, &e.Action, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
			return nil, fmt.Errorf("unmarshal event data: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewID returns a fresh event id.
func NewID() string {
	return uuid.NewString()
}
