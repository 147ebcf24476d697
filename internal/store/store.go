// Package store persists per-channel sync bookkeeping (seen message ids,
// read watermarks) in a local SQLite database so a restart does not
// re-notify for messages delivered in an earlier session.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// seenRetention bounds how long dedup rows are kept. Incremental fetches
// only re-deliver recent messages, so older rows no longer serve the
// no-renotify guarantee.
const seenRetention = 30 * 24 * time.Hour

const schema = `
CREATE TABLE IF NOT EXISTS seen_messages (
	channel_id TEXT NOT NULL,
	message_id TEXT NOT NULL,
	seen_at    INTEGER NOT NULL,
	PRIMARY KEY (channel_id, message_id)
);

CREATE TABLE IF NOT EXISTS read_to (
	channel_id TEXT PRIMARY KEY,
	message_ts INTEGER NOT NULL,
	set_at     INTEGER NOT NULL
);
`

// Store wraps the local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s := &Store{db: db}
	if err := s.Prune(seenRetention); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prune seen ids: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SeenIDs returns the persisted seen message ids for a channel.
func (s *Store) SeenIDs(channelID string) (map[string]struct{}, error) {
	rows, err := s.db.Query(`
		SELECT message_id FROM seen_messages WHERE channel_id = ?
	`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// MarkSeen records message ids as seen for a channel. Re-marking an id is
// a no-op.
func (s *Store) MarkSeen(channelID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	stmt, err := tx.Prepare(`
		INSERT INTO seen_messages (channel_id, message_id, seen_at)
		VALUES (?, ?, ?)
		ON CONFLICT(channel_id, message_id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.Exec(channelID, id, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetReadTo advances a channel's read watermark. A stale timestamp never
// moves the watermark backwards.
func (s *Store) SetReadTo(channelID string, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO read_to (channel_id, message_ts, set_at)
		VALUES (?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			message_ts = excluded.message_ts,
			set_at = excluded.set_at
		WHERE excluded.message_ts > read_to.message_ts
	`, channelID, ts.UnixMilli(), time.Now().Unix())
	return err
}

// ReadTo returns a channel's read watermark, or a zero time if none is set.
func (s *Store) ReadTo(channelID string) (time.Time, error) {
	row := s.db.QueryRow(`
		SELECT message_ts FROM read_to WHERE channel_id = ?
	`, channelID)
	var millis int64
	if err := row.Scan(&millis); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.UnixMilli(millis).UTC(), nil
}

// Prune drops seen-id rows older than the retention window. Channels churn
// and ids accumulate; the dedup guarantee only matters for messages recent
// enough to be re-delivered by an incremental fetch.
func (s *Store) Prune(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).Unix()
	_, err := s.db.Exec(`DELETE FROM seen_messages WHERE seen_at < ?`, cutoff)
	return err
}
