package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/vigil/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS segments (
	session_id  TEXT NOT NULL,
	segment_id  TEXT NOT NULL,
	text        TEXT NOT NULL,
	language    TEXT NOT NULL,
	start_time  REAL NOT NULL,
	confidence  REAL,
	PRIMARY KEY (session_id, segment_id)
);
CREATE INDEX IF NOT EXISTS idx_segments_order ON segments (session_id, start_time);

CREATE TABLE IF NOT EXISTS translations (
	session_id  TEXT NOT NULL,
	segment_id  TEXT NOT NULL,
	text        TEXT NOT NULL,
	PRIMARY KEY (session_id, segment_id)
);

CREATE TABLE IF NOT EXISTS store_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	session_id  TEXT PRIMARY KEY,
	id          TEXT NOT NULL,
	score       INTEGER NOT NULL,
	severity    TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	payload     TEXT NOT NULL
);
`

// SQLiteStore persists sessions in a SQLite database file
type SQLiteStore struct {
	db         *sql.DB
	instanceID string
}

// OpenSQLite opens (creating if needed) a database file and applies the schema
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY churn
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	// A recreated database file gets a new instance ID, so records cached
	// for the old file are never served for the new one
	if _, err := db.Exec(`INSERT OR IGNORE INTO store_meta (key, value) VALUES ('instance_id', ?)`, uuid.NewString()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store metadata: %w", err)
	}
	var instanceID string
	if err := db.QueryRow(`SELECT value FROM store_meta WHERE key = 'instance_id'`).Scan(&instanceID); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read store metadata: %w", err)
	}

	return &SQLiteStore{db: db, instanceID: instanceID}, nil
}

// Namespace returns the database's instance ID
func (s *SQLiteStore) Namespace() string {
	return "sqlite:" + s.instanceID
}

// TranscriptSegments returns a session's segments ordered by start time
func (s *SQLiteStore) TranscriptSegments(ctx context.Context, sessionID string) ([]model.TranscriptSegment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT segment_id, text, language, start_time, confidence
		FROM segments
		WHERE session_id = ?
		ORDER BY start_time ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	segments := []model.TranscriptSegment{}
	for rows.Next() {
		var (
			seg        model.TranscriptSegment
			confidence sql.NullFloat64
		)
		if err := rows.Scan(&seg.ID, &seg.Text, &seg.Language, &seg.StartTime, &confidence); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if confidence.Valid {
			c := confidence.Float64
			seg.Confidence = &c
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}

	return segments, nil
}

// Translations returns a session's translations
func (s *SQLiteStore) Translations(ctx context.Context, sessionID string) (model.TranslationLookup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT segment_id, text FROM translations WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	lookup := make(model.TranslationLookup)
	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		lookup[id] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}

	return lookup, nil
}

// SaveSegments upserts segments in a single transaction
func (s *SQLiteStore) SaveSegments(ctx context.Context, sessionID string, segments []model.TranscriptSegment) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO segments (session_id, segment_id, text, language, start_time, confidence)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (session_id, segment_id) DO UPDATE SET
				text = excluded.text,
				language = excluded.language,
				start_time = excluded.start_time,
				confidence = excluded.confidence`)
		if err != nil {
			return fmt.Errorf("prepare segment insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, seg := range segments {
			if seg.ID == "" {
				return fmt.Errorf("segment ID is required")
			}
			var confidence sql.NullFloat64
			if seg.Confidence != nil {
				confidence = sql.NullFloat64{Float64: *seg.Confidence, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, sessionID, seg.ID, seg.Text, seg.Language, seg.StartTime, confidence); err != nil {
				return fmt.Errorf("insert segment %s: %w", seg.ID, err)
			}
		}
		return nil
	})
}

// SaveTranslations upserts translations in a single transaction
func (s *SQLiteStore) SaveTranslations(ctx context.Context, sessionID string, translations model.TranslationLookup) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for id, text := range translations {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO translations (session_id, segment_id, text) VALUES (?, ?, ?)
				ON CONFLICT (session_id, segment_id) DO UPDATE SET text = excluded.text`,
				sessionID, id, text); err != nil {
				return fmt.Errorf("insert translation %s: %w", id, err)
			}
		}
		return nil
	})
}

// SaveAnalysis stores the record, replacing the session's previous one
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, record *model.ThreatAnalysisRecord) error {
	if record == nil || record.SessionID == "" {
		return fmt.Errorf("analysis record must carry a session ID")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (session_id, id, score, severity, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			id = excluded.id,
			score = excluded.score,
			severity = excluded.severity,
			created_at = excluded.created_at,
			payload = excluded.payload`,
		record.SessionID, record.ID, record.Score, string(record.Severity),
		record.CreatedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// LatestAnalysis returns the session's record or model.ErrNotFound
func (s *SQLiteStore) LatestAnalysis(ctx context.Context, sessionID string) (*model.ThreatAnalysisRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM analyses WHERE session_id = ?`, sessionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis for session %s: %w", sessionID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}

	var record model.ThreatAnalysisRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &record, nil
}

// Sessions lists sessions that have segments
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM segments ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClearTranscript removes the session's segments and translations
func (s *SQLiteStore) ClearTranscript(ctx context.Context, sessionID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("delete segments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM translations WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("delete translations: %w", err)
		}
		return nil
	})
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
