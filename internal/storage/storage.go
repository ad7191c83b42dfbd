package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps SQLite-backed persistence for upload history.
type Store struct {
	DB *sql.DB
}

// New opens (or creates) the database at path and ensures schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
            id TEXT PRIMARY KEY,
            file_path TEXT NOT NULL,
            caption TEXT,
            status TEXT NOT NULL,
            media_id TEXT,
            error_message TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            completed_at TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_file_path ON uploads(file_path);`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// UploadRecord captures one upload attempt.
type UploadRecord struct {
	ID          string
	FilePath    string
	Caption     string
	Status      string
	MediaID     string
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// RecordQueued inserts a pending upload attempt.
func (s *Store) RecordQueued(rec UploadRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`INSERT OR REPLACE INTO uploads (id, file_path, caption, status) VALUES (?, ?, ?, ?);`,
		rec.ID, rec.FilePath, rec.Caption, rec.Status)
	return err
}

// RecordResult finalizes an upload attempt with status, media id and error.
func (s *Store) RecordResult(id, status, mediaID, errMsg string) error {
	if s == nil {
		return nil
	}
	_, err := s.DB.Exec(`UPDATE uploads SET status=?, media_id=?, error_message=?, completed_at=CURRENT_TIMESTAMP WHERE id=?;`,
		status, mediaID, errMsg, id)
	return err
}

// Recent returns the latest upload attempts up to limit.
func (s *Store) Recent(limit int) ([]UploadRecord, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	rows, err := s.DB.Query(`SELECT id, file_path, caption, status, media_id, error_message, created_at, completed_at FROM uploads ORDER BY created_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []UploadRecord
	for rows.Next() {
		var rec UploadRecord
		var created time.Time
		var completed sql.NullTime
		var mediaID, errorMsg, capt sql.NullString
		if err := rows.Scan(&rec.ID, &rec.FilePath, &capt, &rec.Status, &mediaID, &errorMsg, &created, &completed); err != nil {
			return nil, err
		}
		rec.CreatedAt = created
		rec.Caption = capt.String
		rec.MediaID = mediaID.String
		rec.Error = errorMsg.String
		if completed.Valid {
			rec.CompletedAt = &completed.Time
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
