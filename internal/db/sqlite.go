package db

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/voice-memo/backend/internal/auth"
	"github.com/voice-memo/backend/internal/db/models"
	"github.com/voice-memo/backend/internal/recording"
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'viewer',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS recordings (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		filename TEXT NOT NULL,
		transcript TEXT,
		summary TEXT,
		progress TEXT,
		is_summarizing INTEGER NOT NULL DEFAULT 0,
		phase TEXT NOT NULL DEFAULT 'captured'
	);
	`
	_, err := d.db.Exec(schema)
	return err
}

func (d *Database) EnsureAdmin(username, password string) error {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		"INSERT INTO users (username, password, role) VALUES (?, ?, 'admin')",
		username, hash,
	)
	return err
}

func (d *Database) GetUserByUsername(username string) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *Database) GetUserByID(id int64) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

const recordingColumns = "id, title, created_at, duration, filename, transcript, summary, progress, is_summarizing, phase"

// List returns all recordings, newest first.
func (d *Database) List() ([]*recording.Recording, error) {
	rows, err := d.db.Query(
		"SELECT " + recordingColumns + " FROM recordings ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*recording.Recording
	for rows.Next() {
		rec, err := scanRecording(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Get returns one recording or recording.ErrNotFound.
func (d *Database) Get(id string) (*recording.Recording, error) {
	row := d.db.QueryRow(
		"SELECT "+recordingColumns+" FROM recordings WHERE id = ?", id)
	rec, err := scanRecording(row.Scan)
	if err == sql.ErrNoRows {
		return nil, recording.ErrNotFound
	}
	return rec, err
}

func (d *Database) Create(rec *recording.Recording) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Phase == "" {
		rec.Phase = recording.PhaseCaptured
	}
	_, err := d.db.Exec(`
		INSERT INTO recordings (id, title, created_at, duration, filename, transcript, summary, progress, is_summarizing, phase)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.CreatedAt, rec.Duration, rec.Filename,
		nullable(rec.Transcript), nullable(rec.Summary), nullable(rec.Progress),
		rec.IsSummarizing, string(rec.Phase),
	)
	return err
}

// Update overwrites the mutable fields. Returns recording.ErrNotFound when the
// record was deleted by a concurrent actor.
func (d *Database) Update(rec *recording.Recording) error {
	res, err := d.db.Exec(`
		UPDATE recordings
		SET title = ?, transcript = ?, summary = ?, progress = ?, is_summarizing = ?, phase = ?
		WHERE id = ?`,
		rec.Title, nullable(rec.Transcript), nullable(rec.Summary), nullable(rec.Progress),
		rec.IsSummarizing, string(rec.Phase), rec.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recording.ErrNotFound
	}
	return nil
}

func (d *Database) Delete(id string) error {
	res, err := d.db.Exec("DELETE FROM recordings WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recording.ErrNotFound
	}
	return nil
}

func scanRecording(scan func(dest ...interface{}) error) (*recording.Recording, error) {
	rec := &recording.Recording{}
	var transcript, summary, progress sql.NullString
	var phase string
	err := scan(&rec.ID, &rec.Title, &rec.CreatedAt, &rec.Duration, &rec.Filename,
		&transcript, &summary, &progress, &rec.IsSummarizing, &phase)
	if err != nil {
		return nil, err
	}
	rec.Transcript = transcript.String
	rec.Summary = summary.String
	rec.Progress = progress.String
	rec.Phase = recording.Phase(phase)
	return rec, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for use by other packages
func (d *Database) DB() *sql.DB {
	return d.db
}
