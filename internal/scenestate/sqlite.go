package scenestate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record describes one saved scene in the history.
type Record struct {
	ID      int64
	SavedAt time.Time
	Mode    string
	Cubes   int
	Hinges  int
}

// SQLiteStore appends every save to a history table. Load returns the newest row.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the history database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scenes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			cubes INTEGER NOT NULL,
			hinges INTEGER NOT NULL,
			state_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scenes_saved_at ON scenes(saved_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Save appends s to the history.
func (s *SQLiteStore) Save(ctx context.Context, st *SceneState) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scenes(saved_at, mode, cubes, hinges, state_json) VALUES(?, ?, ?, ?, ?)`,
		s.now().UTC().Format(time.RFC3339Nano), st.Mode, len(st.Cubes), len(st.HingeMap), string(data))
	return err
}

// Load returns the newest saved scene.
func (s *SQLiteStore) Load(ctx context.Context) (*SceneState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state_json FROM scenes ORDER BY id DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return Decode([]byte(data))
}

// Get returns the scene saved under id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*SceneState, error) {
	data, err := s.Raw(ctx, id)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Raw returns the stored JSON of id without decoding it.
func (s *SQLiteStore) Raw(ctx context.Context, id int64) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state_json FROM scenes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// List returns up to limit records, newest first. A limit of 0 or less returns all.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	q := `SELECT id, saved_at, mode, cubes, hinges FROM scenes ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var savedAt string
		if err := rows.Scan(&r.ID, &savedAt, &r.Mode, &r.Cubes, &r.Hinges); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
			r.SavedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep rows and deletes the rest.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scenes WHERE id NOT IN (SELECT id FROM scenes ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
