// Package store records generated QR images in a SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Generation is a single written image.
type Generation struct {
	ID        int64     `json:"id"`
	Payload   string    `json:"payload"`
	Path      string    `json:"path"`
	SHA256    string    `json:"sha256"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStore manages SQLite storage for generations.
type HistoryStore struct {
	db *sql.DB
}

const createGenerationsTable = `
CREATE TABLE IF NOT EXISTS generations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    payload TEXT NOT NULL,
    path TEXT NOT NULL,
    sha256 TEXT NOT NULL,
    size INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);
`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at);
CREATE INDEX IF NOT EXISTS idx_generations_path ON generations(path);
`

// NewHistoryStore opens (or creates) the SQLite database at dbPath and
// initialises the schema.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range []string{createGenerationsTable, createIndexes} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return &HistoryStore{db: db}, nil
}

// Record inserts g and returns it with ID set. A zero CreatedAt is
// replaced with the current time.
func (s *HistoryStore) Record(g Generation) (Generation, error) {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO generations (payload, path, sha256, size, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := s.db.Exec(query, g.Payload, g.Path, g.SHA256, g.Size, g.CreatedAt.UnixNano())
	if err != nil {
		return Generation{}, fmt.Errorf("record generation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Generation{}, fmt.Errorf("record generation id: %w", err)
	}
	g.ID = id
	return g, nil
}

// MaxListLimit bounds the limit accepted by List callers.
const MaxListLimit = 500

// List returns up to limit generations, newest first.
func (s *HistoryStore) List(limit int) ([]Generation, error) {
	const query = `
		SELECT id, payload, path, sha256, size, created_at
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var gens []Generation
	for rows.Next() {
		var g Generation
		var created int64
		if err := rows.Scan(&g.ID, &g.Payload, &g.Path, &g.SHA256, &g.Size, &created); err != nil {
			return nil, fmt.Errorf("scan generation row: %w", err)
		}
		g.CreatedAt = time.Unix(0, created)
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation rows: %w", err)
	}
	return gens, nil
}

// Close closes the underlying database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
