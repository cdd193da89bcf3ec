package spacetraveling

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrPageNotStored is returned when the store holds no snapshot for a key.
var ErrPageNotStored = errors.New("spacetraveling: page not stored")

// Page is a rendered response snapshot.
type Page struct {
	Body        []byte
	ContentType string
	GeneratedAt time.Time
}

// Store wraps a SQLite database holding rendered page snapshots, so pages
// generated before a restart are served without another content fetch.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the background regenerator write while requests read.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    path TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    body BLOB NOT NULL,
    generated_at INTEGER NOT NULL
);
`)
	return err
}

// GetPage returns the snapshot stored under path.
func (s *Store) GetPage(path string) (Page, error) {
	var p Page
	var generated int64
	err := s.db.QueryRow(`SELECT content_type, body, generated_at FROM pages WHERE path = ?`, path).
		Scan(&p.ContentType, &p.Body, &generated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Page{}, ErrPageNotStored
		}
		return Page{}, err
	}
	p.GeneratedAt = time.Unix(0, generated)
	return p, nil
}

// SavePage upserts the snapshot for path.
func (s *Store) SavePage(path string, p Page) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO pages (path, content_type, body, generated_at) VALUES (?, ?, ?, ?)`,
		path, p.ContentType, p.Body, p.GeneratedAt.UnixNano())
	return err
}

// DeletePage removes the snapshot for path.
func (s *Store) DeletePage(path string) error {
	_, err := s.db.Exec(`DELETE FROM pages WHERE path = ?`, path)
	return err
}

// ListPaths returns every stored path in lexical order.
func (s *Store) ListPaths() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM pages ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
