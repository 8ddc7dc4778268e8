package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS exports (
    id         TEXT PRIMARY KEY,
    path       TEXT NOT NULL,
    format     TEXT NOT NULL,
    width      INTEGER NOT NULL,
    height     INTEGER NOT NULL,
    session    TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS exports_created ON exports(created_at);
`

// Entry is one successful export.
type Entry struct {
	ID        string
	Path      string
	Format    Format
	Width     int
	Height    int
	Session   string
	CreatedAt time.Time
}

// Catalog remembers where exports were written. It never stores strokes.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (creating if needed) the catalog database at path.
func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir catalog dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Record stores e, assigning an ID and timestamp when missing.
func (c *Catalog) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO exports (id, path, format, width, height, session, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, e.ID, e.Path, string(e.Format), e.Width, e.Height, e.Session, e.CreatedAt.UnixMilli())
	if err != nil {
		return Entry{}, fmt.Errorf("record export: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT id, path, format, width, height, session, created_at
        FROM exports
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			format  string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Path, &format, &e.Width, &e.Height, &e.Session, &created); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.Format = Format(format)
		e.CreatedAt = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
