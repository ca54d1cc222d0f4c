// Package index provides a SQLite-backed relational note index and the
// relational ingestion source that reads it.
//
// The tables follow the org-roam layout (nodes, tags, links), so an
// org-roam database can be read directly.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	id    TEXT PRIMARY KEY,
	file  TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tags (
	node_id TEXT NOT NULL,
	tag     TEXT NOT NULL,
	UNIQUE(node_id, tag)
);

CREATE TABLE IF NOT EXISTS links (
	source TEXT NOT NULL,
	dest   TEXT NOT NULL,
	type   TEXT NOT NULL DEFAULT 'id',
	UNIQUE(source, dest, type)
);

CREATE TABLE IF NOT EXISTS sync_state (
	node_id TEXT PRIMARY KEY,
	hash    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tags_node_id ON tags(node_id);
CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);
CREATE INDEX IF NOT EXISTS idx_links_dest ON links(dest);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at path with the given driver
// and applies the schema. An empty driver selects DriverCGO.
func Open(driver, path string) (*DB, error) {
	if driver == "" {
		driver = DriverCGO
	}
	dsn, err := dsnFor(driver, path)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// OpenReadOnly opens the existing database at path for reading. Neither the
// schema nor the journal mode is touched, so a database maintained by another
// tool can be read as is.
func OpenReadOnly(driver, path string) (*DB, error) {
	if driver == "" {
		driver = DriverCGO
	}
	var dsn string
	switch driver {
	case DriverCGO:
		dsn = "file:" + path + "?mode=ro&_query_only=1&_busy_timeout=5000"
	case DriverPure:
		dsn = "file:" + path + "?mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(5000)"
	default:
		return nil, fmt.Errorf("index: unknown driver %q", driver)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: open %s read-only: %w", path, err)
	}
	return &DB{conn: conn}, nil
}

func dsnFor(driver, path string) (string, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	switch driver {
	case DriverCGO:
		return path + sep + "_journal_mode=WAL&_busy_timeout=5000", nil
	case DriverPure:
		return path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("index: unknown driver %q", driver)
	}
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
