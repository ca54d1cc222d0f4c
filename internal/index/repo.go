package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/zettelgraph/internal/apperr"
	"github.com/starford/zettelgraph/internal/models"
)

// groupSep joins tag and link groups inside one row; it cannot occur in a tag
// or an id.
const groupSep = "\x1f"

// recordsSQL reads every node with its tags and id-links in a single
// statement, so the columns of a row always belong to the same node.
const recordsSQL = `
SELECT n.id,
       COALESCE(n.file, ''),
       COALESCE(n.title, ''),
       COALESCE((SELECT group_concat(t.tag, char(31)) FROM tags t WHERE t.node_id = n.id), ''),
       COALESCE((SELECT group_concat(l.dest, char(31)) FROM links l
                 WHERE l.source = n.id AND trim(l.type, '"') = 'id'), '')
FROM nodes n
ORDER BY n.id ASC
`

// Records returns one record per indexed node, ordered by id. Nodes without
// tags or links get empty slices. The query runs on a dedicated connection
// that is released on every return path.
func (db *DB) Records(ctx context.Context) ([]models.Record, error) {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("index: %w: acquire conn: %w", apperr.ErrDataSource, err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, recordsSQL)
	if err != nil {
		return nil, fmt.Errorf("index: %w: records: %w", apperr.ErrDataSource, err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var id, file, title, tags, links string
		if err := rows.Scan(&id, &file, &title, &tags, &links); err != nil {
			return nil, fmt.Errorf("index: %w: scan record: %w", apperr.ErrDataSource, err)
		}
		out = append(out, models.Record{
			ID:    unquote(id),
			File:  unquote(file),
			Title: unquote(title),
			Tags:  splitGroup(tags),
			Links: splitGroup(links),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: %w: iterate records: %w", apperr.ErrDataSource, err)
	}
	return out, nil
}

// UpsertNode inserts or replaces a node with its tags and links within a
// transaction.
func (db *DB) UpsertNode(ctx context.Context, rec models.Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("index: upsert node %s: %w", rec.File, apperr.ErrMissingIdentifier)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO nodes (id, file, title)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file  = excluded.file,
			title = excluded.title
	`, rec.ID, rec.File, rec.Title)
	if err != nil {
		return fmt.Errorf("index: upsert node: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE node_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE source = ?`, rec.ID); err != nil {
		return fmt.Errorf("index: clear links: %w", err)
	}

	if len(rec.Tags) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO tags (node_id, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range rec.Tags {
			if _, err := stmt.ExecContext(ctx, rec.ID, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	if len(rec.Links) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO links (source, dest, type) VALUES (?, ?, 'id')`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, dest := range rec.Links {
			if _, err := stmt.ExecContext(ctx, rec.ID, dest); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_state (node_id, hash) VALUES (?, ?)
		ON CONFLICT(node_id) DO UPDATE SET hash = excluded.hash
	`, rec.ID, RecordHash(rec))
	if err != nil {
		return fmt.Errorf("index: record hash: %w", err)
	}

	return tx.Commit()
}

// DeleteNode removes a node, its tags, and its outgoing links.
func (db *DB) DeleteNode(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, q := range []string{
		`DELETE FROM tags WHERE node_id = ?`,
		`DELETE FROM links WHERE source = ?`,
		`DELETE FROM nodes WHERE id = ?`,
		`DELETE FROM sync_state WHERE node_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("index: delete node: %w", err)
		}
	}

	return tx.Commit()
}

// Hashes returns every indexed node id mapped to the hash of the record last
// written for it. Nodes written by another tool (an org-roam database) map to
// an empty hash.
func (db *DB) Hashes(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT n.id, COALESCE(s.hash, '')
		FROM nodes n LEFT JOIN sync_state s ON s.node_id = n.id
	`)
	if err != nil {
		return nil, fmt.Errorf("index: %w: hashes: %w", apperr.ErrDataSource, err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, fmt.Errorf("index: %w: scan hash: %w", apperr.ErrDataSource, err)
		}
		out[id] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: %w: iterate hashes: %w", apperr.ErrDataSource, err)
	}
	return out, nil
}

// RecordHash digests the indexed fields of rec. Tags and links are sorted,
// so the hash does not depend on their order.
func RecordHash(rec models.Record) string {
	tags := append([]string(nil), rec.Tags...)
	links := append([]string(nil), rec.Links...)
	sort.Strings(tags)
	sort.Strings(links)
	parts := []string{rec.ID, rec.File, rec.Title, strings.Join(tags, groupSep), strings.Join(links, groupSep)}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1e")))
	return hex.EncodeToString(sum[:])
}

func splitGroup(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, groupSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = unquote(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// unquote strips the elisp string quoting org-roam stores values with.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
