// Package sqlite persists graph snapshots in a SQLite database, as an
// alternative source to the JSON file format.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
)

// DB wraps a SQLite-backed snapshot store.
type DB struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes
// the snapshot schema.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// initSchema creates tables if they don't exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	name TEXT,
	description TEXT,
	extra TEXT
);

CREATE TABLE IF NOT EXISTS relationships (
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	kind TEXT NOT NULL,
	PRIMARY KEY(source, target, kind)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveSnapshot replaces the stored snapshot with the given graph data.
func (d *DB) SaveSnapshot(ctx context.Context, nodes []graph.Node, relationships []graph.Relationship) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships"); err != nil {
		return err
	}

	for _, n := range nodes {
		extra := "{}"
		if len(n.Extra) > 0 {
			data, err := json.Marshal(n.Extra)
			if err != nil {
				return fmt.Errorf("encode extra fields of %s: %w", n.ID, err)
			}
			extra = string(data)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO nodes (id, kind, name, description, extra) VALUES (?, ?, ?, ?, ?)",
			n.ID, string(n.Kind), n.Name, n.Description, extra)
		if err != nil {
			return err
		}
	}

	for _, r := range relationships {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO relationships (source, target, kind) VALUES (?, ?, ?)",
			r.Source, r.Target, r.Kind)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadStore reads the stored snapshot and builds an immutable graph
// store. An empty database yields an empty graph.
func (d *DB) LoadStore(ctx context.Context) (*graph.Store, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT id, kind, name, description, extra FROM nodes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []graph.Node
	for rows.Next() {
		var n graph.Node
		var kind, extra string
		if err := rows.Scan(&n.ID, &kind, &n.Name, &n.Description, &extra); err != nil {
			return nil, err
		}
		n.Kind = graph.KindOf(kind)
		if extra != "" && extra != "{}" {
			if err := json.Unmarshal([]byte(extra), &n.Extra); err != nil {
				return nil, &graph.LoadError{Reason: fmt.Sprintf("extra fields of %s: %v", n.ID, err)}
			}
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	relRows, err := d.db.QueryContext(ctx, "SELECT source, target, kind FROM relationships")
	if err != nil {
		return nil, err
	}
	defer relRows.Close()

	var rels []graph.Relationship
	for relRows.Next() {
		var r graph.Relationship
		if err := relRows.Scan(&r.Source, &r.Target, &r.Kind); err != nil {
			return nil, err
		}
		rels = append(rels, r)
	}
	if err := relRows.Err(); err != nil {
		return nil, err
	}

	return graph.Load(nodes, rels)
}
