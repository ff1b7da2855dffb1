// Package search maintains a SQLite FTS5 index over a datamap's attribute
// names and comments, so hosts can find attributes in large datamaps without
// walking the graph.
//
// The index is derived data: Rebuild wipes and repopulates it from a graph
// snapshot, and each row carries the attribute's owning path so hits are
// directly addressable in the tree.
package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"soarmap/internal/datamap"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// IndexFile is the database filename inside the index directory.
const IndexFile = "search.db"

// Hit is one search result: an attribute edge with its location in the
// datamap tree.
type Hit struct {
	Name     string  `json:"name"`
	Comment  string  `json:"comment,omitempty"`
	Path     string  `json:"path"`
	Kind     string  `json:"kind"`
	ParentID string  `json:"parentId"`
	TargetID string  `json:"targetId"`
	Rank     float64 `json:"rank"`
}

// Index is the FTS-backed attribute index.
type Index struct {
	db *sql.DB
}

// Open creates or opens the index database under dataDir.
func Open(dataDir string) (*Index, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("search: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, IndexFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("search: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("search: pragma %q: %w", p, err)
		}
	}

	ix := &Index{db: db}
	if err := ix.migrate(); err != nil {
		return nil, fmt.Errorf("search: migration: %w", err)
	}
	return ix, nil
}

func (ix *Index) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS attributes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			name      TEXT NOT NULL,
			comment   TEXT NOT NULL DEFAULT '',
			path      TEXT NOT NULL,
			kind      TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			target_id TEXT NOT NULL
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS attributes_fts USING fts5(
			name,
			comment,
			content='attributes',
			content_rowid='id'
		);
	`
	_, err := ix.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Rebuild replaces the index contents with the attributes of the given
// graph snapshot. Paths are rendered from the ownership chain, so linked
// occurrences of a vertex index under each of their parents.
func (ix *Index) Rebuild(g *datamap.Graph, meta *datamap.Meta) error {
	idx := g.BuildIndex()

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("search: begin rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM attributes",
		"INSERT INTO attributes_fts(attributes_fts) VALUES('delete-all')",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("search: clear index: %w", err)
		}
	}

	insert, err := tx.Prepare(`
		INSERT INTO attributes (name, comment, path, kind, parent_id, target_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("search: prepare insert: %w", err)
	}
	defer func() { _ = insert.Close() }()

	sync, err := tx.Prepare(`
		INSERT INTO attributes_fts(rowid, name, comment)
		SELECT id, name, comment FROM attributes WHERE id = last_insert_rowid()
	`)
	if err != nil {
		return fmt.Errorf("search: prepare fts sync: %w", err)
	}
	defer func() { _ = sync.Close() }()

	for _, v := range g.Vertices {
		if v.Kind != datamap.KindIdentifier {
			continue
		}
		parentPath := ownerPath(g, meta, v.ID)
		for _, e := range v.Edges {
			kind := "unknown"
			if target, ok := idx[e.TargetID]; ok {
				kind = string(target.Kind)
			}
			if _, err := insert.Exec(e.Name, e.Comment, parentPath+"."+e.Name, kind, v.ID, e.TargetID); err != nil {
				return fmt.Errorf("search: index %s: %w", e.Name, err)
			}
			if _, err := sync.Exec(); err != nil {
				return fmt.Errorf("search: fts sync: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("search: commit rebuild: %w", err)
	}
	return nil
}

// ownerPath renders a vertex's canonical location by walking the ownership
// chain up to the root. The visited guard stops ownership cycles that can
// appear in disconnected subgraphs.
func ownerPath(g *datamap.Graph, meta *datamap.Meta, vertexID string) string {
	var segments []string
	visited := map[string]bool{}

	cur := vertexID
	for cur != g.RootID && !visited[cur] {
		visited[cur] = true
		parent, ok := meta.Owner(cur)
		if !ok || parent == "" {
			break
		}
		name := ""
		for _, ref := range meta.InboundRefs(cur) {
			if ref.ParentID == parent {
				name = ref.EdgeName
				break
			}
		}
		if name == "" {
			break
		}
		segments = append([]string{name}, segments...)
		cur = parent
	}
	if len(segments) == 0 {
		return "state"
	}
	return "state." + strings.Join(segments, ".")
}

// Search performs full-text search over attribute names and comments,
// best-ranked first. An empty query returns no hits.
func (ix *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := ix.db.Query(`
		SELECT a.name, a.comment, a.path, a.kind, a.parent_id, a.target_id, fts.rank
		FROM attributes_fts fts
		JOIN attributes a ON a.id = fts.rowid
		WHERE attributes_fts MATCH ?
		ORDER BY fts.rank
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Name, &h.Comment, &h.Path, &h.Kind, &h.ParentID, &h.TargetID, &h.Rank); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// sanitizeFTS quotes each word so user input cannot inject FTS5 syntax.
// A trailing * on the last word is preserved for prefix search.
func sanitizeFTS(query string) string {
	var words []string
	for _, w := range strings.Fields(query) {
		prefix := strings.HasSuffix(w, "*")
		w = strings.Trim(w, `"*`)
		if w == "" {
			continue
		}
		quoted := `"` + w + `"`
		if prefix {
			quoted += "*"
		}
		words = append(words, quoted)
	}
	return strings.Join(words, " ")
}
