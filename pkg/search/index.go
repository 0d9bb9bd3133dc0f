// Package search indexes collected items for client-side filtering. Items
// are re-indexed on every load; the index defaults to an in-memory sqlite
// database and falls back to LIKE matching when FTS5 is unavailable.
package search

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bi-tools/appcopy/pkg/models"
)

// Index manages the item search index.
type Index struct {
	db     *sql.DB
	useFTS bool
}

// NewIndex opens (or creates) the index database. Pass ":memory:" for a
// per-invocation index.
func NewIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) Close() error { return idx.db.Close() }

// init creates the database schema.
func (idx *Index) init() error {
	idx.useFTS = idx.checkFTS5Support()

	metaSchema := `
	CREATE TABLE IF NOT EXISTS items_meta (
		id TEXT,
		type TEXT,
		label TEXT,
		blob TEXT,
		PRIMARY KEY (id, type)
	);

	CREATE INDEX IF NOT EXISTS idx_items_meta_type ON items_meta(type);
	CREATE INDEX IF NOT EXISTS idx_items_meta_label ON items_meta(label);
	`
	if _, err := idx.db.Exec(metaSchema); err != nil {
		return err
	}

	if idx.useFTS {
		ftsSchema := `
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			id UNINDEXED,
			type,
			label,
			terms,
			tokenize = 'porter unicode61'
		);
		`
		if _, err := idx.db.Exec(ftsSchema); err != nil {
			// If FTS creation fails, disable FTS and continue.
			idx.useFTS = false
		}
	}
	return nil
}

// checkFTS5Support checks if the FTS5 module is available.
func (idx *Index) checkFTS5Support() bool {
	_, err := idx.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_test USING fts5(content)")
	if err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS fts5_test")
	return true
}

// IndexItem indexes or reindexes one item.
func (idx *Index) IndexItem(item *models.Item) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	terms := strings.Join(item.SearchTerms, " ")

	if idx.useFTS {
		if _, err = tx.Exec("DELETE FROM items_fts WHERE id = ? AND type = ?", item.ID, item.Type); err != nil {
			return err
		}
		if _, err = tx.Exec(`
			INSERT INTO items_fts (id, type, label, terms)
			VALUES (?, ?, ?, ?)
		`, item.ID, item.Type, item.Label, terms); err != nil {
			return err
		}
	}

	if _, err = tx.Exec("DELETE FROM items_meta WHERE id = ? AND type = ?", item.ID, item.Type); err != nil {
		return err
	}
	if _, err = tx.Exec(`
		INSERT INTO items_meta (id, type, label, blob)
		VALUES (?, ?, ?, ?)
	`, item.ID, item.Type, item.Label, item.SearchBlob()); err != nil {
		return err
	}

	return tx.Commit()
}

// IndexAll indexes every item of every type.
func (idx *Index) IndexAll(items map[models.ObjectType][]*models.Item) error {
	for _, set := range items {
		for _, item := range set {
			if err := idx.IndexItem(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Match is one search hit.
type Match struct {
	ID    string
	Type  models.ObjectType
	Label string
}

// Options narrows a search.
type Options struct {
	Type  models.ObjectType
	Limit int
}

// Search performs a full-text search over labels and search terms.
func (idx *Index) Search(query string, opts *Options) ([]Match, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Limit == 0 {
		opts.Limit = 100
	}

	if idx.useFTS {
		return idx.searchWithFTS(query, opts)
	}
	return idx.searchWithoutFTS(query, opts)
}

func (idx *Index) searchWithFTS(query string, opts *Options) ([]Match, error) {
	var conditions []string
	var args []any

	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(opts.Type))
	}
	conditions = append(conditions, "items_fts MATCH ?")
	args = append(args, query, opts.Limit)

	searchQuery := fmt.Sprintf(`
		SELECT id, type, label
		FROM items_fts
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	return idx.scanMatches(searchQuery, args)
}

func (idx *Index) searchWithoutFTS(query string, opts *Options) ([]Match, error) {
	var conditions []string
	var args []any

	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(opts.Type))
	}
	// The blob column is the item's lowercase label+terms join, so a
	// lowercased LIKE gives case-insensitive matching without FTS.
	conditions = append(conditions, "blob LIKE ?")
	args = append(args, "%"+strings.ToLower(query)+"%", opts.Limit)

	searchQuery := fmt.Sprintf(`
		SELECT id, type, label
		FROM items_meta
		WHERE %s
		ORDER BY label COLLATE NOCASE
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	return idx.scanMatches(searchQuery, args)
}

func (idx *Index) scanMatches(query string, args []any) ([]Match, error) {
	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Match
	for rows.Next() {
		var m Match
		var typ string
		if err := rows.Scan(&m.ID, &typ, &m.Label); err != nil {
			return nil, err
		}
		m.Type = models.ObjectType(typ)
		results = append(results, m)
	}
	return results, rows.Err()
}
