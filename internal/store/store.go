// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists cut evidence cards in a local SQLite database with
// a full-text index over card content. The store is a convenience for the
// CLI; the search pipeline itself never reads or writes it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

const dbFile = "evidence.db"

const defaultMaxResults = 20

// Store manages the evidence-card SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the card database at dir/evidence.db, creating
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "evidence"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			argument TEXT NOT NULL,
			tag TEXT NOT NULL,
			citation TEXT NOT NULL,
			cut_content TEXT NOT NULL,
			url TEXT,
			title TEXT,
			author TEXT,
			publish_year INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_argument ON cards(argument)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='cards_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE cards_fts USING fts5(tag, cut_content, content=cards, content_rowid=rowid)`,
			`CREATE TRIGGER cards_ai AFTER INSERT ON cards BEGIN
				INSERT INTO cards_fts(rowid, tag, cut_content) VALUES (new.rowid, new.tag, new.cut_content);
			END`,
			`CREATE TRIGGER cards_ad AFTER DELETE ON cards BEGIN
				INSERT INTO cards_fts(cards_fts, rowid, tag, cut_content) VALUES('delete', old.rowid, old.tag, old.cut_content);
			END`,
			`CREATE TRIGGER cards_au AFTER UPDATE ON cards BEGIN
				INSERT INTO cards_fts(cards_fts, rowid, tag, cut_content) VALUES('delete', old.rowid, old.tag, old.cut_content);
				INSERT INTO cards_fts(rowid, tag, cut_content) VALUES (new.rowid, new.tag, new.cut_content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Save persists one card. A missing ID or CreatedAt is filled in; the
// stored card is returned.
func (s *Store) Save(ctx context.Context, card types.Card) (types.Card, error) {
	if strings.TrimSpace(card.CutContent) == "" {
		return card, fmt.Errorf("card content must not be empty")
	}
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, argument, tag, citation, cut_content, url, title, author, publish_year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID, card.Argument, card.Tag, card.Citation, card.CutContent,
		card.URL, card.Title, card.Author, card.PublishYear,
		card.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return card, fmt.Errorf("inserting card: %w", err)
	}
	return card, nil
}

// ListOptions holds parameters for card queries.
type ListOptions struct {
	// Query is an FTS5 full-text search over tag and content.
	Query string

	// Argument filters by the exact argument the card was cut for.
	Argument string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns cards ranked by relevance for full-text queries, or newest
// first otherwise.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Card, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT c.id, c.argument, c.tag, c.citation, c.cut_content,
				c.url, c.title, c.author, c.publish_year, c.created_at
			FROM cards_fts
			JOIN cards c ON c.rowid = cards_fts.rowid
			WHERE cards_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT c.id, c.argument, c.tag, c.citation, c.cut_content,
				c.url, c.title, c.author, c.publish_year, c.created_at
			FROM cards c
			WHERE 1=1`)
	}

	if opts.Argument != "" {
		qb.WriteString(` AND c.argument = ?`)
		args = append(args, opts.Argument)
	}

	if useFTS {
		qb.WriteString(` ORDER BY cards_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.created_at DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	var cards []types.Card
	for rows.Next() {
		var (
			card      types.Card
			url       sql.NullString
			title     sql.NullString
			author    sql.NullString
			year      sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(
			&card.ID, &card.Argument, &card.Tag, &card.Citation, &card.CutContent,
			&url, &title, &author, &year, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		card.URL = url.String
		card.Title = title.String
		card.Author = author.String
		card.PublishYear = int(year.Int64)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			card.CreatedAt = t
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}
