// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists crawled articles in a SQLite database. One row per
// article URL; re-crawls merge into existing rows without erasing fields
// that were already filled.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

// articleColumns is the scan order shared by every article SELECT.
var articleColumns = []string{
	"id", "article_url", "search_url", "title", "journal", "published_date",
	"abstract_en", "abstract_zh", "abstract_en_hash", "crawled_at", "translated_at",
}

// Store manages the articles SQLite database. The database opens in WAL
// mode with a busy timeout, so concurrent crawl units can write through a
// single Store.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the articles database at path. Parent
// directories and the schema are created as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			article_url TEXT NOT NULL UNIQUE,
			search_url TEXT,
			title TEXT,
			journal TEXT,
			published_date TEXT,
			abstract_en TEXT,
			abstract_zh TEXT,
			abstract_en_hash TEXT,
			crawled_at TEXT,
			translated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_hash ON articles(abstract_en_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_zh ON articles(abstract_zh)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertArticle inserts the article or merges it into the existing row with
// the same article_url. The merge fills gaps only: empty fields bind as
// NULL and never overwrite stored values, while non-empty fields replace
// them.
func (s *Store) UpsertArticle(ctx context.Context, a *types.Article) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (
			article_url, search_url, title, journal, published_date,
			abstract_en, abstract_zh, abstract_en_hash, crawled_at, translated_at
		) VALUES (
			?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''),
			NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, '')
		)
		ON CONFLICT(article_url) DO UPDATE SET
			search_url=COALESCE(excluded.search_url, articles.search_url),
			title=COALESCE(excluded.title, articles.title),
			journal=COALESCE(excluded.journal, articles.journal),
			published_date=COALESCE(excluded.published_date, articles.published_date),
			abstract_en=COALESCE(excluded.abstract_en, articles.abstract_en),
			abstract_zh=COALESCE(excluded.abstract_zh, articles.abstract_zh),
			abstract_en_hash=COALESCE(excluded.abstract_en_hash, articles.abstract_en_hash),
			crawled_at=COALESCE(excluded.crawled_at, articles.crawled_at),
			translated_at=COALESCE(excluded.translated_at, articles.translated_at)`,
		a.URL, a.SearchURL, a.Title, a.Journal, a.PublishedDate,
		a.AbstractEN, a.AbstractZH, a.AbstractENHash, a.CrawledAt, a.TranslatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", a.URL, err)
	}
	return nil
}

// HasAbstractEN reports whether the store already holds a non-empty English
// abstract for the article URL. The crawl resume check.
func (s *Store) HasAbstractEN(ctx context.Context, articleURL string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM articles WHERE article_url = ? AND abstract_en IS NOT NULL AND abstract_en != '' LIMIT 1`,
		articleURL,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking abstract for %s: %w", articleURL, err)
	}
	return true, nil
}

// PendingTranslations returns articles with an English abstract but no
// Chinese one, oldest first. A limit of zero or less means no limit.
func (s *Store) PendingTranslations(ctx context.Context, limit int) ([]types.Article, error) {
	q := sq.Select(articleColumns...).
		From("articles").
		Where("abstract_en IS NOT NULL AND abstract_en != ''").
		Where("(abstract_zh IS NULL OR abstract_zh = '')").
		OrderBy("id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return s.queryArticles(ctx, q)
}

// CachedTranslation returns a previously stored Chinese abstract for the
// given English-abstract hash, or "" when no row carries one.
func (s *Store) CachedTranslation(ctx context.Context, hash string) (string, error) {
	query, args, err := sq.Select("abstract_zh").
		From("articles").
		Where(sq.Eq{"abstract_en_hash": hash}).
		Where("abstract_zh IS NOT NULL AND abstract_zh != ''").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("building cache query: %w", err)
	}

	var zh string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&zh)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up cached translation: %w", err)
	}
	return zh, nil
}

// SetTranslation stores the Chinese abstract and translation timestamp on
// the article's row. A row without a stored abstract hash gets the key hash
// backfilled, so CachedTranslation finds every translated row.
func (s *Store) SetTranslation(ctx context.Context, articleURL, abstractZH, hash, translatedAt string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE articles
		 SET abstract_zh = ?, translated_at = ?,
		     abstract_en_hash = COALESCE(abstract_en_hash, NULLIF(?, ''))
		 WHERE article_url = ?`,
		abstractZH, translatedAt, hash, articleURL,
	)
	if err != nil {
		return fmt.Errorf("storing translation for %s: %w", articleURL, err)
	}
	return nil
}

// ArticlesForExport returns stored articles in creation order, optionally
// restricted to one crawl's search URL.
func (s *Store) ArticlesForExport(ctx context.Context, searchURL string) ([]types.Article, error) {
	q := sq.Select(articleColumns...).From("articles").OrderBy("id ASC")
	if searchURL != "" {
		q = q.Where(sq.Eq{"search_url": searchURL})
	}
	return s.queryArticles(ctx, q)
}

// CountArticles returns the total number of stored articles.
func (s *Store) CountArticles(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("articles").ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

func (s *Store) queryArticles(ctx context.Context, q sq.SelectBuilder) ([]types.Article, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return articles, nil
}

// scanArticle maps one row to an Article, converting NULL columns to "".
func scanArticle(rows *sql.Rows) (types.Article, error) {
	var (
		a          types.Article
		searchURL  sql.NullString
		title      sql.NullString
		journal    sql.NullString
		published  sql.NullString
		abstractEN sql.NullString
		abstractZH sql.NullString
		hash       sql.NullString
		crawledAt  sql.NullString
		translated sql.NullString
	)
	if err := rows.Scan(
		&a.ID, &a.URL, &searchURL, &title, &journal, &published,
		&abstractEN, &abstractZH, &hash, &crawledAt, &translated,
	); err != nil {
		return types.Article{}, err
	}
	a.SearchURL = searchURL.String
	a.Title = title.String
	a.Journal = journal.String
	a.PublishedDate = published.String
	a.AbstractEN = abstractEN.String
	a.AbstractZH = abstractZH.String
	a.AbstractENHash = hash.String
	a.CrawledAt = crawledAt.String
	a.TranslatedAt = translated.String
	return a, nil
}
