package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/vetcontent/internal/models"
)

// SQLiteStore implements Store using SQLite. Tags and services are stored as JSON arrays.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS blog_posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		excerpt TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		content_format TEXT NOT NULL DEFAULT 'markdown',
		cover_image TEXT NOT NULL DEFAULT '',
		lang TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'draft',
		published_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (slug, lang)
	);

	CREATE INDEX IF NOT EXISTS idx_blog_posts_published ON blog_posts(status, lang, published_at);

	CREATE TABLE IF NOT EXISTS case_studies (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		excerpt TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		content_format TEXT NOT NULL DEFAULT 'markdown',
		cover_image TEXT NOT NULL DEFAULT '',
		lang TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'draft',
		published_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		client TEXT NOT NULL DEFAULT '',
		sector TEXT NOT NULL DEFAULT '',
		services TEXT NOT NULL DEFAULT '[]',
		UNIQUE (slug, lang)
	);

	CREATE INDEX IF NOT EXISTS idx_case_studies_published ON case_studies(status, lang, published_at);
	`
	_, err := db.Exec(schema)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner, c models.Collection) (*models.DbContentRecord, error) {
	rec := &models.DbContentRecord{Collection: c}
	var tagsJSON, servicesJSON string
	var publishedAt sql.NullTime
	dest := []any{
		&rec.ID, &rec.Title, &rec.Slug, &rec.Excerpt, &rec.Content, &rec.ContentFormat, &rec.CoverImage,
		&rec.Lang, &tagsJSON, &rec.Status, &publishedAt, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if c == models.CollectionCaseStudies {
		dest = append(dest, &rec.Client, &rec.Sector, &servicesJSON)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		rec.PublishedAt = &t
	}
	if err := unmarshalList(tagsJSON, &rec.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := unmarshalList(servicesJSON, &rec.Services); err != nil {
		return nil, fmt.Errorf("failed to unmarshal services: %w", err)
	}
	return rec, nil
}

func unmarshalList(raw string, out *[]string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

// ListPublished returns published records of collection in lang, newest first.
func (s *SQLiteStore) ListPublished(ctx context.Context, collection models.Collection, lang models.Locale) ([]*models.DbContentRecord, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columnsFor(collection)+` FROM `+table+`
		 WHERE status = ? AND lang = ?
		 ORDER BY COALESCE(published_at, created_at) DESC, slug ASC`,
		models.StatusPublished, string(lang),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var out []*models.DbContentRecord
	for rows.Next() {
		rec, err := scanSQLite(rows, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetBySlug returns the published record with slug in lang.
func (s *SQLiteStore) GetBySlug(ctx context.Context, collection models.Collection, slug string, lang models.Locale) (*models.DbContentRecord, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columnsFor(collection)+` FROM `+table+`
		 WHERE slug = ? AND lang = ? AND status = ?`,
		slug, string(lang), models.StatusPublished,
	)
	rec, err := scanSQLite(row, collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s/%s: %w", collection, lang, slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CountPublished returns the number of published records per collection.
func (s *SQLiteStore) CountPublished(ctx context.Context) (map[models.Collection]int64, error) {
	out := make(map[models.Collection]int64, len(models.Collections))
	for _, c := range models.Collections {
		table, _ := tableFor(c)
		var n int64
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE status = ?`, models.StatusPublished).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		out[c] = n
	}
	return out, nil
}

// Upsert inserts rec or replaces the record with the same (slug, lang). A missing id is generated.
func (s *SQLiteStore) Upsert(ctx context.Context, rec *models.DbContentRecord) error {
	table, err := tableFor(rec.Collection)
	if err != nil {
		return err
	}
	prepareRecord(rec)
	tags, err := marshalList(rec.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	var publishedAt any
	if rec.PublishedAt != nil {
		publishedAt = rec.PublishedAt.UTC()
	}

	cols := "id, title, slug, excerpt, content, content_format, cover_image, lang, tags, status, published_at, created_at, updated_at"
	vals := "?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?"
	set := `title = excluded.title, excerpt = excluded.excerpt, content = excluded.content,
		content_format = excluded.content_format, cover_image = excluded.cover_image, tags = excluded.tags,
		status = excluded.status, published_at = excluded.published_at, updated_at = excluded.updated_at`
	args := []any{
		rec.ID, rec.Title, rec.Slug, rec.Excerpt, rec.Content, rec.ContentFormat, rec.CoverImage,
		string(rec.Lang), tags, rec.Status, publishedAt, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	}
	if rec.Collection == models.CollectionCaseStudies {
		services, err := marshalList(rec.Services)
		if err != nil {
			return fmt.Errorf("failed to marshal services: %w", err)
		}
		cols += ", client, sector, services"
		vals += ", ?, ?, ?"
		set += ", client = excluded.client, sector = excluded.sector, services = excluded.services"
		args = append(args, rec.Client, rec.Sector, services)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (`+cols+`) VALUES (`+vals+`)
		 ON CONFLICT (slug, lang) DO UPDATE SET `+set,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", table, rec.Slug, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// prepareRecord fills the id, timestamps and defaults of a record about to be written.
func prepareRecord(rec *models.DbContentRecord) {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.ContentFormat == "" {
		rec.ContentFormat = models.FormatMarkdown
	}
	if rec.Status == "" {
		rec.Status = models.StatusDraft
	}
}

var _ Store = (*SQLiteStore)(nil)
