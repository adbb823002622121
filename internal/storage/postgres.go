package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyperjump/vetcontent/internal/models"
)

// PostgresStore implements Store against the hosted PostgreSQL database.
// Tags and services are text[] columns.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a connection pool to dbURL and checks it with a ping.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresStore{db: db}, nil
}

// EnsureSchema creates the content tables when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const common = `
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		excerpt TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		content_format TEXT NOT NULL DEFAULT 'markdown',
		cover_image TEXT NOT NULL DEFAULT '',
		lang TEXT NOT NULL,
		tags TEXT[] NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'draft',
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()`
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS blog_posts (` + common + `, UNIQUE (slug, lang))`,
		`CREATE TABLE IF NOT EXISTS case_studies (` + common + `,
			client TEXT NOT NULL DEFAULT '',
			sector TEXT NOT NULL DEFAULT '',
			services TEXT[] NOT NULL DEFAULT '{}',
			UNIQUE (slug, lang))`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("storage.postgres.EnsureSchema: %w", err)
		}
	}
	return nil
}

func scanPostgres(row pgx.Row, c models.Collection) (*models.DbContentRecord, error) {
	rec := &models.DbContentRecord{Collection: c}
	var lang string
	dest := []any{
		&rec.ID, &rec.Title, &rec.Slug, &rec.Excerpt, &rec.Content, &rec.ContentFormat, &rec.CoverImage,
		&lang, &rec.Tags, &rec.Status, &rec.PublishedAt, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if c == models.CollectionCaseStudies {
		dest = append(dest, &rec.Client, &rec.Sector, &rec.Services)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.Lang = models.Locale(lang)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if rec.PublishedAt != nil {
		t := rec.PublishedAt.UTC()
		rec.PublishedAt = &t
	}
	return rec, nil
}

// ListPublished returns published records of collection in lang, newest first.
func (s *PostgresStore) ListPublished(ctx context.Context, collection models.Collection, lang models.Locale) ([]*models.DbContentRecord, error) {
	const op = "storage.postgres.ListPublished"

	table, err := tableFor(collection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.db.Query(ctx, `
	SELECT `+columnsFor(collection)+`
	FROM `+table+`
	WHERE status = $1 AND lang = $2
	ORDER BY COALESCE(published_at, created_at) DESC, slug ASC
	`, models.StatusPublished, string(lang))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*models.DbContentRecord
	for rows.Next() {
		rec, err := scanPostgres(rows, collection)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// GetBySlug returns the published record with slug in lang.
func (s *PostgresStore) GetBySlug(ctx context.Context, collection models.Collection, slug string, lang models.Locale) (*models.DbContentRecord, error) {
	const op = "storage.postgres.GetBySlug"

	table, err := tableFor(collection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	row := s.db.QueryRow(ctx, `
	SELECT `+columnsFor(collection)+`
	FROM `+table+`
	WHERE slug = $1 AND lang = $2 AND status = $3
	`, slug, string(lang), models.StatusPublished)
	rec, err := scanPostgres(row, collection)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// CountPublished returns the number of published records per collection.
func (s *PostgresStore) CountPublished(ctx context.Context) (map[models.Collection]int64, error) {
	const op = "storage.postgres.CountPublished"

	out := make(map[models.Collection]int64, len(models.Collections))
	for _, c := range models.Collections {
		table, _ := tableFor(c)
		var n int64
		if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE status = $1`, models.StatusPublished).Scan(&n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out[c] = n
	}
	return out, nil
}

// Upsert inserts rec or replaces the record with the same (slug, lang). A missing id is generated.
func (s *PostgresStore) Upsert(ctx context.Context, rec *models.DbContentRecord) error {
	const op = "storage.postgres.Upsert"

	table, err := tableFor(rec.Collection)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	prepareRecord(rec)
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	cols := []string{"id", "title", "slug", "excerpt", "content", "content_format", "cover_image", "lang", "tags", "status", "published_at", "created_at", "updated_at"}
	args := []any{
		rec.ID, rec.Title, rec.Slug, rec.Excerpt, rec.Content, rec.ContentFormat, rec.CoverImage,
		string(rec.Lang), tags, rec.Status, rec.PublishedAt, rec.CreatedAt, rec.UpdatedAt,
	}
	if rec.Collection == models.CollectionCaseStudies {
		services := rec.Services
		if services == nil {
			services = []string{}
		}
		cols = append(cols, "client", "sector", "services")
		args = append(args, rec.Client, rec.Sector, services)
	}

	placeholders := make([]string, len(cols))
	var set []string
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		switch col {
		case "id", "slug", "lang", "created_at":
		default:
			set = append(set, col+" = EXCLUDED."+col)
		}
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO `+table+` (`+strings.Join(cols, ", ")+`)
	VALUES (`+strings.Join(placeholders, ", ")+`)
	ON CONFLICT (slug, lang) DO UPDATE
	SET `+strings.Join(set, ", "), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
