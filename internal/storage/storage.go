// Package storage reads and seeds the blog_posts and case_studies tables of the hosted content database.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/vetcontent/internal/models"
)

var (
	// ErrNotFound is returned when no published record matches.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownCollection is returned for a collection without a table.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ContentStore reads published content records.
type ContentStore interface {
	// ListPublished returns published records of collection in lang, newest first.
	ListPublished(ctx context.Context, collection models.Collection, lang models.Locale) ([]*models.DbContentRecord, error)
	// GetBySlug returns the published record, or ErrNotFound.
	GetBySlug(ctx context.Context, collection models.Collection, slug string, lang models.Locale) (*models.DbContentRecord, error)
	// CountPublished returns the number of published records per collection.
	CountPublished(ctx context.Context) (map[models.Collection]int64, error)
	Close() error
}

// Writer stores records. Only the seed command writes; the service is read-only.
type Writer interface {
	// Upsert inserts rec or replaces the record with the same (slug, lang).
	Upsert(ctx context.Context, rec *models.DbContentRecord) error
}

// Store is a ContentStore that can also be seeded.
type Store interface {
	ContentStore
	Writer
}

// Open opens a store for driver. dsn is a file path for sqlite and a connection URL for postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "sqlite3", "":
		s, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres, "postgresql", "pgx":
		s, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func tableFor(c models.Collection) (string, error) {
	switch c {
	case models.CollectionBlog:
		return "blog_posts", nil
	case models.CollectionCaseStudies:
		return "case_studies", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, c)
}

const baseColumns = "id, title, slug, excerpt, content, content_format, cover_image, lang, tags, status, published_at, created_at, updated_at"

// columnsFor returns the select list of the table of c. Case studies carry client, sector and services.
func columnsFor(c models.Collection) string {
	if c == models.CollectionCaseStudies {
		return baseColumns + ", client, sector, services"
	}
	return baseColumns
}
