// Package dbcontent adapts records published through the CMS database to the display shape
// used for static content. Store failures never reach callers; they are logged and read as "no result".
package dbcontent

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/frontmatter"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/storage"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// Adapter reads published records from a content store.
type Adapter struct {
	store  storage.ContentStore
	logger *zap.Logger
}

// NewAdapter wraps store. A nil store makes every lookup a miss.
func NewAdapter(store storage.ContentStore, logger *zap.Logger) *Adapter {
	return &Adapter{store: store, logger: utils.OrNop(logger)}
}

// Enabled reports whether a store is configured.
func (a *Adapter) Enabled() bool {
	return a != nil && a.store != nil
}

// ListPublished returns published records of collection in lang, newest first.
// Any store error is logged and yields an empty slice.
func (a *Adapter) ListPublished(ctx context.Context, collection models.Collection, lang models.Locale) (records []*models.DbContentRecord) {
	records = []*models.DbContentRecord{}
	if !a.Enabled() {
		return records
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("content store panicked listing records",
				zap.String("collection", string(collection)), zap.String("lang", string(lang)), zap.Any("panic", r))
			records = []*models.DbContentRecord{}
		}
	}()
	got, err := a.store.ListPublished(ctx, collection, lang)
	if err != nil {
		a.logger.Error("failed to list published records",
			zap.String("collection", string(collection)), zap.String("lang", string(lang)), zap.Error(err))
		return records
	}
	for _, rec := range got {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// GetBySlug returns the published record, or nil when there is none or the store failed.
func (a *Adapter) GetBySlug(ctx context.Context, collection models.Collection, slug string, lang models.Locale) (rec *models.DbContentRecord) {
	if !a.Enabled() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("content store panicked fetching record",
				zap.String("collection", string(collection)), zap.String("slug", slug), zap.Any("panic", r))
			rec = nil
		}
	}()
	got, err := a.store.GetBySlug(ctx, collection, slug, lang)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Error("failed to fetch record",
				zap.String("collection", string(collection)), zap.String("slug", slug),
				zap.String("lang", string(lang)), zap.Error(err))
		}
		return nil
	}
	return got
}

// Normalize maps a record to the common display shape and tags it as database content.
func Normalize(rec *models.DbContentRecord) models.DisplayContent {
	format := rec.ContentFormat
	if format == "" {
		format = models.FormatMarkdown
	}
	return models.DisplayContent{
		Source:         models.SourceDB,
		Collection:     rec.Collection,
		Slug:           rec.Slug,
		Locale:         rec.Lang,
		Title:          rec.Title,
		Date:           rec.EffectiveDate(),
		Excerpt:        rec.Excerpt,
		Cover:          rec.CoverImage,
		Tags:           rec.Tags,
		ReadingMinutes: frontmatter.ReadingMinutes(rec.Content),
		Body:           rec.Content,
		BodyFormat:     format,
		Client:         rec.Client,
		Sector:         rec.Sector,
		Services:       rec.Services,
	}
}
