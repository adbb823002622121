package page

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/content"
	"github.com/hyperjump/vetcontent/internal/dbcontent"
	"github.com/hyperjump/vetcontent/internal/feed"
	"github.com/hyperjump/vetcontent/internal/frontmatter"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/render"
	"github.com/hyperjump/vetcontent/internal/resolver"
	"github.com/hyperjump/vetcontent/internal/seo"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// DefaultTimeout bounds one resolution when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// DBSource is the database side of resolution. *dbcontent.Adapter implements it.
// Implementations report failures as "no result".
type DBSource interface {
	GetBySlug(ctx context.Context, collection models.Collection, slug string, lang models.Locale) *models.DbContentRecord
	ListPublished(ctx context.Context, collection models.Collection, lang models.Locale) []*models.DbContentRecord
}

// CatalogSource provides the current static catalog. *content.Library implements it.
type CatalogSource interface {
	Current() *content.Catalog
}

// Assembler runs resolutions and builds listings over both sources.
type Assembler struct {
	db       DBSource
	catalog  CatalogSource
	renderer *render.Renderer
	site     seo.Site
	timeout  time.Duration
	logger   *zap.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithTimeout bounds each resolution. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(a *Assembler) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) { a.logger = utils.OrNop(l) }
}

// NewAssembler creates an assembler. db may be nil when no database is configured.
func NewAssembler(db DBSource, catalog CatalogSource, renderer *render.Renderer, site seo.Site, opts ...Option) *Assembler {
	a := &Assembler{
		db:       db,
		catalog:  catalog,
		renderer: renderer,
		site:     site,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.renderer == nil {
		a.renderer = render.NewRenderer(nil)
	}
	return a
}

// Site returns the site the assembler builds metadata for.
func (a *Assembler) Site() seo.Site { return a.site }

// errTimedOut marks a resolution that exceeded its own deadline.
var errTimedOut = errors.New("resolution timed out")

// Resolve runs one resolution: database, then static index, then legacy documents.
// The database always wins when both define the request. Running out of time yields NOT_FOUND;
// cancellation of ctx aborts with an error.
func (a *Assembler) Resolve(ctx context.Context, req Request) (*Result, error) {
	res := &Result{Request: req}
	res.enter(StateInit)

	if _, ok := models.ParseLocale(string(req.Locale)); !ok || req.Slug == "" {
		return a.notFound(res), nil
	}
	if _, ok := models.ParseCollection(string(req.Collection)); !ok {
		return a.notFound(res), nil
	}

	rctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res.enter(StateCheckingDB)
	if a.db != nil {
		if rec := a.db.GetBySlug(rctx, req.Collection, req.Slug, req.Locale); rec != nil {
			return a.foundDB(rctx, res, rec), nil
		}
	}
	if err := a.interrupted(ctx, rctx); err != nil {
		return a.stop(res, err)
	}

	cat := a.catalog.Current()
	res.enter(StateCheckingStatic)
	if entry, ok := cat.Snapshot.Lookup(req.Key()); ok {
		unit, err := a.load(rctx, cat.Components, req)
		if err == nil {
			dc := content.Display(entry, models.SourceStatic)
			dc.Body = unit.Body
			res.Content = &dc
			res.Component = unit.Component
			res.SEO = seo.ForContent(a.site, dc, a.translations(rctx, cat, req.Key())...)
			res.enter(StateFoundStatic)
			return res, nil
		}
		if ierr := a.interrupted(ctx, rctx); ierr != nil {
			return a.stop(res, ierr)
		}
		a.logger.Error("failed to load indexed content",
			zap.String("key", req.Key().String()), zap.String("path", entry.Path), zap.Error(err))
	}
	if err := a.interrupted(ctx, rctx); err != nil {
		return a.stop(res, err)
	}

	res.enter(StateCheckingLegacy)
	if cat.Legacy.Resolve(req.Key()) != nil {
		if dc, unit, err := a.loadLegacy(rctx, cat, req); err == nil {
			res.Content = dc
			res.Component = unit.Component
			res.SEO = seo.ForContent(a.site, *dc, a.translations(rctx, cat, req.Key())...)
			res.enter(StateFoundLegacy)
			return res, nil
		} else if ierr := a.interrupted(ctx, rctx); ierr != nil {
			return a.stop(res, ierr)
		} else {
			a.logger.Warn("legacy content unavailable", zap.String("key", req.Key().String()), zap.Error(err))
		}
	}
	return a.notFound(res), nil
}

func (a *Assembler) foundDB(ctx context.Context, res *Result, rec *models.DbContentRecord) *Result {
	dc := dbcontent.Normalize(rec)
	comp, err := a.renderer.RenderUntrusted(dc.Body, dc.BodyFormat)
	if err != nil {
		a.logger.Error("failed to render database content",
			zap.String("key", dc.Key().String()), zap.String("id", rec.ID), zap.Error(err))
		comp = &render.Component{}
	}
	res.Content = &dc
	res.Component = comp
	res.SEO = seo.ForContent(a.site, dc, a.translations(ctx, a.catalog.Current(), dc.Key())...)
	res.enter(StateFoundDB)
	return res
}

func (a *Assembler) load(ctx context.Context, reg *resolver.Registry, req Request) (*resolver.Unit, error) {
	loader := reg.Resolve(req.Key())
	if loader == nil {
		return nil, fmt.Errorf("no loader registered for %s", req.Key())
	}
	return loader(ctx)
}

// loadLegacy loads a legacy document and validates its metadata, which the index never saw.
func (a *Assembler) loadLegacy(ctx context.Context, cat *content.Catalog, req Request) (*models.DisplayContent, *resolver.Unit, error) {
	unit, err := a.load(ctx, cat.Legacy, req)
	if err != nil {
		return nil, nil, err
	}
	v := frontmatter.Validate(unit.Metadata)
	if !v.OK {
		return nil, nil, fmt.Errorf("%s: %w", unit.Path, v.Err())
	}
	if v.Meta.Draft {
		return nil, nil, fmt.Errorf("%s: draft", unit.Path)
	}
	dc := content.Display(models.ContentIndexEntry{
		Collection:     req.Collection,
		Slug:           req.Slug,
		Locale:         req.Locale,
		Meta:           v.Meta,
		Path:           unit.Path,
		ReadingMinutes: frontmatter.ReadingMinutes(unit.Body),
	}, models.SourceLegacy)
	dc.Body = unit.Body
	return &dc, unit, nil
}

// interrupted reports why the resolution must stop early: the parent was cancelled,
// or the resolution's own deadline passed.
func (a *Assembler) interrupted(parent, rctx context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if rctx.Err() != nil {
		return errTimedOut
	}
	return nil
}

func (a *Assembler) stop(res *Result, err error) (*Result, error) {
	if errors.Is(err, errTimedOut) {
		a.logger.Warn("content resolution timed out",
			zap.String("key", res.Request.Key().String()),
			zap.String("state", res.State.String()),
			zap.Duration("timeout", a.timeout))
		res.TimedOut = true
		return a.notFound(res), nil
	}
	return nil, fmt.Errorf("resolution of %s aborted in %s: %w", res.Request.Key(), res.State, err)
}

func (a *Assembler) notFound(res *Result) *Result {
	res.Content = nil
	res.Component = nil
	res.SEO = seo.NotFound(a.site, res.Request.Locale)
	res.enter(StateNotFound)
	return res
}

// translations returns the keys of the same (collection, slug) published in the other locales,
// statically or in the database.
func (a *Assembler) translations(ctx context.Context, cat *content.Catalog, key models.ContentKey) []models.ContentKey {
	var out []models.ContentKey
	for _, l := range models.Locales {
		if l == key.Locale {
			continue
		}
		alt := models.ContentKey{Collection: key.Collection, Locale: l, Slug: key.Slug}
		if _, ok := cat.Snapshot.Lookup(alt); ok {
			out = append(out, alt)
		} else if a.db != nil && a.db.GetBySlug(ctx, alt.Collection, alt.Slug, alt.Locale) != nil {
			out = append(out, alt)
		}
	}
	return out
}

// List returns the listing of collection in locale: database records merged with the static
// index, the database winning per slug, newest first.
func (a *Assembler) List(ctx context.Context, collection models.Collection, locale models.Locale) []models.DisplayContent {
	bySlug := make(map[string]models.DisplayContent)
	for _, e := range a.catalog.Current().Snapshot.List(collection, locale) {
		bySlug[e.Slug] = content.Display(e, models.SourceStatic)
	}
	if a.db != nil {
		for _, rec := range a.db.ListPublished(ctx, collection, locale) {
			dc := dbcontent.Normalize(rec)
			dc.Body = ""
			bySlug[dc.Slug] = dc
		}
	}
	out := make([]models.DisplayContent, 0, len(bySlug))
	for _, dc := range bySlug {
		out = append(out, dc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// Conflict is a key defined both in the database and in the static index.
type Conflict struct {
	Key        models.ContentKey `json:"key"`
	StaticPath string            `json:"static_path"`
	RecordID   string            `json:"record_id"`
}

// ReportConflicts logs a warning for every key defined in both sources and returns them.
// The database version is the one served.
func (a *Assembler) ReportConflicts(ctx context.Context) []Conflict {
	if a.db == nil {
		return nil
	}
	snap := a.catalog.Current().Snapshot
	var out []Conflict
	for _, c := range models.Collections {
		for _, l := range models.Locales {
			for _, rec := range a.db.ListPublished(ctx, c, l) {
				key := models.ContentKey{Collection: c, Locale: l, Slug: rec.Slug}
				entry, ok := snap.Lookup(key)
				if !ok {
					continue
				}
				a.logger.Warn("content defined in database and content tree, database wins",
					zap.String("key", key.String()), zap.String("path", entry.Path), zap.String("record_id", rec.ID))
				out = append(out, Conflict{Key: key, StaticPath: entry.Path, RecordID: rec.ID})
			}
		}
	}
	return out
}

// FeedItems returns every published item across collections and locales for sitemap and RSS
// generation. Items sharing (collection, slug) across locales are linked as translations.
func (a *Assembler) FeedItems(ctx context.Context) []feed.Item {
	var items []feed.Item
	present := make(map[models.ContentKey]bool)
	for _, c := range models.Collections {
		for _, l := range models.Locales {
			for _, dc := range a.List(ctx, c, l) {
				items = append(items, feed.Item{
					Key:     dc.Key(),
					Title:   dc.Title,
					Excerpt: dc.Excerpt,
					Date:    dc.Date,
					Tags:    dc.Tags,
					Source:  dc.Source,
				})
				present[dc.Key()] = true
			}
		}
	}
	for i := range items {
		k := items[i].Key
		for _, l := range models.Locales {
			alt := models.ContentKey{Collection: k.Collection, Locale: l, Slug: k.Slug}
			if l != k.Locale && present[alt] {
				items[i].Translations = append(items[i].Translations, alt)
			}
		}
	}
	return items
}
