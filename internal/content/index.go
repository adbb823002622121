// Package content builds the validated static content index and serves immutable snapshots of it.
package content

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/frontmatter"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// ErrMalformedPath is reported when a document path cannot yield a locale and slug.
var ErrMalformedPath = errors.New("malformed content path")

// pathKey derives the key of a document at {collection}/{locale}/{slug}.{ext}.
// The collection is empty when the path has only two segments.
func pathKey(p string) (models.ContentKey, error) {
	segs := strings.Split(strings.Trim(path.Clean(p), "/"), "/")
	if len(segs) < 2 {
		return models.ContentKey{}, fmt.Errorf("%w: %q", ErrMalformedPath, p)
	}
	file := segs[len(segs)-1]
	slug := strings.TrimSuffix(file, path.Ext(file))
	if slug == "" || strings.HasPrefix(slug, ".") {
		return models.ContentKey{}, fmt.Errorf("%w: %q has no slug", ErrMalformedPath, p)
	}
	key := models.ContentKey{Locale: models.Locale(segs[len(segs)-2]), Slug: slug}
	if len(segs) >= 3 {
		key.Collection = models.Collection(segs[len(segs)-3])
	}
	return key, nil
}

// BuildIndex parses, validates and sorts docs (path -> raw text) into index entries, newest first.
// Invalid documents are skipped with a warning naming their path; drafts are skipped silently.
// Equal dates keep lexical path order. Any unexpected failure is logged and yields an empty index.
func BuildIndex(docs map[string]string, logger *zap.Logger) (entries []models.ContentIndexEntry) {
	logger = utils.OrNop(logger)
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("content index build panicked",
				zap.Any("panic", r), zap.Int("documents", len(docs)), zap.Time("started", started))
			entries = []models.ContentIndexEntry{}
		}
	}()

	paths := make([]string, 0, len(docs))
	for p := range docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	entries = make([]models.ContentIndexEntry, 0, len(paths))
	for _, p := range paths {
		key, err := pathKey(p)
		if err != nil {
			logger.Error("content index build failed",
				zap.String("path", p), zap.Error(err), zap.Int("documents", len(docs)), zap.Time("started", started))
			return []models.ContentIndexEntry{}
		}
		if loc, ok := models.ParseLocale(string(key.Locale)); !ok || loc != key.Locale {
			logger.Warn("skipping document outside a locale directory",
				zap.String("path", p), zap.String("locale", string(key.Locale)))
			continue
		}

		doc, err := frontmatter.Parse(docs[p])
		if err != nil {
			logger.Warn("skipping document with unreadable frontmatter", zap.String("path", p), zap.Error(err))
			continue
		}
		res := frontmatter.Validate(doc.Metadata)
		if !res.OK {
			logger.Warn("skipping invalid document", zap.String("path", p), zap.Error(res.Err()))
			continue
		}
		if res.Meta.Draft {
			continue
		}
		if res.Meta.Lang != key.Locale {
			logger.Warn("document lang does not match its locale directory",
				zap.String("path", p), zap.String("lang", string(res.Meta.Lang)))
		}

		entries = append(entries, models.ContentIndexEntry{
			Collection:     key.Collection,
			Slug:           key.Slug,
			Locale:         key.Locale,
			Meta:           res.Meta,
			Path:           p,
			ReadingMinutes: frontmatter.ReadingMinutes(doc.Body),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Meta.Date.After(entries[j].Meta.Date)
	})
	logger.Debug("content index built",
		zap.Int("documents", len(docs)), zap.Int("entries", len(entries)), zap.Duration("took", time.Since(started)))
	return entries
}
