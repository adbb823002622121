package content

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// DefaultExtensions are the document extensions read from the content tree.
var DefaultExtensions = []string{".md", ".mdx"}

// Documents is the content tree split by layout.
type Documents struct {
	// Indexed maps {collection}/{locale}/{slug}.{ext} paths to their raw text.
	Indexed map[string]string
	// Legacy maps keys to {collection}/{slug}.{locale}.{ext} paths. They are not read here.
	Legacy map[models.ContentKey]string
}

// ReadDocuments walks fsys and reads every indexed document with one of exts.
// Legacy documents are only listed so their bodies stay unread until requested.
func ReadDocuments(ctx context.Context, fsys fs.FS, exts []string, logger *zap.Logger) (*Documents, error) {
	logger = utils.OrNop(logger)
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	docs := &Documents{
		Indexed: make(map[string]string),
		Legacy:  make(map[models.ContentKey]string),
	}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			if p == "." {
				return err
			}
			logger.Warn("skipping unreadable content path", zap.String("path", p), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if p != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchExtension(name, exts) {
			return nil
		}

		segs := strings.Split(p, "/")
		switch {
		case len(segs) >= 3:
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				logger.Warn("failed to read document", zap.String("path", p), zap.Error(err))
				return nil
			}
			docs.Indexed[p] = string(data)
		case len(segs) == 2:
			key, ok := legacyKey(segs[0], name)
			if !ok {
				logger.Debug("ignoring document outside a locale directory", zap.String("path", p))
				return nil
			}
			docs.Legacy[key] = p
		default:
			logger.Debug("ignoring top-level document", zap.String("path", p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read content tree: %w", err)
	}
	return docs, nil
}

// legacyKey parses {slug}.{locale}.{ext} inside a collection directory.
func legacyKey(collection, name string) (models.ContentKey, bool) {
	base := strings.TrimSuffix(name, path.Ext(name))
	ext := path.Ext(base)
	loc, ok := models.ParseLocale(strings.TrimPrefix(ext, "."))
	if !ok || ext != "."+string(loc) {
		return models.ContentKey{}, false
	}
	slug := strings.TrimSuffix(base, ext)
	if slug == "" {
		return models.ContentKey{}, false
	}
	return models.ContentKey{Collection: models.Collection(collection), Locale: loc, Slug: slug}, true
}

func matchExtension(name string, exts []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
