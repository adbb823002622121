package content

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/render"
	"github.com/hyperjump/vetcontent/internal/resolver"
	"github.com/hyperjump/vetcontent/internal/search"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// Catalog is everything derived from one read of the content tree. It is immutable.
type Catalog struct {
	Snapshot   *Snapshot
	Components *resolver.Registry
	Legacy     *resolver.Registry
	// Search is nil when the search index could not be built.
	Search *search.Index
}

// Library owns the current catalog and rebuilds it from the content tree on demand.
type Library struct {
	fsys       fs.FS
	exts       []string
	renderer   *render.Renderer
	cache      *resolver.Cache
	searchOpts []search.Option
	logger     *zap.Logger
	// retireDelay is how long a replaced search index stays open for in-flight queries.
	retireDelay time.Duration

	buildMu sync.Mutex
	current atomic.Pointer[Catalog]

	retireMu sync.Mutex
	retiring map[*search.Index]*time.Timer
	closed   bool
}

// DefaultRetireDelay is how long a replaced search index is kept open.
const DefaultRetireDelay = time.Minute

// Option configures a Library.
type Option func(*Library)

// WithExtensions sets the document extensions to read.
func WithExtensions(exts []string) Option {
	return func(l *Library) {
		if len(exts) > 0 {
			l.exts = exts
		}
	}
}

// WithCache memoises rendered components across requests. The cache is purged on every rebuild.
func WithCache(c *resolver.Cache) Option {
	return func(l *Library) { l.cache = c }
}

// WithSearchOptions passes options to every search index the library builds.
func WithSearchOptions(opts ...search.Option) Option {
	return func(l *Library) { l.searchOpts = append(l.searchOpts, opts...) }
}

// WithRetireDelay sets how long a replaced search index stays open. Zero or less closes it
// as soon as the new catalog is in place.
func WithRetireDelay(d time.Duration) Option {
	return func(l *Library) { l.retireDelay = d }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Library) { l.logger = utils.OrNop(logger) }
}

// NewLibrary creates a library over the content tree fsys. Call Build before serving.
func NewLibrary(fsys fs.FS, renderer *render.Renderer, opts ...Option) *Library {
	l := &Library{
		fsys:        fsys,
		exts:        DefaultExtensions,
		renderer:    renderer,
		logger:      zap.NewNop(),
		retireDelay: DefaultRetireDelay,
		retiring:    make(map[*search.Index]*time.Timer),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.renderer == nil {
		l.renderer = render.NewRenderer(nil)
	}
	l.current.Store(&Catalog{Snapshot: NewSnapshot(nil, nil)})
	return l
}

// Build reads the content tree and swaps in a new catalog. On error the current catalog is kept.
func (l *Library) Build(ctx context.Context) (*Catalog, error) {
	l.buildMu.Lock()
	defer l.buildMu.Unlock()

	start := time.Now()
	docs, err := ReadDocuments(ctx, l.fsys, l.exts, l.logger)
	if err != nil {
		return nil, err
	}
	snap := NewSnapshot(BuildIndex(docs.Indexed, l.logger), l.logger)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("content build aborted: %w", err)
	}

	regOpts := []resolver.RegistryOption{resolver.WithCache(l.cache), resolver.WithLogger(l.logger)}
	cat := &Catalog{
		Snapshot:   snap,
		Components: resolver.NewRegistry(l.fsys, snap.Paths(), l.renderer, regOpts...),
		Legacy:     resolver.NewRegistry(l.fsys, docs.Legacy, l.renderer, regOpts...),
	}
	idx, err := search.New(snap.Entries(), append([]search.Option{search.WithLogger(l.logger)}, l.searchOpts...)...)
	if err != nil {
		l.logger.Error("search index unavailable", zap.Error(err))
	} else {
		cat.Search = idx
	}

	l.cache.Purge()
	if prev := l.current.Swap(cat); prev != nil && prev.Search != nil {
		l.retire(prev.Search)
	}
	l.logger.Info("content catalog built",
		zap.Int("entries", snap.Len()),
		zap.Int("legacy", cat.Legacy.Len()),
		zap.Duration("took", time.Since(start)))
	return cat, nil
}

// Current returns the catalog in use. Before the first Build it is empty.
func (l *Library) Current() *Catalog {
	return l.current.Load()
}

// retire closes a replaced search index once queries started against it have had time to finish.
func (l *Library) retire(idx *search.Index) {
	l.retireMu.Lock()
	defer l.retireMu.Unlock()
	if l.closed || l.retireDelay <= 0 {
		l.closeRetired(idx)
		return
	}
	l.retiring[idx] = time.AfterFunc(l.retireDelay, func() {
		l.retireMu.Lock()
		defer l.retireMu.Unlock()
		if _, ok := l.retiring[idx]; !ok {
			return
		}
		delete(l.retiring, idx)
		l.closeRetired(idx)
	})
}

func (l *Library) closeRetired(idx *search.Index) {
	if err := idx.Close(); err != nil {
		l.logger.Warn("failed to close retired search index", zap.Error(err))
	}
}

// Close releases the current search index and any replaced index still waiting to close.
func (l *Library) Close() error {
	l.retireMu.Lock()
	l.closed = true
	for idx, timer := range l.retiring {
		timer.Stop()
		delete(l.retiring, idx)
		l.closeRetired(idx)
	}
	l.retireMu.Unlock()

	if cat := l.current.Load(); cat != nil && cat.Search != nil {
		return cat.Search.Close()
	}
	return nil
}

// Display converts an index entry to the common display shape.
func Display(e models.ContentIndexEntry, src models.Source) models.DisplayContent {
	return models.DisplayContent{
		Source:         src,
		Collection:     e.Collection,
		Slug:           e.Slug,
		Locale:         e.Locale,
		Title:          e.Meta.Title,
		Date:           e.Meta.Date,
		Excerpt:        e.Meta.Excerpt,
		Cover:          e.Meta.Cover,
		Tags:           e.Meta.Tags,
		Card:           e.Meta.Card,
		ReadingMinutes: e.ReadingMinutes,
		BodyFormat:     models.FormatMarkdown,
	}
}
