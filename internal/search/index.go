// Package search provides accent-insensitive full-text search over the content index using Bleve.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// ErrEmptyQuery is returned when the query text is blank.
var ErrEmptyQuery = errors.New("empty search query")

const (
	defaultLimit     = 10
	defaultFuzziness = 2
	titleBoost       = 3.0
	tagsBoost        = 2.0
)

// Query is a search request against the index.
type Query struct {
	Text       string
	Locale     models.Locale     // empty matches every locale
	Collection models.Collection // empty matches every collection
	Limit      int
	Fuzzy      bool
}

// Hit is one matching entry.
type Hit struct {
	Rank  int                      `json:"rank"`
	Score float64                  `json:"score"`
	Entry models.ContentIndexEntry `json:"entry"`
}

// Response is the result of a search.
type Response struct {
	Query      string `json:"query"`
	Hits       []Hit  `json:"hits"`
	Total      uint64 `json:"total"`
	AutoFuzzy  bool   `json:"auto_fuzzy,omitempty"`
	Suggestion string `json:"suggestion,omitempty"` // corrected query when nothing matched exactly
	TookMs     int64  `json:"took_ms"`
}

// Index is an in-memory Bleve index over one content snapshot. It is read-only after New.
type Index struct {
	index     bleve.Index
	entries   map[string]models.ContentIndexEntry
	fuzziness int
	speller   *speller
	logger    *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithFuzziness sets the edit distance used by fuzzy queries.
func WithFuzziness(f int) Option {
	return func(i *Index) {
		if f > 0 {
			i.fuzziness = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Index) { i.logger = utils.OrNop(l) }
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming): Spanish and English share one index.
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("excerpt", textField)
	docMapping.AddFieldMappingsAt("tags", textField)

	keywordField := bleve.NewKeywordFieldMapping()
	keywordField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("locale", keywordField)
	docMapping.AddFieldMappingsAt("collection", keywordField)

	im.AddDocumentMapping("entry", docMapping)
	im.DefaultType = "entry"
	im.DefaultMapping = docMapping
	return im
}

// New builds an index over entries.
func New(entries []models.ContentIndexEntry, opts ...Option) (*Index, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	idx := &Index{
		index:     index,
		entries:   make(map[string]models.ContentIndexEntry, len(entries)),
		fuzziness: defaultFuzziness,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}

	batch := index.NewBatch()
	for _, e := range entries {
		id := e.Key().String()
		idx.entries[id] = e
		if err := batch.Index(id, document(e)); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index %s: %w", id, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to index entries: %w", err)
	}
	if idx.speller, err = newSpeller(index, idx.fuzziness); err != nil {
		_ = index.Close()
		return nil, err
	}
	idx.logger.Debug("search index built", zap.Int("entries", len(entries)))
	return idx, nil
}

func document(e models.ContentIndexEntry) map[string]interface{} {
	return map[string]interface{}{
		"title":      utils.Fold(e.Meta.Title),
		"excerpt":    utils.Fold(e.Meta.Excerpt),
		"tags":       utils.Fold(strings.Join(e.Meta.Tags, " ")),
		"locale":     string(e.Locale),
		"collection": string(e.Collection),
	}
}

// Search runs q. When an exact query finds nothing it is retried once with fuzzy matching
// and the response is flagged AutoFuzzy.
func (i *Index) Search(ctx context.Context, q Query) (*Response, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	start := time.Now()

	resp, err := i.run(ctx, q, text, q.Fuzzy)
	if err != nil {
		return nil, err
	}
	if !q.Fuzzy && len(resp.Hits) == 0 {
		i.logger.Debug("no exact hits, retrying fuzzy", zap.String("query", text))
		resp, err = i.run(ctx, q, text, true)
		if err != nil {
			return nil, err
		}
		resp.AutoFuzzy = true
	}
	if resp.AutoFuzzy || len(resp.Hits) == 0 {
		resp.Suggestion = i.speller.Suggest(text)
	}
	resp.TookMs = time.Since(start).Milliseconds()
	return resp, nil
}

func (i *Index) run(ctx context.Context, q Query, text string, fuzzy bool) (*Response, error) {
	req := bleve.NewSearchRequest(i.buildQuery(q, utils.Fold(text), fuzzy))
	req.Size = q.Limit
	results, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	resp := &Response{Query: text, Total: results.Total, Hits: make([]Hit, 0, len(results.Hits))}
	for _, h := range results.Hits {
		e, ok := i.entries[h.ID]
		if !ok {
			continue
		}
		resp.Hits = append(resp.Hits, Hit{Rank: len(resp.Hits) + 1, Score: h.Score, Entry: e})
	}
	return resp, nil
}

func (i *Index) buildQuery(q Query, text string, fuzzy bool) blevequery.Query {
	fields := []struct {
		name  string
		boost float64
	}{
		{"title", titleBoost},
		{"tags", tagsBoost},
		{"excerpt", 1},
	}
	should := make([]blevequery.Query, 0, len(fields))
	for _, f := range fields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(f.name)
		mq.SetBoost(f.boost)
		if fuzzy {
			mq.SetFuzziness(i.fuzziness)
		}
		should = append(should, mq)
	}
	must := []blevequery.Query{bleve.NewDisjunctionQuery(should...)}
	if q.Locale != "" {
		tq := bleve.NewTermQuery(string(q.Locale))
		tq.SetField("locale")
		must = append(must, tq)
	}
	if q.Collection != "" {
		tq := bleve.NewTermQuery(string(q.Collection))
		tq.SetField("collection")
		must = append(must, tq)
	}
	if len(must) == 1 {
		return must[0]
	}
	return bleve.NewConjunctionQuery(must...)
}

// DocCount returns the number of indexed entries.
func (i *Index) DocCount() (uint64, error) {
	return i.index.DocCount()
}

// Close closes the Bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}
