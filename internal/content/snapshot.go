package content

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// Tag is a tag with the number of entries carrying it in one locale.
type Tag struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Ref is the (key, date) pair feed generators enumerate.
type Ref struct {
	Key  models.ContentKey `json:"key"`
	Date time.Time         `json:"date"`
}

// Snapshot is an immutable view of the content index. It is safe for concurrent use.
type Snapshot struct {
	entries []models.ContentIndexEntry
	byKey   map[models.ContentKey]int
	builtAt time.Time
}

// NewSnapshot wraps entries, which must already be sorted newest first.
// When two entries share a key the first one wins and the other is dropped with a warning.
func NewSnapshot(entries []models.ContentIndexEntry, logger *zap.Logger) *Snapshot {
	logger = utils.OrNop(logger)
	s := &Snapshot{
		entries: make([]models.ContentIndexEntry, 0, len(entries)),
		byKey:   make(map[models.ContentKey]int, len(entries)),
		builtAt: time.Now(),
	}
	for _, e := range entries {
		k := e.Key()
		if i, dup := s.byKey[k]; dup {
			logger.Warn("duplicate content key, keeping first",
				zap.String("key", k.String()), zap.String("kept", s.entries[i].Path), zap.String("dropped", e.Path))
			continue
		}
		s.byKey[k] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s
}

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// BuiltAt returns when the snapshot was created.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Entries returns a copy of every entry, newest first.
func (s *Snapshot) Entries() []models.ContentIndexEntry {
	out := make([]models.ContentIndexEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// List returns the entries of one collection and locale, newest first.
// An empty collection or locale matches all.
func (s *Snapshot) List(c models.Collection, l models.Locale) []models.ContentIndexEntry {
	out := make([]models.ContentIndexEntry, 0)
	for _, e := range s.entries {
		if (c == "" || e.Collection == c) && (l == "" || e.Locale == l) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry for key.
func (s *Snapshot) Lookup(key models.ContentKey) (models.ContentIndexEntry, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return models.ContentIndexEntry{}, false
	}
	return s.entries[i], true
}

// Tags returns the tags used in locale, most used first then by slug.
// Tags that differ only in case or accents are merged under the first spelling seen.
func (s *Snapshot) Tags(l models.Locale) []Tag {
	bySlug := make(map[string]*Tag)
	for _, e := range s.entries {
		if l != "" && e.Locale != l {
			continue
		}
		seen := make(map[string]bool, len(e.Meta.Tags))
		for _, name := range e.Meta.Tags {
			slug := utils.Slugify(name)
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true
			if t, ok := bySlug[slug]; ok {
				t.Count++
				continue
			}
			bySlug[slug] = &Tag{Name: name, Slug: slug, Count: 1}
		}
	}
	out := make([]Tag, 0, len(bySlug))
	for _, t := range bySlug {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// Enumerate returns (key, date) for every entry, newest first.
func (s *Snapshot) Enumerate() []Ref {
	out := make([]Ref, len(s.entries))
	for i, e := range s.entries {
		out[i] = Ref{Key: e.Key(), Date: e.Meta.Date}
	}
	return out
}

// Paths returns the key -> document path table used to build a resolver registry.
func (s *Snapshot) Paths() map[models.ContentKey]string {
	out := make(map[models.ContentKey]string, len(s.entries))
	for _, e := range s.entries {
		out[e.Key()] = e.Path
	}
	return out
}
