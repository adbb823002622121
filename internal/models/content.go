// Package models defines core data structures for content metadata, index entries and database records.
package models

import (
	"strings"
	"time"
)

// Locale is one of the two supported site languages.
type Locale string

const (
	LocaleES Locale = "es"
	LocaleEN Locale = "en"
)

// Locales lists every supported locale in canonical order (default first).
var Locales = []Locale{LocaleES, LocaleEN}

// ParseLocale returns the locale for s, case-insensitive.
func ParseLocale(s string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocaleES:
		return LocaleES, true
	case LocaleEN:
		return LocaleEN, true
	}
	return "", false
}

// Alternate returns the other supported locale.
func (l Locale) Alternate() Locale {
	if l == LocaleEN {
		return LocaleES
	}
	return LocaleEN
}

// Collection names a content collection in the content tree and in the database.
type Collection string

const (
	CollectionBlog        Collection = "blog"
	CollectionCaseStudies Collection = "case-studies"
)

// Collections lists every known collection.
var Collections = []Collection{CollectionBlog, CollectionCaseStudies}

// ParseCollection returns the collection named s.
func ParseCollection(s string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Source tags where a piece of display content came from.
type Source string

const (
	SourceStatic Source = "static"
	SourceDB     Source = "db"
	SourceLegacy Source = "legacy"
)

// Highlight is a label/value pair shown on a content card.
type Highlight struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// CardHints are optional display hints for listing cards.
type CardHints struct {
	Kicker     string      `json:"kicker,omitempty" yaml:"kicker,omitempty"`
	Badges     []string    `json:"badges,omitempty" yaml:"badges,omitempty"`
	Highlights []Highlight `json:"highlights,omitempty" yaml:"highlights,omitempty"`
	CTA        string      `json:"cta,omitempty" yaml:"cta,omitempty"`
}

// ContentMetadata is the validated frontmatter of one content document.
type ContentMetadata struct {
	Title   string     `json:"title"`
	Date    time.Time  `json:"date"`
	Excerpt string     `json:"excerpt,omitempty"`
	Cover   string     `json:"cover,omitempty"`
	Lang    Locale     `json:"lang"`
	Tags    []string   `json:"tags,omitempty"`
	Draft   bool       `json:"draft"`
	Slug    string     `json:"slug,omitempty"`
	Card    *CardHints `json:"card,omitempty"`
}

// ContentKey identifies one content item. It is unique within a snapshot.
type ContentKey struct {
	Collection Collection `json:"collection"`
	Locale     Locale     `json:"locale"`
	Slug       string     `json:"slug"`
}

// String returns the key as collection/locale/slug.
func (k ContentKey) String() string {
	return string(k.Collection) + "/" + string(k.Locale) + "/" + k.Slug
}

// ContentIndexEntry is one published document in the static content index.
type ContentIndexEntry struct {
	Collection     Collection      `json:"collection,omitempty"`
	Slug           string          `json:"slug"`
	Locale         Locale          `json:"locale"`
	Meta           ContentMetadata `json:"meta"`
	Path           string          `json:"path"`
	ReadingMinutes int             `json:"reading_minutes,omitempty"`
}

// Key returns the lookup key of the entry.
func (e ContentIndexEntry) Key() ContentKey {
	return ContentKey{Collection: e.Collection, Locale: e.Locale, Slug: e.Slug}
}

// DisplayContent is the common shape handed to the rendering layer, regardless of origin.
type DisplayContent struct {
	Source         Source     `json:"source"`
	Collection     Collection `json:"collection"`
	Slug           string     `json:"slug"`
	Locale         Locale     `json:"locale"`
	Title          string     `json:"title"`
	Date           time.Time  `json:"date"`
	Excerpt        string     `json:"excerpt,omitempty"`
	Cover          string     `json:"cover,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	Card           *CardHints `json:"card,omitempty"`
	ReadingMinutes int        `json:"reading_minutes,omitempty"`
	Body           string     `json:"-"`
	BodyFormat     string     `json:"-"`

	// Case study extensions; empty for blog posts.
	Client   string   `json:"client,omitempty"`
	Sector   string   `json:"sector,omitempty"`
	Services []string `json:"services,omitempty"`
}

// Key returns the lookup key of the display content.
func (d DisplayContent) Key() ContentKey {
	return ContentKey{Collection: d.Collection, Locale: d.Locale, Slug: d.Slug}
}
