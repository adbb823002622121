// Package seo builds page metadata: titles, canonical URLs, hreflang alternates and robots directives.
package seo

import (
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/vetcontent/internal/models"
)

// Robots directives.
const (
	RobotsIndex   = "index, follow"
	RobotsNoIndex = "noindex, nofollow"
)

// Site holds the site-wide values metadata is derived from.
type Site struct {
	Name         string
	BaseURL      string
	Descriptions map[models.Locale]string
	DefaultImage string
}

// URL returns the absolute URL of path p on the site.
func (s Site) URL(p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if p == "" || p == "/" {
		return base + "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}

// Description returns the site description in l, falling back to Spanish.
func (s Site) Description(l models.Locale) string {
	if d, ok := s.Descriptions[l]; ok && d != "" {
		return d
	}
	return s.Descriptions[models.LocaleES]
}

// Alternate is an hreflang link.
type Alternate struct {
	Locale models.Locale `json:"hreflang"`
	URL    string        `json:"href"`
}

// Meta is the SEO metadata of one page.
type Meta struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Canonical   string        `json:"canonical,omitempty"`
	Image       string        `json:"image,omitempty"`
	OGType      string        `json:"og_type"`
	Robots      string        `json:"robots"`
	Locale      models.Locale `json:"locale"`
	Alternates  []Alternate   `json:"alternates,omitempty"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

// Indexable reports whether search engines may index the page.
func (m Meta) Indexable() bool {
	return !strings.Contains(m.Robots, "noindex")
}

// ContentPath returns the site path of one content item: /{locale}/{collection}/{slug}.
func ContentPath(k models.ContentKey) string {
	return "/" + string(k.Locale) + "/" + string(k.Collection) + "/" + url.PathEscape(k.Slug)
}

// ListingPath returns the site path of a collection listing: /{locale}/{collection}.
func ListingPath(c models.Collection, l models.Locale) string {
	return "/" + string(l) + "/" + string(c)
}

var collectionTitles = map[models.Collection]map[models.Locale]string{
	models.CollectionBlog:        {models.LocaleES: "Blog", models.LocaleEN: "Blog"},
	models.CollectionCaseStudies: {models.LocaleES: "Casos de éxito", models.LocaleEN: "Case studies"},
}

var notFoundTitles = map[models.Locale]string{
	models.LocaleES: "Contenido no encontrado",
	models.LocaleEN: "Content not found",
}

// CollectionTitle returns the display name of collection c in l.
func CollectionTitle(c models.Collection, l models.Locale) string {
	if t, ok := collectionTitles[c][l]; ok {
		return t
	}
	return string(c)
}

func (s Site) title(t string) string {
	if s.Name == "" {
		return t
	}
	if t == "" {
		return s.Name
	}
	return t + " | " + s.Name
}

// ForContent returns the metadata of a content page. translations are the keys of the same item
// in other locales; the page itself is always listed as an alternate.
func ForContent(site Site, dc models.DisplayContent, translations ...models.ContentKey) Meta {
	key := dc.Key()
	desc := dc.Excerpt
	if desc == "" {
		desc = site.Description(dc.Locale)
	}
	image := site.DefaultImage
	if dc.Cover != "" {
		image = dc.Cover
	}
	m := Meta{
		Title:       site.title(dc.Title),
		Description: desc,
		Canonical:   site.URL(ContentPath(key)),
		OGType:      "article",
		Robots:      RobotsIndex,
		Locale:      dc.Locale,
		Alternates:  []Alternate{{Locale: dc.Locale, URL: site.URL(ContentPath(key))}},
	}
	if image != "" {
		m.Image = site.URL(image)
	}
	if !dc.Date.IsZero() {
		t := dc.Date.UTC()
		m.PublishedAt = &t
	}
	for _, k := range translations {
		if k.Locale == dc.Locale {
			continue
		}
		m.Alternates = append(m.Alternates, Alternate{Locale: k.Locale, URL: site.URL(ContentPath(k))})
	}
	return m
}

// ForListing returns the metadata of a collection listing page.
func ForListing(site Site, c models.Collection, l models.Locale) Meta {
	m := Meta{
		Title:       site.title(CollectionTitle(c, l)),
		Description: site.Description(l),
		Canonical:   site.URL(ListingPath(c, l)),
		OGType:      "website",
		Robots:      RobotsIndex,
		Locale:      l,
	}
	if site.DefaultImage != "" {
		m.Image = site.URL(site.DefaultImage)
	}
	for _, loc := range models.Locales {
		m.Alternates = append(m.Alternates, Alternate{Locale: loc, URL: site.URL(ListingPath(c, loc))})
	}
	return m
}

// NotFound returns the metadata of the "content not found" page. It is never indexable.
func NotFound(site Site, l models.Locale) Meta {
	title, ok := notFoundTitles[l]
	if !ok {
		title = notFoundTitles[models.LocaleES]
	}
	return Meta{
		Title:  site.title(title),
		OGType: "website",
		Robots: RobotsNoIndex,
		Locale: l,
	}
}
