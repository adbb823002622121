// Package feed writes sitemap.xml and per-locale RSS 2.0 feeds.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/seo"
)

// MaxRSSItems caps the number of items in one RSS feed.
const MaxRSSItems = 50

// Item is one published content item, static or from the database.
type Item struct {
	Key          models.ContentKey
	Title        string
	Excerpt      string
	Date         time.Time
	Tags         []string
	Source       models.Source
	Translations []models.ContentKey
}

// StaticPaths returns the non-content pages listed in the sitemap: each locale home and listing.
func StaticPaths() []string {
	var out []string
	for _, l := range models.Locales {
		out = append(out, "/"+string(l))
		for _, c := range models.Collections {
			out = append(out, seo.ListingPath(c, l))
		}
	}
	return out
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	ChangeFreq string      `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Links      []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Sitemap writes a sitemap of staticPaths followed by items, newest first.
// Items with translations carry xhtml:link alternates for every locale version.
func Sitemap(w io.Writer, site seo.Site, items []Item, staticPaths []string) error {
	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
	}
	for _, p := range staticPaths {
		set.URLs = append(set.URLs, sitemapURL{Loc: site.URL(p), ChangeFreq: "weekly", Priority: "0.8"})
	}
	for _, it := range sortedItems(items) {
		u := sitemapURL{
			Loc:        site.URL(seo.ContentPath(it.Key)),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		}
		if !it.Date.IsZero() {
			u.LastMod = it.Date.UTC().Format("2006-01-02")
		}
		if len(it.Translations) > 0 {
			u.Links = append(u.Links, xhtmlLink{Rel: "alternate", Hreflang: string(it.Key.Locale), Href: u.Loc})
			for _, k := range it.Translations {
				u.Links = append(u.Links, xhtmlLink{Rel: "alternate", Hreflang: string(k.Locale), Href: site.URL(seo.ContentPath(k))})
			}
		}
		set.URLs = append(set.URLs, u)
	}
	return writeXML(w, set)
}

type rssRoot struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Self          atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	Description string   `xml:"description,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSSPath returns the site path of the feed of locale l.
func RSSPath(l models.Locale) string {
	return "/" + string(l) + "/rss.xml"
}

// RSS writes the RSS 2.0 feed of locale l: its newest MaxRSSItems items across collections.
func RSS(w io.Writer, site seo.Site, l models.Locale, items []Item) error {
	ch := rssChannel{
		Title:       site.Name,
		Link:        site.URL("/" + string(l)),
		Description: site.Description(l),
		Language:    string(l),
		Self:        atomLink{Href: site.URL(RSSPath(l)), Rel: "self", Type: "application/rss+xml"},
	}
	for _, it := range sortedItems(items) {
		if it.Key.Locale != l {
			continue
		}
		if len(ch.Items) == MaxRSSItems {
			break
		}
		link := site.URL(seo.ContentPath(it.Key))
		ri := rssItem{
			Title:       it.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: "true", Value: link},
			Description: it.Excerpt,
			Categories:  it.Tags,
		}
		if !it.Date.IsZero() {
			ri.PubDate = it.Date.UTC().Format(time.RFC1123Z)
			if ch.LastBuildDate == "" {
				ch.LastBuildDate = ri.PubDate
			}
		}
		ch.Items = append(ch.Items, ri)
	}
	return writeXML(w, rssRoot{Version: "2.0", Atom: "http://www.w3.org/2005/Atom", Channel: ch})
}

// sortedItems returns items newest first, ties by key.
func sortedItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

func writeXML(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
