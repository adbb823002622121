package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/config"
	"github.com/hyperjump/vetcontent/internal/content"
	"github.com/hyperjump/vetcontent/internal/dbcontent"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/page"
	"github.com/hyperjump/vetcontent/internal/render"
	"github.com/hyperjump/vetcontent/internal/seo"
	"github.com/hyperjump/vetcontent/internal/storage"
)

const staticDoc = `---
title: Telemedicina en clínicas
lang: es
date: 2024-05-01
tags: [Telemedicina, IA]
---
# Consultas remotas

Cuerpo estático.
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fsys := fstest.MapFS{
		"blog/es/telemedicina.mdx": {Data: []byte(staticDoc)},
		"blog/en/telemedicina.mdx": {Data: []byte(strings.Replace(staticDoc, "lang: es", "lang: en", 1))},
		"blog/es/inventario.md":    {Data: []byte("---\ntitle: Inventario\nlang: es\ndate: 2024-01-01\n---\nStock.\n")},
	}
	renderer := render.NewRenderer(nil)
	lib := content.NewLibrary(fsys, renderer)
	if _, err := lib.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { lib.Close() })

	dbPath := filepath.Join(t.TempDir(), "content.db")
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	published := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Upsert(context.Background(), &models.DbContentRecord{
		Collection: models.CollectionBlog, Title: "Inventario desde la base", Slug: "inventario",
		Lang: models.LocaleES, Status: models.StatusPublished, PublishedAt: &published,
		Content: "<p>Stock <script>alert(1)</script>actualizado</p>", ContentFormat: models.FormatHTML,
	}); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Site.BaseURL = "https://vettech.example"
	cfg.Database.Driver = storage.DriverSQLite
	cfg.Database.Path = dbPath
	site := seo.Site{Name: cfg.Site.Name, BaseURL: cfg.Site.BaseURL, Descriptions: cfg.Site.Descriptions}
	logger := zap.NewNop()
	assembler := page.NewAssembler(dbcontent.NewAdapter(store, logger), lib, renderer, site, page.WithLogger(logger))
	return NewServer(assembler, lib, store, cfg, logger)
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v (body %q)", err, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	w := get(t, newTestServer(t), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type: got %q", w.Header().Get("Content-Type"))
	}
}

func TestHandleContent_Static(t *testing.T) {
	w := get(t, newTestServer(t), "/api/v1/blog/ES/telemedicina")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", w.Code, w.Body.String())
	}
	var out struct {
		Content  models.DisplayContent `json:"content"`
		HTML     string                `json:"html"`
		Headings []render.Heading      `json:"headings"`
		SEO      seo.Meta              `json:"seo"`
		State    string                `json:"state"`
		Trace    []string              `json:"trace"`
	}
	decode(t, w, &out)
	if out.State != "FOUND_STATIC" || out.Content.Source != models.SourceStatic {
		t.Errorf("state = %s, source = %s", out.State, out.Content.Source)
	}
	if !strings.Contains(out.HTML, "Cuerpo estático.") || len(out.Headings) != 1 {
		t.Errorf("html = %q headings = %+v", out.HTML, out.Headings)
	}
	if out.SEO.Canonical != "https://vettech.example/es/blog/telemedicina" || len(out.SEO.Alternates) != 2 {
		t.Errorf("seo = %+v", out.SEO)
	}
	if w.Header().Get("X-Robots-Tag") != "" {
		t.Error("found content must not carry X-Robots-Tag")
	}
}

func TestHandleContent_DatabaseWins(t *testing.T) {
	w := get(t, newTestServer(t), "/api/v1/blog/es/inventario")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Content models.DisplayContent `json:"content"`
		HTML    string                `json:"html"`
		State   string                `json:"state"`
	}
	decode(t, w, &out)
	if out.State != "FOUND_DB" || out.Content.Title != "Inventario desde la base" {
		t.Errorf("got %+v", out)
	}
	if strings.Contains(out.HTML, "<script") {
		t.Errorf("database html was not sanitized: %q", out.HTML)
	}
}

func TestHandleContent_NotFound(t *testing.T) {
	w := get(t, newTestServer(t), "/api/v1/blog/es/no-existe")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", w.Code)
	}
	if got := w.Header().Get("X-Robots-Tag"); got != seo.RobotsNoIndex {
		t.Errorf("X-Robots-Tag = %q", got)
	}
	var out struct {
		Error string   `json:"error"`
		SEO   seo.Meta `json:"seo"`
		State string   `json:"state"`
	}
	decode(t, w, &out)
	if out.Error != "not found" || out.State != "NOT_FOUND" || out.SEO.Robots != seo.RobotsNoIndex {
		t.Errorf("got %+v", out)
	}
}

func TestHandleListing(t *testing.T) {
	w := get(t, newTestServer(t), "/api/v1/blog/es")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Items []models.DisplayContent `json:"items"`
		SEO   seo.Meta                `json:"seo"`
	}
	decode(t, w, &out)
	if len(out.Items) != 2 {
		t.Fatalf("items = %+v", out.Items)
	}
	if out.Items[0].Slug != "inventario" || out.Items[0].Source != models.SourceDB {
		t.Errorf("first item = %+v", out.Items[0])
	}
	if get(t, newTestServer(t), "/api/v1/news/es").Code != http.StatusNotFound {
		t.Error("unknown collection should 404")
	}
}

func TestHandleSearch(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		target string
		status int
		hits   int
	}{
		{"/api/v1/search?q=telemedicina&locale=es", http.StatusOK, 1},
		{"/api/v1/search?q=telemedicina", http.StatusOK, 2},
		{"/api/v1/search?q=telemedicna&locale=es", http.StatusOK, 1},
		{"/api/v1/search?q=", http.StatusBadRequest, 0},
		{"/api/v1/search?q=x&locale=fr", http.StatusBadRequest, 0},
		{"/api/v1/search?q=x&limit=abc", http.StatusBadRequest, 0},
		{"/api/v1/search?q=x&fuzzy=maybe", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		w := get(t, srv, tt.target)
		if w.Code != tt.status {
			t.Errorf("%s: status %d, want %d", tt.target, w.Code, tt.status)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		var out struct {
			Hits []json.RawMessage `json:"hits"`
		}
		decode(t, w, &out)
		if len(out.Hits) != tt.hits {
			t.Errorf("%s: %d hits, want %d", tt.target, len(out.Hits), tt.hits)
		}
	}
}

func TestHandleTags(t *testing.T) {
	w := get(t, newTestServer(t), "/api/v1/tags/es")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Tags []content.Tag `json:"tags"`
	}
	decode(t, w, &out)
	if len(out.Tags) != 2 {
		t.Errorf("tags = %+v", out.Tags)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t)
	w := get(t, srv, "/api/v1/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Entries  int `json:"entries"`
		Database struct {
			Enabled        bool             `json:"enabled"`
			Published      map[string]int64 `json:"published"`
			DiskUsageBytes int64            `json:"disk_usage_bytes"`
		} `json:"database"`
	}
	decode(t, w, &out)
	if out.Entries != 3 || !out.Database.Enabled || out.Database.Published["blog"] != 1 {
		t.Errorf("got %+v", out)
	}
	mainFile, err := os.Stat(srv.config.Database.Path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Database.DiskUsageBytes <= mainFile.Size() {
		t.Errorf("disk_usage_bytes = %d, want the WAL counted beyond the %d byte database file",
			out.Database.DiskUsageBytes, mainFile.Size())
	}
}

func TestHandleSitemapAndRSS(t *testing.T) {
	srv := newTestServer(t)

	w := get(t, srv, "/sitemap.xml")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "application/xml") {
		t.Fatalf("sitemap: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "https://vettech.example/es/blog/inventario") {
		t.Errorf("sitemap missing database item:\n%s", w.Body.String())
	}

	w = get(t, srv, "/en/rss.xml")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/en/blog/telemedicina") {
		t.Errorf("rss: %d\n%s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "/es/blog/") {
		t.Error("english feed must only list english items")
	}
	if get(t, srv, "/fr/rss.xml").Code != http.StatusNotFound {
		t.Error("unknown locale feed should 404")
	}
}

func TestNotFoundRoute(t *testing.T) {
	w := get(t, newTestServer(t), "/nope/at/all/here")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", w.Code)
	}
	var out map[string]string
	decode(t, w, &out)
	if out["error"] != "not found" {
		t.Errorf("got %v", out)
	}
}
