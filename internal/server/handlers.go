package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/content"
	"github.com/hyperjump/vetcontent/internal/feed"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/page"
	"github.com/hyperjump/vetcontent/internal/render"
	"github.com/hyperjump/vetcontent/internal/search"
	"github.com/hyperjump/vetcontent/internal/seo"
	"github.com/hyperjump/vetcontent/internal/storage"
)

type contentResponse struct {
	Content  *models.DisplayContent `json:"content"`
	HTML     string                 `json:"html"`
	Headings []render.Heading       `json:"headings,omitempty"`
	SEO      seo.Meta               `json:"seo"`
	State    page.State             `json:"state"`
	Trace    []page.State           `json:"trace"`
}

type notFoundResponse struct {
	Error    string     `json:"error"`
	SEO      seo.Meta   `json:"seo"`
	TimedOut bool       `json:"timed_out,omitempty"`
	State    page.State `json:"state"`
}

type listingResponse struct {
	Collection models.Collection       `json:"collection"`
	Locale     models.Locale           `json:"locale"`
	SEO        seo.Meta                `json:"seo"`
	Items      []models.DisplayContent `json:"items"`
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	req := page.Request{
		Collection: models.Collection(chi.URLParam(r, "collection")),
		Locale:     models.Locale(chi.URLParam(r, "locale")),
		Slug:       chi.URLParam(r, "slug"),
	}
	if c, ok := models.ParseCollection(string(req.Collection)); ok {
		req.Collection = c
	}
	if l, ok := models.ParseLocale(string(req.Locale)); ok {
		req.Locale = l
	}

	view := page.NewView(s.assembler)
	defer view.Close()
	res, err := view.Navigate(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Debug("content request abandoned", zap.String("key", req.Key().String()), zap.Error(err))
			return
		}
		s.logger.Error("content resolution failed", zap.String("key", req.Key().String()), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !res.Found() {
		w.Header().Set("X-Robots-Tag", seo.RobotsNoIndex)
		s.respondJSON(w, http.StatusNotFound, notFoundResponse{
			Error:    "not found",
			SEO:      res.SEO,
			TimedOut: res.TimedOut,
			State:    res.State,
		})
		return
	}
	out := contentResponse{Content: res.Content, SEO: res.SEO, State: res.State, Trace: res.Trace}
	if res.Component != nil {
		out.HTML = res.Component.HTML
		out.Headings = res.Component.Headings
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	c, ok := models.ParseCollection(chi.URLParam(r, "collection"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown collection")
		return
	}
	l, ok := models.ParseLocale(chi.URLParam(r, "locale"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown locale")
		return
	}
	s.respondJSON(w, http.StatusOK, listingResponse{
		Collection: c,
		Locale:     l,
		SEO:        seo.ForListing(s.assembler.Site(), c, l),
		Items:      s.assembler.List(r.Context(), c, l),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := search.Query{Text: params.Get("q"), Limit: s.config.Search.DefaultLimit}
	if v := params.Get("locale"); v != "" {
		l, ok := models.ParseLocale(v)
		if !ok {
			s.respondError(w, http.StatusBadRequest, "invalid locale")
			return
		}
		q.Locale = l
	}
	if v := params.Get("collection"); v != "" {
		c, ok := models.ParseCollection(v)
		if !ok {
			s.respondError(w, http.StatusBadRequest, "invalid collection")
			return
		}
		q.Collection = c
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		q.Limit = n
	}
	if maxLimit := s.config.Search.MaxLimit; maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if v := params.Get("fuzzy"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid fuzzy flag")
			return
		}
		q.Fuzzy = b
	}

	idx := s.catalog.Current().Search
	if idx == nil {
		s.respondError(w, http.StatusServiceUnavailable, "search unavailable")
		return
	}
	s.logger.Debug("search request", zap.String("query", q.Text), zap.Int("limit", q.Limit))
	resp, err := idx.Search(r.Context(), q)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, "query is required")
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	l, ok := models.ParseLocale(chi.URLParam(r, "locale"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown locale")
		return
	}
	tags := s.catalog.Current().Snapshot.Tags(l)
	if tags == nil {
		tags = []content.Tag{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"locale": l, "tags": tags})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog.Current()
	resp := map[string]interface{}{
		"entries":  cat.Snapshot.Len(),
		"legacy":   cat.Legacy.Len(),
		"built_at": cat.Snapshot.BuiltAt().UTC().Format(time.RFC3339),
	}
	if cat.Search != nil {
		if n, err := cat.Search.DocCount(); err == nil {
			resp["search_documents"] = n
		}
	}

	dbInfo := map[string]interface{}{
		"driver":  s.config.Database.Driver,
		"enabled": s.store != nil,
	}
	if s.store != nil {
		counts, err := s.store.CountPublished(r.Context())
		if err != nil {
			s.logger.Error("status: count published failed", zap.Error(err))
			dbInfo["error"] = "unavailable"
		} else {
			dbInfo["published"] = counts
		}
		if s.config.Database.Driver == storage.DriverSQLite {
			if size, err := storage.SQLiteDiskUsage(s.config.Database.Path); err == nil {
				dbInfo["disk_usage_bytes"] = size
			}
		}
	}
	resp["database"] = dbInfo
	resp["config"] = map[string]interface{}{
		"content_root":    s.config.Content.Root,
		"extensions":      s.config.Content.Extensions,
		"resolve_timeout": s.config.Page.ResolveTimeout.String(),
		"watch":           s.config.Watch.Enabled,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	items := s.assembler.FeedItems(r.Context())
	if err := feed.Sitemap(&buf, s.assembler.Site(), items, feed.StaticPaths()); err != nil {
		s.logger.Error("sitemap generation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondXML(w, "application/xml", buf.Bytes())
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	l, ok := models.ParseLocale(chi.URLParam(r, "locale"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}
	var buf bytes.Buffer
	if err := feed.RSS(&buf, s.assembler.Site(), l, s.assembler.FeedItems(r.Context())); err != nil {
		s.logger.Error("rss generation failed", zap.String("locale", string(l)), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondXML(w, "application/rss+xml", buf.Bytes())
}

func (s *Server) respondXML(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
