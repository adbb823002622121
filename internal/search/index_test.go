package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hyperjump/vetcontent/internal/models"
)

func entry(c models.Collection, l models.Locale, slug, title, excerpt string, tags ...string) models.ContentIndexEntry {
	return models.ContentIndexEntry{
		Collection: c,
		Locale:     l,
		Slug:       slug,
		Path:       string(c) + "/" + string(l) + "/" + slug + ".mdx",
		Meta: models.ContentMetadata{
			Title:   title,
			Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Excerpt: excerpt,
			Lang:    l,
			Tags:    tags,
		},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New([]models.ContentIndexEntry{
		entry(models.CollectionBlog, models.LocaleES, "telemedicina", "Telemedicina en la clínica", "Consultas a distancia", "Telemedicina"),
		entry(models.CollectionBlog, models.LocaleEN, "telemedicine", "Telemedicine for clinics", "Remote consults", "telemedicine"),
		entry(models.CollectionCaseStudies, models.LocaleES, "hospital-norte", "Hospital Norte", "Gestión de inventario", "inventario"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndex_DocCount(t *testing.T) {
	idx := newTestIndex(t)
	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("DocCount() = %d, want 3", n)
	}
}

func TestSearch_AccentInsensitive(t *testing.T) {
	idx := newTestIndex(t)
	resp, err := idx.Search(context.Background(), Query{Text: "clinica", Locale: models.LocaleES})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].Entry.Slug != "telemedicina" {
		t.Fatalf("hits = %+v", resp.Hits)
	}
	if resp.AutoFuzzy {
		t.Error("exact match should not need fuzzy retry")
	}
	if resp.Hits[0].Rank != 1 {
		t.Errorf("rank = %d", resp.Hits[0].Rank)
	}
}

func TestSearch_Filters(t *testing.T) {
	idx := newTestIndex(t)
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"locale en", Query{Text: "telemedicine", Locale: models.LocaleEN}, []string{"telemedicine"}},
		{"collection", Query{Text: "inventario", Collection: models.CollectionCaseStudies}, []string{"hospital-norte"}},
		{"collection excludes", Query{Text: "inventario", Collection: models.CollectionBlog, Fuzzy: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := idx.Search(context.Background(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Hits) != len(tt.want) {
				t.Fatalf("hits = %+v, want %v", resp.Hits, tt.want)
			}
			for i, slug := range tt.want {
				if resp.Hits[i].Entry.Slug != slug {
					t.Errorf("hit %d = %s, want %s", i, resp.Hits[i].Entry.Slug, slug)
				}
			}
		})
	}
}

func TestSearch_AutoFuzzyRetry(t *testing.T) {
	idx := newTestIndex(t)
	resp, err := idx.Search(context.Background(), Query{Text: "inventaro", Locale: models.LocaleES})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.AutoFuzzy {
		t.Error("expected auto fuzzy retry")
	}
	if len(resp.Hits) != 1 || resp.Hits[0].Entry.Slug != "hospital-norte" {
		t.Errorf("hits = %+v", resp.Hits)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.Search(context.Background(), Query{Text: "   "}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}
