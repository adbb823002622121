package content

import (
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/models"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	return NewSnapshot(BuildIndex(map[string]string{
		"blog/es/a.mdx":         doc("Primero", "es", "2024-01-01", "tags: [Clínica, IA]"),
		"blog/es/b.mdx":         doc("Segundo", "es", "2024-06-01", "tags: [clinica]"),
		"blog/en/c.mdx":         doc("Third", "en", "2024-03-01", "tags: [AI]"),
		"case-studies/es/d.mdx": doc("Cuarto", "es", "2023-03-01", "tags: [IA]"),
	}, nil), nil)
}

func TestSnapshot_ListAndLookup(t *testing.T) {
	s := testSnapshot(t)
	if s.Len() != 4 {
		t.Fatalf("Len() = %d", s.Len())
	}
	blogES := s.List(models.CollectionBlog, models.LocaleES)
	if got := slugs(blogES); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("List(blog, es) = %v", got)
	}
	if got := s.List("", models.LocaleES); len(got) != 3 {
		t.Errorf("List(all, es) = %v", slugs(got))
	}
	e, ok := s.Lookup(models.ContentKey{Collection: models.CollectionBlog, Locale: models.LocaleEN, Slug: "c"})
	if !ok || e.Meta.Title != "Third" {
		t.Errorf("Lookup(c) = %+v, %v", e, ok)
	}
	if _, ok := s.Lookup(models.ContentKey{Collection: models.CollectionBlog, Locale: models.LocaleES, Slug: "c"}); ok {
		t.Error("c must not resolve in es")
	}
}

func TestSnapshot_EntriesIsCopy(t *testing.T) {
	s := testSnapshot(t)
	entries := s.Entries()
	entries[0].Slug = "mutated"
	if s.Entries()[0].Slug == "mutated" {
		t.Error("Entries() must return a copy")
	}
}

func TestSnapshot_Tags(t *testing.T) {
	tags := testSnapshot(t).Tags(models.LocaleES)
	if len(tags) != 2 {
		t.Fatalf("tags = %+v", tags)
	}
	// "Clínica" and "clinica" merge; b is newer so its spelling is seen first
	if tags[0].Slug != "clinica" || tags[0].Count != 2 || tags[0].Name != "clinica" {
		t.Errorf("tags[0] = %+v", tags[0])
	}
	if tags[1].Slug != "ia" || tags[1].Count != 2 {
		t.Errorf("tags[1] = %+v", tags[1])
	}
}

func TestSnapshot_Enumerate(t *testing.T) {
	refs := testSnapshot(t).Enumerate()
	if len(refs) != 4 {
		t.Fatalf("refs = %v", refs)
	}
	if refs[0].Key.Slug != "b" || refs[0].Date.IsZero() {
		t.Errorf("refs[0] = %+v", refs[0])
	}
}

func TestNewSnapshot_DuplicateKeys(t *testing.T) {
	logger, logs := observed(zap.WarnLevel)
	entries := BuildIndex(map[string]string{
		"blog/es/a.md":  doc("Version md", "es", "2024-01-01"),
		"blog/es/a.mdx": doc("Version mdx", "es", "2024-02-01"),
	}, nil)
	s := NewSnapshot(entries, logger)
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	e, _ := s.Lookup(models.ContentKey{Collection: models.CollectionBlog, Locale: models.LocaleES, Slug: "a"})
	if e.Meta.Title != "Version mdx" {
		t.Errorf("kept %q, want the newest", e.Meta.Title)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one duplicate warning, got %d", logs.Len())
	}
}
