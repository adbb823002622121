package content

import (
	"fmt"
	"path"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hyperjump/vetcontent/internal/models"
)

func doc(title, lang, date string, extra ...string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\nlang: %s\ndate: %s\n", title, lang, date)
	for _, e := range extra {
		b.WriteString(e + "\n")
	}
	b.WriteString("---\nCuerpo del documento.\n")
	return b.String()
}

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func slugs(entries []models.ContentIndexEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Slug
	}
	return out
}

func TestBuildIndex_SortsNewestFirst(t *testing.T) {
	entries := BuildIndex(map[string]string{
		"blog/es/a.mdx": doc("Primero", "es", "2024-01-01"),
		"blog/es/b.mdx": doc("Segundo", "es", "2024-06-01"),
	}, nil)
	if got := slugs(entries); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("order = %v, want [b a]", got)
	}
}

func TestBuildIndex_SortInvariant(t *testing.T) {
	docs := map[string]string{
		"blog/es/uno.mdx":           doc("Uno uno", "es", "2023-03-01"),
		"blog/es/dos.mdx":           doc("Dos dos", "es", "2024-11-20"),
		"blog/en/three.md":          doc("Three", "en", "2024-11-20"),
		"case-studies/es/norte.mdx": doc("Hospital Norte", "es", "2022-07-15T10:30:00Z"),
		"case-studies/en/north.mdx": doc("North Hospital", "en", "2025-01-02"),
	}
	entries := BuildIndex(docs, nil)
	if len(entries) != len(docs) {
		t.Fatalf("got %d entries, want %d", len(entries), len(docs))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Meta.Date.Before(entries[i].Meta.Date) {
			t.Errorf("entries %d and %d out of order: %v < %v", i-1, i, entries[i-1].Meta.Date, entries[i].Meta.Date)
		}
	}
	// equal dates keep lexical path order
	if entries[1].Path != "blog/en/three.md" || entries[2].Path != "blog/es/dos.mdx" {
		t.Errorf("tie order = %s, %s", entries[1].Path, entries[2].Path)
	}
}

func TestBuildIndex_SkipsDraftsSilently(t *testing.T) {
	logger, logs := observed(zap.WarnLevel)
	entries := BuildIndex(map[string]string{
		"blog/en/c.mdx": doc("Draft post", "en", "2024-02-02", "draft: true"),
		"blog/en/d.mdx": doc("Live post", "en", "2024-02-01"),
	}, logger)
	if got := slugs(entries); !reflect.DeepEqual(got, []string{"d"}) {
		t.Errorf("slugs = %v, want [d]", got)
	}
	if logs.Len() != 0 {
		t.Errorf("drafts must not warn, got %d logs", logs.Len())
	}
}

func TestBuildIndex_ValidationFailureWarnsWithPath(t *testing.T) {
	logger, logs := observed(zap.WarnLevel)
	entries := BuildIndex(map[string]string{
		"blog/es/d.mdx": doc("Documento", "fr", "2024-03-03"),
	}, logger)
	if len(entries) != 0 {
		t.Fatalf("invalid document indexed: %+v", entries)
	}
	if logs.Len() != 1 {
		t.Fatalf("got %d warnings, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zap.WarnLevel || entry.ContextMap()["path"] != "blog/es/d.mdx" {
		t.Errorf("warning = %+v", entry)
	}
}

func TestBuildIndex_ValidationExclusions(t *testing.T) {
	tests := map[string]string{
		"blog/es/sin-titulo.mdx": "---\nlang: es\ndate: 2024-01-01\n---\nx",
		"blog/es/corto.mdx":      doc("ab", "es", "2024-01-01"),
		"blog/es/fecha.mdx":      doc("Fecha mala", "es", "not-a-date"),
		"blog/es/roto.mdx":       "---\ntitle: [unclosed\n---\nx",
		"blog/fr/otro.mdx":       doc("Otro idioma", "es", "2024-01-01"),
	}
	for p, raw := range tests {
		t.Run(path.Base(p), func(t *testing.T) {
			logger, logs := observed(zap.WarnLevel)
			entries := BuildIndex(map[string]string{p: raw}, logger)
			if len(entries) != 0 {
				t.Errorf("expected exclusion, got %+v", entries)
			}
			if logs.FilterField(zap.String("path", p)).Len() == 0 {
				t.Errorf("no warning referencing %s", p)
			}
		})
	}
}

func TestBuildIndex_Idempotent(t *testing.T) {
	docs := map[string]string{
		"blog/es/a.mdx":  doc("Primero", "es", "2024-01-01"),
		"blog/es/b.mdx":  doc("Segundo", "es", "2024-01-01"),
		"blog/en/c.mdx":  doc("Third", "en", "2024-01-01"),
		"blog/en/d.mdx":  doc("Fourth", "en", "2023-01-01", "tags: [a, b]"),
		"blog/en/ee.mdx": doc("Fifth", "en", "2025-01-01", "excerpt: hello"),
	}
	first := BuildIndex(docs, nil)
	second := BuildIndex(docs, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("builds differ:\n%v\n%v", slugs(first), slugs(second))
	}
}

func TestBuildIndex_LocalePartition(t *testing.T) {
	entries := BuildIndex(map[string]string{
		"blog/es/hola-mundo.mdx":        doc("Hola mundo", "es", "2024-01-01"),
		"blog/en/hello-world.md":        doc("Hello world", "en", "2024-01-01"),
		"case-studies/es/clinica-a.mdx": doc("Clínica A", "es", "2024-01-01"),
	}, nil)
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	for _, e := range entries {
		segs := strings.Split(e.Path, "/")
		if string(e.Locale) != segs[len(segs)-2] {
			t.Errorf("%s: locale %s", e.Path, e.Locale)
		}
		file := segs[len(segs)-1]
		if e.Slug != strings.TrimSuffix(file, path.Ext(file)) {
			t.Errorf("%s: slug %s", e.Path, e.Slug)
		}
		if string(e.Collection) != segs[0] {
			t.Errorf("%s: collection %s", e.Path, e.Collection)
		}
	}
}

func TestBuildIndex_MalformedPathYieldsEmpty(t *testing.T) {
	logger, logs := observed(zap.ErrorLevel)
	entries := BuildIndex(map[string]string{
		"blog/es/a.mdx": doc("Primero", "es", "2024-01-01"),
		"suelto.mdx":    doc("Suelto", "es", "2024-01-01"),
	}, logger)
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil index, got %v", entries)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one error log, got %d", logs.Len())
	}
}

func TestBuildIndex_ReadingMinutes(t *testing.T) {
	body := strings.Repeat("palabra ", 450)
	entries := BuildIndex(map[string]string{
		"blog/es/largo.mdx": "---\ntitle: Largo\nlang: es\ndate: 2024-01-01\n---\n" + body,
	}, nil)
	if len(entries) != 1 || entries[0].ReadingMinutes != 3 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestPathKey(t *testing.T) {
	tests := []struct {
		in      string
		want    models.ContentKey
		wantErr bool
	}{
		{"blog/es/a.mdx", models.ContentKey{Collection: "blog", Locale: "es", Slug: "a"}, false},
		{"es/a.md", models.ContentKey{Locale: "es", Slug: "a"}, false},
		{"blog/en/with.dots.md", models.ContentKey{Collection: "blog", Locale: "en", Slug: "with.dots"}, false},
		{"a.mdx", models.ContentKey{}, true},
		{"blog/es/.mdx", models.ContentKey{}, true},
	}
	for _, tt := range tests {
		got, err := pathKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("pathKey(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("pathKey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
