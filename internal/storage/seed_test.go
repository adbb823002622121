package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/vetcontent/internal/models"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadSeed(t *testing.T) {
	p := writeSeed(t, `records:
  - collection: blog
    title: Telemedicina
    slug: telemedicina
    lang: ES
    status: published
    published_at: 2024-05-01T09:00:00Z
    tags: [salud, ia]
    content: "# Hola"
  - collection: case-studies
    title: Hospital Norte
    slug: hospital-norte
    lang: en
    client: Norte
    services: [inventario]
`)
	recs, err := LoadSeed(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].Lang != models.LocaleES || recs[0].PublishedAt == nil || len(recs[0].Tags) != 2 {
		t.Errorf("record 0 = %+v", recs[0])
	}
	if recs[1].Collection != models.CollectionCaseStudies || recs[1].Client != "Norte" {
		t.Errorf("record 1 = %+v", recs[1])
	}
}

func TestLoadSeed_Invalid(t *testing.T) {
	tests := map[string]string{
		"collection": "records:\n  - collection: news\n    title: x\n    slug: x\n    lang: es\n",
		"lang":       "records:\n  - collection: blog\n    title: x\n    slug: x\n    lang: fr\n",
		"slug":       "records:\n  - collection: blog\n    title: x\n    lang: es\n",
		"yaml":       "records: [unclosed",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSeed(writeSeed(t, body)); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
