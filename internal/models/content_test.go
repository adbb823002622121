package models

import (
	"testing"
	"time"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
		ok   bool
	}{
		{"es", LocaleES, true},
		{"EN", LocaleEN, true},
		{" en ", LocaleEN, true},
		{"fr", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLocale(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLocale(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLocale_Alternate(t *testing.T) {
	if LocaleES.Alternate() != LocaleEN || LocaleEN.Alternate() != LocaleES {
		t.Error("Alternate should swap es and en")
	}
}

func TestParseCollection(t *testing.T) {
	if c, ok := ParseCollection("case-studies"); !ok || c != CollectionCaseStudies {
		t.Errorf("ParseCollection(case-studies) = %q, %v", c, ok)
	}
	if _, ok := ParseCollection("pages"); ok {
		t.Error("unknown collection should not parse")
	}
}

func TestContentKey_String(t *testing.T) {
	k := ContentKey{Collection: CollectionBlog, Locale: LocaleES, Slug: "a"}
	if k.String() != "blog/es/a" {
		t.Errorf("got %s", k.String())
	}
}

func TestDbContentRecord_EffectiveDate(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	published := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	r := &DbContentRecord{CreatedAt: created}
	if !r.EffectiveDate().Equal(created) {
		t.Errorf("without published_at: got %v", r.EffectiveDate())
	}
	r.PublishedAt = &published
	if !r.EffectiveDate().Equal(published) {
		t.Errorf("with published_at: got %v", r.EffectiveDate())
	}
}
