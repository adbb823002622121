// Package frontmatter splits content documents into metadata and body and validates the metadata.
package frontmatter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/vetcontent/internal/models"
)

// MinTitleLength is the minimum number of characters in a title.
const MinTitleLength = 3

// MaxHighlights is the maximum number of card highlights.
const MaxHighlights = 3

// Validation errors.
var (
	ErrRequired          = errors.New("is required")
	ErrInvalidType       = errors.New("has an invalid type")
	ErrTooShort          = errors.New("is too short")
	ErrInvalidDate       = errors.New("is not a valid date")
	ErrInvalidLang       = errors.New("must be one of es, en")
	ErrTooManyHighlights = errors.New("has more than 3 highlights")
)

// FieldError describes one metadata field that failed validation.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// Result is the outcome of Validate. Meta is only meaningful when OK is true.
type Result struct {
	OK     bool
	Meta   models.ContentMetadata
	Errors []FieldError
}

// Err joins all field errors, or returns nil when validation passed.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// dateLayouts are the accepted string forms of a date, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validate checks raw metadata against the content schema. It never panics on malformed input.
func Validate(raw map[string]any) Result {
	v := &validation{raw: raw}
	var meta models.ContentMetadata

	meta.Title = v.title()
	meta.Date = v.date()
	meta.Excerpt = v.optString("excerpt")
	meta.Cover = v.optString("cover")
	meta.Lang = v.lang()
	meta.Tags = v.stringList("tags", true)
	meta.Draft = v.draft()
	meta.Slug = v.optString("slug")
	meta.Card = v.card()

	if len(v.errs) > 0 {
		return Result{Errors: v.errs}
	}
	return Result{OK: true, Meta: meta}
}

type validation struct {
	raw  map[string]any
	errs []FieldError
}

func (v *validation) fail(field string, value any, err error) {
	v.errs = append(v.errs, FieldError{Field: field, Value: value, Err: err})
}

func (v *validation) title() string {
	raw, ok := v.raw["title"]
	if !ok || raw == nil {
		v.fail("title", nil, ErrRequired)
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail("title", raw, ErrInvalidType)
		return ""
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < MinTitleLength {
		v.fail("title", raw, ErrTooShort)
		return ""
	}
	return s
}

func (v *validation) date() time.Time {
	raw, ok := v.raw["date"]
	if !ok || raw == nil {
		v.fail("date", nil, ErrRequired)
		return time.Time{}
	}
	t, err := CoerceDate(raw)
	if err != nil {
		v.fail("date", raw, err)
		return time.Time{}
	}
	return t
}

func (v *validation) lang() models.Locale {
	raw, ok := v.raw["lang"]
	if !ok || raw == nil {
		v.fail("lang", nil, ErrRequired)
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail("lang", raw, ErrInvalidType)
		return ""
	}
	// The enum is exact: "ES" is not accepted, unlike route parameters.
	switch models.Locale(s) {
	case models.LocaleES, models.LocaleEN:
		return models.Locale(s)
	}
	v.fail("lang", raw, ErrInvalidLang)
	return ""
}

func (v *validation) draft() bool {
	raw, ok := v.raw["draft"]
	if !ok || raw == nil {
		return false
	}
	b, ok := raw.(bool)
	if !ok {
		v.fail("draft", raw, ErrInvalidType)
		return false
	}
	return b
}

func (v *validation) optString(field string) string {
	return v.optStringIn(v.raw, field, field)
}

func (v *validation) optStringIn(m map[string]any, key, field string) string {
	raw, ok := m[key]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(field, raw, ErrInvalidType)
		return ""
	}
	return s
}

// stringList reads an ordered list of strings. When commaSeparated is set a plain
// string is split on commas, which is how older documents wrote their tags.
func (v *validation) stringList(field string, commaSeparated bool) []string {
	return v.stringListIn(v.raw, field, field, commaSeparated)
}

func (v *validation) stringListIn(m map[string]any, key, field string, commaSeparated bool) []string {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil
	}
	switch list := raw.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				v.fail(field, raw, ErrInvalidType)
				return nil
			}
			out = append(out, s)
		}
		return out
	case string:
		if !commaSeparated {
			break
		}
		var out []string
		for _, part := range strings.Split(list, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	v.fail(field, raw, ErrInvalidType)
	return nil
}

func (v *validation) card() *models.CardHints {
	raw, ok := v.raw["card"]
	if !ok || raw == nil {
		return nil
	}
	m, ok := asMap(raw)
	if !ok {
		v.fail("card", raw, ErrInvalidType)
		return nil
	}
	card := &models.CardHints{
		Kicker: v.optStringIn(m, "kicker", "card.kicker"),
		Badges: v.stringListIn(m, "badges", "card.badges", false),
		CTA:    v.optStringIn(m, "cta", "card.cta"),
	}
	card.Highlights = v.highlights(m["highlights"])
	return card
}

func (v *validation) highlights(raw any) []models.Highlight {
	if raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		v.fail("card.highlights", raw, ErrInvalidType)
		return nil
	}
	if len(list) > MaxHighlights {
		v.fail("card.highlights", len(list), ErrTooManyHighlights)
		return nil
	}
	out := make([]models.Highlight, 0, len(list))
	for i, item := range list {
		m, ok := asMap(item)
		if !ok {
			v.fail(fmt.Sprintf("card.highlights[%d]", i), item, ErrInvalidType)
			continue
		}
		label, lok := m["label"].(string)
		value, vok := m["value"].(string)
		if !lok || !vok {
			v.fail(fmt.Sprintf("card.highlights[%d]", i), item, ErrRequired)
			continue
		}
		out = append(out, models.Highlight{Label: label, Value: value})
	}
	return out
}

// CoerceDate converts a frontmatter date value into an instant. Strings are parsed with
// the accepted layouts; numbers are milliseconds since the Unix epoch. Instants outside
// years 0 to 9999 are rejected.
func CoerceDate(raw any) (time.Time, error) {
	t, err := coerceDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if y := t.Year(); y < 0 || y > 9999 {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func coerceDate(raw any) (time.Time, error) {
	switch d := raw.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return d, nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return *d, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, ErrInvalidDate
	case int:
		return time.UnixMilli(int64(d)).UTC(), nil
	case int64:
		return time.UnixMilli(d).UTC(), nil
	case uint64:
		if d > math.MaxInt64 {
			return time.Time{}, ErrInvalidDate
		}
		return time.UnixMilli(int64(d)).UTC(), nil
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, so >= excludes it.
		if math.IsNaN(d) || d >= math.MaxInt64 || d < math.MinInt64 {
			return time.Time{}, ErrInvalidDate
		}
		return time.UnixMilli(int64(d)).UTC(), nil
	}
	return time.Time{}, ErrInvalidType
}

// asMap accepts both decoder map shapes (yaml.v3 and yaml.v2 style).
func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}
