// Package page resolves a (collection, locale, slug) request to displayable content.
// Sources are tried in a fixed order: database, static index, legacy documents.
package page

import (
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/render"
	"github.com/hyperjump/vetcontent/internal/seo"
)

// State is a step of one resolution.
type State int

const (
	StateInit State = iota
	StateCheckingDB
	StateFoundDB
	StateCheckingStatic
	StateFoundStatic
	StateCheckingLegacy
	StateFoundLegacy
	StateNotFound
)

var stateNames = [...]string{
	StateInit:           "INIT",
	StateCheckingDB:     "CHECKING_DB",
	StateFoundDB:        "FOUND_DB",
	StateCheckingStatic: "CHECKING_STATIC",
	StateFoundStatic:    "FOUND_STATIC",
	StateCheckingLegacy: "CHECKING_LEGACY_FALLBACK",
	StateFoundLegacy:    "FOUND_LEGACY",
	StateNotFound:       "NOT_FOUND",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s ends a resolution.
func (s State) Terminal() bool {
	switch s {
	case StateFoundDB, StateFoundStatic, StateFoundLegacy, StateNotFound:
		return true
	}
	return false
}

// Request identifies the content a navigation asks for.
type Request struct {
	Collection models.Collection `json:"collection"`
	Locale     models.Locale     `json:"locale"`
	Slug       string            `json:"slug"`
}

// Key returns the content key of the request.
func (r Request) Key() models.ContentKey {
	return models.ContentKey{Collection: r.Collection, Locale: r.Locale, Slug: r.Slug}
}

// Result is the outcome of one resolution.
type Result struct {
	Request   Request                `json:"request"`
	State     State                  `json:"state"`
	Trace     []State                `json:"trace"`
	Content   *models.DisplayContent `json:"content,omitempty"`
	Component *render.Component      `json:"component,omitempty"`
	SEO       seo.Meta               `json:"seo"`
	// TimedOut is set when the resolution ran out of time and ended NOT_FOUND.
	TimedOut bool `json:"timed_out,omitempty"`
}

// Found reports whether any source satisfied the request.
func (r *Result) Found() bool {
	return r != nil && r.State != StateNotFound && r.State.Terminal()
}

func (r *Result) enter(s State) {
	r.State = s
	r.Trace = append(r.Trace, s)
}
