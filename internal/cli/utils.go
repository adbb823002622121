// Package cli provides output helpers for the vetcontent command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/search"
	"github.com/hyperjump/vetcontent/pkg/utils"
)

// OutputFormat is the format of command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat parses a -format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *search.Response, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	note := ""
	if response.AutoFuzzy {
		note = " (no exact matches, showing fuzzy results)"
	}
	fmt.Fprintf(w, "\nFound %d results for %q in %dms%s\n", response.Total, response.Query, response.TookMs, note)
	if response.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean: %s?\n", response.Suggestion)
	}
	fmt.Fprintln(w)
	for _, hit := range response.Hits {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | %s\n", hit.Rank, hit.Score, hit.Entry.Key())
		fmt.Fprintf(w, "Title: %s\n", hit.Entry.Meta.Title)
		if hit.Entry.Meta.Excerpt != "" {
			fmt.Fprintf(w, "\n%s\n", TruncateWords(hit.Entry.Meta.Excerpt, 30))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteIndex writes the content index to w in the given format.
func WriteIndex(w io.Writer, entries []models.ContentIndexEntry, format OutputFormat) error {
	if format == OutputJSON {
		if entries == nil {
			entries = []models.ContentIndexEntry{}
		}
		return writeJSON(w, entries)
	}
	fmt.Fprintf(w, "%d entries\n", len(entries))
	for _, e := range entries {
		date := "----------"
		if !e.Meta.Date.IsZero() {
			date = e.Meta.Date.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s  %-2s  %-12s  %-40s  %s\n",
			date, e.Locale, e.Collection, utils.Truncate(e.Slug, 40), utils.Truncate(e.Meta.Title, 60))
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
