package frontmatter

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// formats restricts detection to YAML blocks fenced by "---" and decodes them with yaml.v3,
// so nested mappings come back as map[string]any.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
}

// Document is a content document split into its metadata block and body.
type Document struct {
	Metadata map[string]any
	Body     string
}

// Parse splits raw into metadata and body. A document without a metadata block yields empty
// metadata and the whole text as body. The body is returned unmodified.
// On a malformed metadata block the returned document carries empty metadata and the raw text.
func Parse(raw string) (Document, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(strings.NewReader(raw), &meta, formats...)
	if err != nil {
		return Document{Metadata: map[string]any{}, Body: raw}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return Document{Metadata: meta, Body: string(body)}, nil
}

// ReadingMinutes estimates reading time at 200 words per minute, never less than one minute.
func ReadingMinutes(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + 199) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}
