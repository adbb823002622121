// Package render turns content bodies into HTML with one shared set of tag overrides.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/hyperjump/vetcontent/internal/models"
)

// overridePriority places the registry ahead of goldmark's HTML renderer (priority 1000).
const overridePriority = 100

// Heading is one entry of a rendered body's table of contents.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// Component is a rendered content body.
type Component struct {
	HTML     string    `json:"html"`
	Headings []Heading `json:"headings,omitempty"`
}

// Renderer renders markdown/MDX bodies. It is safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	overrides *Overrides
	sanitizer *bluemonday.Policy
	importer  *converter.Converter
}

// NewRenderer builds a renderer that applies overrides to every body. A nil overrides
// uses DefaultOverrides.
func NewRenderer(overrides *Overrides) *Renderer {
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Authored content is trusted and may carry inline HTML components.
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(overrides, overridePriority)),
		),
	)
	return &Renderer{
		md:        md,
		overrides: overrides,
		sanitizer: newSanitizer(),
		importer: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Overrides returns the registry the renderer was built with.
func (r *Renderer) Overrides() *Overrides {
	return r.overrides
}

// Render renders a trusted markdown body.
func (r *Renderer) Render(body string) (*Component, error) {
	src := []byte(body)
	doc := r.md.Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("failed to render body: %w", err)
	}
	return &Component{HTML: buf.String(), Headings: collectHeadings(doc, src)}, nil
}

// RenderUntrusted renders a body published through the CMS. HTML bodies are imported to
// markdown first; the resulting HTML is sanitized.
func (r *Renderer) RenderUntrusted(body, format string) (*Component, error) {
	if format == models.FormatHTML {
		md, err := r.HTMLToMarkdown(body)
		if err != nil {
			return nil, err
		}
		body = md
	}
	comp, err := r.Render(body)
	if err != nil {
		return nil, err
	}
	comp.HTML = r.sanitizer.Sanitize(comp.HTML)
	return comp, nil
}

// HTMLToMarkdown converts a CMS HTML body into markdown.
func (r *Renderer) HTMLToMarkdown(htmlBody string) (string, error) {
	md, err := r.importer.ConvertString(htmlBody)
	if err != nil {
		return "", fmt.Errorf("failed to convert html body: %w", err)
	}
	return strings.TrimSpace(md), nil
}

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("aria-hidden").OnElements("a")
	p.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

func collectHeadings(doc ast.Node, src []byte) []Heading {
	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		id, _ := headingID(h)
		headings = append(headings, Heading{Level: h.Level, ID: id, Text: plainText(h, src)})
		return ast.WalkSkipChildren, nil
	})
	return headings
}
