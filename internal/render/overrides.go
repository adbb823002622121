package render

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrUnknownTag is returned when an override targets a tag the registry cannot map.
var ErrUnknownTag = errors.New("unknown override tag")

// tagKinds maps the tag names content authors know to goldmark node kinds.
var tagKinds = map[string]ast.NodeKind{
	"h":     ast.KindHeading,
	"a":     ast.KindLink,
	"img":   ast.KindImage,
	"table": east.KindTable,
}

// Overrides is the single registry of tag renderers used for every content body.
// It is a goldmark NodeRenderer and is registered ahead of the default HTML renderer.
type Overrides struct {
	funcs map[string]renderer.NodeRendererFunc
}

// NewOverrides returns an empty registry.
func NewOverrides() *Overrides {
	return &Overrides{funcs: make(map[string]renderer.NodeRendererFunc)}
}

// DefaultOverrides returns the site's typographic treatment: anchored headings,
// external links in a new tab, lazy images and scrollable tables.
func DefaultOverrides() *Overrides {
	o := NewOverrides()
	o.funcs["h"] = renderHeading
	o.funcs["a"] = renderLink
	o.funcs["img"] = renderImage
	o.funcs["table"] = renderTable
	return o
}

// Set registers fn for tag, replacing any previous renderer.
func (o *Overrides) Set(tag string, fn renderer.NodeRendererFunc) error {
	if _, ok := tagKinds[tag]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	o.funcs[tag] = fn
	return nil
}

// Tags returns the registered tag names, sorted.
func (o *Overrides) Tags() []string {
	tags := make([]string, 0, len(o.funcs))
	for tag := range o.funcs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// RegisterFuncs implements renderer.NodeRenderer.
func (o *Overrides) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for tag, fn := range o.funcs {
		reg.Register(tagKinds[tag], fn)
	}
}

func renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		_, _ = fmt.Fprintf(w, "</h%d>\n", n.Level)
		return ast.WalkContinue, nil
	}
	_, _ = fmt.Fprintf(w, "<h%d", n.Level)
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.HeadingAttributeFilter)
	}
	_ = w.WriteByte('>')
	if id, ok := headingID(n); ok {
		_, _ = w.WriteString(`<a class="anchor" href="#`)
		_, _ = w.Write(util.EscapeHTML([]byte(id)))
		_, _ = w.WriteString(`" aria-hidden="true">#</a>`)
	}
	return ast.WalkContinue, nil
}

func renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	if isExternal(string(n.Destination)) {
		_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML([]byte(plainText(n, source))))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` loading="lazy">`)
	return ast.WalkSkipChildren, nil
}

func renderTable(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<div class=\"table-scroll\"><table>\n")
	} else {
		_, _ = w.WriteString("</table>\n</div>\n")
	}
	return ast.WalkContinue, nil
}

func isExternal(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

func headingID(n *ast.Heading) (string, bool) {
	v, ok := n.AttributeString("id")
	if !ok {
		return "", false
	}
	switch id := v.(type) {
	case []byte:
		return string(id), len(id) > 0
	case string:
		return id, id != ""
	}
	return "", false
}

// plainText concatenates the text segments below n.
func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
