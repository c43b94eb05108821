package renderer

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Heading is a heading of a content page, used for the in-page navigation.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// RenderResult is a rendered content page.
type RenderResult struct {
	HTML      []byte
	PlainText string
	Headings  []Heading
	// Title is the "title" front matter value, empty when absent.
	Title string
}

// Renderer turns Markdown content pages into HTML fragments and minifies
// finished pages.
type Renderer struct {
	md     goldmark.Markdown
	minify *minifier
}

// New builds a renderer. Minification is a no-op when minify is false.
func New(minify bool) *Renderer {
	highlighter := highlighting.NewHighlighting(
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true),
			chromahtml.ClassPrefix("hl-"),
			chromahtml.PreventSurroundingPre(true),
		),
		highlighting.WithWrapperRenderer(wrapCodeBlock),
	)

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.DefinitionList, highlighter, meta.Meta),
			goldmark.WithParserOptions(parser.WithAttribute()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	if minify {
		r.minify = newMinifier()
	}
	return r
}

// Render converts src to HTML. Headings without an explicit {#id} get an id
// derived from their text, suffixed with -1, -2, ... on repeats.
func (r *Renderer) Render(src []byte) (*RenderResult, error) {
	pctx := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	c := &collector{src: src, seen: map[string]int{}}
	if err := ast.Walk(doc, c.visit); err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	res := &RenderResult{
		HTML:      buf.Bytes(),
		PlainText: strings.Join(strings.Fields(c.plain.String()), " "),
		Headings:  c.headings,
	}
	if v, ok := meta.Get(pctx)["title"]; ok && v != nil {
		res.Title = strings.TrimSpace(fmt.Sprint(v))
	}
	return res, nil
}

// MinifyHTML minifies a complete page.
func (r *Renderer) MinifyHTML(raw []byte) ([]byte, error) {
	if r.minify == nil {
		return raw, nil
	}
	return r.minify.html(raw)
}

type collector struct {
	src      []byte
	seen     map[string]int
	headings []Heading
	plain    strings.Builder
}

func (c *collector) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	switch node := n.(type) {
	case *ast.Heading:
		c.heading(node)
	case *ast.Text:
		c.plain.Write(node.Segment.Value(c.src))
		c.plain.WriteByte(' ')
	}
	return ast.WalkContinue, nil
}

func (c *collector) heading(node *ast.Heading) {
	label := inlineText(node, c.src)
	id := ""
	if v, ok := node.AttributeString("id"); ok {
		switch raw := v.(type) {
		case []byte:
			id = string(raw)
		case string:
			id = raw
		}
	}
	if id == "" {
		base := anchorSlug(label)
		id = base
		if n := c.seen[base]; n > 0 {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		node.SetAttributeString("id", []byte(id))
		c.seen[base]++
	} else {
		c.seen[id]++
	}
	c.headings = append(c.headings, Heading{ID: id, Text: label, Level: node.Level})
}

func inlineText(parent ast.Node, src []byte) string {
	var sb strings.Builder
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
			continue
		}
		sb.WriteString(inlineText(child, src))
	}
	return strings.TrimSpace(sb.String())
}

// anchorSlug builds heading ids. Unlike toc.Slugify it keeps digits and
// trims separators, since anchors never become file names.
func anchorSlug(label string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' || r == '.' {
			pending = true
		}
	}
	if sb.Len() == 0 {
		return "section"
	}
	return sb.String()
}

func wrapCodeBlock(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	lang := "text"
	if raw, ok := ctx.Language(); ok && len(raw) > 0 {
		lang = string(util.EscapeHTML(raw))
	}
	_, _ = fmt.Fprintf(w, `<pre class="hl-chroma" data-lang="%[1]s"><code class="language-%[1]s">`, lang)
}
