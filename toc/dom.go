package toc

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// SourceElementID identifies the page element holding the outline text.
	SourceElementID = "tocText"
	// ContainerID is set on the element wrapping the generated list.
	ContainerID = "tocList"
	// ContentPane names the frame entry links load into.
	ContentPane = "content"
)

// Tree is the result of a build: the parsed outline and the detached container
// node rendering it.
type Tree struct {
	Outline   Outline
	Container *html.Node
}

// Build parses the outline text and constructs the container node. Nothing is
// attached to any document.
func Build(text string) *Tree {
	outline := Parse(text)
	return &Tree{Outline: outline, Container: outline.Node()}
}

// Node renders the outline as <div id="tocList"><ul>...</ul></div>. Every call
// returns a fresh subtree.
func (o Outline) Node() *html.Node {
	container := element(atom.Div, html.Attribute{Key: "id", Val: ContainerID})
	top := element(atom.Ul)
	for _, sec := range o.Sections {
		item := element(atom.Li)
		item.AppendChild(text(sec.Title))
		nested := element(atom.Ul)
		for _, entry := range sec.Entries {
			link := element(atom.A,
				html.Attribute{Key: "href", Val: entry.Href},
				html.Attribute{Key: "target", Val: ContentPane},
			)
			link.AppendChild(text(entry.Title))
			li := element(atom.Li)
			li.AppendChild(link)
			nested.AppendChild(li)
		}
		item.AppendChild(nested)
		top.AppendChild(item)
	}
	container.AppendChild(top)
	return container
}

// Attach appends the tree's container to the body of doc. Attaching a tree
// whose container already has a parent appends a fresh copy, so repeated
// calls leave sibling containers behind.
func Attach(doc *html.Node, tree *Tree) error {
	body := findElement(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if body == nil {
		return ErrBodyMissing
	}
	node := tree.Container
	if node == nil || node.Parent != nil {
		node = tree.Outline.Node()
	}
	body.AppendChild(node)
	return nil
}

// BuildPage reads the outline from the element with SourceElementID, builds
// the tree and attaches it to the page body.
func BuildPage(doc *html.Node) (*Tree, error) {
	source := FindByID(doc, SourceElementID)
	if source == nil {
		return nil, ErrSourceMissing
	}
	tree := Build(TextContent(source))
	if err := Attach(doc, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParsePage parses an HTML document.
func ParsePage(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// RenderPage serializes the document.
func RenderPage(w io.Writer, doc *html.Node) error {
	return html.Render(w, doc)
}

// FindByID returns the first element whose id attribute equals id.
func FindByID(doc *html.Node, id string) *html.Node {
	return findElement(doc, func(n *html.Node) bool {
		for _, attr := range n.Attr {
			if attr.Namespace == "" && attr.Key == "id" && attr.Val == id {
				return true
			}
		}
		return false
	})
}

// TextContent concatenates every text node below n.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}
