package locator

import (
	"github.com/PuerkitoBio/goquery"
)

// htmlNode adapts a single-element goquery selection to Node
type htmlNode struct {
	sel *goquery.Selection
}

// FromSelection wraps the first element of sel. Returns nil for an empty selection.
func FromSelection(sel *goquery.Selection) Node {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	return htmlNode{sel: sel.First()}
}

// Text matches the DOM textContent: every descendant text node, scripts included
func (n htmlNode) Text() string {
	return n.sel.Text()
}

func (n htmlNode) Children() []Node {
	children := n.sel.Children()
	nodes := make([]Node, 0, children.Length())
	children.Each(func(_ int, c *goquery.Selection) {
		nodes = append(nodes, htmlNode{sel: c})
	})
	return nodes
}

func (n htmlNode) NextSibling() Node {
	next := n.sel.Next()
	if next.Length() == 0 {
		//an untyped nil, so callers can compare against nil
		return nil
	}
	return htmlNode{sel: next}
}

// Selection exposes the underlying element of a Node built by FromSelection
func Selection(n Node) (*goquery.Selection, bool) {
	h, ok := n.(htmlNode)
	if !ok {
		return nil, false
	}
	return h.sel, true
}

// FindText locates token inside the document body and returns the neighbor's text
func FindText(doc *goquery.Document, token string) (string, bool) {
	root := FromSelection(doc.Find("body"))
	if root == nil {
		return "", false
	}
	return NeighborText(Locate(root, token))
}
