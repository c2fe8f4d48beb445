// Package locator finds a labeled field anywhere in a content tree.
//
// The search is breadth-first and only expands nodes whose rendered text
// contains the token, so the result is the most specific matching node:
// a container that mentions "timezone" loses to the smaller element inside
// it that also mentions it.
package locator

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Node is the minimum a content tree has to expose
type Node interface {
	//Text is the full rendered text of the node and its descendants
	Text() string
	Children() []Node
	//NextSibling is the following sibling element, nil when there is none
	NextSibling() Node
}

// Locate returns the last node, in level order, whose text contains token.
// Children of a non-matching node are never visited. Returns nil on no match.
func Locate(root Node, token string) Node {
	token = fold(token)
	if root == nil || token == "" {
		return nil
	}

	var match Node
	queue := []Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if !strings.Contains(fold(node.Text()), token) {
			continue
		}

		match = node
		queue = append(queue, node.Children()...)
	}
	return match
}

// NeighborText reads the text of the sibling right after n.
// ok is false when n is nil or is the last of its siblings.
func NeighborText(n Node) (text string, ok bool) {
	if n == nil {
		return "", false
	}
	next := n.NextSibling()
	if next == nil {
		return "", false
	}
	return next.Text(), true
}

// fold lower-cases and strips diacritics so "Timezone", "TIMEZONE" and "Tímezone" all match
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}
