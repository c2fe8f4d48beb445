package locator

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree is an in-memory Node used to test the search without HTML
type tree struct {
	own      string
	children []*tree
	parent   *tree
}

func (t *tree) Text() string {
	var b strings.Builder
	b.WriteString(t.own)
	for _, c := range t.children {
		b.WriteString(c.Text())
	}
	return b.String()
}

func (t *tree) Children() []Node {
	nodes := make([]Node, len(t.children))
	for i, c := range t.children {
		nodes[i] = c
	}
	return nodes
}

func (t *tree) NextSibling() Node {
	if t.parent == nil {
		return nil
	}
	for i, c := range t.parent.children {
		if c == t && i+1 < len(t.parent.children) {
			return t.parent.children[i+1]
		}
	}
	return nil
}

func node(own string, children ...*tree) *tree {
	t := &tree{own: own, children: children}
	for _, c := range children {
		c.parent = t
	}
	return t
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestLocate_Tree(t *testing.T) {
	label := node("Timezone")
	value := node("UTC-5 to UTC+1")
	row := node("", label, value)
	root := node("", node("Salary"), row)

	tests := []struct {
		name  string
		root  Node
		token string
		want  Node
	}{
		{name: "deepest match wins", root: root, token: "timezone", want: label},
		{name: "case insensitive token", root: root, token: "TimeZone", want: label},
		{name: "token absent", root: root, token: "visa", want: nil},
		{name: "root does not match", root: node("nothing here"), token: "timezone", want: nil},
		{name: "empty token", root: root, token: "", want: nil},
		{name: "nil root", root: nil, token: "timezone", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(tt.root, tt.token)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Same(t, tt.want, got)
		})
	}
}

func TestLocate_LastMatchAcrossBranches(t *testing.T) {
	//two deepest matches at different depths: level order visits the deeper one last
	shallow := node("timezone A")
	deep := node("timezone B")
	root := node("", shallow, node("", node("", deep)))

	assert.Same(t, deep, Locate(root, "timezone"))
}

func TestNeighborText(t *testing.T) {
	label := node("Timezone")
	row := node("", label, node("CET"))

	text, ok := NeighborText(label)
	assert.True(t, ok)
	assert.Equal(t, "CET", text)

	_, ok = NeighborText(row.children[1])
	assert.False(t, ok, "last sibling has no neighbor")

	_, ok = NeighborText(nil)
	assert.False(t, ok)
}

func TestFindText_ScenarioA(t *testing.T) {
	doc := parse(t, `<html><body>
		<main>
			<div class="meta">
				<span>Timezone: see below</span>
				<span>UTC-5 to UTC+1</span>
			</div>
		</main>
	</body></html>`)

	match := Locate(FromSelection(doc.Find("body")), "timezone")
	require.NotNil(t, match)
	sel, ok := Selection(match)
	require.True(t, ok)
	assert.Equal(t, "Timezone: see below", sel.Text())

	text, ok := FindText(doc, "timezone")
	assert.True(t, ok)
	assert.Equal(t, "UTC-5 to UTC+1", text)
}

func TestFindText_NestedLabelPicksInnerElement(t *testing.T) {
	doc := parse(t, `<html><body>
		<section>
			<dl>
				<dt><strong>Timezone</strong><em>overlap</em></dt>
				<dd>Europe</dd>
			</dl>
		</section>
	</body></html>`)

	//<strong> is the most specific match, its neighbor is <em>
	text, ok := FindText(doc, "timezone")
	assert.True(t, ok)
	assert.Equal(t, "overlap", text)
}

func TestFindText_Absent(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "no label", html: `<html><body><p>Remote anywhere</p></body></html>`},
		{name: "label is last sibling", html: `<html><body><div><p>x</p><p>Timezone</p></div></body></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := FindText(parse(t, tt.html), "timezone")
			assert.False(t, ok)
			assert.Empty(t, text)
		})
	}
}

func TestFindText_Diacritics(t *testing.T) {
	doc := parse(t, `<html><body><div><b>TÍMEZONE</b><i>GMT</i></div></body></html>`)
	text, ok := FindText(doc, "timezone")
	assert.True(t, ok)
	assert.Equal(t, "GMT", text)
}

// randomTree builds a tree where roughly a third of the nodes carry the token
func randomTree(r *rand.Rand, depth int) *tree {
	own := "lorem "
	if r.Intn(3) == 0 {
		own = "timezone "
	}
	if depth == 0 {
		return node(own)
	}
	n := r.Intn(4)
	children := make([]*tree, n)
	for i := range children {
		children[i] = randomTree(r, depth-1)
	}
	return node(own, children...)
}

func TestLocate_Property(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		root := randomTree(r, 4)
		got := Locate(root, "timezone")

		if !strings.Contains(root.Text(), "timezone") {
			assert.Nil(t, got, "iteration %d", i)
			continue
		}
		require.NotNil(t, got, "iteration %d", i)
		match := got.(*tree)

		//the match contains the token and no child of it does
		assert.Contains(t, match.Text(), "timezone")
		for _, c := range match.children {
			assert.NotContains(t, c.Text(), "timezone", "iteration %d: a deeper match exists", i)
		}
		//every ancestor matches, so the node was reachable
		for p := match.parent; p != nil; p = p.parent {
			assert.Contains(t, p.Text(), "timezone")
		}
	}
}
