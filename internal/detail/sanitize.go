package detail

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans captured content markup before it is stored
type Sanitizer interface {
	Sanitize(html string) string
}

// NewContentSanitizer keeps the formatting a job description uses and drops
// scripts, styles, event handlers and javascript: links
func NewContentSanitizer() Sanitizer {
	policy := bluemonday.NewPolicy()

	//basic text blocks and formatting
	policy.AllowElements("p", "br", "div", "span", "section", "article")
	policy.AllowElements("strong", "b", "em", "i", "u", "code", "pre", "blockquote")
	policy.AllowElements("ul", "ol", "li", "dl", "dt", "dd")
	policy.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")

	//links without javascript:
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowRelativeURLs(true)
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")

	return policy
}
