// Package browsertest serves HTML fixtures through the browser interfaces,
// so scraper code can be tested without a real browser.
package browsertest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"remote-jobs-harvester/internal/browser"

	"github.com/PuerkitoBio/goquery"
)

// Site maps absolute URLs to HTML bodies
type Site struct {
	mu      sync.Mutex
	pages   map[string]string
	navFail map[string]error
	//delays simulate slow navigation, keyed by URL
	delays  map[string]time.Duration
	//OnClick may rewrite the current document after a click
	OnClick func(url, selector string, doc *goquery.Document)

	opened  int
	closed  int
	open    int
	maxOpen int
	clicks  []string
	visits  []string
}

func NewSite() *Site {
	return &Site{
		pages:   make(map[string]string),
		navFail: make(map[string]error),
		delays:  make(map[string]time.Duration),
	}
}

func (s *Site) Serve(url, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = html
}

// FailNavigation makes Goto(url) return err
func (s *Site) FailNavigation(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navFail[url] = err
}

func (s *Site) Delay(url string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[url] = d
}

func (s *Site) NewPage() (browser.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	s.open++
	if s.open > s.maxOpen {
		s.maxOpen = s.open
	}
	return &Page{site: s}, nil
}

// Stats returns pages opened, pages closed and the peak number open at once
func (s *Site) Stats() (opened, closed, maxOpen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed, s.maxOpen
}

func (s *Site) Clicks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicks...)
}

func (s *Site) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// Page is a single fake tab
type Page struct {
	site *Site

	mu     sync.Mutex
	url    string
	doc    *goquery.Document
	closed bool
}

func (p *Page) Goto(url string, timeout time.Duration) error {
	p.site.mu.Lock()
	html, ok := p.site.pages[url]
	failure := p.site.navFail[url]
	delay := p.site.delays[url]
	p.site.visits = append(p.site.visits, url)
	p.site.mu.Unlock()

	if delay > 0 {
		if delay > timeout {
			time.Sleep(timeout)
			return fmt.Errorf("goto %s: %w", url, browser.ErrTimeout)
		}
		time.Sleep(delay)
	}
	if failure != nil {
		return fmt.Errorf("goto %s: %w", url, failure)
	}
	if !ok {
		return fmt.Errorf("goto %s: 404", url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("goto %s: page closed", url)
	}
	p.url = url
	p.doc = doc
	return nil
}

func (p *Page) document() (*goquery.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("page closed")
	}
	if p.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	return p.doc, nil
}

func (p *Page) Count(selector string) (int, error) {
	doc, err := p.document()
	if err != nil {
		return 0, err
	}
	return doc.Find(selector).Length(), nil
}

func (p *Page) Click(selector string) error {
	doc, err := p.document()
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("click %s: %w", selector, browser.ErrTimeout)
	}
	p.site.mu.Lock()
	p.site.clicks = append(p.site.clicks, selector)
	onClick := p.site.OnClick
	p.site.mu.Unlock()
	if onClick != nil {
		p.mu.Lock()
		url := p.url
		p.mu.Unlock()
		onClick(url, selector, doc)
	}
	return nil
}

// WaitForSelector does not wait: the fixture either has the element or times out
func (p *Page) WaitForSelector(selector string, timeout time.Duration) error {
	doc, err := p.document()
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("wait for %s: %w", selector, browser.ErrTimeout)
	}
	return nil
}

func (p *Page) Anchors() ([]browser.Anchor, error) {
	doc, err := p.document()
	if err != nil {
		return nil, err
	}
	var anchors []browser.Anchor
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		anchors = append(anchors, Anchor{sel: sel})
	})
	return anchors, nil
}

func (p *Page) Content() (string, error) {
	doc, err := p.document()
	if err != nil {
		return "", err
	}
	return goquery.OuterHtml(doc.Selection)
}

func (p *Page) Screenshot(path string) error {
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.site.mu.Lock()
	p.site.closed++
	p.site.open--
	p.site.mu.Unlock()
	return nil
}

// Anchor and Badge read attributes straight from the fixture
type Anchor struct {
	sel *goquery.Selection
}

func NewAnchor(sel *goquery.Selection) Anchor {
	return Anchor{sel: sel}
}

func (a Anchor) Href() (string, error) {
	return attr(a.sel, "href")
}

func (a Anchor) Badges(selector string) ([]browser.Badge, error) {
	var badges []browser.Badge
	a.sel.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		badges = append(badges, Badge{sel: sel})
	})
	return badges, nil
}

type Badge struct {
	sel *goquery.Selection
}

func (b Badge) Alt() (string, error) {
	return attr(b.sel, "alt")
}

func attr(sel *goquery.Selection, name string) (string, error) {
	v, ok := sel.Attr(name)
	if !ok || v == "" {
		return "", browser.ErrNoAttribute
	}
	return v, nil
}
