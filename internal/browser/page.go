package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightPage struct {
	page      playwright.Page
	closeOnce sync.Once
	closeErr  error
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// wrap maps playwright timeouts onto ErrTimeout so callers never import playwright
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(timeout),
	})
	return wrap("goto "+url, err)
}

func (p *playwrightPage) Count(selector string) (int, error) {
	n, err := p.page.Locator(selector).Count()
	return n, wrap("count "+selector, err)
}

func (p *playwrightPage) Click(selector string) error {
	return wrap("click "+selector, p.page.Locator(selector).First().Click())
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: ms(timeout),
	})
	return wrap("wait for "+selector, err)
}

func (p *playwrightPage) Anchors() ([]Anchor, error) {
	links, err := p.page.Locator("a").All()
	if err != nil {
		return nil, wrap("query anchors", err)
	}
	anchors := make([]Anchor, len(links))
	for i, l := range links {
		anchors[i] = locatorAnchor{loc: l}
	}
	return anchors, nil
}

func (p *playwrightPage) Content() (string, error) {
	html, err := p.page.Content()
	return html, wrap("content", err)
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return wrap("screenshot", err)
}

func (p *playwrightPage) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = wrap("close page", p.page.Close())
	})
	return p.closeErr
}

type locatorAnchor struct {
	loc playwright.Locator
}

func (a locatorAnchor) Href() (string, error) {
	return attr(a.loc, "href")
}

func (a locatorAnchor) Badges(selector string) ([]Badge, error) {
	imgs, err := a.loc.Locator(selector).All()
	if err != nil {
		return nil, wrap("query badges", err)
	}
	badges := make([]Badge, len(imgs))
	for i, img := range imgs {
		badges[i] = locatorBadge{loc: img}
	}
	return badges, nil
}

type locatorBadge struct {
	loc playwright.Locator
}

func (b locatorBadge) Alt() (string, error) {
	return attr(b.loc, "alt")
}

// attr treats an empty attribute the same as a missing one
func attr(loc playwright.Locator, name string) (string, error) {
	v, err := loc.GetAttribute(name)
	if err != nil {
		return "", wrap("get attribute "+name, err)
	}
	if v == "" {
		return "", ErrNoAttribute
	}
	return v, nil
}
