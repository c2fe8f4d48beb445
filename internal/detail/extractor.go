// Package detail extracts the timezone field and the description markup of one job page.
package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"remote-jobs-harvester/internal/browser"
	"remote-jobs-harvester/internal/locator"
	"remote-jobs-harvester/internal/scraper"
	"remote-jobs-harvester/utils"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrNavigationTimeout = errors.New("navigation timeout")
	ErrReadinessTimeout  = errors.New("readiness marker timeout")
	ErrMissingContent    = errors.New("content container not found")
)

// RecordError is a failure of a single job page; the batch goes on without it
type RecordError struct {
	URL string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

type Selectors struct {
	ReadinessMarker  string
	ContentContainer string
	TimezoneToken    string
}

type Extractor struct {
	Opener            browser.Opener
	Selectors         Selectors
	NavigationTimeout time.Duration
	ReadinessTimeout  time.Duration
	//Sanitizer is optional; nil keeps the raw inner HTML
	Sanitizer Sanitizer
	//Screenshots is optional; when set failed pages are captured
	Screenshots *utils.ScreenShotDebugger
}

// Extract opens url on a fresh page and reads one JobDetail from it.
// The page is closed on return, and as soon as ctx is done.
func (e *Extractor) Extract(ctx context.Context, url string) (scraper.JobDetail, error) {
	if err := ctx.Err(); err != nil {
		return scraper.JobDetail{}, &RecordError{URL: url, Err: err}
	}

	page, err := e.Opener.NewPage()
	if err != nil {
		return scraper.JobDetail{}, &RecordError{URL: url, Err: fmt.Errorf("open page: %w", err)}
	}
	defer page.Close()
	//unblocks a pending Goto/WaitForSelector when the run is cancelled
	stop := context.AfterFunc(ctx, func() { page.Close() })
	defer stop()

	job, err := e.extract(ctx, page, url)
	if err != nil {
		if e.Screenshots != nil && ctx.Err() == nil {
			e.Screenshots.CaptureAndLog(page, url, "Detail extraction failed: "+url)
		}
		return scraper.JobDetail{}, &RecordError{URL: url, Err: err}
	}
	return job, nil
}

func (e *Extractor) extract(ctx context.Context, page browser.Page, url string) (scraper.JobDetail, error) {
	//navigate, DOM parsed is enough
	if err := page.Goto(url, e.NavigationTimeout); err != nil {
		return scraper.JobDetail{}, e.classify(ctx, err, ErrNavigationTimeout)
	}

	//submit button means the detail layout has rendered
	if err := page.WaitForSelector(e.Selectors.ReadinessMarker, e.ReadinessTimeout); err != nil {
		return scraper.JobDetail{}, e.classify(ctx, err, ErrReadinessTimeout)
	}

	//timezone and content are both read from this post-readiness snapshot
	html, err := page.Content()
	if err != nil {
		return scraper.JobDetail{}, e.classify(ctx, err, nil)
	}
	return e.Parse(html)
}

// Parse reads a JobDetail from a rendered detail page snapshot
func (e *Extractor) Parse(html string) (scraper.JobDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scraper.JobDetail{}, fmt.Errorf("parse page: %w", err)
	}

	var job scraper.JobDetail

	//timezone is optional
	token := e.Selectors.TimezoneToken
	if token == "" {
		token = "timezone"
	}
	if tz, ok := locator.FindText(doc, token); ok {
		job.Timezone = &tz
	}

	//content container is structural, every detail page has it
	container := doc.Find(e.Selectors.ContentContainer).First()
	if container.Length() == 0 {
		return scraper.JobDetail{}, fmt.Errorf("%w: %s", ErrMissingContent, e.Selectors.ContentContainer)
	}
	content, err := container.Html()
	if err != nil {
		return scraper.JobDetail{}, fmt.Errorf("read content: %w", err)
	}
	if e.Sanitizer != nil {
		content = e.Sanitizer.Sanitize(content)
	}
	job.Content = content
	return job, nil
}

// classify picks the error reported for a failed step: the run's own cancellation
// wins, then a driver timeout becomes timeoutErr
func (e *Extractor) classify(ctx context.Context, err, timeoutErr error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if timeoutErr != nil && errors.Is(err, browser.ErrTimeout) {
		return fmt.Errorf("%w: %v", timeoutErr, err)
	}
	return err
}
