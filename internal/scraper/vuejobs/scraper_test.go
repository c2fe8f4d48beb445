package vuejobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"remote-jobs-harvester/internal/browser"
	"remote-jobs-harvester/internal/browser/browsertest"
	"remote-jobs-harvester/internal/classifier"
	"remote-jobs-harvester/internal/detail"
	"remote-jobs-harvester/internal/filter"
	"remote-jobs-harvester/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	host       = "https://vuejobs.test"
	listingURL = host + "/jobs"
)

type memorySink struct {
	writes  int
	results scraper.ResultSet
}

func (m *memorySink) Write(results scraper.ResultSet) error {
	m.writes++
	m.results = results
	return nil
}

type listing struct {
	slug       string
	restricted bool
}

func listingPage(withFilters bool, jobs ...listing) string {
	var b strings.Builder
	b.WriteString(`<html><body><nav><a href="/">Home</a><a href="https://vuejobs.test/about">About</a></nav>`)
	if withFilters {
		b.WriteString(`<button role="switch"></button><div class="n-base-selection-tags"></div><div class="n-base-select-option">Full-time</div>`)
	}
	b.WriteString(`<ul>`)
	for _, j := range jobs {
		badge := `<img class="h-3" alt="Remote">`
		if j.restricted {
			badge = `<img class="h-3" alt="Flag of Germany">`
		}
		fmt.Fprintf(&b, `<li><a href="/jobs/%s"><span>%s</span>%s</a></li>`, j.slug, j.slug, badge)
	}
	b.WriteString(`</ul><a href="/companies/acme">Acme</a></body></html>`)
	return b.String()
}

func jobPage(slug string) string {
	return fmt.Sprintf(`<html><body>
		<div><span>Timezone</span><span>tz-%s</span></div>
		<div class="order-2 lg:order lg:col-span-5"><p>%s</p></div>
		<button class="u-btn px-6 text-lg" type="submit">Apply</button>
	</body></html>`, slug, slug)
}

func jobURL(slug string) string {
	return host + "/jobs/" + slug
}

func newScraper(site *browsertest.Site, sink Sink, workers int) *VueJobsScraper {
	filters := filter.NewController(filter.Selectors{
		RemoteToggle:     `button[role="switch"]`,
		EmploymentType:   ".n-base-selection-tags",
		EmploymentOption: ".n-base-select-option",
	}, filter.FixedDelay(0), 10*time.Millisecond)
	cls := &classifier.Classifier{LinkPrefix: "/jobs/", BadgeSelector: "img.h-3", FlagPrefix: "Flag of "}
	extractor := &detail.Extractor{
		Opener: site,
		Selectors: detail.Selectors{
			ReadinessMarker:  `button.u-btn.px-6.text-lg[type="submit"]`,
			ContentContainer: `.order-2.lg\:order.lg\:col-span-5`,
			TimezoneToken:    "timezone",
		},
		NavigationTimeout: 120 * time.Second,
		ReadinessTimeout:  10 * time.Millisecond,
	}
	return NewVueJobsScraper(site, filters, cls, extractor, sink, Options{
		ListingURL:        listingURL,
		NavigationTimeout: 120 * time.Second,
		Workers:           workers,
	})
}

func contents(results scraper.ResultSet) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Content
	}
	return out
}

func TestScrape_AllGlobalRemote(t *testing.T) {
	site := browsertest.NewSite()
	jobs := []listing{{slug: "a"}, {slug: "b", restricted: true}, {slug: "c"}, {slug: "d"}}
	site.Serve(listingURL, listingPage(true, jobs...))
	for _, j := range jobs {
		site.Serve(jobURL(j.slug), jobPage(j.slug))
	}

	sink := &memorySink{}
	s := newScraper(site, sink, 2)
	results, err := s.Scrape(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"<p>a</p>", "<p>c</p>", "<p>d</p>"}, contents(results))
	require.NotNil(t, results[0].Timezone)
	assert.Equal(t, "tz-a", *results[0].Timezone)

	assert.Equal(t, 1, sink.writes)
	assert.Equal(t, results, sink.results)
	assert.Equal(t, StageDone, s.Stage())

	sum := s.Summary()
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 4, sum.Discovered)
	assert.Equal(t, 3, sum.GlobalRemote)
	assert.Equal(t, 3, sum.Extracted)
	assert.Empty(t, sum.Skipped)

	//country restricted postings never reach the extractor
	assert.NotContains(t, site.Visits(), jobURL("b"))
	opened, closed, _ := site.Stats()
	assert.Equal(t, opened, closed)
}

func TestScrape_OrderIndependentOfCompletion(t *testing.T) {
	site := browsertest.NewSite()
	var jobs []listing
	for i := 0; i < 8; i++ {
		jobs = append(jobs, listing{slug: fmt.Sprintf("job%d", i)})
	}
	site.Serve(listingURL, listingPage(true, jobs...))
	for i, j := range jobs {
		site.Serve(jobURL(j.slug), jobPage(j.slug))
		//earlier jobs finish later
		site.Delay(jobURL(j.slug), time.Duration(len(jobs)-i)*5*time.Millisecond)
	}

	s := newScraper(site, &memorySink{}, 4)
	results, err := s.Scrape(context.Background())
	require.NoError(t, err)

	want := make([]string, len(jobs))
	for i, j := range jobs {
		want[i] = "<p>" + j.slug + "</p>"
	}
	assert.Equal(t, want, contents(results))

	_, _, maxOpen := site.Stats()
	assert.LessOrEqual(t, maxOpen, 4, "pool must bound concurrent pages")
}

func TestScrape_MissingContentIsSkipped(t *testing.T) {
	//scenario D
	site := browsertest.NewSite()
	jobs := []listing{{slug: "a"}, {slug: "broken"}, {slug: "c"}}
	site.Serve(listingURL, listingPage(true, jobs...))
	site.Serve(jobURL("a"), jobPage("a"))
	site.Serve(jobURL("broken"), `<html><body><button class="u-btn px-6 text-lg" type="submit">Apply</button></body></html>`)
	site.Serve(jobURL("c"), jobPage("c"))

	s := newScraper(site, &memorySink{}, 2)
	results, err := s.Scrape(context.Background())
	require.NoError(t, err)

	assert.Len(t, results, len(jobs)-1)
	assert.Equal(t, []string{"<p>a</p>", "<p>c</p>"}, contents(results))

	skipped := s.Summary().Skipped
	require.Len(t, skipped, 1)
	assert.Equal(t, jobURL("broken"), skipped[0].URL)
	assert.ErrorIs(t, skipped[0].Reason, detail.ErrMissingContent)
}

func TestScrape_NavigationTimeoutIsSkipped(t *testing.T) {
	//scenario E
	site := browsertest.NewSite()
	jobs := []listing{{slug: "slow"}, {slug: "ok"}}
	site.Serve(listingURL, listingPage(true, jobs...))
	site.FailNavigation(jobURL("slow"), browser.ErrTimeout)
	site.Serve(jobURL("ok"), jobPage("ok"))

	s := newScraper(site, &memorySink{}, 1)
	results, err := s.Scrape(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"<p>ok</p>"}, contents(results))
	skipped := s.Summary().Skipped
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0].Reason, detail.ErrNavigationTimeout)
}

func TestScrape_MissingFilterControlIsFatal(t *testing.T) {
	site := browsertest.NewSite()
	site.Serve(listingURL, listingPage(false, listing{slug: "a"}))
	site.Serve(jobURL("a"), jobPage("a"))

	sink := &memorySink{}
	s := newScraper(site, sink, 2)
	_, err := s.Scrape(context.Background())
	require.ErrorIs(t, err, filter.ErrControlNotFound)

	assert.Zero(t, sink.writes, "nothing is written for a failed run")
	assert.NotContains(t, site.Visits(), jobURL("a"))
	assert.Equal(t, StageInit, s.Stage())
	opened, closed, _ := site.Stats()
	assert.Equal(t, opened, closed)
}

func TestScrape_ListingNavigationFailureIsFatal(t *testing.T) {
	site := browsertest.NewSite()
	site.FailNavigation(listingURL, browser.ErrTimeout)

	_, err := newScraper(site, &memorySink{}, 2).Scrape(context.Background())
	require.ErrorIs(t, err, browser.ErrTimeout)
}

func TestScrape_DeadlineReleasesPages(t *testing.T) {
	site := browsertest.NewSite()
	var jobs []listing
	for i := 0; i < 6; i++ {
		jobs = append(jobs, listing{slug: fmt.Sprintf("job%d", i)})
	}
	site.Serve(listingURL, listingPage(true, jobs...))
	for _, j := range jobs {
		site.Serve(jobURL(j.slug), jobPage(j.slug))
		site.Delay(jobURL(j.slug), 100*time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	sink := &memorySink{}
	_, err := newScraper(site, sink, 2).Scrape(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, sink.writes)

	opened, closed, _ := site.Stats()
	assert.Equal(t, opened, closed, "in-flight pages are released on deadline")
	assert.Less(t, len(site.Visits()), len(jobs)+1, "remaining records are not started")
}

func TestScrape_PacedInDiscoveryOrder(t *testing.T) {
	site := browsertest.NewSite()
	jobs := []listing{{slug: "a"}, {slug: "b"}, {slug: "c"}}
	site.Serve(listingURL, listingPage(true, jobs...))
	for _, j := range jobs {
		site.Serve(jobURL(j.slug), jobPage(j.slug))
	}

	sink := &memorySink{}
	s := newScraper(site, sink, 2)
	s.opts.RequestsPerSecond = 20

	start := time.Now()
	results, err := s.Scrape(context.Background())
	require.NoError(t, err)

	//burst of one, then a page every 50ms
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, []string{"<p>a</p>", "<p>b</p>", "<p>c</p>"}, contents(results))
	assert.Equal(t, 1, sink.writes)
}

func TestScrape_PacingPastDeadlineIsFatal(t *testing.T) {
	site := browsertest.NewSite()
	jobs := []listing{{slug: "a"}, {slug: "b"}, {slug: "c"}}
	site.Serve(listingURL, listingPage(true, jobs...))
	for _, j := range jobs {
		site.Serve(jobURL(j.slug), jobPage(j.slug))
	}

	//the second slot is 2s away, past the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	sink := &memorySink{}
	s := newScraper(site, sink, 1)
	s.opts.RequestsPerSecond = 0.5

	_, err := s.Scrape(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "extraction interrupted")
	assert.Zero(t, sink.writes, "nothing is written")

	sum := s.Summary()
	assert.Equal(t, 1, sum.Extracted)
	var skipped []string
	for _, sk := range sum.Skipped {
		skipped = append(skipped, sk.URL)
	}
	assert.Equal(t, []string{jobURL("b"), jobURL("c")}, skipped, "records never started are named")
}

func TestScrape_RunsOnce(t *testing.T) {
	site := browsertest.NewSite()
	site.Serve(listingURL, listingPage(true))

	s := newScraper(site, &memorySink{}, 1)
	results, err := s.Scrape(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = s.Scrape(context.Background())
	assert.Error(t, err)
}

func TestAdvance_ForwardOnly(t *testing.T) {
	s := &VueJobsScraper{}
	require.NoError(t, s.advance(StageFiltered))
	assert.Error(t, s.advance(StageInit))
	assert.Error(t, s.advance(StageExtracting), "stages cannot be skipped")
	assert.Equal(t, StageFiltered, s.Stage())
}

func TestResolve(t *testing.T) {
	s := &VueJobsScraper{opts: Options{ListingURL: "https://vuejobs.com/jobs"}}
	assert.Equal(t, "https://vuejobs.com/jobs/senior-dev", s.resolve("/jobs/senior-dev"))
	assert.Equal(t, "https://vuejobs.com/jobs/x?ref=list", s.resolve("/jobs/x?ref=list"))
}

func TestCause(t *testing.T) {
	driverErr := errors.New("target closed")
	assert.Equal(t, driverErr, cause(context.Background(), driverErr))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, cause(ctx, driverErr), context.Canceled)
}
