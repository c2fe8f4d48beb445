package vuejobs

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"remote-jobs-harvester/internal/browser"
	"remote-jobs-harvester/internal/classifier"
	"remote-jobs-harvester/internal/detail"
	"remote-jobs-harvester/internal/filter"
	"remote-jobs-harvester/internal/scraper"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Stage is where a run currently is. Runs only move forward.
type Stage int

const (
	StageInit Stage = iota
	StageFiltered
	StageEnumerated
	StageExtracting
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageFiltered:
		return "filtered"
	case StageEnumerated:
		return "enumerated"
	case StageExtracting:
		return "extracting"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Sink receives the finished result set once per run
type Sink interface {
	Write(results scraper.ResultSet) error
}

type Options struct {
	ListingURL        string
	NavigationTimeout time.Duration
	Workers           int
	//RequestsPerSecond paces detail page opens; 0 disables pacing
	RequestsPerSecond float64
}

type VueJobsScraper struct {
	opener     browser.Opener
	filters    *filter.Controller
	classifier *classifier.Classifier
	extractor  *detail.Extractor
	sink       Sink
	opts       Options

	stage   Stage
	summary scraper.Summary
}

func NewVueJobsScraper(opener browser.Opener, filters *filter.Controller, cls *classifier.Classifier,
	extractor *detail.Extractor, sink Sink, opts Options) *VueJobsScraper {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &VueJobsScraper{
		opener:     opener,
		filters:    filters,
		classifier: cls,
		extractor:  extractor,
		sink:       sink,
		opts:       opts,
	}
}

func (s *VueJobsScraper) Name() string {
	return "VueJobs"
}

func (s *VueJobsScraper) Stage() Stage {
	return s.stage
}

func (s *VueJobsScraper) Summary() scraper.Summary {
	return s.summary
}

func (s *VueJobsScraper) advance(next Stage) error {
	if next != s.stage+1 {
		return fmt.Errorf("invalid stage transition %s -> %s", s.stage, next)
	}
	log.Printf("  ▶️ Stage: %s -> %s", s.stage, next)
	s.stage = next
	return nil
}

// Scrape runs filter -> enumerate -> extract -> write. Record failures are skipped;
// failures of a whole stage end the run with nothing written.
func (s *VueJobsScraper) Scrape(ctx context.Context) (scraper.ResultSet, error) {
	if s.stage != StageInit {
		return nil, fmt.Errorf("scraper already ran (stage %s)", s.stage)
	}
	s.summary = scraper.Summary{RunID: uuid.NewString()}
	log.Printf("📋 [%s] Run %s on %s", s.Name(), s.summary.RunID, s.opts.ListingURL)

	candidates, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.advance(StageExtracting); err != nil {
		return nil, err
	}
	results, err := s.extractAll(ctx, candidates)
	if err != nil {
		return nil, err
	}

	if err := s.advance(StageDone); err != nil {
		return nil, err
	}
	if s.sink != nil {
		if err := s.sink.Write(results); err != nil {
			return results, fmt.Errorf("write results: %w", err)
		}
	}
	return results, nil
}

// discover filters the listing and returns the global remote links in document order.
// The listing page is closed before any detail page is opened.
func (s *VueJobsScraper) discover(ctx context.Context) ([]scraper.CandidateLink, error) {
	page, err := s.opener.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open listing page: %w", err)
	}
	defer page.Close()
	stop := context.AfterFunc(ctx, func() { page.Close() })
	defer stop()

	//navigate
	if err := page.Goto(s.opts.ListingURL, s.opts.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("load listing: %w", cause(ctx, err))
	}
	log.Println("    📄 Listing page loaded")

	if err := s.filters.Apply(ctx, page); err != nil {
		return nil, fmt.Errorf("apply filters: %w", cause(ctx, err))
	}
	if err := s.advance(StageFiltered); err != nil {
		return nil, err
	}

	//check all links and keep the job detail ones
	anchors, err := page.Anchors()
	if err != nil {
		return nil, fmt.Errorf("enumerate links: %w", cause(ctx, err))
	}
	candidates := s.enumerate(anchors)
	if err := s.advance(StageEnumerated); err != nil {
		return nil, err
	}
	log.Printf("    📦 Found %d job links, %d global remote", s.summary.Discovered, s.summary.GlobalRemote)
	return candidates, nil
}

func (s *VueJobsScraper) enumerate(anchors []browser.Anchor) []scraper.CandidateLink {
	var global []scraper.CandidateLink
	for _, a := range anchors {
		link, ok := s.classifier.Classify(a)
		if !ok {
			continue
		}
		s.summary.Discovered++
		if !link.IsGlobalRemote {
			continue
		}
		s.summary.GlobalRemote++
		global = append(global, link)
	}
	return global
}

type outcome struct {
	index int
	url   string
	job   scraper.JobDetail
	err   error
}

// extractAll fetches every candidate with a bounded pool. Workers only send outcomes;
// this goroutine is the single writer and rebuilds discovery order by index.
func (s *VueJobsScraper) extractAll(ctx context.Context, candidates []scraper.CandidateLink) (scraper.ResultSet, error) {
	var limiter *rate.Limiter
	if s.opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.RequestsPerSecond), 1)
	}

	outcomes := make(chan outcome)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	//set before outcomes is closed, read after it is drained
	var poolErr error
	go func() {
		defer close(outcomes)
		for i, c := range candidates {
			i := i
			target := s.resolve(c.Href)
			//stop handing out work once the run is cancelled
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if limiter != nil {
					//fails early when the next slot lands past the deadline
					if err := limiter.Wait(gctx); err != nil {
						return fmt.Errorf("pace %s: %w", target, err)
					}
				}
				log.Printf("    🔍 Fetching job details from %s", target)
				job, err := s.extractor.Extract(gctx, target)
				outcomes <- outcome{index: i, url: target, job: job, err: err}
				//only cancellation is fatal, record errors are reported through outcomes
				if err != nil && gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			})
		}
		poolErr = g.Wait()
	}()

	slots := make([]*scraper.JobDetail, len(candidates))
	seen := make([]bool, len(candidates))
	for o := range outcomes {
		seen[o.index] = true
		if o.err != nil {
			s.summary.Skipped = append(s.summary.Skipped, scraper.Skipped{URL: o.url, Reason: o.err})
			log.Printf("    ⚠️ Skipped %s: %v", o.url, o.err)
			continue
		}
		job := o.job
		slots[o.index] = &job
		s.summary.Extracted++
		log.Printf("      ✅ Job details fetched: %s", o.url)
	}

	err := ctx.Err()
	if err == nil {
		err = poolErr
	}
	if err != nil {
		//name every record that never produced an outcome
		for i, c := range candidates {
			if !seen[i] {
				target := s.resolve(c.Href)
				s.summary.Skipped = append(s.summary.Skipped, scraper.Skipped{URL: target, Reason: err})
				log.Printf("    ⚠️ Not started %s: %v", target, err)
			}
		}
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}

	results := make(scraper.ResultSet, 0, s.summary.Extracted)
	for _, job := range slots {
		if job != nil {
			results = append(results, *job)
		}
	}
	return results, nil
}

// resolve makes a listing href absolute, /jobs/x -> https://host/jobs/x
func (s *VueJobsScraper) resolve(href string) string {
	base, err := url.Parse(s.opts.ListingURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// cause reports the run's cancellation instead of the driver error it triggered
func cause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
