package main

import (
	"context"
	"log"

	"remote-jobs-harvester/internal/browser"
	"remote-jobs-harvester/internal/classifier"
	"remote-jobs-harvester/internal/config"
	"remote-jobs-harvester/internal/detail"
	"remote-jobs-harvester/internal/filter"
	"remote-jobs-harvester/internal/output"
	"remote-jobs-harvester/internal/reporter"
	"remote-jobs-harvester/internal/scraper"
	"remote-jobs-harvester/internal/scraper/vuejobs"
	"remote-jobs-harvester/utils"
)

func main() {
	log.Println("🚀 Starting scraper")

	//load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("🔧 Config loaded. Mode: %s, workers: %d, output: %s", cfg.LaunchMode(), cfg.Workers, cfg.OutputPath)

	//optional telegram summary
	var tg *reporter.TelegramReporter
	if cfg.NotifyEnabled() {
		tg, err = reporter.NewTelegramReporter(cfg)
		if err != nil {
			log.Printf("⚠️ Telegram disabled: %v", err)
			tg = nil
		}
	}

	//whole run deadline
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)

	sum, err := run(ctx, cfg)
	cancel()
	if err != nil {
		if tg != nil {
			if sendErr := tg.SendError(err); sendErr != nil {
				log.Printf("⚠️ Failed to send error to Telegram: %v", sendErr)
			}
		}
		log.Fatalf("❌ Run failed: %v", err)
	}

	log.Printf("📊 %s", sum)
	for _, s := range sum.Skipped {
		log.Printf("   ⚠️ Skipped %s: %v", s.URL, s.Reason)
	}
	if tg != nil {
		if err := tg.SendSummary(sum, cfg.OutputPath); err != nil {
			log.Printf("⚠️ Failed to send summary to Telegram: %v", err)
		}
	}
	log.Println("🏁 Execution finished.")
}

// run owns the browser session; it is closed before main exits, on every path
func run(ctx context.Context, cfg *config.Config) (scraper.Summary, error) {
	pm, err := browser.NewPlaywright(ctx, cfg)
	if err != nil {
		return scraper.Summary{}, err
	}
	defer pm.Close()
	log.Println("✅ Browser connected")

	s, err := build(pm, cfg)
	if err != nil {
		return scraper.Summary{}, err
	}

	log.Printf("\n▶️ Starting scraper: %s", s.Name())
	if _, err := s.Scrape(ctx); err != nil {
		return s.Summary(), err
	}
	return s.Summary(), nil
}

func build(opener browser.Opener, cfg *config.Config) (scraper.Scraper, error) {
	settle, err := filter.NewSettler(cfg.Settle.Mode, cfg.Settle.Delay, cfg.Settle.Selector, cfg.Settle.Interval, cfg.Settle.Timeout)
	if err != nil {
		return nil, err
	}
	filters := filter.NewController(filter.Selectors{
		RemoteToggle:     cfg.Selectors.RemoteToggle,
		EmploymentType:   cfg.Selectors.EmploymentType,
		EmploymentOption: cfg.Selectors.EmploymentOption,
	}, settle, cfg.ControlTimeout)

	cls := &classifier.Classifier{
		LinkPrefix:    cfg.Selectors.JobLinkPrefix,
		BadgeSelector: cfg.Selectors.Badge,
		FlagPrefix:    cfg.Selectors.FlagPrefix,
	}

	extractor := &detail.Extractor{
		Opener: opener,
		Selectors: detail.Selectors{
			ReadinessMarker:  cfg.Selectors.ReadinessMarker,
			ContentContainer: cfg.Selectors.ContentContainer,
			TimezoneToken:    cfg.Selectors.TimezoneToken,
		},
		NavigationTimeout: cfg.NavigationTimeout,
		ReadinessTimeout:  cfg.ReadinessTimeout,
	}
	if cfg.SanitizeContent {
		extractor.Sanitizer = detail.NewContentSanitizer()
	}
	if cfg.DebugScreenshots {
		extractor.Screenshots = utils.NewScreenShotDebugger(cfg.ScreenshotsDir)
	}

	return vuejobs.NewVueJobsScraper(opener, filters, cls, extractor, output.NewJSONFile(cfg.OutputPath), vuejobs.Options{
		ListingURL:        cfg.ListingURL,
		NavigationTimeout: cfg.NavigationTimeout,
		Workers:           cfg.Workers,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}), nil
}
