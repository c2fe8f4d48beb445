package main

import (
	"context"
	"fmt"
	"log"

	"remote-jobs-harvester/internal/browser"
	"remote-jobs-harvester/internal/config"
	"remote-jobs-harvester/utils"
)

// Opens the listing page once and reports what the scraper would see
func main() {
	fmt.Println("🌐 Testing Browser Manager...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	//create playwright manager
	pm, err := browser.NewPlaywright(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()
	fmt.Printf("✅ Playwright started (%s)\n", cfg.LaunchMode())

	page, err := pm.NewPage()
	if err != nil {
		log.Fatalf("Failed to create page: %v", err)
	}
	defer page.Close()

	fmt.Printf("🔍 Navigating to %s...\n", cfg.ListingURL)
	if err := page.Goto(cfg.ListingURL, cfg.NavigationTimeout); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}

	//check the filter controls are there
	for _, sel := range []string{cfg.Selectors.RemoteToggle, cfg.Selectors.EmploymentType} {
		n, err := page.Count(sel)
		if err != nil {
			log.Printf("⚠️ Count %s: %v", sel, err)
			continue
		}
		fmt.Printf("   %s: %d\n", sel, n)
	}

	anchors, err := page.Anchors()
	if err != nil {
		log.Fatalf("Failed to list anchors: %v", err)
	}
	fmt.Printf("✅ %d anchors on the page\n", len(anchors))

	//take screenshot
	if err := utils.NewScreenShotDebugger(cfg.ScreenshotsDir).CaptureAndLog(page, "listing", "Listing page"); err != nil {
		log.Printf("Failed to take screenshot: %v", err)
	}
	fmt.Println("✨ Test complete!")
}
