package browser

import (
	"context"
	"fmt"
	"log"

	"remote-jobs-harvester/internal/config"

	"github.com/gofrs/flock"
	"github.com/playwright-community/playwright-go"
)

// PlaywrightManager owns the playwright driver and the shared browser session.
// Pages are handed out per caller; the session itself is shared.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	//bctx is set for the local persistent launch, browser for the remote connection
	bctx playwright.BrowserContext
	lock *flock.Flock
}

// NewPlaywright starts the driver and obtains a session using cfg.LaunchMode()
func NewPlaywright(ctx context.Context, cfg *config.Config) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	pm := &PlaywrightManager{pw: pw}

	switch cfg.LaunchMode() {
	case config.LaunchLocal:
		err = pm.launchLocal(cfg)
	default:
		err = pm.connectRemote(cfg)
	}
	if err != nil {
		pm.Close()
		return nil, err
	}
	return pm, nil
}

func (pm *PlaywrightManager) launchLocal(cfg *config.Config) error {
	//a chromium profile cannot be shared by two processes
	pm.lock = flock.New(cfg.UserDataDir + ".lock")
	locked, err := pm.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", cfg.UserDataDir, err)
	}
	if !locked {
		pm.lock = nil
		return fmt.Errorf("user data dir %s is in use by another run", cfg.UserDataDir)
	}

	log.Printf("🖥️ Launching local browser (profile: %s)", cfg.UserDataDir)
	bctx, err := pm.pw.Chromium.LaunchPersistentContext(cfg.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(false),
		Viewport: &playwright.Size{
			Width:  cfg.Viewport.Width,
			Height: cfg.Viewport.Height,
		},
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	pm.bctx = bctx
	return nil
}

func (pm *PlaywrightManager) connectRemote(cfg *config.Config) error {
	log.Printf("🌐 Connecting to remote browser at %s", cfg.RemoteHost)
	browser, err := pm.pw.Chromium.ConnectOverCDP(cfg.RemoteEndpoint(), playwright.BrowserTypeConnectOverCDPOptions{
		Timeout: playwright.Float(float64(cfg.ConnectTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("could not connect to remote browser: %w", err)
	}
	pm.browser = browser
	return nil
}

// NewPage opens a new tab on the shared session
func (pm *PlaywrightManager) NewPage() (Page, error) {
	var (
		page playwright.Page
		err  error
	)
	if pm.bctx != nil {
		page, err = pm.bctx.NewPage()
	} else if pm.browser != nil {
		page, err = pm.browser.NewPage()
	} else {
		return nil, fmt.Errorf("browser session is not open")
	}
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &playwrightPage{page: page}, nil
}

// Close tears down the session, the driver and the profile lock. Errors are logged.
func (pm *PlaywrightManager) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if pm.bctx != nil {
		keep(pm.bctx.Close())
		pm.bctx = nil
	}
	if pm.browser != nil {
		keep(pm.browser.Close())
		pm.browser = nil
	}
	if pm.pw != nil {
		keep(pm.pw.Stop())
		pm.pw = nil
	}
	if pm.lock != nil {
		keep(pm.lock.Unlock())
		pm.lock = nil
	}
	if firstErr != nil {
		log.Printf("⚠️ Error while closing browser: %v", firstErr)
	}
	return firstErr
}
