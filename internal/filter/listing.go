// Package filter applies the listing UI filters before links are enumerated.
package filter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"remote-jobs-harvester/internal/browser"
)

// ErrControlNotFound means a filter control never showed up. The run must stop:
// an unfiltered list would give wrong results, not partial ones.
var ErrControlNotFound = errors.New("filter control not found")

type Selectors struct {
	RemoteToggle     string
	EmploymentType   string
	EmploymentOption string
}

// State tracks which filters are already on. It lives for one run.
type State struct {
	RemoteApplied     bool
	EmploymentApplied bool
	Settled           bool
}

func (s State) Done() bool {
	return s.RemoteApplied && s.EmploymentApplied && s.Settled
}

type Controller struct {
	Selectors      Selectors
	Settle         Settler
	ControlTimeout time.Duration

	state State
}

func NewController(sel Selectors, settle Settler, controlTimeout time.Duration) *Controller {
	return &Controller{
		Selectors:      sel,
		Settle:         settle,
		ControlTimeout: controlTimeout,
	}
}

func (c *Controller) State() State {
	return c.state
}

// Apply turns on the remote toggle, picks the first employment type option and waits
// for the list to settle. Once it has succeeded further calls do nothing, since clicking
// the toggle again would switch it back off.
func (c *Controller) Apply(ctx context.Context, page browser.Page) error {
	if c.state.Done() {
		log.Println("    ℹ️ Filters already applied, skipping")
		return nil
	}

	//remote switch
	if !c.state.RemoteApplied {
		if err := c.press(ctx, page, c.Selectors.RemoteToggle); err != nil {
			return err
		}
		c.state.RemoteApplied = true
		log.Println("    🔘 Remote toggle on")
	}

	//employment type: open the selector and take the first option.
	//the first option is assumed to be "Full-time", nothing checks its label.
	if !c.state.EmploymentApplied {
		if err := c.press(ctx, page, c.Selectors.EmploymentType); err != nil {
			return err
		}
		if err := c.press(ctx, page, c.Selectors.EmploymentOption); err != nil {
			return err
		}
		c.state.EmploymentApplied = true
		log.Println("    🔽 Employment type filter applied (first option)")
	}

	//wait for list to re-render
	if c.Settle != nil {
		if err := c.Settle.Wait(ctx, page); err != nil {
			return fmt.Errorf("list did not settle: %w", err)
		}
	}
	c.state.Settled = true
	log.Println("    ✅ List settled")
	return nil
}

// press waits for selector then clicks it; a missing control becomes ErrControlNotFound
func (c *Controller) press(ctx context.Context, page browser.Page, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := page.WaitForSelector(selector, c.ControlTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return fmt.Errorf("%w: %s", ErrControlNotFound, selector)
		}
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	if err := page.Click(selector); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return fmt.Errorf("%w: %s", ErrControlNotFound, selector)
		}
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}
