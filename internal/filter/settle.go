package filter

import (
	"context"
	"fmt"
	"time"

	"remote-jobs-harvester/internal/browser"
)

// Settler blocks until the filtered list is ready to be read
type Settler interface {
	Wait(ctx context.Context, page browser.Page) error
}

// FixedDelay sleeps for a set duration. No readiness signal is checked.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context, _ browser.Page) error {
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SelectorSettle polls until Selector matches at least one element
type SelectorSettle struct {
	Selector string
	Interval time.Duration
	Timeout  time.Duration
}

func (s SelectorSettle) Wait(ctx context.Context, page browser.Page) error {
	interval, timeout := s.Interval, s.Timeout
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := page.Count(s.Selector)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", s.Selector, ctx.Err())
		}
	}
}

// NewSettler builds the strategy named by mode ("fixed" or "selector")
func NewSettler(mode string, delay time.Duration, selector string, interval, timeout time.Duration) (Settler, error) {
	switch mode {
	case "", "fixed":
		return FixedDelay(delay), nil
	case "selector":
		if selector == "" {
			return nil, fmt.Errorf("selector settle needs a selector")
		}
		return SelectorSettle{Selector: selector, Interval: interval, Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("unknown settle mode %q", mode)
	}
}
