// Package classifier decides whether a listing link is a globally remote job.
package classifier

import (
	"log"
	"strings"

	"remote-jobs-harvester/internal/browser"
	"remote-jobs-harvester/internal/scraper"
)

const (
	DefaultFlagPrefix = "Flag of "
	DefaultLinkPrefix = "/jobs/"
)

type Classifier struct {
	//LinkPrefix marks job detail hrefs, e.g. "/jobs/"
	LinkPrefix    string
	BadgeSelector string
	FlagPrefix    string
	Verbose       bool
}

// IsCountryRestricted reads every badge first and only then checks whether any is a flag.
// A badge that can't be read, or has no alt text, is not a flag.
func (c *Classifier) IsCountryRestricted(badges []browser.Badge) bool {
	prefix := c.FlagPrefix
	if prefix == "" {
		prefix = DefaultFlagPrefix
	}

	alts := make([]string, 0, len(badges))
	for i, b := range badges {
		alt, err := b.Alt()
		if err != nil {
			if c.Verbose {
				log.Printf("    ℹ️ Badge %d unreadable, counted as non-flag: %v", i, err)
			}
			continue
		}
		alts = append(alts, alt)
	}

	for _, alt := range alts {
		if strings.HasPrefix(alt, prefix) {
			return true
		}
	}
	return false
}

// Classify turns an anchor into a candidate. ok is false for anything that is not a job detail link.
func (c *Classifier) Classify(a browser.Anchor) (link scraper.CandidateLink, ok bool) {
	prefix := c.LinkPrefix
	if prefix == "" {
		prefix = DefaultLinkPrefix
	}

	href, err := a.Href()
	if err != nil || !strings.HasPrefix(href, prefix) {
		return scraper.CandidateLink{}, false
	}

	badges, err := a.Badges(c.BadgeSelector)
	if err != nil {
		log.Printf("    ⚠️ Could not read badges of %s, treating as global remote: %v", href, err)
		badges = nil
	}

	return scraper.CandidateLink{
		Href:           href,
		IsGlobalRemote: !c.IsCountryRestricted(badges),
	}, true
}
