// Define the interface for the listing scraper
// and the records it produces

package scraper

import (
	"context"
	"fmt"
)

// CandidateLink is a job detail link found on the listing page
type CandidateLink struct {
	Href           string
	IsGlobalRemote bool
}

// JobDetail is one extracted posting. Timezone is nil when the page has no timezone field.
type JobDetail struct {
	Timezone *string `json:"timezone,omitempty"`
	Content  string  `json:"content"`
}

// ResultSet keeps candidate discovery order
type ResultSet []JobDetail

// Skipped names a record that failed extraction
type Skipped struct {
	URL    string
	Reason error
}

// Summary is what a run reports once it is done
type Summary struct {
	RunID        string
	Discovered   int
	GlobalRemote int
	Extracted    int
	Skipped      []Skipped
}

func (s Summary) String() string {
	return fmt.Sprintf("run %s: discovered %d job links, %d global remote, %d extracted, %d skipped",
		s.RunID, s.Discovered, s.GlobalRemote, s.Extracted, len(s.Skipped))
}

// Scraper defines the interface a listing site implements
type Scraper interface {
	//Scrape runs the whole pipeline and returns the extracted records
	Scrape(ctx context.Context) (ResultSet, error)

	//Summary describes the last Scrape call
	Summary() Summary

	//Name is the site name
	Name() string
}
