// The slice of the browser the scraper actually drives.
// Everything outside this package talks to these interfaces, never to playwright directly.

package browser

import (
	"errors"
	"time"
)

var (
	//ErrTimeout wraps every driver timeout (navigation, waitForSelector, click)
	ErrTimeout = errors.New("browser timeout")
	//ErrNoAttribute is returned when an element does not carry the requested attribute
	ErrNoAttribute = errors.New("attribute not present")
)

// Opener hands out fresh pages on a shared browser session
type Opener interface {
	NewPage() (Page, error)
}

// Page is one browser tab. Close must be safe to call more than once.
type Page interface {
	//Goto navigates and waits until the DOM is parsed (not full resource load)
	Goto(url string, timeout time.Duration) error
	Count(selector string) (int, error)
	//Click clicks the first element matching selector
	Click(selector string) error
	WaitForSelector(selector string, timeout time.Duration) error
	//Anchors returns every <a> currently in the DOM, in document order
	Anchors() ([]Anchor, error)
	//Content returns the serialized DOM of the page
	Content() (string, error)
	Screenshot(path string) error
	Close() error
}

type Anchor interface {
	Href() (string, error)
	Badges(selector string) ([]Badge, error)
}

type Badge interface {
	Alt() (string, error)
}
