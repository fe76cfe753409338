// Package browser drives a rendering engine to produce a stable, fully
// scrolled DOM for a listing page.
package browser

import "time"

// Profile describes how a site is loaded
type Profile struct {
	Name      string
	UserAgent string
	Locale    string
	// TimezoneID is an IANA zone such as "Asia/Tokyo"
	TimezoneID string

	// ConsentLabels are literal button labels tried in order
	ConsentLabels []string

	MaxScrolls        int
	ScrollSettle      time.Duration
	NavigationTimeout time.Duration
	IdleTimeout       time.Duration
}

// Page is one open rendering session. Close releases the page and the
// browser process behind it.
type Page interface {
	// Goto navigates and returns once the DOM content is loaded
	Goto(url string, timeout time.Duration) error

	// ClickButton clicks the first button whose text contains label.
	// It reports false when no such button exists.
	ClickButton(label string, timeout time.Duration) (bool, error)

	// ScrollToBottom scrolls by one document height
	ScrollToBottom() error

	// WaitForNetworkIdle blocks until the network is idle or timeout passes
	WaitForNetworkIdle(timeout time.Duration) error

	// Content returns the serialized rendered DOM
	Content() (string, error)

	Close() error
}

// Browser opens pages configured for a profile
type Browser interface {
	Open(profile Profile) (Page, error)
}
