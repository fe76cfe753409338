package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation means the target page could not be loaded
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeSession means the rendering session could not be opened
	ErrorTypeSession ErrorType = "session"
	// ErrorTypeExtraction marks a container that yielded no usable record
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeTranslation represents translator backend failures
	ErrorTypeTranslation ErrorType = "translation"
	// ErrorTypeParsing represents unparsable content such as price text
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeSearch represents a failed marketplace search for one key
	ErrorTypeSearch ErrorType = "search"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeStorage represents export/import file errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError is the error type shared by every stage of a scrape
type ScrapeError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Site, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Site, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error ends the scrape invocation it happened in.
// Failures that prevent obtaining a DOM are fatal; failures while interpreting
// an obtained DOM are recovered where they occur.
func (e *ScrapeError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeNavigation, ErrorTypeSession, ErrorTypeConfiguration:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, site, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(site, url string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, site, fmt.Sprintf("failed to load %s", url), err)
}

// NewSession creates a new session error
func NewSession(site, message string, err error) *ScrapeError {
	return New(ErrorTypeSession, site, message, err)
}

// NewTranslation creates a new translation error
func NewTranslation(message string, err error) *ScrapeError {
	return New(ErrorTypeTranslation, "translator", message, err)
}

// NewExtraction creates an extraction error for a dropped container
func NewExtraction(site, message string) *ScrapeError {
	return New(ErrorTypeExtraction, site, message, nil)
}

// NewParsing creates a parsing error for text that held no usable value
func NewParsing(site, field, text string) *ScrapeError {
	return New(ErrorTypeParsing, site, fmt.Sprintf("no %s in %q", field, text), nil)
}

// NewSearch creates a new search error for one marketplace keyword
func NewSearch(site, keyword string, err error) *ScrapeError {
	return New(ErrorTypeSearch, site, fmt.Sprintf("search %q failed", keyword), err)
}

// NewCache creates a new cache error
func NewCache(message string, err error) *ScrapeError {
	return New(ErrorTypeCache, "cache", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, "publisher", message, err)
}

// NewStorage creates a new storage error
func NewStorage(message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, "storage", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
