// Package widget models the console's page widgets on top of a minimal
// browser driver abstraction.
package widget

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Element is a located DOM element.
type Element interface {
	Click() error
	Text() (string, error)
	Value() (string, error)
	Input(text string) error
	Visible() bool
	Attribute(name string) (string, bool)
	Find(selector string) (Element, error)
	FindByText(selector, pattern string) (Element, error)
	FindAll(selector string) ([]Element, error)
}

// Driver is the browser page the widgets act on. Lookups that find nothing
// return a *CandidateNotFoundError.
type Driver interface {
	Find(selector string) (Element, error)
	FindByText(selector, pattern string) (Element, error)
	FindAll(selector string) ([]Element, error)
	Navigate(url string) error
	Reload() error
	// AcceptNextDialog arms acceptance of the next JavaScript dialog. Call
	// the returned func after the action that should raise it; it reports
	// ErrNoDialog when none appeared in time.
	AcceptNextDialog() (confirmed func() error, err error)
	Screenshot() ([]byte, error)
	URL() string
}

// ErrNoDialog is reported when an expected confirmation dialog never opened.
var ErrNoDialog = errors.New("expected a confirmation dialog, none appeared")

// CandidateNotFoundError signals that an expected on-page element is absent.
type CandidateNotFoundError struct {
	Candidate string
}

func (e *CandidateNotFoundError) Error() string {
	return fmt.Sprintf("candidate not found: %s", e.Candidate)
}

// NotFound builds a CandidateNotFoundError from path parts.
func NotFound(parts ...string) error {
	return &CandidateNotFoundError{Candidate: strings.Join(parts, " / ")}
}

// ExactText returns a pattern matching text exactly, for FindByText.
func ExactText(text string) string {
	return "^" + regexp.QuoteMeta(strings.TrimSpace(text)) + "$"
}
