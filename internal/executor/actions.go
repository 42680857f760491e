package executor

import (
	"fmt"
	"strings"
)

// Action types
const (
	ActionClick    = "click"
	ActionType     = "type"
	ActionSelect   = "select"
	ActionHover    = "hover"
	ActionScroll   = "scroll"
	ActionWait     = "wait"
	ActionNavigate = "navigate"
)

// Action represents a single browser automation action
type Action struct {
	Type     string `json:"action" yaml:"action"`                         // click, type, select, hover, scroll, wait, navigate
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"` // CSS selector for the target element
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`         // Text to type, item to select, or exact text of the click target
	X        int    `json:"x,omitempty" yaml:"x,omitempty"`               // X offset (for scroll)
	Y        int    `json:"y,omitempty" yaml:"y,omitempty"`               // Y offset (for scroll)
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`           // URL for navigate action
	Duration int    `json:"wait,omitempty" yaml:"wait,omitempty"`         // Wait duration in ms after action
}

// Validate checks that the action carries the fields its type needs.
func (a Action) Validate() error {
	switch a.Type {
	case ActionClick, ActionHover:
		if a.Selector == "" {
			return fmt.Errorf("%s: selector is required", a.Type)
		}
	case ActionType, ActionSelect:
		if a.Selector == "" || a.Text == "" {
			return fmt.Errorf("%s: selector and text are required", a.Type)
		}
	case ActionNavigate:
		if a.URL == "" {
			return fmt.Errorf("%s: url is required", a.Type)
		}
	case ActionScroll, ActionWait:
	default:
		return fmt.Errorf("unknown action type: %q", a.Type)
	}
	return nil
}

// Expand replaces {key} placeholders in the selector, text and URL.
func (a Action) Expand(vars map[string]string) Action {
	if len(vars) == 0 {
		return a
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	a.Selector = r.Replace(a.Selector)
	a.Text = r.Replace(a.Text)
	a.URL = r.Replace(a.URL)
	return a
}

// String renders the action on one line for progress output.
func (a Action) String() string {
	switch a.Type {
	case ActionType, ActionSelect:
		return fmt.Sprintf("%s → %s (text: %q)", a.Type, a.Selector, a.Text)
	case ActionWait:
		return fmt.Sprintf("%s → %dms", a.Type, a.Duration)
	case ActionNavigate:
		return fmt.Sprintf("%s → %s", a.Type, a.URL)
	case ActionScroll:
		return fmt.Sprintf("%s → (%d, %d)", a.Type, a.X, a.Y)
	}
	if a.Text != "" {
		return fmt.Sprintf("%s → %s %q", a.Type, a.Selector, a.Text)
	}
	return fmt.Sprintf("%s → %s", a.Type, a.Selector)
}
