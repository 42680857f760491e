package navigator

import (
	"fmt"
	"strings"
)

// UnknownStepError is returned when a step was never registered for an entity type.
type UnknownStepError struct {
	Entity EntityType
	Step   StepName
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("navigator: unknown step %s for %s", e.Step, e.Entity)
}

// DuplicateRegistrationError is returned when a step name is registered twice
// for the same entity type.
type DuplicateRegistrationError struct {
	Entity EntityType
	Step   StepName
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("navigator: step %s already registered for %s", e.Step, e.Entity)
}

// InvalidStepError is returned when a step cannot be registered as given.
type InvalidStepError struct {
	Entity EntityType
	Step   StepName
	Reason string
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("navigator: invalid step %q for %s: %s", e.Step, e.Entity, e.Reason)
}

// NavigationCycleError reports a prerequisite chain that loops back on itself.
type NavigationCycleError struct {
	Chain []string
}

func (e *NavigationCycleError) Error() string {
	return "navigator: prerequisite cycle " + strings.Join(e.Chain, " -> ")
}

// NavigationFailedError is returned when a step could not reach its page.
// Err holds the underlying action error, if any.
type NavigationFailedError struct {
	Entity EntityType
	Step   StepName
	Reason string
	Err    error
}

func (e *NavigationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navigator: %s/%s failed: %s: %v", e.Entity, e.Step, e.Reason, e.Err)
	}
	return fmt.Sprintf("navigator: %s/%s failed: %s", e.Entity, e.Step, e.Reason)
}

func (e *NavigationFailedError) Unwrap() error {
	return e.Err
}
