// Package navigator registers named navigation steps per entity type and
// resolves them into an ordered walk through the UI.
//
// Every step names one prerequisite (a sibling step on the same entity, a
// step on a related entity, or none for a root) and an action that turns the
// prerequisite's page view into its own. [Navigator.NavigateTo] follows the
// prerequisites back to a root and replays the actions forward.
package navigator

import (
	"context"
	"sort"
	"sync"
)

// EntityType identifies a family of entities sharing a navigation graph.
type EntityType string

// StepName identifies a step within an entity type's graph.
type StepName string

// View is a page view produced by a step. Widgets hang off the concrete type.
type View interface {
	IsDisplayed() bool
}

// Entity is the object a navigation is performed for.
type Entity interface {
	EntityType() EntityType
}

// Action drives the UI from prev (nil for root steps) to the step's page.
type Action func(ctx context.Context, prev View, entity Entity) (View, error)

// Prerequisite points at the step that has to run before a given step.
// The zero value means "no prerequisite".
type Prerequisite struct {
	step    StepName
	related func(Entity) Entity
}

// Root marks a step as an entry point.
func Root() Prerequisite {
	return Prerequisite{}
}

// Sibling makes step on the same entity the prerequisite.
func Sibling(step StepName) Prerequisite {
	return Prerequisite{step: step}
}

// Related makes step on the entity returned by related the prerequisite,
// e.g. the appliance's LoggedIn step for a service.
func Related(related func(Entity) Entity, step StepName) Prerequisite {
	return Prerequisite{step: step, related: related}
}

// IsRoot reports whether no prerequisite is set.
func (p Prerequisite) IsRoot() bool {
	return p.step == ""
}

// IsRelated reports whether the prerequisite runs on a related entity.
func (p Prerequisite) IsRelated() bool {
	return p.related != nil
}

// Step returns the name of the prerequisite step.
func (p Prerequisite) Step() StepName {
	return p.step
}

// Step is a registered navigation step.
type Step struct {
	Name         StepName
	Prerequisite Prerequisite
	Action       Action
}

type stepKey struct {
	entity EntityType
	step   StepName
}

// Registry holds step definitions. Build one at start-up and pass it around.
type Registry struct {
	mu    sync.RWMutex
	steps map[stepKey]Step
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{steps: make(map[stepKey]Step)}
}

// Register adds step for entity. Registering the same name twice fails, as
// does a step without a name or an action, or a related prerequisite that
// names no step.
func (r *Registry) Register(entity EntityType, step Step) error {
	invalid := func(reason string) error {
		return &InvalidStepError{Entity: entity, Step: step.Name, Reason: reason}
	}
	switch {
	case step.Name == "":
		return invalid("empty name")
	case step.Action == nil:
		return invalid("no action")
	case step.Prerequisite.IsRelated() && step.Prerequisite.IsRoot():
		return invalid("related prerequisite without a step")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := stepKey{entity: entity, step: step.Name}
	if _, ok := r.steps[key]; ok {
		return &DuplicateRegistrationError{Entity: entity, Step: step.Name}
	}
	r.steps[key] = step
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *Registry) MustRegister(entity EntityType, step Step) {
	if err := r.Register(entity, step); err != nil {
		panic(err)
	}
}

// Lookup returns the step registered under entity and name.
func (r *Registry) Lookup(entity EntityType, name StepName) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	step, ok := r.steps[stepKey{entity: entity, step: name}]
	if !ok {
		return Step{}, &UnknownStepError{Entity: entity, Step: name}
	}
	return step, nil
}

// Steps lists the step names registered for entity, sorted.
func (r *Registry) Steps(entity EntityType) []StepName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []StepName
	for key := range r.steps {
		if key.entity == entity {
			names = append(names, key.step)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// EntityTypes lists every entity type with at least one step, sorted.
func (r *Registry) EntityTypes() []EntityType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[EntityType]bool)
	var types []EntityType
	for key := range r.steps {
		if !seen[key.entity] {
			seen[key.entity] = true
			types = append(types, key.entity)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
