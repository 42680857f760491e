package navigator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Hop is one step of a resolved path, bound to the entity it runs for.
type Hop struct {
	Entity Entity
	Step   Step
}

func (h Hop) String() string {
	return fmt.Sprintf("%s/%s", h.Entity.EntityType(), h.Step.Name)
}

// StepHook observes every step that reached its page.
type StepHook func(ctx context.Context, hop Hop, view View)

// Options configures the resolver's retry behavior.
type Options struct {
	MaxAttempts int           // Attempts per step before giving up
	RetryDelay  time.Duration // Pause between attempts
	StepTimeout time.Duration // Upper bound on time spent retrying one step
	Logger      logr.Logger   // Zero value discards
	Hooks       []StepHook
}

// Navigator resolves and executes navigation paths against a registry.
type Navigator struct {
	registry *Registry
	opts     Options
	log      logr.Logger
}

// New creates a navigator for registry.
func New(registry *Registry, opts Options) *Navigator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}
	if opts.StepTimeout == 0 {
		opts.StepTimeout = 30 * time.Second
	}
	return &Navigator{
		registry: registry,
		opts:     opts,
		log:      opts.Logger.WithName("navigator"),
	}
}

// Registry returns the registry the navigator resolves against.
func (n *Navigator) Registry() *Registry {
	return n.registry
}

// Path resolves the ordered root-to-target hops for entity's step.
func (n *Navigator) Path(entity Entity, name StepName) ([]Hop, error) {
	var reversed []Hop
	visited := make(map[stepKey]bool)
	var chain []string

	current, currentName := entity, name
	for {
		key := stepKey{entity: current.EntityType(), step: currentName}
		chain = append(chain, fmt.Sprintf("%s/%s", key.entity, key.step))
		if visited[key] {
			return nil, &NavigationCycleError{Chain: chain}
		}
		visited[key] = true

		step, err := n.registry.Lookup(key.entity, currentName)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, Hop{Entity: current, Step: step})

		prereq := step.Prerequisite
		if prereq.IsRoot() {
			break
		}
		if prereq.related != nil {
			related := prereq.related(current)
			if related == nil {
				return nil, fmt.Errorf("navigator: %s/%s has no related entity for prerequisite %s", key.entity, key.step, prereq.step)
			}
			current = related
		}
		currentName = prereq.step
	}

	path := make([]Hop, len(reversed))
	for i, hop := range reversed {
		path[len(reversed)-1-i] = hop
	}
	return path, nil
}

// NavigateTo executes every step from the root down to name and returns the
// view of the final step.
func (n *Navigator) NavigateTo(ctx context.Context, entity Entity, name StepName) (View, error) {
	path, err := n.Path(entity, name)
	if err != nil {
		return nil, err
	}
	n.log.V(1).Info("resolved path", "entity", entity.EntityType(), "step", name, "hops", len(path))

	var view View
	for _, hop := range path {
		view, err = n.runStep(ctx, hop, view)
		if err != nil {
			return nil, err
		}
		for _, hook := range n.opts.Hooks {
			hook(ctx, hop, view)
		}
	}
	return view, nil
}

// runStep performs hop's action until its view is displayed or the attempt
// budget runs out.
func (n *Navigator) runStep(ctx context.Context, hop Hop, prev View) (View, error) {
	deadline := time.Now().Add(n.opts.StepTimeout)
	entityType := hop.Entity.EntityType()

	for attempt := 1; ; attempt++ {
		n.log.V(1).Info("running step", "step", hop.String(), "attempt", attempt)

		view, err := hop.Step.Action(ctx, prev, hop.Entity)
		if err != nil {
			return nil, &NavigationFailedError{Entity: entityType, Step: hop.Step.Name, Reason: "action failed", Err: err}
		}
		if view != nil && view.IsDisplayed() {
			return view, nil
		}

		if attempt >= n.opts.MaxAttempts {
			return nil, &NavigationFailedError{
				Entity: entityType,
				Step:   hop.Step.Name,
				Reason: fmt.Sprintf("page not displayed after %d attempts", attempt),
			}
		}
		if time.Now().Add(n.opts.RetryDelay).After(deadline) {
			return nil, &NavigationFailedError{
				Entity: entityType,
				Step:   hop.Step.Name,
				Reason: fmt.Sprintf("page not displayed within %s", n.opts.StepTimeout),
			}
		}

		n.log.Info("page not displayed, retrying", "step", hop.String(), "attempt", attempt)
		select {
		case <-ctx.Done():
			return nil, &NavigationFailedError{Entity: entityType, Step: hop.Step.Name, Reason: "cancelled", Err: ctx.Err()}
		case <-time.After(n.opts.RetryDelay):
		}
	}
}
