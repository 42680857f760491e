package executor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/widget"
)

// Graph is a navigation graph defined in YAML:
//
//	entities:
//	  host:
//	    steps:
//	      All:
//	        prerequisite: appliance/LoggedIn
//	        actions:
//	          - {action: click, selector: ".nav-pf-vertical > ul > li > a", text: Compute}
//	        displayed: {selector: "#explorer_title_text", text: "All Hosts"}
//	      Details:
//	        prerequisite: All
//	        actions:
//	          - {action: click, selector: "div.quadicon a[title='{name}']"}
type Graph struct {
	Entities map[string]EntityDef `yaml:"entities"`
}

// EntityDef holds the steps of one scripted entity type.
type EntityDef struct {
	Steps map[string]StepDef `yaml:"steps"`
}

// StepDef is one scripted step. An empty prerequisite makes it a root;
// "Step" names a sibling and "entity/Step" a step on a related entity.
type StepDef struct {
	Prerequisite string    `yaml:"prerequisite,omitempty"`
	Actions      []Action  `yaml:"actions"`
	Displayed    Displayed `yaml:"displayed,omitempty"`
}

// Displayed decides whether a scripted step reached its page: the element
// must be visible and, if Text is set, read exactly Text.
type Displayed struct {
	Selector string `yaml:"selector,omitempty"`
	Text     string `yaml:"text,omitempty"`
}

// LoadGraph reads and validates a graph file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	return ParseGraph(data)
}

// ParseGraph parses and validates a graph document.
func ParseGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks every step definition.
func (g *Graph) Validate() error {
	for entity, def := range g.Entities {
		if len(def.Steps) == 0 {
			return fmt.Errorf("graph: entity %s has no steps", entity)
		}
		for name, step := range def.Steps {
			if len(step.Actions) == 0 {
				return fmt.Errorf("graph: %s/%s has no actions", entity, name)
			}
			for i, action := range step.Actions {
				if err := action.Validate(); err != nil {
					return fmt.Errorf("graph: %s/%s action %d: %w", entity, name, i+1, err)
				}
			}
			if related, target, ok := strings.Cut(step.Prerequisite, "/"); ok && (related == "" || target == "") {
				return fmt.Errorf("graph: %s/%s has malformed prerequisite %q", entity, name, step.Prerequisite)
			}
		}
	}
	return nil
}

// ScriptedEntity is an entity whose steps come from a Graph.
type ScriptedEntity struct {
	Type    navigator.EntityType
	Name    string
	Vars    map[string]string // Extra placeholders besides {name}
	Driver  widget.Driver
	Related map[navigator.EntityType]navigator.Entity
}

// EntityType implements navigator.Entity.
func (e *ScriptedEntity) EntityType() navigator.EntityType {
	return e.Type
}

func (e *ScriptedEntity) vars() map[string]string {
	vars := map[string]string{"name": e.Name}
	for k, v := range e.Vars {
		vars[k] = v
	}
	return vars
}

// ScriptedView is the page a scripted step lands on.
type ScriptedView struct {
	Driver    widget.Driver
	Displayed Displayed
}

func (v *ScriptedView) IsDisplayed() bool {
	if v.Displayed.Selector == "" {
		return true
	}
	el, err := v.Driver.Find(v.Displayed.Selector)
	if err != nil || !el.Visible() {
		return false
	}
	if v.Displayed.Text == "" {
		return true
	}
	text, err := el.Text()
	return err == nil && strings.TrimSpace(text) == v.Displayed.Text
}

// Register binds the graph's steps to reg. Entities navigated with these
// steps must be *ScriptedEntity values. Nothing is registered when any step
// is already taken.
func (g *Graph) Register(reg *navigator.Registry, opts Options) error {
	type entry struct {
		entity navigator.EntityType
		step   navigator.Step
	}
	var entries []entry
	for _, entity := range sortedKeys(g.Entities) {
		steps := g.Entities[entity].Steps
		for _, name := range sortedKeys(steps) {
			def := steps[name]
			entries = append(entries, entry{
				entity: navigator.EntityType(entity),
				step: navigator.Step{
					Name:         navigator.StepName(name),
					Prerequisite: prerequisite(def.Prerequisite),
					Action:       scriptedAction(def, opts),
				},
			})
		}
	}

	for _, e := range entries {
		if _, err := reg.Lookup(e.entity, e.step.Name); err == nil {
			return &navigator.DuplicateRegistrationError{Entity: e.entity, Step: e.step.Name}
		}
	}
	for _, e := range entries {
		if err := reg.Register(e.entity, e.step); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func prerequisite(ref string) navigator.Prerequisite {
	if ref == "" {
		return navigator.Root()
	}
	related, step, ok := strings.Cut(ref, "/")
	if !ok {
		return navigator.Sibling(navigator.StepName(ref))
	}
	relatedType := navigator.EntityType(related)
	return navigator.Related(func(e navigator.Entity) navigator.Entity {
		s, ok := e.(*ScriptedEntity)
		if !ok {
			return nil
		}
		rel, ok := s.Related[relatedType]
		if !ok {
			return nil
		}
		return rel
	}, navigator.StepName(step))
}

func scriptedAction(def StepDef, opts Options) navigator.Action {
	return func(ctx context.Context, _ navigator.View, entity navigator.Entity) (navigator.View, error) {
		e, ok := entity.(*ScriptedEntity)
		if !ok {
			return nil, fmt.Errorf("executor: scripted step run for %T", entity)
		}
		vars := e.vars()
		actions := make([]Action, len(def.Actions))
		for i, a := range def.Actions {
			actions[i] = a.Expand(vars)
		}
		if err := Run(ctx, e.Driver, actions, opts); err != nil {
			return nil, err
		}
		displayed := Displayed{
			Selector: Action{Selector: def.Displayed.Selector}.Expand(vars).Selector,
			Text:     Action{Text: def.Displayed.Text}.Expand(vars).Text,
		}
		return &ScriptedView{Driver: e.Driver, Displayed: displayed}, nil
	}
}
