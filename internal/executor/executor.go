// Package executor runs scripted browser actions and turns YAML navigation
// graphs into registered navigation steps.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/v0xg/uinav/internal/widget"
)

// Options configures execution behavior
type Options struct {
	Delay  time.Duration // Pause after each action unless the action sets its own
	Logger logr.Logger
}

// Pointer is implemented by drivers that can move the mouse.
type Pointer interface {
	Hover(selector string) error
	Scroll(x, y int) error
}

// Run executes actions in order and stops at the first failure.
func Run(ctx context.Context, d widget.Driver, actions []Action, opts Options) error {
	log := opts.Logger.WithName("executor")
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.V(1).Info("action", "index", i+1, "of", len(actions), "action", action.String())
		if err := execute(ctx, d, action); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, action.Type, err)
		}

		pause := opts.Delay
		if action.Duration > 0 && action.Type != ActionWait {
			pause = time.Duration(action.Duration) * time.Millisecond
		}
		if err := sleep(ctx, pause); err != nil {
			return err
		}
	}
	return nil
}

func execute(ctx context.Context, d widget.Driver, action Action) error {
	switch action.Type {
	case ActionClick:
		el, err := find(d, action.Selector, action.Text)
		if err != nil {
			return err
		}
		return el.Click()
	case ActionType:
		el, err := d.Find(action.Selector)
		if err != nil {
			return err
		}
		return el.Input(action.Text)
	case ActionSelect:
		el, err := d.Find(action.Selector)
		if err != nil {
			return err
		}
		if err := el.Click(); err != nil {
			return err
		}
		item, err := d.FindByText(widget.DropdownItemSelector, widget.ExactText(action.Text))
		if err != nil {
			return widget.NotFound(action.Selector, action.Text)
		}
		return item.Click()
	case ActionHover:
		p, ok := d.(Pointer)
		if !ok {
			return fmt.Errorf("driver %T cannot hover", d)
		}
		return p.Hover(action.Selector)
	case ActionScroll:
		p, ok := d.(Pointer)
		if !ok {
			return fmt.Errorf("driver %T cannot scroll", d)
		}
		return p.Scroll(action.X, action.Y)
	case ActionWait:
		return sleep(ctx, time.Duration(action.Duration)*time.Millisecond)
	case ActionNavigate:
		return d.Navigate(action.URL)
	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

func find(d widget.Driver, selector, text string) (widget.Element, error) {
	if text == "" {
		return d.Find(selector)
	}
	return d.FindByText(selector, widget.ExactText(text))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
