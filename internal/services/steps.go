package services

import (
	"context"
	"fmt"

	"github.com/v0xg/uinav/internal/appliance"
	"github.com/v0xg/uinav/internal/navigator"
)

// Steps of the MyService navigation graph.
const (
	All           navigator.StepName = "All"
	Details       navigator.StepName = "Details"
	Edit          navigator.StepName = "Edit"
	SetOwnership  navigator.StepName = "SetOwnership"
	EditTags      navigator.StepName = "EditTags"
	SetRetirement navigator.StepName = "SetRetirement"
	Reconfigure   navigator.StepName = "Reconfigure"
)

// Register adds the MyService steps to reg. The All step depends on the
// appliance's LoggedIn step, so appliance.Register must be called as well.
func Register(reg *navigator.Registry) {
	reg.MustRegister(EntityType, navigator.Step{
		Name:         All,
		Prerequisite: navigator.Related(applianceOf, appliance.LoggedIn),
		Action:       openAll,
	})
	reg.MustRegister(EntityType, navigator.Step{
		Name:         Details,
		Prerequisite: navigator.Sibling(All),
		Action:       openDetails,
	})
	reg.MustRegister(EntityType, navigator.Step{
		Name:         Edit,
		Prerequisite: navigator.Sibling(Details),
		Action: fromDetails(func(v *DetailView, s *MyService) (navigator.View, error) {
			if err := v.Configuration.ItemSelect(v.Driver, "Edit this Service", false); err != nil {
				return nil, err
			}
			return newEditView(v.Driver, s.Name), nil
		}),
	})
	reg.MustRegister(EntityType, navigator.Step{
		Name:         SetOwnership,
		Prerequisite: navigator.Sibling(Details),
		Action: fromDetails(func(v *DetailView, s *MyService) (navigator.View, error) {
			if err := v.Configuration.ItemSelect(v.Driver, "Set Ownership", false); err != nil {
				return nil, err
			}
			return newSetOwnershipView(v.Driver, s.Name), nil
		}),
	})
	reg.MustRegister(EntityType, navigator.Step{
		Name:         EditTags,
		Prerequisite: navigator.Sibling(Details),
		Action: fromDetails(func(v *DetailView, s *MyService) (navigator.View, error) {
			if err := v.Policy.ItemSelect(v.Driver, "Edit Tags", false); err != nil {
				return nil, err
			}
			return newEditTagsView(v.Driver, s.Name), nil
		}),
	})
	reg.MustRegister(EntityType, navigator.Step{
		Name:         SetRetirement,
		Prerequisite: navigator.Sibling(Details),
		Action: fromDetails(func(v *DetailView, s *MyService) (navigator.View, error) {
			label := s.Appliance.Capabilities().RetirementMenuLabel()
			if err := v.Lifecycle.ItemSelect(v.Driver, label, false); err != nil {
				return nil, err
			}
			return newRetirementView(v.Driver, s.Name), nil
		}),
	})
	reg.MustRegister(EntityType, navigator.Step{
		Name:         Reconfigure,
		Prerequisite: navigator.Sibling(Details),
		Action: fromDetails(func(v *DetailView, s *MyService) (navigator.View, error) {
			if err := v.Configuration.ItemSelect(v.Driver, "Reconfigure this Service", false); err != nil {
				return nil, err
			}
			return newReconfigureView(v.Driver, s.Name), nil
		}),
	})
}

func applianceOf(entity navigator.Entity) navigator.Entity {
	s, ok := entity.(*MyService)
	if !ok || s.Appliance == nil {
		return nil
	}
	return s.Appliance
}

func asService(entity navigator.Entity) (*MyService, error) {
	s, ok := entity.(*MyService)
	if !ok {
		return nil, fmt.Errorf("services: unexpected entity %T", entity)
	}
	return s, nil
}

func openAll(_ context.Context, _ navigator.View, entity navigator.Entity) (navigator.View, error) {
	s, err := asService(entity)
	if err != nil {
		return nil, err
	}
	view := newMyServicesView(s.Appliance.Driver)
	if err := view.Navigation.Select(view.Driver, "Services", "My Services"); err != nil {
		return nil, err
	}
	return &view, nil
}

func openDetails(_ context.Context, prev navigator.View, entity navigator.Entity) (navigator.View, error) {
	s, err := asService(entity)
	if err != nil {
		return nil, err
	}
	list, ok := prev.(*MyServicesView)
	if !ok {
		return nil, fmt.Errorf("services: details expects the services list, got %T", prev)
	}
	root := s.Appliance.Capabilities().ServicesTreeRoot()
	if err := list.Tree.ClickPath(list.Driver, root, s.Name); err != nil {
		return nil, err
	}
	return newDetailView(list.Driver, s.Name), nil
}

// fromDetails adapts a form opener to a step action whose prerequisite is
// the details page.
func fromDetails(open func(*DetailView, *MyService) (navigator.View, error)) navigator.Action {
	return func(_ context.Context, prev navigator.View, entity navigator.Entity) (navigator.View, error) {
		s, err := asService(entity)
		if err != nil {
			return nil, err
		}
		details, ok := prev.(*DetailView)
		if !ok {
			return nil, fmt.Errorf("services: expected the details page, got %T", prev)
		}
		return open(details, s)
	}
}
