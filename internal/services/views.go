package services

import (
	"fmt"
	"slices"

	"github.com/v0xg/uinav/internal/appliance"
	"github.com/v0xg/uinav/internal/widget"
)

// Explorer title and the My Services tree.
const (
	TitleSelector = "#explorer_title_text"
	TreeSelector  = "#myservice_treebox"
)

// MyServicesView is the Services > My Services explorer.
type MyServicesView struct {
	appliance.LoggedInView

	Title         widget.Text
	Accordion     widget.Accordion
	Tree          widget.Tree
	Navigation    widget.Navigation
	Configuration widget.Dropdown
	Policy        widget.Dropdown
	Lifecycle     widget.Dropdown
	Download      widget.Dropdown
	Flash         widget.Flash
}

func newMyServicesView(d widget.Driver) MyServicesView {
	return MyServicesView{
		LoggedInView:  appliance.LoggedInView{Driver: d},
		Title:         widget.Text{Locator: TitleSelector},
		Accordion:     widget.Accordion{Name: "Services"},
		Tree:          widget.Tree{Locator: TreeSelector},
		Configuration: widget.Dropdown{Caption: "Configuration"},
		Policy:        widget.Dropdown{Caption: "Policy"},
		Lifecycle:     widget.Dropdown{Caption: "Lifecycle"},
		Download:      widget.Dropdown{Caption: "Download"},
	}
}

// InExplorer reports whether the My Services explorer is the current page.
func (v *MyServicesView) InExplorer() bool {
	return v.LoggedInView.IsDisplayed() &&
		slices.Equal(v.Navigation.CurrentlySelected(v.Driver), []string{"Services", "My Services"})
}

func (v *MyServicesView) IsDisplayed() bool {
	return v.InExplorer() && v.Configuration.IsDisplayed(v.Driver) && !v.Accordion.IsDimmed(v.Driver)
}

// titled reports whether the explorer shows a form or details page titled want.
func (v *MyServicesView) titled(want string) bool {
	if !v.InExplorer() || !v.Accordion.IsOpened(v.Driver) {
		return false
	}
	title, err := v.Title.Read(v.Driver)
	return err == nil && title == want
}

// DetailView is the summary page of one service.
type DetailView struct {
	MyServicesView
	Name string
}

func (v *DetailView) IsDisplayed() bool {
	return v.titled(fmt.Sprintf(`Service "%s"`, v.Name))
}

// EditView is the service edit form.
type EditView struct {
	MyServicesView
	Name string

	NameInput   widget.Input
	Description widget.Input
	Save        widget.Button
	Reset       widget.Button
	Cancel      widget.Button
}

func (v *EditView) IsDisplayed() bool {
	return v.titled(fmt.Sprintf(`Editing Service "%s"`, v.Name))
}

// SetOwnershipView is the ownership form.
type SetOwnershipView struct {
	MyServicesView
	Name string

	Owner widget.BootstrapSelect
	Group widget.BootstrapSelect
	Save  widget.Button
}

func (v *SetOwnershipView) IsDisplayed() bool {
	return v.titled(fmt.Sprintf(`Set Ownership of Service "%s"`, v.Name))
}

// EditTagsView is the tag assignment form.
type EditTagsView struct {
	MyServicesView
	Name string

	Tag   widget.BootstrapSelect
	Value widget.BootstrapSelect
	Save  widget.Button
}

func (v *EditTagsView) IsDisplayed() bool {
	return v.titled(fmt.Sprintf(`Edit Tags of Service "%s"`, v.Name))
}

// RetirementView is the retirement date form.
type RetirementView struct {
	MyServicesView
	Name string

	Date    widget.Calendar
	Warning widget.BootstrapSelect
	Save    widget.Button
}

func (v *RetirementView) IsDisplayed() bool {
	return v.titled(fmt.Sprintf(`retire Service "%s"`, v.Name))
}

// ReconfigureView is the service dialog resubmission form.
type ReconfigureView struct {
	MyServicesView
	Name string

	Save widget.Button
}

func (v *ReconfigureView) IsDisplayed() bool {
	return v.titled(fmt.Sprintf(`Reconfigure Service "%s"`, v.Name))
}

func newDetailView(d widget.Driver, name string) *DetailView {
	return &DetailView{MyServicesView: newMyServicesView(d), Name: name}
}

func newEditView(d widget.Driver, name string) *EditView {
	return &EditView{
		MyServicesView: newMyServicesView(d),
		Name:           name,
		NameInput:      widget.Input{Name: "name"},
		Description:    widget.Input{Name: "description"},
		Save:           widget.Button{Caption: "Save"},
		Reset:          widget.Button{Caption: "Reset"},
		Cancel:         widget.Button{Caption: "Cancel"},
	}
}

func newSetOwnershipView(d widget.Driver, name string) *SetOwnershipView {
	return &SetOwnershipView{
		MyServicesView: newMyServicesView(d),
		Name:           name,
		Owner:          widget.BootstrapSelect{ID: "user_name"},
		Group:          widget.BootstrapSelect{ID: "group_name"},
		Save:           widget.Button{Caption: "Save"},
	}
}

func newEditTagsView(d widget.Driver, name string) *EditTagsView {
	return &EditTagsView{
		MyServicesView: newMyServicesView(d),
		Name:           name,
		Tag:            widget.BootstrapSelect{ID: "tag_cat"},
		Value:          widget.BootstrapSelect{ID: "tag_add"},
		Save:           widget.Button{Caption: "Save"},
	}
}

func newRetirementView(d widget.Driver, name string) *RetirementView {
	return &RetirementView{
		MyServicesView: newMyServicesView(d),
		Name:           name,
		Date:           widget.Calendar{Name: "retirementDate"},
		Warning:        widget.BootstrapSelect{ID: "retirement_warn"},
		Save:           widget.Button{Caption: "Save"},
	}
}

func newReconfigureView(d widget.Driver, name string) *ReconfigureView {
	return &ReconfigureView{
		MyServicesView: newMyServicesView(d),
		Name:           name,
		Save:           widget.Button{Caption: "Save"},
	}
}
