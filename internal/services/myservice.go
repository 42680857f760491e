// Package services models Services > My Services: the page views, the
// navigation steps between them and the workflows run on a service.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/v0xg/uinav/internal/appliance"
	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/wait"
	"github.com/v0xg/uinav/internal/widget"
)

// EntityType is the navigation entity type of a service.
const EntityType navigator.EntityType = "MyService"

// Timeouts are the poll budgets of the asynchronous workflows.
type Timeouts struct {
	Retire            time.Duration
	RetireDelay       time.Duration
	RetireOnDate      time.Duration
	RetireOnDateDelay time.Duration
	VMRetire          time.Duration
	VMRetireDelay     time.Duration
}

// DefaultTimeouts returns the budgets a real appliance needs.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Retire:            10 * time.Minute,
		RetireDelay:       3 * time.Second,
		RetireOnDate:      5 * time.Minute,
		RetireOnDateDelay: 5 * time.Second,
		VMRetire:          120 * time.Minute,
		VMRetireDelay:     10 * time.Second,
	}
}

// MyService is a provisioned service as listed under My Services.
type MyService struct {
	Name        string
	Description string
	VMName      string // Optional VM the service owns
	Appliance   *appliance.Appliance
	Timeouts    Timeouts
}

// New returns a service on app with the default poll budgets.
func New(app *appliance.Appliance, name string) *MyService {
	return &MyService{Name: name, Appliance: app, Timeouts: DefaultTimeouts()}
}

// EntityType implements navigator.Entity.
func (s *MyService) EntityType() navigator.EntityType {
	return EntityType
}

func (s *MyService) driver() widget.Driver {
	return s.Appliance.Driver
}

func (s *MyService) log() logr.Logger {
	return s.Appliance.Logger().WithValues("service", s.Name)
}

// navigate walks to step and returns its view as V.
func navigate[V navigator.View](ctx context.Context, s *MyService, step navigator.StepName) (V, error) {
	var zero V
	view, err := s.Appliance.Navigator.NavigateTo(ctx, s, step)
	if err != nil {
		return zero, err
	}
	v, ok := view.(V)
	if !ok {
		return zero, fmt.Errorf("services: step %s returned %T", step, view)
	}
	return v, nil
}

// NavigateTo walks to any registered MyService step.
func (s *MyService) NavigateTo(ctx context.Context, step navigator.StepName) (navigator.View, error) {
	return s.Appliance.Navigator.NavigateTo(ctx, s, step)
}

// summaryEquals returns a predicate reading table/field from the details page.
func (s *MyService) summaryEquals(table, field, want string) func() (bool, error) {
	return func() (bool, error) {
		value, err := widget.SummaryFormItem(s.driver(), table, field)
		if err != nil {
			return false, err
		}
		return value == want, nil
	}
}

func (s *MyService) refresh() error {
	return widget.Refresh(s.driver())
}

// Retire retires the service now and waits until it reads "Retired". With a
// VM attached it then waits for the VM to power off as well.
func (s *MyService) Retire(ctx context.Context) error {
	view, err := navigate[*DetailView](ctx, s, Details)
	if err != nil {
		return err
	}
	if err := view.Lifecycle.ItemSelect(view.Driver, "Retire this Service", true); err != nil {
		return err
	}
	if s.Appliance.Capabilities().RetirementInitiatedFlash {
		msg := fmt.Sprintf("Retirement initiated for 1 Service from the %s Database", s.Appliance.ProductName)
		if err := view.Flash.AssertSuccessMessage(view.Driver, msg); err != nil {
			return err
		}
	}

	_, err = wait.For(ctx, s.summaryEquals("Lifecycle", "Retirement State", "Retired"),
		wait.WithFailFunc(s.refresh),
		wait.WithTimeout(s.Timeouts.Retire),
		wait.WithDelay(s.Timeouts.RetireDelay),
		wait.WithMessage("Service Retirement wait"),
		wait.WithLogger(s.log()),
	)
	if err != nil {
		return err
	}
	if s.VMName == "" {
		return nil
	}
	return s.checkVMRetired(ctx)
}

// RetireOnDate schedules retirement for date and waits until the service
// reads "Retiring". This leaves the browser on the VM details page when a VM
// is attached.
func (s *MyService) RetireOnDate(ctx context.Context, date time.Time) error {
	form, err := navigate[*RetirementView](ctx, s, SetRetirement)
	if err != nil {
		return err
	}
	if _, err := form.Date.Fill(form.Driver, date); err != nil {
		return err
	}
	if err := form.Save.Click(form.Driver); err != nil {
		return err
	}

	if _, err := navigate[*DetailView](ctx, s, Details); err != nil {
		return err
	}
	_, err = wait.For(ctx, s.summaryEquals("Lifecycle", "Retirement State", "Retiring"),
		wait.WithFailFunc(s.refresh),
		wait.WithTimeout(s.Timeouts.RetireOnDate),
		wait.WithDelay(s.Timeouts.RetireOnDateDelay),
		wait.WithMessage("Service Retirement"),
		wait.WithLogger(s.log()),
	)
	if err != nil {
		return err
	}
	if s.VMName == "" {
		return nil
	}
	return s.checkVMRetired(ctx)
}

func (s *MyService) checkVMRetired(ctx context.Context) error {
	state, err := s.WaitForVMRetire(ctx)
	if err != nil {
		return err
	}
	if state != "off" && state != "unknown" {
		return fmt.Errorf("services: vm %s power state %q after retirement", s.VMName, state)
	}
	return nil
}

// WaitForVMRetire opens the service's VM and waits until it is powered off.
// When the power state is unknown the VM's retirement state is checked
// instead. It returns the final power state.
func (s *MyService) WaitForVMRetire(ctx context.Context) (string, error) {
	if s.VMName == "" {
		return "", errors.New("services: no vm attached")
	}
	d := s.driver()
	if err := (widget.Quadicon{Name: s.VMName, Kind: "vm"}).Click(d); err != nil {
		return "", err
	}

	retired := func() (bool, error) {
		power, err := widget.SummaryFormItem(d, "Power Management", "Power State")
		if err != nil {
			return false, err
		}
		s.log().V(1).Info("vm power state", "vm", s.VMName, "state", power)
		if power == "unknown" {
			return s.summaryEquals("Lifecycle", "Retirement State", "Retired")()
		}
		return power == "off", nil
	}
	_, err := wait.For(ctx, retired,
		wait.WithFailFunc(s.refresh),
		wait.WithTimeout(s.Timeouts.VMRetire),
		wait.WithDelay(s.Timeouts.VMRetireDelay),
		wait.WithMessage("Service VM power off wait"),
		wait.WithLogger(s.log()),
	)
	if err != nil {
		return "", err
	}
	return widget.SummaryFormItem(d, "Power Management", "Power State")
}

// Update holds the editable service fields. Empty fields stay unchanged.
type Update struct {
	Name        string
	Description string
}

// Update edits the service. Nothing is saved when the form is unchanged.
func (s *MyService) Update(ctx context.Context, u Update) error {
	form, err := navigate[*EditView](ctx, s, Edit)
	if err != nil {
		return err
	}
	d := form.Driver

	changed := false
	if u.Name != "" {
		c, err := form.NameInput.Fill(d, u.Name)
		if err != nil {
			return err
		}
		changed = changed || c
	}
	if u.Description != "" {
		c, err := form.Description.Fill(d, u.Description)
		if err != nil {
			return err
		}
		changed = changed || c
	}
	if !changed {
		if err := form.Cancel.Click(d); err != nil {
			return err
		}
		if !newDetailView(d, s.Name).IsDisplayed() {
			return fmt.Errorf("services: details of %s not displayed after cancel", s.Name)
		}
		return nil
	}
	if err := form.Save.Click(d); err != nil {
		return err
	}

	name := s.Name
	if u.Name != "" {
		name = u.Name
	}
	details := newDetailView(d, name)
	if !details.IsDisplayed() {
		return fmt.Errorf("services: details of %s not displayed after saving", name)
	}
	if err := details.Flash.AssertSuccessMessage(d, fmt.Sprintf(`Service "%s" was saved`, name)); err != nil {
		return err
	}
	s.Name = name
	if u.Description != "" {
		s.Description = u.Description
	}
	return nil
}

// Exists reports whether the service can be opened. A service missing from
// the tree is reported as false; any other failure is returned.
func (s *MyService) Exists(ctx context.Context) (bool, error) {
	_, err := s.NavigateTo(ctx, Details)
	if err == nil {
		return true, nil
	}
	var notFound *widget.CandidateNotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

// Delete removes the service and checks the confirmation message.
func (s *MyService) Delete(ctx context.Context) error {
	view, err := navigate[*DetailView](ctx, s, Details)
	if err != nil {
		return err
	}
	label := s.Appliance.Capabilities().RemoveLabel()
	if err := view.Configuration.ItemSelect(view.Driver, label, true); err != nil {
		return err
	}

	list := newMyServicesView(view.Driver)
	if !list.IsDisplayed() {
		return errors.New("services: service list not displayed after delete")
	}
	if err := list.Flash.AssertNoError(list.Driver); err != nil {
		return err
	}
	name := s.Description
	if name == "" {
		name = s.Name
	}
	return list.Flash.AssertSuccessMessage(list.Driver, fmt.Sprintf(`Service "%s": Delete successful`, name))
}

// SetOwnership assigns owner and group.
func (s *MyService) SetOwnership(ctx context.Context, owner, group string) error {
	form, err := navigate[*SetOwnershipView](ctx, s, SetOwnership)
	if err != nil {
		return err
	}
	if _, err := form.Owner.Fill(form.Driver, owner); err != nil {
		return err
	}
	if _, err := form.Group.Fill(form.Driver, group); err != nil {
		return err
	}
	if err := form.Save.Click(form.Driver); err != nil {
		return err
	}
	return s.expectSaved(form.Driver, "Ownership saved for selected Service")
}

// EditTags assigns value of tag category tag.
func (s *MyService) EditTags(ctx context.Context, tag, value string) error {
	form, err := navigate[*EditTagsView](ctx, s, EditTags)
	if err != nil {
		return err
	}
	if _, err := form.Tag.Fill(form.Driver, tag); err != nil {
		return err
	}
	if _, err := form.Value.Fill(form.Driver, value); err != nil {
		return err
	}
	if err := form.Save.Click(form.Driver); err != nil {
		return err
	}
	return s.expectSaved(form.Driver, "Tag edits were successfully saved")
}

// expectSaved checks that a form returned to the details page with msg.
func (s *MyService) expectSaved(d widget.Driver, msg string) error {
	details := newDetailView(d, s.Name)
	if !details.IsDisplayed() {
		return fmt.Errorf("services: details of %s not displayed after saving", s.Name)
	}
	if err := details.Flash.AssertNoError(d); err != nil {
		return err
	}
	return details.Flash.AssertSuccessMessage(d, msg)
}

// CheckVMAdd opens vm from the service details and checks for errors.
func (s *MyService) CheckVMAdd(ctx context.Context, vm string) error {
	view, err := navigate[*DetailView](ctx, s, Details)
	if err != nil {
		return err
	}
	if err := (widget.Quadicon{Name: vm, Kind: "vm"}).Click(view.Driver); err != nil {
		return err
	}
	return view.Flash.AssertNoError(view.Driver)
}

// DownloadFile downloads the service list as ext ("Text", "CSV", "PDF").
func (s *MyService) DownloadFile(ctx context.Context, ext string) error {
	view, err := navigate[*MyServicesView](ctx, s, All)
	if err != nil {
		return err
	}
	if err := view.Download.ItemSelect(view.Driver, "Download as "+ext, false); err != nil {
		return err
	}
	return view.Flash.AssertNoError(view.Driver)
}
