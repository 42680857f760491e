// Package appliance models the console appliance under test: its address,
// credentials, version-dependent UI capabilities and the LoggedIn root step
// every other navigation starts from.
package appliance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"

	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/widget"
)

const (
	// EntityType is the navigation entity type of an appliance.
	EntityType navigator.EntityType = "appliance"

	// LoggedIn is the root step: the console is open with a user session.
	LoggedIn navigator.StepName = "LoggedIn"

	// DefaultProductName is used in flash messages when no product is configured.
	DefaultProductName = "ManageIQ"
)

// DOM conventions of the login page and the logged-in header.
const (
	UsernameField     = "user_name"
	PasswordField     = "user_password"
	LoginButton       = "Login"
	UserMenuSelector  = "#navbar-user-menu"
	LoginFormSelector = `input[name="user_name"]`
)

// Options configures an Appliance
type Options struct {
	URL         string
	Version     string // e.g. "5.9.2" or "5.9.2.4"
	ProductName string
	Username    string
	Password    string
	Driver      widget.Driver
	Navigator   *navigator.Navigator
	Logger      logr.Logger
}

// Appliance is the console under test. It is a navigation entity of its own
// so related entities can name LoggedIn as their prerequisite.
type Appliance struct {
	URL         string
	ProductName string
	Username    string
	Password    string
	Version     *semver.Version
	Driver      widget.Driver
	Navigator   *navigator.Navigator

	caps Capabilities
	log  logr.Logger
}

// New validates opts and resolves the appliance capabilities.
func New(opts Options) (*Appliance, error) {
	if opts.URL == "" {
		return nil, errors.New("appliance: URL is required")
	}
	if opts.Driver == nil {
		return nil, errors.New("appliance: driver is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("appliance: navigator is required")
	}
	version, err := ParseVersion(opts.Version)
	if err != nil {
		return nil, err
	}
	if opts.ProductName == "" {
		opts.ProductName = DefaultProductName
	}
	return &Appliance{
		URL:         opts.URL,
		ProductName: opts.ProductName,
		Username:    opts.Username,
		Password:    opts.Password,
		Version:     version,
		Driver:      opts.Driver,
		Navigator:   opts.Navigator,
		caps:        CapabilitiesFor(version),
		log:         opts.Logger.WithName("appliance"),
	}, nil
}

// EntityType implements navigator.Entity.
func (a *Appliance) EntityType() navigator.EntityType {
	return EntityType
}

// Capabilities returns the UI capabilities of this appliance's version.
func (a *Appliance) Capabilities() Capabilities {
	return a.caps
}

// Logger returns the appliance logger.
func (a *Appliance) Logger() logr.Logger {
	return a.log
}

// ParseVersion parses an appliance version. Builds carry a fourth component
// ("5.9.2.4") which is dropped.
func ParseVersion(s string) (*semver.Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return nil, errors.New("appliance: version is required")
	}
	if parts := strings.Split(s, "."); len(parts) > 3 {
		s = strings.Join(parts[:3], ".")
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("appliance: parse version %q: %w", s, err)
	}
	return v, nil
}

// LoggedInView is the console chrome shared by every page after login.
type LoggedInView struct {
	Driver widget.Driver
}

// IsDisplayed reports whether the user menu of a session is shown.
func (v *LoggedInView) IsDisplayed() bool {
	el, err := v.Driver.Find(UserMenuSelector)
	return err == nil && el.Visible()
}

// Register adds the appliance steps to reg.
func Register(reg *navigator.Registry) {
	reg.MustRegister(EntityType, navigator.Step{
		Name:         LoggedIn,
		Prerequisite: navigator.Root(),
		Action:       logIn,
	})
}

func logIn(ctx context.Context, _ navigator.View, entity navigator.Entity) (navigator.View, error) {
	a, ok := entity.(*Appliance)
	if !ok {
		return nil, fmt.Errorf("appliance: unexpected entity %T", entity)
	}
	d := a.Driver
	view := &LoggedInView{Driver: d}
	if view.IsDisplayed() {
		return view, nil
	}

	if err := d.Navigate(a.URL); err != nil {
		return nil, err
	}
	if _, err := d.Find(LoginFormSelector); err != nil {
		// Session still valid
		return view, nil
	}

	a.log.V(1).Info("logging in", "user", a.Username)
	if _, err := (widget.Input{Name: UsernameField}).Fill(d, a.Username); err != nil {
		return nil, fmt.Errorf("fill username: %w", err)
	}
	if _, err := (widget.Input{Name: PasswordField}).Fill(d, a.Password); err != nil {
		return nil, fmt.Errorf("fill password: %w", err)
	}
	if err := (widget.Button{Caption: LoginButton}).Click(d); err != nil {
		return nil, fmt.Errorf("submit login: %w", err)
	}
	return view, nil
}
