package appliance

import "github.com/Masterminds/semver/v3"

var (
	v57 = semver.MustParse("5.7.0")
	v58 = semver.MustParse("5.8.0")
)

// Capabilities are the version-dependent differences of the console UI.
// They are resolved once per appliance instead of comparing versions at
// every call site.
type Capabilities struct {
	// Services are listed under "Active Services" instead of "All Services".
	ActiveServicesTree bool
	// Retiring a service shows a "Retirement initiated" flash message.
	RetirementInitiatedFlash bool
	// The lifecycle menu reads "Set Retirement Date for this Service".
	LongRetirementMenuLabel bool
	// The delete item reads "Remove Service" instead of
	// "Remove Service from the VMDB".
	ShortRemoveLabel bool
}

// CapabilitiesFor resolves the capabilities of version v.
func CapabilitiesFor(v *semver.Version) Capabilities {
	return Capabilities{
		ActiveServicesTree:       v.GreaterThan(v58),
		RetirementInitiatedFlash: v.LessThan(v58),
		LongRetirementMenuLabel:  v.GreaterThan(v58),
		ShortRemoveLabel:         !v.LessThan(v57),
	}
}

// ServicesTreeRoot is the tree node services are listed under.
func (c Capabilities) ServicesTreeRoot() string {
	if c.ActiveServicesTree {
		return "Active Services"
	}
	return "All Services"
}

// RetirementMenuLabel is the lifecycle item opening the retirement form.
func (c Capabilities) RetirementMenuLabel() string {
	if c.LongRetirementMenuLabel {
		return "Set Retirement Date for this Service"
	}
	return "Set Retirement Date"
}

// RemoveLabel is the configuration item deleting a service.
func (c Capabilities) RemoveLabel() string {
	if c.ShortRemoveLabel {
		return "Remove Service"
	}
	return "Remove Service from the VMDB"
}
