package widget

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DOM conventions of the console's PatternFly/ManageIQ markup.
const (
	ButtonSelector         = "button"
	DropdownButtonSelector = "div.btn-group > button"
	DropdownItemSelector   = "div.btn-group.open ul.dropdown-menu > li > a"
	RefreshSelector        = `button[title="Reload current display"]`
	QuadiconSelector       = "div.quadicon a"
	SummaryTableSelector   = "table.table"
)

// Text is a read-only text element.
type Text struct {
	Locator string
}

// Read returns the trimmed element text.
func (w Text) Read(d Driver) (string, error) {
	el, err := d.Find(w.Locator)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	return strings.TrimSpace(text), err
}

// Input is a text input located by its name attribute.
type Input struct {
	Name string
}

func (w Input) selector() string {
	return fmt.Sprintf(`input[name=%q]`, w.Name)
}

// Read returns the current input value.
func (w Input) Read(d Driver) (string, error) {
	el, err := d.Find(w.selector())
	if err != nil {
		return "", err
	}
	return el.Value()
}

// Fill sets the input to value and reports whether anything changed.
func (w Input) Fill(d Driver, value string) (bool, error) {
	el, err := d.Find(w.selector())
	if err != nil {
		return false, err
	}
	current, err := el.Value()
	if err != nil {
		return false, err
	}
	if current == value {
		return false, nil
	}
	if err := el.Input(value); err != nil {
		return false, fmt.Errorf("fill %s: %w", w.Name, err)
	}
	return true, nil
}

// Calendar is a date input.
type Calendar struct {
	Name string
}

// CalendarLayout is the date format the console's date pickers accept.
const CalendarLayout = "01/02/2006"

// Fill sets the date and reports whether anything changed.
func (w Calendar) Fill(d Driver, date time.Time) (bool, error) {
	return Input{Name: w.Name}.Fill(d, date.Format(CalendarLayout))
}

// BootstrapSelect is a bootstrap-select picker bound to a hidden <select>.
type BootstrapSelect struct {
	ID string
}

func (w BootstrapSelect) button() string {
	return fmt.Sprintf(`button[data-id=%q]`, w.ID)
}

// Selected returns the currently shown option text.
func (w BootstrapSelect) Selected(d Driver) (string, error) {
	el, err := d.Find(w.button())
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	return strings.TrimSpace(text), err
}

// Fill selects option by visible text and reports whether anything changed.
func (w BootstrapSelect) Fill(d Driver, option string) (bool, error) {
	current, err := w.Selected(d)
	if err != nil {
		return false, err
	}
	if current == option {
		return false, nil
	}
	btn, err := d.Find(w.button())
	if err != nil {
		return false, err
	}
	if err := btn.Click(); err != nil {
		return false, err
	}
	item, err := d.FindByText(w.button()+" ~ div.dropdown-menu li a", ExactText(option))
	if err != nil {
		return false, NotFound(w.ID, option)
	}
	if err := item.Click(); err != nil {
		return false, err
	}
	return true, nil
}

// Button is a button located by its caption.
type Button struct {
	Caption string
}

// Click presses the button.
func (w Button) Click(d Driver) error {
	el, err := d.FindByText(ButtonSelector, ExactText(w.Caption))
	if err != nil {
		return err
	}
	return el.Click()
}

// IsDisplayed reports whether the button is present and visible.
func (w Button) IsDisplayed(d Driver) bool {
	el, err := d.FindByText(ButtonSelector, ExactText(w.Caption))
	return err == nil && el.Visible()
}

// Dropdown is a toolbar button with a menu (Configuration, Policy, ...).
type Dropdown struct {
	Caption string
}

// IsDisplayed reports whether the dropdown button is visible.
func (w Dropdown) IsDisplayed(d Driver) bool {
	el, err := d.FindByText(DropdownButtonSelector, ExactText(w.Caption))
	return err == nil && el.Visible()
}

// ItemSelect opens the dropdown and clicks item. With handleAlert the
// confirmation dialog the item raises is accepted.
func (w Dropdown) ItemSelect(d Driver, item string, handleAlert bool) error {
	btn, err := d.FindByText(DropdownButtonSelector, ExactText(w.Caption))
	if err != nil {
		return NotFound(w.Caption)
	}
	if err := btn.Click(); err != nil {
		return fmt.Errorf("open dropdown %s: %w", w.Caption, err)
	}
	el, err := d.FindByText(DropdownItemSelector, ExactText(item))
	if err != nil {
		return NotFound(w.Caption, item)
	}
	if class, ok := el.Attribute("class"); ok && strings.Contains(class, "disabled") {
		return fmt.Errorf("dropdown %s: item %q is disabled", w.Caption, item)
	}
	var confirmed func() error
	if handleAlert {
		if confirmed, err = d.AcceptNextDialog(); err != nil {
			return err
		}
	}
	if err := el.Click(); err != nil {
		return err
	}
	if confirmed != nil {
		if err := confirmed(); err != nil {
			return fmt.Errorf("dropdown %s: item %q: %w", w.Caption, item, err)
		}
	}
	return nil
}

// Quadicon is a tile in a grid view.
type Quadicon struct {
	Name string
	Kind string
}

// Click opens the item behind the tile.
func (w Quadicon) Click(d Driver) error {
	el, err := d.Find(fmt.Sprintf("%s[title=%q]", QuadiconSelector, w.Name))
	if err != nil {
		return NotFound(w.Kind, w.Name)
	}
	return el.Click()
}

// SummaryFormItem reads field from the summary table titled table on a
// details page.
func SummaryFormItem(d Driver, table, field string) (string, error) {
	tbl, err := d.FindByText(SummaryTableSelector, regexp.QuoteMeta(table))
	if err != nil {
		return "", NotFound(table)
	}
	row, err := tbl.FindByText("tr", `^\s*`+regexp.QuoteMeta(field))
	if err != nil {
		return "", NotFound(table, field)
	}
	cell, err := row.Find("td + td")
	if err != nil {
		return "", NotFound(table, field)
	}
	text, err := cell.Text()
	return strings.TrimSpace(text), err
}

// Refresh reloads the current display via the toolbar, falling back to a
// full page reload when the toolbar has no reload button.
func Refresh(d Driver) error {
	el, err := d.Find(RefreshSelector)
	if err == nil && el.Visible() {
		return el.Click()
	}
	return d.Reload()
}
