package widget_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/uinav/internal/widget"
	"github.com/v0xg/uinav/internal/widget/widgettest"
)

func TestTreeClickPath(t *testing.T) {
	page := widgettest.NewPage()
	tree := page.Add("#myservice_treebox", widgettest.NewElement(""))
	active := tree.Add(widget.TreeNodeSelector, widgettest.NewElement("Active Services"))
	expander := active.Add(widget.TreeExpandSelector, widgettest.NewElement("").WithAttr("class", "expand-icon glyphicon glyphicon-plus"))
	svc := tree.Add(widget.TreeNodeSelector, widgettest.NewElement("svc1").Indent(1))

	err := widget.Tree{Locator: "#myservice_treebox"}.ClickPath(page, "Active Services", "svc1")
	require.NoError(t, err)
	assert.Equal(t, 1, expander.Clicks)
	assert.Equal(t, 1, svc.Clicks)
	assert.Zero(t, active.Clicks)
}

func TestTreeClickPathStaysUnderParent(t *testing.T) {
	page := widgettest.NewPage()
	tree := page.Add("#myservice_treebox", widgettest.NewElement(""))
	tree.Add(widget.TreeNodeSelector, widgettest.NewElement("Retired Services"))
	retired := tree.Add(widget.TreeNodeSelector, widgettest.NewElement("svc1").Indent(1))
	tree.Add(widget.TreeNodeSelector, widgettest.NewElement("Active Services"))
	tree.Add(widget.TreeNodeSelector, widgettest.NewElement("Web").Indent(1))
	nested := tree.Add(widget.TreeNodeSelector, widgettest.NewElement("svc1").Indent(2))
	active := tree.Add(widget.TreeNodeSelector, widgettest.NewElement("svc1").Indent(1))

	err := widget.Tree{Locator: "#myservice_treebox"}.ClickPath(page, "Active Services", "svc1")
	require.NoError(t, err)
	assert.Equal(t, 1, active.Clicks)
	assert.Zero(t, retired.Clicks)
	assert.Zero(t, nested.Clicks)
}

func TestTreeClickPathMissingNode(t *testing.T) {
	page := widgettest.NewPage()
	tree := page.Add("#myservice_treebox", widgettest.NewElement(""))
	tree.Add(widget.TreeNodeSelector, widgettest.NewElement("Active Services"))
	tree.Add(widget.TreeNodeSelector, widgettest.NewElement("Retired Services"))
	tree.Add(widget.TreeNodeSelector, widgettest.NewElement("nope").Indent(1))

	err := widget.Tree{Locator: "#myservice_treebox"}.ClickPath(page, "Active Services", "nope")
	var notFound *widget.CandidateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Active Services / nope", notFound.Candidate)
}

func TestDropdownItemSelect(t *testing.T) {
	page := widgettest.NewPage()
	btn := page.Add(widget.DropdownButtonSelector, widgettest.NewElement("Configuration"))
	item := page.Add(widget.DropdownItemSelector, widgettest.NewElement("Remove Service"))

	dd := widget.Dropdown{Caption: "Configuration"}
	assert.True(t, dd.IsDisplayed(page))
	require.NoError(t, dd.ItemSelect(page, "Remove Service", true))
	assert.Equal(t, 1, btn.Clicks)
	assert.Equal(t, 1, item.Clicks)
	assert.Equal(t, 1, page.DialogsAccepted)

	var notFound *widget.CandidateNotFoundError
	require.ErrorAs(t, dd.ItemSelect(page, "Missing", false), &notFound)
	require.ErrorAs(t, widget.Dropdown{Caption: "Policy"}.ItemSelect(page, "Edit Tags", false), &notFound)
}

func TestDropdownItemSelectWithoutDialog(t *testing.T) {
	page := widgettest.NewPage()
	page.NoDialogs = true
	page.Add(widget.DropdownButtonSelector, widgettest.NewElement("Lifecycle"))
	item := page.Add(widget.DropdownItemSelector, widgettest.NewElement("Retire this Service"))

	err := widget.Dropdown{Caption: "Lifecycle"}.ItemSelect(page, "Retire this Service", true)
	require.ErrorIs(t, err, widget.ErrNoDialog)
	assert.Equal(t, 1, item.Clicks)
	assert.Zero(t, page.DialogsAccepted)

	require.NoError(t, widget.Dropdown{Caption: "Lifecycle"}.ItemSelect(page, "Retire this Service", false))
}

func TestDropdownDisabledItem(t *testing.T) {
	page := widgettest.NewPage()
	page.Add(widget.DropdownButtonSelector, widgettest.NewElement("Lifecycle"))
	item := page.Add(widget.DropdownItemSelector, widgettest.NewElement("Retire this Service").WithAttr("class", "disabled"))

	err := widget.Dropdown{Caption: "Lifecycle"}.ItemSelect(page, "Retire this Service", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
	assert.Zero(t, item.Clicks)
}

func TestInputFillReportsChange(t *testing.T) {
	page := widgettest.NewPage()
	el := page.Add(`input[name="name"]`, widgettest.NewElement("").WithValue("svc1"))

	in := widget.Input{Name: "name"}
	changed, err := in.Fill(page, "svc1")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = in.Fill(page, "svc2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"svc2"}, el.Inputs)

	value, err := in.Read(page)
	require.NoError(t, err)
	assert.Equal(t, "svc2", value)
}

func TestCalendarFill(t *testing.T) {
	page := widgettest.NewPage()
	el := page.Add(`input[name="retirementDate"]`, widgettest.NewElement(""))

	changed, err := widget.Calendar{Name: "retirementDate"}.Fill(page, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"11/03/2026"}, el.Inputs)
}

func TestBootstrapSelectFill(t *testing.T) {
	page := widgettest.NewPage()
	btn := page.Add(`button[data-id="user_name"]`, widgettest.NewElement("<No Owner>"))
	opt := page.Add(`button[data-id="user_name"] ~ div.dropdown-menu li a`, widgettest.NewElement("Administrator"))

	sel := widget.BootstrapSelect{ID: "user_name"}
	changed, err := sel.Fill(page, "Administrator")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, btn.Clicks)
	assert.Equal(t, 1, opt.Clicks)

	_, err = sel.Fill(page, "Nobody")
	var notFound *widget.CandidateNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFlashAssertions(t *testing.T) {
	page := widgettest.NewPage()
	page.Add(widget.FlashMessageSelector, widgettest.NewElement(`Service "svc1" was saved`).WithAttr("class", "alert alert-success"))
	page.Add(widget.FlashMessageSelector, widgettest.NewElement("stale").WithAttr("class", "alert alert-danger").Hide())

	flash := widget.Flash{}
	require.NoError(t, flash.AssertSuccessMessage(page, `Service "svc1" was saved`))
	require.NoError(t, flash.AssertNoError(page))
	require.Error(t, flash.AssertSuccessMessage(page, "Ownership saved for selected Service"))

	page.Add(widget.FlashMessageSelector, widgettest.NewElement("Boom").WithAttr("class", "alert alert-danger"))
	err := flash.AssertNoError(page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Boom")
	assert.Len(t, flash.Messages(page), 2)
}

func TestSummaryFormItem(t *testing.T) {
	page := widgettest.NewPage()
	tbl := page.Add(widget.SummaryTableSelector, widgettest.NewElement("Lifecycle"))
	row := tbl.Add("tr", widgettest.NewElement("Retirement State"))
	row.Add("td + td", widgettest.NewElement(" Retired "))

	value, err := widget.SummaryFormItem(page, "Lifecycle", "Retirement State")
	require.NoError(t, err)
	assert.Equal(t, "Retired", value)

	_, err = widget.SummaryFormItem(page, "Power Management", "Power State")
	var notFound *widget.CandidateNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRefreshFallsBackToReload(t *testing.T) {
	page := widgettest.NewPage()
	require.NoError(t, widget.Refresh(page))
	assert.Equal(t, 1, page.Reloads)

	btn := page.Add(widget.RefreshSelector, widgettest.NewElement(""))
	require.NoError(t, widget.Refresh(page))
	assert.Equal(t, 1, btn.Clicks)
	assert.Equal(t, 1, page.Reloads)
}

func TestNavigationSelect(t *testing.T) {
	page := widgettest.NewPage()
	services := page.Add(widget.NavPrimarySelector, widgettest.NewElement("Services"))
	mine := page.Add(widget.NavSecondarySelector, widgettest.NewElement("My Services"))
	mine.WithClick(func() error {
		page.Add(widget.NavActiveSelector, widgettest.NewElement("Services"))
		page.Add(widget.NavActiveSelector, widgettest.NewElement("My Services"))
		return nil
	})

	nav := widget.Navigation{}
	require.NoError(t, nav.Select(page, "Services", "My Services"))
	assert.Equal(t, 1, services.Clicks)
	assert.Equal(t, []string{"Services", "My Services"}, nav.CurrentlySelected(page))

	var notFound *widget.CandidateNotFoundError
	require.ErrorAs(t, nav.Select(page, "Compute"), &notFound)
}

func TestAccordion(t *testing.T) {
	page := widgettest.NewPage()
	header := page.Add(widget.AccordionSelector, widgettest.NewElement("Services").WithAttr("class", "collapsed"))
	header.WithClick(func() error {
		header.WithAttr("class", "")
		return nil
	})

	acc := widget.Accordion{Name: "Services"}
	assert.False(t, acc.IsOpened(page))
	require.NoError(t, acc.Open(page))
	assert.True(t, acc.IsOpened(page))
	require.NoError(t, acc.Open(page))
	assert.Equal(t, 1, header.Clicks)
	assert.False(t, acc.IsDimmed(page))
}
