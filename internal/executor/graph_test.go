package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/widget/widgettest"
)

const hostsGraph = `
entities:
  console:
    steps:
      LoggedIn:
        actions:
          - {action: navigate, url: "https://cfme.example.com"}
        displayed: {selector: "#navbar-user-menu"}
  host:
    steps:
      All:
        prerequisite: console/LoggedIn
        actions:
          - {action: click, selector: ".nav-pf-vertical > ul > li > a", text: Compute}
        displayed: {selector: "#explorer_title_text", text: "All Hosts"}
      Details:
        prerequisite: All
        actions:
          - {action: click, selector: "div.quadicon a[title=\"{name}\"]"}
        displayed: {selector: "#explorer_title_text", text: "{name} (Summary)"}
`

func TestGraphNavigation(t *testing.T) {
	g, err := ParseGraph([]byte(hostsGraph))
	require.NoError(t, err)

	reg := navigator.NewRegistry()
	require.NoError(t, g.Register(reg, Options{Logger: testr.New(t)}))
	assert.Equal(t, []navigator.EntityType{"console", "host"}, reg.EntityTypes())
	assert.Equal(t, []navigator.StepName{"All", "Details"}, reg.Steps("host"))

	page := widgettest.NewPage()
	page.Add("#navbar-user-menu", widgettest.NewElement("Administrator"))
	title := page.Add("#explorer_title_text", widgettest.NewElement(""))
	page.Add(".nav-pf-vertical > ul > li > a", widgettest.NewElement("Compute")).WithClick(func() error {
		title.SetText("All Hosts")
		return nil
	})
	page.Add(`div.quadicon a[title="esx1"]`, widgettest.NewElement("")).WithClick(func() error {
		title.SetText("esx1 (Summary)")
		return nil
	})

	console := &ScriptedEntity{Type: "console", Driver: page}
	host := &ScriptedEntity{
		Type:    "host",
		Name:    "esx1",
		Driver:  page,
		Related: map[navigator.EntityType]navigator.Entity{"console": console},
	}
	nav := navigator.New(reg, navigator.Options{MaxAttempts: 1, Logger: testr.New(t)})
	view, err := nav.NavigateTo(context.Background(), host, "Details")
	require.NoError(t, err)
	assert.True(t, view.IsDisplayed())
	assert.Equal(t, []string{"https://cfme.example.com"}, page.Visited)
}

func TestGraphStepNotDisplayed(t *testing.T) {
	g, err := ParseGraph([]byte(hostsGraph))
	require.NoError(t, err)
	reg := navigator.NewRegistry()
	require.NoError(t, g.Register(reg, Options{}))

	page := widgettest.NewPage()
	page.Add("#navbar-user-menu", widgettest.NewElement("Administrator"))
	page.Add("#explorer_title_text", widgettest.NewElement("Dashboard"))
	page.Add(".nav-pf-vertical > ul > li > a", widgettest.NewElement("Compute"))

	host := &ScriptedEntity{
		Type:    "host",
		Driver:  page,
		Related: map[navigator.EntityType]navigator.Entity{"console": &ScriptedEntity{Type: "console", Driver: page}},
	}
	nav := navigator.New(reg, navigator.Options{MaxAttempts: 2, RetryDelay: time.Millisecond})
	_, err = nav.NavigateTo(context.Background(), host, "All")
	var failed *navigator.NavigationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, navigator.StepName("All"), failed.Step)
}

func TestGraphMissingRelatedEntity(t *testing.T) {
	g, err := ParseGraph([]byte(hostsGraph))
	require.NoError(t, err)
	reg := navigator.NewRegistry()
	require.NoError(t, g.Register(reg, Options{}))

	nav := navigator.New(reg, navigator.Options{})
	_, err = nav.Path(&ScriptedEntity{Type: "host", Driver: widgettest.NewPage()}, "Details")
	require.Error(t, err)
}

func TestGraphRegisterConflicts(t *testing.T) {
	g, err := ParseGraph([]byte(hostsGraph))
	require.NoError(t, err)
	reg := navigator.NewRegistry()
	require.NoError(t, g.Register(reg, Options{}))

	var dup *navigator.DuplicateRegistrationError
	require.ErrorAs(t, g.Register(reg, Options{}), &dup)
}

func TestGraphRegisterIsAllOrNothing(t *testing.T) {
	g, err := ParseGraph([]byte(hostsGraph))
	require.NoError(t, err)
	reg := navigator.NewRegistry()
	reg.MustRegister("host", navigator.Step{
		Name:   "Details",
		Action: func(context.Context, navigator.View, navigator.Entity) (navigator.View, error) { return nil, nil },
	})

	var dup *navigator.DuplicateRegistrationError
	require.ErrorAs(t, g.Register(reg, Options{}), &dup)
	assert.Equal(t, navigator.EntityType("host"), dup.Entity)
	assert.Equal(t, navigator.StepName("Details"), dup.Step)
	assert.Equal(t, []navigator.StepName{"Details"}, reg.Steps("host"))
	assert.Empty(t, reg.Steps("console"))
}

func TestParseGraphRejectsInvalid(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"no steps":       "entities:\n  host: {}\n",
		"no actions":     "entities:\n  host:\n    steps:\n      All: {}\n",
		"bad action":     "entities:\n  host:\n    steps:\n      All:\n        actions: [{action: drag}]\n",
		"bad prereq":     "entities:\n  host:\n    steps:\n      All:\n        prerequisite: /LoggedIn\n        actions: [{action: wait}]\n",
		"no prereq step": "entities:\n  host:\n    steps:\n      All:\n        prerequisite: appliance/\n        actions: [{action: wait}]\n",
		"malformed yaml": "entities: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGraph([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestParseGraphRejectsRelatedWithoutStep(t *testing.T) {
	t.Parallel()
	doc := "entities:\n  host:\n    steps:\n      All:\n        prerequisite: appliance/\n        actions: [{action: wait}]\n"
	_, err := ParseGraph([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `malformed prerequisite "appliance/"`)
}

func TestLoadGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(hostsGraph), 0o600))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Len(t, g.Entities, 2)
	assert.Equal(t, "console/LoggedIn", g.Entities["host"].Steps["All"].Prerequisite)

	_, err = LoadGraph(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestScriptedViewWithoutSelectorIsDisplayed(t *testing.T) {
	t.Parallel()
	v := &ScriptedView{Driver: widgettest.NewPage()}
	assert.True(t, v.IsDisplayed())

	page := widgettest.NewPage()
	page.Add("#x", widgettest.NewElement("").Hide())
	v = &ScriptedView{Driver: page, Displayed: Displayed{Selector: "#x"}}
	assert.False(t, v.IsDisplayed())
}
