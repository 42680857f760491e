package navigator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceType EntityType = "service"

type testEntity struct {
	kind   EntityType
	name   string
	parent *testEntity
}

func (e *testEntity) EntityType() EntityType { return e.kind }

type testView struct {
	name      string
	prev      View
	displayed bool
}

func (v *testView) IsDisplayed() bool { return v.displayed }

// recordingAction returns an action that appends name to calls and produces
// a displayed view chained to its prerequisite.
func recordingAction(name string, calls *[]string) Action {
	return func(_ context.Context, prev View, _ Entity) (View, error) {
		*calls = append(*calls, name)
		return &testView{name: name, prev: prev, displayed: true}, nil
	}
}

func newTestNavigator(t *testing.T, reg *Registry) *Navigator {
	return New(reg, Options{
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		StepTimeout: time.Second,
		Logger:      testr.New(t),
	})
}

func TestNavigateToEditRunsStepsInOrder(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.MustRegister(serviceType, Step{Name: "All", Prerequisite: Root(), Action: recordingAction("All", &calls)})
	reg.MustRegister(serviceType, Step{Name: "Details", Prerequisite: Sibling("All"), Action: recordingAction("Details", &calls)})
	reg.MustRegister(serviceType, Step{Name: "Edit", Prerequisite: Sibling("Details"), Action: recordingAction("Edit", &calls)})

	nav := newTestNavigator(t, reg)
	view, err := nav.NavigateTo(context.Background(), &testEntity{kind: serviceType, name: "svc1"}, "Edit")
	require.NoError(t, err)

	assert.Equal(t, []string{"All", "Details", "Edit"}, calls)
	edit := view.(*testView)
	assert.True(t, edit.IsDisplayed())
	assert.Equal(t, "Edit", edit.name)
	details := edit.prev.(*testView)
	assert.Equal(t, "Details", details.name)
	assert.Equal(t, "All", details.prev.(*testView).name)
	assert.Nil(t, details.prev.(*testView).prev, "root step receives no prerequisite view")
}

func TestPathIsDeterministic(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.MustRegister(serviceType, Step{Name: "All", Action: recordingAction("All", &calls)})
	reg.MustRegister(serviceType, Step{Name: "Details", Prerequisite: Sibling("All"), Action: recordingAction("Details", &calls)})
	reg.MustRegister(serviceType, Step{Name: "Edit", Prerequisite: Sibling("Details"), Action: recordingAction("Edit", &calls)})
	reg.MustRegister(serviceType, Step{Name: "EditTags", Prerequisite: Sibling("Details"), Action: recordingAction("EditTags", &calls)})

	nav := newTestNavigator(t, reg)
	entity := &testEntity{kind: serviceType, name: "svc1"}

	first, err := nav.Path(entity, "EditTags")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := nav.Path(entity, "EditTags")
		require.NoError(t, err)
		assert.Equal(t, hopNames(first), hopNames(again))
	}
	assert.Equal(t, []string{"service/All", "service/Details", "service/EditTags"}, hopNames(first))
}

func TestRelatedPrerequisiteRunsFirst(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.MustRegister("server", Step{Name: "LoggedIn", Action: recordingAction("LoggedIn", &calls)})
	reg.MustRegister(serviceType, Step{
		Name: "All",
		Prerequisite: Related(func(e Entity) Entity {
			return e.(*testEntity).parent
		}, "LoggedIn"),
		Action: recordingAction("All", &calls),
	})

	server := &testEntity{kind: "server", name: "appliance"}
	svc := &testEntity{kind: serviceType, name: "svc1", parent: server}

	nav := newTestNavigator(t, reg)
	path, err := nav.Path(svc, "All")
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Same(t, server, path[0].Entity)
	assert.Same(t, svc, path[1].Entity)

	_, err = nav.NavigateTo(context.Background(), svc, "All")
	require.NoError(t, err)
	assert.Equal(t, []string{"LoggedIn", "All"}, calls)
}

func TestRelatedPrerequisiteWithoutEntity(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(serviceType, Step{
		Name:         "All",
		Prerequisite: Related(func(Entity) Entity { return nil }, "LoggedIn"),
		Action:       recordingAction("All", new([]string)),
	})

	_, err := newTestNavigator(t, reg).Path(&testEntity{kind: serviceType}, "All")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no related entity")
}

func TestUnknownStep(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(serviceType, Step{Name: "Details", Prerequisite: Sibling("All"), Action: recordingAction("Details", new([]string))})

	nav := newTestNavigator(t, reg)

	_, err := nav.NavigateTo(context.Background(), &testEntity{kind: serviceType}, "Missing")
	var unknown *UnknownStepError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, StepName("Missing"), unknown.Step)

	// A dangling prerequisite is reported the same way.
	_, err = nav.Path(&testEntity{kind: serviceType}, "Details")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, StepName("All"), unknown.Step)
}

func TestNavigationCycle(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(serviceType, Step{Name: "A", Prerequisite: Sibling("B"), Action: recordingAction("A", new([]string))})
	reg.MustRegister(serviceType, Step{Name: "B", Prerequisite: Sibling("A"), Action: recordingAction("B", new([]string))})

	_, err := newTestNavigator(t, reg).NavigateTo(context.Background(), &testEntity{kind: serviceType}, "A")
	var cycle *NavigationCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"service/A", "service/B", "service/A"}, cycle.Chain)
}

func TestStepRetriedUntilDisplayed(t *testing.T) {
	reg := NewRegistry()
	attempts := 0
	reg.MustRegister(serviceType, Step{Name: "All", Action: func(context.Context, View, Entity) (View, error) {
		attempts++
		return &testView{name: "All", displayed: attempts == 2}, nil
	}})

	view, err := newTestNavigator(t, reg).NavigateTo(context.Background(), &testEntity{kind: serviceType}, "All")
	require.NoError(t, err)
	assert.True(t, view.IsDisplayed())
	assert.Equal(t, 2, attempts)
}

func TestStepFailsAfterMaxAttempts(t *testing.T) {
	reg := NewRegistry()
	attempts := 0
	reg.MustRegister(serviceType, Step{Name: "All", Action: func(context.Context, View, Entity) (View, error) {
		attempts++
		return &testView{name: "All"}, nil
	}})

	_, err := newTestNavigator(t, reg).NavigateTo(context.Background(), &testEntity{kind: serviceType}, "All")
	var failed *NavigationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, StepName("All"), failed.Step)
	assert.Contains(t, failed.Reason, "after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestStepFailsWhenTimeoutExhausted(t *testing.T) {
	reg := NewRegistry()
	attempts := 0
	reg.MustRegister(serviceType, Step{Name: "All", Action: func(context.Context, View, Entity) (View, error) {
		attempts++
		return nil, nil
	}})

	nav := New(reg, Options{MaxAttempts: 100, RetryDelay: 20 * time.Millisecond, StepTimeout: 50 * time.Millisecond})
	_, err := nav.NavigateTo(context.Background(), &testEntity{kind: serviceType}, "All")
	var failed *NavigationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, failed.Reason, "within")
	assert.Less(t, attempts, 100)
}

type missingError struct{ what string }

func (e *missingError) Error() string { return e.what + " not found" }

func TestActionErrorIsNotRetriedAndKeepsCause(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.MustRegister(serviceType, Step{Name: "All", Action: recordingAction("All", &calls)})
	attempts := 0
	reg.MustRegister(serviceType, Step{Name: "Details", Prerequisite: Sibling("All"), Action: func(context.Context, View, Entity) (View, error) {
		attempts++
		return nil, &missingError{what: "svc1"}
	}})

	_, err := newTestNavigator(t, reg).NavigateTo(context.Background(), &testEntity{kind: serviceType}, "Details")
	var failed *NavigationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, StepName("Details"), failed.Step)

	var missing *missingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "svc1", missing.what)
	assert.Equal(t, 1, attempts)
}

func TestHooksSeeEveryStep(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.MustRegister(serviceType, Step{Name: "All", Action: recordingAction("All", &calls)})
	reg.MustRegister(serviceType, Step{Name: "Details", Prerequisite: Sibling("All"), Action: recordingAction("Details", &calls)})

	var seen []string
	nav := New(reg, Options{Hooks: []StepHook{func(_ context.Context, hop Hop, view View) {
		seen = append(seen, hop.String()+"="+view.(*testView).name)
	}}})

	_, err := nav.NavigateTo(context.Background(), &testEntity{kind: serviceType}, "Details")
	require.NoError(t, err)
	assert.Equal(t, []string{"service/All=All", "service/Details=Details"}, seen)
}

func hopNames(path []Hop) []string {
	names := make([]string, len(path))
	for i, hop := range path {
		names[i] = hop.String()
	}
	return names
}
