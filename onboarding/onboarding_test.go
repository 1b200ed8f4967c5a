package onboarding_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightfold/statefx/container"
	"github.com/lightfold/statefx/effect"
	"github.com/lightfold/statefx/flow"
	"github.com/lightfold/statefx/internal/testlog"
	"github.com/lightfold/statefx/onboarding"
)

func newFlow(t *testing.T) (*flow.Machine, <-chan container.Snapshot[flow.State]) {
	t.Helper()
	m := onboarding.NewFlow(
		context.Background(),
		flow.WithContainerOptions(container.WithLogger(testlog.NewLogger())),
	)
	t.Cleanup(func() { _ = m.Close() })

	snaps := make(chan container.Snapshot[flow.State], 64)
	unsub := m.Subscribe(func(snap container.Snapshot[flow.State]) { snaps <- snap })
	t.Cleanup(unsub)
	_ = next(t, snaps) // replay
	return m, snaps
}

func next(t *testing.T, snaps <-chan container.Snapshot[flow.State]) container.Snapshot[flow.State] {
	t.Helper()
	select {
	case snap := <-snaps:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for onboarding state")
		return container.Snapshot[flow.State]{}
	}
}

func TestOnboarding_StartsAtWelcome(t *testing.T) {
	m, _ := newFlow(t)

	assert.Equal(t, onboarding.StepWelcome, m.Current().State.Current)
	assert.Equal(t, 0.0, m.Progress())
}

func TestOnboarding_WelcomeCannotBeSkipped(t *testing.T) {
	m, snaps := newFlow(t)

	m.Post(flow.StepSkipped{Step: onboarding.StepWelcome})
	snap := next(t, snaps)

	msg, ok := snap.State.TransientEffect().(effect.ShowMessage)
	require.True(t, ok)
	assert.Equal(t, flow.MsgStepNotSkippable, msg.Text)
	assert.Equal(t, onboarding.StepWelcome, snap.State.Current)
}

func TestOnboarding_FullRunCollectsPayloadsAndNavigatesHome(t *testing.T) {
	m, snaps := newFlow(t)

	m.Post(flow.StepCompleted{Step: onboarding.StepWelcome})
	_ = next(t, snaps)

	profile := onboarding.Profile{DisplayName: "Ada"}
	m.Post(flow.StepCompleted{Step: onboarding.StepProfile, Data: profile})
	_ = next(t, snaps)

	prefs := onboarding.Preferences{Newsletter: true}
	m.Post(flow.StepCompleted{Step: onboarding.StepPreferences, Data: prefs})
	final := next(t, snaps)

	require.True(t, final.State.Finished)
	nav, ok := final.State.TransientEffect().(effect.NavigateTo)
	require.True(t, ok)
	assert.Equal(t, onboarding.HomeRoute, nav.Route)
	assert.True(t, nav.Replace)

	gotProfile, ok := onboarding.CollectedProfile(final.State)
	require.True(t, ok)
	assert.Equal(t, profile, gotProfile)

	gotPrefs, ok := onboarding.CollectedPreferences(final.State)
	require.True(t, ok)
	assert.Equal(t, prefs, gotPrefs)
}

func TestOnboarding_PreferencesSkippableRunFinishesWithoutPrefs(t *testing.T) {
	m, snaps := newFlow(t)

	m.Post(flow.StepCompleted{Step: onboarding.StepWelcome})
	_ = next(t, snaps)
	m.Post(flow.StepCompleted{Step: onboarding.StepProfile, Data: onboarding.Profile{DisplayName: "Ada"}})
	_ = next(t, snaps)
	m.Post(flow.StepSkipped{Step: onboarding.StepPreferences})
	final := next(t, snaps)

	assert.True(t, final.State.Finished)
	assert.True(t, final.State.HasSkipped(onboarding.StepPreferences))
	_, ok := onboarding.CollectedPreferences(final.State)
	assert.False(t, ok)
}
