// Package onboarding defines the concrete first-run flow: a welcome screen
// that must be acknowledged, profile setup, skippable preferences, and a
// terminal done step that navigates to the home route.
package onboarding

import (
	"context"

	"github.com/lightfold/statefx/effect"
	"github.com/lightfold/statefx/flow"
)

const (
	StepWelcome     flow.StepID = "welcome"
	StepProfile     flow.StepID = "profile"
	StepPreferences flow.StepID = "preferences"
	StepDone        flow.StepID = "done"
)

// HomeRoute is where a finished onboarding navigates to.
const HomeRoute = "/home"

// Profile is the payload collected by the profile step.
type Profile struct {
	DisplayName string
	AvatarURL   string
}

// Preferences is the payload collected by the preferences step.
type Preferences struct {
	Newsletter bool
	DarkMode   bool
}

// Sequence returns the onboarding step ordering.
func Sequence() *flow.Sequence {
	return flow.MustSequence(
		flow.Step{ID: StepWelcome},
		flow.Step{ID: StepProfile},
		flow.Step{ID: StepPreferences, Skippable: true},
		flow.Step{ID: StepDone},
	)
}

// NewFlow starts an onboarding machine.
func NewFlow(ctx context.Context, opts ...flow.Option) *flow.Machine {
	opts = append([]flow.Option{
		flow.WithExitEffect(effect.NavigateTo{Route: HomeRoute, Replace: true}),
	}, opts...)
	return flow.NewMachine(ctx, Sequence(), opts...)
}

// CollectedProfile extracts the profile payload from a flow state, if the
// profile step recorded one.
func CollectedProfile(s flow.State) (Profile, bool) {
	p, ok := s.Collected[StepProfile].(Profile)
	return p, ok
}

// CollectedPreferences extracts the preferences payload from a flow state.
func CollectedPreferences(s flow.State) (Preferences, bool) {
	p, ok := s.Collected[StepPreferences].(Preferences)
	return p, ok
}
