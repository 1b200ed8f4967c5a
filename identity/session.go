// Package identity is the session feature: sign-in status, email
// credential flows, and the sign-out confirmation dialog, built over the
// state container and the abstract identity repository.
package identity

import (
	"context"

	"github.com/lightfold/statefx/container"
	"github.com/lightfold/statefx/effect"
	"github.com/lightfold/statefx/fault"
	"github.com/lightfold/statefx/intent"
)

// Session drives the sign-in state of the application.
type Session struct {
	*container.Container[State, Event]
	repo    Repository
	intents *intent.Correlator
}

// NewSession starts a session container in the Initial state and binds the
// repository's subject feed into it.
func NewSession(ctx context.Context, repo Repository, opts ...container.Option) *Session {
	s := &Session{
		repo:    repo,
		intents: intent.NewCorrelator(),
	}
	s.Container = container.New(
		ctx,
		State{Status: StatusInitial},
		s.transition,
		failState,
		opts...,
	)
	container.Forward(s.Container, repo.SubjectFeed(ctx), func(chg SubjectChange) Event {
		return SubjectChanged{Change: chg}
	})
	return s
}

// Resolver returns the post capability handed to dialog handlers: it can
// only feed a resolution back, never touch the session itself.
func (s *Session) Resolver() func(intent.Token, effect.ActionKind) {
	return func(tok intent.Token, action effect.ActionKind) {
		s.Post(DialogResolved{Intent: tok, Action: action})
	}
}

// failState converts a failed collaborator call into a terminal renderable
// state carrying the taxonomy-derived message.
func failState(_ State, err error) State {
	return failed(fault.Classify(err).Message())
}

func (s *Session) transition(_ context.Context, cur State, ev Event) container.Outcome[State] {
	switch ev := ev.(type) {
	case CheckRequested:
		return container.Await(loading(), func(ctx context.Context) (State, error) {
			sub, signedIn, f := s.repo.CurrentSubject(ctx)
			if f != nil {
				return State{}, f
			}
			if !signedIn {
				return anonymous(), nil
			}
			return authenticated(sub), nil
		})

	case SignInWithEmail:
		if msg, ok := validateCredentials(ev.Email, ev.Password); !ok {
			return container.Next(failed(msg))
		}
		return container.Await(loading(), func(ctx context.Context) (State, error) {
			sub, f := s.repo.SignInWithEmail(ctx, ev.Email, ev.Password)
			if f != nil {
				return State{}, f
			}
			return authenticated(sub), nil
		})

	case SignUpWithEmail:
		if msg, ok := validateCredentials(ev.Email, ev.Password); !ok {
			return container.Next(failed(msg))
		}
		return container.Await(loading(), func(ctx context.Context) (State, error) {
			sub, f := s.repo.SignUpWithEmail(ctx, ev.Email, ev.Password)
			if f != nil {
				return State{}, f
			}
			st := authenticated(sub)
			return st.withEffect(effect.ShowMessage{
				Text:     "Welcome aboard!",
				Severity: effect.SeverityInfo,
			}), nil
		})

	case SignOutRequested:
		if cur.Status != StatusAuthenticated {
			return container.None[State]()
		}
		dialog := effect.NewShowDialog(
			s.intents,
			"Sign out",
			"Are you sure you want to sign out?",
			effect.Action(effect.ActionConfirm, effect.WithLabel("Sign out"), effect.AsPrimary()),
			effect.Action(effect.ActionCancel),
		)
		return container.Next(cur.withEffect(dialog))

	case DialogResolved:
		if !s.intents.Resolve(ev.Intent) {
			// Stale token: the dialog was superseded or this is a
			// duplicate tap. Discard without touching state.
			return container.None[State]()
		}
		if ev.Action != effect.ActionConfirm {
			return container.None[State]()
		}
		// A confirmed sign-out supersedes any confirmation dialog still on
		// screen; their tokens become stale.
		s.intents.Clear()
		return container.Await(loading(), func(ctx context.Context) (State, error) {
			if f := s.repo.SignOut(ctx); f != nil {
				return State{}, f
			}
			st := anonymous()
			return st.withEffect(effect.ShowMessage{
				Text:     "Signed out",
				Severity: effect.SeverityInfo,
			}), nil
		})

	case SubjectChanged:
		if ev.Change.SignedIn {
			return container.Next(authenticated(ev.Change.Subject))
		}
		return container.Next(anonymous())

	default:
		// Event is sealed, so this is a bug in the code.
		return container.None[State]()
	}
}

// validateCredentials guards credential events locally; failures here never
// reach the collaborator.
func validateCredentials(email, password string) (msg string, ok bool) {
	if email == "" {
		return "Email cannot be empty", false
	}
	if password == "" {
		return "Password cannot be empty", false
	}
	return "", true
}
