package identity

import (
	"fmt"

	"github.com/lightfold/statefx/effect"
)

// Status enumerates the session states.
type Status string

const (
	StatusInitial       Status = "initial"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
	StatusFailed        Status = "failed"
)

// State is the immutable session state.
type State struct {
	Status  Status
	Subject Subject
	Err     string
	Eff     effect.Effect
}

func (s State) TransientEffect() effect.Effect { return s.Eff }

func (s State) WithoutEffect() State {
	s.Eff = nil
	return s
}

// EqualityKey serializes every field except Eff.
func (s State) EqualityKey() string {
	return fmt.Sprintf("status=%s|id=%s|email=%s|name=%s|err=%s",
		s.Status, s.Subject.ID, s.Subject.Email, s.Subject.Name, s.Err)
}

func (s State) withEffect(eff effect.Effect) State {
	s.Eff = eff
	return s
}

func loading() State {
	return State{Status: StatusLoading}
}

func authenticated(sub Subject) State {
	return State{Status: StatusAuthenticated, Subject: sub}
}

func anonymous() State {
	return State{Status: StatusAnonymous}
}

func failed(msg string) State {
	return State{
		Status: StatusFailed,
		Err:    msg,
		Eff:    effect.ShowMessage{Text: msg, Severity: effect.SeverityError},
	}
}
