package identity

import (
	"github.com/lightfold/statefx/effect"
	"github.com/lightfold/statefx/intent"
)

// Event is the sealed set of session events.
type Event interface {
	sessionEvent()
}

// CheckRequested asks the session to resolve the current sign-in status
// from the collaborator.
type CheckRequested struct{}

func (CheckRequested) sessionEvent() {}

// SignInWithEmail attempts a credential sign-in. Empty fields are rejected
// locally and never reach the collaborator.
type SignInWithEmail struct {
	Email    string
	Password string
}

func (SignInWithEmail) sessionEvent() {}

// SignUpWithEmail registers a new account with the collaborator.
type SignUpWithEmail struct {
	Email    string
	Password string
}

func (SignUpWithEmail) sessionEvent() {}

// SignOutRequested opens the sign-out confirmation dialog.
type SignOutRequested struct{}

func (SignOutRequested) sessionEvent() {}

// DialogResolved carries the user's choice for an interactive dialog back
// into the session, correlated by the token the dialog was minted with.
type DialogResolved struct {
	Intent intent.Token
	Action effect.ActionKind
}

func (DialogResolved) sessionEvent() {}

// SubjectChanged mirrors the collaborator's change-notification feed.
type SubjectChanged struct {
	Change SubjectChange
}

func (SubjectChanged) sessionEvent() {}
