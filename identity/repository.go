package identity

import (
	"context"

	"github.com/lightfold/statefx/fault"
)

// Subject is the authenticated principal reported by the collaborator.
type Subject struct {
	ID    string
	Email string
	Name  string
}

// SubjectChange is one element of the collaborator's notification feed of
// current-subject changes.
type SubjectChange struct {
	Subject  Subject
	SignedIn bool
}

// Repository is the abstract collaborator contract for the identity
// service. Every operation returns a success payload or a typed Fault,
// never a raw error; conversion into the closed taxonomy happens inside
// the implementation, at the boundary.
type Repository interface {
	// CurrentSubject reports the signed-in subject, or signedIn=false for
	// an anonymous session.
	CurrentSubject(ctx context.Context) (sub Subject, signedIn bool, f *fault.Fault)
	SignInWithEmail(ctx context.Context, email, password string) (Subject, *fault.Fault)
	SignUpWithEmail(ctx context.Context, email, password string) (Subject, *fault.Fault)
	SignOut(ctx context.Context) *fault.Fault
	// SubjectFeed returns the change-notification feed. The channel closes
	// when the repository shuts down.
	SubjectFeed(ctx context.Context) <-chan SubjectChange
}
