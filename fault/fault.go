// Package fault defines the closed failure taxonomy surfaced to the state
// layer. Collaborator boundaries convert raw errors into a Fault; the state
// layer never sees a thrown exception, only a success value or a typed
// failure.
package fault

import (
	"errors"
	"fmt"
)

// Kind enumerates every failure category the state layer can receive.
type Kind int

const (
	// KindUnknown is the catch-all for unexpected failures. It carries the
	// original diagnostic text.
	KindUnknown Kind = iota
	// KindValidation marks bad input caught before any collaborator call.
	KindValidation
	// KindAuth marks authentication/credential failures.
	KindAuth
	// KindNetwork marks connectivity failures.
	KindNetwork
	// KindStorage marks cache/storage failures.
	KindStorage
	// KindPermission marks authorization failures.
	KindPermission
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindStorage:
		return "storage"
	case KindPermission:
		return "permission"
	default:
		return "unknown"
	}
}

// Fault is a typed failure. It implements error so it can travel through
// error-returning plumbing, but feature code should switch on Kind rather
// than string-match.
type Fault struct {
	Kind   Kind
	Detail string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Message returns the human-readable, taxonomy-derived text attached to
// ShowMessage effects on failure paths.
func (f *Fault) Message() string {
	switch f.Kind {
	case KindValidation:
		return f.Detail
	case KindAuth:
		return "Authentication failed. Please check your credentials."
	case KindNetwork:
		return "Network unavailable. Please try again."
	case KindStorage:
		return "Could not read or write local data."
	case KindPermission:
		return "You do not have permission to do that."
	default:
		return "Something went wrong. Please try again."
	}
}

func New(kind Kind, detail string) *Fault {
	return &Fault{Kind: kind, Detail: detail}
}

func Validation(detail string) *Fault { return New(KindValidation, detail) }
func Auth(detail string) *Fault       { return New(KindAuth, detail) }
func Network(detail string) *Fault    { return New(KindNetwork, detail) }
func Storage(detail string) *Fault    { return New(KindStorage, detail) }
func Permission(detail string) *Fault { return New(KindPermission, detail) }

// Classify converts an arbitrary error into the closed taxonomy at a
// collaborator boundary. A Fault anywhere in the chain passes through
// unchanged; everything else becomes KindUnknown with the original
// diagnostic text preserved.
func Classify(err error) *Fault {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return New(KindUnknown, err.Error())
}
