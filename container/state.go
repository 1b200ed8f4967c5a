package container

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rickb777/date/v2/timespan"

	"github.com/lightfold/statefx/effect"
)

// State is implemented by the immutable state values a container holds.
//
// Two states are logically equal iff every field except the transient effect
// is equal; EqualityKey is the single place that rule lives, and everything
// that compares states (change detection, test assertions) goes through it.
type State[S any] interface {
	// TransientEffect returns the one-shot effect attached to this state,
	// or nil.
	TransientEffect() effect.Effect
	// EqualityKey deterministically serializes every field EXCEPT the
	// transient effect.
	EqualityKey() string
	// WithoutEffect returns a copy with the transient effect detached. The
	// container applies it before every transition, so an effect is
	// observed by at most one emission.
	WithoutEffect() S
}

// LogicallyEqual reports state equality excluding the transient effect.
func LogicallyEqual[S State[S]](a, b S) bool {
	return a.EqualityKey() == b.EqualityKey()
}

// Snapshot is one element of a container's ordered state stream.
type Snapshot[S State[S]] struct {
	State S
	// Seq increases by one per emission and doubles as the identity of the
	// effect instance the state carries: delivery tracking keys on Seq, not
	// on state equality.
	Seq uint64
	// Digest is an xxhash over EqualityKey, cheap change-detection material
	// for observers. Equal digests of consecutive snapshots mean the state
	// did not logically change even if an effect was attached.
	Digest uint64
	// Span is the observation window of the emission.
	Span timespan.TimeSpan
}

func digestOf[S State[S]](s S) uint64 {
	return xxhash.Sum64String(s.EqualityKey())
}

const epsilon = time.Millisecond

func observedNow() timespan.TimeSpan {
	now := time.Now()
	return timespan.BetweenTimes(now.Add(-1*epsilon), now.Add(epsilon))
}
