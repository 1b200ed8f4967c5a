package flow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lightfold/statefx/effect"
)

// State is the immutable snapshot value of a flow machine. Copy-on-write
// throughout: every transition builds a fresh State and never mutates the
// sets or the collected map in place.
type State struct {
	Current   StepID
	Completed map[StepID]struct{}
	Skipped   map[StepID]struct{}
	Collected map[StepID]any
	Finished  bool
	Eff       effect.Effect
}

func initialState(seq *Sequence) State {
	return State{
		Current:   seq.Entry().ID,
		Completed: map[StepID]struct{}{},
		Skipped:   map[StepID]struct{}{},
		Collected: map[StepID]any{},
	}
}

func (s State) TransientEffect() effect.Effect { return s.Eff }

func (s State) WithoutEffect() State {
	s.Eff = nil
	return s
}

// EqualityKey serializes every field except Eff, with set and map entries
// sorted so the key is deterministic.
func (s State) EqualityKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "current=%s|finished=%t", s.Current, s.Finished)
	b.WriteString("|completed=")
	b.WriteString(sortedSet(s.Completed))
	b.WriteString("|skipped=")
	b.WriteString(sortedSet(s.Skipped))
	b.WriteString("|collected=")
	b.WriteString(sortedMap(s.Collected))
	return b.String()
}

// HasCompleted reports whether id was completed at some point, regardless
// of where Current has moved since.
func (s State) HasCompleted(id StepID) bool {
	_, ok := s.Completed[id]
	return ok
}

// HasSkipped reports whether id was skipped.
func (s State) HasSkipped(id StepID) bool {
	_, ok := s.Skipped[id]
	return ok
}

func (s State) withEffect(eff effect.Effect) State {
	s.Eff = eff
	return s
}

func (s State) withCurrent(id StepID) State {
	s.Current = id
	return s
}

func (s State) withCompleted(id StepID) State {
	s.Completed = copySet(s.Completed, id)
	return s
}

func (s State) withSkipped(id StepID) State {
	s.Skipped = copySet(s.Skipped, id)
	return s
}

func (s State) withCollected(id StepID, data any) State {
	merged := make(map[StepID]any, len(s.Collected)+1)
	for k, v := range s.Collected {
		merged[k] = v
	}
	merged[id] = data
	s.Collected = merged
	return s
}

func (s State) withFinished() State {
	s.Finished = true
	return s
}

func copySet(set map[StepID]struct{}, add StepID) map[StepID]struct{} {
	out := make(map[StepID]struct{}, len(set)+1)
	for k := range set {
		out[k] = struct{}{}
	}
	out[add] = struct{}{}
	return out
}

func sortedSet(set map[StepID]struct{}) string {
	ids := make([]string, 0, len(set))
	for k := range set {
		ids = append(ids, string(k))
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

func sortedMap(m map[StepID]any) string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, string(k))
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s:%v", id, m[StepID(id)]))
	}
	return strings.Join(parts, ",")
}
