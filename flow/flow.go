// Package flow specializes the state container for ordered, enumerable
// multi-step flows such as onboarding wizards: step sequencing, skip
// eligibility, per-step payload collection, and completion/abandon
// semantics.
package flow

import "fmt"

// StepID names a step within one sequence.
type StepID string

// Step is one enumerable stage of a flow.
type Step struct {
	ID        StepID
	Skippable bool
}

// Sequence is a finite, linearly ordered set of steps. Exactly one step has
// no predecessor (the entry) and exactly one has no successor (the
// terminal); both fall out of the slice ordering.
type Sequence struct {
	steps []Step
	index map[StepID]int
}

// NewSequence validates and builds a sequence. At least two steps are
// required so the entry and terminal are distinct and progress spans [0,1].
func NewSequence(steps ...Step) (*Sequence, error) {
	if len(steps) < 2 {
		return nil, fmt.Errorf("sequence needs at least an entry and a terminal step, got %d", len(steps))
	}
	index := make(map[StepID]int, len(steps))
	for i, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step %d has an empty id", i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate step id %q", s.ID)
		}
		index[s.ID] = i
	}
	return &Sequence{steps: steps, index: index}, nil
}

// MustSequence is NewSequence for statically-known sequences.
func MustSequence(steps ...Step) *Sequence {
	seq, err := NewSequence(steps...)
	if err != nil {
		panic(err)
	}
	return seq
}

// Entry returns the step with no predecessor.
func (q *Sequence) Entry() Step { return q.steps[0] }

// Terminal returns the step with no successor.
func (q *Sequence) Terminal() Step { return q.steps[len(q.steps)-1] }

// Contains reports whether id names a step of this sequence.
func (q *Sequence) Contains(id StepID) bool {
	_, ok := q.index[id]
	return ok
}

// Step returns the step named id.
func (q *Sequence) Step(id StepID) (Step, bool) {
	i, ok := q.index[id]
	if !ok {
		return Step{}, false
	}
	return q.steps[i], true
}

// Next returns the successor of id, or false at the terminal.
func (q *Sequence) Next(id StepID) (Step, bool) {
	i, ok := q.index[id]
	if !ok || i == len(q.steps)-1 {
		return Step{}, false
	}
	return q.steps[i+1], true
}

// Prev returns the predecessor of id, or false at the entry.
func (q *Sequence) Prev(id StepID) (Step, bool) {
	i, ok := q.index[id]
	if !ok || i == 0 {
		return Step{}, false
	}
	return q.steps[i-1], true
}

// IsTerminal reports whether id is the terminal step.
func (q *Sequence) IsTerminal(id StepID) bool {
	i, ok := q.index[id]
	return ok && i == len(q.steps)-1
}

// Progress maps id to its fraction of the flow: 0.0 at the entry, 1.0 at
// the terminal, monotonically non-decreasing along successors.
func (q *Sequence) Progress(id StepID) float64 {
	i, ok := q.index[id]
	if !ok {
		return 0
	}
	return float64(i) / float64(len(q.steps)-1)
}
