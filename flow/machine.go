package flow

import (
	"context"

	"github.com/lightfold/statefx/container"
	"github.com/lightfold/statefx/effect"
)

// Event is the sealed set of flow events. Closed per feature so the
// transition stays exhaustive.
type Event interface {
	flowEvent()
}

// StepCompleted records step as done, merging its payload into the
// collected data, and advances the flow.
type StepCompleted struct {
	Step StepID
	Data any
}

func (StepCompleted) flowEvent() {}

// StepSkipped advances past a skip-eligible step without a payload.
type StepSkipped struct {
	Step StepID
}

func (StepSkipped) flowEvent() {}

// StepBack moves to the predecessor. Completed/skipped sets are untouched:
// moving back does not retroactively uncomplete a step.
type StepBack struct{}

func (StepBack) flowEvent() {}

// Finished is the terminal action: jump to the terminal step and leave the
// flow.
type Finished struct{}

func (Finished) flowEvent() {}

// Guard messages for caller-driven protocol violations. These warn, they
// never fail the machine.
const (
	MsgNotCurrentStep   = "This step has already been handled"
	MsgStepNotSkippable = "This step cannot be skipped"
	MsgUnknownStep      = "Unknown step"
)

type Option func(*machineOptions)

type machineOptions struct {
	exit          effect.Effect
	containerOpts []container.Option
}

// WithExitEffect sets the navigation effect emitted when the flow finishes.
func WithExitEffect(eff effect.Effect) Option {
	return func(o *machineOptions) { o.exit = eff }
}

// WithContainerOptions forwards options to the underlying container.
func WithContainerOptions(opts ...container.Option) Option {
	return func(o *machineOptions) { o.containerOpts = opts }
}

// Machine drives one flow instance. It is a state container whose
// transition implements the sequencing rules.
type Machine struct {
	*container.Container[State, Event]
	seq *Sequence
}

// NewMachine starts a machine at the sequence's entry step with empty
// sets and no effect.
func NewMachine(ctx context.Context, seq *Sequence, opts ...Option) *Machine {
	o := machineOptions{
		exit: effect.NavigateTo{Route: "/", Replace: true},
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := container.New(
		ctx,
		initialState(seq),
		transitionFor(seq, o.exit),
		nil, // transitions are synchronous, no task failures to convert
		o.containerOpts...,
	)
	return &Machine{Container: c, seq: seq}
}

// Sequence returns the step ordering the machine runs.
func (m *Machine) Sequence() *Sequence { return m.seq }

// Progress returns the current step's fraction of the flow.
func (m *Machine) Progress() float64 {
	return m.seq.Progress(m.Current().State.Current)
}

func transitionFor(seq *Sequence, exit effect.Effect) container.Transition[State, Event] {
	return func(_ context.Context, cur State, ev Event) container.Outcome[State] {
		switch ev := ev.(type) {
		case StepCompleted:
			if !seq.Contains(ev.Step) {
				return warn(cur, MsgUnknownStep)
			}
			if ev.Step != cur.Current {
				// Out-of-order replay, e.g. a second tap on a submit
				// button after the flow already advanced.
				return warn(cur, MsgNotCurrentStep)
			}
			next := cur.withCompleted(ev.Step)
			if ev.Data != nil {
				next = next.withCollected(ev.Step, ev.Data)
			}
			return container.Next(advance(seq, next, ev.Step, exit))

		case StepSkipped:
			step, ok := seq.Step(ev.Step)
			if !ok {
				return warn(cur, MsgUnknownStep)
			}
			if ev.Step != cur.Current {
				return warn(cur, MsgNotCurrentStep)
			}
			if !step.Skippable {
				return warn(cur, MsgStepNotSkippable)
			}
			return container.Next(advance(seq, cur.withSkipped(ev.Step), ev.Step, exit))

		case StepBack:
			prev, ok := seq.Prev(cur.Current)
			if !ok {
				return container.None[State]()
			}
			return container.Next(cur.withCurrent(prev.ID))

		case Finished:
			return container.Next(finish(seq, cur, exit))

		default:
			// Event is sealed, so this is a bug in the code.
			return container.None[State]()
		}
	}
}

// advance moves past a just-handled step: on to the successor, or into the
// finished terminal state when the step was the last one.
func advance(seq *Sequence, cur State, handled StepID, exit effect.Effect) State {
	next, ok := seq.Next(handled)
	if !ok || seq.IsTerminal(next.ID) {
		return finish(seq, cur, exit)
	}
	return cur.withCurrent(next.ID)
}

func finish(seq *Sequence, cur State, exit effect.Effect) State {
	return cur.
		withCurrent(seq.Terminal().ID).
		withFinished().
		withEffect(exit)
}

func warn(cur State, msg string) container.Outcome[State] {
	return container.Next(cur.withEffect(effect.Warning(msg)))
}
