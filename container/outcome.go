package container

import "context"

// Task is the asynchronous continuation of a transition: a collaborator
// call whose eventual result becomes the terminal state of the same logical
// transition. The returned error is never rethrown; the container converts
// it through the FailState hook.
type Task[S State[S]] func(ctx context.Context) (S, error)

// Outcome is what a transition returns: the next state to emit, optionally
// followed by a task, or nothing at all.
type Outcome[S State[S]] struct {
	next S
	task Task[S]
	none bool
}

// Next emits s as the result of the transition.
func Next[S State[S]](s S) Outcome[S] {
	return Outcome[S]{next: s}
}

// Await emits interim immediately and settles the transition with the
// task's result. Events posted in the meantime are queued and processed
// after the task settles.
func Await[S State[S]](interim S, task Task[S]) Outcome[S] {
	return Outcome[S]{next: interim, task: task}
}

// None emits nothing: the event is discarded without a state change.
// Used for silently-dropped protocol violations such as stale intent
// tokens.
func None[S State[S]]() Outcome[S] {
	return Outcome[S]{none: true}
}

// Transition is the total function a container applies to each posted
// event. It must be free of direct side effects: every externally visible
// consequence is expressed as an effect attached to the returned state.
type Transition[S State[S], E any] func(ctx context.Context, cur S, ev E) Outcome[S]

// FailState converts a failed or panicked task into a terminal renderable
// state, typically carrying an error-describing ShowMessage effect. A
// container never leaves observers stuck on an interim state.
type FailState[S State[S]] func(cur S, err error) S
