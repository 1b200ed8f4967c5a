// Package worker provides the single-goroutine queue that serializes
// message handling off a producer's goroutine.
package worker

import "context"

// Queue hands every enqueued message to one handler goroutine, preserving
// enqueue order. The goroutine exits when ctx is canceled.
type Queue[T any] struct {
	ch chan T
}

func NewQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) Queue[T] {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ch := make(chan T, bufferSize)
	ready := make(chan struct{})

	go func(ch chan T) {
		close(ready)
		for {
			select {
			case msg := <-ch:
				handleFn(ctx, msg)
			case <-ctx.Done():
				return
			}
		}
	}(ch)

	<-ready

	return Queue[T]{ch: ch}
}

// Enqueue submits msg for handling. It reports false when ctx was canceled
// before the message could be accepted.
func (q Queue[T]) Enqueue(ctx context.Context, msg T) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case <-ctx.Done():
		return false
	case q.ch <- msg:
		return true
	}
}
