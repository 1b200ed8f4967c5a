// Package delivery observes a container's snapshot stream and hands each
// newly attached effect to the registry of the single attached consumer,
// exactly once.
//
// Delivery tracking is keyed on the snapshot sequence number that
// introduced the effect (effect instance identity), never on state
// equality. A consumer re-attaching after a rebuild therefore sees replayed
// snapshots whose effects were already consumed and nothing re-fires.
package delivery

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lightfold/statefx/container"
	"github.com/lightfold/statefx/internal/worker"
	"github.com/lightfold/statefx/registry"
)

// Source is the container-side surface the channel needs: the snapshot
// stream plus the shared delivered-mark, which is how a consumed effect is
// "cleared" even though states are immutable.
type Source[S container.State[S]] interface {
	Subscribe(container.Listener[S]) func()
	MarkDelivered(seq uint64)
	DeliveredSeq() uint64
}

type Option func(*options)

type options struct {
	logger     *zap.Logger
	bufferSize int
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithBuffer(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// Channel delivers effects from one source. Dispatch runs on a dedicated
// single-queue worker, so handlers may post events back into the container
// without deadlocking its loop.
type Channel[S container.State[S]] struct {
	logger *zap.Logger
	source Source[S]
	unsub  func()
	cancel context.CancelFunc

	mu      sync.Mutex
	target  *registry.Registry
	env     registry.Env
	pending *pendingEffect[S]
}

type pendingEffect[S container.State[S]] struct {
	snap container.Snapshot[S]
}

// Open starts observing src. The channel stops when ctx is canceled.
func Open[S container.State[S]](ctx context.Context, src Source[S], opts ...Option) *Channel[S] {
	o := options{logger: zap.NewNop(), bufferSize: 16}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := &Channel[S]{
		logger: o.logger,
		source: src,
		cancel: cancel,
	}
	queue := worker.NewQueue(ctx, o.bufferSize, ch.deliver)
	ch.unsub = src.Subscribe(func(snap container.Snapshot[S]) {
		queue.Enqueue(ctx, snap)
	})
	return ch
}

// Attach registers target as the single active consumer, replacing any
// previous one. An effect that arrived while no consumer was attached is
// delivered immediately; effects consumed before the attach are not
// redelivered. The returned function detaches.
func (ch *Channel[S]) Attach(target *registry.Registry, env registry.Env) func() {
	ch.mu.Lock()
	ch.target = target
	ch.env = env
	pending := ch.pending
	ch.pending = nil
	ch.mu.Unlock()

	if pending != nil {
		ch.dispatch(context.Background(), pending.snap, target, env)
	}

	return func() {
		ch.mu.Lock()
		if ch.target == target {
			ch.target = nil
			ch.env = registry.Env{}
		}
		ch.mu.Unlock()
	}
}

// Stop detaches the consumer and stops observing the source.
func (ch *Channel[S]) Stop() {
	ch.mu.Lock()
	ch.target = nil
	ch.env = registry.Env{}
	ch.pending = nil
	ch.mu.Unlock()
	ch.unsub()
	ch.cancel()
}

// deliver runs on the worker goroutine, one snapshot at a time, in stream
// order.
func (ch *Channel[S]) deliver(ctx context.Context, snap container.Snapshot[S]) {
	if snap.State.TransientEffect() == nil {
		return
	}
	if snap.Seq <= ch.source.DeliveredSeq() {
		// Replay of an already-consumed effect (e.g. a re-subscription
		// after a rebuild).
		return
	}

	ch.mu.Lock()
	target, env := ch.target, ch.env
	if target == nil {
		// Hold the newest undelivered effect for the next consumer. A
		// newer effect supersedes an older pending one; the older one was
		// never deliverable to anyone.
		ch.pending = &pendingEffect[S]{snap: snap}
		ch.mu.Unlock()
		return
	}
	ch.mu.Unlock()

	ch.dispatch(ctx, snap, target, env)
}

func (ch *Channel[S]) dispatch(
	ctx context.Context,
	snap container.Snapshot[S],
	target *registry.Registry,
	env registry.Env,
) {
	if snap.Seq <= ch.source.DeliveredSeq() {
		return
	}
	ch.source.MarkDelivered(snap.Seq)
	eff := snap.State.TransientEffect()
	ch.logger.Debug("delivering effect",
		zap.String("kind", string(eff.Kind())),
		zap.Uint64("seq", snap.Seq),
	)
	target.Dispatch(ctx, env, eff)
}
