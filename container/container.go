// Package container implements the reactive state container: an event-loop
// owned, immutable state value replaced wholesale by pure/async transitions,
// exposed as an ordered stream of snapshots.
//
// Events are applied strictly one at a time per container instance. A
// transition that needs a collaborator call returns an interim state plus a
// task; the interim is emitted immediately, queued events wait until the
// task settles, and the settlement is re-serialized into the same stream as
// the continuation of that one logical transition.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Listener receives every snapshot emitted after subscription, starting
// with a replay of the current one. Listeners run on the container's loop
// goroutine: they must be fast and must not post back into the same
// container (effect handlers get a dedicated worker for that, see the
// delivery package).
type Listener[S State[S]] func(Snapshot[S])

type Option func(*options)

type options struct {
	logger     *zap.Logger
	bufferSize int
	teardowns  []func() error
}

// WithLogger attaches a structured logger. Defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBuffer sets the event queue capacity.
func WithBuffer(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// WithTeardown registers a function run by Close, after the loop has
// stopped. Errors from multiple teardowns are aggregated.
func WithTeardown(fn func() error) Option {
	return func(o *options) { o.teardowns = append(o.teardowns, fn) }
}

// Container owns one immutable state value. All access goes through Post,
// Current and Subscribe; the state itself is never shared mutably.
type Container[S State[S], E any] struct {
	// ContainerId identifies the instance in logs.
	ContainerId string

	logger     *zap.Logger
	transition Transition[S, E]
	failState  FailState[S]
	teardowns  []func() error

	events chan E
	ctrl   chan ctrlPayload

	ctx      context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}

	closeOnce sync.Once
	closeErr  error

	snap      atomic.Pointer[Snapshot[S]]
	delivered atomic.Uint64

	// loop-owned, untouched outside the loop goroutine
	seq       uint64
	nextSubId uint64
	listeners []subscriber[S]
}

type subscriber[S State[S]] struct {
	id uint64
	fn Listener[S]
}

// ctrlPayload is a sealed interface for loop control messages.
type ctrlPayload interface {
	ctrlPayload()
}

type subscribeMsg[S State[S]] struct {
	fn    Listener[S]
	reply chan func()
}

func (subscribeMsg[S]) ctrlPayload() {}

type unsubscribeMsg struct {
	id uint64
}

func (unsubscribeMsg) ctrlPayload() {}

// New constructs a container holding initial and starts its event loop.
// failState converts failed async tasks into terminal renderable states; a
// nil failState keeps the interim state and only logs, which is acceptable
// only for transitions that never return tasks.
func New[S State[S], E any](
	ctx context.Context,
	initial S,
	transition Transition[S, E],
	failState FailState[S],
	opts ...Option,
) *Container[S, E] {
	o := options{logger: zap.NewNop(), bufferSize: 16}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Container[S, E]{
		ContainerId: uuid.New().String(),
		logger:      o.logger,
		transition:  transition,
		failState:   failState,
		teardowns:   o.teardowns,
		events:      make(chan E, o.bufferSize),
		ctrl:        make(chan ctrlPayload),
		ctx:         ctx,
		cancel:      cancel,
		loopDone:    make(chan struct{}),
		seq:         1,
	}

	first := Snapshot[S]{
		State:  initial,
		Seq:    1,
		Digest: digestOf(initial),
		Span:   observedNow(),
	}
	c.snap.Store(&first)

	go c.loop()

	c.logger.Debug("container started", zap.String("containerId", c.ContainerId))
	return c
}

// Post queues ev for application. Events posted after Close are dropped.
func (c *Container[S, E]) Post(ev E) {
	select {
	case <-c.ctx.Done():
		c.logger.Debug("event dropped after close",
			zap.String("containerId", c.ContainerId),
		)
	case c.events <- ev:
	}
}

// Current returns the latest snapshot without blocking on the loop.
func (c *Container[S, E]) Current() Snapshot[S] {
	return *c.snap.Load()
}

// Subscribe registers fn for the stream of all subsequent snapshots,
// replaying the current one first. The returned function unsubscribes; it
// is safe to call after Close.
func (c *Container[S, E]) Subscribe(fn Listener[S]) func() {
	reply := make(chan func(), 1)
	select {
	case <-c.ctx.Done():
		return func() {}
	case c.ctrl <- subscribeMsg[S]{fn: fn, reply: reply}:
	}
	select {
	case <-c.ctx.Done():
		return func() {}
	case unsub := <-reply:
		return unsub
	}
}

// MarkDelivered records that the effect carried by the snapshot with the
// given sequence number has been consumed. The mark only moves forward.
func (c *Container[S, E]) MarkDelivered(seq uint64) {
	for {
		cur := c.delivered.Load()
		if seq <= cur || c.delivered.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// DeliveredSeq returns the highest consumed effect sequence number.
func (c *Container[S, E]) DeliveredSeq() uint64 {
	return c.delivered.Load()
}

// Close stops the loop, detaches every feed and subscriber, and runs the
// registered teardowns. Results of tasks still in flight are discarded.
// Close is idempotent.
func (c *Container[S, E]) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.loopDone
		var err error
		for _, td := range c.teardowns {
			err = multierr.Append(err, td())
		}
		c.closeErr = err
		c.logger.Debug("container closed", zap.String("containerId", c.ContainerId))
	})
	return c.closeErr
}

// Forward pumps an upstream feed (e.g. a collaborator's change
// notifications) into c until the feed closes or c is closed.
func Forward[S State[S], E any, F any](c *Container[S, E], feed <-chan F, mapFn func(F) E) {
	go func() {
		for {
			select {
			case <-c.ctx.Done():
				return
			case v, ok := <-feed:
				if !ok {
					return
				}
				c.Post(mapFn(v))
			}
		}
	}()
}

func (c *Container[S, E]) loop() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.ctrl:
			c.handleCtrl(msg)
		case ev := <-c.events:
			if done := c.apply(ev); done {
				return
			}
		}
	}
}

// apply runs one transition to completion, including the wait for its async
// task. Control messages keep being served during the wait so Subscribe
// never blocks on a slow collaborator; further events do block, which is
// what gives transitions their no-reentrancy guarantee.
func (c *Container[S, E]) apply(ev E) (closed bool) {
	cur := c.snap.Load().State.WithoutEffect()
	out := c.applyTransition(cur, ev)
	if out.none {
		return false
	}
	c.emit(out.next)
	if out.task == nil {
		return false
	}

	done := make(chan taskResult[S], 1)
	go runTask(c.ctx, out.task, done)
	for {
		select {
		case <-c.ctx.Done():
			// Late task results must not be applied to a disposed
			// container.
			return true
		case msg := <-c.ctrl:
			c.handleCtrl(msg)
		case res := <-done:
			if res.err != nil {
				c.logger.Error("transition task failed",
					zap.String("containerId", c.ContainerId),
					zap.Error(res.err),
				)
				c.emit(c.fail(out.next, res.err))
			} else {
				c.emit(res.state)
			}
			return false
		}
	}
}

func (c *Container[S, E]) applyTransition(cur S, ev E) (out Outcome[S]) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("recovered from transition: %v", r)
			c.logger.Error("transition panicked",
				zap.String("containerId", c.ContainerId),
				zap.Error(err),
			)
			out = Next(c.fail(cur, err))
		}
	}()
	return c.transition(c.ctx, cur, ev)
}

func (c *Container[S, E]) fail(cur S, err error) S {
	if c.failState == nil {
		c.logger.Warn("no fail state hook, keeping current state",
			zap.String("containerId", c.ContainerId),
			zap.Error(err),
		)
		return cur
	}
	return c.failState(cur, err)
}

func (c *Container[S, E]) emit(s S) {
	c.seq++
	snap := Snapshot[S]{
		State:  s,
		Seq:    c.seq,
		Digest: digestOf(s),
		Span:   observedNow(),
	}
	c.snap.Store(&snap)
	for _, sub := range c.listeners {
		sub.fn(snap)
	}
}

func (c *Container[S, E]) handleCtrl(msg ctrlPayload) {
	switch m := msg.(type) {
	case subscribeMsg[S]:
		id := c.nextSubId
		c.nextSubId++
		c.listeners = append(c.listeners, subscriber[S]{id: id, fn: m.fn})
		m.fn(*c.snap.Load())
		m.reply <- func() {
			select {
			case <-c.ctx.Done():
			case c.ctrl <- unsubscribeMsg{id: id}:
			}
		}
	case unsubscribeMsg:
		for i, sub := range c.listeners {
			if sub.id == m.id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				break
			}
		}
	default:
		// ctrlPayload is sealed, so this is a bug in the code.
		panic(fmt.Sprintf("unrecognized control payload: %T", msg))
	}
}

type taskResult[S State[S]] struct {
	state S
	err   error
}

func runTask[S State[S]](ctx context.Context, task Task[S], done chan<- taskResult[S]) {
	defer func() {
		if r := recover(); r != nil {
			done <- taskResult[S]{err: fmt.Errorf("recovered from transition task: %v", r)}
		}
	}()
	s, err := task(ctx)
	done <- taskResult[S]{state: s, err: err}
}
