package container_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightfold/statefx/container"
	"github.com/lightfold/statefx/effect"
	"github.com/lightfold/statefx/internal/testlog"
)

type counterState struct {
	Status string
	N      int
	Eff    effect.Effect
}

func (s counterState) TransientEffect() effect.Effect { return s.Eff }

func (s counterState) EqualityKey() string {
	return fmt.Sprintf("status=%s|n=%d", s.Status, s.N)
}

func (s counterState) WithoutEffect() counterState {
	s.Eff = nil
	return s
}

type counterEvent interface{ counterEvent() }

type increment struct{}

func (increment) counterEvent() {}

type load struct {
	result  chan int
	failure error
	block   chan struct{}
}

func (load) counterEvent() {}

type announce struct{ text string }

func (announce) counterEvent() {}

func transition(_ context.Context, cur counterState, ev counterEvent) container.Outcome[counterState] {
	switch ev := ev.(type) {
	case increment:
		cur.N++
		cur.Status = "ready"
		return container.Next(cur)
	case load:
		interim := cur
		interim.Status = "loading"
		return container.Await(interim, func(ctx context.Context) (counterState, error) {
			if ev.block != nil {
				select {
				case <-ev.block:
				case <-ctx.Done():
					return counterState{}, ctx.Err()
				}
			}
			if ev.failure != nil {
				return counterState{}, ev.failure
			}
			next := cur
			next.Status = "ready"
			next.N = <-ev.result
			return next, nil
		})
	case announce:
		return container.Next(cur.withMessage(ev.text))
	default:
		return container.None[counterState]()
	}
}

func (s counterState) withMessage(text string) counterState {
	s.Eff = effect.ShowMessage{Text: text, Severity: effect.SeverityInfo}
	return s
}

func failState(cur counterState, err error) counterState {
	cur.Status = "failed"
	cur.Eff = effect.ShowMessage{Text: err.Error(), Severity: effect.SeverityError}
	return cur
}

func newCounter(t *testing.T) (*container.Container[counterState, counterEvent], <-chan container.Snapshot[counterState]) {
	t.Helper()
	c := container.New(
		context.Background(),
		counterState{Status: "initial"},
		transition,
		failState,
		container.WithLogger(testlog.NewLogger()),
	)
	t.Cleanup(func() { _ = c.Close() })

	snaps := make(chan container.Snapshot[counterState], 64)
	unsub := c.Subscribe(func(snap container.Snapshot[counterState]) {
		snaps <- snap
	})
	t.Cleanup(unsub)
	return c, snaps
}

func nextSnap(t *testing.T, snaps <-chan container.Snapshot[counterState]) container.Snapshot[counterState] {
	t.Helper()
	select {
	case snap := <-snaps:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return container.Snapshot[counterState]{}
	}
}

func TestContainer_SubscribeReplaysCurrent(t *testing.T) {
	_, snaps := newCounter(t)

	first := nextSnap(t, snaps)
	assert.Equal(t, "initial", first.State.Status)
	assert.Equal(t, uint64(1), first.Seq)
}

func TestContainer_EventsAppliedInOrderWithoutGaps(t *testing.T) {
	c, snaps := newCounter(t)
	_ = nextSnap(t, snaps) // replay

	const n = 50
	for i := 0; i < n; i++ {
		c.Post(increment{})
	}

	var prev uint64 = 1
	for i := 1; i <= n; i++ {
		snap := nextSnap(t, snaps)
		require.Equal(t, prev+1, snap.Seq, "snapshot stream must have no gaps")
		require.Equal(t, i, snap.State.N)
		prev = snap.Seq
	}
}

func TestContainer_AsyncTransitionEmitsInterimThenTerminal(t *testing.T) {
	c, snaps := newCounter(t)
	_ = nextSnap(t, snaps)

	result := make(chan int, 1)
	result <- 42
	c.Post(load{result: result})

	interim := nextSnap(t, snaps)
	assert.Equal(t, "loading", interim.State.Status)

	terminal := nextSnap(t, snaps)
	assert.Equal(t, "ready", terminal.State.Status)
	assert.Equal(t, 42, terminal.State.N)
}

func TestContainer_EventsQueuedDuringAsyncWait(t *testing.T) {
	c, snaps := newCounter(t)
	_ = nextSnap(t, snaps)

	block := make(chan struct{})
	result := make(chan int, 1)
	result <- 7
	c.Post(load{result: result, block: block})
	c.Post(increment{}) // must wait for the in-flight transition

	interim := nextSnap(t, snaps)
	assert.Equal(t, "loading", interim.State.Status)

	close(block)
	terminal := nextSnap(t, snaps)
	assert.Equal(t, 7, terminal.State.N)

	after := nextSnap(t, snaps)
	assert.Equal(t, 8, after.State.N, "queued event applies after the task settles")
}

func TestContainer_TaskFailureBecomesTerminalFailureState(t *testing.T) {
	c, snaps := newCounter(t)
	_ = nextSnap(t, snaps)

	c.Post(load{failure: errors.New("boom")})

	interim := nextSnap(t, snaps)
	assert.Equal(t, "loading", interim.State.Status)

	failedSnap := nextSnap(t, snaps)
	assert.Equal(t, "failed", failedSnap.State.Status)
	msg, ok := failedSnap.State.Eff.(effect.ShowMessage)
	require.True(t, ok, "failure state must carry an error-describing effect")
	assert.Equal(t, effect.SeverityError, msg.Severity)
}

func TestContainer_TaskPanicIsRecovered(t *testing.T) {
	c := container.New(
		context.Background(),
		counterState{Status: "initial"},
		func(_ context.Context, cur counterState, _ counterEvent) container.Outcome[counterState] {
			interim := cur
			interim.Status = "loading"
			return container.Await(interim, func(context.Context) (counterState, error) {
				panic("collaborator exploded")
			})
		},
		failState,
	)
	defer func() { _ = c.Close() }()

	snaps := make(chan container.Snapshot[counterState], 8)
	defer c.Subscribe(func(snap container.Snapshot[counterState]) { snaps <- snap })()
	_ = nextSnap(t, snaps)

	c.Post(increment{})
	_ = nextSnap(t, snaps) // interim
	failedSnap := nextSnap(t, snaps)
	assert.Equal(t, "failed", failedSnap.State.Status)
}

func TestContainer_CloseDiscardsLateTaskResults(t *testing.T) {
	c := container.New(
		context.Background(),
		counterState{Status: "initial"},
		transition,
		failState,
	)

	snaps := make(chan container.Snapshot[counterState], 8)
	c.Subscribe(func(snap container.Snapshot[counterState]) { snaps <- snap })
	_ = nextSnap(t, snaps)

	block := make(chan struct{})
	result := make(chan int, 1)
	c.Post(load{result: result, block: block})
	_ = nextSnap(t, snaps) // interim

	require.NoError(t, c.Close())
	result <- 99
	close(block)

	select {
	case snap := <-snaps:
		t.Fatalf("disposed container emitted state: %+v", snap.State)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, "loading", c.Current().State.Status)
}

func TestContainer_PostAfterCloseIsDropped(t *testing.T) {
	c, snaps := newCounter(t)
	_ = nextSnap(t, snaps)

	require.NoError(t, c.Close())
	c.Post(increment{})

	select {
	case snap := <-snaps:
		t.Fatalf("unexpected snapshot after close: %+v", snap.State)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestContainer_UnsubscribeStopsDelivery(t *testing.T) {
	c := container.New(
		context.Background(),
		counterState{Status: "initial"},
		transition,
		failState,
	)
	defer func() { _ = c.Close() }()

	snaps := make(chan container.Snapshot[counterState], 8)
	unsub := c.Subscribe(func(snap container.Snapshot[counterState]) { snaps <- snap })
	_ = nextSnap(t, snaps)
	unsub()

	c.Post(increment{})
	select {
	case snap := <-snaps:
		t.Fatalf("unexpected snapshot after unsubscribe: %+v", snap.State)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestContainer_ForwardPumpsFeedUntilClose(t *testing.T) {
	c, snaps := newCounter(t)
	_ = nextSnap(t, snaps)

	feed := make(chan string, 4)
	container.Forward(c, feed, func(string) counterEvent { return increment{} })

	feed <- "tick"
	feed <- "tick"

	assert.Equal(t, 1, nextSnap(t, snaps).State.N)
	assert.Equal(t, 2, nextSnap(t, snaps).State.N)
}

func TestContainer_DigestExcludesTransientEffect(t *testing.T) {
	c, snaps := newCounter(t)
	plain := nextSnap(t, snaps)

	c.Post(announce{text: "hello"})
	announced := nextSnap(t, snaps)

	require.NotNil(t, announced.State.Eff)
	assert.Equal(t, plain.Digest, announced.Digest,
		"states equal but for the effect must be logically equal")
	assert.True(t, container.LogicallyEqual(plain.State, announced.State))
	assert.NotEqual(t, plain.Seq, announced.Seq,
		"effect instances stay distinguishable by sequence")
}

func TestContainer_EffectClearedBeforeNextTransition(t *testing.T) {
	c, snaps := newCounter(t)
	_ = nextSnap(t, snaps)

	c.Post(announce{text: "hello"})
	withEff := nextSnap(t, snaps)
	require.NotNil(t, withEff.State.TransientEffect())

	c.Post(increment{})
	after := nextSnap(t, snaps)
	assert.Nil(t, after.State.TransientEffect(),
		"an effect must never survive into the next processed event")
}

func TestContainer_CloseRunsTeardownsAndIsIdempotent(t *testing.T) {
	calls := 0
	tdErr := errors.New("sync failed")
	c := container.New(
		context.Background(),
		counterState{Status: "initial"},
		transition,
		failState,
		container.WithTeardown(func() error { calls++; return nil }),
		container.WithTeardown(func() error { calls++; return tdErr }),
	)

	err := c.Close()
	require.ErrorIs(t, err, tdErr)
	assert.Equal(t, 2, calls)

	require.ErrorIs(t, c.Close(), tdErr, "second close reports the same result")
	assert.Equal(t, 2, calls, "teardowns run once")
}

func TestContainer_MarkDeliveredOnlyMovesForward(t *testing.T) {
	c, _ := newCounter(t)

	c.MarkDelivered(5)
	c.MarkDelivered(3)
	assert.Equal(t, uint64(5), c.DeliveredSeq())
	c.MarkDelivered(9)
	assert.Equal(t, uint64(9), c.DeliveredSeq())
}
