package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightfold/statefx/internal/worker"
)

func TestQueue_HandlesMessagesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 16)
	q := worker.NewQueue(ctx, 4, func(_ context.Context, n int) {
		got <- n
	})

	for i := 0; i < 10; i++ {
		require.True(t, q.Enqueue(ctx, i))
	}
	for i := 0; i < 10; i++ {
		select {
		case n := <-got:
			assert.Equal(t, i, n)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for message")
		}
	}
}

func TestQueue_EnqueueFailsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := worker.NewQueue(ctx, 1, func(context.Context, int) {})
	cancel()

	// The worker may need a moment to observe cancellation, but Enqueue
	// with the canceled context must refuse immediately.
	assert.False(t, q.Enqueue(ctx, 1))
}
