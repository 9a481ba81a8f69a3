package fifo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gokern/mem/memory"
	"github.com/viant/gokern/model/program"
	"github.com/viant/gokern/model/task"
)

func newTask(t *testing.T, name string) *task.ControlBlock {
	t.Helper()
	service := memory.New(memory.DefaultConfig())
	image := &program.Image{
		Name:         name,
		Instructions: []program.Instruction{{Op: program.OpExit, Args: []int64{0}}},
	}
	block, err := task.New(image, 0, service, service.NewSpace(), func(*task.ControlBlock) {})
	require.NoError(t, err)
	return block
}

func TestQueue_ArrivalOrder(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue(DefaultConfig())

	first := newTask(t, "first")
	second := newTask(t, "second")
	require.NoError(t, queue.Publish(ctx, first))
	require.NoError(t, queue.Publish(ctx, second))
	assert.Equal(t, 2, queue.Size())

	got, ok := queue.FetchNextRunnable(ctx)
	require.True(t, ok)
	assert.Equal(t, first.ID(), got.ID())

	got, ok = queue.FetchNextRunnable(ctx)
	require.True(t, ok)
	assert.Equal(t, second.ID(), got.ID())

	_, ok = queue.FetchNextRunnable(ctx)
	assert.False(t, ok)
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_PublishErrors(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue(Config{QueueBuffer: 1})

	assert.Error(t, queue.Publish(ctx, nil))
	require.NoError(t, queue.Publish(ctx, newTask(t, "only")))
	assert.Error(t, queue.Publish(ctx, newTask(t, "overflow")))

	// a cancelled context is reported even when the queue has room
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	spare := NewQueue(DefaultConfig())
	assert.ErrorIs(t, spare.Publish(cancelled, newTask(t, "late")), context.Canceled)
	assert.Equal(t, 0, spare.Size())
}
