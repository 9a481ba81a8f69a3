package stride

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gokern/mem/memory"
	"github.com/viant/gokern/model/program"
	"github.com/viant/gokern/model/task"
)

func newTask(t *testing.T, name string, priority int) *task.ControlBlock {
	t.Helper()
	service := memory.New(memory.DefaultConfig())
	image := &program.Image{
		Name:         name,
		Instructions: []program.Instruction{{Op: program.OpExit, Args: []int64{0}}},
	}
	block, err := task.New(image, 0, service, service.NewSpace(), func(*task.ControlBlock) {})
	require.NoError(t, err)
	require.NoError(t, block.SetPriority(priority))
	return block
}

func TestQueue_PriorityProportion(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue()

	low := newTask(t, "low", 2)
	high := newTask(t, "high", 6)
	require.NoError(t, queue.Publish(ctx, low))
	require.NoError(t, queue.Publish(ctx, high))

	counts := map[string]int{}
	for i := 0; i < 240; i++ {
		next, ok := queue.FetchNextRunnable(ctx)
		require.True(t, ok)
		counts[next.Program().Name]++
		require.NoError(t, queue.Publish(ctx, next))
	}

	// selection frequency tracks priority: the high-priority task runs about
	// three times as often, and the low-priority task is never starved
	assert.Greater(t, counts["low"], 0)
	ratio := float64(counts["high"]) / float64(counts["low"])
	assert.InDelta(t, 3.0, ratio, 0.25)
}

func TestQueue_PassSurvivesRepublish(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue()

	veteran := newTask(t, "veteran", 16)
	require.NoError(t, queue.Publish(ctx, veteran))
	for i := 0; i < 3; i++ {
		next, ok := queue.FetchNextRunnable(ctx)
		require.True(t, ok)
		require.NoError(t, queue.Publish(ctx, next))
	}

	// a fresh task starts at pass zero and runs before the veteran catches up
	fresh := newTask(t, "fresh", 16)
	require.NoError(t, queue.Publish(ctx, fresh))
	for i := 0; i < 3; i++ {
		next, ok := queue.FetchNextRunnable(ctx)
		require.True(t, ok)
		assert.Equal(t, "fresh", next.Program().Name)
		require.NoError(t, queue.Publish(ctx, next))
	}
}

func TestQueue_Evict(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue()

	block := newTask(t, "oneshot", 16)
	require.NoError(t, queue.Publish(ctx, block))
	_, ok := queue.FetchNextRunnable(ctx)
	require.True(t, ok)
	require.Len(t, queue.passes, 1)

	// eviction releases the pass accounting of a terminated task
	queue.Evict(block.ID())
	assert.Len(t, queue.passes, 0)

	// a task published after eviction starts over at pass zero
	require.NoError(t, queue.Publish(ctx, block))
	assert.Equal(t, uint64(0), queue.passes[block.ID()])
}

func TestQueue_Empty(t *testing.T) {
	queue := NewQueue()
	_, ok := queue.FetchNextRunnable(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 0, queue.Size())
	assert.Error(t, queue.Publish(context.Background(), nil))
}
