// Package scheduler defines the ready-queue contract consumed by the
// processor. Selection order and tie-break policy belong to the queue
// implementation, never to the dispatcher.
package scheduler

import (
	"context"

	"github.com/viant/gokern/model/task"
)

// Policy names a ready-queue implementation.
type Policy string

const (
	// PolicyFIFO selects tasks in arrival order.
	PolicyFIFO = Policy("fifo")

	// PolicyStride selects the task with the minimum stride pass value.
	PolicyStride = Policy("stride")
)

// Queue supplies the next runnable task on demand.
type Queue interface {
	// Publish adds a ready task to the queue.
	Publish(ctx context.Context, t *task.ControlBlock) error

	// FetchNextRunnable removes and returns the next runnable task, or
	// reports false when no task is eligible. The call never blocks.
	FetchNextRunnable(ctx context.Context) (*task.ControlBlock, bool)

	// Size returns the current number of queued tasks.
	Size() int
}

// Evictor is implemented by queues that keep per-task scheduling state beyond
// the queue entries themselves. Evict releases that state once the task can
// never be published again.
type Evictor interface {
	Evict(id string)
}
