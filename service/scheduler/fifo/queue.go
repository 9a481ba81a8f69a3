// Package fifo implements the ready queue with plain arrival ordering.
package fifo

import (
	"context"
	"fmt"

	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/service/scheduler"
)

// Config for the FIFO queue implementation.
type Config struct {
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for the FIFO queue.
func DefaultConfig() Config {
	return Config{QueueBuffer: 64}
}

// Queue is a channel-backed FIFO ready queue.
type Queue struct {
	tasks chan *task.ControlBlock
}

var _ scheduler.Queue = (*Queue)(nil)

// NewQueue creates a FIFO ready queue.
func NewQueue(config Config) *Queue {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue{tasks: make(chan *task.ControlBlock, config.QueueBuffer)}
}

// Publish adds a ready task to the queue. The call never blocks: a full
// queue is reported immediately.
func (q *Queue) Publish(ctx context.Context, t *task.ControlBlock) error {
	if t == nil {
		return fmt.Errorf("cannot publish nil task")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.tasks <- t:
		return nil
	default:
		return fmt.Errorf("ready queue is full")
	}
}

// FetchNextRunnable removes and returns the oldest queued task.
func (q *Queue) FetchNextRunnable(ctx context.Context) (*task.ControlBlock, bool) {
	select {
	case t := <-q.tasks:
		return t, true
	default:
		return nil, false
	}
}

// Size returns the current number of queued tasks.
func (q *Queue) Size() int {
	return len(q.tasks)
}
