// Package stride implements the ready queue with min-stride selection: each
// task accumulates a pass value growing inversely to its priority, and the
// queue always hands out the task with the smallest pass. Pass values survive
// re-publication so a yielding task keeps its scheduling history.
package stride

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/service/scheduler"
)

// BigStride is the stride numerator; a task's stride is BigStride divided by
// its priority.
const BigStride = 65536

// Queue is a min-stride ready queue.
type Queue struct {
	mux     sync.Mutex
	entries []*task.ControlBlock
	passes  map[string]uint64
}

var (
	_ scheduler.Queue   = (*Queue)(nil)
	_ scheduler.Evictor = (*Queue)(nil)
)

// NewQueue creates a min-stride ready queue.
func NewQueue() *Queue {
	return &Queue{passes: make(map[string]uint64)}
}

// Publish adds a ready task to the queue, retaining any previously
// accumulated pass value.
func (q *Queue) Publish(ctx context.Context, t *task.ControlBlock) error {
	if t == nil {
		return fmt.Errorf("cannot publish nil task")
	}
	q.mux.Lock()
	defer q.mux.Unlock()
	if _, ok := q.passes[t.ID()]; !ok {
		q.passes[t.ID()] = 0
	}
	q.entries = append(q.entries, t)
	return nil
}

// FetchNextRunnable removes and returns the task with the minimum pass value
// and advances its pass by its stride.
func (q *Queue) FetchNextRunnable(ctx context.Context) (*task.ControlBlock, bool) {
	q.mux.Lock()
	defer q.mux.Unlock()
	if len(q.entries) == 0 {
		return nil, false
	}
	minIdx := 0
	for i := 1; i < len(q.entries); i++ {
		if q.passes[q.entries[i].ID()] < q.passes[q.entries[minIdx].ID()] {
			minIdx = i
		}
	}
	next := q.entries[minIdx]
	q.entries = append(q.entries[:minIdx], q.entries[minIdx+1:]...)
	q.passes[next.ID()] += BigStride / uint64(next.Priority())
	return next, true
}

// Size returns the current number of queued tasks.
func (q *Queue) Size() int {
	q.mux.Lock()
	defer q.mux.Unlock()
	return len(q.entries)
}

// Evict drops the pass accounting of a task that will never be published
// again, keeping the pass map bounded by the number of live tasks.
func (q *Queue) Evict(id string) {
	q.mux.Lock()
	defer q.mux.Unlock()
	delete(q.passes, id)
}
