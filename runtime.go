package gokern

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/gokern/mem"
	"github.com/viant/gokern/mem/memory"
	"github.com/viant/gokern/model/program"
	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/service/executor"
	"github.com/viant/gokern/service/loader"
	"github.com/viant/gokern/service/processor"
	"github.com/viant/gokern/service/scheduler"
	"github.com/viant/gokern/service/table"
)

// Runtime represents a booted kernel runtime.
type Runtime struct {
	processor *processor.Service
	queue     scheduler.Queue
	taskTable table.Service
	loader    *loader.Service
	memory    *memory.Service
	kernel    mem.Space
	executor  executor.Service

	mux     sync.Mutex
	nextSeq int
	cancel  context.CancelFunc
}

// Processor returns the dispatcher.
func (r *Runtime) Processor() *processor.Service {
	return r.processor
}

// LoadProgram fetches and parses the program listing at the given URL.
func (r *Runtime) LoadProgram(ctx context.Context, location string) (*program.Image, error) {
	return r.loader.Load(ctx, location)
}

// Spawn loads the program at the given URL, builds a task from it and places
// the task on the ready queue.
func (r *Runtime) Spawn(ctx context.Context, location string) (*task.ControlBlock, error) {
	image, err := r.loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return r.SpawnImage(ctx, image)
}

// SpawnImage builds a task from an already parsed image and places it on the
// ready queue. The task's body runs the image's instruction listing once the
// dispatcher first selects it.
func (r *Runtime) SpawnImage(ctx context.Context, image *program.Image) (*task.ControlBlock, error) {
	if err := image.Validate(); err != nil {
		return nil, err
	}
	seq := r.allocateSeq()
	t, err := task.New(image, seq, r.memory, r.kernel, func(t *task.ControlBlock) {
		_ = r.executor.Run(context.Background(), t)
	})
	if err != nil {
		return nil, err
	}
	if err = r.taskTable.Save(ctx, t); err != nil {
		return nil, err
	}
	if err = r.queue.Publish(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Task returns the task with the given id.
func (r *Runtime) Task(ctx context.Context, id string) (*task.ControlBlock, error) {
	return r.taskTable.Load(ctx, id)
}

// Tasks returns tasks, optionally filtered by status.
func (r *Runtime) Tasks(ctx context.Context, statuses ...task.Status) ([]*task.ControlBlock, error) {
	return r.taskTable.List(ctx, statuses...)
}

// Start starts the dispatch loop in the background.
func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.mux.Lock()
	r.cancel = cancel
	r.mux.Unlock()
	go func() {
		_ = r.processor.Run(ctx)
	}()
	return nil
}

// Shutdown stops the dispatch loop.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mux.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mux.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// WaitForTask blocks until the given task exits and returns its exit code.
func (r *Runtime) WaitForTask(ctx context.Context, t *task.ControlBlock, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	for {
		if t.Status() == task.StatusExited {
			return t.ExitCode(), nil
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("timeout waiting for task %v", t.ID())
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (r *Runtime) allocateSeq() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	seq := r.nextSeq
	r.nextSeq++
	return seq
}
