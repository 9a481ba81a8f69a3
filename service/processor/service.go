// Package processor implements the single-core dispatcher: it owns the
// current-task slot and the idle context, and multiplexes the processor among
// ready tasks through the context-switch primitive.
//
// Every operation takes the processor lock, and operations touching a task
// additionally take that task's lock; both are short critical sections
// released before any context switch, because the switch never returns to
// the releasing call frame in the ordinary sense.
package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/gokern/internal/clock"
	"github.com/viant/gokern/machine"
	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/service/scheduler"
	"github.com/viant/gokern/tracing"
)

// Config represents dispatcher configuration.
type Config struct {
	// IdlePollInterval is how long the dispatch loop sleeps when the ready
	// queue has no work.
	IdlePollInterval time.Duration
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{IdlePollInterval: time.Millisecond}
}

// Service is the single-core dispatcher. One instance per logical processor;
// this core assumes exactly one.
type Service struct {
	mux      sync.Mutex
	current  *task.ControlBlock
	idle     *machine.Context
	queue    scheduler.Queue
	switcher machine.Switcher
	config   Config
}

// New creates a dispatcher.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
		idle:   machine.NewIdleContext(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.queue == nil {
		return nil, fmt.Errorf("ready queue is required")
	}
	if s.switcher == nil {
		return nil, fmt.Errorf("switcher is required")
	}
	return s, nil
}

// Run is the dispatch loop entry point: it dispatches tasks until the
// context is cancelled. An empty ready queue is a soft fault - logged once
// per idle spell and polled, since new work may still arrive from outside
// this core.
func (s *Service) Run(ctx context.Context) error {
	idleLogged := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.DispatchOnce(ctx) {
			idleLogged = false
			continue
		}
		if !idleLogged {
			log.Printf("processor: no runnable task")
			idleLogged = true
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.config.IdlePollInterval):
		}
	}
}

// DispatchOnce performs one scheduling iteration: fetch the next runnable
// task, mark it Running, install it as current and switch from the idle
// context into the task. The call returns once the task later yields or
// exits back into the idle context. It reports false when the ready queue
// was empty.
func (s *Service) DispatchOnce(ctx context.Context) bool {
	s.mux.Lock()
	next, ok := s.queue.FetchNextRunnable(ctx)
	if !ok {
		s.mux.Unlock()
		return false
	}
	restore, err := next.MarkRunning(clock.Millis())
	if err != nil {
		// a queue handing out a non-Ready task is a policy defect; drop it
		s.mux.Unlock()
		log.Printf("processor: dropping task %v: %v", next.ID(), err)
		return true
	}
	s.current = next
	idle := s.idle
	s.mux.Unlock()
	_, span := tracing.StartSpan(ctx, "processor.dispatch", "INTERNAL")
	span.WithAttributes(map[string]string{"task.id": next.ID()})
	s.switcher.Switch(idle, restore)
	tracing.EndSpan(span, nil)
	return true
}

// TakeCurrent empties the current-task slot and returns the task that
// occupied it. Used on the yield and exit paths, where the slot must be
// vacated before the next switch.
func (s *Service) TakeCurrent() *task.ControlBlock {
	s.mux.Lock()
	defer s.mux.Unlock()
	current := s.current
	s.current = nil
	return current
}

// Current returns the current task, leaving the slot intact.
func (s *Service) Current() *task.ControlBlock {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.current
}

// Schedule returns control to the dispatcher: it switches from the supplied
// suspended context back to the idle context. The call blocks until the
// dispatcher later re-selects the suspended context.
func (s *Service) Schedule(suspended *machine.Context) {
	s.mux.Lock()
	idle := s.idle
	s.mux.Unlock()
	s.switcher.Switch(suspended, idle)
}

// YieldCurrent suspends the running task voluntarily: it marks the task
// Ready, re-queues it, vacates the current slot and hands control back to the
// dispatcher. The call returns when the task is dispatched again. The slot is
// vacated only once the re-queue has succeeded; on a failed re-queue the task
// stays Running and current, so the caller can keep executing or exit.
func (s *Service) YieldCurrent(ctx context.Context) error {
	current := s.mustCurrent()
	suspended, err := current.MarkReady()
	if err != nil {
		return err
	}
	if err = s.queue.Publish(ctx, current); err != nil {
		if _, markErr := current.MarkRunning(clock.Millis()); markErr != nil {
			return markErr
		}
		return fmt.Errorf("failed to requeue task %v: %w", current.ID(), err)
	}
	s.TakeCurrent()
	s.Schedule(suspended)
	return nil
}

// ExitCurrent terminates the running task: it vacates the current slot,
// marks the task Exited with the supplied code, reclaims its memory and
// hands control to the dispatcher one-way. The calling flow must do nothing
// after this call beyond unwinding.
func (s *Service) ExitCurrent(code int) error {
	current := s.mustTakeCurrent()
	if err := current.MarkExited(code); err != nil {
		return err
	}
	if evictor, ok := s.queue.(scheduler.Evictor); ok {
		evictor.Evict(current.ID())
	}
	s.mux.Lock()
	idle := s.idle
	s.mux.Unlock()
	s.switcher.Handoff(idle)
	return nil
}

// CurrentInfo recomputes the running task's elapsed time, syncs its status
// mirror and returns an accounting snapshot.
func (s *Service) CurrentInfo() task.Info {
	return s.mustCurrent().Accounting(clock.Millis())
}

// RecordSyscall bumps the running task's counter for the given syscall id;
// out-of-range ids are silently dropped.
func (s *Service) RecordSyscall(id int) {
	s.mustCurrent().RecordSyscall(id)
}

// CurrentUserToken returns the running task's page-table token.
func (s *Service) CurrentUserToken() uint64 {
	return s.mustCurrent().UserToken()
}

// CurrentTrapFrame returns a mutable view of the running task's trap frame.
func (s *Service) CurrentTrapFrame() *machine.TrapFrame {
	return s.mustCurrent().TrapFrame()
}

// CurrentMapRegion forwards a map request to the running task's address
// space; it returns 0 on success and -1 on any validation or overlap
// failure.
func (s *Service) CurrentMapRegion(start, length uintptr, port uint64) int {
	if err := s.mustCurrent().MapRegion(start, length, port); err != nil {
		return -1
	}
	return 0
}

// CurrentUnmapRegion forwards an unmap request to the running task's address
// space; it returns 0 on success and -1 on failure.
func (s *Service) CurrentUnmapRegion(start, length uintptr) int {
	if err := s.mustCurrent().UnmapRegion(start, length); err != nil {
		return -1
	}
	return 0
}

// CurrentBreakChange adjusts the running task's heap break by delta bytes
// and returns the previous break, or -1 when the request was rejected.
func (s *Service) CurrentBreakChange(delta int64) int64 {
	previous, err := s.mustCurrent().ChangeProgramBreak(delta)
	if err != nil {
		return -1
	}
	return int64(previous)
}

// mustCurrent returns the running task; an empty slot means a programming
// error elsewhere in the kernel and aborts loudly.
func (s *Service) mustCurrent() *task.ControlBlock {
	current := s.Current()
	if current == nil {
		panic("processor: no current task")
	}
	return current
}

func (s *Service) mustTakeCurrent() *task.ControlBlock {
	current := s.TakeCurrent()
	if current == nil {
		panic("processor: no current task")
	}
	return current
}
