// Package executor runs a task's program listing as its user-mode body:
// each instruction is dispatched as a syscall through the registered handler
// services, with yield and exit folding back into the scheduling core.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/viant/gokern/model/program"
	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/service/action/proc"
	"github.com/viant/gokern/service/processor"
	"github.com/viant/gokern/service/syscall"
)

// Listener is invoked after every executed instruction. Implementations can
// log, collect metrics or perform any other side-effects they require.
type Listener func(t *task.ControlBlock, instruction program.Instruction, output interface{})

// Option customises the executor instance.
type Option func(*service)

// WithListener overrides the listener invoked after every executed
// instruction. Passing nil disables the callback entirely.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// Service runs a task's user program.
type Service interface {
	Run(ctx context.Context, t *task.ControlBlock) error
}

type service struct {
	dispatcher *syscall.Dispatcher
	processor  *processor.Service
	listener   Listener
}

// NewService creates an executor.
func NewService(dispatcher *syscall.Dispatcher, proc *processor.Service, opts ...Option) Service {
	s := &service{dispatcher: dispatcher, processor: proc}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes the task's instruction listing. It is the task's entry
// function: the first dispatch of the task starts it, and it returns only
// once the task has exited. A program that falls off the end of its listing
// exits implicitly with code 0.
func (s *service) Run(ctx context.Context, t *task.ControlBlock) error {
	for _, instruction := range t.Program().Instructions {
		if instruction.Op == program.OpSpin {
			spin(instruction.Args)
			continue
		}
		output, err := s.dispatcher.Invoke(ctx, instruction)
		if errors.Is(err, proc.ErrExited) {
			s.notify(t, instruction, output)
			return nil
		}
		if err != nil {
			// a handler failure kills the task rather than the kernel
			log.Printf("executor: task %v: %v failed: %v", t.ID(), instruction.Op, err)
			if exitErr := s.processor.ExitCurrent(-1); exitErr != nil {
				return fmt.Errorf("failed to kill task %v: %v (after %w)", t.ID(), exitErr, err)
			}
			return err
		}
		s.notify(t, instruction, output)
	}
	return s.processor.ExitCurrent(0)
}

func (s *service) notify(t *task.ControlBlock, instruction program.Instruction, output interface{}) {
	if s.listener == nil {
		return
	}
	s.listener(t, instruction, output)
}

// spin burns cycles without issuing a syscall, simulating user-mode compute.
func spin(args []int64) {
	var n int64 = 1
	if len(args) > 0 && args[0] > 0 {
		n = args[0]
	}
	sink := int64(0)
	for i := int64(0); i < n; i++ {
		sink += i
	}
	_ = sink
}
