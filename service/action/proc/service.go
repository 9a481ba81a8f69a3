// Package proc implements the process life-cycle syscall handlers: exit,
// voluntary yield and the accounting snapshot query.
package proc

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/viant/gokern/extension"
	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/model/types"
	"github.com/viant/gokern/service/processor"
)

const name = "proc"

// ErrExited signals that the current task terminated; it is a control-flow
// marker, not a failure.
var ErrExited = errors.New("proc: task exited")

// Service handles process life-cycle syscalls.
type Service struct {
	processor *processor.Service
}

// ExitInput carries the task's exit code.
type ExitInput struct {
	Code int
}

// ExitOutput is empty; exit never returns to the caller.
type ExitOutput struct{}

// YieldInput requests a voluntary yield.
type YieldInput struct{}

// YieldOutput is produced once the task has been dispatched again.
type YieldOutput struct{}

// InfoInput requests an accounting snapshot.
type InfoInput struct{}

// InfoOutput is the accounting snapshot of the current task.
type InfoOutput struct {
	Status       string
	ElapsedMs    int64
	SyscallTimes map[int]uint32
}

// New creates the proc handler service.
func New(proc *processor.Service) *Service {
	return &Service{processor: proc}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "exit",
			Description: "Terminates the current task with the supplied exit code.",
			Input:       reflect.TypeOf(&ExitInput{}),
			Output:      reflect.TypeOf(&ExitOutput{}),
		},
		{
			Name:        "yield",
			Description: "Suspends the current task until the dispatcher re-selects it.",
			Input:       reflect.TypeOf(&YieldInput{}),
			Output:      reflect.TypeOf(&YieldOutput{}),
		},
		{
			Name:        "info",
			Description: "Returns the current task's accounting snapshot.",
			Input:       reflect.TypeOf(&InfoInput{}),
			Output:      reflect.TypeOf(&InfoOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "exit":
		return s.exit, nil
	case "yield":
		return s.yield, nil
	case "info":
		return s.info, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// InitTypes registers the handler data types.
func (s *Service) InitTypes(registry *extension.Types) {
	registry.RegisterType(reflect.TypeOf(ExitInput{}))
	registry.RegisterType(reflect.TypeOf(InfoOutput{}))
}

func (s *Service) exit(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ExitInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	if err := s.processor.ExitCurrent(input.Code); err != nil {
		return err
	}
	return ErrExited
}

func (s *Service) yield(ctx context.Context, in, out interface{}) error {
	if _, ok := in.(*YieldInput); !ok {
		return types.NewInvalidInputError(in)
	}
	return s.processor.YieldCurrent(ctx)
}

func (s *Service) info(ctx context.Context, in, out interface{}) error {
	output, ok := out.(*InfoOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	snapshot := s.processor.CurrentInfo()
	output.Status = snapshot.Status.String()
	output.ElapsedMs = snapshot.ElapsedMs
	output.SyscallTimes = map[int]uint32{}
	for id := 0; id < task.MaxSyscallNum; id++ {
		if snapshot.SyscallTimes[id] > 0 {
			output.SyscallTimes[id] = snapshot.SyscallTimes[id]
		}
	}
	return nil
}
