// Package vm implements the virtual-memory syscall handlers: map and unmap
// a user region and adjust the heap break. Results follow the syscall ABI:
// zero or the previous break on success, -1 on rejection.
package vm

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gokern/extension"
	"github.com/viant/gokern/model/types"
	"github.com/viant/gokern/service/processor"
)

const name = "vm"

// Service handles virtual-memory syscalls.
type Service struct {
	processor *processor.Service
}

// MmapInput carries a map request: page-aligned start, byte length and raw
// read/write/execute permission bits.
type MmapInput struct {
	Start uint64
	Len   uint64
	Port  uint64
}

// MmapOutput carries the syscall result.
type MmapOutput struct {
	Result int
}

// MunmapInput carries an unmap request with page-aligned bounds.
type MunmapInput struct {
	Start uint64
	Len   uint64
}

// MunmapOutput carries the syscall result.
type MunmapOutput struct {
	Result int
}

// SbrkInput carries a signed heap break adjustment in bytes.
type SbrkInput struct {
	Delta int64
}

// SbrkOutput carries the previous break, or -1 when the request was
// rejected.
type SbrkOutput struct {
	Previous int64
}

// New creates the vm handler service.
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
			Name:        "mmap",
			Description: "Maps a fresh user region into the current task's address space.",
			Input:       reflect.TypeOf(&MmapInput{}),
			Output:      reflect.TypeOf(&MmapOutput{}),
		},
		{
			Name:        "munmap",
			Description: "Removes an exactly matching user region.",
			Input:       reflect.TypeOf(&MunmapInput{}),
			Output:      reflect.TypeOf(&MunmapOutput{}),
		},
		{
			Name:        "sbrk",
			Description: "Grows or shrinks the current task's heap break.",
			Input:       reflect.TypeOf(&SbrkInput{}),
			Output:      reflect.TypeOf(&SbrkOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "mmap":
		return s.mmap, nil
	case "munmap":
		return s.munmap, nil
	case "sbrk":
		return s.sbrk, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// InitTypes registers the handler data types.
func (s *Service) InitTypes(registry *extension.Types) {
	registry.RegisterType(reflect.TypeOf(MmapInput{}))
	registry.RegisterType(reflect.TypeOf(MunmapInput{}))
	registry.RegisterType(reflect.TypeOf(SbrkInput{}))
}

func (s *Service) mmap(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*MmapInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*MmapOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	output.Result = s.processor.CurrentMapRegion(uintptr(input.Start), uintptr(input.Len), input.Port)
	return nil
}

func (s *Service) munmap(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*MunmapInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*MunmapOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	output.Result = s.processor.CurrentUnmapRegion(uintptr(input.Start), uintptr(input.Len))
	return nil
}

func (s *Service) sbrk(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SbrkInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SbrkOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	output.Previous = s.processor.CurrentBreakChange(input.Delta)
	return nil
}
