// Package clock implements the get-time syscall handler.
package clock

import (
	"context"
	"reflect"
	"strings"

	iclock "github.com/viant/gokern/internal/clock"
	"github.com/viant/gokern/model/types"
)

const name = "clock"

// Service handles time syscalls.
type Service struct{}

// TimeInput requests the current time.
type TimeInput struct{}

// TimeOutput carries the current time in milliseconds.
type TimeOutput struct {
	Ms int64
}

// New creates the clock handler service.
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "time",
			Description: "Returns the current wall-clock time in milliseconds.",
			Input:       reflect.TypeOf(&TimeInput{}),
			Output:      reflect.TypeOf(&TimeOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "time":
		return s.time, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) time(ctx context.Context, in, out interface{}) error {
	output, ok := out.(*TimeOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	output.Ms = iclock.Millis()
	return nil
}
