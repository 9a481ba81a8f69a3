// Package printer implements the write syscall handler used by user
// programs to emit console output.
package printer

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/gokern/model/types"
)

const name = "printer"

// Service writes user-program output to standard output.
type Service struct{}

// Input carries the message to print.
type Input struct {
	Message string
}

// Output represents print output.
type Output struct{}

// New creates the printer handler service.
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
			Name:        "print",
			Description: "Prints the given message to standard output.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "print":
		return s.print, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) print(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	fmt.Println(input.Message)
	return nil
}
