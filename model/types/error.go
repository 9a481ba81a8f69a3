package types

import "fmt"

// NewMethodNotFoundError indicates a handler service exposes no such
// operation.
func NewMethodNotFoundError(name string) error {
	return fmt.Errorf("syscall handler has no method %v", name)
}

// NewInvalidInputError indicates the dispatcher handed a handler an input of
// an unexpected type.
func NewInvalidInputError(in interface{}) error {
	return fmt.Errorf("unexpected syscall input type %T", in)
}

// NewInvalidOutputError indicates the dispatcher handed a handler an output
// of an unexpected type.
func NewInvalidOutputError(out interface{}) error {
	return fmt.Errorf("unexpected syscall output type %T", out)
}
