package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	assert.EqualError(t, NewMethodNotFoundError("mmap"), "syscall handler has no method mmap")
	assert.EqualError(t, NewInvalidInputError(42), "unexpected syscall input type int")
	assert.EqualError(t, NewInvalidOutputError("oops"), "unexpected syscall output type string")
}
