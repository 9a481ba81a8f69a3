// Package coop implements the machine.Switcher contract with goroutines and
// channels: each context is a parked goroutine, and a switch is a wake of one
// side followed by a park of the other. Because the core is cooperative and
// single-processor, at most one context is ever runnable between switches.
package coop

import "github.com/viant/gokern/machine"

// Service is the cooperative context-switch primitive.
type Service struct{}

var _ machine.Switcher = (*Service)(nil)

// New creates a cooperative switcher.
func New() *Service {
	return &Service{}
}

// Switch activates restore and suspends the caller into save. The call
// returns only when another switch targets save again.
func (s *Service) Switch(save, restore *machine.Context) {
	restore.Activate()
	save.Suspend()
}

// Handoff activates restore and returns immediately. The caller must not
// touch shared state afterwards; its flow of control is considered dead.
func (s *Service) Handoff(restore *machine.Context) {
	restore.Activate()
}
