package task

import "fmt"

// Status is a task's life-cycle state.
type Status uint8

const (
	// StatusUnInit marks a task whose construction has not completed.
	StatusUnInit Status = iota

	// StatusReady marks a task eligible for dispatch.
	StatusReady

	// StatusRunning marks the task currently assigned the processor.
	StatusRunning

	// StatusExited is terminal; an exited task is never scheduled again.
	StatusExited
)

func (s Status) String() string {
	switch s {
	case StatusUnInit:
		return "uninit"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusExited:
		return "exited"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// CanTransitionTo reports whether the life-cycle state machine permits moving
// from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusUnInit:
		return next == StatusReady
	case StatusReady:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusReady || next == StatusExited
	}
	return false
}
