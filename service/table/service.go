// Package table defines the kernel task table: the long-lived owner of
// record for task control blocks. The processor only borrows the currently
// running block; the table retains its own reference for the task's whole
// lifetime.
package table

import (
	"context"

	"github.com/viant/gokern/model/task"
)

// Service is the task table contract.
type Service interface {
	// Save registers or updates a task.
	Save(ctx context.Context, t *task.ControlBlock) error

	// Load returns the task with the given id.
	Load(ctx context.Context, id string) (*task.ControlBlock, error)

	// Delete removes the task with the given id.
	Delete(ctx context.Context, id string) error

	// List returns tasks, optionally filtered by status.
	List(ctx context.Context, statuses ...task.Status) ([]*task.ControlBlock, error)
}
