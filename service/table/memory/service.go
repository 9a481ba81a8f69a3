package memory

import (
	"context"
	"sync"

	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/service/table"
)

// Service implements an in-memory, thread-safe task table.
type Service struct {
	tasks map[string]*task.ControlBlock
	mux   sync.RWMutex
}

var _ table.Service = (*Service)(nil)

// New creates an in-memory task table.
func New() *Service {
	return &Service{tasks: make(map[string]*task.ControlBlock)}
}

// Save registers or updates a task.
func (s *Service) Save(_ context.Context, t *task.ControlBlock) error {
	if t == nil {
		return table.ErrNilTask
	}
	if t.ID() == "" {
		return table.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.tasks[t.ID()] = t
	return nil
}

// Load returns the task with the given id.
func (s *Service) Load(_ context.Context, id string) (*task.ControlBlock, error) {
	if id == "" {
		return nil, table.ErrInvalidID
	}
	s.mux.RLock()
	t, ok := s.tasks[id]
	s.mux.RUnlock()
	if !ok {
		return nil, table.ErrNotFound
	}
	return t, nil
}

// Delete removes the task with the given id.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return table.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return table.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// List returns tasks, optionally filtered by status.
func (s *Service) List(_ context.Context, statuses ...task.Status) ([]*task.ControlBlock, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*task.ControlBlock, 0, len(s.tasks))
	for _, t := range s.tasks {
		if len(statuses) > 0 && !matches(t.Status(), statuses) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func matches(status task.Status, statuses []task.Status) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}
