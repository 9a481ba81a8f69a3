package processor

import (
	"time"

	"github.com/viant/gokern/machine"
	"github.com/viant/gokern/service/scheduler"
)

// Option customises the dispatcher.
type Option func(s *Service)

// WithQueue sets the ready queue.
func WithQueue(queue scheduler.Queue) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithSwitcher sets the context-switch primitive.
func WithSwitcher(switcher machine.Switcher) Option {
	return func(s *Service) {
		s.switcher = switcher
	}
}

// WithIdlePollInterval overrides how often the dispatch loop re-polls an
// empty ready queue.
func WithIdlePollInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.config.IdlePollInterval = interval
		}
	}
}
