package processor

import "sync"

// The processor is a process-wide singleton: created once at boot and never
// destroyed. Install wires the boot-time instance; Active hands it to
// syscall handlers that have no other way to resolve "the current task".

var (
	active      *Service
	installOnce sync.Once
)

// Install registers the boot-time dispatcher. Only the first call takes
// effect.
func Install(s *Service) {
	installOnce.Do(func() {
		active = s
	})
}

// Active returns the installed dispatcher; calling it before Install is a
// boot-order programming error.
func Active() *Service {
	if active == nil {
		panic("processor: not installed")
	}
	return active
}
