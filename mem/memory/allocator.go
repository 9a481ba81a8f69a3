package memory

import (
	"sync"

	"github.com/viant/gokern/mem"
)

// Allocator hands out physical page frames from a bounded pool, reusing
// recycled frames before minting new ones.
type Allocator struct {
	mux      sync.Mutex
	next     uint64
	capacity uint64
	recycled []*mem.Frame
}

// NewAllocator creates an allocator managing up to capacity frames. A zero or
// negative capacity falls back to the default pool size.
func NewAllocator(capacity int) *Allocator {
	if capacity <= 0 {
		capacity = defaultFrameCapacity
	}
	return &Allocator{capacity: uint64(capacity)}
}

const defaultFrameCapacity = 4096

// Alloc returns a free frame or mem.ErrOutOfFrames when the pool is
// exhausted.
func (a *Allocator) Alloc() (*mem.Frame, error) {
	a.mux.Lock()
	defer a.mux.Unlock()
	if n := len(a.recycled); n > 0 {
		frame := a.recycled[n-1]
		a.recycled = a.recycled[:n-1]
		frame.Payload = nil
		return frame, nil
	}
	if a.next >= a.capacity {
		return nil, mem.ErrOutOfFrames
	}
	frame := &mem.Frame{PPN: a.next}
	a.next++
	return frame, nil
}

// Free returns a frame to the pool.
func (a *Allocator) Free(frame *mem.Frame) {
	if frame == nil {
		return
	}
	a.mux.Lock()
	defer a.mux.Unlock()
	frame.Payload = nil
	a.recycled = append(a.recycled, frame)
}

// Available returns the number of frames that can still be allocated.
func (a *Allocator) Available() int {
	a.mux.Lock()
	defer a.mux.Unlock()
	return int(a.capacity-a.next) + len(a.recycled)
}
