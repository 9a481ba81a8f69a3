// Package memory provides the in-memory reference implementation of the
// mem.Space and mem.Factory contracts: a sorted region set backed by a
// bounded frame allocator, with no hardware page tables behind it.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/viant/gokern/mem"
	"github.com/viant/gokern/model/program"
)

// Config holds memory service settings.
type Config struct {
	// FrameCapacity bounds the shared physical frame pool.
	FrameCapacity int

	// DefaultStackSize is used for images that do not declare a stack size.
	DefaultStackSize uintptr
}

// DefaultConfig returns the standard memory service configuration.
func DefaultConfig() Config {
	return Config{
		FrameCapacity:    4096,
		DefaultStackSize: 2 * mem.PageSize,
	}
}

// Service builds address spaces sharing a single frame pool.
type Service struct {
	config    Config
	allocator *Allocator
}

var _ mem.Factory = (*Service)(nil)

// New creates a memory service.
func New(config Config) *Service {
	if config.FrameCapacity <= 0 {
		config.FrameCapacity = DefaultConfig().FrameCapacity
	}
	if config.DefaultStackSize == 0 {
		config.DefaultStackSize = DefaultConfig().DefaultStackSize
	}
	return &Service{config: config, allocator: NewAllocator(config.FrameCapacity)}
}

// Allocator exposes the shared frame pool.
func (s *Service) Allocator() *Allocator {
	return s.allocator
}

// NewSpace returns an empty address space drawing frames from the shared pool.
func (s *Service) NewSpace() mem.Space {
	return &Space{token: nextToken(), allocator: s.allocator, frames: map[uintptr]*mem.Frame{}}
}

// FromImage builds a task address space: one region per image segment, a
// guard page, the user stack and the trap-frame page. It returns the space,
// the initial user stack pointer and the entry point.
func (s *Service) FromImage(image *program.Image) (mem.Space, uintptr, uintptr, error) {
	if err := image.Validate(); err != nil {
		return nil, 0, 0, err
	}
	space := s.NewSpace()
	var top uintptr
	var entry uintptr
	for i, segment := range image.Segments {
		perm, err := mem.ParsePort(segment.Port)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("image %v: segment %v: %w", image.Name, i, err)
		}
		lo := segment.Start
		hi := mem.PageRoundUp(segment.Start + segment.Size)
		if err := space.InsertRegion(lo, hi, perm|mem.PermUser); err != nil {
			space.Recycle()
			return nil, 0, 0, fmt.Errorf("image %v: segment %v: %w", image.Name, i, err)
		}
		if i == 0 {
			entry = lo
		}
		if hi > top {
			top = hi
		}
	}
	stackSize := image.StackSize
	if stackSize == 0 {
		stackSize = s.config.DefaultStackSize
	}
	stackSize = mem.PageRoundUp(stackSize)
	// guard page between the image and the user stack
	stackLo := top + mem.PageSize
	stackHi := stackLo + stackSize
	if err := space.InsertRegion(stackLo, stackHi, mem.PermRead|mem.PermWrite|mem.PermUser); err != nil {
		space.Recycle()
		return nil, 0, 0, fmt.Errorf("image %v: user stack: %w", image.Name, err)
	}
	if err := space.InsertRegion(mem.TrapFrameBase, mem.TrapFrameBase+mem.PageSize, mem.PermRead|mem.PermWrite); err != nil {
		space.Recycle()
		return nil, 0, 0, fmt.Errorf("image %v: trap frame: %w", image.Name, err)
	}
	return space, stackHi, entry, nil
}

var tokenSeq uint64

func nextToken() uint64 {
	return atomic.AddUint64(&tokenSeq, 1)
}

// Space is a region-set address space.
type Space struct {
	mux       sync.Mutex
	token     uint64
	allocator *Allocator
	regions   []mem.Region
	frames    map[uintptr]*mem.Frame
}

var _ mem.Space = (*Space)(nil)

// Token returns the opaque page-table identifier of this space.
func (s *Space) Token() uint64 {
	return s.token
}

// Translate resolves a virtual address to its backing frame.
func (s *Space) Translate(va uintptr) (*mem.Frame, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	frame, ok := s.frames[mem.PageRoundDown(va)]
	return frame, ok
}

// InsertRegion maps [lo, hi) with the supplied permission. The call either
// maps the whole range or, on any failure, leaves the space untouched.
func (s *Space) InsertRegion(lo, hi uintptr, perm mem.Permission) error {
	if !mem.PageAligned(lo) || !mem.PageAligned(hi) {
		return mem.ErrMisaligned
	}
	if hi <= lo {
		return mem.ErrBadRange
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.overlaps(lo, hi) {
		return mem.ErrOverlap
	}
	if err := s.frameRange(lo, hi); err != nil {
		return err
	}
	s.insertSorted(mem.Region{Lo: lo, Hi: hi, Perm: perm})
	return nil
}

// RemoveRegion unmaps the region exactly covering [lo, hi).
func (s *Space) RemoveRegion(lo, hi uintptr) error {
	if !mem.PageAligned(lo) || !mem.PageAligned(hi) {
		return mem.ErrMisaligned
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	idx := s.indexOf(lo)
	if idx == -1 || s.regions[idx].Hi != hi {
		return mem.ErrNoRegion
	}
	s.freeRange(lo, hi)
	s.regions = append(s.regions[:idx], s.regions[idx+1:]...)
	return nil
}

// GrowRegion extends the region starting at lo up to hi, creating it when
// absent. Used by the heap break path.
func (s *Space) GrowRegion(lo, hi uintptr) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	idx := s.indexOf(lo)
	if idx == -1 {
		if hi <= lo {
			return mem.ErrBadRange
		}
		if s.overlaps(lo, hi) {
			return mem.ErrOverlap
		}
		if err := s.frameRange(mem.PageRoundDown(lo), mem.PageRoundUp(hi)); err != nil {
			return err
		}
		s.insertSorted(mem.Region{Lo: lo, Hi: hi, Perm: mem.PermRead | mem.PermWrite | mem.PermUser})
		return nil
	}
	region := &s.regions[idx]
	if hi < region.Hi {
		return mem.ErrBadRange
	}
	if err := s.frameRange(mem.PageRoundUp(region.Hi), mem.PageRoundUp(hi)); err != nil {
		return err
	}
	region.Hi = hi
	return nil
}

// ShrinkRegion trims the region starting at lo down to hi, removing it when
// hi == lo.
func (s *Space) ShrinkRegion(lo, hi uintptr) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	idx := s.indexOf(lo)
	if idx == -1 {
		return mem.ErrNoRegion
	}
	region := &s.regions[idx]
	if hi > region.Hi || hi < lo {
		return mem.ErrBadRange
	}
	s.freeRange(mem.PageRoundUp(hi), mem.PageRoundUp(region.Hi))
	if hi == lo {
		s.regions = append(s.regions[:idx], s.regions[idx+1:]...)
		return nil
	}
	region.Hi = hi
	return nil
}

// Regions returns a snapshot of the mapped region set.
func (s *Space) Regions() []mem.Region {
	s.mux.Lock()
	defer s.mux.Unlock()
	out := make([]mem.Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// Recycle releases every frame held by this space.
func (s *Space) Recycle() {
	s.mux.Lock()
	defer s.mux.Unlock()
	for va, frame := range s.frames {
		s.allocator.Free(frame)
		delete(s.frames, va)
	}
	s.regions = nil
}

func (s *Space) overlaps(lo, hi uintptr) bool {
	for _, region := range s.regions {
		if lo < region.Hi && region.Lo < hi {
			return true
		}
	}
	return false
}

func (s *Space) indexOf(lo uintptr) int {
	for i := range s.regions {
		if s.regions[i].Lo == lo {
			return i
		}
	}
	return -1
}

func (s *Space) insertSorted(region mem.Region) {
	s.regions = append(s.regions, region)
	sort.Slice(s.regions, func(i, j int) bool {
		return s.regions[i].Lo < s.regions[j].Lo
	})
}

// frameRange backs [lo, hi) with frames, rolling back on exhaustion so the
// operation never partially maps.
func (s *Space) frameRange(lo, hi uintptr) error {
	var mapped []uintptr
	for va := lo; va < hi; va += mem.PageSize {
		frame, err := s.allocator.Alloc()
		if err != nil {
			for _, prev := range mapped {
				s.allocator.Free(s.frames[prev])
				delete(s.frames, prev)
			}
			return err
		}
		s.frames[va] = frame
		mapped = append(mapped, va)
	}
	return nil
}

func (s *Space) freeRange(lo, hi uintptr) {
	for va := lo; va < hi; va += mem.PageSize {
		if frame, ok := s.frames[va]; ok {
			s.allocator.Free(frame)
			delete(s.frames, va)
		}
	}
}
