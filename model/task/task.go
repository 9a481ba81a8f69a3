// Package task defines the task control block: the authoritative per-task
// record holding life-cycle status, the saved execution context, the owned
// address space, memory layout bounds and accounting counters.
package task

import (
	"fmt"
	"sync"

	"github.com/viant/gokern/internal/idgen"
	"github.com/viant/gokern/machine"
	"github.com/viant/gokern/mem"
	"github.com/viant/gokern/model/program"
)

// DefaultPriority is the initial stride-scheduling priority of a new task.
const DefaultPriority = 16

// ControlBlock is the task control block. The long-lived owner of record is
// the task table; the processor only borrows the currently running block.
// All mutable fields are guarded by the block's own mutex, acquired in short
// critical sections that are always released before a context switch.
type ControlBlock struct {
	mux sync.Mutex

	id  string
	seq int

	status   Status
	saved    *machine.Context
	space    mem.Space
	kernel   mem.Space
	kStackLo uintptr
	kStackHi uintptr

	trapPage *mem.Frame

	baseSize     uintptr
	heapBottom   uintptr
	programBreak uintptr

	startTimeMs int64
	priority    int
	exitCode    int
	info        Info

	image *program.Image
}

// New constructs a task from a loadable program image: it builds a fresh
// address space, locates the trap-frame page, reserves a kernel-side stack
// keyed by seq inside the kernel space, prepares the initial trap frame and
// the saved context running entry, and leaves the task Ready with zeroed
// accounting. startTime stays zero until first dispatch.
func New(image *program.Image, seq int, spaces mem.Factory, kernel mem.Space, entry func(*ControlBlock)) (*ControlBlock, error) {
	space, userSP, entryVA, err := spaces.FromImage(image)
	if err != nil {
		return nil, fmt.Errorf("failed to build address space for %v: %w", image.Name, err)
	}
	trapPage, ok := space.Translate(mem.TrapFrameBase)
	if !ok {
		space.Recycle()
		return nil, fmt.Errorf("image %v: trap frame page not mapped", image.Name)
	}
	kStackLo, kStackHi := mem.KernelStackRange(seq)
	if err = kernel.InsertRegion(kStackLo, kStackHi, mem.PermRead|mem.PermWrite); err != nil {
		space.Recycle()
		return nil, fmt.Errorf("failed to reserve kernel stack for %v: %w", image.Name, err)
	}
	trapPage.Payload = machine.NewTrapFrame(entryVA, userSP, kernel.Token(), kStackHi, mem.TrampolineBase)

	c := &ControlBlock{
		id:           idgen.New(),
		seq:          seq,
		status:       StatusUnInit,
		space:        space,
		kernel:       kernel,
		kStackLo:     kStackLo,
		kStackHi:     kStackHi,
		trapPage:     trapPage,
		baseSize:     userSP,
		heapBottom:   userSP,
		programBreak: userSP,
		priority:     DefaultPriority,
		image:        image,
	}
	c.saved = machine.NewContext(func() { entry(c) })
	c.status = StatusReady
	c.info.SetStatus(StatusReady)
	return c, nil
}

// ID returns the task's unique identifier.
func (c *ControlBlock) ID() string {
	return c.id
}

// Seq returns the task's kernel-stack slot number.
func (c *ControlBlock) Seq() int {
	return c.seq
}

// Program returns the loaded image.
func (c *ControlBlock) Program() *program.Image {
	return c.image
}

// Status returns the current life-cycle state.
func (c *ControlBlock) Status() Status {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.status
}

// UserToken returns the opaque page-table identifier of the task's address
// space.
func (c *ControlBlock) UserToken() uint64 {
	return c.space.Token()
}

// Space returns the task's address space.
func (c *ControlBlock) Space() mem.Space {
	return c.space
}

// TrapFrame returns a mutable view of the trap-frame page. The caller must
// not retain the reference across a context switch that remaps the page.
func (c *ControlBlock) TrapFrame() *machine.TrapFrame {
	frame, _ := c.trapPage.Payload.(*machine.TrapFrame)
	return frame
}

// Priority returns the stride-scheduling priority.
func (c *ControlBlock) Priority() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.priority
}

// SetPriority updates the stride-scheduling priority; values below 2 are
// rejected.
func (c *ControlBlock) SetPriority(priority int) error {
	if priority < 2 {
		return fmt.Errorf("priority %v out of range", priority)
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	c.priority = priority
	return nil
}

// ExitCode returns the recorded exit code; meaningful only once Exited.
func (c *ControlBlock) ExitCode() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.exitCode
}

// MarkRunning transitions the task to Running, stamps the first-dispatch
// time, and returns the saved context to restore. The returned context stays
// valid after the lock is released; the caller switches to it outside any
// critical section.
func (c *ControlBlock) MarkRunning(nowMs int64) (*machine.Context, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if !c.status.CanTransitionTo(StatusRunning) {
		return nil, fmt.Errorf("illegal transition %v -> %v", c.status, StatusRunning)
	}
	c.status = StatusRunning
	if c.startTimeMs == 0 {
		c.startTimeMs = nowMs
	}
	return c.saved, nil
}

// MarkReady transitions a running task back to Ready (voluntary yield) and
// returns the context to save into.
func (c *ControlBlock) MarkReady() (*machine.Context, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if !c.status.CanTransitionTo(StatusReady) {
		return nil, fmt.Errorf("illegal transition %v -> %v", c.status, StatusReady)
	}
	c.status = StatusReady
	return c.saved, nil
}

// MarkExited transitions a running task to the terminal Exited state, records
// the exit code and reclaims the task's memory: the user space frames and the
// kernel-side stack region.
func (c *ControlBlock) MarkExited(code int) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if !c.status.CanTransitionTo(StatusExited) {
		return fmt.Errorf("illegal transition %v -> %v", c.status, StatusExited)
	}
	c.status = StatusExited
	c.exitCode = code
	c.info.SetStatus(StatusExited)
	c.space.Recycle()
	if err := c.kernel.RemoveRegion(c.kStackLo, c.kStackHi); err != nil {
		return fmt.Errorf("failed to release kernel stack of %v: %w", c.id, err)
	}
	return nil
}

// RecordSyscall lazily syncs the accounting status mirror and bumps the
// counter for the given syscall id; out-of-range ids are dropped.
func (c *ControlBlock) RecordSyscall(id int) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.info.SetStatus(c.status)
	c.info.RecordSyscall(id)
}

// Accounting recomputes elapsed time against nowMs, syncs the status mirror
// and returns a snapshot copy of the accounting record.
func (c *ControlBlock) Accounting(nowMs int64) Info {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.startTimeMs > 0 {
		c.info.SetElapsed(nowMs - c.startTimeMs)
	}
	c.info.SetStatus(c.status)
	return c.info
}

// StartTime returns the first-dispatch timestamp in milliseconds, zero when
// the task has not run yet.
func (c *ControlBlock) StartTime() int64 {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.startTimeMs
}

// ProgramBreak returns the current heap break.
func (c *ControlBlock) ProgramBreak() uintptr {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.programBreak
}

// ChangeProgramBreak grows (delta > 0) or shrinks (delta < 0) the heap by
// delta bytes and returns the previous break. A break that would fall below
// the heap bottom is rejected, and a failed address-space operation leaves
// the break unchanged.
func (c *ControlBlock) ChangeProgramBreak(delta int64) (uintptr, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	previous := c.programBreak
	next := int64(previous) + delta
	if next < int64(c.heapBottom) {
		return 0, fmt.Errorf("break %v below heap bottom %v", next, c.heapBottom)
	}
	if delta == 0 {
		return previous, nil
	}
	var err error
	if delta > 0 {
		err = c.space.GrowRegion(c.heapBottom, uintptr(next))
	} else {
		err = c.space.ShrinkRegion(c.heapBottom, uintptr(next))
	}
	if err != nil {
		return 0, err
	}
	c.programBreak = uintptr(next)
	return previous, nil
}

// MapRegion maps [start, start+length) with the requested raw permission
// bits. Start must be page aligned and the bits must encode a non-empty
// read/write/execute combination; length is rounded up to whole pages. The
// mapping is all-or-nothing and must not overlap an existing region.
func (c *ControlBlock) MapRegion(start, length uintptr, port uint64) error {
	if !mem.PageAligned(start) {
		return mem.ErrMisaligned
	}
	perm, err := mem.ParsePort(port)
	if err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.space.InsertRegion(start, mem.PageRoundUp(start+length), perm|mem.PermUser)
}

// UnmapRegion removes the mapping exactly covering [start, start+length).
// Both bounds must be page aligned; a range not matching existing region
// boundaries is rejected, never partially unmapped.
func (c *ControlBlock) UnmapRegion(start, length uintptr) error {
	if !mem.PageAligned(start) || !mem.PageAligned(length) {
		return mem.ErrMisaligned
	}
	if length == 0 {
		return mem.ErrBadRange
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.space.RemoveRegion(start, start+length)
}
