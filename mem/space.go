package mem

import (
	"errors"

	"github.com/viant/gokern/model/program"
)

// Common, reusable address-space errors. Sentinel variables let callers detect
// failure modes via errors.Is instead of brittle string comparisons.
var (
	// ErrMisaligned indicates an address or length that is not page aligned.
	ErrMisaligned = errors.New("mem: address not page aligned")

	// ErrOverlap indicates a requested region intersects an existing one.
	ErrOverlap = errors.New("mem: region overlaps existing mapping")

	// ErrNoRegion indicates the supplied range does not exactly match an
	// existing region.
	ErrNoRegion = errors.New("mem: no matching region")

	// ErrBadRange indicates an empty or inverted address range.
	ErrBadRange = errors.New("mem: invalid address range")

	// ErrOutOfFrames indicates physical frame exhaustion.
	ErrOutOfFrames = errors.New("mem: out of physical frames")

	// ErrEmptyPermission indicates a permission spec with no access bit set.
	ErrEmptyPermission = errors.New("mem: permission has no access bits")

	// ErrUnknownPermission indicates unrecognized permission bits.
	ErrUnknownPermission = errors.New("mem: unrecognized permission bits")
)

// Frame represents a physical page frame. Payload carries whatever kernel
// object has been placed in the frame (i.e a task's trap frame).
type Frame struct {
	PPN     uint64
	Payload interface{}
}

// Region describes a mapped virtual region.
type Region struct {
	Lo   uintptr
	Hi   uintptr
	Perm Permission
}

// Space owns the page-table and frame bookkeeping of a single address space.
type Space interface {
	// Token returns the opaque page-table identifier used to install this
	// space on hardware.
	Token() uint64

	// Translate resolves a virtual address to its backing frame.
	Translate(va uintptr) (*Frame, bool)

	// InsertRegion maps [lo, hi) with the given permission, backed by fresh
	// frames. The mapping is all-or-nothing: on any failure no page is mapped.
	InsertRegion(lo, hi uintptr, perm Permission) error

	// RemoveRegion unmaps the region exactly covering [lo, hi). A partial or
	// unmatched range is rejected.
	RemoveRegion(lo, hi uintptr) error

	// GrowRegion extends the region starting at lo up to the new hi bound,
	// creating the region when it does not exist yet.
	GrowRegion(lo, hi uintptr) error

	// ShrinkRegion trims the region starting at lo down to the new hi bound,
	// removing it entirely when hi == lo.
	ShrinkRegion(lo, hi uintptr) error

	// Regions returns a snapshot of the mapped region set.
	Regions() []Region

	// Recycle releases every frame held by this space.
	Recycle()
}

// Factory builds address spaces.
type Factory interface {
	// NewSpace returns an empty address space.
	NewSpace() Space

	// FromImage builds an address space from a loadable program image and
	// returns it together with the initial user stack pointer and the entry
	// point.
	FromImage(image *program.Image) (Space, uintptr, uintptr, error)
}
