package mem

// Kernel virtual-memory layout. Addresses are modelled after a SV39-style
// split: the trampoline occupies the highest page, the trap frame sits just
// below it, and per-task kernel stacks grow downwards from the trampoline,
// each separated by a guard page.
const (
	// PageSize is the size of a single page in bytes.
	PageSize uintptr = 0x1000

	// MaxVA is the exclusive upper bound of the virtual address space.
	MaxVA uintptr = 1 << 38

	// TrampolineBase is the page holding the trap entry/return shim.
	TrampolineBase = MaxVA - PageSize

	// TrapFrameBase is the page holding a task's trap frame.
	TrapFrameBase = TrampolineBase - PageSize

	// KernelStackPages is the per-task kernel stack size in pages.
	KernelStackPages = 2
)

// PageAligned reports whether addr falls on a page boundary.
func PageAligned(addr uintptr) bool {
	return addr%PageSize == 0
}

// PageRoundUp rounds addr up to the next page boundary.
func PageRoundUp(addr uintptr) uintptr {
	return (addr + PageSize - 1) &^ (PageSize - 1)
}

// PageRoundDown rounds addr down to a page boundary.
func PageRoundDown(addr uintptr) uintptr {
	return addr &^ (PageSize - 1)
}

// KernelStackRange returns the [lo, hi) kernel stack region reserved for the
// task with the given sequence number. Slot 0 starts one guard page below the
// trampoline; each subsequent slot is stacked beneath the previous one with
// its own guard page.
func KernelStackRange(seq int) (uintptr, uintptr) {
	hi := TrampolineBase - uintptr(seq)*(KernelStackPages+1)*PageSize - PageSize
	lo := hi - KernelStackPages*PageSize
	return lo, hi
}
