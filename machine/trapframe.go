package machine

// TrapFrame is the saved user-mode register state captured on kernel entry
// and restored on return to user mode. Registers follow the RISC-V general
// register file layout; x2 is the stack pointer.
type TrapFrame struct {
	Regs        [32]uint64
	Sepc        uint64
	KernelSatp  uint64
	KernelSP    uint64
	TrapHandler uint64
}

// NewTrapFrame prepares an initial trap frame: entry point, user stack
// pointer, kernel page-table token, kernel stack top and the trap-return
// target.
func NewTrapFrame(entry, userSP uintptr, kernelToken uint64, kernelStackTop, trapHandler uintptr) *TrapFrame {
	frame := &TrapFrame{
		Sepc:        uint64(entry),
		KernelSatp:  kernelToken,
		KernelSP:    uint64(kernelStackTop),
		TrapHandler: uint64(trapHandler),
	}
	frame.SetSP(userSP)
	return frame
}

// SP returns the user stack pointer.
func (t *TrapFrame) SP() uintptr {
	return uintptr(t.Regs[2])
}

// SetSP updates the user stack pointer.
func (t *TrapFrame) SetSP(sp uintptr) {
	t.Regs[2] = uint64(sp)
}
