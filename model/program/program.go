// Package program defines the loadable user-program image model: a set of
// memory segments plus the instruction listing a task executes once
// dispatched.
package program

import "fmt"

// Well-known operation mnemonics.
const (
	OpExit   = "exit"
	OpYield  = "yield"
	OpTime   = "time"
	OpInfo   = "info"
	OpSbrk   = "sbrk"
	OpMmap   = "mmap"
	OpMunmap = "munmap"
	OpPrint  = "print"
	OpSpin   = "spin"
)

// Segment describes a memory region the image asks to have mapped before the
// task first runs. Port carries raw read/write/execute permission bits.
type Segment struct {
	Start uintptr
	Size  uintptr
	Port  uint64
}

// Instruction is a single step of a user program. Args hold numeric operands;
// Text holds the operand of text-carrying operations such as print.
type Instruction struct {
	Op   string
	Args []int64
	Text string
}

// Image is a parsed, loadable user program.
type Image struct {
	Name         string
	Source       string
	StackSize    uintptr
	Segments     []Segment
	Instructions []Instruction
}

// Validate checks structural image invariants prior to loading.
func (i *Image) Validate() error {
	if i == nil {
		return fmt.Errorf("image was nil")
	}
	if i.Name == "" {
		return fmt.Errorf("image name was empty")
	}
	if len(i.Instructions) == 0 {
		return fmt.Errorf("image %v has no instructions", i.Name)
	}
	for idx, seg := range i.Segments {
		if seg.Size == 0 {
			return fmt.Errorf("image %v: segment %v has zero size", i.Name, idx)
		}
	}
	return nil
}
