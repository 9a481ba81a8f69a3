// Package syscall routes user-program operations to registered kernel
// handler services, recording per-task invocation counters on the way in.
package syscall

import "github.com/viant/gokern/model/program"

// Syscall numbers follow the RISC-V Linux convention used by the teaching
// kernels this core models.
const (
	SysWrite    = 64
	SysExit     = 93
	SysYield    = 124
	SysGetTime  = 169
	SysSbrk     = 214
	SysMunmap   = 215
	SysMmap     = 222
	SysTaskInfo = 410
)

// Binding ties an operation mnemonic to its syscall number and the handler
// service method that implements it. Params name the handler input fields
// populated from the instruction's positional arguments.
type Binding struct {
	ID      int
	Service string
	Method  string
	Params  []string
}

var bindings = map[string]Binding{
	program.OpExit:   {ID: SysExit, Service: "proc", Method: "exit", Params: []string{"code"}},
	program.OpYield:  {ID: SysYield, Service: "proc", Method: "yield"},
	program.OpInfo:   {ID: SysTaskInfo, Service: "proc", Method: "info"},
	program.OpTime:   {ID: SysGetTime, Service: "clock", Method: "time"},
	program.OpSbrk:   {ID: SysSbrk, Service: "vm", Method: "sbrk", Params: []string{"delta"}},
	program.OpMmap:   {ID: SysMmap, Service: "vm", Method: "mmap", Params: []string{"start", "len", "port"}},
	program.OpMunmap: {ID: SysMunmap, Service: "vm", Method: "munmap", Params: []string{"start", "len"}},
	program.OpPrint:  {ID: SysWrite, Service: "printer", Method: "print"},
}

// Lookup returns the binding for an operation mnemonic.
func Lookup(op string) (Binding, bool) {
	binding, ok := bindings[op]
	return binding, ok
}
