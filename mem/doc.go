// Package mem defines the address-space contracts consumed by the task and
// processor layers: virtual-memory regions, page permissions, the physical
// frame abstraction and the kernel memory layout constants. Concrete
// implementations live in sub-packages (see mem/memory for the in-memory
// reference implementation).
package mem
