package types

// Service is a syscall handler service: a named group of kernel operations
// the syscall dispatcher can route to.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
