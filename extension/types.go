package extension

import (
	"reflect"

	"github.com/viant/x"
)

// Types registers the Go types syscall handlers exchange, so tooling can
// resolve them by name.
type Types struct {
	x.Registry
}

// Register adds a data type to the registry
func (t *Types) Register(dataType *x.Type) {
	t.Registry.Register(dataType)
}

// Lookup returns a data type from the registry
func (t *Types) Lookup(name string) *x.Type {
	return t.Registry.Lookup(name)
}

// RegisterType is a convenience wrapper turning a reflect.Type into a
// registry entry.
func (t *Types) RegisterType(rType reflect.Type) {
	t.Registry.Register(x.NewType(rType))
}

// NewTypes creates a new types registry.
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{Registry: *x.NewRegistry(options...)}
}
