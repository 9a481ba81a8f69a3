package syscall

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/gokern/extension"
	"github.com/viant/gokern/model/program"
	"github.com/viant/gokern/service/processor"
	"github.com/viant/gokern/tracing"
	"github.com/viant/structology/conv"
)

// Dispatcher resolves an instruction to its handler service, converts the
// operands into the handler's typed input and invokes it. Every dispatch
// first bumps the current task's syscall counter, so accounting stays
// correct even when the handler itself fails.
type Dispatcher struct {
	actions   *extension.Actions
	converter *conv.Converter
	processor *processor.Service
}

// NewDispatcher creates a syscall dispatcher.
func NewDispatcher(actions *extension.Actions, proc *processor.Service) *Dispatcher {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	return &Dispatcher{
		actions:   actions,
		converter: conv.NewConverter(options),
		processor: proc,
	}
}

// Invoke dispatches a single instruction on behalf of the current task and
// returns the handler output.
func (d *Dispatcher) Invoke(ctx context.Context, instruction program.Instruction) (output interface{}, err error) {
	binding, ok := Lookup(instruction.Op)
	if !ok {
		return nil, fmt.Errorf("unknown operation %v", instruction.Op)
	}
	d.processor.RecordSyscall(binding.ID)

	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("syscall.%s.%s", binding.Service, binding.Method), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"syscall.id": fmt.Sprintf("%d", binding.ID)})

	service := d.actions.Lookup(binding.Service)
	if service == nil {
		return nil, fmt.Errorf("service %v not found", binding.Service)
	}
	method, err := service.Method(binding.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to find method %v for service %v: %w", binding.Method, binding.Service, err)
	}
	signature := service.Methods().Lookup(binding.Method)
	if signature == nil {
		return nil, fmt.Errorf("missing signature for %v.%v", binding.Service, binding.Method)
	}
	if len(instruction.Args) < len(binding.Params) {
		return nil, fmt.Errorf("%v expects %v operands, got %v", instruction.Op, len(binding.Params), len(instruction.Args))
	}
	args := map[string]interface{}{}
	for i, param := range binding.Params {
		args[param] = instruction.Args[i]
	}
	if instruction.Text != "" {
		args["message"] = instruction.Text
	}

	input := newInstancePtr(signature.Input)
	if err = d.converter.Convert(args, input); err != nil {
		return nil, fmt.Errorf("failed to convert input for %v: %w", instruction.Op, err)
	}
	output = newInstancePtr(signature.Output)
	err = method(ctx, input, output)
	return output, err
}

func newInstancePtr(aType reflect.Type) interface{} {
	if aType.Kind() == reflect.Ptr {
		return reflect.New(aType.Elem()).Interface()
	}
	return reflect.New(aType).Interface()
}
