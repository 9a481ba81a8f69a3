package gokern

import (
	"time"

	"github.com/viant/gokern/extension"
	"github.com/viant/gokern/machine"
	"github.com/viant/gokern/machine/coop"
	"github.com/viant/gokern/mem"
	"github.com/viant/gokern/mem/memory"
	"github.com/viant/gokern/model/types"
	aclock "github.com/viant/gokern/service/action/clock"
	"github.com/viant/gokern/service/action/printer"
	aproc "github.com/viant/gokern/service/action/proc"
	avm "github.com/viant/gokern/service/action/vm"
	"github.com/viant/gokern/service/executor"
	"github.com/viant/gokern/service/loader"
	"github.com/viant/gokern/service/processor"
	"github.com/viant/gokern/service/scheduler"
	"github.com/viant/gokern/service/scheduler/fifo"
	"github.com/viant/gokern/service/scheduler/stride"
	"github.com/viant/gokern/service/syscall"
	"github.com/viant/gokern/service/table"
	tmemory "github.com/viant/gokern/service/table/memory"
	"github.com/viant/gokern/tracing"

	"github.com/viant/x"
)

type Service struct {
	config            *Config
	runtime           *Runtime
	actions           *extension.Actions
	extensionTypes    []*x.Type
	extensionServices []types.Service
	executorOptions   []executor.Option
	dispatcher        *syscall.Dispatcher
	executor          executor.Service
	queue             scheduler.Queue
	switcher          machine.Switcher
	memory            *memory.Service
	kernel            mem.Space
	taskTable         table.Service
	loader            *loader.Service
	programBaseURL    string
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.actions = extension.NewActions(s.extensionTypes...)
	s.runtime.processor, _ = processor.New(
		processor.WithQueue(s.queue),
		processor.WithSwitcher(s.switcher),
		processor.WithIdlePollInterval(time.Duration(s.config.Processor.IdlePollIntervalMs)*time.Millisecond))
	processor.Install(s.runtime.processor)
	s.dispatcher = syscall.NewDispatcher(s.actions, s.runtime.processor)
	s.executor = executor.NewService(s.dispatcher, s.runtime.processor, s.executorOptions...)
	s.actions.Register(printer.New())
	s.actions.Register(aclock.New())
	s.actions.Register(aproc.New(s.runtime.processor))
	s.actions.Register(avm.New(s.runtime.processor))
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	s.runtime.queue = s.queue
	s.runtime.taskTable = s.taskTable
	s.runtime.loader = s.loader
	s.runtime.memory = s.memory
	s.runtime.kernel = s.kernel
	s.runtime.executor = s.executor
}

func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

func (s *Service) Runtime() *Runtime {
	return s.runtime
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.config.Tracing.Enabled {
		_ = tracing.Init(s.config.Tracing.Name, s.config.Tracing.Version, s.config.Tracing.OutputFile)
	}
	if s.memory == nil {
		s.memory = memory.New(memory.Config{
			FrameCapacity:    s.config.Memory.FrameCapacity,
			DefaultStackSize: uintptr(s.config.Memory.DefaultStackSize),
		})
	}
	if s.kernel == nil {
		s.kernel = s.memory.NewSpace()
	}
	if s.queue == nil {
		switch scheduler.Policy(s.config.Scheduler.Policy) {
		case scheduler.PolicyStride:
			s.queue = stride.NewQueue()
		default:
			s.queue = fifo.NewQueue(fifo.Config{QueueBuffer: s.config.Scheduler.QueueBuffer})
		}
	}
	if s.switcher == nil {
		s.switcher = coop.New()
	}
	if s.taskTable == nil {
		s.taskTable = tmemory.New()
	}
	if s.loader == nil {
		s.loader = loader.New(loader.WithBaseURL(s.programBaseURL))
	}
}

func (s *Service) RegisterExtensionType(aType *x.Type) {
	s.extensionTypes = append(s.extensionTypes, aType)
}

func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
