package gokern

import (
	"github.com/viant/gokern/machine"
	"github.com/viant/gokern/mem"
	"github.com/viant/gokern/mem/memory"
	"github.com/viant/gokern/model/types"
	"github.com/viant/gokern/service/executor"
	"github.com/viant/gokern/service/scheduler"
	"github.com/viant/gokern/service/table"
	"github.com/viant/gokern/tracing"
	"github.com/viant/x"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the kernel service.
type Option func(s *Service)

// WithConfig sets the kernel configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithQueue sets the ready queue, overriding the configured policy.
func WithQueue(queue scheduler.Queue) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithSwitcher sets the context-switch primitive.
func WithSwitcher(switcher machine.Switcher) Option {
	return func(s *Service) {
		s.switcher = switcher
	}
}

// WithMemoryService sets the address-space factory.
func WithMemoryService(service *memory.Service) Option {
	return func(s *Service) {
		s.memory = service
	}
}

// WithKernelSpace sets the kernel address space.
func WithKernelSpace(space mem.Space) Option {
	return func(s *Service) {
		s.kernel = space
	}
}

// WithTaskTable sets the task table.
func WithTaskTable(t table.Service) Option {
	return func(s *Service) {
		s.taskTable = t
	}
}

// WithExtensionTypes sets the extension types
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}

// WithExtensionServices sets the extension services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithProgramBaseURL sets the base location relative program URLs resolve
// against.
func WithProgramBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.programBaseURL = baseURL
	}
}

// WithExecutorOptions lets the caller supply additional options passed to
// executor.NewService (e.g. installing an instruction listener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
