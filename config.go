package gokern

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/gokern/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the kernel configuration. It can
// be populated from JSON or YAML. The zero-value is useful - all nested fields
// inherit their package defaults.

type Config struct {
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Memory    MemoryConfig    `json:"memory" yaml:"memory"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
}

type ProcessorConfig struct {
	// IdlePollIntervalMs is how long the dispatch loop sleeps, in
	// milliseconds, when the ready queue has no work.
	IdlePollIntervalMs int `json:"idlePollIntervalMs" yaml:"idlePollIntervalMs"`
}

type SchedulerConfig struct {
	// Policy selects the ready-queue implementation: fifo or stride.
	Policy string `json:"policy" yaml:"policy"`
	// QueueBuffer bounds the fifo queue capacity.
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

type MemoryConfig struct {
	// FrameCapacity bounds the shared physical frame pool.
	FrameCapacity int `json:"frameCapacity" yaml:"frameCapacity"`
	// DefaultStackSize is used for images that do not declare a stack size.
	DefaultStackSize int `json:"defaultStackSize" yaml:"defaultStackSize"`
}

type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version" yaml:"version"`
	OutputFile string `json:"outputFile" yaml:"outputFile"`
}

// DefaultConfig returns a Config populated with the same default values the
// constructors would otherwise apply. Callers may modify the returned struct
// before passing it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Processor: ProcessorConfig{IdlePollIntervalMs: 1},
		Scheduler: SchedulerConfig{Policy: string(scheduler.PolicyFIFO), QueueBuffer: 64},
		Memory:    MemoryConfig{FrameCapacity: 4096},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Processor.IdlePollIntervalMs < 0 {
		return fmt.Errorf("processor.idlePollIntervalMs must be >= 0")
	}
	switch scheduler.Policy(c.Scheduler.Policy) {
	case scheduler.PolicyFIFO, scheduler.PolicyStride, "":
	default:
		return fmt.Errorf("unknown scheduler.policy: %v", c.Scheduler.Policy)
	}
	if c.Memory.FrameCapacity < 0 {
		return fmt.Errorf("memory.frameCapacity must be >= 0")
	}
	if c.Memory.DefaultStackSize < 0 {
		return fmt.Errorf("memory.defaultStackSize must be >= 0")
	}
	return nil
}

// LoadConfig reads a YAML configuration document from the supplied URL.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v, %w", URL, err)
	}
	config := &Config{}
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v, %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
