package plugin

import (
	"io"

	"github.com/justyntemme/augo/pkg/framework/bus"
	"github.com/justyntemme/augo/pkg/framework/param"
	"github.com/justyntemme/augo/pkg/framework/process"
)

// Processor is the interface a framework plugin core implements.
type Processor interface {
	// Initialize is called on prepare with the negotiated rate and block size.
	Initialize(sampleRate float64, maxBlockSize int32) error
	// ProcessAudio renders one block. It must not allocate or block.
	ProcessAudio(ctx *process.Context)
	GetParameters() *param.Registry
	GetBuses() *bus.Configuration
	// SetActive(false) is also how a processor is asked to clear its
	// internal state.
	SetActive(active bool) error
	GetLatencySamples() int32
	GetTailSamples() int32
}

// ChannelCapable is implemented by processors that support more main-bus
// channel layouts than their declared buses.
type ChannelCapable interface {
	ChannelCapabilities() []bus.Capability
}

// Stateful is implemented by processors with state beyond parameters.
type Stateful interface {
	SaveState(w io.Writer) error
	LoadState(r io.Reader) error
}

// BaseProcessor provides common functionality for audio processors
type BaseProcessor struct {
	params     *param.Registry
	buses      *bus.Configuration
	caps       []bus.Capability
	sampleRate float64
	latency    int32
	tail       int32

	// Optional callbacks for customization
	onInitialize func(sampleRate float64, maxBlockSize int32) error
	onSetActive  func(active bool) error
	onReset      func()
}

// NewBaseProcessor creates a new base processor with the given bus configuration
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration()
	}

	return &BaseProcessor{
		params: param.NewRegistry(),
		buses:  buses,
	}
}

// Initialize implements the Processor interface
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate = sampleRate

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}

	return nil
}

// GetParameters implements the Processor interface
func (b *BaseProcessor) GetParameters() *param.Registry {
	return b.params
}

// GetBuses implements the Processor interface
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// SetActive implements the Processor interface
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.onReset != nil {
		b.onReset()
	}

	if b.onSetActive != nil {
		return b.onSetActive(active)
	}

	return nil
}

// GetLatencySamples implements the Processor interface
func (b *BaseProcessor) GetLatencySamples() int32 {
	return b.latency
}

// GetTailSamples implements the Processor interface
func (b *BaseProcessor) GetTailSamples() int32 {
	return b.tail
}

// SetLatencySamples sets the reported processing latency.
func (b *BaseProcessor) SetLatencySamples(n int32) {
	b.latency = n
}

// SetTailSamples sets the reported tail. InfiniteTail means the processor
// never stops ringing.
func (b *BaseProcessor) SetTailSamples(n int32) {
	b.tail = n
}

// InfiniteTail is the tail length of a processor that rings forever.
const InfiniteTail int32 = -1

// ChannelCapabilities implements ChannelCapable. Without explicit
// capabilities the declared main buses are the only layout.
func (b *BaseProcessor) ChannelCapabilities() []bus.Capability {
	return b.caps
}

// SetChannelCapabilities replaces the supported main-bus layouts.
func (b *BaseProcessor) SetChannelCapabilities(caps ...bus.Capability) {
	b.caps = caps
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// Parameters returns the parameter registry for adding parameters
func (b *BaseProcessor) Parameters() *param.Registry {
	return b.params
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

// OnSetActive sets a callback for activation/deactivation
func (b *BaseProcessor) OnSetActive(fn func(active bool) error) {
	b.onSetActive = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}

// SimpleProcessor provides an even simpler base for basic effects
type SimpleProcessor struct {
	*BaseProcessor
	processFunc func(ctx *process.Context)
}

// NewSimpleProcessor creates a processor with just a process function
func NewSimpleProcessor(buses *bus.Configuration, processFunc func(ctx *process.Context)) *SimpleProcessor {
	return &SimpleProcessor{
		BaseProcessor: NewBaseProcessor(buses),
		processFunc:   processFunc,
	}
}

// ProcessAudio implements the audio processing
func (s *SimpleProcessor) ProcessAudio(ctx *process.Context) {
	if s.processFunc != nil {
		s.processFunc(ctx)
	}
}
