package plugin

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/bus"
	"github.com/justyntemme/augo/pkg/framework/param"
	fwplugin "github.com/justyntemme/augo/pkg/framework/plugin"
	"github.com/justyntemme/augo/pkg/framework/preset"
	"github.com/justyntemme/augo/pkg/framework/process"
	"github.com/justyntemme/augo/pkg/framework/state"
)

// ProcessorCore runs a framework processor as a bridge core. Parameters
// and custom state are persisted with state.Manager; presets come from a
// preset.Bank.
type ProcessorCore struct {
	proc    fwplugin.Processor
	params  *param.Registry
	inputs  []bus.Info
	outputs []bus.Info
	caps    []bus.Capability
	presets *preset.Bank
	state   *state.Manager

	guiWidth, guiHeight uint32
	instrument          bool

	// Set by Prepare.
	ctx     *process.Context
	format  SampleFormat
	silence [][][]float32
	in32    [][][]float32
	out32   [][][]float32
}

var _ Core = (*ProcessorCore)(nil)

// CoreOption configures a ProcessorCore.
type CoreOption func(*ProcessorCore)

// WithPresetBank sets the factory presets.
func WithPresetBank(b *preset.Bank) CoreOption {
	return func(c *ProcessorCore) {
		c.presets = b
	}
}

// WithGUI declares an editor of the given size.
func WithGUI(width, height uint32) CoreOption {
	return func(c *ProcessorCore) {
		c.guiWidth, c.guiHeight = width, height
	}
}

// AsInstrument makes the default capability table have no main input.
func AsInstrument() CoreOption {
	return func(c *ProcessorCore) {
		c.instrument = true
	}
}

// NewProcessorCore wraps proc.
func NewProcessorCore(proc fwplugin.Processor, opts ...CoreOption) *ProcessorCore {
	buses := proc.GetBuses()
	if buses == nil {
		buses = bus.NewStereoConfiguration()
	}
	c := &ProcessorCore{
		proc:    proc,
		params:  proc.GetParameters(),
		inputs:  buses.AudioBuses(bus.DirectionInput),
		outputs: buses.AudioBuses(bus.DirectionOutput),
	}
	if c.params == nil {
		c.params = param.NewRegistry()
	}
	for _, opt := range opts {
		opt(c)
	}

	if cc, ok := proc.(fwplugin.ChannelCapable); ok {
		c.caps = cc.ChannelCapabilities()
	}
	if len(c.caps) == 0 {
		c.caps = bus.DefaultCapabilities(buses, c.instrument)
	}

	c.state = state.NewManager(c.params)
	if st, ok := proc.(fwplugin.Stateful); ok {
		c.state.SetCustomState(st.SaveState, st.LoadState)
	}
	return c
}

// Processor returns the wrapped processor.
func (c *ProcessorCore) Processor() fwplugin.Processor {
	return c.proc
}

func (c *ProcessorCore) Destroy() {
	if closer, ok := c.proc.(io.Closer); ok {
		_ = closer.Close()
	}
}

func (c *ProcessorCore) InputBusCount() int  { return len(c.inputs) }
func (c *ProcessorCore) OutputBusCount() int { return len(c.outputs) }

func (c *ProcessorCore) InputBusInfo(i int) (bus.Info, bool) {
	if i < 0 || i >= len(c.inputs) {
		return bus.Info{}, false
	}
	return c.inputs[i], true
}

func (c *ProcessorCore) OutputBusInfo(i int) (bus.Info, bool) {
	if i < 0 || i >= len(c.outputs) {
		return bus.Info{}, false
	}
	return c.outputs[i], true
}

func (c *ProcessorCore) ChannelCapabilities() []bus.Capability {
	return c.caps
}

// Prepare initializes and activates the processor and allocates the
// buffers render hands to it.
func (c *ProcessorCore) Prepare(cfg PrepareConfig) error {
	if err := c.proc.Initialize(cfg.SampleRate, int32(cfg.MaxFrames)); err != nil {
		return fmt.Errorf("initialize processor: %w", err)
	}

	frames := int(cfg.MaxFrames)
	ctx := process.NewContext(frames, c.params)
	ctx.SampleRate = cfg.SampleRate
	ctx.ReserveParamChanges(paramQueueSize)
	ctx.InputBuses = make([][][]float32, len(cfg.Buses.Inputs))
	ctx.OutputBuses = make([][][]float32, len(cfg.Buses.Outputs))

	c.silence = make([][][]float32, len(cfg.Buses.Inputs))
	c.in32 = make([][][]float32, len(cfg.Buses.Inputs))
	for b, info := range cfg.Buses.Inputs {
		ctx.InputBuses[b] = make([][]float32, info.ChannelCount)
		c.silence[b] = channelBuffers(int(info.ChannelCount), frames)
		if cfg.SampleFormat == Float64 {
			c.in32[b] = channelBuffers(int(info.ChannelCount), frames)
		}
	}
	c.out32 = make([][][]float32, len(cfg.Buses.Outputs))
	for b, info := range cfg.Buses.Outputs {
		ctx.OutputBuses[b] = make([][]float32, info.ChannelCount)
		c.out32[b] = channelBuffers(int(info.ChannelCount), frames)
	}

	if err := c.proc.SetActive(true); err != nil {
		return fmt.Errorf("activate processor: %w", err)
	}
	c.ctx = ctx
	c.format = cfg.SampleFormat
	return nil
}

func channelBuffers(channels, frames int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	return out
}

func (c *ProcessorCore) Unprepare() {
	if c.ctx == nil {
		return
	}
	_ = c.proc.SetActive(false)
	c.ctx = nil
	c.silence, c.in32, c.out32 = nil, nil, nil
}

// Render maps the host buffers onto the process context and runs the
// processor. Buses without host audio see silence on input and render into
// scratch on output. Float64 sessions convert through float32 scratch.
func (c *ProcessorCore) Render(rc *RenderContext) error {
	ctx := c.ctx
	if ctx == nil {
		return au.ErrUninitialized
	}
	n := int(rc.Frames)

	for b, chans := range ctx.InputBuses {
		var in *au.BufferList
		if b < len(rc.Inputs) {
			in = rc.Inputs[b]
		}
		for ch := range chans {
			chans[ch] = c.inputChannel(in, b, ch, n)
		}
	}

	direct := c.format == Float32 && rc.Output != nil
	for b, chans := range ctx.OutputBuses {
		for ch := range chans {
			chans[ch] = c.out32[b][ch][:n]
			if direct && uint32(b) == rc.OutputBus && ch < len(rc.Output.Buffers) {
				if d := rc.Output.Buffers[ch].Data; len(d) >= n {
					chans[ch] = d[:n]
				}
			}
		}
	}

	ctx.Begin(n)
	ctx.Events = rc.Events
	for _, pc := range rc.ParameterChanges {
		if !ctx.AddParamChange(pc) {
			break
		}
	}
	c.proc.ProcessAudio(ctx)

	if c.format == Float64 && rc.Output != nil && int(rc.OutputBus) < len(ctx.OutputBuses) {
		src := ctx.OutputBuses[rc.OutputBus]
		for ch := 0; ch < len(src) && ch < len(rc.Output.Buffers); ch++ {
			dst := rc.Output.Buffers[ch].Data64
			for k := 0; k < n && k < len(dst); k++ {
				dst[k] = float64(src[ch][k])
			}
		}
	}
	return nil
}

func (c *ProcessorCore) inputChannel(in *au.BufferList, b, ch, n int) []float32 {
	if in != nil && ch < len(in.Buffers) {
		buf := &in.Buffers[ch]
		if buf.Data64 != nil && len(buf.Data64) >= n && c.in32[b] != nil {
			dst := c.in32[b][ch][:n]
			for k := range dst {
				dst[k] = float32(buf.Data64[k])
			}
			return dst
		}
		if len(buf.Data) >= n {
			return buf.Data[:n]
		}
	}
	s := c.silence[b][ch][:n]
	clear(s)
	return s
}

// Reset clears the processor by cycling its active state.
func (c *ProcessorCore) Reset() {
	if c.ctx == nil {
		return
	}
	_ = c.proc.SetActive(false)
	_ = c.proc.SetActive(true)
}

func (c *ProcessorCore) ParameterCount() int { return int(c.params.Count()) }

func (c *ProcessorCore) ParameterAt(i int) *param.Parameter {
	return c.params.GetByIndex(int32(i))
}

func (c *ProcessorCore) Parameter(id uint32) *param.Parameter {
	return c.params.Get(id)
}

func (c *ProcessorCore) GroupCount() int { return c.params.GroupCount() }

func (c *ProcessorCore) GroupAt(i int) (param.Group, bool) {
	return c.params.GroupAt(i)
}

func (c *ProcessorCore) StateSize() int {
	data, err := c.state.Bytes()
	if err != nil {
		return 0
	}
	return len(data)
}

func (c *ProcessorCore) GetState(buf []byte) (int, error) {
	data, err := c.state.Bytes()
	if err != nil {
		return 0, err
	}
	if len(buf) < len(data) {
		return 0, io.ErrShortBuffer
	}
	return copy(buf, data), nil
}

func (c *ProcessorCore) SetState(data []byte) error {
	if err := c.state.SetBytes(data); err != nil {
		if errors.Is(err, state.ErrInvalidState) {
			return fmt.Errorf("%w: %w", au.ErrInvalidPropertyValue, err)
		}
		return err
	}
	return nil
}

func (c *ProcessorCore) PresetCount() int { return c.presets.Count() }

func (c *ProcessorCore) PresetInfo(i int) (au.Preset, bool) {
	name, ok := c.presets.Name(i)
	if !ok {
		return au.Preset{}, false
	}
	return au.Preset{Number: int32(i), Name: name}, true
}

func (c *ProcessorCore) ApplyPreset(i int) bool {
	return c.presets.Apply(i, c.params)
}

func (c *ProcessorCore) LatencySamples() uint32 {
	return uint32(max(c.proc.GetLatencySamples(), 0))
}

func (c *ProcessorCore) TailSamples() uint32 {
	n := c.proc.GetTailSamples()
	if n == fwplugin.InfiniteTail {
		return math.MaxUint32
	}
	return uint32(max(n, 0))
}

func (c *ProcessorCore) HasGUI() bool {
	return c.guiWidth > 0 && c.guiHeight > 0
}

func (c *ProcessorCore) GUISize() (uint32, uint32) {
	return c.guiWidth, c.guiHeight
}
