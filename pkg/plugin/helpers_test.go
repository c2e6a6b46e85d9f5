package plugin

import (
	"io"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/bus"
	"github.com/justyntemme/augo/pkg/framework/param"
	fwplugin "github.com/justyntemme/augo/pkg/framework/plugin"
	"github.com/justyntemme/augo/pkg/framework/preset"
	"github.com/justyntemme/augo/pkg/framework/process"
	"github.com/justyntemme/augo/pkg/midi"
)

const (
	paramLevel uint32 = 0
	paramMode  uint32 = 1

	groupCharacter int32 = 1
)

func testInfo() fwplugin.Info {
	return fwplugin.Info{
		ID:           "com.augo.test.level",
		Name:         "Level",
		Version:      "1.2.3",
		Vendor:       "augo",
		Type:         au.TypeEffect,
		SubType:      au.FourCC('l'<<24 | 'e'<<16 | 'v'<<8 | 'l'),
		Manufacturer: au.FourCC('A'<<24 | 'u'<<16 | 'G'<<8 | 'o'),
	}
}

func testPresets() *preset.Bank {
	return preset.NewBank(
		preset.Preset{Name: "Quiet", Values: map[uint32]float64{paramLevel: 0.25, paramMode: 0}},
		preset.Preset{Name: "Crunch", Values: map[uint32]float64{paramLevel: 1.5, paramMode: 2}},
	)
}

// testProcessor scales the main input by the level parameter. With record
// set it keeps the events and changes of every block.
type testProcessor struct {
	*fwplugin.BaseProcessor

	record    bool
	blocks    int
	events    []midi.Event
	changes   []process.ParamChange
	sidechain float32
	custom    string
	closed    bool
}

func newTestProcessor() *testProcessor {
	p := &testProcessor{
		BaseProcessor: fwplugin.NewBaseProcessor(bus.NewBuilder().
			WithStereoInput("In").
			WithStereoOutput("Out").
			WithSidechain("Side").
			MustBuild()),
	}
	reg := p.Parameters()
	if err := reg.AddGroup(param.Group{ID: groupCharacter, Name: "Character"}); err != nil {
		panic(err)
	}
	if err := reg.Add(
		param.New(paramLevel, "Level").Range(0, 2).Default(1).Build(),
		param.Choice(paramMode, "Mode", "Soft", "Hard", "Fold").Group(groupCharacter).Build(),
	); err != nil {
		panic(err)
	}
	return p
}

func (p *testProcessor) ProcessAudio(ctx *process.Context) {
	gain := float32(ctx.ParamPlain(paramLevel))
	n := ctx.NumSamples()
	for ch := range ctx.Output {
		out := ctx.Output[ch][:n]
		if ch >= len(ctx.Input) {
			clear(out)
			continue
		}
		in := ctx.Input[ch][:n]
		for k := range out {
			out[k] = in[k] * gain
		}
	}
	p.blocks++

	if !p.record {
		return
	}
	if sc := ctx.Sidechain(); len(sc) > 0 && n > 0 {
		p.sidechain = sc[0][0]
	}
	for e := ctx.Events; e != nil; e = e.Next {
		ev := *e
		ev.Next = nil
		p.events = append(p.events, ev)
	}
	p.changes = append(p.changes, ctx.ParamChanges...)
}

func (p *testProcessor) SaveState(w io.Writer) error {
	_, err := io.WriteString(w, p.custom)
	return err
}

func (p *testProcessor) LoadState(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	p.custom = string(b)
	return nil
}

func (p *testProcessor) Close() error {
	p.closed = true
	return nil
}

// faultyCore lets tests fail Prepare and Render and look at what the
// instance handed to the core.
type faultyCore struct {
	*ProcessorCore

	prepareErr error
	renderErr  error

	prepared PrepareConfig
	host     *au.HostCallbacks
	onRender func()
}

func (c *faultyCore) Prepare(cfg PrepareConfig) error {
	c.prepared = cfg
	if c.prepareErr != nil {
		return c.prepareErr
	}
	return c.ProcessorCore.Prepare(cfg)
}

func (c *faultyCore) Render(rc *RenderContext) error {
	c.host = rc.Host
	if c.onRender != nil {
		c.onRender()
	}
	if err := c.ProcessorCore.Render(rc); err != nil {
		return err
	}
	return c.renderErr
}

type testPlugin struct {
	info    fwplugin.Info
	presets *preset.Bank
	queue   int
	gui     bool
	caps    []bus.Capability
	setup   func(*testProcessor)

	mu     sync.Mutex
	procs  []*testProcessor
	cores  []*faultyCore
	failed error
}

func newTestPlugin() *testPlugin {
	return &testPlugin{info: testInfo()}
}

func (p *testPlugin) Info() fwplugin.Info {
	return p.info
}

func (p *testPlugin) NewCore() (Core, error) {
	if p.failed != nil {
		return nil, p.failed
	}
	proc := newTestProcessor()
	if len(p.caps) > 0 {
		proc.SetChannelCapabilities(p.caps...)
	}
	if p.setup != nil {
		p.setup(proc)
	}
	opts := []CoreOption{WithPresetBank(p.presets)}
	if p.gui {
		opts = append(opts, WithGUI(400, 300))
	}
	core := &faultyCore{ProcessorCore: NewProcessorCore(proc, opts...)}

	p.mu.Lock()
	p.procs = append(p.procs, proc)
	p.cores = append(p.cores, core)
	p.mu.Unlock()
	return core, nil
}

func (p *testPlugin) MIDIQueueSize() int {
	return p.queue
}

func (p *testPlugin) processor(k int) *testProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.procs[k]
}

func (p *testPlugin) core(k int) *faultyCore {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cores[k]
}

func newTestFactory(p Plugin, opts ...Option) (*Factory, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	opts = append([]Option{WithLogger(zap.NewNop()), WithRegisterer(reg)}, opts...)
	return NewFactory(p, opts...), reg
}

func open(t *testing.T, f *Factory) *Instance {
	t.Helper()
	inst, err := f.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close() })
	return inst
}

// openTest opens one instance of a fresh test plugin.
func openTest(t *testing.T) (*testPlugin, *Instance) {
	t.Helper()
	p := newTestPlugin()
	f, _ := newTestFactory(p)
	return p, open(t, f)
}

func prepare(t *testing.T, inst *Instance, sampleRate float64, frames uint32) {
	t.Helper()
	require.NoError(t, inst.SetProperty(au.PropertySampleRate, au.ScopeGlobal, 0, &sampleRate))
	require.NoError(t, inst.SetProperty(au.PropertyMaximumFramesPerSlice, au.ScopeGlobal, 0, &frames))
	require.NoError(t, inst.Initialize())
}

func stereo(frames int) *au.BufferList {
	return &au.BufferList{Buffers: []au.Buffer{
		{NumberChannels: 1, Data: make([]float32, frames)},
		{NumberChannels: 1, Data: make([]float32, frames)},
	}}
}

func stereo64(frames int) *au.BufferList {
	return &au.BufferList{Buffers: []au.Buffer{
		{NumberChannels: 1, Data64: make([]float64, frames)},
		{NumberChannels: 1, Data64: make([]float64, frames)},
	}}
}

func fill(l *au.BufferList, v float32) {
	for c := range l.Buffers {
		for k := range l.Buffers[c].Data {
			l.Buffers[c].Data[k] = v
		}
	}
}

// constSource renders value+channel into every sample.
type constSource struct {
	value float32
	err   error
	pulls int
}

func (s *constSource) RenderInput(_ any, _ *au.RenderActionFlags, _ *au.TimeStamp, _ uint32, _ uint32, io *au.BufferList) error {
	s.pulls++
	if s.err != nil {
		return s.err
	}
	for c := range io.Buffers {
		v := s.value + float32(c)
		b := &io.Buffers[c]
		for k := range b.Data {
			b.Data[k] = v
		}
		for k := range b.Data64 {
			b.Data64[k] = float64(v)
		}
	}
	return nil
}

// rampSource renders a distinct ramp per channel.
type rampSource struct{}

func (rampSource) RenderInput(_ any, _ *au.RenderActionFlags, _ *au.TimeStamp, _ uint32, frames uint32, io *au.BufferList) error {
	for c := range io.Buffers {
		for k := range io.Buffers[c].Data {
			io.Buffers[c].Data[k] = float32(c+1) * float32(k) / float32(frames)
		}
	}
	return nil
}

func connect(t *testing.T, inst *Instance, element au.Element, src au.InputProc) {
	t.Helper()
	cb := au.RenderCallback{Proc: src}
	require.NoError(t, inst.SetProperty(au.PropertySetRenderCallback, au.ScopeInput, element, &cb))
}

type propertyCall struct {
	refCon  any
	id      au.PropertyID
	scope   au.Scope
	element au.Element
}

type propertyRecorder struct {
	mu    sync.Mutex
	calls []propertyCall
}

func (r *propertyRecorder) PropertyChanged(refCon any, id au.PropertyID, scope au.Scope, element au.Element) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, propertyCall{refCon, id, scope, element})
}

func (r *propertyRecorder) snapshot() []propertyCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]propertyCall(nil), r.calls...)
}

type listenerFunc func(refCon any, id au.PropertyID, scope au.Scope, element au.Element)

func (f listenerFunc) PropertyChanged(refCon any, id au.PropertyID, scope au.Scope, element au.Element) {
	f(refCon, id, scope, element)
}

type notifyCall struct {
	flags  au.RenderActionFlags
	frames uint32
	refCon any
}

type notifyRecorder struct {
	calls []notifyCall
}

func (r *notifyRecorder) RenderNotify(refCon any, flags *au.RenderActionFlags, _ *au.TimeStamp, _ uint32, frames uint32, _ *au.BufferList) error {
	r.calls = append(r.calls, notifyCall{*flags, frames, refCon})
	return nil
}
