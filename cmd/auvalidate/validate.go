package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/config"
	"github.com/justyntemme/augo/pkg/framework/debug"
	"github.com/justyntemme/augo/pkg/plugin"
)

// errSkipped marks a check that does not apply to the plugin or the flags.
var errSkipped = errors.New("skipped")

type result struct {
	name  string
	err   error
	notes []string
}

type validator struct {
	desc       *config.Descriptor
	opts       options
	log        *zap.Logger
	reg        *prometheus.Registry
	factory    *plugin.Factory
	instrument bool

	inst     *plugin.Instance
	channels int
	source   sine
	pos      float64
	params   []au.ParameterInfo
	ids      []au.ParameterID

	results []result
	current *result
}

func newValidator(p plugin.Plugin, desc *config.Descriptor, opts options, log *zap.Logger) *validator {
	reg := prometheus.NewRegistry()
	return &validator{
		desc: desc,
		opts: opts,
		log:  log.Named("auvalidate"),
		reg:  reg,
		factory: plugin.NewFactory(p,
			plugin.WithLogger(log),
			plugin.WithRegisterer(reg),
			plugin.WithDefaultMaxFrames(opts.frames)),
		instrument: desc.Info().Type.IsInstrument(),
		source:     sine{freq: 997, amp: 0.5, rate: opts.sampleRate},
	}
}

type check struct {
	name string
	fn   func() error
}

func (v *validator) run() {
	checks := []check{
		{"open", v.open},
		{"load preset", v.loadPreset},
		{"properties", v.properties},
		{"parameters", v.parameters},
		{"stream formats", v.formats},
		{"initialize", v.initialize},
		{"render", v.render},
		{"parameter sweep", v.sweep},
		{"bypass", v.bypass},
		{"factory presets", v.presets},
		{"save preset", v.savePreset},
		{"reset", v.reset},
		{"uninitialize", v.uninitialize},
		{"close", v.close},
	}

	for _, c := range checks {
		v.results = append(v.results, result{name: c.name})
		v.current = &v.results[len(v.results)-1]
		if v.inst == nil && c.name != "open" {
			v.current.err = errSkipped
			v.note("no instance")
			continue
		}
		v.current.err = c.fn()
		switch {
		case v.current.err == nil:
			v.log.Debug("check passed", zap.String("check", c.name))
		case errors.Is(v.current.err, errSkipped):
			v.log.Debug("check skipped", zap.String("check", c.name))
		default:
			v.log.Warn("check failed", zap.String("check", c.name), zap.Error(v.current.err))
		}
	}
	if v.inst != nil {
		_ = v.inst.Close()
	}
}

func (v *validator) failed() bool {
	for _, r := range v.results {
		if r.err != nil && !errors.Is(r.err, errSkipped) {
			return true
		}
	}
	return false
}

func (v *validator) note(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !slices.Contains(v.current.notes, msg) {
		v.current.notes = append(v.current.notes, msg)
	}
}

// Entry point helpers. Everything below goes through the selector table the
// way a host would call the unit.

func (v *validator) call(sel au.Selector, c *plugin.Call) error {
	if err := v.inst.Dispatch(sel, c); err != nil {
		return fmt.Errorf("%s: %w", sel, err)
	}
	return nil
}

func (v *validator) get(id au.PropertyID, scope au.Scope, element au.Element, out any) error {
	info := &plugin.Call{Property: id, Scope: scope, Element: element}
	if err := v.call(au.SelectGetPropertyInfo, info); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	if err := v.call(au.SelectGetProperty, &plugin.Call{Property: id, Scope: scope, Element: element, Data: out}); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return nil
}

func (v *validator) set(id au.PropertyID, scope au.Scope, element au.Element, in any) error {
	if err := v.call(au.SelectSetProperty, &plugin.Call{Property: id, Scope: scope, Element: element, Data: in}); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return nil
}

func (v *validator) setParameter(id au.ParameterID, value float32) error {
	return v.call(au.SelectSetParameter, &plugin.Call{Parameter: id, Value: value})
}

func (v *validator) getParameter(id au.ParameterID) (float32, error) {
	c := &plugin.Call{Parameter: id}
	err := v.call(au.SelectGetParameter, c)
	return c.Value, err
}

// renderBlock renders one block on output bus 0 and checks every channel.
func (v *validator) renderBlock() (*au.BufferList, error) {
	io := au.NewBufferList(v.channels, int(v.opts.frames), false)
	var flags au.RenderActionFlags
	ts := &au.TimeStamp{SampleTime: v.pos, Flags: au.TimeStampSampleTimeValid}
	err := v.call(au.SelectRender, &plugin.Call{
		Flags:     &flags,
		TimeStamp: ts,
		Frames:    v.opts.frames,
		IO:        io,
	})
	v.pos += float64(v.opts.frames)
	if err != nil {
		return nil, err
	}

	for c := range io.Buffers {
		data := io.Buffers[c].Data
		r := debug.Analyze(data)
		if r.NaNCount > 0 || r.InfCount > 0 {
			return nil, fmt.Errorf("channel %d: %d NaN and %d infinite samples", c, r.NaNCount, r.InfCount)
		}
		for _, issue := range debug.CheckBuffer(data, fmt.Sprintf("channel %d", c)) {
			v.note("%s", issue)
		}
	}
	return io, nil
}

func (v *validator) open() error {
	inst, err := v.factory.Open()
	if err != nil {
		return err
	}
	v.inst = inst
	v.note("instance %s", inst.ID())

	want := v.desc.Info().Description()
	if got := inst.Description(); got != want {
		return fmt.Errorf("component %s/%s/%s, want %s/%s/%s",
			got.Type, got.SubType, got.Manufacturer, want.Type, want.SubType, want.Manufacturer)
	}
	return nil
}

func (v *validator) loadPreset() error {
	if v.opts.loadPreset == "" {
		return errSkipped
	}
	f, err := os.Open(v.opts.loadPreset)
	if err != nil {
		return err
	}
	defer f.Close()

	ci, err := plugin.ReadPresetFile(f)
	if err != nil {
		return err
	}
	if err := v.set(au.PropertyClassInfo, au.ScopeGlobal, 0, &ci); err != nil {
		return err
	}
	v.note("loaded %q", ci[au.ClassInfoName])
	return nil
}

func (v *validator) properties() error {
	var frames uint32
	if err := v.get(au.PropertyMaximumFramesPerSlice, au.ScopeGlobal, 0, &frames); err != nil {
		return err
	}
	if frames != v.opts.frames {
		return fmt.Errorf("maximum frames %d, want %d", frames, v.opts.frames)
	}

	var inputs, outputs uint32
	if err := v.get(au.PropertyElementCount, au.ScopeInput, 0, &inputs); err != nil {
		return err
	}
	if err := v.get(au.PropertyElementCount, au.ScopeOutput, 0, &outputs); err != nil {
		return err
	}
	if outputs == 0 {
		return errors.New("no output buses")
	}
	if v.instrument && inputs != 0 {
		return fmt.Errorf("instrument declares %d input buses", inputs)
	}
	v.note("%d input and %d output buses", inputs, outputs)

	var caps []au.ChannelInfo
	if err := v.get(au.PropertySupportedNumChannels, au.ScopeGlobal, 0, &caps); err != nil {
		return err
	}
	if len(caps) == 0 {
		return errors.New("no channel capabilities")
	}
	v.note("channel capabilities %v", caps)

	var latency, tail float64
	if err := v.get(au.PropertyLatency, au.ScopeGlobal, 0, &latency); err != nil {
		return err
	}
	if err := v.get(au.PropertyTailTime, au.ScopeGlobal, 0, &tail); err != nil {
		return err
	}
	if latency < 0 || math.IsNaN(latency) || tail < 0 || math.IsNaN(tail) {
		return fmt.Errorf("latency %v and tail %v must not be negative", latency, tail)
	}

	var presets []au.Preset
	err := v.get(au.PropertyFactoryPresets, au.ScopeGlobal, 0, &presets)
	switch {
	case len(v.desc.Presets) == 0 && !errors.Is(err, au.ErrInvalidProperty):
		return fmt.Errorf("factory presets without a preset bank: %v", err)
	case len(v.desc.Presets) > 0 && err != nil:
		return err
	case len(presets) != len(v.desc.Presets):
		return fmt.Errorf("%d factory presets, want %d", len(presets), len(v.desc.Presets))
	}

	if v.desc.HasEditor() {
		var view au.ViewInfo
		if err := v.get(au.PropertyCocoaUI, au.ScopeGlobal, 0, &view); err != nil {
			return err
		}
		if view.Width != v.desc.Editor.Width || view.Height != v.desc.Editor.Height {
			return fmt.Errorf("editor %dx%d, want %dx%d", view.Width, view.Height, v.desc.Editor.Width, v.desc.Editor.Height)
		}
	}

	var ci au.ClassInfo
	return v.get(au.PropertyClassInfo, au.ScopeGlobal, 0, &ci)
}

func (v *validator) parameters() error {
	if err := v.get(au.PropertyParameterList, au.ScopeGlobal, 0, &v.ids); err != nil {
		return err
	}
	v.params = make([]au.ParameterInfo, len(v.ids))
	for k, id := range v.ids {
		info := &v.params[k]
		if err := v.get(au.PropertyParameterInfo, au.ScopeGlobal, au.Element(id), info); err != nil {
			return err
		}
		if info.MinValue > info.MaxValue || info.DefaultValue < info.MinValue || info.DefaultValue > info.MaxValue {
			return fmt.Errorf("parameter %d %q: default %v outside %v..%v", id, info.Name, info.DefaultValue, info.MinValue, info.MaxValue)
		}

		tol := 1e-4*float64(info.MaxValue-info.MinValue) + 1e-6
		for _, want := range []float32{info.MinValue, info.MaxValue, info.DefaultValue} {
			if err := v.setParameter(id, want); err != nil {
				return err
			}
			got, err := v.getParameter(id)
			if err != nil {
				return err
			}
			if math.Abs(float64(got-want)) > tol {
				return fmt.Errorf("parameter %d %q: wrote %v, read %v", id, info.Name, want, got)
			}
		}

		def := info.DefaultValue
		s := au.ParameterStringFromValue{ParamID: id, Value: &def}
		if err := v.get(au.PropertyParameterStringFromValue, au.ScopeGlobal, 0, &s); err != nil {
			return err
		}
		if s.String == "" {
			return fmt.Errorf("parameter %d %q has no display string", id, info.Name)
		}

		if info.Flags&au.ParameterFlagValuesHaveStrings != 0 {
			var names []string
			if err := v.get(au.PropertyParameterValueStrings, au.ScopeGlobal, au.Element(id), &names); err != nil {
				return err
			}
			if want := int(info.MaxValue-info.MinValue) + 1; len(names) != want {
				return fmt.Errorf("parameter %d %q: %d value strings, want %d", id, info.Name, len(names), want)
			}
		}
	}
	v.note("%d parameters", len(v.ids))
	return nil
}

func (v *validator) formats() error {
	var out au.StreamFormat
	if err := v.get(au.PropertyStreamFormat, au.ScopeOutput, 0, &out); err != nil {
		return err
	}
	if !out.IsFloatNonInterleaved() {
		return errors.New("default output format is not float non-interleaved")
	}
	v.channels = int(out.ChannelsPerFrame)

	rejected := []struct {
		what string
		f    au.StreamFormat
	}{
		{"65 channels", withChannels(out, 65)},
		{"interleaved samples", withFlags(out, out.FormatFlags&^au.FormatFlagIsNonInterleaved)},
		{"16-bit samples", withBits(out, 16)},
	}
	for _, r := range rejected {
		f := r.f
		if err := v.set(au.PropertyStreamFormat, au.ScopeOutput, 0, &f); err == nil {
			return fmt.Errorf("accepted %s", r.what)
		}
	}
	zero := 0.0
	if err := v.set(au.PropertySampleRate, au.ScopeGlobal, 0, &zero); err == nil {
		return errors.New("accepted a zero sample rate")
	}

	sr := v.opts.sampleRate
	if err := v.set(au.PropertySampleRate, au.ScopeGlobal, 0, &sr); err != nil {
		return err
	}
	frames := v.opts.frames
	if err := v.set(au.PropertyMaximumFramesPerSlice, au.ScopeGlobal, 0, &frames); err != nil {
		return err
	}

	var inputs uint32
	if err := v.get(au.PropertyElementCount, au.ScopeInput, 0, &inputs); err != nil {
		return err
	}
	for k := range inputs {
		cb := au.RenderCallback{Proc: v.source}
		if err := v.set(au.PropertySetRenderCallback, au.ScopeInput, au.Element(k), &cb); err != nil {
			return err
		}
	}
	v.note("%d output channels at %v Hz", v.channels, sr)
	return nil
}

func withChannels(f au.StreamFormat, n uint32) au.StreamFormat {
	f.ChannelsPerFrame = n
	return f
}

func withFlags(f au.StreamFormat, flags au.FormatFlags) au.StreamFormat {
	f.FormatFlags = flags
	return f
}

func withBits(f au.StreamFormat, bits uint32) au.StreamFormat {
	f.BitsPerChannel = bits
	f.BytesPerFrame = bits / 8
	f.BytesPerPacket = bits / 8
	return f
}

func (v *validator) initialize() error {
	if err := v.call(au.SelectInitialize, &plugin.Call{}); err != nil {
		return err
	}
	if v.inst.State() != plugin.Prepared {
		return fmt.Errorf("state %s after initialize", v.inst.State())
	}

	frames := v.opts.frames + 1
	err := v.call(au.SelectRender, &plugin.Call{Frames: frames, IO: au.NewBufferList(v.channels, int(frames), false)})
	if !errors.Is(err, au.ErrTooManyFramesToProcess) {
		return fmt.Errorf("oversized render returned %v, want %v", err, au.ErrTooManyFramesToProcess)
	}
	return nil
}

func (v *validator) render() error {
	obs := &notifyCounter{}
	if err := v.call(au.SelectAddRenderNotify, &plugin.Call{Observer: obs}); err != nil {
		return err
	}
	defer func() {
		_ = v.call(au.SelectRemoveRenderNotify, &plugin.Call{Observer: obs})
	}()

	if v.instrument {
		if err := v.inst.SendMIDI(gomidi.NoteOn(0, 60, 100), 0); err != nil {
			return err
		}
		if err := v.inst.SendMIDI(gomidi.NoteOn(0, 67, 90), v.opts.frames/2); err != nil {
			return err
		}
	}

	var peak float32
	for b := range v.opts.blocks {
		if v.instrument && b == v.opts.blocks/2 {
			_ = v.inst.SendMIDI(gomidi.NoteOff(0, 60), 0)
			_ = v.inst.SendMIDI(gomidi.NoteOff(0, 67), 0)
		}
		io, err := v.renderBlock()
		if err != nil {
			return err
		}
		for c := range io.Buffers {
			peak = max(peak, debug.Analyze(io.Buffers[c].Data).Peak)
		}
	}

	if obs.pre != v.opts.blocks || obs.post != v.opts.blocks {
		return fmt.Errorf("render notifications: %d pre and %d post for %d renders", obs.pre, obs.post, v.opts.blocks)
	}
	if peak == 0 {
		v.note("output is silent")
	}
	v.note("%d blocks of %d frames, peak %.3f", v.opts.blocks, v.opts.frames, peak)
	return nil
}

func (v *validator) sweep() error {
	for k, id := range v.ids {
		info := v.params[k]
		for _, value := range []float32{info.MaxValue, info.MinValue} {
			if err := v.setParameter(id, value); err != nil {
				return err
			}
			if _, err := v.renderBlock(); err != nil {
				return fmt.Errorf("parameter %q at %v: %w", info.Name, value, err)
			}
		}

		// Ramp back to the default. The bridge applies the end value.
		err := v.call(au.SelectScheduleParameters, &plugin.Call{Events: []au.ParameterEvent{{
			Scope:            au.ScopeGlobal,
			Parameter:        id,
			Type:             au.ParameterEventRamped,
			DurationInFrames: v.opts.frames,
			StartValue:       info.MinValue,
			EndValue:         info.DefaultValue,
		}}})
		if err != nil {
			return err
		}
		if _, err := v.renderBlock(); err != nil {
			return err
		}
		got, err := v.getParameter(id)
		if err != nil {
			return err
		}
		if tol := 1e-4*float64(info.MaxValue-info.MinValue) + 1e-6; math.Abs(float64(got-info.DefaultValue)) > tol {
			return fmt.Errorf("parameter %q at %v after ramp to default %v", info.Name, got, info.DefaultValue)
		}
	}
	return nil
}

func (v *validator) bypass() error {
	if v.instrument {
		return errSkipped
	}

	rec := &listenerCounter{}
	if err := v.call(au.SelectAddPropertyListener, &plugin.Call{Property: au.PropertyBypassEffect, Listener: rec}); err != nil {
		return err
	}
	defer func() {
		_ = v.call(au.SelectRemovePropertyListener, &plugin.Call{Property: au.PropertyBypassEffect, Listener: rec})
	}()

	on, off := uint32(1), uint32(0)
	if err := v.set(au.PropertyBypassEffect, au.ScopeGlobal, 0, &on); err != nil {
		return err
	}
	defer func() { _ = v.set(au.PropertyBypassEffect, au.ScopeGlobal, 0, &off) }()
	if rec.calls != 1 {
		return fmt.Errorf("%d bypass notifications, want 1", rec.calls)
	}

	start := v.pos
	io, err := v.renderBlock()
	if err != nil {
		return err
	}
	want := make([]float32, v.opts.frames)
	for k := range want {
		want[k] = v.source.value(start + float64(k))
	}
	for c := range io.Buffers {
		if d := debug.CompareBuffers(want, io.Buffers[c].Data, 0); !d.Equal() {
			return fmt.Errorf("bypassed channel %d: %s", c, d)
		}
	}
	return nil
}

func (v *validator) presets() error {
	if len(v.desc.Presets) == 0 {
		return errSkipped
	}
	var presets []au.Preset
	if err := v.get(au.PropertyFactoryPresets, au.ScopeGlobal, 0, &presets); err != nil {
		return err
	}

	for _, p := range presets {
		if err := v.set(au.PropertyPresentPreset, au.ScopeGlobal, 0, &p); err != nil {
			return err
		}
		var ci au.ClassInfo
		if err := v.get(au.PropertyClassInfo, au.ScopeGlobal, 0, &ci); err != nil {
			return err
		}
		if err := v.recall(p.Name, ci); err != nil {
			return err
		}
	}
	v.note("%d presets recalled on fresh instances", len(presets))
	return nil
}

// recall imports ci into a fresh instance and compares every parameter.
func (v *validator) recall(name string, ci au.ClassInfo) error {
	fresh, err := v.factory.Open()
	if err != nil {
		return err
	}
	defer fresh.Close()

	if err := fresh.SetProperty(au.PropertyClassInfo, au.ScopeGlobal, 0, &ci); err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	for _, id := range v.ids {
		want, err := v.getParameter(id)
		if err != nil {
			return err
		}
		got, err := fresh.GetParameter(id, au.ScopeGlobal, 0)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("preset %q: parameter %d is %v after recall, want %v", name, id, got, want)
		}
	}
	return nil
}

func (v *validator) savePreset() error {
	if v.opts.savePreset == "" {
		return errSkipped
	}
	var ci au.ClassInfo
	if err := v.get(au.PropertyClassInfo, au.ScopeGlobal, 0, &ci); err != nil {
		return err
	}
	f, err := os.Create(v.opts.savePreset)
	if err != nil {
		return err
	}
	if err := plugin.WritePresetFile(f, ci); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	v.note("wrote %s", v.opts.savePreset)
	return nil
}

func (v *validator) reset() error {
	if err := v.call(au.SelectReset, &plugin.Call{Scope: au.ScopeGlobal}); err != nil {
		return err
	}
	_, err := v.renderBlock()
	return err
}

func (v *validator) uninitialize() error {
	if err := v.call(au.SelectUninitialize, &plugin.Call{}); err != nil {
		return err
	}
	_, err := v.renderBlock()
	if !errors.Is(err, au.ErrUninitialized) {
		return fmt.Errorf("render after uninitialize returned %v, want %v", err, au.ErrUninitialized)
	}
	return nil
}

func (v *validator) close() error {
	inst := v.inst
	v.inst = nil
	if err := inst.Close(); err != nil {
		return err
	}
	if err := inst.Close(); !errors.Is(err, au.ErrInvalidInstance) {
		return fmt.Errorf("second close returned %v, want %v", err, au.ErrInvalidInstance)
	}
	if n := v.factory.Len(); n != 0 {
		return fmt.Errorf("%d instances still open", n)
	}
	return nil
}

// sine feeds every input bus. The phase follows the render timestamp so the
// signal can be regenerated for comparisons.
type sine struct {
	freq, amp, rate float64
}

func (s sine) value(pos float64) float32 {
	return float32(s.amp * math.Sin(2*math.Pi*s.freq*pos/s.rate))
}

func (s sine) RenderInput(_ any, _ *au.RenderActionFlags, ts *au.TimeStamp, _ uint32, frames uint32, io *au.BufferList) error {
	var start float64
	if ts != nil {
		start = ts.SampleTime
	}
	for c := range io.Buffers {
		b := &io.Buffers[c]
		for k := 0; k < int(frames); k++ {
			x := s.value(start + float64(k))
			if k < len(b.Data) {
				b.Data[k] = x
			}
			if k < len(b.Data64) {
				b.Data64[k] = float64(x)
			}
		}
	}
	return nil
}

type notifyCounter struct {
	pre, post int
}

func (n *notifyCounter) RenderNotify(_ any, flags *au.RenderActionFlags, _ *au.TimeStamp, _ uint32, _ uint32, _ *au.BufferList) error {
	switch {
	case *flags&au.RenderPreRender != 0:
		n.pre++
	case *flags&au.RenderPostRender != 0:
		n.post++
	}
	return nil
}

type listenerCounter struct {
	calls int
}

func (l *listenerCounter) PropertyChanged(any, au.PropertyID, au.Scope, au.Element) {
	l.calls++
}
