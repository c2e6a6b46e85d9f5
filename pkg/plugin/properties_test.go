package plugin

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/justyntemme/augo/pkg/au"
	fwplugin "github.com/justyntemme/augo/pkg/framework/plugin"
)

func TestGetPropertyInfo(t *testing.T) {
	tests := []struct {
		name     string
		id       au.PropertyID
		scope    au.Scope
		element  au.Element
		writable bool
		want     error
	}{
		{"sample rate", au.PropertySampleRate, au.ScopeGlobal, 0, true, nil},
		{"class info", au.PropertyClassInfo, au.ScopeGlobal, 0, true, nil},
		{"parameter list", au.PropertyParameterList, au.ScopeGlobal, 0, false, nil},
		{"parameter list on input", au.PropertyParameterList, au.ScopeInput, 0, false, au.ErrInvalidScope},
		{"parameter info", au.PropertyParameterInfo, au.ScopeGlobal, au.Element(paramMode), false, nil},
		{"unknown parameter info", au.PropertyParameterInfo, au.ScopeGlobal, 42, false, au.ErrInvalidParameter},
		{"stream format", au.PropertyStreamFormat, au.ScopeOutput, 0, true, nil},
		{"stream format of missing bus", au.PropertyStreamFormat, au.ScopeOutput, 1, false, au.ErrInvalidElement},
		{"render callback", au.PropertySetRenderCallback, au.ScopeInput, 1, true, nil},
		{"render callback on output", au.PropertySetRenderCallback, au.ScopeOutput, 0, false, au.ErrInvalidScope},
		{"connection", au.PropertyMakeConnection, au.ScopeInput, 0, true, nil},
		{"value strings", au.PropertyParameterValueStrings, au.ScopeGlobal, au.Element(paramMode), false, nil},
		{"value strings of continuous", au.PropertyParameterValueStrings, au.ScopeGlobal, au.Element(paramLevel), false, au.ErrInvalidProperty},
		{"bypass", au.PropertyBypassEffect, au.ScopeGlobal, 0, true, nil},
		{"latency", au.PropertyLatency, au.ScopeGlobal, 0, false, nil},
		{"factory presets without bank", au.PropertyFactoryPresets, au.ScopeGlobal, 0, false, au.ErrInvalidProperty},
		{"cocoa ui without editor", au.PropertyCocoaUI, au.ScopeGlobal, 0, false, au.ErrInvalidProperty},
		{"present preset", au.PropertyPresentPreset, au.ScopeGlobal, 0, true, nil},
		{"instance handle", au.PropertyInstanceHandle, au.ScopeGlobal, 0, false, nil},
		{"unknown", au.PropertyID(4242), au.ScopeGlobal, 0, false, au.ErrInvalidProperty},
	}

	_, inst := openTest(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, writable, err := inst.GetPropertyInfo(tt.id, tt.scope, tt.element)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.writable, writable)
			assert.NotZero(t, size)
		})
	}
}

func TestPropertyDirection(t *testing.T) {
	_, inst := openTest(t)

	var n uint32
	for _, id := range []au.PropertyID{
		au.PropertyParameterList, au.PropertyLatency, au.PropertyTailTime,
		au.PropertyLastRenderError, au.PropertyElementCount, au.PropertyInstanceHandle,
	} {
		assert.ErrorIs(t, inst.SetProperty(id, au.ScopeGlobal, 0, &n), au.ErrPropertyNotWritable, id.String())
	}

	for _, id := range []au.PropertyID{au.PropertySetRenderCallback, au.PropertyMakeConnection} {
		var cb au.RenderCallback
		assert.ErrorIs(t, inst.GetProperty(id, au.ScopeInput, 0, &cb), au.ErrInvalidProperty, id.String())
	}

	assert.ErrorIs(t, inst.SetProperty(au.PropertyID(4242), au.ScopeGlobal, 0, &n), au.ErrInvalidProperty)
}

func TestPropertyPayloadType(t *testing.T) {
	_, inst := openTest(t)

	var wrong uint32
	assert.ErrorIs(t, inst.GetProperty(au.PropertySampleRate, au.ScopeGlobal, 0, &wrong), au.ErrInvalidPropertyValue)
	assert.ErrorIs(t, inst.SetProperty(au.PropertySampleRate, au.ScopeGlobal, 0, &wrong), au.ErrInvalidPropertyValue)
	assert.ErrorIs(t, inst.SetProperty(au.PropertySampleRate, au.ScopeGlobal, 0, nil), au.ErrInvalidPropertyValue)
	var nilRate *float64
	assert.ErrorIs(t, inst.GetProperty(au.PropertySampleRate, au.ScopeGlobal, 0, nilRate), au.ErrInvalidPropertyValue)
}

func TestSetPropertyRejectionIsLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f, _ := newTestFactory(newTestPlugin(), WithLogger(zap.New(core)))
	inst := open(t, f)

	sr := -1.0
	require.Error(t, inst.SetProperty(au.PropertySampleRate, au.ScopeGlobal, 0, &sr))

	entries := logs.FilterMessage("set property rejected").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "SampleRate", ctx["property"])
	assert.Equal(t, "Level", ctx["plugin"])
}

func TestElementCount(t *testing.T) {
	_, inst := openTest(t)

	for scope, want := range map[au.Scope]uint32{au.ScopeGlobal: 1, au.ScopeInput: 2, au.ScopeOutput: 1} {
		var n uint32
		require.NoError(t, inst.GetProperty(au.PropertyElementCount, scope, 0, &n))
		assert.Equal(t, want, n, scope.String())
	}
	var n uint32
	assert.ErrorIs(t, inst.GetProperty(au.PropertyElementCount, au.Scope(9), 0, &n), au.ErrInvalidScope)
}

func TestLatencyAndTail(t *testing.T) {
	tests := []struct {
		name    string
		latency int32
		tail    int32
		wantLat float64
		wantTl  float64
	}{
		{"none", 0, 0, 0, 0},
		{"finite", 480, 4800, 0.01, 0.1},
		{"infinite tail", 96, fwplugin.InfiniteTail, 0.002, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlugin()
			p.setup = func(proc *testProcessor) {
				proc.SetLatencySamples(tt.latency)
				proc.SetTailSamples(tt.tail)
			}
			f, _ := newTestFactory(p)
			inst := open(t, f)
			sr := 48000.0
			require.NoError(t, inst.SetProperty(au.PropertySampleRate, au.ScopeGlobal, 0, &sr))

			var latency, tail float64
			require.NoError(t, inst.GetProperty(au.PropertyLatency, au.ScopeGlobal, 0, &latency))
			require.NoError(t, inst.GetProperty(au.PropertyTailTime, au.ScopeGlobal, 0, &tail))
			assert.InDelta(t, tt.wantLat, latency, 1e-12)
			if math.IsInf(tt.wantTl, 1) {
				assert.True(t, math.IsInf(tail, 1))
			} else {
				assert.InDelta(t, tt.wantTl, tail, 1e-12)
			}
		})
	}
}

func TestFactoryPresets(t *testing.T) {
	p := newTestPlugin()
	p.presets = testPresets()
	f, _ := newTestFactory(p)
	inst := open(t, f)

	var presets []au.Preset
	require.NoError(t, inst.GetProperty(au.PropertyFactoryPresets, au.ScopeGlobal, 0, &presets))
	assert.Equal(t, []au.Preset{{Number: 0, Name: "Quiet"}, {Number: 1, Name: "Crunch"}}, presets)

	presets[0].Name = "changed"
	var again []au.Preset
	require.NoError(t, inst.GetProperty(au.PropertyFactoryPresets, au.ScopeGlobal, 0, &again))
	assert.Equal(t, "Quiet", again[0].Name)
}

func TestPresentPreset(t *testing.T) {
	p := newTestPlugin()
	p.presets = testPresets()
	f, _ := newTestFactory(p)
	inst := open(t, f)
	rec := &propertyRecorder{}
	require.NoError(t, inst.AddPropertyListener(au.PropertyPresentPreset, rec, nil))

	var cur au.Preset
	require.NoError(t, inst.GetProperty(au.PropertyPresentPreset, au.ScopeGlobal, 0, &cur))
	assert.Equal(t, au.Preset{Number: -1, Name: "Untitled"}, cur)

	require.NoError(t, inst.SetProperty(au.PropertyPresentPreset, au.ScopeGlobal, 0, &au.Preset{Number: 1}))
	require.NoError(t, inst.GetProperty(au.PropertyPresentPreset, au.ScopeGlobal, 0, &cur))
	assert.Equal(t, au.Preset{Number: 1, Name: "Crunch"}, cur)
	level, err := inst.GetParameter(au.ParameterID(paramLevel), au.ScopeGlobal, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), level)
	mode, err := inst.GetParameter(au.ParameterID(paramMode), au.ScopeGlobal, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(2), mode)

	// Numbers outside the bank name a user preset and leave values alone.
	require.NoError(t, inst.SetProperty(au.PropertyPresentPreset, au.ScopeGlobal, 0, &au.Preset{Number: -1, Name: "Mine"}))
	require.NoError(t, inst.GetProperty(au.PropertyPresentPreset, au.ScopeGlobal, 0, &cur))
	assert.Equal(t, au.Preset{Number: -1, Name: "Mine"}, cur)
	level, err = inst.GetParameter(au.ParameterID(paramLevel), au.ScopeGlobal, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), level)

	assert.Len(t, rec.snapshot(), 2)
}

func TestCocoaUI(t *testing.T) {
	p := newTestPlugin()
	p.gui = true
	f, _ := newTestFactory(p)
	inst := open(t, f)

	var view au.ViewInfo
	require.NoError(t, inst.GetProperty(au.PropertyCocoaUI, au.ScopeGlobal, 0, &view))
	assert.Equal(t, au.ViewInfo{
		BundleID:  "com.augo.test.level",
		ClassName: "AugoViewFactory",
		Width:     400,
		Height:    300,
	}, view)
}

func TestLastRenderError(t *testing.T) {
	p, inst := openTest(t)
	prepare(t, inst, 48000, 64)
	p.core(0).renderErr = errors.New("dsp fault")

	err := inst.Render(nil, nil, 0, 64, stereo(64))
	assert.EqualError(t, err, "dsp fault")

	var st au.Status
	require.NoError(t, inst.GetProperty(au.PropertyLastRenderError, au.ScopeGlobal, 0, &st))
	assert.Equal(t, au.ErrFailedInitialization, st)
	require.NoError(t, inst.GetProperty(au.PropertyLastRenderError, au.ScopeGlobal, 0, &st))
	assert.Equal(t, au.NoErr, st)

	p.core(0).renderErr = au.ErrCannotDoInCurrentContext
	assert.ErrorIs(t, inst.Render(nil, nil, 0, 64, stereo(64)), au.ErrCannotDoInCurrentContext)
	require.NoError(t, inst.GetProperty(au.PropertyLastRenderError, au.ScopeGlobal, 0, &st))
	assert.Equal(t, au.ErrCannotDoInCurrentContext, st)
}

func TestHostCallbacks(t *testing.T) {
	p, inst := openTest(t)

	cb := au.HostCallbacks{
		UserData: "daw",
		BeatAndTempo: func() (float64, float64, error) {
			return 4, 120, nil
		},
	}
	require.NoError(t, inst.SetProperty(au.PropertyHostCallbacks, au.ScopeGlobal, 0, &cb))

	var got au.HostCallbacks
	require.NoError(t, inst.GetProperty(au.PropertyHostCallbacks, au.ScopeGlobal, 0, &got))
	assert.Equal(t, "daw", got.UserData)
	require.NotNil(t, got.BeatAndTempo)

	prepare(t, inst, 48000, 64)
	require.NoError(t, inst.Render(nil, nil, 0, 64, stereo(64)))
	host := p.core(0).host
	require.NotNil(t, host)
	_, tempo, err := host.BeatAndTempo()
	require.NoError(t, err)
	assert.Equal(t, 120.0, tempo)
}

func TestAcceptedHints(t *testing.T) {
	_, inst := openTest(t)

	on := uint32(1)
	for _, id := range []au.PropertyID{au.PropertyInPlaceProcessing, au.PropertyOfflineRender, au.PropertyShouldAllocateBuffer} {
		assert.NoError(t, inst.SetProperty(id, au.ScopeGlobal, 0, &on), id.String())
	}
	var inPlace uint32 = 7
	require.NoError(t, inst.GetProperty(au.PropertyInPlaceProcessing, au.ScopeGlobal, 0, &inPlace))
	assert.Zero(t, inPlace)
}

func TestInstanceHandle(t *testing.T) {
	_, inst := openTest(t)

	var core Core
	require.NoError(t, inst.GetProperty(au.PropertyInstanceHandle, au.ScopeGlobal, 0, &core))
	assert.Same(t, inst.Core(), core)
}
