package plugin

import (
	"math"
	"strconv"
	"strings"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/param"
	"github.com/justyntemme/augo/pkg/framework/process"
)

// Host values are plain units, except for indexed parameters which hosts
// address by step index.

func hostValue(p *param.Parameter, normalized float64) float32 {
	if p.IsIndexed() {
		return float32(p.Index(normalized))
	}
	return float32(p.Denormalize(normalized))
}

func normalizedFromHost(p *param.Parameter, v float32) float64 {
	if p.IsIndexed() {
		f := float64(v)
		if math.IsNaN(f) || f < 0 {
			return 0
		}
		if f > float64(p.StepCount) {
			f = float64(p.StepCount)
		}
		return p.FromIndex(int32(math.Round(f)))
	}
	return p.Normalize(float64(v))
}

func (i *Instance) parameter(id au.ParameterID) (*param.Parameter, error) {
	p := i.core.Parameter(uint32(id))
	if p == nil {
		return nil, au.ErrInvalidParameter
	}
	return p, nil
}

// GetParameter returns the current value of a parameter in host units. It
// may be called from any thread.
func (i *Instance) GetParameter(id au.ParameterID, scope au.Scope, element au.Element) (float32, error) {
	if err := i.checkOpen(); err != nil {
		return 0, err
	}
	if scope != au.ScopeGlobal {
		return 0, au.ErrInvalidScope
	}
	p, err := i.parameter(id)
	if err != nil {
		return 0, err
	}
	return hostValue(p, p.GetValue()), nil
}

// SetParameter sets a parameter from a host value. The value is visible to
// the next render; bufferOffset is forwarded to the core with the change.
// It may be called from any thread.
func (i *Instance) SetParameter(id au.ParameterID, scope au.Scope, element au.Element, value float32, bufferOffset uint32) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	if scope != au.ScopeGlobal {
		return au.ErrInvalidScope
	}
	p, err := i.parameter(id)
	if err != nil {
		return err
	}
	n := normalizedFromHost(p, value)
	p.SetValue(n)
	i.queueChange(p.ID, p.GetValue(), bufferOffset)
	return nil
}

// ScheduleParameters applies a batch of parameter events. Immediate events
// set their value; ramped events jump to their end value. Every event is
// validated before any is applied.
func (i *Instance) ScheduleParameters(events []au.ParameterEvent) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	for k := range events {
		e := &events[k]
		if e.Scope != au.ScopeGlobal {
			return au.ErrInvalidScope
		}
		if e.Type != au.ParameterEventImmediate && e.Type != au.ParameterEventRamped {
			return au.ErrParam
		}
		if _, err := i.parameter(e.Parameter); err != nil {
			return err
		}
	}

	for k := range events {
		e := &events[k]
		p := i.core.Parameter(uint32(e.Parameter))
		value, offset := e.Value, e.BufferOffset
		if e.Type == au.ParameterEventRamped {
			value = e.EndValue
			offset = uint32(max(e.StartBufferOffset, 0))
		}
		p.SetValue(normalizedFromHost(p, value))
		i.queueChange(p.ID, p.GetValue(), offset)
	}
	return nil
}

// queueChange forwards a change to the render thread. Producers from any
// thread are serialized by paramMu; a full ring drops the change but the
// parameter value itself is already stored.
func (i *Instance) queueChange(id uint32, normalized float64, offset uint32) {
	if !i.prepared.Load() {
		return
	}
	i.paramMu.Lock()
	ok := i.params.Push(process.ParamChange{ID: id, Value: normalized, Offset: offset})
	i.paramMu.Unlock()
	if !ok {
		i.metrics.DroppedParams.Inc()
	}
}

func (i *Instance) parameterList() []au.ParameterID {
	n := i.core.ParameterCount()
	ids := make([]au.ParameterID, 0, n)
	for k := 0; k < n; k++ {
		if p := i.core.ParameterAt(k); p != nil {
			ids = append(ids, au.ParameterID(p.ID))
		}
	}
	return ids
}

func (i *Instance) parameterInfo(id au.ParameterID) (au.ParameterInfo, error) {
	p, err := i.parameter(id)
	if err != nil {
		return au.ParameterInfo{}, err
	}
	info := au.ParameterInfo{
		Name:         p.Name,
		UnitName:     p.Unit,
		Unit:         p.UnitType,
		MinValue:     float32(p.Min),
		MaxValue:     float32(p.Max),
		DefaultValue: float32(p.Denormalize(p.DefaultValue)),
		Flags:        au.ParameterFlagHasName | au.ParameterFlagIsReadable | au.ParameterFlagIsWritable,
	}
	if p.Flags&param.CanAutomate != 0 {
		info.Flags |= au.ParameterFlagIsHighResolution
	}
	if p.Flags&param.IsReadOnly != 0 {
		info.Flags &^= au.ParameterFlagIsWritable
	}
	if p.IsIndexed() {
		info.Unit = au.UnitIndexed
		info.MinValue = 0
		info.MaxValue = float32(p.StepCount)
		info.DefaultValue = float32(p.Index(p.DefaultValue))
		info.Flags |= au.ParameterFlagValuesHaveStrings
	}
	if p.GroupID != param.RootGroup {
		info.ClumpID = uint32(p.GroupID)
		info.Flags |= au.ParameterFlagHasClump
	}
	return info, nil
}

func (i *Instance) valueStrings(id au.ParameterID) ([]string, error) {
	p, err := i.parameter(id)
	if err != nil {
		return nil, err
	}
	s := p.ValueStrings()
	if len(s) == 0 {
		return nil, au.ErrInvalidProperty
	}
	return s, nil
}

func (i *Instance) stringFromValue(v *au.ParameterStringFromValue) error {
	p, err := i.parameter(v.ParamID)
	if err != nil {
		return err
	}
	n := p.GetValue()
	if v.Value != nil {
		n = normalizedFromHost(p, *v.Value)
	}
	v.String = p.FormatValue(n)
	return nil
}

func (i *Instance) valueFromString(v *au.ParameterValueFromString) error {
	p, err := i.parameter(v.ParamID)
	if err != nil {
		return err
	}
	n, err := p.ParseValue(v.String)
	if err != nil {
		n = p.Normalize(leadingFloat(v.String))
	}
	v.Value = hostValue(p, n)
	return nil
}

func (i *Instance) clumpName(c *au.ClumpName) error {
	for k := 0; k < i.core.GroupCount(); k++ {
		g, ok := i.core.GroupAt(k)
		if ok && uint32(g.ID) == c.ClumpID {
			c.Name = g.Name
			return nil
		}
	}
	return au.ErrInvalidPropertyValue
}

// leadingFloat parses the longest numeric prefix of s, ignoring leading
// spaces, and returns 0 when there is none.
func leadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t")
	end := 0
	for end < len(s) && strings.IndexByte("+-.0123456789eE", s[end]) >= 0 {
		end++
	}
	for ; end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v
		}
	}
	return 0
}
