// Package param holds plugin parameter metadata and lock-free values.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/justyntemme/augo/pkg/au"
)

// Parameter represents a plugin parameter. Its value is stored normalized to
// [0,1] and may be read and written from any thread.
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	UnitType     au.ParameterUnit
	Min          float64
	Max          float64
	DefaultValue float64 // normalized
	StepCount    int32
	Flags        uint32
	GroupID      int32

	value atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate     uint32 = 1 << 0
	IsReadOnly      uint32 = 1 << 1
	IsWrapAround    uint32 = 1 << 2
	IsList          uint32 = 1 << 3
	IsHidden        uint32 = 1 << 4
	IsProgramChange uint32 = 1 << 15
	IsBypass        uint32 = 1 << 16
)

// RootGroup is the group of parameters that belong to no named group.
const RootGroup int32 = 0

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value, clamped to 0-1. Stepped parameters
// store the value as given; it is snapped when converted to plain units.
func (p *Parameter) SetValue(value float64) {
	if value < 0 || math.IsNaN(value) {
		value = 0
	} else if value > 1 {
		value = 1
	}
	p.value.Store(math.Float64bits(value))
}

// GetPlainValue converts the current value to plain units.
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue sets the value from plain units.
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.SetValue(p.DefaultValue)
}

// IsStepped reports whether the parameter takes StepCount+1 discrete values.
func (p *Parameter) IsStepped() bool {
	return p.StepCount > 0
}

// IsIndexed reports whether hosts address the parameter by index rather
// than by plain value.
func (p *Parameter) IsIndexed() bool {
	return p.UnitType == au.UnitIndexed && p.StepCount > 0
}

// Index returns the step index of a normalized value.
func (p *Parameter) Index(normalized float64) int32 {
	if p.StepCount <= 0 {
		return 0
	}
	return int32(math.Round(clamp01(normalized) * float64(p.StepCount)))
}

// FromIndex returns the normalized value of a step index.
func (p *Parameter) FromIndex(index int32) float64 {
	if p.StepCount <= 0 {
		return 0
	}
	return clamp01(float64(index) / float64(p.StepCount))
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns formatted parameter value
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)

	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue parses string to normalized value
func (p *Parameter) ParseValue(str string) (float64, error) {
	if p.parseFunc != nil {
		plain, err := p.parseFunc(str)
		if err != nil {
			return 0, err
		}
		return p.Normalize(plain), nil
	}
	plain, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return p.Normalize(plain), nil
}

// ValueStrings returns the display string of every step of a stepped
// parameter, or nil for a continuous one.
func (p *Parameter) ValueStrings() []string {
	if p.StepCount <= 0 {
		return nil
	}
	out := make([]string, p.StepCount+1)
	for i := range out {
		out[i] = p.FormatValue(p.FromIndex(int32(i)))
	}
	return out
}

// Normalize converts plain value to normalized (0-1). Stepped parameters
// snap to the nearest step.
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := clamp01((plain - p.Min) / (p.Max - p.Min))
	if p.StepCount > 0 {
		return p.FromIndex(p.Index(normalized))
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	normalized = clamp01(normalized)
	if p.StepCount > 0 {
		step := (p.Max - p.Min) / float64(p.StepCount)
		return p.Min + float64(p.Index(normalized))*step
	}
	return p.Min + normalized*(p.Max-p.Min)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
