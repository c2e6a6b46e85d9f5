// Package preset holds factory presets: named, sparse sets of parameter
// values declared with a plugin and never modified afterwards.
package preset

import (
	"maps"
	"slices"

	"github.com/justyntemme/augo/pkg/framework/param"
)

// Preset is a named set of plain parameter values. Parameters that are not
// listed keep their current value when the preset is applied.
type Preset struct {
	Name   string
	Values map[uint32]float64
}

// Apply writes the preset into the registry and returns how many
// parameters changed. Unknown ids are ignored.
func (p Preset) Apply(reg *param.Registry) int {
	n := 0
	for _, id := range slices.Sorted(maps.Keys(p.Values)) {
		if prm := reg.Get(id); prm != nil {
			prm.SetPlainValue(p.Values[id])
			n++
		}
	}
	return n
}

// Capture snapshots every parameter of the registry as a preset.
func Capture(name string, reg *param.Registry) Preset {
	p := Preset{Name: name, Values: make(map[uint32]float64, reg.Count())}
	for _, prm := range reg.All() {
		p.Values[prm.ID] = prm.GetPlainValue()
	}
	return p
}

// Bank is an immutable, ordered list of presets.
type Bank struct {
	presets []Preset
}

// NewBank copies the given presets into a bank.
func NewBank(presets ...Preset) *Bank {
	b := &Bank{presets: make([]Preset, len(presets))}
	for i, p := range presets {
		b.presets[i] = Preset{Name: p.Name, Values: maps.Clone(p.Values)}
	}
	return b
}

// Count returns the number of presets. A nil bank is empty.
func (b *Bank) Count() int {
	if b == nil {
		return 0
	}
	return len(b.presets)
}

// Name returns the name of preset i.
func (b *Bank) Name(i int) (string, bool) {
	if i < 0 || i >= b.Count() {
		return "", false
	}
	return b.presets[i].Name, true
}

// Apply applies preset i to the registry.
func (b *Bank) Apply(i int, reg *param.Registry) bool {
	if i < 0 || i >= b.Count() {
		return false
	}
	b.presets[i].Apply(reg)
	return true
}

// Index returns the position of the first preset with the given name.
func (b *Bank) Index(name string) int {
	for i := 0; i < b.Count(); i++ {
		if b.presets[i].Name == name {
			return i
		}
	}
	return -1
}
