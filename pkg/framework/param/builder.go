package param

import "github.com/justyntemme/augo/pkg/au"

// Builder provides a fluent API for creating parameters
type Builder struct {
	param      *Parameter
	defaultSet bool
	plainDef   float64
}

// New creates a new parameter builder
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:        id,
			Name:      name,
			ShortName: name,
			Min:       0,
			Max:       1,
			Flags:     CanAutomate,
		},
	}
}

// ShortName sets the short name
func (b *Builder) ShortName(name string) *Builder {
	b.param.ShortName = name
	return b
}

// Range sets the min and max values
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	return b
}

// Default sets the default value in plain units. It is normalized at Build
// so it may be given before Range or Steps.
func (b *Builder) Default(value float64) *Builder {
	b.plainDef = value
	b.defaultSet = true
	return b
}

// Unit sets the unit label
func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

// UnitType sets the unit hosts use to pick a control.
func (b *Builder) UnitType(t au.ParameterUnit) *Builder {
	b.param.UnitType = t
	return b
}

// Steps sets the number of discrete steps
func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

// Group places the parameter in a group registered on the Registry.
func (b *Builder) Group(id int32) *Builder {
	b.param.GroupID = id
	return b
}

// Flags sets parameter flags
func (b *Builder) Flags(flags uint32) *Builder {
	b.param.Flags = flags
	return b
}

// Toggle creates a boolean parameter
func (b *Builder) Toggle() *Builder {
	b.param.Min = 0
	b.param.Max = 1
	b.param.StepCount = 1
	b.param.UnitType = au.UnitBoolean
	return b.Formatter(OnOffFormatter, OnOffParser)
}

// ReadOnly marks the parameter as read-only
func (b *Builder) ReadOnly() *Builder {
	b.param.Flags |= IsReadOnly
	b.param.Flags &^= CanAutomate
	return b
}

// Hidden marks the parameter as hidden
func (b *Builder) Hidden() *Builder {
	b.param.Flags |= IsHidden
	return b
}

// Bypass marks this as the bypass parameter
func (b *Builder) Bypass() *Builder {
	b.param.Flags |= IsBypass
	return b
}

// Formatter sets custom value formatting and parsing
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the configured parameter set to its default.
func (b *Builder) Build() *Parameter {
	if b.defaultSet {
		b.param.DefaultValue = b.param.Normalize(b.plainDef)
	}
	b.param.Reset()
	return b.param
}
