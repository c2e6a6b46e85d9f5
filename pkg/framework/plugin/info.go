// Package plugin describes a framework plugin: its identity, the processor
// interface a core implements, and small bases that remove boilerplate.
package plugin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/justyntemme/augo/pkg/au"
)

// namespace seeds UID derivation so ids never collide with other UUID users.
var namespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("augo.justyntemme.github.com"))

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Free-form category (e.g., "Fx", "Instrument")
	URL      string
	Email    string

	Type         au.ComponentType
	SubType      au.FourCC
	Manufacturer au.FourCC
}

// UID derives a stable identifier from the plugin ID.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(i.ID))
}

// Description returns the component triple the host identifies us by.
func (i Info) Description() au.ComponentDescription {
	return au.ComponentDescription{
		Type:         i.Type,
		SubType:      i.SubType,
		Manufacturer: i.Manufacturer,
	}
}

// VersionNumber packs "major.minor.patch" as 0xMMMMmmpp. Missing or
// malformed components count as zero.
func (i Info) VersionNumber() int32 {
	var parts [3]int64
	for n, s := range strings.SplitN(i.Version, ".", 3) {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err == nil && v > 0 {
			parts[n] = v
		}
	}
	return int32(min(parts[0], 0x7fff)<<16 | min(parts[1], 0xff)<<8 | min(parts[2], 0xff))
}

// Validate checks that the identity fields a host relies on are set.
func (i Info) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("missing name"))
	}
	if i.Type == 0 {
		errs = append(errs, errors.New("missing component type"))
	}
	if i.SubType == 0 {
		errs = append(errs, errors.New("missing subtype"))
	}
	if i.Manufacturer == 0 {
		errs = append(errs, errors.New("missing manufacturer"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("plugin %q: %w", i.ID, err)
	}
	return nil
}
