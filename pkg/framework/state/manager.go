// Package state encodes a plugin core's parameters and custom data into
// the opaque blob stored in a host's preset bundle.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/justyntemme/augo/pkg/framework/param"
)

// Magic opens every state blob.
const Magic = "AUGO"

// Version is the current blob version.
const Version uint32 = 1

// ErrInvalidState is returned for blobs that are not ours or are truncated.
var ErrInvalidState = errors.New("invalid state")

// Manager handles plugin state saving and loading
type Manager struct {
	version  uint32
	registry *param.Registry
	save     SaveFunc
	load     LoadFunc
}

// SaveFunc writes state beyond parameters.
type SaveFunc func(w io.Writer) error

// LoadFunc reads what the matching SaveFunc wrote.
type LoadFunc func(r io.Reader) error

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  Version,
		registry: registry,
	}
}

// SetCustomState installs the functions for custom state. Both must be set
// for custom data to be written.
func (m *Manager) SetCustomState(save SaveFunc, load LoadFunc) {
	m.save = save
	m.load = load
}

// Save writes the plugin state to a writer.
//
// Layout, little endian: magic, version u32, count i32, count x (id u32,
// normalized f64), custom flag u32, and when the flag is set a u32 length
// followed by the custom bytes.
func (m *Manager) Save(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	_ = binary.Write(&buf, binary.LittleEndian, m.version)
	_ = binary.Write(&buf, binary.LittleEndian, m.registry.Count())
	for _, p := range m.registry.All() {
		_ = binary.Write(&buf, binary.LittleEndian, p.ID)
		_ = binary.Write(&buf, binary.LittleEndian, p.GetValue())
	}

	if m.save == nil || m.load == nil {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(0))
	} else {
		var custom bytes.Buffer
		if err := m.save(&custom); err != nil {
			return fmt.Errorf("save custom state: %w", err)
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint32(1))
		_ = binary.Write(&buf, binary.LittleEndian, uint32(custom.Len()))
		buf.Write(custom.Bytes())
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Bytes returns the encoded state.
func (m *Manager) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the plugin state from a reader. Parameters the registry does
// not know are skipped. Nothing is applied unless the whole blob decodes.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if string(header) != Magic {
		return fmt.Errorf("%w: bad magic %q", ErrInvalidState, header)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if version > m.version {
		return fmt.Errorf("%w: version %d is newer than supported version %d", ErrInvalidState, version, m.version)
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative parameter count", ErrInvalidState)
	}

	type entry struct {
		ID    uint32
		Value float64
	}
	values := make([]entry, 0, min(int(count), 4096))
	for i := int32(0); i < count; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return fmt.Errorf("%w: parameter %d: %v", ErrInvalidState, i, err)
		}
		values = append(values, e)
	}

	var hasCustom uint32
	if err := binary.Read(r, binary.LittleEndian, &hasCustom); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	var custom []byte
	if hasCustom != 0 {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		custom = make([]byte, n)
		if _, err := io.ReadFull(r, custom); err != nil {
			return fmt.Errorf("%w: custom data: %v", ErrInvalidState, err)
		}
	}

	if custom != nil && m.load != nil {
		if err := m.load(bytes.NewReader(custom)); err != nil {
			return fmt.Errorf("load custom state: %w", err)
		}
	}
	for _, e := range values {
		if p := m.registry.Get(e.ID); p != nil {
			p.SetValue(e.Value)
		}
	}
	return nil
}

// SetBytes decodes a blob produced by Bytes.
func (m *Manager) SetBytes(data []byte) error {
	return m.Load(bytes.NewReader(data))
}
