package plugin

import (
	"encoding/base64"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/augo/pkg/au"
)

func (i *Instance) presentPresetLocked() au.Preset {
	if i.presetIndex >= 0 && int(i.presetIndex) < len(i.presets) {
		return i.presets[i.presetIndex]
	}
	name := i.presetName
	if name == "" {
		name = untitledPreset
	}
	return au.Preset{Number: -1, Name: name}
}

// setPresentPresetLocked applies a factory preset, or records a user preset
// name for numbers outside the factory range.
func (i *Instance) setPresentPresetLocked(p au.Preset) error {
	if p.Number < 0 || int(p.Number) >= len(i.presets) {
		i.presetIndex = -1
		i.presetName = p.Name
		return nil
	}
	if !i.core.ApplyPreset(int(p.Number)) {
		return au.ErrInvalidPropertyValue
	}
	i.presetIndex = p.Number
	i.presetName = i.presets[p.Number].Name
	i.log.Debug("factory preset applied", zap.Int32("number", p.Number), zap.String("name", i.presetName))
	return nil
}

// presetFile is the YAML form of a class info bundle.
type presetFile struct {
	Type         string `yaml:"type"`
	SubType      string `yaml:"subtype"`
	Manufacturer string `yaml:"manufacturer"`
	Name         string `yaml:"name"`
	Version      int32  `yaml:"version"`
	Data         string `yaml:"data,omitempty"`
}

// WritePresetFile stores a bundle as YAML, with the state base64 encoded.
func WritePresetFile(w io.Writer, ci au.ClassInfo) error {
	var f presetFile
	codes := []struct {
		key string
		dst *string
	}{
		{au.ClassInfoType, &f.Type},
		{au.ClassInfoSubType, &f.SubType},
		{au.ClassInfoManufacturer, &f.Manufacturer},
	}
	for _, c := range codes {
		v, ok := intField(ci, c.key)
		if !ok {
			return fmt.Errorf("preset bundle has no %s", c.key)
		}
		*c.dst = au.FourCC(uint32(int32(v))).String()
	}
	if v, ok := intField(ci, au.ClassInfoVersion); ok {
		f.Version = int32(v)
	}
	if name, ok := ci[au.ClassInfoName].(string); ok {
		f.Name = name
	}
	if data, ok := ci[au.ClassInfoData].([]byte); ok {
		f.Data = base64.StdEncoding.EncodeToString(data)
	}

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	return enc.Close()
}

// ReadPresetFile loads a bundle written by WritePresetFile.
func ReadPresetFile(r io.Reader) (au.ClassInfo, error) {
	var f presetFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode preset: %w", err)
	}

	ci := au.ClassInfo{
		au.ClassInfoName:    f.Name,
		au.ClassInfoVersion: f.Version,
	}
	codes := []struct {
		key string
		src string
	}{
		{au.ClassInfoType, f.Type},
		{au.ClassInfoSubType, f.SubType},
		{au.ClassInfoManufacturer, f.Manufacturer},
	}
	for _, c := range codes {
		code, err := au.ParseFourCC(c.src)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", c.key, err)
		}
		ci[c.key] = int32(code)
	}
	if f.Data != "" {
		data, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return nil, fmt.Errorf("preset data: %w", err)
		}
		ci[au.ClassInfoData] = data
	}
	return ci, nil
}
