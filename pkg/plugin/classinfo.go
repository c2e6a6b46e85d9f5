package plugin

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/justyntemme/augo/pkg/au"
)

const (
	classInfoVersion int32 = 0

	// legacyStateKey holds the state in bundles written by earlier
	// versions of the bridge.
	legacyStateKey = "augo-state"

	untitledPreset = "Untitled"
)

// ExportClassInfo captures the identity, current preset name and core
// state of the instance.
func (i *Instance) ExportClassInfo() (au.ClassInfo, error) {
	if err := i.checkOpen(); err != nil {
		return nil, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.exportClassInfoLocked()
}

func (i *Instance) exportClassInfoLocked() (au.ClassInfo, error) {
	ci := au.ClassInfo{
		au.ClassInfoType:         int32(i.desc.Type),
		au.ClassInfoSubType:      int32(i.desc.SubType),
		au.ClassInfoManufacturer: int32(i.desc.Manufacturer),
		au.ClassInfoName:         i.presentPresetLocked().Name,
		au.ClassInfoVersion:      classInfoVersion,
	}
	if n := i.core.StateSize(); n > 0 {
		buf := make([]byte, n)
		w, err := i.core.GetState(buf)
		if err != nil {
			return nil, fmt.Errorf("save state: %w", err)
		}
		if w > 0 {
			ci[au.ClassInfoData] = buf[:min(w, n)]
		}
	}
	return ci, nil
}

// ImportClassInfo restores a bundle produced by ExportClassInfo. The bundle
// is validated completely before the core state changes, and the preset
// name is only taken over once the core accepted the state.
func (i *Instance) ImportClassInfo(ci au.ClassInfo) error {
	if err := i.checkOpen(); err != nil {
		return err
	}
	i.mu.Lock()
	err := i.importClassInfoLocked(ci)
	i.mu.Unlock()
	if err != nil {
		return err
	}
	i.notify(au.PropertyClassInfo, au.ScopeGlobal, 0)
	return nil
}

func (i *Instance) importClassInfoLocked(ci au.ClassInfo) error {
	if ci == nil {
		return au.ErrInvalidPropertyValue
	}
	identity := []struct {
		key  string
		want int32
	}{
		{au.ClassInfoType, int32(i.desc.Type)},
		{au.ClassInfoSubType, int32(i.desc.SubType)},
		{au.ClassInfoManufacturer, int32(i.desc.Manufacturer)},
	}
	for _, id := range identity {
		v, ok := intField(ci, id.key)
		if !ok || v != int64(id.want) {
			i.log.Debug("class info identity mismatch", zap.String("key", id.key))
			return au.ErrInvalidPropertyValue
		}
	}
	if v, ok := intField(ci, au.ClassInfoVersion); !ok || v > int64(classInfoVersion) {
		return au.ErrInvalidPropertyValue
	}

	var name string
	rawName, hasName := ci[au.ClassInfoName]
	if hasName {
		s, ok := rawName.(string)
		if !ok {
			return au.ErrInvalidPropertyValue
		}
		name = s
	}

	rawData, hasData := ci[au.ClassInfoData]
	if !hasData {
		rawData, hasData = ci[legacyStateKey]
	}
	var data []byte
	if hasData {
		b, ok := rawData.([]byte)
		if !ok {
			return au.ErrInvalidPropertyValue
		}
		data = b
	}

	if hasData {
		if err := i.core.SetState(data); err != nil {
			i.log.Warn("restore state failed", zap.Error(err))
			return fmt.Errorf("restore state: %w", err)
		}
	}
	if hasName {
		i.presetIndex = -1
		i.presetName = name
	}
	i.log.Debug("class info restored", zap.String("name", name), zap.Int("stateBytes", len(data)))
	return nil
}

// intField reads an integer bundle value. Decoders hand back different
// integer types; floats are accepted when integral. Values in the upper
// half of the uint32 range are four-char codes and wrap to int32.
func intField(ci au.ClassInfo, key string) (int64, bool) {
	var n int64
	switch v := ci[key].(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxUint32 {
			return 0, false
		}
		n = int64(v)
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxUint32 {
			return 0, false
		}
		n = int64(v)
	default:
		return 0, false
	}
	if n > math.MaxInt32 && n <= math.MaxUint32 {
		n = int64(int32(uint32(n)))
	}
	return n, true
}
