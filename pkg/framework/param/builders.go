package param

import (
	"fmt"
	"strings"

	"github.com/justyntemme/augo/pkg/au"
)

// Choice creates an indexed parameter whose steps are the given names.
// Hosts see the index 0..len(names)-1 and the names as value strings.
func Choice(id uint32, name string, names ...string) *Builder {
	labels := append([]string(nil), names...)

	format := func(value float64) string {
		index := int(value + 0.5)
		if index >= 0 && index < len(labels) {
			return labels[index]
		}
		return "Unknown"
	}
	parse := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for i, label := range labels {
			if strings.EqualFold(str, label) {
				return float64(i), nil
			}
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	steps := int32(len(labels) - 1)
	if steps < 1 {
		steps = 1
	}
	return New(id, name).
		Range(0, float64(steps)).
		Steps(steps).
		UnitType(au.UnitIndexed).
		Default(0).
		Formatter(format, parse)
}

// GainParameter creates a standard gain parameter (-80 to +12dB)
func GainParameter(id uint32, name string) *Builder {
	return New(id, name).
		Range(-80, 12).
		Default(0).
		Unit("dB").
		UnitType(au.UnitDecibels).
		Formatter(func(v float64) string {
			if v <= -80 {
				return "-∞ dB"
			}
			return fmt.Sprintf("%.1f dB", v)
		}, func(s string) (float64, error) {
			v, err := DecibelParser(s)
			return max(v, -80), err
		})
}

// MixParameter creates a standard mix/blend parameter (0-100%)
func MixParameter(id uint32, name string) *Builder {
	return New(id, name).
		Range(0, 100).
		Default(100).
		Unit("%").
		UnitType(au.UnitPercent).
		Formatter(PercentFormatter, PercentParser)
}

// TimeParameter creates a time parameter in milliseconds
func TimeParameter(id uint32, name string, minMs, maxMs, defaultMs float64) *Builder {
	return New(id, name).
		Range(minMs, maxMs).
		Default(defaultMs).
		Unit("ms").
		UnitType(au.UnitMilliseconds).
		Formatter(TimeFormatter, TimeParser)
}

// BypassParameter creates a bypass on/off switch
func BypassParameter(id uint32, name string) *Builder {
	return New(id, name).Toggle().Bypass()
}
