package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// unit is a display suffix and the factor that converts it to the
// parameter's plain unit.
type unit struct {
	suffix string
	scale  float64
}

// parseUnits parses a number followed by one of the suffixes, compared
// case-insensitively. Longer suffixes must come first. A bare number is
// taken as-is.
func parseUnits(str string, units ...unit) (float64, error) {
	str = strings.TrimSpace(str)
	lower := strings.ToLower(str)
	scale := 1.0
	for _, u := range units {
		if strings.HasSuffix(lower, strings.ToLower(u.suffix)) {
			str = str[:len(str)-len(u.suffix)]
			scale = u.scale
			break
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, err
	}
	return v * scale, nil
}

func isInfinity(str string) bool {
	return strings.Contains(str, "∞") || strings.Contains(strings.ToLower(str), "inf")
}

// DecibelFormatter shows dB with one decimal; -60 dB and below read as
// silence.
func DecibelFormatter(db float64) string {
	if db <= -60 {
		return "-∞ dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}

// DecibelParser accepts "-6", "-6 dB" and "-inf".
func DecibelParser(str string) (float64, error) {
	if isInfinity(str) {
		return math.Inf(-1), nil
	}
	return parseUnits(str, unit{"dB", 1})
}

// PercentFormatter shows a whole percentage.
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// PercentParser accepts "40" and "40%".
func PercentParser(str string) (float64, error) {
	return parseUnits(str, unit{"%", 1})
}

// TimeFormatter shows milliseconds in µs, ms or s.
func TimeFormatter(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.2f µs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.1f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// TimeParser returns milliseconds; µs, us, ms and s suffixes are accepted.
func TimeParser(str string) (float64, error) {
	return parseUnits(str, unit{"µs", 0.001}, unit{"us", 0.001}, unit{"ms", 1}, unit{"s", 1000})
}

// OnOffFormatter formats switches.
func OnOffFormatter(value float64) string {
	if value > 0.5 {
		return "On"
	}
	return "Off"
}

// OnOffParser accepts on/off, yes/no, true/false and 1/0.
func OnOffParser(str string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "on", "yes", "true", "1":
		return 1, nil
	case "off", "no", "false", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("expected on or off, got %q", str)
}
