package human

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Duration is a time.Duration printed with three significant digits, and
// parsed from either Go duration syntax or a number of days ("2d") or weeks
// ("1w").
type Duration time.Duration

func ParseDuration(s string) (Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return Duration(d), nil
	}
	number, unit := splitNumber(s)
	var scale time.Duration
	switch unit {
	case "d", "day", "days":
		scale = Day
	case "w", "week", "weeks":
		scale = Week
	default:
		return 0, fmt.Errorf("malformed duration: %q", s)
	}
	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration: %q", s)
	}
	return Duration(f * float64(scale)), nil
}

func (d Duration) String() string {
	if d < 0 {
		return "-" + (-d).String()
	}
	switch v := time.Duration(d); {
	case v == 0:
		return "0s"
	case v < time.Microsecond:
		return strconv.FormatInt(int64(v), 10) + "ns"
	case v < time.Millisecond:
		return ftoa(float64(v)/float64(time.Microsecond)) + "µs"
	case v < time.Second:
		return ftoa(float64(v)/float64(time.Millisecond)) + "ms"
	case v < time.Minute:
		return ftoa(v.Seconds()) + "s"
	default:
		return trimZeroUnits(v.Round(time.Second).String())
	}
}

// trimZeroUnits turns "2h0m0s" into "2h" and "3m0s" into "3m".
func trimZeroUnits(s string) string {
	for _, suffix := range []string{"0s", "0m"} {
		if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
			switch s[len(s)-len(suffix)-1] {
			case 'h', 'm':
				s = s[:len(s)-len(suffix)]
			}
		}
	}
	return s
}

func (d *Duration) Set(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error { return d.Set(string(b)) }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.Set(s)
}

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar value", node.Line)
	}
	return d.Set(node.Value)
}
