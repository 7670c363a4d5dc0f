package human

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Time is a point in time printed relative to the present, as "3m ago" or
// "in 2h". Encoded values use RFC 3339.
type Time time.Time

func ParseTime(s string) (Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Time{}, fmt.Errorf("malformed time: %q", s)
	}
	return Time(t), nil
}

func (t Time) IsZero() bool { return time.Time(t).IsZero() }

func (t Time) String() string { return t.Since(time.Now()) }

// Since returns the text representation of t relative to now.
func (t Time) Since(now time.Time) string {
	if t.IsZero() {
		return "(none)"
	}
	switch d := now.Sub(time.Time(t)); {
	case d > -time.Second && d < time.Second:
		return "now"
	case d > 0:
		return coarse(d) + " ago"
	default:
		return "in " + coarse(-d)
	}
}

// coarse keeps only the largest unit of d.
func coarse(d time.Duration) string {
	for _, u := range []struct {
		size time.Duration
		name string
	}{{Week, "w"}, {Day, "d"}, {time.Hour, "h"}, {time.Minute, "m"}} {
		if d >= u.size {
			return strconv.FormatInt(int64(d/u.size), 10) + u.name
		}
	}
	return strconv.FormatInt(int64(d/time.Second), 10) + "s"
}

func (t *Time) Set(s string) error {
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) { return time.Time(t).MarshalJSON() }

func (t *Time) UnmarshalJSON(b []byte) error { return (*time.Time)(t).UnmarshalJSON(b) }

func (t Time) MarshalYAML() (any, error) { return time.Time(t).Format(time.RFC3339Nano), nil }

func (t *Time) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: time must be a scalar value", node.Line)
	}
	return t.Set(node.Value)
}

func (t Time) MarshalText() ([]byte, error) { return time.Time(t).MarshalText() }

func (t *Time) UnmarshalText(b []byte) error { return t.Set(string(b)) }
