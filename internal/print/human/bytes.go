package human

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bytes is a size in bytes, printed with binary units (KiB, MiB, ...). When
// parsed, KB-style suffixes are decimal and KiB-style suffixes or single
// letters are binary.
type Bytes int64

const (
	KiB Bytes = 1 << (10 * (iota + 1))
	MiB
	GiB
	TiB
)

var byteUnits = map[string]Bytes{
	"":    1,
	"B":   1,
	"K":   KiB,
	"KiB": KiB,
	"KB":  1e3,
	"M":   MiB,
	"MiB": MiB,
	"MB":  1e6,
	"G":   GiB,
	"GiB": GiB,
	"GB":  1e9,
	"T":   TiB,
	"TiB": TiB,
	"TB":  1e12,
}

func ParseBytes(s string) (Bytes, error) {
	number, unit := splitNumber(s)
	scale, ok := byteUnits[unit]
	if !ok {
		return 0, fmt.Errorf("malformed size: %q: unknown unit %q", s, unit)
	}
	if n, err := strconv.ParseInt(number, 10, 64); err == nil {
		return Bytes(n) * scale, nil
	}
	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed size: %q", s)
	}
	return Bytes(f * float64(scale)), nil
}

func (b Bytes) String() string {
	if b < 0 {
		return "-" + (-b).String()
	}
	if b < KiB {
		return strconv.FormatInt(int64(b), 10) + " B"
	}
	unit, name := KiB, "KiB"
	for _, u := range []struct {
		size Bytes
		name string
	}{{MiB, "MiB"}, {GiB, "GiB"}, {TiB, "TiB"}} {
		if b >= u.size {
			unit, name = u.size, u.name
		}
	}
	return strconv.FormatFloat(float64(b)/float64(unit), 'f', 1, 64) + " " + name
}

func (b *Bytes) Set(s string) error {
	v, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func (b Bytes) MarshalJSON() ([]byte, error) { return strconv.AppendInt(nil, int64(b), 10), nil }

func (b *Bytes) UnmarshalJSON(j []byte) error {
	return b.Set(strings.Trim(string(j), `"`))
}

func (b Bytes) MarshalYAML() (any, error) { return int64(b), nil }

func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar value", node.Line)
	}
	return b.Set(node.Value)
}

func (b *Bytes) UnmarshalText(t []byte) error { return b.Set(string(t)) }
