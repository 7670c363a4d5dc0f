package tracecraft

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Nullable is an optional configuration value. Unset values are encoded as
// null, and a null or empty value in the configuration file unsets the
// default.
type Nullable[T any] struct{ v *T }

func Null[T any]() Nullable[T] { return Nullable[T]{} }

func NullableValue[T any](v T) Nullable[T] { return Nullable[T]{v: &v} }

// Value returns the value and whether it is set.
func (n Nullable[T]) Value() (v T, ok bool) {
	if n.v != nil {
		v, ok = *n.v, true
	}
	return v, ok
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) { return json.Marshal(n.v) }

func (n Nullable[T]) MarshalYAML() (any, error) {
	if n.v == nil {
		return nil, nil
	}
	return *n.v, nil
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.v = nil
	var v *T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.v = v
	return nil
}

func (n *Nullable[T]) UnmarshalYAML(node *yaml.Node) error {
	n.v = nil
	if node.Kind == yaml.ScalarNode && (node.Tag == "!!null" || node.Value == "") {
		return nil
	}
	v := new(T)
	if err := node.Decode(v); err != nil {
		return err
	}
	n.v = v
	return nil
}
