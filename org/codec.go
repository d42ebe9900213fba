package org

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v2"
)

// Tree wraps a Node so it can sit in structs that are decoded from JSON
// or YAML. Department order is preserved in both directions.
type Tree struct {
	Node
}

// DecodeJSON parses an org structure. A top-level array is Staff and a
// top-level object is Departments.
func DecodeJSON(buf []byte) (Node, error) {
	buf = bytes.TrimSpace(buf)
	if len(buf) == 0 {
		return nil, fmt.Errorf("empty document: %w", ErrMalformed)
	}

	switch buf[0] {
	case '[':
		var items []interface{}
		if err := json.Unmarshal(buf, &items); err != nil {
			return nil, err
		}
		return staffFromItems("", items)

	case '{':
		om := orderedmap.New()
		if err := om.UnmarshalJSON(buf); err != nil {
			return nil, err
		}
		return departmentsFromJSON("", om)
	}

	logger.WithField("prefix", string(buf[0])).Debug("unexpected JSON document")
	return nil, fmt.Errorf("document is neither an array nor an object: %w", ErrMalformed)
}

// DecodeYAML parses an org structure from YAML, with the same shape as
// DecodeJSON.
func DecodeYAML(buf []byte) (Node, error) {
	var t Tree
	if err := yaml.Unmarshal(buf, &t); err != nil {
		return nil, err
	}

	if t.Node == nil {
		return nil, fmt.Errorf("empty document: %w", ErrMalformed)
	}

	return t.Node, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tree) UnmarshalJSON(buf []byte) error {
	n, err := DecodeJSON(buf)
	if err != nil {
		return err
	}

	t.Node = n
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Tree) MarshalJSON() ([]byte, error) {
	if t.Node == nil {
		return []byte("null"), nil
	}

	return json.Marshal(t.Node)
}

// UnmarshalYAML implements yaml.Unmarshaler. The list case goes first: a
// sequence decodes into a MapSlice without error, but a mapping never
// decodes into a slice. Mappings become a MapSlice so that department
// order survives.
func (t *Tree) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var items []interface{}
	if err := unmarshal(&items); err == nil {
		n, err := staffFromItems("", items)
		if err != nil {
			return err
		}

		t.Node = n
		return nil
	}

	var ms yaml.MapSlice
	if err := unmarshal(&ms); err != nil {
		return fmt.Errorf("node is neither a list nor a mapping: %w", ErrMalformed)
	}

	n, err := departmentsFromYAML("", ms)
	if err != nil {
		return err
	}

	t.Node = n
	return nil
}

// MarshalYAML implements yaml.Marshaler. yaml.v2 doesn't call the marshaler
// of a returned value, so the node's own MarshalYAML runs here.
func (t Tree) MarshalYAML() (interface{}, error) {
	if m, ok := t.Node.(yaml.Marshaler); ok {
		return m.MarshalYAML()
	}

	return t.Node, nil
}

// MarshalJSON writes Staff as an array, never null.
func (s Staff) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]Employee(s))
}

// MarshalJSON writes the departments as a JSON object in order. When a
// name repeats only the last node is written, at the first position.
func (ds Departments) MarshalJSON() ([]byte, error) {
	om := orderedmap.New()
	for _, d := range ds {
		var child Node = Staff{}
		if d.Node != nil {
			child = d.Node
		}

		om.Set(d.Name, child)
	}

	return json.Marshal(om)
}

// MarshalYAML writes the departments as an ordered YAML mapping.
func (ds Departments) MarshalYAML() (interface{}, error) {
	ms := make(yaml.MapSlice, 0, len(ds))
	for _, d := range ds {
		var child Node = Staff{}
		if d.Node != nil {
			child = d.Node
		}

		ms = append(ms, yaml.MapItem{Key: d.Name, Value: child})
	}

	return ms, nil
}

func departmentsFromJSON(path string, om *orderedmap.OrderedMap) (Node, error) {
	ds := Departments{}
	for _, k := range om.Keys() {
		v, _ := om.Get(k)

		child, err := nodeFromValue(join(path, k), v)
		if err != nil {
			return nil, err
		}

		ds = append(ds, Department{Name: k, Node: child})
	}

	return ds, nil
}

func departmentsFromYAML(path string, ms yaml.MapSlice) (Node, error) {
	ds := Departments{}
	for _, item := range ms {
		k := fmt.Sprint(item.Key)

		child, err := nodeFromValue(join(path, k), item.Value)
		if err != nil {
			return nil, err
		}

		ds = append(ds, Department{Name: k, Node: child})
	}

	return ds, nil
}

func nodeFromValue(path string, v interface{}) (Node, error) {
	switch v := v.(type) {
	case orderedmap.OrderedMap:
		return departmentsFromJSON(path, &v)
	case *orderedmap.OrderedMap:
		return departmentsFromJSON(path, v)
	case yaml.MapSlice:
		return departmentsFromYAML(path, v)
	case []interface{}:
		return staffFromItems(path, v)
	}

	return nil, fmt.Errorf("%v: node of type %T: %w", describe(path), v, ErrMalformed)
}

func staffFromItems(path string, items []interface{}) (Node, error) {
	staff := make(Staff, 0, len(items))
	for i, item := range items {
		e, err := employeeFromValue(fmt.Sprintf("%v[%v]", path, i), item)
		if err != nil {
			return nil, err
		}

		staff = append(staff, e)
	}

	return staff, nil
}

func employeeFromValue(path string, v interface{}) (Employee, error) {
	var get func(string) (interface{}, bool)

	switch v := v.(type) {
	case orderedmap.OrderedMap:
		get = v.Get
	case *orderedmap.OrderedMap:
		get = v.Get
	case map[string]interface{}:
		get = func(k string) (interface{}, bool) {
			val, ok := v[k]
			return val, ok
		}
	case yaml.MapSlice:
		get = func(k string) (interface{}, bool) {
			for _, item := range v {
				if fmt.Sprint(item.Key) == k {
					return item.Value, true
				}
			}
			return nil, false
		}
	case map[interface{}]interface{}:
		get = func(k string) (interface{}, bool) {
			val, ok := v[k]
			return val, ok
		}
	default:
		return Employee{}, fmt.Errorf("%v: employee of type %T: %w", path, v, ErrMalformed)
	}

	var e Employee

	if raw, ok := get("name"); ok && raw != nil {
		name, ok := raw.(string)
		if !ok {
			return e, fmt.Errorf("%v: name is %T: %w", path, raw, ErrMalformed)
		}
		e.Name = name
	}

	raw, ok := get("salary")
	if !ok {
		return e, fmt.Errorf("%v: missing salary: %w", path, ErrMalformed)
	}

	salary, ok := toFloat(raw)
	if !ok {
		return e, fmt.Errorf("%v: salary is %T: %w", path, raw, ErrMalformed)
	}
	e.Salary = salary

	return e, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}

	return 0, false
}

func join(path, name string) string {
	if path == "" {
		return name
	}

	return path + "/" + name
}

func describe(path string) string {
	if path == "" {
		return "root"
	}

	return path
}
