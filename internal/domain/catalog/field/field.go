package field

import (
	"strconv"
	"strings"
)

// Name identifies a canonical catalog field.
type Name string

// Canonical catalog fields.
const (
	Brand              Name = "Brand"
	Model              Name = "Model"
	Processor          Name = "Processor"
	RAM                Name = "RAM"
	Storage            Name = "Storage"
	GraphicsCard       Name = "GraphicsCard"
	ScreenInches       Name = "ScreenInches"
	Price              Name = "Price"
	ProcessorFrequency Name = "ProcessorFrequency"
)

// canonical is the fixed field order used for predicates, storage and export.
var canonical = []Name{
	Brand, Model, Processor, RAM, Storage, GraphicsCard, ScreenInches, Price, ProcessorFrequency,
}

// All returns every field name in canonical order.
func All() []Name {
	out := make([]Name, len(canonical))
	copy(out, canonical)
	return out
}

// Parse resolves a field name case-insensitively.
func Parse(s string) (Name, bool) {
	s = strings.TrimSpace(s)
	for _, n := range canonical {
		if strings.EqualFold(string(n), s) {
			return n, true
		}
	}
	return "", false
}

// Valid reports whether n is one of the canonical fields.
func (n Name) Valid() bool {
	for _, c := range canonical {
		if c == n {
			return true
		}
	}
	return false
}

// Kind returns the value type stored under this field.
func (n Name) Kind() Kind {
	if n == Price {
		return Integer
	}
	return Text
}

// Kind is the type of a present field value.
type Kind string

// Value kinds.
const (
	Text    Kind = "string"
	Integer Kind = "integer"
)

// Value is an optional typed field value. The zero Value is absent.
type Value struct {
	kind    Kind
	text    string
	number  int64
	present bool
}

// Absent returns a value that means "not detected".
func Absent() Value { return Value{} }

// String returns a present text value. The empty string is absent.
func String(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: Text, text: s, present: true}
}

// Int returns a present integer value.
func Int(n int64) Value {
	return Value{kind: Integer, number: n, present: true}
}

// IsPresent reports whether the value was detected.
func (v Value) IsPresent() bool { return v.present }

// Kind returns the value kind, empty when absent.
func (v Value) Kind() Kind { return v.kind }

// Text returns the text payload.
func (v Value) Text() (string, bool) {
	if !v.present || v.kind != Text {
		return "", false
	}
	return v.text, true
}

// Int returns the integer payload.
func (v Value) Int() (int64, bool) {
	if !v.present || v.kind != Integer {
		return 0, false
	}
	return v.number, true
}

// String renders the value for wire formats. Absent renders as "".
func (v Value) String() string {
	if !v.present {
		return ""
	}
	if v.kind == Integer {
		return strconv.FormatInt(v.number, 10)
	}
	return v.text
}

// Set is the fixed-shape canonical field set: every field is addressable,
// undetected fields are absent. The zero Set has every field absent.
// Assigning a Set shares its storage; use Clone for an independent copy.
type Set struct {
	values map[Name]Value
}

// NewSet returns a set with every field absent.
func NewSet() Set {
	return Set{values: make(map[Name]Value, len(canonical))}
}

// Get returns the value of a field (absent for unknown names).
func (s Set) Get(n Name) Value {
	return s.values[n]
}

// Put stores a value for a canonical field. Unknown names are rejected.
func (s *Set) Put(n Name, v Value) bool {
	if !n.Valid() {
		return false
	}
	if s.values == nil {
		s.values = make(map[Name]Value, len(canonical))
	}
	if !v.IsPresent() {
		delete(s.values, n)
		return true
	}
	s.values[n] = v
	return true
}

// Present returns the names of present fields in canonical order.
func (s Set) Present() []Name {
	var out []Name
	for _, n := range canonical {
		if s.values[n].IsPresent() {
			out = append(out, n)
		}
	}
	return out
}

// IsEmpty reports whether every field is absent.
func (s Set) IsEmpty() bool { return len(s.Present()) == 0 }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := NewSet()
	for n, v := range s.values {
		c.values[n] = v
	}
	return c
}

// Map returns the present fields keyed by name, values rendered as strings.
func (s Set) Map() map[string]string {
	m := make(map[string]string, len(s.values))
	for _, n := range canonical {
		if v := s.values[n]; v.IsPresent() {
			m[string(n)] = v.String()
		}
	}
	return m
}
