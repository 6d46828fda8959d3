package profile

import "strings"

// NoFieldIndex marks an action or error that targets the attribute as a whole
// rather than one value of a multivalued attribute.
const NoFieldIndex = -1

// Value is the current value of an attribute: one string, or an ordered list
// for multivalued attributes.
type Value struct {
	values []string
	multi  bool
}

// Single wraps a single value.
func Single(value string) Value {
	return Value{values: []string{value}}
}

// Multiple wraps an ordered list of values.
func Multiple(values ...string) Value {
	out := make([]string, len(values))
	copy(out, values)
	return Value{values: out, multi: true}
}

// IsMultiple reports whether the value is a list.
func (v Value) IsMultiple() bool { return v.multi }

// String returns the single value. Lists are joined with commas.
func (v Value) String() string {
	if v.multi {
		return strings.Join(v.values, ",")
	}
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

// Strings returns a copy of the values.
func (v Value) Strings() []string {
	if len(v.values) == 0 {
		if v.multi {
			return []string{}
		}
		return []string{""}
	}
	out := make([]string, len(v.values))
	copy(out, v.values)
	return out
}

// Len is the number of values (1 for a single value).
func (v Value) Len() int {
	if !v.multi {
		return 1
	}
	return len(v.values)
}

// At returns the value at index i, empty when out of range.
func (v Value) At(i int) string {
	if i < 0 || i >= len(v.values) {
		return ""
	}
	return v.values[i]
}

// Contains reports whether option is one of the values.
func (v Value) Contains(option string) bool {
	for _, value := range v.values {
		if value == option {
			return true
		}
	}
	return false
}

// IsEmpty reports whether every value is blank.
func (v Value) IsEmpty() bool {
	for _, value := range v.values {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// NonEmpty returns the values that are not blank.
func (v Value) NonEmpty() []string {
	var out []string
	for _, value := range v.values {
		if strings.TrimSpace(value) != "" {
			out = append(out, value)
		}
	}
	return out
}

// Equal compares two values including their shape.
func (v Value) Equal(other Value) bool {
	if v.multi != other.multi {
		return false
	}
	if v.multi {
		if len(v.values) != len(other.values) {
			return false
		}
		for i := range v.values {
			if v.values[i] != other.values[i] {
				return false
			}
		}
		return true
	}
	return v.String() == other.String()
}

// WithIndex returns a copy of a list value with index i replaced.
func (v Value) WithIndex(i int, value string) Value {
	out := v.Strings()
	if i < 0 || i >= len(out) {
		return Multiple(out...)
	}
	out[i] = value
	return Multiple(out...)
}

// Without returns a copy of a list value with index i removed.
func (v Value) Without(i int) Value {
	out := v.Strings()
	if i < 0 || i >= len(out) {
		return Multiple(out...)
	}
	return Multiple(append(out[:i], out[i+1:]...)...)
}

// Appended returns a copy of a list value with value added at the end.
func (v Value) Appended(value string) Value {
	return Multiple(append(v.Strings(), value)...)
}

// Toggled returns a copy of a list value with option added or removed.
func (v Value) Toggled(option string, checked bool) Value {
	out := make([]string, 0, len(v.values)+1)
	for _, value := range v.values {
		if value == option {
			continue
		}
		out = append(out, value)
	}
	if checked {
		out = append(out, option)
	}
	return Multiple(out...)
}
