package kccontext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Scalar holds an annotation that Keycloak may send as a number or a string
// (inputTypeSize, inputTypeMaxlength, ...). It keeps the textual form.
type Scalar string

// UnmarshalJSON accepts numbers, strings and null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*s = Scalar(strings.TrimSpace(text))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("kccontext: scalar %s: %w", trimmed, err)
	}
	*s = Scalar(number.String())
	return nil
}

// String returns the raw text.
func (s Scalar) String() string { return string(s) }

// IsSet reports whether a value was supplied.
func (s Scalar) IsSet() bool { return strings.TrimSpace(string(s)) != "" }

// Int parses the value as an integer.
func (s Scalar) Int() (int, bool) {
	if !s.IsSet() {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Flag is a boolean Keycloak may encode as true, "true" or "on".
type Flag bool

// UnmarshalJSON accepts booleans and the string forms used by FreeMarker.
func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = false
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "on", "true", "yes", "1":
			*f = true
		default:
			*f = false
		}
		return nil
	default:
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("kccontext: flag %s: %w", trimmed, err)
		}
		*f = Flag(b)
		return nil
	}
}
