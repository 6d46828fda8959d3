package kccontext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// GlobalField is the key Keycloak uses for messages not tied to a field.
const GlobalField = "global"

// MessagesPerField holds server validation messages keyed by field name.
// Keys may address a value of a multivalued attribute (for example
// "attributes.email[1]"); see render.MapFieldErrors.
type MessagesPerField map[string][]string

// UnmarshalJSON accepts both a single message and a list per field.
func (m *MessagesPerField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("kccontext: messagesPerField: %w", err)
	}
	out := make(MessagesPerField, len(raw))
	for field, value := range raw {
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			if strings.TrimSpace(single) != "" {
				out[field] = []string{single}
			}
			continue
		}
		var list []string
		if err := json.Unmarshal(value, &list); err != nil {
			return fmt.Errorf("kccontext: messagesPerField[%s]: %w", field, err)
		}
		if len(list) > 0 {
			out[field] = list
		}
	}
	*m = out
	return nil
}

// Exists reports whether field has at least one message.
func (m MessagesPerField) Exists(field string) bool {
	return len(m[field]) > 0
}

// ExistsError reports whether any of fields has a message.
func (m MessagesPerField) ExistsError(fields ...string) bool {
	for _, field := range fields {
		if m.Exists(field) {
			return true
		}
	}
	return false
}

// Get returns every message of field joined with <br>.
func (m MessagesPerField) Get(field string) string {
	return strings.Join(m[field], "<br>")
}

// GetFirstError returns the messages of the first field in fields that has
// any.
func (m MessagesPerField) GetFirstError(fields ...string) string {
	for _, field := range fields {
		if m.Exists(field) {
			return m.Get(field)
		}
	}
	return ""
}

// PrintIfExists returns text when field has a message.
func (m MessagesPerField) PrintIfExists(field, text string) string {
	if m.Exists(field) {
		return text
	}
	return ""
}
