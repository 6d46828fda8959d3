package render

import (
	"fmt"
	"sort"
	"strings"
)

// POST field names Keycloak's form handlers read.
const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldRememberMe      = "rememberMe"
	FieldCredentialID    = "credentialId"
	FieldLogin           = "login"
	FieldPasswordNew     = "password-new"
	FieldPasswordConfirm = "password-confirm"
	FieldLogoutSessions  = "logout-sessions"
	FieldCancelAIA       = "cancel-aia"
	FieldTermsAccepted   = "termsAccepted"
	FieldCode            = "code"
	FieldAccept          = "accept"
	FieldCancel          = "cancel"
	FieldSubmitAction    = "submitAction"
	FieldTryAnotherWay   = "tryAnotherWay"
)

// HiddenField is a hidden input emitted alongside the visible controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CredentialID carries the credential the user picked on the login page.
func CredentialID(id string) HiddenField {
	return Hidden(FieldCredentialID, id)
}

// TryAnotherWay is the single field of the "try another way" form.
func TryAnotherWay() HiddenField {
	return Hidden(FieldTryAnotherWay, "on")
}

// OAuthCode carries the consent screen code.
func OAuthCode(code string) HiddenField {
	return Hidden(FieldCode, code)
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields sorts hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
