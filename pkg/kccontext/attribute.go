package kccontext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDuplicateAttribute is returned when a profile declares the same attribute
// name twice.
var ErrDuplicateAttribute = errors.New("kccontext: duplicate attribute")

// Input types understood by the profile renderer. Any value prefixed with
// "html5-" maps to the matching HTML input type.
const (
	InputTypeText                  = "text"
	InputTypeHidden                = "hidden"
	InputTypeTextarea              = "textarea"
	InputTypeSelect                = "select"
	InputTypeMultiselect           = "multiselect"
	InputTypeSelectRadiobuttons    = "select-radiobuttons"
	InputTypeMultiselectCheckboxes = "multiselect-checkboxes"
	InputTypePassword              = "password"
	HTML5Prefix                    = "html5-"
)

// UserProfile is the attribute schema supplied by the server.
type UserProfile struct {
	Attributes           []Attribute       `json:"attributes"`
	HTML5DataAnnotations map[string]string `json:"html5DataAnnotations,omitempty"`
}

// Validate checks that attribute names are present and unique.
func (p UserProfile) Validate() error {
	seen := make(map[string]struct{}, len(p.Attributes))
	for i, attr := range p.Attributes {
		name := strings.TrimSpace(attr.Name)
		if name == "" {
			return fmt.Errorf("kccontext: attribute %d has no name", i)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateAttribute, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Attribute returns the named attribute.
func (p UserProfile) Attribute(name string) (Attribute, bool) {
	for _, attr := range p.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Group is an attribute group declared in the realm's user profile.
type Group struct {
	Name                 string            `json:"name"`
	DisplayHeader        string            `json:"displayHeader,omitempty"`
	DisplayDescription   string            `json:"displayDescription,omitempty"`
	HTML5DataAnnotations map[string]string `json:"html5DataAnnotations,omitempty"`
}

// Attribute is one field of the user profile.
type Attribute struct {
	Name                 string            `json:"name"`
	DisplayName          string            `json:"displayName,omitempty"`
	Group                *Group            `json:"group,omitempty"`
	Required             bool              `json:"required,omitempty"`
	ReadOnly             bool              `json:"readOnly,omitempty"`
	Multivalued          bool              `json:"multivalued,omitempty"`
	Validators           Validators        `json:"validators,omitempty"`
	Annotations          Annotations       `json:"annotations"`
	Value                *string           `json:"value,omitempty"`
	Values               []string          `json:"values,omitempty"`
	Autocomplete         string            `json:"autocomplete,omitempty"`
	HTML5DataAnnotations map[string]string `json:"html5DataAnnotations,omitempty"`
}

// Annotations drive the control the renderer picks for an attribute.
type Annotations struct {
	InputType                   string            `json:"inputType,omitempty"`
	InputHelperTextBefore       string            `json:"inputHelperTextBefore,omitempty"`
	InputHelperTextAfter        string            `json:"inputHelperTextAfter,omitempty"`
	InputOptionLabels           map[string]string `json:"inputOptionLabels,omitempty"`
	InputOptionLabelsI18nPrefix string            `json:"inputOptionLabelsI18nPrefix,omitempty"`
	InputOptionsFromValidation  string            `json:"inputOptionsFromValidation,omitempty"`
	InputTypePattern            string            `json:"inputTypePattern,omitempty"`
	InputTypeSize               Scalar            `json:"inputTypeSize,omitempty"`
	InputTypeMaxlength          Scalar            `json:"inputTypeMaxlength,omitempty"`
	InputTypeMinlength          Scalar            `json:"inputTypeMinlength,omitempty"`
	InputTypeMax                Scalar            `json:"inputTypeMax,omitempty"`
	InputTypeMin                Scalar            `json:"inputTypeMin,omitempty"`
	InputTypeStep               Scalar            `json:"inputTypeStep,omitempty"`
	InputTypeCols               Scalar            `json:"inputTypeCols,omitempty"`
	InputTypeRows               Scalar            `json:"inputTypeRows,omitempty"`
}

// InputType returns the declared input type, "text" when none is set.
func (a Attribute) InputType() string {
	if t := strings.TrimSpace(a.Annotations.InputType); t != "" {
		return t
	}
	return InputTypeText
}

// IsMultivalued reports whether the attribute carries a list of values,
// either because it is declared multivalued or because its control selects
// several options.
func (a Attribute) IsMultivalued() bool {
	if a.Multivalued {
		return true
	}
	switch a.InputType() {
	case InputTypeMultiselect, InputTypeMultiselectCheckboxes:
		return true
	}
	return false
}

// CurrentValue returns the single value, empty when unset.
func (a Attribute) CurrentValue() string {
	if a.Value != nil {
		return *a.Value
	}
	if len(a.Values) > 0 {
		return a.Values[0]
	}
	return ""
}

// Options resolves the choice list for select style controls. The validator
// named by inputOptionsFromValidation wins over the "options" validator.
func (a Attribute) Options() []string {
	if name := strings.TrimSpace(a.Annotations.InputOptionsFromValidation); name != "" {
		if validator, ok := a.Validators[name]; ok {
			if options, ok := validator.Strings("options"); ok {
				return options
			}
		}
	}
	if validator, ok := a.Validators["options"]; ok {
		if options, ok := validator.Strings("options"); ok {
			return options
		}
	}
	return nil
}

// MultivaluedBounds returns the min/max value counts from the "multivalued"
// validator. A zero bound means unset.
func (a Attribute) MultivaluedBounds() (lower, upper int) {
	validator, ok := a.Validators["multivalued"]
	if !ok {
		return 0, 0
	}
	lower, _ = validator.Int("min")
	upper, _ = validator.Int("max")
	return lower, upper
}

// Validators maps a validator name (length, pattern, options, ...) to its
// configuration.
type Validators map[string]Validator

// Validator is the raw option map of one validator.
type Validator map[string]any

// Text returns the option as text.
func (v Validator) Text(key string) (string, bool) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return "", false
	}
	switch value := raw.(type) {
	case string:
		return value, true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case int:
		return strconv.Itoa(value), true
	case bool:
		return strconv.FormatBool(value), true
	default:
		return fmt.Sprint(value), true
	}
}

// Int parses the option as an integer. Keycloak sends bounds as strings.
func (v Validator) Int(key string) (int, bool) {
	raw, ok := v.Text(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

// Float parses the option as a number.
func (v Validator) Float(key string) (float64, bool) {
	raw, ok := v.Text(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool reports a boolean option such as "ignore.empty.value".
func (v Validator) Bool(key string) bool {
	raw, ok := v.Text(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

// Strings returns a list option such as "options".
func (v Validator) Strings(key string) ([]string, bool) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil, false
	}
	switch value := raw.(type) {
	case []string:
		return append([]string(nil), value...), true
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	}
	return nil, false
}
