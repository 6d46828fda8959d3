package profile

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

var (
	// ErrUnknownAttribute is returned when an action names an attribute the
	// form does not know.
	ErrUnknownAttribute = errors.New("profile: unknown attribute")
	// ErrUnknownAction is returned for an unsupported action kind.
	ErrUnknownAction = errors.New("profile: unknown action")
)

// Attribute names with dedicated behaviour.
const (
	AttributeUsername        = "username"
	AttributeEmail           = "email"
	AttributePassword        = "password"
	AttributePasswordConfirm = "password-confirm"
)

// Form holds the state of a dynamic profile form: current values, touched
// fields and server errors. It is not safe for concurrent use.
type Form struct {
	cfg          config
	attrs        []kccontext.Attribute
	index        map[string]int
	values       []Value
	touched      []map[int]bool
	serverErrors []FormFieldError
	submittable  bool
}

// FieldState is the render-ready view of one attribute.
type FieldState struct {
	Attribute         kccontext.Attribute
	Value             Value
	DisplayableErrors []FormFieldError
	Control           Control
	// Hidden fields are rendered but not shown.
	Hidden bool
	// GroupStart is set on the first attribute of a new group.
	GroupStart *kccontext.Group
}

// ErrorsAt returns the displayable messages for fieldIndex. NoFieldIndex
// selects the errors that target the attribute as a whole.
func (s FieldState) ErrorsAt(fieldIndex int) []string {
	return ErrorsFor(s.DisplayableErrors, s.Attribute.Name, fieldIndex)
}

// HasErrors reports whether any error is displayable.
func (s FieldState) HasErrors() bool { return len(s.DisplayableErrors) > 0 }

// New builds a form over attrs. Attribute names must be unique.
func New(attrs []kccontext.Attribute, opts ...Option) (*Form, error) {
	if err := (kccontext.UserProfile{Attributes: attrs}).Validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f := &Form{
		cfg:     cfg,
		attrs:   append([]kccontext.Attribute(nil), attrs...),
		index:   make(map[string]int, len(attrs)),
		values:  make([]Value, len(attrs)),
		touched: make([]map[int]bool, len(attrs)),
	}
	for i, attr := range f.attrs {
		f.index[attr.Name] = i
		f.values[i] = initialValue(attr)
		f.touched[i] = make(map[int]bool)
	}
	if !cfg.doMakeUserConfirmPassword {
		f.mirrorPassword()
	}
	f.serverErrors = f.normaliseErrors(cfg.serverErrors)

	f.submittable = f.computeSubmittable()
	if cfg.onSubmittable != nil {
		cfg.onSubmittable(f.submittable)
	}
	return f, nil
}

// Dispatch applies action to the form.
func (f *Form) Dispatch(action FormAction) error {
	i, ok := f.index[action.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, action.Name)
	}

	switch action.Kind {
	case ActionUpdate:
		f.values[i] = coerce(f.attrs[i], action.Value)
		f.clearServerErrors(action.Name)
		if action.Name == AttributePassword && !f.cfg.doMakeUserConfirmPassword {
			f.mirrorPassword()
		}
		if f.cfg.onValue != nil {
			f.cfg.onValue(action.Name, f.values[i])
		}
	case ActionFocusLost:
		index := action.FieldIndex
		if !f.attrs[i].IsMultivalued() || index < 0 {
			index = NoFieldIndex
		}
		f.touched[i][index] = true
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action.Kind)
	}

	f.refreshSubmittable()
	return nil
}

// SetErrors replaces the server errors.
func (f *Form) SetErrors(errs ...FormFieldError) {
	f.serverErrors = f.normaliseErrors(errs)
	f.refreshSubmittable()
}

// IsSubmittable reports whether no client-side validation fails.
func (f *Form) IsSubmittable() bool { return f.submittable }

// Attributes returns the attributes in render order.
func (f *Form) Attributes() []kccontext.Attribute {
	return append([]kccontext.Attribute(nil), f.attrs...)
}

// Value returns the current value of name.
func (f *Form) Value(name string) (Value, bool) {
	i, ok := f.index[name]
	if !ok {
		return Value{}, false
	}
	return f.values[i], true
}

// DoMakeUserConfirmPassword reports the confirmation mode.
func (f *Form) DoMakeUserConfirmPassword() bool { return f.cfg.doMakeUserConfirmPassword }

// Messages returns the configured message resolver.
func (f *Form) Messages() Messages { return f.cfg.messages }

// Errors returns every client and server error, displayable or not.
func (f *Form) Errors() []FormFieldError {
	var out []FormFieldError
	for i := range f.attrs {
		out = append(out, f.clientErrors(i)...)
	}
	return append(out, f.serverErrors...)
}

// States returns the render view of every attribute in order, marking group
// transitions.
func (f *Form) States() []FieldState {
	states := make([]FieldState, 0, len(f.attrs))
	currentGroup := ""
	for i, attr := range f.attrs {
		state := FieldState{
			Attribute:         attr,
			Value:             f.values[i],
			DisplayableErrors: f.displayableErrors(i),
			Control:           ControlFor(attr),
			Hidden:            f.isHidden(attr),
		}
		groupName := ""
		if attr.Group != nil {
			groupName = attr.Group.Name
		}
		if groupName != currentGroup {
			currentGroup = groupName
			if attr.Group != nil && groupName != "" {
				group := *attr.Group
				state.GroupStart = &group
			}
		}
		states = append(states, state)
	}
	return states
}

// State returns the render view of one attribute.
func (f *Form) State(name string) (FieldState, bool) {
	for _, state := range f.States() {
		if state.Attribute.Name == name {
			return state, true
		}
	}
	return FieldState{}, false
}

// Values returns what a browser would post for the form. Read-only
// attributes are rendered disabled and therefore omitted, except hidden
// inputs, which carry no disabled flag and are always posted.
func (f *Form) Values() url.Values {
	out := url.Values{}
	for i, attr := range f.attrs {
		control := ControlFor(attr)
		if attr.ReadOnly && control != ControlHidden {
			continue
		}
		value := f.values[i]
		switch control {
		case ControlMultiSelect, ControlCheckboxGroup:
			for _, selected := range value.NonEmpty() {
				out.Add(attr.Name, selected)
			}
		default:
			for _, v := range value.Strings() {
				out.Add(attr.Name, v)
			}
		}
	}
	return out
}

func (f *Form) isHidden(attr kccontext.Attribute) bool {
	if ControlFor(attr) == ControlHidden {
		return true
	}
	return attr.Name == AttributePasswordConfirm && !f.cfg.doMakeUserConfirmPassword
}

func (f *Form) refreshSubmittable() {
	next := f.computeSubmittable()
	if next == f.submittable {
		return
	}
	f.submittable = next
	if f.cfg.onSubmittable != nil {
		f.cfg.onSubmittable(next)
	}
}

func (f *Form) computeSubmittable() bool {
	for i := range f.attrs {
		if len(f.clientErrors(i)) > 0 {
			return false
		}
	}
	return true
}

func (f *Form) displayableErrors(i int) []FormFieldError {
	touched := f.touched[i]
	var out []FormFieldError
	for _, fieldErr := range f.clientErrors(i) {
		switch {
		case touched[NoFieldIndex]:
		case fieldErr.FieldIndex == NoFieldIndex && len(touched) > 0:
		case touched[fieldErr.FieldIndex]:
		default:
			continue
		}
		out = append(out, fieldErr)
	}
	name := f.attrs[i].Name
	for _, fieldErr := range f.serverErrors {
		if fieldErr.AttributeName == name {
			out = append(out, fieldErr)
		}
	}
	return out
}

func (f *Form) clearServerErrors(name string) {
	kept := f.serverErrors[:0]
	for _, fieldErr := range f.serverErrors {
		if fieldErr.AttributeName != name {
			kept = append(kept, fieldErr)
		}
	}
	f.serverErrors = kept
}

func (f *Form) mirrorPassword() {
	src, ok := f.index[AttributePassword]
	if !ok {
		return
	}
	if dst, ok := f.index[AttributePasswordConfirm]; ok {
		f.values[dst] = f.values[src]
	}
}

func (f *Form) normaliseErrors(errs []FormFieldError) []FormFieldError {
	out := make([]FormFieldError, 0, len(errs))
	for _, fieldErr := range errs {
		if fieldErr.Source == "" {
			fieldErr.Source = SourceServer
		}
		if i, ok := f.index[fieldErr.AttributeName]; ok && !f.attrs[i].IsMultivalued() {
			fieldErr.FieldIndex = NoFieldIndex
		}
		out = append(out, fieldErr)
	}
	return out
}

func initialValue(attr kccontext.Attribute) Value {
	if !attr.IsMultivalued() {
		return Single(attr.CurrentValue())
	}

	values := append([]string(nil), attr.Values...)
	if len(values) == 0 && attr.Value != nil && *attr.Value != "" {
		values = []string{*attr.Value}
	}

	switch ControlFor(attr) {
	case ControlMultiSelect, ControlCheckboxGroup:
		return Multiple(values...)
	}

	lower, _ := attr.MultivaluedBounds()
	if lower < 1 {
		lower = 1
	}
	for len(values) < lower {
		values = append(values, "")
	}
	return Multiple(values...)
}

func coerce(attr kccontext.Attribute, value Value) Value {
	if !attr.IsMultivalued() {
		if value.IsMultiple() {
			return Single(value.At(0))
		}
		return value
	}
	if value.IsMultiple() {
		return value
	}
	switch ControlFor(attr) {
	case ControlMultiSelect, ControlCheckboxGroup:
		return Multiple(value.NonEmpty()...)
	}
	return Multiple(value.String())
}
