package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
	"github.com/goliatone/go-kctheme/pkg/render"
)

// errNotSubmittable is returned when the remaining failures sit on fields
// the user cannot edit (hidden or read-only).
var errNotSubmittable = errors.New("tui: profile form is not submittable")

// fillProfile walks the profile form attribute by attribute, dispatching the
// answers and re-prompting while client validation fails.
func (s *session) fillProfile() (*profile.Form, error) {
	form, formErrors, err := render.ProfileForm(s.kc, s.messages, s.opts)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	for _, message := range formErrors {
		if err := s.fail(plainText(message)); err != nil {
			return nil, err
		}
	}

	for _, state := range form.States() {
		if err := s.promptState(form, state); err != nil {
			return nil, err
		}
	}

	// Cross-field checks, such as the password confirmation, can fail after
	// the field they sit on was answered.
	for !form.IsSubmittable() {
		prompted := false
		for _, state := range form.States() {
			if !editable(state) || !state.HasErrors() {
				continue
			}
			prompted = true
			state.GroupStart = nil
			if err := s.promptState(form, state); err != nil {
				return nil, err
			}
		}
		if !prompted {
			return nil, errNotSubmittable
		}
	}
	return form, nil
}

func editable(state profile.FieldState) bool {
	return !state.Hidden && !state.Attribute.ReadOnly
}

func (s *session) promptState(form *profile.Form, state profile.FieldState) error {
	attr := state.Attribute
	if state.GroupStart != nil {
		header := profile.GroupHeader(s.messages, *state.GroupStart)
		if description := profile.GroupDescription(s.messages, *state.GroupStart); description != "" {
			header += "\n" + description
		}
		if err := s.info(header); err != nil {
			return err
		}
	}
	if state.Hidden {
		return nil
	}
	if attr.ReadOnly {
		return s.info(fmt.Sprintf("%s: %s", profile.DisplayName(s.messages, attr), strings.Join(state.Value.NonEmpty(), ", ")))
	}

	// Server errors are shown once, the update below clears them.
	for _, fieldErr := range state.DisplayableErrors {
		if err := s.fail(plainText(fieldErr.Message)); err != nil {
			return err
		}
	}

	for {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		value, err := s.ask(state)
		if err != nil {
			return err
		}
		if err := form.Dispatch(profile.Update(attr.Name, value)); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		if err := touch(form, attr, value); err != nil {
			return err
		}

		next, _ := form.State(attr.Name)
		if !next.HasErrors() {
			return nil
		}
		for _, fieldErr := range next.DisplayableErrors {
			message := plainText(fieldErr.Message)
			if attr.IsMultivalued() && fieldErr.FieldIndex != profile.NoFieldIndex {
				message = fmt.Sprintf("#%d %s", fieldErr.FieldIndex+1, message)
			}
			if err := s.fail(message); err != nil {
				return err
			}
		}
		state = next
	}
}

// touch marks every value of attr as having lost focus.
func touch(form *profile.Form, attr kccontext.Attribute, value profile.Value) error {
	indices := []int{profile.NoFieldIndex}
	if attr.IsMultivalued() && value.IsMultiple() {
		for i := 0; i < value.Len(); i++ {
			indices = append(indices, i)
		}
	}
	for _, index := range indices {
		if err := form.Dispatch(profile.FocusLost(attr.Name, index)); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
	}
	return nil
}

func (s *session) ask(state profile.FieldState) (profile.Value, error) {
	attr := state.Attribute
	label := profile.DisplayName(s.messages, attr)
	if attr.Required {
		label += " *"
	}
	help := s.helpText(attr)

	switch state.Control {
	case profile.ControlSelect, profile.ControlRadioGroup:
		return s.askOne(attr, state.Value, label, help)
	case profile.ControlMultiSelect, profile.ControlCheckboxGroup:
		return s.askMany(attr, state.Value, label, help)
	}

	if attr.IsMultivalued() {
		return s.askValues(attr, state, label, help)
	}

	cfg := InputConfig{Message: label, Default: state.Value.String(), Help: help}
	switch state.Control {
	case profile.ControlPassword:
		cfg.Default = ""
		answer, err := s.r.driver.Password(s.ctx, cfg)
		return profile.Single(answer), err
	case profile.ControlTextarea:
		answer, err := s.r.driver.TextArea(s.ctx, TextAreaConfig{Message: label, Default: cfg.Default, Help: help})
		return profile.Single(answer), err
	default:
		answer, err := s.r.driver.Input(s.ctx, cfg)
		return profile.Single(answer), err
	}
}

// askValues collects the values of a multivalued text attribute, offering
// another value while the multivalued bounds allow one.
func (s *session) askValues(attr kccontext.Attribute, state profile.FieldState, label, help string) (profile.Value, error) {
	existing := state.Value.Strings()
	var values []string
	for {
		i := len(values)
		fallback := ""
		if i < len(existing) {
			fallback = existing[i]
		}
		answer, err := s.r.driver.Input(s.ctx, InputConfig{
			Message: fmt.Sprintf("%s (#%d)", label, i+1),
			Default: fallback,
			Help:    help,
		})
		if err != nil {
			return profile.Value{}, err
		}
		values = append(values, answer)

		current := profile.Multiple(values...)
		if !profile.ButtonsFor(attr, current, i).HasAdd {
			break
		}
		lower, _ := attr.MultivaluedBounds()
		if len(values) < lower {
			continue
		}
		more, err := s.r.driver.Confirm(s.ctx, ConfirmConfig{
			Message: s.messages.MsgStr("addValue"),
			Default: i+1 < len(existing),
		})
		if err != nil {
			return profile.Value{}, err
		}
		if !more {
			break
		}
	}
	return profile.Multiple(values...), nil
}

func (s *session) askOne(attr kccontext.Attribute, current profile.Value, label, help string) (profile.Value, error) {
	options := attr.Options()
	labels := make([]string, 0, len(options)+1)
	values := make([]string, 0, len(options)+1)
	if !attr.Required {
		labels = append(labels, s.messages.MsgStr("selectAnOption"))
		values = append(values, "")
	}
	for _, option := range options {
		labels = append(labels, profile.OptionLabel(s.messages, attr, option))
		values = append(values, option)
	}
	if len(values) == 0 {
		return profile.Single(""), nil
	}

	idx, err := s.r.driver.Select(s.ctx, SelectConfig{
		Message:      label,
		Options:      labels,
		DefaultIndex: indexOf(values, current.String()),
		Help:         help,
	})
	if err != nil {
		return profile.Value{}, err
	}
	if idx < 0 || idx >= len(values) {
		return profile.Single(""), nil
	}
	return profile.Single(values[idx]), nil
}

func (s *session) askMany(attr kccontext.Attribute, current profile.Value, label, help string) (profile.Value, error) {
	options := attr.Options()
	labels := make([]string, len(options))
	var defaults []int
	for i, option := range options {
		labels[i] = profile.OptionLabel(s.messages, attr, option)
		if current.Contains(option) {
			defaults = append(defaults, i)
		}
	}

	indices, err := s.r.driver.MultiSelect(s.ctx, SelectConfig{
		Message:  label,
		Options:  labels,
		Defaults: defaults,
		Help:     help,
	})
	if err != nil {
		return profile.Value{}, err
	}
	selected := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			selected = append(selected, options[idx])
		}
	}
	return profile.Multiple(selected...), nil
}

func (s *session) helpText(attr kccontext.Attribute) string {
	var parts []string
	for _, key := range []string{attr.Annotations.InputHelperTextBefore, attr.Annotations.InputHelperTextAfter} {
		if strings.TrimSpace(key) == "" {
			continue
		}
		parts = append(parts, plainText(s.messages.AdvancedMsgStr(key)))
	}
	return strings.Join(parts, "\n")
}
