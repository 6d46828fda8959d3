package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/profile"
)

// NewDefaultRegistry constructs a registry pre-populated with one component
// per profile control.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: themed(appearance.PartialInput, inputRenderer),
	})
	registry.MustRegister(NamePassword, Descriptor{
		Renderer: themed(appearance.PartialPassword, passwordRenderer),
	})
	registry.MustRegister(NameTextarea, Descriptor{
		Renderer: themed(appearance.PartialTextarea, textareaRenderer),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: themed(appearance.PartialSelect, selectRenderer),
	})
	registry.MustRegister(NameMultiSelect, Descriptor{
		Renderer: themed(appearance.PartialMultiSelect, selectRenderer),
	})
	registry.MustRegister(NameRadioGroup, Descriptor{
		Renderer: themed(appearance.PartialRadioGroup, optionGroupRenderer("radio")),
	})
	registry.MustRegister(NameCheckboxGroup, Descriptor{
		Renderer: themed(appearance.PartialCheckboxGroup, optionGroupRenderer("checkbox")),
	})
	registry.MustRegister(NameHidden, Descriptor{
		Renderer: themed(appearance.PartialHidden, hiddenRenderer),
	})

	return registry
}

// themed renders the theme partial registered under partialKey when there is
// one, and the built-in markup otherwise.
func themed(partialKey string, builtin Renderer) Renderer {
	return func(buf *bytes.Buffer, field profile.FieldState, data ComponentData) error {
		templateName := ""
		if data.ThemePartials != nil {
			templateName = strings.TrimSpace(data.ThemePartials[partialKey])
		}
		if templateName == "" {
			return builtin(buf, field, data)
		}
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		rendered, err := data.Template.RenderTemplate(templateName, map[string]any{
			"field": View(field, data),
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// OptionView is one choice of a select style control.
type OptionView struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ValueView is one value of an attribute with its input id and errors.
type ValueView struct {
	ID        string   `json:"id"`
	Index     int      `json:"index"`
	Value     string   `json:"value"`
	Errors    []string `json:"errors,omitempty"`
	HasAdd    bool     `json:"hasAdd"`
	HasRemove bool     `json:"hasRemove"`
}

// FieldView is the template payload handed to theme partials.
type FieldView struct {
	Name         string            `json:"name"`
	ID           string            `json:"id"`
	Label        string            `json:"label"`
	Control      string            `json:"control"`
	InputType    string            `json:"inputType"`
	Required     bool              `json:"required"`
	ReadOnly     bool              `json:"readOnly"`
	Multivalued  bool              `json:"multivalued"`
	Autocomplete string            `json:"autocomplete,omitempty"`
	Revealed     bool              `json:"revealed"`
	Values       []ValueView       `json:"values"`
	Options      []OptionView      `json:"options,omitempty"`
	Errors       []string          `json:"errors,omitempty"`
	ErrorID      string            `json:"errorId"`
	Data         map[string]string `json:"data,omitempty"`
}

// View flattens field into the payload theme partials receive.
func View(field profile.FieldState, data ComponentData) FieldView {
	attr := field.Attribute
	messages := data.messages()
	id := ControlID(attr.Name, profile.NoFieldIndex)

	view := FieldView{
		Name:         attr.Name,
		ID:           id,
		Label:        profile.DisplayName(messages, attr),
		Control:      string(field.Control),
		InputType:    profile.HTMLInputType(attr),
		Required:     attr.Required,
		ReadOnly:     attr.ReadOnly,
		Multivalued:  attr.IsMultivalued(),
		Autocomplete: attr.Autocomplete,
		Revealed:     data.revealed(id),
		Errors:       field.ErrorsAt(profile.NoFieldIndex),
		ErrorID:      ErrorID(attr.Name, profile.NoFieldIndex),
		Data:         attr.HTML5DataAnnotations,
	}
	if view.Revealed && field.Control == profile.ControlPassword {
		view.InputType = "text"
	}

	if field.Value.IsMultiple() && isListInput(field.Control) {
		for i, value := range field.Value.Strings() {
			buttons := profile.ButtonsFor(attr, field.Value, i)
			view.Values = append(view.Values, ValueView{
				ID:        ControlID(attr.Name, i),
				Index:     i,
				Value:     value,
				Errors:    field.ErrorsAt(i),
				HasAdd:    buttons.HasAdd,
				HasRemove: buttons.HasRemove,
			})
		}
	} else {
		view.Values = []ValueView{{ID: id, Index: profile.NoFieldIndex, Value: field.Value.String()}}
	}

	for _, option := range attr.Options() {
		view.Options = append(view.Options, OptionView{
			ID:       OptionID(attr.Name, option),
			Value:    option,
			Label:    profile.OptionLabel(messages, attr, option),
			Selected: isSelected(field.Value, option),
		})
	}
	return view
}

// isListInput reports whether each value of a multivalued attribute gets its
// own input, as opposed to one control selecting several options.
func isListInput(control profile.Control) bool {
	switch control {
	case profile.ControlMultiSelect, profile.ControlCheckboxGroup, profile.ControlSelect, profile.ControlRadioGroup:
		return false
	}
	return true
}

func isSelected(value profile.Value, option string) bool {
	if value.IsMultiple() {
		return value.Contains(option)
	}
	return value.String() == option
}
