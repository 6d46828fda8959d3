package profile

import (
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

// Control is the widget chosen for an attribute.
type Control string

const (
	ControlHidden        Control = "hidden"
	ControlText          Control = "text"
	ControlPassword      Control = "password"
	ControlTextarea      Control = "textarea"
	ControlSelect        Control = "select"
	ControlMultiSelect   Control = "multiselect"
	ControlRadioGroup    Control = "radio-group"
	ControlCheckboxGroup Control = "checkbox-group"
)

// ControlFor maps an attribute's inputType annotation to a control.
func ControlFor(attr kccontext.Attribute) Control {
	switch attr.InputType() {
	case kccontext.InputTypeHidden:
		return ControlHidden
	case kccontext.InputTypeTextarea:
		return ControlTextarea
	case kccontext.InputTypeSelect:
		return ControlSelect
	case kccontext.InputTypeMultiselect:
		return ControlMultiSelect
	case kccontext.InputTypeSelectRadiobuttons:
		return ControlRadioGroup
	case kccontext.InputTypeMultiselectCheckboxes:
		return ControlCheckboxGroup
	case kccontext.InputTypePassword:
		return ControlPassword
	}
	if isPasswordAttribute(attr.Name) && !attr.Multivalued {
		return ControlPassword
	}
	return ControlText
}

// HTMLInputType returns the type attribute of the <input> rendered for attr.
// "html5-" prefixed input types map to the matching HTML type.
func HTMLInputType(attr kccontext.Attribute) string {
	inputType := attr.InputType()
	if strings.HasPrefix(inputType, kccontext.HTML5Prefix) {
		return strings.TrimPrefix(inputType, kccontext.HTML5Prefix)
	}
	if ControlFor(attr) == ControlPassword {
		return "password"
	}
	switch inputType {
	case kccontext.InputTypeHidden:
		return "hidden"
	}
	return "text"
}

func isPasswordAttribute(name string) bool {
	return name == AttributePassword || name == AttributePasswordConfirm
}

// Buttons tells which multivalued affordances to show next to one value.
type Buttons struct {
	HasRemove bool
	HasAdd    bool
}

// ButtonsFor computes the add/remove buttons for the value at fieldIndex.
func ButtonsFor(attr kccontext.Attribute, value Value, fieldIndex int) Buttons {
	count := value.Len()
	lower, upper := attr.MultivaluedBounds()

	var buttons Buttons
	switch {
	case count == 1:
		buttons.HasRemove = false
	case lower == 0:
		buttons.HasRemove = true
	default:
		buttons.HasRemove = count != lower
	}

	switch {
	case fieldIndex+1 != count:
		buttons.HasAdd = false
	case upper == 0:
		buttons.HasAdd = true
	default:
		buttons.HasAdd = count != upper
	}
	return buttons
}

// DisplayName resolves the label of attr.
func DisplayName(messages Messages, attr kccontext.Attribute) string {
	if messages == nil {
		messages = fallbackMessages{}
	}
	if strings.TrimSpace(attr.DisplayName) == "" {
		return attr.Name
	}
	return messages.AdvancedMsgStr(attr.DisplayName)
}

// OptionLabel resolves the label shown for option. Explicit
// inputOptionLabels win, then the i18n prefix, then the raw option.
func OptionLabel(messages Messages, attr kccontext.Attribute, option string) string {
	if messages == nil {
		messages = fallbackMessages{}
	}
	if label, ok := attr.Annotations.InputOptionLabels[option]; ok && label != "" {
		return messages.AdvancedMsgStr(label)
	}
	if prefix := strings.TrimSpace(attr.Annotations.InputOptionLabelsI18nPrefix); prefix != "" {
		key := prefix + "." + option
		if resolved := messages.AdvancedMsgStr("${" + key + "}"); resolved != key && resolved != "${"+key+"}" {
			return resolved
		}
	}
	return option
}

// GroupHeader resolves the heading of a group.
func GroupHeader(messages Messages, group kccontext.Group) string {
	if messages == nil {
		messages = fallbackMessages{}
	}
	if strings.TrimSpace(group.DisplayHeader) != "" {
		return messages.AdvancedMsgStr(group.DisplayHeader)
	}
	return group.Name
}

// GroupDescription resolves the description of a group, empty when unset.
func GroupDescription(messages Messages, group kccontext.Group) string {
	if messages == nil {
		messages = fallbackMessages{}
	}
	if strings.TrimSpace(group.DisplayDescription) == "" {
		return ""
	}
	return messages.AdvancedMsgStr(group.DisplayDescription)
}
