package components

import (
	"bytes"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
)

// ControlID is the id of the input holding value fieldIndex of name. The
// first value keeps the bare name so labels point at it.
func ControlID(name string, fieldIndex int) string {
	if fieldIndex <= 0 {
		return name
	}
	return name + "-" + strconv.Itoa(fieldIndex)
}

// ErrorID is the id of the error span of name, or of one of its values.
func ErrorID(name string, fieldIndex int) string {
	if fieldIndex == profile.NoFieldIndex {
		return "input-error-" + name
	}
	return "input-error-" + name + "-" + strconv.Itoa(fieldIndex)
}

// OptionID is the id of the radio or checkbox input of option.
func OptionID(name, option string) string {
	return name + "-" + option
}

// JoinErrors sanitizes messages and joins them with line breaks.
func JoinErrors(messages []string) string {
	cleaned := make([]string, 0, len(messages))
	for _, message := range messages {
		if message = sanitize.KcSanitize(message); message != "" {
			cleaned = append(cleaned, message)
		}
	}
	return strings.Join(cleaned, "<br>")
}

// WriteErrors writes the error span for messages, nothing when empty.
func WriteErrors(buf *bytes.Buffer, id string, messages []string) {
	if len(messages) == 0 {
		return
	}
	buf.WriteString(`<span id="`)
	buf.WriteString(html.EscapeString(id))
	buf.WriteString(`" class="kc-input-error" aria-live="polite">`)
	buf.WriteString(JoinErrors(messages))
	buf.WriteString("</span>\n")
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteString(`="`)
	buf.WriteString(html.EscapeString(value))
	buf.WriteByte('"')
}

func writeFlag(buf *bytes.Buffer, name string, on bool) {
	if !on {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(name)
}

func writeScalar(buf *bytes.Buffer, name string, value kccontext.Scalar) {
	if value.IsSet() {
		writeAttr(buf, name, value.String())
	}
}

// WriteDataAttributes writes annotations as data-* attributes in key order.
func WriteDataAttributes(buf *bytes.Buffer, annotations map[string]string) {
	if len(annotations) == 0 {
		return
	}
	keys := make([]string, 0, len(annotations))
	for key := range annotations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		name := strings.TrimPrefix(strings.TrimSpace(key), "data-")
		if name == "" {
			continue
		}
		writeAttr(buf, "data-"+name, annotations[key])
	}
}

// writeCommon writes the attributes shared by every control of attr.
func writeCommon(buf *bytes.Buffer, attr kccontext.Attribute, invalid bool) {
	writeAttr(buf, "name", attr.Name)
	if invalid {
		writeAttr(buf, "aria-invalid", "true")
	}
	if attr.Required {
		writeAttr(buf, "aria-required", "true")
	}
	writeFlag(buf, "disabled", attr.ReadOnly)
	WriteDataAttributes(buf, attr.HTML5DataAnnotations)
}

func inputRenderer(buf *bytes.Buffer, field profile.FieldState, data ComponentData) error {
	attr := field.Attribute
	inputType := profile.HTMLInputType(attr)

	if !field.Value.IsMultiple() {
		invalid := len(field.DisplayableErrors) > 0
		writeInput(buf, attr, ControlID(attr.Name, profile.NoFieldIndex), inputType, field.Value.String(), invalid, profile.NoFieldIndex)
		return nil
	}

	messages := data.messages()
	for i, value := range field.Value.Strings() {
		errs := field.ErrorsAt(i)
		buf.WriteString(`<div class="kc-input-row">` + "\n")
		writeInput(buf, attr, ControlID(attr.Name, i), inputType, value, len(errs) > 0, i)
		writeButtons(buf, attr, field.Value, i, messages)
		buf.WriteString("</div>\n")
		WriteErrors(buf, ErrorID(attr.Name, i), errs)
	}
	return nil
}

func writeInput(buf *bytes.Buffer, attr kccontext.Attribute, id, inputType, value string, invalid bool, fieldIndex int) {
	buf.WriteString(`<input`)
	writeAttr(buf, "type", inputType)
	writeAttr(buf, "id", id)
	writeAttr(buf, "value", value)
	writeAttr(buf, "class", "kc-input")
	if attr.Autocomplete != "" {
		writeAttr(buf, "autocomplete", attr.Autocomplete)
	}
	if attr.Annotations.InputTypePattern != "" {
		writeAttr(buf, "pattern", attr.Annotations.InputTypePattern)
	}
	writeScalar(buf, "size", attr.Annotations.InputTypeSize)
	writeScalar(buf, "maxlength", attr.Annotations.InputTypeMaxlength)
	writeScalar(buf, "minlength", attr.Annotations.InputTypeMinlength)
	writeScalar(buf, "max", attr.Annotations.InputTypeMax)
	writeScalar(buf, "min", attr.Annotations.InputTypeMin)
	writeScalar(buf, "step", attr.Annotations.InputTypeStep)
	if fieldIndex != profile.NoFieldIndex {
		writeAttr(buf, "data-index", strconv.Itoa(fieldIndex))
	}
	writeCommon(buf, attr, invalid)
	buf.WriteString(">\n")
}

func writeButtons(buf *bytes.Buffer, attr kccontext.Attribute, value profile.Value, fieldIndex int, messages profile.Messages) {
	if attr.ReadOnly {
		return
	}
	buttons := profile.ButtonsFor(attr, value, fieldIndex)
	position := strconv.Itoa(fieldIndex + 1)
	if buttons.HasRemove {
		buf.WriteString(`<button type="button"`)
		writeAttr(buf, "id", "kc-remove-"+attr.Name+"-"+position)
		writeAttr(buf, "class", "kc-link")
		writeAttr(buf, "data-action", "remove")
		writeAttr(buf, "data-attribute", attr.Name)
		writeAttr(buf, "data-index", strconv.Itoa(fieldIndex))
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(messages.MsgStr("remove")))
		buf.WriteString("</button>\n")
	}
	if buttons.HasAdd {
		buf.WriteString(`<button type="button"`)
		writeAttr(buf, "id", "kc-add-"+attr.Name+"-"+position)
		writeAttr(buf, "class", "kc-link")
		writeAttr(buf, "data-action", "add")
		writeAttr(buf, "data-attribute", attr.Name)
		writeAttr(buf, "data-index", strconv.Itoa(fieldIndex))
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(messages.MsgStr("addValue")))
		buf.WriteString("</button>\n")
	}
}

func passwordRenderer(buf *bytes.Buffer, field profile.FieldState, data ComponentData) error {
	attr := field.Attribute
	id := ControlID(attr.Name, profile.NoFieldIndex)
	WritePasswordInput(buf, PasswordInput{
		ID:           id,
		Name:         attr.Name,
		Value:        field.Value.String(),
		Autocomplete: attr.Autocomplete,
		Invalid:      len(field.DisplayableErrors) > 0,
		Required:     attr.Required,
		ReadOnly:     attr.ReadOnly,
		Revealed:     data.revealed(id),
		Data:         attr.HTML5DataAnnotations,
	}, data.messages())
	return nil
}

// PasswordInput describes a password input with its reveal toggle.
type PasswordInput struct {
	ID           string
	Name         string
	Value        string
	Autocomplete string
	Invalid      bool
	Required     bool
	ReadOnly     bool
	Autofocus    bool
	Revealed     bool
	Data         map[string]string
}

// WritePasswordInput writes a password input followed by a button that
// switches it between hidden and clear text.
func WritePasswordInput(buf *bytes.Buffer, input PasswordInput, messages profile.Messages) {
	if messages == nil {
		messages = nopMessages{}
	}
	inputType, labelKey, icon := "password", "showPassword", "kc-icon-eye"
	if input.Revealed {
		inputType, labelKey, icon = "text", "hidePassword", "kc-icon-eye-slash"
	}

	buf.WriteString(`<div class="kc-input-group">` + "\n")
	buf.WriteString(`<input`)
	writeAttr(buf, "type", inputType)
	writeAttr(buf, "id", input.ID)
	writeAttr(buf, "name", input.Name)
	writeAttr(buf, "value", input.Value)
	writeAttr(buf, "class", "kc-input")
	if input.Autocomplete != "" {
		writeAttr(buf, "autocomplete", input.Autocomplete)
	}
	if input.Invalid {
		writeAttr(buf, "aria-invalid", "true")
	}
	if input.Required {
		writeAttr(buf, "aria-required", "true")
	}
	writeFlag(buf, "disabled", input.ReadOnly)
	writeFlag(buf, "autofocus", input.Autofocus)
	WriteDataAttributes(buf, input.Data)
	buf.WriteString(">\n")

	buf.WriteString(`<button type="button" class="kc-password-toggle"`)
	writeAttr(buf, "aria-label", messages.MsgStr(labelKey))
	writeAttr(buf, "aria-controls", input.ID)
	writeAttr(buf, "data-password-toggle", input.ID)
	writeAttr(buf, "data-label-show", messages.MsgStr("showPassword"))
	writeAttr(buf, "data-label-hide", messages.MsgStr("hidePassword"))
	buf.WriteString(`><span class="kc-icon `)
	buf.WriteString(icon)
	buf.WriteString(`" aria-hidden="true"></span></button>` + "\n")
	buf.WriteString("</div>\n")
}

func textareaRenderer(buf *bytes.Buffer, field profile.FieldState, _ ComponentData) error {
	attr := field.Attribute
	buf.WriteString(`<textarea`)
	writeAttr(buf, "id", ControlID(attr.Name, profile.NoFieldIndex))
	writeAttr(buf, "class", "kc-textarea")
	writeScalar(buf, "cols", attr.Annotations.InputTypeCols)
	writeScalar(buf, "rows", attr.Annotations.InputTypeRows)
	writeScalar(buf, "maxlength", attr.Annotations.InputTypeMaxlength)
	writeCommon(buf, attr, len(field.DisplayableErrors) > 0)
	buf.WriteString(">")
	buf.WriteString(html.EscapeString(field.Value.String()))
	buf.WriteString("</textarea>\n")
	return nil
}

func selectRenderer(buf *bytes.Buffer, field profile.FieldState, data ComponentData) error {
	attr := field.Attribute
	multiple := field.Control == profile.ControlMultiSelect
	messages := data.messages()

	buf.WriteString(`<select`)
	writeAttr(buf, "id", ControlID(attr.Name, profile.NoFieldIndex))
	writeAttr(buf, "class", "kc-select")
	writeFlag(buf, "multiple", multiple)
	writeScalar(buf, "size", attr.Annotations.InputTypeSize)
	writeCommon(buf, attr, len(field.DisplayableErrors) > 0)
	buf.WriteString(">\n")

	if !multiple {
		buf.WriteString(`<option value=""></option>` + "\n")
	}
	for _, option := range attr.Options() {
		buf.WriteString(`<option`)
		writeAttr(buf, "value", option)
		writeFlag(buf, "selected", isSelected(field.Value, option))
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(profile.OptionLabel(messages, attr, option)))
		buf.WriteString("</option>\n")
	}
	buf.WriteString("</select>\n")
	return nil
}

func optionGroupRenderer(inputType string) Renderer {
	role := "group"
	if inputType == "radio" {
		role = "radiogroup"
	}
	return func(buf *bytes.Buffer, field profile.FieldState, data ComponentData) error {
		attr := field.Attribute
		messages := data.messages()
		invalid := len(field.DisplayableErrors) > 0

		buf.WriteString(`<div class="kc-input-options"`)
		writeAttr(buf, "role", role)
		writeAttr(buf, "aria-labelledby", "label-"+attr.Name)
		buf.WriteString(">\n")
		for _, option := range attr.Options() {
			id := OptionID(attr.Name, option)
			buf.WriteString(`<div class="kc-option">` + "\n")
			buf.WriteString(`<input`)
			writeAttr(buf, "type", inputType)
			writeAttr(buf, "id", id)
			writeAttr(buf, "value", option)
			writeAttr(buf, "class", "kc-option-input")
			writeFlag(buf, "checked", isSelected(field.Value, option))
			writeCommon(buf, attr, invalid)
			buf.WriteString(">\n")
			buf.WriteString(`<label`)
			writeAttr(buf, "for", id)
			writeAttr(buf, "class", "kc-option-label")
			buf.WriteString(">")
			buf.WriteString(html.EscapeString(profile.OptionLabel(messages, attr, option)))
			buf.WriteString("</label>\n</div>\n")
		}
		buf.WriteString("</div>\n")
		return nil
	}
}

func hiddenRenderer(buf *bytes.Buffer, field profile.FieldState, _ ComponentData) error {
	attr := field.Attribute
	for i, value := range field.Value.Strings() {
		buf.WriteString(`<input type="hidden"`)
		if i == 0 {
			writeAttr(buf, "id", ControlID(attr.Name, profile.NoFieldIndex))
		}
		writeAttr(buf, "name", attr.Name)
		writeAttr(buf, "value", value)
		buf.WriteString(">\n")
	}
	return nil
}
