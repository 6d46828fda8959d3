package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
)

type componentRenderer struct {
	registry  *components.Registry
	overrides map[string]string
	classes   chromeClasses
	data      components.ComponentData

	usedComponents map[string]struct{}
}

func newComponentRenderer(registry *components.Registry, overrides map[string]string, classes chromeClasses, data components.ComponentData) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		registry:       registry,
		overrides:      cloneStringMap(overrides),
		classes:        classes,
		data:           data,
		usedComponents: make(map[string]struct{}),
	}
}

// renderForm writes every attribute of form, with a group header on each
// group transition.
func (r *componentRenderer) renderForm(form *profile.Form) (string, error) {
	var builder strings.Builder
	for _, state := range form.States() {
		if state.GroupStart != nil {
			builder.WriteString(r.groupHeader(*state.GroupStart))
		}
		markup, err := r.render(state)
		if err != nil {
			return "", err
		}
		builder.WriteString(markup)
	}
	return builder.String(), nil
}

func (r *componentRenderer) render(state profile.FieldState) (string, error) {
	descriptor, err := r.registry.Resolve(state, r.overrides)
	if err != nil {
		return "", err
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, state, r.data); err != nil {
		return "", fmt.Errorf("render component %q for attribute %q: %w", descriptor.Name, state.Attribute.Name, err)
	}
	r.usedComponents[descriptor.Name] = struct{}{}

	return r.buildFieldMarkup(state, descriptor.Name, control.String()), nil
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

func (r *componentRenderer) groupHeader(group kccontext.Group) string {
	messages := r.data.Messages
	var builder strings.Builder
	builder.WriteString(`<div class="`)
	builder.WriteString(html.EscapeString(r.classes.class(ClassGroupHeader)))
	builder.WriteString(`" data-group="`)
	builder.WriteString(html.EscapeString(group.Name))
	builder.WriteString(`"`)
	var data bytes.Buffer
	components.WriteDataAttributes(&data, group.HTML5DataAnnotations)
	builder.Write(data.Bytes())
	builder.WriteString(">\n")

	builder.WriteString(`    <label id="header-`)
	builder.WriteString(html.EscapeString(group.Name))
	builder.WriteString(`" class="`)
	builder.WriteString(html.EscapeString(r.classes.class(ClassGroupLabel)))
	builder.WriteString(`">`)
	builder.WriteString(sanitize.KcSanitize(profile.GroupHeader(messages, group)))
	builder.WriteString("</label>\n")

	if description := profile.GroupDescription(messages, group); description != "" {
		builder.WriteString(`    <label id="description-`)
		builder.WriteString(html.EscapeString(group.Name))
		builder.WriteString(`" class="`)
		builder.WriteString(html.EscapeString(r.classes.class(ClassGroupDesc)))
		builder.WriteString(`">`)
		builder.WriteString(sanitize.KcSanitize(description))
		builder.WriteString("</label>\n")
	}
	builder.WriteString("</div>\n")
	return builder.String()
}

func (r *componentRenderer) buildFieldMarkup(state profile.FieldState, componentName, control string) string {
	attr := state.Attribute
	messages := r.data.Messages

	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="`)
	builder.WriteString(html.EscapeString(r.classes.class(ClassFormGroup)))
	builder.WriteString(`" data-attribute="`)
	builder.WriteString(html.EscapeString(attr.Name))
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`"`)
	if attr.IsMultivalued() {
		lower, upper := attr.MultivaluedBounds()
		builder.WriteString(fmt.Sprintf(` data-multivalued="true" data-min="%d" data-max="%d"`, lower, upper))
		if messages != nil {
			builder.WriteString(` data-label-add="`)
			builder.WriteString(html.EscapeString(messages.MsgStr("addValue")))
			builder.WriteString(`" data-label-remove="`)
			builder.WriteString(html.EscapeString(messages.MsgStr("remove")))
			builder.WriteString(`"`)
		}
	}
	if state.Hidden {
		builder.WriteString(` style="display:none"`)
		// The browser copies the password into the unasked confirmation.
		if attr.Name == profile.AttributePasswordConfirm {
			builder.WriteString(` data-kc-mirror="`)
			builder.WriteString(components.ControlID(profile.AttributePassword, profile.NoFieldIndex))
			builder.WriteString(`"`)
		}
	}
	builder.WriteString(">\n")

	if state.Control != profile.ControlHidden {
		builder.WriteString(`    <label id="label-`)
		builder.WriteString(html.EscapeString(attr.Name))
		builder.WriteString(`"`)
		if labelSupportsFor(state.Control) {
			builder.WriteString(` for="`)
			builder.WriteString(html.EscapeString(components.ControlID(attr.Name, profile.NoFieldIndex)))
			builder.WriteString(`"`)
		}
		builder.WriteString(` class="`)
		builder.WriteString(html.EscapeString(r.classes.class(ClassLabel)))
		builder.WriteString(`">`)
		builder.WriteString(sanitize.KcSanitize(profile.DisplayName(messages, attr)))
		if attr.Required {
			builder.WriteString(` <span class="`)
			builder.WriteString(html.EscapeString(r.classes.class(ClassRequired)))
			builder.WriteString(`" aria-hidden="true">*</span>`)
		}
		builder.WriteString("</label>\n")
	}

	r.writeHelperText(&builder, "before", attr.Name, attr.Annotations.InputHelperTextBefore)

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if errs := state.ErrorsAt(profile.NoFieldIndex); len(errs) > 0 {
		builder.WriteString(`    <span id="`)
		builder.WriteString(html.EscapeString(components.ErrorID(attr.Name, profile.NoFieldIndex)))
		builder.WriteString(`" class="`)
		builder.WriteString(html.EscapeString(r.classes.class(ClassInputError)))
		builder.WriteString(`" aria-live="polite">`)
		builder.WriteString(components.JoinErrors(errs))
		builder.WriteString("</span>\n")
	}

	r.writeHelperText(&builder, "after", attr.Name, attr.Annotations.InputHelperTextAfter)

	builder.WriteString("</div>\n")
	return builder.String()
}

func (r *componentRenderer) writeHelperText(builder *strings.Builder, position, name, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	resolved := text
	if r.data.Messages != nil {
		resolved = r.data.Messages.AdvancedMsgStr(text)
	}
	builder.WriteString(`    <div id="form-help-text-`)
	builder.WriteString(position)
	builder.WriteString("-")
	builder.WriteString(html.EscapeString(name))
	builder.WriteString(`" class="`)
	builder.WriteString(html.EscapeString(r.classes.class(ClassHelperText)))
	builder.WriteString(`" aria-live="polite">`)
	builder.WriteString(sanitize.KcSanitize(resolved))
	builder.WriteString("</div>\n")
}

func labelSupportsFor(control profile.Control) bool {
	switch control {
	case profile.ControlRadioGroup, profile.ControlCheckboxGroup:
		return false
	default:
		return true
	}
}
