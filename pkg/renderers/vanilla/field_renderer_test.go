package vanilla

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla/components"
)

type stubMessages map[string]string

func (m stubMessages) MsgStr(key string, _ ...string) string {
	if value, ok := m[key]; ok {
		return value
	}
	return key
}

func (m stubMessages) AdvancedMsgStr(key string) string {
	if strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
		return m.MsgStr(key[2 : len(key)-1])
	}
	return key
}

func renderFields(t *testing.T, attrs []kccontext.Attribute, overrides map[string]string, classes chromeClasses, opts ...profile.Option) (string, *componentRenderer) {
	t.Helper()
	form, err := profile.New(attrs, opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	renderer := newComponentRenderer(nil, overrides, classes, components.ComponentData{
		Messages: stubMessages{"firstName": "First name", "contact": "Contact details"},
	})
	out, err := renderer.renderForm(form)
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	return out, renderer
}

func TestComponentRenderer_GroupHeadersAndLabels(t *testing.T) {
	contact := &kccontext.Group{Name: "contact", DisplayHeader: "${contact}", DisplayDescription: "How we reach you"}
	out, _ := renderFields(t, []kccontext.Attribute{
		{Name: "firstName", DisplayName: "${firstName}", Required: true},
		{Name: "email", Group: contact},
		{Name: "phone", Group: contact},
	}, nil, nil)

	for _, fragment := range []string{
		`<label id="label-firstName" for="firstName" class="kc-label">First name <span class="kc-required" aria-hidden="true">*</span></label>`,
		`data-group="contact"`,
		`<label id="header-contact" class="kc-form-group-label">Contact details</label>`,
		`<label id="description-contact" class="kc-form-group-description">How we reach you</label>`,
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in:\n%s", fragment, out)
		}
	}
	if strings.Count(out, `data-group="contact"`) != 1 {
		t.Fatalf("group header must be emitted once per transition:\n%s", out)
	}
}

func TestComponentRenderer_HelperTextAndErrors(t *testing.T) {
	out, _ := renderFields(t, []kccontext.Attribute{{
		Name: "nickname",
		Annotations: kccontext.Annotations{
			InputHelperTextBefore: "Shown publicly",
			InputHelperTextAfter:  "<b>Optional</b><script>x()</script>",
		},
	}}, nil, nil, profile.WithServerErrors(profile.ServerError("nickname", "Taken")))

	before := strings.Index(out, `id="form-help-text-before-nickname"`)
	input := strings.Index(out, `id="nickname"`)
	errAt := strings.Index(out, `id="input-error-nickname"`)
	after := strings.Index(out, `id="form-help-text-after-nickname"`)
	if !(before >= 0 && before < input && input < errAt && errAt < after) {
		t.Fatalf("unexpected ordering before=%d input=%d error=%d after=%d:\n%s", before, input, errAt, after, out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("helper text must be sanitized:\n%s", out)
	}
}

func TestComponentRenderer_OverridesAndClasses(t *testing.T) {
	out, renderer := renderFields(t, []kccontext.Attribute{
		{Name: "bio"},
	}, map[string]string{"bio": components.NameTextarea}, chromeClasses{ClassFormGroup: "field"})

	if !strings.Contains(out, `<div class="field" data-attribute="bio" data-component="textarea">`) {
		t.Fatalf("expected override and custom class:\n%s", out)
	}
	if !strings.Contains(out, `<textarea`) {
		t.Fatalf("expected textarea control:\n%s", out)
	}
	if _, ok := renderer.usedComponents[components.NameTextarea]; !ok {
		t.Fatalf("used components not tracked")
	}
}

func TestComponentRenderer_UnknownComponent(t *testing.T) {
	form, err := profile.New([]kccontext.Attribute{{Name: "bio"}})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	renderer := newComponentRenderer(nil, map[string]string{"bio": "rich-text"}, nil, components.ComponentData{})
	if _, err := renderer.renderForm(form); !errors.Is(err, components.ErrNotRegistered) {
		t.Fatalf("expected unknown component error, got %v", err)
	}
}

func TestComponentRenderer_RadioGroupLabelHasNoFor(t *testing.T) {
	out, _ := renderFields(t, []kccontext.Attribute{{
		Name:        "gender",
		Annotations: kccontext.Annotations{InputType: kccontext.InputTypeSelectRadiobuttons},
		Validators:  kccontext.Validators{"options": {"options": []any{"f", "m"}}},
	}}, nil, nil)
	if !strings.Contains(out, `<label id="label-gender" class="kc-label">`) {
		t.Fatalf("radio group label must not point at a single input:\n%s", out)
	}
}

func TestComponentRenderer_MultivaluedWrapper(t *testing.T) {
	out, _ := renderFields(t, []kccontext.Attribute{{
		Name:        "phones",
		Multivalued: true,
		Validators:  kccontext.Validators{"multivalued": {"min": "1", "max": "3"}},
	}}, nil, nil)
	if !strings.Contains(out, `data-multivalued="true" data-min="1" data-max="3" data-label-add="addValue" data-label-remove="remove"`) {
		t.Fatalf("expected multivalued wrapper attributes:\n%s", out)
	}
}

func TestPageTemplate(t *testing.T) {
	cases := []struct {
		page kccontext.PageID
		want string
	}{
		{page: kccontext.PageLogin, want: "pages/login"},
		{page: kccontext.PageLoginUsername, want: "pages/login-username"},
		{page: kccontext.PageRegister, want: "pages/register"},
		{page: kccontext.PageInfo, want: "pages/info"},
		{page: "login-config-totp.ftl", want: "pages/default"},
	}
	for _, tc := range cases {
		if got := pageTemplate(tc.page); got != tc.want {
			t.Fatalf("pageTemplate(%s) = %s, want %s", tc.page, got, tc.want)
		}
	}
}

func TestSortedCSSVars(t *testing.T) {
	got := sortedCSSVars(map[string]string{"b": "2", "--a": "1", " ": "x"})
	want := []cssVar{{Name: "--a", Value: "1"}, {Name: "--b", Value: "2"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("sortedCSSVars = %+v, want %+v", got, want)
	}
}
