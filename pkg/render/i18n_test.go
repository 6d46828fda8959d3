package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kctheme/pkg/i18n"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
	"github.com/goliatone/go-kctheme/pkg/render"
)

type stubTranslator map[string]string

func (s stubTranslator) Translate(locale, key string, args ...any) (string, error) {
	if value, ok := s[locale+":"+key]; ok {
		return i18n.Format(value, args...), nil
	}
	return "", errors.New("missing")
}

func TestTemplateI18nFuncs(t *testing.T) {
	funcs := render.TemplateI18nFuncs(stubTranslator{"fr:hello": "Bonjour {0}"}, render.TemplateI18nConfig{
		OnMissing: func(locale, key string, _ []any, _ error) string { return "[" + locale + ":" + key + "]" },
	})

	translate := funcs["translate"].(func(any, string, ...any) string)
	if got := translate("fr", "hello", "Ada"); got != "Bonjour Ada" {
		t.Fatalf("translate = %q", got)
	}
	if got := translate(map[string]any{"locale": "fr"}, "bye"); got != "[fr:bye]" {
		t.Fatalf("missing handler not used, got %q", got)
	}
	if got := translate(struct{ Locale string }{Locale: "fr"}, "hello", "Bob"); got != "Bonjour Bob" {
		t.Fatalf("struct locale source, got %q", got)
	}

	current := funcs["current_locale"].(func(any) string)
	if got := current(map[string]string{"locale": "de"}); got != "de" {
		t.Fatalf("current_locale = %q", got)
	}
	page := &kccontext.Login{Common: kccontext.Common{
		PageID: kccontext.PageLogin,
		Locale: &kccontext.Locale{CurrentLanguageTag: "fr"},
	}}
	if got := translate(page, "hello", "Cy"); got != "Bonjour Cy" {
		t.Fatalf("kcContext locale source, got %q", got)
	}
}

func TestMessageFuncs(t *testing.T) {
	kc := &kccontext.Login{Common: kccontext.Common{
		PageID:      kccontext.PageLogin,
		Keycloakify: kccontext.Keycloakify{Messages: map[string]string{"greeting": "Hi <b>{0}</b><script>x</script>"}},
	}}
	funcs := render.MessageFuncs(render.Messages(kc, render.RenderOptions{}))

	msg := funcs["msg"].(func(string, ...string) string)
	if got := msg("greeting", "Ada"); got != "Hi <b>Ada</b>" {
		t.Fatalf("msg = %q", got)
	}
	msgStr := funcs["msgStr"].(func(string, ...string) string)
	if got := msgStr("doLogIn"); got != "Sign In" {
		t.Fatalf("msgStr = %q", got)
	}
}

func TestProfileForm_AppliesServerErrorsAndActions(t *testing.T) {
	kc := &kccontext.LoginUpdateProfile{
		Common: kccontext.Common{
			PageID:           kccontext.PageLoginUpdateProfile,
			MessagesPerField: kccontext.MessagesPerField{"email": {"Email already exists."}, "global": {"Try again"}},
		},
		Profile: kccontext.UserProfile{Attributes: []kccontext.Attribute{
			{Name: "email", Required: true},
			{Name: "firstName", Required: true},
		}},
	}

	opts := render.RenderOptions{
		Actions: []profile.FormAction{profile.FocusLost("firstName", profile.NoFieldIndex)},
	}
	form, global, err := render.ProfileForm(kc, render.Messages(kc, opts), opts)
	if err != nil {
		t.Fatalf("profile form: %v", err)
	}
	if diff := cmp.Diff([]string{"Try again"}, global); diff != "" {
		t.Fatalf("global messages mismatch (-want +got):\n%s", diff)
	}

	email, _ := form.State("email")
	if diff := cmp.Diff([]string{"Email already exists."}, email.ErrorsAt(profile.NoFieldIndex)); diff != "" {
		t.Fatalf("email errors mismatch (-want +got):\n%s", diff)
	}
	first, _ := form.State("firstName")
	if diff := cmp.Diff([]string{"Please specify this field."}, first.ErrorsAt(profile.NoFieldIndex)); diff != "" {
		t.Fatalf("firstName errors mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileForm_UnknownActionAttribute(t *testing.T) {
	kc := &kccontext.LoginUpdateProfile{Common: kccontext.Common{PageID: kccontext.PageLoginUpdateProfile}}
	opts := render.RenderOptions{Actions: []profile.FormAction{profile.Update("nope", profile.Single("x"))}}
	if _, _, err := render.ProfileForm(kc, nil, opts); !errors.Is(err, profile.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestProfileForm_NoProfilePage(t *testing.T) {
	kc := &kccontext.Login{Common: kccontext.Common{PageID: kccontext.PageLogin}}
	if _, _, err := render.ProfileForm(kc, nil, render.RenderOptions{}); !errors.Is(err, profile.ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}
