package tui

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/render"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	textAreas    []string
	confirm      []bool
	selectIdx    []int
	multiIdx     [][]int
	infoMessages []string
	inputPos     int
	passPos      int
	textPos      int
	confirmPos   int
	selectPos    int
	multiPos     int
}

// answer replays scripted answers, running the validator the way survey
// does: a rejected answer is reported and the next one is read.
func (s *stubDriver) answer(kind string, script []string, pos *int, validator func(string) error) (string, error) {
	for {
		if *pos >= len(script) {
			return "", errors.New("no " + kind + " scripted")
		}
		val := script[*pos]
		*pos++
		if validator != nil {
			if err := validator(val); err != nil {
				s.infoMessages = append(s.infoMessages, err.Error())
				continue
			}
		}
		return val, nil
	}
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	return s.answer("input", s.inputs, &s.inputPos, cfg.Validator)
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	return s.answer("password", s.passwords, &s.passPos, cfg.Validator)
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	return s.answer("textarea", s.textAreas, &s.textPos, nil)
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func newRenderer(t *testing.T, driver PromptDriver, options ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, options...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func common(page kccontext.PageID) kccontext.Common {
	return kccontext.Common{
		PageID: page,
		URL: kccontext.URL{
			LoginAction:        "https://kc.example.com/realms/demo/login-actions/authenticate",
			RegistrationAction: "https://kc.example.com/realms/demo/login-actions/registration",
			OAuthAction:        "https://kc.example.com/realms/demo/login-actions/consent",
		},
		Realm: kccontext.Realm{Name: "demo", Password: true},
	}
}

func TestFill_Login(t *testing.T) {
	base := common(kccontext.PageLogin)
	base.Realm.RememberMe = true
	base.Auth = &kccontext.Auth{SelectedCredential: "cred-1"}

	driver := &stubDriver{
		inputs:    []string{"  ", "alice"},
		passwords: []string{"s3cret"},
		confirm:   []bool{true},
	}
	sub, err := newRenderer(t, driver).Fill(context.Background(), &kccontext.Login{Common: base}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := url.Values{
		"username":     {"alice"},
		"password":     {"s3cret"},
		"rememberMe":   {"on"},
		"credentialId": {"cred-1"},
		"login":        {"Sign In"},
	}
	if diff := cmp.Diff(want, sub.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if sub.Action != base.URL.LoginAction {
		t.Fatalf("unexpected action %q", sub.Action)
	}
	if !driver.sawInfo("Please specify this field.") {
		t.Fatalf("blank username should be rejected, infos: %v", driver.infoMessages)
	}
}

func TestRender_LoginBannerAndPrettyOutput(t *testing.T) {
	base := common(kccontext.PageLogin)
	base.Message = &kccontext.Message{Type: kccontext.MessageError, Summary: "Invalid username &amp; password."}

	driver := &stubDriver{
		inputs:    []string{"alice"},
		passwords: []string{"s3cret"},
	}
	r := newRenderer(t, driver,
		WithOutputFormat(OutputFormatPrettyText),
		WithTheme(Theme{ErrorPrefix: "! "}),
	)
	out, err := r.Render(context.Background(), &kccontext.Login{Common: base}, render.RenderOptions{
		HiddenFields: map[string]string{"tab_id": "abc"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(driver.infoMessages) == 0 || driver.infoMessages[0] != "! Invalid username & password." {
		t.Fatalf("expected error banner first, got %v", driver.infoMessages)
	}
	text := string(out)
	for _, fragment := range []string{
		"POST " + base.URL.LoginAction,
		"  username: alice",
		"  password: ********",
		"  tab_id: abc",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in:\n%s", fragment, text)
		}
	}
	if strings.Contains(text, "s3cret") {
		t.Fatalf("pretty output must mask passwords:\n%s", text)
	}
	if r.ContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_RegisterRepromptsUntilValid(t *testing.T) {
	page := &kccontext.Register{
		Common:                  common(kccontext.PageRegister),
		PasswordRequired:        true,
		TermsAcceptanceRequired: true,
		Profile: kccontext.UserProfile{Attributes: []kccontext.Attribute{
			{Name: "username", DisplayName: "${username}", Required: true},
			{Name: "email", DisplayName: "${email}", Required: true},
			{Name: "firstName", DisplayName: "${firstName}"},
		}},
	}

	driver := &stubDriver{
		inputs:    []string{"bob", "not-an-email", "bob@example.com", "Bob"},
		passwords: []string{"pw", "nope", "pw"},
		confirm:   []bool{false, true},
	}
	out, err := newRenderer(t, driver).Render(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got submissionJSON
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	want := submissionJSON{
		Method: "POST",
		Action: page.URL.RegistrationAction,
		Fields: map[string]any{
			"username":         "bob",
			"password":         "pw",
			"password-confirm": "pw",
			"email":            "bob@example.com",
			"firstName":        "Bob",
			"termsAccepted":    "on",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}

	for _, expected := range []string{
		"Invalid email address.",
		"Password confirmation doesn't match.",
		"You must agree to our terms and conditions.",
	} {
		if !driver.sawInfo(expected) {
			t.Fatalf("expected info %q, got %v", expected, driver.infoMessages)
		}
	}
}

func TestFill_RegisterWithoutConfirmation(t *testing.T) {
	page := &kccontext.Register{
		Common:           common(kccontext.PageRegister),
		PasswordRequired: true,
		Profile: kccontext.UserProfile{Attributes: []kccontext.Attribute{
			{Name: "email", Required: true},
		}},
	}
	page.Realm.RegistrationEmailAsUsername = true

	driver := &stubDriver{
		inputs:    []string{"jo@example.com"},
		passwords: []string{"pw"},
	}
	sub, err := newRenderer(t, driver).Fill(context.Background(), page, render.RenderOptions{
		DoMakeUserConfirmPassword: render.Bool(false),
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := sub.Fields.Get("password-confirm"); got != "pw" {
		t.Fatalf("confirmation should mirror the password, got %q", got)
	}
	if driver.passPos != 1 {
		t.Fatalf("expected a single password prompt, got %d", driver.passPos)
	}
}

func TestFill_UpdateProfileControls(t *testing.T) {
	page := &kccontext.LoginUpdateProfile{
		Common: common(kccontext.PageLoginUpdateProfile),
		Profile: kccontext.UserProfile{Attributes: []kccontext.Attribute{
			{
				Name:        "phone",
				Multivalued: true,
				Validators:  kccontext.Validators{"multivalued": {"max": "2"}},
			},
			{
				Name:        "country",
				Required:    true,
				Annotations: kccontext.Annotations{InputType: kccontext.InputTypeSelect},
				Validators:  kccontext.Validators{"options": {"options": []any{"fr", "de"}}},
			},
			{
				Name:        "topics",
				Annotations: kccontext.Annotations{InputType: kccontext.InputTypeMultiselectCheckboxes},
				Validators:  kccontext.Validators{"options": {"options": []any{"go", "web", "ops"}}},
			},
			{
				Name:     "tenant",
				ReadOnly: true,
				Value:    strPtr("acme"),
			},
		}},
	}

	driver := &stubDriver{
		inputs:    []string{"111", "222"},
		confirm:   []bool{true},
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 1}},
	}
	sub, err := newRenderer(t, driver).Fill(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := url.Values{
		"phone":   {"111", "222"},
		"country": {"de"},
		"topics":  {"go", "web"},
	}
	if diff := cmp.Diff(want, sub.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if driver.confirmPos != 1 {
		t.Fatalf("add value should stop at the multivalued max, asked %d times", driver.confirmPos)
	}
	if !driver.sawInfo("tenant: acme") {
		t.Fatalf("read-only attribute should be shown, got %v", driver.infoMessages)
	}
}

func TestFill_UpdatePassword(t *testing.T) {
	driver := &stubDriver{
		passwords: []string{"n3w", "n3w"},
		confirm:   []bool{true},
	}
	page := &kccontext.LoginUpdatePassword{Common: common(kccontext.PageLoginUpdatePassword)}
	sub, err := newRenderer(t, driver).Fill(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := url.Values{
		"password-new":     {"n3w"},
		"password-confirm": {"n3w"},
		"logout-sessions":  {"on"},
	}
	if diff := cmp.Diff(want, sub.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_UpdatePasswordCancelAIA(t *testing.T) {
	page := &kccontext.LoginUpdatePassword{Common: common(kccontext.PageLoginUpdatePassword)}
	page.IsAppInitiatedAction = true

	driver := &stubDriver{confirm: []bool{false}}
	sub, err := newRenderer(t, driver).Fill(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(url.Values{"cancel-aia": {"true"}}, sub.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_OAuthGrantFormEncoded(t *testing.T) {
	page := &kccontext.LoginOAuthGrant{
		Common: common(kccontext.PageLoginOAuthGrant),
		OAuth: kccontext.OAuth{
			Code:                  "grant-code",
			ClientScopesRequested: []kccontext.ClientScope{{ConsentScreenText: "Email address"}},
		},
	}
	page.Client.ClientID = "account"

	driver := &stubDriver{confirm: []bool{false}}
	r := newRenderer(t, driver, WithOutputFormat(OutputFormatFormURLEncoded))
	out, err := r.Render(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), "cancel=No&code=grant-code"; got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
	if !driver.sawInfo("  - Email address") {
		t.Fatalf("scopes should be listed, got %v", driver.infoMessages)
	}
}

func TestFill_IdpLinkConfirm(t *testing.T) {
	page := &kccontext.LoginIdpLinkConfirm{Common: common(kccontext.PageLoginIdpLinkConfirm), IdpAlias: "github"}
	driver := &stubDriver{selectIdx: []int{0}}
	sub, err := newRenderer(t, driver).Fill(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := sub.Fields.Get("submitAction"); got != "updateProfile" {
		t.Fatalf("submitAction = %q", got)
	}
}

func TestRender_SubmitTransformer(t *testing.T) {
	driver := &stubDriver{inputs: []string{"alice"}}
	r := newRenderer(t, driver, WithSubmitTransformer(func(values url.Values) (url.Values, error) {
		values.Set("username", strings.ToUpper(values.Get("username")))
		return values, nil
	}))
	page := &kccontext.LoginResetPassword{Common: common(kccontext.PageLoginResetPassword)}
	sub, err := r.Fill(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := sub.Fields.Get("username"); got != "ALICE" {
		t.Fatalf("username = %q", got)
	}
}

func TestRender_UnsupportedPage(t *testing.T) {
	r := newRenderer(t, &stubDriver{})
	_, err := r.Render(context.Background(), &kccontext.Error{Common: common(kccontext.PageError)}, render.RenderOptions{})
	if !errors.Is(err, ErrUnsupportedPage) {
		t.Fatalf("expected ErrUnsupportedPage, got %v", err)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newRenderer(t, &stubDriver{})
	_, err := r.Render(ctx, &kccontext.Login{Common: common(kccontext.PageLogin)}, render.RenderOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithOutputFormat("xml")); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func strPtr(value string) *string { return &value }
