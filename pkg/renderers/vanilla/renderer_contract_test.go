package vanilla_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/profile"
	"github.com/goliatone/go-kctheme/pkg/render"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla"
	"github.com/goliatone/go-kctheme/pkg/testsupport"
)

func newRenderer(t *testing.T, opts ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderPage(t *testing.T, payload string, opts render.RenderOptions) string {
	t.Helper()
	kc := testsupport.MustDecodeContext(t, payload)
	output, err := newRenderer(t).Render(testsupport.Context(), kc, opts)
	if err != nil {
		t.Fatalf("render %s: %v", kc.Page(), err)
	}
	return string(output)
}

const loginPayload = `{
	"pageId": "login.ftl",
	"url": {
		"loginAction": "https://kc.example.com/login-action",
		"registrationUrl": "https://kc.example.com/register",
		"loginResetCredentialsUrl": "https://kc.example.com/reset",
		"resourcesPath": "/resources/kctheme"
	},
	"realm": {
		"name": "demo",
		"displayName": "Demo",
		"password": true,
		"registrationAllowed": true,
		"resetPasswordAllowed": true,
		"rememberMe": true,
		"loginWithEmailAllowed": true
	},
	"login": {"username": "alice", "rememberMe": "on"},
	"auth": {"selectedCredential": "cred-1"},
	"message": {"type": "error", "summary": "Invalid username or password."},
	"messagesPerField": {"username": "Invalid username or password."},
	"social": {
		"providers": [
			{"alias": "google", "displayName": "Google", "loginUrl": "https://kc.example.com/broker/google", "providerId": "google"}
		]
	}
}`

func TestRenderer_Login(t *testing.T) {
	out := renderPage(t, loginPayload, render.RenderOptions{})

	testsupport.AssertContains(t, out,
		`<!DOCTYPE html>`,
		`data-page="login.ftl"`,
		`<title>Sign in to Demo</title>`,
		`Sign in to your account`,
		`action="https://kc.example.com/login-action"`,
		`Username or email`,
		`value="alice"`,
		`aria-invalid="true"`,
		`id="input-error"`,
		`Invalid username or password.`,
		`name="rememberMe" type="checkbox" checked`,
		`href="https://kc.example.com/reset"`,
		`data-password-toggle="password"`,
		`name="credentialId" value="cred-1"`,
		`id="kc-login"`,
		`data-loading-text="Signing in..."`,
		`id="social-google"`,
		`class="kc-social-icon"`,
		`Continue with Google`,
		`New user?`,
		`href="https://kc.example.com/register"`,
		`href="/resources/kctheme/kctheme.css"`,
		`src="/resources/kctheme/kctheme.js"`,
	)
	// The field error is shown inline, so the banner is suppressed.
	testsupport.AssertNotContains(t, out, `kc-alert-error`)
}

func TestRenderer_LoginRevealedPassword(t *testing.T) {
	out := renderPage(t, loginPayload, render.RenderOptions{
		RevealedPasswords: map[string]bool{"password": true},
	})
	testsupport.AssertContains(t, out, `type="text" id="password"`, `aria-label="Hide password"`)
}

func TestRenderer_LoginBannerAndRegistrationDisabled(t *testing.T) {
	payload := `{
		"pageId": "login.ftl",
		"url": {"loginAction": "/login"},
		"realm": {"name": "demo", "password": true, "registrationAllowed": true},
		"registrationDisabled": true,
		"message": {"type": "info", "summary": "Please sign in again."}
	}`
	out := renderPage(t, payload, render.RenderOptions{})

	testsupport.AssertContains(t, out,
		`kc-alert kc-alert-info`,
		`Please sign in again.`,
		`>Username</label>`,
	)
	testsupport.AssertNotContains(t, out, `kc-registration`, `name="rememberMe"`)
}

func TestRenderer_WarningHiddenForAppInitiatedAction(t *testing.T) {
	payload := `{
		"pageId": "login-update-profile.ftl",
		"url": {"loginAction": "/update"},
		"realm": {"name": "demo"},
		"isAppInitiatedAction": true,
		"message": {"type": "warning", "summary": "You need to update your profile."},
		"profile": {"attributes": [{"name": "firstName", "displayName": "${firstName}", "required": true}]}
	}`
	out := renderPage(t, payload, render.RenderOptions{})

	testsupport.AssertNotContains(t, out, `kc-alert-warning`)
	testsupport.AssertContains(t, out,
		`id="kc-update-profile-form"`,
		`name="cancel-aia" value="true"`,
		`First name`,
	)
}

const registerPayload = `{
	"pageId": "register.ftl",
	"url": {"registrationAction": "https://kc.example.com/registration", "loginUrl": "https://kc.example.com/login"},
	"realm": {"name": "demo", "password": true},
	"passwordRequired": true,
	"termsAcceptanceRequired": true,
	"messagesPerField": {"email": "Email already exists.", "global": "Registration failed."},
	"profile": {
		"attributes": [
			{"name": "username", "displayName": "${username}", "required": true},
			{"name": "email", "displayName": "${email}", "required": true, "value": "alice@example.com"},
			{"name": "firstName", "displayName": "${firstName}"}
		]
	}
}`

func TestRenderer_Register(t *testing.T) {
	out := renderPage(t, registerPayload, render.RenderOptions{})

	testsupport.AssertContains(t, out,
		`id="kc-register-form"`,
		`action="https://kc.example.com/registration"`,
		`data-kc-terms-required`,
		`data-attribute="username"`,
		`data-attribute="email"`,
		`id="input-error-email"`,
		`Email already exists.`,
		`Registration failed.`,
		`id="password-confirm"`,
		`name="termsAccepted"`,
		`value="Register" disabled>`,
		`href="https://kc.example.com/login"`,
		`kc-required-fields`,
	)
	testsupport.AssertNotContains(t, out, `data-kc-mirror`)

	usernameAt := strings.Index(out, `data-attribute="username"`)
	passwordAt := strings.Index(out, `data-attribute="password"`)
	emailAt := strings.Index(out, `data-attribute="email"`)
	if !(usernameAt < passwordAt && passwordAt < emailAt) {
		t.Fatalf("password fields must follow the username: username=%d password=%d email=%d", usernameAt, passwordAt, emailAt)
	}
}

func TestRenderer_RegisterReplaysActions(t *testing.T) {
	out := renderPage(t, registerPayload, render.RenderOptions{
		DoMakeUserConfirmPassword: render.Bool(false),
		Actions: []profile.FormAction{
			profile.Update("username", profile.Single("alice")),
			profile.FocusLost("firstName", profile.NoFieldIndex),
		},
	})

	testsupport.AssertContains(t, out, `value="alice"`)
	// The confirmation is mirrored and hidden when not asked.
	if !strings.Contains(out, `data-attribute="password-confirm" data-component="password" style="display:none" data-kc-mirror="password">`) {
		t.Fatalf("expected hidden password confirmation mirroring the password:\n%s", out)
	}
}

func TestRenderer_RegisterUnknownActionFails(t *testing.T) {
	kc := testsupport.MustDecodeContext(t, registerPayload)
	_, err := newRenderer(t).Render(testsupport.Context(), kc, render.RenderOptions{
		Actions: []profile.FormAction{profile.Update("nope", profile.Single("x"))},
	})
	if !errors.Is(err, profile.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestRenderer_UpdatePassword(t *testing.T) {
	payload := `{
		"pageId": "login-update-password.ftl",
		"url": {"loginAction": "/update-password"},
		"realm": {"name": "demo"},
		"messagesPerField": {"password-confirm": "Passwords don't match."}
	}`
	out := renderPage(t, payload, render.RenderOptions{})

	testsupport.AssertContains(t, out,
		`id="kc-passwd-update-form"`,
		`name="password-new"`,
		`name="password-confirm"`,
		`id="input-error-password-confirm"`,
		`name="logout-sessions" value="on" checked`,
	)
	testsupport.AssertNotContains(t, out, `cancel-aia`)
}

func TestRenderer_OAuthGrant(t *testing.T) {
	payload := `{
		"pageId": "login-oauth-grant.ftl",
		"url": {"oauthAction": "https://kc.example.com/consent"},
		"realm": {"name": "demo"},
		"client": {"clientId": "portal", "name": "Customer Portal", "attributes": {"tosUri": "https://portal.example.com/tos"}},
		"oauth": {
			"code": "grant-code",
			"clientScopesRequested": [
				{"consentScreenText": "${email}"},
				{"consentScreenText": "Documents", "dynamicScopeParameter": "reports"}
			]
		}
	}`
	out := renderPage(t, payload, render.RenderOptions{})

	testsupport.AssertContains(t, out,
		`Grant Access to Customer Portal`,
		`action="https://kc.example.com/consent"`,
		`name="code" value="grant-code"`,
		`<span>Email</span>`,
		`Documents: <b>reports</b>`,
		`href="https://portal.example.com/tos"`,
		`name="accept"`,
		`name="cancel"`,
	)
}

func TestRenderer_IdpLinkConfirm(t *testing.T) {
	payload := `{
		"pageId": "login-idp-link-confirm.ftl",
		"url": {"loginAction": "/link"},
		"realm": {"name": "demo"},
		"idpAlias": "github"
	}`
	out := renderPage(t, payload, render.RenderOptions{})
	testsupport.AssertContains(t, out,
		`name="submitAction" id="updateProfile" value="updateProfile"`,
		`name="submitAction" id="linkAccount" value="linkAccount"`,
	)
}

func TestRenderer_InfoRequiredActions(t *testing.T) {
	payload := `{
		"pageId": "info.ftl",
		"realm": {"name": "demo"},
		"message": {"type": "info", "summary": "Perform the following action(s)"},
		"requiredActions": ["VERIFY_EMAIL", "UPDATE_PASSWORD"],
		"actionUri": "https://kc.example.com/action"
	}`
	out := renderPage(t, payload, render.RenderOptions{})

	testsupport.AssertContains(t, out,
		`<b>Verify Email, Update Password</b>`,
		`href="https://kc.example.com/action"`,
	)
	testsupport.AssertNotContains(t, out, `role="alert"`)
}

func TestRenderer_ErrorSanitizesSummary(t *testing.T) {
	payload := `{
		"pageId": "error.ftl",
		"realm": {"name": "demo"},
		"client": {"baseUrl": "https://app.example.com"},
		"message": {"type": "error", "summary": "Bad <script>alert(1)</script><b>request</b>"}
	}`
	out := renderPage(t, payload, render.RenderOptions{})

	testsupport.AssertContains(t, out, `<b>request</b>`, `href="https://app.example.com"`)
	testsupport.AssertNotContains(t, out, `<script>alert(1)</script>`)
}

func TestRenderer_UnknownPageUsesDefaultTemplate(t *testing.T) {
	payload := `{
		"pageId": "login-config-totp.ftl",
		"realm": {"name": "demo", "displayName": "Demo Realm"},
		"message": {"type": "success", "summary": "Almost there"}
	}`
	out := renderPage(t, payload, render.RenderOptions{})
	testsupport.AssertContains(t, out, `data-page="login-config-totp.ftl"`, `Almost there`, `Demo Realm`)
}

func TestRenderer_LanguageSwitcher(t *testing.T) {
	payload := `{
		"pageId": "login-page-expired.ftl",
		"url": {"loginAction": "/continue", "loginRestartFlowUrl": "/restart"},
		"realm": {"name": "demo", "internationalizationEnabled": true},
		"locale": {
			"currentLanguageTag": "fr",
			"supported": [
				{"languageTag": "en", "url": "/?kc_locale=en"},
				{"languageTag": "fr", "url": "/?kc_locale=fr"}
			]
		}
	}`
	out := renderPage(t, payload, render.RenderOptions{})

	testsupport.AssertContains(t, out,
		`<html lang="fr"`,
		`id="kc-locale"`,
		`lang="fr" aria-current="true"`,
		`href="/restart"`,
		`href="/continue"`,
	)
}

func TestRenderer_ThemeConfig(t *testing.T) {
	out := renderPage(t, loginPayload, render.RenderOptions{
		Appearance: appearance.ModeDark,
		Theme: &theme.RendererConfig{
			Theme:   "acme",
			Variant: "dark",
			CSSVars: map[string]string{"--color-primary": "#123456"},
			AssetURL: func(key string) string {
				return "/themes/acme/" + key
			},
		},
		LiveReloadURL: "ws://localhost:8080/livereload",
	})

	testsupport.AssertContains(t, out,
		`data-theme="dark"`,
		`data-appearance="dark"`,
		`style="--color-primary: #123456;"`,
		`href="/themes/acme/kctheme.stylesheet"`,
		`src="/themes/acme/kctheme.script"`,
		`data-next="system"`,
		`data-livereload="ws://localhost:8080/livereload"`,
	)
}

func TestRenderer_AssetsPrefixOption(t *testing.T) {
	kc := testsupport.MustDecodeContext(t, `{"pageId": "login-verify-email.ftl", "realm": {"name": "demo"}, "user": {"email": "a@b.c"}}`)
	out, err := newRenderer(t, vanilla.WithAssetsPrefix("/static")).Render(testsupport.Context(), kc, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertContains(t, string(out), `href="/static/kctheme.css"`, `a@b.c`)
}

func TestRenderer_TemplatesDirOverridesOnePage(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pages"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := `<p id="custom">{{ msgStr("errorTitle") }} / {{ translate(layout, "doLogIn") }}</p>`
	if err := os.WriteFile(filepath.Join(dir, "pages", "error.html"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	renderer := newRenderer(t, vanilla.WithTemplatesDir(dir), vanilla.WithTemplateReload(true))

	errorPage := testsupport.MustDecodeContext(t, `{"pageId": "error.ftl", "realm": {"name": "demo"}}`)
	out, err := renderer.Render(testsupport.Context(), errorPage, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render error page: %v", err)
	}
	if diff := testsupport.CompareGolden(`<p id="custom">We are sorry... / Sign In</p>`, string(out)); diff != "" {
		t.Fatalf("override mismatch (-want +got):\n%s", diff)
	}

	login := testsupport.MustDecodeContext(t, loginPayload)
	out, err = renderer.Render(testsupport.Context(), login, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render login: %v", err)
	}
	testsupport.AssertContains(t, string(out), `data-page="login.ftl"`)
}

func TestRenderer_TemplatesDirPageExtendsEmbeddedLayout(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pages"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := `{% extends "base.html" %}{% block content %}<p id="custom-info">{{ page.messageHtml|safe }}</p>{% endblock %}`
	if err := os.WriteFile(filepath.Join(dir, "pages", "info.html"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	renderer := newRenderer(t, vanilla.WithTemplatesDir(dir))

	info := testsupport.MustDecodeContext(t, `{"pageId": "info.ftl", "realm": {"name": "demo"}, "message": {"type": "info", "summary": "Your account is ready."}}`)
	out, err := renderer.Render(testsupport.Context(), info, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render info page: %v", err)
	}
	testsupport.AssertContains(t, string(out), `<p id="custom-info">`, `data-page="info.ftl"`)
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	kc := testsupport.MustDecodeContext(t, loginPayload)
	if _, err := newRenderer(t).Render(ctx, kc, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderer_EveryKnownPageRenders(t *testing.T) {
	renderer := newRenderer(t)
	for _, page := range kccontext.KnownPages() {
		payload := `{"pageId": "` + string(page) + `", "realm": {"name": "demo", "password": true}}`
		kc := testsupport.MustDecodeContext(t, payload)
		out, err := renderer.Render(testsupport.Context(), kc, render.RenderOptions{})
		if err != nil {
			t.Fatalf("render %s: %v", page, err)
		}
		if !strings.Contains(string(out), `data-page="`+string(page)+`"`) {
			t.Fatalf("%s: missing page marker", page)
		}
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != vanilla.Name {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}
