package vanilla

import (
	"bytes"
	"html"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/appearance"
	"github.com/goliatone/go-kctheme/pkg/i18n"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/render"
	"github.com/goliatone/go-kctheme/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
	"github.com/goliatone/go-kctheme/pkg/social"
)

// Views handed to the templates. Every field that ends in HTML has already
// been sanitized or escaped and is printed with |safe.

type layoutView struct {
	PageID         string          `json:"pageId"`
	Lang           string          `json:"lang"`
	Dir            string          `json:"dir"`
	Title          string          `json:"title"`
	RealmHTML      string          `json:"realmHtml"`
	HeaderHTML     string          `json:"headerHtml"`
	Theme          string          `json:"theme,omitempty"`
	Variant        string          `json:"variant"`
	Appearance     appearanceView  `json:"appearance"`
	CSSVars        []cssVar        `json:"cssVars,omitempty"`
	Stylesheets    []string        `json:"stylesheets,omitempty"`
	Scripts        []scriptView    `json:"scripts,omitempty"`
	Languages      *languagesView  `json:"languages,omitempty"`
	Message        *messageView    `json:"message,omitempty"`
	Username       *usernameView   `json:"username,omitempty"`
	TryAnotherWay  *tryAnotherView `json:"tryAnotherWay,omitempty"`
	Social         *socialView     `json:"social,omitempty"`
	InfoHTML       string          `json:"infoHtml,omitempty"`
	RequiredFields bool            `json:"requiredFields,omitempty"`
	LiveReloadURL  string          `json:"liveReloadUrl,omitempty"`
}

type appearanceView struct {
	Mode        string `json:"mode"`
	Next        string `json:"next"`
	Label       string `json:"label"`
	ToggleLabel string `json:"toggleLabel"`
}

type scriptView struct {
	Src    string `json:"src,omitempty"`
	Type   string `json:"type,omitempty"`
	Inline string `json:"inline,omitempty"`
	Async  bool   `json:"async,omitempty"`
	Defer  bool   `json:"defer,omitempty"`
}

type languagesView struct {
	Current string         `json:"current"`
	Items   []languageView `json:"items"`
}

type languageView struct {
	Tag     string `json:"tag"`
	Label   string `json:"label"`
	URL     string `json:"url"`
	Current bool   `json:"current,omitempty"`
}

type messageView struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

type usernameView struct {
	Value        string `json:"value"`
	RestartURL   string `json:"restartUrl"`
	RestartLabel string `json:"restartLabel"`
}

type tryAnotherView struct {
	Action string `json:"action"`
	Label  string `json:"label"`
}

type socialView struct {
	Title     string         `json:"title"`
	Providers []providerView `json:"providers"`
}

type providerView struct {
	Alias       string `json:"alias"`
	ID          string `json:"id"`
	LoginURL    string `json:"loginUrl"`
	IconClasses string `json:"iconClasses,omitempty"`
	IconSVG     string `json:"iconSvg,omitempty"`
	LabelHTML   string `json:"labelHtml"`
}

type formView struct {
	Action      string   `json:"action"`
	HTML        string   `json:"html"`
	Submittable bool     `json:"submittable"`
	Errors      []string `json:"errors,omitempty"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type linkView struct {
	URL       string `json:"url"`
	LabelHTML string `json:"labelHtml"`
}

// pageData collects what the templates of one page need.
type pageData struct {
	layout layoutView
	form   *formView
	page   map[string]any
	hidden map[string]string
}

// pageBuilder fills the page-specific parts of data.
type pageBuilder struct {
	kc       kccontext.KcContext
	base     *kccontext.Common
	messages *i18n.I18n
	opts     render.RenderOptions
	data     *pageData
}

func (b *pageBuilder) set(key string, value any) {
	if b.data.page == nil {
		b.data.page = make(map[string]any)
	}
	b.data.page[key] = value
}

func (b *pageBuilder) hidden(fields ...render.HiddenField) {
	b.data.hidden = render.MergeHiddenFields(b.data.hidden, fields...)
}

func (b *pageBuilder) header(html string) {
	b.data.layout.HeaderHTML = html
}

// msg returns key resolved and sanitized.
func (b *pageBuilder) msg(key string, args ...string) string {
	return b.messages.Msg(key, args...)
}

func (b *pageBuilder) fieldError(fields ...string) string {
	return sanitize.KcSanitize(b.base.MessagesPerField.GetFirstError(fields...))
}

func (b *pageBuilder) password(input components.PasswordInput) string {
	input.Revealed = b.opts.RevealedPasswords[input.ID]
	var buf bytes.Buffer
	components.WritePasswordInput(&buf, input, b.messages)
	return buf.String()
}

// usernameLabel follows the realm login switches.
func (b *pageBuilder) usernameLabel() string {
	realm := b.base.Realm
	switch {
	case !realm.LoginWithEmailAllowed:
		return b.messages.MsgStr("username")
	case !realm.RegistrationEmailAsUsername:
		return b.messages.MsgStr("usernameOrEmail")
	default:
		return b.messages.MsgStr("email")
	}
}

// displayMessage reports whether the page banner is shown. Pages that
// surface field errors inline suppress the duplicate banner.
func displayMessage(kc kccontext.KcContext) bool {
	base := kc.Base()
	if base.Message == nil || strings.TrimSpace(base.Message.Summary) == "" {
		return false
	}
	if base.Message.Type == kccontext.MessageWarning && base.IsAppInitiatedAction {
		return false
	}
	fields := base.MessagesPerField
	switch kc.Page() {
	case kccontext.PageLogin:
		return !fields.ExistsError(render.FieldUsername, render.FieldPassword)
	case kccontext.PageLoginUsername, kccontext.PageLoginResetPassword:
		return !fields.ExistsError(render.FieldUsername)
	case kccontext.PageLoginPassword:
		return !fields.ExistsError(render.FieldPassword)
	case kccontext.PageLoginUpdatePassword:
		return !fields.ExistsError(render.FieldPassword, render.FieldPasswordConfirm)
	case kccontext.PageRegister, kccontext.PageLoginUpdateProfile:
		return fields.Exists(kccontext.GlobalField)
	case kccontext.PageError, kccontext.PageInfo:
		return false
	}
	return true
}

func (b *pageBuilder) layout() {
	base := b.base
	messages := b.messages
	layout := &b.data.layout

	layout.PageID = string(b.kc.Page())
	layout.Lang = messages.Locale()
	layout.Dir = "ltr"
	if base.Locale != nil && base.Locale.RTL {
		layout.Dir = "rtl"
	}
	layout.Title = messages.MsgStr("loginTitle", base.Realm.Title())
	realmName := base.Realm.DisplayNameHTML
	if strings.TrimSpace(realmName) == "" {
		realmName = html.EscapeString(base.Realm.Title())
	}
	layout.RealmHTML = sanitize.KcSanitize(messages.MsgStr("loginTitleHtml", realmName))

	mode := b.opts.Appearance
	if mode == "" {
		mode = appearance.ModeSystem
	}
	layout.Appearance = appearanceView{
		Mode:        mode.String(),
		Next:        appearance.Next(mode).String(),
		Label:       messages.MsgStr(appearanceKey(mode)),
		ToggleLabel: messages.MsgStr("appearance"),
	}
	layout.Variant = string(appearance.Resolve(mode, nil))
	if cfg := b.opts.Theme; cfg != nil {
		layout.Theme = cfg.Theme
		if cfg.Variant != "" {
			layout.Variant = cfg.Variant
		}
		layout.CSSVars = sortedCSSVars(cfg.CSSVars)
	}

	if base.Realm.InternationalizationEnabled && base.Locale != nil && len(base.Locale.Supported) > 1 {
		current := messages.CurrentLanguage()
		langs := &languagesView{Current: current.Label}
		for _, lang := range messages.EnabledLanguages() {
			langs.Items = append(langs.Items, languageView{
				Tag:     lang.LanguageTag,
				Label:   lang.Label,
				URL:     lang.URL,
				Current: lang.LanguageTag == current.LanguageTag,
			})
		}
		layout.Languages = langs
	}

	if displayMessage(b.kc) {
		layout.Message = &messageView{
			Type: string(base.Message.Type),
			HTML: sanitize.KcSanitize(messages.AdvancedMsgStr(base.Message.Summary)),
		}
	}

	if auth := base.Auth; auth != nil {
		if auth.ShowUsername && !auth.ShowResetCredentials {
			layout.Username = &usernameView{
				Value:        auth.AttemptedUsername,
				RestartURL:   base.URL.LoginRestartFlowURL,
				RestartLabel: messages.MsgStr("restartLoginTooltip"),
			}
		}
		if auth.ShowTryAnotherWayLink {
			layout.TryAnotherWay = &tryAnotherView{
				Action: base.URL.LoginAction,
				Label:  messages.MsgStr("tryAnotherWay"),
			}
		}
	}
	layout.LiveReloadURL = b.opts.LiveReloadURL
}

func appearanceKey(mode appearance.Mode) string {
	switch mode {
	case appearance.ModeLight:
		return "appearanceLight"
	case appearance.ModeDark:
		return "appearanceDark"
	default:
		return "appearanceSystem"
	}
}

func (b *pageBuilder) social(titleKey string) {
	providers := kccontext.SocialOf(b.kc)
	if providers == nil || len(providers.Providers) == 0 {
		return
	}
	title := func(label string) string {
		return b.messages.MsgStr(titleKey, b.messages.AdvancedMsgStr(label))
	}
	view := &socialView{Title: b.messages.MsgStr("identity-provider-login-label")}
	for _, link := range social.Links(providers.Providers, title) {
		pv := providerView{
			Alias:       link.Alias,
			ID:          link.ID,
			LoginURL:    link.Href,
			IconClasses: link.IconClasses,
			LabelHTML:   sanitize.KcSanitize(link.Title),
		}
		if pv.IconClasses == "" {
			pv.IconSVG = link.Icon.SVG
		}
		view.Providers = append(view.Providers, pv)
	}
	b.data.layout.Social = view
}

// registrationInfo is the "New user? Register" block under the login form.
func (b *pageBuilder) registrationInfo(registrationDisabled bool) {
	realm := b.base.Realm
	if !realm.Password || !realm.RegistrationAllowed || registrationDisabled {
		return
	}
	b.data.layout.InfoHTML = b.msg("noAccount") + ` <a tabindex="8" href="` +
		html.EscapeString(b.base.URL.RegistrationURL) + `">` + b.msg("doRegister") + `</a>`
}

func (b *pageBuilder) build(r *Renderer) error {
	b.layout()
	b.data.hidden = render.MergeHiddenFields(b.opts.HiddenFields)

	base := b.base
	switch page := b.kc.(type) {
	case *kccontext.Login:
		b.header(b.msg("loginAccountTitle"))
		b.loginForm(page.Login, page.UsernameHidden, true)
		b.social("continueWith")
		b.registrationInfo(page.RegistrationDisabled)
	case *kccontext.LoginUsername:
		b.header(b.msg("loginAccountTitle"))
		b.loginForm(page.Login, page.UsernameHidden, false)
		b.social("continueWith")
		b.registrationInfo(page.RegistrationDisabled)
	case *kccontext.LoginPassword:
		b.header(b.msg("doLogIn"))
		b.set("action", base.URL.LoginAction)
		b.set("passwordHtml", b.password(components.PasswordInput{
			ID: render.FieldPassword, Name: render.FieldPassword, Autocomplete: "current-password",
			Invalid: base.MessagesPerField.ExistsError(render.FieldPassword), Autofocus: true,
		}))
		b.set("errorHtml", b.fieldError(render.FieldPassword))
		b.forgotPassword()
		b.set("submitLabel", b.messages.MsgStr("doLogIn"))
		b.set("loadingLabel", b.messages.MsgStr("signingIn"))
	case *kccontext.Register:
		header := b.msg("registerTitle")
		if strings.TrimSpace(page.MessageHeader) != "" {
			header = b.messages.AdvancedMsg(page.MessageHeader)
		}
		b.header(header)
		if err := r.profileForm(b, base.URL.RegistrationAction); err != nil {
			return err
		}
		b.data.layout.RequiredFields = true
		b.social("signUpWith")
		b.set("termsRequired", page.TermsAcceptanceRequired)
		b.set("termsErrorHtml", b.fieldError(render.FieldTermsAccepted))
		if page.RecaptchaRequired {
			visible := page.RecaptchaVisible || page.RecaptchaAction == ""
			b.set("recaptcha", map[string]any{
				"siteKey": page.RecaptchaSiteKey,
				"action":  page.RecaptchaAction,
				"visible": visible,
			})
			b.set("recaptchaInvisible", !visible)
			b.data.layout.Scripts = append(b.data.layout.Scripts, scriptView{
				Src: "https://www.google.com/recaptcha/api.js", Async: true, Defer: true,
			})
		}
		b.set("backUrl", base.URL.LoginURL)
		b.set("submitLabel", b.messages.MsgStr("doRegister"))
		b.set("submitDisabled", !b.data.form.Submittable || page.TermsAcceptanceRequired)
	case *kccontext.LoginResetPassword:
		b.header(b.msg("emailForgotTitle"))
		b.set("action", base.URL.LoginAction)
		b.set("usernameLabel", b.usernameLabel())
		attempted := ""
		if base.Auth != nil {
			attempted = base.Auth.AttemptedUsername
		}
		b.set("username", attempted)
		b.set("usernameInvalid", base.MessagesPerField.ExistsError(render.FieldUsername))
		b.set("errorHtml", b.fieldError(render.FieldUsername))
		instruction := "emailInstruction"
		if base.Realm.DuplicateEmailsAllowed {
			instruction = "emailInstructionUsername"
		}
		b.set("instructionHtml", b.msg(instruction))
		b.set("backUrl", base.URL.LoginURL)
	case *kccontext.LoginUpdatePassword:
		b.header(b.msg("updatePasswordTitle"))
		b.set("action", base.URL.LoginAction)
		b.set("passwordNewHtml", b.password(components.PasswordInput{
			ID: render.FieldPasswordNew, Name: render.FieldPasswordNew, Autocomplete: "new-password", Autofocus: true,
			Invalid: base.MessagesPerField.ExistsError(render.FieldPassword, render.FieldPasswordConfirm),
		}))
		b.set("passwordConfirmHtml", b.password(components.PasswordInput{
			ID: render.FieldPasswordConfirm, Name: render.FieldPasswordConfirm, Autocomplete: "new-password",
			Invalid: base.MessagesPerField.ExistsError(render.FieldPasswordConfirm),
		}))
		b.set("passwordErrorHtml", b.fieldError(render.FieldPassword))
		b.set("confirmErrorHtml", b.fieldError(render.FieldPasswordConfirm))
		b.set("appInitiated", base.IsAppInitiatedAction)
	case *kccontext.LoginUpdateProfile:
		header := b.msg("loginProfileTitle")
		if strings.TrimSpace(page.MessageHeader) != "" {
			header = b.messages.AdvancedMsg(page.MessageHeader)
		}
		b.header(header)
		if err := r.profileForm(b, base.URL.LoginAction); err != nil {
			return err
		}
		b.data.layout.RequiredFields = true
		b.set("appInitiated", base.IsAppInitiatedAction)
	case *kccontext.LoginVerifyEmail:
		b.header(b.msg("emailVerifyTitle"))
		b.set("instructionHtml", b.msg("emailVerifyInstruction1", page.User.Email))
		b.set("resendHtml", b.msg("emailVerifyInstruction2")+` <a href="`+html.EscapeString(base.URL.LoginAction)+`">`+
			b.msg("doClickHere")+`</a> `+b.msg("emailVerifyInstruction3"))
	case *kccontext.LoginOAuthGrant:
		b.oauthGrant(page)
	case *kccontext.LoginIdpLinkConfirm:
		b.header(b.msg("confirmLinkIdpTitle"))
		b.set("action", base.URL.LoginAction)
		b.set("reviewLabel", b.messages.MsgStr("confirmLinkIdpReviewProfile"))
		b.set("linkLabel", b.messages.MsgStr("confirmLinkIdpContinue", page.IdpAlias))
	case *kccontext.LoginIdpLinkEmail:
		b.header(b.msg("emailLinkIdpTitle", page.IdpAlias))
		action := html.EscapeString(base.URL.LoginAction)
		b.set("instructionHtml", b.msg("emailLinkIdp1", page.IdpAlias, page.BrokerContext.Username, base.Realm.Title()))
		b.set("resendHtml", b.msg("emailLinkIdp2")+` <a href="`+action+`">`+b.msg("doClickHere")+`</a> `+b.msg("emailLinkIdp3"))
		b.set("continueHtml", b.msg("emailLinkIdp4")+` <a href="`+action+`">`+b.msg("doClickHere")+`</a> `+b.msg("emailLinkIdp5"))
	case *kccontext.LoginPageExpired:
		b.header(b.msg("pageExpiredTitle"))
		b.set("restartHtml", b.msg("pageExpiredMsg1")+` <a id="loginRestartLink" href="`+
			html.EscapeString(base.URL.LoginRestartFlowURL)+`">`+b.msg("doClickHere")+`</a>`)
		b.set("continueHtml", b.msg("pageExpiredMsg2")+` <a id="loginContinueLink" href="`+
			html.EscapeString(base.URL.LoginAction)+`">`+b.msg("doClickHere")+`</a>`)
	case *kccontext.Error:
		b.header(b.msg("errorTitle"))
		b.set("messageHtml", b.summary())
		if !page.SkipLink && base.Client.BaseURL != "" {
			b.set("link", linkView{URL: base.Client.BaseURL, LabelHTML: b.msg("backToApplication")})
		}
	case *kccontext.Info:
		b.info(page)
	case *kccontext.Generic:
		b.header(sanitize.KcSanitize(html.EscapeString(base.Realm.Title())))
		b.set("messageHtml", b.summary())
		if _, ok := kccontext.ProfileOf(page); ok {
			if err := r.profileForm(b, base.URL.LoginAction); err != nil {
				return err
			}
			b.data.layout.RequiredFields = true
		}
	default:
		b.header(sanitize.KcSanitize(html.EscapeString(base.Realm.Title())))
		b.set("messageHtml", b.summary())
	}
	return nil
}

func (b *pageBuilder) summary() string {
	if b.base.Message == nil {
		return ""
	}
	return sanitize.KcSanitize(b.messages.AdvancedMsgStr(b.base.Message.Summary))
}

func (b *pageBuilder) forgotPassword() {
	if b.base.Realm.ResetPasswordAllowed {
		b.set("forgotUrl", b.base.URL.LoginResetCredentialsURL)
		b.set("forgotLabel", b.messages.MsgStr("doForgotPassword"))
	}
}

// loginForm fills the username step, with the password input when
// withPassword is set.
func (b *pageBuilder) loginForm(echo kccontext.LoginEcho, usernameHidden, withPassword bool) {
	base := b.base
	if !base.Realm.Password {
		return
	}
	b.set("showForm", true)
	b.set("action", base.URL.LoginAction)

	errorFields := []string{render.FieldUsername}
	if withPassword {
		errorFields = append(errorFields, render.FieldPassword)
	}
	invalid := base.MessagesPerField.ExistsError(errorFields...)
	errorHTML := b.fieldError(errorFields...)

	if !usernameHidden {
		b.set("showUsername", true)
		b.set("usernameLabel", b.usernameLabel())
		b.set("username", echo.Username)
		b.set("usernameInvalid", invalid)
		b.set("usernameErrorHtml", errorHTML)
		if base.Realm.RememberMe {
			b.set("showRememberMe", true)
			b.set("rememberMe", bool(echo.RememberMe))
		}
	}
	if withPassword {
		b.set("passwordHtml", b.password(components.PasswordInput{
			ID: render.FieldPassword, Name: render.FieldPassword, Autocomplete: "current-password",
			Invalid: invalid, Autofocus: usernameHidden,
		}))
		if usernameHidden {
			b.set("passwordErrorHtml", errorHTML)
		}
		b.forgotPassword()
	}
	if base.Auth != nil && base.Auth.SelectedCredential != "" {
		b.hidden(render.CredentialID(base.Auth.SelectedCredential))
	}
	b.set("submitLabel", b.messages.MsgStr("doLogIn"))
	b.set("loadingLabel", b.messages.MsgStr("signingIn"))
}

type scopeView struct {
	HTML      string `json:"html"`
	Parameter string `json:"parameter,omitempty"`
}

func (b *pageBuilder) oauthGrant(page *kccontext.LoginOAuthGrant) {
	client := page.Client
	clientName := client.Name
	if strings.TrimSpace(clientName) == "" {
		clientName = client.ClientID
	}
	clientName = b.messages.AdvancedMsgStr(clientName)
	b.header(b.msg("oauthGrantTitle", clientName))

	scopes := make([]scopeView, 0, len(page.OAuth.ClientScopesRequested))
	for _, scope := range page.OAuth.ClientScopesRequested {
		scopes = append(scopes, scopeView{
			HTML:      b.messages.AdvancedMsg(scope.ConsentScreenText),
			Parameter: scope.DynamicScopeParameter,
		})
	}
	b.set("scopes", scopes)
	b.set("requestHtml", b.msg("oauthGrantRequest"))
	if tos := client.Attributes["tosUri"]; tos != "" {
		b.set("tos", linkView{URL: tos, LabelHTML: b.msg("oauthGrantTos")})
	}
	if policy := client.Attributes["policyUri"]; policy != "" {
		b.set("policy", linkView{URL: policy, LabelHTML: b.msg("oauthGrantPolicy")})
	}
	b.set("reviewHtml", b.msg("oauthGrantReview"))
	b.set("action", page.URL.OAuthAction)
	b.set("acceptLabel", b.messages.MsgStr("doYes"))
	b.set("cancelLabel", b.messages.MsgStr("doNo"))
	b.hidden(render.OAuthCode(page.OAuth.Code))
}

func (b *pageBuilder) info(page *kccontext.Info) {
	if strings.TrimSpace(page.MessageHeader) != "" {
		b.header(b.messages.AdvancedMsg(page.MessageHeader))
	} else {
		b.header(b.summary())
	}
	b.set("messageHtml", b.summary())

	if len(page.RequiredActions) > 0 {
		labels := make([]string, 0, len(page.RequiredActions))
		for _, action := range page.RequiredActions {
			labels = append(labels, b.msg("requiredAction."+action))
		}
		b.set("requiredActionsHtml", "<b>"+strings.Join(labels, ", ")+"</b>")
	}

	switch {
	case page.SkipLink:
	case page.PageRedirectURI != "":
		b.set("link", linkView{URL: page.PageRedirectURI, LabelHTML: b.msg("backToApplication")})
	case page.ActionURI != "":
		b.set("link", linkView{URL: page.ActionURI, LabelHTML: b.msg("proceedWithAction")})
	case page.Client.BaseURL != "":
		b.set("link", linkView{URL: page.Client.BaseURL, LabelHTML: b.msg("backToApplication")})
	}
}

func hiddenViews(fields map[string]string) []hiddenView {
	sorted := render.SortedHiddenFields(fields)
	if len(sorted) == 0 {
		return nil
	}
	out := make([]hiddenView, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, hiddenView{Name: field.Name, Value: field.Value})
	}
	return out
}
