package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/i18n"
	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/render"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal sessions. Instead of
// markup it prompts for the fields the page would post and returns the
// resulting submission.
type Renderer struct {
	driver            PromptDriver
	infoOut           io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.infoOut)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for the page and serializes the submission. Pages that only
// show information return ErrUnsupportedPage.
func (r *Renderer) Render(ctx context.Context, kc kccontext.KcContext, opts render.RenderOptions) ([]byte, error) {
	submission, err := r.Fill(ctx, kc, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(submission)
}

// Fill runs the prompts of the page and returns the collected submission.
func (r *Renderer) Fill(ctx context.Context, kc kccontext.KcContext, opts render.RenderOptions) (*Submission, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if kc == nil {
		return nil, errors.New("tui: kcContext is nil")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	s := &session{
		r:        r,
		ctx:      ctx,
		kc:       kc,
		base:     kc.Base(),
		messages: render.Messages(kc, opts),
		opts:     opts,
	}
	if err := s.banner(); err != nil {
		return nil, err
	}

	submission, err := s.run()
	if err != nil {
		return nil, err
	}
	for _, field := range render.SortedHiddenFields(opts.HiddenFields) {
		submission.Set(field.Name, field.Value)
	}

	if r.submitTransformer != nil {
		fields, err := r.submitTransformer(submission.Fields)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
		submission.Fields = fields
	}
	return submission, nil
}

func (r *Renderer) serialize(submission *Submission) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(submission.Fields.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(submission.pretty()), nil
	default:
		return submission.jsonBytes()
	}
}

// session is one page walk-through.
type session struct {
	r        *Renderer
	ctx      context.Context
	kc       kccontext.KcContext
	base     *kccontext.Common
	messages *i18n.I18n
	opts     render.RenderOptions
}

func (s *session) run() (*Submission, error) {
	switch page := s.kc.(type) {
	case *kccontext.Login:
		return s.login(page.Login, page.UsernameHidden, true)
	case *kccontext.LoginUsername:
		return s.login(page.Login, page.UsernameHidden, false)
	case *kccontext.LoginPassword:
		sub := newSubmission(s.base.URL.LoginAction)
		if err := s.password(sub, render.FieldPassword, "password"); err != nil {
			return nil, err
		}
		sub.Set(render.FieldLogin, s.messages.MsgStr("doLogIn"))
		return sub, nil
	case *kccontext.LoginResetPassword:
		sub := newSubmission(s.base.URL.LoginAction)
		username, err := s.required(s.usernameLabel(), s.attemptedUsername(), false)
		if err != nil {
			return nil, err
		}
		sub.Set(render.FieldUsername, username)
		return sub, nil
	case *kccontext.LoginUpdatePassword:
		return s.updatePassword()
	case *kccontext.Register:
		return s.register(page)
	case *kccontext.LoginUpdateProfile:
		return s.profilePage(s.base.URL.LoginAction, true)
	case *kccontext.LoginOAuthGrant:
		return s.oauthGrant(page)
	case *kccontext.LoginIdpLinkConfirm:
		return s.idpLinkConfirm()
	case *kccontext.Generic:
		if page.Profile != nil {
			return s.profilePage(s.base.URL.LoginAction, false)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPage, s.kc.Page())
}

func (s *session) login(echo kccontext.LoginEcho, usernameHidden, withPassword bool) (*Submission, error) {
	sub := newSubmission(s.base.URL.LoginAction)

	if !usernameHidden {
		fallback := echo.Username
		if fallback == "" {
			fallback = s.attemptedUsername()
		}
		username, err := s.required(s.usernameLabel(), fallback, false)
		if err != nil {
			return nil, err
		}
		sub.Set(render.FieldUsername, username)
	}
	if withPassword {
		if err := s.password(sub, render.FieldPassword, "password"); err != nil {
			return nil, err
		}
	}
	if s.base.Realm.RememberMe && !usernameHidden {
		remember, err := s.r.driver.Confirm(s.ctx, ConfirmConfig{
			Message: s.messages.MsgStr("rememberMe"),
			Default: bool(echo.RememberMe),
		})
		if err != nil {
			return nil, err
		}
		if remember {
			sub.Set(render.FieldRememberMe, "on")
		}
	}
	if auth := s.base.Auth; auth != nil && auth.SelectedCredential != "" {
		sub.Set(render.FieldCredentialID, auth.SelectedCredential)
	}
	sub.Set(render.FieldLogin, s.messages.MsgStr("doLogIn"))
	return sub, nil
}

func (s *session) updatePassword() (*Submission, error) {
	sub := newSubmission(s.base.URL.LoginAction)
	cancelled, err := s.cancelAIA(sub)
	if err != nil {
		return nil, err
	}
	if cancelled {
		return sub, nil
	}

	form, err := s.fillProfile()
	if err != nil {
		return nil, err
	}
	values := form.Values()
	sub.Set(render.FieldPasswordNew, values.Get(render.FieldPassword))
	sub.Set(render.FieldPasswordConfirm, values.Get(render.FieldPasswordConfirm))
	sub.Secret(render.FieldPasswordNew)
	sub.Secret(render.FieldPasswordConfirm)

	logout, err := s.r.driver.Confirm(s.ctx, ConfirmConfig{
		Message: s.messages.MsgStr("logoutOtherSessions"),
		Default: true,
	})
	if err != nil {
		return nil, err
	}
	if logout {
		sub.Set(render.FieldLogoutSessions, "on")
	}
	return sub, nil
}

func (s *session) register(page *kccontext.Register) (*Submission, error) {
	if page.RecaptchaRequired {
		if err := s.info("reCAPTCHA is required by this realm and cannot be answered in a terminal."); err != nil {
			return nil, err
		}
	}
	sub, err := s.profilePage(s.base.URL.RegistrationAction, false)
	if err != nil {
		return nil, err
	}
	if !page.TermsAcceptanceRequired {
		return sub, nil
	}

	if err := s.info(s.messages.MsgStr("termsText")); err != nil {
		return nil, err
	}
	for {
		accepted, err := s.r.driver.Confirm(s.ctx, ConfirmConfig{Message: s.messages.MsgStr("acceptTerms")})
		if err != nil {
			return nil, err
		}
		if accepted {
			sub.Set(render.FieldTermsAccepted, "on")
			return sub, nil
		}
		if err := s.fail(s.messages.MsgStr("termsAcceptanceRequired")); err != nil {
			return nil, err
		}
	}
}

// profilePage fills a profile-driven page. allowCancel offers cancel-aia for
// application initiated actions.
func (s *session) profilePage(action string, allowCancel bool) (*Submission, error) {
	sub := newSubmission(action)
	if allowCancel {
		cancelled, err := s.cancelAIA(sub)
		if err != nil {
			return nil, err
		}
		if cancelled {
			return sub, nil
		}
	}
	form, err := s.fillProfile()
	if err != nil {
		return nil, err
	}
	sub.Merge(form.Values())
	for _, attr := range form.Attributes() {
		if attr.Name == render.FieldPassword || attr.Name == render.FieldPasswordConfirm {
			sub.Secret(attr.Name)
		}
	}
	return sub, nil
}

func (s *session) oauthGrant(page *kccontext.LoginOAuthGrant) (*Submission, error) {
	sub := newSubmission(s.base.URL.OAuthAction)
	client := s.base.Client.Name
	if client == "" {
		client = s.base.Client.ClientID
	}
	lines := []string{s.messages.MsgStr("oauthGrantRequest")}
	for _, scope := range page.OAuth.ClientScopesRequested {
		line := "  - " + s.messages.AdvancedMsgStr(scope.ConsentScreenText)
		if scope.DynamicScopeParameter != "" {
			line += ": " + scope.DynamicScopeParameter
		}
		lines = append(lines, line)
	}
	if err := s.info(client + "\n" + strings.Join(lines, "\n")); err != nil {
		return nil, err
	}

	accept, err := s.r.driver.Confirm(s.ctx, ConfirmConfig{Message: s.messages.MsgStr("oauthGrantTitle", client)})
	if err != nil {
		return nil, err
	}
	sub.Set(render.FieldCode, page.OAuth.Code)
	if accept {
		sub.Set(render.FieldAccept, s.messages.MsgStr("doYes"))
	} else {
		sub.Set(render.FieldCancel, s.messages.MsgStr("doNo"))
	}
	return sub, nil
}

func (s *session) idpLinkConfirm() (*Submission, error) {
	sub := newSubmission(s.base.URL.LoginAction)
	choices := []string{"updateProfile", "linkAccount"}
	labels := []string{
		s.messages.MsgStr("confirmLinkIdpReviewProfile"),
		s.messages.MsgStr("confirmLinkIdpContinue"),
	}
	idx, err := s.r.driver.Select(s.ctx, SelectConfig{
		Message:      s.messages.MsgStr("confirmLinkIdpTitle"),
		Options:      labels,
		DefaultIndex: 1,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(choices) {
		return nil, fmt.Errorf("tui: invalid selection %d", idx)
	}
	sub.Set(render.FieldSubmitAction, choices[idx])
	return sub, nil
}

// cancelAIA asks whether to abort an application initiated action. When the
// user cancels, sub carries cancel-aia only.
func (s *session) cancelAIA(sub *Submission) (bool, error) {
	if !s.base.IsAppInitiatedAction {
		return false, nil
	}
	proceed, err := s.r.driver.Confirm(s.ctx, ConfirmConfig{
		Message: s.messages.MsgStr("doContinue"),
		Default: true,
	})
	if err != nil {
		return false, err
	}
	if proceed {
		return false, nil
	}
	sub.Set(render.FieldCancelAIA, "true")
	return true, nil
}

func (s *session) password(sub *Submission, name, labelKey string) error {
	value, err := s.required(s.messages.MsgStr(labelKey), "", true)
	if err != nil {
		return err
	}
	sub.Set(name, value)
	sub.Secret(name)
	return nil
}

// required prompts until a non-blank answer is given.
func (s *session) required(label, fallback string, secret bool) (string, error) {
	cfg := InputConfig{
		Message: label,
		Default: fallback,
		Validator: func(answer string) error {
			if strings.TrimSpace(answer) == "" {
				return errors.New(s.messages.MsgStr("error-user-attribute-required"))
			}
			return nil
		},
	}
	if secret {
		cfg.Default = ""
		return s.r.driver.Password(s.ctx, cfg)
	}
	return s.r.driver.Input(s.ctx, cfg)
}

func (s *session) usernameLabel() string {
	realm := s.base.Realm
	switch {
	case !realm.LoginWithEmailAllowed:
		return s.messages.MsgStr("username")
	case realm.RegistrationEmailAsUsername:
		return s.messages.MsgStr("email")
	default:
		return s.messages.MsgStr("usernameOrEmail")
	}
}

func (s *session) attemptedUsername() string {
	if s.base.Auth == nil {
		return ""
	}
	return s.base.Auth.AttemptedUsername
}

// banner prints the page message, if any.
func (s *session) banner() error {
	message := s.base.Message
	if message == nil || strings.TrimSpace(message.Summary) == "" {
		return nil
	}
	if message.Type == kccontext.MessageWarning && s.base.IsAppInitiatedAction {
		return nil
	}
	text := plainText(message.Summary)
	if message.Type == kccontext.MessageError {
		return s.fail(text)
	}
	return s.info(text)
}

func (s *session) info(msg string) error {
	return s.r.driver.Info(s.ctx, s.r.theme.InfoPrefix+msg)
}

func (s *session) fail(msg string) error {
	return s.r.driver.Info(s.ctx, s.r.theme.ErrorPrefix+msg)
}

// plainText renders message HTML for the terminal.
func plainText(markup string) string {
	markup = strings.ReplaceAll(markup, "<br>", "\n")
	return html.UnescapeString(sanitize.Text(markup))
}
