package kccontext

// PageID discriminates the kcContext union. Values match the FreeMarker
// template names Keycloak reports for the current login step.
type PageID string

const (
	PageLogin               PageID = "login.ftl"
	PageLoginUsername       PageID = "login-username.ftl"
	PageLoginPassword       PageID = "login-password.ftl"
	PageRegister            PageID = "register.ftl"
	PageLoginResetPassword  PageID = "login-reset-password.ftl"
	PageLoginUpdatePassword PageID = "login-update-password.ftl"
	PageLoginUpdateProfile  PageID = "login-update-profile.ftl"
	PageLoginVerifyEmail    PageID = "login-verify-email.ftl"
	PageLoginOAuthGrant     PageID = "login-oauth-grant.ftl"
	PageLoginIdpLinkConfirm PageID = "login-idp-link-confirm.ftl"
	PageLoginIdpLinkEmail   PageID = "login-idp-link-email.ftl"
	PageLoginPageExpired    PageID = "login-page-expired.ftl"
	PageError               PageID = "error.ftl"
	PageInfo                PageID = "info.ftl"
)

// KnownPages lists the pages with a dedicated variant, in flow order.
func KnownPages() []PageID {
	return []PageID{
		PageLogin,
		PageLoginUsername,
		PageLoginPassword,
		PageRegister,
		PageLoginResetPassword,
		PageLoginUpdatePassword,
		PageLoginUpdateProfile,
		PageLoginVerifyEmail,
		PageLoginOAuthGrant,
		PageLoginIdpLinkConfirm,
		PageLoginIdpLinkEmail,
		PageLoginPageExpired,
		PageError,
		PageInfo,
	}
}

// KcContext is implemented by every page variant.
type KcContext interface {
	Page() PageID
	Base() *Common
}

// Common holds the fields Keycloak injects on every login page.
type Common struct {
	PageID               PageID            `json:"pageId"`
	ThemeName            string            `json:"themeName,omitempty"`
	Properties           map[string]string `json:"properties,omitempty"`
	URL                  URL               `json:"url"`
	Realm                Realm             `json:"realm"`
	Client               Client            `json:"client"`
	Locale               *Locale           `json:"locale,omitempty"`
	Auth                 *Auth             `json:"auth,omitempty"`
	Message              *Message          `json:"message,omitempty"`
	MessagesPerField     MessagesPerField  `json:"messagesPerField,omitempty"`
	IsAppInitiatedAction bool              `json:"isAppInitiatedAction,omitempty"`
	Keycloakify          Keycloakify       `json:"x-keycloakify,omitempty"`
}

// Page reports the discriminant.
func (c *Common) Page() PageID { return c.PageID }

// Base returns the shared fields.
func (c *Common) Base() *Common { return c }

// URL lists the endpoints a page may post to or link at.
type URL struct {
	LoginAction              string `json:"loginAction,omitempty"`
	RegistrationAction       string `json:"registrationAction,omitempty"`
	OAuthAction              string `json:"oauthAction,omitempty"`
	LoginURL                 string `json:"loginUrl,omitempty"`
	RegistrationURL          string `json:"registrationUrl,omitempty"`
	LoginResetCredentialsURL string `json:"loginResetCredentialsUrl,omitempty"`
	LoginRestartFlowURL      string `json:"loginRestartFlowUrl,omitempty"`
	ResourcesPath            string `json:"resourcesPath,omitempty"`
	ResourcesCommonPath      string `json:"resourcesCommonPath,omitempty"`
}

// Realm carries the realm switches that change page layout.
type Realm struct {
	Name                        string `json:"name,omitempty"`
	DisplayName                 string `json:"displayName,omitempty"`
	DisplayNameHTML             string `json:"displayNameHtml,omitempty"`
	InternationalizationEnabled bool   `json:"internationalizationEnabled,omitempty"`
	RegistrationEmailAsUsername bool   `json:"registrationEmailAsUsername,omitempty"`
	RememberMe                  bool   `json:"rememberMe,omitempty"`
	ResetPasswordAllowed        bool   `json:"resetPasswordAllowed,omitempty"`
	RegistrationAllowed         bool   `json:"registrationAllowed,omitempty"`
	Password                    bool   `json:"password,omitempty"`
	LoginWithEmailAllowed       bool   `json:"loginWithEmailAllowed,omitempty"`
	DuplicateEmailsAllowed      bool   `json:"duplicateEmailsAllowed,omitempty"`
}

// Title returns the display name, falling back to the realm name.
func (r Realm) Title() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}

// Client describes the application that started the flow.
type Client struct {
	ClientID   string            `json:"clientId,omitempty"`
	Name       string            `json:"name,omitempty"`
	BaseURL    string            `json:"baseUrl,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Locale lists the realm languages and the active one.
type Locale struct {
	CurrentLanguageTag string     `json:"currentLanguageTag"`
	Supported          []Language `json:"supported,omitempty"`
	RTL                bool       `json:"rtl,omitempty"`
}

// Language is one entry of the language switcher.
type Language struct {
	LanguageTag string `json:"languageTag"`
	Label       string `json:"label,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Auth echoes the authentication session state.
type Auth struct {
	AttemptedUsername     string `json:"attemptedUsername,omitempty"`
	ShowUsername          bool   `json:"showUsername,omitempty"`
	ShowResetCredentials  bool   `json:"showResetCredentials,omitempty"`
	ShowTryAnotherWayLink bool   `json:"showTryAnotherWayLink,omitempty"`
	SelectedCredential    string `json:"selectedCredential,omitempty"`
}

// MessageType is the severity of the page-level message.
type MessageType string

const (
	MessageSuccess MessageType = "success"
	MessageWarning MessageType = "warning"
	MessageError   MessageType = "error"
	MessageInfo    MessageType = "info"
)

// Message is the page-level banner. Summary may contain markup and must be
// sanitized before output.
type Message struct {
	Type    MessageType `json:"type"`
	Summary string      `json:"summary"`
}

// Keycloakify carries theme-side message overrides.
type Keycloakify struct {
	Messages map[string]string `json:"messages,omitempty"`
}

// Social lists the identity providers offered on the page.
type Social struct {
	DisplayInfo bool       `json:"displayInfo,omitempty"`
	Providers   []Provider `json:"providers,omitempty"`
}

// Provider is one brokered identity provider.
type Provider struct {
	Alias       string `json:"alias"`
	DisplayName string `json:"displayName,omitempty"`
	LoginURL    string `json:"loginUrl"`
	ProviderID  string `json:"providerId,omitempty"`
	IconClasses string `json:"iconClasses,omitempty"`
}

// LoginEcho repeats what the user typed on the previous attempt.
type LoginEcho struct {
	Username   string `json:"username,omitempty"`
	RememberMe Flag   `json:"rememberMe,omitempty"`
}

// User is the subject of verify-email style pages.
type User struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// OAuth carries the consent screen payload.
type OAuth struct {
	Code                  string        `json:"code"`
	ClientScopesRequested []ClientScope `json:"clientScopesRequested,omitempty"`
}

// ClientScope is one scope requested on the consent screen.
type ClientScope struct {
	ConsentScreenText     string `json:"consentScreenText"`
	DynamicScopeParameter string `json:"dynamicScopeParameter,omitempty"`
}

// BrokerContext identifies the brokered account being linked.
type BrokerContext struct {
	Username string `json:"username,omitempty"`
}

// PasswordPolicies mirrors the realm password policy subset the theme checks
// client-side.
type PasswordPolicies struct {
	Length       int  `json:"length,omitempty"`
	Digits       int  `json:"digits,omitempty"`
	LowerCase    int  `json:"lowerCase,omitempty"`
	UpperCase    int  `json:"upperCase,omitempty"`
	SpecialChars int  `json:"specialChars,omitempty"`
	NotUsername  bool `json:"notUsername,omitempty"`
	NotEmail     bool `json:"notEmail,omitempty"`
}
