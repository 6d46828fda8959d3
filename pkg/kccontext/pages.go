package kccontext

// Login is the username/password page.
type Login struct {
	Common
	Social               *Social   `json:"social,omitempty"`
	Login                LoginEcho `json:"login"`
	UsernameHidden       bool      `json:"usernameHidden,omitempty"`
	RegistrationDisabled bool      `json:"registrationDisabled,omitempty"`
}

// LoginUsername is the first step of a username-first flow.
type LoginUsername struct {
	Common
	Social               *Social   `json:"social,omitempty"`
	Login                LoginEcho `json:"login"`
	UsernameHidden       bool      `json:"usernameHidden,omitempty"`
	RegistrationDisabled bool      `json:"registrationDisabled,omitempty"`
}

// LoginPassword is the second step of a username-first flow.
type LoginPassword struct {
	Common
}

// Register is the self-registration page driven by the user profile.
type Register struct {
	Common
	Profile                 UserProfile       `json:"profile"`
	PasswordRequired        bool              `json:"passwordRequired,omitempty"`
	PasswordPolicies        *PasswordPolicies `json:"passwordPolicies,omitempty"`
	Social                  *Social           `json:"social,omitempty"`
	RecaptchaRequired       bool              `json:"recaptchaRequired,omitempty"`
	RecaptchaVisible        bool              `json:"recaptchaVisible,omitempty"`
	RecaptchaSiteKey        string            `json:"recaptchaSiteKey,omitempty"`
	RecaptchaAction         string            `json:"recaptchaAction,omitempty"`
	TermsAcceptanceRequired bool              `json:"termsAcceptanceRequired,omitempty"`
	MessageHeader           string            `json:"messageHeader,omitempty"`
}

// LoginResetPassword asks for the account to reset.
type LoginResetPassword struct {
	Common
}

// LoginUpdatePassword sets a new password as a required action.
type LoginUpdatePassword struct {
	Common
	PasswordPolicies *PasswordPolicies `json:"passwordPolicies,omitempty"`
}

// LoginUpdateProfile completes missing profile attributes.
type LoginUpdateProfile struct {
	Common
	Profile       UserProfile `json:"profile"`
	MessageHeader string      `json:"messageHeader,omitempty"`
}

// LoginVerifyEmail tells the user a verification mail was sent.
type LoginVerifyEmail struct {
	Common
	User User `json:"user"`
}

// LoginOAuthGrant is the consent screen.
type LoginOAuthGrant struct {
	Common
	OAuth OAuth `json:"oauth"`
}

// LoginIdpLinkConfirm asks whether to link a brokered account.
type LoginIdpLinkConfirm struct {
	Common
	IdpAlias string `json:"idpAlias"`
}

// LoginIdpLinkEmail tells the user a link mail was sent.
type LoginIdpLinkEmail struct {
	Common
	IdpAlias      string        `json:"idpAlias"`
	BrokerContext BrokerContext `json:"brokerContext"`
}

// LoginPageExpired offers to restart or continue the flow.
type LoginPageExpired struct {
	Common
}

// Error is the terminal error page.
type Error struct {
	Common
	SkipLink bool `json:"skipLink,omitempty"`
}

// Info is the generic information page.
type Info struct {
	Common
	MessageHeader   string   `json:"messageHeader,omitempty"`
	RequiredActions []string `json:"requiredActions,omitempty"`
	SkipLink        bool     `json:"skipLink,omitempty"`
	PageRedirectURI string   `json:"pageRedirectUri,omitempty"`
	ActionURI       string   `json:"actionUri,omitempty"`
}

// Generic covers pages without a dedicated variant. Raw keeps the decoded
// payload so templates can still reach page-specific values.
type Generic struct {
	Common
	Profile *UserProfile   `json:"profile,omitempty"`
	Raw     map[string]any `json:"-"`
}

// ProfileOf returns the user profile carried by kc, if any.
func ProfileOf(kc KcContext) (*UserProfile, bool) {
	switch page := kc.(type) {
	case *Register:
		return &page.Profile, true
	case *LoginUpdateProfile:
		return &page.Profile, true
	case *Generic:
		if page.Profile != nil {
			return page.Profile, true
		}
	}
	return nil, false
}

// SocialOf returns the identity providers offered by kc, if any.
func SocialOf(kc KcContext) *Social {
	switch page := kc.(type) {
	case *Login:
		return page.Social
	case *LoginUsername:
		return page.Social
	case *Register:
		return page.Social
	}
	return nil
}
