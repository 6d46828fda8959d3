package profile

import "github.com/goliatone/go-kctheme/pkg/kccontext"

// Option customises a Form.
type Option func(*config)

type config struct {
	doMakeUserConfirmPassword bool
	onSubmittable             func(bool)
	onValue                   func(name string, value Value)
	messages                  Messages
	policies                  *kccontext.PasswordPolicies
	serverErrors              []FormFieldError
}

func defaultConfig() config {
	return config{
		doMakeUserConfirmPassword: true,
		messages:                  fallbackMessages{},
	}
}

// WithDoMakeUserConfirmPassword controls whether the user types the password
// twice. When false the confirmation field is hidden and mirrors the password.
func WithDoMakeUserConfirmPassword(enabled bool) Option {
	return func(c *config) {
		c.doMakeUserConfirmPassword = enabled
	}
}

// WithOnSubmittableChange registers the callback fired with the initial
// submittability and again whenever it changes.
func WithOnSubmittableChange(fn func(bool)) Option {
	return func(c *config) {
		c.onSubmittable = fn
	}
}

// WithOnValueChange registers a callback fired after every update.
func WithOnValueChange(fn func(name string, value Value)) Option {
	return func(c *config) {
		c.onValue = fn
	}
}

// WithMessages sets the message resolver used for validation messages.
func WithMessages(messages Messages) Option {
	return func(c *config) {
		if messages != nil {
			c.messages = messages
		}
	}
}

// WithPasswordPolicies enables the client-side password policy checks.
func WithPasswordPolicies(policies *kccontext.PasswordPolicies) Option {
	return func(c *config) {
		c.policies = policies
	}
}

// WithServerErrors seeds the errors reported by Keycloak.
func WithServerErrors(errs ...FormFieldError) Option {
	return func(c *config) {
		c.serverErrors = append(c.serverErrors, errs...)
	}
}
