package profile

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

// ErrNoProfile is returned for pages that carry no profile form.
var ErrNoProfile = errors.New("profile: page has no profile form")

// PasswordAttributes returns the synthetic password and confirmation
// attributes added to forms that set a password.
func PasswordAttributes() []kccontext.Attribute {
	return []kccontext.Attribute{
		{
			Name:         AttributePassword,
			DisplayName:  "${password}",
			Required:     true,
			Autocomplete: "new-password",
		},
		{
			Name:         AttributePasswordConfirm,
			DisplayName:  "${passwordConfirm}",
			Required:     true,
			Autocomplete: "new-password",
		},
	}
}

// AttributesFor returns the attributes rendered on kc in order. On register
// pages the username is dropped when the realm uses the email as username,
// and the password fields follow the email (or username) when a password is
// required.
func AttributesFor(kc kccontext.KcContext) ([]kccontext.Attribute, error) {
	if kc == nil {
		return nil, ErrNoProfile
	}
	realm := kc.Base().Realm

	switch page := kc.(type) {
	case *kccontext.LoginUpdatePassword:
		return PasswordAttributes(), nil
	case *kccontext.Register:
		attrs := make([]kccontext.Attribute, 0, len(page.Profile.Attributes)+2)
		for _, attr := range page.Profile.Attributes {
			if realm.RegistrationEmailAsUsername && attr.Name == AttributeUsername {
				continue
			}
			attrs = append(attrs, attr)
		}
		if page.PasswordRequired {
			attrs = insertPasswords(attrs, realm.RegistrationEmailAsUsername)
		}
		return attrs, nil
	}

	profile, ok := kccontext.ProfileOf(kc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProfile, kc.Page())
	}
	return append([]kccontext.Attribute(nil), profile.Attributes...), nil
}

// FromContext builds the form for kc. Password policies carried by the page
// apply unless opts override them.
func FromContext(kc kccontext.KcContext, opts ...Option) (*Form, error) {
	attrs, err := AttributesFor(kc)
	if err != nil {
		return nil, err
	}

	var pageOpts []Option
	switch page := kc.(type) {
	case *kccontext.Register:
		if page.PasswordPolicies != nil {
			pageOpts = append(pageOpts, WithPasswordPolicies(page.PasswordPolicies))
		}
	case *kccontext.LoginUpdatePassword:
		if page.PasswordPolicies != nil {
			pageOpts = append(pageOpts, WithPasswordPolicies(page.PasswordPolicies))
		}
	}
	return New(attrs, append(pageOpts, opts...)...)
}

func insertPasswords(attrs []kccontext.Attribute, emailAsUsername bool) []kccontext.Attribute {
	anchor := AttributeUsername
	if emailAsUsername {
		anchor = AttributeEmail
	}

	at := len(attrs)
	for i, attr := range attrs {
		if attr.Name == anchor {
			at = i + 1
			break
		}
	}

	passwords := PasswordAttributes()
	if at > 0 && attrs[at-1].Group != nil {
		group := *attrs[at-1].Group
		for i := range passwords {
			g := group
			passwords[i].Group = &g
		}
	}

	out := make([]kccontext.Attribute, 0, len(attrs)+len(passwords))
	out = append(out, attrs[:at]...)
	out = append(out, passwords...)
	return append(out, attrs[at:]...)
}
