// Package appearance resolves the light/dark preference of a visitor and
// the go-theme manifests that back each variant.
package appearance

import (
	"net/http"
	"strings"
	"time"
)

// Mode is the colour scheme preference.
type Mode string

const (
	ModeSystem Mode = "system"
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
)

// CookieName carries the preference between requests. The runtime script
// mirrors localStorage "theme" into it.
const CookieName = "kc-theme"

// PrefersColorSchemeHeader is the client hint browsers send once the server
// asks for it with Accept-CH.
const PrefersColorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

// ParseMode reads a stored preference. Anything unknown is ModeSystem.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLight:
		return ModeLight
	case ModeDark:
		return ModeDark
	default:
		return ModeSystem
	}
}

// FromRequest returns the stored preference of r.
func FromRequest(r *http.Request) Mode {
	if r == nil {
		return ModeSystem
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ModeSystem
	}
	return ParseMode(cookie.Value)
}

// Resolve maps mode to the variant to render. System defers to the client
// hint and then to light.
func Resolve(mode Mode, r *http.Request) Mode {
	if mode == ModeLight || mode == ModeDark {
		return mode
	}
	if r != nil && ParseMode(r.Header.Get(PrefersColorSchemeHeader)) == ModeDark {
		return ModeDark
	}
	return ModeLight
}

// Next is the mode the toggle switches to: system, light, dark, system.
func Next(mode Mode) Mode {
	switch mode {
	case ModeSystem:
		return ModeLight
	case ModeLight:
		return ModeDark
	default:
		return ModeSystem
	}
}

// Cookie builds the preference cookie. ModeSystem clears it.
func Cookie(mode Mode, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    string(mode),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	if mode == ModeSystem || mode == "" {
		cookie.Value = ""
		cookie.MaxAge = -1
	}
	return cookie
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == "" {
		return string(ModeSystem)
	}
	return string(m)
}
