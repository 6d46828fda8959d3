package kccontext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingPageID is returned when a payload has no pageId discriminant.
	ErrMissingPageID = errors.New("kccontext: pageId is required")
	// ErrEmptyPayload is returned for blank input.
	ErrEmptyPayload = errors.New("kccontext: payload is empty")
)

// Decode parses a JSON or YAML kcContext and returns the variant selected by
// its pageId. Unknown pages decode into *Generic.
func Decode(data []byte) (KcContext, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyPayload
	}

	raw, err := normalise(data)
	if err != nil {
		return nil, err
	}

	var head struct {
		PageID PageID `json:"pageId"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("kccontext: read pageId: %w", err)
	}
	if strings.TrimSpace(string(head.PageID)) == "" {
		return nil, ErrMissingPageID
	}

	target := variantFor(head.PageID)
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("kccontext: decode %s: %w", head.PageID, err)
	}

	if generic, ok := target.(*Generic); ok {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil {
			generic.Raw = fields
		}
	}

	if profile, ok := ProfileOf(target); ok {
		if err := profile.Validate(); err != nil {
			return nil, err
		}
	}
	return target, nil
}

// DecodeReader reads the whole stream and decodes it.
func DecodeReader(r io.Reader) (KcContext, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("kccontext: read: %w", err)
	}
	return Decode(data)
}

// DecodeFile decodes a kcContext stored on disk.
func DecodeFile(path string) (KcContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kccontext: read %s: %w", path, err)
	}
	return Decode(data)
}

// Encode renders kc as JSON, the shape Keycloak injects into the page.
func Encode(kc KcContext) ([]byte, error) {
	if kc == nil {
		return nil, errors.New("kccontext: context is nil")
	}
	return json.Marshal(kc)
}

func variantFor(id PageID) KcContext {
	switch id {
	case PageLogin:
		return &Login{}
	case PageLoginUsername:
		return &LoginUsername{}
	case PageLoginPassword:
		return &LoginPassword{}
	case PageRegister:
		return &Register{}
	case PageLoginResetPassword:
		return &LoginResetPassword{}
	case PageLoginUpdatePassword:
		return &LoginUpdatePassword{}
	case PageLoginUpdateProfile:
		return &LoginUpdateProfile{}
	case PageLoginVerifyEmail:
		return &LoginVerifyEmail{}
	case PageLoginOAuthGrant:
		return &LoginOAuthGrant{}
	case PageLoginIdpLinkConfirm:
		return &LoginIdpLinkConfirm{}
	case PageLoginIdpLinkEmail:
		return &LoginIdpLinkEmail{}
	case PageLoginPageExpired:
		return &LoginPageExpired{}
	case PageError:
		return &Error{}
	case PageInfo:
		return &Info{}
	default:
		return &Generic{}
	}
}

// normalise returns JSON bytes for either a JSON or a YAML document. YAML is
// routed through JSON so a single set of struct tags covers both formats.
func normalise(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kccontext: invalid JSON or YAML: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, errors.New("kccontext: document must be a mapping")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("kccontext: convert YAML: %w", err)
	}
	return out, nil
}
