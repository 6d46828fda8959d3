package profile

import (
	"strconv"
	"strings"
)

// Messages resolves the message keys used by validators, option labels and
// group headers. pkg/i18n provides the catalog-backed implementation.
type Messages interface {
	MsgStr(key string, args ...string) string
	AdvancedMsgStr(key string) string
}

// Format substitutes {0}, {1}, ... placeholders.
func Format(template string, args ...string) string {
	if len(args) == 0 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", arg)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

var fallbackTemplates = map[string]string{
	"error-user-attribute-required":           "Please specify this field.",
	"error-invalid-length":                    "Length must be between {1} and {2}.",
	"error-invalid-length-too-short":          "Minimal length is {1}.",
	"error-invalid-length-too-long":           "Maximum length is {2}.",
	"error-invalid-email":                     "Invalid email address.",
	"error-invalid-number":                    "Invalid number.",
	"error-number-out-of-range":               "Number must be between {1} and {2}.",
	"error-number-out-of-range-too-small":     "Number must have minimal value of {1}.",
	"error-number-out-of-range-too-big":       "Number must have maximal value of {2}.",
	"error-pattern-no-match":                  "Invalid value.",
	"error-invalid-value":                     "Invalid value.",
	"error-invalid-multivalued-size":          "Attribute {0} must have at least {1} and at most {2} value(s).",
	"invalidPasswordMinLengthMessage":         "Invalid password: minimum length {0}.",
	"invalidPasswordMinDigitsMessage":         "Invalid password: must contain at least {0} numerical digits.",
	"invalidPasswordMinLowerCaseCharsMessage": "Invalid password: must contain at least {0} lower case characters.",
	"invalidPasswordMinUpperCaseCharsMessage": "Invalid password: must contain at least {0} upper case characters.",
	"invalidPasswordMinSpecialCharsMessage":   "Invalid password: must contain at least {0} special characters.",
	"invalidPasswordNotUsernameMessage":       "Invalid password: must not be equal to the username.",
	"invalidPasswordNotEmailMessage":          "Invalid password: must not be equal to the email.",
	"invalidPasswordConfirmMessage":           "Password confirmation doesn't match.",
	"password":                                "Password",
	"passwordConfirm":                         "Confirm password",
	"remove":                                  "Remove",
	"addValue":                                "Add value",
}

// fallbackMessages is used when no catalog is configured.
type fallbackMessages struct{}

func (fallbackMessages) MsgStr(key string, args ...string) string {
	if template, ok := fallbackTemplates[key]; ok {
		return Format(template, args...)
	}
	return key
}

func (m fallbackMessages) AdvancedMsgStr(key string) string {
	trimmed := strings.TrimSpace(key)
	if strings.HasPrefix(trimmed, "${") && strings.HasSuffix(trimmed, "}") {
		return m.MsgStr(trimmed[2 : len(trimmed)-1])
	}
	return key
}
