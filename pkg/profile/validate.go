package profile

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*$`)

var patternCache sync.Map

func compilePattern(pattern string) (*regexp.Regexp, bool) {
	if cached, ok := patternCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re, re != nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		patternCache.Store(pattern, (*regexp.Regexp)(nil))
		return nil, false
	}
	patternCache.Store(pattern, re)
	return re, true
}

// clientErrors runs the client-side validators of attribute i against its
// current value.
func (f *Form) clientErrors(i int) []FormFieldError {
	attr := f.attrs[i]
	value := f.values[i]

	if attr.ReadOnly || (attr.Name == AttributePasswordConfirm && !f.cfg.doMakeUserConfirmPassword) {
		return nil
	}

	v := validation{form: f, attr: attr, label: DisplayName(f.cfg.messages, attr)}

	if attr.Required && value.IsEmpty() {
		v.add(NoFieldIndex, "required", "error-user-attribute-required")
		return v.errs
	}

	for index, item := range v.items(value) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		fieldIndex := NoFieldIndex
		if attr.IsMultivalued() && ControlFor(attr) != ControlMultiSelect && ControlFor(attr) != ControlCheckboxGroup {
			fieldIndex = index
		}
		v.checkValue(fieldIndex, item)
	}

	v.checkOptions(value)
	v.checkMultivalued(value)

	switch attr.Name {
	case AttributePassword:
		v.checkPasswordPolicies(value.String())
	case AttributePasswordConfirm:
		v.checkConfirmation(value.String())
	}
	return v.errs
}

type validation struct {
	form  *Form
	attr  kccontext.Attribute
	label string
	errs  []FormFieldError
}

func (v *validation) items(value Value) []string {
	if !value.IsMultiple() {
		return []string{value.String()}
	}
	return value.Strings()
}

func (v *validation) messages() Messages { return v.form.cfg.messages }

func (v *validation) add(fieldIndex int, validator, key string, args ...string) {
	v.errs = append(v.errs, FormFieldError{
		AttributeName: v.attr.Name,
		FieldIndex:    fieldIndex,
		Message:       v.messages().MsgStr(key, append([]string{v.label}, args...)...),
		Source:        SourceClient,
		Validator:     validator,
	})
}

// addCustom honours a validator's "error-message" override.
func (v *validation) addCustom(fieldIndex int, validator string, config kccontext.Validator, key string, args ...string) {
	if custom, ok := config.Text("error-message"); ok && strings.TrimSpace(custom) != "" {
		message := v.messages().AdvancedMsgStr(custom)
		if message == custom && !strings.HasPrefix(custom, "${") {
			message = v.messages().MsgStr(custom, append([]string{v.label}, args...)...)
		}
		v.errs = append(v.errs, FormFieldError{
			AttributeName: v.attr.Name,
			FieldIndex:    fieldIndex,
			Message:       message,
			Source:        SourceClient,
			Validator:     validator,
		})
		return
	}
	v.add(fieldIndex, validator, key, args...)
}

func (v *validation) checkValue(fieldIndex int, item string) {
	if config, ok := v.attr.Validators["length"]; ok {
		text := item
		if !config.Bool("trim-disabled") {
			text = strings.TrimSpace(text)
		}
		length := utf8.RuneCountInString(text)
		lower, hasLower := config.Int("min")
		upper, hasUpper := config.Int("max")
		minText, maxText := strconv.Itoa(lower), strconv.Itoa(upper)
		switch {
		case hasLower && hasUpper && (length < lower || length > upper):
			v.addCustom(fieldIndex, "length", config, "error-invalid-length", minText, maxText)
		case hasLower && !hasUpper && length < lower:
			v.addCustom(fieldIndex, "length", config, "error-invalid-length-too-short", minText, maxText)
		case hasUpper && !hasLower && length > upper:
			v.addCustom(fieldIndex, "length", config, "error-invalid-length-too-long", minText, maxText)
		}
	}

	if config, ok := v.attr.Validators["pattern"]; ok {
		if pattern, ok := config.Text("pattern"); ok {
			if re, ok := compilePattern(pattern); ok && !re.MatchString(item) {
				v.addCustom(fieldIndex, "pattern", config, "error-pattern-no-match", pattern)
			}
		}
	}

	if config, ok := v.attr.Validators["email"]; ok || v.attr.Name == AttributeEmail {
		if !emailPattern.MatchString(strings.TrimSpace(item)) {
			v.addCustom(fieldIndex, "email", config, "error-invalid-email")
		}
	}

	if config, ok := v.attr.Validators["integer"]; ok {
		n, err := strconv.ParseInt(strings.TrimSpace(item), 10, 64)
		if err != nil {
			v.addCustom(fieldIndex, "integer", config, "error-invalid-number")
		} else {
			v.checkRange(fieldIndex, "integer", config, float64(n))
		}
	}

	if config, ok := v.attr.Validators["double"]; ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
		if err != nil {
			v.addCustom(fieldIndex, "double", config, "error-invalid-number")
		} else {
			v.checkRange(fieldIndex, "double", config, n)
		}
	}

	if config, ok := v.attr.Validators["uri"]; ok {
		if _, err := url.ParseRequestURI(strings.TrimSpace(item)); err != nil {
			v.addCustom(fieldIndex, "uri", config, "error-invalid-value")
		}
	}
}

func (v *validation) checkRange(fieldIndex int, name string, config kccontext.Validator, n float64) {
	lower, hasLower := config.Float("min")
	upper, hasUpper := config.Float("max")
	minText, _ := config.Text("min")
	maxText, _ := config.Text("max")
	switch {
	case hasLower && hasUpper && (n < lower || n > upper):
		v.addCustom(fieldIndex, name, config, "error-number-out-of-range", minText, maxText)
	case hasLower && !hasUpper && n < lower:
		v.addCustom(fieldIndex, name, config, "error-number-out-of-range-too-small", minText, maxText)
	case hasUpper && !hasLower && n > upper:
		v.addCustom(fieldIndex, name, config, "error-number-out-of-range-too-big", minText, maxText)
	}
}

func (v *validation) checkOptions(value Value) {
	options := v.attr.Options()
	if len(options) == 0 {
		return
	}
	allowed := make(map[string]struct{}, len(options))
	for _, option := range options {
		allowed[option] = struct{}{}
	}
	for _, item := range value.NonEmpty() {
		if _, ok := allowed[item]; !ok {
			v.add(NoFieldIndex, "options", "error-invalid-value")
			return
		}
	}
}

func (v *validation) checkMultivalued(value Value) {
	if !value.IsMultiple() {
		return
	}
	config, ok := v.attr.Validators["multivalued"]
	if !ok {
		return
	}
	count := len(value.NonEmpty())
	if count == 0 {
		return
	}
	lower, hasLower := config.Int("min")
	upper, hasUpper := config.Int("max")
	if (hasLower && count < lower) || (hasUpper && count > upper) {
		minText, _ := config.Text("min")
		maxText, _ := config.Text("max")
		v.add(NoFieldIndex, "multivalued", "error-invalid-multivalued-size", minText, maxText)
	}
}

func (v *validation) checkPasswordPolicies(password string) {
	policies := v.form.cfg.policies
	if policies == nil || password == "" {
		return
	}

	var digits, lower, upper, special int
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			special++
		}
	}

	policy := func(required, got int, key string) {
		if required > 0 && got < required {
			v.errs = append(v.errs, FormFieldError{
				AttributeName: v.attr.Name,
				FieldIndex:    NoFieldIndex,
				Message:       v.messages().MsgStr(key, strconv.Itoa(required)),
				Source:        SourceClient,
				Validator:     "password-policy",
			})
		}
	}
	policy(policies.Length, utf8.RuneCountInString(password), "invalidPasswordMinLengthMessage")
	policy(policies.Digits, digits, "invalidPasswordMinDigitsMessage")
	policy(policies.LowerCase, lower, "invalidPasswordMinLowerCaseCharsMessage")
	policy(policies.UpperCase, upper, "invalidPasswordMinUpperCaseCharsMessage")
	policy(policies.SpecialChars, special, "invalidPasswordMinSpecialCharsMessage")

	equals := func(enabled bool, attribute, key string) {
		if !enabled {
			return
		}
		other, ok := v.form.Value(attribute)
		if ok && other.String() != "" && other.String() == password {
			v.errs = append(v.errs, FormFieldError{
				AttributeName: v.attr.Name,
				FieldIndex:    NoFieldIndex,
				Message:       v.messages().MsgStr(key),
				Source:        SourceClient,
				Validator:     "password-policy",
			})
		}
	}
	equals(policies.NotUsername, AttributeUsername, "invalidPasswordNotUsernameMessage")
	equals(policies.NotEmail, AttributeEmail, "invalidPasswordNotEmailMessage")
}

func (v *validation) checkConfirmation(confirm string) {
	password, ok := v.form.Value(AttributePassword)
	if !ok || confirm == password.String() {
		return
	}
	v.add(NoFieldIndex, "password-confirm", "invalidPasswordConfirmMessage")
}
