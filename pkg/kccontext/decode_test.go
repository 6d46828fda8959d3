package kccontext

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode_SelectsVariantByPageID(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, kc KcContext)
	}{
		{
			name: "login json",
			payload: `{
				"pageId": "login.ftl",
				"url": {"loginAction": "/realms/demo/login-actions/authenticate"},
				"realm": {"password": true, "rememberMe": true},
				"login": {"username": "alice", "rememberMe": "on"},
				"auth": {"selectedCredential": "abc"}
			}`,
			check: func(t *testing.T, kc KcContext) {
				page, ok := kc.(*Login)
				if !ok {
					t.Fatalf("expected *Login, got %T", kc)
				}
				if page.Login.Username != "alice" {
					t.Fatalf("username echo mismatch: %q", page.Login.Username)
				}
				if !bool(page.Login.RememberMe) {
					t.Fatalf("expected rememberMe \"on\" to decode as true")
				}
				if page.Base().Auth.SelectedCredential != "abc" {
					t.Fatalf("expected selected credential")
				}
			},
		},
		{
			name: "register yaml",
			payload: `
pageId: register.ftl
passwordRequired: true
profile:
  attributes:
    - name: email
      required: true
      annotations:
        inputType: text
        inputTypeMaxlength: 255
`,
			check: func(t *testing.T, kc KcContext) {
				page, ok := kc.(*Register)
				if !ok {
					t.Fatalf("expected *Register, got %T", kc)
				}
				if !page.PasswordRequired {
					t.Fatalf("expected passwordRequired")
				}
				if len(page.Profile.Attributes) != 1 {
					t.Fatalf("expected one attribute, got %d", len(page.Profile.Attributes))
				}
				attr := page.Profile.Attributes[0]
				if got, _ := attr.Annotations.InputTypeMaxlength.Int(); got != 255 {
					t.Fatalf("expected numeric maxlength to decode, got %q", attr.Annotations.InputTypeMaxlength)
				}
			},
		},
		{
			name:    "unknown page falls back to generic",
			payload: `{"pageId": "webauthn-authenticate.ftl", "isUserIdentified": "true"}`,
			check: func(t *testing.T, kc KcContext) {
				page, ok := kc.(*Generic)
				if !ok {
					t.Fatalf("expected *Generic, got %T", kc)
				}
				if page.Page() != "webauthn-authenticate.ftl" {
					t.Fatalf("page id mismatch: %s", page.Page())
				}
				if page.Raw["isUserIdentified"] != "true" {
					t.Fatalf("expected raw payload preserved, got %#v", page.Raw)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kc, err := Decode([]byte(tc.payload))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			tc.check(t, kc)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if _, err := Decode([]byte(`{"realm": {}}`)); !errors.Is(err, ErrMissingPageID) {
		t.Fatalf("expected ErrMissingPageID, got %v", err)
	}

	dup := `{"pageId":"register.ftl","profile":{"attributes":[{"name":"email"},{"name":"email"}]}}`
	if _, err := Decode([]byte(dup)); !errors.Is(err, ErrDuplicateAttribute) {
		t.Fatalf("expected ErrDuplicateAttribute, got %v", err)
	}
}

func TestMessagesPerField(t *testing.T) {
	kc, err := Decode([]byte(`{
		"pageId": "login.ftl",
		"messagesPerField": {"password": "Invalid username or password.", "email": ["a", "b"]}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	messages := kc.Base().MessagesPerField

	if !messages.ExistsError("username", "password") {
		t.Fatalf("expected error for username or password")
	}
	if messages.Exists("username") {
		t.Fatalf("username should have no message")
	}
	if got := messages.GetFirstError("username", "password"); got != "Invalid username or password." {
		t.Fatalf("unexpected first error %q", got)
	}
	if got := messages.Get("email"); got != "a<br>b" {
		t.Fatalf("expected messages joined with <br>, got %q", got)
	}
	if got := messages.PrintIfExists("email", "has-error"); got != "has-error" {
		t.Fatalf("unexpected printIfExists %q", got)
	}
}

func TestAttributeOptionsPriority(t *testing.T) {
	attr := Attribute{
		Name: "country",
		Annotations: Annotations{
			InputType:                  InputTypeSelect,
			InputOptionsFromValidation: "countries",
		},
		Validators: Validators{
			"countries": Validator{"options": []any{"fr", "de"}},
			"options":   Validator{"options": []any{"us"}},
		},
	}
	if diff := cmp.Diff([]string{"fr", "de"}, attr.Options()); diff != "" {
		t.Fatalf("named validator should win (-want +got):\n%s", diff)
	}

	attr.Annotations.InputOptionsFromValidation = "missing"
	if diff := cmp.Diff([]string{"us"}, attr.Options()); diff != "" {
		t.Fatalf("fallback to options validator (-want +got):\n%s", diff)
	}

	attr.Validators = nil
	if got := attr.Options(); got != nil {
		t.Fatalf("expected no options, got %v", got)
	}
}

func TestAttributeMultivalued(t *testing.T) {
	attr := Attribute{Name: "phones", Multivalued: true, Validators: Validators{
		"multivalued": Validator{"min": "1", "max": "3"},
	}}
	if !attr.IsMultivalued() {
		t.Fatalf("expected multivalued")
	}
	lower, upper := attr.MultivaluedBounds()
	if lower != 1 || upper != 3 {
		t.Fatalf("unexpected bounds %d..%d", lower, upper)
	}

	checkboxes := Attribute{Name: "tags", Annotations: Annotations{InputType: InputTypeMultiselectCheckboxes}}
	if !checkboxes.IsMultivalued() {
		t.Fatalf("checkbox groups carry value lists")
	}
}
