package profile

// ActionKind discriminates form actions.
type ActionKind string

const (
	// ActionUpdate replaces the value of an attribute.
	ActionUpdate ActionKind = "update"
	// ActionFocusLost marks an attribute (or one of its values) as touched so
	// its client-side errors become visible.
	ActionFocusLost ActionKind = "focus lost"
)

// FormAction is the input of Form.Dispatch.
type FormAction struct {
	Kind       ActionKind
	Name       string
	Value      Value
	FieldIndex int
}

// Update builds an update action.
func Update(name string, value Value) FormAction {
	return FormAction{Kind: ActionUpdate, Name: name, Value: value, FieldIndex: NoFieldIndex}
}

// FocusLost builds a focus lost action. Pass NoFieldIndex for single valued
// attributes.
func FocusLost(name string, fieldIndex int) FormAction {
	return FormAction{Kind: ActionFocusLost, Name: name, FieldIndex: fieldIndex}
}

// ErrorSource tells where a field error came from.
type ErrorSource string

const (
	SourceClient ErrorSource = "client"
	SourceServer ErrorSource = "server"
)

// FormFieldError is a validation message attached to an attribute. FieldIndex
// addresses one value of a multivalued attribute and is ignored for single
// valued attributes.
type FormFieldError struct {
	AttributeName string
	FieldIndex    int
	Message       string
	Source        ErrorSource
	Validator     string
}

// ServerError builds an error reported by Keycloak for the whole attribute.
func ServerError(name, message string) FormFieldError {
	return FormFieldError{AttributeName: name, FieldIndex: NoFieldIndex, Message: message, Source: SourceServer}
}

// ServerErrorAt builds an error reported by Keycloak for one value.
func ServerErrorAt(name string, fieldIndex int, message string) FormFieldError {
	return FormFieldError{AttributeName: name, FieldIndex: fieldIndex, Message: message, Source: SourceServer}
}

// ErrorsFor filters errs down to the messages of attribute name at
// fieldIndex.
func ErrorsFor(errs []FormFieldError, name string, fieldIndex int) []string {
	var out []string
	for _, fieldErr := range errs {
		if fieldErr.AttributeName == name && fieldErr.FieldIndex == fieldIndex {
			out = append(out, fieldErr.Message)
		}
	}
	return out
}
