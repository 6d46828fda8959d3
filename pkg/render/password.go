package render

// PasswordToggle is the reveal state of one password input.
type PasswordToggle struct {
	InputID  string
	Revealed bool
}

// Toggle flips the reveal state.
func (p PasswordToggle) Toggle() PasswordToggle {
	p.Revealed = !p.Revealed
	return p
}

// InputType is the type attribute of the input.
func (p PasswordToggle) InputType() string {
	if p.Revealed {
		return "text"
	}
	return "password"
}

// AriaLabelKey is the message key of the toggle button label.
func (p PasswordToggle) AriaLabelKey() string {
	if p.Revealed {
		return "hidePassword"
	}
	return "showPassword"
}

// PasswordToggleFor reads the reveal state of inputID from opts.
func PasswordToggleFor(inputID string, opts RenderOptions) PasswordToggle {
	return PasswordToggle{InputID: inputID, Revealed: opts.RevealedPasswords[inputID]}
}
