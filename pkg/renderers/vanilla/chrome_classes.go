package vanilla

// ChromeClass is a typed identifier for the CSS classes the renderer puts on
// the markup around profile controls.
type ChromeClass string

const (
	ClassFormGroup   ChromeClass = "kc-form-group"
	ClassGroupHeader ChromeClass = "kc-form-group-header"
	ClassGroupLabel  ChromeClass = "kc-form-group-label"
	ClassGroupDesc   ChromeClass = "kc-form-group-description"
	ClassLabel       ChromeClass = "kc-label"
	ClassRequired    ChromeClass = "kc-required"
	ClassHelperText  ChromeClass = "kc-helper-text"
	ClassInputError  ChromeClass = "kc-input-error"
)

type chromeClasses map[ChromeClass]string

// class returns the override for c, or c itself.
func (c chromeClasses) class(key ChromeClass) string {
	if value, ok := c[key]; ok && value != "" {
		return value
	}
	return string(key)
}
