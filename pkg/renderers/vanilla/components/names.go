package components

import "github.com/goliatone/go-kctheme/pkg/profile"

// Component names match the profile controls they render.
const (
	NameHidden        = string(profile.ControlHidden)
	NameInput         = string(profile.ControlText)
	NamePassword      = string(profile.ControlPassword)
	NameTextarea      = string(profile.ControlTextarea)
	NameSelect        = string(profile.ControlSelect)
	NameMultiSelect   = string(profile.ControlMultiSelect)
	NameRadioGroup    = string(profile.ControlRadioGroup)
	NameCheckboxGroup = string(profile.ControlCheckboxGroup)
)
