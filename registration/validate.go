package registration

import (
	"github.com/ruteri/registration-form/idcatalog"
	"github.com/ruteri/registration-form/interfaces"
)

// Validate runs the presence check and then the ID format check on state.
// It returns nil or a *ValidationError and never modifies state.
//
// Presence is judged on trimmed values; the ID number is matched as entered.
func Validate(catalog *idcatalog.Catalog, state interfaces.FormState) error {
	if missing := state.MissingRequired(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return &ValidationError{Kind: MissingRequiredFields, Missing: names}
	}

	idType, ok := catalog.Lookup(state.SelectedID)
	if !ok {
		return &ValidationError{Kind: UnknownIDType}
	}

	if !idType.Matches(state.IDNumber) {
		return &ValidationError{
			Kind:        BadIDFormat,
			IDLabel:     idType.Label(),
			Placeholder: idType.Placeholder,
		}
	}
	return nil
}
