// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// CredentialsPageViewModel holds presentation-ready data for the single
// credentials page, in either its form or its share state.
type CredentialsPageViewModel struct {
	// Heading is the SSID once credentials are saved, else a generic heading.
	Heading string
	// InstructionsHTML is sanitized HTML rendered from the instructions text.
	InstructionsHTML string
	FormVisible      bool
	CSRFToken        string

	Form  CredentialsFormViewModel
	Share ShareViewModel
}

// CredentialsFormViewModel holds the editing form's field values and errors.
// Error fields hold sanitized HTML rendered from markdown help text.
type CredentialsFormViewModel struct {
	Name              string
	Password          string
	NameErrorHTML     string
	PasswordErrorHTML string
	// CanCancel is true when saved credentials exist to return to. It also
	// offers forgetting them.
	CanCancel bool
}

// ShareViewModel holds the data shown while sharing saved credentials.
type ShareViewModel struct {
	SSID      string
	QRPayload string
}
