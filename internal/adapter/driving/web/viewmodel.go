package web

import (
	"errors"

	vm "github.com/ericfisherdev/wifishare/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/domain/model"
)

const defaultHeading = "WiFi Share"

// Field help text, rendered through RenderMarkdown.
const (
	ssidHelp     = "SSID must be 2 to 32 characters and may not contain `!` `#` `;` `+` `]` `/` `\"` or a tab."
	passwordHelp = "Password must be at least **4** characters."
)

// toCredentialsPageViewModel converts a manager snapshot to the page view model.
func toCredentialsPageViewModel(state application.State, csrfToken string) vm.CredentialsPageViewModel {
	heading := state.Title
	if heading == "" {
		heading = defaultHeading
	}

	page := vm.CredentialsPageViewModel{
		Heading:          heading,
		InstructionsHTML: RenderMarkdown(state.Instructions),
		FormVisible:      state.FormVisible.Shown(),
		CSRFToken:        csrfToken,
		Form: vm.CredentialsFormViewModel{
			Name:      state.Credentials.Name,
			Password:  state.Credentials.Password,
			CanCancel: !state.NoCredentials,
		},
	}

	// An unset flag falls through to the share state, matching the instructions.
	if !page.FormVisible {
		page.Share = vm.ShareViewModel{
			SSID:      state.Credentials.Name,
			QRPayload: state.QR,
		}
	}

	return page
}

// withRejectedInput shows the form again holding the rejected candidate and
// the help text for each field that failed validation.
func withRejectedInput(page vm.CredentialsPageViewModel, candidate model.Credentials, validationErr error) vm.CredentialsPageViewModel {
	page.FormVisible = true
	page.Share = vm.ShareViewModel{}
	page.Form.Name = candidate.Name
	page.Form.Password = candidate.Password

	if errors.Is(validationErr, model.ErrInvalidSSID) {
		page.Form.NameErrorHTML = RenderMarkdown(ssidHelp)
	}
	if errors.Is(validationErr, model.ErrInvalidPassword) {
		page.Form.PasswordErrorHTML = RenderMarkdown(passwordHelp)
	}

	return page
}
