package web

import (
	"testing"

	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func stateFor(creds model.Credentials, visible model.FormVisibility) application.State {
	title := ""
	if creds.Saved {
		title = creds.Name
	}
	return application.State{
		Credentials:        creds,
		FormVisible:        visible,
		NoCredentials:      !creds.Saved,
		InvalidCredentials: creds.Validate() != nil,
		QR:                 creds.QR(),
		Title:              title,
		Instructions:       application.InstructionsShare,
	}
}

func TestToCredentialsPageViewModel_UnsetShowsShare(t *testing.T) {
	creds := model.Credentials{Name: "HomeNet", Password: "abcd1234", Saved: true}

	page := toCredentialsPageViewModel(stateFor(creds, model.FormUnset), "tok")

	assert.False(t, page.FormVisible)
	assert.Equal(t, "HomeNet", page.Heading)
	assert.Equal(t, "HomeNet", page.Share.SSID)
	assert.Equal(t, "WIFI:T:WPA;S:HomeNet;P:abcd1234;;", page.Share.QRPayload)
	assert.Equal(t, "tok", page.CSRFToken)
	assert.Contains(t, page.InstructionsHTML, application.InstructionsShare)
}

func TestWithRejectedInput(t *testing.T) {
	saved := model.Credentials{Name: "HomeNet", Password: "abcd1234", Saved: true}
	candidate := model.Credentials{Name: "H", Password: "abcd1234"}

	page := withRejectedInput(
		toCredentialsPageViewModel(stateFor(saved, model.FormHidden), ""),
		candidate,
		candidate.Validate(),
	)

	assert.True(t, page.FormVisible)
	assert.Equal(t, "HomeNet", page.Heading)
	assert.Equal(t, "H", page.Form.Name)
	assert.Contains(t, page.Form.NameErrorHTML, "<code>#</code>")
	assert.Empty(t, page.Form.PasswordErrorHTML)
	assert.True(t, page.Form.CanCancel)
	assert.Empty(t, page.Share.QRPayload)
}

func TestToCredentialsPageViewModel_NothingSaved(t *testing.T) {
	page := toCredentialsPageViewModel(stateFor(model.EmptyCredentials(), model.FormShown), "")

	assert.True(t, page.FormVisible)
	assert.Equal(t, defaultHeading, page.Heading)
	assert.False(t, page.Form.CanCancel)
}
