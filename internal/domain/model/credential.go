package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformedCredentials is returned when a stored credential record cannot
// be decoded.
var ErrMalformedCredentials = errors.New("malformed credential record")

// ErrInvalidEncoding is returned by Encode when a field is not valid UTF-8
// and so could not be stored without alteration.
var ErrInvalidEncoding = errors.New("credential field is not valid UTF-8")

// Credentials holds the single WiFi network the user shares. Name is the SSID.
// Saved reports whether the user has committed the record.
type Credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Saved    bool   `json:"saved"`
}

// EmptyCredentials returns the default, unsaved record.
func EmptyCredentials() Credentials {
	return Credentials{}
}

// Encode serializes the record to the JSON form kept in the preference store.
// A record that encodes without error decodes back to an equal record.
func (c Credentials) Encode() (string, error) {
	if !utf8.ValidString(c.Name) {
		return "", fmt.Errorf("encode credentials: name: %w", ErrInvalidEncoding)
	}
	if !utf8.ValidString(c.Password) {
		return "", fmt.Errorf("encode credentials: password: %w", ErrInvalidEncoding)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}
	return string(data), nil
}

// DecodeCredentials parses a stored record. Anything that is not a JSON
// object is rejected with ErrMalformedCredentials.
func DecodeCredentials(raw string) (Credentials, error) {
	if strings.TrimSpace(raw) == "null" {
		return Credentials{}, fmt.Errorf("%w: null record", ErrMalformedCredentials)
	}

	var c Credentials
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrMalformedCredentials, err)
	}
	return c, nil
}

// Validate reports every field that fails validation, joined into one error.
// It returns nil for a record that can be shared.
func (c Credentials) Validate() error {
	var errs []error
	if !ValidSSID(c.Name) {
		errs = append(errs, ErrInvalidSSID)
	}
	if !ValidPassword(c.Password) {
		errs = append(errs, ErrInvalidPassword)
	}
	return errors.Join(errs...)
}

// QR returns the WiFi QR payload for the record.
func (c Credentials) QR() string {
	return WiFiQRPayload(c.Name, c.Password)
}
