// Package keyring implements the preference store on the operating system
// keyring (macOS Keychain, Secret Service, Windows Credential Manager).
package keyring

import (
	"context"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/ericfisherdev/wifishare/internal/domain/port/driven"
)

// DefaultService is the keyring service name entries are filed under.
const DefaultService = "wifishare"

// Compile-time interface satisfaction check.
var _ driven.PreferenceStore = (*Store)(nil)

// Store maps each preference key to a keyring account under one service.
// The keyring API is synchronous and not cancellable; the context is only
// checked before each call.
type Store struct {
	service string
}

// NewStore creates a Store filing entries under service, or DefaultService
// when service is empty.
func NewStore(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Get returns the value under key, or ("", nil) if the keyring has no entry.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := gokeyring.Get(s.service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %q: %w", key, err)
	}
	return value, nil
}

// Set stores or replaces the value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := gokeyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key. A missing entry is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := gokeyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %q: %w", key, err)
	}
	return nil
}
