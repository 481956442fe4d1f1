// Package driven declares the ports implemented by driven adapters.
package driven

import "context"

// CredentialsKey is the fixed preference key holding the serialized WiFi
// credential record.
const CredentialsKey = "credentials"

// PreferenceStore defines the driven port for durable key-value preferences.
// Values are opaque strings; adapters may seal them at rest but always return
// plaintext at the domain boundary.
type PreferenceStore interface {
	// Get retrieves the value stored under key.
	// Returns ("", nil) if nothing is stored under that key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the value under key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
