// Package application holds the services that sit between the driving
// adapters and the driven ports.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/wifishare/internal/domain/model"
	"github.com/ericfisherdev/wifishare/internal/domain/port/driven"
)

// ErrManagerClosed is returned by tasks queued after Close.
var ErrManagerClosed = errors.New("credentials manager closed")

// DefaultStoreTimeout bounds a single preference store call.
const DefaultStoreTimeout = 5 * time.Second

// User-facing prompts returned by Instructions.
const (
	InstructionsAdd    = "Add your wifi credentials for easy sharing"
	InstructionsUpdate = "Update your wifi credentials"
	InstructionsShare  = "Share your wifi with others by having them scan this QR code"
)

// CorruptPolicy decides what loading does with a stored record that cannot be
// decoded.
type CorruptPolicy int

const (
	// CorruptFail returns the decode error and leaves in-memory state untouched.
	CorruptFail CorruptPolicy = iota
	// CorruptReset treats the record as absent and prompts for new credentials.
	CorruptReset
)

// ParseCorruptPolicy maps "fail" and "reset" to their policies.
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch s {
	case "", "fail":
		return CorruptFail, nil
	case "reset":
		return CorruptReset, nil
	default:
		return CorruptFail, fmt.Errorf("invalid corrupt record policy %q: must be 'fail' or 'reset'", s)
	}
}

// Options tunes a CredentialsManager. The zero value is usable.
type Options struct {
	CorruptPolicy CorruptPolicy
	StoreTimeout  time.Duration
}

// State is a consistent snapshot of the manager and every value derived from it.
type State struct {
	Credentials        model.Credentials
	FormVisible        model.FormVisibility
	NoCredentials      bool
	InvalidCredentials bool
	QR                 string
	Title              string
	Instructions       string
}

// CredentialsManager owns the single in-memory WiFi credential record and the
// form-visibility flag, and persists the record under driven.CredentialsKey.
//
// In-memory changes are applied synchronously. Store access is serialized on
// one worker in call order, and each persistence call returns a Task the
// caller may wait on or ignore.
type CredentialsManager struct {
	store  driven.PreferenceStore
	logger *slog.Logger
	policy CorruptPolicy
	queue  *opQueue

	mu          sync.RWMutex
	credentials model.Credentials
	formVisible model.FormVisibility
	// generation counts in-memory mutations. A load applies its result only
	// if no mutation happened after it was queued.
	generation uint64

	initial   *Task
	closeOnce sync.Once
}

// NewCredentialsManager creates a manager and queues the initial load without
// waiting for it. Use Initial to observe its outcome, and Close to release the
// persistence worker.
func NewCredentialsManager(store driven.PreferenceStore, logger *slog.Logger, opts Options) *CredentialsManager {
	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}

	m := &CredentialsManager{
		store:       store,
		logger:      logger,
		policy:      opts.CorruptPolicy,
		queue:       newOpQueue(logger, timeout),
		credentials: model.EmptyCredentials(),
		formVisible: model.FormUnset,
	}
	m.initial = m.enqueueLoad()
	return m
}

// Initial returns the task for the load queued at construction.
func (m *CredentialsManager) Initial() *Task {
	return m.initial
}

// Close drains queued persistence work and stops the worker. Operations
// queued afterwards fail with ErrManagerClosed.
func (m *CredentialsManager) Close() {
	m.closeOnce.Do(m.queue.close)
}

// LoadCredentials reads the stored record and replaces the in-memory record
// with it. When nothing is stored the form is shown. It runs after any
// persistence work already queued.
//
// If the record or flag is changed after the load is queued and before it
// runs, the stored value is stale relative to memory and is discarded.
func (m *CredentialsManager) LoadCredentials(ctx context.Context) error {
	return m.enqueueLoad().Wait(ctx)
}

func (m *CredentialsManager) enqueueLoad() *Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	queuedAt := m.generation
	return m.queue.enqueue("load", func(ctx context.Context) error {
		return m.load(ctx, queuedAt)
	})
}

func (m *CredentialsManager) load(ctx context.Context, queuedAt uint64) error {
	raw, err := m.store.Get(ctx, driven.CredentialsKey)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != queuedAt {
		m.logger.Debug("stored credentials superseded by in-memory changes")
		return nil
	}

	if raw == "" {
		m.formVisible = model.FormShown
		return nil
	}

	creds, err := model.DecodeCredentials(raw)
	if err != nil {
		if m.policy == CorruptReset {
			m.logger.Warn("discarding unreadable stored credentials", "error", err)
			m.formVisible = model.FormShown
			return nil
		}
		return fmt.Errorf("load credentials: %w", err)
	}

	m.credentials = creds
	return nil
}

// SaveCredentials marks the current record saved and queues a write of it.
func (m *CredentialsManager) SaveCredentials() *Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *CredentialsManager) saveLocked() *Task {
	m.generation++
	m.credentials.Saved = true

	raw, err := m.credentials.Encode()
	if err != nil {
		return completedTask(err)
	}

	return m.queue.enqueue("save", func(ctx context.Context) error {
		if err := m.store.Set(ctx, driven.CredentialsKey, raw); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		return nil
	})
}

// DeleteCredentials queues removal of the stored record. The in-memory record
// is left as is.
func (m *CredentialsManager) DeleteCredentials() *Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked()
}

func (m *CredentialsManager) deleteLocked() *Task {
	return m.queue.enqueue("delete", func(ctx context.Context) error {
		if err := m.store.Remove(ctx, driven.CredentialsKey); err != nil {
			return fmt.Errorf("delete credentials: %w", err)
		}
		return nil
	})
}

// HideForm saves the record and switches to the QR share view.
func (m *CredentialsManager) HideForm() *Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.saveLocked()
	m.formVisible = model.FormHidden
	return t
}

// ResetStatus deletes the stored record, clears the in-memory record and
// shows the form.
func (m *CredentialsManager) ResetStatus() *Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.deleteLocked()
	m.generation++
	m.credentials = model.EmptyCredentials()
	m.formVisible = model.FormShown
	return t
}

// ShowForm switches back to the editing form.
func (m *CredentialsManager) ShowForm() {
	m.mu.Lock()
	m.generation++
	m.formVisible = model.FormShown
	m.mu.Unlock()
}

// CancelEdit returns from the editing form to the share view without saving.
// It reports false, leaving the form shown, when no saved record exists.
func (m *CredentialsManager) CancelEdit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.credentials.Saved {
		return false
	}
	m.generation++
	m.formVisible = model.FormHidden
	return true
}

// UpdateCredentials replaces the SSID and password as typed into the form.
// The saved flag is unchanged until the record is saved.
func (m *CredentialsManager) UpdateCredentials(name, password string) {
	m.mu.Lock()
	m.generation++
	m.credentials.Name = name
	m.credentials.Password = password
	m.mu.Unlock()
}

// Credentials returns a copy of the in-memory record.
func (m *CredentialsManager) Credentials() model.Credentials {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credentials
}

// FormVisible returns the form-visibility flag.
func (m *CredentialsManager) FormVisible() model.FormVisibility {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.formVisible
}

// Snapshot returns the record, the flag and all derived values read under a
// single lock.
func (m *CredentialsManager) Snapshot() State {
	m.mu.RLock()
	creds, visible := m.credentials, m.formVisible
	m.mu.RUnlock()
	return deriveState(creds, visible)
}

// NoCredentials reports whether the record has not been saved.
func (m *CredentialsManager) NoCredentials() bool {
	return m.Snapshot().NoCredentials
}

// InvalidCredentials reports whether the SSID or the password fails validation.
func (m *CredentialsManager) InvalidCredentials() bool {
	return m.Snapshot().InvalidCredentials
}

// QR returns the WiFi QR payload for the current record.
func (m *CredentialsManager) QR() string {
	return m.Snapshot().QR
}

// Title returns the SSID once saved, and "" before.
func (m *CredentialsManager) Title() string {
	return m.Snapshot().Title
}

// Instructions returns the prompt matching the current view.
func (m *CredentialsManager) Instructions() string {
	return m.Snapshot().Instructions
}

// Validate returns the field errors of the current record, or nil.
func (m *CredentialsManager) Validate() error {
	return m.Credentials().Validate()
}

func deriveState(creds model.Credentials, visible model.FormVisibility) State {
	noCredentials := !creds.Saved

	title := creds.Name
	if noCredentials {
		title = ""
	}

	return State{
		Credentials:        creds,
		FormVisible:        visible,
		NoCredentials:      noCredentials,
		InvalidCredentials: !(model.ValidSSID(creds.Name) && model.ValidPassword(creds.Password)),
		QR:                 creds.QR(),
		Title:              title,
		Instructions:       instructions(visible, noCredentials),
	}
}

func instructions(visible model.FormVisibility, noCredentials bool) string {
	if !visible.Shown() {
		return InstructionsShare
	}
	if noCredentials {
		return InstructionsAdd
	}
	return InstructionsUpdate
}
