package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/domain/model"
	"github.com/ericfisherdev/wifishare/internal/domain/port/driven"
)

// --- Mock implementations ---

type storeCall struct {
	Op    string
	Key   string
	Value string
}

type mockPreferenceStore struct {
	mu     sync.Mutex
	values map[string]string
	calls  []storeCall

	getErr error
	setErr error
	remErr error

	// gate, when non-nil, blocks Set until it is closed.
	gate chan struct{}
	// getGate, when non-nil, blocks Get until it is closed.
	getGate chan struct{}
}

func newMockStore() *mockPreferenceStore {
	return &mockPreferenceStore{values: make(map[string]string)}
}

func (m *mockPreferenceStore) Get(ctx context.Context, key string) (string, error) {
	if m.getGate != nil {
		select {
		case <-m.getGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, storeCall{Op: "get", Key: key})
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *mockPreferenceStore) Set(ctx context.Context, key, value string) error {
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, storeCall{Op: "set", Key: key, Value: value})
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockPreferenceStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, storeCall{Op: "remove", Key: key})
	if m.remErr != nil {
		return m.remErr
	}
	delete(m.values, key)
	return nil
}

func (m *mockPreferenceStore) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockPreferenceStore) ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		ops = append(ops, c.Op)
	}
	return ops
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newManager builds a manager and waits for its initial load.
func newManager(t *testing.T, store driven.PreferenceStore, opts application.Options) (*application.CredentialsManager, error) {
	t.Helper()
	m := application.NewCredentialsManager(store, discardLogger(), opts)
	t.Cleanup(m.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m, m.Initial().Wait(ctx)
}

func waitTask(t *testing.T, task *application.Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return task.Wait(ctx)
}

// --- Load ---

func TestCredentialsManager_LoadNoStoredRecord(t *testing.T) {
	store := newMockStore()

	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	assert.Equal(t, model.Credentials{Name: "", Password: "", Saved: false}, m.Credentials())
	assert.Equal(t, model.FormShown, m.FormVisible())
	assert.Equal(t, []string{"get"}, store.ops())
}

func TestCredentialsManager_LoadStoredRecord(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = `{"name":"Cafe","password":"guest123","saved":true}`

	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	assert.Equal(t, model.Credentials{Name: "Cafe", Password: "guest123", Saved: true}, m.Credentials())
	assert.Equal(t, model.FormUnset, m.FormVisible(), "a found record must not open the form")
}

func TestCredentialsManager_LoadMalformed_FailPolicy(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = "{not json"

	m, err := newManager(t, store, application.Options{CorruptPolicy: application.CorruptFail})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedCredentials)

	assert.Equal(t, model.EmptyCredentials(), m.Credentials())
	assert.Equal(t, model.FormUnset, m.FormVisible())

	err = m.LoadCredentials(context.Background())
	assert.ErrorIs(t, err, model.ErrMalformedCredentials)
}

func TestCredentialsManager_LoadMalformed_ResetPolicy(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = "{not json"

	m, err := newManager(t, store, application.Options{CorruptPolicy: application.CorruptReset})
	require.NoError(t, err)

	assert.Equal(t, model.EmptyCredentials(), m.Credentials())
	assert.Equal(t, model.FormShown, m.FormVisible())
}

func TestCredentialsManager_LoadStoreError(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("disk unavailable")

	_, err := newManager(t, store, application.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk unavailable")
}

func TestCredentialsManager_ReloadPicksUpExternalChange(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	store.mu.Lock()
	store.values[driven.CredentialsKey] = `{"name":"Office","password":"s3cret!!","saved":true}`
	store.mu.Unlock()

	require.NoError(t, m.LoadCredentials(context.Background()))
	assert.Equal(t, "Office", m.Credentials().Name)
	assert.Equal(t, "Office", m.Title())
}

func TestCredentialsManager_ResetBeforeInitialLoadWins(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = `{"name":"Cafe","password":"guest123","saved":true}`
	store.getGate = make(chan struct{})

	m := application.NewCredentialsManager(store, discardLogger(), application.Options{})
	t.Cleanup(m.Close)

	reset := m.ResetStatus()
	close(store.getGate)

	require.NoError(t, waitTask(t, m.Initial()))
	require.NoError(t, waitTask(t, reset))

	assert.Equal(t, model.EmptyCredentials(), m.Credentials())
	assert.Equal(t, model.FormShown, m.FormVisible())
	_, ok := store.value(driven.CredentialsKey)
	assert.False(t, ok)
}

func TestCredentialsManager_SaveBeforeInitialLoadWins(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = `{"name":"Cafe","password":"guest123","saved":true}`
	store.getGate = make(chan struct{})

	m := application.NewCredentialsManager(store, discardLogger(), application.Options{})
	t.Cleanup(m.Close)

	m.UpdateCredentials("HomeNet", "abcd1234")
	save := m.HideForm()
	close(store.getGate)

	require.NoError(t, waitTask(t, m.Initial()))
	require.NoError(t, waitTask(t, save))

	assert.Equal(t, model.Credentials{Name: "HomeNet", Password: "abcd1234", Saved: true}, m.Credentials())
	assert.Equal(t, model.FormHidden, m.FormVisible())
	assert.Equal(t, []string{"get", "set"}, store.ops())
}

func TestCredentialsManager_ReloadAfterSaveApplies(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	m.UpdateCredentials("HomeNet", "abcd1234")
	require.NoError(t, waitTask(t, m.SaveCredentials()))

	require.NoError(t, m.LoadCredentials(context.Background()))
	assert.Equal(t, "HomeNet", m.Credentials().Name)
	assert.True(t, m.Credentials().Saved)
}

func TestCredentialsManager_SaveRejectsInvalidUTF8(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	m.UpdateCredentials("Ho\xffme", "abcd1234")
	err = waitTask(t, m.SaveCredentials())

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidEncoding)
	assert.Equal(t, []string{"get"}, store.ops())
}

func TestCredentialsManager_CancelEdit(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	assert.False(t, m.CancelEdit(), "nothing saved to return to")
	assert.Equal(t, model.FormShown, m.FormVisible())

	m.UpdateCredentials("HomeNet", "abcd1234")
	require.NoError(t, waitTask(t, m.HideForm()))
	m.ShowForm()

	assert.True(t, m.CancelEdit())
	assert.Equal(t, model.FormHidden, m.FormVisible())
	assert.Equal(t, []string{"get", "set"}, store.ops(), "cancel does not write")
}

// --- Save / hide / delete / reset ---

func TestCredentialsManager_HideForm(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	m.UpdateCredentials("HomeNet", "abcd1234")
	assert.False(t, m.Credentials().Saved)

	task := m.HideForm()

	assert.True(t, m.Credentials().Saved, "saved flag is set before the write completes")
	assert.Equal(t, model.FormHidden, m.FormVisible())
	require.NoError(t, waitTask(t, task))

	raw, ok := store.value(driven.CredentialsKey)
	require.True(t, ok)
	stored, err := model.DecodeCredentials(raw)
	require.NoError(t, err)
	assert.Equal(t, model.Credentials{Name: "HomeNet", Password: "abcd1234", Saved: true}, stored)
}

func TestCredentialsManager_ResetStatus(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = `{"name":"Cafe","password":"guest123","saved":true}`
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	task := m.ResetStatus()

	assert.Equal(t, model.Credentials{Name: "", Password: "", Saved: false}, m.Credentials())
	assert.Equal(t, model.FormShown, m.FormVisible())
	require.NoError(t, waitTask(t, task))

	_, ok := store.value(driven.CredentialsKey)
	assert.False(t, ok)
}

func TestCredentialsManager_DeleteKeepsInMemoryRecord(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = `{"name":"Cafe","password":"guest123","saved":true}`
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	require.NoError(t, waitTask(t, m.DeleteCredentials()))

	_, ok := store.value(driven.CredentialsKey)
	assert.False(t, ok)
	assert.Equal(t, "Cafe", m.Credentials().Name)
}

func TestCredentialsManager_SaveDoesNotBlockCaller(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	store.gate = make(chan struct{})
	m.UpdateCredentials("HomeNet", "abcd1234")

	task := m.SaveCredentials()

	select {
	case <-task.Done():
		t.Fatal("save completed before the store accepted the write")
	default:
	}
	assert.True(t, m.Credentials().Saved)

	close(store.gate)
	require.NoError(t, waitTask(t, task))
}

func TestCredentialsManager_SaveFailureSurfacesThroughTask(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	store.mu.Lock()
	store.setErr = errors.New("read-only filesystem")
	store.mu.Unlock()

	err = waitTask(t, m.HideForm())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save credentials")
	assert.Contains(t, err.Error(), "read-only filesystem")
}

func TestCredentialsManager_PersistenceIsSerialized(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	// Hold the first write so the delete and the second save queue behind it.
	store.gate = make(chan struct{})
	m.UpdateCredentials("First", "pass1111")
	first := m.SaveCredentials()
	reset := m.ResetStatus()
	m.UpdateCredentials("Second", "pass2222")
	second := m.HideForm()

	close(store.gate)
	require.NoError(t, waitTask(t, first))
	require.NoError(t, waitTask(t, reset))
	require.NoError(t, waitTask(t, second))

	assert.Equal(t, []string{"get", "set", "remove", "set"}, store.ops())

	raw, ok := store.value(driven.CredentialsKey)
	require.True(t, ok)
	stored, err := model.DecodeCredentials(raw)
	require.NoError(t, err)
	assert.Equal(t, "Second", stored.Name)
}

func TestCredentialsManager_WriteSnapshotsRecordAtCallTime(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	store.gate = make(chan struct{})
	m.UpdateCredentials("Before", "pass1111")
	task := m.SaveCredentials()
	m.UpdateCredentials("After", "pass2222")
	close(store.gate)
	require.NoError(t, waitTask(t, task))

	raw, _ := store.value(driven.CredentialsKey)
	stored, err := model.DecodeCredentials(raw)
	require.NoError(t, err)
	assert.Equal(t, "Before", stored.Name)
}

func TestCredentialsManager_ClosedManagerRejectsWork(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	m.Close()
	m.Close()

	err = waitTask(t, m.SaveCredentials())
	assert.ErrorIs(t, err, application.ErrManagerClosed)
	assert.ErrorIs(t, m.LoadCredentials(context.Background()), application.ErrManagerClosed)
}

func TestCredentialsManager_CloseDrainsQueuedWork(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	m.UpdateCredentials("HomeNet", "abcd1234")
	task := m.HideForm()
	m.Close()

	select {
	case <-task.Done():
	default:
		t.Fatal("Close returned before queued work finished")
	}
	_, ok := store.value(driven.CredentialsKey)
	assert.True(t, ok)
}

// --- Derived values ---

func TestCredentialsManager_DerivedValues(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	assert.True(t, m.NoCredentials())
	assert.True(t, m.InvalidCredentials())
	assert.Equal(t, "", m.Title())
	assert.Equal(t, application.InstructionsAdd, m.Instructions())

	m.UpdateCredentials("HomeNet", "abcd1234")
	assert.False(t, m.InvalidCredentials())
	assert.Equal(t, "", m.Title(), "title stays empty until saved")
	assert.Equal(t, "WIFI:T:WPA;S:HomeNet;P:abcd1234;;", m.QR())

	require.NoError(t, waitTask(t, m.HideForm()))
	assert.False(t, m.NoCredentials())
	assert.Equal(t, "HomeNet", m.Title())
	assert.Equal(t, application.InstructionsShare, m.Instructions())

	m.ShowForm()
	assert.Equal(t, application.InstructionsUpdate, m.Instructions())
}

func TestCredentialsManager_InstructionsWithUnsetFlag(t *testing.T) {
	store := newMockStore()
	store.values[driven.CredentialsKey] = `{"name":"Cafe","password":"guest123","saved":true}`
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	assert.Equal(t, model.FormUnset, m.FormVisible())
	assert.Equal(t, application.InstructionsShare, m.Instructions())
}

func TestCredentialsManager_InvalidCredentials(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		ssid     string
		password string
		want     bool
	}{
		{name: "valid", ssid: "HomeNet", password: "abcd", want: false},
		{name: "short ssid", ssid: "H", password: "abcd1234", want: true},
		{name: "short password", ssid: "HomeNet", password: "abc", want: true},
		{name: "ssid with hash", ssid: "Home#Net", password: "abcd1234", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.UpdateCredentials(tt.ssid, tt.password)
			assert.Equal(t, tt.want, m.InvalidCredentials())
			if tt.want {
				assert.Error(t, m.Validate())
			} else {
				assert.NoError(t, m.Validate())
			}
		})
	}
}

func TestCredentialsManager_NoCredentialsTracksSavedFlag(t *testing.T) {
	for _, saved := range []bool{true, false} {
		store := newMockStore()
		raw, err := model.Credentials{Name: "Cafe", Password: "guest123", Saved: saved}.Encode()
		require.NoError(t, err)
		store.values[driven.CredentialsKey] = raw

		m, err := newManager(t, store, application.Options{})
		require.NoError(t, err)
		assert.Equal(t, !saved, m.NoCredentials())
	}
}

func TestCredentialsManager_SnapshotIsConsistent(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	m.UpdateCredentials("a;b", "pass:word")
	s := m.Snapshot()

	assert.Equal(t, "a;b", s.Credentials.Name)
	assert.Equal(t, model.FormShown, s.FormVisible)
	assert.True(t, s.NoCredentials)
	assert.True(t, s.InvalidCredentials, "semicolon is not allowed in an SSID")
	assert.Equal(t, `WIFI:T:WPA;S:a\;b;P:pass\:word;;`, s.QR)
}

func TestParseCorruptPolicy(t *testing.T) {
	p, err := application.ParseCorruptPolicy("")
	require.NoError(t, err)
	assert.Equal(t, application.CorruptFail, p)

	p, err = application.ParseCorruptPolicy("reset")
	require.NoError(t, err)
	assert.Equal(t, application.CorruptReset, p)

	_, err = application.ParseCorruptPolicy("ignore")
	require.Error(t, err)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	store := newMockStore()
	m, err := newManager(t, store, application.Options{})
	require.NoError(t, err)

	store.gate = make(chan struct{})
	task := m.SaveCredentials()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, task.Wait(ctx), context.DeadlineExceeded)

	close(store.gate)
	require.NoError(t, waitTask(t, task))
}
