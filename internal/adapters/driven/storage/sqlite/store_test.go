package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func sampleRecord() map[string]any {
	return map[string]any{
		domain.KeyViewer:      "alice",
		domain.KeyViewerColor: "#d1ecf1",
		domain.KeyWatchlist: []any{
			map[string]any{"text": "bob", "color": "#fff3cd"},
		},
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "settings.db"), store.Path())
	assert.Equal(t, store.Path(), store.ConfigStore().Path())

	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var tableExists int
	err = store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='settings'",
	).Scan(&tableExists)
	require.NoError(t, err)
	assert.Equal(t, 1, tableExists)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.ConfigStore().Set(sampleRecord()))
	require.NoError(t, store1.Close())

	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.ConfigStore().Get(domain.DefaultRecord())
	require.NoError(t, err)
	assert.Equal(t, "alice", got[domain.KeyViewer])
}

func TestStore_ConfigStoreIsShared(t *testing.T) {
	store := setupTestStore(t)
	assert.Same(t, store.ConfigStore(), store.ConfigStore())
}

// ==================== Config Store Tests ====================

func TestConfigStore_GetDefaults(t *testing.T) {
	cs := setupTestStore(t).ConfigStore()

	got, err := cs.Get(domain.DefaultRecord())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRecord(), got)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	cs := setupTestStore(t).ConfigStore()

	require.NoError(t, cs.Set(sampleRecord()))

	got, err := cs.Get(domain.DefaultRecord())
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), got)
}

func TestConfigStore_SetNotifiesChangedKeys(t *testing.T) {
	cs := setupTestStore(t).ConfigStore()
	require.NoError(t, cs.Set(sampleRecord()))

	var received []domain.ChangeSet
	cs.Subscribe(func(c domain.ChangeSet) { received = append(received, c) })

	require.NoError(t, cs.Set(map[string]any{
		domain.KeyViewer:      "carol",
		domain.KeyViewerColor: "#d1ecf1",
		domain.KeyWatchlist:   sampleRecord()[domain.KeyWatchlist],
	}))

	require.Len(t, received, 1)
	assert.Equal(t, domain.ChangeSet{
		domain.KeyViewer: {OldValue: "alice", NewValue: "carol"},
	}, received[0])
}

func TestConfigStore_TypedValuesCompareCanonically(t *testing.T) {
	cs := setupTestStore(t).ConfigStore()
	list := []domain.Identifier{{Text: "bob", Color: "#fff3cd"}}
	require.NoError(t, cs.Set(map[string]any{domain.KeyWatchlist: list}))

	calls := 0
	cs.Subscribe(func(domain.ChangeSet) { calls++ })

	require.NoError(t, cs.Set(map[string]any{domain.KeyWatchlist: list}))
	assert.Equal(t, 0, calls)

	got, err := cs.Get(map[string]any{domain.KeyWatchlist: nil})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"text": "bob", "color": "#fff3cd"}}, got[domain.KeyWatchlist])
}

func TestConfigStore_SetNilDeletes(t *testing.T) {
	cs := setupTestStore(t).ConfigStore()
	require.NoError(t, cs.Set(sampleRecord()))

	var received []domain.ChangeSet
	cs.Subscribe(func(c domain.ChangeSet) { received = append(received, c) })

	require.NoError(t, cs.Set(map[string]any{domain.KeyViewer: nil, "missing": nil}))

	got, err := cs.Get(map[string]any{domain.KeyViewer: "fallback"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", got[domain.KeyViewer])

	require.Len(t, received, 1)
	assert.Equal(t, domain.ChangeSet{domain.KeyViewer: {OldValue: "alice"}}, received[0])
}

func TestConfigStore_MalformedValue(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.db.Exec("INSERT INTO settings (key, value) VALUES (?, ?)", domain.KeyViewer, "{not json")
	require.NoError(t, err)

	_, err = store.ConfigStore().Get(map[string]any{domain.KeyViewer: ""})
	assert.ErrorIs(t, err, domain.ErrMalformedConfig)

	require.NoError(t, store.ConfigStore().Set(map[string]any{domain.KeyViewer: "alice"}))
	got, err := store.ConfigStore().Get(map[string]any{domain.KeyViewer: ""})
	require.NoError(t, err)
	assert.Equal(t, "alice", got[domain.KeyViewer])
}

func TestConfigStore_ClosedDatabase(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.ConfigStore().Get(map[string]any{domain.KeyViewer: ""})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Error(t, store.ConfigStore().Set(map[string]any{domain.KeyViewer: "alice"}))
}
