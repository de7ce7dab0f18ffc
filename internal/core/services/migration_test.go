package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/highlight/internal/core/domain"
)

func TestMigrate_LegacyIdentifiers(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		domain.KeyViewer:    "alice",
		domain.KeyWatchlist: []any{"bob", map[string]any{"text": "carol", "color": "#123456"}},
	})

	changed, err := Migrate(store)
	require.NoError(t, err)
	assert.True(t, changed)

	snap := store.Snapshot()
	assert.Equal(t, domain.DefaultViewerColor, snap[domain.KeyViewerColor])
	assert.Equal(t, []any{
		map[string]any{"text": "bob", "color": domain.DefaultMarkerColor},
		map[string]any{"text": "carol", "color": "#123456"},
	}, snap[domain.KeyWatchlist])
	assert.Equal(t, "alice", snap[domain.KeyViewer])
}

func TestMigrate_StringSlice(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		domain.KeyViewerColor: "#d1ecf1",
		domain.KeyWatchlist:   []string{"bob"},
	})

	changed, err := Migrate(store)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []any{map[string]any{"text": "bob", "color": domain.DefaultMarkerColor}},
		store.Snapshot()[domain.KeyWatchlist])
}

func TestMigrate_Idempotent(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{domain.KeyWatchlist: []any{"bob"}})

	changed, err := Migrate(store)
	require.NoError(t, err)
	require.True(t, changed)
	first := store.Snapshot()

	notified := 0
	store.Subscribe(func(domain.ChangeSet) { notified++ })

	changed, err = Migrate(store)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, store.Snapshot())
	assert.Equal(t, 0, notified)
}

func TestMigrate_CanonicalStoreUntouched(t *testing.T) {
	store := memory.NewConfigStore(aliceAndBob())

	changed, err := Migrate(store)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMigrate_StoreErrors(t *testing.T) {
	_, err := Migrate(nil)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = Migrate(failingStore{})
	assert.Error(t, err)
}
