package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/highlight/internal/core/domain"
)

func TestNewConfigService(t *testing.T) {
	service := NewConfigService(memory.NewConfigStore(nil))
	require.NotNil(t, service)
}

func TestConfigService_Get_Defaults(t *testing.T) {
	service := NewConfigService(memory.NewConfigStore(nil))

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.True(t, cfg.IsEmpty())
	assert.Equal(t, domain.DefaultViewerColor, cfg.Viewer.Color)
}

func TestConfigService_Get_MalformedIsLogged(t *testing.T) {
	service := NewConfigService(memory.NewConfigStore(map[string]any{domain.KeyWatchlist: "bob"}))

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.Empty(t, cfg.Watchlist)
}

func TestConfigService_SetViewer(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewConfigService(store)

	require.NoError(t, service.SetViewer("  alice ", "#ABC"))

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Viewer.Text)
	assert.Equal(t, "#aabbcc", cfg.Viewer.Color)

	require.NoError(t, service.SetViewer("bob", ""))
	cfg, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Viewer.Text)
	assert.Equal(t, "#aabbcc", cfg.Viewer.Color, "empty colour keeps the current one")
}

func TestConfigService_SetViewer_InvalidColour(t *testing.T) {
	service := NewConfigService(memory.NewConfigStore(nil))
	err := service.SetViewer("alice", "teal")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigService_AddIdentifier(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewConfigService(store)

	require.NoError(t, service.AddIdentifier(" bob ", ""))
	require.NoError(t, service.AddIdentifier("team-x", "#123456"))

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, []domain.Identifier{
		{Text: "bob", Color: domain.DefaultMarkerColor},
		{Text: "team-x", Color: "#123456"},
	}, cfg.Watchlist)
}

func TestConfigService_AddIdentifier_Errors(t *testing.T) {
	service := NewConfigService(memory.NewConfigStore(nil))
	require.NoError(t, service.AddIdentifier("bob", ""))

	tests := []struct {
		name  string
		text  string
		color string
		want  error
	}{
		{name: "blank", text: "   ", want: domain.ErrInvalidInput},
		{name: "duplicate", text: "bob", want: domain.ErrAlreadyExists},
		{name: "duplicate other case", text: "BOB", want: domain.ErrAlreadyExists},
		{name: "bad colour", text: "carol", color: "#12", want: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.AddIdentifier(tt.text, tt.color)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfigService_AddIdentifier_NotifiesSubscribers(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewConfigService(store)

	var received []domain.ChangeSet
	store.Subscribe(func(cs domain.ChangeSet) { received = append(received, cs) })

	require.NoError(t, service.AddIdentifier("bob", ""))

	require.Len(t, received, 1)
	assert.Contains(t, received[0], domain.KeyWatchlist)
}

func TestConfigService_RemoveIdentifier(t *testing.T) {
	store := memory.NewConfigStore(aliceAndBob())
	service := NewConfigService(store)
	require.NoError(t, service.AddIdentifier("carol", ""))

	require.NoError(t, service.RemoveIdentifier("BOB"))

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, []domain.Identifier{{Text: "carol", Color: domain.DefaultMarkerColor}}, cfg.Watchlist)

	err = service.RemoveIdentifier("bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigService_SetIdentifierColor(t *testing.T) {
	store := memory.NewConfigStore(aliceAndBob())
	service := NewConfigService(store)

	require.NoError(t, service.SetIdentifierColor("Bob", "336699"))

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "#336699", cfg.Watchlist[0].Color)

	assert.ErrorIs(t, service.SetIdentifierColor("nobody", "#000000"), domain.ErrNotFound)
	assert.ErrorIs(t, service.SetIdentifierColor("bob", "nope"), domain.ErrInvalidInput)
}

func TestConfigService_Migrate(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{domain.KeyWatchlist: []any{"bob"}})
	service := NewConfigService(store)

	changed, err := service.Migrate()
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = service.Migrate()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestConfigService_StoreUnavailable(t *testing.T) {
	service := NewConfigService(failingStore{})

	_, err := service.Get()
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, service.AddIdentifier("bob", ""), domain.ErrStoreUnavailable)
}
