package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/services"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range configCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"show", "viewer", "add", "remove", "color", "migrate", "detect"} {
		assert.Contains(t, names, want)
	}
}

func TestConfigShow(t *testing.T) {
	setupTestServices(t, aliceAndBob())

	out, err := execute(t, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "[Viewer]")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "#d1ecf1")
	assert.Contains(t, out, "[Identifiers] 1")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "#ffcccc")
	assert.Contains(t, out, "Store: :memory:")
}

func TestConfigShow_Empty(t *testing.T) {
	setupTestServices(t, nil)

	out, err := execute(t, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "Name: (not set)")
	assert.Contains(t, out, "[Identifiers] 0")
	assert.Contains(t, out, "(none)")
}

func TestConfigEdits(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr error
		check   func(t *testing.T, cfg domain.Configuration)
	}{
		{
			name:    "set viewer",
			args:    []string{"config", "viewer", "carol", "--color", "#ABCDEF"},
			wantOut: "Viewer set to carol.",
			check: func(t *testing.T, cfg domain.Configuration) {
				assert.Equal(t, domain.ViewerIdentity{Text: "carol", Color: "#abcdef"}, cfg.Viewer)
			},
		},
		{
			name:    "clear viewer",
			args:    []string{"config", "viewer", ""},
			wantOut: "Viewer cleared.",
			check: func(t *testing.T, cfg domain.Configuration) {
				assert.True(t, cfg.Viewer.IsZero())
			},
		},
		{
			name:    "add identifier",
			args:    []string{"config", "add", "dave", "--color", "#eeeeee"},
			wantOut: "Watching dave.",
			check: func(t *testing.T, cfg domain.Configuration) {
				assert.Equal(t, []domain.Identifier{
					{Text: "bob", Color: "#ffcccc"},
					{Text: "dave", Color: "#eeeeee"},
				}, cfg.Watchlist)
			},
		},
		{
			name:    "add duplicate",
			args:    []string{"config", "add", "Bob"},
			wantErr: domain.ErrAlreadyExists,
		},
		{
			name:    "add blank",
			args:    []string{"config", "add", " "},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "remove identifier",
			args:    []string{"config", "remove", "bob"},
			wantOut: "No longer watching bob.",
			check: func(t *testing.T, cfg domain.Configuration) {
				assert.Empty(t, cfg.Watchlist)
			},
		},
		{
			name:    "remove unknown",
			args:    []string{"config", "rm", "zed"},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "recolour",
			args:    []string{"config", "color", "bob", "#000000"},
			wantOut: "bob is now #000000.",
			check: func(t *testing.T, cfg domain.Configuration) {
				assert.Equal(t, "#000000", cfg.Watchlist[0].Color)
			},
		},
		{
			name:    "recolour invalid",
			args:    []string{"config", "color", "bob", "teal-ish"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestServices(t, aliceAndBob())

			out, err := execute(t, tt.args...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)

			cfg, err := services.LoadConfiguration(store)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfigMigrate(t *testing.T) {
	store := setupTestServices(t, map[string]any{
		domain.KeyViewer:    "alice",
		domain.KeyWatchlist: []any{"bob"},
	})

	out, err := execute(t, "config", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration migrated.")

	cfg, err := services.LoadConfiguration(store)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultViewerColor, cfg.Viewer.Color)
	assert.Equal(t, []domain.Identifier{{Text: "bob", Color: domain.DefaultMarkerColor}}, cfg.Watchlist)

	out, err = execute(t, "config", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration already up to date.")
}

func TestConfigDetect_FromPage(t *testing.T) {
	store := setupTestServices(t, nil)
	path := writeFile(t, "page.html", `<html><head><meta name="user-login" content="octocat"></head><body></body></html>`)

	out, err := execute(t, "config", "detect", "--page", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Viewer set to octocat.")

	cfg, err := services.LoadConfiguration(store)
	require.NoError(t, err)
	assert.Equal(t, "octocat", cfg.Viewer.Text)
}

func TestConfigDetect_NoViewerOnPage(t *testing.T) {
	setupTestServices(t, nil)
	path := writeFile(t, "page.html", `<html><body><p>anonymous</p></body></html>`)

	_, err := execute(t, "config", "detect", "--page", path)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigDetect_RequiresOneSource(t *testing.T) {
	setupTestServices(t, nil)

	_, err := execute(t, "config", "detect")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigDetect_GitHubNeedsToken(t *testing.T) {
	setupTestServices(t, nil)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")

	_, err := execute(t, "config", "detect", "--github")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestGithubToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "gh-token")
	assert.Equal(t, "gh-token", githubToken())

	t.Setenv("GITHUB_TOKEN", "github-token")
	assert.Equal(t, "github-token", githubToken())
}
