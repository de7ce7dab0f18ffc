package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/services"
)

func TestWatchCmd_RequiresOut(t *testing.T) {
	setupTestServices(t, nil)
	path := writeFile(t, "thread.html", threadPage)

	_, err := execute(t, "watch", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"out" not set`)
}

func TestWatchPage(t *testing.T) {
	store := setupTestServices(t, aliceAndBob())
	dir := t.TempDir()
	input := filepath.Join(dir, "thread.html")
	output := filepath.Join(dir, "out.html")
	require.NoError(t, os.WriteFile(input, []byte(threadPage), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchPage(ctx, watchOptions{
			Input:    input,
			Output:   output,
			Store:    store,
			Regions:  annotator.GitHubRegions(),
			Interval: time.Millisecond,
		})
	}()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	readOutput := func() string {
		data, err := os.ReadFile(output)
		if err != nil {
			return ""
		}
		return string(data)
	}

	// Initial scan
	require.Eventually(t, func() bool {
		return strings.Contains(readOutput(), ">alice</span>")
	}, 5*time.Second, 10*time.Millisecond)

	// Configuration change repaints
	svc := services.NewConfigService(store)
	require.NoError(t, svc.SetIdentifierColor("bob", "#000000"))
	require.Eventually(t, func() bool {
		return strings.Contains(readOutput(), "background-color: #000000")
	}, 5*time.Second, 10*time.Millisecond)

	// Input rewrite is swapped in and annotated
	next := `<html><body><div class="comment-body">carol pinged bob again</div></body></html>`
	require.NoError(t, os.WriteFile(input, []byte(next), 0o600))
	require.Eventually(t, func() bool {
		out := readOutput()
		return strings.Contains(out, "pinged") && strings.Contains(out, ">bob</span>")
	}, 5*time.Second, 10*time.Millisecond)

	assert.NotContains(t, readOutput(), "Thanks alice")
	assert.Contains(t, readOutput(), domain.MarkerClass)
}

func TestWatchPage_MissingInput(t *testing.T) {
	store := setupTestServices(t, nil)

	err := watchPage(context.Background(), watchOptions{
		Input:  filepath.Join(t.TempDir(), "absent.html"),
		Output: filepath.Join(t.TempDir(), "out.html"),
		Store:  store,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
